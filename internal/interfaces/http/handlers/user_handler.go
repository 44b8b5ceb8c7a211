package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"avilegal.backend/internal/domain/entities"
	"avilegal.backend/internal/interfaces/http/response"
	"avilegal.backend/pkg/utils"
)

type UserService interface {
	List(ctx context.Context, filter entities.UserFilter, page utils.PaginationParams) (utils.Page[*entities.User], error)
	Get(ctx context.Context, id uuid.UUID) (*entities.User, error)
	UpdateStatus(ctx context.Context, actorID, id uuid.UUID, status entities.UserStatus) (*entities.User, error)
	ListStaff(ctx context.Context, page utils.PaginationParams) (utils.Page[*entities.User], error)
	CreateStaff(ctx context.Context, input *entities.CreateStaffInput) (*entities.User, error)
}

// UserHandler serves admin user and staff management
type UserHandler struct {
	users UserService
}

func NewUserHandler(users UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List GET /api/v1/admin/users?search=&status=&role=
func (h *UserHandler) List(c *gin.Context) {
	filter := entities.UserFilter{
		Search: c.Query("search"),
		Status: entities.UserStatus(c.Query("status")),
		Role:   c.Query("role"),
	}
	page, err := h.users.List(c.Request.Context(), filter, pagination(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, page)
}

// Get GET /api/v1/admin/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// UpdateStatus PUT /api/v1/admin/users/:id/status
func (h *UserHandler) UpdateStatus(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var input entities.UpdateUserStatusInput
	if !bindJSON(c, &input) {
		return
	}
	user, err := h.users.UpdateStatus(c.Request.Context(), actorID, id, input.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user, "message": "User status updated"})
}

// ListStaff GET /api/v1/admin/staff
func (h *UserHandler) ListStaff(c *gin.Context) {
	page, err := h.users.ListStaff(c.Request.Context(), pagination(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, page)
}

// CreateStaff POST /api/v1/admin/staff
func (h *UserHandler) CreateStaff(c *gin.Context) {
	var input entities.CreateStaffInput
	if !bindJSON(c, &input) {
		return
	}
	user, err := h.users.CreateStaff(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"user": user, "message": "Staff member created successfully"})
}

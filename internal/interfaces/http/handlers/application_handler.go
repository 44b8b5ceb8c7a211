package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"avilegal.backend/internal/domain/entities"
	domainerrors "avilegal.backend/internal/domain/errors"
	"avilegal.backend/internal/interfaces/http/response"
	"avilegal.backend/pkg/utils"
)

type ApplicationService interface {
	Create(ctx context.Context, userID uuid.UUID, input *entities.CreateApplicationInput) (*entities.Application, error)
	List(ctx context.Context, userID uuid.UUID, status entities.ApplicationStatus, page utils.PaginationParams) (utils.Page[*entities.Application], error)
	Get(ctx context.Context, userID, id uuid.UUID) (*entities.Application, error)
	Update(ctx context.Context, userID, id uuid.UUID, input *entities.UpdateApplicationInput) (*entities.Application, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error

	AdminList(ctx context.Context, filter entities.ApplicationFilter, page utils.PaginationParams) (utils.Page[*entities.Application], error)
	AdminGet(ctx context.Context, id uuid.UUID) (*entities.Application, error)
	Approve(ctx context.Context, id uuid.UUID) (*entities.Application, error)
	Reject(ctx context.Context, id uuid.UUID, reason string) (*entities.Application, error)
	AdvanceMilestone(ctx context.Context, id, milestoneID uuid.UUID) (*entities.Application, error)
	Complete(ctx context.Context, id uuid.UUID) (*entities.Application, error)
}

// ApplicationHandler handles customer and admin application endpoints
type ApplicationHandler struct {
	applications ApplicationService
}

func NewApplicationHandler(applications ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applications: applications}
}

// List returns the caller's applications
// GET /api/v1/customer/applications?status=&page=&limit=
func (h *ApplicationHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	page, err := h.applications.List(c.Request.Context(), userID, entities.ApplicationStatus(c.Query("status")), pagination(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, page)
}

// Get GET /api/v1/customer/applications/:id
func (h *ApplicationHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	app, err := h.applications.Get(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"application": app})
}

// Create POST /api/v1/customer/applications
func (h *ApplicationHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var input entities.CreateApplicationInput
	if !bindJSON(c, &input) {
		return
	}
	if input.ServiceID == uuid.Nil {
		response.Error(c, domainerrors.BadRequest("serviceId is required"))
		return
	}
	app, err := h.applications.Create(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"application": app})
}

// Update PUT /api/v1/customer/applications/:id
func (h *ApplicationHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var input entities.UpdateApplicationInput
	if !bindJSON(c, &input) {
		return
	}
	app, err := h.applications.Update(c.Request.Context(), userID, id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"application": app})
}

// Delete DELETE /api/v1/customer/applications/:id
func (h *ApplicationHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.applications.Delete(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Application deleted successfully")
}

// AdminList GET /api/v1/admin/applications?status=&search=&userId=
func (h *ApplicationHandler) AdminList(c *gin.Context) {
	userID, ok := optionalUUIDQuery(c, "userId")
	if !ok {
		return
	}
	filter := entities.ApplicationFilter{
		UserID: userID,
		Status: entities.ApplicationStatus(c.Query("status")),
		Search: c.Query("search"),
	}
	page, err := h.applications.AdminList(c.Request.Context(), filter, pagination(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, page)
}

// AdminGet GET /api/v1/admin/applications/:id
func (h *ApplicationHandler) AdminGet(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	app, err := h.applications.AdminGet(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"application": app})
}

// Approve POST /api/v1/admin/applications/:id/approve
func (h *ApplicationHandler) Approve(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	app, err := h.applications.Approve(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"application": app, "message": "Application approved"})
}

// Reject POST /api/v1/admin/applications/:id/reject
func (h *ApplicationHandler) Reject(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var input entities.RejectApplicationInput
	if !bindJSON(c, &input) {
		return
	}
	app, err := h.applications.Reject(c.Request.Context(), id, input.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"application": app, "message": "Application rejected"})
}

// AdvanceMilestone POST /api/v1/admin/applications/:id/milestones/advance
func (h *ApplicationHandler) AdvanceMilestone(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var input entities.AdvanceMilestoneInput
	if !bindJSON(c, &input) {
		return
	}
	if input.MilestoneID == uuid.Nil {
		response.Error(c, domainerrors.BadRequest("milestoneId is required"))
		return
	}
	app, err := h.applications.AdvanceMilestone(c.Request.Context(), id, input.MilestoneID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"application": app, "message": "Milestone completed"})
}

// Complete POST /api/v1/admin/applications/:id/complete
func (h *ApplicationHandler) Complete(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	app, err := h.applications.Complete(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"application": app, "message": "Application completed"})
}

package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"avilegal.backend/internal/domain/entities"
	"avilegal.backend/internal/interfaces/http/response"
)

type RoleService interface {
	List(ctx context.Context) ([]*entities.Role, error)
	Get(ctx context.Context, id uuid.UUID) (*entities.Role, error)
	Create(ctx context.Context, input *entities.CreateRoleInput) (*entities.Role, error)
	Update(ctx context.Context, id uuid.UUID, input *entities.UpdateRoleInput) (*entities.Role, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Permissions(ctx context.Context) ([]entities.PermissionGroup, error)
	SyncUserRoles(ctx context.Context, userID uuid.UUID, roles []string) (*entities.User, error)
	AssignRole(ctx context.Context, userID uuid.UUID, role string) (*entities.User, error)
	RemoveRole(ctx context.Context, userID uuid.UUID, role string) (*entities.User, error)
}

// RoleHandler manages roles, permissions and role assignments
type RoleHandler struct {
	roles RoleService
}

func NewRoleHandler(roles RoleService) *RoleHandler {
	return &RoleHandler{roles: roles}
}

// List GET /api/v1/admin/roles
func (h *RoleHandler) List(c *gin.Context) {
	roles, err := h.roles.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"roles": roles})
}

// Get GET /api/v1/admin/roles/:id
func (h *RoleHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	role, err := h.roles.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"role": role})
}

// Create POST /api/v1/admin/roles
func (h *RoleHandler) Create(c *gin.Context) {
	var input entities.CreateRoleInput
	if !bindJSON(c, &input) {
		return
	}
	role, err := h.roles.Create(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"role": role, "message": "Role created successfully"})
}

// Update PUT /api/v1/admin/roles/:id
func (h *RoleHandler) Update(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var input entities.UpdateRoleInput
	if !bindJSON(c, &input) {
		return
	}
	role, err := h.roles.Update(c.Request.Context(), id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"role": role, "message": "Role updated successfully"})
}

// Delete DELETE /api/v1/admin/roles/:id
func (h *RoleHandler) Delete(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.roles.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Role deleted successfully")
}

// Permissions GET /api/v1/admin/permissions
func (h *RoleHandler) Permissions(c *gin.Context) {
	groups, err := h.roles.Permissions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"permissions": groups})
}

// SyncUserRoles PUT /api/v1/admin/users/:id/roles
func (h *RoleHandler) SyncUserRoles(c *gin.Context) {
	userID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var input entities.SyncUserRolesInput
	if !bindJSON(c, &input) {
		return
	}
	user, err := h.roles.SyncUserRoles(c.Request.Context(), userID, input.Roles)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user, "message": "User roles updated successfully"})
}

// AssignRole POST /api/v1/admin/users/:id/roles
func (h *RoleHandler) AssignRole(c *gin.Context) {
	userID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var input entities.AssignRoleInput
	if !bindJSON(c, &input) {
		return
	}
	user, err := h.roles.AssignRole(c.Request.Context(), userID, input.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user, "message": "Role assigned successfully"})
}

// RemoveRole DELETE /api/v1/admin/users/:id/roles/:role
func (h *RoleHandler) RemoveRole(c *gin.Context) {
	userID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	user, err := h.roles.RemoveRole(c.Request.Context(), userID, c.Param("role"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user, "message": "Role removed successfully"})
}

package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"avilegal.backend/internal/domain/entities"
	"avilegal.backend/internal/interfaces/http/response"
)

type ServiceCatalog interface {
	ListActive(ctx context.Context) ([]*entities.Service, error)
	GetActiveBySlug(ctx context.Context, slug string) (*entities.Service, error)
	List(ctx context.Context) ([]*entities.Service, error)
	Get(ctx context.Context, id uuid.UUID) (*entities.Service, error)
	Create(ctx context.Context, input *entities.ServiceInput) (*entities.Service, error)
	Update(ctx context.Context, id uuid.UUID, input *entities.ServiceInput) (*entities.Service, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ServiceHandler serves the registration service catalog
type ServiceHandler struct {
	services ServiceCatalog
}

func NewServiceHandler(services ServiceCatalog) *ServiceHandler {
	return &ServiceHandler{services: services}
}

// ListActive GET /api/v1/services
func (h *ServiceHandler) ListActive(c *gin.Context) {
	items, err := h.services.ListActive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"services": items})
}

// GetBySlug GET /api/v1/services/:slug
func (h *ServiceHandler) GetBySlug(c *gin.Context) {
	svc, err := h.services.GetActiveBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"service": svc})
}

// List GET /api/v1/admin/services
func (h *ServiceHandler) List(c *gin.Context) {
	items, err := h.services.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"services": items})
}

// Get GET /api/v1/admin/services/:id
func (h *ServiceHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	svc, err := h.services.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"service": svc})
}

// Create POST /api/v1/admin/services
func (h *ServiceHandler) Create(c *gin.Context) {
	var input entities.ServiceInput
	if !bindJSON(c, &input) {
		return
	}
	svc, err := h.services.Create(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"service": svc})
}

// Update PUT /api/v1/admin/services/:id
func (h *ServiceHandler) Update(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var input entities.ServiceInput
	if !bindJSON(c, &input) {
		return
	}
	svc, err := h.services.Update(c.Request.Context(), id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"service": svc})
}

// Delete DELETE /api/v1/admin/services/:id
func (h *ServiceHandler) Delete(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.services.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Service deleted successfully")
}

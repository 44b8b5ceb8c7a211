package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"avilegal.backend/internal/domain/entities"
	"avilegal.backend/internal/interfaces/http/response"
)

type EmailTemplateService interface {
	List(ctx context.Context) ([]*entities.EmailTemplate, error)
	Get(ctx context.Context, id uuid.UUID) (*entities.EmailTemplate, error)
	Update(ctx context.Context, id uuid.UUID, input *entities.UpdateEmailTemplateInput) (*entities.EmailTemplate, error)
	Reset(ctx context.Context, id uuid.UUID) (*entities.EmailTemplate, error)
	Preview(ctx context.Context, id uuid.UUID) (*entities.EmailTemplate, error)
	SendTest(ctx context.Context, id uuid.UUID, to string) error
}

type EmailTemplateHandler struct {
	templates EmailTemplateService
}

func NewEmailTemplateHandler(templates EmailTemplateService) *EmailTemplateHandler {
	return &EmailTemplateHandler{templates: templates}
}

// List GET /api/v1/admin/email-templates
func (h *EmailTemplateHandler) List(c *gin.Context) {
	items, err := h.templates.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"templates": items})
}

// Get GET /api/v1/admin/email-templates/:id
func (h *EmailTemplateHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	tpl, err := h.templates.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"template": tpl})
}

// Update PUT /api/v1/admin/email-templates/:id
func (h *EmailTemplateHandler) Update(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var input entities.UpdateEmailTemplateInput
	if !bindJSON(c, &input) {
		return
	}
	tpl, err := h.templates.Update(c.Request.Context(), id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"template": tpl, "message": "Template updated successfully"})
}

// Reset POST /api/v1/admin/email-templates/:id/reset
func (h *EmailTemplateHandler) Reset(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	tpl, err := h.templates.Reset(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"template": tpl, "message": "Template reset to default"})
}

// Preview GET /api/v1/admin/email-templates/:id/preview
func (h *EmailTemplateHandler) Preview(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	tpl, err := h.templates.Preview(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"preview": tpl})
}

// SendTest POST /api/v1/admin/email-templates/:id/test
func (h *EmailTemplateHandler) SendTest(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var input entities.TestEmailInput
	if !bindJSON(c, &input) {
		return
	}
	if err := h.templates.SendTest(c.Request.Context(), id, input.Email); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Test email sent successfully to "+input.Email)
}

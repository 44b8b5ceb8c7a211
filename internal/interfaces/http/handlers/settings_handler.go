package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"avilegal.backend/internal/domain/entities"
	"avilegal.backend/internal/interfaces/http/response"
)

type SettingsService interface {
	List(ctx context.Context) ([]entities.Setting, error)
	Update(ctx context.Context, values map[string]string) ([]entities.Setting, error)
	Public(ctx context.Context) *entities.PublicSettings
	SendTestEmail(ctx context.Context, to string) error
}

type SettingsHandler struct {
	settings SettingsService
}

func NewSettingsHandler(settings SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Public GET /api/v1/settings/public
func (h *SettingsHandler) Public(c *gin.Context) {
	response.Success(c, http.StatusOK, h.settings.Public(c.Request.Context()))
}

// List GET /api/v1/admin/settings
func (h *SettingsHandler) List(c *gin.Context) {
	items, err := h.settings.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"settings": items})
}

// Update PUT /api/v1/admin/settings
// Masked secret values are ignored so the admin form can be resubmitted as-is.
func (h *SettingsHandler) Update(c *gin.Context) {
	var input entities.UpdateSettingsInput
	if !bindJSON(c, &input) {
		return
	}
	items, err := h.settings.Update(c.Request.Context(), input.Settings)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"settings": items, "message": "Settings updated successfully"})
}

// SendTestEmail POST /api/v1/admin/settings/test-email
func (h *SettingsHandler) SendTestEmail(c *gin.Context) {
	var input entities.TestEmailInput
	if !bindJSON(c, &input) {
		return
	}
	if err := h.settings.SendTestEmail(c.Request.Context(), input.Email); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Test email sent successfully to "+input.Email)
}

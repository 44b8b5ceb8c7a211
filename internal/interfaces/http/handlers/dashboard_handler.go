package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"avilegal.backend/internal/domain/entities"
	"avilegal.backend/internal/interfaces/http/response"
)

type DashboardService interface {
	CustomerStats(ctx context.Context, userID uuid.UUID) (*entities.CustomerDashboardStats, error)
	AdminStats(ctx context.Context) (*entities.AdminDashboardStats, error)
}

type DashboardHandler struct {
	dashboard DashboardService
}

func NewDashboardHandler(dashboard DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// CustomerStats GET /api/v1/customer/dashboard/stats
func (h *DashboardHandler) CustomerStats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	stats, err := h.dashboard.CustomerStats(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

// AdminStats GET /api/v1/admin/dashboard/stats
func (h *DashboardHandler) AdminStats(c *gin.Context) {
	stats, err := h.dashboard.AdminStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

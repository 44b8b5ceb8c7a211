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

type PaymentService interface {
	Config(ctx context.Context) *entities.PaymentPublicConfig
	Initialize(ctx context.Context, userID uuid.UUID, input *entities.InitializePaymentInput) (*entities.InitializePaymentResult, error)
	Verify(ctx context.Context, userID uuid.UUID, reference string) (*entities.VerifyPaymentResult, error)
	History(ctx context.Context, userID uuid.UUID, page utils.PaginationParams) (utils.Page[*entities.Payment], error)
	AdminList(ctx context.Context, filter entities.PaymentFilter, page utils.PaginationParams) (utils.Page[*entities.Payment], error)
}

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	paymentUsecase PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentUsecase PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentUsecase: paymentUsecase}
}

// Config returns the public gateway keys
// GET /api/v1/customer/payments/config
func (h *PaymentHandler) Config(c *gin.Context) {
	response.Success(c, http.StatusOK, h.paymentUsecase.Config(c.Request.Context()))
}

// Initialize starts checkout for a new or unpaid application
// POST /api/v1/customer/payments/initialize
func (h *PaymentHandler) Initialize(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var input entities.InitializePaymentInput
	if !bindJSON(c, &input) {
		return
	}

	result, err := h.paymentUsecase.Initialize(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

// Verify confirms one of the caller's payments with its gateway. A payment
// the gateway did not confirm is answered with 400.
// POST /api/v1/customer/payments/verify
func (h *PaymentHandler) Verify(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var input entities.VerifyPaymentInput
	if !bindJSON(c, &input) {
		return
	}

	result, err := h.paymentUsecase.Verify(c.Request.Context(), userID, input.Reference)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !result.Success {
		response.Success(c, http.StatusBadRequest, result)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// History lists the caller's payments
// GET /api/v1/customer/payments/history
func (h *PaymentHandler) History(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	page, err := h.paymentUsecase.History(c.Request.Context(), userID, pagination(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, page)
}

// AdminList lists all payments
// GET /api/v1/admin/payments?status=&gateway=&userId=
func (h *PaymentHandler) AdminList(c *gin.Context) {
	userID, ok := optionalUUIDQuery(c, "userId")
	if !ok {
		return
	}
	filter := entities.PaymentFilter{
		UserID:  userID,
		Status:  entities.PaymentStatus(c.Query("status")),
		Gateway: c.Query("gateway"),
	}
	page, err := h.paymentUsecase.AdminList(c.Request.Context(), filter, pagination(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, page)
}

package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"dvlottery.backend/internal/domain/entities"
	"dvlottery.backend/internal/interfaces/http/response"
	"dvlottery.backend/internal/usecases"
)

type paymentService interface {
	CreateCheckout(ctx context.Context, userID uuid.UUID, pkg entities.PackageType) (string, error)
	ConfirmFromRedirect(ctx context.Context, userID uuid.UUID, sessionID string) (*entities.ReconcileResult, error)
	CancelCheckout(ctx context.Context, userID uuid.UUID, sessionID string) (*entities.CancelResult, error)
}

// PaymentHandler handles the hosted-checkout flow
type PaymentHandler struct {
	service paymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentUsecase *usecases.PaymentUsecase) *PaymentHandler {
	return &PaymentHandler{service: paymentUsecase}
}

// CreateCheckout opens a checkout session for the applicant's package
// POST /api/checkout
func (h *PaymentHandler) CreateCheckout(c *gin.Context) {
	var input entities.CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}
	if !checkClaimedSubject(c, input.UserID) {
		return
	}

	url, err := h.service.CreateCheckout(c.Request.Context(), input.UserID, input.PackageType)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"url": url})
}

// PaymentSuccess reconciles a checkout after the provider redirects back
// POST /api/payment-success
func (h *PaymentHandler) PaymentSuccess(c *gin.Context) {
	var input entities.PaymentRedirectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}
	if !checkClaimedSubject(c, input.UserID) {
		return
	}

	result, err := h.service.ConfirmFromRedirect(c.Request.Context(), input.UserID, input.SessionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"success":     true,
		"duplicate":   result.Duplicate,
		"transaction": result.Transaction,
	})
}

// PaymentCancelled records an abandoned checkout
// POST /api/payment-cancelled
func (h *PaymentHandler) PaymentCancelled(c *gin.Context) {
	var input entities.PaymentRedirectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}
	if !checkClaimedSubject(c, input.UserID) {
		return
	}

	result, err := h.service.CancelCheckout(c.Request.Context(), input.UserID, input.SessionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"success": true, "notice": result.Notice})
}

package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dvlottery.backend/internal/domain/entities"
	domainerrors "dvlottery.backend/internal/domain/errors"
	"dvlottery.backend/internal/infrastructure/payment"
	"dvlottery.backend/internal/interfaces/http/response"
	"dvlottery.backend/internal/usecases"
	"dvlottery.backend/pkg/logger"
)

const maxWebhookBodyBytes = 1 << 20

type webhookVerifier interface {
	Verify(body []byte) (*entities.WebhookEvent, error)
}

type webhookService interface {
	HandleWebhook(ctx context.Context, event *entities.WebhookEvent) error
}

// WebhookHandler handles payment-provider callbacks
type WebhookHandler struct {
	verifier webhookVerifier
	service  webhookService
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(verifier *payment.WebhookVerifier, paymentUsecase *usecases.PaymentUsecase) *WebhookHandler {
	return &WebhookHandler{verifier: verifier, service: paymentUsecase}
}

// HandlePaymentWebhook verifies a signed provider event and reconciles it
// POST /api/webhooks/payment
func (h *WebhookHandler) HandlePaymentWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("unreadable webhook body"))
		return
	}

	event, err := h.verifier.Verify(body)
	if err != nil {
		logger.Warn(c.Request.Context(), "rejected payment webhook", zap.Error(err))
		if errors.Is(err, domainerrors.ErrInvalidSignature) {
			response.Error(c, err)
			return
		}
		response.Error(c, domainerrors.BadRequest("invalid webhook payload"))
		return
	}

	if err := h.service.HandleWebhook(c.Request.Context(), event); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"received": true})
}

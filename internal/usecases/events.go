package usecases

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dvlottery.backend/pkg/logger"
)

// Event subjects published on the event bus
const (
	EventUserRegistered     = "user.registered"
	EventUserVerified       = "user.verified"
	EventPaymentCompleted   = "payment.completed"
	EventApplicationUpdated = "application.updated"
)

// UserEvent is the payload of user lifecycle events
type UserEvent struct {
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email,omitempty"`
}

// PaymentEvent is the payload of payment.completed
type PaymentEvent struct {
	UserID      uuid.UUID `json:"userId"`
	SessionID   string    `json:"sessionId"`
	PackageType string    `json:"packageType"`
	Amount      string    `json:"amount"`
	Currency    string    `json:"currency"`
}

// ApplicationEvent is the payload of application.updated
type ApplicationEvent struct {
	ApplicationID uuid.UUID `json:"applicationId"`
	UserID        uuid.UUID `json:"userId"`
	Progress      string    `json:"progress"`
	Status        string    `json:"status"`
}

// publish is fire-and-forget; a bus outage never fails the request
func publish(ctx context.Context, p EventPublisher, subject string, payload interface{}) {
	if err := p.Publish(ctx, subject, payload); err != nil {
		logger.Warn(ctx, "Failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}

func orNoopPublisher(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}

func orNoopMetrics(m Metrics) Metrics {
	if m == nil {
		return noopMetrics{}
	}
	return m
}

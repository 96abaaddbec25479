package usecases

import (
	"context"
	"io"
	"time"

	"dvlottery.backend/internal/domain/entities"
	redispkg "dvlottery.backend/pkg/redis"
)

// EmailSender delivers one message and returns the transport's delivery id
type EmailSender interface {
	Send(ctx context.Context, msg entities.EmailMessage) (string, error)
}

// CheckoutProvider is the hosted checkout collaborator
type CheckoutProvider interface {
	CreateCheckoutSession(ctx context.Context, req entities.CheckoutSessionRequest) (*entities.CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*entities.CheckoutSession, error)
}

// PhotoStorage persists applicant photos
type PhotoStorage interface {
	Upload(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error)
}

// EventPublisher emits domain events
type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload interface{}) error
}

// SessionStore keeps server-side login sessions
type SessionStore interface {
	CreateSession(ctx context.Context, sessionID string, data *redispkg.SessionData, expiration time.Duration) error
	GetSession(ctx context.Context, sessionID string) (*redispkg.SessionData, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// Cooldown grants a key at most once per ttl
type Cooldown interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Metrics counts business events
type Metrics interface {
	CodeIssued()
	EmailFailed(kind string)
	PaymentReconciled(pkg string, duplicate bool)
	CheckoutCancelled()
}

type noopMetrics struct{}

func (noopMetrics) CodeIssued() {}

func (noopMetrics) EmailFailed(string) {}

func (noopMetrics) PaymentReconciled(string, bool) {}

func (noopMetrics) CheckoutCancelled() {}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, interface{}) error { return nil }

package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"dvlottery.backend/internal/domain/entities"
)

// UserRepository defines user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdatePackage(ctx context.Context, id uuid.UUID, pkg entities.PackageType) error
	MarkVerified(ctx context.Context, id uuid.UUID) error
	MarkPaymentCompleted(ctx context.Context, id uuid.UUID, customerID string) error
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	Counts(ctx context.Context) (total, verified, paid int64, err error)
}

// VerificationCodeRepository defines verification code operations
type VerificationCodeRepository interface {
	Create(ctx context.Context, code *entities.VerificationCode) error
	FindByUserAndCode(ctx context.Context, userID uuid.UUID, code string) (*entities.VerificationCode, error)
	// DeleteByID returns ErrNotFound when the row was already consumed
	DeleteByID(ctx context.Context, id uuid.UUID) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// PasswordResetTokenRepository defines reset token operations
type PasswordResetTokenRepository interface {
	Create(ctx context.Context, token *entities.PasswordResetToken) error
	// FindValidByHash only returns tokens with expires_at > now
	FindValidByHash(ctx context.Context, tokenHash string, now time.Time) (*entities.PasswordResetToken, error)
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

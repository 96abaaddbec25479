package usecases

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"dvlottery.backend/internal/domain/entities"
	domainerrors "dvlottery.backend/internal/domain/errors"
	"dvlottery.backend/internal/domain/repositories"
	"dvlottery.backend/pkg/crypto"
	"dvlottery.backend/pkg/logger"
)

const resendCooldownPrefix = "verification:resend:"

var generateVerificationCode = crypto.GenerateVerificationCode

// VerificationUsecase issues and redeems email verification codes
type VerificationUsecase struct {
	uow            repositories.UnitOfWork
	userRepo       repositories.UserRepository
	codeRepo       repositories.VerificationCodeRepository
	composer       *mailComposer
	sender         EmailSender
	cooldown       Cooldown
	metrics        Metrics
	events         EventPublisher
	codeTTL        time.Duration
	resendCooldown time.Duration
	now            func() time.Time
}

// VerificationConfig holds the code lifetime and resend window
type VerificationConfig struct {
	CodeTTL        time.Duration
	ResendCooldown time.Duration
}

// NewVerificationUsecase creates a new verification usecase
func NewVerificationUsecase(
	uow repositories.UnitOfWork,
	userRepo repositories.UserRepository,
	codeRepo repositories.VerificationCodeRepository,
	templateRepo repositories.EmailTemplateRepository,
	sender EmailSender,
	cooldown Cooldown,
	metrics Metrics,
	events EventPublisher,
	cfg VerificationConfig,
) *VerificationUsecase {
	if cfg.CodeTTL <= 0 {
		cfg.CodeTTL = 15 * time.Minute
	}
	return &VerificationUsecase{
		uow:            uow,
		userRepo:       userRepo,
		codeRepo:       codeRepo,
		composer:       &mailComposer{templates: templateRepo},
		sender:         sender,
		cooldown:       cooldown,
		metrics:        orNoopMetrics(metrics),
		events:         orNoopPublisher(events),
		codeTTL:        cfg.CodeTTL,
		resendCooldown: cfg.ResendCooldown,
		now:            time.Now,
	}
}

// Issue replaces the user's outstanding codes with a fresh one and emails it.
// A failed send leaves the code issued with Delivered=false.
func (u *VerificationUsecase) Issue(ctx context.Context, userID uuid.UUID) (*entities.IssuedCode, error) {
	ctx, span := otel.Tracer("dvlottery/usecases").Start(ctx, "VerificationUsecase.Issue")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID.String()))

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	code, err := generateVerificationCode()
	if err != nil {
		return nil, fmt.Errorf("generate verification code: %w", err)
	}
	record := &entities.VerificationCode{
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: u.now().Add(u.codeTTL),
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.codeRepo.DeleteByUserID(txCtx, user.ID); err != nil {
			return err
		}
		return u.codeRepo.Create(txCtx, record)
	})
	if err != nil {
		return nil, err
	}
	u.metrics.CodeIssued()

	issued := &entities.IssuedCode{Code: code, ExpiresAt: record.ExpiresAt}
	issued.Delivered = u.deliver(ctx, user, code)
	span.SetAttributes(attribute.Bool("email.delivered", issued.Delivered))
	return issued, nil
}

func (u *VerificationUsecase) deliver(ctx context.Context, user *entities.User, code string) bool {
	msg, err := u.composer.compose(ctx, entities.TemplateVerificationCode, user.Email, map[string]string{
		"Name":             user.Name,
		"Code":             code,
		"ExpiresInMinutes": strconv.Itoa(int(u.codeTTL.Minutes())),
	})
	if err == nil {
		_, err = u.sender.Send(ctx, msg)
	}
	if err != nil {
		u.metrics.EmailFailed("verification")
		logger.Error(ctx, "Verification email not delivered", zap.String("userId", user.ID.String()), zap.Error(err))
		return false
	}
	return true
}

// Verify redeems a code. Wrong and already consumed codes are indistinguishable.
func (u *VerificationUsecase) Verify(ctx context.Context, userID uuid.UUID, code string) error {
	ctx, span := otel.Tracer("dvlottery/usecases").Start(ctx, "VerificationUsecase.Verify")
	defer span.End()

	record, err := u.codeRepo.FindByUserAndCode(ctx, userID, code)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return fmt.Errorf("%w: %w", domainerrors.ErrInvalidCode, domainerrors.ErrNotFound)
		}
		return err
	}

	if record.IsExpired(u.now()) {
		if err := u.codeRepo.DeleteByID(ctx, record.ID); err != nil && !errors.Is(err, domainerrors.ErrNotFound) {
			logger.Warn(ctx, "Failed to delete expired verification code", zap.Error(err))
		}
		return domainerrors.ErrCodeExpired
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.codeRepo.DeleteByID(txCtx, record.ID); err != nil {
			if errors.Is(err, domainerrors.ErrNotFound) {
				return fmt.Errorf("%w: %w", domainerrors.ErrInvalidCode, domainerrors.ErrNotFound)
			}
			return err
		}
		return u.userRepo.MarkVerified(txCtx, userID)
	})
	if err != nil {
		return err
	}

	publish(ctx, u.events, EventUserVerified, UserEvent{UserID: userID})
	return nil
}

// Resend issues a new code, at most once per cooldown window per user
func (u *VerificationUsecase) Resend(ctx context.Context, userID uuid.UUID) (*entities.IssuedCode, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsVerified {
		return nil, domainerrors.ErrAlreadyVerified
	}

	if u.cooldown != nil && u.resendCooldown > 0 {
		ok, err := u.cooldown.Acquire(ctx, resendCooldownPrefix+userID.String(), u.resendCooldown)
		switch {
		case err != nil:
			logger.Warn(ctx, "Resend cooldown unavailable, allowing resend", zap.Error(err))
		case !ok:
			return nil, domainerrors.ErrTooManyRequests
		}
	}

	return u.Issue(ctx, userID)
}

package usecases

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"dvlottery.backend/internal/domain/entities"
	domainerrors "dvlottery.backend/internal/domain/errors"
	"dvlottery.backend/internal/domain/repositories"
	"dvlottery.backend/pkg/crypto"
	"dvlottery.backend/pkg/logger"
)

const minPasswordLength = 8

var generateResetToken = crypto.GenerateResetToken

// PasswordResetUsecase issues and redeems password reset tokens. Only the digest is stored.
type PasswordResetUsecase struct {
	uow         repositories.UnitOfWork
	userRepo    repositories.UserRepository
	tokenRepo   repositories.PasswordResetTokenRepository
	composer    *mailComposer
	sender      EmailSender
	metrics     Metrics
	tokenTTL    time.Duration
	frontendURL string
	now         func() time.Time
}

func NewPasswordResetUsecase(
	uow repositories.UnitOfWork,
	userRepo repositories.UserRepository,
	tokenRepo repositories.PasswordResetTokenRepository,
	templateRepo repositories.EmailTemplateRepository,
	sender EmailSender,
	metrics Metrics,
	tokenTTL time.Duration,
	frontendURL string,
) *PasswordResetUsecase {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &PasswordResetUsecase{
		uow:         uow,
		userRepo:    userRepo,
		tokenRepo:   tokenRepo,
		composer:    &mailComposer{templates: templateRepo},
		sender:      sender,
		metrics:     orNoopMetrics(metrics),
		tokenTTL:    tokenTTL,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		now:         time.Now,
	}
}

// RequestReset never reveals whether the email belongs to an account
func (u *PasswordResetUsecase) RequestReset(ctx context.Context, email string) error {
	user, err := u.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil
		}
		return err
	}

	token, err := u.issue(ctx, user)
	if err != nil {
		return err
	}

	msg, err := u.composer.compose(ctx, entities.TemplatePasswordReset, user.Email, map[string]string{
		"Name":             user.Name,
		"ResetLink":        u.frontendURL + "/reset-password?token=" + url.QueryEscape(token),
		"ExpiresInMinutes": strconv.Itoa(int(u.tokenTTL.Minutes())),
	})
	if err == nil {
		_, err = u.sender.Send(ctx, msg)
	}
	if err != nil {
		u.metrics.EmailFailed("password_reset")
		logger.Error(ctx, "Password reset email not delivered", zap.String("userId", user.ID.String()), zap.Error(err))
	}
	return nil
}

// issue replaces every outstanding token of the user and returns the raw new one
func (u *PasswordResetUsecase) issue(ctx context.Context, user *entities.User) (string, error) {
	token, err := generateResetToken()
	if err != nil {
		return "", err
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.tokenRepo.DeleteByUserID(txCtx, user.ID); err != nil {
			return err
		}
		return u.tokenRepo.Create(txCtx, &entities.PasswordResetToken{
			UserID:    user.ID,
			TokenHash: crypto.HashToken(token),
			ExpiresAt: u.now().Add(u.tokenTTL),
		})
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// ResetPassword redeems a token. Wrong, expired and used tokens are indistinguishable.
func (u *PasswordResetUsecase) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return domainerrors.ErrInvalidInput
	}

	record, err := u.tokenRepo.FindValidByHash(ctx, crypto.HashToken(token), u.now())
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.ErrInvalidResetToken
		}
		return err
	}

	passwordHash, err := crypto.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.userRepo.UpdatePassword(txCtx, record.UserID, passwordHash); err != nil {
			return err
		}
		return u.tokenRepo.DeleteByUserID(txCtx, record.UserID)
	})
}

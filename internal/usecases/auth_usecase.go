package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dvlottery.backend/internal/domain/entities"
	domainerrors "dvlottery.backend/internal/domain/errors"
	"dvlottery.backend/internal/domain/repositories"
	"dvlottery.backend/pkg/crypto"
	"dvlottery.backend/pkg/jwt"
	"dvlottery.backend/pkg/logger"
	redispkg "dvlottery.backend/pkg/redis"
)

var newSessionID = func() string { return uuid.NewString() }

// AuthUsecase handles applicant registration and authentication
type AuthUsecase struct {
	uow          repositories.UnitOfWork
	userRepo     repositories.UserRepository
	appRepo      repositories.ApplicationRepository
	verification *VerificationUsecase
	jwtService   *jwt.JWTService
	sessions     SessionStore
	events       EventPublisher
	exposeCode   bool
	now          func() time.Time
}

// NewAuthUsecase creates a new auth usecase. sessions may be nil when redis sessions are disabled.
func NewAuthUsecase(
	uow repositories.UnitOfWork,
	userRepo repositories.UserRepository,
	appRepo repositories.ApplicationRepository,
	verification *VerificationUsecase,
	jwtService *jwt.JWTService,
	sessions SessionStore,
	events EventPublisher,
	exposeCodeOnEmailFailure bool,
) *AuthUsecase {
	return &AuthUsecase{
		uow:          uow,
		userRepo:     userRepo,
		appRepo:      appRepo,
		verification: verification,
		jwtService:   jwtService,
		sessions:     sessions,
		events:       orNoopPublisher(events),
		exposeCode:   exposeCodeOnEmailFailure,
		now:          time.Now,
	}
}

// Register creates the user and its application, then issues a verification code
func (u *AuthUsecase) Register(ctx context.Context, input *entities.RegisterInput) (*entities.RegisterResult, error) {
	if !input.PackageType.IsValid() {
		return nil, domainerrors.ErrInvalidInput
	}
	email := strings.TrimSpace(input.Email)

	_, err := u.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, domainerrors.ErrAlreadyExists
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	passwordHash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Name:          strings.TrimSpace(input.Name),
		Email:         email,
		PasswordHash:  passwordHash,
		PackageType:   input.PackageType,
		PaymentStatus: entities.PaymentStatusPending,
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.userRepo.Create(txCtx, user); err != nil {
			return err
		}
		return u.appRepo.Create(txCtx, entities.NewApplication(user.ID))
	})
	if err != nil {
		return nil, err
	}

	issued, err := u.verification.Issue(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue verification code: %w", err)
	}

	publish(ctx, u.events, EventUserRegistered, UserEvent{UserID: user.ID, Email: user.Email})

	return &entities.RegisterResult{
		UserID:    user.ID,
		Delivered: issued.Delivered,
		DevCode:   u.fallbackCode(ctx, user.ID, issued),
	}, nil
}

// ResendCode reissues a verification code under the resend cooldown.
// A failed delivery falls back to the response exactly as in Register.
func (u *AuthUsecase) ResendCode(ctx context.Context, userID uuid.UUID) (*entities.ResendResult, error) {
	issued, err := u.verification.Resend(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &entities.ResendResult{
		Success:   true,
		Delivered: issued.Delivered,
		DevCode:   u.fallbackCode(ctx, userID, issued),
	}, nil
}

// fallbackCode is the code to hand back when email delivery failed and exposure is enabled
func (u *AuthUsecase) fallbackCode(ctx context.Context, userID uuid.UUID, issued *entities.IssuedCode) string {
	if issued.Delivered || !u.exposeCode {
		return ""
	}
	logger.Warn(ctx, "Exposing verification code in response after failed delivery", zap.String("userId", userID.String()))
	return issued.Code
}

// Login authenticates a verified user and returns tokens or a session id
func (u *AuthUsecase) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	user, err := u.userRepo.GetByEmail(ctx, strings.TrimSpace(input.Email))
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !crypto.CheckPassword(input.Password, user.PasswordHash) {
		return nil, domainerrors.ErrInvalidCredentials
	}
	if !user.IsVerified {
		return nil, domainerrors.ErrEmailNotVerified
	}

	tokenPair, err := u.jwtService.GenerateTokenPair(user.ID, user.Email, jwt.RoleUser)
	if err != nil {
		return nil, err
	}

	if err := u.userRepo.TouchLastLogin(ctx, user.ID, u.now()); err != nil {
		logger.Warn(ctx, "Failed to record last login", zap.Error(err))
	}

	if input.UseSession && u.sessions != nil {
		sessionID := newSessionID()
		err := u.sessions.CreateSession(ctx, sessionID, &redispkg.SessionData{
			SubjectID:    user.ID.String(),
			Role:         jwt.RoleUser,
			AccessToken:  tokenPair.AccessToken,
			RefreshToken: tokenPair.RefreshToken,
		}, u.jwtService.RefreshExpiry())
		if err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
		return &entities.AuthResponse{SessionID: sessionID, User: user}, nil
	}

	return &entities.AuthResponse{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		User:         user,
	}, nil
}

// RefreshToken generates new tokens from an applicant refresh token
func (u *AuthUsecase) RefreshToken(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	claims, err := u.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrUnauthorized, err)
	}
	if claims.Role != jwt.RoleUser {
		return nil, domainerrors.ErrUnauthorized
	}

	user, err := u.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrUnauthorized
		}
		return nil, err
	}

	return u.jwtService.GenerateTokenPair(user.ID, user.Email, jwt.RoleUser)
}

// Logout drops a server-side session. Token-only clients simply discard their tokens.
func (u *AuthUsecase) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" || u.sessions == nil {
		return nil
	}
	return u.sessions.DeleteSession(ctx, sessionID)
}

// GetProfile gets a user by ID
func (u *AuthUsecase) GetProfile(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	return u.userRepo.GetByID(ctx, id)
}

// UpdateProfile edits the applicant's display name
func (u *AuthUsecase) UpdateProfile(ctx context.Context, id uuid.UUID, input *entities.UpdateProfileInput) (*entities.User, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domainerrors.ErrInvalidInput
	}
	if err := u.userRepo.UpdateName(ctx, id, name); err != nil {
		return nil, err
	}
	return u.userRepo.GetByID(ctx, id)
}

package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"dvlottery.backend/internal/domain/entities"
	domainerrors "dvlottery.backend/internal/domain/errors"
	"dvlottery.backend/internal/domain/repositories"
	"dvlottery.backend/pkg/crypto"
	"dvlottery.backend/pkg/jwt"
	"dvlottery.backend/pkg/logger"
)

// AdminUsecase handles back-office authentication and reporting
type AdminUsecase struct {
	adminRepo  repositories.AdminRepository
	userRepo   repositories.UserRepository
	appRepo    repositories.ApplicationRepository
	txRepo     repositories.TransactionRepository
	jwtService *jwt.JWTService
	now        func() time.Time
}

func NewAdminUsecase(
	adminRepo repositories.AdminRepository,
	userRepo repositories.UserRepository,
	appRepo repositories.ApplicationRepository,
	txRepo repositories.TransactionRepository,
	jwtService *jwt.JWTService,
) *AdminUsecase {
	return &AdminUsecase{
		adminRepo:  adminRepo,
		userRepo:   userRepo,
		appRepo:    appRepo,
		txRepo:     txRepo,
		jwtService: jwtService,
		now:        time.Now,
	}
}

// Login authenticates an active admin
func (u *AdminUsecase) Login(ctx context.Context, input *entities.AdminLoginInput) (*entities.AdminAuthResponse, error) {
	admin, err := u.adminRepo.GetByEmail(ctx, strings.TrimSpace(input.Email))
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !admin.IsActive || !crypto.CheckPassword(input.Password, admin.PasswordHash) {
		return nil, domainerrors.ErrInvalidCredentials
	}

	pair, err := u.jwtService.GenerateTokenPair(admin.ID, admin.Email, jwt.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if err := u.adminRepo.TouchLastLogin(ctx, admin.ID, u.now()); err != nil {
		logger.Warn(ctx, "Failed to record admin login", zap.Error(err))
	}

	return &entities.AdminAuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Admin:        admin,
	}, nil
}

// RefreshToken rotates an admin token pair
func (u *AdminUsecase) RefreshToken(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	claims, err := u.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrUnauthorized, err)
	}
	if claims.Role != jwt.RoleAdmin {
		return nil, domainerrors.ErrUnauthorized
	}

	admin, err := u.adminRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrUnauthorized
		}
		return nil, err
	}
	if !admin.IsActive {
		return nil, domainerrors.ErrUnauthorized
	}
	return u.jwtService.GenerateTokenPair(admin.ID, admin.Email, jwt.RoleAdmin)
}

// Stats aggregates dashboard counters. Revenue only counts completed transactions.
func (u *AdminUsecase) Stats(ctx context.Context) (*entities.Stats, error) {
	total, verified, paid, err := u.userRepo.Counts(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := u.txRepo.RevenueByPackage(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := u.appRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	stats := &entities.Stats{
		Users:                total,
		VerifiedUsers:        verified,
		PaidUsers:            paid,
		RevenueByPackage:     make(map[entities.PackageType]string),
		ApplicationsByStatus: make(map[entities.ApplicationStatus]int64),
	}
	for _, pkg := range []entities.PackageType{entities.PackageIndividual, entities.PackageCouple, entities.PackageFamily} {
		stats.RevenueByPackage[pkg] = entities.FormatCents(revenue[pkg])
	}
	for _, status := range []entities.ApplicationStatus{
		entities.ApplicationPending,
		entities.ApplicationReviewing,
		entities.ApplicationApproved,
		entities.ApplicationRejected,
	} {
		stats.ApplicationsByStatus[status] = byStatus[status]
	}
	return stats, nil
}

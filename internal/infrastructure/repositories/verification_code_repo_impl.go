package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"dvlottery.backend/internal/domain/entities"
	domainerrors "dvlottery.backend/internal/domain/errors"
	"dvlottery.backend/internal/infrastructure/models"
	"dvlottery.backend/pkg/utils"
)

// VerificationCodeRepository implements verification code storage
type VerificationCodeRepository struct {
	db *gorm.DB
}

func NewVerificationCodeRepository(db *gorm.DB) *VerificationCodeRepository {
	return &VerificationCodeRepository{db: db}
}

func (r *VerificationCodeRepository) Create(ctx context.Context, code *entities.VerificationCode) error {
	if code.ID == uuid.Nil {
		code.ID = utils.GenerateUUIDv7()
	}
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now()
	}
	m := &models.VerificationCode{
		ID:        code.ID,
		UserID:    code.UserID,
		Code:      code.Code,
		ExpiresAt: code.ExpiresAt,
		CreatedAt: code.CreatedAt,
	}
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

// FindByUserAndCode does not filter on expiry; the caller decides what an expired match means
func (r *VerificationCodeRepository) FindByUserAndCode(ctx context.Context, userID uuid.UUID, code string) (*entities.VerificationCode, error) {
	var m models.VerificationCode
	err := GetDB(ctx, r.db).WithContext(ctx).
		Where("user_id = ? AND code = ?", userID, code).
		Order("created_at DESC").
		First(&m).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &entities.VerificationCode{
		ID:        m.ID,
		UserID:    m.UserID,
		Code:      m.Code,
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
	}, nil
}

func (r *VerificationCodeRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).Delete(&models.VerificationCode{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *VerificationCodeRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	return GetDB(ctx, r.db).WithContext(ctx).Where("user_id = ?", userID).Delete(&models.VerificationCode{}).Error
}

func (r *VerificationCodeRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := GetDB(ctx, r.db).WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.VerificationCode{})
	return result.RowsAffected, result.Error
}

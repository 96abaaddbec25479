package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"dvlottery.backend/internal/domain/entities"
	"dvlottery.backend/internal/infrastructure/models"
	"dvlottery.backend/pkg/utils"
)

// PasswordResetTokenRepository implements reset token storage
type PasswordResetTokenRepository struct {
	db *gorm.DB
}

func NewPasswordResetTokenRepository(db *gorm.DB) *PasswordResetTokenRepository {
	return &PasswordResetTokenRepository{db: db}
}

func (r *PasswordResetTokenRepository) Create(ctx context.Context, token *entities.PasswordResetToken) error {
	if token.ID == uuid.Nil {
		token.ID = utils.GenerateUUIDv7()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}
	m := &models.PasswordResetToken{
		ID:        token.ID,
		UserID:    token.UserID,
		TokenHash: token.TokenHash,
		ExpiresAt: token.ExpiresAt,
		CreatedAt: token.CreatedAt,
	}
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

func (r *PasswordResetTokenRepository) FindValidByHash(ctx context.Context, tokenHash string, now time.Time) (*entities.PasswordResetToken, error) {
	var m models.PasswordResetToken
	err := GetDB(ctx, r.db).WithContext(ctx).
		Where("token_hash = ? AND expires_at > ?", tokenHash, now).
		First(&m).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &entities.PasswordResetToken{
		ID:        m.ID,
		UserID:    m.UserID,
		TokenHash: m.TokenHash,
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
	}, nil
}

func (r *PasswordResetTokenRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	return GetDB(ctx, r.db).WithContext(ctx).Where("user_id = ?", userID).Delete(&models.PasswordResetToken{}).Error
}

func (r *PasswordResetTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := GetDB(ctx, r.db).WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.PasswordResetToken{})
	return result.RowsAffected, result.Error
}

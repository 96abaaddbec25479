package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"dvlottery.backend/internal/domain/entities"
	domainerrors "dvlottery.backend/internal/domain/errors"
	"dvlottery.backend/internal/infrastructure/models"
	"dvlottery.backend/pkg/utils"
)

// AdminRepository implements admin account storage
type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) Create(ctx context.Context, admin *entities.Admin) error {
	if admin.ID == uuid.Nil {
		admin.ID = utils.GenerateUUIDv7()
	}
	now := time.Now()
	admin.CreatedAt = now
	admin.UpdatedAt = now

	m := &models.Admin{
		ID:           admin.ID,
		Email:        admin.Email,
		Name:         admin.Name,
		PasswordHash: admin.PasswordHash,
		IsActive:     admin.IsActive,
		LastLoginAt:  admin.LastLoginAt.Ptr(),
		CreatedAt:    admin.CreatedAt,
		UpdatedAt:    admin.UpdatedAt,
	}
	if err := GetDB(ctx, r.db).WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *AdminRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Admin, error) {
	var m models.Admin
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return r.toEntity(&m), nil
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*entities.Admin, error) {
	var m models.Admin
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return r.toEntity(&m), nil
}

func (r *AdminRepository) Update(ctx context.Context, admin *entities.Admin) error {
	admin.UpdatedAt = time.Now()
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Admin{}).
		Where("id = ?", admin.ID).
		Updates(map[string]interface{}{
			"name":          admin.Name,
			"password_hash": admin.PasswordHash,
			"is_active":     admin.IsActive,
			"updated_at":    admin.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *AdminRepository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Admin{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"last_login_at": at, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *AdminRepository) toEntity(m *models.Admin) *entities.Admin {
	return &entities.Admin{
		ID:           m.ID,
		Email:        m.Email,
		Name:         m.Name,
		PasswordHash: m.PasswordHash,
		IsActive:     m.IsActive,
		LastLoginAt:  null.TimeFromPtr(m.LastLoginAt),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

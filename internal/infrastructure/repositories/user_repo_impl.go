package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"dvlottery.backend/internal/domain/entities"
	domainerrors "dvlottery.backend/internal/domain/errors"
	"dvlottery.backend/internal/infrastructure/models"
	"dvlottery.backend/pkg/utils"
)

// UserRepository implements user data operations
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user. A taken email yields ErrAlreadyExists.
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	if user.ID == uuid.Nil {
		user.ID = utils.GenerateUUIDv7()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	if user.PaymentStatus == "" {
		user.PaymentStatus = entities.PaymentStatusPending
	}

	m := r.toModel(user)
	if err := GetDB(ctx, r.db).WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByID gets a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	var m models.User
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return r.toEntity(&m), nil
}

// GetByEmail gets a user by email, compared as stored
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	var m models.User
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return r.toEntity(&m), nil
}

func (r *UserRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	return r.updateColumns(ctx, id, map[string]interface{}{"name": name})
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.updateColumns(ctx, id, map[string]interface{}{"password_hash": passwordHash})
}

func (r *UserRepository) UpdatePackage(ctx context.Context, id uuid.UUID, pkg entities.PackageType) error {
	return r.updateColumns(ctx, id, map[string]interface{}{"package_type": string(pkg)})
}

// MarkVerified sets is_verified; the flag never goes back to false
func (r *UserRepository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	return r.updateColumns(ctx, id, map[string]interface{}{"is_verified": true})
}

// MarkPaymentCompleted is idempotent: repeating it leaves the row unchanged apart from updated_at
func (r *UserRepository) MarkPaymentCompleted(ctx context.Context, id uuid.UUID, customerID string) error {
	updates := map[string]interface{}{"payment_status": string(entities.PaymentStatusCompleted)}
	if customerID != "" {
		updates["payment_customer_id"] = customerID
	}
	return r.updateColumns(ctx, id, updates)
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.updateColumns(ctx, id, map[string]interface{}{"last_login_at": at})
}

// Counts returns total, verified and paid user counts
func (r *UserRepository) Counts(ctx context.Context) (total, verified, paid int64, err error) {
	db := GetDB(ctx, r.db).WithContext(ctx)
	if err = db.Model(&models.User{}).Count(&total).Error; err != nil {
		return 0, 0, 0, fmt.Errorf("count users: %w", err)
	}
	if err = db.Model(&models.User{}).Where("is_verified = ?", true).Count(&verified).Error; err != nil {
		return 0, 0, 0, fmt.Errorf("count verified users: %w", err)
	}
	if err = db.Model(&models.User{}).Where("payment_status = ?", string(entities.PaymentStatusCompleted)).Count(&paid).Error; err != nil {
		return 0, 0, 0, fmt.Errorf("count paid users: %w", err)
	}
	return total, verified, paid, nil
}

func (r *UserRepository) updateColumns(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *UserRepository) toModel(u *entities.User) *models.User {
	return &models.User{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		PasswordHash:      u.PasswordHash,
		IsVerified:        u.IsVerified,
		PackageType:       string(u.PackageType),
		PaymentStatus:     string(u.PaymentStatus),
		PaymentCustomerID: u.PaymentCustomerID.Ptr(),
		LastLoginAt:       u.LastLoginAt.Ptr(),
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func (r *UserRepository) toEntity(m *models.User) *entities.User {
	return &entities.User{
		ID:                m.ID,
		Name:              m.Name,
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		IsVerified:        m.IsVerified,
		PackageType:       entities.PackageType(m.PackageType),
		PaymentStatus:     entities.PaymentStatus(m.PaymentStatus),
		PaymentCustomerID: null.StringFromPtr(m.PaymentCustomerID),
		LastLoginAt:       null.TimeFromPtr(m.LastLoginAt),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

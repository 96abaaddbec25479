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

// TransactionRepository implements payment transaction storage.
// external_ref carries a unique index; it is the reconciliation idempotency key.
type TransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *entities.Transaction) error {
	if tx.ID == uuid.Nil {
		tx.ID = utils.GenerateUUIDv7()
	}
	now := time.Now()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = now
	}
	tx.UpdatedAt = now

	m := &models.Transaction{
		ID:          tx.ID,
		UserID:      tx.UserID,
		AmountCents: tx.AmountCents,
		Currency:    tx.Currency,
		PackageType: string(tx.PackageType),
		Status:      string(tx.Status),
		ExternalRef: tx.ExternalRef,
		CreatedAt:   tx.CreatedAt,
		UpdatedAt:   tx.UpdatedAt,
	}
	if err := GetDB(ctx, r.db).WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *TransactionRepository) GetByExternalRef(ctx context.Context, externalRef string) (*entities.Transaction, error) {
	var m models.Transaction
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("external_ref = ?", externalRef).First(&m).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return r.toEntity(&m), nil
}

func (r *TransactionRepository) CompletePending(ctx context.Context, externalRef string) (bool, error) {
	return r.settlePending(ctx, externalRef, entities.TransactionCompleted)
}

func (r *TransactionRepository) FailPending(ctx context.Context, externalRef string) (bool, error) {
	return r.settlePending(ctx, externalRef, entities.TransactionFailed)
}

// settlePending is a conditional UPDATE; of two racing callers only one sees a row change
func (r *TransactionRepository) settlePending(ctx context.Context, externalRef string, status entities.TransactionStatus) (bool, error) {
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Transaction{}).
		Where("external_ref = ? AND status = ?", externalRef, string(entities.TransactionPending)).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// RevenueByPackage sums completed transactions per package, in minor units
func (r *TransactionRepository) RevenueByPackage(ctx context.Context) (map[entities.PackageType]int64, error) {
	var rows []struct {
		PackageType string
		Total       int64
	}
	err := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Transaction{}).
		Select("package_type, COALESCE(SUM(amount_cents), 0) AS total").
		Where("status = ?", string(entities.TransactionCompleted)).
		Group("package_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	revenue := make(map[entities.PackageType]int64, len(rows))
	for _, row := range rows {
		revenue[entities.PackageType(row.PackageType)] = row.Total
	}
	return revenue, nil
}

func (r *TransactionRepository) toEntity(m *models.Transaction) *entities.Transaction {
	return &entities.Transaction{
		ID:          m.ID,
		UserID:      m.UserID,
		AmountCents: m.AmountCents,
		Currency:    m.Currency,
		PackageType: entities.PackageType(m.PackageType),
		Status:      entities.TransactionStatus(m.Status),
		ExternalRef: m.ExternalRef,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

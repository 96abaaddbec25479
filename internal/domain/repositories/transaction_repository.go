package repositories

import (
	"context"

	"dvlottery.backend/internal/domain/entities"
)

// TransactionRepository defines payment transaction operations
type TransactionRepository interface {
	// Create returns ErrAlreadyExists when external_ref is taken
	Create(ctx context.Context, tx *entities.Transaction) error
	GetByExternalRef(ctx context.Context, externalRef string) (*entities.Transaction, error)
	// CompletePending moves a pending row to completed; false when no pending row matched
	CompletePending(ctx context.Context, externalRef string) (bool, error)
	// FailPending moves a pending row to failed; false when no pending row matched
	FailPending(ctx context.Context, externalRef string) (bool, error)
	RevenueByPackage(ctx context.Context) (map[entities.PackageType]int64, error)
}

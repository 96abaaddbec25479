package repositories

import (
	"context"

	"github.com/google/uuid"

	"dvlottery.backend/internal/domain/entities"
	"dvlottery.backend/pkg/utils"
)

// ApplicationRepository defines application data operations
type ApplicationRepository interface {
	Create(ctx context.Context, app *entities.Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Application, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Application, error)
	Update(ctx context.Context, app *entities.Application) error
	// SetPaymentStep is an idempotent single-column update keyed by owner
	SetPaymentStep(ctx context.Context, userID uuid.UUID, status entities.StepStatus) error
	List(ctx context.Context, filter entities.ApplicationFilter, pagination utils.PaginationParams) ([]*entities.Application, int64, error)
	CountByStatus(ctx context.Context) (map[entities.ApplicationStatus]int64, error)
}

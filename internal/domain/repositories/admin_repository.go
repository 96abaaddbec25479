package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"dvlottery.backend/internal/domain/entities"
)

// AdminRepository defines admin account operations
type AdminRepository interface {
	Create(ctx context.Context, admin *entities.Admin) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Admin, error)
	GetByEmail(ctx context.Context, email string) (*entities.Admin, error)
	Update(ctx context.Context, admin *entities.Admin) error
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

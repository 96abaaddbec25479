package repositories

import (
	"context"

	"github.com/google/uuid"

	"dvlottery.backend/internal/domain/entities"
)

// EmailTemplateRepository defines template data operations
type EmailTemplateRepository interface {
	Create(ctx context.Context, tpl *entities.EmailTemplate) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.EmailTemplate, error)
	GetByName(ctx context.Context, name string) (*entities.EmailTemplate, error)
	List(ctx context.Context) ([]*entities.EmailTemplate, error)
	Update(ctx context.Context, tpl *entities.EmailTemplate) error
	Delete(ctx context.Context, id uuid.UUID) error
}

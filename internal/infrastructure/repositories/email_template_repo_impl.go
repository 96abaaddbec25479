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

// EmailTemplateRepository implements template storage
type EmailTemplateRepository struct {
	db *gorm.DB
}

func NewEmailTemplateRepository(db *gorm.DB) *EmailTemplateRepository {
	return &EmailTemplateRepository{db: db}
}

func (r *EmailTemplateRepository) Create(ctx context.Context, tpl *entities.EmailTemplate) error {
	if tpl.ID == uuid.Nil {
		tpl.ID = utils.GenerateUUIDv7()
	}
	now := time.Now()
	tpl.CreatedAt = now
	tpl.UpdatedAt = now

	if err := GetDB(ctx, r.db).WithContext(ctx).Create(r.toModel(tpl)).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *EmailTemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.EmailTemplate, error) {
	var m models.EmailTemplate
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return r.toEntity(&m), nil
}

func (r *EmailTemplateRepository) GetByName(ctx context.Context, name string) (*entities.EmailTemplate, error) {
	var m models.EmailTemplate
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("name = ?", name).First(&m).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return r.toEntity(&m), nil
}

func (r *EmailTemplateRepository) List(ctx context.Context) ([]*entities.EmailTemplate, error) {
	var ms []models.EmailTemplate
	if err := GetDB(ctx, r.db).WithContext(ctx).Order("name ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	items := make([]*entities.EmailTemplate, 0, len(ms))
	for i := range ms {
		items = append(items, r.toEntity(&ms[i]))
	}
	return items, nil
}

func (r *EmailTemplateRepository) Update(ctx context.Context, tpl *entities.EmailTemplate) error {
	tpl.UpdatedAt = time.Now()
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.EmailTemplate{}).
		Where("id = ?", tpl.ID).
		Updates(map[string]interface{}{
			"name":       tpl.Name,
			"subject":    tpl.Subject,
			"html_body":  tpl.HTMLBody,
			"is_active":  tpl.IsActive,
			"updated_at": tpl.UpdatedAt,
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return domainerrors.ErrAlreadyExists
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *EmailTemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).Delete(&models.EmailTemplate{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *EmailTemplateRepository) toModel(t *entities.EmailTemplate) *models.EmailTemplate {
	return &models.EmailTemplate{
		ID:        t.ID,
		Name:      t.Name,
		Subject:   t.Subject,
		HTMLBody:  t.HTMLBody,
		IsActive:  t.IsActive,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func (r *EmailTemplateRepository) toEntity(m *models.EmailTemplate) *entities.EmailTemplate {
	return &entities.EmailTemplate{
		ID:        m.ID,
		Name:      m.Name,
		Subject:   m.Subject,
		HTMLBody:  m.HTMLBody,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

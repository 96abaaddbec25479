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

// ApplicationRepository implements application data operations
type ApplicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, app *entities.Application) error {
	if app.ID == uuid.Nil {
		app.ID = utils.GenerateUUIDv7()
	}
	now := time.Now()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	app.UpdatedAt = now

	if err := GetDB(ctx, r.db).WithContext(ctx).Create(r.toModel(app)).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Application, error) {
	var m models.Application
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return r.toEntity(&m), nil
}

func (r *ApplicationRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Application, error) {
	var m models.Application
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return r.toEntity(&m), nil
}

// Update writes every mutable column of the application
func (r *ApplicationRepository) Update(ctx context.Context, app *entities.Application) error {
	app.UpdatedAt = time.Now()
	updates := map[string]interface{}{
		"status":              string(app.Status),
		"registration_status": string(app.RegistrationStatus),
		"payment_status":      string(app.PaymentStatus),
		"form_status":         string(app.FormStatus),
		"photo_status":        string(app.PhotoStatus),
		"submission_status":   string(app.SubmissionStatus),
		"spouse_first_name":   app.SpouseFirstName.Ptr(),
		"spouse_last_name":    app.SpouseLastName.Ptr(),
		"children_count":      app.ChildrenCount,
		"photo_key":           app.PhotoKey.Ptr(),
		"notes":               app.Notes.Ptr(),
		"updated_at":          app.UpdatedAt,
	}
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Application{}).Where("id = ?", app.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *ApplicationRepository) SetPaymentStep(ctx context.Context, userID uuid.UUID, status entities.StepStatus) error {
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Application{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"payment_status": string(status),
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *ApplicationRepository) List(ctx context.Context, filter entities.ApplicationFilter, pagination utils.PaginationParams) ([]*entities.Application, int64, error) {
	query := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Application{})
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if pagination.Limit > 0 {
		query = query.Limit(pagination.Limit).Offset(pagination.CalculateOffset())
	}

	var ms []models.Application
	if err := query.Order("created_at DESC").Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	apps := make([]*entities.Application, 0, len(ms))
	for i := range ms {
		apps = append(apps, r.toEntity(&ms[i]))
	}
	return apps, total, nil
}

func (r *ApplicationRepository) CountByStatus(ctx context.Context) (map[entities.ApplicationStatus]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Application{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[entities.ApplicationStatus]int64, len(rows))
	for _, row := range rows {
		counts[entities.ApplicationStatus(row.Status)] = row.Count
	}
	return counts, nil
}

func (r *ApplicationRepository) toModel(a *entities.Application) *models.Application {
	return &models.Application{
		ID:                 a.ID,
		UserID:             a.UserID,
		Status:             string(a.Status),
		RegistrationStatus: string(a.RegistrationStatus),
		PaymentStatus:      string(a.PaymentStatus),
		FormStatus:         string(a.FormStatus),
		PhotoStatus:        string(a.PhotoStatus),
		SubmissionStatus:   string(a.SubmissionStatus),
		SpouseFirstName:    a.SpouseFirstName.Ptr(),
		SpouseLastName:     a.SpouseLastName.Ptr(),
		ChildrenCount:      a.ChildrenCount,
		PhotoKey:           a.PhotoKey.Ptr(),
		Notes:              a.Notes.Ptr(),
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

func (r *ApplicationRepository) toEntity(m *models.Application) *entities.Application {
	return &entities.Application{
		ID:                 m.ID,
		UserID:             m.UserID,
		Status:             entities.ApplicationStatus(m.Status),
		RegistrationStatus: entities.StepStatus(m.RegistrationStatus),
		PaymentStatus:      entities.StepStatus(m.PaymentStatus),
		FormStatus:         entities.StepStatus(m.FormStatus),
		PhotoStatus:        entities.StepStatus(m.PhotoStatus),
		SubmissionStatus:   entities.StepStatus(m.SubmissionStatus),
		SpouseFirstName:    null.StringFromPtr(m.SpouseFirstName),
		SpouseLastName:     null.StringFromPtr(m.SpouseLastName),
		ChildrenCount:      m.ChildrenCount,
		PhotoKey:           null.StringFromPtr(m.PhotoKey),
		Notes:              null.StringFromPtr(m.Notes),
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

package usecases

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"dvlottery.backend/internal/domain/entities"
	domainerrors "dvlottery.backend/internal/domain/errors"
	"dvlottery.backend/internal/domain/repositories"
	"dvlottery.backend/pkg/utils"
)

var allowedPhotoTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// PhotoUpload is one applicant photo as received from the client
type PhotoUpload struct {
	ContentType string
	Size        int64
	Reader      io.Reader
}

// ApplicationUsecase owns the application step state machine
type ApplicationUsecase struct {
	uow           repositories.UnitOfWork
	appRepo       repositories.ApplicationRepository
	userRepo      repositories.UserRepository
	storage       PhotoStorage
	events        EventPublisher
	maxPhotoBytes int64
}

// NewApplicationUsecase creates a new application usecase. storage may be nil when photo storage is not configured.
func NewApplicationUsecase(
	uow repositories.UnitOfWork,
	appRepo repositories.ApplicationRepository,
	userRepo repositories.UserRepository,
	storage PhotoStorage,
	events EventPublisher,
	maxPhotoBytes int64,
) *ApplicationUsecase {
	if maxPhotoBytes <= 0 {
		maxPhotoBytes = 5 << 20
	}
	return &ApplicationUsecase{
		uow:           uow,
		appRepo:       appRepo,
		userRepo:      userRepo,
		storage:       storage,
		events:        orNoopPublisher(events),
		maxPhotoBytes: maxPhotoBytes,
	}
}

// GetByUserID returns the applicant's application with its derived progress
func (u *ApplicationUsecase) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.ApplicationView, error) {
	app, err := u.appRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return entities.NewApplicationView(app), nil
}

// GetByID returns one application for the admin panel
func (u *ApplicationUsecase) GetByID(ctx context.Context, id uuid.UUID) (*entities.ApplicationView, error) {
	app, err := u.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return entities.NewApplicationView(app), nil
}

// UpdateForm stores the applicant's family details and completes the form step.
// Spouse fields require a couple or family package; children require family.
func (u *ApplicationUsecase) UpdateForm(ctx context.Context, userID uuid.UUID, input *entities.ApplicationFormInput) (*entities.ApplicationView, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	first := trimmedPtr(input.SpouseFirstName)
	last := trimmedPtr(input.SpouseLastName)
	if (first != nil || last != nil) && !user.PackageType.AllowsSpouse() {
		return nil, domainerrors.BadRequest("spouse details require the couple or family package")
	}
	if input.ChildrenCount < 0 {
		return nil, domainerrors.BadRequest("children count cannot be negative")
	}
	if input.ChildrenCount > 0 && !user.PackageType.AllowsChildren() {
		return nil, domainerrors.BadRequest("children require the family package")
	}

	var view *entities.ApplicationView
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		app, err := u.appRepo.GetByUserID(u.uow.WithLock(txCtx), userID)
		if err != nil {
			return err
		}
		app.SpouseFirstName = null.StringFromPtr(first)
		app.SpouseLastName = null.StringFromPtr(last)
		app.ChildrenCount = input.ChildrenCount
		app.FormStatus = entities.StepCompleted
		if err := u.appRepo.Update(txCtx, app); err != nil {
			return err
		}
		view = entities.NewApplicationView(app)
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.publishUpdated(ctx, view)
	return view, nil
}

// UploadPhoto stores the photo and moves the photo step to in_progress pending admin review
func (u *ApplicationUsecase) UploadPhoto(ctx context.Context, userID uuid.UUID, photo PhotoUpload) (*entities.ApplicationView, error) {
	if u.storage == nil {
		return nil, domainerrors.ErrServiceUnavailable
	}
	ext, ok := allowedPhotoTypes[photo.ContentType]
	if !ok {
		return nil, domainerrors.BadRequest("photo must be a JPEG or PNG image")
	}
	if photo.Size <= 0 || photo.Size > u.maxPhotoBytes {
		return nil, domainerrors.BadRequest("photo size is out of range")
	}

	app, err := u.appRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := path.Join("applications", userID.String(), "photo-"+utils.GenerateUUIDv7().String()+ext)
	if _, err := u.storage.Upload(ctx, key, photo.ContentType, photo.Reader, photo.Size); err != nil {
		return nil, domainerrors.ExternalService("photo upload failed", err)
	}

	app.PhotoKey = null.StringFrom(key)
	app.PhotoStatus = entities.StepInProgress
	if err := u.appRepo.Update(ctx, app); err != nil {
		return nil, err
	}

	view := entities.NewApplicationView(app)
	u.publishUpdated(ctx, view)
	return view, nil
}

// AdminUpdate applies a partial update. The overall status is never derived from the steps.
func (u *ApplicationUsecase) AdminUpdate(ctx context.Context, id uuid.UUID, input *entities.AdminApplicationUpdate) (*entities.ApplicationView, error) {
	if err := validateAdminUpdate(input); err != nil {
		return nil, err
	}

	var view *entities.ApplicationView
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		app, err := u.appRepo.GetByID(u.uow.WithLock(txCtx), id)
		if err != nil {
			return err
		}

		if input.Status != nil {
			app.Status = *input.Status
		}
		for field, value := range map[*entities.StepStatus]*entities.StepStatus{
			&app.RegistrationStatus: input.RegistrationStatus,
			&app.PaymentStatus:      input.PaymentStatus,
			&app.FormStatus:         input.FormStatus,
			&app.PhotoStatus:        input.PhotoStatus,
			&app.SubmissionStatus:   input.SubmissionStatus,
		} {
			if value != nil {
				*field = *value
			}
		}
		if input.Notes != nil {
			app.Notes = null.StringFromPtr(trimmedPtr(input.Notes))
		}

		if err := u.appRepo.Update(txCtx, app); err != nil {
			return err
		}
		view = entities.NewApplicationView(app)
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.publishUpdated(ctx, view)
	return view, nil
}

// List returns a page of applications for the admin panel
func (u *ApplicationUsecase) List(ctx context.Context, filter entities.ApplicationFilter, pagination utils.PaginationParams) ([]*entities.ApplicationView, utils.PaginationMeta, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, utils.PaginationMeta{}, domainerrors.ErrInvalidInput
	}

	apps, total, err := u.appRepo.List(ctx, filter, pagination)
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}

	views := make([]*entities.ApplicationView, 0, len(apps))
	for _, app := range apps {
		views = append(views, entities.NewApplicationView(app))
	}
	return views, utils.CalculateMeta(total, pagination.Page, pagination.Limit), nil
}

func (u *ApplicationUsecase) publishUpdated(ctx context.Context, view *entities.ApplicationView) {
	publish(ctx, u.events, EventApplicationUpdated, ApplicationEvent{
		ApplicationID: view.ID,
		UserID:        view.UserID,
		Progress:      string(view.Progress),
		Status:        string(view.Status),
	})
}

func validateAdminUpdate(input *entities.AdminApplicationUpdate) error {
	if input.Status != nil && !input.Status.IsValid() {
		return domainerrors.BadRequest("invalid application status")
	}
	for _, step := range []*entities.StepStatus{
		input.RegistrationStatus,
		input.PaymentStatus,
		input.FormStatus,
		input.PhotoStatus,
		input.SubmissionStatus,
	} {
		if step != nil && !step.IsValid() {
			return domainerrors.BadRequest("invalid step status")
		}
	}
	return nil
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

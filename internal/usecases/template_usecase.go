package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dvlottery.backend/internal/domain/entities"
	domainerrors "dvlottery.backend/internal/domain/errors"
	"dvlottery.backend/internal/domain/repositories"
	"dvlottery.backend/pkg/logger"
)

// TemplateUsecase manages admin email templates and sends them on demand
type TemplateUsecase struct {
	repo    repositories.EmailTemplateRepository
	sender  EmailSender
	metrics Metrics
}

func NewTemplateUsecase(repo repositories.EmailTemplateRepository, sender EmailSender, metrics Metrics) *TemplateUsecase {
	return &TemplateUsecase{repo: repo, sender: sender, metrics: orNoopMetrics(metrics)}
}

func (u *TemplateUsecase) List(ctx context.Context) ([]*entities.EmailTemplate, error) {
	return u.repo.List(ctx)
}

func (u *TemplateUsecase) Get(ctx context.Context, id uuid.UUID) (*entities.EmailTemplate, error) {
	return u.repo.GetByID(ctx, id)
}

func (u *TemplateUsecase) Create(ctx context.Context, input *entities.CreateTemplateInput) (*entities.EmailTemplate, error) {
	tpl := &entities.EmailTemplate{
		Name:     strings.TrimSpace(input.Name),
		Subject:  strings.TrimSpace(input.Subject),
		HTMLBody: input.HTMLBody,
		IsActive: true,
	}
	if input.IsActive != nil {
		tpl.IsActive = *input.IsActive
	}
	if err := checkTemplate(tpl); err != nil {
		return nil, err
	}
	if err := u.repo.Create(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

// Update applies a partial update
func (u *TemplateUsecase) Update(ctx context.Context, id uuid.UUID, input *entities.UpdateTemplateInput) (*entities.EmailTemplate, error) {
	tpl, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		tpl.Name = strings.TrimSpace(*input.Name)
	}
	if input.Subject != nil {
		tpl.Subject = strings.TrimSpace(*input.Subject)
	}
	if input.HTMLBody != nil {
		tpl.HTMLBody = *input.HTMLBody
	}
	if input.IsActive != nil {
		tpl.IsActive = *input.IsActive
	}
	if err := checkTemplate(tpl); err != nil {
		return nil, err
	}

	if err := u.repo.Update(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

func (u *TemplateUsecase) Delete(ctx context.Context, id uuid.UUID) error {
	return u.repo.Delete(ctx, id)
}

// SendEmail renders a stored template for one recipient. Unlike system emails a send failure is returned.
func (u *TemplateUsecase) SendEmail(ctx context.Context, input *entities.SendEmailInput) (string, error) {
	tpl, err := u.repo.GetByID(ctx, input.TemplateID)
	if err != nil {
		return "", err
	}
	if !tpl.IsActive {
		return "", domainerrors.ErrNotFound
	}

	msg, err := renderEmail(input.To, tpl.Subject, tpl.HTMLBody, input.Data)
	if err != nil {
		return "", domainerrors.BadRequest(fmt.Sprintf("template %q cannot be rendered", tpl.Name))
	}

	deliveryID, err := u.sender.Send(ctx, msg)
	if err != nil {
		u.metrics.EmailFailed("admin")
		logger.Error(ctx, "Admin email not delivered", zap.String("templateId", tpl.ID.String()), zap.Error(err))
		return "", fmt.Errorf("%w: %v", domainerrors.ErrEmailDelivery, err)
	}
	return deliveryID, nil
}

func checkTemplate(tpl *entities.EmailTemplate) error {
	if tpl.Name == "" || tpl.Subject == "" || strings.TrimSpace(tpl.HTMLBody) == "" {
		return domainerrors.BadRequest("name, subject and htmlBody are required")
	}
	if err := validateTemplate(tpl.Subject, tpl.HTMLBody); err != nil {
		return domainerrors.BadRequest("template does not parse: " + err.Error())
	}
	return nil
}

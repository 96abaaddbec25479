package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dvlottery.backend/internal/domain/entities"
	domainerrors "dvlottery.backend/internal/domain/errors"
)

func TestTemplateUsecase_CRUD(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	tpl, err := h.templates.Create(ctx, &entities.CreateTemplateInput{
		Name:     " welcome ",
		Subject:  "Welcome {{.Name}}",
		HTMLBody: "<p>Hi {{.Name}}</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, "welcome", tpl.Name)
	assert.True(t, tpl.IsActive)

	_, err = h.templates.Create(ctx, &entities.CreateTemplateInput{Name: "welcome", Subject: "x", HTMLBody: "y"})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)

	_, err = h.templates.Create(ctx, &entities.CreateTemplateInput{Name: "broken", Subject: "x", HTMLBody: "{{.Name"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)

	inactive := false
	updated, err := h.templates.Update(ctx, tpl.ID, &entities.UpdateTemplateInput{
		Subject:  strPtr("Hello {{.Name}}"),
		IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello {{.Name}}", updated.Subject)
	assert.Equal(t, "<p>Hi {{.Name}}</p>", updated.HTMLBody)
	assert.False(t, updated.IsActive)

	_, err = h.templates.Update(ctx, tpl.ID, &entities.UpdateTemplateInput{HTMLBody: strPtr("  ")})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)

	list, err := h.templates.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	got, err := h.templates.Get(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, "welcome", got.Name)

	require.NoError(t, h.templates.Delete(ctx, tpl.ID))
	assert.ErrorIs(t, h.templates.Delete(ctx, tpl.ID), domainerrors.ErrNotFound)
	_, err = h.templates.Update(ctx, uuid.New(), &entities.UpdateTemplateInput{})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestTemplateUsecase_SendEmail(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	tpl, err := h.templates.Create(ctx, &entities.CreateTemplateInput{
		Name:     "reminder",
		Subject:  "Reminder for {{.Name}}",
		HTMLBody: "<p>{{.Name}}, the deadline is {{.Deadline}}. {{.Missing}}</p>",
	})
	require.NoError(t, err)

	id, err := h.templates.SendEmail(ctx, &entities.SendEmailInput{
		TemplateID: tpl.ID,
		To:         "arben@example.com",
		Data:       map[string]string{"Name": "<Arben>", "Deadline": "Nov 5"},
	})
	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)

	msg := h.sender.last()
	assert.Equal(t, "arben@example.com", msg.To)
	assert.Equal(t, "Reminder for <Arben>", msg.Subject)
	assert.Equal(t, "<p>&lt;Arben&gt;, the deadline is Nov 5. </p>", msg.HTML)

	h.sender.err = errors.New("smtp down")
	_, err = h.templates.SendEmail(ctx, &entities.SendEmailInput{TemplateID: tpl.ID, To: "arben@example.com"})
	assert.ErrorIs(t, err, domainerrors.ErrEmailDelivery)
	assert.Equal(t, 1, h.metrics.failures["admin"])

	inactive := false
	_, err = h.templates.Update(ctx, tpl.ID, &entities.UpdateTemplateInput{IsActive: &inactive})
	require.NoError(t, err)
	_, err = h.templates.SendEmail(ctx, &entities.SendEmailInput{TemplateID: tpl.ID, To: "arben@example.com"})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = h.templates.SendEmail(ctx, &entities.SendEmailInput{TemplateID: uuid.New(), To: "arben@example.com"})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

package usecases

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	texttemplate "text/template"

	"dvlottery.backend/internal/domain/entities"
	domainerrors "dvlottery.backend/internal/domain/errors"
	"dvlottery.backend/internal/domain/repositories"
)

type builtinTemplate struct {
	subject string
	body    string
}

var builtinTemplates = map[string]builtinTemplate{
	entities.TemplateVerificationCode: {
		subject: "Your verification code",
		body: `<p>Hello {{.Name}},</p>
<p>Your verification code is <strong>{{.Code}}</strong>.</p>
<p>It expires in {{.ExpiresInMinutes}} minutes.</p>`,
	},
	entities.TemplatePasswordReset: {
		subject: "Reset your password",
		body: `<p>Hello {{.Name}},</p>
<p>Use the link below to choose a new password. It expires in {{.ExpiresInMinutes}} minutes.</p>
<p><a href="{{.ResetLink}}">Reset password</a></p>`,
	},
}

// mailComposer renders system emails, preferring an active stored template of the same name
type mailComposer struct {
	templates repositories.EmailTemplateRepository
}

func (c *mailComposer) compose(ctx context.Context, name, to string, data map[string]string) (entities.EmailMessage, error) {
	subject, body := "", ""
	if c.templates != nil {
		tpl, err := c.templates.GetByName(ctx, name)
		switch {
		case err == nil && tpl.IsActive:
			subject, body = tpl.Subject, tpl.HTMLBody
		case err != nil && !errors.Is(err, domainerrors.ErrNotFound):
			return entities.EmailMessage{}, err
		}
	}
	if body == "" {
		builtin, ok := builtinTemplates[name]
		if !ok {
			return entities.EmailMessage{}, fmt.Errorf("no template named %q", name)
		}
		subject, body = builtin.subject, builtin.body
	}
	return renderEmail(to, subject, body, data)
}

func renderEmail(to, subject, body string, data map[string]string) (entities.EmailMessage, error) {
	bodyTpl, err := template.New("body").Option("missingkey=zero").Parse(body)
	if err != nil {
		return entities.EmailMessage{}, fmt.Errorf("parse body: %w", err)
	}
	subjectTpl, err := texttemplate.New("subject").Option("missingkey=zero").Parse(subject)
	if err != nil {
		return entities.EmailMessage{}, fmt.Errorf("parse subject: %w", err)
	}

	var html, subj bytes.Buffer
	if err := bodyTpl.Execute(&html, data); err != nil {
		return entities.EmailMessage{}, fmt.Errorf("render body: %w", err)
	}
	if err := subjectTpl.Execute(&subj, data); err != nil {
		return entities.EmailMessage{}, fmt.Errorf("render subject: %w", err)
	}
	return entities.EmailMessage{To: to, Subject: subj.String(), HTML: html.String()}, nil
}

// validateTemplate reports whether subject and body parse
func validateTemplate(subject, body string) error {
	if _, err := template.New("body").Parse(body); err != nil {
		return err
	}
	_, err := texttemplate.New("subject").Parse(subject)
	return err
}

package entities

import (
	"time"

	"github.com/google/uuid"
)

// Reserved template names that override built-in emails when active
const (
	TemplateVerificationCode = "verification_code"
	TemplatePasswordReset    = "password_reset"
)

// EmailTemplate is an admin-managed html/template email
type EmailTemplate struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Subject   string    `json:"subject"`
	HTMLBody  string    `json:"htmlBody"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateTemplateInput represents template creation
type CreateTemplateInput struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Subject  string `json:"subject" binding:"required,max=255"`
	HTMLBody string `json:"htmlBody" binding:"required"`
	IsActive *bool  `json:"isActive"`
}

// UpdateTemplateInput represents a partial template update
type UpdateTemplateInput struct {
	Name     *string `json:"name" binding:"omitempty,min=2,max=100"`
	Subject  *string `json:"subject" binding:"omitempty,max=255"`
	HTMLBody *string `json:"htmlBody"`
	IsActive *bool   `json:"isActive"`
}

// SendEmailInput sends a stored template to one recipient
type SendEmailInput struct {
	TemplateID uuid.UUID         `json:"templateId" binding:"required"`
	To         string            `json:"to" binding:"required,email"`
	Data       map[string]string `json:"data"`
}

// EmailMessage is one outbound email
type EmailMessage struct {
	To      string
	Subject string
	HTML    string
}

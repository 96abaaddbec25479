package models

import (
	"time"

	"github.com/google/uuid"
)

type Application struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID             uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Status             string    `gorm:"type:varchar(20);not null;default:'pending';index"`
	RegistrationStatus string    `gorm:"type:varchar(20);not null;default:'completed'"`
	PaymentStatus      string    `gorm:"type:varchar(20);not null;default:'pending'"`
	FormStatus         string    `gorm:"type:varchar(20);not null;default:'pending'"`
	PhotoStatus        string    `gorm:"type:varchar(20);not null;default:'pending'"`
	SubmissionStatus   string    `gorm:"type:varchar(20);not null;default:'pending'"`
	SpouseFirstName    *string   `gorm:"type:varchar(100)"`
	SpouseLastName     *string   `gorm:"type:varchar(100)"`
	ChildrenCount      int       `gorm:"not null;default:0"`
	PhotoKey           *string   `gorm:"type:varchar(512)"`
	Notes              *string   `gorm:"type:text"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type Transaction struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index"`
	AmountCents int64     `gorm:"not null"`
	Currency    string    `gorm:"type:varchar(10);not null"`
	PackageType string    `gorm:"type:varchar(20);not null"`
	Status      string    `gorm:"type:varchar(20);not null;index"`
	ExternalRef string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type EmailTemplate struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Subject   string    `gorm:"type:varchar(255);not null"`
	HTMLBody  string    `gorm:"column:html_body;type:text;not null"`
	IsActive  bool      `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (EmailTemplate) TableName() string {
	return "email_templates"
}

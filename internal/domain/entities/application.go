package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// StepStatus is the state of one application step
type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepInProgress StepStatus = "in_progress"
	StepCompleted  StepStatus = "completed"
)

func (s StepStatus) IsValid() bool {
	switch s {
	case StepPending, StepInProgress, StepCompleted:
		return true
	}
	return false
}

// ApplicationStatus is the administrator-controlled review status
type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationReviewing ApplicationStatus = "reviewing"
	ApplicationApproved  ApplicationStatus = "approved"
	ApplicationRejected  ApplicationStatus = "rejected"
)

func (s ApplicationStatus) IsValid() bool {
	switch s {
	case ApplicationPending, ApplicationReviewing, ApplicationApproved, ApplicationRejected:
		return true
	}
	return false
}

// Step names the five tracked steps
type Step string

const (
	StepRegistration Step = "registration"
	StepPayment      Step = "payment"
	StepForm         Step = "form"
	StepPhoto        Step = "photo"
	StepSubmission   Step = "submission"
)

// Application is the case record of one applicant
type Application struct {
	ID                 uuid.UUID         `json:"id"`
	UserID             uuid.UUID         `json:"userId"`
	Status             ApplicationStatus `json:"status"`
	RegistrationStatus StepStatus        `json:"registrationStatus"`
	PaymentStatus      StepStatus        `json:"paymentStatus"`
	FormStatus         StepStatus        `json:"formStatus"`
	PhotoStatus        StepStatus        `json:"photoStatus"`
	SubmissionStatus   StepStatus        `json:"submissionStatus"`
	SpouseFirstName    null.String       `json:"spouseFirstName,omitempty"`
	SpouseLastName     null.String       `json:"spouseLastName,omitempty"`
	ChildrenCount      int               `json:"childrenCount"`
	PhotoKey           null.String       `json:"photoKey,omitempty"`
	Notes              null.String       `json:"notes,omitempty"`
	CreatedAt          time.Time         `json:"createdAt"`
	UpdatedAt          time.Time         `json:"updatedAt"`
}

// NewApplication returns the record created alongside a new user
func NewApplication(userID uuid.UUID) *Application {
	return &Application{
		UserID:             userID,
		Status:             ApplicationPending,
		RegistrationStatus: StepCompleted,
		PaymentStatus:      StepPending,
		FormStatus:         StepPending,
		PhotoStatus:        StepPending,
		SubmissionStatus:   StepPending,
	}
}

// Steps returns the five step statuses in business order
func (a *Application) Steps() []StepStatus {
	return []StepStatus{
		a.RegistrationStatus,
		a.PaymentStatus,
		a.FormStatus,
		a.PhotoStatus,
		a.SubmissionStatus,
	}
}

// Progress derives the aggregate step status
func (a *Application) Progress() StepStatus {
	return DeriveProgress(a.Steps())
}

// DeriveProgress is completed when every step is completed, in_progress when any step
// is in_progress, and pending otherwise. An empty input is pending.
func DeriveProgress(steps []StepStatus) StepStatus {
	if len(steps) == 0 {
		return StepPending
	}
	allCompleted := true
	anyInProgress := false
	for _, s := range steps {
		if s != StepCompleted {
			allCompleted = false
		}
		if s == StepInProgress {
			anyInProgress = true
		}
	}
	switch {
	case allCompleted:
		return StepCompleted
	case anyInProgress:
		return StepInProgress
	default:
		return StepPending
	}
}

// ApplicationView is the read model returned to clients
type ApplicationView struct {
	*Application
	Progress StepStatus `json:"progress"`
}

// NewApplicationView wraps an application with its derived progress
func NewApplicationView(app *Application) *ApplicationView {
	if app == nil {
		return nil
	}
	return &ApplicationView{Application: app, Progress: app.Progress()}
}

// ApplicationFormInput is the applicant-editable part of the application
type ApplicationFormInput struct {
	SpouseFirstName *string `json:"spouseFirstName" binding:"omitempty,max=100"`
	SpouseLastName  *string `json:"spouseLastName" binding:"omitempty,max=100"`
	ChildrenCount   int     `json:"childrenCount" binding:"min=0,max=30"`
}

// AdminApplicationUpdate is a partial administrator update
type AdminApplicationUpdate struct {
	Status             *ApplicationStatus `json:"status"`
	RegistrationStatus *StepStatus        `json:"registrationStatus"`
	PaymentStatus      *StepStatus        `json:"paymentStatus"`
	FormStatus         *StepStatus        `json:"formStatus"`
	PhotoStatus        *StepStatus        `json:"photoStatus"`
	SubmissionStatus   *StepStatus        `json:"submissionStatus"`
	Notes              *string            `json:"notes" binding:"omitempty,max=5000"`
}

// ApplicationFilter narrows the admin listing
type ApplicationFilter struct {
	Status *ApplicationStatus
}

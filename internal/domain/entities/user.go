package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// PaymentStatus is the account-level payment state
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// User represents an applicant account
type User struct {
	ID                uuid.UUID     `json:"id"`
	Name              string        `json:"name"`
	Email             string        `json:"email"`
	PasswordHash      string        `json:"-"`
	IsVerified        bool          `json:"isVerified"`
	PackageType       PackageType   `json:"packageType"`
	PaymentStatus     PaymentStatus `json:"paymentStatus"`
	PaymentCustomerID null.String   `json:"paymentCustomerId,omitempty"`
	LastLoginAt       null.Time     `json:"lastLoginAt,omitempty"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

// RegisterInput represents input for registration
type RegisterInput struct {
	Name        string      `json:"name" binding:"required,min=2,max=100"`
	Email       string      `json:"email" binding:"required,email"`
	Password    string      `json:"password" binding:"required,min=8"`
	PackageType PackageType `json:"packageType" binding:"required,oneof=individual couple family"`
}

// RegisterResult is returned to the caller after registration
type RegisterResult struct {
	UserID    uuid.UUID `json:"userId"`
	Delivered bool      `json:"-"`
	DevCode   string    `json:"devCode,omitempty"`
}

// LoginInput represents input for user login
type LoginInput struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	UseSession bool   `json:"useSession"` // If true, store tokens in Redis and return SessionID
}

// AuthResponse represents authentication response
type AuthResponse struct {
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	SessionID    string `json:"sessionId,omitempty"`
	User         *User  `json:"user"`
}

// UpdateProfileInput represents a profile edit
type UpdateProfileInput struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
}

package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// Admin is a back-office operator
type Admin struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"isActive"`
	LastLoginAt  null.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AdminLoginInput represents admin credentials
type AdminLoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AdminAuthResponse is returned on admin login
type AdminAuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Admin        *Admin `json:"admin"`
}

// Stats summarizes the business for the admin dashboard
type Stats struct {
	Users                int64                       `json:"users"`
	VerifiedUsers        int64                       `json:"verifiedUsers"`
	PaidUsers            int64                       `json:"paidUsers"`
	RevenueByPackage     map[PackageType]string      `json:"revenueByPackage"`
	ApplicationsByStatus map[ApplicationStatus]int64 `json:"applicationsByStatus"`
}

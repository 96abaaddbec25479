package entities

import (
	"time"

	"github.com/google/uuid"
)

// VerificationCode is a single-use numeric code proving control of an email address
type VerificationCode struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Code      string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsExpired reports whether the code can no longer be redeemed at now
func (c *VerificationCode) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// VerifyCodeInput represents a code redemption request
type VerifyCodeInput struct {
	UserID uuid.UUID `json:"userId" binding:"required"`
	Code   string    `json:"code" binding:"required,len=6,numeric"`
}

// ResendCodeInput represents a code reissue request
type ResendCodeInput struct {
	UserID uuid.UUID `json:"userId" binding:"required"`
}

// ResendResult is returned after a code reissue
type ResendResult struct {
	Success   bool   `json:"success"`
	Delivered bool   `json:"-"`
	DevCode   string `json:"devCode,omitempty"`
}

// IssuedCode describes a freshly issued verification code
type IssuedCode struct {
	Code      string
	ExpiresAt time.Time
	Delivered bool
}

package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrAlreadyExists       = errors.New("resource already exists")
	ErrInvalidInput        = errors.New("invalid input")
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrTokenExpired        = errors.New("token expired")
	ErrEmailNotVerified    = errors.New("email not verified")
	ErrInvalidCode         = errors.New("invalid verification code")
	ErrCodeExpired         = errors.New("verification code expired")
	ErrAlreadyVerified     = errors.New("user already verified")
	ErrInvalidResetToken   = errors.New("invalid or expired reset token")
	ErrTooManyRequests     = errors.New("too many requests")
	ErrAlreadyPaid         = errors.New("payment already completed")
	ErrPaymentNotCompleted = errors.New("payment not completed")
	ErrPaymentProvider     = errors.New("payment provider error")
	ErrEmailDelivery       = errors.New("email delivery failed")
	ErrInvalidSignature    = errors.New("invalid webhook signature")
	ErrServiceUnavailable  = errors.New("service unavailable")
)

// Error codes carried in the response envelope
const (
	CodeBadRequest         = "ERR_BAD_REQUEST"
	CodeInvalidInput       = "ERR_INVALID_INPUT"
	CodeInvalidOrExpired   = "ERR_INVALID_OR_EXPIRED"
	CodeNotFound           = "ERR_NOT_FOUND"
	CodeConflict           = "ERR_CONFLICT"
	CodeUnauthorized       = "ERR_UNAUTHORIZED"
	CodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	CodeInvalidSignature   = "ERR_INVALID_SIGNATURE"
	CodeForbidden          = "ERR_FORBIDDEN"
	CodeEmailNotVerified   = "ERR_EMAIL_NOT_VERIFIED"
	CodeTooManyRequests    = "ERR_TOO_MANY_REQUESTS"
	CodeExternalService    = "ERR_EXTERNAL_SERVICE"
	CodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"
	CodeInternalError      = "ERR_INTERNAL"
)

// AppError represents application error with HTTP status
type AppError struct {
	Status  int               `json:"-"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
	Err     error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails attaches field level details
func (e *AppError) WithDetails(details map[string]string) *AppError {
	e.Details = details
	return e
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidInput, message, ErrInvalidInput)
}

func InvalidOrExpired(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidOrExpired, message, ErrInvalidCode)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message, ErrAlreadyExists)
}

func TooManyRequests(message string) *AppError {
	return NewAppError(http.StatusTooManyRequests, CodeTooManyRequests, message, ErrTooManyRequests)
}

func ExternalService(message string, err error) *AppError {
	return NewAppError(http.StatusBadGateway, CodeExternalService, message, err)
}

func ServiceUnavailable(message string) *AppError {
	return NewAppError(http.StatusServiceUnavailable, CodeServiceUnavailable, message, ErrServiceUnavailable)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error", err)
}

func InternalServerError(message string) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, message, nil)
}

// NewError creates a new error with a custom message wrapping an existing error
func NewError(message string, err error) error {
	return &AppError{
		Status:  http.StatusBadRequest,
		Code:    CodeBadRequest,
		Message: message,
		Err:     err,
	}
}

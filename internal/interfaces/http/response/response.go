package response

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domainerrors "dvlottery.backend/internal/domain/errors"
	"dvlottery.backend/pkg/logger"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error sends an error response in the {code, message, error, details} envelope
func Error(c *gin.Context, err error) {
	appErr := toAppError(err)
	if appErr.Status >= http.StatusInternalServerError {
		logger.Error(c.Request.Context(), "Request failed",
			zap.String("path", c.FullPath()),
			zap.String("code", appErr.Code),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(appErr.Status, envelope(appErr))
}

// ErrorWithError sends an error response with a specific status and message
func ErrorWithError(c *gin.Context, status int, code string, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"code":    code,
		"message": message,
		"error":   message,
	})
}

// BindError reports a request binding failure with per-field details when the validator produced them
func BindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			details[lowerFirst(fe.Field())] = fe.Tag()
		}
		Error(c, domainerrors.BadRequest("validation failed").WithDetails(details))
		return
	}
	Error(c, domainerrors.BadRequest("malformed request body"))
}

func envelope(appErr *domainerrors.AppError) gin.H {
	body := gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
		"error":   appErr.Message,
	}
	if len(appErr.Details) > 0 {
		body["details"] = appErr.Details
	}
	return body
}

type mapping struct {
	target  error
	status  int
	code    string
	message string
}

// order matters: a wrong verification code also wraps ErrNotFound
var mappings = []mapping{
	{domainerrors.ErrInvalidCode, http.StatusBadRequest, domainerrors.CodeInvalidOrExpired, "Invalid or expired verification code"},
	{domainerrors.ErrCodeExpired, http.StatusBadRequest, domainerrors.CodeInvalidOrExpired, "Invalid or expired verification code"},
	{domainerrors.ErrInvalidResetToken, http.StatusBadRequest, domainerrors.CodeInvalidOrExpired, "Invalid or expired reset token"},
	{domainerrors.ErrInvalidInput, http.StatusBadRequest, domainerrors.CodeInvalidInput, "Invalid input"},
	{domainerrors.ErrBadRequest, http.StatusBadRequest, domainerrors.CodeBadRequest, "Bad request"},
	{domainerrors.ErrPaymentNotCompleted, http.StatusConflict, domainerrors.CodeConflict, "Payment has not been completed"},
	{domainerrors.ErrNotFound, http.StatusNotFound, domainerrors.CodeNotFound, "Resource not found"},
	{domainerrors.ErrAlreadyExists, http.StatusConflict, domainerrors.CodeConflict, "Resource already exists"},
	{domainerrors.ErrAlreadyPaid, http.StatusConflict, domainerrors.CodeConflict, "Payment already completed"},
	{domainerrors.ErrAlreadyVerified, http.StatusConflict, domainerrors.CodeConflict, "Email already verified"},
	{domainerrors.ErrInvalidCredentials, http.StatusUnauthorized, domainerrors.CodeInvalidCredentials, "Invalid email or password"},
	{domainerrors.ErrInvalidSignature, http.StatusUnauthorized, domainerrors.CodeInvalidSignature, "Invalid webhook signature"},
	{domainerrors.ErrTokenExpired, http.StatusUnauthorized, domainerrors.CodeUnauthorized, "Token has expired"},
	{domainerrors.ErrUnauthorized, http.StatusUnauthorized, domainerrors.CodeUnauthorized, "Unauthorized"},
	{domainerrors.ErrEmailNotVerified, http.StatusForbidden, domainerrors.CodeEmailNotVerified, "Email address has not been verified"},
	{domainerrors.ErrForbidden, http.StatusForbidden, domainerrors.CodeForbidden, "Forbidden"},
	{domainerrors.ErrTooManyRequests, http.StatusTooManyRequests, domainerrors.CodeTooManyRequests, "Too many requests, try again later"},
	{domainerrors.ErrPaymentProvider, http.StatusBadGateway, domainerrors.CodeExternalService, "Payment provider is unavailable"},
	{domainerrors.ErrEmailDelivery, http.StatusBadGateway, domainerrors.CodeExternalService, "Email could not be delivered"},
	{domainerrors.ErrServiceUnavailable, http.StatusServiceUnavailable, domainerrors.CodeServiceUnavailable, "Service unavailable"},
}

func toAppError(err error) *domainerrors.AppError {
	var appErr *domainerrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			return domainerrors.NewAppError(m.status, m.code, m.message, err)
		}
	}
	return domainerrors.InternalError(err)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

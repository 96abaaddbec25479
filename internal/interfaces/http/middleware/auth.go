package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	domainerrors "dvlottery.backend/internal/domain/errors"
	"dvlottery.backend/internal/interfaces/http/response"
	"dvlottery.backend/pkg/jwt"
	"dvlottery.backend/pkg/logger"
	"dvlottery.backend/pkg/redis"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// SessionHeader carries an opaque server-side session id instead of a bearer token
	SessionHeader = "X-Session-Id"
	// UserIDKey is the context key for user ID
	UserIDKey = "userId"
	// UserEmailKey is the context key for user email
	UserEmailKey = "userEmail"
	// UserRoleKey is the context key for user role
	UserRoleKey = "userRole"
)

// SessionReader resolves an opaque session id to the tokens stored for it.
type SessionReader interface {
	GetSession(ctx context.Context, sessionID string) (*redis.SessionData, error)
}

var errNoCredentials = errors.New("no credentials")

// AuthMiddleware requires a valid access token, presented either as a bearer
// token or through a session id. Sessions may be nil when the store is not configured.
func AuthMiddleware(jwtService *jwt.JWTService, sessions SessionReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := authenticate(c, jwtService, sessions)
		if err != nil {
			logger.Debug(c.Request.Context(), "authentication failed",
				zap.String("path", c.Request.URL.Path), zap.Error(err))
			response.Error(c, unauthorized(err))
			return
		}
		attachClaims(c, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the caller's identity when credentials are
// present and lets anonymous requests through. Bad credentials are still rejected.
func OptionalAuthMiddleware(jwtService *jwt.JWTService, sessions SessionReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := authenticate(c, jwtService, sessions)
		if errors.Is(err, errNoCredentials) {
			c.Next()
			return
		}
		if err != nil {
			response.Error(c, unauthorized(err))
			return
		}
		attachClaims(c, claims)
		c.Next()
	}
}

func authenticate(c *gin.Context, jwtService *jwt.JWTService, sessions SessionReader) (*jwt.Claims, error) {
	token, err := extractToken(c, sessions)
	if err != nil {
		return nil, err
	}
	return jwtService.ValidateToken(token)
}

func extractToken(c *gin.Context, sessions SessionReader) (string, error) {
	if sessionID := strings.TrimSpace(c.GetHeader(SessionHeader)); sessionID != "" {
		if sessions == nil {
			return "", errors.New("sessions are not enabled")
		}
		data, err := sessions.GetSession(c.Request.Context(), sessionID)
		if err != nil {
			return "", err
		}
		return data.AccessToken, nil
	}

	authHeader := c.GetHeader(AuthorizationHeader)
	if authHeader == "" {
		return "", errNoCredentials
	}
	if !strings.HasPrefix(authHeader, BearerPrefix) {
		return "", errors.New("invalid authorization format")
	}
	return strings.TrimPrefix(authHeader, BearerPrefix), nil
}

func unauthorized(err error) *domainerrors.AppError {
	switch {
	case errors.Is(err, errNoCredentials):
		return domainerrors.Unauthorized("authentication required")
	case errors.Is(err, jwt.ErrExpiredToken):
		return domainerrors.Unauthorized("token has expired")
	default:
		return domainerrors.Unauthorized("invalid credentials")
	}
}

func attachClaims(c *gin.Context, claims *jwt.Claims) {
	c.Set(UserIDKey, claims.UserID)
	c.Set(UserEmailKey, claims.Email)
	c.Set(UserRoleKey, claims.Role)

	ctx := context.WithValue(c.Request.Context(), logger.SubjectIDKey, claims.UserID.String())
	c.Request = c.Request.WithContext(ctx)
}

// GetUserID gets the user ID from context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := userID.(uuid.UUID)
	return id, ok
}

// GetUserEmail gets the user email from context
func GetUserEmail(c *gin.Context) (string, bool) {
	email := c.GetString(UserEmailKey)
	return email, email != ""
}

// GetUserRole gets the user role from context
func GetUserRole(c *gin.Context) (string, bool) {
	role, exists := c.Get(UserRoleKey)
	if !exists {
		return "", false
	}
	r, ok := role.(string)
	return r, ok
}

// IsAdmin reports whether the authenticated caller holds the admin role.
func IsAdmin(c *gin.Context) bool {
	role, _ := GetUserRole(c)
	return role == jwt.RoleAdmin
}

// RequireRole creates a middleware that requires a specific role
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := GetUserRole(c)
		if !exists {
			response.Error(c, domainerrors.Unauthorized("authentication required"))
			return
		}

		for _, role := range roles {
			if userRole == role {
				c.Next()
				return
			}
		}

		response.Error(c, domainerrors.Forbidden("insufficient permissions"))
	}
}

// RequireAdmin creates a middleware that requires admin role
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(jwt.RoleAdmin)
}

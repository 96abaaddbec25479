package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "dvlottery.backend/internal/domain/errors"
)

func perform(t *testing.T, fn func(c *gin.Context)) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	fn(c)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestSuccess(t *testing.T) {
	w, body := perform(t, func(c *gin.Context) { Success(c, http.StatusOK, gin.H{"ok": true}) })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["ok"])
}

func TestError_AppError(t *testing.T) {
	w, body := perform(t, func(c *gin.Context) { Error(c, domainerrors.NotFound("missing")) })
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, domainerrors.CodeNotFound, body["code"])
	assert.Equal(t, "missing", body["message"])
	assert.Equal(t, "missing", body["error"])
	assert.NotContains(t, body, "details")
}

func TestError_SentinelMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: %w", domainerrors.ErrInvalidCode, domainerrors.ErrNotFound), http.StatusBadRequest, domainerrors.CodeInvalidOrExpired},
		{domainerrors.ErrCodeExpired, http.StatusBadRequest, domainerrors.CodeInvalidOrExpired},
		{domainerrors.ErrInvalidResetToken, http.StatusBadRequest, domainerrors.CodeInvalidOrExpired},
		{domainerrors.ErrInvalidInput, http.StatusBadRequest, domainerrors.CodeInvalidInput},
		{domainerrors.ErrNotFound, http.StatusNotFound, domainerrors.CodeNotFound},
		{domainerrors.ErrAlreadyExists, http.StatusConflict, domainerrors.CodeConflict},
		{domainerrors.ErrAlreadyPaid, http.StatusConflict, domainerrors.CodeConflict},
		{domainerrors.ErrAlreadyVerified, http.StatusConflict, domainerrors.CodeConflict},
		{domainerrors.ErrInvalidCredentials, http.StatusUnauthorized, domainerrors.CodeInvalidCredentials},
		{fmt.Errorf("%w: bad alg", domainerrors.ErrInvalidSignature), http.StatusUnauthorized, domainerrors.CodeInvalidSignature},
		{fmt.Errorf("%w: expired", domainerrors.ErrUnauthorized), http.StatusUnauthorized, domainerrors.CodeUnauthorized},
		{domainerrors.ErrEmailNotVerified, http.StatusForbidden, domainerrors.CodeEmailNotVerified},
		{domainerrors.ErrForbidden, http.StatusForbidden, domainerrors.CodeForbidden},
		{domainerrors.ErrTooManyRequests, http.StatusTooManyRequests, domainerrors.CodeTooManyRequests},
		{fmt.Errorf("%w: 503", domainerrors.ErrPaymentProvider), http.StatusBadGateway, domainerrors.CodeExternalService},
		{domainerrors.ErrEmailDelivery, http.StatusBadGateway, domainerrors.CodeExternalService},
		{domainerrors.ErrServiceUnavailable, http.StatusServiceUnavailable, domainerrors.CodeServiceUnavailable},
		{domainerrors.ErrPaymentNotCompleted, http.StatusConflict, domainerrors.CodeConflict},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w, body := perform(t, func(c *gin.Context) { Error(c, tt.err) })
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, body["code"])
		})
	}
}

func TestError_GenericErrorHidesCause(t *testing.T) {
	w, body := perform(t, func(c *gin.Context) { Error(c, errors.New("pq: password authentication failed")) })
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, domainerrors.CodeInternalError, body["code"])
	assert.NotContains(t, w.Body.String(), "pq:")
}

func TestBindError_ValidationDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	type input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}
	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		var in input
		if err := c.ShouldBindJSON(&in); err != nil {
			BindError(c, err)
			return
		}
		Success(c, http.StatusOK, in)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope","password":"short"}`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, domainerrors.CodeInvalidInput, body.Code)
	assert.Equal(t, map[string]string{"email": "email", "password": "min"}, body.Details)
}

func TestBindError_MalformedBody(t *testing.T) {
	w, body := perform(t, func(c *gin.Context) { BindError(c, errors.New("unexpected EOF")) })
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "malformed request body", body["message"])
}

func TestErrorWithError(t *testing.T) {
	w, body := perform(t, func(c *gin.Context) { ErrorWithError(c, http.StatusBadRequest, "ERR_X", "bad") })
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ERR_X", body["code"])
}

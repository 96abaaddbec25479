package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"dvlottery.backend/internal/domain/entities"
	"dvlottery.backend/internal/interfaces/http/response"
	"dvlottery.backend/internal/usecases"
	"dvlottery.backend/pkg/jwt"
)

type adminService interface {
	Login(ctx context.Context, input *entities.AdminLoginInput) (*entities.AdminAuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*jwt.TokenPair, error)
	Stats(ctx context.Context) (*entities.Stats, error)
}

// AdminHandler handles admin authentication and dashboard endpoints
type AdminHandler struct {
	service adminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminUsecase *usecases.AdminUsecase) *AdminHandler {
	return &AdminHandler{service: adminUsecase}
}

// Login authenticates an admin
// POST /api/admin/login
func (h *AdminHandler) Login(c *gin.Context) {
	var input entities.AdminLoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.service.Login(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// RefreshToken exchanges an admin refresh token for a new pair
// POST /api/admin/refresh
func (h *AdminHandler) RefreshToken(c *gin.Context) {
	var input struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	pair, err := h.service.RefreshToken(c.Request.Context(), input.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, pair)
}

// GetStats returns dashboard counters
// GET /api/admin/stats
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, stats)
}

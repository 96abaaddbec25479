package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"dvlottery.backend/internal/domain/entities"
	"dvlottery.backend/internal/interfaces/http/response"
	"dvlottery.backend/internal/usecases"
)

type templateService interface {
	List(ctx context.Context) ([]*entities.EmailTemplate, error)
	Get(ctx context.Context, id uuid.UUID) (*entities.EmailTemplate, error)
	Create(ctx context.Context, input *entities.CreateTemplateInput) (*entities.EmailTemplate, error)
	Update(ctx context.Context, id uuid.UUID, input *entities.UpdateTemplateInput) (*entities.EmailTemplate, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SendEmail(ctx context.Context, input *entities.SendEmailInput) (string, error)
}

// TemplateHandler manages email templates and ad-hoc admin mail
type TemplateHandler struct {
	service templateService
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(templateUsecase *usecases.TemplateUsecase) *TemplateHandler {
	return &TemplateHandler{service: templateUsecase}
}

// ListTemplates returns every stored template
// GET /api/admin/templates
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	templates, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"items": templates})
}

// GetTemplate returns one template
// GET /api/admin/templates/:id
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	tmpl, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, tmpl)
}

// CreateTemplate stores a new template; names are unique
// POST /api/admin/templates
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var input entities.CreateTemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	tmpl, err := h.service.Create(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, tmpl)
}

// UpdateTemplate applies a partial update
// PATCH /api/admin/templates/:id
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var input entities.UpdateTemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	tmpl, err := h.service.Update(c.Request.Context(), id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, tmpl)
}

// DeleteTemplate removes a template
// DELETE /api/admin/templates/:id
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"success": true})
}

// SendEmail renders a stored template and mails it
// POST /api/admin/send-email
func (h *TemplateHandler) SendEmail(c *gin.Context) {
	var input entities.SendEmailInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	deliveryID, err := h.service.SendEmail(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"success": true, "deliveryId": deliveryID})
}

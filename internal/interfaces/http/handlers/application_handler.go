package handlers

import (
	"bufio"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"dvlottery.backend/internal/domain/entities"
	domainerrors "dvlottery.backend/internal/domain/errors"
	"dvlottery.backend/internal/interfaces/http/response"
	"dvlottery.backend/internal/usecases"
	"dvlottery.backend/pkg/utils"
)

const photoFormField = "photo"

type applicationService interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.ApplicationView, error)
	UpdateForm(ctx context.Context, userID uuid.UUID, input *entities.ApplicationFormInput) (*entities.ApplicationView, error)
	UploadPhoto(ctx context.Context, userID uuid.UUID, photo usecases.PhotoUpload) (*entities.ApplicationView, error)
}

type adminApplicationService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entities.ApplicationView, error)
	AdminUpdate(ctx context.Context, id uuid.UUID, input *entities.AdminApplicationUpdate) (*entities.ApplicationView, error)
	List(ctx context.Context, filter entities.ApplicationFilter, pagination utils.PaginationParams) ([]*entities.ApplicationView, utils.PaginationMeta, error)
}

// ApplicationHandler serves an applicant's own application
type ApplicationHandler struct {
	service applicationService
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(applicationUsecase *usecases.ApplicationUsecase) *ApplicationHandler {
	return &ApplicationHandler{service: applicationUsecase}
}

// GetApplication returns the application with its derived progress
// GET /api/applications/:userId
func (h *ApplicationHandler) GetApplication(c *gin.Context) {
	userID, ok := uuidParam(c, "userId")
	if !ok || !requireSubject(c, userID, true) {
		return
	}

	view, err := h.service.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// UpdateForm saves the package-dependent form fields
// PATCH /api/applications/:userId/form
func (h *ApplicationHandler) UpdateForm(c *gin.Context) {
	userID, ok := uuidParam(c, "userId")
	if !ok || !requireSubject(c, userID, false) {
		return
	}

	var input entities.ApplicationFormInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	view, err := h.service.UpdateForm(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// UploadPhoto stores the applicant photo from a multipart upload
// POST /api/applications/:userId/photo
func (h *ApplicationHandler) UploadPhoto(c *gin.Context) {
	userID, ok := uuidParam(c, "userId")
	if !ok || !requireSubject(c, userID, false) {
		return
	}

	header, err := c.FormFile(photoFormField)
	if err != nil {
		response.Error(c, domainerrors.BadRequest("photo file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, domainerrors.BadRequest("unreadable photo upload"))
		return
	}
	defer file.Close()

	// content type comes from the bytes, never the part header
	reader := bufio.NewReaderSize(file, 512)
	sniff, _ := reader.Peek(512)

	view, err := h.service.UploadPhoto(c.Request.Context(), userID, usecases.PhotoUpload{
		ContentType: http.DetectContentType(sniff),
		Size:        header.Size,
		Reader:      reader,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// AdminApplicationHandler serves the admin review queue
type AdminApplicationHandler struct {
	service adminApplicationService
}

// NewAdminApplicationHandler creates a new admin application handler
func NewAdminApplicationHandler(applicationUsecase *usecases.ApplicationUsecase) *AdminApplicationHandler {
	return &AdminApplicationHandler{service: applicationUsecase}
}

// ListApplications lists applications, optionally filtered by admin status
// GET /api/admin/applications?status=&page=&limit=
func (h *AdminApplicationHandler) ListApplications(c *gin.Context) {
	var query struct {
		Status string `form:"status"`
		Page   int    `form:"page"`
		Limit  int    `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindError(c, err)
		return
	}

	var filter entities.ApplicationFilter
	if query.Status != "" {
		status := entities.ApplicationStatus(query.Status)
		if !status.IsValid() {
			response.Error(c, domainerrors.BadRequest("invalid status filter"))
			return
		}
		filter.Status = &status
	}

	items, meta, err := h.service.List(c.Request.Context(), filter, utils.PageRequest(query.Page, query.Limit))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"items": items, "meta": meta})
}

// GetApplication returns one application by id
// GET /api/admin/applications/:id
func (h *AdminApplicationHandler) GetApplication(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	view, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// UpdateApplication sets the admin status, step overrides and notes
// PATCH /api/admin/applications/:id
func (h *AdminApplicationHandler) UpdateApplication(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var input entities.AdminApplicationUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	view, err := h.service.AdminUpdate(c.Request.Context(), id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/citadel-archive/citadel-api/internal/dto"
	"github.com/citadel-archive/citadel-api/internal/models"
	"github.com/citadel-archive/citadel-api/internal/service"
	appErrors "github.com/citadel-archive/citadel-api/pkg/errors"
	"github.com/citadel-archive/citadel-api/pkg/response"
)

type eventService interface {
	ImportFile(ctx context.Context, upload service.ImportUpload) (*models.Event, error)
	CreateNote(ctx context.Context, req dto.CreateNoteRequest) (*models.Event, error)
	Get(ctx context.Context, id string) (*models.Event, error)
	List(ctx context.Context, filter dto.EventFilter) ([]models.Event, error)
	UpdateClassification(ctx context.Context, id string, req dto.UpdateClassificationRequest) (*models.Event, error)
	SetAnswer(ctx context.Context, id, question, answer string) (*models.Event, error)
	UpdateDetails(ctx context.Context, id string, req dto.UpdateEventRequest) (*models.Event, error)
	Confirm(ctx context.Context, id string) (*models.Event, error)
	Archive(ctx context.Context, id string) (*models.Event, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string) ([]models.Event, error)
	FileDownloadURL(ctx context.Context, eventID, fileID string) (*dto.FileURLResponse, error)
	DownloadFile(ctx context.Context, eventID, fileID, token string) (*service.FileDownload, error)
}

// EventHandler manages the event lifecycle HTTP endpoints.
type EventHandler struct {
	service eventService
}

// NewEventHandler constructs the handler.
func NewEventHandler(service eventService) *EventHandler {
	return &EventHandler{service: service}
}

// Import godoc
// @Summary Import a file into the inbox
// @Tags Events
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document"
// @Success 201 {object} response.Envelope
// @Router /events/import [post]
func (h *EventHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close() //nolint:errcheck

	upload := service.ImportUpload{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Content:  src,
	}
	event, err := h.service.ImportFile(c.Request.Context(), upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// CreateNote godoc
// @Summary Create a file-less note event
// @Tags Events
// @Accept json
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /events [post]
func (h *EventHandler) CreateNote(c *gin.Context) {
	var req dto.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid note payload"))
		return
	}
	event, err := h.service.CreateNote(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// List godoc
// @Summary List events
// @Tags Events
// @Produce json
// @Param status query string false "Lifecycle status filter"
// @Success 200 {object} response.Envelope
// @Router /events [get]
func (h *EventHandler) List(c *gin.Context) {
	filter := dto.EventFilter{}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		filter.Status = models.EventStatus(status)
	}
	events, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events)
}

// Get godoc
// @Summary Get one event
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Router /events/{id} [get]
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event)
}

// UpdateClassification godoc
// @Summary Change the event type
// @Tags Events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Router /events/{id}/classification [patch]
func (h *EventHandler) UpdateClassification(c *gin.Context) {
	var req dto.UpdateClassificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid classification payload"))
		return
	}
	event, err := h.service.UpdateClassification(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event)
}

// Update godoc
// @Summary Patch event details
// @Tags Events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Router /events/{id} [patch]
func (h *EventHandler) Update(c *gin.Context) {
	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid event payload"))
		return
	}
	event, err := h.service.UpdateDetails(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event)
}

// SetAnswer godoc
// @Summary Record a questionnaire answer
// @Tags Events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param question path string true "Question text"
// @Success 200 {object} response.Envelope
// @Router /events/{id}/answers/{question} [put]
func (h *EventHandler) SetAnswer(c *gin.Context) {
	var req dto.SetAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid answer payload"))
		return
	}
	event, err := h.service.SetAnswer(c.Request.Context(), c.Param("id"), c.Param("question"), req.Answer)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event)
}

// Confirm godoc
// @Summary Confirm a draft event
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Router /events/{id}/confirm [post]
func (h *EventHandler) Confirm(c *gin.Context) {
	event, err := h.service.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event)
}

// Archive godoc
// @Summary Archive a confirmed event
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Router /events/{id}/archive [post]
func (h *EventHandler) Archive(c *gin.Context) {
	event, err := h.service.Archive(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event)
}

// Delete godoc
// @Summary Delete an event and its files
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 204
// @Router /events/{id} [delete]
func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Search godoc
// @Summary Search events by substring
// @Tags Events
// @Produce json
// @Param q query string true "Query"
// @Success 200 {object} response.Envelope
// @Router /search [get]
func (h *EventHandler) Search(c *gin.Context) {
	results, err := h.service.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results)
}

// FileURL godoc
// @Summary Generate a signed download URL for a file
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Param fileId path string true "File ID"
// @Success 200 {object} response.Envelope
// @Router /events/{id}/files/{fileId}/url [get]
func (h *EventHandler) FileURL(c *gin.Context) {
	result, err := h.service.FileDownloadURL(c.Request.Context(), c.Param("id"), c.Param("fileId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Download godoc
// @Summary Download a file via signed token
// @Tags Events
// @Produce octet-stream
// @Param id path string true "Event ID"
// @Param fileId path string true "File ID"
// @Param token query string true "Signed token"
// @Success 200 {file} binary
// @Router /events/{id}/files/{fileId}/download [get]
func (h *EventHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if strings.TrimSpace(token) == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	result, err := h.service.DownloadFile(c.Request.Context(), c.Param("id"), c.Param("fileId"), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer result.File.Close() //nolint:errcheck
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, result.Size, result.MimeType, result.File, nil)
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/citadel-archive/citadel-api/internal/dto"
	"github.com/citadel-archive/citadel-api/internal/models"
	appErrors "github.com/citadel-archive/citadel-api/pkg/errors"
	"github.com/citadel-archive/citadel-api/pkg/response"
)

type captureService interface {
	Capture(ctx context.Context, req dto.CaptureRequest) (*models.Event, error)
	Pending(ctx context.Context) ([]dto.PendingCapture, error)
}

// CaptureHandler serves the mobile quick-capture endpoints. Routes are
// gated by the pairing middleware.
type CaptureHandler struct {
	service captureService
}

// NewCaptureHandler constructs the handler.
func NewCaptureHandler(service captureService) *CaptureHandler {
	return &CaptureHandler{service: service}
}

// Capture godoc
// @Summary Submit a mobile capture
// @Tags Capture
// @Accept json
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /capture [post]
func (h *CaptureHandler) Capture(c *gin.Context) {
	var req dto.CaptureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid capture payload"))
		return
	}
	event, err := h.service.Capture(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Pending godoc
// @Summary List unconfirmed mobile captures
// @Tags Capture
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /capture/pending [get]
func (h *CaptureHandler) Pending(c *gin.Context) {
	pending, err := h.service.Pending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pending)
}

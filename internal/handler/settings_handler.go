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

type settingsService interface {
	Get(ctx context.Context) (*models.AppState, error)
	Setup(ctx context.Context, req dto.SetupRequest) (*models.AppState, error)
	Update(ctx context.Context, req dto.UpdateSettingsRequest) (*models.AppState, error)
	GenerateLinkCode(ctx context.Context) (*dto.LinkCodeResponse, error)
}

// SettingsHandler serves the settings record, the first-run wizard, and
// mobile pairing link codes.
type SettingsHandler struct {
	service settingsService
}

// NewSettingsHandler constructs the handler.
func NewSettingsHandler(service settingsService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// Get godoc
// @Summary Current settings
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	state, err := h.service.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state)
}

// Setup godoc
// @Summary Complete the first-run wizard
// @Tags Settings
// @Accept json
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /settings/setup [post]
func (h *SettingsHandler) Setup(c *gin.Context) {
	var req dto.SetupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid setup payload"))
		return
	}
	state, err := h.service.Setup(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, state)
}

// Update godoc
// @Summary Patch settings
// @Tags Settings
// @Accept json
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid settings payload"))
		return
	}
	state, err := h.service.Update(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state)
}

// LinkCode godoc
// @Summary Mint a mobile pairing link code
// @Tags Settings
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /settings/link-code [post]
func (h *SettingsHandler) LinkCode(c *gin.Context) {
	code, err := h.service.GenerateLinkCode(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, code)
}

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

type assistantService interface {
	Chat(ctx context.Context, req dto.ChatRequest) (*dto.ChatResponse, error)
	SuggestClassification(ctx context.Context, req dto.ClassifyRequest) (*models.ClassificationSuggestion, error)
}

// AssistantHandler serves the language-model chat and classification
// endpoints.
type AssistantHandler struct {
	service assistantService
}

// NewAssistantHandler constructs the handler.
func NewAssistantHandler(service assistantService) *AssistantHandler {
	return &AssistantHandler{service: service}
}

// Chat godoc
// @Summary Send one chat turn to the assistant
// @Tags Assistant
// @Accept json
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /assistant/chat [post]
func (h *AssistantHandler) Chat(c *gin.Context) {
	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid chat payload"))
		return
	}
	reply, err := h.service.Chat(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reply)
}

// Classify godoc
// @Summary Suggest a classification for a file
// @Tags Assistant
// @Accept json
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /assistant/classify [post]
func (h *AssistantHandler) Classify(c *gin.Context) {
	var req dto.ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid classify payload"))
		return
	}
	suggestion, err := h.service.SuggestClassification(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, suggestion)
}

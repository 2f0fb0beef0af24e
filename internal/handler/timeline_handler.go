package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/citadel-archive/citadel-api/internal/dto"
	"github.com/citadel-archive/citadel-api/internal/models"
	"github.com/citadel-archive/citadel-api/internal/service"
	"github.com/citadel-archive/citadel-api/pkg/response"
)

type timelineService interface {
	Timeline(ctx context.Context) ([]dto.TimelineGroup, error)
}

type timelineExporter interface {
	Timeline(ctx context.Context, format string) (*service.ExportFile, error)
}

// TimelineHandler serves the grouped timeline and its exports, plus the
// per-type questionnaire lookup.
type TimelineHandler struct {
	timeline timelineService
	exporter timelineExporter
}

// NewTimelineHandler constructs the handler.
func NewTimelineHandler(timeline timelineService, exporter timelineExporter) *TimelineHandler {
	return &TimelineHandler{timeline: timeline, exporter: exporter}
}

// Timeline godoc
// @Summary Confirmed events grouped by month
// @Tags Timeline
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timeline [get]
func (h *TimelineHandler) Timeline(c *gin.Context) {
	groups, err := h.timeline.Timeline(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups)
}

// Export godoc
// @Summary Export the timeline as CSV or PDF
// @Tags Timeline
// @Produce octet-stream
// @Param format query string false "csv or pdf"
// @Success 200 {file} binary
// @Router /timeline/export [get]
func (h *TimelineHandler) Export(c *gin.Context) {
	file, err := h.exporter.Timeline(c.Request.Context(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+file.Filename+"\"")
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

// Questions godoc
// @Summary Questionnaire for an event type
// @Tags Timeline
// @Produce json
// @Param type path string true "Event type"
// @Success 200 {object} response.Envelope
// @Router /event-types/{type}/questions [get]
func (h *TimelineHandler) Questions(c *gin.Context) {
	eventType := c.Param("type")
	response.JSON(c, http.StatusOK, dto.QuestionnaireResponse{
		EventType: eventType,
		Questions: models.QuestionsFor(models.EventType(eventType)),
	})
}

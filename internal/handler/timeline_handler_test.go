package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/citadel-archive/citadel-api/internal/dto"
	"github.com/citadel-archive/citadel-api/internal/service"
	appErrors "github.com/citadel-archive/citadel-api/pkg/errors"
	"github.com/citadel-archive/citadel-api/pkg/response"
)

type timelineStub struct {
	groups []dto.TimelineGroup
}

func (s *timelineStub) Timeline(ctx context.Context) ([]dto.TimelineGroup, error) {
	return s.groups, nil
}

type exporterStub struct {
	format string
}

func (s *exporterStub) Timeline(ctx context.Context, format string) (*service.ExportFile, error) {
	s.format = format
	if format == "xlsx" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
	return &service.ExportFile{
		Filename:    "timeline_20260829.csv",
		ContentType: "text/csv",
		Content:     []byte("Date,Title\n"),
	}, nil
}

func newTimelineRouter(timeline *timelineStub, exporter *exporterStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewTimelineHandler(timeline, exporter)
	r := gin.New()
	r.GET("/timeline", h.Timeline)
	r.GET("/timeline/export", h.Export)
	r.GET("/event-types/:type/questions", h.Questions)
	return r
}

func TestTimelineHandler(t *testing.T) {
	router := newTimelineRouter(&timelineStub{groups: []dto.TimelineGroup{{Month: "August 2026"}}}, &exporterStub{})

	req := httptest.NewRequest(http.MethodGet, "/timeline", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Data)
}

func TestTimelineExport(t *testing.T) {
	exporter := &exporterStub{}
	router := newTimelineRouter(&timelineStub{}, exporter)

	req := httptest.NewRequest(http.MethodGet, "/timeline/export?format=csv", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "csv", exporter.format)
	require.Contains(t, w.Header().Get("Content-Disposition"), "timeline_20260829.csv")
	require.Contains(t, w.Header().Get("Content-Type"), "text/csv")
}

func TestTimelineExportRejectsUnknownFormat(t *testing.T) {
	router := newTimelineRouter(&timelineStub{}, &exporterStub{})

	req := httptest.NewRequest(http.MethodGet, "/timeline/export?format=xlsx", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuestionnaireLookup(t *testing.T) {
	router := newTimelineRouter(&timelineStub{}, &exporterStub{})

	req := httptest.NewRequest(http.MethodGet, "/event-types/receipt/questions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data dto.QuestionnaireResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, "receipt", envelope.Data.EventType)
	require.Equal(t, []string{"Total Amount?", "Store Name?", "Category?"}, envelope.Data.Questions)
}

func TestQuestionnaireLookupFallsBack(t *testing.T) {
	router := newTimelineRouter(&timelineStub{}, &exporterStub{})

	req := httptest.NewRequest(http.MethodGet, "/event-types/unknown-kind/questions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data dto.QuestionnaireResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, []string{"What is this?", "Why is it important?", "Follow-up required?"}, envelope.Data.Questions)
}

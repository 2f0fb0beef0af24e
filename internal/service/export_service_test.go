package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/citadel-archive/citadel-api/internal/models"
)

func exportFixture() *eventRepoStub {
	jan := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC).UnixMilli()
	feb := time.Date(2026, time.February, 5, 0, 0, 0, 0, time.UTC).UnixMilli()
	return &eventRepoStub{events: []models.Event{
		{ID: "evt-1", CreatedAt: jan, Status: models.StatusConfirmed, Title: "Receipt", EventType: models.EventTypeReceipt, Tags: []string{"finance"}},
		{ID: "evt-2", CreatedAt: feb, Status: models.StatusConfirmed, Title: "Passport", EventType: models.EventTypeIdentity,
			Files: []models.FileRecord{{ID: "f1"}}},
		{ID: "evt-3", Status: models.StatusDraft, Title: "Draft note"},
	}}
}

func TestExportTimelineCSV(t *testing.T) {
	svc := NewExportService(exportFixture(), nil)

	file, err := svc.Timeline(context.Background(), "csv")
	require.NoError(t, err)
	require.Equal(t, "text/csv", file.ContentType)
	require.True(t, strings.HasSuffix(file.Filename, ".csv"))

	body := string(file.Content)
	require.Contains(t, body, "Date,Title,Type,Tags,Files")
	require.Contains(t, body, "Passport")
	require.Contains(t, body, "Receipt")
	require.NotContains(t, body, "Draft note")

	// newest first
	require.Less(t, strings.Index(body, "Passport"), strings.Index(body, "Receipt"))
}

func TestExportTimelineDefaultsToCSV(t *testing.T) {
	svc := NewExportService(exportFixture(), nil)
	file, err := svc.Timeline(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, "text/csv", file.ContentType)
}

func TestExportTimelinePDF(t *testing.T) {
	svc := NewExportService(exportFixture(), nil)

	file, err := svc.Timeline(context.Background(), "pdf")
	require.NoError(t, err)
	require.Equal(t, "application/pdf", file.ContentType)
	require.True(t, strings.HasSuffix(file.Filename, ".pdf"))
	require.True(t, strings.HasPrefix(string(file.Content), "%PDF"))
}

func TestExportTimelineRejectsUnknownFormat(t *testing.T) {
	svc := NewExportService(exportFixture(), nil)
	_, err := svc.Timeline(context.Background(), "xlsx")
	require.Error(t, err)
}

package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/citadel-archive/citadel-api/internal/models"
	appErrors "github.com/citadel-archive/citadel-api/pkg/errors"
	"github.com/citadel-archive/citadel-api/pkg/export"
)

// ExportFile is a rendered export ready to stream to the client.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ExportService renders the confirmed timeline as CSV or PDF.
type ExportService struct {
	repo   eventStore
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewExportService constructs the service with defaults.
func NewExportService(repo eventStore, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		repo:   repo,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
	}
}

var timelineHeaders = []string{"Date", "Title", "Type", "Tags", "Files"}

// Timeline renders confirmed events, newest first, in the requested
// format (csv or pdf).
func (s *ExportService) Timeline(ctx context.Context, format string) (*ExportFile, error) {
	events, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageFailure.Code, appErrors.ErrStorageFailure.Status, "failed to read event collection")
	}

	confirmed := make([]models.Event, 0, len(events))
	for _, e := range events {
		if e.Status == models.StatusConfirmed {
			confirmed = append(confirmed, e)
		}
	}
	sort.SliceStable(confirmed, func(i, j int) bool {
		return confirmed[i].CreatedAt > confirmed[j].CreatedAt
	})

	dataset := export.Dataset{Headers: timelineHeaders}
	for _, e := range confirmed {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":  time.UnixMilli(e.CreatedAt).UTC().Format("2006-01-02"),
			"Title": e.Title,
			"Type":  string(e.EventType),
			"Tags":  strings.Join(e.Tags, "; "),
			"Files": strconv.Itoa(len(e.Files)),
		})
	}

	stamp := time.Now().UTC().Format("20060102")
	switch strings.ToLower(format) {
	case "", "csv":
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("timeline_%s.csv", stamp),
			ContentType: "text/csv",
			Content:     content,
		}, nil
	case "pdf":
		content, err := s.pdf.Render(dataset, "Archive Timeline")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("timeline_%s.pdf", stamp),
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/citadel-archive/citadel-api/internal/dto"
	"github.com/citadel-archive/citadel-api/internal/models"
	appErrors "github.com/citadel-archive/citadel-api/pkg/errors"
)

type eventStore interface {
	GetAll(ctx context.Context) ([]models.Event, error)
	Save(ctx context.Context, event models.Event) error
	Delete(ctx context.Context, id string) error
}

type vaultStorage interface {
	Save(storagePath string, data []byte) (string, error)
	Open(storagePath string) (*os.File, error)
	Delete(storagePath string) error
}

type downloadSigner interface {
	Generate(fileID, storagePath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (fileID, storagePath string, expiresAt time.Time, err error)
}

type storeObserver interface {
	ObserveStoreOp(op string, err error)
}

// ImportUpload carries the metadata and bytes of a manually imported file.
type ImportUpload struct {
	Filename string
	Size     int64
	MimeType string
	Content  io.Reader
}

// FileDownload bundles a vault file handle for streaming to the client.
type FileDownload struct {
	File     *os.File
	Filename string
	MimeType string
	Size     int64
}

// EventServiceConfig holds wiring parameters.
type EventServiceConfig struct {
	APIPrefix string
}

// EventService implements the archive lifecycle: import, classification,
// questionnaire answers, confirm/archive transitions, search, timeline,
// and deletion. Every mutation is a read-modify-write against the
// current snapshot; the store overwrites unconditionally.
type EventService struct {
	repo      eventStore
	vault     vaultStorage
	signer    downloadSigner
	metrics   storeObserver
	validator *validator.Validate
	logger    *zap.Logger
	cfg       EventServiceConfig
}

// NewEventService constructs the service with defaults.
func NewEventService(repo eventStore, vault vaultStorage, signer downloadSigner, metrics storeObserver, validate *validator.Validate, logger *zap.Logger, cfg EventServiceConfig) *EventService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	return &EventService{
		repo:      repo,
		vault:     vault,
		signer:    signer,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// ImportFile creates a draft event from an uploaded file. The bytes go
// into the vault under Inbox/<yyyy-mm>/ and the event waits in the
// inbox for classification.
func (s *EventService) ImportFile(ctx context.Context, upload ImportUpload) (*models.Event, error) {
	if strings.TrimSpace(upload.Filename) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "filename is required")
	}
	if upload.Content == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	data, err := io.ReadAll(upload.Content)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload")
	}

	now := time.Now()
	storagePath := fmt.Sprintf("Inbox/%s/%s", now.UTC().Format("2006-01"), upload.Filename)
	if _, err := s.vault.Save(storagePath, data); err != nil {
		return nil, s.storageFailure("vault_save", err, "failed to persist imported file")
	}

	size := upload.Size
	if size <= 0 {
		size = int64(len(data))
	}
	event := models.Event{
		ID:        uuid.NewString(),
		CreatedAt: now.UnixMilli(),
		Source:    models.SourceUpload,
		EventType: models.EventTypeOther,
		Title:     upload.Filename,
		Summary:   "Imported file pending classification...",
		UserAnswers: map[string]string{},
		Tags:        []string{},
		Files: []models.FileRecord{{
			ID:               uuid.NewString(),
			OriginalFilename: upload.Filename,
			Hash:             fingerprint(data),
			Size:             size,
			MimeType:         upload.MimeType,
			StoragePath:      storagePath,
		}},
		Entities: emptyEntities(),
		Status:   models.StatusDraft,
	}

	if err := s.saveEvent(ctx, event); err != nil {
		_ = s.vault.Delete(storagePath)
		return nil, err
	}
	return &event, nil
}

// CreateNote creates a draft event with no attached files.
func (s *EventService) CreateNote(ctx context.Context, req dto.CreateNoteRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid note payload")
	}
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	event := models.Event{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UnixMilli(),
		Source:      models.SourceNote,
		EventType:   models.EventTypeNote,
		Title:       req.Title,
		Summary:     req.Summary,
		UserAnswers: map[string]string{},
		Tags:        tags,
		Files:       []models.FileRecord{},
		Entities:    emptyEntities(),
		Status:      models.StatusDraft,
	}
	if err := s.saveEvent(ctx, event); err != nil {
		return nil, err
	}
	return &event, nil
}

// Get returns one event by id.
func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	events, err := s.getAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range events {
		if events[i].ID == id {
			return &events[i], nil
		}
	}
	return nil, appErrors.ErrNotFound
}

// List returns events, optionally filtered by status, in stored order.
func (s *EventService) List(ctx context.Context, filter dto.EventFilter) ([]models.Event, error) {
	events, err := s.getAll(ctx)
	if err != nil {
		return nil, err
	}
	if filter.Status == "" {
		return events, nil
	}
	filtered := make([]models.Event, 0, len(events))
	for _, e := range events {
		if e.Status == filter.Status {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// UpdateClassification changes the event type. Answers recorded under a
// prior type are preserved verbatim; nothing migrates or validates them.
func (s *EventService) UpdateClassification(ctx context.Context, id string, req dto.UpdateClassificationRequest) (*models.Event, error) {
	if !req.EventType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown event type")
	}
	return s.mutate(ctx, id, func(e *models.Event) error {
		e.EventType = req.EventType
		return nil
	})
}

// SetAnswer records one questionnaire answer, keyed by the question
// text. Each edit is a full read-modify-write cycle.
func (s *EventService) SetAnswer(ctx context.Context, id, question, answer string) (*models.Event, error) {
	if strings.TrimSpace(question) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "question is required")
	}
	return s.mutate(ctx, id, func(e *models.Event) error {
		if e.UserAnswers == nil {
			e.UserAnswers = map[string]string{}
		}
		e.UserAnswers[question] = answer
		return nil
	})
}

// UpdateDetails patches title, summary, and tags.
func (s *EventService) UpdateDetails(ctx context.Context, id string, req dto.UpdateEventRequest) (*models.Event, error) {
	return s.mutate(ctx, id, func(e *models.Event) error {
		if req.Title != nil {
			e.Title = *req.Title
		}
		if req.Summary != nil {
			e.Summary = *req.Summary
		}
		if req.Tags != nil {
			e.Tags = *req.Tags
		}
		return nil
	})
}

// Confirm moves a draft event to confirmed. A mobile capture is marked
// transferred to desktop in the same update.
func (s *EventService) Confirm(ctx context.Context, id string) (*models.Event, error) {
	return s.mutate(ctx, id, func(e *models.Event) error {
		return e.Confirm()
	})
}

// Archive moves a confirmed event to the archived terminal state.
func (s *EventService) Archive(ctx context.Context, id string) (*models.Event, error) {
	return s.mutate(ctx, id, func(e *models.Event) error {
		return e.Archive()
	})
}

// Delete removes the record entirely; no tombstone is kept. Vault files
// are removed best-effort, and a missing id is not an error.
func (s *EventService) Delete(ctx context.Context, id string) error {
	events, err := s.getAll(ctx)
	if err != nil {
		return err
	}
	for _, e := range events {
		if e.ID != id {
			continue
		}
		for _, f := range e.Files {
			if err := s.vault.Delete(f.StoragePath); err != nil {
				s.logger.Warn("failed to remove vault file", zap.Error(err), zap.String("path", f.StoragePath))
			}
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.storageFailure("delete", err, "failed to delete event")
	}
	s.observe("delete", nil)
	return nil
}

// Search returns events whose title, summary, or tags contain the query
// as a case-insensitive substring.
func (s *EventService) Search(ctx context.Context, query string) ([]models.Event, error) {
	events, err := s.getAll(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]models.Event, 0)
	if strings.TrimSpace(query) == "" {
		return results, nil
	}
	for _, e := range events {
		if e.Matches(query) {
			results = append(results, e)
		}
	}
	return results, nil
}

// Timeline groups confirmed events by month, newest first.
func (s *EventService) Timeline(ctx context.Context) ([]dto.TimelineGroup, error) {
	events, err := s.getAll(ctx)
	if err != nil {
		return nil, err
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

	groups := make([]dto.TimelineGroup, 0)
	index := map[string]int{}
	for _, e := range confirmed {
		month := time.UnixMilli(e.CreatedAt).UTC().Format("January 2006")
		i, ok := index[month]
		if !ok {
			i = len(groups)
			index[month] = i
			groups = append(groups, dto.TimelineGroup{Month: month})
		}
		groups[i].Events = append(groups[i].Events, e)
	}
	return groups, nil
}

// FileDownloadURL generates a signed URL for one attached file.
func (s *EventService) FileDownloadURL(ctx context.Context, eventID, fileID string) (*dto.FileURLResponse, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "download signer unavailable")
	}
	file, err := s.findFile(ctx, eventID, fileID)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(file.ID, file.StoragePath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate download token")
	}
	base := strings.TrimRight(s.cfg.APIPrefix, "/")
	return &dto.FileURLResponse{
		FileID:      file.ID,
		DownloadURL: fmt.Sprintf("%s/events/%s/files/%s/download?token=%s", base, eventID, file.ID, token),
		ExpiresAt:   expiresAt.UnixMilli(),
	}, nil
}

// DownloadFile validates the signed token and opens the vault file.
func (s *EventService) DownloadFile(ctx context.Context, eventID, fileID, token string) (*FileDownload, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "download signer unavailable")
	}
	file, err := s.findFile(ctx, eventID, fileID)
	if err != nil {
		return nil, err
	}
	tokenFileID, storagePath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired token")
	}
	if tokenFileID != file.ID || storagePath != file.StoragePath {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	handle, err := s.vault.Open(storagePath)
	if err != nil {
		return nil, s.storageFailure("vault_open", err, "failed to open vault file")
	}
	info, err := handle.Stat()
	if err != nil {
		handle.Close() //nolint:errcheck
		return nil, s.storageFailure("vault_stat", err, "failed to read vault file metadata")
	}
	return &FileDownload{
		File:     handle,
		Filename: file.OriginalFilename,
		MimeType: file.MimeType,
		Size:     info.Size(),
	}, nil
}

func (s *EventService) mutate(ctx context.Context, id string, apply func(*models.Event) error) (*models.Event, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(event); err != nil {
		if errors.Is(err, models.ErrStatusOrder) {
			return nil, appErrors.ErrInvalidTransition
		}
		return nil, err
	}
	if err := s.saveEvent(ctx, *event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) getAll(ctx context.Context) ([]models.Event, error) {
	events, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, s.storageFailure("get_all", err, "failed to read event collection")
	}
	s.observe("get_all", nil)
	return events, nil
}

func (s *EventService) saveEvent(ctx context.Context, event models.Event) error {
	if err := s.repo.Save(ctx, event); err != nil {
		return s.storageFailure("save", err, "failed to save event")
	}
	s.observe("save", nil)
	return nil
}

func (s *EventService) storageFailure(op string, err error, message string) *appErrors.Error {
	s.observe(op, err)
	s.logger.Error("store operation failed", zap.String("op", op), zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrStorageFailure.Code, appErrors.ErrStorageFailure.Status, message)
}

func (s *EventService) observe(op string, err error) {
	if s.metrics != nil {
		s.metrics.ObserveStoreOp(op, err)
	}
}

func (s *EventService) findFile(ctx context.Context, eventID, fileID string) (*models.FileRecord, error) {
	event, err := s.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	for i := range event.Files {
		if event.Files[i].ID == fileID {
			return &event.Files[i], nil
		}
	}
	return nil, appErrors.ErrNotFound
}

func emptyEntities() models.Entities {
	return models.Entities{People: []string{}, Orgs: []string{}, Places: []string{}}
}

// fingerprint returns the blake2b-256 hex digest of the file content.
func fingerprint(data []byte) string {
	sum := blake2b.Sum256(data)
	return fmt.Sprintf("%x", sum)
}

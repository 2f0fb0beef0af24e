package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/citadel-archive/citadel-api/internal/dto"
	"github.com/citadel-archive/citadel-api/internal/models"
	appErrors "github.com/citadel-archive/citadel-api/pkg/errors"
)

// Mobile capture questions. The answer to the first doubles as the
// suggested event type; the third becomes a tag when present.
const (
	captureQuestionType = "What is this?"
	captureQuestionKeep = "Keep forever?"
	captureQuestionTag  = "Any tag?"
)

// CaptureService handles mobile quick-capture: a draft event with one
// temporarily retained image file. Captures stay in the pending list
// until confirmed on the desktop, which marks them transferred.
type CaptureService struct {
	repo      eventStore
	vault     vaultStorage
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCaptureService constructs the service with defaults.
func NewCaptureService(repo eventStore, vault vaultStorage, validate *validator.Validate, logger *zap.Logger) *CaptureService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CaptureService{repo: repo, vault: vault, validator: validate, logger: logger}
}

// Capture creates a mobile-capture draft. The image lands under
// Mobile/Temp/ and carries an advisory expiry 30 days out; nothing ever
// sweeps it.
func (s *CaptureService) Capture(ctx context.Context, req dto.CaptureRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid capture payload")
	}

	var image []byte
	if req.ImageBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "image_base64 is not valid base64")
		}
		image = decoded
	}

	now := time.Now()
	eventID := uuid.NewString()
	storagePath := fmt.Sprintf("Mobile/Temp/%s.jpg", eventID)
	if _, err := s.vault.Save(storagePath, image); err != nil {
		s.logger.Error("failed to persist capture image", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrStorageFailure.Code, appErrors.ErrStorageFailure.Status, "failed to persist capture image")
	}

	expiresAt := now.Add(models.CaptureRetention).UnixMilli()
	event := models.Event{
		ID:          eventID,
		CreatedAt:   now.UnixMilli(),
		Source:      models.SourceCamera,
		EventType:   captureType(req.Answers),
		Title:       "Mobile Capture " + now.UTC().Format("2006-01-02"),
		Summary:     "Temporarily stored capture from mobile device. Expires in 30 days.",
		UserAnswers: req.Answers,
		Tags:        captureTags(req.Answers),
		Files: []models.FileRecord{{
			ID:               uuid.NewString(),
			OriginalFilename: "mobile_capture.jpg",
			Hash:             fingerprint(image),
			Size:             int64(len(image)),
			MimeType:         "image/jpeg",
			StoragePath:      storagePath,
			ExpiresAt:        &expiresAt,
		}},
		Entities:        emptyEntities(),
		Status:          models.StatusDraft,
		IsMobileCapture: true,
	}

	if err := s.repo.Save(ctx, event); err != nil {
		_ = s.vault.Delete(storagePath)
		return nil, appErrors.Wrap(err, appErrors.ErrStorageFailure.Code, appErrors.ErrStorageFailure.Status, "failed to save capture")
	}
	return &event, nil
}

// Pending lists captures that have not yet been confirmed on the
// desktop, each annotated with its remaining retention.
func (s *CaptureService) Pending(ctx context.Context) ([]dto.PendingCapture, error) {
	events, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageFailure.Code, appErrors.ErrStorageFailure.Status, "failed to read event collection")
	}
	now := time.Now()
	pending := make([]dto.PendingCapture, 0)
	for _, e := range events {
		if !e.IsMobileCapture || e.TransferredToDesktop {
			continue
		}
		if e.Status != models.StatusDraft {
			continue
		}
		entry := dto.PendingCapture{Event: e}
		for _, f := range e.Files {
			if f.ExpiresAt == nil {
				continue
			}
			expires := *f.ExpiresAt
			entry.ExpiresAt = &expires
			remaining, ok := f.RemainingRetention(now)
			if ok {
				ms := remaining.Milliseconds()
				entry.RemainingMs = &ms
			}
			entry.Expired = f.Expired(now)
			break
		}
		pending = append(pending, entry)
	}
	return pending, nil
}

// captureType maps the first questionnaire answer to an event type,
// falling back to other for anything unrecognised.
func captureType(answers map[string]string) models.EventType {
	t := models.EventType(strings.ToLower(strings.TrimSpace(answers[captureQuestionType])))
	if t.Valid() {
		return t
	}
	return models.EventTypeOther
}

func captureTags(answers map[string]string) []string {
	tag := strings.TrimSpace(answers[captureQuestionTag])
	if tag == "" {
		return []string{}
	}
	return []string{tag}
}

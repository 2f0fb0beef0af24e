package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/citadel-archive/citadel-api/internal/dto"
	"github.com/citadel-archive/citadel-api/internal/models"
	"github.com/citadel-archive/citadel-api/pkg/config"
	appErrors "github.com/citadel-archive/citadel-api/pkg/errors"
	"github.com/citadel-archive/citadel-api/pkg/storage"
)

// PairingSubject identifies link-code tokens minted for mobile capture.
const PairingSubject = "mobile-capture"

type appStateStore interface {
	Get(ctx context.Context) (*models.AppState, error)
	Save(ctx context.Context, state models.AppState) error
}

// SettingsService owns the singleton settings record, the first-run
// wizard, and mobile pairing link codes.
type SettingsService struct {
	repo      appStateStore
	capture   config.CaptureConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSettingsService constructs the service with defaults.
func NewSettingsService(repo appStateStore, capture config.CaptureConfig, validate *validator.Validate, logger *zap.Logger) *SettingsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if capture.PairingTTL <= 0 {
		capture.PairingTTL = 10 * time.Minute
	}
	return &SettingsService{repo: repo, capture: capture, validator: validate, logger: logger}
}

// Get returns the current settings, or ErrNotSetup before the wizard
// has completed.
func (s *SettingsService) Get(ctx context.Context) (*models.AppState, error) {
	state, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, appErrors.ErrNotSetup
	}
	return state, nil
}

// Setup completes the first-run wizard: it creates the archive root
// with the standard folder layout and persists the initial settings.
// Running it again simply points the archive at a new root.
func (s *SettingsService) Setup(ctx context.Context, req dto.SetupRequest) (*models.AppState, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid setup payload")
	}

	vault, err := storage.NewVault(req.RootPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageFailure.Code, appErrors.ErrStorageFailure.Status, "failed to create archive root")
	}
	if err := vault.InitBaseFolders(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageFailure.Code, appErrors.ErrStorageFailure.Status, "failed to create base folders")
	}

	state := models.AppState{
		IsSetup:  true,
		RootPath: req.RootPath,
		APIKey:   strings.TrimSpace(req.APIKey),
	}
	if err := s.repo.Save(ctx, state); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageFailure.Code, appErrors.ErrStorageFailure.Status, "failed to save settings")
	}
	s.logger.Info("archive setup complete", zap.String("root", req.RootPath))
	return &state, nil
}

// Update patches the settings record; nil fields are left untouched.
func (s *SettingsService) Update(ctx context.Context, req dto.UpdateSettingsRequest) (*models.AppState, error) {
	state, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, appErrors.ErrNotSetup
	}
	if req.RootPath != nil {
		state.RootPath = *req.RootPath
	}
	if req.APIKey != nil {
		state.APIKey = *req.APIKey
	}
	if req.SelectedEventID != nil {
		state.SelectedEventID = *req.SelectedEventID
	}
	if req.IsMobileView != nil {
		state.IsMobileView = *req.IsMobileView
	}
	if err := s.repo.Save(ctx, *state); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageFailure.Code, appErrors.ErrStorageFailure.Status, "failed to save settings")
	}
	return state, nil
}

// GenerateLinkCode mints a short-lived pairing token. The mobile client
// presents it as a bearer credential on the capture endpoints.
func (s *SettingsService) GenerateLinkCode(ctx context.Context) (*dto.LinkCodeResponse, error) {
	state, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, appErrors.ErrNotSetup
	}

	now := time.Now()
	expiresAt := now.Add(s.capture.PairingTTL)
	claims := jwt.RegisteredClaims{
		Subject:   PairingSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.capture.PairingSecret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign link code")
	}
	return &dto.LinkCodeResponse{Code: signed, ExpiresAt: expiresAt.UnixMilli()}, nil
}

func (s *SettingsService) load(ctx context.Context) (*models.AppState, error) {
	state, err := s.repo.Get(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageFailure.Code, appErrors.ErrStorageFailure.Status, "failed to read settings")
	}
	return state, nil
}

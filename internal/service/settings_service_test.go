package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/citadel-archive/citadel-api/internal/dto"
	"github.com/citadel-archive/citadel-api/internal/models"
	"github.com/citadel-archive/citadel-api/pkg/config"
	appErrors "github.com/citadel-archive/citadel-api/pkg/errors"
	"github.com/citadel-archive/citadel-api/pkg/storage"
)

type settingsRepoStub struct {
	state *models.AppState
}

func (s *settingsRepoStub) Get(ctx context.Context) (*models.AppState, error) {
	return s.state, nil
}

func (s *settingsRepoStub) Save(ctx context.Context, state models.AppState) error {
	s.state = &state
	return nil
}

func testCaptureConfig() config.CaptureConfig {
	return config.CaptureConfig{
		PairingSecret: "pairing-secret",
		PairingTTL:    10 * time.Minute,
	}
}

func TestSettingsGetBeforeSetup(t *testing.T) {
	svc := NewSettingsService(&settingsRepoStub{}, testCaptureConfig(), nil, nil)

	_, err := svc.Get(context.Background())
	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrNotSetup.Code, appErr.Code)
}

func TestSettingsSetupCreatesBaseFolders(t *testing.T) {
	root := filepath.Join(t.TempDir(), "ArchiveRoot")
	repo := &settingsRepoStub{}
	svc := NewSettingsService(repo, testCaptureConfig(), nil, nil)

	state, err := svc.Setup(context.Background(), dto.SetupRequest{RootPath: root, APIKey: " key-1 "})
	require.NoError(t, err)
	require.True(t, state.IsSetup)
	require.Equal(t, root, state.RootPath)
	require.Equal(t, "key-1", state.APIKey)
	require.NotNil(t, repo.state)

	for _, folder := range storage.BaseFolders {
		info, err := os.Stat(filepath.Join(root, folder))
		require.NoError(t, err)
		require.True(t, info.IsDir())
	}
}

func TestSettingsSetupRequiresRootPath(t *testing.T) {
	svc := NewSettingsService(&settingsRepoStub{}, testCaptureConfig(), nil, nil)
	_, err := svc.Setup(context.Background(), dto.SetupRequest{})
	require.Error(t, err)
}

func TestSettingsUpdate(t *testing.T) {
	repo := &settingsRepoStub{state: &models.AppState{IsSetup: true, RootPath: "/old", APIKey: "k"}}
	svc := NewSettingsService(repo, testCaptureConfig(), nil, nil)

	newKey := "fresh-key"
	mobile := true
	state, err := svc.Update(context.Background(), dto.UpdateSettingsRequest{
		APIKey:       &newKey,
		IsMobileView: &mobile,
	})
	require.NoError(t, err)
	require.Equal(t, "fresh-key", state.APIKey)
	require.True(t, state.IsMobileView)
	require.Equal(t, "/old", state.RootPath)
}

func TestSettingsUpdateBeforeSetup(t *testing.T) {
	svc := NewSettingsService(&settingsRepoStub{}, testCaptureConfig(), nil, nil)
	key := "k"
	_, err := svc.Update(context.Background(), dto.UpdateSettingsRequest{APIKey: &key})
	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrNotSetup.Code, appErr.Code)
}

func TestSettingsGenerateLinkCode(t *testing.T) {
	repo := &settingsRepoStub{state: &models.AppState{IsSetup: true, RootPath: "/root"}}
	svc := NewSettingsService(repo, testCaptureConfig(), nil, nil)

	code, err := svc.GenerateLinkCode(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, code.Code)
	require.Greater(t, code.ExpiresAt, time.Now().UnixMilli())

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(code.Code, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte("pairing-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)
	require.Equal(t, PairingSubject, claims.Subject)
	require.NotEmpty(t, claims.ID)
}

func TestSettingsGenerateLinkCodeBeforeSetup(t *testing.T) {
	svc := NewSettingsService(&settingsRepoStub{}, testCaptureConfig(), nil, nil)
	_, err := svc.GenerateLinkCode(context.Background())
	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrNotSetup.Code, appErr.Code)
}

package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/citadel-archive/citadel-api/internal/dto"
	"github.com/citadel-archive/citadel-api/internal/models"
	appErrors "github.com/citadel-archive/citadel-api/pkg/errors"
	"github.com/citadel-archive/citadel-api/pkg/storage"
)

type eventRepoStub struct {
	events  []models.Event
	saveErr error
	getErr  error
}

func (r *eventRepoStub) GetAll(ctx context.Context) ([]models.Event, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	return append([]models.Event(nil), r.events...), nil
}

func (r *eventRepoStub) Save(ctx context.Context, event models.Event) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	for i := range r.events {
		if r.events[i].ID == event.ID {
			r.events[i] = event
			return nil
		}
	}
	r.events = append(r.events, event)
	return nil
}

func (r *eventRepoStub) Delete(ctx context.Context, id string) error {
	filtered := r.events[:0]
	for _, e := range r.events {
		if e.ID != id {
			filtered = append(filtered, e)
		}
	}
	r.events = filtered
	return nil
}

type vaultStub struct {
	saved   map[string][]byte
	files   map[string]string
	deleted []string
}

func newVaultStub() *vaultStub {
	return &vaultStub{saved: map[string][]byte{}, files: map[string]string{}}
}

func (v *vaultStub) Save(storagePath string, data []byte) (string, error) {
	v.saved[storagePath] = data
	path := filepath.Join(os.TempDir(), "vault-test-"+strings.ReplaceAll(storagePath, "/", "_"))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	v.files[storagePath] = path
	return storagePath, nil
}

func (v *vaultStub) Open(storagePath string) (*os.File, error) {
	path, ok := v.files[storagePath]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return os.Open(path)
}

func (v *vaultStub) Delete(storagePath string) error {
	if path, ok := v.files[storagePath]; ok {
		_ = os.Remove(path)
		delete(v.files, storagePath)
	}
	delete(v.saved, storagePath)
	v.deleted = append(v.deleted, storagePath)
	return nil
}

func newTestEventService(repo *eventRepoStub, vault *vaultStub) *EventService {
	signer := storage.NewSignedURLSigner("test-secret", time.Minute)
	return NewEventService(repo, vault, signer, nil, nil, nil, EventServiceConfig{APIPrefix: "/api/v1"})
}

func TestEventServiceImportFile(t *testing.T) {
	repo := &eventRepoStub{}
	vault := newVaultStub()
	svc := newTestEventService(repo, vault)

	event, err := svc.ImportFile(context.Background(), ImportUpload{
		Filename: "statement.pdf",
		Size:     11,
		MimeType: "application/pdf",
		Content:  bytes.NewReader([]byte("hello world")),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		for path := range vault.files {
			_ = vault.Delete(path)
		}
	})

	require.Equal(t, models.StatusDraft, event.Status)
	require.Equal(t, models.SourceUpload, event.Source)
	require.Equal(t, models.EventTypeOther, event.EventType)
	require.Equal(t, "statement.pdf", event.Title)
	require.Len(t, event.Files, 1)

	file := event.Files[0]
	require.True(t, strings.HasPrefix(file.StoragePath, "Inbox/"))
	require.Contains(t, file.StoragePath, time.Now().UTC().Format("2006-01"))
	require.NotEmpty(t, file.Hash)
	require.Equal(t, int64(11), file.Size)
	require.Nil(t, file.ExpiresAt)
	require.Contains(t, vault.saved, file.StoragePath)
	require.Len(t, repo.events, 1)
}

func TestEventServiceImportRequiresFilename(t *testing.T) {
	svc := newTestEventService(&eventRepoStub{}, newVaultStub())
	_, err := svc.ImportFile(context.Background(), ImportUpload{Content: bytes.NewReader(nil)})
	require.Error(t, err)
}

func TestEventServiceImportCleansUpOnSaveFailure(t *testing.T) {
	repo := &eventRepoStub{saveErr: fmt.Errorf("disk full")}
	vault := newVaultStub()
	svc := newTestEventService(repo, vault)

	_, err := svc.ImportFile(context.Background(), ImportUpload{
		Filename: "doc.txt",
		Content:  bytes.NewReader([]byte("x")),
	})
	require.Error(t, err)
	require.Len(t, vault.deleted, 1)
}

func TestEventServiceCreateNote(t *testing.T) {
	repo := &eventRepoStub{}
	svc := newTestEventService(repo, newVaultStub())

	event, err := svc.CreateNote(context.Background(), dto.CreateNoteRequest{
		Title:   "Thought",
		Summary: "An idea worth keeping",
		Tags:    []string{"ideas"},
	})
	require.NoError(t, err)
	require.Equal(t, models.EventTypeNote, event.EventType)
	require.Equal(t, models.SourceNote, event.Source)
	require.Empty(t, event.Files)
	require.Equal(t, models.StatusDraft, event.Status)

	_, err = svc.CreateNote(context.Background(), dto.CreateNoteRequest{})
	require.Error(t, err)
}

func TestEventServiceConfirmAndArchive(t *testing.T) {
	repo := &eventRepoStub{events: []models.Event{{ID: "evt-1", Status: models.StatusDraft}}}
	svc := newTestEventService(repo, newVaultStub())

	event, err := svc.Confirm(context.Background(), "evt-1")
	require.NoError(t, err)
	require.Equal(t, models.StatusConfirmed, event.Status)

	event, err = svc.Archive(context.Background(), "evt-1")
	require.NoError(t, err)
	require.Equal(t, models.StatusArchived, event.Status)

	_, err = svc.Confirm(context.Background(), "evt-1")
	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrInvalidTransition.Code, appErr.Code)
}

func TestEventServiceArchiveRequiresConfirmed(t *testing.T) {
	repo := &eventRepoStub{events: []models.Event{{ID: "evt-1", Status: models.StatusDraft}}}
	svc := newTestEventService(repo, newVaultStub())

	_, err := svc.Archive(context.Background(), "evt-1")
	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrInvalidTransition.Code, appErr.Code)
	require.Equal(t, models.StatusDraft, repo.events[0].Status)
}

func TestEventServiceUpdateClassification(t *testing.T) {
	repo := &eventRepoStub{events: []models.Event{{
		ID:          "evt-1",
		EventType:   models.EventTypeOther,
		UserAnswers: map[string]string{"What is this?": "a receipt"},
	}}}
	svc := newTestEventService(repo, newVaultStub())

	event, err := svc.UpdateClassification(context.Background(), "evt-1", dto.UpdateClassificationRequest{
		EventType: models.EventTypeReceipt,
	})
	require.NoError(t, err)
	require.Equal(t, models.EventTypeReceipt, event.EventType)
	// answers from the prior type survive the reclassification
	require.Equal(t, "a receipt", event.UserAnswers["What is this?"])

	_, err = svc.UpdateClassification(context.Background(), "evt-1", dto.UpdateClassificationRequest{
		EventType: models.EventType("bogus"),
	})
	require.Error(t, err)
}

func TestEventServiceSetAnswer(t *testing.T) {
	repo := &eventRepoStub{events: []models.Event{{ID: "evt-1"}}}
	svc := newTestEventService(repo, newVaultStub())

	event, err := svc.SetAnswer(context.Background(), "evt-1", "Total Amount?", "42.00")
	require.NoError(t, err)
	require.Equal(t, "42.00", event.UserAnswers["Total Amount?"])

	event, err = svc.SetAnswer(context.Background(), "evt-1", "Total Amount?", "43.00")
	require.NoError(t, err)
	require.Equal(t, "43.00", event.UserAnswers["Total Amount?"])
}

func TestEventServiceDeleteRemovesVaultFiles(t *testing.T) {
	vault := newVaultStub()
	_, err := vault.Save("Inbox/2026-08/doc.txt", []byte("data"))
	require.NoError(t, err)

	repo := &eventRepoStub{events: []models.Event{{
		ID:    "evt-1",
		Files: []models.FileRecord{{ID: "file-1", StoragePath: "Inbox/2026-08/doc.txt"}},
	}}}
	svc := newTestEventService(repo, vault)

	require.NoError(t, svc.Delete(context.Background(), "evt-1"))
	require.Empty(t, repo.events)
	require.Contains(t, vault.deleted, "Inbox/2026-08/doc.txt")

	// deleting again is a no-op
	require.NoError(t, svc.Delete(context.Background(), "evt-1"))
}

func TestEventServiceSearch(t *testing.T) {
	repo := &eventRepoStub{events: []models.Event{
		{ID: "evt-1", Title: "Grocery Receipt"},
		{ID: "evt-2", Summary: "Bought groceries"},
		{ID: "evt-3", Tags: []string{"Groceries"}},
		{ID: "evt-4", Title: "Passport renewal"},
	}}
	svc := newTestEventService(repo, newVaultStub())

	results, err := svc.Search(context.Background(), "GROCER")
	require.NoError(t, err)
	require.Len(t, results, 3)

	results, err = svc.Search(context.Background(), "")
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestEventServiceTimelineGroupsByMonth(t *testing.T) {
	jan := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC).UnixMilli()
	feb := time.Date(2026, time.February, 5, 0, 0, 0, 0, time.UTC).UnixMilli()
	repo := &eventRepoStub{events: []models.Event{
		{ID: "evt-1", CreatedAt: jan, Status: models.StatusConfirmed},
		{ID: "evt-2", CreatedAt: feb, Status: models.StatusConfirmed},
		{ID: "evt-3", CreatedAt: feb, Status: models.StatusDraft},
		{ID: "evt-4", CreatedAt: jan + 1000, Status: models.StatusConfirmed},
	}}
	svc := newTestEventService(repo, newVaultStub())

	groups, err := svc.Timeline(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 2)
	require.Equal(t, "February 2026", groups[0].Month)
	require.Len(t, groups[0].Events, 1)
	require.Equal(t, "January 2026", groups[1].Month)
	require.Len(t, groups[1].Events, 2)
	// newest first within the month
	require.Equal(t, "evt-4", groups[1].Events[0].ID)
}

func TestEventServiceFileDownloadRoundTrip(t *testing.T) {
	vault := newVaultStub()
	_, err := vault.Save("Inbox/2026-08/doc.txt", []byte("payload"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = vault.Delete("Inbox/2026-08/doc.txt") })

	repo := &eventRepoStub{events: []models.Event{{
		ID: "evt-1",
		Files: []models.FileRecord{{
			ID:               "file-1",
			OriginalFilename: "doc.txt",
			MimeType:         "text/plain",
			StoragePath:      "Inbox/2026-08/doc.txt",
		}},
	}}}
	svc := newTestEventService(repo, vault)

	urlResp, err := svc.FileDownloadURL(context.Background(), "evt-1", "file-1")
	require.NoError(t, err)
	require.Contains(t, urlResp.DownloadURL, "/api/v1/events/evt-1/files/file-1/download?token=")

	parts := strings.SplitN(urlResp.DownloadURL, "token=", 2)
	require.Len(t, parts, 2)

	download, err := svc.DownloadFile(context.Background(), "evt-1", "file-1", parts[1])
	require.NoError(t, err)
	require.Equal(t, "doc.txt", download.Filename)
	require.Equal(t, int64(7), download.Size)
	download.File.Close() //nolint:errcheck

	_, err = svc.DownloadFile(context.Background(), "evt-1", "file-1", "bad.token")
	require.Error(t, err)
}

func TestEventServiceListFiltersByStatus(t *testing.T) {
	repo := &eventRepoStub{events: []models.Event{
		{ID: "evt-1", Status: models.StatusDraft},
		{ID: "evt-2", Status: models.StatusConfirmed},
	}}
	svc := newTestEventService(repo, newVaultStub())

	events, err := svc.List(context.Background(), dto.EventFilter{Status: models.StatusDraft})
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "evt-1", events[0].ID)

	events, err = svc.List(context.Background(), dto.EventFilter{})
	require.NoError(t, err)
	require.Len(t, events, 2)
}

func TestEventServiceGetNotFound(t *testing.T) {
	svc := newTestEventService(&eventRepoStub{}, newVaultStub())
	_, err := svc.Get(context.Background(), "nope")
	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

package models

import (
	"errors"
	"strings"
	"time"
)

// ErrStatusOrder rejects lifecycle transitions that skip a state or move
// backwards.
var ErrStatusOrder = errors.New("event status transitions are forward-only")

// SourceType records how an event entered the archive. Immutable.
type SourceType string

const (
	SourceCamera      SourceType = "camera"
	SourceEmailImport SourceType = "email_import"
	SourceUpload      SourceType = "manual_upload"
	SourceScan        SourceType = "scan"
	SourceNote        SourceType = "note"
)

// EventType classifies an event and selects its questionnaire. Mutable.
type EventType string

const (
	EventTypeReceipt        EventType = "receipt"
	EventTypeEssay          EventType = "essay"
	EventTypeNote           EventType = "note"
	EventTypeQuote          EventType = "quote"
	EventTypeIdentity       EventType = "identity"
	EventTypeCorrespondence EventType = "correspondence"
	EventTypeMedia          EventType = "media"
	EventTypeOther          EventType = "other"
)

// Valid returns true when the type is a supported value.
func (t EventType) Valid() bool {
	switch t {
	case EventTypeReceipt, EventTypeEssay, EventTypeNote, EventTypeQuote,
		EventTypeIdentity, EventTypeCorrespondence, EventTypeMedia, EventTypeOther:
		return true
	default:
		return false
	}
}

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	StatusDraft     EventStatus = "draft"
	StatusConfirmed EventStatus = "confirmed"
	StatusArchived  EventStatus = "archived"
)

// rank orders statuses along the one-way lifecycle.
func (s EventStatus) rank() int {
	switch s {
	case StatusDraft:
		return 0
	case StatusConfirmed:
		return 1
	case StatusArchived:
		return 2
	default:
		return -1
	}
}

// CaptureRetention is how long a mobile capture file is held before its
// advisory expiry: exactly 30 days from creation.
const CaptureRetention = 30 * 24 * time.Hour

// FileRecord is one physical asset attached to an event.
type FileRecord struct {
	ID               string `json:"id"`
	OriginalFilename string `json:"original_filename"`
	Hash             string `json:"hash"`
	Size             int64  `json:"size"`
	MimeType         string `json:"mime_type"`
	StoragePath      string `json:"storage_path"`
	// ExpiresAt is set only for mobile-capture files (unix ms). Absence
	// means permanent retention. Expiry is advisory metadata; nothing
	// sweeps or deletes expired files.
	ExpiresAt *int64 `json:"expires_at,omitempty"`
}

// Expired reports whether the advisory retention window has passed.
func (f FileRecord) Expired(now time.Time) bool {
	return f.ExpiresAt != nil && now.UnixMilli() > *f.ExpiresAt
}

// RemainingRetention returns the time left before advisory expiry, zero
// when already expired, and false when the file never expires.
func (f FileRecord) RemainingRetention(now time.Time) (time.Duration, bool) {
	if f.ExpiresAt == nil {
		return 0, false
	}
	remaining := time.UnixMilli(*f.ExpiresAt).Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// Entities holds extracted names, reserved for future extraction. The
// core stores them but never populates them.
type Entities struct {
	People []string `json:"people"`
	Orgs   []string `json:"orgs"`
	Places []string `json:"places"`
}

// Event is the unit of archival record.
type Event struct {
	ID        string     `json:"id"`
	CreatedAt int64      `json:"created_at"`
	Source    SourceType `json:"source"`
	EventType EventType  `json:"event_type"`
	Title     string     `json:"title"`
	Summary   string     `json:"summary"`
	// UserAnswers maps questionnaire question text to the free-text
	// answer. Keys from a prior event type are kept verbatim when the
	// classification changes.
	UserAnswers map[string]string `json:"user_answers"`
	// Tags is an ordered sequence; duplicates are not deduplicated.
	Tags     []string     `json:"tags"`
	Files    []FileRecord `json:"files"`
	Entities Entities     `json:"entities"`
	Status   EventStatus  `json:"status"`

	IsMobileCapture      bool `json:"is_mobile_capture,omitempty"`
	TransferredToDesktop bool `json:"transferred_to_desktop,omitempty"`
}

// CanTransition reports whether the status may move to next. The
// lifecycle is monotonic: draft -> confirmed -> archived, one step at a
// time, never backwards.
func (e *Event) CanTransition(next EventStatus) bool {
	return next.rank() == e.Status.rank()+1
}

// Confirm moves a draft event to confirmed. Confirming a mobile capture
// also marks it as transferred to the desktop archive in the same
// update; that is the only defined way a capture becomes durable.
// Partial questionnaire answers are permitted.
func (e *Event) Confirm() error {
	if !e.CanTransition(StatusConfirmed) {
		return ErrStatusOrder
	}
	e.Status = StatusConfirmed
	if e.IsMobileCapture {
		e.TransferredToDesktop = true
	}
	return nil
}

// Archive moves a confirmed event to the archived terminal state. No UI
// flow drives this transition today, but the state must stay reachable.
func (e *Event) Archive() error {
	if !e.CanTransition(StatusArchived) {
		return ErrStatusOrder
	}
	e.Status = StatusArchived
	return nil
}

// Matches reports whether the query occurs, case-insensitively, in the
// event title, summary, or any tag.
func (e *Event) Matches(query string) bool {
	q := strings.ToLower(query)
	if q == "" {
		return false
	}
	if strings.Contains(strings.ToLower(e.Title), q) || strings.Contains(strings.ToLower(e.Summary), q) {
		return true
	}
	for _, tag := range e.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

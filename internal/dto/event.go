package dto

import "github.com/citadel-archive/citadel-api/internal/models"

// CreateNoteRequest creates a file-less draft event.
type CreateNoteRequest struct {
	Title   string   `json:"title" validate:"required"`
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}

// UpdateClassificationRequest changes the event type. Existing answers
// are preserved verbatim.
type UpdateClassificationRequest struct {
	EventType models.EventType `json:"event_type" validate:"required"`
}

// UpdateEventRequest patches descriptive fields; nil fields are left
// untouched.
type UpdateEventRequest struct {
	Title   *string   `json:"title"`
	Summary *string   `json:"summary"`
	Tags    *[]string `json:"tags"`
}

// SetAnswerRequest records one questionnaire answer.
type SetAnswerRequest struct {
	Answer string `json:"answer"`
}

// EventFilter narrows listing by lifecycle status.
type EventFilter struct {
	Status models.EventStatus
}

// FileURLResponse carries a signed download link for one file record.
type FileURLResponse struct {
	FileID      string `json:"file_id"`
	DownloadURL string `json:"download_url"`
	ExpiresAt   int64  `json:"expires_at"`
}

// TimelineGroup is one month of confirmed events, newest month first.
type TimelineGroup struct {
	Month  string         `json:"month"`
	Events []models.Event `json:"events"`
}

// QuestionnaireResponse lists the questions for an event type.
type QuestionnaireResponse struct {
	EventType string   `json:"event_type"`
	Questions []string `json:"questions"`
}

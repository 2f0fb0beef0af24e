package dto

import "github.com/citadel-archive/citadel-api/internal/models"

// CaptureRequest is the mobile capture payload: the three-question
// answers plus the captured image bytes.
type CaptureRequest struct {
	Answers     map[string]string `json:"answers" validate:"required,min=1"`
	ImageBase64 string            `json:"image_base64"`
}

// PendingCapture annotates an unconfirmed mobile capture with its
// advisory retention state. Expiry is computed, never enforced.
type PendingCapture struct {
	Event       models.Event `json:"event"`
	ExpiresAt   *int64       `json:"expires_at,omitempty"`
	RemainingMs *int64       `json:"remaining_ms,omitempty"`
	Expired     bool         `json:"expired"`
}

// LinkCodeResponse is a short-lived pairing token for a mobile device.
type LinkCodeResponse struct {
	Code      string `json:"code"`
	ExpiresAt int64  `json:"expires_at"`
}

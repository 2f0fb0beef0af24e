package dto

import "github.com/citadel-archive/citadel-api/internal/models"

// ChatRequest carries one user message plus the prior transcript. The
// caller owns the transcript; the server is stateless between turns.
type ChatRequest struct {
	Message string               `json:"message" validate:"required"`
	History []models.ChatMessage `json:"history"`
}

// ChatResponse returns the assistant turn. Fallback is true when the
// reply is the degraded error message rather than a model answer.
type ChatResponse struct {
	Reply    models.ChatMessage `json:"reply"`
	Fallback bool               `json:"fallback,omitempty"`
}

// ClassifyRequest asks the assistant to suggest a classification for a
// newly imported file.
type ClassifyRequest struct {
	Filename string `json:"filename" validate:"required"`
	MimeType string `json:"mime_type"`
}

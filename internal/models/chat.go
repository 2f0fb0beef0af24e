package models

// ChatRole identifies the speaker of a conversation turn.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one turn of the assistant conversation.
type ChatMessage struct {
	Role      ChatRole `json:"role"`
	Content   string   `json:"content"`
	Timestamp int64    `json:"timestamp"`
}

// EventDigest is the compact event view shared with the assistant:
// at most the five most recent events accompany each chat request.
type EventDigest struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Type  EventType `json:"type"`
}

// ClassificationSuggestion is the structured reply from the assistant
// when asked to auto-classify a file.
type ClassificationSuggestion struct {
	Type    string   `json:"type"`
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}

package models

// AppState is the single process-wide settings record. It is loaded and
// saved explicitly like any other entity and passed to the components
// that need it; nothing reads it ambiently.
type AppState struct {
	IsSetup  bool   `json:"is_setup"`
	RootPath string `json:"root_path"`
	// APIKey enables the language-model assistant when non-empty.
	APIKey string `json:"api_key,omitempty"`
	// SelectedEventID and IsMobileView are UI-adjacent state persisted
	// for the shell; the core never interprets them.
	SelectedEventID string `json:"selected_event_id,omitempty"`
	IsMobileView    bool   `json:"is_mobile_view,omitempty"`
}

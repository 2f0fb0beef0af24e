package dto

// SetupRequest completes the first-run wizard.
type SetupRequest struct {
	RootPath string `json:"root_path" validate:"required"`
	APIKey   string `json:"api_key"`
}

// UpdateSettingsRequest patches the settings record; nil fields are
// left untouched.
type UpdateSettingsRequest struct {
	RootPath        *string `json:"root_path"`
	APIKey          *string `json:"api_key"`
	SelectedEventID *string `json:"selected_event_id"`
	IsMobileView    *bool   `json:"is_mobile_view"`
}

package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/citadel-archive/citadel-api/internal/models"
)

// AppStateRepository persists the singleton settings record.
type AppStateRepository struct {
	db *sqlx.DB
}

// NewAppStateRepository constructs the repository.
func NewAppStateRepository(db *sqlx.DB) *AppStateRepository {
	return &AppStateRepository{db: db}
}

// Get loads the settings record, or nil before first-run setup.
func (r *AppStateRepository) Get(ctx context.Context) (*models.AppState, error) {
	raw, err := kvGet(ctx, r.db, appStateKey)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var state models.AppState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode app state: %w", err)
	}
	return &state, nil
}

// Save replaces the settings record unconditionally.
func (r *AppStateRepository) Save(ctx context.Context, state models.AppState) error {
	encoded, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode app state: %w", err)
	}
	return kvPut(ctx, r.db, appStateKey, encoded)
}

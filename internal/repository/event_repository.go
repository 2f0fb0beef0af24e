package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/citadel-archive/citadel-api/internal/models"
)

// EventRepository persists the event collection as a single ordered
// JSON snapshot.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs the repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// GetAll returns every stored event in insertion order. The order is
// stable across calls unless the collection is mutated.
func (r *EventRepository) GetAll(ctx context.Context) ([]models.Event, error) {
	raw, err := kvGet(ctx, r.db, eventsKey)
	if err != nil {
		return nil, err
	}
	return decodeEvents(raw)
}

// Save upserts one event by id. An existing event is replaced in place,
// preserving the relative order of the others; a new event is appended.
// The full snapshot is written inside one transaction.
func (r *EventRepository) Save(ctx context.Context, event models.Event) error {
	if event.ID == "" {
		return fmt.Errorf("save event: id is required")
	}
	return r.rewrite(ctx, func(events []models.Event) []models.Event {
		for i := range events {
			if events[i].ID == event.ID {
				events[i] = event
				return events
			}
		}
		return append(events, event)
	})
}

// Delete removes the event with the given id. A missing id is a no-op
// so deletion stays idempotent.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	return r.rewrite(ctx, func(events []models.Event) []models.Event {
		filtered := events[:0]
		for _, e := range events {
			if e.ID != id {
				filtered = append(filtered, e)
			}
		}
		return filtered
	})
}

func (r *EventRepository) rewrite(ctx context.Context, mutate func([]models.Event) []models.Event) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin event snapshot tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	raw, err := kvGet(ctx, tx, eventsKey)
	if err != nil {
		return err
	}
	events, err := decodeEvents(raw)
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(mutate(events))
	if err != nil {
		return fmt.Errorf("encode event snapshot: %w", err)
	}
	if err := kvPut(ctx, tx, eventsKey, encoded); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit event snapshot: %w", err)
	}
	return nil
}

func decodeEvents(raw []byte) ([]models.Event, error) {
	if len(raw) == 0 {
		return []models.Event{}, nil
	}
	var events []models.Event
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, fmt.Errorf("decode event snapshot: %w", err)
	}
	return events, nil
}

// Package store persists parsed events. Identity keys double as the unique
// constraint, so re-ingesting an overlapping export snapshot is a no-op for
// every record already stored.
package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dkarpov/takeout-ingest/internal/model"
	"github.com/google/uuid"
)

// Record is one stored event row.
type Record struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	Kind       string          `db:"kind" json:"kind"`
	EventKey   string          `db:"event_key" json:"event_key"`
	EventTime  time.Time       `db:"event_time" json:"event_time"`
	Payload    json.RawMessage `db:"payload" json:"payload"`
	IngestedAt time.Time       `db:"ingested_at" json:"ingested_at"`
}

func NewRecord(ev model.Event) (*Record, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	return &Record{
		ID:         uuid.New(),
		Kind:       ev.Kind(),
		EventKey:   ev.Key(),
		EventTime:  ev.Timestamp(),
		Payload:    payload,
		IngestedAt: time.Now().UTC(),
	}, nil
}

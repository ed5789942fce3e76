package store

import (
	"context"
	"fmt"

	"github.com/dkarpov/takeout-ingest/pkg/postgres"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, record *Record) error
	CountByKind(ctx context.Context) (map[string]int64, error)
}

type repository struct {
	db     *postgres.DB
	logger *zap.Logger
}

func NewRepository(db *postgres.DB, logger *zap.Logger) Repository {
	return &repository{
		db:     db,
		logger: logger,
	}
}

func (r *repository) Create(ctx context.Context, record *Record) error {
	query := `
		INSERT INTO events (id, kind, event_key, event_time, payload, ingested_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		record.ID,
		record.Kind,
		record.EventKey,
		record.EventTime,
		record.Payload,
		record.IngestedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" {
				r.logger.Debug("Duplicate event ignored",
					zap.String("kind", record.Kind),
					zap.String("event_key", record.EventKey),
				)
				return ErrDuplicateEvent
			}
		}
		r.logger.Error("Failed to store event", zap.Error(err))
		return fmt.Errorf("failed to store event: %w", err)
	}

	r.logger.Debug("Event stored",
		zap.String("id", record.ID.String()),
		zap.String("kind", record.Kind),
		zap.String("event_key", record.EventKey),
	)

	return nil
}

func (r *repository) CountByKind(ctx context.Context) (map[string]int64, error) {
	query := `
		SELECT kind, COUNT(*) AS total
		FROM events
		GROUP BY kind
	`

	rows := []struct {
		Kind  string `db:"kind"`
		Total int64  `db:"total"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Kind] = row.Total
	}

	return counts, nil
}

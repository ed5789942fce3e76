// Package ingest drives the pipeline: scan an unpacked takeout directory,
// extract typed events from every classified document, deduplicate across
// overlapping exports, then persist and publish what survived.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkarpov/takeout-ingest/internal/extract"
	"github.com/dkarpov/takeout-ingest/internal/merge"
	"github.com/dkarpov/takeout-ingest/internal/model"
	"github.com/dkarpov/takeout-ingest/internal/store"
	"github.com/dkarpov/takeout-ingest/internal/takeout"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EventPublisher interface {
	SendMessage(ctx context.Context, key string, value any) error
}

type Service struct {
	repo      store.Repository
	publisher EventPublisher
	logger    *zap.Logger
}

func NewService(repo store.Repository, publisher EventPublisher, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// Summary reports what one ingest run did. TotalsByKind holds the stored
// row counts per kind after the run, across all runs so far.
type Summary struct {
	RunID        uuid.UUID
	Files        int
	Events       int
	RecordErrors int
	Stored       int
	Duplicates   int
	TotalsByKind map[string]int64
}

// Run ingests every parseable document under root. Record-level failures are
// logged and counted, never fatal: a bad record costs exactly one event.
func (s *Service) Run(ctx context.Context, root string) (*Summary, error) {
	files, err := takeout.Scan(root)
	if err != nil {
		return nil, fmt.Errorf("failed to scan takeout dir: %w", err)
	}

	summary := &Summary{RunID: uuid.New(), Files: len(files)}
	log := s.logger.With(zap.String("run_id", summary.RunID.String()))

	log.Info("Takeout scan complete",
		zap.String("root", root),
		zap.Int("files", len(files)),
	)

	var events []model.Event
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		parsed, failed := 0, 0
		for outcome := range extract.Extract(f.Kind, f.Path) {
			if outcome.Err != nil {
				failed++
				log.Warn("Record extraction failed",
					zap.String("file", f.Path),
					zap.Stringer("kind", f.Kind),
					zap.Error(outcome.Err),
				)
				continue
			}
			parsed++
			events = append(events, outcome.Event)
		}
		summary.Events += parsed
		summary.RecordErrors += failed

		log.Debug("Document extracted",
			zap.String("file", f.Path),
			zap.Stringer("kind", f.Kind),
			zap.Int("events", parsed),
			zap.Int("errors", failed),
		)
	}

	deduped := merge.Deduplicate(events)
	merge.SortByTime(deduped)

	log.Info("Merge complete",
		zap.Int("events", len(events)),
		zap.Int("unique", len(deduped)),
	)

	for _, ev := range deduped {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		duplicate, err := s.ingestEvent(ctx, ev)
		if err != nil {
			return nil, err
		}
		if duplicate {
			summary.Duplicates++
		} else {
			summary.Stored++
		}
	}

	totals, err := s.repo.CountByKind(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count stored events: %w", err)
	}
	summary.TotalsByKind = totals

	log.Info("Ingest complete",
		zap.Int("files", summary.Files),
		zap.Int("events", summary.Events),
		zap.Int("record_errors", summary.RecordErrors),
		zap.Int("stored", summary.Stored),
		zap.Int("duplicates", summary.Duplicates),
		zap.Any("totals_by_kind", totals),
	)

	return summary, nil
}

// ingestEvent stores one event and publishes it if it wasn't already known.
// Publish failures are logged, not fatal: the row is durable and the topic
// can be backfilled.
func (s *Service) ingestEvent(ctx context.Context, ev model.Event) (duplicate bool, err error) {
	record, err := store.NewRecord(ev)
	if err != nil {
		return false, fmt.Errorf("invalid event: %w", err)
	}

	if err := s.repo.Create(ctx, record); err != nil {
		if errors.Is(err, store.ErrDuplicateEvent) {
			return true, nil
		}
		return false, fmt.Errorf("failed to store event: %w", err)
	}

	if err := s.publisher.SendMessage(ctx, record.EventKey, record); err != nil {
		s.logger.Error("Failed to publish event",
			zap.String("kind", record.Kind),
			zap.String("event_key", record.EventKey),
			zap.Error(err),
		)
	}

	return false, nil
}

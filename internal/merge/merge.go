// Package merge deduplicates and orders events parsed from overlapping
// export snapshots. Two snapshots routinely contain the same historical
// records; the identity key each event exposes makes repeats detectable.
package merge

import (
	"sort"

	"github.com/dkarpov/takeout-ingest/internal/model"
)

// Deduplicate drops events whose identity key was already seen, preserving
// first-occurrence order. Keys are only unique within a kind, so the kind
// label is part of the seen-set key.
func Deduplicate(events []model.Event) []model.Event {
	seen := make(map[string]struct{}, len(events))
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		k := ev.Kind() + "\x00" + ev.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, ev)
	}
	return out
}

// SortByTime orders events chronologically, oldest first. The sort is stable
// so same-instant events keep their extraction order.
func SortByTime(events []model.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp().Before(events[j].Timestamp())
	})
}

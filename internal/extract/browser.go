package extract

import (
	"fmt"
	"iter"

	"github.com/dkarpov/takeout-ingest/internal/decode"
	"github.com/dkarpov/takeout-ingest/internal/model"
)

// extractBrowserHistory handles the browser-history export: a top-level
// object with a "Browser History" list of visits timestamped in microsecond
// epochs. Visited URLs are kept exactly as recorded.
func extractBrowserHistory(path string, doc any) iter.Seq[Outcome] {
	return func(yield func(Outcome) bool) {
		root, ok := doc.(map[string]any)
		if !ok {
			yield(errOutcome(&DocumentError{Path: path, Reason: "Browser history: top level item isn't a dict"}))
			return
		}
		if _, ok := root["Browser History"]; !ok {
			if !yield(errOutcome(&DocumentError{Path: path, Reason: "Browser history: no 'Browser History' key"})) {
				return
			}
		}
		for _, rec := range optList(root, "Browser History") {
			ev, err := buildBrowserHistoryEntry(rec)
			if err != nil {
				if !yield(errOutcome(err)) {
					return
				}
				continue
			}
			if !yield(eventOutcome(ev)) {
				return
			}
		}
	}
}

func buildBrowserHistoryEntry(rec any) (model.BrowserHistoryEntry, error) {
	m, ok := rec.(map[string]any)
	if !ok {
		return model.BrowserHistoryEntry{}, fmt.Errorf("history record: expected object, got %T", rec)
	}
	title, err := reqString(m, "title")
	if err != nil {
		return model.BrowserHistoryEntry{}, err
	}
	url, err := reqString(m, "url")
	if err != nil {
		return model.BrowserHistoryEntry{}, err
	}
	usec, err := reqFloat(m, "time_usec")
	if err != nil {
		return model.BrowserHistoryEntry{}, err
	}
	return model.BrowserHistoryEntry{
		Title: title,
		URL:   url,
		Time:  decode.Micros(int64(usec)),
	}, nil
}

// Package extract turns raw takeout JSON documents into streams of typed
// events. One extractor exists per document kind; each consumes a single
// parsed document and produces a lazy, forward-only sequence of outcomes.
// A malformed record becomes an error element at its position and never
// suppresses the records around it.
package extract

import (
	"encoding/json"
	"fmt"
	"iter"
	"os"
)

// Kind selects which extractor handles a document. The caller decides the
// kind (usually from the file's location in the archive); no extractor
// inspects the file name. New kinds add a variant here, not branches in
// existing extractors.
type Kind int

const (
	KindActivity Kind = iota
	KindLikedVideos
	KindAppInstalls
	KindLocationHistory
	KindSemanticLocations
	KindBrowserHistory
)

func (k Kind) String() string {
	switch k {
	case KindActivity:
		return "activity"
	case KindLikedVideos:
		return "liked_videos"
	case KindAppInstalls:
		return "app_installs"
	case KindLocationHistory:
		return "location_history"
	case KindSemanticLocations:
		return "semantic_locations"
	case KindBrowserHistory:
		return "browser_history"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Extract reads the UTF-8 JSON document at path once, eagerly, and returns
// the outcome stream for the given kind. Unreadable or non-JSON input
// surfaces as a single document-level error. The stream is single-pass;
// re-invoke Extract to iterate again.
func Extract(kind Kind, path string) iter.Seq[Outcome] {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errSeq(fmt.Errorf("read %q: %w", path, err))
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return errSeq(&DocumentError{Path: path, Reason: fmt.Sprintf("invalid JSON: %v", err)})
	}
	return Document(kind, path, doc)
}

// Document dispatches an already-parsed JSON value. Split out from Extract
// so callers that memoize parsed documents by file hash can reuse it.
func Document(kind Kind, path string, doc any) iter.Seq[Outcome] {
	switch kind {
	case KindActivity:
		return extractActivity(path, doc)
	case KindLikedVideos:
		return extractLikedVideos(path, doc)
	case KindAppInstalls:
		return extractAppInstalls(path, doc)
	case KindLocationHistory:
		return extractLocationHistory(path, doc)
	case KindSemanticLocations:
		return extractSemanticLocations(path, doc)
	case KindBrowserHistory:
		return extractBrowserHistory(path, doc)
	default:
		return errSeq(fmt.Errorf("unknown document kind %d for '%s'", int(kind), path))
	}
}

// Package takeout locates parseable documents inside an unpacked takeout
// directory tree. Classification happens by archive location only; the
// extractors themselves never inspect file names.
package takeout

import (
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/dkarpov/takeout-ingest/internal/extract"
)

// File is one classified document inside the archive.
type File struct {
	Path string
	Kind extract.Kind
}

// Classify maps a slash-separated path relative to the takeout root to a
// document kind. The second return is false for files this pipeline does not
// parse (HTML exports, media, metadata).
func Classify(rel string) (extract.Kind, bool) {
	rel = strings.TrimPrefix(filepath.ToSlash(rel), "Takeout/")
	base := path.Base(rel)

	switch {
	case strings.HasPrefix(rel, "My Activity/") && strings.HasSuffix(base, ".json"):
		return extract.KindActivity, true
	case rel == "YouTube and YouTube Music/playlists/likes.json":
		return extract.KindLikedVideos, true
	case rel == "Google Play Store/Installs.json":
		return extract.KindAppInstalls, true
	case rel == "Location History/Location History.json",
		rel == "Location History/Records.json",
		rel == "Location History (Timeline)/Records.json":
		return extract.KindLocationHistory, true
	case strings.Contains(rel, "Semantic Location History/") && strings.HasSuffix(base, ".json"):
		return extract.KindSemanticLocations, true
	case base == "BrowserHistory.json" && strings.Contains(rel, "Chrome"):
		return extract.KindBrowserHistory, true
	}
	return 0, false
}

// Scan walks the unpacked takeout directory rooted at root and returns every
// classified document, in walk order.
func Scan(root string) ([]File, error) {
	var files []File
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		if kind, ok := Classify(rel); ok {
			files = append(files, File{Path: p, Kind: kind})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

package takeout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dkarpov/takeout-ingest/internal/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		rel  string
		kind extract.Kind
		ok   bool
	}{
		{"My Activity/Search/MyActivity.json", extract.KindActivity, true},
		{"My Activity/Chrome/MyActivity.json", extract.KindActivity, true},
		{"My Activity/Search/MyActivity.html", 0, false},
		{"YouTube and YouTube Music/playlists/likes.json", extract.KindLikedVideos, true},
		{"YouTube and YouTube Music/playlists/other.json", 0, false},
		{"Google Play Store/Installs.json", extract.KindAppInstalls, true},
		{"Google Play Store/Library.json", 0, false},
		{"Location History/Location History.json", extract.KindLocationHistory, true},
		{"Location History/Records.json", extract.KindLocationHistory, true},
		{"Location History (Timeline)/Records.json", extract.KindLocationHistory, true},
		{"Location History/Semantic Location History/2021/2021_JANUARY.json", extract.KindSemanticLocations, true},
		{"Location History (Timeline)/Semantic Location History/2023/2023_MARCH.json", extract.KindSemanticLocations, true},
		{"Chrome/BrowserHistory.json", extract.KindBrowserHistory, true},
		{"Chrome/Bookmarks.html", 0, false},
		{"Mail/All mail Including Spam and Trash.mbox", 0, false},
		{"archive_browser.html", 0, false},

		// Some archives unpack with the Takeout/ wrapper directory intact.
		{"Takeout/My Activity/Search/MyActivity.json", extract.KindActivity, true},
		{"Takeout/Chrome/BrowserHistory.json", extract.KindBrowserHistory, true},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			kind, ok := Classify(tt.rel)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.kind, kind)
			}
		})
	}
}

func TestClassifyWindowsSeparators(t *testing.T) {
	kind, ok := Classify(filepath.Join("My Activity", "Search", "MyActivity.json"))
	require.True(t, ok)
	assert.Equal(t, extract.KindActivity, kind)
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	paths := []string{
		"My Activity/Search/MyActivity.json",
		"My Activity/Search/MyActivity.html",
		"Chrome/BrowserHistory.json",
		"Location History/Semantic Location History/2021/2021_JANUARY.json",
		"Mail/inbox.mbox",
	}
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("{}"), 0o644))
	}

	files, err := Scan(root)
	require.NoError(t, err)
	require.Len(t, files, 3)

	kinds := make(map[extract.Kind]string, len(files))
	for _, f := range files {
		kinds[f.Kind] = f.Path
	}
	assert.Contains(t, kinds[extract.KindActivity], "MyActivity.json")
	assert.Contains(t, kinds[extract.KindBrowserHistory], "BrowserHistory.json")
	assert.Contains(t, kinds[extract.KindSemanticLocations], "2021_JANUARY.json")
}

func TestScanMissingRoot(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

package extract

import (
	"encoding/json"
	"iter"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
func int64Ptr(i int64) *int64     { return &i }

// mustDoc parses a JSON literal the same way Extract does.
func mustDoc(t *testing.T, raw string) any {
	t.Helper()
	var doc any
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	return doc
}

func collect(seq iter.Seq[Outcome]) []Outcome {
	var out []Outcome
	for o := range seq {
		out = append(out, o)
	}
	return out
}

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestExtractUnreadableFile(t *testing.T) {
	outcomes := collect(Extract(KindActivity, filepath.Join(t.TempDir(), "missing.json")))
	require.Len(t, outcomes, 1)
	assert.Error(t, outcomes[0].Err)
	assert.Nil(t, outcomes[0].Event)
}

func TestExtractInvalidJSON(t *testing.T) {
	path := writeFile(t, "garbage.json", "{not json")

	outcomes := collect(Extract(KindBrowserHistory, path))
	require.Len(t, outcomes, 1)

	var docErr *DocumentError
	require.ErrorAs(t, outcomes[0].Err, &docErr)
	assert.Equal(t, path, docErr.Path)
	assert.Contains(t, docErr.Error(), path)
}

func TestExtractDispatchesByKind(t *testing.T) {
	path := writeFile(t, "likes.json",
		`[{"snippet": {"title": "x", "description": "", "publishedAt": "2020-07-05T18:27:32.000Z"}, "contentDetails": {"videoId": "J1tF-DKKt7k"}}]`)

	outcomes := collect(Extract(KindLikedVideos, path))
	require.Len(t, outcomes, 1)
	require.NoError(t, outcomes[0].Err)
}

func TestDocumentUnknownKind(t *testing.T) {
	outcomes := collect(Document(Kind(99), "f.json", mustDoc(t, "[]")))
	require.Len(t, outcomes, 1)
	assert.ErrorContains(t, outcomes[0].Err, "unknown document kind")
}

// Every kind surfaces a scalar top level as exactly one document-shape error
// and zero events.
func TestScalarTopLevel(t *testing.T) {
	kinds := []Kind{
		KindActivity,
		KindLikedVideos,
		KindAppInstalls,
		KindLocationHistory,
		KindSemanticLocations,
		KindBrowserHistory,
	}

	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			outcomes := collect(Document(kind, "f.json", mustDoc(t, `42`)))
			require.Len(t, outcomes, 1)

			var docErr *DocumentError
			assert.ErrorAs(t, outcomes[0].Err, &docErr)
			assert.Nil(t, outcomes[0].Event)
		})
	}
}

// Streams are single-pass but restartable by re-invoking the extractor.
func TestStreamIsRestartable(t *testing.T) {
	doc := mustDoc(t, `{"Browser History": [
		{"title": "a", "url": "https://a.example", "time_usec": 1617404690134513},
		{"title": "b", "url": "https://b.example", "time_usec": 1617404690134514}
	]}`)

	first := collect(extractBrowserHistory("f.json", doc))
	second := collect(extractBrowserHistory("f.json", doc))
	assert.Equal(t, first, second)
	assert.Len(t, first, 2)
}

// An aborted consumer just stops pulling; nothing buffers past the break.
func TestStreamStopsWhenConsumerStops(t *testing.T) {
	doc := mustDoc(t, `{"Browser History": [
		{"title": "a", "url": "https://a.example", "time_usec": 1617404690134513},
		{"title": "b", "url": "https://b.example", "time_usec": 1617404690134514}
	]}`)

	var got []Outcome
	for o := range extractBrowserHistory("f.json", doc) {
		got = append(got, o)
		break
	}
	require.Len(t, got, 1)
	require.NoError(t, got[0].Err)
}

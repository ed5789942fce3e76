package extract

import (
	"fmt"
	"iter"

	"github.com/dkarpov/takeout-ingest/internal/decode"
	"github.com/dkarpov/takeout-ingest/internal/model"
)

// extractLikedVideos handles the YouTube likes playlist export.
func extractLikedVideos(path string, doc any) iter.Seq[Outcome] {
	return func(yield func(Outcome) bool) {
		records, ok := doc.([]any)
		if !ok {
			yield(errOutcome(&DocumentError{Path: path, Reason: "Likes: top level item isn't a list"}))
			return
		}
		for _, rec := range records {
			ev, err := buildLikedVideo(rec)
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

func buildLikedVideo(rec any) (model.LikedVideo, error) {
	m, ok := rec.(map[string]any)
	if !ok {
		return model.LikedVideo{}, fmt.Errorf("like record: expected object, got %T", rec)
	}
	snippet, err := reqMap(m, "snippet")
	if err != nil {
		return model.LikedVideo{}, err
	}
	content, err := reqMap(m, "contentDetails")
	if err != nil {
		return model.LikedVideo{}, err
	}
	title, err := reqString(snippet, "title")
	if err != nil {
		return model.LikedVideo{}, err
	}
	desc, err := reqString(snippet, "description")
	if err != nil {
		return model.LikedVideo{}, err
	}
	videoID, err := reqString(content, "videoId")
	if err != nil {
		return model.LikedVideo{}, err
	}
	published, err := reqString(snippet, "publishedAt")
	if err != nil {
		return model.LikedVideo{}, err
	}
	ts, err := decode.UTCDate(published)
	if err != nil {
		return model.LikedVideo{}, err
	}
	return model.LikedVideo{
		Title:       title,
		Description: desc,
		Link:        "https://youtube.com/watch?v=" + videoID,
		Time:        ts,
	}, nil
}

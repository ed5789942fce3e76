package extract

import (
	"fmt"
	"iter"

	"github.com/dkarpov/takeout-ingest/internal/decode"
	"github.com/dkarpov/takeout-ingest/internal/model"
)

// Header substituted for legacy "snippet" records, which carried no category
// header of their own.
const legacyActivityHeader = "YouTube"

// extractActivity handles "My Activity" JSON documents and the older Takeout
// "snippet" shape used through ~2017. The top level must be a list; anything
// else is unrecoverable.
func extractActivity(path string, doc any) iter.Seq[Outcome] {
	return func(yield func(Outcome) bool) {
		records, ok := doc.([]any)
		if !ok {
			yield(errOutcome(&DocumentError{Path: path, Reason: "Activity: top level item isn't a list"}))
			return
		}
		for _, rec := range records {
			ev, err := buildActivity(rec)
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

func buildActivity(rec any) (model.Activity, error) {
	blob, ok := rec.(map[string]any)
	if !ok {
		return model.Activity{}, fmt.Errorf("activity record: expected object, got %T", rec)
	}

	// Subtitles come from the outer record even for the legacy shape.
	// Non-object entries and entries without a name are placeholders
	// ("My Activity/Assistant" data circa 2018) and are dropped silently.
	var subtitles []model.Subtitle
	for _, s := range optList(blob, "subtitles") {
		sm, ok := s.(map[string]any)
		if !ok {
			continue
		}
		name, ok := sm["name"].(string)
		if !ok {
			continue
		}
		subtitles = append(subtitles, model.Subtitle{Name: name, URL: optString(sm, "url")})
	}

	var header, timeRaw string
	if snippet, ok := blob["snippet"].(map[string]any); ok {
		// Takeout shape through ~2017: one level of nesting, no header,
		// and the timestamp lives under publishedAt.
		blob = snippet
		header = legacyActivityHeader
		raw, err := reqString(blob, "publishedAt")
		if err != nil {
			return model.Activity{}, err
		}
		timeRaw = raw
	} else {
		h, err := reqString(blob, "header")
		if err != nil {
			return model.Activity{}, err
		}
		raw, err := reqString(blob, "time")
		if err != nil {
			return model.Activity{}, err
		}
		header, timeRaw = h, raw
	}

	title, err := reqString(blob, "title")
	if err != nil {
		return model.Activity{}, err
	}
	ts, err := decode.UTCDate(timeRaw)
	if err != nil {
		return model.Activity{}, err
	}

	// Details keep only object entries that carry a name.
	var details []string
	for _, d := range optList(blob, "details") {
		dm, ok := d.(map[string]any)
		if !ok {
			continue
		}
		if name, ok := dm["name"].(string); ok {
			details = append(details, name)
		}
	}

	var locationInfos []model.LocationInfo
	for _, li := range optList(blob, "locationInfos") {
		lm, ok := li.(map[string]any)
		if !ok {
			return model.Activity{}, fmt.Errorf("locationInfos entry: expected object, got %T", li)
		}
		locationInfos = append(locationInfos, model.LocationInfo{
			Name:      optString(lm, "name"),
			URL:       decode.UpgradeHTTPSOpt(optString(lm, "url")),
			Source:    optString(lm, "source"),
			SourceURL: decode.UpgradeHTTPSOpt(optString(lm, "sourceUrl")),
		})
	}

	var products []string
	for _, p := range optList(blob, "products") {
		s, ok := p.(string)
		if !ok {
			return model.Activity{}, fmt.Errorf("products entry: expected string, got %T", p)
		}
		products = append(products, s)
	}

	return model.Activity{
		Header:        header,
		Title:         title,
		Time:          ts,
		Description:   optString(blob, "description"),
		TitleURL:      decode.UpgradeHTTPSOpt(optString(blob, "titleUrl")),
		Subtitles:     subtitles,
		Details:       details,
		LocationInfos: locationInfos,
		Products:      products,
	}, nil
}

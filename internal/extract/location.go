package extract

import (
	"fmt"
	"iter"
	"strconv"

	"github.com/dkarpov/takeout-ingest/internal/decode"
	"github.com/dkarpov/takeout-ingest/internal/model"
)

// extractLocationHistory handles the coarse location-history export: a top
// level object with a "locations" list. A missing key yields a document
// error but iteration still proceeds over the empty fallback, so degenerate
// files produce an error-only stream rather than a hard stop.
func extractLocationHistory(path string, doc any) iter.Seq[Outcome] {
	return func(yield func(Outcome) bool) {
		root, ok := doc.(map[string]any)
		if !ok {
			yield(errOutcome(&DocumentError{Path: path, Reason: "Locations: top level item isn't a dict"}))
			return
		}
		if _, ok := root["locations"]; !ok {
			if !yield(errOutcome(&DocumentError{Path: path, Reason: "Locations: no 'locations' key"})) {
				return
			}
		}
		for _, rec := range optList(root, "locations") {
			ev, err := buildLocationPoint(rec)
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

func buildLocationPoint(rec any) (model.LocationPoint, error) {
	m, ok := rec.(map[string]any)
	if !ok {
		return model.LocationPoint{}, fmt.Errorf("location record: expected object, got %T", rec)
	}
	latE7, err := reqFloat(m, "latitudeE7")
	if err != nil {
		return model.LocationPoint{}, err
	}
	lngE7, err := reqFloat(m, "longitudeE7")
	if err != nil {
		return model.LocationPoint{}, err
	}
	ts, err := timestampKey(m, "timestamp")
	if err != nil {
		return model.LocationPoint{}, err
	}
	accuracy, err := optCoercedFloat(m, "accuracy")
	if err != nil {
		return model.LocationPoint{}, err
	}
	return model.LocationPoint{
		Lat:      decode.E7(latE7),
		Lng:      decode.E7(lngE7),
		Accuracy: accuracy,
		Time:     ts,
	}, nil
}

// optCoercedFloat reads an optional number that older exports sometimes
// encode as a numeric string. A non-numeric string is a record error.
func optCoercedFloat(m map[string]any, key string) (*float64, error) {
	switch v := m[key].(type) {
	case float64:
		return &v, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("key %q: not a number: %q", key, v)
		}
		return &f, nil
	}
	return nil, nil
}

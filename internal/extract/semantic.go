package extract

import (
	"fmt"
	"iter"
	"sort"
	"strconv"
	"strings"

	"github.com/dkarpov/takeout-ingest/internal/decode"
	"github.com/dkarpov/takeout-ingest/internal/model"
)

// A place visit is unidentifiable without these; some 2023-era exports omit
// them entirely.
var placeVisitLocationKeys = []string{"placeId", "latitudeE7", "longitudeE7"}

// extractSemanticLocations handles the semantic location-history export: a
// top-level object with a "timelineObjects" list whose entries are tagged as
// either a place visit or an activity segment. Failures in one timeline
// object never stop the iteration over the rest.
func extractSemanticLocations(path string, doc any) iter.Seq[Outcome] {
	return func(yield func(Outcome) bool) {
		root, ok := doc.(map[string]any)
		if !ok {
			yield(errOutcome(&DocumentError{Path: path, Reason: "Locations: top level item isn't a dict"}))
			return
		}
		if _, ok := root["timelineObjects"]; !ok {
			if !yield(errOutcome(&DocumentError{Path: path, Reason: "Locations: no 'timelineObjects' key"})) {
				return
			}
		}
		for _, obj := range optList(root, "timelineObjects") {
			m, ok := obj.(map[string]any)
			if !ok {
				if !yield(errOutcome(fmt.Errorf("timeline object: expected object, got %T", obj))) {
					return
				}
				continue
			}
			var out Outcome
			_, isVisit := m["placeVisit"]
			_, isSegment := m["activitySegment"]
			switch {
			case isVisit:
				visit, err := buildPlaceVisit(m["placeVisit"])
				if err != nil {
					out = errOutcome(err)
				} else if visit == nil {
					// Core identity fields absent: deliberate silent
					// discard, no event and no error.
					continue
				} else {
					out = eventOutcome(*visit)
				}
			case isSegment:
				segment, err := buildActivitySegment(m["activitySegment"])
				if err != nil {
					out = errOutcome(err)
				} else {
					out = eventOutcome(*segment)
				}
			default:
				out = errOutcome(fmt.Errorf("unknown timeline object with keys %v in path '%s'", sortedKeys(m), path))
			}
			if !yield(out) {
				return
			}
		}
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// buildPlaceVisit returns (nil, nil) when the visit's location is missing
// its identity fields: nothing recoverable exists for such records, so they
// are dropped without a signal.
func buildPlaceVisit(raw any) (*model.PlaceVisit, error) {
	visit, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("placeVisit: expected object, got %T", raw)
	}
	if k := missingKey(visit, "location", "duration"); k != "" {
		return nil, fmt.Errorf("PlaceVisit: no %q key in %v", k, visit)
	}
	location, ok := visit["location"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("placeVisit location: expected object, got %T", visit["location"])
	}
	if missingKey(location, placeVisitLocationKeys...) != "" {
		return nil, nil
	}

	candidate, err := buildCandidateLocation(location)
	if err != nil {
		return nil, describeMissing("PlaceVisit", visit, err)
	}
	duration, ok := visit["duration"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("placeVisit duration: expected object, got %T", visit["duration"])
	}
	start, err := timestampKey(duration, "startTimestamp")
	if err != nil {
		return nil, describeMissing("PlaceVisit", visit, err)
	}
	end, err := timestampKey(duration, "endTimestamp")
	if err != nil {
		return nil, describeMissing("PlaceVisit", visit, err)
	}

	var alternates []model.CandidateLocation
	for _, alt := range optList(visit, "otherCandidateLocations") {
		am, ok := alt.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("otherCandidateLocations entry: expected object, got %T", alt)
		}
		cand, err := buildCandidateLocation(am)
		if err != nil {
			return nil, describeMissing("PlaceVisit", visit, err)
		}
		alternates = append(alternates, cand)
	}

	// Center coordinates are decoded independently of the primary location,
	// and only when both halves are present.
	var centerLat, centerLng *float64
	if l := optFloat(visit, "centerLatE7"); l != nil {
		if g := optFloat(visit, "centerLngE7"); g != nil {
			lat, lng := decode.E7(*l), decode.E7(*g)
			centerLat, centerLng = &lat, &lng
		}
	}

	placeID := ""
	if candidate.PlaceID != nil {
		placeID = *candidate.PlaceID
	}

	return &model.PlaceVisit{
		Lat:                     candidate.Lat,
		Lng:                     candidate.Lng,
		CenterLat:               centerLat,
		CenterLng:               centerLng,
		Address:                 candidate.Address,
		Name:                    candidate.Name,
		LocationConfidence:      candidate.LocationConfidence,
		PlaceID:                 placeID,
		StartTime:               start,
		EndTime:                 end,
		SourceDeviceTag:         candidate.SourceDeviceTag,
		OtherCandidateLocations: alternates,
		PlaceConfidence:         optString(visit, "placeConfidence"),
		PlaceVisitType:          optString(visit, "placeVisitType"),
		VisitConfidence:         optFloat(visit, "visitConfidence"),
		EditConfirmationStatus:  optString(visit, "editConfirmationStatus"),
		PlaceVisitImportance:    optString(visit, "placeVisitImportance"),
	}, nil
}

func buildActivitySegment(raw any) (*model.ActivitySegment, error) {
	segment, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("activitySegment: expected object, got %T", raw)
	}
	if k := missingKey(segment, "duration", "activities"); k != "" {
		return nil, fmt.Errorf("ActivitySegment: no %q key in %v", k, segment)
	}

	startLat, startLng, err := segmentEndpoint(segment, "startLocation")
	if err != nil {
		return nil, describeMissing("ActivitySegment", segment, err)
	}
	endLat, endLng, err := segmentEndpoint(segment, "endLocation")
	if err != nil {
		return nil, describeMissing("ActivitySegment", segment, err)
	}

	duration, ok := segment["duration"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("activitySegment duration: expected object, got %T", segment["duration"])
	}
	startRaw, err := reqString(duration, "startTimestamp")
	if err != nil {
		return nil, describeMissing("ActivitySegment", segment, err)
	}
	start, err := decode.UTCDate(startRaw)
	if err != nil {
		return nil, err
	}
	endRaw, err := reqString(duration, "endTimestamp")
	if err != nil {
		return nil, describeMissing("ActivitySegment", segment, err)
	}
	end, err := decode.UTCDate(endRaw)
	if err != nil {
		return nil, err
	}

	var activities []model.SegmentActivity
	for _, a := range optList(segment, "activities") {
		am, ok := a.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("activities entry: expected object, got %T", a)
		}
		activityType, err := reqString(am, "activityType")
		if err != nil {
			return nil, describeMissing("ActivitySegment", segment, err)
		}
		probability, err := reqFloat(am, "probability")
		if err != nil {
			return nil, describeMissing("ActivitySegment", segment, err)
		}
		activities = append(activities, model.SegmentActivity{
			ActivityType: activityType,
			Probability:  probability,
		})
	}

	// Waypoint path is only constructed when the key exists at all.
	var waypointPath *model.WaypointPath
	if raw, ok := segment["waypointPath"]; ok {
		wp, err := buildWaypointPath(raw)
		if err != nil {
			return nil, describeMissing("ActivitySegment", segment, err)
		}
		waypointPath = wp
	}

	// The simplified raw path defaults to an empty point list when absent.
	var points []model.RawPathPoint
	if srp, ok := segment["simplifiedRawPath"].(map[string]any); ok {
		for _, p := range optList(srp, "points") {
			point, err := buildRawPathPoint(p)
			if err != nil {
				return nil, describeMissing("ActivitySegment", segment, err)
			}
			points = append(points, point)
		}
	}

	return &model.ActivitySegment{
		StartTime:              start,
		EndTime:                end,
		Distance:               optFloat(segment, "distance"),
		Confidence:             optString(segment, "confidence"),
		Activities:             activities,
		SimplifiedRawPath:      points,
		WaypointPath:           waypointPath,
		ActivityType:           optString(segment, "activityType"),
		StartLat:               startLat,
		StartLng:               startLng,
		EndLat:                 endLat,
		EndLng:                 endLng,
		EditConfirmationStatus: optString(segment, "editConfirmationStatus"),
	}, nil
}

// segmentEndpoint decodes an optional start/end location. An empty object
// means the coordinates are absent, never (0, 0).
func segmentEndpoint(segment map[string]any, key string) (*float64, *float64, error) {
	raw, ok := segment[key]
	if !ok {
		return nil, nil, nil
	}
	loc, ok := raw.(map[string]any)
	if !ok {
		return nil, nil, fmt.Errorf("%s: expected object, got %T", key, raw)
	}
	if len(loc) == 0 {
		return nil, nil, nil
	}
	candidate, err := buildCandidateLocation(loc)
	if err != nil {
		return nil, nil, err
	}
	return &candidate.Lat, &candidate.Lng, nil
}

// buildCandidateLocation is shared by the place-visit primary location, the
// alternate-candidate list, and segment endpoints.
func buildCandidateLocation(m map[string]any) (model.CandidateLocation, error) {
	latE7, err := reqFloat(m, "latitudeE7")
	if err != nil {
		return model.CandidateLocation{}, err
	}
	lngE7, err := reqFloat(m, "longitudeE7")
	if err != nil {
		return model.CandidateLocation{}, err
	}
	var deviceTag *int64
	if si, ok := m["sourceInfo"].(map[string]any); ok {
		if tag, ok := si["deviceTag"].(float64); ok {
			v := int64(tag)
			deviceTag = &v
		}
	}
	return model.CandidateLocation{
		Lat:                decode.E7(latE7),
		Lng:                decode.E7(lngE7),
		Address:            optString(m, "address"),
		Name:               optString(m, "name"),
		PlaceID:            optString(m, "placeId"),
		LocationConfidence: optFloat(m, "locationConfidence"),
		SourceDeviceTag:    deviceTag,
	}, nil
}

func buildWaypointPath(raw any) (*model.WaypointPath, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("waypointPath: expected object, got %T", raw)
	}
	list, err := reqAny(m, "waypoints")
	if err != nil {
		return nil, err
	}
	entries, ok := list.([]any)
	if !ok {
		return nil, fmt.Errorf("waypoints: expected list, got %T", list)
	}
	waypoints := make([]model.Waypoint, 0, len(entries))
	for _, w := range entries {
		wm, ok := w.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("waypoints entry: expected object, got %T", w)
		}
		latE7, err := reqFloat(wm, "latE7")
		if err != nil {
			return nil, err
		}
		lngE7, err := reqFloat(wm, "lngE7")
		if err != nil {
			return nil, err
		}
		waypoints = append(waypoints, model.Waypoint{Lat: decode.E7(latE7), Lng: decode.E7(lngE7)})
	}
	source, err := reqString(m, "source")
	if err != nil {
		return nil, err
	}

	var roads []model.RoadSegment
	for _, r := range optList(m, "roadSegment") {
		rm, ok := r.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("roadSegment entry: expected object, got %T", r)
		}
		road, err := buildRoadSegment(rm)
		if err != nil {
			return nil, err
		}
		roads = append(roads, road)
	}

	return &model.WaypointPath{
		Waypoints:      waypoints,
		Source:         source,
		RoadSegments:   roads,
		DistanceMeters: optFloat(m, "distanceMeters"),
		TravelMode:     optString(m, "travelMode"),
		Confidence:     optFloat(m, "confidence"),
	}, nil
}

func buildRoadSegment(m map[string]any) (model.RoadSegment, error) {
	placeID, err := reqString(m, "placeId")
	if err != nil {
		return model.RoadSegment{}, err
	}
	// Durations arrive as second counts with a trailing unit, e.g. "50s".
	var duration *float64
	if raw, ok := m["duration"]; ok {
		s, ok := raw.(string)
		if !ok {
			return model.RoadSegment{}, fmt.Errorf("road segment duration: expected string, got %T", raw)
		}
		seconds, err := strconv.ParseFloat(strings.TrimSuffix(s, "s"), 64)
		if err != nil {
			return model.RoadSegment{}, fmt.Errorf("road segment duration %q: %w", s, err)
		}
		duration = &seconds
	}
	return model.RoadSegment{PlaceID: placeID, Duration: duration}, nil
}

func buildRawPathPoint(raw any) (model.RawPathPoint, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return model.RawPathPoint{}, fmt.Errorf("raw path point: expected object, got %T", raw)
	}
	latE7, err := reqFloat(m, "latE7")
	if err != nil {
		return model.RawPathPoint{}, err
	}
	lngE7, err := reqFloat(m, "lngE7")
	if err != nil {
		return model.RawPathPoint{}, err
	}
	accuracy, err := reqFloat(m, "accuracyMeters")
	if err != nil {
		return model.RawPathPoint{}, err
	}
	tsRaw, err := reqString(m, "timestamp")
	if err != nil {
		return model.RawPathPoint{}, err
	}
	ts, err := decode.UTCDate(tsRaw)
	if err != nil {
		return model.RawPathPoint{}, err
	}
	return model.RawPathPoint{
		Lat:            decode.E7(latE7),
		Lng:            decode.E7(lngE7),
		AccuracyMeters: accuracy,
		Time:           ts,
	}, nil
}

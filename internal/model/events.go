// Package model defines the typed events produced by the record extractors.
//
// Every event carries a UTC timestamp used for chronological ordering across
// event types, and an identity key: a stable string derived from a subset of
// its fields, used by the merge layer to deduplicate identical events sourced
// from overlapping export snapshots. Timestamps inside keys are truncated to
// integer UTC epoch seconds so that sub-second noise never splits a key.
//
// Events are value records; none are mutated after construction.
package model

import (
	"strconv"
	"strings"
	"time"
)

// Event kind labels, used as storage discriminators and partition keys.
const (
	KindActivity        = "activity"
	KindLikedVideo      = "liked_video"
	KindAppInstall      = "app_install"
	KindLocation        = "location"
	KindPlaceVisit      = "place_visit"
	KindActivitySegment = "activity_segment"
	KindBrowserHistory  = "browser_history"
)

// Event is implemented by every parsed record.
type Event interface {
	// Kind returns the event kind label. Keys are unique within a kind only.
	Kind() string
	// Timestamp returns the event's UTC instant.
	Timestamp() time.Time
	// Key returns the identity key for cross-export deduplication. Repeated
	// parses of the same underlying record yield the same key.
	Key() string
}

// Subtitle is one (name, optional URL) pair attached to an Activity.
type Subtitle struct {
	Name string  `json:"name"`
	URL  *string `json:"url"`
}

// LocationInfo is a location hint attached to an Activity.
type LocationInfo struct {
	Name      *string `json:"name"`
	URL       *string `json:"url"`
	Source    *string `json:"source"`
	SourceURL *string `json:"source_url"`
}

// Activity is one logged user action: a search, a video watch, an assistant
// query and so on.
type Activity struct {
	Header      string    `json:"header"`
	Title       string    `json:"title"`
	Time        time.Time `json:"time"`
	Description *string   `json:"description"`
	TitleURL    *string   `json:"title_url"`
	// HTML exports cannot tell a description line from a subtitle, so
	// repurposed description lines land here too. Intentional overload.
	Subtitles     []Subtitle     `json:"subtitles"`
	Details       []string       `json:"details"`
	LocationInfos []LocationInfo `json:"location_infos"`
	Products      []string       `json:"products"`
}

func (a Activity) Kind() string         { return KindActivity }
func (a Activity) Timestamp() time.Time { return a.Time }
func (a Activity) Key() string          { return joinKey(a.Header, a.Title, keyTime(a.Time)) }

// LikedVideo is one video marked as liked.
type LikedVideo struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Link        string    `json:"link"` // canonical watch URL
	Time        time.Time `json:"time"`
}

func (v LikedVideo) Kind() string         { return KindLikedVideo }
func (v LikedVideo) Timestamp() time.Time { return v.Time }
func (v LikedVideo) Key() string          { return keyTime(v.Time) }

// AppInstall is one app installation from the store export.
type AppInstall struct {
	Title      string    `json:"title"`
	DeviceName *string   `json:"device_name"`
	Time       time.Time `json:"time"`
}

func (a AppInstall) Kind() string         { return KindAppInstall }
func (a AppInstall) Timestamp() time.Time { return a.Time }
func (a AppInstall) Key() string          { return keyTime(a.Time) }

// LocationPoint is one coarse location-history ping.
type LocationPoint struct {
	Lat      float64   `json:"lat"`
	Lng      float64   `json:"lng"`
	Accuracy *float64  `json:"accuracy"` // meters
	Time     time.Time `json:"time"`
}

func (l LocationPoint) Kind() string         { return KindLocation }
func (l LocationPoint) Timestamp() time.Time { return l.Time }
func (l LocationPoint) Key() string {
	return joinKey(keyFloat(l.Lat), keyFloat(l.Lng), keyFloatOpt(l.Accuracy), keyTime(l.Time))
}

// CandidateLocation is a place candidate used by PlaceVisit (primary and
// alternates) and by ActivitySegment endpoints. Not a top-level event.
type CandidateLocation struct {
	Lat                float64  `json:"lat"`
	Lng                float64  `json:"lng"`
	Address            *string  `json:"address"`
	Name               *string  `json:"name"`
	PlaceID            *string  `json:"place_id"`
	LocationConfidence *float64 `json:"location_confidence"` // missing in ~2014/15 history
	SourceDeviceTag    *int64   `json:"source_device_tag"`
}

// PlaceVisit is one semantic location-history visit to a place.
type PlaceVisit struct {
	Lat                     float64             `json:"lat"`
	Lng                     float64             `json:"lng"`
	CenterLat               *float64            `json:"center_lat"`
	CenterLng               *float64            `json:"center_lng"`
	Address                 *string             `json:"address"`
	Name                    *string             `json:"name"`
	LocationConfidence      *float64            `json:"location_confidence"`
	PlaceID                 string              `json:"place_id"`
	StartTime               time.Time           `json:"start_time"`
	EndTime                 time.Time           `json:"end_time"`
	SourceDeviceTag         *int64              `json:"source_device_tag"`
	OtherCandidateLocations []CandidateLocation `json:"other_candidate_locations"`
	PlaceConfidence         *string             `json:"place_confidence"` // absent pre-2018
	PlaceVisitType          *string             `json:"place_visit_type"`
	VisitConfidence         *float64            `json:"visit_confidence"`
	EditConfirmationStatus  *string             `json:"edit_confirmation_status"`
	PlaceVisitImportance    *string             `json:"place_visit_importance"`
}

func (p PlaceVisit) Kind() string         { return KindPlaceVisit }
func (p PlaceVisit) Timestamp() time.Time { return p.StartTime }
func (p PlaceVisit) Key() string {
	return joinKey(keyFloat(p.Lat), keyFloat(p.Lng), keyTime(p.StartTime), keyFloatOpt(p.VisitConfidence))
}

// SegmentActivity is one (activity type, probability) pair.
type SegmentActivity struct {
	ActivityType string  `json:"activity_type"`
	Probability  float64 `json:"probability"`
}

// Waypoint is one point of a waypoint path.
type Waypoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RoadSegment is one road of a waypoint path. Duration is in seconds and may
// be omitted.
type RoadSegment struct {
	PlaceID  string   `json:"place_id"`
	Duration *float64 `json:"duration"`
}

// WaypointPath describes the inferred path taken during a segment.
type WaypointPath struct {
	Waypoints      []Waypoint    `json:"waypoints"`
	Source         string        `json:"source"`
	RoadSegments   []RoadSegment `json:"road_segments"`
	DistanceMeters *float64      `json:"distance_meters"`
	TravelMode     *string       `json:"travel_mode"`
	Confidence     *float64      `json:"confidence"`
}

// RawPathPoint is one timestamped point of a segment's simplified raw path.
type RawPathPoint struct {
	Lat            float64   `json:"lat"`
	Lng            float64   `json:"lng"`
	AccuracyMeters float64   `json:"accuracy_meters"`
	Time           time.Time `json:"time"`
}

// ActivitySegment is one semantic location-history movement segment.
type ActivitySegment struct {
	StartTime              time.Time         `json:"start_time"`
	EndTime                time.Time         `json:"end_time"`
	Distance               *float64          `json:"distance"` // meters
	Confidence             *string           `json:"confidence"`
	Activities             []SegmentActivity `json:"activities"`
	SimplifiedRawPath      []RawPathPoint    `json:"simplified_raw_path"`
	WaypointPath           *WaypointPath     `json:"waypoint_path"`
	ActivityType           *string           `json:"activity_type"` // absent in earlier exports
	StartLat               *float64          `json:"start_lat"`
	StartLng               *float64          `json:"start_lng"`
	EndLat                 *float64          `json:"end_lat"`
	EndLng                 *float64          `json:"end_lng"`
	EditConfirmationStatus *string           `json:"edit_confirmation_status"`
}

func (s ActivitySegment) Kind() string         { return KindActivitySegment }
func (s ActivitySegment) Timestamp() time.Time { return s.StartTime }

// Key ignores activity type and path, so two segments differing only in the
// inferred path collide. Lossy, but stable across exports.
func (s ActivitySegment) Key() string {
	return joinKey(keyTime(s.StartTime), keyTime(s.EndTime), keyFloatOpt(s.Distance))
}

// BrowserHistoryEntry is one visited page. The URL reflects what was visited
// and is never upgraded to https.
type BrowserHistoryEntry struct {
	Title string    `json:"title"`
	URL   string    `json:"url"`
	Time  time.Time `json:"time"`
}

func (b BrowserHistoryEntry) Kind() string         { return KindBrowserHistory }
func (b BrowserHistoryEntry) Timestamp() time.Time { return b.Time }
func (b BrowserHistoryEntry) Key() string          { return joinKey(b.URL, keyTime(b.Time)) }

func joinKey(parts ...string) string {
	return strings.Join(parts, "|")
}

func keyTime(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}

func keyFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func keyFloatOpt(f *float64) string {
	if f == nil {
		return ""
	}
	return keyFloat(*f)
}

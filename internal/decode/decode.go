// Package decode converts the raw scalar encodings found in takeout JSON
// documents into domain values. Exports from different years encode the same
// concept differently, so every rule here is pinned to the historical format
// it serves.
package decode

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// E7 converts a fixed-point E7 coordinate (degrees multiplied by 10^7,
// possibly signed) to floating-point degrees.
func E7(raw float64) float64 {
	return raw / 1e7
}

// UTCDate parses an ISO-8601 timestamp with a 'Z' suffix. Fractional seconds
// may carry any number of digits; they are padded or truncated (never
// rounded) to microsecond precision. The result is always UTC.
func UTCDate(s string) (time.Time, error) {
	base, hadZ := strings.CutSuffix(s, "Z")
	if !hadZ {
		return time.Time{}, fmt.Errorf("timestamp %q: expected 'Z' suffix", s)
	}

	whole, frac, hasFrac := strings.Cut(base, ".")
	t, err := time.Parse("2006-01-02T15:04:05", whole)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: %w", s, err)
	}
	if !hasFrac {
		return t, nil
	}

	if len(frac) > 6 {
		frac = frac[:6]
	}
	for len(frac) < 6 {
		frac += "0"
	}
	micros, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: bad fractional seconds: %w", s, err)
	}
	return t.Add(time.Duration(micros) * time.Microsecond), nil
}

// Millis converts a millisecond epoch to a UTC instant. Depending on export
// year the value arrives as a JSON number or as a numeric string.
func Millis(v any) (time.Time, error) {
	var ms int64
	switch n := v.(type) {
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("epoch millis %q: %w", n, err)
		}
		ms = parsed
	case float64:
		ms = int64(n)
	default:
		return time.Time{}, fmt.Errorf("epoch millis: unsupported type %T", v)
	}
	return time.UnixMilli(ms).UTC(), nil
}

// Micros converts a microsecond epoch (browser history) to a UTC instant:
// the wall clock is built first and then tagged UTC, matching the source
// format which predates timezone-aware timestamps.
func Micros(us int64) time.Time {
	return time.Unix(us/1_000_000, (us%1_000_000)*1000).UTC()
}

// UpgradeHTTPS rewrites an http:// link to https://. Applied to canonical,
// source and target links only; visited-history URLs keep their scheme.
func UpgradeHTTPS(u string) string {
	if rest, ok := strings.CutPrefix(u, "http://"); ok {
		return "https://" + rest
	}
	return u
}

// UpgradeHTTPSOpt is UpgradeHTTPS for optional fields; nil passes through.
func UpgradeHTTPSOpt(u *string) *string {
	if u == nil {
		return nil
	}
	up := UpgradeHTTPS(*u)
	return &up
}

package extract

import (
	"errors"
	"fmt"
	"time"

	"github.com/dkarpov/takeout-ingest/internal/decode"
)

// missingKeyError marks a required key that was absent from a record. The
// semantic sub-builders rewrap it with the offending record so downstream
// consumers see actionable text instead of a bare key name.
type missingKeyError struct {
	key string
}

func (e *missingKeyError) Error() string {
	return fmt.Sprintf("no %q key", e.key)
}

// describeMissing rewraps a missing-key failure with the record that caused
// it. Every other error propagates unchanged.
func describeMissing(what string, record map[string]any, err error) error {
	var mk *missingKeyError
	if errors.As(err, &mk) {
		return fmt.Errorf("%s: no key %q in %v", what, mk.key, record)
	}
	return err
}

// missingKey returns the first of keys absent from m, or "".
func missingKey(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if _, ok := m[k]; !ok {
			return k
		}
	}
	return ""
}

func reqAny(m map[string]any, key string) (any, error) {
	v, ok := m[key]
	if !ok {
		return nil, &missingKeyError{key: key}
	}
	return v, nil
}

func reqString(m map[string]any, key string) (string, error) {
	v, err := reqAny(m, key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("key %q: expected string, got %T", key, v)
	}
	return s, nil
}

func reqFloat(m map[string]any, key string) (float64, error) {
	v, err := reqAny(m, key)
	if err != nil {
		return 0, err
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("key %q: expected number, got %T", key, v)
	}
	return f, nil
}

func reqMap(m map[string]any, key string) (map[string]any, error) {
	v, err := reqAny(m, key)
	if err != nil {
		return nil, err
	}
	sub, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("key %q: expected object, got %T", key, v)
	}
	return sub, nil
}

// optString returns the string under key, or nil when the key is absent,
// null, or not a string.
func optString(m map[string]any, key string) *string {
	if s, ok := m[key].(string); ok {
		return &s
	}
	return nil
}

// optFloat returns the number under key, or nil when absent or null.
func optFloat(m map[string]any, key string) *float64 {
	if f, ok := m[key].(float64); ok {
		return &f
	}
	return nil
}

// optList returns the list under key, or nil when absent. Used as the empty
// fallback for collections that may be missing entirely.
func optList(m map[string]any, key string) []any {
	if l, ok := m[key].([]any); ok {
		return l
	}
	return nil
}

// timestampKey decodes the timestamp stored under key, preferring the
// millisecond-epoch variant keyMs when present. Exports flipped between the
// two forms over the years and only one is populated in a given year, so the
// precedence is fixed rather than merged.
func timestampKey(m map[string]any, key string) (time.Time, error) {
	if ms, ok := m[key+"Ms"]; ok {
		return decode.Millis(ms)
	}
	s, err := reqString(m, key)
	if err != nil {
		return time.Time{}, err
	}
	return decode.UTCDate(s)
}

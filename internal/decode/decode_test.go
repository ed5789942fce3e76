package decode

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUTCDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{
			name:     "no fractional seconds",
			input:    "2023-12-01T01:50:29Z",
			expected: time.Date(2023, 12, 1, 1, 50, 29, 0, time.UTC),
		},
		{
			name:     "millisecond fraction padded to micros",
			input:    "2021-12-13T03:04:05.007Z",
			expected: time.Date(2021, 12, 13, 3, 4, 5, 7000000, time.UTC),
		},
		{
			name:     "full microsecond fraction",
			input:    "2021-04-02T23:04:50.134513Z",
			expected: time.Date(2021, 4, 2, 23, 4, 50, 134513000, time.UTC),
		},
		{
			name:     "nanosecond fraction truncated, not rounded",
			input:    "2020-01-02T03:04:05.123456789Z",
			expected: time.Date(2020, 1, 2, 3, 4, 5, 123456000, time.UTC),
		},
		{
			name:     "single digit fraction",
			input:    "2015-10-05T17:23:15.5Z",
			expected: time.Date(2015, 10, 5, 17, 23, 15, 500000000, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UTCDate(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestUTCDateErrors(t *testing.T) {
	for _, input := range []string{
		"2021-12-13T03:04:05",  // no Z
		"2021-12-13 03:04:05Z", // space separator
		"not a timestamp",
		"2021-12-13T03:04:05.xyzZ", // bad fraction
	} {
		t.Run(input, func(t *testing.T) {
			_, err := UTCDate(input)
			assert.Error(t, err)
		})
	}
}

func TestUTCDateRoundTrip(t *testing.T) {
	// Decoding the canonical string form of a decoded timestamp is a no-op.
	const canonical = "2006-01-02T15:04:05.000000Z"

	first, err := UTCDate("2017-12-10T23:29:25.026Z")
	require.NoError(t, err)

	second, err := UTCDate(first.Format(canonical))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMillis(t *testing.T) {
	expected := time.Date(2017, 12, 10, 23, 14, 58, 30000000, time.UTC)

	t.Run("numeric string", func(t *testing.T) {
		got, err := Millis("1512947698030")
		require.NoError(t, err)
		assert.Equal(t, expected, got)
	})

	t.Run("json number", func(t *testing.T) {
		got, err := Millis(float64(1512947698030))
		require.NoError(t, err)
		assert.Equal(t, expected, got)
	})

	t.Run("unsupported type", func(t *testing.T) {
		_, err := Millis(true)
		assert.Error(t, err)
	})

	t.Run("non-numeric string", func(t *testing.T) {
		_, err := Millis("soon")
		assert.Error(t, err)
	})
}

func TestMicros(t *testing.T) {
	got := Micros(1617404690134513)
	assert.Equal(t, time.Date(2021, 4, 2, 23, 4, 50, 134513000, time.UTC), got)
	assert.Equal(t, time.UTC, got.Location())
}

func TestE7(t *testing.T) {
	assert.Equal(t, 35.1324213, E7(351324213))
	assert.Equal(t, -112.2434441, E7(-1122434441))
	assert.Equal(t, 0.0, E7(0))
}

func TestE7RoundTrip(t *testing.T) {
	for _, raw := range []float64{351324213, -1122434441, 555555555, -1666666666, 1686552734, 1} {
		degrees := E7(raw)
		assert.InDelta(t, raw, math.Round(degrees*1e7), 0.5)
	}
}

func TestUpgradeHTTPS(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"http upgraded", "http://youtube.com/watch?v=x", "https://youtube.com/watch?v=x"},
		{"https untouched", "https://www.google.com/maps/timeline", "https://www.google.com/maps/timeline"},
		{"other scheme untouched", "ftp://example.com", "ftp://example.com"},
		{"empty untouched", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, UpgradeHTTPS(tt.input))
		})
	}
}

func TestUpgradeHTTPSOpt(t *testing.T) {
	assert.Nil(t, UpgradeHTTPSOpt(nil))

	in := "http://example.com"
	got := UpgradeHTTPSOpt(&in)
	require.NotNil(t, got)
	assert.Equal(t, "https://example.com", *got)
}

package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"0", 0},
		{"45", 45},
		{"90", 90},
		{"1:30", 90},
		{"01:30", 90},
		{"10:00", 600},
		{"1:00:00", 3600},
		{"01:02:03", 3723},
		{"1:30.5", 90.5},
		{" 2:05 ", 125},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTime(tt.input)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestParseTime_InvalidFormat(t *testing.T) {
	for _, input := range []string{"", "abc", "1:2:3:4", "1::30", ":30", "1:", "-5", "1.5:30", "1e3", "1:3x"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseTime(input)
			assert.ErrorIs(t, err, ErrInvalidFormat)
		})
	}
}

func TestParseTimeRange(t *testing.T) {
	tests := []struct {
		input    string
		expected TimeRange
	}{
		{"30-120", TimeRange{Start: 30, End: 120, HasStart: true, HasEnd: true}},
		{"1:30-3:45", TimeRange{Start: 90, End: 225, HasStart: true, HasEnd: true}},
		{"30-", TimeRange{Start: 30, HasStart: true}},
		{"-120", TimeRange{End: 120, HasEnd: true}},
		{"45", TimeRange{Start: 45, HasStart: true}},
		{"0:10 - 0:20", TimeRange{Start: 10, End: 20, HasStart: true, HasEnd: true}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimeRange(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseTimeRange_EndNotAfterStart(t *testing.T) {
	for _, input := range []string{"120-30", "30-30", "1:00-0:59", "0:00:10-0:00:05"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseTimeRange(input)
			assert.ErrorIs(t, err, ErrInvalidRange)
		})
	}
}

func TestParseTimeRange_InvalidFormat(t *testing.T) {
	for _, input := range []string{"-", "", "a-b", "30-x", "1:2:3:4-5"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseTimeRange(input)
			assert.ErrorIs(t, err, ErrInvalidFormat)
		})
	}
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "10", FormatSeconds(10))
	assert.Equal(t, "90.5", FormatSeconds(90.5))
	assert.Equal(t, "0", FormatSeconds(0))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:45", FormatDuration(45))
	assert.Equal(t, "03:32", FormatDuration(212))
	assert.Equal(t, "01:01:01", FormatDuration(3661))
	assert.Equal(t, "unknown", FormatDuration(-1))
}

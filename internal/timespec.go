package internal

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTime converts SS, MM:SS or HH:MM:SS into seconds.
// Only the last component may carry a fractional part.
func ParseTime(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty time", ErrInvalidFormat)
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q has too many components, use seconds, MM:SS or HH:MM:SS", ErrInvalidFormat, s)
	}

	var total float64
	for i, part := range parts {
		last := i == len(parts)-1
		value, err := parseTimeComponent(part, last)
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %v", ErrInvalidFormat, s, err)
		}
		total = total*60 + value
	}

	return total, nil
}

func parseTimeComponent(part string, allowFraction bool) (float64, error) {
	if part == "" {
		return 0, fmt.Errorf("empty component")
	}
	for _, r := range part {
		if (r < '0' || r > '9') && !(allowFraction && r == '.') {
			return 0, fmt.Errorf("non-numeric component %q", part)
		}
	}
	value, err := strconv.ParseFloat(part, 64)
	if err != nil {
		return 0, fmt.Errorf("non-numeric component %q", part)
	}
	return value, nil
}

// ParseTimeRange parses "start-end", "start-", "-end" or a bare start time.
func ParseTimeRange(s string) (TimeRange, error) {
	s = strings.TrimSpace(s)

	startStr, endStr, found := strings.Cut(s, "-")
	if !found {
		start, err := ParseTime(s)
		if err != nil {
			return TimeRange{}, err
		}
		return TimeRange{Start: start, HasStart: true}, nil
	}

	startStr = strings.TrimSpace(startStr)
	endStr = strings.TrimSpace(endStr)
	if startStr == "" && endStr == "" {
		return TimeRange{}, fmt.Errorf("%w: %q needs a start or an end, e.g. '30-120', '30-' or '-120'", ErrInvalidFormat, s)
	}

	var r TimeRange
	if startStr != "" {
		start, err := ParseTime(startStr)
		if err != nil {
			return TimeRange{}, err
		}
		r.Start, r.HasStart = start, true
	}
	if endStr != "" {
		end, err := ParseTime(endStr)
		if err != nil {
			return TimeRange{}, err
		}
		r.End, r.HasEnd = end, true
	}

	if err := r.Validate(); err != nil {
		return TimeRange{}, err
	}
	return r, nil
}

// FormatSeconds renders seconds the way ffmpeg accepts them
func FormatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', -1, 64)
}

// FormatDuration renders seconds as MM:SS or HH:MM:SS
func FormatDuration(seconds float64) string {
	if seconds < 0 {
		return "unknown"
	}
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}

package internal

import (
	"fmt"
	"strings"
)

// TimeRange is a span of a media file in seconds. Either bound may be absent.
type TimeRange struct {
	Start    float64
	End      float64
	HasStart bool
	HasEnd   bool
}

// Validate checks that at least one bound is set and that end follows start
func (r TimeRange) Validate() error {
	if !r.HasStart && !r.HasEnd {
		return fmt.Errorf("%w: range has neither start nor end", ErrInvalidFormat)
	}
	if (r.HasStart && r.Start < 0) || (r.HasEnd && r.End < 0) {
		return fmt.Errorf("%w: negative offset", ErrInvalidRange)
	}
	if r.HasStart && r.HasEnd && r.End <= r.Start {
		return fmt.Errorf("%w: end %s must be after start %s", ErrInvalidRange, FormatSeconds(r.End), FormatSeconds(r.Start))
	}
	return nil
}

// Duration returns the length of a closed range
func (r TimeRange) Duration() (float64, bool) {
	if !r.HasStart || !r.HasEnd {
		return 0, false
	}
	return r.End - r.Start, true
}

// String returns a human-readable representation of the range
func (r TimeRange) String() string {
	var start, end string
	if r.HasStart {
		start = FormatSeconds(r.Start)
	}
	if r.HasEnd {
		end = FormatSeconds(r.End)
	}
	return start + "-" + end
}

// TrimKind tells which trim flag produced a TrimSpec
type TrimKind int

const (
	TrimNone TrimKind = iota
	TrimStart
	TrimEnd
	TrimRange
)

// String returns a human-readable representation of the trim kind
func (k TrimKind) String() string {
	switch k {
	case TrimStart:
		return "trim-start"
	case TrimEnd:
		return "trim-end"
	case TrimRange:
		return "trim"
	default:
		return "none"
	}
}

// TrimSpec describes which part of a video to keep
type TrimSpec struct {
	Kind    TrimKind
	Seconds float64 // used by TrimStart and TrimEnd
	Range   TimeRange
}

// IsSet reports whether any trim was requested
func (t TrimSpec) IsSet() bool {
	return t.Kind != TrimNone
}

// Describe summarizes the trim for status output
func (t TrimSpec) Describe() string {
	switch t.Kind {
	case TrimStart:
		return fmt.Sprintf("removed %ss from start", FormatSeconds(t.Seconds))
	case TrimEnd:
		return fmt.Sprintf("removed %ss from end", FormatSeconds(t.Seconds))
	case TrimRange:
		return fmt.Sprintf("trimmed to range %s", t.Range)
	default:
		return ""
	}
}

// Resolve turns the spec into an absolute range. sourceDuration is only
// consulted for TrimEnd.
func (t TrimSpec) Resolve(sourceDuration float64) (TimeRange, error) {
	switch t.Kind {
	case TrimStart:
		if t.Seconds <= 0 {
			return TimeRange{}, invalidArgf("--trim-start must be positive, got %s", FormatSeconds(t.Seconds))
		}
		return TimeRange{Start: t.Seconds, HasStart: true}, nil
	case TrimEnd:
		if t.Seconds <= 0 {
			return TimeRange{}, invalidArgf("--trim-end must be positive, got %s", FormatSeconds(t.Seconds))
		}
		end := sourceDuration - t.Seconds
		if end <= 0 {
			return TimeRange{}, fmt.Errorf("%w: cannot remove %ss from a %ss video", ErrInvalidRange, FormatSeconds(t.Seconds), FormatSeconds(sourceDuration))
		}
		return TimeRange{End: end, HasEnd: true}, nil
	case TrimRange:
		return t.Range, t.Range.Validate()
	default:
		return TimeRange{}, invalidArgf("no trim requested")
	}
}

// DownloadRequest holds everything needed for one download invocation
type DownloadRequest struct {
	URL              string
	Quality          string
	OutputDir        string
	FilenameTemplate string
	Trim             TrimSpec
	AudioOnly        bool
	KeepOriginal     bool
}

// EditRequest holds everything needed for one edit invocation
type EditRequest struct {
	Input        string
	Trim         TrimSpec
	ConvertTo    string
	Resize       string
	ExtractAudio bool
	Output       string
}

// HasOperations reports whether any edit was requested
func (r EditRequest) HasOperations() bool {
	return r.Trim.IsSet() || r.ConvertTo != "" || r.Resize != "" || r.ExtractAudio
}

// ExtractAudioRequest holds the arguments of extract-audio
type ExtractAudioRequest struct {
	Input  string
	Format string
	Output string
}

// normalizeToken lowercases and trims a user supplied token
func normalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

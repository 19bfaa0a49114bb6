package internal

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrInvalidFormat       = errors.New("invalid time format")
	ErrInvalidRange        = errors.New("invalid time range")
	ErrMissingDependency   = errors.New("missing dependency")
	ErrExternalToolFailure = errors.New("external tool failed")
)

// Exit statuses used when the failure did not come from a child process
const (
	ExitFailure     = 1
	ExitUsage       = 2
	ExitMissingTool = 127
	ExitInterrupted = 130
)

// ToolError reports a non-zero exit from yt-dlp, ffmpeg or ffprobe
type ToolError struct {
	Tool     string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Tool, e.ExitCode)
	if tail := lastLines(e.Stderr, 1); tail != "" {
		msg += ": " + strings.TrimSpace(tail)
	}
	return msg
}

func (e *ToolError) Unwrap() error { return e.Err }

func (e *ToolError) Is(target error) bool { return target == ErrExternalToolFailure }

// MissingDependencyError reports an executable that could not be located
type MissingDependencyError struct {
	Tool string
	Hint string
}

func (e *MissingDependencyError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("%s not found in PATH", e.Tool)
	}
	return fmt.Sprintf("%s not found in PATH, %s", e.Tool, e.Hint)
}

func (e *MissingDependencyError) Is(target error) bool { return target == ErrMissingDependency }

func invalidArgf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// ExitCode maps an error returned by a command to the process exit status.
// A failing child process hands its own status through.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var toolErr *ToolError
	if errors.As(err, &toolErr) && toolErr.ExitCode > 0 {
		return toolErr.ExitCode
	}

	switch {
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, ErrMissingDependency):
		return ExitMissingTool
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrInvalidFormat), errors.Is(err, ErrInvalidRange):
		return ExitUsage
	default:
		return ExitFailure
	}
}

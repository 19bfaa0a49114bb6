package internal

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil", nil, 0},
		{"tool exit status passes through", &ToolError{Tool: "ffmpeg", ExitCode: 69}, 69},
		{"wrapped tool error", fmt.Errorf("trimming: %w", &ToolError{Tool: "ffmpeg", ExitCode: 3}), 3},
		{"missing dependency", &MissingDependencyError{Tool: "ffprobe"}, ExitMissingTool},
		{"invalid argument", invalidArgf("bad quality"), ExitUsage},
		{"invalid format", fmt.Errorf("%w: x", ErrInvalidFormat), ExitUsage},
		{"invalid range", fmt.Errorf("%w: x", ErrInvalidRange), ExitUsage},
		{"interrupted", fmt.Errorf("ffmpeg interrupted: %w", context.Canceled), ExitInterrupted},
		{"anything else", errors.New("boom"), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExitCode(tt.err))
		})
	}
}

func TestToolError(t *testing.T) {
	err := &ToolError{Tool: "yt-dlp", ExitCode: 1, Stderr: "WARNING: something\nERROR: Video unavailable\n"}
	assert.ErrorIs(t, err, ErrExternalToolFailure)
	assert.Equal(t, "yt-dlp exited with status 1: ERROR: Video unavailable", err.Error())

	bare := &ToolError{Tool: "ffmpeg", ExitCode: 2}
	assert.Equal(t, "ffmpeg exited with status 2", bare.Error())
}

func TestMissingDependencyError(t *testing.T) {
	err := &MissingDependencyError{Tool: "ffmpeg", Hint: "install it"}
	assert.ErrorIs(t, err, ErrMissingDependency)
	assert.Equal(t, "ffmpeg not found in PATH, install it", err.Error())
}

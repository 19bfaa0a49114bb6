//go:build integration

package internal

import (
	"context"
	"io"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFrameRate = 25

// generateSample renders a 20 second test pattern with ffmpeg's lavfi source
func generateSample(t *testing.T, ffmpegPath, path string) {
	t.Helper()
	cmd := exec.Command(ffmpegPath,
		"-hide_banner", "-loglevel", "error", "-y",
		"-f", "lavfi", "-i", "testsrc=duration=20:size=320x240:rate=25",
		"-c:v", "libx264", "-pix_fmt", "yuv420p",
		path)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Skipf("cannot generate sample video: %v: %s", err, out)
	}
}

func TestEdit_TrimStartShortensByTenSeconds(t *testing.T) {
	ffmpegPath, ffprobePath, err := ResolveFFmpeg("ffmpeg", "ffprobe")
	if err != nil {
		t.Skip("ffmpeg and ffprobe are required")
	}

	dir := t.TempDir()
	input := filepath.Join(dir, "sample.mp4")
	generateSample(t, ffmpegPath, input)

	ui := NewWriterUIManager(io.Discard)
	config := &Config{TempDir: filepath.Join(dir, "work"), FFmpegLogLevel: "error"}
	transcoder := NewTranscoder(&DefaultCommandRunner{Stderr: io.Discard}, ffmpegPath, ffprobePath, config.FFmpegOptions(), ui)
	app := NewApp(config, WithUI(ui), WithTranscoder(transcoder))

	ctx := context.Background()
	source, err := app.ProbeFile(ctx, input)
	require.NoError(t, err)

	result, err := app.Edit(ctx, EditRequest{Input: input, Trim: TrimSpec{Kind: TrimStart, Seconds: 10}})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sample_trimmed.mp4"), result.Output)

	trimmed, err := app.ProbeFile(ctx, result.Output)
	require.NoError(t, err)
	assert.InDelta(t, source.Duration-10, trimmed.Duration, 1.0/sampleFrameRate)
	assert.True(t, trimmed.HasVideo)
}

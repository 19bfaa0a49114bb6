package internal

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleVideoJSON = `{
  "id": "dQw4w9WgXcQ",
  "title": "Never Gonna Give You Up",
  "uploader": "Rick Astley",
  "channel": "Rick Astley",
  "duration": 212,
  "view_count": 1500000000,
  "upload_date": "20091025",
  "width": 1920,
  "height": 1080,
  "fps": 25,
  "vcodec": "avc1.640028",
  "acodec": "mp4a.40.2",
  "filesize_approx": 52428800,
  "webpage_url": "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
  "formats": [
    {"format_id": "140", "ext": "m4a", "vcodec": "none", "acodec": "mp4a.40.2", "filesize": 3433514, "format_note": "medium"},
    {"format_id": "136", "ext": "mp4", "resolution": "1280x720", "vcodec": "avc1.4d401f", "acodec": "none", "fps": 25, "filesize_approx": 20000000, "format_note": "720p"},
    {"format_id": "sb0", "ext": "mhtml", "vcodec": "images", "acodec": "none"}
  ]
}`

func TestQualityFormat(t *testing.T) {
	tests := []struct {
		quality  string
		expected string
	}{
		{"", "bv*+ba/b"},
		{"best", "bv*+ba/b"},
		{"BEST", "bv*+ba/b"},
		{"worst", "wv*+wa/w"},
		{"audio", "ba/best"},
		{"720p", "bv*[height<=720]+ba/b[height<=720]/wv*[height<=720]+wa/w[height<=720]"},
		{"2160p", "bv*[height<=2160]+ba/b[height<=2160]/wv*[height<=2160]+wa/w[height<=2160]"},
	}

	for _, tt := range tests {
		t.Run(tt.quality, func(t *testing.T) {
			got, err := QualityFormat(tt.quality)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestQualityFormat_Unsupported(t *testing.T) {
	for _, quality := range []string{"4k", "721p", "p", "hd", "1080"} {
		t.Run(quality, func(t *testing.T) {
			_, err := QualityFormat(quality)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestBuildDownloadArgs_720p(t *testing.T) {
	args, err := BuildDownloadArgs(DownloadRequest{
		URL:       "dQw4w9WgXcQ",
		Quality:   "720p",
		OutputDir: "out",
	}, DownloaderSettings{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"--no-playlist",
		"--newline",
		"--progress",
		"--print", "after_move:ytdownloader-file:%(filepath)s",
		"-o", filepath.Join("out", "%(title)s.%(ext)s"),
		"-f", "bv*[height<=720]+ba/b[height<=720]/wv*[height<=720]+wa/w[height<=720]",
		"--", "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	}, args)
}

func TestBuildDownloadArgs_AudioOnly(t *testing.T) {
	args, err := BuildDownloadArgs(DownloadRequest{
		URL:              "https://youtu.be/dQw4w9WgXcQ",
		OutputDir:        "music",
		FilenameTemplate: "%(uploader)s - %(title)s.%(ext)s",
		AudioOnly:        true,
	}, DownloaderSettings{AudioFormat: "flac", FFmpegLocation: "/opt/ffmpeg/bin/ffmpeg"})
	require.NoError(t, err)

	joined := strings.Join(args, " ")
	assert.Contains(t, joined, "-f ba/best -x --audio-format flac --audio-quality 192K")
	assert.Contains(t, joined, "--ffmpeg-location /opt/ffmpeg/bin/ffmpeg")
	assert.Contains(t, args, filepath.Join("music", "%(uploader)s - %(title)s.%(ext)s"))
	assert.Equal(t, "https://youtu.be/dQw4w9WgXcQ", args[len(args)-1])
}

func TestBuildDownloadArgs_MergeFormat(t *testing.T) {
	args, err := BuildDownloadArgs(DownloadRequest{URL: "dQw4w9WgXcQ"}, DownloaderSettings{MergeOutputFormat: "mkv"})
	require.NoError(t, err)
	assert.Contains(t, strings.Join(args, " "), "-f bv*+ba/b --merge-output-format mkv")
	assert.Contains(t, args, filepath.Join(".", DefaultFilenameTemplate))
}

func TestBuildDownloadArgs_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		req      DownloadRequest
		settings DownloaderSettings
	}{
		{"unsupported quality", DownloadRequest{URL: "dQw4w9WgXcQ", Quality: "8k"}, DownloaderSettings{}},
		{"not youtube", DownloadRequest{URL: "https://vimeo.com/76979871"}, DownloaderSettings{}},
		{"absolute template", DownloadRequest{URL: "dQw4w9WgXcQ", FilenameTemplate: "/tmp/%(title)s.%(ext)s"}, DownloaderSettings{}},
		{"bad audio format", DownloadRequest{URL: "dQw4w9WgXcQ", AudioOnly: true}, DownloaderSettings{AudioFormat: "ogg"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildDownloadArgs(tt.req, tt.settings)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestNormalizeVideoURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"dQw4w9WgXcQ", "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{"youtu.be/dQw4w9WgXcQ", "https://youtu.be/dQw4w9WgXcQ"},
		{"https://m.youtube.com/watch?v=dQw4w9WgXcQ", "https://m.youtube.com/watch?v=dQw4w9WgXcQ"},
		{"https://music.youtube.com/watch?v=dQw4w9WgXcQ", "https://music.youtube.com/watch?v=dQw4w9WgXcQ"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeVideoURL(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	for _, input := range []string{"", "https://vimeo.com/1", "ftp://youtube.com/watch?v=dQw4w9WgXcQ", "not a url"} {
		t.Run("reject "+input, func(t *testing.T) {
			_, err := NormalizeVideoURL(input)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestParseVideoInfo(t *testing.T) {
	info, err := ParseVideoInfo(sampleVideoJSON)
	require.NoError(t, err)

	assert.Equal(t, "dQw4w9WgXcQ", info.ID)
	assert.Equal(t, "Never Gonna Give You Up", info.Title)
	assert.Equal(t, "Rick Astley", info.Uploader)
	assert.Equal(t, 212.0, info.Duration)
	assert.Equal(t, int64(1500000000), info.ViewCount)
	assert.Equal(t, 1920, info.Width)
	assert.Equal(t, 1080, info.Height)
	assert.Equal(t, int64(52428800), info.FileSize, "falls back to filesize_approx")
	assert.Equal(t, sampleVideoJSON, info.Raw)

	require.Len(t, info.Formats, 3)
	assert.Equal(t, FormatInfo{
		ID: "140", Ext: "m4a", Resolution: "audio only", FileSize: 3433514,
		VideoCodec: "none", AudioCodec: "mp4a.40.2", Note: "medium",
	}, info.Formats[0])
	assert.Equal(t, "1280x720", info.Formats[1].Resolution)
	assert.Equal(t, int64(20000000), info.Formats[1].FileSize)
	assert.Equal(t, "unknown", info.Formats[2].Resolution)
}

func TestParseVideoInfo_Invalid(t *testing.T) {
	_, err := ParseVideoInfo("WARNING: not json")
	assert.Error(t, err)
}

func TestParseDownloadProgress(t *testing.T) {
	percent, ok := parseDownloadProgress("[download]  45.2% of 10.00MiB at 1.00MiB/s ETA 00:05")
	assert.True(t, ok)
	assert.Equal(t, 45.2, percent)

	percent, ok = parseDownloadProgress("[download] 100% of 10.00MiB in 00:00:09")
	assert.True(t, ok)
	assert.Equal(t, 100.0, percent)

	_, ok = parseDownloadProgress("[download] Destination: video.mp4")
	assert.False(t, ok)
	_, ok = parseDownloadProgress("[youtube] dQw4w9WgXcQ: Downloading webpage")
	assert.False(t, ok)
}

func TestYouTube_Metadata(t *testing.T) {
	yt := NewYouTube(&fakeRunner{}, "/opt/bin/yt-dlp", DownloaderSettings{}, NewWriterUIManager(io.Discard))

	var requested, executable string
	yt.fetch = func(ctx context.Context, exe, videoURL string) (string, error) {
		executable, requested = exe, videoURL
		return sampleVideoJSON, nil
	}

	info, err := yt.Metadata(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "/opt/bin/yt-dlp", executable)
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", requested)
	assert.Equal(t, "Never Gonna Give You Up", info.Title)
}

// writeScript creates an executable shell script standing in for yt-dlp
func writeScript(t *testing.T, body string) string {
	t.Helper()
	requireShell(t)
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(t.TempDir(), "yt-dlp")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func TestYouTube_MetadataRunsResolvedExecutable(t *testing.T) {
	script := writeScript(t, "cat <<'JSON'\n"+sampleVideoJSON+"\nJSON")
	yt := NewYouTube(&DefaultCommandRunner{}, script, DownloaderSettings{}, NewWriterUIManager(io.Discard))

	info, err := yt.Metadata(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", info.ID)
	assert.Len(t, info.Formats, 3)
}

func TestYouTube_MetadataExitStatusPassesThrough(t *testing.T) {
	script := writeScript(t, "echo 'ERROR: video unavailable' >&2\nexit 3")
	yt := NewYouTube(&DefaultCommandRunner{}, script, DownloaderSettings{}, NewWriterUIManager(io.Discard))

	_, err := yt.Metadata(context.Background(), "dQw4w9WgXcQ")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExternalToolFailure)
	assert.Equal(t, 3, ExitCode(err))
	assert.Contains(t, err.Error(), "video unavailable")
}

func TestYouTube_MetadataMissingExecutable(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "yt-dlp")
	yt := NewYouTube(&DefaultCommandRunner{}, missing, DownloaderSettings{}, NewWriterUIManager(io.Discard))

	_, err := yt.Metadata(context.Background(), "dQw4w9WgXcQ")
	assert.ErrorIs(t, err, ErrMissingDependency)
	assert.Equal(t, ExitMissingTool, ExitCode(err))
}

func TestYouTube_MetadataInterrupted(t *testing.T) {
	script := writeScript(t, "exec sleep 10")
	yt := NewYouTube(&DefaultCommandRunner{}, script, DownloaderSettings{}, NewWriterUIManager(io.Discard))

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	_, err := yt.Metadata(ctx, "dQw4w9WgXcQ")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, ExitInterrupted, ExitCode(err))
}

func TestYouTube_Download(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{downloadPath: filepath.Join(dir, "Never Gonna Give You Up.mp4")}
	yt := NewYouTube(runner, "yt-dlp", DownloaderSettings{}, NewWriterUIManager(io.Discard))

	path, err := yt.Download(context.Background(), DownloadRequest{URL: "dQw4w9WgXcQ", OutputDir: dir})
	require.NoError(t, err)
	assert.Equal(t, runner.downloadPath, path)

	calls := runner.callsTo("yt-dlp")
	require.Len(t, calls, 1)
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", calls[0].output())
}

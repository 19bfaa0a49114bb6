package internal

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/lrstanley/go-ytdlp"
	"github.com/rs/zerolog/log"
)

// ytdlpHint is shown when yt-dlp is missing
const ytdlpHint = "install it (https://github.com/yt-dlp/yt-dlp) or set auto_install = true"

// ffmpegHint is shown when ffmpeg or ffprobe is missing
func ffmpegHint() string {
	switch runtime.GOOS {
	case "darwin":
		return "install it with: brew install ffmpeg"
	case "windows":
		return "download it from https://ffmpeg.org/download.html and add it to PATH"
	default:
		return "install it with your package manager, e.g. sudo apt install ffmpeg"
	}
}

// lookExecutable finds name in PATH or next to our own binary
func lookExecutable(name string) (string, bool) {
	if strings.ContainsRune(name, os.PathSeparator) || strings.ContainsRune(name, '/') {
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			return name, true
		}
		return "", false
	}

	if path, err := exec.LookPath(name); err == nil {
		return path, true
	}

	execPath, err := os.Executable()
	if err != nil {
		return "", false
	}
	candidate := filepath.Join(filepath.Dir(execPath), name)
	if runtime.GOOS == "windows" {
		candidate += ".exe"
	}
	if _, err := os.Stat(candidate); err == nil {
		return candidate, true
	}
	return "", false
}

// ResolveFFmpeg locates the ffmpeg and ffprobe executables
func ResolveFFmpeg(ffmpeg, ffprobe string) (string, string, error) {
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	if ffprobe == "" {
		ffprobe = "ffprobe"
	}

	ffmpegPath, ok := lookExecutable(ffmpeg)
	if !ok {
		return "", "", &MissingDependencyError{Tool: ffmpeg, Hint: ffmpegHint()}
	}
	ffprobePath, ok := lookExecutable(ffprobe)
	if !ok {
		return "", "", &MissingDependencyError{Tool: ffprobe, Hint: ffmpegHint()}
	}

	log.Debug().Str("op", "deps/ffmpeg").Str("ffmpeg", ffmpegPath).Str("ffprobe", ffprobePath).Msg("Resolved transcoder")
	return ffmpegPath, ffprobePath, nil
}

// ResolveYtdlp locates yt-dlp, downloading it into the cache when allowed
func ResolveYtdlp(ctx context.Context, autoInstall bool) (string, error) {
	if path, ok := lookExecutable("yt-dlp"); ok {
		log.Debug().Str("op", "deps/ytdlp").Str("path", path).Msg("Resolved yt-dlp from PATH")
		return path, nil
	}

	if !autoInstall {
		return "", &MissingDependencyError{
			Tool: "yt-dlp",
			Hint: ytdlpHint,
		}
	}

	log.Info().Str("op", "deps/ytdlp").Msg("yt-dlp not found, installing into cache")
	resolved, err := ytdlp.Install(ctx, &ytdlp.InstallOptions{AllowVersionMismatch: true})
	if err != nil {
		return "", fmt.Errorf("%w: installing yt-dlp: %v", ErrMissingDependency, err)
	}

	log.Debug().Str("op", "deps/ytdlp").Str("path", resolved.Executable).Msg("Resolved yt-dlp from cache")
	return resolved.Executable, nil
}

package internal

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/mattn/go-isatty"
)

// youtubeHosts are the hosts accepted for downloads and metadata queries
var youtubeHosts = []string{"youtube.com", "www.youtube.com", "m.youtube.com", "music.youtube.com", "youtu.be"}

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// IsValidYouTubeID checks if a string looks like a valid YouTube video ID
func IsValidYouTubeID(id string) bool {
	return videoIDPattern.MatchString(id)
}

// NormalizeVideoURL validates a YouTube URL, expanding bare video IDs
func NormalizeVideoURL(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", invalidArgf("missing video URL")
	}

	if IsValidYouTubeID(arg) {
		return "https://www.youtube.com/watch?v=" + arg, nil
	}

	raw := arg
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", invalidArgf("invalid YouTube URL %q: %v", arg, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", invalidArgf("invalid YouTube URL %q: unsupported scheme %q", arg, u.Scheme)
	}
	if !slices.Contains(youtubeHosts, strings.ToLower(u.Hostname())) {
		return "", invalidArgf("invalid YouTube URL %q (supported hosts: %s)", arg, strings.Join(youtubeHosts, ", "))
	}

	return u.String(), nil
}

// OutputFilename derives an output path next to input: <stem><suffix>.<ext>.
// An empty ext keeps the input's extension.
func OutputFilename(input, suffix, ext string) string {
	dir := filepath.Dir(input)
	base := filepath.Base(input)
	origExt := filepath.Ext(base)
	stem := strings.TrimSuffix(base, origExt)

	if ext == "" {
		ext = origExt
	} else if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	return filepath.Join(dir, stem+suffix+ext)
}

// withExtension forces path to end in .ext
func withExtension(path, ext string) string {
	want := "." + strings.TrimPrefix(ext, ".")
	if strings.EqualFold(filepath.Ext(path), want) {
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + want
}

// IsInteractive reports whether stdin is a terminal we can prompt on
func IsInteractive() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// AskUser is a variable that holds the function for asking user confirmation
// This allows it to be replaced in tests
var AskUser = func(message string) bool {
	fmt.Printf("%s (y/N): ", message)
	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		response := strings.ToLower(strings.TrimSpace(scanner.Text()))
		return response == "y" || response == "yes"
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
	}
	return false
}

// CleanupTempDir purges files from a temporary directory
func CleanupTempDir(tempDir string) error {
	if _, err := os.Stat(tempDir); os.IsNotExist(err) {
		return nil
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		return fmt.Errorf("reading temp directory: %w", err)
	}

	for _, entry := range entries {
		filePath := filepath.Join(tempDir, entry.Name())
		if err := os.Remove(filePath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to remove temporary file %s: %v\n", filePath, err)
		}
	}

	// Fails harmlessly when another run still has files in it
	_ = os.Remove(tempDir)
	return nil
}

// FileExists checks if a file exists
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return !os.IsNotExist(err)
}

// EnsureDirs creates directories if needed
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" || FileExists(dir) {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// cleanupFiles removes temporary files
func cleanupFiles(files ...string) {
	for _, file := range files {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to remove file %s: %v\n", file, err)
		}
	}
}

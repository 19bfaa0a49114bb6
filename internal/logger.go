package internal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger sends logs to stderr, adding logFile when set. The returned
// closer releases the log file.
func InitLogger(verbose bool, logFile string) (io.Closer, error) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	console := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.DateTime,
	}
	// Without --verbose the console stays clean; failures reach the user as
	// returned errors
	consoleLevel := zerolog.Disabled
	if verbose {
		consoleLevel = zerolog.DebugLevel
	}
	writers := []io.Writer{levelWriter{Writer: console, min: consoleLevel}}

	var closer io.Closer = nopCloser{}
	if logFile != "" {
		if err := EnsureDirs(filepath.Dir(logFile)); err != nil {
			return closer, fmt.Errorf("creating log directory: %w", err)
		}
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return closer, fmt.Errorf("opening log file: %w", err)
		}
		writers = append(writers, file)
		closer = file
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
	return closer, nil
}

// levelWriter drops events below min
type levelWriter struct {
	io.Writer
	min zerolog.Level
}

func (w levelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if w.min == zerolog.Disabled || level < w.min {
		return len(p), nil
	}
	return w.Write(p)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

package internal

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// commandCall records one invocation seen by fakeRunner
type commandCall struct {
	Name string
	Args []string
}

// input returns the value following -i
func (c commandCall) input() string {
	if i := slices.Index(c.Args, "-i"); i >= 0 && i+1 < len(c.Args) {
		return c.Args[i+1]
	}
	return ""
}

// output returns the last argument, where ffmpeg expects the output file
func (c commandCall) output() string {
	if len(c.Args) == 0 {
		return ""
	}
	return c.Args[len(c.Args)-1]
}

// fakeRunner pretends to be yt-dlp, ffmpeg and ffprobe. ffmpeg writes an
// empty output file, yt-dlp writes downloadPath and reports it.
type fakeRunner struct {
	mu           sync.Mutex
	calls        []commandCall
	duration     string
	downloadPath string
	failWith     error
}

func (f *fakeRunner) record(name string, args []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, commandCall{Name: name, Args: slices.Clone(args)})
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.record(name, args)
	if f.failWith != nil {
		return nil, f.failWith
	}
	duration := f.duration
	if duration == "" {
		duration = "20.000000"
	}
	return []byte(duration + "\n"), nil
}

func (f *fakeRunner) Stream(ctx context.Context, name string, args []string, onLine func(string)) error {
	f.record(name, args)
	if f.failWith != nil {
		return f.failWith
	}

	switch filepath.Base(name) {
	case "yt-dlp":
		onLine("[download] Destination: " + f.downloadPath)
		onLine("[download]  50.0% of 1.00MiB at 1.00MiB/s ETA 00:01")
		onLine("[download] 100% of 1.00MiB in 00:00:01")
		if err := os.WriteFile(f.downloadPath, []byte("video"), 0644); err != nil {
			return err
		}
		onLine(downloadedMarker + f.downloadPath)
	case "ffmpeg":
		onLine("out_time_us=5000000")
		onLine("progress=end")
		if err := os.WriteFile(args[len(args)-1], []byte("media"), 0644); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeRunner) callsTo(name string) []commandCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var calls []commandCall
	for _, c := range f.calls {
		if c.Name == name {
			calls = append(calls, c)
		}
	}
	return calls
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

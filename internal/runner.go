package internal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/alessio/shellescape"
	"github.com/rs/zerolog/log"
)

// CommandRunner executes external commands
type CommandRunner interface {
	// Run captures stdout of a short-lived command such as ffprobe
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
	// Stream runs a command to completion, handing each stdout line to onLine
	// and forwarding stderr to the console
	Stream(ctx context.Context, name string, args []string, onLine func(string)) error
}

// stderrTailLines bounds the stderr kept for error messages
const stderrTailLines = 20

// interruptGrace is how long a child gets to exit after an interrupt
const interruptGrace = 5 * time.Second

// DefaultCommandRunner implements CommandRunner
type DefaultCommandRunner struct {
	Stderr io.Writer
}

func (r *DefaultCommandRunner) stderr() io.Writer {
	if r.Stderr == nil {
		return os.Stderr
	}
	return r.Stderr
}

func (r *DefaultCommandRunner) command(ctx context.Context, name string, args []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	// Let the child clean up on interrupt before it is killed
	cmd.Cancel = func() error {
		if err := cmd.Process.Signal(os.Interrupt); err != nil {
			return cmd.Process.Kill()
		}
		return nil
	}
	cmd.WaitDelay = interruptGrace
	log.Debug().Str("op", "runner/exec").Msg(shellescape.QuoteCommand(append([]string{name}, args...)))
	return cmd
}

func (r *DefaultCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := r.command(ctx, name, args)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		return output, toolFailure(ctx, name, err, lastLines(stderr.String(), stderrTailLines))
	}
	return output, nil
}

func (r *DefaultCommandRunner) Stream(ctx context.Context, name string, args []string, onLine func(string)) error {
	cmd := r.command(ctx, name, args)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("creating stdout pipe: %w", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("creating stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return toolFailure(ctx, name, err, "")
	}

	tail := newLineTail(stderrTailLines)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		scanLines(stdout, func(line string) {
			if onLine != nil {
				onLine(line)
			}
		})
	}()
	go func() {
		defer wg.Done()
		out := r.stderr()
		scanLines(stderrPipe, func(line string) {
			tail.add(line)
			fmt.Fprintln(out, line)
		})
	}()

	// Pipes must be drained before Wait closes them
	wg.Wait()
	if err := cmd.Wait(); err != nil {
		return toolFailure(ctx, name, err, tail.String())
	}
	return nil
}

func scanLines(reader io.Reader, handle func(string)) {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) != "" {
			handle(line)
		}
	}
	if err := scanner.Err(); err != nil {
		// Keep the child writing so Wait does not block on a full pipe
		log.Debug().Str("op", "runner/scan").Err(err).Msg("Discarding rest of output")
		_, _ = io.Copy(io.Discard, reader)
	}
}

// toolFailure maps exec errors onto MissingDependency and ExternalToolFailure
func toolFailure(ctx context.Context, name string, err error, stderr string) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s interrupted: %w", name, ctxErr)
	}

	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return &MissingDependencyError{Tool: name}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code <= 0 {
			code = ExitFailure
		}
		return &ToolError{Tool: name, ExitCode: code, Stderr: stderr, Err: err}
	}

	return &ToolError{Tool: name, ExitCode: ExitFailure, Stderr: stderr, Err: err}
}

// lineTail keeps the last n lines written to it
type lineTail struct {
	mu    sync.Mutex
	lines []string
	max   int
}

func newLineTail(n int) *lineTail {
	return &lineTail{max: n}
}

func (t *lineTail) add(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, line)
	if len(t.lines) > t.max {
		t.lines = t.lines[len(t.lines)-t.max:]
	}
}

func (t *lineTail) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.Join(t.lines, "\n")
}

// lastLines returns at most n trailing non-empty lines of s
func lastLines(s string, n int) string {
	tail := newLineTail(n)
	for line := range strings.SplitSeq(s, "\n") {
		if strings.TrimSpace(line) != "" {
			tail.add(line)
		}
	}
	return tail.String()
}

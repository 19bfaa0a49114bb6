package internal

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	detailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// UIManager handles all user interface concerns (progress, status output, child output)
type UIManager interface {
	// NewProgressBar returns nil when output is not an interactive terminal
	NewProgressBar(total int, description string) ProgressBar

	// Status messages
	Printf(format string, args ...any)
	Success(format string, args ...any)
	Warn(format string, args ...any)
	Detail(format string, args ...any)

	// Line forwards one line of child process output
	Line(line string)
}

// ProgressBar interface abstracts progress bar operations
type ProgressBar interface {
	Set(current int)
	Describe(description string)
	Finish()
}

// StandardUIManager handles normal UI operations
type StandardUIManager struct {
	out         io.Writer
	interactive bool
	quiet       bool
}

// NewUIManager writes to stdout and shows progress bars only on a terminal
func NewUIManager(verbose, quiet bool) UIManager {
	fd := os.Stdout.Fd()
	interactive := (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) && !verbose
	return &StandardUIManager{
		out:         os.Stdout,
		interactive: interactive,
		quiet:       quiet,
	}
}

// NewWriterUIManager is a non-interactive UI writing to w
func NewWriterUIManager(w io.Writer) UIManager {
	return &StandardUIManager{out: w}
}

func (ui *StandardUIManager) NewProgressBar(total int, description string) ProgressBar {
	if !ui.interactive || ui.quiet {
		return nil
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(ui.out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
	return &VisibleProgressBar{bar: bar}
}

func (ui *StandardUIManager) Printf(format string, args ...any) {
	if !ui.quiet {
		fmt.Fprintf(ui.out, format, args...)
	}
}

func (ui *StandardUIManager) Success(format string, args ...any) {
	if !ui.quiet {
		fmt.Fprintln(ui.out, successStyle.Render(fmt.Sprintf(format, args...)))
	}
}

func (ui *StandardUIManager) Warn(format string, args ...any) {
	if !ui.quiet {
		fmt.Fprintln(ui.out, warnStyle.Render(fmt.Sprintf(format, args...)))
	}
}

func (ui *StandardUIManager) Detail(format string, args ...any) {
	if !ui.quiet {
		fmt.Fprintln(ui.out, detailStyle.Render("   "+fmt.Sprintf(format, args...)))
	}
}

func (ui *StandardUIManager) Line(line string) {
	if !ui.quiet {
		fmt.Fprintln(ui.out, line)
	}
}

// VisibleProgressBar wraps the actual progress bar
type VisibleProgressBar struct {
	bar *progressbar.ProgressBar
}

func (v *VisibleProgressBar) Set(current int) {
	_ = v.bar.Set(current)
}

func (v *VisibleProgressBar) Describe(description string) {
	v.bar.Describe(description)
}

func (v *VisibleProgressBar) Finish() {
	_ = v.bar.Finish()
}

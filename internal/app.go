package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// App holds the application state and dependencies
type App struct {
	config     *Config
	ui         UIManager
	cmdRunner  CommandRunner
	youtube    *YouTube
	transcoder *Transcoder
	confirm    func(message string) bool
}

// NewApp initializes the application. Executables are resolved on first use
// so that commands only require the tools they actually run.
func NewApp(config *Config, options ...AppOption) *App {
	app := &App{
		config:    config,
		ui:        NewUIManager(config.Verbose, config.Quiet),
		cmdRunner: &DefaultCommandRunner{},
		confirm:   confirmKeep,
	}

	for _, option := range options {
		option(app)
	}

	return app
}

// AppOption customizes App creation
type AppOption func(*App)

// WithYouTube sets a custom YouTube downloader
func WithYouTube(youtube *YouTube) AppOption {
	return func(a *App) {
		a.youtube = youtube
	}
}

// WithTranscoder sets a custom media processor
func WithTranscoder(transcoder *Transcoder) AppOption {
	return func(a *App) {
		a.transcoder = transcoder
	}
}

// WithUI sets a custom UI manager
func WithUI(ui UIManager) AppOption {
	return func(a *App) {
		a.ui = ui
	}
}

// WithConfirm replaces the keep-original prompt
func WithConfirm(confirm func(string) bool) AppOption {
	return func(a *App) {
		a.confirm = confirm
	}
}

// confirmKeep asks on a terminal and keeps the file otherwise
func confirmKeep(message string) bool {
	if !IsInteractive() {
		return true
	}
	return AskUser(message)
}

// UI returns the UI manager used for status output
func (app *App) UI() UIManager {
	return app.ui
}

func (app *App) getYouTube(ctx context.Context) (*YouTube, error) {
	if app.youtube != nil {
		return app.youtube, nil
	}
	executable, err := ResolveYtdlp(ctx, app.config.AutoInstall)
	if err != nil {
		return nil, err
	}
	app.youtube = NewYouTube(app.cmdRunner, executable, app.config.DownloaderSettings(), app.ui)
	return app.youtube, nil
}

func (app *App) getTranscoder() (*Transcoder, error) {
	if app.transcoder != nil {
		return app.transcoder, nil
	}
	ffmpegPath, ffprobePath, err := ResolveFFmpeg(app.config.FFmpegPath, app.config.FFprobePath)
	if err != nil {
		return nil, err
	}
	app.transcoder = NewTranscoder(app.cmdRunner, ffmpegPath, ffprobePath, app.config.FFmpegOptions(), app.ui)
	return app.transcoder, nil
}

// Metadata gets video information from yt-dlp
func (app *App) Metadata(ctx context.Context, videoURL string) (*VideoInfo, error) {
	if _, err := NormalizeVideoURL(videoURL); err != nil {
		return nil, err
	}
	yt, err := app.getYouTube(ctx)
	if err != nil {
		return nil, err
	}
	return yt.Metadata(ctx, videoURL)
}

// Formats lists the formats yt-dlp offers for a video
func (app *App) Formats(ctx context.Context, videoURL string) ([]FormatInfo, error) {
	info, err := app.Metadata(ctx, videoURL)
	if err != nil {
		return nil, fmt.Errorf("listing formats: %w", err)
	}
	return info.Formats, nil
}

// ProbeFile returns details of a local media file
func (app *App) ProbeFile(ctx context.Context, path string) (*MediaInfo, error) {
	t, err := app.getTranscoder()
	if err != nil {
		return nil, err
	}
	return t.Probe(ctx, path)
}

// validateTrim checks flag values that do not depend on the source duration
func validateTrim(trim TrimSpec) error {
	switch trim.Kind {
	case TrimStart, TrimEnd:
		if trim.Seconds <= 0 {
			return invalidArgf("--%s must be positive, got %s", trim.Kind, FormatSeconds(trim.Seconds))
		}
	case TrimRange:
		return trim.Range.Validate()
	}
	return nil
}

// Download fetches a video and optionally trims it afterwards
func (app *App) Download(ctx context.Context, req DownloadRequest) (string, error) {
	// Reject bad flags before anything is launched
	if _, err := BuildDownloadArgs(req, app.config.DownloaderSettings()); err != nil {
		return "", err
	}
	if err := validateTrim(req.Trim); err != nil {
		return "", err
	}

	yt, err := app.getYouTube(ctx)
	if err != nil {
		return "", err
	}
	if req.Trim.IsSet() {
		// Trimming needs ffmpeg; fail before spending time on the download
		if _, err := app.getTranscoder(); err != nil {
			return "", err
		}
	}

	if req.AudioOnly {
		app.ui.Warn("Audio-only mode enabled")
	}
	app.ui.Printf("Starting download from: %s\n", req.URL)

	downloaded, err := yt.Download(ctx, req)
	if err != nil {
		return "", err
	}
	app.ui.Success("Download completed: %s", filepath.Base(downloaded))

	if !req.Trim.IsSet() {
		return downloaded, nil
	}

	app.ui.Warn("Applying video trimming...")
	edited := OutputFilename(downloaded, "_trimmed", "")
	if err := app.trimFile(ctx, downloaded, edited, req.Trim); err != nil {
		return "", err
	}

	if !req.KeepOriginal && !app.confirm("Keep original file?") {
		if err := os.Remove(downloaded); err != nil {
			return "", fmt.Errorf("removing original file: %w", err)
		}
		app.ui.Detail("Removed original file: %s", filepath.Base(downloaded))
	}

	return edited, nil
}

// trimFile applies a trim spec to input, writing output
func (app *App) trimFile(ctx context.Context, input, output string, trim TrimSpec) error {
	t, err := app.getTranscoder()
	if err != nil {
		return err
	}

	duration, err := app.sourceDuration(ctx, t, input, trim.Kind == TrimEnd)
	if err != nil {
		return err
	}

	r, err := trim.Resolve(duration)
	if err != nil {
		return err
	}

	args, err := TrimArgs(input, output, r, t.Options())
	if err != nil {
		return err
	}

	app.ui.Printf("Trimming video: %s\n", filepath.Base(input))
	if err := t.Run(ctx, "Trimming", args, expectedTrimLength(r, duration)); err != nil {
		return err
	}
	app.ui.Success("Trimming completed: %s", filepath.Base(output))
	return nil
}

// sourceDuration probes the input. The value is only required for --trim-end;
// otherwise it just feeds the progress bar and failures are ignored.
func (app *App) sourceDuration(ctx context.Context, t *Transcoder, input string, required bool) (float64, error) {
	duration, err := t.Duration(ctx, input)
	if err != nil {
		if required {
			return 0, fmt.Errorf("getting video duration: %w", err)
		}
		log.Debug().Str("op", "app/duration").Err(err).Msg("Could not probe duration")
		return 0, nil
	}
	return duration, nil
}

// expectedTrimLength estimates the trimmed output length in seconds
func expectedTrimLength(r TimeRange, sourceDuration float64) float64 {
	if d, ok := r.Duration(); ok {
		return d
	}
	if r.HasEnd {
		return r.End
	}
	if sourceDuration > r.Start {
		return sourceDuration - r.Start
	}
	return 0
}

// EditResult summarizes an edit run
type EditResult struct {
	Operations  []string
	Output      string
	AudioOutput string
}

// editStep is one ffmpeg pass of the edit pipeline
type editStep struct {
	label     string
	suffix    string
	ext       string
	operation string
	build     func(input, output string, duration float64) ([]string, float64, error)
}

// planEdit validates every edit flag and orders the video passes
func planEdit(req EditRequest, opts FFmpegOptions) ([]editStep, error) {
	if err := validateTrim(req.Trim); err != nil {
		return nil, err
	}

	var steps []editStep

	if req.Trim.IsSet() {
		trim := req.Trim
		steps = append(steps, editStep{
			label:     "Trimming",
			suffix:    "_trimmed",
			operation: trim.Describe(),
			build: func(input, output string, duration float64) ([]string, float64, error) {
				r, err := trim.Resolve(duration)
				if err != nil {
					return nil, 0, err
				}
				args, err := TrimArgs(input, output, r, opts)
				return args, expectedTrimLength(r, duration), err
			},
		})
	}

	if req.ConvertTo != "" {
		format := normalizeToken(req.ConvertTo)
		if _, ok := containerCodecs[format]; !ok {
			return nil, invalidArgf("unsupported format %q (supported: %s)", req.ConvertTo, strings.Join(SupportedContainers(), ", "))
		}
		steps = append(steps, editStep{
			label:     "Converting",
			suffix:    "_converted",
			ext:       format,
			operation: "converted to " + format,
			build: func(input, output string, duration float64) ([]string, float64, error) {
				args, err := ConvertArgs(input, output, format, opts)
				return args, duration, err
			},
		})
	}

	if req.Resize != "" {
		spec := req.Resize
		if _, err := ScaleFilter(spec); err != nil {
			return nil, err
		}
		steps = append(steps, editStep{
			label:     "Resizing",
			suffix:    "_resized",
			operation: "resized to " + spec,
			build: func(input, output string, duration float64) ([]string, float64, error) {
				args, err := ResizeArgs(input, output, spec, opts)
				return args, duration, err
			},
		})
	}

	return steps, nil
}

// editOutputPath picks the final video path for the planned steps
func editOutputPath(req EditRequest, steps []editStep) string {
	ext := ""
	var suffix strings.Builder
	for _, step := range steps {
		suffix.WriteString(step.suffix)
		if step.ext != "" {
			ext = step.ext
		}
	}

	if req.Output == "" {
		return OutputFilename(req.Input, suffix.String(), ext)
	}
	if ext != "" {
		return withExtension(req.Output, ext)
	}
	return req.Output
}

// Edit runs trim, convert, resize and audio extraction in that order.
// Intermediate files live in the cache temp dir; only the last pass writes
// the requested output.
func (app *App) Edit(ctx context.Context, req EditRequest) (*EditResult, error) {
	if !req.HasOperations() {
		return nil, invalidArgf("no operations specified, use --help for available options")
	}

	t, err := app.getTranscoder()
	if err != nil {
		return nil, err
	}

	steps, err := planEdit(req, t.Options())
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(req.Input); err != nil {
		return nil, fmt.Errorf("input file: %w", err)
	}

	result := &EditResult{}
	current := req.Input

	if len(steps) > 0 {
		final := editOutputPath(req, steps)
		if sameFile(final, req.Input) {
			return nil, invalidArgf("output %s would overwrite the input", final)
		}
		if _, audioOnly := audioContainer(containerExt(final)); audioOnly && req.Resize != "" {
			return nil, invalidArgf("cannot resize %s: .%s is an audio-only format", final, containerExt(final))
		}

		duration, err := app.sourceDuration(ctx, t, req.Input, req.Trim.Kind == TrimEnd)
		if err != nil {
			return nil, err
		}

		var intermediates []string
		defer func() { cleanupFiles(intermediates...) }()

		for i, step := range steps {
			output := final
			if i < len(steps)-1 {
				if err := EnsureDirs(app.config.TempDir); err != nil {
					return nil, fmt.Errorf("creating temp directory: %w", err)
				}
				ext := step.ext
				if ext == "" {
					ext = strings.TrimPrefix(filepath.Ext(current), ".")
				}
				output = filepath.Join(app.config.TempDir, uuid.NewString()+"."+ext)
				intermediates = append(intermediates, output)
			}

			args, expected, err := step.build(current, output, duration)
			if err != nil {
				return nil, err
			}

			app.ui.Printf("%s video: %s\n", step.label, filepath.Base(req.Input))
			if err := t.Run(ctx, step.label, args, expected); err != nil {
				return nil, err
			}

			result.Operations = append(result.Operations, step.operation)
			current = output
			duration = expected
		}
		result.Output = final
	}

	if req.ExtractAudio {
		audioOutput := OutputFilename(req.Input, "_audio", "mp3")
		if len(steps) == 0 && req.Output != "" {
			audioOutput = withExtension(req.Output, "mp3")
		}
		if err := app.extractAudio(ctx, t, current, audioOutput, "mp3"); err != nil {
			return nil, err
		}
		result.Operations = append(result.Operations, "extracted audio")
		result.AudioOutput = audioOutput
	}

	return result, nil
}

// ExtractAudio writes the audio track of a video to a separate file
func (app *App) ExtractAudio(ctx context.Context, req ExtractAudioRequest) (string, error) {
	format := normalizeToken(req.Format)
	if format == "" {
		format = "mp3"
	}
	if _, ok := audioCodecs[format]; !ok {
		return "", invalidArgf("unsupported audio format %q (supported: %s)", req.Format, strings.Join(SupportedAudioFormats(), ", "))
	}

	t, err := app.getTranscoder()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(req.Input); err != nil {
		return "", fmt.Errorf("input file: %w", err)
	}

	output := req.Output
	if output == "" {
		output = OutputFilename(req.Input, "_audio", format)
	}
	if sameFile(output, req.Input) {
		return "", invalidArgf("output %s would overwrite the input", output)
	}

	if err := app.extractAudio(ctx, t, req.Input, output, format); err != nil {
		return "", err
	}
	return output, nil
}

func (app *App) extractAudio(ctx context.Context, t *Transcoder, input, output, format string) error {
	args, err := ExtractAudioArgs(input, output, format, t.Options())
	if err != nil {
		return err
	}

	duration, _ := app.sourceDuration(ctx, t, input, false)

	app.ui.Printf("Extracting audio: %s\n", filepath.Base(input))
	if err := t.Run(ctx, "Extracting audio", args, duration); err != nil {
		return err
	}
	app.ui.Success("Audio extraction completed: %s", filepath.Base(output))
	return nil
}

// sameFile compares two paths after cleaning them
func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

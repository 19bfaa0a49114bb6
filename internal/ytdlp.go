package internal

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/lrstanley/go-ytdlp"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

// DefaultFilenameTemplate is used when neither flag nor config set one
const DefaultFilenameTemplate = "%(title)s.%(ext)s"

// downloadedMarker prefixes the final file path printed by yt-dlp
const downloadedMarker = "ytdownloader-file:"

// qualityFormats maps quality tiers to yt-dlp format selectors
var qualityFormats = map[string]string{
	"best":  "bv*+ba/b",
	"worst": "wv*+wa/w",
	"audio": "ba/best",
}

// qualityHeights are the resolution ceilings accepted as "<height>p"
var qualityHeights = []int{144, 240, 360, 480, 720, 1080, 1440, 2160}

// ytdlpAudioFormats are the codecs yt-dlp's --audio-format accepts
var ytdlpAudioFormats = []string{"best", "aac", "alac", "flac", "m4a", "mp3", "opus", "vorbis", "wav"}

var progressPattern = regexp.MustCompile(`^\[download\]\s+(\d+(?:\.\d+)?)%`)

func heightSelector(height int) string {
	h := fmt.Sprintf("[height<=%d]", height)
	return "bv*" + h + "+ba/b" + h + "/wv*" + h + "+wa/w" + h
}

// SupportedQualities lists every accepted quality tier in display order
func SupportedQualities() []string {
	qualities := []string{"best", "worst"}
	for _, h := range qualityHeights {
		qualities = append(qualities, fmt.Sprintf("%dp", h))
	}
	return append(qualities, "audio")
}

// QualityFormat translates a quality tier into a yt-dlp format selector
func QualityFormat(quality string) (string, error) {
	q := normalizeToken(quality)
	if q == "" {
		q = "best"
	}
	if format, ok := qualityFormats[q]; ok {
		return format, nil
	}
	if heightStr, ok := strings.CutSuffix(q, "p"); ok {
		if height, err := strconv.Atoi(heightStr); err == nil && slices.Contains(qualityHeights, height) {
			return heightSelector(height), nil
		}
	}
	return "", invalidArgf("unsupported quality %q (supported: %s)", quality, strings.Join(SupportedQualities(), ", "))
}

// DownloaderSettings carries config values that shape yt-dlp invocations
type DownloaderSettings struct {
	AudioFormat       string
	AudioQuality      string
	MergeOutputFormat string
	FFmpegLocation    string
}

// BuildDownloadArgs translates a download request into yt-dlp arguments.
// It has no side effects and fails before anything is launched.
func BuildDownloadArgs(req DownloadRequest, settings DownloaderSettings) ([]string, error) {
	videoURL, err := NormalizeVideoURL(req.URL)
	if err != nil {
		return nil, err
	}

	format, err := QualityFormat(req.Quality)
	if err != nil {
		return nil, err
	}

	template := req.FilenameTemplate
	if strings.TrimSpace(template) == "" {
		template = DefaultFilenameTemplate
	}
	if filepath.IsAbs(template) {
		return nil, invalidArgf("filename template %q must be relative to the output directory", template)
	}
	outputDir := req.OutputDir
	if outputDir == "" {
		outputDir = "."
	}

	args := []string{
		"--no-playlist",
		"--newline",
		"--progress",
		"--print", "after_move:" + downloadedMarker + "%(filepath)s",
		"-o", filepath.Join(outputDir, template),
	}

	if req.AudioOnly {
		audioFormat := normalizeToken(settings.AudioFormat)
		if audioFormat == "" {
			audioFormat = "mp3"
		}
		if !slices.Contains(ytdlpAudioFormats, audioFormat) {
			return nil, invalidArgf("unsupported audio format %q (supported: %s)", settings.AudioFormat, strings.Join(ytdlpAudioFormats, ", "))
		}
		audioQuality := settings.AudioQuality
		if audioQuality == "" {
			audioQuality = "192K"
		}
		args = append(args,
			"-f", qualityFormats["audio"],
			"-x",
			"--audio-format", audioFormat,
			"--audio-quality", audioQuality,
		)
	} else {
		args = append(args, "-f", format)
		if settings.MergeOutputFormat != "" {
			args = append(args, "--merge-output-format", settings.MergeOutputFormat)
		}
	}

	if settings.FFmpegLocation != "" {
		args = append(args, "--ffmpeg-location", settings.FFmpegLocation)
	}

	return append(args, "--", videoURL), nil
}

// VideoInfo contains the parts of yt-dlp's JSON we display
type VideoInfo struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Uploader   string       `json:"uploader"`
	Channel    string       `json:"channel"`
	Duration   float64      `json:"duration"`
	ViewCount  int64        `json:"view_count"`
	UploadDate string       `json:"upload_date"`
	Width      int          `json:"width"`
	Height     int          `json:"height"`
	FPS        float64      `json:"fps"`
	VideoCodec string       `json:"vcodec"`
	AudioCodec string       `json:"acodec"`
	FileSize   int64        `json:"filesize"`
	WebpageURL string       `json:"webpage_url"`
	Formats    []FormatInfo `json:"formats"`
	Raw        string       `json:"-"`
}

// FormatInfo describes one downloadable format
type FormatInfo struct {
	ID         string  `json:"format_id"`
	Ext        string  `json:"ext"`
	Resolution string  `json:"resolution"`
	FileSize   int64   `json:"filesize"`
	VideoCodec string  `json:"vcodec"`
	AudioCodec string  `json:"acodec"`
	FPS        float64 `json:"fps"`
	Note       string  `json:"format_note"`
}

// ParseVideoInfo reads yt-dlp's single JSON document
func ParseVideoInfo(raw string) (*VideoInfo, error) {
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("parsing video metadata: invalid JSON")
	}
	doc := gjson.Parse(raw)

	info := &VideoInfo{
		ID:         doc.Get("id").String(),
		Title:      doc.Get("title").String(),
		Uploader:   doc.Get("uploader").String(),
		Channel:    doc.Get("channel").String(),
		Duration:   doc.Get("duration").Float(),
		ViewCount:  doc.Get("view_count").Int(),
		UploadDate: doc.Get("upload_date").String(),
		Width:      int(doc.Get("width").Int()),
		Height:     int(doc.Get("height").Int()),
		FPS:        doc.Get("fps").Float(),
		VideoCodec: doc.Get("vcodec").String(),
		AudioCodec: doc.Get("acodec").String(),
		FileSize:   fileSize(doc),
		WebpageURL: doc.Get("webpage_url").String(),
		Raw:        raw,
	}

	for _, f := range doc.Get("formats").Array() {
		info.Formats = append(info.Formats, parseFormat(f))
	}

	return info, nil
}

func parseFormat(f gjson.Result) FormatInfo {
	vcodec := f.Get("vcodec").String()
	resolution := f.Get("resolution").String()
	if resolution == "" {
		if vcodec == "none" {
			resolution = "audio only"
		} else {
			resolution = "unknown"
		}
	}
	return FormatInfo{
		ID:         f.Get("format_id").String(),
		Ext:        f.Get("ext").String(),
		Resolution: resolution,
		FileSize:   fileSize(f),
		VideoCodec: vcodec,
		AudioCodec: f.Get("acodec").String(),
		FPS:        f.Get("fps").Float(),
		Note:       f.Get("format_note").String(),
	}
}

// fileSize prefers the exact size and falls back to yt-dlp's estimate
func fileSize(r gjson.Result) int64 {
	if size := r.Get("filesize").Int(); size > 0 {
		return size
	}
	return r.Get("filesize_approx").Int()
}

// MetadataFetcher returns yt-dlp's JSON for a single video
type MetadataFetcher func(ctx context.Context, executable, videoURL string) (string, error)

// fetchMetadataJSON asks yt-dlp for the video's JSON without downloading
func fetchMetadataJSON(ctx context.Context, executable, videoURL string) (string, error) {
	dl := ytdlp.New().
		SetExecutable(executable). // Same binary the downloads use
		DumpSingleJSON().          // Get all info in JSON format
		NoPlaylist().              // Don't process playlists
		SkipDownload()             // Don't download the actual video

	result, err := dl.Run(ctx, videoURL)
	if err != nil {
		return "", metadataFailure(ctx, executable, result, err)
	}
	return result.Stdout, nil
}

// metadataFailure maps a failed go-ytdlp run onto the runner's error kinds
func metadataFailure(ctx context.Context, executable string, result *ytdlp.Result, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("yt-dlp interrupted: %w", ctxErr)
	}

	stderr := ""
	if result != nil {
		stderr = lastLines(result.Stderr, stderrTailLines)
		if result.ExitCode > 0 {
			return &ToolError{Tool: "yt-dlp", ExitCode: result.ExitCode, Stderr: stderr, Err: err}
		}
	}

	if _, ok := lookExecutable(executable); !ok {
		return &MissingDependencyError{Tool: "yt-dlp", Hint: ytdlpHint}
	}
	return toolFailure(ctx, "yt-dlp", err, stderr)
}

// YouTube handles yt-dlp metadata queries and downloads
type YouTube struct {
	cmdRunner  CommandRunner
	executable string
	settings   DownloaderSettings
	fetch      MetadataFetcher
	ui         UIManager
}

// NewYouTube creates a new YouTube downloader
func NewYouTube(cmdRunner CommandRunner, executable string, settings DownloaderSettings, ui UIManager) *YouTube {
	return &YouTube{
		cmdRunner:  cmdRunner,
		executable: executable,
		settings:   settings,
		fetch:      fetchMetadataJSON,
		ui:         ui,
	}
}

// Metadata fetches and parses video details
func (yt *YouTube) Metadata(ctx context.Context, rawURL string) (*VideoInfo, error) {
	videoURL, err := NormalizeVideoURL(rawURL)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("op", "ytdlp/metadata").Str("url", videoURL).Msg("Extracting video metadata")

	raw, err := yt.fetch(ctx, yt.executable, videoURL)
	if err != nil {
		return nil, fmt.Errorf("extracting video metadata: %w", err)
	}

	info, err := ParseVideoInfo(raw)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("op", "ytdlp/metadata").
		Str("title", info.Title).
		Float64("duration", info.Duration).
		Int("formats", len(info.Formats)).
		Msg("Metadata extraction completed")

	return info, nil
}

// Download runs yt-dlp and returns the path of the finished file
func (yt *YouTube) Download(ctx context.Context, req DownloadRequest) (string, error) {
	args, err := BuildDownloadArgs(req, yt.settings)
	if err != nil {
		return "", err
	}

	if err := EnsureDirs(req.OutputDir); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	bar := yt.ui.NewProgressBar(100, "Downloading")
	var downloaded string
	handle := func(line string) {
		if path, ok := strings.CutPrefix(line, downloadedMarker); ok {
			downloaded = strings.TrimSpace(path)
			return
		}
		if percent, ok := parseDownloadProgress(line); ok && bar != nil {
			bar.Set(int(percent))
			return
		}
		yt.ui.Line(line)
	}

	err = yt.cmdRunner.Stream(ctx, yt.executable, args, handle)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return "", fmt.Errorf("downloading video: %w", err)
	}

	if downloaded == "" {
		return "", fmt.Errorf("download completed but file path not reported by yt-dlp")
	}

	log.Info().Str("op", "ytdlp/download").Str("file", downloaded).Msg("Download completed")
	return downloaded, nil
}

// parseDownloadProgress extracts the percentage from a yt-dlp --newline progress line
func parseDownloadProgress(line string) (float64, bool) {
	m := progressPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return 0, false
	}
	percent, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return percent, true
}

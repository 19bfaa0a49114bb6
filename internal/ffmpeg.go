package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

type codecPair struct {
	video string
	audio string
}

// containerCodecs picks encoders for --convert-to
var containerCodecs = map[string]codecPair{
	"mp4":  {"libx264", "aac"},
	"avi":  {"libx264", "libmp3lame"},
	"mkv":  {"libx264", "aac"},
	"mov":  {"libx264", "aac"},
	"webm": {"libvpx-vp9", "libopus"},
}

type audioCodec struct {
	encoder string
	lossy   bool
}

// audioCodecs picks encoders for audio extraction
var audioCodecs = map[string]audioCodec{
	"mp3":  {"libmp3lame", true},
	"wav":  {"pcm_s16le", false},
	"aac":  {"aac", true},
	"flac": {"flac", false},
}

// resizeHeights are the accepted "<height>p" resize targets
var resizeHeights = []int{144, 240, 360, 480, 720, 1080, 1440, 2160}

// SupportedContainers lists --convert-to targets
func SupportedContainers() []string {
	return sortedKeys(containerCodecs)
}

// SupportedAudioFormats lists extract-audio targets
func SupportedAudioFormats() []string {
	return sortedKeys(audioCodecs)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// FFmpegOptions are shared by every ffmpeg invocation
type FFmpegOptions struct {
	LogLevel     string
	AudioBitrate string
}

func (o FFmpegOptions) logLevel() string {
	if o.LogLevel == "" {
		return "error"
	}
	return o.LogLevel
}

func (o FFmpegOptions) audioBitrate() string {
	if o.AudioBitrate == "" {
		return "192k"
	}
	return o.AudioBitrate
}

// baseArgs starts every ffmpeg command line. Progress goes to stdout as key=value lines.
func baseArgs(input string, opts FFmpegOptions) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-loglevel", opts.logLevel(),
		"-progress", "pipe:1",
		"-nostats",
		"-i", input,
	}
}

// TrimArgs keeps the given range of the input and re-encodes it with
// encoders matching the output container
func TrimArgs(input, output string, r TimeRange, opts FFmpegOptions) ([]string, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	args := baseArgs(input, opts)
	if r.HasStart {
		args = append(args, "-ss", FormatSeconds(r.Start))
	}
	if d, ok := r.Duration(); ok {
		args = append(args, "-t", FormatSeconds(d))
	} else if r.HasEnd {
		args = append(args, "-to", FormatSeconds(r.End))
	}

	args = append(args, encoderArgs(output, opts)...)
	return append(args, "-avoid_negative_ts", "make_zero", output), nil
}

// audioOnlyContainers extends audioCodecs with the other audio extensions
// yt-dlp writes for audio-only downloads
var audioOnlyContainers = map[string]audioCodec{
	"m4a":  {"aac", true},
	"opus": {"libopus", true},
	"ogg":  {"libvorbis", true},
}

// containerExt returns the lowercased extension of path without the dot
func containerExt(path string) string {
	return normalizeToken(strings.TrimPrefix(filepath.Ext(path), "."))
}

// audioContainer reports the encoder for an audio-only output extension
func audioContainer(ext string) (audioCodec, bool) {
	if codec, ok := audioCodecs[ext]; ok {
		return codec, true
	}
	codec, ok := audioOnlyContainers[ext]
	return codec, ok
}

// videoContainer returns the encoders for a video output extension,
// falling back to H.264/AAC for containers not in containerCodecs
func videoContainer(ext string) codecPair {
	if codecs, ok := containerCodecs[ext]; ok {
		return codecs
	}
	return codecPair{"libx264", "aac"}
}

// encoderArgs picks -c:v/-c:a for a re-encode into output. Audio containers
// get no video stream.
func encoderArgs(output string, opts FFmpegOptions) []string {
	ext := containerExt(output)
	if codec, ok := audioContainer(ext); ok {
		args := []string{"-vn", "-c:a", codec.encoder}
		if codec.lossy {
			args = append(args, "-b:a", opts.audioBitrate())
		}
		return args
	}
	codecs := videoContainer(ext)
	return []string{"-c:v", codecs.video, "-c:a", codecs.audio}
}

// ConvertArgs re-encodes the input into another container
func ConvertArgs(input, output, format string, opts FFmpegOptions) ([]string, error) {
	codecs, ok := containerCodecs[normalizeToken(format)]
	if !ok {
		return nil, invalidArgf("unsupported format %q (supported: %s)", format, strings.Join(SupportedContainers(), ", "))
	}

	return append(baseArgs(input, opts),
		"-c:v", codecs.video,
		"-c:a", codecs.audio,
		output,
	), nil
}

// ScaleFilter translates a resize spec ("720p" or "1280x720") into an ffmpeg scale filter
func ScaleFilter(spec string) (string, error) {
	s := normalizeToken(spec)

	if heightStr, ok := strings.CutSuffix(s, "p"); ok {
		height, err := strconv.Atoi(heightStr)
		if err != nil || !slices.Contains(resizeHeights, height) {
			return "", invalidArgf("unsupported resize %q (use one of %s or WIDTHxHEIGHT)", spec, joinHeights(resizeHeights))
		}
		// -2 keeps the aspect ratio with an even width
		return fmt.Sprintf("scale=-2:%d", height), nil
	}

	if widthStr, heightStr, ok := strings.Cut(s, "x"); ok {
		width, errW := strconv.Atoi(widthStr)
		height, errH := strconv.Atoi(heightStr)
		if errW != nil || errH != nil || width <= 0 || height <= 0 {
			return "", invalidArgf("invalid resize %q, use WIDTHxHEIGHT with positive integers", spec)
		}
		return fmt.Sprintf("scale=%d:%d", width, height), nil
	}

	return "", invalidArgf("invalid resize %q, use '720p' or '1280x720'", spec)
}

func joinHeights(heights []int) string {
	parts := make([]string, len(heights))
	for i, h := range heights {
		parts[i] = fmt.Sprintf("%dp", h)
	}
	return strings.Join(parts, ", ")
}

// ResizeArgs scales the video stream. Audio is copied when the container
// stays the same and re-encoded for the output container otherwise.
func ResizeArgs(input, output, spec string, opts FFmpegOptions) ([]string, error) {
	filter, err := ScaleFilter(spec)
	if err != nil {
		return nil, err
	}

	ext := containerExt(output)
	if _, ok := audioContainer(ext); ok {
		return nil, invalidArgf("cannot resize %s: .%s is an audio-only format", output, ext)
	}

	codecs := videoContainer(ext)
	audio := "copy"
	if containerExt(input) != ext {
		audio = codecs.audio
	}

	return append(baseArgs(input, opts),
		"-vf", filter,
		"-c:v", codecs.video,
		"-c:a", audio,
		output,
	), nil
}

// ExtractAudioArgs drops the video stream and encodes audio into format
func ExtractAudioArgs(input, output, format string, opts FFmpegOptions) ([]string, error) {
	codec, ok := audioCodecs[normalizeToken(format)]
	if !ok {
		return nil, invalidArgf("unsupported audio format %q (supported: %s)", format, strings.Join(SupportedAudioFormats(), ", "))
	}

	args := append(baseArgs(input, opts), "-vn", "-c:a", codec.encoder)
	if codec.lossy {
		args = append(args, "-b:a", opts.audioBitrate())
	}
	return append(args, output), nil
}

// ProbeArgs asks ffprobe for container and stream details as JSON
func ProbeArgs(file string) []string {
	return []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		file,
	}
}

// MediaInfo describes a local media file
type MediaInfo struct {
	Duration   float64
	Size       int64
	FormatName string
	HasVideo   bool
	Width      int
	Height     int
	FPS        float64
	VideoCodec string
	HasAudio   bool
	AudioCodec string
	SampleRate int
	Channels   int
}

// ParseMediaInfo reads ffprobe's JSON output
func ParseMediaInfo(raw []byte) (*MediaInfo, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("parsing ffprobe output: invalid JSON")
	}
	doc := gjson.ParseBytes(raw)

	info := &MediaInfo{
		Duration:   doc.Get("format.duration").Float(),
		Size:       doc.Get("format.size").Int(),
		FormatName: doc.Get("format.format_name").String(),
	}
	if info.FormatName == "" {
		info.FormatName = "unknown"
	}

	if video := doc.Get(`streams.#(codec_type=="video")`); video.Exists() {
		info.HasVideo = true
		info.Width = int(video.Get("width").Int())
		info.Height = int(video.Get("height").Int())
		info.FPS = parseFrameRate(video.Get("r_frame_rate").String())
		info.VideoCodec = video.Get("codec_name").String()
	}

	if audio := doc.Get(`streams.#(codec_type=="audio")`); audio.Exists() {
		info.HasAudio = true
		info.AudioCodec = audio.Get("codec_name").String()
		info.SampleRate = int(audio.Get("sample_rate").Int())
		info.Channels = int(audio.Get("channels").Int())
	}

	return info, nil
}

// parseFrameRate turns "30000/1001" into 29.97
func parseFrameRate(rate string) float64 {
	num, den, ok := strings.Cut(rate, "/")
	if !ok {
		f, _ := strconv.ParseFloat(rate, 64)
		return f
	}
	n, errN := strconv.ParseFloat(num, 64)
	d, errD := strconv.ParseFloat(den, 64)
	if errN != nil || errD != nil || d == 0 {
		return 0
	}
	return n / d
}

// parseProgressSeconds reads out_time_us from ffmpeg -progress output
func parseProgressSeconds(line string) (float64, bool) {
	value, ok := strings.CutPrefix(strings.TrimSpace(line), "out_time_us=")
	if !ok {
		return 0, false
	}
	us, err := strconv.ParseInt(value, 10, 64)
	if err != nil || us < 0 {
		return 0, false
	}
	return float64(us) / 1e6, true
}

// Transcoder handles media operations using FFmpeg
type Transcoder struct {
	cmdRunner   CommandRunner
	ffmpegPath  string
	ffprobePath string
	opts        FFmpegOptions
	ui          UIManager
}

// NewTranscoder creates a new media processor
func NewTranscoder(cmdRunner CommandRunner, ffmpegPath, ffprobePath string, opts FFmpegOptions, ui UIManager) *Transcoder {
	return &Transcoder{
		cmdRunner:   cmdRunner,
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		opts:        opts,
		ui:          ui,
	}
}

// Options returns the shared ffmpeg options
func (t *Transcoder) Options() FFmpegOptions {
	return t.opts
}

// Duration returns the media file duration in seconds
func (t *Transcoder) Duration(ctx context.Context, file string) (float64, error) {
	output, err := t.cmdRunner.Run(ctx, t.ffprobePath,
		"-i", file,
		"-show_entries", "format=duration",
		"-v", "quiet",
		"-of", "csv=p=0")

	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing duration: %w", err)
	}

	return duration, nil
}

// Probe returns container and stream details for a local file
func (t *Transcoder) Probe(ctx context.Context, file string) (*MediaInfo, error) {
	if _, err := os.Stat(file); err != nil {
		return nil, fmt.Errorf("input file: %w", err)
	}

	output, err := t.cmdRunner.Run(ctx, t.ffprobePath, ProbeArgs(file)...)
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	return ParseMediaInfo(output)
}

// Run executes one ffmpeg command. expected is the output length in seconds
// used for the progress bar; zero hides the bar.
func (t *Transcoder) Run(ctx context.Context, description string, args []string, expected float64) error {
	var bar ProgressBar
	if expected > 0 {
		bar = t.ui.NewProgressBar(100, description)
	}

	handle := func(line string) {
		if bar == nil {
			return
		}
		if seconds, ok := parseProgressSeconds(line); ok {
			bar.Set(int(min(seconds/expected, 1) * 100))
		}
	}

	err := t.cmdRunner.Stream(ctx, t.ffmpegPath, args, handle)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		log.Error().Str("op", "ffmpeg/run").Err(err).Msg(description + " failed")
		return fmt.Errorf("%s: %w", strings.ToLower(description), err)
	}
	return nil
}

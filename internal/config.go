package internal

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// AppName names the XDG directories and the env prefix
const AppName = "ytdownloader"

// Config holds application settings
type Config struct {
	// User configurable settings
	OutputDir         string
	Quality           string
	FilenameTemplate  string
	AudioFormat       string
	AudioQuality      string
	AudioBitrate      string
	MergeOutputFormat string
	FFmpegPath        string
	FFprobePath       string
	FFmpegLogLevel    string
	AutoInstall       bool
	Verbose           bool
	Quiet             bool
	NoColor           bool
	LogFile           string

	// Fixed XDG paths (not configurable)
	ConfigDir string
	CacheDir  string
	TempDir   string
}

//go:embed config.toml
var defaultFS embed.FS

// ensureDefaultFile checks if a file exists in the specified directory
// and creates it from the embedded default if it doesn't exist
func ensureDefaultFile(configDir, embedFilename, description string) error {
	filePath := filepath.Join(configDir, embedFilename)

	if FileExists(filePath) {
		return nil
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	defaultContent, err := defaultFS.ReadFile(embedFilename)
	if err != nil {
		return fmt.Errorf("reading embedded default %s: %w", description, err)
	}

	if err := os.WriteFile(filePath, defaultContent, 0644); err != nil {
		return fmt.Errorf("writing default %s: %w", description, err)
	}

	log.Debug().Str("op", "config/default").Str("path", filePath).Msgf("Created default %s", description)
	return nil
}

// EnsureDefaultConfig checks if a config file exists in the XDG config directory
// and creates it from the embedded default if it doesn't exist
func EnsureDefaultConfig(configDir string) error {
	return ensureDefaultFile(configDir, "config.toml", "configuration")
}

// DefaultConfigDir is $XDG_CONFIG_HOME/ytdownloader
func DefaultConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// newViper sets defaults, search paths and env bindings
func newViper(configDir, configFile string) *viper.Viper {
	v := viper.New()

	v.SetDefault("output_dir", "downloads")
	v.SetDefault("quality", "best")
	v.SetDefault("filename_template", DefaultFilenameTemplate)
	v.SetDefault("audio_format", "mp3")
	v.SetDefault("audio_quality", "192K")
	v.SetDefault("audio_bitrate", "192k")
	v.SetDefault("merge_output_format", "")
	v.SetDefault("ffmpeg_path", "ffmpeg")
	v.SetDefault("ffprobe_path", "ffprobe")
	v.SetDefault("ffmpeg_loglevel", "error")
	v.SetDefault("auto_install", true)
	v.SetDefault("verbose", false)
	v.SetDefault("quiet", false)
	v.SetDefault("no_color", false)
	v.SetDefault("log_file", "")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	// Environment variables
	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.AutomaticEnv()

	return v
}

// InitConfig initializes Viper and loads configuration. An explicit
// configFile must exist; the default location is optional.
func InitConfig(configFile string) (*Config, error) {
	configDir := DefaultConfigDir()
	cacheDir := filepath.Join(xdg.CacheHome, AppName)
	tempDir := filepath.Join(cacheDir, "work")

	v := newViper(configDir, configFile)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	config := &Config{
		OutputDir:         v.GetString("output_dir"),
		Quality:           v.GetString("quality"),
		FilenameTemplate:  v.GetString("filename_template"),
		AudioFormat:       v.GetString("audio_format"),
		AudioQuality:      v.GetString("audio_quality"),
		AudioBitrate:      v.GetString("audio_bitrate"),
		MergeOutputFormat: v.GetString("merge_output_format"),
		FFmpegPath:        v.GetString("ffmpeg_path"),
		FFprobePath:       v.GetString("ffprobe_path"),
		FFmpegLogLevel:    v.GetString("ffmpeg_loglevel"),
		AutoInstall:       v.GetBool("auto_install"),
		Verbose:           v.GetBool("verbose"),
		Quiet:             v.GetBool("quiet"),
		NoColor:           v.GetBool("no_color"),
		LogFile:           v.GetString("log_file"),

		ConfigDir: configDir,
		CacheDir:  cacheDir,
		TempDir:   tempDir,
	}

	log.Debug().Str("op", "config/init").Str("file", v.ConfigFileUsed()).Msg("Configuration loaded")

	return config, nil
}

// DownloaderSettings returns the yt-dlp related settings
func (c *Config) DownloaderSettings() DownloaderSettings {
	settings := DownloaderSettings{
		AudioFormat:       c.AudioFormat,
		AudioQuality:      c.AudioQuality,
		MergeOutputFormat: c.MergeOutputFormat,
	}
	// yt-dlp needs ffmpeg for merging and audio extraction; only point it
	// at a custom location when one was configured
	if c.FFmpegPath != "" && c.FFmpegPath != "ffmpeg" {
		settings.FFmpegLocation = c.FFmpegPath
	}
	return settings
}

// FFmpegOptions returns the ffmpeg related settings
func (c *Config) FFmpegOptions() FFmpegOptions {
	return FFmpegOptions{
		LogLevel:     c.FFmpegLogLevel,
		AudioBitrate: c.AudioBitrate,
	}
}

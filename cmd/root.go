package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rtzll/ytdownloader/internal"
)

var (
	config    *internal.Config
	logCloser io.Closer
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ytdownloader",
	Short: "Download YouTube videos and perform basic edits",
	Long: `ytdownloader downloads videos from YouTube with yt-dlp and performs
basic edits (trim, convert, resize, extract audio) with ffmpeg.

Both tools are invoked as external programs: yt-dlp is installed into the
cache directory when missing, ffmpeg and ffprobe must be on your PATH.`,
	Example: `  # Download a video
  ytdownloader download "https://youtube.com/watch?v=dQw4w9WgXcQ"

  # Download at 720p and keep seconds 30 to 120
  ytdownloader download dQw4w9WgXcQ --quality 720p --trim 30-120

  # Remove the first 10 seconds of a local file
  ytdownloader edit video.mp4 --trim-start 10`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")

		var err error
		config, err = internal.InitConfig(configFile)
		if err != nil {
			return err
		}
		if err := internal.HandleGlobalFlags(cmd, config); err != nil {
			return err
		}

		logCloser, err = internal.InitLogger(config.Verbose, config.LogFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
		internal.ConfigureColor(config.NoColor)

		// Ensure default config exists in XDG config directory
		if configFile == "" {
			if err := internal.EnsureDefaultConfig(config.ConfigDir); err != nil {
				log.Warn().Err(err).Msg("Failed to ensure default config")
			}
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// Create a cancellable context for the entire application
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The first signal cancels the running child; a second one exits at once
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nOperation cancelled by user, cleaning up...")
		cancel()

		<-sigCh
		os.Exit(internal.ExitInterrupted)
	}()

	rootCmd.SetContext(ctx)
	err := rootCmd.Execute()

	if config != nil {
		if cleanupErr := internal.CleanupTempDir(config.TempDir); cleanupErr != nil {
			fmt.Fprintf(os.Stderr, "Error cleaning up temporary files: %v\n", cleanupErr)
		}
	}
	if logCloser != nil {
		_ = logCloser.Close()
	}

	return err
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for debugging")
	rootCmd.PersistentFlags().Bool("quiet", false, "Only print errors")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default is $XDG_CONFIG_HOME/ytdownloader/config.toml)")
}

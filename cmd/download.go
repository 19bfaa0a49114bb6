package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rtzll/ytdownloader/internal"
)

// downloadCmd represents the download command
var downloadCmd = &cobra.Command{
	Use:   "download [URL or video ID]",
	Short: "Download a YouTube video",
	Example: `  ytdownloader download "https://youtube.com/watch?v=dQw4w9WgXcQ"
  ytdownloader download "URL" --quality 720p --output-dir ~/Videos
  ytdownloader download "URL" --trim-start 10
  ytdownloader download "URL" --trim "1:30-3:45"
  ytdownloader download "URL" --audio-only`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		trim, err := internal.TrimSpecFromFlags(cmd)
		if err != nil {
			return err
		}

		app := internal.NewApp(config)

		infoOnly, _ := cmd.Flags().GetBool("info-only")
		listFormats, _ := cmd.Flags().GetBool("list-formats")
		switch {
		case infoOnly:
			return showVideoInfo(cmd, app, args[0])
		case listFormats:
			return showFormats(cmd, app, args[0])
		}

		audioOnly, _ := cmd.Flags().GetBool("audio-only")
		keepOriginal, _ := cmd.Flags().GetBool("keep-original")

		req := internal.DownloadRequest{
			URL:              args[0],
			Quality:          internal.StringFlagOr(cmd, "quality", config.Quality),
			OutputDir:        internal.StringFlagOr(cmd, "output-dir", config.OutputDir),
			FilenameTemplate: internal.StringFlagOr(cmd, "filename", config.FilenameTemplate),
			Trim:             trim,
			AudioOnly:        audioOnly,
			KeepOriginal:     keepOriginal,
		}

		if _, err := app.Download(cmd.Context(), req); err != nil {
			return err
		}

		app.UI().Success("Download completed successfully!")
		return nil
	},
}

func init() {
	downloadCmd.Flags().StringP("output-dir", "o", "downloads", "Output directory for downloads")
	downloadCmd.Flags().StringP("quality", "q", "best", "Video quality (best, worst, 144p-2160p, audio)")
	downloadCmd.Flags().StringP("filename", "f", "", `Custom filename template (e.g. "%(title)s.%(ext)s")`)
	internal.AddTrimFlags(downloadCmd)
	downloadCmd.Flags().BoolP("audio-only", "a", false, "Download audio only")
	downloadCmd.Flags().BoolP("info-only", "i", false, "Show video information without downloading")
	downloadCmd.Flags().BoolP("list-formats", "l", false, "List available formats without downloading")
	downloadCmd.Flags().Bool("keep-original", false, "Keep the untrimmed download without asking")
	rootCmd.AddCommand(downloadCmd)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rtzll/ytdownloader/internal"
)

// extractAudioCmd represents the extract-audio command
var extractAudioCmd = &cobra.Command{
	Use:   "extract-audio [video file]",
	Short: "Extract the audio track of a local video file",
	Example: `  ytdownloader extract-audio video.mp4
  ytdownloader extract-audio video.mp4 --format flac -o soundtrack.flac`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := internal.NewApp(config)

		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		written, err := app.ExtractAudio(cmd.Context(), internal.ExtractAudioRequest{
			Input:  args[0],
			Format: format,
			Output: output,
		})
		if err != nil {
			return err
		}

		app.UI().Printf("Output: %s\n", written)
		return nil
	},
}

func init() {
	extractAudioCmd.Flags().StringP("format", "f", "mp3", fmt.Sprintf("Audio format (%s)", joinTokens(internal.SupportedAudioFormats())))
	extractAudioCmd.Flags().StringP("output", "o", "", "Output file path")
	rootCmd.AddCommand(extractAudioCmd)
}

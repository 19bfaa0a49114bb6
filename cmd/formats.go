package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rtzll/ytdownloader/internal"
)

// formatsCmd represents the formats command
var formatsCmd = &cobra.Command{
	Use:   "formats [URL or video ID]",
	Short: "List available download formats for a YouTube video",
	Example: `  ytdownloader formats "https://youtube.com/watch?v=dQw4w9WgXcQ"`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showFormats(cmd, internal.NewApp(config), args[0])
	},
}

// showFormats fetches and prints the format table
func showFormats(cmd *cobra.Command, app *internal.App, videoURL string) error {
	app.UI().Warn("Fetching available formats...")
	formats, err := app.Formats(cmd.Context(), videoURL)
	if err != nil {
		return err
	}
	internal.RenderFormats(cmd.OutOrStdout(), formats)
	return nil
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}

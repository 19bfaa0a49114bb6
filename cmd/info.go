package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rtzll/ytdownloader/internal"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info [URL or video ID]",
	Short: "Show information about a YouTube video without downloading",
	Example: `  # Show video information
  ytdownloader info "https://youtube.com/watch?v=dQw4w9WgXcQ"

  # Print yt-dlp's metadata as JSON
  ytdownloader info dQw4w9WgXcQ --json --pretty

  # Save metadata to file
  ytdownloader info dQw4w9WgXcQ --json -o metadata.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := internal.NewApp(config)

		asJSON, _ := cmd.Flags().GetBool("json")
		if !asJSON {
			return showVideoInfo(cmd, app, args[0])
		}

		info, err := app.Metadata(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		jsonData := []byte(info.Raw)
		pretty, _ := cmd.Flags().GetBool("pretty")
		if pretty {
			var buf bytes.Buffer
			if err := json.Indent(&buf, jsonData, "", "  "); err != nil {
				return fmt.Errorf("formatting metadata JSON: %w", err)
			}
			jsonData = buf.Bytes()
		}

		outputFile, _ := cmd.Flags().GetString("output")
		if outputFile != "" {
			return writeMetadataFile(outputFile, jsonData)
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
		return nil
	},
}

// writeMetadataFile saves the metadata JSON for --output
func writeMetadataFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing metadata file: %w", err)
	}
	return nil
}

// showVideoInfo fetches metadata and prints it as a table
func showVideoInfo(cmd *cobra.Command, app *internal.App, videoURL string) error {
	app.UI().Warn("Fetching video information...")
	info, err := app.Metadata(cmd.Context(), videoURL)
	if err != nil {
		return err
	}
	internal.RenderVideoInfo(cmd.OutOrStdout(), info)
	return nil
}

func init() {
	infoCmd.Flags().Bool("json", false, "Print yt-dlp metadata as JSON")
	infoCmd.Flags().Bool("pretty", false, "Format JSON output")
	infoCmd.Flags().StringP("output", "o", "", "Write JSON to file instead of stdout")
	rootCmd.AddCommand(infoCmd)
}

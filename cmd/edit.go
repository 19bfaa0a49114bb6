package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rtzll/ytdownloader/internal"
)

// editCmd represents the edit command
var editCmd = &cobra.Command{
	Use:   "edit [video file]",
	Short: "Edit a local video file",
	Long: `Trim, convert, resize or extract audio from a local video file.

Operations run in the order trim, convert, resize, extract audio. Each one
feeds the next and only the final result is written next to the input
(or to --output).`,
	Example: `  ytdownloader edit video.mp4 --trim-start 10
  ytdownloader edit video.mp4 --trim "1:30-3:45"
  ytdownloader edit video.mp4 --convert-to avi
  ytdownloader edit video.mp4 --resize 720p
  ytdownloader edit video.mp4 --extract-audio
  ytdownloader edit video.mp4 --info`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := internal.NewApp(config)
		input := args[0]

		if showInfo, _ := cmd.Flags().GetBool("info"); showInfo {
			info, err := app.ProbeFile(cmd.Context(), input)
			if err != nil {
				return err
			}
			internal.RenderMediaInfo(cmd.OutOrStdout(), input, info)
			return nil
		}

		trim, err := internal.TrimSpecFromFlags(cmd)
		if err != nil {
			return err
		}
		convertTo, _ := cmd.Flags().GetString("convert-to")
		resize, _ := cmd.Flags().GetString("resize")
		extractAudio, _ := cmd.Flags().GetBool("extract-audio")
		output, _ := cmd.Flags().GetString("output")

		req := internal.EditRequest{
			Input:        input,
			Trim:         trim,
			ConvertTo:    convertTo,
			Resize:       resize,
			ExtractAudio: extractAudio,
			Output:       output,
		}

		result, err := app.Edit(cmd.Context(), req)
		if err != nil {
			return err
		}

		ui := app.UI()
		ui.Success("Video editing completed!")
		for _, op := range result.Operations {
			ui.Detail("  - %s", op)
		}
		if result.Output != "" {
			ui.Printf("Output: %s\n", result.Output)
		}
		if result.AudioOutput != "" {
			ui.Printf("Audio: %s\n", result.AudioOutput)
		}
		return nil
	},
}

func init() {
	editCmd.Flags().StringP("output", "o", "", "Output file path")
	internal.AddTrimFlags(editCmd)
	editCmd.Flags().String("convert-to", "", fmt.Sprintf("Convert to format (%s)", joinTokens(internal.SupportedContainers())))
	editCmd.Flags().String("resize", "", `Resize video (e.g. "720p" or "1280x720")`)
	editCmd.Flags().BoolP("extract-audio", "a", false, "Extract audio as MP3")
	editCmd.Flags().BoolP("info", "i", false, "Show video information")
	rootCmd.AddCommand(editCmd)
}

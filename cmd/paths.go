package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// pathsCmd represents the paths command
var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show paths used by the application",
	Example: `  # Show all application paths
  ytdownloader paths`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Config directory: %s\n", config.ConfigDir)
		fmt.Fprintf(out, "Cache directory: %s\n", config.CacheDir)
		fmt.Fprintf(out, "Temp directory: %s\n", config.TempDir)
		fmt.Fprintf(out, "Default output directory: %s\n", config.OutputDir)
		if config.LogFile != "" {
			fmt.Fprintf(out, "Log file: %s\n", config.LogFile)
		}
	},
}

// joinTokens formats a list of supported values for help text
func joinTokens(values []string) string {
	return strings.Join(values, ", ")
}

func init() {
	rootCmd.AddCommand(pathsCmd)
}

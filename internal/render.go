package internal

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	keyStyle    = cellStyle.Foreground(lipgloss.Color("14"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// ConfigureColor disables styling for --no-color, NO_COLOR and dumb terminals
func ConfigureColor(noColor bool) {
	if noColor || termenv.EnvNoColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// getTerminalWidth gets terminal width with fallback
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// truncate shortens s to at most n runes
func truncate(s string, n int) string {
	runes := []rune(s)
	if n <= 3 || len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// FormatFileSize renders bytes for humans, "Unknown" when yt-dlp gave no size
func FormatFileSize(size int64) string {
	if size <= 0 {
		return "Unknown"
	}
	return humanize.IBytes(uint64(size))
}

// formatUploadDate turns YYYYMMDD into YYYY-MM-DD
func formatUploadDate(date string) string {
	if len(date) != 8 {
		return date
	}
	return date[:4] + "-" + date[4:6] + "-" + date[6:8]
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func propertyTable(title string, rows [][]string) string {
	maxValue := max(getTerminalWidth()-24, 20)
	for _, row := range rows {
		row[1] = truncate(row[1], maxValue)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("Property", "Value").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return keyStyle
			default:
				return cellStyle
			}
		})

	return titleStyle.Render(title) + "\n" + t.String()
}

// RenderVideoInfo prints a platform video's metadata
func RenderVideoInfo(w io.Writer, info *VideoInfo) {
	var rows [][]string
	add := func(key, value string) {
		if value != "" {
			rows = append(rows, []string{key, value})
		}
	}

	add("Title", info.Title)
	add("Uploader", valueOr(info.Uploader, info.Channel))
	if info.Duration > 0 {
		add("Duration", FormatDuration(info.Duration))
	}
	if info.ViewCount > 0 {
		add("Views", humanize.Comma(info.ViewCount))
	}
	add("Upload Date", formatUploadDate(info.UploadDate))
	if info.Width > 0 && info.Height > 0 {
		add("Resolution", fmt.Sprintf("%dx%d", info.Width, info.Height))
	}
	if info.FPS > 0 {
		add("FPS", fmt.Sprintf("%.1f", info.FPS))
	}
	add("Video Codec", info.VideoCodec)
	add("Audio Codec", info.AudioCodec)
	if info.FileSize > 0 {
		add("File Size", FormatFileSize(info.FileSize))
	}
	add("URL", info.WebpageURL)

	fmt.Fprintln(w, propertyTable("Video Information", rows))
}

// RenderMediaInfo prints ffprobe details for a local file
func RenderMediaInfo(w io.Writer, path string, info *MediaInfo) {
	rows := [][]string{
		{"File", path},
		{"Duration", FormatDuration(info.Duration)},
		{"File Size", FormatFileSize(info.Size)},
		{"Container", info.FormatName},
	}
	if info.HasVideo {
		rows = append(rows,
			[]string{"Resolution", fmt.Sprintf("%dx%d", info.Width, info.Height)},
			[]string{"FPS", fmt.Sprintf("%.2f", info.FPS)},
			[]string{"Video Codec", valueOr(info.VideoCodec, "unknown")},
		)
	}
	if info.HasAudio {
		rows = append(rows,
			[]string{"Audio Codec", valueOr(info.AudioCodec, "unknown")},
			[]string{"Sample Rate", fmt.Sprintf("%d Hz", info.SampleRate)},
			[]string{"Channels", fmt.Sprintf("%d", info.Channels)},
		)
	}

	fmt.Fprintln(w, propertyTable("Video Information", rows))
}

// RenderFormats prints the formats yt-dlp can download
func RenderFormats(w io.Writer, formats []FormatInfo) {
	rows := make([][]string, 0, len(formats))
	for _, f := range formats {
		rows = append(rows, []string{
			valueOr(f.ID, "unknown"),
			valueOr(f.Ext, "unknown"),
			f.Resolution,
			FormatFileSize(f.FileSize),
			valueOr(f.VideoCodec, "none"),
			valueOr(f.AudioCodec, "none"),
			f.Note,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("Format ID", "Extension", "Resolution", "File Size", "Video Codec", "Audio Codec", "Note").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 0 {
				return keyStyle
			}
			return cellStyle
		})

	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Available Formats (%d)", len(formats))))
	fmt.Fprintln(w, t.String())
}

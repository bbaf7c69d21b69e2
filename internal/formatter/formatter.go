// package formatter exports sync run reports to various formats (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
)

// Extensions maps each supported format to its file extension.
var Extensions = map[string]string{
	"json":     "json",
	"csv":      "csv",
	"markdown": "md",
	"txt":      "txt",
}

// Export renders report in format, one of the keys of [Extensions].
func Export(report *models.SyncReport, format string) ([]byte, error) {
	switch format {
	case "json", "":
		return ExportToJSON(report)
	case "csv":
		return ExportToCSV(report)
	case "markdown":
		return ExportToMarkdown(report)
	case "txt":
		return ExportToText(report)
	default:
		return nil, fmt.Errorf("%w: report format %q", shared.ErrInvalidArgument, format)
	}
}

// ExportToJSON renders the full report, outcomes included, as indented JSON.
func ExportToJSON(report *models.SyncReport) ([]byte, error) {
	return shared.MarshalJSON(report, true)
}

// ExportToCSV writes one row per processed track with columns: Title, Artist, Status, Video ID, Video Title, Error
func ExportToCSV(report *models.SyncReport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Title", "Artist", "Status", "Video ID", "Video Title", "Error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, o := range report.Outcomes {
		var videoID, videoTitle string
		if o.Match != nil {
			videoID, videoTitle = o.Match.VideoID, o.Match.VideoTitle
		}
		record := []string{o.Track.Title, o.Track.Artist, string(o.Status), videoID, videoTitle, o.Error}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders a summary table followed by the per-track list.
func ExportToMarkdown(report *models.SyncReport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Sync run %s\n\n", report.ID))
	buf.WriteString(fmt.Sprintf("**Destination**: %s (playlist `%s`)\n\n", report.Destination, report.PlaylistID))
	buf.WriteString(fmt.Sprintf("**Started**: %s\n", report.StartedAt.Format(time.RFC3339)))
	buf.WriteString(fmt.Sprintf("**Duration**: %s\n", report.Duration().Round(time.Second)))
	buf.WriteString(fmt.Sprintf("**Cursor policy**: %s\n\n", report.CursorPolicy))

	if report.Interrupted {
		buf.WriteString("> Run was interrupted before reaching the end of the catalog.\n\n")
	}
	if !report.CursorFound {
		buf.WriteString(fmt.Sprintf("> Saved cursor `%s` was not found in the catalog.\n\n", report.CursorStart))
	}

	buf.WriteString("| | Tracks |\n|---|---|\n")
	for _, row := range summaryRows(report) {
		buf.WriteString(fmt.Sprintf("| %s | %d |\n", row.label, row.count))
	}

	if len(report.Outcomes) > 0 {
		buf.WriteString("\n## Tracks\n\n")
	}
	for i, o := range report.Outcomes {
		line := fmt.Sprintf("%d. %s - %s **%s**", i+1, o.Track.Artist, o.Track.Title, o.Status)
		if o.Match != nil {
			line += fmt.Sprintf(" [%s](%s)", o.Match.VideoTitle, o.Match.URL())
		}
		if o.Error != "" {
			line += fmt.Sprintf(" (%s)", o.Error)
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes(), nil
}

// ExportToText renders the report as plain text
func ExportToText(report *models.SyncReport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Run: %s\n", report.ID))
	buf.WriteString(fmt.Sprintf("Destination: %s (%s)\n", report.Destination, report.PlaylistID))
	buf.WriteString(fmt.Sprintf("Catalog: %d tracks\n", report.CatalogSize))
	if report.CursorEnd != "" {
		buf.WriteString(fmt.Sprintf("Cursor: %s\n", report.CursorEnd))
	}
	for _, row := range summaryRows(report) {
		buf.WriteString(fmt.Sprintf("%s: %d\n", row.label, row.count))
	}
	buf.WriteString("\n")

	for i, o := range report.Outcomes {
		buf.WriteString(fmt.Sprintf("%d. [%s] %s - %s\n", i+1, o.Status, o.Track.Artist, o.Track.Title))
	}

	return buf.Bytes(), nil
}

type summaryRow struct {
	label string
	count int
}

func summaryRows(r *models.SyncReport) []summaryRow {
	return []summaryRow{
		{"Before cursor", r.BeforeCursor},
		{"Already added", r.AlreadyAdded},
		{"Inserted", r.Inserted},
		{"Duplicates", r.Duplicates},
		{"No match", r.NoMatch},
		{"Failed", r.Failed},
	}
}

// Write renders report in format and writes it to w.
func Write(w io.Writer, report *models.SyncReport, format string) error {
	data, err := Export(report, format)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// WriteReport exports report to a file and returns its path.
//
// Defaults to {report.ID}_report.{ext} as the filename.
func WriteReport(report *models.SyncReport, path, format string) (string, error) {
	if format == "" {
		format = "json"
	}
	ext, ok := Extensions[format]
	if !ok {
		return "", fmt.Errorf("%w: report format %q", shared.ErrInvalidArgument, format)
	}
	if path == "" {
		path = fmt.Sprintf("%s_report.%s", report.ID, ext)
	}

	data, err := Export(report, format)
	if err != nil {
		return "", fmt.Errorf("failed to generate report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	return path, nil
}

package formatter

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
	th "github.com/desertthunder/likesync/internal/testing"
)

func testReport() *models.SyncReport {
	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	report := &models.SyncReport{
		ID:           "run123",
		StartedAt:    started,
		FinishedAt:   started.Add(90 * time.Second),
		Destination:  "YouTube",
		PlaylistID:   "PL1",
		CursorPolicy: "on-match",
		CatalogSize:  4,
		CursorStart:  "Song0 by ArtistZ",
		CursorEnd:    "Song2 by ArtistB",
		CursorFound:  true,
	}
	report.Record(models.TrackOutcome{Track: models.Track{Title: "Song0", Artist: "ArtistZ"}, Status: models.StatusBeforeCursor})
	report.Record(models.TrackOutcome{
		Track:  models.Track{Title: "Song One", Artist: "Artist One"},
		Status: models.StatusInserted,
		Match:  &models.Match{VideoID: "vid1", VideoTitle: "Song One (Official Video)"},
	})
	report.Record(models.TrackOutcome{
		Track:  models.Track{Title: "Song, Two", Artist: "Artist Two"},
		Status: models.StatusInsertFailed,
		Match:  &models.Match{VideoID: "vid2", VideoTitle: "Song Two"},
		Error:  "insert failed",
	})
	report.Record(models.TrackOutcome{Track: models.Track{Title: "Song Three", Artist: "Artist Three"}, Status: models.StatusNoMatch})
	return report
}

func TestExporters(t *testing.T) {
	report := testReport()

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(report)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Title,Artist,Status,Video ID,Video Title,Error") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "Song One,Artist One,inserted,vid1,Song One (Official Video),") {
			t.Errorf("CSV missing inserted row, got: %s", output)
		}
		if !strings.Contains(output, `"Song, Two"`) {
			t.Errorf("CSV did not quote a title with a comma, got: %s", output)
		}
		if strings.Contains(output, "Song0") {
			t.Errorf("CSV should not list tracks before the cursor")
		}
		if lines := strings.Count(output, "\n"); lines != 4 {
			t.Errorf("expected 4 lines, got %d", lines)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(report)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Sync run run123",
			"**Duration**: 1m30s",
			"| Inserted | 1 |",
			"| Before cursor | 1 |",
			"[Song One (Official Video)](https://www.youtube.com/watch?v=vid1)",
			"(insert failed)",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
		if strings.Contains(output, "interrupted") {
			t.Errorf("Markdown should not flag a complete run as interrupted")
		}

		t.Run("flags interrupted runs and missing cursor", func(t *testing.T) {
			r := testReport()
			r.Interrupted = true
			r.CursorFound = false

			data, err := ExportToMarkdown(r)
			if err != nil {
				t.Fatalf("ExportToMarkdown failed: %v", err)
			}
			output := string(data)
			if !strings.Contains(output, "interrupted") {
				t.Errorf("Markdown missing interrupted note")
			}
			if !strings.Contains(output, "`Song0 by ArtistZ` was not found") {
				t.Errorf("Markdown missing cursor note")
			}
		})
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(report)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Cursor: Song2 by ArtistB") {
			t.Errorf("Text missing cursor, got:\n%s", output)
		}
		if !strings.Contains(output, "3. [no-match] Artist Three - Song Three") {
			t.Errorf("Text missing track line, got:\n%s", output)
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(report)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var decoded models.SyncReport
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.Inserted != 1 || decoded.BeforeCursor != 1 || len(decoded.Outcomes) != 3 {
			t.Errorf("unexpected decoded report: %+v", decoded)
		}
	})

	t.Run("Export", func(t *testing.T) {
		for format := range Extensions {
			if _, err := Export(report, format); err != nil {
				t.Errorf("Export(%s) failed: %v", format, err)
			}
		}

		if _, err := Export(report, "xml"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestWriters(t *testing.T) {
	report := testReport()

	t.Run("Write", func(t *testing.T) {
		var buf strings.Builder
		if err := Write(&buf, report, "txt"); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if !strings.HasPrefix(buf.String(), "Run: run123") {
			t.Errorf("unexpected output: %s", buf.String())
		}

		if err := Write(&th.FWriter{}, report, "txt"); err == nil {
			t.Error("expected error from failing writer")
		}
	})

	t.Run("WriteReport", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			path, err := WriteReport(report, "", "markdown")
			if err != nil {
				t.Fatalf("WriteReport failed: %v", err)
			}
			if path != "run123_report.md" {
				t.Errorf("Expected 'run123_report.md', got '%s'", path)
			}
			th.AssertFileExists(t, path)
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "last.csv")

			got, err := WriteReport(report, path, "csv")
			if err != nil {
				t.Fatalf("WriteReport failed: %v", err)
			}
			if got != path {
				t.Errorf("Expected %s, got %s", path, got)
			}
			if content := th.MustReadFile(t, path); !strings.Contains(content, "vid1") {
				t.Errorf("CSV file missing track data")
			}
		})

		t.Run("UnknownFormat", func(t *testing.T) {
			if _, err := WriteReport(report, "", "pdf"); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	})
}

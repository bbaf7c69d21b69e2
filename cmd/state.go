package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/likesync/internal/shared"
	"github.com/desertthunder/likesync/internal/state"
)

type stateSummary struct {
	Backend   string       `json:"backend"`
	Cursor    string       `json:"cursor,omitempty"`
	HasCursor bool         `json:"has_cursor"`
	Dedup     int          `json:"dedup_entries"`
	Runs      []runSummary `json:"runs,omitempty"`
}

type runSummary struct {
	ID          string    `json:"id"`
	PlaylistID  string    `json:"playlist_id"`
	Policy      string    `json:"cursor_policy"`
	Catalog     int       `json:"catalog_size"`
	Inserted    int       `json:"inserted"`
	Failed      int       `json:"failed"`
	CursorEnd   string    `json:"cursor_end,omitempty"`
	Interrupted bool      `json:"interrupted"`
	FinishedAt  time.Time `json:"finished_at"`
}

// StateShow prints the saved cursor, the dedup set size and, for the sqlite backend, recent runs.
func (r *Runner) StateShow(ctx context.Context, cmd *cli.Command) error {
	store, owned, err := r.openStore()
	if err != nil {
		return err
	}
	if owned {
		defer store.Close()
	}

	cursor, ok, err := store.LoadCursor()
	if err != nil {
		return fmt.Errorf("failed to load cursor: %w", err)
	}
	dedup, err := store.LoadDedupSet()
	if err != nil {
		return fmt.Errorf("failed to load dedup set: %w", err)
	}

	summary := stateSummary{
		Backend:   state.BackendName(store),
		Cursor:    cursor,
		HasCursor: ok,
		Dedup:     len(dedup),
	}

	if sq, isSQL := store.(*state.SQLiteStore); isSQL {
		runs, err := sq.Runs(int(cmd.Int("runs")))
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
		for _, run := range runs {
			summary.Runs = append(summary.Runs, runSummary{
				ID:          run.ID(),
				PlaylistID:  run.PlaylistID,
				Policy:      run.CursorPolicy,
				Catalog:     run.CatalogSize,
				Inserted:    run.Inserted,
				Failed:      run.Failed,
				CursorEnd:   run.CursorEnd,
				Interrupted: run.Interrupted,
				FinishedAt:  run.FinishedAt,
			})
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(summary, true)
	}

	cursorText := summary.Cursor
	if !summary.HasCursor {
		cursorText = "(none, next run starts from the newest like)"
	}

	colorize := isTerminal(r.output)
	r.writePlain("%s\n", renderTable(
		[]string{"Backend", "Cursor", "Dedup entries"},
		[][]string{{summary.Backend, cursorText, strconv.Itoa(summary.Dedup)}},
		[]columnAlignment{alignLeft, alignLeft, alignRight},
		colorize,
	))

	if len(summary.Runs) == 0 {
		return nil
	}

	rows := make([][]string, 0, len(summary.Runs))
	for _, run := range summary.Runs {
		status := "complete"
		if run.Interrupted {
			status = "interrupted"
		}
		rows = append(rows, []string{
			run.FinishedAt.Local().Format(time.DateTime),
			run.PlaylistID,
			run.Policy,
			strconv.Itoa(run.Inserted),
			strconv.Itoa(run.Failed),
			status,
		})
	}
	r.writePlainln("Recent runs")
	return r.writePlain("%s\n", renderTable(
		[]string{"Finished", "Playlist", "Policy", "Inserted", "Failed", "Status"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
		colorize,
	))
}

// StateCopy merges the configured backend's state into another backend.
func (r *Runner) StateCopy(ctx context.Context, cmd *cli.Command) error {
	to := cmd.String("to")
	from := r.config.State.Backend
	if to == from {
		return fmt.Errorf("%w: source and destination backend are both %q", shared.ErrInvalidArgument, to)
	}

	src, owned, err := r.openStore()
	if err != nil {
		return err
	}
	if owned {
		defer src.Close()
	}

	dst, err := state.OpenBackend(r.config, to)
	if err != nil {
		return err
	}
	defer dst.Close()

	stats, err := state.Copy(dst, src)
	if err != nil {
		return fmt.Errorf("failed to copy state: %w", err)
	}

	r.logger.Info("state copied", "from", state.BackendName(src), "to", state.BackendName(dst), "copied", stats.Copied, "existing", stats.Existing)

	r.writePlain("✓ Copied state %s → %s\n", state.BackendName(src), state.BackendName(dst))
	r.writePlain("  Dedup entries: %d new, %d already present\n", stats.Copied, stats.Existing)
	if stats.HasCursor {
		r.writePlain("  Cursor: %s\n", stats.Cursor)
	}
	return r.writePlain("Set state.backend = %q to use it.\n", to)
}

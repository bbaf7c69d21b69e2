package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/likesync/internal/formatter"
	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
	"github.com/desertthunder/likesync/internal/state"
	"github.com/desertthunder/likesync/internal/tasks"
	"github.com/desertthunder/likesync/internal/ui"
)

// SyncRun processes liked songs added since the saved cursor.
//
// Progress goes to the TUI with --tui on a terminal, otherwise to plain output. An interrupt stops between
// tracks and is not an error: everything done so far is already persisted.
func (r *Runner) SyncRun(ctx context.Context, cmd *cli.Command) error {
	playlistID := r.playlistID(cmd)
	if playlistID == "" {
		return fmt.Errorf("%w: --playlist-id or destination.playlist_id", shared.ErrMissingArgument)
	}

	policyName := cmd.String("policy")
	if policyName == "" {
		policyName = r.config.Sync.CursorPolicy
	}
	policy, err := tasks.ParseCursorPolicy(policyName)
	if err != nil {
		return err
	}

	insertDelay, err := r.config.Sync.InsertDelayDuration()
	if err != nil {
		return err
	}
	searchInterval, err := r.config.Sync.SearchIntervalDuration()
	if err != nil {
		return err
	}

	useTUI := cmd.Bool("tui")
	if useTUI && !isTerminal(os.Stdout) {
		r.logger.Warn("--tui needs a terminal, falling back to plain output")
		useTUI = false
	}
	if useTUI {
		restore, err := r.useFileLogger()
		if err != nil {
			return err
		}
		defer restore()
	}

	if r.config.State.Lock {
		lock, err := state.AcquireRunLock(r.config.State.LockPath())
		if err != nil {
			return err
		}
		defer lock.Release()
	}

	catalog, err := r.spotifyService(ctx)
	if err != nil {
		return err
	}
	platform, err := r.videoPlatform(ctx)
	if err != nil {
		return err
	}

	store, owned, err := r.openStore()
	if err != nil {
		return err
	}
	if owned {
		defer store.Close()
	}

	driver := tasks.NewDriver(tasks.DriverOpts{
		Catalog:        catalog,
		Platform:       platform,
		Store:          store,
		PlaylistID:     playlistID,
		Policy:         policy,
		InsertDelay:    insertDelay,
		SearchInterval: searchInterval,
		Logger:         shared.WithLogger(r.logger, "playlist", playlistID),
	})

	r.logger.Info("starting sync", "source", catalog.Name(), "destination", platform.Name(), "policy", policy, "state", state.BackendName(store))

	var report *models.SyncReport
	var runErr error
	if useTUI {
		cursor, _, err := store.LoadCursor()
		if err != nil {
			return fmt.Errorf("failed to load cursor: %w", err)
		}
		report, runErr = r.runTUI(ctx, ui.SyncInfo{
			Source:      catalog.Name(),
			Destination: platform.Name(),
			PlaylistID:  playlistID,
			Policy:      policy.String(),
			Backend:     state.BackendName(store),
			Cursor:      cursor,
		}, driver.Run)
	} else {
		report, runErr = r.runPlain(ctx, driver)
	}

	if report == nil {
		if runErr != nil && !errors.Is(runErr, context.Canceled) {
			return runErr
		}
		return r.writePlain("Sync cancelled.\n")
	}

	if rec, ok := store.(state.RunRecorder); ok {
		if err := rec.RecordRun(report); err != nil {
			r.logger.Warn("failed to record run", "error", err)
		}
	}

	if err := r.writeRunReport(cmd, report); err != nil {
		return err
	}

	r.printSummary(report)

	switch {
	case runErr == nil:
		return nil
	case errors.Is(runErr, context.Canceled):
		r.writePlainln("Interrupted; progress saved. Run again to resume from %q.", report.CursorEnd)
		return nil
	default:
		return fmt.Errorf("sync failed: %w", runErr)
	}
}

// runPlain drives the sync while a goroutine prints progress.
func (r *Runner) runPlain(ctx context.Context, driver *tasks.Driver) (*models.SyncReport, error) {
	progress := make(chan tasks.ProgressUpdate, 100)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for update := range progress {
			r.printProgress(update)
		}
	}()

	report, err := driver.Run(ctx, progress)
	close(progress)
	<-done
	return report, err
}

func (r *Runner) printProgress(update tasks.ProgressUpdate) {
	switch update.Phase {
	case tasks.SearchTrack:
		r.logger.Debug(update.Message)
	case tasks.Complete:
		r.writePlainln("%s", update.Message)
	default:
		r.writePlain("%s\n", update.Message)
	}
}

// writeRunReport exports the report when --report or --format was given.
func (r *Runner) writeRunReport(cmd *cli.Command, report *models.SyncReport) error {
	path := cmd.String("report")
	format := cmd.String("format")
	if path == "" && format == "" {
		return nil
	}
	if format == "" {
		format = r.config.Sync.ReportFormat
	}

	written, err := formatter.WriteReport(report, path, format)
	if err != nil {
		return err
	}
	r.logger.Info("report written", "path", written, "format", format)
	return r.writePlain("✓ Report saved to %s\n", written)
}

func (r *Runner) printSummary(report *models.SyncReport) {
	r.writePlainHeader("Sync Summary")

	rows := [][]string{
		{"Catalog", strconv.Itoa(report.CatalogSize)},
		{"Before cursor", strconv.Itoa(report.BeforeCursor)},
		{"Already added", strconv.Itoa(report.AlreadyAdded)},
		{"Inserted", strconv.Itoa(report.Inserted)},
		{"Duplicates", strconv.Itoa(report.Duplicates)},
		{"No match", strconv.Itoa(report.NoMatch)},
		{"Failed", strconv.Itoa(report.Failed)},
	}
	r.writePlain("%s\n", renderTable([]string{"Tracks", "Count"}, rows, []columnAlignment{alignLeft, alignRight}, isTerminal(r.output)))

	if !report.CursorFound {
		r.writePlain("⚠ Saved cursor %q was not found in the catalog; nothing was processed.\n", report.CursorStart)
	}
	if report.CursorEnd != "" {
		r.writePlain("Cursor: %s\n", report.CursorEnd)
	}
	r.writePlain("Duration: %s\n", report.Duration().Round(time.Millisecond))
}

// Package ui implements an interactive sync monitor using bubbletea's Elm architecture.
//
// The TUI walks through three views:
//  1. [ConfirmView] : Review source, destination, cursor policy and state backend
//  2. [SyncView] : Monitor real-time progress updates with a spinner, progress bar and event log
//  3. [ResultView] : Display counters and browse every processed track
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the sync driver, providing non-blocking status reporting.
// Stopping a sync cancels its context; the driver finishes the current track and the partial report is shown.
package ui

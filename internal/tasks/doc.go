// Package tasks runs the liked-songs sync loop with real-time progress reporting.
//
// # Sync loop
//
// [Driver.Run] loads the cursor and dedup set from a [state.Store], fetches the
// liked tracks from a [services.CatalogSource] and walks them in catalog order:
//
//  1. While [SeekingCursor], tracks up to and including the saved cursor are passed over.
//  2. While [Processing], each track is checked against the dedup set, searched with a
//     [Matcher] and, when a video is found, handed to a [PlaylistWriter].
//
// The [CursorPolicy] decides which outcomes move the cursor. The default,
// [PolicyOnMatch], advances whenever a video was found.
//
// # Progress Reporting
//
// Progress is sent on an optional channel as [ProgressUpdate] values.
// Updates use select with default to prevent blocking.
package tasks

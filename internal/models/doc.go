// Package models defines the domain types shared by the sync pipeline.
//
// The package contains two categories of types:
//
// 1. Sync values: lightweight structs passed between pipeline stages
//   - [Track] : a liked song from the source catalog, identified by [Track.Identity]
//   - [Match] : the single best video found for a track
//   - [InsertOutcome] : the result of one playlist insert attempt
//   - [SyncReport] : counters and per-track outcomes of one run
//
// 2. Persistent entities: rows kept by the sqlite state backend
//   - [DedupEntry] : one inserted video title
//   - [RunRecord] : summary of a finished run
//
// Persistent entities implement [Model]; [Repository] describes their storage.
package models

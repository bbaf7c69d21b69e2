// Package state persists the resume cursor and the dedup set between runs.
//
// Every backend implements [Store]:
//   - [FileStore] : two plain-text files, the default
//   - [SQLiteStore] : tables managed by the embedded migrations
//   - [BadgerStore] : an embedded key-value directory
//
// [Open] picks the backend named in the config. [Copy] moves state between backends
// and [AcquireRunLock] keeps two runs from sharing one state directory.
package state

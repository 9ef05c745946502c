// Package persist provides byte-blob backends for the serialized dataset
// snapshot.
//
// Every backend stores exactly one blob, the latest snapshot, and replaces
// it wholesale on each Save:
//   - SQLite: single-row table in a local database file (default)
//   - File: a JSON document on disk, replaced atomically via rename
//   - Redis: a single string key, the server-side analogue of a browser's
//     keyed local storage
//   - Memory: process-local, for tests and throwaway sessions
//
// Load returns ErrNoSnapshot when nothing has been saved yet, so callers can
// start from an empty dataset.
package persist

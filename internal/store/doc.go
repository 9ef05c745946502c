// Package store provides the Record Store: the single owner of the dataset
// snapshot and the only component that assigns identifiers or writes to a
// persistence backend.
//
// # Persistence
//
// Every mutation is write-through: the change is applied to the in-memory
// snapshot, the full snapshot is serialized, and the blob is handed to the
// backend before the call returns. When the write fails the caller receives
// a PERSISTENCE error but the in-memory change is kept, so the error means
// "durability not guaranteed", not "nothing happened".
//
// VALIDATION and NOT_FOUND errors are raised before anything is touched.
//
// # Borrowed views
//
// Getters and List functions return deep copies. Callers never hold a
// reference into the store's snapshot.
//
// # Lookups
//
// Identifier lookup is a linear scan over the kind's collection. This is an
// accepted scalability limit for the small-to-medium datasets the store is
// meant for, not an oversight.
//
// # Concurrency
//
// A single mutex serializes every operation, including its persistence
// write, so at most one read-modify-write cycle runs at a time.
package store

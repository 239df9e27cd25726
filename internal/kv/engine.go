// Package kv wraps the ordered key-value engine backing the value
// dictionary behind a small interface, so the index layer (internal/index)
// depends on "an ordered byte-key store with transactions and
// cursors" rather than on Badger directly.
package kv

import "errors"

// ErrNotFound is returned by Txn.Get when the key is absent.
var ErrNotFound = errors.New("valuedict/kv: key not found")

// Engine is the ordered key-value store backing the dictionary.
type Engine interface {
	// Begin starts a new transaction. Writable transactions are
	// serialized by the engine; read-only transactions never block a
	// writer and never block each other.
	Begin(writable bool) (Txn, error)

	// Close releases all resources held by the engine.
	Close() error

	// Sync flushes any buffered writes to stable storage.
	Sync() error
}

// Txn is a single read or read-write transaction.
type Txn interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(key []byte) ([]byte, error)

	// Set stores value under key. Only valid on a writable Txn.
	Set(key, value []byte) error

	// NewCursor returns a cursor over keys sharing prefix. When
	// reverse is true the cursor walks from the largest matching key
	// down to the smallest, used for the ID-recovery scan; otherwise
	// it walks ascending, used for the overflow-bucket chain walk.
	NewCursor(prefix []byte, reverse bool) Cursor

	// Commit commits the transaction.
	Commit() error

	// Discard aborts the transaction, rolling back any writes.
	Discard() error
}

// Cursor walks keys sharing a fixed prefix in one direction.
type Cursor interface {
	// Seek positions the cursor at the first key >= target (or, for a
	// reverse cursor, the first key <= target).
	Seek(target []byte)

	// Valid reports whether the cursor currently points at an entry
	// that still shares the cursor's prefix.
	Valid() bool

	// Next advances the cursor one step in its direction.
	Next()

	// Key returns the full key (including prefix) at the cursor.
	Key() []byte

	// Value returns the value at the cursor.
	Value() ([]byte, error)

	// Close releases the cursor. Safe to call multiple times.
	Close()
}

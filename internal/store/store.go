// Package store defines the ordered key-value contract the tracker core
// runs on and its badger-backed implementation.
//
// The contract is deliberately thin: get by key, put within a write
// transaction, and a prefix range scan with an early-stop predicate. Keys
// are opaque ordered bytes; the layout lives in internal/model. The engine
// relies on three properties:
//
//   - read transactions are snapshots of the last committed state,
//   - at most one write transaction is in flight at a time,
//   - range scans visit keys in ascending byte order.
package store

import "errors"

// ErrNotFound distinguishes an absent key from a read failure.
var ErrNotFound = errors.New("store: key not found")

// TxR is a read transaction: a consistent snapshot of the last committed
// state. Close releases the snapshot; it is safe to call more than once.
type TxR interface {
	// Get returns a copy of the value stored under key, or ErrNotFound.
	Get(key []byte) ([]byte, error)

	// Range scans keys starting at start in ascending byte order and
	// calls visit for each pair until visit returns false or the keyspace
	// ends. Callers stop the scan as soon as a key leaves their prefix so
	// a scan never walks the whole store.
	Range(start []byte, visit func(key, value []byte) bool) error

	Close()
}

// TxW is a write transaction. Exactly one is in flight at a time; opening
// a second blocks until the first commits or aborts. A TxW that is neither
// committed nor aborted must be aborted; Abort after Commit is a no-op.
type TxW interface {
	TxR

	Put(key, value []byte) error

	Commit() error
	Abort()
}

// DB is the embedded ordered key-value engine surface the core consumes.
type DB interface {
	Read() (TxR, error)
	Write() (TxW, error)
	Close() error

	// LastEventKey returns the highest event-log key ever committed, or
	// nil. The engine uses it to force strictly increasing event keys
	// across transactions and process restarts.
	LastEventKey() []byte
	// RecordEventKey publishes the event key of a just-committed
	// transaction. Called by the engine with the write lock still held.
	RecordEventKey(key []byte)
}

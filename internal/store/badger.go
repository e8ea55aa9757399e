package store

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// badgerDB adapts a badger instance to the DB contract.
//
// Badger hands out optimistic concurrent transactions; the tracker's model
// is a single blocking writer. The adapter therefore serializes Write()
// behind a mutex that is held until the transaction commits or aborts, so
// writer conflicts cannot happen and callers queue in arrival order.
type badgerDB struct {
	db *badger.DB

	writer sync.Mutex

	mu           sync.Mutex
	lastEventKey []byte
}

// Open opens (or creates) a badger store at path.
func Open(path string) (DB, error) {
	opts := badger.DefaultOptions(path)
	opts = opts.WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open store at %s: %w", path, err)
	}
	b := &badgerDB{db: db}
	if err := b.seedLastEventKey(); err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}

// seedLastEventKey finds the highest committed event key so the engine's
// monotonic event clock survives restarts.
func (b *badgerDB) seedLastEventKey() error {
	return b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte("e:")
		// One past the end of the event namespace.
		seek := append([]byte{}, prefix...)
		seek = append(seek, bytes.Repeat([]byte{0xff}, 8)...)
		it.Seek(seek)
		if it.ValidForPrefix(prefix) {
			b.lastEventKey = it.Item().KeyCopy(nil)
		}
		return nil
	})
}

func (b *badgerDB) Read() (TxR, error) {
	return &badgerTxR{txn: b.db.NewTransaction(false)}, nil
}

func (b *badgerDB) Write() (TxW, error) {
	b.writer.Lock()
	return &badgerTxW{
		badgerTxR: badgerTxR{txn: b.db.NewTransaction(true)},
		release:   b.writer.Unlock,
	}, nil
}

func (b *badgerDB) Close() error {
	return b.db.Close()
}

func (b *badgerDB) LastEventKey() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastEventKey
}

func (b *badgerDB) RecordEventKey(key []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastEventKey = append([]byte{}, key...)
}

type badgerTxR struct {
	txn  *badger.Txn
	done bool
}

func (t *badgerTxR) Get(key []byte) ([]byte, error) {
	item, err := t.txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", key, err)
	}
	return item.ValueCopy(nil)
}

func (t *badgerTxR) Range(start []byte, visit func(key, value []byte) bool) error {
	opts := badger.DefaultIteratorOptions
	it := t.txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(start); it.Valid(); it.Next() {
		item := it.Item()
		value, err := item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("range at %q: %w", item.Key(), err)
		}
		if !visit(item.KeyCopy(nil), value) {
			return nil
		}
	}
	return nil
}

func (t *badgerTxR) Close() {
	if t.done {
		return
	}
	t.done = true
	t.txn.Discard()
}

type badgerTxW struct {
	badgerTxR
	release func()
}

func (t *badgerTxW) Put(key, value []byte) error {
	if err := t.txn.Set(key, value); err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

func (t *badgerTxW) Commit() error {
	if t.done {
		return fmt.Errorf("commit on finished transaction")
	}
	t.done = true
	err := t.txn.Commit()
	t.release()
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (t *badgerTxW) Abort() {
	if t.done {
		return
	}
	t.done = true
	t.txn.Discard()
	t.release()
}

// Close on a write transaction aborts it unless already finished, so a
// deferred Close is a safe rollback path.
func (t *badgerTxW) Close() {
	t.Abort()
}

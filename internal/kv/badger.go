package kv

import (
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

// BadgerEngine implements Engine on top of BadgerDB.
type BadgerEngine struct {
	db *badger.DB
}

// Options configures the Badger engine at open time.
type Options struct {
	// Dir is the directory BadgerDB stores its files under.
	Dir string
	// SyncWrites requests an fsync on every commit (the force-sync
	// flag of the dictionary's external configuration).
	SyncWrites bool
}

// Open opens (creating if necessary) a Badger database under opts.Dir.
func Open(opts Options) (*BadgerEngine, error) {
	bopts := badger.DefaultOptions(opts.Dir)
	bopts.Logger = nil
	bopts.SyncWrites = opts.SyncWrites

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("valuedict/kv: open badger at %s: %w", opts.Dir, err)
	}
	return &BadgerEngine{db: db}, nil
}

func (e *BadgerEngine) Begin(writable bool) (Txn, error) {
	return &badgerTxn{txn: e.db.NewTransaction(writable), writable: writable}, nil
}

func (e *BadgerEngine) Close() error { return e.db.Close() }
func (e *BadgerEngine) Sync() error  { return e.db.Sync() }

type badgerTxn struct {
	txn      *badger.Txn
	writable bool
}

func (t *badgerTxn) Get(key []byte) ([]byte, error) {
	item, err := t.txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var value []byte
	err = item.Value(func(val []byte) error {
		value = append([]byte{}, val...)
		return nil
	})
	return value, err
}

func (t *badgerTxn) Set(key, value []byte) error {
	if !t.writable {
		return fmt.Errorf("valuedict/kv: write on a read-only transaction")
	}
	return t.txn.Set(key, value)
}

func (t *badgerTxn) NewCursor(prefix []byte, reverse bool) Cursor {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.Reverse = reverse
	return &badgerCursor{it: t.txn.NewIterator(opts)}
}

func (t *badgerTxn) Commit() error  { return t.txn.Commit() }
func (t *badgerTxn) Discard() error { t.txn.Discard(); return nil }

type badgerCursor struct {
	it      *badger.Iterator
	started bool
}

func (c *badgerCursor) Seek(target []byte) {
	c.it.Seek(target)
	c.started = true
}

func (c *badgerCursor) Valid() bool {
	return c.started && c.it.Valid()
}

func (c *badgerCursor) Next() {
	c.it.Next()
}

func (c *badgerCursor) Key() []byte {
	return c.it.Item().KeyCopy(nil)
}

func (c *badgerCursor) Value() ([]byte, error) {
	var value []byte
	err := c.it.Item().Value(func(val []byte) error {
		value = append([]byte{}, val...)
		return nil
	})
	return value, err
}

func (c *badgerCursor) Close() {
	c.it.Close()
}

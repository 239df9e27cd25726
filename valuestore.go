// Package valuedict is a persistent, content-addressed dictionary
// mapping RDF values (IRIs, blank nodes, literals) and namespace
// strings to compact integer identifiers, and back again.
package valuedict

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ontolabs/valuedict/internal/cache"
	"github.com/ontolabs/valuedict/internal/config"
	"github.com/ontolabs/valuedict/internal/encoding"
	"github.com/ontolabs/valuedict/internal/idalloc"
	"github.com/ontolabs/valuedict/internal/index"
	"github.com/ontolabs/valuedict/internal/kv"
	"github.com/ontolabs/valuedict/internal/obslog"
	"github.com/ontolabs/valuedict/internal/obsmetrics"
	"github.com/ontolabs/valuedict/pkg/rdf"
)

// UnknownID is the sentinel returned, never as an error, when a lookup
// finds no matching entry.
const UnknownID uint64 = 0

// Store is a single value dictionary instance.
type Store struct {
	// mu is the reader-writer lock guarding the store: Clear takes the
	// write lock, every other operation the read lock. Read locks permit
	// concurrent additions to the index; Clear is the only destructive
	// operation.
	mu sync.RWMutex

	cfg     *config.Config
	engine  kv.Engine
	idx     *index.Store
	alloc   *idalloc.Allocator
	caches  *cache.Caches
	logger  *zap.Logger
	metrics *obsmetrics.Metrics

	revision atomic.Pointer[Revision]

	// txnMu guards the explicit-transaction bracketing fields below.
	// Callers are expected to serialize their own writes, so contention
	// here is rare; it keeps StartTransaction/Commit/Rollback consistent
	// with each other. withRead and withWrite read writeTxn without
	// taking it.
	txnMu            sync.Mutex
	writeTxn         kv.Txn
	txnAllocSnapshot uint64
}

// Open opens (creating if necessary) a value dictionary under
// cfg.Storage.DataDir.
func Open(cfg *config.Config, opts ...Option) (*Store, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	engine, err := kv.Open(kv.Options{
		Dir:        filepath.Join(cfg.Storage.DataDir, "values"),
		SyncWrites: cfg.Storage.SyncWrites,
	})
	if err != nil {
		return nil, ioError("open backing engine", err)
	}

	caches, err := cache.New(cache.Sizes{
		Value:       cfg.Cache.ValueSize,
		ValueID:     cfg.Cache.ValueIDSize,
		Namespace:   cfg.Cache.NamespaceSize,
		NamespaceID: cfg.Cache.NamespaceIDSize,
	})
	if err != nil {
		engine.Close()
		return nil, ioError("build caches", err)
	}

	logger := o.logger
	if logger == nil {
		logger, err = obslog.New(cfg.Logging)
		if err != nil {
			engine.Close()
			return nil, err
		}
	}

	metrics := obsmetrics.New(o.registerer)
	idx := index.New(cfg.Storage.MaxKeySize)

	txn, err := engine.Begin(false)
	if err != nil {
		engine.Close()
		return nil, ioError("begin recovery transaction", err)
	}
	recoveredMax, err := idx.RecoverMaxID(txn)
	txn.Discard()
	if err != nil {
		engine.Close()
		return nil, ioError("recover next id", err)
	}

	store := &Store{
		cfg:     cfg,
		engine:  engine,
		idx:     idx,
		alloc:   idalloc.New(recoveredMax),
		caches:  caches,
		logger:  logger,
		metrics: metrics,
	}
	store.revision.Store(&Revision{store: store})
	metrics.NextValueID.Set(float64(recoveredMax + 1))
	logger.Info("value dictionary opened", zap.Uint64("next_id", recoveredMax+1))
	return store, nil
}

// Close releases the store's backing resources. Any active explicit
// write transaction is discarded.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeTxn != nil {
		s.writeTxn.Discard()
		s.writeTxn = nil
	}
	if err := s.engine.Close(); err != nil {
		return ioError("close engine", err)
	}
	return nil
}

// Sync flushes buffered writes to stable storage, independent of the
// configured sync-on-commit setting.
func (s *Store) Sync() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.engine.Sync(); err != nil {
		return ioError("sync", err)
	}
	return nil
}

func (s *Store) currentRevision() *Revision {
	return s.revision.Load()
}

// withRead runs fn against the active explicit write transaction if one
// is open (so reads observe its uncommitted writes), or a fresh
// read-only transaction otherwise.
func (s *Store) withRead(fn func(kv.Txn) error) error {
	if s.writeTxn != nil {
		return fn(s.writeTxn)
	}
	txn, err := s.engine.Begin(false)
	if err != nil {
		return ioError("begin read transaction", err)
	}
	defer txn.Discard()
	return fn(txn)
}

// withWrite runs fn inside the active explicit write transaction if one
// is open, or a short-lived implicit one that commits on success and
// discards (restoring the ID allocator) on failure.
func (s *Store) withWrite(fn func(kv.Txn) error) error {
	if s.writeTxn != nil {
		return fn(s.writeTxn)
	}
	snapshot := s.alloc.Snapshot()
	txn, err := s.engine.Begin(true)
	if err != nil {
		return ioError("begin write transaction", err)
	}
	if err := fn(txn); err != nil {
		txn.Discard()
		s.alloc.Restore(snapshot)
		return err
	}
	if err := txn.Commit(); err != nil {
		s.alloc.Restore(snapshot)
		return ioError("commit transaction", err)
	}
	return nil
}

// StartTransaction opens an explicit write transaction that subsequent
// mutating calls on this Store join, until Commit or Rollback.
func (s *Store) StartTransaction() error {
	s.txnMu.Lock()
	defer s.txnMu.Unlock()
	if s.writeTxn != nil {
		return invalidArgumentError("a transaction is already active")
	}
	txn, err := s.engine.Begin(true)
	if err != nil {
		return ioError("begin transaction", err)
	}
	s.writeTxn = txn
	s.txnAllocSnapshot = s.alloc.Snapshot()
	return nil
}

// Commit commits the active explicit write transaction.
func (s *Store) Commit() error {
	s.txnMu.Lock()
	defer s.txnMu.Unlock()
	if s.writeTxn == nil {
		return invalidArgumentError("no transaction is active")
	}
	txn := s.writeTxn
	s.writeTxn = nil
	if err := txn.Commit(); err != nil {
		s.alloc.Restore(s.txnAllocSnapshot)
		return ioError("commit transaction", err)
	}
	return nil
}

// Rollback discards the active explicit write transaction, restores
// the ID allocator to the state it held before the transaction began,
// and empties the caches, which may hold entries written by the
// discarded transaction.
func (s *Store) Rollback() error {
	s.txnMu.Lock()
	defer s.txnMu.Unlock()
	if s.writeTxn == nil {
		return invalidArgumentError("no transaction is active")
	}
	txn := s.writeTxn
	s.writeTxn = nil
	s.alloc.Restore(s.txnAllocSnapshot)
	s.caches.Clear()
	if err := txn.Discard(); err != nil {
		return ioError("discard transaction", err)
	}
	return nil
}

// GetID resolves the ID previously assigned to term, if any.
func (s *Store) GetID(term rdf.Term) (uint64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sv, ok := term.(*StampedValue); ok {
		if id, ok := sv.cachedID(); ok {
			return id, true, nil
		}
		term = sv.Term
	}

	var id uint64
	var found bool
	err := s.withRead(func(txn kv.Txn) error {
		var err error
		id, found, err = s.resolveID(txn, term)
		return err
	})
	if err != nil {
		return 0, false, err
	}
	if s.metrics != nil {
		s.metrics.LookupsTotal.WithLabelValues("value").Inc()
	}
	return id, found, nil
}

// StoreValue returns the ID assigned to term, allocating and persisting
// a new one if term has not been stored before.
func (s *Store) StoreValue(term rdf.Term) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sv, ok := term.(*StampedValue); ok {
		if id, ok := sv.cachedID(); ok {
			return id, nil
		}
		term = sv.Term
	}

	var id uint64
	err := s.withWrite(func(txn kv.Txn) error {
		existingID, found, err := s.resolveID(txn, term)
		if err != nil {
			return err
		}
		if found {
			id = existingID
			if s.metrics != nil {
				s.metrics.StoreDuplicates.Inc()
			}
			return nil
		}
		id, err = s.assignID(txn, term)
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetValue resolves the term stored under id, if any.
func (s *Store) GetValue(id uint64) (rdf.Term, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var term rdf.Term
	var found bool
	err := s.withRead(func(txn kv.Txn) error {
		var err error
		term, found, err = s.valueByID(txn, id)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}
	if s.metrics != nil {
		s.metrics.LookupsTotal.WithLabelValues("value_by_id").Inc()
	}
	return newStampedValue(term, id, s.currentRevision()), true, nil
}

// GetNamespace resolves the namespace string stored under id, if any.
func (s *Store) GetNamespace(id uint64) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ns string
	var found bool
	err := s.withRead(func(txn kv.Txn) error {
		var err error
		ns, found, err = s.namespaceByID(txn, id)
		return err
	})
	if err != nil {
		return "", false, err
	}
	if s.metrics != nil {
		s.metrics.LookupsTotal.WithLabelValues("namespace_by_id").Inc()
	}
	return ns, found, nil
}

// GetNamespaceID resolves the ID for namespace ns, allocating one if
// create is true and ns has not been stored before.
func (s *Store) GetNamespaceID(ns string, create bool) (uint64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !create {
		var id uint64
		var found bool
		err := s.withRead(func(txn kv.Txn) error {
			var err error
			id, found, err = s.resolveNamespaceID(txn, ns, false)
			return err
		})
		return id, found, err
	}

	var id uint64
	err := s.withWrite(func(txn kv.Txn) error {
		var err error
		id, _, err = s.resolveNamespaceID(txn, ns, true)
		return err
	})
	return id, err == nil, err
}

// Clear removes every stored value and namespace, truncating the
// backing engine and issuing a new Revision. Every previously issued
// StampedValue becomes stale.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writeTxn != nil {
		return invalidArgumentError("cannot clear while an explicit transaction is active")
	}

	dataDir := filepath.Join(s.cfg.Storage.DataDir, "values")
	if err := s.engine.Close(); err != nil {
		return ioError("close engine before clear", err)
	}
	if err := os.RemoveAll(dataDir); err != nil {
		return ioError("remove data directory", err)
	}
	s.caches.Clear()

	engine, err := kv.Open(kv.Options{Dir: dataDir, SyncWrites: s.cfg.Storage.SyncWrites})
	if err != nil {
		return ioError("reopen engine after clear", err)
	}

	s.engine = engine
	s.alloc = idalloc.New(0)
	s.revision.Store(&Revision{store: s})

	if s.metrics != nil {
		s.metrics.ClearsTotal.Inc()
		s.metrics.NextValueID.Set(1)
		s.metrics.OverflowEntries.Set(0)
	}
	s.logger.Info("store cleared, new revision issued")
	return nil
}

// CheckConsistency walks every assigned ID and verifies that each
// forward entry round-trips back to the same ID through the reverse
// index, and that namespace entries remain syntactically valid as the
// leading portion of an absolute IRI. It reports the first failure
// found.
func (s *Store) CheckConsistency() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.withRead(func(txn kv.Txn) error {
		return s.idx.ForEachID(txn, func(id uint64, payload []byte) error {
			if isNamespacePayload(payload) {
				ns := encoding.DecodeNamespace(payload)
				gotID, found, err := s.resolveNamespaceID(txn, ns, false)
				if err != nil {
					return err
				}
				if !found || gotID != id {
					return corruptionError(fmt.Sprintf("namespace id %d does not round-trip", id), nil)
				}
				if !looksAbsoluteNamespace(ns) {
					return corruptionError(fmt.Sprintf("namespace id %d is not the leading portion of a syntactically absolute uri", id), nil)
				}
				return nil
			}

			term, err := s.decodeTerm(txn, payload)
			if err != nil {
				return corruptionError(fmt.Sprintf("value id %d failed to decode", id), err)
			}
			gotID, found, err := s.resolveID(txn, term)
			if err != nil {
				return err
			}
			if !found || gotID != id {
				return corruptionError(fmt.Sprintf("value id %d does not round-trip", id), nil)
			}
			return nil
		})
	})
}

func looksAbsoluteNamespace(ns string) bool {
	u, err := url.Parse(ns + "part")
	return err == nil && u.IsAbs()
}

func isNamespacePayload(payload []byte) bool {
	if len(payload) == 0 {
		return true
	}
	switch payload[0] {
	case byte(encoding.KindIRI), byte(encoding.KindBNode), byte(encoding.KindLiteral):
		return false
	default:
		return true
	}
}

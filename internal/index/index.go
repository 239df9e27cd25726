// Package index implements the bidirectional mapping between value IDs
// and their encoded byte payloads on top of an ordered key-value engine.
// Forward lookups (ID -> payload) are always a direct key hit, since IDs
// are small fixed-width keys regardless of payload size. Reverse lookups
// (payload -> ID) key directly on the payload when it fits under the
// engine's maximum key size; larger payloads go through a CRC32 hash
// bucket chain instead, since they cannot themselves serve as a key.
package index

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/ontolabs/valuedict/internal/kv"
)

const (
	idTag   byte = 0x00
	hashTag byte = 0x01
)

func idKey(id uint64) []byte {
	key := make([]byte, 9)
	key[0] = idTag
	binary.BigEndian.PutUint64(key[1:], id)
	return key
}

func decodeIDKey(key []byte) (uint64, bool) {
	if len(key) != 9 || key[0] != idTag {
		return 0, false
	}
	return binary.BigEndian.Uint64(key[1:]), true
}

// hashKeyPrefix builds the 9-byte prefix shared by every overflow entry
// for a given payload: the hash tag plus the CRC32 checksum zero-extended
// into a u64, matching the width the bucket-index field itself uses.
func hashKeyPrefix(hash uint32) []byte {
	prefix := make([]byte, 9)
	prefix[0] = hashTag
	binary.BigEndian.PutUint64(prefix[1:], uint64(hash))
	return prefix
}

func hashKey(hash uint32, bucket uint64) []byte {
	key := make([]byte, 9+8)
	copy(key, hashKeyPrefix(hash))
	binary.BigEndian.PutUint64(key[9:], bucket)
	return key
}

// Store is the ordered bidirectional index between value IDs and their
// encoded byte payloads.
type Store struct {
	maxKeySize int
}

// New returns a Store whose reverse index falls back to hash buckets for
// payloads at or above maxKeySize bytes.
func New(maxKeySize int) *Store {
	return &Store{maxKeySize: maxKeySize}
}

// Get returns the payload stored under id.
func (s *Store) Get(txn kv.Txn, id uint64) ([]byte, bool, error) {
	data, err := txn.Get(idKey(id))
	if err == kv.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// FindID returns the ID already assigned to payload, if any.
func (s *Store) FindID(txn kv.Txn, payload []byte) (uint64, bool, error) {
	if len(payload) < s.maxKeySize {
		idBytes, err := txn.Get(payload)
		if err == kv.ErrNotFound {
			return 0, false, nil
		}
		if err != nil {
			return 0, false, err
		}
		id, ok := decodeIDKey(idBytes)
		if !ok {
			return 0, false, fmt.Errorf("valuedict/index: corrupt reverse entry")
		}
		return id, true, nil
	}
	return s.findOverflowID(txn, payload)
}

func (s *Store) findOverflowID(txn kv.Txn, payload []byte) (uint64, bool, error) {
	prefix := hashKeyPrefix(crc32.ChecksumIEEE(payload))

	cur := txn.NewCursor(prefix, false)
	defer cur.Close()
	for cur.Seek(prefix); cur.Valid(); cur.Next() {
		idBytes, err := cur.Value()
		if err != nil {
			return 0, false, err
		}
		id, ok := decodeIDKey(idBytes)
		if !ok {
			return 0, false, fmt.Errorf("valuedict/index: corrupt overflow bucket entry")
		}
		candidate, found, err := s.Get(txn, id)
		if err != nil {
			return 0, false, err
		}
		if found && bytes.Equal(candidate, payload) {
			return id, true, nil
		}
	}
	return 0, false, nil
}

// IsOverflowPayload reports whether payload is too large to key directly
// and would be routed through the hash overflow bucket chain by Put.
func (s *Store) IsOverflowPayload(payload []byte) bool {
	return len(payload) >= s.maxKeySize
}

// Put records payload under id in both directions: forward always, and
// reverse either as a direct key or through the overflow bucket chain
// depending on payload size. Callers must have already confirmed via
// FindID that payload is not already present.
func (s *Store) Put(txn kv.Txn, id uint64, payload []byte) error {
	if err := txn.Set(idKey(id), payload); err != nil {
		return err
	}
	if len(payload) < s.maxKeySize {
		return txn.Set(payload, idKey(id))
	}
	return s.putOverflow(txn, id, payload)
}

func (s *Store) putOverflow(txn kv.Txn, id uint64, payload []byte) error {
	hash := crc32.ChecksumIEEE(payload)
	prefix := hashKeyPrefix(hash)

	var bucket uint64
	cur := txn.NewCursor(prefix, false)
	for cur.Seek(prefix); cur.Valid(); cur.Next() {
		bucket++
	}
	cur.Close()

	return txn.Set(hashKey(hash, bucket), idKey(id))
}

// RecoverMaxID scans the forward index in descending key order to find the
// largest ID currently assigned, letting an allocator resume correctly
// after restart without keeping a separate persisted counter.
func (s *Store) RecoverMaxID(txn kv.Txn) (uint64, error) {
	prefix := []byte{idTag}
	seekFrom := append(append([]byte{}, prefix...), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)

	cur := txn.NewCursor(prefix, true)
	defer cur.Close()
	cur.Seek(seekFrom)
	if !cur.Valid() {
		return 0, nil
	}
	id, ok := decodeIDKey(cur.Key())
	if !ok {
		return 0, fmt.Errorf("valuedict/index: corrupt id entry during recovery")
	}
	return id, nil
}

// ForEachID walks every forward entry in ascending ID order, invoking fn
// with each id and its payload. Used by consistency checking.
func (s *Store) ForEachID(txn kv.Txn, fn func(id uint64, payload []byte) error) error {
	prefix := []byte{idTag}
	cur := txn.NewCursor(prefix, false)
	defer cur.Close()
	for cur.Seek(prefix); cur.Valid(); cur.Next() {
		id, ok := decodeIDKey(cur.Key())
		if !ok {
			return fmt.Errorf("valuedict/index: corrupt id entry during scan")
		}
		payload, err := cur.Value()
		if err != nil {
			return err
		}
		if err := fn(id, payload); err != nil {
			return err
		}
	}
	return nil
}

// Package cache holds the four bounded lookup caches that sit in front
// of the index: two for terms (ID -> encoded payload, encoded payload ->
// ID) and two for namespaces (ID -> string, string -> ID). Lookup
// caches are keyed by the deterministic encoded byte string rather than
// by an RDF term value directly, since the term types in pkg/rdf carry
// no notion of comparable identity beyond structural Equals.
package cache

import lru "github.com/hashicorp/golang-lru/v2"

// Sizes configures the capacity of each of the four caches.
type Sizes struct {
	Value       int
	ValueID     int
	Namespace   int
	NamespaceID int
}

// DefaultSizes mirror the modest defaults of a single-process embedded
// store: enough to smooth out repeated lookups of hot terms without
// holding a large working set in memory.
func DefaultSizes() Sizes {
	return Sizes{
		Value:       512,
		ValueID:     128,
		Namespace:   64,
		NamespaceID: 32,
	}
}

// Caches bundles the four LRU caches used by the dictionary.
type Caches struct {
	// idToValue maps a value ID to its encoded payload.
	idToValue *lru.Cache[uint64, []byte]
	// valueToID maps an encoded payload to its value ID.
	valueToID *lru.Cache[string, uint64]
	// idToNamespace maps a namespace ID to its string.
	idToNamespace *lru.Cache[uint64, string]
	// namespaceToID maps a namespace string to its ID.
	namespaceToID *lru.Cache[string, uint64]
}

// New builds the four caches with the given sizes. Any zero or negative
// size falls back to a single-entry cache rather than erroring, so a
// misconfigured size disables effective caching without disabling the
// dictionary.
func New(sizes Sizes) (*Caches, error) {
	idToValue, err := lru.New[uint64, []byte](atLeastOne(sizes.Value))
	if err != nil {
		return nil, err
	}
	valueToID, err := lru.New[string, uint64](atLeastOne(sizes.ValueID))
	if err != nil {
		return nil, err
	}
	idToNamespace, err := lru.New[uint64, string](atLeastOne(sizes.Namespace))
	if err != nil {
		return nil, err
	}
	namespaceToID, err := lru.New[string, uint64](atLeastOne(sizes.NamespaceID))
	if err != nil {
		return nil, err
	}
	return &Caches{
		idToValue:     idToValue,
		valueToID:     valueToID,
		idToNamespace: idToNamespace,
		namespaceToID: namespaceToID,
	}, nil
}

func atLeastOne(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

func (c *Caches) GetValue(id uint64) ([]byte, bool)        { return c.idToValue.Get(id) }
func (c *Caches) PutValue(id uint64, payload []byte)       { c.idToValue.Add(id, payload) }
func (c *Caches) GetValueID(payload []byte) (uint64, bool) { return c.valueToID.Get(string(payload)) }
func (c *Caches) PutValueID(payload []byte, id uint64)     { c.valueToID.Add(string(payload), id) }
func (c *Caches) GetNamespace(id uint64) (string, bool)    { return c.idToNamespace.Get(id) }
func (c *Caches) PutNamespace(id uint64, ns string)        { c.idToNamespace.Add(id, ns) }
func (c *Caches) GetNamespaceID(ns string) (uint64, bool)  { return c.namespaceToID.Get(ns) }
func (c *Caches) PutNamespaceID(ns string, id uint64)      { c.namespaceToID.Add(ns, id) }

// Clear empties all four caches. Called when the dictionary's revision
// changes, since every previously cached ID may now be stale.
func (c *Caches) Clear() {
	c.idToValue.Purge()
	c.valueToID.Purge()
	c.idToNamespace.Purge()
	c.namespaceToID.Purge()
}

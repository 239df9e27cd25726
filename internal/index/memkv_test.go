package index

import (
	"bytes"
	"sort"

	"github.com/ontolabs/valuedict/internal/kv"
)

// memEngine is a tiny in-memory stand-in for kv.Engine used only to
// exercise the index logic in tests, without depending on Badger.
type memEngine struct {
	data map[string][]byte
}

func newMemEngine() *memEngine {
	return &memEngine{data: map[string][]byte{}}
}

func (e *memEngine) Begin(writable bool) (kv.Txn, error) {
	return &memTxn{engine: e, writes: map[string][]byte{}}, nil
}

func (e *memEngine) Close() error { return nil }
func (e *memEngine) Sync() error  { return nil }

type memTxn struct {
	engine *memEngine
	writes map[string][]byte
}

func (t *memTxn) Get(key []byte) ([]byte, error) {
	if v, ok := t.writes[string(key)]; ok {
		return v, nil
	}
	if v, ok := t.engine.data[string(key)]; ok {
		return v, nil
	}
	return nil, kv.ErrNotFound
}

func (t *memTxn) Set(key, value []byte) error {
	t.writes[string(key)] = append([]byte{}, value...)
	return nil
}

func (t *memTxn) Commit() error {
	for k, v := range t.writes {
		t.engine.data[k] = v
	}
	return nil
}

func (t *memTxn) Discard() error { return nil }

func (t *memTxn) NewCursor(prefix []byte, reverse bool) kv.Cursor {
	merged := map[string][]byte{}
	for k, v := range t.engine.data {
		merged[k] = v
	}
	for k, v := range t.writes {
		merged[k] = v
	}

	var keys []string
	for k := range merged {
		if bytes.HasPrefix([]byte(k), prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if reverse {
		for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
			keys[i], keys[j] = keys[j], keys[i]
		}
	}

	return &memCursor{keys: keys, values: merged, reverse: reverse}
}

type memCursor struct {
	keys    []string
	values  map[string][]byte
	reverse bool
	pos     int
	started bool
}

func (c *memCursor) Seek(target []byte) {
	c.started = true
	t := string(target)
	for i, k := range c.keys {
		if (!c.reverse && k >= t) || (c.reverse && k <= t) {
			c.pos = i
			return
		}
	}
	c.pos = len(c.keys)
}

func (c *memCursor) Valid() bool {
	return c.started && c.pos >= 0 && c.pos < len(c.keys)
}

func (c *memCursor) Next() { c.pos++ }

func (c *memCursor) Key() []byte {
	return []byte(c.keys[c.pos])
}

func (c *memCursor) Value() ([]byte, error) {
	return c.values[c.keys[c.pos]], nil
}

func (c *memCursor) Close() {}

package index

import (
	"bytes"
	"testing"
)

func TestPutGetRoundTripSmallPayload(t *testing.T) {
	engine := newMemEngine()
	store := New(512)

	txn, _ := engine.Begin(true)
	if err := store.Put(txn, 1, []byte("hello")); err != nil {
		t.Fatalf("put: %v", err)
	}
	txn.Commit()

	txn, _ = engine.Begin(false)
	data, found, err := store.Get(txn, 1)
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	if !bytes.Equal(data, []byte("hello")) {
		t.Errorf("got %q", data)
	}

	id, found, err := store.FindID(txn, []byte("hello"))
	if err != nil || !found || id != 1 {
		t.Fatalf("findID: id=%d found=%v err=%v", id, found, err)
	}
}

func TestFindIDMissing(t *testing.T) {
	engine := newMemEngine()
	store := New(512)
	txn, _ := engine.Begin(false)

	_, found, err := store.FindID(txn, []byte("nope"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("expected not found")
	}
}

func TestOverflowBucketChain(t *testing.T) {
	engine := newMemEngine()
	store := New(4) // force everything through the overflow path

	txn, _ := engine.Begin(true)
	if err := store.Put(txn, 1, []byte("payload-one")); err != nil {
		t.Fatalf("put 1: %v", err)
	}
	if err := store.Put(txn, 2, []byte("payload-two")); err != nil {
		t.Fatalf("put 2: %v", err)
	}
	txn.Commit()

	txn, _ = engine.Begin(false)
	id1, found, err := store.FindID(txn, []byte("payload-one"))
	if err != nil || !found || id1 != 1 {
		t.Fatalf("findID payload-one: id=%d found=%v err=%v", id1, found, err)
	}
	id2, found, err := store.FindID(txn, []byte("payload-two"))
	if err != nil || !found || id2 != 2 {
		t.Fatalf("findID payload-two: id=%d found=%v err=%v", id2, found, err)
	}
}

func TestRecoverMaxID(t *testing.T) {
	engine := newMemEngine()
	store := New(512)

	txn, _ := engine.Begin(true)
	store.Put(txn, 3, []byte("a"))
	store.Put(txn, 7, []byte("b"))
	store.Put(txn, 5, []byte("c"))
	txn.Commit()

	txn, _ = engine.Begin(false)
	max, err := store.RecoverMaxID(txn)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if max != 7 {
		t.Errorf("max = %d, want 7", max)
	}
}

func TestRecoverMaxIDEmpty(t *testing.T) {
	engine := newMemEngine()
	store := New(512)
	txn, _ := engine.Begin(false)

	max, err := store.RecoverMaxID(txn)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if max != 0 {
		t.Errorf("max = %d, want 0", max)
	}
}

func TestForEachIDVisitsAscending(t *testing.T) {
	engine := newMemEngine()
	store := New(512)

	txn, _ := engine.Begin(true)
	store.Put(txn, 3, []byte("c"))
	store.Put(txn, 1, []byte("a"))
	store.Put(txn, 2, []byte("b"))
	txn.Commit()

	txn, _ = engine.Begin(false)
	var seen []uint64
	err := store.ForEachID(txn, func(id uint64, payload []byte) error {
		seen = append(seen, id)
		return nil
	})
	if err != nil {
		t.Fatalf("forEach: %v", err)
	}
	if len(seen) != 3 || seen[0] != 1 || seen[1] != 2 || seen[2] != 3 {
		t.Errorf("seen = %v, want [1 2 3]", seen)
	}
}

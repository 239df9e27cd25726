// Package idalloc allocates monotonically increasing value IDs. The
// counter is recovered lazily at startup from the highest ID already
// present in the index rather than persisted separately, so there is
// nothing to keep in sync with the index itself.
package idalloc

import "sync"

// Allocator hands out strictly increasing IDs starting from a recovered
// high-water mark. It supports snapshot/restore so a transaction that
// allocated IDs and then rolled back can give them back, keeping the
// counter free of permanent gaps from aborted work.
type Allocator struct {
	mu   sync.Mutex
	next uint64
}

// New returns an Allocator that will hand out recoveredMax+1 as its
// first ID. Pass 0 when the index is empty.
func New(recoveredMax uint64) *Allocator {
	return &Allocator{next: recoveredMax + 1}
}

// Next returns the next unused ID and advances the counter.
func (a *Allocator) Next() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.next
	a.next++
	return id
}

// Snapshot captures the current counter value so it can be restored if
// the transaction that called Next is rolled back.
func (a *Allocator) Snapshot() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.next
}

// Restore rewinds the counter to a previously captured snapshot, giving
// back IDs allocated by a transaction that then failed or rolled back.
// It never moves the counter forward: if snapshot is already at or past
// the current value there is nothing to give back.
func (a *Allocator) Restore(snapshot uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.next <= snapshot {
		return
	}
	a.next = snapshot
}

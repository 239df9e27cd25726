package valuedict

import "github.com/ontolabs/valuedict/pkg/rdf"

// Revision is an opaque token identifying one generation of a store's
// contents. Every StampedValue a store hands out carries the Revision
// current at the time its ID was resolved; Clear installs a new
// Revision, silently invalidating every previously stamped ID.
type Revision struct {
	store *Store
}

func (r *Revision) isCurrent() bool {
	if r == nil || r.store == nil {
		return false
	}
	return r == r.store.currentRevision()
}

// StampedValue wraps an rdf.Term together with the ID last resolved for
// it and the Revision under which that resolution happened. Store
// methods type-assert incoming terms to *StampedValue so a still-current
// stamp can skip the cache and index entirely.
type StampedValue struct {
	rdf.Term
	id       uint64
	revision *Revision
}

func newStampedValue(term rdf.Term, id uint64, revision *Revision) *StampedValue {
	return &StampedValue{Term: term, id: id, revision: revision}
}

// cachedID returns the stamped ID and true when its revision is still
// the store's current one; otherwise the caller must resolve from
// scratch.
func (v *StampedValue) cachedID() (uint64, bool) {
	if !v.revision.isCurrent() {
		return 0, false
	}
	return v.id, true
}

// Package interner maps arbitrary byte strings (IRIs, literals) to dense
// uint32 term ids and back. Interning is idempotent and monotonic: the
// same bytes always yield the same id for the lifetime of the interner,
// and ids are never recycled. Id 0 is reserved as the "none/absent"
// sentinel.
package interner

import (
	"bytes"
	"errors"

	"github.com/zeebo/xxh3"
)

// ErrCapacityExceeded is returned when the interner cannot issue any more
// ids within its configured capacity.
var ErrCapacityExceeded = errors.New("interner: capacity exceeded")

const initialBuckets = 16 // must be a power of two

// entry is one slot of the open-addressed hash table. An empty slot has
// id == 0 (the sentinel), so slot occupancy and "not interned" share the
// same zero value.
type entry struct {
	hash uint64
	id   uint32
}

// Interner is an open-addressed hash map from byte strings to uint32 ids,
// backed by a parallel vector of owned byte copies for reverse lookup.
// Hashing uses 64-bit xxh3, the same hash family trigo uses (at 128 bits)
// to key its id2str table.
type Interner struct {
	buckets  []entry
	mask     uint64 // len(buckets)-1, buckets is always a power of two
	terms    [][]byte
	maxTerms uint32 // 0 means unbounded
}

// New creates an empty interner. maxTerms bounds the number of ids that can
// ever be issued (0 means unbounded); it is the interner's analogue of the
// store's max_subjects/max_predicates/max_objects capacities.
func New(maxTerms uint32) *Interner {
	it := &Interner{
		buckets:  make([]entry, initialBuckets),
		mask:     uint64(initialBuckets - 1),
		maxTerms: maxTerms,
	}
	it.terms = make([][]byte, 1, 64) // index 0 is the reserved sentinel
	return it
}

// Len returns the number of distinct terms interned so far (not counting
// the id-0 sentinel).
func (it *Interner) Len() int { return len(it.terms) - 1 }

func hash64(b []byte) uint64 {
	return xxh3.Hash(b)
}

// Intern returns the id for key, allocating a new one if key was never seen
// before. Fails with ErrCapacityExceeded once maxTerms ids have been
// issued.
func (it *Interner) Intern(key []byte) (uint32, error) {
	h := hash64(key)
	if id, ok := it.find(h, key); ok {
		return id, nil
	}

	newID := uint32(len(it.terms))
	if it.maxTerms != 0 && newID > it.maxTerms {
		return 0, ErrCapacityExceeded
	}

	if it.needsGrow() {
		it.grow()
	}

	owned := make([]byte, len(key))
	copy(owned, key)
	it.terms = append(it.terms, owned)
	it.insert(h, newID)
	return newID, nil
}

// Lookup returns the original bytes for id, or (nil, false) for id 0 or an
// unknown id.
func (it *Interner) Lookup(id uint32) ([]byte, bool) {
	if id == 0 || int(id) >= len(it.terms) {
		return nil, false
	}
	return it.terms[id], true
}

// find walks the open-addressing probe sequence for hash h, returning the
// id stored for key if present.
func (it *Interner) find(h uint64, key []byte) (uint32, bool) {
	n := uint64(len(it.buckets))
	idx := h & it.mask
	for i := uint64(0); i < n; i++ {
		e := it.buckets[idx]
		if e.id == 0 {
			return 0, false
		}
		if e.hash == h && bytes.Equal(it.terms[e.id], key) {
			return e.id, true
		}
		idx = (idx + 1) & it.mask
	}
	return 0, false
}

// insert places (h, id) into the table via linear probing. Caller
// guarantees the key is not already present and the table has room.
func (it *Interner) insert(h uint64, id uint32) {
	idx := h & it.mask
	for it.buckets[idx].id != 0 {
		idx = (idx + 1) & it.mask
	}
	it.buckets[idx] = entry{hash: h, id: id}
}

func (it *Interner) needsGrow() bool {
	// Keep load factor at or below 0.75.
	return uint64(len(it.terms))*4 >= uint64(len(it.buckets))*3
}

// grow doubles the bucket table and rehashes every live entry.
func (it *Interner) grow() {
	old := it.buckets
	newBuckets := make([]entry, len(old)*2)
	it.buckets = newBuckets
	it.mask = uint64(len(newBuckets) - 1)
	for _, e := range old {
		if e.id == 0 {
			continue
		}
		it.insert(e.hash, e.id)
	}
}

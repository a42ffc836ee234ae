// Package store implements the predicate-indexed bit-matrix triple store
// of spec.md §4.2: add/ask/enumerate over (subject, predicate, object)
// term-id triples, backed by two bit matrices (predicate presence P,
// object presence O) and a table of per-(predicate,subject) posting
// lists L.
//
// This generalizes trigo's internal/store.TripleStore — which drove the
// same add/contains/count operations through a badger transaction over
// nine quad-permutation key-value indexes — onto the literal in-memory bit
// matrix substrate spec.md §3 specifies instead of an on-disk KV engine.
package store

import (
	"iter"
	"sync"

	"github.com/aleksaelezovic/noema/internal/bitmatrix"
	"github.com/aleksaelezovic/noema/internal/posting"
)

// Capacities bounds the three independent id spaces the store's matrices
// are addressed by, per spec.md §3.
type Capacities struct {
	MaxSubjects          uint32
	MaxPredicates        uint32
	MaxObjects           uint32
	PostingListThreshold int // 0 uses posting.DefaultHashThreshold
}

// Store is the bit-matrix-indexed triple set. A Store is safe for any
// number of concurrent readers once no writer is active; callers must
// externally serialize writers, per spec.md §5. The inference engine (a
// sibling package) is the one collaborator allowed to drive a whole
// materialization pass under the same write lock via Lock/Unlock plus the
// *Locked methods below — everyone else uses the locking entry points.
type Store struct {
	mu sync.RWMutex

	caps Capacities

	// P[p][s] set iff some triple (s,p,*) is stored.
	p *bitmatrix.Matrix
	// O[o][s] set iff some triple (s,*,o) is stored.
	o *bitmatrix.Matrix
	// L[p][s] -> posting list of objects.
	l *posting.Table

	// tripleCount is an exact count of distinct (s,p,o) triples, kept for
	// Stats() (a supplemented feature, see SPEC_FULL.md).
	tripleCount int64
}

// New allocates a store with the given capacities. Matrices are allocated
// up front; no resizing ever occurs afterward.
func New(caps Capacities) *Store {
	return &Store{
		caps: caps,
		p:    bitmatrix.New(int(caps.MaxPredicates), int(caps.MaxSubjects)),
		o:    bitmatrix.New(int(caps.MaxObjects), int(caps.MaxSubjects)),
		l:    posting.NewTable(caps.PostingListThreshold),
	}
}

func (s *Store) inSubjectRange(id uint32) bool   { return id < s.caps.MaxSubjects }
func (s *Store) inPredicateRange(id uint32) bool { return id < s.caps.MaxPredicates }
func (s *Store) inObjectRange(id uint32) bool    { return id < s.caps.MaxObjects }

// AddTriple stores (subj, pred, obj). Adding an already-present triple is a
// no-op. Fails with ErrInvalidArgument if any id is the reserved sentinel
// 0, or ErrOutOfRange if any id is at or beyond its matrix's capacity.
func (s *Store) AddTriple(subj, pred, obj uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.AddTripleLocked(subj, pred, obj)
}

// AddTripleLocked is AddTriple for a caller that already holds the store's
// write lock (via Lock) — used by the inference engine, which must run an
// entire materialization pass, including the triples it discovers, under
// one critical section.
func (s *Store) AddTripleLocked(subj, pred, obj uint32) error {
	if subj == 0 || pred == 0 || obj == 0 {
		return ErrInvalidArgument
	}
	if !s.inSubjectRange(subj) || !s.inPredicateRange(pred) || !s.inObjectRange(obj) {
		return ErrOutOfRange
	}

	list := s.l.GetOrCreate(pred, subj)
	added := list.Add(obj)

	s.p.Set(int(pred), int(subj))
	s.o.Set(int(obj), int(subj))

	if added {
		s.tripleCount++
	}
	return nil
}

// Ask reports whether (subj, pred, obj) is present. All arguments must be
// bound (no wildcards); out-of-range ids report false rather than erroring.
func (s *Store) Ask(subj, pred, obj uint32) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.AskLocked(subj, pred, obj)
}

// AskLocked is Ask for a caller that already holds the store's lock
// (read or write).
func (s *Store) AskLocked(subj, pred, obj uint32) bool {
	if subj == 0 || pred == 0 || obj == 0 {
		return false
	}
	if !s.inSubjectRange(subj) || !s.inPredicateRange(pred) || !s.inObjectRange(obj) {
		return false
	}
	if !s.p.Test(int(pred), int(subj)) {
		return false
	}
	return s.l.Get(pred, subj).Contains(obj)
}

// Pattern is one (subject, predicate, object) triple to test in a batch.
type Pattern struct {
	Subject, Predicate, Object uint32
}

// AskBatch evaluates patterns in order-preserving groups of four: first
// every predicate-presence bit in the group, then every object membership
// check, per spec.md §4.2's batching note (grouping exists for pipelining,
// not for parallelism — no goroutines are spawned here).
func (s *Store) AskBatch(patterns []Pattern) []bool {
	results := make([]bool, len(patterns))

	s.mu.RLock()
	defer s.mu.RUnlock()

	const groupSize = 4
	for start := 0; start < len(patterns); start += groupSize {
		end := start + groupSize
		if end > len(patterns) {
			end = len(patterns)
		}
		group := patterns[start:end]
		present := make([]bool, len(group))
		for i, pat := range group {
			present[i] = pat.Subject != 0 && pat.Predicate != 0 && pat.Object != 0 &&
				s.inSubjectRange(pat.Subject) && s.inPredicateRange(pat.Predicate) && s.inObjectRange(pat.Object) &&
				s.p.Test(int(pat.Predicate), int(pat.Subject))
		}
		for i, pat := range group {
			if !present[i] {
				continue
			}
			results[start+i] = s.l.Get(pat.Predicate, pat.Subject).Contains(pat.Object)
		}
	}
	return results
}

// ObjectsFor iterates the objects of (pred, subj), in the posting list's
// iteration order. Empty (no matching triples) rather than erroring for
// out-of-range or absent pairs.
func (s *Store) ObjectsFor(pred, subj uint32) iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		s.forEachObjectLocked(pred, subj, yield)
	}
}

// ForEachObjectLocked is ObjectsFor for a caller that already holds the
// store's lock; used by the inference engine while materializing.
func (s *Store) ForEachObjectLocked(pred, subj uint32, yield func(uint32) bool) {
	s.forEachObjectLocked(pred, subj, yield)
}

func (s *Store) forEachObjectLocked(pred, subj uint32, yield func(uint32) bool) {
	if pred == 0 || subj == 0 || !s.inPredicateRange(pred) || !s.inSubjectRange(subj) {
		return
	}
	list := s.l.Get(pred, subj)
	if list == nil {
		return
	}
	stopped := false
	list.ForEach(func(o uint32) {
		if stopped {
			return
		}
		if !yield(o) {
			stopped = true
		}
	})
}

// CountObjectsFor returns |objects_for(pred, subj)| without materializing
// the sequence, used by the shape validator's min/max-count checks.
func (s *Store) CountObjectsFor(pred, subj uint32) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.CountObjectsForLocked(pred, subj)
}

// CountObjectsForLocked is CountObjectsFor for a caller that already holds
// the store's lock.
func (s *Store) CountObjectsForLocked(pred, subj uint32) int {
	if pred == 0 || subj == 0 || !s.inPredicateRange(pred) || !s.inSubjectRange(subj) {
		return 0
	}
	return s.l.Get(pred, subj).Len()
}

// SubjectsFor iterates subjects s such that (s, pred, obj) is present, by
// walking the predicate row word by word and checking each candidate
// subject's posting list for obj — the algorithm spec.md §4.2 specifies
// verbatim.
func (s *Store) SubjectsFor(pred, obj uint32) iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		s.forEachSubjectLocked(pred, obj, yield)
	}
}

// ForEachSubjectLocked is SubjectsFor for a caller that already holds the
// store's lock.
func (s *Store) ForEachSubjectLocked(pred, obj uint32, yield func(uint32) bool) {
	s.forEachSubjectLocked(pred, obj, yield)
}

func (s *Store) forEachSubjectLocked(pred, obj uint32, yield func(uint32) bool) {
	if pred == 0 || obj == 0 || !s.inPredicateRange(pred) || !s.inObjectRange(obj) {
		return
	}
	s.p.RowBits(int(pred), func(col int) bool {
		subj := uint32(col)
		if !s.l.Get(pred, subj).Contains(obj) {
			return true
		}
		return yield(subj)
	})
}

// Capacities returns the store's configured capacities.
func (s *Store) Capacities() Capacities { return s.caps }

// Stats summarizes store occupancy (a supplemented feature, see
// SPEC_FULL.md — grounded in trigo's TripleStore.Count and
// boutros-sopp.DB.Stats).
type Stats struct {
	TripleCount int64
}

// Stats returns current store statistics. Read-only; never fails.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{TripleCount: s.tripleCount}
}

// PredicateMatrix exposes P for the inference engine's closure
// computations. The inference engine lives in a sibling package and needs
// direct word-parallel access to the same bit matrix the store maintains
// so it can scan which subjects a predicate touches without re-deriving
// that information from the posting table.
func (s *Store) PredicateMatrix() *bitmatrix.Matrix { return s.p }

// ObjectMatrix exposes O, for the same reason as PredicateMatrix.
func (s *Store) ObjectMatrix() *bitmatrix.Matrix { return s.o }

// Lock, Unlock, RLock, and RUnlock expose the store's writer-serialization
// mutex to the inference engine, which must perform a multi-step
// read-materialize-write pass atomically with respect to other writers,
// per spec.md §5.
func (s *Store) Lock()    { s.mu.Lock() }
func (s *Store) Unlock()  { s.mu.Unlock() }
func (s *Store) RLock()   { s.mu.RLock() }
func (s *Store) RUnlock() { s.mu.RUnlock() }

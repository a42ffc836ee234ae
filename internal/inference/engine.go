// Package inference implements the OWL-lite-style reasoning layer of
// spec.md §4.4: declared property characteristics (transitive, symmetric,
// functional), class/property hierarchies, and property chains, closed
// over the same bit-matrix substrate internal/store uses for asserted
// triples.
//
// The engine owns no triples of its own — materialization reads and
// writes through the store it is constructed with, holding the store's
// write lock for the whole pass so a reader never observes a half-closed
// state.
package inference

import (
	"sync"

	"github.com/aleksaelezovic/noema/internal/bitmatrix"
	"github.com/aleksaelezovic/noema/internal/store"
)

// State is the engine's position in spec.md §4.4's state machine:
// UNDECLARED -> DECLARED -> MATERIALIZED, with any tracked add_triple
// returning MATERIALIZED to DECLARED.
type State int

const (
	Undeclared State = iota
	Declared
	Materialized
)

func (s State) String() string {
	switch s {
	case Undeclared:
		return "undeclared"
	case Declared:
		return "declared"
	case Materialized:
		return "materialized"
	default:
		return "unknown"
	}
}

// DefaultIterationCap is the outer fixpoint iteration limit, matching
// spec.md §6's inference_iteration_cap default of 32.
const DefaultIterationCap = 32

type edge struct{ child, parent uint32 }

// FunctionalViolation names a subject that has more than one object under
// a predicate declared functional.
type FunctionalViolation struct {
	Subject, Predicate uint32
}

// Engine holds the declared reasoning axioms for one store and the
// auxiliary closure matrices computed by Materialize.
type Engine struct {
	mu sync.Mutex

	st           *store.Store
	typePredicate uint32
	maxTerm      uint32
	iterationCap int

	state State

	transitive       map[uint32]struct{}
	symmetric        map[uint32]struct{}
	functional       map[uint32]struct{}
	subclassEdges    map[edge]struct{}
	subpropertyEdges map[edge]struct{}
	chains           map[uint32][]uint32

	subclassClosure    *bitmatrix.Matrix
	subpropertyClosure *bitmatrix.Matrix

	violations []FunctionalViolation
}

// NewEngine constructs a reasoning engine over st. typePredicate is the
// term id the caller interned for rdf:type — the engine treats it as a
// fixed convention for subclass projection, the same way a handwritten RDF
// store would. iterationCap <= 0 uses DefaultIterationCap.
func NewEngine(st *store.Store, typePredicate uint32, iterationCap int) *Engine {
	if iterationCap <= 0 {
		iterationCap = DefaultIterationCap
	}
	caps := st.Capacities()
	maxTerm := caps.MaxSubjects
	if caps.MaxPredicates > maxTerm {
		maxTerm = caps.MaxPredicates
	}
	if caps.MaxObjects > maxTerm {
		maxTerm = caps.MaxObjects
	}
	e := &Engine{
		st:               st,
		typePredicate:    typePredicate,
		maxTerm:          maxTerm,
		iterationCap:     iterationCap,
		state:            Undeclared,
		transitive:       make(map[uint32]struct{}),
		symmetric:        make(map[uint32]struct{}),
		functional:       make(map[uint32]struct{}),
		subclassEdges:    make(map[edge]struct{}),
		subpropertyEdges: make(map[edge]struct{}),
		chains:           make(map[uint32][]uint32),
	}
	e.subclassClosure = bitmatrix.New(int(maxTerm), int(maxTerm))
	e.subpropertyClosure = bitmatrix.New(int(maxTerm), int(maxTerm))
	return e
}

// State reports the engine's current state-machine position.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) declared() {
	e.state = Declared
}

// DeclareTransitive marks pid as transitive. Takes effect on the next
// Materialize.
func (e *Engine) DeclareTransitive(pid uint32) error {
	if pid == 0 {
		return ErrInvalidArgument
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transitive[pid] = struct{}{}
	e.declared()
	return nil
}

// DeclareSymmetric marks pid as symmetric.
func (e *Engine) DeclareSymmetric(pid uint32) error {
	if pid == 0 {
		return ErrInvalidArgument
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.symmetric[pid] = struct{}{}
	e.declared()
	return nil
}

// DeclareFunctional marks pid as functional.
func (e *Engine) DeclareFunctional(pid uint32) error {
	if pid == 0 {
		return ErrInvalidArgument
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.functional[pid] = struct{}{}
	e.declared()
	return nil
}

// DeclareSubclass declares child a subclass of parent.
func (e *Engine) DeclareSubclass(child, parent uint32) error {
	if child == 0 || parent == 0 {
		return ErrInvalidArgument
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subclassEdges[edge{child, parent}] = struct{}{}
	e.declared()
	return nil
}

// DeclareSubproperty declares child a sub-property of parent.
func (e *Engine) DeclareSubproperty(child, parent uint32) error {
	if child == 0 || parent == 0 {
		return ErrInvalidArgument
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subpropertyEdges[edge{child, parent}] = struct{}{}
	e.declared()
	return nil
}

// DeclarePropertyChain declares outputPid the composition of chain, which
// must name at least two predicates.
func (e *Engine) DeclarePropertyChain(outputPid uint32, chain []uint32) error {
	if outputPid == 0 || len(chain) < 2 {
		return ErrInvalidArgument
	}
	for _, p := range chain {
		if p == 0 {
			return ErrInvalidArgument
		}
	}
	cp := make([]uint32, len(chain))
	copy(cp, chain)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.chains[outputPid] = cp
	e.declared()
	return nil
}

// NotifyTripleAdded lets the store's writer tell the engine that a triple
// under pred was just added. If pred participates in a declared relation
// and the engine was MATERIALIZED, the closure is invalidated (the engine
// returns to DECLARED) per spec.md §4.4's state diagram.
func (e *Engine) NotifyTripleAdded(pred uint32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Materialized {
		return
	}
	if e.isTracked(pred) {
		e.state = Declared
	}
}

func (e *Engine) isTracked(pred uint32) bool {
	if pred == e.typePredicate {
		return true
	}
	if _, ok := e.transitive[pred]; ok {
		return true
	}
	if _, ok := e.symmetric[pred]; ok {
		return true
	}
	if _, ok := e.functional[pred]; ok {
		return true
	}
	for out, chain := range e.chains {
		if out == pred {
			return true
		}
		for _, p := range chain {
			if p == pred {
				return true
			}
		}
	}
	for ed := range e.subpropertyEdges {
		if ed.child == pred || ed.parent == pred {
			return true
		}
	}
	return false
}

// Materialize runs the ordered fixpoint pass of spec.md §4.4: subproperty
// closure, subclass closure, symmetric closures, transitive closures,
// property chains, repeated until no stage produces a new bit or the
// iteration cap is hit. On ErrDidNotConverge the store retains whatever
// partial closure was computed — materialization is not rolled back, per
// the open-question decision recorded in DESIGN.md.
func (e *Engine) Materialize() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.st.Lock()
	defer e.st.Unlock()

	converged := false
	for iter := 0; iter < e.iterationCap; iter++ {
		changed := false
		if e.materializeSubpropertyLocked() {
			changed = true
		}
		if e.materializeSubclassLocked() {
			changed = true
		}
		for pred := range e.symmetric {
			if e.materializeSymmetricLocked(pred) {
				changed = true
			}
		}
		for pred := range e.transitive {
			if e.materializeTransitiveLocked(pred) {
				changed = true
			}
		}
		for out, chain := range e.chains {
			if e.materializeChainLocked(out, chain) {
				changed = true
			}
		}
		if !changed {
			converged = true
			break
		}
	}

	e.recomputeFunctionalViolationsLocked()

	if !converged {
		return ErrDidNotConverge
	}
	e.state = Materialized
	return nil
}

func (e *Engine) materializeSubpropertyLocked() bool {
	adj := e.closureFromEdges(e.subpropertyEdges)
	e.subpropertyClosure = adj

	changed := false
	for ed := range e.subpropertyEdges {
		child := ed.child
		adj.RowBits(int(child), func(col int) bool {
			ancestor := uint32(col)
			if ancestor == child {
				return true
			}
			if e.projectPredicateLocked(child, ancestor) {
				changed = true
			}
			return true
		})
	}
	return changed
}

func (e *Engine) materializeSubclassLocked() bool {
	adj := e.closureFromEdges(e.subclassEdges)
	e.subclassClosure = adj

	if e.typePredicate == 0 {
		return false
	}

	changed := false
	for ed := range e.subclassEdges {
		child := ed.child
		adj.RowBits(int(child), func(col int) bool {
			ancestor := uint32(col)
			if ancestor == child {
				return true
			}
			e.st.ForEachSubjectLocked(e.typePredicate, child, func(s uint32) bool {
				if !e.st.AskLocked(s, e.typePredicate, ancestor) {
					e.st.AddTripleLocked(s, e.typePredicate, ancestor)
					changed = true
				}
				return true
			})
			return true
		})
	}
	return changed
}

// projectPredicateLocked copies every (s, src, o) triple into (s, dst, o),
// implementing subproperty-to-superproperty derivation.
func (e *Engine) projectPredicateLocked(src, dst uint32) bool {
	changed := false
	e.st.PredicateMatrix().RowBits(int(src), func(col int) bool {
		subj := uint32(col)
		e.st.ForEachObjectLocked(src, subj, func(obj uint32) bool {
			if !e.st.AskLocked(subj, dst, obj) {
				e.st.AddTripleLocked(subj, dst, obj)
				changed = true
			}
			return true
		})
		return true
	})
	return changed
}

func (e *Engine) materializeSymmetricLocked(pred uint32) bool {
	adj := e.buildAdjacencyLocked(pred)
	changed := false
	for s := 0; s < adj.Rows(); s++ {
		adj.RowBits(s, func(col int) bool {
			o := col
			if !e.st.AskLocked(uint32(o), pred, uint32(s)) {
				e.st.AddTripleLocked(uint32(o), pred, uint32(s))
				changed = true
			}
			return true
		})
	}
	return changed
}

func (e *Engine) materializeTransitiveLocked(pred uint32) bool {
	adj := e.buildAdjacencyLocked(pred)
	closureFixpoint(adj, e.iterationCap)

	changed := false
	for s := 0; s < adj.Rows(); s++ {
		adj.RowBits(s, func(col int) bool {
			o := uint32(col)
			if !e.st.AskLocked(uint32(s), pred, o) {
				e.st.AddTripleLocked(uint32(s), pred, o)
				changed = true
			}
			return true
		})
	}
	return changed
}

func (e *Engine) materializeChainLocked(output uint32, chain []uint32) bool {
	frontier := e.buildAdjacencyLocked(chain[0])
	for _, p := range chain[1:] {
		next := e.buildAdjacencyLocked(p)
		frontier = composeBool(frontier, next)
	}

	changed := false
	for s := 0; s < frontier.Rows(); s++ {
		frontier.RowBits(s, func(col int) bool {
			o := uint32(col)
			if !e.st.AskLocked(uint32(s), output, o) {
				e.st.AddTripleLocked(uint32(s), output, o)
				changed = true
			}
			return true
		})
	}
	return changed
}

// buildAdjacencyLocked materializes a dense maxTerm x maxTerm adjacency
// matrix for pred from the store's current posting lists, for use as the
// M_p of spec.md §4.4's closure algorithms.
func (e *Engine) buildAdjacencyLocked(pred uint32) *bitmatrix.Matrix {
	adj := bitmatrix.New(int(e.maxTerm), int(e.maxTerm))
	e.st.PredicateMatrix().RowBits(int(pred), func(col int) bool {
		subj := uint32(col)
		e.st.ForEachObjectLocked(pred, subj, func(obj uint32) bool {
			adj.Set(int(subj), int(obj))
			return true
		})
		return true
	})
	return adj
}

func (e *Engine) closureFromEdges(edges map[edge]struct{}) *bitmatrix.Matrix {
	adj := bitmatrix.New(int(e.maxTerm), int(e.maxTerm))
	for i := 0; i < int(e.maxTerm); i++ {
		adj.Set(i, i)
	}
	for ed := range edges {
		adj.Set(int(ed.child), int(ed.parent))
	}
	closureFixpoint(adj, e.iterationCap)
	return adj
}

// closureFixpoint computes the transitive closure of adjacency matrix m in
// place: m <- m v (m . m), repeated until no bit changes or iterationCap is
// reached. It adds no diagonal bits of its own; the result is reflexive only
// when m's diagonal is already set (as closureFromEdges does). Reports
// whether it converged before the cap.
func closureFixpoint(m *bitmatrix.Matrix, iterationCap int) bool {
	for iter := 0; iter < iterationCap; iter++ {
		changed := false
		for s := 0; s < m.Rows(); s++ {
			m.RowBits(s, func(mid int) bool {
				if m.OrRowInto(s, mid) {
					changed = true
				}
				return true
			})
		}
		if !changed {
			return true
		}
	}
	return false
}

// composeBool returns a new matrix whose row s is the union of b's rows
// over every mid such that a[s][mid] is set — boolean matrix
// multiplication for property-chain composition.
func composeBool(a, b *bitmatrix.Matrix) *bitmatrix.Matrix {
	out := bitmatrix.New(a.Rows(), b.Cols())
	for s := 0; s < a.Rows(); s++ {
		a.RowBits(s, func(mid int) bool {
			out.OrBits(s, b.Row(mid))
			return true
		})
	}
	return out
}

func (e *Engine) recomputeFunctionalViolationsLocked() {
	e.violations = e.violations[:0]
	for pred := range e.functional {
		e.st.PredicateMatrix().RowBits(int(pred), func(col int) bool {
			subj := uint32(col)
			if e.st.CountObjectsForLocked(pred, subj) > 1 {
				e.violations = append(e.violations, FunctionalViolation{Subject: subj, Predicate: pred})
			}
			return true
		})
	}
}

// FunctionalViolations returns every (subject, predicate) pair where a
// predicate declared functional has more than one object, as of the last
// Materialize call.
func (e *Engine) FunctionalViolations() []FunctionalViolation {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]FunctionalViolation, len(e.violations))
	copy(out, e.violations)
	return out
}

// CheckClass reports whether node is a member of classID, directly or via
// the materialized subclass closure, per spec.md §4.3's
// check_class(n,c) = exists c'. ask(n, rdf:type, c') and
// subclass_closure[c'][c].
func (e *Engine) CheckClass(node, classID uint32) bool {
	e.st.RLock()
	defer e.st.RUnlock()
	return e.CheckClassLocked(node, classID)
}

// CheckClassLocked is CheckClass for a caller that already holds the
// store's read or write lock.
func (e *Engine) CheckClassLocked(node, classID uint32) bool {
	if e.st.AskLocked(node, e.typePredicate, classID) {
		return true
	}
	e.mu.Lock()
	materialized := e.state == Materialized
	closure := e.subclassClosure
	e.mu.Unlock()
	if !materialized {
		return false
	}
	found := false
	e.st.ForEachObjectLocked(e.typePredicate, node, func(cPrime uint32) bool {
		if closure.Test(int(cPrime), int(classID)) {
			found = true
			return false
		}
		return true
	})
	return found
}

// AskWithReasoning answers (s,p,o) against the materialized closure,
// triggering materialization first if the engine is not already
// MATERIALIZED, per spec.md §4.4.
func (e *Engine) AskWithReasoning(s, p, o uint32) (bool, error) {
	e.mu.Lock()
	needsMaterialize := e.state != Materialized
	e.mu.Unlock()

	if needsMaterialize {
		if err := e.Materialize(); err != nil {
			return e.st.Ask(s, p, o), err
		}
	}
	return e.st.Ask(s, p, o), nil
}

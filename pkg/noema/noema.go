// Package noema is the public façade over the in-memory semantic
// knowledge engine: term interning, the predicate-indexed triple store,
// OWL-lite reasoning, SHACL-lite shape validation, and a text template
// renderer, wired together behind one Store handle per spec.md §6.
package noema

import (
	"iter"

	"github.com/aleksaelezovic/noema/internal/inference"
	"github.com/aleksaelezovic/noema/internal/interner"
	"github.com/aleksaelezovic/noema/internal/shapes"
	"github.com/aleksaelezovic/noema/internal/store"
	"github.com/aleksaelezovic/noema/internal/template"
)

// Re-exported types so collaborators never need to import internal
// packages directly.
type (
	Pattern             = store.Pattern
	Stats               = store.Stats
	ShapeId             = shapes.ShapeId
	Constraint          = shapes.Constraint
	ConstraintKind      = shapes.ConstraintKind
	ShapeResult         = shapes.Result
	Violation           = shapes.Violation
	FunctionalViolation = inference.FunctionalViolation
	ReasoningState      = inference.State
	Context             = template.Context
	Filter              = template.Filter
	StringValue         = template.StringValue
	BoolValue           = template.BoolValue
	SequenceValue       = template.SequenceValue
)

const (
	KindMinCount      = shapes.KindMinCount
	KindMaxCount      = shapes.KindMaxCount
	KindHasProperty   = shapes.KindHasProperty
	KindAllowedValues = shapes.KindAllowedValues
	KindDatatype      = shapes.KindDatatype
)

const (
	Undeclared  = inference.Undeclared
	Declared    = inference.Declared
	Materialized = inference.Materialized
)

// typePredicateTerm is the fixed byte string the façade interns as the
// engine's rdf:type convention at store creation.
const typePredicateTerm = "rdf:type"

// Config bundles create_store's capacities and the tunables of §6's
// configuration table.
type Config struct {
	MaxSubjects   uint32
	MaxPredicates uint32
	MaxObjects    uint32

	// PostingListHashThreshold is the size at which L[p][s] upgrades from
	// array to roaring bitmap. 0 uses posting.DefaultHashThreshold (32).
	PostingListHashThreshold int

	// InferenceIterationCap bounds materialize's outer fixpoint loop. 0
	// uses inference.DefaultIterationCap (32).
	InferenceIterationCap int

	// TemplateCacheCapacity is the parsed-template LRU size. 0 disables
	// caching.
	TemplateCacheCapacity int
}

// Store is a single store handle: interner + triple store + reasoning
// engine + shape validator + template engine, matching spec.md §6's
// StoreHandle.
type Store struct {
	terms         *interner.Interner
	triples       *store.Store
	engine        *inference.Engine
	validator     *shapes.Validator
	templates     *template.Engine
	typePredicate uint32
}

// CreateStore allocates a new store with the given capacities and
// tunables.
func CreateStore(cfg Config) (*Store, error) {
	maxTerm := cfg.MaxSubjects
	if cfg.MaxPredicates > maxTerm {
		maxTerm = cfg.MaxPredicates
	}
	if cfg.MaxObjects > maxTerm {
		maxTerm = cfg.MaxObjects
	}

	triples := store.New(store.Capacities{
		MaxSubjects:          cfg.MaxSubjects,
		MaxPredicates:        cfg.MaxPredicates,
		MaxObjects:           cfg.MaxObjects,
		PostingListThreshold: cfg.PostingListHashThreshold,
	})
	terms := interner.New(maxTerm)

	typePredicate, err := terms.Intern([]byte(typePredicateTerm))
	if err != nil {
		return nil, wrapInternErr(err)
	}

	engine := inference.NewEngine(triples, typePredicate, cfg.InferenceIterationCap)
	validator := shapes.NewValidator(triples, engine)
	templates := template.NewEngine(cfg.TemplateCacheCapacity)

	return &Store{
		terms:         terms,
		triples:       triples,
		engine:        engine,
		validator:     validator,
		templates:     templates,
		typePredicate: typePredicate,
	}, nil
}

// Close releases no resources — the core is purely in-memory and
// garbage-collected — but exists so collaborators used to an explicit
// destroy_store lifecycle have something to call.
func (s *Store) Close() {}

// TypePredicate returns the term id the store interned for rdf:type, the
// predicate the reasoning engine treats specially for subclass
// projection and check_class.
func (s *Store) TypePredicate() uint32 { return s.typePredicate }

// Intern returns the dense term id for term, allocating one if unseen.
func (s *Store) Intern(term []byte) (uint32, error) {
	id, err := s.terms.Intern(term)
	return id, wrapInternErr(err)
}

// Lookup returns the original bytes interned under id.
func (s *Store) Lookup(id uint32) ([]byte, bool) {
	return s.terms.Lookup(id)
}

// AddTriple stores (subj, pred, obj) and notifies the reasoning engine so
// a materialized closure touching pred is correctly invalidated.
func (s *Store) AddTriple(subj, pred, obj uint32) error {
	err := s.triples.AddTriple(subj, pred, obj)
	if err == nil {
		s.engine.NotifyTripleAdded(pred)
	}
	return wrapStoreErr(err)
}

// Ask reports whether (subj, pred, obj) is present in the store, whether
// asserted or written by an earlier Materialize. It does not trigger
// materialization itself.
func (s *Store) Ask(subj, pred, obj uint32) bool {
	return s.triples.Ask(subj, pred, obj)
}

// AskBatch evaluates patterns in pipelined groups of four.
func (s *Store) AskBatch(patterns []Pattern) []bool {
	return s.triples.AskBatch(patterns)
}

// ObjectsFor iterates the objects of (pred, subj).
func (s *Store) ObjectsFor(pred, subj uint32) iter.Seq[uint32] {
	return s.triples.ObjectsFor(pred, subj)
}

// SubjectsFor iterates the subjects s such that (s, pred, obj) holds.
func (s *Store) SubjectsFor(pred, obj uint32) iter.Seq[uint32] {
	return s.triples.SubjectsFor(pred, obj)
}

// CountObjectsFor returns |objects_for(pred, subj)|.
func (s *Store) CountObjectsFor(pred, subj uint32) int {
	return s.triples.CountObjectsFor(pred, subj)
}

// Stats reports store occupancy.
func (s *Store) Stats() Stats {
	return s.triples.Stats()
}

// DeclareTransitive marks pid transitive, effective on the next
// Materialize.
func (s *Store) DeclareTransitive(pid uint32) error {
	return wrapInferenceErr(s.engine.DeclareTransitive(pid))
}

// DeclareSymmetric marks pid symmetric.
func (s *Store) DeclareSymmetric(pid uint32) error {
	return wrapInferenceErr(s.engine.DeclareSymmetric(pid))
}

// DeclareFunctional marks pid functional.
func (s *Store) DeclareFunctional(pid uint32) error {
	return wrapInferenceErr(s.engine.DeclareFunctional(pid))
}

// DeclareSubclass declares child a subclass of parent.
func (s *Store) DeclareSubclass(child, parent uint32) error {
	return wrapInferenceErr(s.engine.DeclareSubclass(child, parent))
}

// DeclareSubproperty declares child a sub-property of parent.
func (s *Store) DeclareSubproperty(child, parent uint32) error {
	return wrapInferenceErr(s.engine.DeclareSubproperty(child, parent))
}

// DeclarePropertyChain declares outputPid the composition of chain
// (length >= 2).
func (s *Store) DeclarePropertyChain(outputPid uint32, chain []uint32) error {
	return wrapInferenceErr(s.engine.DeclarePropertyChain(outputPid, chain))
}

// Materialize runs the reasoning engine's ordered fixpoint pass.
func (s *Store) Materialize() error {
	return wrapInferenceErr(s.engine.Materialize())
}

// ReasoningState reports the engine's state-machine position.
func (s *Store) ReasoningState() ReasoningState {
	return s.engine.State()
}

// AskWithReasoning materializes first if needed, then asks.
func (s *Store) AskWithReasoning(subj, pred, obj uint32) (bool, error) {
	ok, err := s.engine.AskWithReasoning(subj, pred, obj)
	return ok, wrapInferenceErr(err)
}

// CheckClass reports class membership, direct or via subclass closure.
func (s *Store) CheckClass(node, classID uint32) bool {
	return s.engine.CheckClass(node, classID)
}

// FunctionalViolations enumerates (subject, predicate) pairs that break a
// declared functional constraint, as of the last Materialize.
func (s *Store) FunctionalViolations() []FunctionalViolation {
	return s.engine.FunctionalViolations()
}

// DefineShape stores shape constraints under name, replacing any prior
// shape with that name.
func (s *Store) DefineShape(name string, targetClass uint32, constraints []Constraint) ShapeId {
	return s.validator.DefineShape(name, targetClass, constraints)
}

// MinCount reports whether node has at least k objects under pid.
func (s *Store) MinCount(node, pid uint32, k int) bool {
	return s.validator.MinCount(node, pid, k)
}

// MaxCount reports whether node has at most k objects under pid.
func (s *Store) MaxCount(node, pid uint32, k int) bool {
	return s.validator.MaxCount(node, pid, k)
}

// HasProperty reports whether node has at least one object under pid.
func (s *Store) HasProperty(node, pid uint32) bool {
	return s.validator.HasProperty(node, pid)
}

// AllowedValues reports whether every object of (node, pid, *) is in
// allowed.
func (s *Store) AllowedValues(node, pid uint32, allowed []uint32) bool {
	return s.validator.AllowedValues(node, pid, allowed)
}

// Datatype reports whether every object of (node, pid, *) belongs to
// class dtID.
func (s *Store) Datatype(node, pid, dtID uint32) bool {
	return s.validator.Datatype(node, pid, dtID)
}

// ValidateShape evaluates every constraint of shape against node,
// collecting all violations.
func (s *Store) ValidateShape(node uint32, shape string) (ShapeResult, error) {
	r, err := s.validator.ValidateShape(node, shape)
	return r, wrapShapesErr(err)
}

// ValidateShapeFast stops at the first violation.
func (s *Store) ValidateShapeFast(node uint32, shape string) (ShapeResult, error) {
	r, err := s.validator.ValidateShapeFast(node, shape)
	return r, wrapShapesErr(err)
}

// ValidateBatch validates every node against shape, order-preserving.
func (s *Store) ValidateBatch(nodes []uint32, shape string) ([]ShapeResult, error) {
	r, err := s.validator.ValidateBatch(nodes, shape)
	return r, wrapShapesErr(err)
}

// Render parses (or reuses a cached parse of) src and renders it against
// ctx.
func (s *Store) Render(src string, ctx Context) (string, error) {
	out, err := s.templates.Render(src, ctx)
	return out, wrapTemplateErr(err)
}

// RegisterFilter adds or replaces a template filter by name.
func (s *Store) RegisterFilter(name string, fn Filter) {
	s.templates.RegisterFilter(name, fn)
}

// RegisteredFilters lists every filter name currently registered.
func (s *Store) RegisteredFilters() []string {
	return s.templates.RegisteredFilters()
}

// Package shapes implements the SHACL-lite shape validator of spec.md
// §4.3: class, cardinality, allowed-value, and datatype constraints
// evaluated against a node, in the shape's declared constraint order.
//
// Validation never fails on its own account — a constraint either passes
// or contributes a violation to the result. Only an unknown shape name
// fails the call.
package shapes

import (
	"fmt"
	"sync"

	"github.com/aleksaelezovic/noema/internal/inference"
	"github.com/aleksaelezovic/noema/internal/store"
)

// ConstraintKind identifies which of the fixed constraint shapes a
// Constraint value carries, dispatched by a switch over this closed set
// of kinds rather than by name lookup.
type ConstraintKind int

const (
	KindMinCount ConstraintKind = iota
	KindMaxCount
	KindHasProperty
	KindAllowedValues
	KindDatatype
)

func (k ConstraintKind) String() string {
	switch k {
	case KindMinCount:
		return "min_count"
	case KindMaxCount:
		return "max_count"
	case KindHasProperty:
		return "has_property"
	case KindAllowedValues:
		return "allowed_values"
	case KindDatatype:
		return "datatype"
	default:
		return "unknown"
	}
}

// Constraint is one clause of a shape. Only the fields relevant to Kind
// are read.
type Constraint struct {
	Kind          ConstraintKind
	Property      uint32
	Count         int
	AllowedValues []uint32
	Datatype      uint32
}

// ShapeId names a defined shape; shapes are keyed by name, and defining a
// shape under an existing name replaces it.
type ShapeId = string

// Shape is a named, ordered set of constraints targeting a class.
type Shape struct {
	Name        string
	TargetClass uint32
	Constraints []Constraint
}

// Violation records one failed constraint.
type Violation struct {
	Kind     ConstraintKind
	Property uint32
	Details  string
}

// Result is the outcome of validating one node against one shape.
type Result struct {
	Pass       bool
	Violations []Violation
}

// Validator holds defined shapes and evaluates them against a store's
// triples, consulting the inference engine for class membership.
type Validator struct {
	mu     sync.RWMutex
	st     *store.Store
	engine *inference.Engine
	shapes map[string]*Shape
}

// NewValidator constructs a validator over st, using engine for
// check_class's subclass-closure lookups.
func NewValidator(st *store.Store, engine *inference.Engine) *Validator {
	return &Validator{
		st:     st,
		engine: engine,
		shapes: make(map[string]*Shape),
	}
}

// DefineShape stores shape constraints under name, replacing any shape
// previously defined with that name. Defining a shape never validates
// anything by itself.
func (v *Validator) DefineShape(name string, targetClass uint32, constraints []Constraint) ShapeId {
	cp := make([]Constraint, len(constraints))
	copy(cp, constraints)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.shapes[name] = &Shape{Name: name, TargetClass: targetClass, Constraints: cp}
	return ShapeId(name)
}

func (v *Validator) lookup(name string) (*Shape, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	shape, ok := v.shapes[name]
	if !ok {
		return nil, ErrUnknownShape
	}
	return shape, nil
}

// CheckClass reports whether node is a member of classID, directly
// asserted or via the materialized subclass closure.
func (v *Validator) CheckClass(node, classID uint32) bool {
	return v.engine.CheckClass(node, classID)
}

// MinCount reports whether node has at least k objects under pid.
func (v *Validator) MinCount(node, pid uint32, k int) bool {
	return v.st.CountObjectsFor(pid, node) >= k
}

// MaxCount reports whether node has at most k objects under pid.
func (v *Validator) MaxCount(node, pid uint32, k int) bool {
	return v.st.CountObjectsFor(pid, node) <= k
}

// HasProperty reports whether node has at least one object under pid.
func (v *Validator) HasProperty(node, pid uint32) bool {
	return v.MinCount(node, pid, 1)
}

// AllowedValues reports whether every object of (node, pid, *) is a
// member of allowed. An empty object set is vacuously true.
func (v *Validator) AllowedValues(node, pid uint32, allowed []uint32) bool {
	set := make(map[uint32]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	ok := true
	for o := range v.st.ObjectsFor(pid, node) {
		if _, member := set[o]; !member {
			ok = false
			break
		}
	}
	return ok
}

// Datatype reports whether every object of (node, pid, *) is a member of
// class dtID. Objects are collected before any class check runs: ObjectsFor
// holds the store's read lock for its entire iteration, and CheckClass
// re-acquires that same lock, so checking class membership from inside the
// loop body would nest two RLocks on one goroutine — safe alone, but a
// deadlock risk the instant a writer's Lock() is queued in between.
func (v *Validator) Datatype(node, pid, dtID uint32) bool {
	var objects []uint32
	for o := range v.st.ObjectsFor(pid, node) {
		objects = append(objects, o)
	}
	for _, o := range objects {
		if !v.CheckClass(o, dtID) {
			return false
		}
	}
	return true
}

func (v *Validator) evalConstraint(node uint32, c Constraint) (bool, string) {
	switch c.Kind {
	case KindMinCount:
		if v.MinCount(node, c.Property, c.Count) {
			return true, ""
		}
		return false, fmt.Sprintf("fewer than %d values", c.Count)
	case KindMaxCount:
		if v.MaxCount(node, c.Property, c.Count) {
			return true, ""
		}
		return false, fmt.Sprintf("more than %d values", c.Count)
	case KindHasProperty:
		if v.HasProperty(node, c.Property) {
			return true, ""
		}
		return false, "required property is missing"
	case KindAllowedValues:
		if v.AllowedValues(node, c.Property, c.AllowedValues) {
			return true, ""
		}
		return false, "object outside the allowed set"
	case KindDatatype:
		if v.Datatype(node, c.Property, c.Datatype) {
			return true, ""
		}
		return false, "object has the wrong datatype"
	default:
		return false, "unrecognized constraint kind"
	}
}

// ValidateShape evaluates every constraint of shape against node, in
// declaration order, collecting all violations (no short-circuit).
func (v *Validator) ValidateShape(node uint32, shapeName string) (Result, error) {
	shape, err := v.lookup(shapeName)
	if err != nil {
		return Result{}, err
	}
	var violations []Violation
	for _, c := range shape.Constraints {
		if ok, details := v.evalConstraint(node, c); !ok {
			violations = append(violations, Violation{Kind: c.Kind, Property: c.Property, Details: details})
		}
	}
	return Result{Pass: len(violations) == 0, Violations: violations}, nil
}

// ValidateShapeFast is ValidateShape but stops at the first violation.
func (v *Validator) ValidateShapeFast(node uint32, shapeName string) (Result, error) {
	shape, err := v.lookup(shapeName)
	if err != nil {
		return Result{}, err
	}
	for _, c := range shape.Constraints {
		if ok, details := v.evalConstraint(node, c); !ok {
			return Result{Pass: false, Violations: []Violation{{Kind: c.Kind, Property: c.Property, Details: details}}}, nil
		}
	}
	return Result{Pass: true}, nil
}

// ValidateBatch validates every node against shape, order-preserving. If
// the shape name is unknown, the whole call fails and no results are
// returned.
func (v *Validator) ValidateBatch(nodes []uint32, shapeName string) ([]Result, error) {
	shape, err := v.lookup(shapeName)
	if err != nil {
		return nil, err
	}
	results := make([]Result, len(nodes))
	for i, node := range nodes {
		var violations []Violation
		for _, c := range shape.Constraints {
			if ok, details := v.evalConstraint(node, c); !ok {
				violations = append(violations, Violation{Kind: c.Kind, Property: c.Property, Details: details})
			}
		}
		results[i] = Result{Pass: len(violations) == 0, Violations: violations}
	}
	return results, nil
}

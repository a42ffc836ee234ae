package inference

import "errors"

// Sentinel errors for the inference engine, matching spec.md §7's error
// kinds that apply to reasoning declarations and materialization.
var (
	// ErrInvalidArgument is returned for a property chain of fewer than two
	// predicates or a declaration naming the reserved sentinel id 0.
	ErrInvalidArgument = errors.New("inference: invalid argument")

	// ErrDidNotConverge is returned when materialize exceeds its iteration
	// cap. The store is left in its most-recent consistent state — the
	// partial closure computed so far, not rolled back.
	ErrDidNotConverge = errors.New("inference: did not converge")
)

package noema

import (
	"errors"
	"fmt"

	"github.com/aleksaelezovic/noema/internal/inference"
	"github.com/aleksaelezovic/noema/internal/interner"
	"github.com/aleksaelezovic/noema/internal/shapes"
	"github.com/aleksaelezovic/noema/internal/store"
	"github.com/aleksaelezovic/noema/internal/template"
)

// Kind is the closed set of error kinds spec.md §7 defines for the core.
type Kind int

const (
	KindOutOfRange Kind = iota
	KindInvalidArgument
	KindCapacityExceeded
	KindOutOfMemory
	KindUnknownShape
	KindUnknownFilter
	KindParseError
	KindFilterTypeMismatch
	KindInferenceDidNotConverge
)

func (k Kind) String() string {
	switch k {
	case KindOutOfRange:
		return "OutOfRange"
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindCapacityExceeded:
		return "CapacityExceeded"
	case KindOutOfMemory:
		return "OutOfMemory"
	case KindUnknownShape:
		return "UnknownShape"
	case KindUnknownFilter:
		return "UnknownFilter"
	case KindParseError:
		return "ParseError"
	case KindFilterTypeMismatch:
		return "FilterTypeMismatch"
	case KindInferenceDidNotConverge:
		return "InferenceDidNotConverge"
	default:
		return "Unknown"
	}
}

// Error is the single error type the façade returns, wrapping whichever
// internal sentinel produced it so collaborators can branch on Kind
// without importing internal packages.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("noema: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// wrapStoreErr translates a store-package sentinel into a façade Error.
func wrapStoreErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrOutOfRange):
		return &Error{Kind: KindOutOfRange, Err: err}
	case errors.Is(err, store.ErrInvalidArgument):
		return &Error{Kind: KindInvalidArgument, Err: err}
	case errors.Is(err, store.ErrOutOfMemory):
		return &Error{Kind: KindOutOfMemory, Err: err}
	default:
		return &Error{Kind: KindInvalidArgument, Err: err}
	}
}

func wrapInternErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, interner.ErrCapacityExceeded):
		return &Error{Kind: KindCapacityExceeded, Err: err}
	default:
		return &Error{Kind: KindInvalidArgument, Err: err}
	}
}

func wrapInferenceErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, inference.ErrDidNotConverge):
		return &Error{Kind: KindInferenceDidNotConverge, Err: err}
	case errors.Is(err, inference.ErrInvalidArgument):
		return &Error{Kind: KindInvalidArgument, Err: err}
	default:
		return &Error{Kind: KindInvalidArgument, Err: err}
	}
}

func wrapShapesErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, shapes.ErrUnknownShape):
		return &Error{Kind: KindUnknownShape, Err: err}
	default:
		return &Error{Kind: KindInvalidArgument, Err: err}
	}
}

func wrapTemplateErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, template.ErrUnknownFilter):
		return &Error{Kind: KindUnknownFilter, Err: err}
	default:
		var parseErr *template.ParseError
		if errors.As(err, &parseErr) {
			return &Error{Kind: KindParseError, Err: err}
		}
		var mismatch *template.FilterTypeMismatchError
		if errors.As(err, &mismatch) {
			return &Error{Kind: KindFilterTypeMismatch, Err: err}
		}
		return &Error{Kind: KindInvalidArgument, Err: err}
	}
}

package shapes

import "errors"

// ErrUnknownShape is returned when a shape name not registered via
// DefineShape is referenced.
var ErrUnknownShape = errors.New("shapes: unknown shape")

package template

import (
	"strconv"
	"strings"
)

// Filter is the stable callback contract spec.md §6 specifies for both
// core and host-registered filters: take the input string and an
// optional argument, return the transformed string or an error.
type Filter func(input string, arg *string) (string, error)

// Registry maps filter names to their implementations. The zero value is
// not usable; use NewRegistry. Lookup by name replaces string-based
// dispatch with a closed set of function values, per spec.md §9.
type Registry struct {
	filters map[string]Filter
}

// NewRegistry returns a registry pre-populated with the core filters:
// upper, lower, capitalize, length, trim, default.
func NewRegistry() *Registry {
	r := &Registry{filters: make(map[string]Filter)}
	r.Register("upper", filterUpper)
	r.Register("lower", filterLower)
	r.Register("capitalize", filterCapitalize)
	r.Register("length", filterLength)
	r.Register("trim", filterTrim)
	r.Register("default", filterDefault)
	return r
}

// Register adds or replaces the filter named name.
func (r *Registry) Register(name string, fn Filter) {
	r.filters[name] = fn
}

// Lookup returns the filter named name, or ErrUnknownFilter. The parser
// calls this while building a VarNode so an unknown filter name fails at
// parse time; render calls it again to fetch the implementation.
func (r *Registry) Lookup(name string) (Filter, error) {
	fn, ok := r.filters[name]
	if !ok {
		return nil, ErrUnknownFilter
	}
	return fn, nil
}

func filterUpper(input string, _ *string) (string, error) {
	return strings.ToUpper(input), nil
}

func filterLower(input string, _ *string) (string, error) {
	return strings.ToLower(input), nil
}

func filterCapitalize(input string, _ *string) (string, error) {
	if input == "" {
		return input, nil
	}
	return strings.ToUpper(input[:1]) + input[1:], nil
}

func filterLength(input string, _ *string) (string, error) {
	return strconv.Itoa(len([]rune(input))), nil
}

func filterTrim(input string, _ *string) (string, error) {
	return strings.TrimSpace(input), nil
}

// filterDefault substitutes arg when input is empty; it is the documented
// override of the "unknown variable is empty string" rule.
func filterDefault(input string, arg *string) (string, error) {
	if input != "" {
		return input, nil
	}
	if arg == nil {
		return input, nil
	}
	return *arg, nil
}

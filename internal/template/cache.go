package template

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Engine parses and renders templates, caching parsed trees by exact
// source bytes in an LRU, per spec.md §4.5. The cache is safe for
// concurrent readers; inserts serialize internally (golang-lru/v2 does
// its own locking).
type Engine struct {
	cache    *lru.Cache[string, []Node]
	registry *Registry
}

// NewEngine builds a template engine. capacity <= 0 disables caching
// (every Render reparses), matching spec.md §6's
// template_cache_capacity = 0 convention.
func NewEngine(capacity int) *Engine {
	e := &Engine{registry: NewRegistry()}
	if capacity > 0 {
		c, _ := lru.New[string, []Node](capacity)
		e.cache = c
	}
	return e
}

// RegisterFilter adds or replaces a filter by name, available to every
// subsequent Render call.
func (e *Engine) RegisterFilter(name string, fn Filter) {
	e.registry.Register(name, fn)
}

// RegisteredFilters lists the names of every filter currently registered,
// core and host-added alike (a supplemented introspection feature, see
// SPEC_FULL.md).
func (e *Engine) RegisteredFilters() []string {
	names := make([]string, 0, len(e.registry.filters))
	for name := range e.registry.filters {
		names = append(names, name)
	}
	return names
}

// Render parses src (reusing a cached tree if present) and renders it
// against ctx.
func (e *Engine) Render(src string, ctx Context) (string, error) {
	nodes, err := e.parse(src)
	if err != nil {
		return "", err
	}
	return Render(nodes, ctx, e.registry)
}

func (e *Engine) parse(src string) ([]Node, error) {
	if e.cache != nil {
		if nodes, ok := e.cache.Get(src); ok {
			return nodes, nil
		}
	}
	nodes, err := Parse(src, e.registry)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Add(src, nodes)
	}
	return nodes, nil
}

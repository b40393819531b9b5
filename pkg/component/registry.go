package component

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// RenderFunc produces markup for one element instance.
type RenderFunc func(ctx *RenderContext) (string, error)

// Definition binds a tag name to its render function.
type Definition struct {
	TagName string
	Render  RenderFunc
}

// DuplicateComponentError is returned when a tag is registered twice.
type DuplicateComponentError struct {
	Tag string
}

func (e *DuplicateComponentError) Error() string {
	return fmt.Sprintf("component %q is already registered", e.Tag)
}

// InvalidTagError is returned for tag names that can never match a custom
// element.
type InvalidTagError struct {
	Tag string
}

func (e *InvalidTagError) Error() string {
	return fmt.Sprintf("invalid component tag %q: custom element names must contain a hyphen", e.Tag)
}

// IsCustomTag reports whether tag names a custom element. A hyphen in the
// name is the only criterion.
func IsCustomTag(tag string) bool {
	return strings.Contains(tag, "-")
}

// Registry maps tag names to render definitions.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register adds a render function for tag. Tags are matched
// case-insensitively. Registering a tag twice fails with
// *DuplicateComponentError.
func (r *Registry) Register(tag string, fn RenderFunc) error {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if !IsCustomTag(tag) || strings.ContainsAny(tag, " \t\n<>/=\"'") {
		return &InvalidTagError{Tag: tag}
	}
	if fn == nil {
		return fmt.Errorf("component %q: nil render function", tag)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[tag]; exists {
		return &DuplicateComponentError{Tag: tag}
	}
	r.defs[tag] = Definition{TagName: tag, Render: fn}
	return nil
}

// MustRegister is like Register but panics on error. Intended for
// program initialization.
func (r *Registry) MustRegister(tag string, fn RenderFunc) {
	if err := r.Register(tag, fn); err != nil {
		panic(err)
	}
}

// Lookup returns the definition registered for tag.
func (r *Registry) Lookup(tag string) (Definition, bool) {
	if !IsCustomTag(tag) {
		return Definition{}, false
	}

	r.mu.RLock()
	def, ok := r.defs[tag]
	r.mu.RUnlock()
	return def, ok
}

// Tags returns the registered tag names in sorted order.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	tags := make([]string, 0, len(r.defs))
	for tag := range r.defs {
		tags = append(tags, tag)
	}
	r.mu.RUnlock()

	sort.Strings(tags)
	return tags
}

// Len returns the number of registered components.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}

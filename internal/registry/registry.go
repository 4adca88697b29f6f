package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// ConflictError is returned when a registration would make resolution
// ambiguous: a second override for a family, or a second binding for the
// same family and variant.
type ConflictError struct {
	Family   string
	Variant  string
	Override bool
}

func (e *ConflictError) Error() string {
	if e.Override {
		return fmt.Sprintf("registration conflict: family '%s' already has an override binding", e.Family)
	}
	return fmt.Sprintf("registration conflict: variant '%s' of family '%s' already registered", e.Variant, e.Family)
}

type registerOptions struct {
	override bool
}

// Option modifies a single registration.
type Option func(*registerOptions)

// AsOverride marks the binding as the family override.
func AsOverride() Option {
	return func(o *registerOptions) { o.override = true }
}

type binding[T any] struct {
	variant string
	impl    T
}

// Registry holds the variant bindings of every family.
type Registry[T any] struct {
	mu        sync.RWMutex
	bindings  map[string]map[string]T
	overrides map[string]binding[T]
	logger    *slog.Logger
}

// New creates an empty registry. A nil logger falls back to slog.Default().
func New[T any](logger *slog.Logger) *Registry[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry[T]{
		bindings:  make(map[string]map[string]T),
		overrides: make(map[string]binding[T]),
		logger:    logger,
	}
}

// Register binds impl to family/variant.
func (r *Registry[T]) Register(family, variant string, impl T, opts ...Option) error {
	var o registerOptions
	for _, opt := range opts {
		opt(&o)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if o.override {
		if _, exists := r.overrides[family]; exists {
			return &ConflictError{Family: family, Variant: variant, Override: true}
		}
		r.overrides[family] = binding[T]{variant: variant, impl: impl}
		r.logger.Debug("Registering override binding.", "family", family, "variant", variant)
		return nil
	}

	variants, ok := r.bindings[family]
	if !ok {
		variants = make(map[string]T)
		r.bindings[family] = variants
	}
	if _, exists := variants[variant]; exists {
		return &ConflictError{Family: family, Variant: variant}
	}
	variants[variant] = impl
	r.logger.Debug("Registering variant binding.", "family", family, "variant", variant)
	return nil
}

// MustRegister is like Register but panics on conflict. It is meant for
// startup wiring where a conflict is a programmer error.
func (r *Registry[T]) MustRegister(family, variant string, impl T, opts ...Option) {
	if err := r.Register(family, variant, impl, opts...); err != nil {
		panic(err)
	}
}

// Resolve returns the implementation for family/variant. An override for the
// family is returned unconditionally. The boolean is false when nothing is
// bound.
func (r *Registry[T]) Resolve(family, variant string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if o, ok := r.overrides[family]; ok {
		return o.impl, true
	}
	impl, ok := r.bindings[family][variant]
	return impl, ok
}

// Override returns the variant name of the family override, if any.
func (r *Registry[T]) Override(family string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.overrides[family]
	return o.variant, ok
}

// Families returns every family with at least one binding, sorted.
func (r *Registry[T]) Families() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{}, len(r.bindings)+len(r.overrides))
	for f := range r.bindings {
		seen[f] = struct{}{}
	}
	for f := range r.overrides {
		seen[f] = struct{}{}
	}
	families := make([]string, 0, len(seen))
	for f := range seen {
		families = append(families, f)
	}
	sort.Strings(families)
	return families
}

// Variants returns the non-override variant names bound for family, sorted.
func (r *Registry[T]) Variants(family string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.bindings[family]))
	for v := range r.bindings[family] {
		names = append(names, v)
	}
	sort.Strings(names)
	return names
}

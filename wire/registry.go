package wire

import (
	"sort"
	"strings"

	"github.com/rflorenc/azure-search-workbench/faults"
)

// Registry maps a discriminator (a field type, an @odata.type) to the
// constructor for that variant.
type Registry[T any] struct {
	kind    string
	entries map[string]T
}

func NewRegistry[T any](kind string) *Registry[T] {
	return &Registry[T]{kind: kind, entries: make(map[string]T)}
}

// Register adds or replaces the entry for tag.
func (r *Registry[T]) Register(tag string, v T) {
	r.entries[tag] = v
}

// Lookup returns the entry for tag or a ValidationError listing the known tags.
func (r *Registry[T]) Lookup(tag string) (T, error) {
	v, ok := r.entries[tag]
	if !ok {
		var zero T
		if tag == "" {
			return zero, faults.Validationf("%s: missing discriminator", r.kind)
		}
		return zero, faults.Validationf("%s: unknown type %q (known: %s)", r.kind, tag, strings.Join(r.Names(), ", "))
	}
	return v, nil
}

// Has reports whether tag is registered.
func (r *Registry[T]) Has(tag string) bool {
	_, ok := r.entries[tag]
	return ok
}

// Names returns the registered tags in sorted order.
func (r *Registry[T]) Names() []string {
	names := make([]string, 0, len(r.entries))
	for k := range r.entries {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

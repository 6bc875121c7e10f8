package steps

import "fmt"

// K is a registry key carrying the type of its value.
type K[T any] string

// Registry holds the values steps hand to one another.
type Registry struct {
	values map[string]any
}

func NewRegistry() *Registry {
	return &Registry{values: make(map[string]any)}
}

func (r *Registry) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

func (r *Registry) Set(key string, value any) {
	r.values[key] = value
}

// Put stores value under a typed key.
func Put[T any](r *Registry, key K[T], value T) {
	r.Set(string(key), value)
}

// Lookup returns the value under key, if present.
func Lookup[T any](r *Registry, key K[T]) (T, bool) {
	var zero T
	v, ok := r.Get(string(key))
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// GetAs reads key through a step context. A missing key is a pipeline wiring
// bug and panics.
func GetAs[T any](sc Context, key K[T]) T {
	v, ok := sc.Get(string(key))
	if !ok {
		panic(fmt.Sprintf("registry key %q not set", key))
	}
	t, ok := v.(T)
	if !ok {
		panic(fmt.Sprintf("registry key %q holds %T", key, v))
	}
	return t
}

// SetAs writes key through a step context.
func SetAs[T any](sc Context, key K[T], value T) {
	sc.Set(string(key), value)
}

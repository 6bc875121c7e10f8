package lazy

import "sync"

// New defers get until the first call to Get. The result, including any
// error, is computed once and shared by every caller.
func New[T any](get func() (T, error)) *Value[T] {
	return &Value[T]{get: get}
}

type Value[T any] struct {
	once  sync.Once
	get   func() (T, error)
	value T
	err   error
}

func (v *Value[T]) Get() (T, error) {
	v.once.Do(func() {
		v.value, v.err = v.get()
		v.get = nil
	})
	return v.value, v.err
}

// MustGet is Get for values that are known to be valid, such as embedded data.
func (v *Value[T]) MustGet() T {
	value, err := v.Get()
	if err != nil {
		panic(err)
	}
	return value
}

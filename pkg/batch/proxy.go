package batch

import (
	"fmt"
	"reflect"
)

// Proxy is a transparent lazy wrapper around a Handle. It never
// materializes a value of its own: every operation except Ready forces
// resolution through the batcher's Get — flushing the entire pending
// batch, not merely this proxy's entry — and then delegates to the
// resolved value.
//
// Instead of open-ended dynamic dispatch, the operation set is enumerated:
// Value and MustValue for typed access, and reflection-backed Len, Index,
// SetIndex, and Range for container use.
type Proxy[T any] struct {
	batcher *Batcher
	handle  *Handle
}

// DeferProxy enqueues a deferred deep copy on b and returns a lazy proxy
// for the result. Same contract as Batcher.Defer.
func DeferProxy[T any](b *Batcher, root T, opts ...DeferOption) *Proxy[T] {
	return &Proxy[T]{batcher: b, handle: b.Defer(root, opts...)}
}

// Handle returns the underlying handle.
func (p *Proxy[T]) Handle() *Handle {
	return p.handle
}

// Clone returns a new proxy sharing this proxy's handle. Resolving either
// resolves both.
func (p *Proxy[T]) Clone() *Proxy[T] {
	return &Proxy[T]{batcher: p.batcher, handle: p.handle}
}

// Ready reports whether the copy has materialized. It never forces
// resolution.
func (p *Proxy[T]) Ready() bool {
	return p.handle.Ready()
}

// Value forces resolution and returns the copied value.
func (p *Proxy[T]) Value() (T, error) {
	var zero T
	v, err := p.batcher.Get(p.handle)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("copybatch: resolved value is %T, not %T", v, zero)
	}
	return t, nil
}

// MustValue is Value, panicking on error.
func (p *Proxy[T]) MustValue() T {
	v, err := p.Value()
	if err != nil {
		panic(err)
	}
	return v
}

// String forces resolution and formats the resolved value.
// fmt.Stringer is an observable use of the copy.
func (p *Proxy[T]) String() string {
	v, err := p.batcher.Get(p.handle)
	if err != nil {
		return fmt.Sprintf("<copybatch: %v>", err)
	}
	return fmt.Sprint(v)
}

// Len forces resolution and returns the resolved value's length.
// Supported for arrays, slices, maps, and strings.
func (p *Proxy[T]) Len() (int, error) {
	v, err := p.batcher.Get(p.handle)
	if err != nil {
		return 0, err
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Array, reflect.Slice, reflect.Map, reflect.String:
		return rv.Len(), nil
	}
	return 0, fmt.Errorf("%w: len of %T", ErrNotIndexable, v)
}

// Index forces resolution and returns the element at key: an int index for
// arrays and slices, or a map key for maps.
func (p *Proxy[T]) Index(key any) (any, error) {
	v, err := p.batcher.Get(p.handle)
	if err != nil {
		return nil, err
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Array, reflect.Slice:
		i, ok := key.(int)
		if !ok {
			return nil, fmt.Errorf("%w: %T index must be int, got %T", ErrNotIndexable, v, key)
		}
		if i < 0 || i >= rv.Len() {
			return nil, fmt.Errorf("%w: index %d out of range [0,%d)", ErrNotIndexable, i, rv.Len())
		}
		return rv.Index(i).Interface(), nil
	case reflect.Map:
		e := rv.MapIndex(reflect.ValueOf(key))
		if !e.IsValid() {
			return nil, fmt.Errorf("%w: key %v not present", ErrNotIndexable, key)
		}
		return e.Interface(), nil
	}
	return nil, fmt.Errorf("%w: index into %T", ErrNotIndexable, v)
}

// SetIndex forces resolution and assigns value at key in the resolved
// copy. Mutating the copy is ordinary caller-owned mutation; the batcher
// treats settled handles as immutable.
func (p *Proxy[T]) SetIndex(key, value any) error {
	v, err := p.batcher.Get(p.handle)
	if err != nil {
		return err
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		i, ok := key.(int)
		if !ok {
			return fmt.Errorf("%w: %T index must be int, got %T", ErrNotIndexable, v, key)
		}
		if i < 0 || i >= rv.Len() {
			return fmt.Errorf("%w: index %d out of range [0,%d)", ErrNotIndexable, i, rv.Len())
		}
		rv.Index(i).Set(reflect.ValueOf(value))
		return nil
	case reflect.Map:
		rv.SetMapIndex(reflect.ValueOf(key), reflect.ValueOf(value))
		return nil
	}
	return fmt.Errorf("%w: assign into %T", ErrNotIndexable, v)
}

// Range forces resolution and iterates the resolved value, calling fn for
// each (key, element) until fn returns false. Arrays and slices iterate in
// order with int keys; maps iterate in map order.
func (p *Proxy[T]) Range(fn func(key, value any) bool) error {
	v, err := p.batcher.Get(p.handle)
	if err != nil {
		return err
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Array, reflect.Slice:
		for i := 0; i < rv.Len(); i++ {
			if !fn(i, rv.Index(i).Interface()) {
				return nil
			}
		}
		return nil
	case reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			if !fn(iter.Key().Interface(), iter.Value().Interface()) {
				return nil
			}
		}
		return nil
	}
	return fmt.Errorf("%w: range over %T", ErrNotIndexable, v)
}

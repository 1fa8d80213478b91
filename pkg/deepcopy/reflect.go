package deepcopy

import (
	"fmt"
	"reflect"
)

// ReflectCopier is the default Copier. It walks value graphs with the
// reflect package, memoizing reference-kind values by (type, address) so
// shared substructure and cycles in the input are mirrored in the output.
type ReflectCopier struct{}

// New creates a new ReflectCopier.
func New() *ReflectCopier {
	return &ReflectCopier{}
}

// CopyOne deep-copies a single root.
func (c *ReflectCopier) CopyOne(root any) (any, error) {
	outs, err := c.CopyMany([]any{root})
	if err != nil {
		return nil, err
	}
	return outs[0], nil
}

// CopyMany deep-copies a batch of roots using one shared memo table.
// Roots that are referentially identical, or that reach common
// substructure, resolve to shared output references.
func (c *ReflectCopier) CopyMany(roots []any) ([]any, error) {
	w := &walker{memo: make(map[memoKey]reflect.Value)}
	outs := make([]any, len(roots))
	for i, root := range roots {
		if root == nil {
			continue
		}
		cp, err := w.copy(reflect.ValueOf(root))
		if err != nil {
			return nil, err
		}
		outs[i] = cp.Interface()
	}
	return outs, nil
}

// memoKey identifies a reference-kind value. Slices carry their length
// because two headers over the same array with different lengths are
// distinct values.
type memoKey struct {
	typ reflect.Type
	ptr uintptr
	len int
}

type walker struct {
	memo map[memoKey]reflect.Value
}

// copy returns a deep copy of v. Output containers are allocated and
// memoized before their contents are copied so back-edges in a cycle wire
// to the in-progress copy.
func (w *walker) copy(v reflect.Value) (reflect.Value, error) {
	switch v.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.String:
		return v, nil

	case reflect.Pointer:
		return w.copyPointer(v)

	case reflect.Slice:
		return w.copySlice(v)

	case reflect.Map:
		return w.copyMap(v)

	case reflect.Struct:
		return w.copyStruct(v)

	case reflect.Array:
		return w.copyArray(v)

	case reflect.Interface:
		if v.IsNil() {
			return v, nil
		}
		elem, err := w.copy(v.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(elem)
		return out, nil

	default:
		// Chan, Func, UnsafePointer.
		return reflect.Value{}, fmt.Errorf("%w: %s", ErrUncopyable, v.Type())
	}
}

func (w *walker) copyPointer(v reflect.Value) (reflect.Value, error) {
	if v.IsNil() {
		return v, nil
	}
	key := memoKey{typ: v.Type(), ptr: v.Pointer()}
	if out, ok := w.memo[key]; ok {
		return out, nil
	}
	out := reflect.New(v.Type().Elem())
	w.memo[key] = out
	elem, err := w.copy(v.Elem())
	if err != nil {
		return reflect.Value{}, err
	}
	out.Elem().Set(elem)
	return out, nil
}

func (w *walker) copySlice(v reflect.Value) (reflect.Value, error) {
	if v.IsNil() {
		return v, nil
	}
	key := memoKey{typ: v.Type(), ptr: v.Pointer(), len: v.Len()}
	if out, ok := w.memo[key]; ok {
		return out, nil
	}
	out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
	w.memo[key] = out
	for i := 0; i < v.Len(); i++ {
		elem, err := w.copy(v.Index(i))
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(i).Set(elem)
	}
	return out, nil
}

func (w *walker) copyMap(v reflect.Value) (reflect.Value, error) {
	if v.IsNil() {
		return v, nil
	}
	key := memoKey{typ: v.Type(), ptr: v.Pointer()}
	if out, ok := w.memo[key]; ok {
		return out, nil
	}
	out := reflect.MakeMapWithSize(v.Type(), v.Len())
	w.memo[key] = out
	iter := v.MapRange()
	for iter.Next() {
		mk, err := w.copy(iter.Key())
		if err != nil {
			return reflect.Value{}, err
		}
		mv, err := w.copy(iter.Value())
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetMapIndex(mk, mv)
	}
	return out, nil
}

// copyStruct shallow-copies the whole struct first, then overwrites
// exported fields with deep copies. Unexported reference fields keep
// aliasing the original; see the package documentation.
func (w *walker) copyStruct(v reflect.Value) (reflect.Value, error) {
	out := reflect.New(v.Type()).Elem()
	out.Set(v)
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).PkgPath != "" {
			continue
		}
		f, err := w.copy(v.Field(i))
		if err != nil {
			return reflect.Value{}, err
		}
		out.Field(i).Set(f)
	}
	return out, nil
}

func (w *walker) copyArray(v reflect.Value) (reflect.Value, error) {
	out := reflect.New(v.Type()).Elem()
	for i := 0; i < v.Len(); i++ {
		elem, err := w.copy(v.Index(i))
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(i).Set(elem)
	}
	return out, nil
}

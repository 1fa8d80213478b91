package deepcopy

import "reflect"

// SizeEstimate returns a shallow, advisory estimate of a value's memory
// footprint in bytes: the top-level type size plus the direct footprint of
// string bytes, slice elements, and map entries. It does not traverse the
// graph; an exact account would cost the walk the batcher exists to defer.
func SizeEstimate(root any) int64 {
	if root == nil {
		return 0
	}
	v := reflect.ValueOf(root)
	t := v.Type()
	size := int64(t.Size())

	switch v.Kind() {
	case reflect.String:
		size += int64(v.Len())
	case reflect.Slice:
		if !v.IsNil() {
			size += int64(v.Len()) * int64(t.Elem().Size())
		}
	case reflect.Map:
		if !v.IsNil() {
			size += int64(v.Len()) * int64(t.Key().Size()+t.Elem().Size())
		}
	case reflect.Pointer:
		if !v.IsNil() {
			size += int64(t.Elem().Size())
		}
	}
	return size
}

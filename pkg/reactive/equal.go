package reactive

import (
	"math"
	"reflect"
)

// defaultEquals provides type-appropriate equality checking.
//
// Basic kinds compare with ==, except for floats: NaN equals NaN and 0 differs
// from -0. Named float types follow the same rule. Reference kinds
// (pointers, maps, slices, channels, funcs) compare by identity: two slices
// are equal only if they share backing array and length. Other comparable
// values use ==; anything left falls back to reflect.DeepEqual.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		bv, ok := any(b).(int)
		return ok && av == bv
	case int8:
		bv, ok := any(b).(int8)
		return ok && av == bv
	case int16:
		bv, ok := any(b).(int16)
		return ok && av == bv
	case int32:
		bv, ok := any(b).(int32)
		return ok && av == bv
	case int64:
		bv, ok := any(b).(int64)
		return ok && av == bv
	case uint:
		bv, ok := any(b).(uint)
		return ok && av == bv
	case uint8:
		bv, ok := any(b).(uint8)
		return ok && av == bv
	case uint16:
		bv, ok := any(b).(uint16)
		return ok && av == bv
	case uint32:
		bv, ok := any(b).(uint32)
		return ok && av == bv
	case uint64:
		bv, ok := any(b).(uint64)
		return ok && av == bv
	case float32:
		bv, ok := any(b).(float32)
		return ok && floatEquals(float64(av), float64(bv))
	case float64:
		bv, ok := any(b).(float64)
		return ok && floatEquals(av, bv)
	case string:
		bv, ok := any(b).(string)
		return ok && av == bv
	case bool:
		bv, ok := any(b).(bool)
		return ok && av == bv
	case nil:
		// T is an interface type holding nil.
		return any(b) == nil
	}
	return reflectEquals(reflect.ValueOf(any(a)), reflect.ValueOf(any(b)))
}

func reflectEquals(av, bv reflect.Value) bool {
	if !bv.IsValid() || av.Type() != bv.Type() {
		return false
	}
	switch av.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return av.Pointer() == bv.Pointer()
	case reflect.Slice:
		return av.Pointer() == bv.Pointer() && av.Len() == bv.Len()
	case reflect.Float32, reflect.Float64:
		return floatEquals(av.Float(), bv.Float())
	}
	if av.Comparable() && bv.Comparable() {
		return av.Equal(bv)
	}
	return reflect.DeepEqual(av.Interface(), bv.Interface())
}

func floatEquals(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return a == b && math.Signbit(a) == math.Signbit(b)
}

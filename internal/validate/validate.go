package validate

import (
	"fmt"
	"math"
	"reflect"
)

// Kind is the expected shape of an argument.
type Kind int

const (
	String Kind = iota
	Object
	Function
	Number
	Boolean
	Array
)

// String returns the lowercase name used in mismatch descriptions
func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Object:
		return "object"
	case Function:
		return "function"
	case Number:
		return "number"
	case Boolean:
		return "boolean"
	case Array:
		return "array"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// InvalidValue returns an empty string when value matches kind, otherwise a
// description of the mismatch.
//
// A nil value (or a typed nil pointer, map, slice or func) is always reported
// as missing. An empty string is reported as empty, and a NaN or infinite
// float as not a usable number.
func InvalidValue(value any, kind Kind) string {
	if isNil(value) {
		return "is missing"
	}

	v := reflect.ValueOf(value)
	switch kind {
	case String:
		if v.Kind() != reflect.String {
			return mismatch(kind, value)
		}
		if v.Len() == 0 {
			return "is empty"
		}

	case Object:
		switch v.Kind() {
		case reflect.Struct, reflect.Map:
		case reflect.Ptr:
			if v.Elem().Kind() != reflect.Struct {
				return mismatch(kind, value)
			}
		default:
			return mismatch(kind, value)
		}

	case Function:
		if v.Kind() != reflect.Func {
			return mismatch(kind, value)
		}

	case Number:
		switch v.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		case reflect.Float32, reflect.Float64:
			if math.IsNaN(v.Float()) {
				return "is not a number (NaN)"
			}
			if math.IsInf(v.Float(), 0) {
				return "is not finite"
			}
		default:
			return mismatch(kind, value)
		}

	case Boolean:
		if v.Kind() != reflect.Bool {
			return mismatch(kind, value)
		}

	case Array:
		if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
			return mismatch(kind, value)
		}

	default:
		return fmt.Sprintf("has unknown expected kind %s", kind)
	}

	return ""
}

// IsValidCallback reports whether value is a non-nil function.
func IsValidCallback(value any) bool {
	if isNil(value) {
		return false
	}
	return reflect.ValueOf(value).Kind() == reflect.Func
}

func mismatch(kind Kind, value any) string {
	return fmt.Sprintf("must be a %s, got %T", kind, value)
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	}
	return false
}

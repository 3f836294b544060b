// Package object provides the runtime value types of the Lace language.
//
// The set of value types is closed: Int, Float, String, Bool, Array, None,
// Function and Builtin. Callers switch on the concrete type:
//
//	switch obj := obj.(type) {
//	case *object.Int:
//		// do something with obj.Value()
//	case *object.String:
//		// do something with obj.Value()
//	}
//
// All values are immutable once constructed. Composite values copy their
// inputs on construction and never expose their backing storage.
package object

import (
	"fmt"
	"math"
	"sort"
)

// Type of an object as a string. The string is what the typeof operator
// produces.
type Type string

// Type constants
const (
	INT      Type = "Int"
	FLOAT    Type = "Float"
	STRING   Type = "String"
	BOOL     Type = "Bool"
	ARRAY    Type = "Array"
	NONE     Type = "None"
	FUNCTION Type = "Function"
	BUILTIN  Type = "Builtin"
)

var (
	None  = &NoneType{}
	True  = &Bool{value: true}
	False = &Bool{value: false}
)

// Object is the interface implemented by every Lace value.
type Object interface {
	// Type of the object.
	Type() Type

	// String returns the display form used by writeln and string conversion.
	String() string

	// Inspect returns a debugging representation. Strings are quoted.
	Inspect() string

	// Interface converts the object to a native Go value.
	Interface() interface{}

	// Equals reports structural equality. Objects of different types are
	// never equal.
	Equals(other Object) bool

	// IsTruthy returns true if the object is considered "truthy".
	IsTruthy() bool

	sealed()
}

// Identical is a stricter form of Equals used for constant pool
// deduplication. Floats compare by bit pattern, so 0.0 and -0.0 are distinct
// and a NaN is identical to itself.
func Identical(a, b Object) bool {
	switch a := a.(type) {
	case *Float:
		other, ok := b.(*Float)
		return ok && math.Float64bits(a.value) == math.Float64bits(other.value)
	case *Array:
		other, ok := b.(*Array)
		if !ok || len(a.items) != len(other.items) {
			return false
		}
		for i := range a.items {
			if !Identical(a.items[i], other.items[i]) {
				return false
			}
		}
		return true
	default:
		return a.Equals(b)
	}
}

// NewBool returns the shared True or False object.
func NewBool(value bool) *Bool {
	if value {
		return True
	}
	return False
}

// FromGoType converts a native Go value to a Lace object. It is used to
// convert globals supplied by a host program.
func FromGoType(value interface{}) (Object, error) {
	switch v := value.(type) {
	case nil:
		return None, nil
	case Object:
		return v, nil
	case int:
		return NewInt(int64(v)), nil
	case int8:
		return NewInt(int64(v)), nil
	case int16:
		return NewInt(int64(v)), nil
	case int32:
		return NewInt(int64(v)), nil
	case int64:
		return NewInt(v), nil
	case uint8:
		return NewInt(int64(v)), nil
	case uint16:
		return NewInt(int64(v)), nil
	case uint32:
		return NewInt(int64(v)), nil
	case float32:
		return NewFloat(float64(v)), nil
	case float64:
		return NewFloat(v), nil
	case string:
		return NewString(v), nil
	case bool:
		return NewBool(v), nil
	case []Object:
		return NewArray(v), nil
	case []interface{}:
		items := make([]Object, 0, len(v))
		for _, item := range v {
			obj, err := FromGoType(item)
			if err != nil {
				return nil, err
			}
			items = append(items, obj)
		}
		return NewArray(items), nil
	case []string:
		items := make([]Object, 0, len(v))
		for _, item := range v {
			items = append(items, NewString(item))
		}
		return NewArray(items), nil
	case []int64:
		items := make([]Object, 0, len(v))
		for _, item := range v {
			items = append(items, NewInt(item))
		}
		return NewArray(items), nil
	default:
		return nil, fmt.Errorf("type error: unsupported go type %T", value)
	}
}

// AsObjects converts a map of native Go values to Lace objects.
func AsObjects(m map[string]interface{}) (map[string]Object, error) {
	result := make(map[string]Object, len(m))
	for k, v := range m {
		obj, err := FromGoType(v)
		if err != nil {
			return nil, fmt.Errorf("global %q: %w", k, err)
		}
		result[k] = obj
	}
	return result, nil
}

// Keys returns the keys of an object map as a sorted slice of strings.
func Keys(m map[string]Object) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

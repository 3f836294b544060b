package object

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lacelang/lace/op"
)

// ConversionError describes an explicit conversion that cannot be performed.
type ConversionError struct {
	From   Type
	To     op.TypeTag
	Reason string
}

func (e *ConversionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot convert %s to %s: %s", e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("cannot convert %s to %s", e.From, e.To)
}

// Convert performs the explicit conversion requested by the "as" operator.
func Convert(obj Object, tag op.TypeTag) (Object, error) {
	switch tag {
	case op.TagInt:
		return toInt(obj)
	case op.TagFloat:
		return toFloat(obj)
	case op.TagString:
		if s, ok := obj.(*String); ok {
			return s, nil
		}
		return NewString(obj.String()), nil
	case op.TagArray:
		return toArray(obj), nil
	case op.TagBool:
		return NewBool(obj.IsTruthy()), nil
	default:
		return nil, &ConversionError{From: obj.Type(), To: tag, Reason: "unknown target type"}
	}
}

func toInt(obj Object) (Object, error) {
	switch obj := obj.(type) {
	case *Int:
		return obj, nil
	case *Float:
		v := obj.value
		if math.IsNaN(v) || math.IsInf(v, 0) || v >= math.MaxInt64 || v < math.MinInt64 {
			return nil, &ConversionError{From: FLOAT, To: op.TagInt, Reason: "value out of range"}
		}
		return NewInt(int64(v)), nil
	case *String:
		v, err := strconv.ParseInt(strings.TrimSpace(obj.value), 10, 64)
		if err != nil {
			return nil, &ConversionError{From: STRING, To: op.TagInt,
				Reason: fmt.Sprintf("invalid integer %q", obj.value)}
		}
		return NewInt(v), nil
	case *Bool:
		if obj.value {
			return NewInt(1), nil
		}
		return NewInt(0), nil
	default:
		return nil, &ConversionError{From: obj.Type(), To: op.TagInt}
	}
}

func toFloat(obj Object) (Object, error) {
	switch obj := obj.(type) {
	case *Float:
		return obj, nil
	case *Int:
		return NewFloat(float64(obj.value)), nil
	case *String:
		v, err := strconv.ParseFloat(strings.TrimSpace(obj.value), 64)
		if err != nil {
			return nil, &ConversionError{From: STRING, To: op.TagFloat,
				Reason: fmt.Sprintf("invalid float %q", obj.value)}
		}
		return NewFloat(v), nil
	case *Bool:
		if obj.value {
			return NewFloat(1), nil
		}
		return NewFloat(0), nil
	default:
		return nil, &ConversionError{From: obj.Type(), To: op.TagFloat}
	}
}

// Strings become an array of one-character strings. Any other non-array
// value becomes a single element array.
func toArray(obj Object) Object {
	switch obj := obj.(type) {
	case *Array:
		return obj
	default:
		return &Array{items: []Object{obj}}
	}
}

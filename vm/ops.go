package vm

import (
	"math"
	"math/bits"
	"strings"

	"github.com/lacelang/lace/errz"
	"github.com/lacelang/lace/object"
	"github.com/lacelang/lace/op"
)

// binaryOp applies a binary opcode to left and right.
func binaryOp(code op.Code, left, right object.Object) (object.Object, error) {
	switch code {
	case op.Eq:
		return object.NewBool(left.Equals(right)), nil
	case op.Ne:
		return object.NewBool(!left.Equals(right)), nil
	case op.Lt, op.Gt, op.Le, op.Ge:
		return compare(code, left, right)
	case op.ShiftLeft, op.ShiftRight:
		return shift(code, left, right)
	}

	switch l := left.(type) {
	case *object.Int:
		switch r := right.(type) {
		case *object.Int:
			return intOp(code, l.Value(), r.Value())
		case *object.Float:
			return floatOp(code, float64(l.Value()), r.Value())
		}
	case *object.Float:
		switch r := right.(type) {
		case *object.Int:
			return floatOp(code, l.Value(), float64(r.Value()))
		case *object.Float:
			return floatOp(code, l.Value(), r.Value())
		}
	case *object.String:
		switch r := right.(type) {
		case *object.String:
			if code == op.Add {
				return object.NewString(l.Value() + r.Value()), nil
			}
		case *object.Int:
			if code == op.Mul {
				return repeat(l.Value(), r.Value())
			}
		}
	case *object.Array:
		if r, ok := right.(*object.Array); ok && code == op.Add {
			return l.Concat(r), nil
		}
	}
	return nil, errz.NewUnsupportedOperation(code.Symbol(), string(left.Type()), string(right.Type()))
}

func intOp(code op.Code, a, b int64) (object.Object, error) {
	switch code {
	case op.Add:
		c := a + b
		// A sum that did not move in the direction of b wrapped.
		if (c > a) != (b > 0) {
			return nil, overflow(code, a, b)
		}
		return object.NewInt(c), nil
	case op.Sub:
		c := a - b
		if (c < a) != (b > 0) {
			return nil, overflow(code, a, b)
		}
		return object.NewInt(c), nil
	case op.Mul:
		if a == 0 || b == 0 {
			return object.NewInt(0), nil
		}
		c := a * b
		if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) || c/b != a {
			return nil, overflow(code, a, b)
		}
		return object.NewInt(c), nil
	case op.Div:
		if b == 0 {
			return nil, errz.New(errz.DivisionByZero, "division by zero: %d / 0", a)
		}
		if a == math.MinInt64 && b == -1 {
			return nil, overflow(code, a, b)
		}
		return object.NewInt(a / b), nil
	case op.Mod:
		if b == 0 {
			return nil, errz.New(errz.DivisionByZero, "division by zero: %d %% 0", a)
		}
		if a == math.MinInt64 && b == -1 {
			return nil, overflow(code, a, b)
		}
		return object.NewInt(a % b), nil
	case op.Pow:
		if b < 0 {
			return object.NewFloat(math.Pow(float64(a), float64(b))), nil
		}
		return intPow(a, b)
	}
	return nil, errz.NewUnsupportedOperation(code.Symbol(), string(object.INT), string(object.INT))
}

// intPow computes base**exp by repeated squaring, failing on overflow.
func intPow(base, exp int64) (object.Object, error) {
	origBase, origExp := base, exp
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			r, ok := mulChecked(result, base)
			if !ok {
				return nil, overflow(op.Pow, origBase, origExp)
			}
			result = r
		}
		exp >>= 1
		if exp > 0 {
			b, ok := mulChecked(base, base)
			if !ok {
				return nil, overflow(op.Pow, origBase, origExp)
			}
			base = b
		}
	}
	return object.NewInt(result), nil
}

func mulChecked(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) || c/b != a {
		return 0, false
	}
	return c, true
}

func overflow(code op.Code, a, b int64) *errz.RuntimeError {
	return errz.New(errz.IntegerOverflow, "integer overflow: %d %s %d", a, code.Symbol(), b)
}

func floatOp(code op.Code, a, b float64) (object.Object, error) {
	switch code {
	case op.Add:
		return object.NewFloat(a + b), nil
	case op.Sub:
		return object.NewFloat(a - b), nil
	case op.Mul:
		return object.NewFloat(a * b), nil
	case op.Div:
		if b == 0 {
			return nil, errz.New(errz.DivisionByZero, "division by zero: %v / 0", a)
		}
		return object.NewFloat(a / b), nil
	case op.Mod:
		if b == 0 {
			return nil, errz.New(errz.DivisionByZero, "division by zero: %v %% 0", a)
		}
		return object.NewFloat(math.Mod(a, b)), nil
	case op.Pow:
		return object.NewFloat(math.Pow(a, b)), nil
	}
	return nil, errz.NewUnsupportedOperation(code.Symbol(), string(object.FLOAT), string(object.FLOAT))
}

func repeat(s string, n int64) (object.Object, error) {
	if n < 0 {
		return nil, errz.New(errz.InvalidArgument, "negative repeat count: %d", n)
	}
	if n > 0 && int64(len(s)) > math.MaxInt32/n {
		return nil, errz.New(errz.InvalidArgument, "repeat count too large: %d", n)
	}
	return object.NewString(strings.Repeat(s, int(n))), nil
}

func compare(code op.Code, left, right object.Object) (object.Object, error) {
	var cmp int
	switch l := left.(type) {
	case *object.Int:
		switch r := right.(type) {
		case *object.Int:
			cmp = compareInts(l.Value(), r.Value())
		case *object.Float:
			cmp = compareFloats(float64(l.Value()), r.Value())
		default:
			return nil, unsupported(code, left, right)
		}
	case *object.Float:
		switch r := right.(type) {
		case *object.Int:
			cmp = compareFloats(l.Value(), float64(r.Value()))
		case *object.Float:
			cmp = compareFloats(l.Value(), r.Value())
		default:
			return nil, unsupported(code, left, right)
		}
	default:
		return nil, unsupported(code, left, right)
	}
	// NaN compares false with everything.
	if cmp == unordered {
		return object.False, nil
	}
	switch code {
	case op.Lt:
		return object.NewBool(cmp < 0), nil
	case op.Gt:
		return object.NewBool(cmp > 0), nil
	case op.Le:
		return object.NewBool(cmp <= 0), nil
	default:
		return object.NewBool(cmp >= 0), nil
	}
}

const unordered = 2

func compareInts(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	case a == b:
		return 0
	}
	return unordered
}

func shift(code op.Code, left, right object.Object) (object.Object, error) {
	l, lok := left.(*object.Int)
	r, rok := right.(*object.Int)
	if !lok || !rok {
		return nil, unsupported(code, left, right)
	}
	a, n := l.Value(), r.Value()
	if n < 0 {
		return nil, errz.New(errz.InvalidArgument, "negative shift count: %d", n)
	}
	if code == op.ShiftRight {
		if n >= 63 {
			if a < 0 {
				return object.NewInt(-1), nil
			}
			return object.NewInt(0), nil
		}
		return object.NewInt(a >> uint(n)), nil
	}
	if a == 0 {
		return object.NewInt(0), nil
	}
	// The value must keep at least one sign bit after shifting.
	magnitude := a
	if a < 0 {
		magnitude = ^a
	}
	if n > 63 || int64(bits.Len64(uint64(magnitude)))+n > 63 {
		return nil, overflow(code, a, n)
	}
	return object.NewInt(a << uint(n)), nil
}

func unaryOp(code op.Code, operand object.Object) (object.Object, error) {
	switch code {
	case op.Not:
		return object.NewBool(!operand.IsTruthy()), nil
	case op.Typeof:
		return object.NewString(string(operand.Type())), nil
	case op.Negate:
		switch v := operand.(type) {
		case *object.Int:
			if v.Value() == math.MinInt64 {
				return nil, errz.New(errz.IntegerOverflow, "integer overflow: -(%d)", v.Value())
			}
			return object.NewInt(-v.Value()), nil
		case *object.Float:
			return object.NewFloat(-v.Value()), nil
		}
	}
	return nil, errz.NewUnsupportedOperation(code.Symbol(), string(operand.Type()), "")
}

func unsupported(code op.Code, left, right object.Object) *errz.RuntimeError {
	return errz.NewUnsupportedOperation(code.Symbol(), string(left.Type()), string(right.Type()))
}

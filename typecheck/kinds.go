package typecheck

import "github.com/lacelang/lace/op"

// Kind is the statically inferred kind of an expression.
type Kind int

const (
	Unknown Kind = iota
	Int
	Float
	String
	Bool
	None
	Array
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case Bool:
		return "bool"
	case None:
		return "none"
	case Array:
		return "array"
	default:
		return "unknown"
	}
}

func (k Kind) numeric() bool {
	return k == Int || k == Float
}

// typeNames lists the names accepted in annotations.
var typeNames = []string{"array", "bool", "float", "int", "none", "string"}

// lookupKind resolves an annotation or cast target name.
func lookupKind(name string) (Kind, bool) {
	if name == "none" {
		return None, true
	}
	tag, ok := op.LookupTypeTag(name)
	if !ok {
		return Unknown, false
	}
	switch tag {
	case op.TagInt:
		return Int, true
	case op.TagFloat:
		return Float, true
	case op.TagString:
		return String, true
	case op.TagArray:
		return Array, true
	case op.TagBool:
		return Bool, true
	}
	return Unknown, false
}

// promote returns the result kind of arithmetic on two numeric kinds.
func promote(l, r Kind) Kind {
	if l == Float || r == Float {
		return Float
	}
	return Int
}

// binaryKind returns the kind produced by applying op to operands of the
// given kinds, and false if the combination always fails at run time.
func binaryKind(op string, l, r Kind) (Kind, bool) {
	switch op {
	case "and", "or", "==", "!=":
		return Bool, true
	}
	if l == Unknown || r == Unknown {
		switch op {
		case "<", "<=", ">", ">=":
			return Bool, true
		}
		return Unknown, true
	}
	numeric := l.numeric() && r.numeric()
	switch op {
	case "<", "<=", ">", ">=":
		return Bool, numeric
	case "+":
		switch {
		case numeric:
			return promote(l, r), true
		case l == String && r == String:
			return String, true
		case l == Array && r == Array:
			return Array, true
		}
	case "-", "/", "%":
		if numeric {
			return promote(l, r), true
		}
	case "*":
		switch {
		case numeric:
			return promote(l, r), true
		case l == String && r == Int:
			return String, true
		}
	case "**":
		switch {
		case l == Int && r == Int:
			// A negative exponent yields a float.
			return Unknown, true
		case numeric:
			return Float, true
		}
	case "<<", ">>":
		if l == Int && r == Int {
			return Int, true
		}
	}
	return Unknown, false
}

// primitiveKinds holds the result kinds of the default primitives.
var primitiveKinds = map[string]Kind{
	"writeln": None,
	"print":   None,
	"exit":    None,
	"len":     Int,
}

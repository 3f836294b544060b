package errors

// ErrorCode is a stable identifier for a class of error. Codes are grouped
// by category:
//   - E1xxx: Parse errors
//   - E2xxx: Compile errors
//   - E3xxx: Runtime errors
//   - E9xxx: Internal errors
type ErrorCode string

const (
	// Parse errors (E1xxx)
	E1001 ErrorCode = "E1001" // Unexpected token
	E1002 ErrorCode = "E1002" // Unterminated string literal
	E1003 ErrorCode = "E1003" // Invalid syntax
	E1004 ErrorCode = "E1004" // Missing expression
	E1005 ErrorCode = "E1005" // Missing semicolon
	E1006 ErrorCode = "E1006" // Expected identifier
	E1007 ErrorCode = "E1007" // Unclosed delimiter
	E1008 ErrorCode = "E1008" // Invalid number literal
	E1009 ErrorCode = "E1009" // Maximum nesting depth exceeded
	E1010 ErrorCode = "E1010" // Invalid escape sequence
	E1011 ErrorCode = "E1011" // Illegal character

	// Compile errors (E2xxx)
	E2001 ErrorCode = "E2001" // Unknown primitive
	E2002 ErrorCode = "E2002" // Duplicate function
	E2003 ErrorCode = "E2003" // Duplicate parameter name
	E2004 ErrorCode = "E2004" // Unsupported node
	E2005 ErrorCode = "E2005" // Unknown type name
	E2006 ErrorCode = "E2006" // Type mismatch
	E2007 ErrorCode = "E2007" // Assignment to immutable binding
	E2008 ErrorCode = "E2008" // Undefined function
	E2009 ErrorCode = "E2009" // Wrong argument count

	// Runtime errors (E3xxx)
	E3001 ErrorCode = "E3001" // Unbound variable
	E3002 ErrorCode = "E3002" // Unknown function
	E3003 ErrorCode = "E3003" // Arity mismatch
	E3004 ErrorCode = "E3004" // Unsupported operation
	E3005 ErrorCode = "E3005" // Integer overflow
	E3006 ErrorCode = "E3006" // Conversion failure
	E3007 ErrorCode = "E3007" // Division by zero
	E3008 ErrorCode = "E3008" // Invalid argument
	E3009 ErrorCode = "E3009" // Stack overflow
	E3010 ErrorCode = "E3010" // Primitive failure

	// Internal errors (E9xxx)
	E9001 ErrorCode = "E9001" // Internal error
)

var codeDescriptions = map[ErrorCode]string{
	E1001: "unexpected token",
	E1002: "unterminated string literal",
	E1003: "invalid syntax",
	E1004: "missing expression",
	E1005: "missing semicolon",
	E1006: "expected identifier",
	E1007: "unclosed delimiter",
	E1008: "invalid number literal",
	E1009: "maximum nesting depth exceeded",
	E1010: "invalid escape sequence",
	E1011: "illegal character",

	E2001: "unknown primitive",
	E2002: "duplicate function",
	E2003: "duplicate parameter name",
	E2004: "unsupported node",
	E2005: "unknown type name",
	E2006: "type mismatch",
	E2007: "assignment to immutable binding",
	E2008: "undefined function",
	E2009: "wrong argument count",

	E3001: "unbound variable",
	E3002: "unknown function",
	E3003: "arity mismatch",
	E3004: "unsupported operation",
	E3005: "integer overflow",
	E3006: "conversion failure",
	E3007: "division by zero",
	E3008: "invalid argument",
	E3009: "stack overflow",
	E3010: "primitive failure",

	E9001: "internal error",
}

// Description returns the short description for an error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}

func (c ErrorCode) String() string {
	return string(c)
}

// Category returns the error category based on the code prefix.
func (c ErrorCode) Category() string {
	if len(c) < 2 {
		return "unknown"
	}
	switch c[1] {
	case '1':
		return "parse"
	case '2':
		return "compile"
	case '3':
		return "runtime"
	case '9':
		return "internal"
	default:
		return "unknown"
	}
}

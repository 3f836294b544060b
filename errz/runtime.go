// Package errz defines the errors produced while executing Lace bytecode.
//
// A *RuntimeError is user-triggerable: an unbound variable, an arity
// mismatch, an integer overflow and so on. An *InternalError marks a
// contract violation between the compiler and the virtual machine, such as
// an unknown opcode. Both abort the running program.
package errz

import (
	"fmt"

	"github.com/lacelang/lace/errors"
)

// Kind is the category of a runtime error.
type Kind int

const (
	UnboundVariable Kind = iota + 1
	UnknownFunction
	ArityMismatch
	UnsupportedOperation
	IntegerOverflow
	ConversionFailure
	DivisionByZero
	InvalidArgument
	StackOverflow
	PrimitiveFailure
)

var kindInfo = map[Kind]struct {
	name string
	code errors.ErrorCode
}{
	UnboundVariable:      {"unbound variable", errors.E3001},
	UnknownFunction:      {"unknown function", errors.E3002},
	ArityMismatch:        {"arity mismatch", errors.E3003},
	UnsupportedOperation: {"unsupported operation", errors.E3004},
	IntegerOverflow:      {"integer overflow", errors.E3005},
	ConversionFailure:    {"conversion failure", errors.E3006},
	DivisionByZero:       {"division by zero", errors.E3007},
	InvalidArgument:      {"invalid argument", errors.E3008},
	StackOverflow:        {"stack overflow", errors.E3009},
	PrimitiveFailure:     {"primitive failure", errors.E3010},
}

func (k Kind) String() string {
	if info, ok := kindInfo[k]; ok {
		return info.name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Code returns the diagnostic code for the kind.
func (k Kind) Code() errors.ErrorCode {
	return kindInfo[k].code
}

// Sentinels for use with errors.Is.
var (
	ErrUnboundVariable      = &RuntimeError{Kind: UnboundVariable}
	ErrUnknownFunction      = &RuntimeError{Kind: UnknownFunction}
	ErrArityMismatch        = &RuntimeError{Kind: ArityMismatch}
	ErrUnsupportedOperation = &RuntimeError{Kind: UnsupportedOperation}
	ErrIntegerOverflow      = &RuntimeError{Kind: IntegerOverflow}
	ErrConversionFailure    = &RuntimeError{Kind: ConversionFailure}
	ErrDivisionByZero       = &RuntimeError{Kind: DivisionByZero}
	ErrInvalidArgument      = &RuntimeError{Kind: InvalidArgument}
	ErrStackOverflow        = &RuntimeError{Kind: StackOverflow}
	ErrPrimitiveFailure     = &RuntimeError{Kind: PrimitiveFailure}
)

// RuntimeError is a fatal error raised by a running program.
type RuntimeError struct {
	Kind    Kind
	Message string

	// SourceTag names the code object that was executing, usually a file.
	SourceTag string
	Function  string
	Location  errors.SourceLocation
	Stack     []errors.StackFrame

	// Set for UnsupportedOperation
	Op    string
	Left  string
	Right string

	// Set for ArityMismatch
	Expected int
	Got      int

	Cause error
}

// New returns a RuntimeError of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewUnsupportedOperation returns an error for an operator applied to
// operand kinds it is not defined for. Unary operators pass an empty right.
func NewUnsupportedOperation(op, left, right string) *RuntimeError {
	var msg string
	if right == "" {
		msg = fmt.Sprintf("unsupported operand type for %s: %s", op, left)
	} else {
		msg = fmt.Sprintf("unsupported operand types for %s: %s and %s", op, left, right)
	}
	return &RuntimeError{
		Kind:    UnsupportedOperation,
		Message: msg,
		Op:      op,
		Left:    left,
		Right:   right,
	}
}

// NewArityMismatch returns an error for a call with the wrong number of
// arguments.
func NewArityMismatch(function string, expected, got int) *RuntimeError {
	return &RuntimeError{
		Kind: ArityMismatch,
		Message: fmt.Sprintf("function %q takes %d argument%s (%d given)",
			function, expected, plural(expected), got),
		Expected: expected,
		Got:      got,
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if loc := e.where(); loc != "" {
		msg += " (" + loc + ")"
	}
	return msg
}

func (e *RuntimeError) where() string {
	switch {
	case !e.Location.IsZero() && e.SourceTag != "":
		return fmt.Sprintf("%s:%d:%d", e.SourceTag, e.Location.Line, e.Location.Column)
	case !e.Location.IsZero():
		return fmt.Sprintf("%d:%d", e.Location.Line, e.Location.Column)
	default:
		return e.SourceTag
	}
}

func (e *RuntimeError) Unwrap() error {
	return e.Cause
}

// Is matches another RuntimeError of the same kind, which makes the Err*
// sentinels usable with errors.Is.
func (e *RuntimeError) Is(target error) bool {
	t, ok := target.(*RuntimeError)
	return ok && t.Kind == e.Kind
}

// ToFormatted converts the error for display by errors.Formatter.
func (e *RuntimeError) ToFormatted() *errors.FormattedError {
	fe := &errors.FormattedError{
		Code:     e.Kind.Code(),
		Kind:     "runtime error",
		Message:  e.Message,
		Filename: e.SourceTag,
		Line:     e.Location.Line,
		Column:   e.Location.Column,
		Stack:    e.Stack,
	}
	if e.Location.Source != "" {
		fe.SourceLines = []errors.SourceLineEntry{
			{Number: e.Location.Line, Text: e.Location.Source, IsMain: true},
		}
	}
	return fe
}

// FriendlyErrorMessage renders the error with a source snippet and stack
// trace, without color.
func (e *RuntimeError) FriendlyErrorMessage() string {
	return errors.NewFormatter(false).Format(e.ToFormatted())
}

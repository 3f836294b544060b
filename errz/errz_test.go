package errz

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/lacelang/lace/errors"
	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	require.Equal(t, "integer overflow", IntegerOverflow.String())
	require.Equal(t, errors.E3005, IntegerOverflow.Code())
	require.Equal(t, "kind(99)", Kind(99).String())
}

func TestRuntimeErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      *RuntimeError
		expected string
	}{
		{
			name:     "no location",
			err:      New(DivisionByZero, "division by zero"),
			expected: "division by zero: division by zero",
		},
		{
			name: "with location",
			err: &RuntimeError{
				Kind:      UnboundVariable,
				Message:   `name "x" is not defined`,
				SourceTag: "main.lace",
				Location:  errors.SourceLocation{Line: 4, Column: 2},
			},
			expected: `unbound variable: name "x" is not defined (main.lace:4:2)`,
		},
		{
			name:     "unsupported binary",
			err:      NewUnsupportedOperation("<", "String", "Int"),
			expected: "unsupported operation: unsupported operand types for <: String and Int",
		},
		{
			name:     "unsupported unary",
			err:      NewUnsupportedOperation("-", "Bool", ""),
			expected: "unsupported operation: unsupported operand type for -: Bool",
		},
		{
			name:     "arity",
			err:      NewArityMismatch("add", 2, 1),
			expected: `arity mismatch: function "add" takes 2 arguments (1 given)`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestRuntimeErrorIs(t *testing.T) {
	err := fmt.Errorf("run failed: %w", NewArityMismatch("f", 1, 0))
	require.True(t, stderrors.Is(err, ErrArityMismatch))
	require.False(t, stderrors.Is(err, ErrIntegerOverflow))

	var rerr *RuntimeError
	require.True(t, stderrors.As(err, &rerr))
	require.Equal(t, 1, rerr.Expected)
	require.Equal(t, 0, rerr.Got)
}

func TestRuntimeErrorFriendly(t *testing.T) {
	err := &RuntimeError{
		Kind:      IntegerOverflow,
		Message:   "integer overflow: 9223372036854775807 + 1",
		SourceTag: "main.lace",
		Location:  errors.SourceLocation{Line: 1, Column: 21, Source: "let x = 9223372036854775807 + 1;"},
		Stack: []errors.StackFrame{
			{Function: "main", Location: errors.SourceLocation{Filename: "main.lace", Line: 1, Column: 21}},
		},
	}
	msg := err.FriendlyErrorMessage()
	require.Contains(t, msg, "runtime error[E3005]: integer overflow: 9223372036854775807 + 1")
	require.Contains(t, msg, "--> main.lace:1:21")
	require.Contains(t, msg, " 1 | let x = 9223372036854775807 + 1;")
	require.Contains(t, msg, "at main (main.lace:1:21)")
}

func TestInternalError(t *testing.T) {
	err := NewInternalError("unknown opcode %d", 200)
	require.Equal(t, "internal error: unknown opcode 200", err.Error())

	err.Function = "main"
	err.IP = 3
	require.Equal(t, "internal error: unknown opcode 200 (in main at ip 3)", err.Error())
	require.Contains(t, err.FriendlyErrorMessage(), "internal error[E9001]: unknown opcode 200")
	require.Contains(t, err.FriendlyErrorMessage(), "note: in main at instruction 3")

	var rerr *RuntimeError
	require.False(t, stderrors.As(error(err), &rerr))
}

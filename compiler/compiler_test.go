package compiler

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/lacelang/lace/builtins"
	"github.com/lacelang/lace/bytecode"
	"github.com/lacelang/lace/errors"
	"github.com/lacelang/lace/object"
	"github.com/lacelang/lace/op"
	"github.com/lacelang/lace/parser"
	"github.com/stretchr/testify/require"
)

func compileSource(t *testing.T, src string, opts ...Option) (*bytecode.Code, error) {
	t.Helper()
	program, err := parser.Parse(context.Background(), src)
	require.NoError(t, err)
	opts = append([]Option{WithSource(src), WithFilename("t.lace")}, opts...)
	return Compile(program, opts...)
}

func mustCompile(t *testing.T, src string, opts ...Option) *bytecode.Code {
	t.Helper()
	code, err := compileSource(t, src, opts...)
	require.NoError(t, err)
	return code
}

func instructions(code *bytecode.Code) []op.Instruction {
	result := make([]op.Instruction, code.InstructionCount())
	for i := range result {
		result[i] = code.InstructionAt(i)
	}
	return result
}

func constants(code *bytecode.Code) []object.Object {
	result := make([]object.Object, code.ConstantCount())
	for i := range result {
		result[i] = code.ConstantAt(i)
	}
	return result
}

func TestLowering(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []op.Instruction
	}{
		{
			name:  "final expression stays on the stack",
			input: "1; 2;",
			expected: []op.Instruction{
				op.Make(op.LoadConst, 0),
				op.Make(op.PopTop),
				op.Make(op.LoadConst, 1),
			},
		},
		{
			name:  "builtin values",
			input: "true; false; none;",
			expected: []op.Instruction{
				op.Make(op.LoadBuiltinValue, uint32(op.BuiltinTrue)),
				op.Make(op.PopTop),
				op.Make(op.LoadBuiltinValue, uint32(op.BuiltinFalse)),
				op.Make(op.PopTop),
				op.Make(op.LoadBuiltinValue, uint32(op.BuiltinNone)),
			},
		},
		{
			name:  "let and assignment",
			input: "let mut x = 1; x = x - 2;",
			expected: []op.Instruction{
				op.Make(op.LoadConst, 0),
				op.Make(op.AssignVariable, 0),
				op.Make(op.LoadVariable, 0),
				op.Make(op.LoadConst, 1),
				op.Make(op.Sub),
				op.Make(op.AssignVariable, 0),
			},
		},
		{
			name:  "unary operators",
			input: "-x; !y; typeof z;",
			expected: []op.Instruction{
				op.Make(op.LoadVariable, 0),
				op.Make(op.Negate),
				op.Make(op.PopTop),
				op.Make(op.LoadVariable, 1),
				op.Make(op.Not),
				op.Make(op.PopTop),
				op.Make(op.LoadVariable, 2),
				op.Make(op.Typeof),
			},
		},
		{
			name:  "array and cast",
			input: "[1, 2] as string;",
			expected: []op.Instruction{
				op.Make(op.LoadConst, 0),
				op.Make(op.LoadConst, 1),
				op.Make(op.BuildArray, 2),
				op.Make(op.ConvertTo, uint32(op.TagString)),
			},
		},
		{
			name:  "if else if else",
			input: "if a { 1; } else if b { 2; } else { 3; }",
			expected: []op.Instruction{
				op.Make(op.LoadVariable, 0),
				op.Make(op.Not),
				op.Make(op.JumpIfTrue, 6),
				op.Make(op.LoadConst, 0),
				op.Make(op.PopTop),
				op.Make(op.Jump, 14),
				op.Make(op.LoadVariable, 1),
				op.Make(op.Not),
				op.Make(op.JumpIfTrue, 12),
				op.Make(op.LoadConst, 1),
				op.Make(op.PopTop),
				op.Make(op.Jump, 14),
				op.Make(op.LoadConst, 2),
				op.Make(op.PopTop),
			},
		},
		{
			name:  "if without else",
			input: "if a { 1; }",
			expected: []op.Instruction{
				op.Make(op.LoadVariable, 0),
				op.Make(op.Not),
				op.Make(op.JumpIfTrue, 5),
				op.Make(op.LoadConst, 0),
				op.Make(op.PopTop),
			},
		},
		{
			name:  "empty else",
			input: "if a { 1; } else {}",
			expected: []op.Instruction{
				op.Make(op.LoadVariable, 0),
				op.Make(op.Not),
				op.Make(op.JumpIfTrue, 6),
				op.Make(op.LoadConst, 0),
				op.Make(op.PopTop),
				op.Make(op.Jump, 6),
			},
		},
		{
			name:  "while",
			input: "let mut i = 0; while i < 3 { i = i + 1; }",
			expected: []op.Instruction{
				op.Make(op.LoadConst, 0),
				op.Make(op.AssignVariable, 0),
				op.Make(op.LoadVariable, 0),
				op.Make(op.LoadConst, 1),
				op.Make(op.Lt),
				op.Make(op.Not),
				op.Make(op.JumpIfTrue, 12),
				op.Make(op.LoadVariable, 0),
				op.Make(op.LoadConst, 2),
				op.Make(op.Add),
				op.Make(op.AssignVariable, 0),
				op.Make(op.Jump, 2),
			},
		},
		{
			name:  "and",
			input: "a and b;",
			expected: []op.Instruction{
				op.Make(op.LoadVariable, 0),
				op.Make(op.JumpIfFalse, 6),
				op.Make(op.LoadVariable, 1),
				op.Make(op.JumpIfFalse, 6),
				op.Make(op.LoadBuiltinValue, uint32(op.BuiltinTrue)),
				op.Make(op.Jump, 7),
				op.Make(op.LoadBuiltinValue, uint32(op.BuiltinFalse)),
			},
		},
		{
			name:  "or",
			input: "a or b;",
			expected: []op.Instruction{
				op.Make(op.LoadVariable, 0),
				op.Make(op.JumpIfTrue, 6),
				op.Make(op.LoadVariable, 1),
				op.Make(op.JumpIfTrue, 6),
				op.Make(op.LoadBuiltinValue, uint32(op.BuiltinFalse)),
				op.Make(op.Jump, 7),
				op.Make(op.LoadBuiltinValue, uint32(op.BuiltinTrue)),
			},
		},
		{
			name:  "bare return in main",
			input: "return;",
			expected: []op.Instruction{
				op.Make(op.ReturnNone),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := mustCompile(t, tt.input)
			require.Equal(t, tt.expected, instructions(code))
			require.Equal(t, code.InstructionCount(), code.LocationCount())
		})
	}
}

func TestConstantDedup(t *testing.T) {
	code := mustCompile(t, `let a = 1; let b = 1; let c = "1"; let d = 1.0; let e = "1";`)
	require.Equal(t, []object.Object{
		object.NewInt(1),
		object.NewString("1"),
		object.NewFloat(1),
	}, constants(code))
	require.Equal(t, op.Make(op.LoadConst, 0), code.InstructionAt(2))
	require.Equal(t, op.Make(op.LoadConst, 1), code.InstructionAt(8))
}

func TestFunctions(t *testing.T) {
	code := mustCompile(t, `
fn add(mut a, b) {
	return a + b;
}
add(1, 2);
`)
	require.Equal(t, []op.Instruction{
		op.Make(op.LoadConst, 0),
		op.Make(op.LoadConst, 1),
		op.Make(op.CallFunction, 0, 2),
	}, instructions(code))
	require.Equal(t, "add", code.NameAt(0))

	add, ok := code.Child("add")
	require.True(t, ok)
	require.Equal(t, []op.Instruction{
		op.Make(op.LoadVariable, 0),
		op.Make(op.LoadVariable, 1),
		op.Make(op.Add),
		op.Make(op.Return),
	}, instructions(add))
	require.Equal(t, []string{"a", "b"}, add.ParameterNames())
	require.True(t, add.ParameterAt(0).Mutable)
	require.False(t, add.ParameterAt(1).Mutable)
	require.Equal(t, "t.lace", add.SourceTag())
}

func TestNestedFunctions(t *testing.T) {
	code := mustCompile(t, `
fn outer() {
	if true {
		fn inner() { return 1; }
	}
	return inner();
}
`)
	require.Equal(t, 0, code.InstructionCount())
	outer, ok := code.Child("outer")
	require.True(t, ok)
	_, ok = code.Child("inner")
	require.False(t, ok)
	inner, ok := outer.Child("inner")
	require.True(t, ok)
	require.Equal(t, 2, inner.InstructionCount())
}

func TestCallResolution(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		opts     []Option
		expected op.Instruction
	}{
		{
			name:     "bare primitive",
			input:    `len("ab");`,
			expected: op.Make(op.CallPrimitive, builtins.LenID, 1),
		},
		{
			name:     "explicit primitive",
			input:    `writeln!(1, 2);`,
			expected: op.Make(op.CallPrimitive, builtins.WritelnID, 2),
		},
		{
			name:     "declared function shadows primitive",
			input:    `len("ab"); fn len(x) { return 0; }`,
			expected: op.Make(op.CallFunction, 0, 1),
		},
		{
			name:     "host function shadows primitive",
			input:    `len("ab");`,
			opts:     []Option{WithFunctionNames("len")},
			expected: op.Make(op.CallFunction, 0, 1),
		},
		{
			name:     "bang forces primitive",
			input:    `len!("ab"); fn len(x) { return 0; }`,
			expected: op.Make(op.CallPrimitive, builtins.LenID, 1),
		},
		{
			name:     "unknown name is a function call",
			input:    `later(); fn later() {}`,
			expected: op.Make(op.CallFunction, 0, 0),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := mustCompile(t, tt.input, tt.opts...)
			var calls []op.Instruction
			for _, inst := range instructions(code) {
				if inst.Op == op.CallFunction || inst.Op == op.CallPrimitive {
					calls = append(calls, inst)
				}
			}
			require.Equal(t, []op.Instruction{tt.expected}, calls)
		})
	}
}

func TestCustomPrimitives(t *testing.T) {
	table, err := builtins.Default().Extend(builtins.Primitive{
		Name:    "double",
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(ctx context.Context, args []object.Object) (object.Object, error) {
			return args[0], nil
		},
	})
	require.NoError(t, err)
	prim, ok := table.Lookup("double")
	require.True(t, ok)

	code := mustCompile(t, "double(2);", WithPrimitives(table))
	require.Equal(t, op.Make(op.CallPrimitive, uint32(prim.ID), 1), code.InstructionAt(1))
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		code    errors.ErrorCode
		message string
		line    int
		column  int
	}{
		{"unknown primitive", "\nwritln!(1);", errors.E2001, `unknown primitive "writln"`, 2, 1},
		{"duplicate function", "fn f() {} fn f() {}", errors.E2002, `function "f" is already declared`, 1, 14},
		{"duplicate nested function", "fn f() {} if true { fn f() {} }", errors.E2002, `function "f" is already declared`, 1, 24},
		{"duplicate parameter", "fn f(a, a) {}", errors.E2003, `duplicate parameter "a" in function "f"`, 1, 9},
		{"unknown cast type", "1 as widget;", errors.E2005, `unknown type "widget"`, 1, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileSource(t, tt.input)
			require.Error(t, err)
			var cerr *errors.CompileError
			require.True(t, stderrors.As(err, &cerr))
			require.Equal(t, tt.code, cerr.Code)
			require.Equal(t, tt.message, cerr.Message)
			require.Equal(t, "t.lace", cerr.Filename)
			require.Equal(t, tt.line, cerr.Line)
			require.Equal(t, tt.column, cerr.Column)
		})
	}
}

func TestUnknownPrimitiveSuggestion(t *testing.T) {
	_, err := compileSource(t, "writln!(1);")
	var cerr *errors.CompileError
	require.True(t, stderrors.As(err, &cerr))
	require.Equal(t, "writln!(1);", cerr.SourceLine)
	require.Len(t, cerr.Suggestions, 1)
	require.Equal(t, "writeln", cerr.Suggestions[0].Value)
	require.Equal(t, 6, cerr.EndColumn)
}

func TestLocations(t *testing.T) {
	code := mustCompile(t, "let x = 1;\nwriteln!(x + 2);")
	// LOAD_CONST, ASSIGN, LOAD_VARIABLE, LOAD_CONST, ADD, CALL_PRIMITIVE
	require.Equal(t, bytecode.SourceLocation{Line: 1, Column: 9}, code.LocationAt(0))
	require.Equal(t, bytecode.SourceLocation{Line: 1, Column: 5}, code.LocationAt(1))
	require.Equal(t, bytecode.SourceLocation{Line: 2, Column: 10}, code.LocationAt(2))
	require.Equal(t, bytecode.SourceLocation{Line: 2, Column: 12}, code.LocationAt(4))
	require.Equal(t, bytecode.SourceLocation{Line: 2, Column: 1}, code.LocationAt(5))
	require.Equal(t, "writeln!(x + 2);", code.GetSourceLine(2))
}

func TestDeterministic(t *testing.T) {
	src := `
fn fib(n) {
	if n < 2 { return n; }
	return fib(n - 1) + fib(n - 2);
}
fn helper() { return "x"; }
writeln(fib(10), helper());
`
	first := mustCompile(t, src)
	second := mustCompile(t, src)
	require.True(t, first.Equal(second))
}

func TestNilProgram(t *testing.T) {
	_, err := Compile(nil)
	require.Error(t, err)
}

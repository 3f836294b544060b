package parser

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/lacelang/lace/ast"
	"github.com/lacelang/lace/errors"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, input string) *ast.Program {
	t.Helper()
	program, err := Parse(context.Background(), input)
	require.Nil(t, err)
	return program
}

func parseErrors(t *testing.T, input string, opts ...Option) []ParserError {
	t.Helper()
	_, err := Parse(context.Background(), input, opts...)
	require.NotNil(t, err)
	var errs *Errors
	require.True(t, stderrors.As(err, &errs))
	return errs.Errors()
}

func TestPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3;", "(1 + (2 * 3));"},
		{"(1 + 2) * 3;", "((1 + 2) * 3);"},
		{"2 ** 3 ** 2;", "(2 ** (3 ** 2));"},
		{"-2 ** 2;", "((-2) ** 2);"},
		{"a or b and c;", "(a or (b and c));"},
		{"a and b or c;", "((a and b) or c);"},
		{"a == b < c;", "(a == (b < c));"},
		{"a != b == c;", "((a != b) == c);"},
		{"1 << 2 + 3;", "((1 << 2) + 3);"},
		{"10 % 3 / 2;", "((10 % 3) / 2);"},
		{"x as int + 1;", "((x as int) + 1);"},
		{"-x as float;", "((-x) as float);"},
		{"2 * x as float;", "(2 * (x as float));"},
		{"!f(1, 2);", "(!f(1, 2));"},
		{"typeof [1, 'a'];", `(typeof [1, "a"]);`},
		{"writeln!(1, none);", "writeln!(1, none);"},
		{"[];", "[];"},
		{"[1, 2,];", "[1, 2];"},
		{"f();", "f();"},
		{"!true == false;", "((!true) == false);"},
		{"1.5e3 >= 2;", "(1.5e3 >= 2);"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			program := parse(t, tt.input)
			require.Len(t, program.Stmts, 1)
			require.Equal(t, tt.expected, program.String())
		})
	}
}

func TestStatements(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"let x = 1;", "let x = 1;"},
		{"let mut x: int = 1;", "let mut x: int = 1;"},
		{"x = x + 1;", "x = (x + 1);"},
		{"return;", "return;"},
		{"return 1 + 2;", "return (1 + 2);"},
		{
			"fn add(mut a: int, b) -> int { return a + b; }",
			"fn add(mut a: int, b) -> int { return (a + b); }",
		},
		{"fn f() {}", "fn f() { }"},
		{
			"if a { } else if b { 1; } else { return; }",
			"if a { } else if b { 1; } else { return; }",
		},
		{"if a { 1; }", "if a { 1; }"},
		{"while x < 3 { x = x + 1; }", "while (x < 3) { x = (x + 1); }"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			program := parse(t, tt.input)
			require.Len(t, program.Stmts, 1)
			require.Equal(t, tt.expected, program.String())
		})
	}
}

func TestIfChain(t *testing.T) {
	program := parse(t, `
if x == 1 {
	writeln!("one");
} else if x == 2 {
	writeln!("two");
} else if x == 3 {
} else {
	writeln!("many");
}`)
	require.Len(t, program.Stmts, 1)
	stmt, ok := program.Stmts[0].(*ast.If)
	require.True(t, ok)
	require.Len(t, stmt.Branches, 3)
	require.NotNil(t, stmt.Else)
	require.Len(t, stmt.Branches[2].Body.Stmts, 0)
	require.Equal(t, 2, stmt.Branches[0].IfPos.LineNumber())
	require.Equal(t, 4, stmt.Branches[1].IfPos.LineNumber())
}

func TestFuncDecl(t *testing.T) {
	program := parse(t, "fn f(a, mut b: float) { fn g() { return; } return g(); }")
	fn, ok := program.Stmts[0].(*ast.Func)
	require.True(t, ok)
	require.Equal(t, "f", fn.Name.Name)
	require.Len(t, fn.Params, 2)
	require.False(t, fn.Params[0].Mutable)
	require.Nil(t, fn.Params[0].Type)
	require.True(t, fn.Params[1].Mutable)
	require.Equal(t, "float", fn.Params[1].Type.Name)
	require.Nil(t, fn.ReturnType)
	require.Len(t, fn.Body.Stmts, 2)
	_, ok = fn.Body.Stmts[0].(*ast.Func)
	require.True(t, ok)
}

func TestCalls(t *testing.T) {
	program := parse(t, "print!(add(1, 2));")
	stmt := program.Stmts[0].(*ast.ExprStmt)
	outer := stmt.X.(*ast.Call)
	require.True(t, outer.Primitive)
	require.Equal(t, "print", outer.Fun.Name)
	inner := outer.Args[0].(*ast.Call)
	require.False(t, inner.Primitive)
	require.Equal(t, "add", inner.Fun.Name)
	require.Len(t, inner.Args, 2)
}

func TestLiterals(t *testing.T) {
	program := parse(t, `9223372036854775807; 0.25; "a\tb"; true; none;`)
	require.Len(t, program.Stmts, 5)
	values := make([]ast.Expr, 5)
	for i, stmt := range program.Stmts {
		values[i] = stmt.(*ast.ExprStmt).X
	}
	require.Equal(t, int64(9223372036854775807), values[0].(*ast.Int).Value)
	require.Equal(t, 0.25, values[1].(*ast.Float).Value)
	require.Equal(t, "a\tb", values[2].(*ast.String).Value)
	require.True(t, values[3].(*ast.Bool).Value)
	_, ok := values[4].(*ast.None)
	require.True(t, ok)
}

func TestPositions(t *testing.T) {
	program, err := Parse(context.Background(), "let x = 1;\n  writeln!(x);", WithFilename("pos.lace"))
	require.Nil(t, err)
	call := program.Stmts[1].(*ast.ExprStmt).X.(*ast.Call)
	require.Equal(t, 2, call.Pos().LineNumber())
	require.Equal(t, 3, call.Pos().ColumnNumber())
	require.Equal(t, "pos.lace", call.Pos().File)
	require.Equal(t, 14, call.End().ColumnNumber())
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		code    errors.ErrorCode
		message string
	}{
		{
			"missing semicolon",
			"let x = 1",
			errors.E1005,
			`parse error: unexpected end of file while parsing let statement (expected ";") (t.lace:1:10)`,
		},
		{
			"missing name",
			"let 5 = 1;",
			errors.E1006,
			`parse error: unexpected "5" while parsing let statement (expected identifier) (t.lace:1:5)`,
		},
		{
			"missing expression",
			"x = ;",
			errors.E1004,
			`parse error: unexpected ";" (expected an expression) (t.lace:1:5)`,
		},
		{
			"unterminated string",
			`let s = "abc;`,
			errors.E1002,
			"syntax error: unterminated string literal (t.lace:1:9)",
		},
		{
			"illegal character",
			"let a = 1 @ 2;",
			errors.E1011,
			"syntax error: illegal character '@' (t.lace:1:11)",
		},
		{
			"call of call",
			"f(1)(2);",
			errors.E1003,
			"parse error: only named functions can be called (t.lace:1:5)",
		},
		{
			"unclosed block",
			"while true { x = 1;",
			errors.E1007,
			"parse error: unexpected end of file (unclosed block) (t.lace:1:20)",
		},
		{
			"integer out of range",
			"9223372036854775808;",
			errors.E1008,
			"parse error: integer literal 9223372036854775808 is out of range (t.lace:1:1)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseErrors(t, tt.input, WithFilename("t.lace"))
			require.Len(t, errs, 1)
			require.Equal(t, tt.code, errs[0].Code())
			require.Equal(t, tt.message, errs[0].Error())
		})
	}
}

func TestErrorRecovery(t *testing.T) {
	input := "let = 1;\nlet y = ;\nlet z = 3;\nfn f() { let = 2; }\nz;"
	program, err := Parse(context.Background(), input)
	require.NotNil(t, err)
	var errs *Errors
	require.True(t, stderrors.As(err, &errs))
	require.Equal(t, 3, errs.Count())
	require.Equal(t, 1, errs.Errors()[0].StartPosition().LineNumber())
	require.Equal(t, 2, errs.Errors()[1].StartPosition().LineNumber())
	require.Equal(t, 4, errs.Errors()[2].StartPosition().LineNumber())
	require.Equal(t, "let z = 3;\nz;", program.String())
}

func TestMissingSemicolonRecovery(t *testing.T) {
	program, err := Parse(context.Background(), "let x = 1\nlet y = 2;")
	require.NotNil(t, err)
	require.Equal(t, "let y = 2;", program.String())
}

func TestMaxErrors(t *testing.T) {
	input := strings.Repeat("let = 1;\n", MaxErrors+5)
	errs := parseErrors(t, input)
	require.Len(t, errs, MaxErrors)
}

func TestMaxDepth(t *testing.T) {
	input := strings.Repeat("(", 20) + "1" + strings.Repeat(")", 20) + ";"
	errs := parseErrors(t, input, WithMaxDepth(10))
	require.Equal(t, errors.E1009, errs[0].Code())

	_, err := Parse(context.Background(), input)
	require.Nil(t, err)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Parse(ctx, "let x = 1;")
	require.ErrorIs(t, err, context.Canceled)
}

func TestFriendlyErrorMessage(t *testing.T) {
	errs := parseErrors(t, "let x = 1 2;", WithFilename("main.lace"))
	msg := errs[0].FriendlyErrorMessage()
	require.Contains(t, msg, "parse error[E1005]:")
	require.Contains(t, msg, "--> main.lace:1:11")
	require.Contains(t, msg, " 1 | let x = 1 2;")

	_, err := Parse(context.Background(), "let = 1;\nlet = 2;")
	rendered := errors.Render(err, false)
	require.Contains(t, rendered, "found 2 errors")
}

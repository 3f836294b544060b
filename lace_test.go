package lace

import (
	"bytes"
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/lacelang/lace/builtins"
	"github.com/lacelang/lace/errors"
	"github.com/lacelang/lace/errz"
	"github.com/lacelang/lace/object"
	"github.com/lacelang/lace/parser"
	"github.com/lacelang/lace/vm"
	"github.com/stretchr/testify/require"
)

func TestBasicUsage(t *testing.T) {
	result, err := Eval(context.Background(), `1 + 1;`)
	require.NoError(t, err)
	require.Equal(t, object.NewInt(2), result)
}

func TestEval(t *testing.T) {
	tests := []struct {
		input    string
		expected object.Object
	}{
		{`fn sq(n) { return n * n; } sq(9);`, object.NewInt(81)},
		{`let s = "ab"; s * 2 + "!";`, object.NewString("abab!")},
		{`typeof (1 + 1.0);`, object.NewString("Float")},
		{`"12" as int + 1;`, object.NewInt(13)},
		{`let mut i = 0; while i < 10 { i = i + 3; } i;`, object.NewInt(12)},
		{`fn sign(n) { if n < 0 { return -1; } else if n == 0 { return 0; } return 1; } [sign(-5), sign(0), sign(5)];`,
			object.NewArray([]object.Object{object.NewInt(-1), object.NewInt(0), object.NewInt(1)})},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := Eval(context.Background(), tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.expected, result)
		})
	}
}

func TestCompileOnceRunConcurrently(t *testing.T) {
	ctx := context.Background()
	code, err := Compile(ctx, `let r = input * input; r;`)
	require.NoError(t, err)

	results := make([]object.Object, 10)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := Run(ctx, code, WithGlobals(map[string]any{"input": i}))
			if err == nil {
				results[i] = result
			}
		}(i)
	}
	wg.Wait()
	for i, result := range results {
		require.Equal(t, object.NewInt(int64(i*i)), result)
	}
}

func TestOutput(t *testing.T) {
	var out bytes.Buffer
	_, err := Eval(context.Background(), `writeln!("hello, ", name); print("done");`,
		WithStdout(&out), WithGlobals(map[string]any{"name": "lace"}))
	require.NoError(t, err)
	require.Equal(t, "hello, lace\ndone", out.String())
}

func TestSyntaxError(t *testing.T) {
	_, err := Eval(context.Background(), `let = 1;`, WithFilename("bad.lace"))
	require.Error(t, err)
	var perrs *parser.Errors
	require.True(t, stderrors.As(err, &perrs))
	require.Equal(t, "bad.lace", perrs.First().File())
}

func TestRuntimeError(t *testing.T) {
	_, err := Eval(context.Background(), "let x = 1;\nx / 0;", WithFilename("div.lace"))
	require.ErrorIs(t, err, errz.ErrDivisionByZero)
	var rerr *errz.RuntimeError
	require.True(t, stderrors.As(err, &rerr))
	require.Equal(t, "div.lace", rerr.SourceTag)
	require.Equal(t, 2, rerr.Location.Line)
	require.Equal(t, "x / 0;", rerr.Location.Source)
}

func TestTypecheck(t *testing.T) {
	ctx := context.Background()
	source := `let x = 1; x = 2; x;`

	// Diagnostics are advisory by default
	result, err := Eval(ctx, source)
	require.NoError(t, err)
	require.Equal(t, object.NewInt(2), result)

	_, err = Eval(ctx, source, WithTypecheck(true), WithFilename("imm.lace"))
	var cerrs *errors.CompileErrors
	require.True(t, stderrors.As(err, &cerrs))
	require.Len(t, cerrs.Errors, 1)
	require.Equal(t, errors.E2007, cerrs.Errors[0].Code)
	require.Equal(t, "imm.lace", cerrs.Errors[0].Filename)
	require.Equal(t, source, cerrs.Errors[0].SourceLine)

	diags, err := Check(ctx, source)
	require.NoError(t, err)
	require.Len(t, diags, 1)

	diags, err = Check(ctx, `let mut x = 1; x = 2;`)
	require.NoError(t, err)
	require.Empty(t, diags)
}

func TestLibraries(t *testing.T) {
	ctx := context.Background()
	lib, err := CompileLibrary(ctx, `
fn double(n) { return n * 2; }
fn quad(n) { return double(double(n)); }
`, WithFilename("lib.lace"))
	require.NoError(t, err)
	require.Len(t, lib, 2)

	result, err := Eval(ctx, `quad(3);`, WithFunctions(lib), WithTypecheck(true))
	require.NoError(t, err)
	require.Equal(t, object.NewInt(12), result)

	// Host functions take precedence over primitives of the same name
	lenLib, err := CompileLibrary(ctx, `fn len(x) { return -1; }`)
	require.NoError(t, err)
	result, err = Eval(ctx, `len("abc");`, WithFunctions(lenLib))
	require.NoError(t, err)
	require.Equal(t, object.NewInt(-1), result)

	_, err = Eval(ctx, `quad(1, 2);`, WithFunctions(lib), WithTypecheck(true))
	var cerrs *errors.CompileErrors
	require.True(t, stderrors.As(err, &cerrs))
	require.Equal(t, errors.E2009, cerrs.Errors[0].Code)

	_, err = CompileLibrary(ctx, "fn ok() {}\nwriteln!(1);", WithFilename("lib.lace"))
	require.ErrorContains(t, err, "lib.lace:2:1: a library may only declare functions")
}

func TestCustomPrimitives(t *testing.T) {
	table, err := builtins.Default().Extend(builtins.Primitive{
		Name:    "answer",
		MaxArgs: 0,
		Fn: func(ctx context.Context, args []object.Object) (object.Object, error) {
			return object.NewInt(42), nil
		},
	})
	require.NoError(t, err)
	result, err := Eval(context.Background(), `answer() + 0;`, WithPrimitives(table), WithTypecheck(true))
	require.NoError(t, err)
	require.Equal(t, object.NewInt(42), result)
}

func TestMaxFrameDepth(t *testing.T) {
	_, err := Eval(context.Background(), `fn f(n) { return f(n + 1); } f(0);`, WithMaxFrameDepth(16))
	var rerr *errz.RuntimeError
	require.True(t, stderrors.As(err, &rerr))
	require.Equal(t, errz.StackOverflow, rerr.Kind)
	require.Len(t, rerr.Stack, 16)
}

type callCounter struct {
	vm.NoOpObserver
	calls int
}

func (c *callCounter) Config() vm.ObserverConfig { return vm.NewObserverConfig(vm.StepNone) }

func (c *callCounter) OnCall(vm.CallEvent) bool {
	c.calls++
	return true
}

func TestObserver(t *testing.T) {
	counter := &callCounter{}
	_, err := Eval(context.Background(), `fn f(n) { if n == 0 { return 0; } return f(n - 1); } f(4);`,
		WithObserver(counter))
	require.NoError(t, err)
	require.Equal(t, 5, counter.calls)
}

// Package lace compiles and runs Lace programs.
//
// Compile turns source into immutable bytecode that is safe to run from many
// goroutines at once. Run executes bytecode in a fresh virtual machine, and
// Eval does both:
//
//	result, err := lace.Eval(ctx, `fn sq(n) { return n * n; } sq(x);`,
//		lace.WithGlobals(map[string]any{"x": 7}))
package lace

import (
	"context"
	"fmt"

	"github.com/lacelang/lace/ast"
	"github.com/lacelang/lace/bytecode"
	"github.com/lacelang/lace/compiler"
	"github.com/lacelang/lace/object"
	"github.com/lacelang/lace/parser"
	"github.com/lacelang/lace/typecheck"
	"github.com/lacelang/lace/vm"
)

// Compile parses and compiles source code into executable bytecode. With
// WithTypecheck(true), any typecheck diagnostic fails the compilation with
// an *errors.CompileErrors.
func Compile(ctx context.Context, source string, opts ...Option) (*bytecode.Code, error) {
	cfg := newConfig(opts...)
	program, err := parser.Parse(ctx, source, cfg.parserOpts()...)
	if err != nil {
		return nil, err
	}
	if cfg.typecheck {
		if diags := typecheck.Check(program, cfg.typecheckOpts()...); len(diags) > 0 {
			return nil, diags.ToCompileErrors(source)
		}
	}
	return compiler.Compile(program, cfg.compilerOpts(source)...)
}

// Check parses source and returns the typecheck diagnostics. A syntax error
// is returned as the error.
func Check(ctx context.Context, source string, opts ...Option) (typecheck.Diagnostics, error) {
	cfg := newConfig(opts...)
	program, err := parser.Parse(ctx, source, cfg.parserOpts()...)
	if err != nil {
		return nil, err
	}
	return typecheck.Check(program, cfg.typecheckOpts()...), nil
}

// CompileLibrary compiles a source file containing only function
// declarations and returns the functions by name, ready for WithFunctions.
func CompileLibrary(ctx context.Context, source string, opts ...Option) (map[string]*bytecode.Code, error) {
	cfg := newConfig(opts...)
	program, err := parser.Parse(ctx, source, cfg.parserOpts()...)
	if err != nil {
		return nil, err
	}
	for _, stmt := range program.Stmts {
		if _, ok := stmt.(*ast.Func); !ok {
			pos := stmt.Pos()
			return nil, fmt.Errorf("%s:%d:%d: a library may only declare functions",
				cfg.filenameOr("library"), pos.LineNumber(), pos.ColumnNumber())
		}
	}
	if cfg.typecheck {
		if diags := typecheck.Check(program, cfg.typecheckOpts()...); len(diags) > 0 {
			return nil, diags.ToCompileErrors(source)
		}
	}
	code, err := compiler.Compile(program, cfg.compilerOpts(source)...)
	if err != nil {
		return nil, err
	}
	functions := make(map[string]*bytecode.Code, code.ChildCount())
	for _, name := range code.ChildNames() {
		functions[name], _ = code.Child(name)
	}
	return functions, nil
}

// Run executes compiled bytecode and returns its result. Each call creates
// fresh runtime state, so the same Code may be run concurrently.
func Run(ctx context.Context, code *bytecode.Code, opts ...Option) (object.Object, error) {
	return vm.Run(ctx, code, newConfig(opts...).vmOpts()...)
}

// Eval compiles and runs source code.
func Eval(ctx context.Context, source string, opts ...Option) (object.Object, error) {
	code, err := Compile(ctx, source, opts...)
	if err != nil {
		return nil, err
	}
	return Run(ctx, code, opts...)
}

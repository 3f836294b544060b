// Package compiler lowers a Lace syntax tree into bytecode.
//
// # Two Passes
//
// Lace resolves calls by name at run time, so a function may be called
// before its declaration. The compiler still needs to know every function
// name up front, for one reason: a bare call such as len(x) names a
// primitive only when no function called len is declared anywhere in the
// program or provided by the host. Pass 1 collects those names.
//
// Pass 2 compiles each statement once, in order. A function declaration
// emits nothing into the enclosing stream. Its body is compiled into a
// child code object registered under the function's name.
//
// # Control Flow
//
// Jumps carry absolute instruction indexes. Conditional statements emit
// placeholder jumps while the branch bodies are compiled and patch them
// once the target offsets are known.
package compiler

import (
	"fmt"
	"math"

	"github.com/lacelang/lace/ast"
	"github.com/lacelang/lace/builtins"
	"github.com/lacelang/lace/bytecode"
	"github.com/lacelang/lace/errors"
	"github.com/lacelang/lace/internal/lexer"
	"github.com/lacelang/lace/internal/token"
	"github.com/lacelang/lace/object"
	"github.com/lacelang/lace/op"
)

const (
	// MaxArgs is the maximum number of arguments in a single call.
	MaxArgs = 255

	// MaxConstants is the maximum size of one code object's constant pool.
	MaxConstants = 1 << 24

	// Placeholder is the target written into a jump before it is patched.
	Placeholder = uint32(math.MaxUint32)
)

// Compiler compiles Lace syntax trees into bytecode.
type Compiler struct {
	// The entrypoint code. This remains fixed throughout compilation.
	main *Code

	// The code being compiled into. This changes as we enter and leave
	// function bodies.
	current *Code

	primitives *builtins.Table

	// Names of functions provided by the host
	functionNames []string

	// Every function name declared anywhere in the program, plus host names
	declared map[string]bool

	filename string
	source   string

	// Position of the construct currently being compiled
	pos token.Position
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithFilename sets the filename used in error messages and recorded as the
// source tag of the compiled code.
func WithFilename(filename string) Option {
	return func(c *Compiler) {
		c.filename = filename
	}
}

// WithSource sets the source text, used to quote lines in errors and stored
// on the compiled code.
func WithSource(source string) Option {
	return func(c *Compiler) {
		c.source = source
	}
}

// WithPrimitives sets the primitive table used to resolve primitive calls.
// The default table is builtins.Default().
func WithPrimitives(table *builtins.Table) Option {
	return func(c *Compiler) {
		c.primitives = table
	}
}

// WithFunctionNames declares the names of functions the host supplies to the
// virtual machine. A bare call to one of these names is compiled as a
// function call even when a primitive shares the name.
func WithFunctionNames(names ...string) Option {
	return func(c *Compiler) {
		c.functionNames = append(c.functionNames, names...)
	}
}

// Compile compiles the program and returns immutable bytecode.
func Compile(program *ast.Program, opts ...Option) (*bytecode.Code, error) {
	code, err := New(opts...).CompileAST(program)
	if err != nil {
		return nil, err
	}
	return code.ToBytecode(), nil
}

// New returns a Compiler configured with the given options.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		primitives: builtins.Default(),
		declared:   map[string]bool{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.main = newCode("main", c.source, c.filename)
	c.current = c.main
	return c
}

// Code returns the main code object being compiled into.
func (c *Compiler) Code() *Code {
	return c.main
}

// CompileAST compiles the program into the compiler's main code object.
// The value of a final top-level expression statement is left on the stack
// as the result of the program.
func (c *Compiler) CompileAST(program *ast.Program) (*Code, error) {
	if program == nil {
		return nil, fmt.Errorf("compile error: nil program")
	}
	c.collectFunctionNames(program)
	last := len(program.Stmts) - 1
	for i, stmt := range program.Stmts {
		if es, ok := stmt.(*ast.ExprStmt); ok && i == last {
			if err := c.compileExpr(es.X); err != nil {
				return nil, err
			}
			continue
		}
		if err := c.compileStmt(stmt); err != nil {
			return nil, err
		}
	}
	return c.main, nil
}

// collectFunctionNames records every declared function name so that bare
// calls can be resolved as functions or primitives regardless of order.
func (c *Compiler) collectFunctionNames(program *ast.Program) {
	for _, name := range c.functionNames {
		c.declared[name] = true
	}
	for node := range ast.Preorder(program) {
		if fn, ok := node.(*ast.Func); ok {
			c.declared[fn.Name.Name] = true
		}
	}
}

func (c *Compiler) compileStmts(stmts []ast.Stmt) error {
	for _, stmt := range stmts {
		if err := c.compileStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) compileStmt(stmt ast.Stmt) error {
	c.pos = stmt.Pos()
	switch stmt := stmt.(type) {
	case *ast.Let:
		return c.compileAssign(stmt.Name, stmt.Value)
	case *ast.Assign:
		return c.compileAssign(stmt.Name, stmt.Value)
	case *ast.ExprStmt:
		if err := c.compileExpr(stmt.X); err != nil {
			return err
		}
		c.emitAt(stmt.Pos(), op.PopTop)
	case *ast.Block:
		return c.compileStmts(stmt.Stmts)
	case *ast.If:
		return c.compileIf(stmt)
	case *ast.While:
		return c.compileWhile(stmt)
	case *ast.Return:
		if stmt.Value == nil {
			c.emit(op.ReturnNone)
			return nil
		}
		if err := c.compileExpr(stmt.Value); err != nil {
			return err
		}
		c.emitAt(stmt.ReturnPos, op.Return)
	case *ast.Func:
		return c.compileFunc(stmt)
	case *ast.BadStmt:
		return c.formatErrorWithCode(errors.E2004, "cannot compile malformed statement", stmt.Pos(), stmt.End(), nil)
	default:
		return c.formatErrorWithCode(errors.E2004, fmt.Sprintf("unsupported statement %T", stmt), stmt.Pos(), stmt.End(), nil)
	}
	return nil
}

func (c *Compiler) compileAssign(name *ast.Ident, value ast.Expr) error {
	if err := c.compileExpr(value); err != nil {
		return err
	}
	c.emitAt(name.Pos(), op.AssignVariable, c.current.addName(name.Name))
	return nil
}

// compileIf lowers an if / else if / else chain. Each condition is negated
// and guards a jump to the next candidate. Every branch but the last ends
// with a jump to the end of the chain.
func (c *Compiler) compileIf(stmt *ast.If) error {
	var endJumps []int
	for i, branch := range stmt.Branches {
		if err := c.compileExpr(branch.Cond); err != nil {
			return err
		}
		c.emitAt(branch.IfPos, op.Not)
		next := c.emitAt(branch.IfPos, op.JumpIfTrue, Placeholder)
		if err := c.compileStmts(branch.Body.Stmts); err != nil {
			return err
		}
		isLast := i == len(stmt.Branches)-1 && stmt.Else == nil
		if !isLast {
			endJumps = append(endJumps, c.emitAt(branch.Body.Rbrace, op.Jump, Placeholder))
		}
		c.patchJump(next, c.current.InstructionCount())
	}
	if stmt.Else != nil {
		if err := c.compileStmts(stmt.Else.Stmts); err != nil {
			return err
		}
	}
	end := c.current.InstructionCount()
	for i := len(endJumps) - 1; i >= 0; i-- {
		c.patchJump(endJumps[i], end)
	}
	return nil
}

func (c *Compiler) compileWhile(stmt *ast.While) error {
	start := c.current.InstructionCount()
	if err := c.compileExpr(stmt.Cond); err != nil {
		return err
	}
	c.emitAt(stmt.WhilePos, op.Not)
	exit := c.emitAt(stmt.WhilePos, op.JumpIfTrue, Placeholder)
	if err := c.compileStmts(stmt.Body.Stmts); err != nil {
		return err
	}
	c.emitAt(stmt.WhilePos, op.Jump, uint32(start))
	c.patchJump(exit, c.current.InstructionCount())
	return nil
}

func (c *Compiler) compileFunc(fn *ast.Func) error {
	name := fn.Name.Name
	if _, exists := c.current.children[name]; exists {
		return c.formatErrorWithCode(errors.E2002,
			fmt.Sprintf("function %q is already declared", name), fn.Name.Pos(), fn.Name.End(), nil)
	}
	params := make([]bytecode.Parameter, 0, len(fn.Params))
	seen := make(map[string]bool, len(fn.Params))
	for _, p := range fn.Params {
		if seen[p.Name.Name] {
			return c.formatErrorWithCode(errors.E2003,
				fmt.Sprintf("duplicate parameter %q in function %q", p.Name.Name, name),
				p.Name.Pos(), p.Name.End(), nil)
		}
		seen[p.Name.Name] = true
		params = append(params, bytecode.Parameter{Name: p.Name.Name, Mutable: p.Mutable})
	}

	parent := c.current
	c.current = parent.newChild(name, params)
	defer func() { c.current = parent }()
	for _, p := range params {
		c.current.addName(p.Name)
	}
	return c.compileStmts(fn.Body.Stmts)
}

func (c *Compiler) compileExpr(expr ast.Expr) error {
	c.pos = expr.Pos()
	switch expr := expr.(type) {
	case *ast.Int:
		return c.emitConstant(object.NewInt(expr.Value))
	case *ast.Float:
		return c.emitConstant(object.NewFloat(expr.Value))
	case *ast.String:
		return c.emitConstant(object.NewString(expr.Value))
	case *ast.Bool:
		if expr.Value {
			c.emit(op.LoadBuiltinValue, uint32(op.BuiltinTrue))
		} else {
			c.emit(op.LoadBuiltinValue, uint32(op.BuiltinFalse))
		}
	case *ast.None:
		c.emit(op.LoadBuiltinValue, uint32(op.BuiltinNone))
	case *ast.Ident:
		c.emit(op.LoadVariable, c.current.addName(expr.Name))
	case *ast.Array:
		for _, item := range expr.Items {
			if err := c.compileExpr(item); err != nil {
				return err
			}
		}
		c.emitAt(expr.Lbrack, op.BuildArray, uint32(len(expr.Items)))
	case *ast.Prefix:
		return c.compilePrefix(expr)
	case *ast.Infix:
		return c.compileInfix(expr)
	case *ast.Cast:
		return c.compileCast(expr)
	case *ast.Call:
		return c.compileCall(expr)
	case *ast.BadExpr:
		return c.formatErrorWithCode(errors.E2004, "cannot compile malformed expression", expr.Pos(), expr.End(), nil)
	default:
		return c.formatErrorWithCode(errors.E2004, fmt.Sprintf("unsupported expression %T", expr), expr.Pos(), expr.End(), nil)
	}
	return nil
}

func (c *Compiler) emitConstant(value object.Object) error {
	idx, ok := c.current.addConstant(value)
	if !ok {
		return c.formatErrorWithCode(errors.E2004, "number of constants exceeded limits", c.pos, c.pos, nil)
	}
	c.emit(op.LoadConst, idx)
	return nil
}

func (c *Compiler) compilePrefix(expr *ast.Prefix) error {
	if err := c.compileExpr(expr.X); err != nil {
		return err
	}
	switch expr.Op {
	case "-":
		c.emitAt(expr.OpPos, op.Negate)
	case "!":
		c.emitAt(expr.OpPos, op.Not)
	case "typeof":
		c.emitAt(expr.OpPos, op.Typeof)
	default:
		return c.formatErrorWithCode(errors.E2004,
			fmt.Sprintf("unknown operator: %s", expr.Op), expr.OpPos, expr.OpPos, nil)
	}
	return nil
}

var binaryOps = map[string]op.Code{
	"+":  op.Add,
	"-":  op.Sub,
	"*":  op.Mul,
	"/":  op.Div,
	"%":  op.Mod,
	"**": op.Pow,
	"<<": op.ShiftLeft,
	">>": op.ShiftRight,
	"==": op.Eq,
	"!=": op.Ne,
	"<":  op.Lt,
	">":  op.Gt,
	"<=": op.Le,
	">=": op.Ge,
}

func (c *Compiler) compileInfix(expr *ast.Infix) error {
	switch expr.Op {
	case "and":
		return c.compileLogical(expr, op.JumpIfFalse, op.BuiltinFalse, op.BuiltinTrue)
	case "or":
		return c.compileLogical(expr, op.JumpIfTrue, op.BuiltinTrue, op.BuiltinFalse)
	}
	opcode, ok := binaryOps[expr.Op]
	if !ok {
		return c.formatErrorWithCode(errors.E2004,
			fmt.Sprintf("unknown operator: %s", expr.Op), expr.OpPos, expr.OpPos, nil)
	}
	if err := c.compileExpr(expr.X); err != nil {
		return err
	}
	if err := c.compileExpr(expr.Y); err != nil {
		return err
	}
	c.emitAt(expr.OpPos, opcode)
	return nil
}

// compileLogical lowers "and" and "or" with short circuiting. Either
// operand may decide the result. The expression always produces a Bool.
//
//	X; <jump> short; Y; <jump> short; LOAD otherwise; JUMP end
//	short: LOAD decided
//	end:
func (c *Compiler) compileLogical(expr *ast.Infix, jump op.Code, decided, otherwise op.BuiltinValue) error {
	if err := c.compileExpr(expr.X); err != nil {
		return err
	}
	first := c.emitAt(expr.OpPos, jump, Placeholder)
	if err := c.compileExpr(expr.Y); err != nil {
		return err
	}
	second := c.emitAt(expr.OpPos, jump, Placeholder)
	c.emitAt(expr.OpPos, op.LoadBuiltinValue, uint32(otherwise))
	end := c.emitAt(expr.OpPos, op.Jump, Placeholder)
	short := c.current.InstructionCount()
	c.emitAt(expr.OpPos, op.LoadBuiltinValue, uint32(decided))
	c.patchJump(first, short)
	c.patchJump(second, short)
	c.patchJump(end, c.current.InstructionCount())
	return nil
}

func (c *Compiler) compileCast(expr *ast.Cast) error {
	tag, ok := op.LookupTypeTag(expr.Type.Name)
	if !ok {
		return c.formatErrorWithCode(errors.E2005,
			fmt.Sprintf("unknown type %q", expr.Type.Name), expr.Type.Pos(), expr.Type.End(),
			errors.SuggestSimilar(expr.Type.Name, []string{"int", "float", "string", "array", "bool"}))
	}
	if err := c.compileExpr(expr.X); err != nil {
		return err
	}
	c.emitAt(expr.AsPos, op.ConvertTo, uint32(tag))
	return nil
}

func (c *Compiler) compileCall(call *ast.Call) error {
	name := call.Fun.Name
	if len(call.Args) > MaxArgs {
		return c.formatErrorWithCode(errors.E2004,
			fmt.Sprintf("call to %q has too many arguments (%d, limit %d)", name, len(call.Args), MaxArgs),
			call.Pos(), call.End(), nil)
	}
	for _, arg := range call.Args {
		if err := c.compileExpr(arg); err != nil {
			return err
		}
	}
	argc := uint32(len(call.Args))
	if call.Primitive || (!c.declared[name] && c.isPrimitive(name)) {
		prim, ok := c.primitives.Lookup(name)
		if !ok {
			return c.formatErrorWithCode(errors.E2001,
				fmt.Sprintf("unknown primitive %q", name), call.Fun.Pos(), call.Fun.End(),
				errors.SuggestSimilar(name, c.primitives.Names()))
		}
		c.emitAt(call.Fun.Pos(), op.CallPrimitive, uint32(prim.ID), argc)
		return nil
	}
	c.emitAt(call.Fun.Pos(), op.CallFunction, c.current.addName(name), argc)
	return nil
}

func (c *Compiler) isPrimitive(name string) bool {
	_, ok := c.primitives.Lookup(name)
	return ok
}

// emit appends an instruction located at the current node and returns its
// index.
func (c *Compiler) emit(opcode op.Code, operands ...uint32) int {
	return c.emitAt(c.pos, opcode, operands...)
}

func (c *Compiler) emitAt(pos token.Position, opcode op.Code, operands ...uint32) int {
	code := c.current
	idx := len(code.instructions)
	code.instructions = append(code.instructions, op.Make(opcode, operands...))
	code.locations = append(code.locations, bytecode.SourceLocation{
		Line:   pos.LineNumber(),
		Column: pos.ColumnNumber(),
	})
	return idx
}

// patchJump sets the target of the jump instruction at idx.
func (c *Compiler) patchJump(idx, target int) {
	c.current.instructions[idx].A = uint32(target)
}

// formatErrorWithCode creates a CompileError with an error code and optional
// suggestions.
func (c *Compiler) formatErrorWithCode(code errors.ErrorCode, msg string, pos, end token.Position, suggestions []errors.Suggestion) error {
	filename := c.filename
	if filename == "" {
		filename = "unknown"
	}
	err := &errors.CompileError{
		Code:        code,
		Message:     msg,
		Filename:    filename,
		Line:        pos.LineNumber(),
		Column:      pos.ColumnNumber(),
		SourceLine:  lexer.LineAt(c.source, pos.LineStart),
		Suggestions: suggestions,
	}
	if end.Line == pos.Line && end.Column > pos.Column {
		err.EndColumn = end.Column
	}
	return err
}

package typecheck

import (
	"sort"

	"github.com/lacelang/lace/ast"
	"github.com/lacelang/lace/builtins"
	"github.com/lacelang/lace/errors"
)

// Checker holds the state of one typecheck run.
type Checker struct {
	primitives *builtins.Table
	external   map[string]int
	globals    map[string]*signature
	declared   map[string]bool // every function name declared anywhere
	diags      Diagnostics
}

type signature struct {
	decl     *ast.Func
	arity    int // -1 when unknown
	ret      Kind
	children map[string]*signature
}

type binding struct {
	kind      Kind
	mutable   bool
	annotated bool
}

// scope is the checking state of one function body, or of the main program
// when fn is nil.
type scope struct {
	fn       *signature
	vars     map[string]*binding
	children map[string]*signature
	globals  *scope
}

// Check typechecks a parsed program.
func Check(program *ast.Program, opts ...Option) Diagnostics {
	c := &Checker{
		primitives: builtins.Default(),
		external:   map[string]int{},
		globals:    map[string]*signature{},
		declared:   map[string]bool{},
	}
	for _, opt := range opts {
		opt(c)
	}
	for name, n := range c.external {
		c.globals[name] = &signature{arity: n, ret: Unknown}
		c.declared[name] = true
	}
	for node := range ast.Preorder(program) {
		if fn, ok := node.(*ast.Func); ok {
			c.declared[fn.Name.Name] = true
		}
	}
	main := &scope{vars: map[string]*binding{}}
	main.children = c.declare(program.Stmts)
	for name, sig := range main.children {
		c.globals[name] = sig
	}
	c.checkStmts(main, program.Stmts)
	return c.diags
}

func (c *Checker) report(d *Diagnostic) {
	c.diags = append(c.diags, d)
}

func (c *Checker) errorAt(node ast.Node, code errors.ErrorCode, format string, args ...any) *Diagnostic {
	d := newDiagnostic(code, node.Pos(), node.End(), format, args...)
	c.report(d)
	return d
}

// declare collects the functions declared directly in stmts, including
// those inside if and while bodies but not those nested in other functions.
func (c *Checker) declare(stmts []ast.Stmt) map[string]*signature {
	funcs := map[string]*signature{}
	var visit func([]ast.Stmt)
	visit = func(stmts []ast.Stmt) {
		for _, stmt := range stmts {
			switch stmt := stmt.(type) {
			case *ast.Func:
				name := stmt.Name.Name
				if _, exists := funcs[name]; exists {
					c.errorAt(stmt.Name, errors.E2002, "function %q is already declared", name)
					continue
				}
				funcs[name] = c.signatureOf(stmt)
			case *ast.If:
				for _, branch := range stmt.Branches {
					visit(branch.Body.Stmts)
				}
				if stmt.Else != nil {
					visit(stmt.Else.Stmts)
				}
			case *ast.While:
				visit(stmt.Body.Stmts)
			}
		}
	}
	visit(stmts)
	return funcs
}

func (c *Checker) signatureOf(fn *ast.Func) *signature {
	sig := &signature{decl: fn, arity: len(fn.Params), ret: Unknown}
	if fn.ReturnType != nil {
		sig.ret = c.annotation(fn.ReturnType)
	}
	return sig
}

// annotation resolves a type name, reporting unknown names.
func (c *Checker) annotation(name *ast.Ident) Kind {
	kind, ok := lookupKind(name.Name)
	if !ok {
		d := c.errorAt(name, errors.E2005, "unknown type %q", name.Name)
		d.Suggestions = errors.SuggestSimilar(name.Name, typeNames)
	}
	return kind
}

func (c *Checker) checkStmts(s *scope, stmts []ast.Stmt) {
	for _, stmt := range stmts {
		c.checkStmt(s, stmt)
	}
}

func (c *Checker) checkStmt(s *scope, stmt ast.Stmt) {
	switch stmt := stmt.(type) {
	case *ast.Let:
		kind := c.expr(s, stmt.Value)
		b := &binding{kind: kind, mutable: stmt.Mutable}
		if stmt.Type != nil {
			declared := c.annotation(stmt.Type)
			if declared != Unknown {
				if kind != Unknown && kind != declared {
					c.errorAt(stmt.Value, errors.E2006,
						"cannot use %s value as %s in declaration of %q", kind, declared, stmt.Name.Name)
				}
				b.kind = declared
				b.annotated = true
			}
		}
		s.vars[stmt.Name.Name] = b
	case *ast.Assign:
		kind := c.expr(s, stmt.Value)
		name := stmt.Name.Name
		b, ok := s.vars[name]
		if !ok {
			// Assignment always targets the current frame, so this
			// introduces a new local.
			s.vars[name] = &binding{kind: kind, mutable: true}
			return
		}
		if !b.mutable {
			d := c.errorAt(stmt.Name, errors.E2007, "cannot assign to immutable variable %q", name)
			d.Hint = "declare it with let mut " + name
		}
		if b.annotated && kind != Unknown && kind != b.kind {
			c.errorAt(stmt.Value, errors.E2006, "cannot assign %s value to %q of type %s", kind, name, b.kind)
		}
		if !b.annotated {
			b.kind = kind
		}
	case *ast.ExprStmt:
		c.expr(s, stmt.X)
	case *ast.If:
		for _, branch := range stmt.Branches {
			c.expr(s, branch.Cond)
			c.checkStmts(s, branch.Body.Stmts)
		}
		if stmt.Else != nil {
			c.checkStmts(s, stmt.Else.Stmts)
		}
	case *ast.While:
		c.expr(s, stmt.Cond)
		c.checkStmts(s, stmt.Body.Stmts)
	case *ast.Return:
		c.checkReturn(s, stmt)
	case *ast.Func:
		c.checkFunc(s, stmt)
	}
}

func (c *Checker) checkReturn(s *scope, stmt *ast.Return) {
	kind := None
	if stmt.Value != nil {
		kind = c.expr(s, stmt.Value)
	}
	if s.fn == nil || s.fn.ret == Unknown || kind == Unknown || kind == s.fn.ret {
		return
	}
	var node ast.Node = stmt
	if stmt.Value != nil {
		node = stmt.Value
	}
	c.errorAt(node, errors.E2006, "function %q returns %s, found %s",
		s.fn.decl.Name.Name, s.fn.ret, kind)
}

func (c *Checker) checkFunc(parent *scope, fn *ast.Func) {
	sig := parent.children[fn.Name.Name]
	if sig == nil || sig.decl != fn {
		// A duplicate declaration; it was reported by declare.
		sig = c.signatureOf(fn)
	}
	globals := parent.globals
	if globals == nil {
		globals = parent
	}
	s := &scope{
		fn:       sig,
		vars:     map[string]*binding{},
		children: c.declare(fn.Body.Stmts),
		globals:  globals,
	}
	sig.children = s.children
	seen := map[string]bool{}
	for _, p := range fn.Params {
		if seen[p.Name.Name] {
			c.errorAt(p.Name, errors.E2003, "duplicate parameter %q in function %q", p.Name.Name, fn.Name.Name)
		}
		seen[p.Name.Name] = true
		b := &binding{kind: Unknown, mutable: p.Mutable}
		if p.Type != nil {
			if kind := c.annotation(p.Type); kind != Unknown {
				b.kind = kind
				b.annotated = true
			}
		}
		s.vars[p.Name.Name] = b
	}
	c.checkStmts(s, fn.Body.Stmts)
}

// lookupVar finds a variable in the current frame, then in the globals.
func (s *scope) lookupVar(name string) (*binding, bool) {
	if b, ok := s.vars[name]; ok {
		return b, true
	}
	if s.globals != nil {
		b, ok := s.globals.vars[name]
		return b, ok
	}
	return nil, false
}

// lookupFunc resolves a call the way the VM does: the current function's
// children first, then the global functions.
func (c *Checker) lookupFunc(s *scope, name string) (*signature, bool) {
	if sig, ok := s.children[name]; ok {
		return sig, true
	}
	sig, ok := c.globals[name]
	return sig, ok
}

func (c *Checker) visibleFuncs(s *scope) []string {
	var names []string
	for name := range s.children {
		names = append(names, name)
	}
	for name := range c.globals {
		if _, ok := s.children[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (c *Checker) expr(s *scope, expr ast.Expr) Kind {
	switch expr := expr.(type) {
	case *ast.Int:
		return Int
	case *ast.Float:
		return Float
	case *ast.String:
		return String
	case *ast.Bool:
		return Bool
	case *ast.None:
		return None
	case *ast.Array:
		for _, item := range expr.Items {
			c.expr(s, item)
		}
		return Array
	case *ast.Ident:
		if b, ok := s.lookupVar(expr.Name); ok {
			return b.kind
		}
		return Unknown
	case *ast.Prefix:
		kind := c.expr(s, expr.X)
		switch expr.Op {
		case "!":
			return Bool
		case "typeof":
			return String
		case "-":
			if kind == Unknown || kind.numeric() {
				return kind
			}
			c.errorAt(expr, errors.E2006, "unsupported operand type for -: %s", kind)
		}
		return Unknown
	case *ast.Infix:
		left := c.expr(s, expr.X)
		right := c.expr(s, expr.Y)
		kind, ok := binaryKind(expr.Op, left, right)
		if !ok {
			c.errorAt(expr, errors.E2006, "unsupported operand types for %s: %s and %s", expr.Op, left, right)
		}
		return kind
	case *ast.Cast:
		c.expr(s, expr.X)
		kind := c.annotation(expr.Type)
		if kind == None {
			c.errorAt(expr.Type, errors.E2005, "cannot convert to none")
			return Unknown
		}
		return kind
	case *ast.Call:
		return c.call(s, expr)
	}
	return Unknown
}

func (c *Checker) call(s *scope, call *ast.Call) Kind {
	for _, arg := range call.Args {
		c.expr(s, arg)
	}
	name := call.Fun.Name
	sig, declared := c.lookupFunc(s, name)
	// A bare call names a primitive unless the program or host declares a
	// function of the same name.
	if call.Primitive || (!c.declared[name] && c.isPrimitive(name)) {
		return c.primitiveCall(call)
	}
	if !declared {
		d := c.errorAt(call.Fun, errors.E2008, "undefined function %q", name)
		d.Suggestions = errors.SuggestSimilar(name, c.visibleFuncs(s))
		return Unknown
	}
	if sig.arity >= 0 && sig.arity != len(call.Args) {
		c.errorAt(call, errors.E2009, "function %q takes %d arguments (%d given)", name, sig.arity, len(call.Args))
	}
	return sig.ret
}

func (c *Checker) isPrimitive(name string) bool {
	_, ok := c.primitives.Lookup(name)
	return ok
}

func (c *Checker) primitiveCall(call *ast.Call) Kind {
	name := call.Fun.Name
	p, ok := c.primitives.Lookup(name)
	if !ok {
		d := c.errorAt(call.Fun, errors.E2001, "unknown primitive %q", name)
		d.Suggestions = errors.SuggestSimilar(name, c.primitives.Names())
		return Unknown
	}
	if !p.AcceptsArgs(len(call.Args)) {
		c.errorAt(call, errors.E2009, "primitive %q takes %s arguments (%d given)", name, p.ArityString(), len(call.Args))
	}
	if kind, ok := primitiveKinds[name]; ok {
		return kind
	}
	return Unknown
}

package ast

import (
	"strings"

	"github.com/lacelang/lace/internal/token"
)

// Let declares a variable: let [mut] name [: type] = value;
type Let struct {
	LetPos  token.Position
	Mutable bool
	Name    *Ident
	Type    *Ident // optional annotation
	Value   Expr
}

func (s *Let) stmtNode() {}

func (s *Let) Pos() token.Position { return s.LetPos }
func (s *Let) End() token.Position { return s.Value.End() }

func (s *Let) String() string {
	var b strings.Builder
	b.WriteString("let ")
	if s.Mutable {
		b.WriteString("mut ")
	}
	b.WriteString(s.Name.Name)
	if s.Type != nil {
		b.WriteString(": ")
		b.WriteString(s.Type.Name)
	}
	b.WriteString(" = ")
	b.WriteString(s.Value.String())
	b.WriteString(";")
	return b.String()
}

// Assign rebinds an existing variable: name = value;
type Assign struct {
	Name  *Ident
	Value Expr
}

func (s *Assign) stmtNode() {}

func (s *Assign) Pos() token.Position { return s.Name.Pos() }
func (s *Assign) End() token.Position { return s.Value.End() }

func (s *Assign) String() string {
	return s.Name.Name + " = " + s.Value.String() + ";"
}

// ExprStmt is an expression evaluated for its side effects.
type ExprStmt struct {
	X Expr
}

func (s *ExprStmt) stmtNode() {}

func (s *ExprStmt) Pos() token.Position { return s.X.Pos() }
func (s *ExprStmt) End() token.Position { return s.X.End() }

func (s *ExprStmt) String() string { return s.X.String() + ";" }

// Block is a braced sequence of statements.
type Block struct {
	Lbrace token.Position
	Stmts  []Stmt
	Rbrace token.Position
}

func (s *Block) stmtNode() {}

func (s *Block) Pos() token.Position { return s.Lbrace }
func (s *Block) End() token.Position { return s.Rbrace.Advance(1) }

func (s *Block) String() string {
	if len(s.Stmts) == 0 {
		return "{ }"
	}
	parts := make([]string, len(s.Stmts))
	for i, stmt := range s.Stmts {
		parts[i] = stmt.String()
	}
	return "{ " + strings.Join(parts, " ") + " }"
}

// Branch is one guarded arm of an if chain.
type Branch struct {
	IfPos token.Position
	Cond  Expr
	Body  *Block
}

// If is an if / else if / else chain. Exactly one branch body runs, or the
// else body when no condition holds.
type If struct {
	Branches []*Branch
	Else     *Block // nil if there is no else
}

func (s *If) stmtNode() {}

func (s *If) Pos() token.Position { return s.Branches[0].IfPos }
func (s *If) End() token.Position {
	if s.Else != nil {
		return s.Else.End()
	}
	return s.Branches[len(s.Branches)-1].Body.End()
}

func (s *If) String() string {
	var b strings.Builder
	for i, branch := range s.Branches {
		if i > 0 {
			b.WriteString(" else ")
		}
		b.WriteString("if ")
		b.WriteString(branch.Cond.String())
		b.WriteString(" ")
		b.WriteString(branch.Body.String())
	}
	if s.Else != nil {
		b.WriteString(" else ")
		b.WriteString(s.Else.String())
	}
	return b.String()
}

// While repeats Body as long as Cond is truthy.
type While struct {
	WhilePos token.Position
	Cond     Expr
	Body     *Block
}

func (s *While) stmtNode() {}

func (s *While) Pos() token.Position { return s.WhilePos }
func (s *While) End() token.Position { return s.Body.End() }

func (s *While) String() string {
	return "while " + s.Cond.String() + " " + s.Body.String()
}

// Return exits the current function. Value is nil for a bare return.
type Return struct {
	ReturnPos token.Position
	Value     Expr
}

func (s *Return) stmtNode() {}

func (s *Return) Pos() token.Position { return s.ReturnPos }
func (s *Return) End() token.Position {
	if s.Value != nil {
		return s.Value.End()
	}
	return s.ReturnPos.Advance(6) // len("return")
}

func (s *Return) String() string {
	if s.Value == nil {
		return "return;"
	}
	return "return " + s.Value.String() + ";"
}

// Param is a formal parameter of a function declaration.
type Param struct {
	Mutable bool
	Name    *Ident
	Type    *Ident // optional annotation
}

func (p *Param) String() string {
	var b strings.Builder
	if p.Mutable {
		b.WriteString("mut ")
	}
	b.WriteString(p.Name.Name)
	if p.Type != nil {
		b.WriteString(": ")
		b.WriteString(p.Type.Name)
	}
	return b.String()
}

// Func declares a named function. Functions are not values; they are
// called by name.
type Func struct {
	FnPos      token.Position
	Name       *Ident
	Params     []*Param
	ReturnType *Ident // optional annotation
	Body       *Block
}

func (s *Func) stmtNode() {}

func (s *Func) Pos() token.Position { return s.FnPos }
func (s *Func) End() token.Position { return s.Body.End() }

func (s *Func) String() string {
	params := make([]string, len(s.Params))
	for i, p := range s.Params {
		params[i] = p.String()
	}
	var b strings.Builder
	b.WriteString("fn ")
	b.WriteString(s.Name.Name)
	b.WriteString("(")
	b.WriteString(strings.Join(params, ", "))
	b.WriteString(") ")
	if s.ReturnType != nil {
		b.WriteString("-> ")
		b.WriteString(s.ReturnType.Name)
		b.WriteString(" ")
	}
	b.WriteString(s.Body.String())
	return b.String()
}

package ast

import (
	"strings"

	"github.com/lacelang/lace/internal/token"
)

// Ident is a reference to a variable.
type Ident struct {
	NamePos token.Position
	Name    string
}

func (x *Ident) exprNode() {}

func (x *Ident) Pos() token.Position { return x.NamePos }
func (x *Ident) End() token.Position { return x.NamePos.Advance(len(x.Name)) }

func (x *Ident) String() string { return x.Name }

// Prefix is a unary operator applied to an operand: "-", "!" or "typeof".
type Prefix struct {
	OpPos token.Position
	Op    string
	X     Expr
}

func (x *Prefix) exprNode() {}

func (x *Prefix) Pos() token.Position { return x.OpPos }
func (x *Prefix) End() token.Position { return x.X.End() }

func (x *Prefix) String() string {
	if x.Op == "typeof" {
		return "(typeof " + x.X.String() + ")"
	}
	return "(" + x.Op + x.X.String() + ")"
}

// Infix is a binary operator expression, including "and" and "or".
type Infix struct {
	X     Expr
	OpPos token.Position
	Op    string
	Y     Expr
}

func (x *Infix) exprNode() {}

func (x *Infix) Pos() token.Position { return x.X.Pos() }
func (x *Infix) End() token.Position { return x.Y.End() }

func (x *Infix) String() string {
	return "(" + x.X.String() + " " + x.Op + " " + x.Y.String() + ")"
}

// Cast is an explicit conversion: x as int.
type Cast struct {
	X     Expr
	AsPos token.Position
	Type  *Ident
}

func (x *Cast) exprNode() {}

func (x *Cast) Pos() token.Position { return x.X.Pos() }
func (x *Cast) End() token.Position { return x.Type.End() }

func (x *Cast) String() string {
	return "(" + x.X.String() + " as " + x.Type.Name + ")"
}

// Call is a call of a named function, or of a primitive when Primitive is
// set (written name!(...)).
type Call struct {
	Fun       *Ident
	Primitive bool
	Lparen    token.Position
	Args      []Expr
	Rparen    token.Position
}

func (x *Call) exprNode() {}

func (x *Call) Pos() token.Position { return x.Fun.Pos() }
func (x *Call) End() token.Position { return x.Rparen.Advance(1) }

func (x *Call) String() string {
	args := make([]string, len(x.Args))
	for i, arg := range x.Args {
		args[i] = arg.String()
	}
	name := x.Fun.Name
	if x.Primitive {
		name += "!"
	}
	return name + "(" + strings.Join(args, ", ") + ")"
}

package ast

import (
	"strconv"
	"strings"

	"github.com/lacelang/lace/internal/token"
)

// Int is an integer literal.
type Int struct {
	ValuePos token.Position
	Literal  string
	Value    int64
}

func (x *Int) exprNode() {}

func (x *Int) Pos() token.Position { return x.ValuePos }
func (x *Int) End() token.Position { return x.ValuePos.Advance(len(x.Literal)) }

func (x *Int) String() string { return x.Literal }

// Float is a floating point literal.
type Float struct {
	ValuePos token.Position
	Literal  string
	Value    float64
}

func (x *Float) exprNode() {}

func (x *Float) Pos() token.Position { return x.ValuePos }
func (x *Float) End() token.Position { return x.ValuePos.Advance(len(x.Literal)) }

func (x *Float) String() string { return x.Literal }

// String is a string literal. Value holds the unescaped contents.
type String struct {
	ValuePos token.Position
	Value    string
	EndPos   token.Position
}

func (x *String) exprNode() {}

func (x *String) Pos() token.Position { return x.ValuePos }
func (x *String) End() token.Position { return x.EndPos }

func (x *String) String() string { return strconv.Quote(x.Value) }

// Bool is a true or false literal.
type Bool struct {
	ValuePos token.Position
	Value    bool
}

func (x *Bool) exprNode() {}

func (x *Bool) Pos() token.Position { return x.ValuePos }
func (x *Bool) End() token.Position { return x.ValuePos.Advance(len(x.String())) }

func (x *Bool) String() string { return strconv.FormatBool(x.Value) }

// None is the none literal.
type None struct {
	NonePos token.Position
}

func (x *None) exprNode() {}

func (x *None) Pos() token.Position { return x.NonePos }
func (x *None) End() token.Position { return x.NonePos.Advance(4) } // len("none")

func (x *None) String() string { return "none" }

// Array is an array literal such as [1, 2, 3].
type Array struct {
	Lbrack token.Position
	Items  []Expr
	Rbrack token.Position
}

func (x *Array) exprNode() {}

func (x *Array) Pos() token.Position { return x.Lbrack }
func (x *Array) End() token.Position { return x.Rbrack.Advance(1) }

func (x *Array) String() string {
	items := make([]string, len(x.Items))
	for i, item := range x.Items {
		items[i] = item.String()
	}
	return "[" + strings.Join(items, ", ") + "]"
}

// Package token defines the keywords and tokens used when lexing Lace source.
package token

// Type describes the type of a token as a string.
type Type string

// Position points to a particular location in an input string.
type Position struct {
	Char      int    // byte offset within the file
	LineStart int    // byte offset of the start of the current line
	Line      int    // 0-indexed line number
	Column    int    // 0-indexed column number
	File      string // filename
}

// LineNumber returns the 1-indexed line number for this position in the input.
func (p Position) LineNumber() int {
	return p.Line + 1
}

// ColumnNumber returns the 1-indexed column number for this position in the input.
func (p Position) ColumnNumber() int {
	return p.Column + 1
}

// Advance returns the position n bytes further along the same line.
func (p Position) Advance(n int) Position {
	p.Char += n
	p.Column += n
	return p
}

// IsValid returns true if this position has been set.
func (p Position) IsValid() bool {
	return p.File != "" || p.Line > 0 || p.Column > 0 || p.Char > 0
}

// NoPos is the zero value Position, representing an unset position.
var NoPos = Position{}

// Token is one token lexed from the input source code.
type Token struct {
	Type          Type
	Literal       string
	StartPosition Position
	EndPosition   Position
}

// Token types
const (
	ARROW     Type = "->"
	ASSIGN    Type = "="
	ASTERISK  Type = "*"
	BANG      Type = "!"
	COLON     Type = ":"
	COMMA     Type = ","
	EOF       Type = "EOF"
	EQ        Type = "=="
	FLOAT     Type = "FLOAT"
	GT        Type = ">"
	GT_EQUALS Type = ">="
	GT_GT     Type = ">>"
	IDENT     Type = "IDENT"
	ILLEGAL   Type = "ILLEGAL"
	INT       Type = "INT"
	LBRACE    Type = "{"
	LBRACKET  Type = "["
	LPAREN    Type = "("
	LT        Type = "<"
	LT_EQUALS Type = "<="
	LT_LT     Type = "<<"
	MINUS     Type = "-"
	MOD       Type = "%"
	NOT_EQ    Type = "!="
	PLUS      Type = "+"
	POW       Type = "**"
	PRIMITIVE Type = "PRIMITIVE"
	RBRACE    Type = "}"
	RBRACKET  Type = "]"
	RPAREN    Type = ")"
	SEMICOLON Type = ";"
	SLASH     Type = "/"
	STRING    Type = "STRING"

	// Keywords
	AND    Type = "AND"
	AS     Type = "AS"
	ELSE   Type = "ELSE"
	FALSE  Type = "FALSE"
	FN     Type = "FN"
	IF     Type = "IF"
	LET    Type = "LET"
	MUT    Type = "MUT"
	NONE   Type = "NONE"
	OR     Type = "OR"
	RETURN Type = "RETURN"
	TRUE   Type = "TRUE"
	TYPEOF Type = "TYPEOF"
	WHILE  Type = "WHILE"
)

var keywords = map[string]Type{
	"and":    AND,
	"as":     AS,
	"else":   ELSE,
	"false":  FALSE,
	"fn":     FN,
	"if":     IF,
	"let":    LET,
	"mut":    MUT,
	"none":   NONE,
	"or":     OR,
	"return": RETURN,
	"true":   TRUE,
	"typeof": TYPEOF,
	"while":  WHILE,
}

// LookupIdentifier returns the keyword type for identifier, or IDENT if it
// is not a keyword.
func LookupIdentifier(identifier string) Type {
	if tok, ok := keywords[identifier]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword reports whether name is reserved.
func IsKeyword(name string) bool {
	_, ok := keywords[name]
	return ok
}

// Package lexer converts Lace source text into a stream of tokens.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lacelang/lace/errors"
	"github.com/lacelang/lace/internal/token"
)

const eof = -1

// Error is a lexical error such as an unterminated string.
type Error struct {
	Code    errors.ErrorCode
	Message string
	Start   token.Position
	End     token.Position
}

func (e *Error) Error() string {
	return e.Message
}

// Lexer produces tokens from an input string on demand.
type Lexer struct {
	input     string
	pos       int  // byte offset of ch
	readPos   int  // byte offset of the next rune
	ch        rune // current rune, or eof
	line      int
	lineStart int
	file      string
}

// New creates a lexer for the provided source text.
func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// SetFilename sets the filename recorded in token positions.
func (l *Lexer) SetFilename(file string) {
	l.file = file
}

// Filename returns the filename recorded in token positions.
func (l *Lexer) Filename() string {
	return l.file
}

// GetLineText returns the full source line on which tok starts.
func (l *Lexer) GetLineText(tok token.Token) string {
	return LineAt(l.input, tok.StartPosition.LineStart)
}

// LineAt returns the line of input that begins at byte offset lineStart.
func LineAt(input string, lineStart int) string {
	if lineStart < 0 || lineStart > len(input) {
		return ""
	}
	rest := input[lineStart:]
	if idx := strings.IndexByte(rest, '\n'); idx >= 0 {
		rest = rest[:idx]
	}
	return strings.TrimRight(rest, "\r")
}

// Next returns the next token. At the end of input it returns an EOF token
// on every call.
func (l *Lexer) Next() (token.Token, error) {
	l.skipWhitespaceAndComments()
	start := l.position()

	switch ch := l.ch; {
	case ch == eof:
		return token.Token{Type: token.EOF, StartPosition: start, EndPosition: start}, nil
	case isLetter(ch):
		return l.readIdentifier(start), nil
	case isDigit(ch):
		return l.readNumber(start), nil
	case ch == '"' || ch == '\'':
		return l.readString(start)
	}

	ch := l.ch
	l.readChar()
	switch ch {
	case '+':
		return l.token(token.PLUS, start), nil
	case '%':
		return l.token(token.MOD, start), nil
	case '/':
		return l.token(token.SLASH, start), nil
	case '(':
		return l.token(token.LPAREN, start), nil
	case ')':
		return l.token(token.RPAREN, start), nil
	case '{':
		return l.token(token.LBRACE, start), nil
	case '}':
		return l.token(token.RBRACE, start), nil
	case '[':
		return l.token(token.LBRACKET, start), nil
	case ']':
		return l.token(token.RBRACKET, start), nil
	case ',':
		return l.token(token.COMMA, start), nil
	case ';':
		return l.token(token.SEMICOLON, start), nil
	case ':':
		return l.token(token.COLON, start), nil
	case '-':
		return l.either('>', token.ARROW, token.MINUS, start), nil
	case '*':
		return l.either('*', token.POW, token.ASTERISK, start), nil
	case '=':
		return l.either('=', token.EQ, token.ASSIGN, start), nil
	case '!':
		return l.either('=', token.NOT_EQ, token.BANG, start), nil
	case '<':
		if l.ch == '<' {
			l.readChar()
			return l.token(token.LT_LT, start), nil
		}
		return l.either('=', token.LT_EQUALS, token.LT, start), nil
	case '>':
		if l.ch == '>' {
			l.readChar()
			return l.token(token.GT_GT, start), nil
		}
		return l.either('=', token.GT_EQUALS, token.GT, start), nil
	}
	tok := l.token(token.ILLEGAL, start)
	return tok, &Error{
		Code:    errors.E1011,
		Message: fmt.Sprintf("illegal character %q", ch),
		Start:   start,
		End:     tok.EndPosition,
	}
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.lineStart = l.readPos
	}
	l.pos = l.readPos
	if l.readPos >= len(l.input) {
		l.ch = eof
		return
	}
	r, width := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.readPos += width
}

func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

func (l *Lexer) position() token.Position {
	return token.Position{
		Char:      l.pos,
		LineStart: l.lineStart,
		Line:      l.line,
		Column:    l.pos - l.lineStart,
		File:      l.file,
	}
}

// token builds a token spanning from start to the rune before the current
// one. The end position is inclusive.
func (l *Lexer) token(typ token.Type, start token.Position) token.Token {
	literal := l.input[start.Char:l.pos]
	return token.Token{
		Type:          typ,
		Literal:       literal,
		StartPosition: start,
		EndPosition:   start.Advance(max(len(literal)-1, 0)),
	}
}

// either consumes next if it is the current rune and returns a token of
// type two, otherwise a token of type one.
func (l *Lexer) either(next rune, two, one token.Type, start token.Position) token.Token {
	if l.ch == next {
		l.readChar()
		return l.token(two, start)
	}
	return l.token(one, start)
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.ch != eof {
				l.readChar()
			}
		default:
			return
		}
	}
}

// readIdentifier reads an identifier or keyword. An identifier followed
// directly by "!" (and not "!=") names a primitive, as in writeln!(x). The
// literal of a primitive token is the bare name.
func (l *Lexer) readIdentifier(start token.Position) token.Token {
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	tok := l.token(token.LookupIdentifier(l.input[start.Char:l.pos]), start)
	if tok.Type == token.IDENT && l.ch == '!' && l.peekChar() != '=' {
		l.readChar()
		tok.Type = token.PRIMITIVE
		tok.EndPosition = tok.EndPosition.Advance(1)
	}
	return tok
}

func (l *Lexer) readNumber(start token.Position) token.Token {
	typ := token.INT
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		typ = token.FLOAT
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || next == '+' || next == '-' {
			typ = token.FLOAT
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}
	return l.token(typ, start)
}

// readString reads a quoted string. The token literal is the unescaped
// contents without the quotes.
func (l *Lexer) readString(start token.Position) (token.Token, error) {
	quote := l.ch
	l.readChar()
	var b strings.Builder
	for {
		switch l.ch {
		case quote:
			l.readChar()
			tok := l.token(token.STRING, start)
			tok.Literal = b.String()
			return tok, nil
		case eof, '\n':
			tok := l.token(token.ILLEGAL, start)
			return tok, &Error{
				Code:    errors.E1002,
				Message: "unterminated string literal",
				Start:   start,
				End:     tok.EndPosition,
			}
		case '\\':
			escPos := l.position()
			l.readChar()
			r, ok := unescape(l.ch)
			if !ok {
				return l.token(token.ILLEGAL, start), &Error{
					Code:    errors.E1010,
					Message: fmt.Sprintf("invalid escape sequence \\%c", l.ch),
					Start:   escPos,
					End:     escPos.Advance(1),
				}
			}
			b.WriteRune(r)
			l.readChar()
		default:
			b.WriteRune(l.ch)
			l.readChar()
		}
	}
}

func unescape(ch rune) (rune, bool) {
	switch ch {
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case 'r':
		return '\r', true
	case '0':
		return 0, true
	case '\\':
		return '\\', true
	case '"', '\'':
		return ch, true
	}
	return 0, false
}

func isLetter(ch rune) bool {
	return ch == '_' || ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') ||
		(ch >= utf8.RuneSelf && unicode.IsLetter(ch))
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

// Package errors defines the diagnostics shared by the Lace front end,
// compiler and virtual machine: source locations, stack frames, error codes
// and a formatter that renders them with a source snippet and caret.
package errors

import (
	"fmt"
	"strings"
)

// SourceLocation is a position in a source file.
type SourceLocation struct {
	Filename string
	Line     int    // 1-based line number
	Column   int    // 1-based column number
	Source   string // The line of source code
}

func (s SourceLocation) String() string {
	if s.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// IsZero returns true if the location has not been set.
func (s SourceLocation) IsZero() bool {
	return s.Line == 0 && s.Column == 0
}

// StackFrame is one active call at the time an error occurred.
type StackFrame struct {
	Function string
	Location SourceLocation
}

func (f StackFrame) String() string {
	if f.Function != "" {
		return fmt.Sprintf("at %s (%s)", f.Function, f.Location.String())
	}
	return fmt.Sprintf("at %s", f.Location.String())
}

// FormatStackTrace renders stack frames innermost first, one per line.
func FormatStackTrace(frames []StackFrame) string {
	if len(frames) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Stack trace:\n")
	for _, frame := range frames {
		b.WriteString("  ")
		b.WriteString(frame.String())
		b.WriteString("\n")
	}
	return b.String()
}

// FriendlyError is implemented by errors that have a human friendly message
// in addition to the lower level default error message.
type FriendlyError interface {
	Error() string
	FriendlyErrorMessage() string
}

// FormattableError is implemented by errors that can be rendered by a
// Formatter, with colors and source context.
type FormattableError interface {
	Error() string
	ToFormatted() *FormattedError
}

// MultiFormattableError is implemented by errors that aggregate several
// formattable errors, such as a batch of syntax errors.
type MultiFormattableError interface {
	Error() string
	ToFormattedMultiple() []*FormattedError
}

// Package typecheck runs a best-effort static pass over a Lace program.
//
// It infers the kinds of literals and operators and reports mistakes that
// would otherwise only surface at run time: annotation mismatches,
// assignment to immutable bindings, unknown functions and primitives,
// argument count mismatches and operators applied to incompatible kinds.
// Anything it cannot infer is left alone.
package typecheck

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/lacelang/lace/builtins"
	"github.com/lacelang/lace/errors"
	"github.com/lacelang/lace/internal/lexer"
	"github.com/lacelang/lace/internal/token"
)

// Diagnostic is one problem found by the typechecker.
type Diagnostic struct {
	Code        errors.ErrorCode    `json:"code"`
	Message     string              `json:"message"`
	Filename    string              `json:"file,omitempty"`
	Line        int                 `json:"line"`
	Column      int                 `json:"column"`
	EndColumn   int                 `json:"end_column,omitempty"`
	Hint        string              `json:"hint,omitempty"`
	Suggestions []errors.Suggestion `json:"-"`

	lineStart int
}

func newDiagnostic(code errors.ErrorCode, start, end token.Position, format string, args ...any) *Diagnostic {
	d := &Diagnostic{
		Code:      code,
		Message:   fmt.Sprintf(format, args...),
		Filename:  start.File,
		Line:      start.LineNumber(),
		Column:    start.ColumnNumber(),
		EndColumn: start.ColumnNumber(),
		lineStart: start.LineStart,
	}
	// End is exclusive; EndColumn is the last underlined column.
	if end.Line == start.Line && end.Column > start.Column {
		d.EndColumn = end.Column
	}
	return d
}

func (d *Diagnostic) Error() string {
	loc := fmt.Sprintf("%d:%d", d.Line, d.Column)
	if d.Filename != "" {
		loc = d.Filename + ":" + loc
	}
	return fmt.Sprintf("type error: %s (%s)", d.Message, loc)
}

// ToCompileError converts the diagnostic to a CompileError, quoting the
// offending line of source.
func (d *Diagnostic) ToCompileError(source string) *errors.CompileError {
	return &errors.CompileError{
		Code:        d.Code,
		Message:     d.Message,
		Filename:    d.Filename,
		Line:        d.Line,
		Column:      d.Column,
		EndColumn:   d.EndColumn,
		SourceLine:  lexer.LineAt(source, d.lineStart),
		Suggestions: d.Suggestions,
		Note:        d.Hint,
	}
}

// Diagnostics is the result of a typecheck, in source order.
type Diagnostics []*Diagnostic

// Err aggregates the diagnostics into a single error, or returns nil if
// there are none.
func (ds Diagnostics) Err() error {
	var result *multierror.Error
	for _, d := range ds {
		result = multierror.Append(result, d)
	}
	if result == nil {
		return nil
	}
	result.ErrorFormat = formatDiagnostics
	return result.ErrorOrNil()
}

// ToCompileErrors converts the diagnostics for display with source context.
func (ds Diagnostics) ToCompileErrors(source string) *errors.CompileErrors {
	out := &errors.CompileErrors{}
	for _, d := range ds {
		out.Add(d.ToCompileError(source))
	}
	return out
}

func formatDiagnostics(errs []error) string {
	lines := make([]string, len(errs))
	for i, err := range errs {
		lines[i] = "* " + err.Error()
	}
	noun := "problems"
	if len(errs) == 1 {
		noun = "problem"
	}
	return fmt.Sprintf("typecheck found %d %s:\n\t%s", len(errs), noun, strings.Join(lines, "\n\t"))
}

// Option configures a typecheck.
type Option func(*Checker)

// WithPrimitives sets the primitive table calls are checked against.
func WithPrimitives(table *builtins.Table) Option {
	return func(c *Checker) {
		c.primitives = table
	}
}

// WithFunctions declares functions supplied by the host at run time, by
// name and parameter count. A negative count skips the arity check.
func WithFunctions(arities map[string]int) Option {
	return func(c *Checker) {
		for name, n := range arities {
			c.external[name] = n
		}
	}
}

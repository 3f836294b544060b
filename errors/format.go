package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Formatter renders errors in a compiler-style layout: a header, a location
// arrow, the source line with carets, then hints, notes and a stack trace.
type Formatter struct {
	// UseColor enables ANSI color codes in output.
	UseColor bool
}

// NewFormatter creates a new error formatter.
func NewFormatter(useColor bool) *Formatter {
	return &Formatter{UseColor: useColor}
}

// Formatter colors ignore color.NoColor. Callers decide with UseColor.
func forcedColor(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	c.EnableColor()
	return c
}

var (
	colorError     = forcedColor(color.FgRed)
	colorErrorBold = forcedColor(color.FgHiRed, color.Bold)
	colorCode      = forcedColor(color.FgHiBlack)
	colorLocation  = forcedColor(color.FgCyan)
	colorGutter    = forcedColor(color.FgHiBlack)
	colorSource    = forcedColor(color.FgWhite)
	colorCaret     = forcedColor(color.FgHiRed, color.Bold)
	colorHint      = forcedColor(color.FgHiYellow)
	colorNote      = forcedColor(color.FgHiBlue)
)

// FormattedError is an error ready for display.
type FormattedError struct {
	Code        ErrorCode
	Kind        string // "error", "syntax error", "runtime error", etc.
	Message     string
	Filename    string
	Line        int
	Column      int
	EndColumn   int // For multi-character underlines
	SourceLines []SourceLineEntry
	Hint        string
	Note        string
	Stack       []StackFrame
}

// SourceLineEntry is a numbered line of source code.
type SourceLineEntry struct {
	Number int
	Text   string
	IsMain bool // True if this is the line with the error
}

func (f *Formatter) paint(c *color.Color, s string) string {
	if !f.UseColor {
		return s
	}
	return c.Sprint(s)
}

// Format renders a single error.
func (f *Formatter) Format(err *FormattedError) string {
	return f.FormatWithPrefix(err, "")
}

// FormatWithPrefix renders an error, labelling it with prefix (e.g. "1/5")
// when the error has no code.
func (f *Formatter) FormatWithPrefix(err *FormattedError, prefix string) string {
	var b strings.Builder
	width := 2
	if err.Line >= 100 {
		width = len(fmt.Sprint(err.Line))
	}
	gutter := strings.Repeat(" ", width)

	// error[E3005]: message
	label := "error"
	if err.Kind != "" {
		label = err.Kind
	}
	b.WriteString(f.paint(colorErrorBold, label))
	if err.Code != "" {
		b.WriteString(f.paint(colorCode, "["+string(err.Code)+"]"))
	} else if prefix != "" {
		b.WriteString(f.paint(colorCode, "["+prefix+"]"))
	}
	b.WriteString(f.paint(colorError, ": "))
	b.WriteString(err.Message)
	b.WriteString("\n")

	// --> file.lace:10:5
	if loc := err.location(); loc != "" {
		b.WriteString(gutter)
		b.WriteString(f.paint(colorLocation, "-->"))
		b.WriteString(" ")
		b.WriteString(f.paint(colorLocation, loc))
		b.WriteString("\n")
	}

	if len(err.SourceLines) > 0 {
		b.WriteString(f.paint(colorGutter, gutter+" |"))
		b.WriteString("\n")
		for _, line := range err.SourceLines {
			b.WriteString(f.paint(colorGutter, fmt.Sprintf("%*d | ", width, line.Number)))
			b.WriteString(f.paint(colorSource, line.Text))
			b.WriteString("\n")
			if line.IsMain && err.Column > 0 {
				count := 1
				if err.EndColumn > err.Column {
					count = err.EndColumn - err.Column + 1
				}
				b.WriteString(f.paint(colorGutter, gutter+" | "))
				b.WriteString(strings.Repeat(" ", err.Column-1))
				b.WriteString(f.paint(colorCaret, strings.Repeat("^", count)))
				b.WriteString("\n")
			}
		}
	}

	if err.Hint != "" {
		b.WriteString(f.paint(colorGutter, gutter+" |"))
		b.WriteString("\n")
		b.WriteString(f.paint(colorGutter, gutter+" = "))
		b.WriteString(f.paint(colorHint, "hint: "))
		b.WriteString(err.Hint)
		b.WriteString("\n")
	}
	if err.Note != "" {
		b.WriteString(f.paint(colorGutter, gutter+" = "))
		b.WriteString(f.paint(colorNote, "note: "))
		b.WriteString(err.Note)
		b.WriteString("\n")
	}
	if len(err.Stack) > 0 {
		b.WriteString(f.paint(colorGutter, gutter+" |"))
		b.WriteString("\n")
		b.WriteString(f.paint(colorGutter, gutter+" = "))
		b.WriteString(f.paint(colorNote, "stack trace:"))
		b.WriteString("\n")
		for _, frame := range err.Stack {
			b.WriteString(f.paint(colorGutter, gutter+"     "))
			b.WriteString(frame.String())
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (e *FormattedError) location() string {
	switch {
	case e.Filename != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d:%d", e.Filename, e.Line, e.Column)
	case e.Filename != "":
		return e.Filename
	case e.Line > 0:
		return fmt.Sprintf("%d:%d", e.Line, e.Column)
	default:
		return ""
	}
}

// FormatMultiple renders several errors, numbering them when there is more
// than one, followed by a summary line.
func (f *Formatter) FormatMultiple(errs []*FormattedError) string {
	switch len(errs) {
	case 0:
		return ""
	case 1:
		return f.Format(errs[0])
	}
	var b strings.Builder
	for i, err := range errs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(f.FormatWithPrefix(err, fmt.Sprintf("%d/%d", i+1, len(errs))))
	}
	b.WriteString("\n")
	b.WriteString(f.paint(colorErrorBold, fmt.Sprintf("found %d errors", len(errs))))
	b.WriteString("\n")
	return b.String()
}

// Render formats any error for display. Errors that implement
// FormattableError get the full layout; others are printed as-is. Wrapped
// errors are unwrapped to find a formattable one.
func Render(err error, useColor bool) string {
	var multi MultiFormattableError
	if stderrors.As(err, &multi) {
		return NewFormatter(useColor).FormatMultiple(multi.ToFormattedMultiple())
	}
	var formattable FormattableError
	if stderrors.As(err, &formattable) {
		return NewFormatter(useColor).Format(formattable.ToFormatted())
	}
	var friendly FriendlyError
	if stderrors.As(err, &friendly) {
		return friendly.FriendlyErrorMessage()
	}
	return err.Error()
}

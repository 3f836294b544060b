package builtins

import (
	"context"
	"fmt"
	"io"
	"os"
)

type contextKey string

const stdoutKey = contextKey("lace:stdout")

// WithStdout returns a context whose primitives write to w.
func WithStdout(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, stdoutKey, w)
}

// Stdout returns the writer primitives write to, os.Stdout by default.
func Stdout(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(stdoutKey).(io.Writer); ok && w != nil {
		return w
	}
	return os.Stdout
}

// ExitError is returned by the exit primitive. It stops the program and is
// passed through to the caller unwrapped.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Command lace compiles and runs Lace programs.
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/lacelang/lace/builtins"
	"github.com/lacelang/lace/errors"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(os.Stdin, os.Stdout, os.Stderr)
	err := a.rootCmd().ExecuteContext(ctx)
	stop()
	os.Exit(a.exitCode(err))
}

// exitCode reports err and returns the process exit status. An exit!
// primitive call supplies its own status.
func (a *app) exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exit *builtins.ExitError
	if stderrors.As(err, &exit) {
		return exit.Code
	}
	msg := errors.Render(err, a.useColor())
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprint(a.stderr, msg)
	return 1
}

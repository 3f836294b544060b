package vm

import (
	"context"

	"github.com/lacelang/lace/bytecode"
	"github.com/lacelang/lace/object"
)

// Run executes code in a new VirtualMachine and returns the result.
func Run(ctx context.Context, code *bytecode.Code, options ...Option) (object.Object, error) {
	return New(code, options...).Run(ctx)
}

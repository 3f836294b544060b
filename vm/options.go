package vm

import (
	"io"

	"github.com/lacelang/lace/builtins"
	"github.com/lacelang/lace/bytecode"
)

// Option is a configuration function for a VirtualMachine.
type Option func(*VirtualMachine)

// WithGlobals presets global variables. Values are converted with
// object.FromGoType.
func WithGlobals(globals map[string]any) Option {
	return func(vm *VirtualMachine) {
		for name, value := range globals {
			vm.inputGlobals[name] = value
		}
	}
}

// WithFunctions presets global functions. A function declared at the top
// level of the program replaces a preset of the same name.
func WithFunctions(functions map[string]*bytecode.Code) Option {
	return func(vm *VirtualMachine) {
		for name, code := range functions {
			vm.presetFunctions[name] = code
		}
	}
}

// WithPrimitives sets the primitive table CallPrimitive ids are dispatched
// through. It must be the table the code was compiled against. The default
// is builtins.Default().
func WithPrimitives(table *builtins.Table) Option {
	return func(vm *VirtualMachine) {
		vm.primitives = table
	}
}

// WithStdout sets the writer primitives such as writeln print to. The
// default is os.Stdout.
func WithStdout(w io.Writer) Option {
	return func(vm *VirtualMachine) {
		vm.stdout = w
	}
}

// WithMaxFrameDepth limits the depth of the call stack, including the
// main frame.
func WithMaxFrameDepth(depth int) Option {
	return func(vm *VirtualMachine) {
		vm.maxFrameDepth = depth
	}
}

// WithMaxStackDepth limits the number of values on the operand stack.
func WithMaxStackDepth(depth int) Option {
	return func(vm *VirtualMachine) {
		vm.maxStackDepth = depth
	}
}

// WithContextCheckInterval sets how often the VM checks ctx.Done(), in
// instructions. Zero disables the check. The default is
// DefaultContextCheckInterval.
func WithContextCheckInterval(interval int) Option {
	return func(vm *VirtualMachine) {
		vm.contextCheckInterval = interval
	}
}

// WithObserver sets an observer for execution events.
func WithObserver(observer Observer) Option {
	return func(vm *VirtualMachine) {
		vm.observer = observer
	}
}

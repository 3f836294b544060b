// Package vm provides a VirtualMachine that executes compiled Lace code.
//
// The machine keeps one operand stack shared by all frames and an explicit
// call stack. Frame zero runs the main code, and its locals are the globals.
// Variable lookup consults the current frame and then the globals. Calls
// resolve functions by name, first among the children of the running code
// and then among the global functions.
package vm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/lacelang/lace/builtins"
	"github.com/lacelang/lace/bytecode"
	laceerrors "github.com/lacelang/lace/errors"
	"github.com/lacelang/lace/errz"
	"github.com/lacelang/lace/object"
	"github.com/lacelang/lace/op"
)

const (
	// Frames and the operand stack grow on demand, so these only stop
	// runaway recursion before it exhausts memory.
	DefaultMaxFrameDepth = 1 << 17
	DefaultMaxStackDepth = 1 << 20

	// MaxStackTraceFrames caps the frames recorded on a RuntimeError,
	// innermost first.
	MaxStackTraceFrames = 64

	// DefaultContextCheckInterval is the number of instructions between
	// checks of ctx.Done().
	DefaultContextCheckInterval = 1000
)

// ErrHalted is returned when an observer stops execution.
var ErrHalted = errors.New("execution halted by observer")

// errStackUnderflow is raised by pop and recovered into an InternalError.
var errStackUnderflow = errors.New("operand stack underflow")

type VirtualMachine struct {
	main *bytecode.Code

	// The running code and instruction pointer
	code *bytecode.Code
	ip   int

	stack  []object.Object
	frames []frame

	primitives      *builtins.Table
	inputGlobals    map[string]any
	presetFunctions map[string]*bytecode.Code
	functions       map[string]*bytecode.Code
	stdout          io.Writer

	maxFrameDepth        int
	maxStackDepth        int
	contextCheckInterval int

	observer       Observer
	observerConfig ObserverConfig
	stepCount      int
	lastStepCode   *bytecode.Code
	lastStepLine   int

	running  bool
	runMutex sync.Mutex
}

// New creates a VirtualMachine for the main code.
func New(main *bytecode.Code, options ...Option) *VirtualMachine {
	vm := &VirtualMachine{
		main:                 main,
		primitives:           builtins.Default(),
		inputGlobals:         map[string]any{},
		presetFunctions:      map[string]*bytecode.Code{},
		maxFrameDepth:        DefaultMaxFrameDepth,
		maxStackDepth:        DefaultMaxStackDepth,
		contextCheckInterval: DefaultContextCheckInterval,
	}
	for _, opt := range options {
		opt(vm)
	}
	return vm
}

func (vm *VirtualMachine) start() error {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	if vm.running {
		return fmt.Errorf("vm is already running")
	}
	vm.running = true
	return nil
}

func (vm *VirtualMachine) stop() {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	vm.running = false
}

// Run executes the main code and returns its result. The result is the
// value of a top level return statement, or the value left by the final
// expression statement, or none.
//
// A VirtualMachine may be run again after Run returns. Each run starts from
// the preset globals.
func (vm *VirtualMachine) Run(ctx context.Context) (result object.Object, err error) {
	if vm.main == nil {
		return nil, fmt.Errorf("no main code available")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := vm.start(); err != nil {
		return nil, err
	}
	// Panics become internal errors and the VM is always stopped.
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, vm.internalError(r)
		}
		vm.stop()
	}()
	if err := vm.reset(); err != nil {
		return nil, err
	}
	if vm.stdout != nil {
		ctx = builtins.WithStdout(ctx, vm.stdout)
	}
	return vm.eval(ctx)
}

func (vm *VirtualMachine) reset() error {
	globals, err := object.AsObjects(vm.inputGlobals)
	if err != nil {
		return fmt.Errorf("invalid global provided: %w", err)
	}
	vm.functions = make(map[string]*bytecode.Code, len(vm.presetFunctions)+vm.main.ChildCount())
	for name, code := range vm.presetFunctions {
		vm.functions[name] = code
	}
	for _, name := range vm.main.ChildNames() {
		child, _ := vm.main.Child(name)
		vm.functions[name] = child
	}
	vm.stack = vm.stack[:0]
	vm.frames = append(vm.frames[:0], frame{code: vm.main, locals: globals})
	vm.code = vm.main
	vm.ip = 0
	vm.stepCount = 0
	vm.lastStepCode = nil
	vm.lastStepLine = 0
	if vm.observer != nil {
		vm.observerConfig = NormalizeConfig(vm.observer.Config())
	}
	return nil
}

func (vm *VirtualMachine) eval(ctx context.Context) (object.Object, error) {
	var instructionCount int
	checkInterval := vm.contextCheckInterval
	doneChan := ctx.Done()

	for {
		// Deterministic check of ctx.Done() every N instructions
		if checkInterval > 0 && doneChan != nil {
			instructionCount++
			if instructionCount >= checkInterval {
				instructionCount = 0
				select {
				case <-doneChan:
					return nil, ctx.Err()
				default:
				}
			}
		}

		// Running off the end of a function is an implicit ReturnNone. The
		// main code instead yields the value left by its final expression.
		if vm.ip >= vm.code.InstructionCount() {
			if len(vm.frames) == 1 {
				if n := len(vm.stack); n > 0 {
					return vm.stack[n-1], nil
				}
				return object.None, nil
			}
			if err := vm.returnValue(object.None, bytecode.SourceLocation{}); err != nil {
				return nil, err
			}
			continue
		}

		if len(vm.stack) >= vm.maxStackDepth {
			vm.ip++
			return nil, vm.fail(errz.New(errz.StackOverflow,
				"operand stack exceeded %d values", vm.maxStackDepth))
		}

		inst := vm.code.InstructionAt(vm.ip)
		if vm.observer != nil && !vm.step(inst) {
			return nil, ErrHalted
		}

		// Advance before executing. Jumps, calls and returns overwrite ip.
		vm.ip++

		switch inst.Op {
		case op.LoadConst:
			if int(inst.A) >= vm.code.ConstantCount() {
				return nil, vm.fail(errz.NewInternalError("constant index %d out of range", inst.A))
			}
			vm.push(vm.code.ConstantAt(int(inst.A)))
		case op.LoadBuiltinValue:
			switch op.BuiltinValue(inst.A) {
			case op.BuiltinNone:
				vm.push(object.None)
			case op.BuiltinTrue:
				vm.push(object.True)
			case op.BuiltinFalse:
				vm.push(object.False)
			default:
				return nil, vm.fail(errz.NewInternalError("unknown builtin value %d", inst.A))
			}
		case op.LoadVariable:
			name, err := vm.name(inst.A)
			if err != nil {
				return nil, vm.fail(err)
			}
			value, ok := vm.lookup(name)
			if !ok {
				return nil, vm.fail(errz.New(errz.UnboundVariable, "name %q is not defined", name))
			}
			vm.push(value)
		case op.AssignVariable:
			name, err := vm.name(inst.A)
			if err != nil {
				return nil, vm.fail(err)
			}
			vm.currentFrame().locals[name] = vm.pop()
		case op.Jump:
			if err := vm.jump(inst.A); err != nil {
				return nil, vm.fail(err)
			}
		case op.JumpIfTrue, op.JumpIfFalse:
			cond := vm.pop().IsTruthy()
			if cond == (inst.Op == op.JumpIfTrue) {
				if err := vm.jump(inst.A); err != nil {
					return nil, vm.fail(err)
				}
			}
		case op.CallFunction:
			if err := vm.callFunction(inst); err != nil {
				return nil, vm.fail(err)
			}
		case op.CallPrimitive:
			if err := vm.callPrimitive(ctx, inst); err != nil {
				var exit *builtins.ExitError
				if errors.As(err, &exit) {
					return nil, exit
				}
				return nil, vm.fail(err)
			}
		case op.Add, op.Sub, op.Mul, op.Div, op.Mod, op.Pow, op.ShiftLeft, op.ShiftRight,
			op.Eq, op.Ne, op.Lt, op.Gt, op.Le, op.Ge:
			right := vm.pop()
			left := vm.pop()
			result, err := binaryOp(inst.Op, left, right)
			if err != nil {
				return nil, vm.fail(err)
			}
			vm.push(result)
		case op.Not, op.Negate, op.Typeof:
			result, err := unaryOp(inst.Op, vm.pop())
			if err != nil {
				return nil, vm.fail(err)
			}
			vm.push(result)
		case op.BuildArray:
			n := int(inst.A)
			if n > len(vm.stack)-vm.currentFrame().base {
				return nil, vm.fail(errz.NewInternalError("BUILD_ARRAY of %d values with %d on the stack",
					n, len(vm.stack)-vm.currentFrame().base))
			}
			vm.push(object.NewArray(vm.popN(n)))
		case op.ConvertTo:
			result, err := object.Convert(vm.pop(), op.TypeTag(inst.A))
			if err != nil {
				return nil, vm.fail(conversionError(err))
			}
			vm.push(result)
		case op.PopTop:
			vm.pop()
		case op.Return, op.ReturnNone:
			value := object.Object(object.None)
			if inst.Op == op.Return {
				value = vm.pop()
			}
			if len(vm.frames) == 1 {
				return value, nil
			}
			if err := vm.returnValue(value, vm.code.LocationAt(vm.ip-1)); err != nil {
				return nil, err
			}
		default:
			return nil, vm.fail(errz.NewInternalError("unknown opcode %d", inst.Op))
		}
	}
}

func (vm *VirtualMachine) callFunction(inst op.Instruction) error {
	name, err := vm.name(inst.A)
	if err != nil {
		return err
	}
	argc := int(inst.B)
	callee, ok := vm.resolveFunction(name)
	if !ok {
		return errz.New(errz.UnknownFunction, "function %q is not defined", name)
	}
	// The arity check happens before anything is popped or bound, so a
	// mismatched call never runs any of the callee.
	if callee.ParameterCount() != argc {
		return errz.NewArityMismatch(name, callee.ParameterCount(), argc)
	}
	if len(vm.frames) >= vm.maxFrameDepth {
		return errz.New(errz.StackOverflow, "call stack exceeded %d frames", vm.maxFrameDepth)
	}
	if argc > len(vm.stack)-vm.currentFrame().base {
		return errz.NewInternalError("call to %q with %d arguments and %d values on the stack",
			name, argc, len(vm.stack)-vm.currentFrame().base)
	}
	callSite := vm.code.LocationAt(vm.ip - 1)
	args := vm.popN(argc)

	vm.frames = append(vm.frames, frame{})
	f := &vm.frames[len(vm.frames)-1]
	f.activate(callee, vm.ip, len(vm.stack))
	f.bind(args)
	vm.code = callee
	vm.ip = 0

	if vm.observer != nil && vm.observerConfig.ObserveCalls {
		if !vm.observer.OnCall(CallEvent{
			Function:   name,
			ArgCount:   argc,
			Location:   callSite,
			FrameDepth: len(vm.frames),
		}) {
			return ErrHalted
		}
	}
	return nil
}

// resolveFunction finds a callee among the children of the running code,
// then among the global functions.
func (vm *VirtualMachine) resolveFunction(name string) (*bytecode.Code, bool) {
	if child, ok := vm.code.Child(name); ok {
		return child, true
	}
	fn, ok := vm.functions[name]
	return fn, ok
}

// returnValue pops the current frame, resumes the caller and pushes value.
func (vm *VirtualMachine) returnValue(value object.Object, loc bytecode.SourceLocation) error {
	n := len(vm.frames)
	f := vm.frames[n-1]
	clear(vm.stack[f.base:])
	vm.stack = vm.stack[:f.base]
	vm.frames[n-1] = frame{}
	vm.frames = vm.frames[:n-1]
	vm.code = vm.currentFrame().code
	vm.ip = f.returnAddr
	vm.push(value)

	if vm.observer != nil && vm.observerConfig.ObserveReturns {
		if !vm.observer.OnReturn(ReturnEvent{
			Function:   f.code.Name(),
			Location:   loc,
			FrameDepth: len(vm.frames),
		}) {
			return ErrHalted
		}
	}
	return nil
}

func (vm *VirtualMachine) callPrimitive(ctx context.Context, inst op.Instruction) error {
	prim, ok := vm.primitives.Get(int(inst.A))
	if !ok {
		return errz.NewInternalError("unknown primitive id %d", inst.A)
	}
	argc := int(inst.B)
	if !prim.AcceptsArgs(argc) {
		return &errz.RuntimeError{
			Kind: errz.ArityMismatch,
			Message: fmt.Sprintf("primitive %q takes %s arguments (%d given)",
				prim.Name, prim.ArityString(), argc),
			Expected: prim.MinArgs,
			Got:      argc,
		}
	}
	if argc > len(vm.stack)-vm.currentFrame().base {
		return errz.NewInternalError("call to primitive %q with %d arguments and %d values on the stack",
			prim.Name, argc, len(vm.stack)-vm.currentFrame().base)
	}
	result, err := prim.Call(ctx, vm.popN(argc))
	if err != nil {
		var exit *builtins.ExitError
		if errors.As(err, &exit) {
			return exit
		}
		return &errz.RuntimeError{
			Kind:    errz.PrimitiveFailure,
			Message: err.Error(),
			Cause:   err,
		}
	}
	if result == nil {
		result = object.None
	}
	vm.push(result)
	return nil
}

func conversionError(err error) error {
	var cerr *object.ConversionError
	if errors.As(err, &cerr) {
		return &errz.RuntimeError{Kind: errz.ConversionFailure, Message: cerr.Error(), Cause: err}
	}
	return err
}

func (vm *VirtualMachine) currentFrame() *frame {
	return &vm.frames[len(vm.frames)-1]
}

func (vm *VirtualMachine) lookup(name string) (object.Object, bool) {
	if value, ok := vm.currentFrame().locals[name]; ok {
		return value, true
	}
	value, ok := vm.frames[0].locals[name]
	return value, ok
}

func (vm *VirtualMachine) name(idx uint32) (string, error) {
	if int(idx) >= vm.code.NameCount() {
		return "", errz.NewInternalError("name index %d out of range", idx)
	}
	return vm.code.NameAt(int(idx)), nil
}

func (vm *VirtualMachine) jump(target uint32) error {
	if int(target) > vm.code.InstructionCount() {
		return errz.NewInternalError("jump target %d out of range", target)
	}
	vm.ip = int(target)
	return nil
}

func (vm *VirtualMachine) push(obj object.Object) {
	vm.stack = append(vm.stack, obj)
}

func (vm *VirtualMachine) pop() object.Object {
	n := len(vm.stack)
	if n <= vm.currentFrame().base {
		panic(errStackUnderflow)
	}
	obj := vm.stack[n-1]
	vm.stack[n-1] = nil
	vm.stack = vm.stack[:n-1]
	return obj
}

// popN removes the top n values and returns them in push order.
func (vm *VirtualMachine) popN(n int) []object.Object {
	start := len(vm.stack) - n
	values := make([]object.Object, n)
	copy(values, vm.stack[start:])
	clear(vm.stack[start:])
	vm.stack = vm.stack[:start]
	return values
}

// TOS returns the top-of-stack object if there is one.
func (vm *VirtualMachine) TOS() (object.Object, bool) {
	if len(vm.stack) > 0 {
		return vm.stack[len(vm.stack)-1], true
	}
	return nil, false
}

// StackDepth returns the number of values on the operand stack.
func (vm *VirtualMachine) StackDepth() int {
	return len(vm.stack)
}

// Get returns a global variable set by the last run.
func (vm *VirtualMachine) Get(name string) (object.Object, bool) {
	if len(vm.frames) == 0 {
		return nil, false
	}
	value, ok := vm.frames[0].locals[name]
	return value, ok
}

// GlobalNames returns the sorted names of the globals set by the last run.
func (vm *VirtualMachine) GlobalNames() []string {
	if len(vm.frames) == 0 {
		return nil
	}
	return object.Keys(vm.frames[0].locals)
}

func (vm *VirtualMachine) step(inst op.Instruction) bool {
	loc := vm.code.LocationAt(vm.ip)
	switch vm.observerConfig.StepMode {
	case StepNone:
		return true
	case StepSampled:
		vm.stepCount++
		if vm.stepCount%vm.observerConfig.SampleInterval != 0 {
			return true
		}
	case StepOnLine:
		if vm.code == vm.lastStepCode && loc.Line == vm.lastStepLine {
			return true
		}
		vm.lastStepCode = vm.code
		vm.lastStepLine = loc.Line
	}
	return vm.observer.OnStep(StepEvent{
		IP:         vm.ip,
		Opcode:     inst.Op,
		Function:   vm.code.Name(),
		Location:   loc,
		StackDepth: len(vm.stack),
		FrameDepth: len(vm.frames),
	})
}

// fail attaches the failing instruction's location and the call stack to a
// runtime or internal error.
func (vm *VirtualMachine) fail(err error) error {
	switch e := err.(type) {
	case *errz.RuntimeError:
		loc := vm.code.LocationAt(vm.ip - 1)
		e.SourceTag = vm.code.SourceTag()
		e.Function = vm.code.Name()
		e.Location = laceerrors.SourceLocation{
			Filename: vm.code.SourceTag(),
			Line:     loc.Line,
			Column:   loc.Column,
			Source:   vm.code.GetSourceLine(loc.Line),
		}
		e.Stack = vm.captureStack()
		return e
	case *errz.InternalError:
		e.SourceTag = vm.code.SourceTag()
		e.Function = vm.code.Name()
		e.IP = vm.ip - 1
		return e
	}
	return err
}

func (vm *VirtualMachine) internalError(r any) *errz.InternalError {
	var ierr *errz.InternalError
	if err, ok := r.(error); ok {
		ierr = errz.NewInternalError("%v", err)
		ierr.Cause = err
	} else {
		ierr = errz.NewInternalError("panic: %v", r)
	}
	if vm.code != nil {
		ierr.SourceTag = vm.code.SourceTag()
		ierr.Function = vm.code.Name()
		ierr.IP = vm.ip - 1
	}
	return ierr
}

// captureStack builds a stack trace from the active frames, innermost
// first.
func (vm *VirtualMachine) captureStack() []laceerrors.StackFrame {
	frames := make([]laceerrors.StackFrame, 0, min(len(vm.frames), MaxStackTraceFrames))
	ip := vm.ip - 1
	for i := len(vm.frames) - 1; i >= 0 && len(frames) < MaxStackTraceFrames; i-- {
		f := &vm.frames[i]
		loc := f.code.LocationAt(max(ip, 0))
		frames = append(frames, laceerrors.StackFrame{
			Function: f.code.Name(),
			Location: laceerrors.SourceLocation{
				Filename: f.code.SourceTag(),
				Line:     loc.Line,
				Column:   loc.Column,
			},
		})
		// The caller is paused just after its call instruction.
		ip = f.returnAddr - 1
	}
	return frames
}

package vm

import (
	"github.com/lacelang/lace/bytecode"
	"github.com/lacelang/lace/object"
)

// frame is one activation on the call stack. Frame zero runs the main code
// and its locals are the globals.
type frame struct {
	code   *bytecode.Code
	locals map[string]object.Object

	// Caller's instruction pointer, resumed on return
	returnAddr int

	// Operand stack depth when the frame was entered, after the arguments
	// were popped. Returning truncates the stack to this depth.
	base int
}

func (f *frame) activate(code *bytecode.Code, returnAddr, base int) {
	f.code = code
	f.returnAddr = returnAddr
	f.base = base
	f.locals = make(map[string]object.Object, code.ParameterCount())
}

// bind assigns args to the frame's parameters in declaration order.
func (f *frame) bind(args []object.Object) {
	for i, arg := range args {
		f.locals[f.code.ParameterAt(i).Name] = arg
	}
}

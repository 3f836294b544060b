package object

import (
	"fmt"
)

// Code is the compiled body of a function. *bytecode.Code implements it.
type Code interface {
	Name() string
	ParameterNames() []string
}

// Function is a user-defined function value: a compiled body plus its
// ordered parameter names.
type Function struct {
	code       Code
	parameters []string
}

// NewFunction returns a Function wrapping the given code.
func NewFunction(code Code) *Function {
	return &Function{code: code, parameters: code.ParameterNames()}
}

func (f *Function) Type() Type { return FUNCTION }
func (f *Function) IsTruthy() bool { return true }
func (f *Function) sealed() {}

// Code returns the compiled function body.
func (f *Function) Code() Code {
	return f.code
}

// Name returns the function name.
func (f *Function) Name() string {
	return f.code.Name()
}

// Parameters returns a copy of the parameter names.
func (f *Function) Parameters() []string {
	params := make([]string, len(f.parameters))
	copy(params, f.parameters)
	return params
}

func (f *Function) Interface() interface{} { return f.String() }
func (f *Function) Inspect() string { return f.String() }

func (f *Function) String() string {
	return fmt.Sprintf("<fn %s>", f.code.Name())
}

func (f *Function) Equals(other Object) bool {
	o, ok := other.(*Function)
	if !ok || o.code != f.code || len(o.parameters) != len(f.parameters) {
		return false
	}
	for i := range f.parameters {
		if f.parameters[i] != o.parameters[i] {
			return false
		}
	}
	return true
}

// Builtin refers to a native primitive by its small integer id.
type Builtin struct {
	id   int
	name string
}

// NewBuiltin returns a Builtin object for the primitive with the given id.
func NewBuiltin(id int, name string) *Builtin {
	return &Builtin{id: id, name: name}
}

func (b *Builtin) Type() Type { return BUILTIN }
func (b *Builtin) ID() int { return b.id }
func (b *Builtin) Name() string { return b.name }
func (b *Builtin) IsTruthy() bool { return true }
func (b *Builtin) Interface() interface{} { return b.String() }
func (b *Builtin) Inspect() string { return b.String() }
func (b *Builtin) sealed() {}

func (b *Builtin) String() string {
	return fmt.Sprintf("<builtin %s!>", b.name)
}

func (b *Builtin) Equals(other Object) bool {
	o, ok := other.(*Builtin)
	return ok && o.id == b.id
}

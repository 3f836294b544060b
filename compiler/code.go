package compiler

import (
	"github.com/lacelang/lace/bytecode"
	"github.com/lacelang/lace/object"
	"github.com/lacelang/lace/op"
)

// Code is a code object under construction. It is converted to an
// immutable bytecode.Code once compilation finishes.
type Code struct {
	name       string
	parent     *Code
	children   map[string]*Code
	childOrder []string

	instructions []op.Instruction
	locations    []bytecode.SourceLocation
	constants    []object.Object
	names        []string
	nameIndex    map[string]uint32
	parameters   []bytecode.Parameter

	source    string
	sourceTag string
}

func newCode(name, source, sourceTag string) *Code {
	return &Code{
		name:      name,
		children:  map[string]*Code{},
		nameIndex: map[string]uint32{},
		source:    source,
		sourceTag: sourceTag,
	}
}

func (c *Code) newChild(name string, params []bytecode.Parameter) *Code {
	child := newCode(name, c.source, c.sourceTag)
	child.parent = c
	child.parameters = params
	c.children[name] = child
	c.childOrder = append(c.childOrder, name)
	return child
}

// Name returns the function name, or "main" for the top level program.
func (c *Code) Name() string {
	return c.name
}

// Parent returns the enclosing code, or nil for main.
func (c *Code) Parent() *Code {
	return c.parent
}

// InstructionCount returns the number of instructions emitted so far.
func (c *Code) InstructionCount() int {
	return len(c.instructions)
}

// addConstant returns the index of value in the constant pool, appending it
// if no identical constant is present.
func (c *Code) addConstant(value object.Object) (uint32, bool) {
	for i, existing := range c.constants {
		if object.Identical(existing, value) {
			return uint32(i), true
		}
	}
	if len(c.constants) >= MaxConstants {
		return 0, false
	}
	c.constants = append(c.constants, value)
	return uint32(len(c.constants) - 1), true
}

// addName interns name in the name pool and returns its index.
func (c *Code) addName(name string) uint32 {
	if idx, ok := c.nameIndex[name]; ok {
		return idx
	}
	idx := uint32(len(c.names))
	c.names = append(c.names, name)
	c.nameIndex[name] = idx
	return idx
}

// ToBytecode converts the code and all of its children into immutable
// bytecode.
func (c *Code) ToBytecode() *bytecode.Code {
	var children map[string]*bytecode.Code
	if len(c.childOrder) > 0 {
		children = make(map[string]*bytecode.Code, len(c.childOrder))
		for _, name := range c.childOrder {
			children[name] = c.children[name].ToBytecode()
		}
	}
	return bytecode.NewCode(bytecode.CodeParams{
		Name:         c.name,
		Children:     children,
		Instructions: c.instructions,
		Constants:    c.constants,
		Names:        c.names,
		Parameters:   c.parameters,
		Source:       c.source,
		SourceTag:    c.sourceTag,
		Locations:    c.locations,
	})
}

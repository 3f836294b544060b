package bytecode

import (
	"sort"
	"strings"

	"github.com/lacelang/lace/object"
	"github.com/lacelang/lace/op"
)

// Parameter is one formal parameter of a function.
type Parameter struct {
	Name    string
	Mutable bool
}

// Code is a compiled program unit: the main program or one function body.
// It is immutable after creation and safe for concurrent use.
type Code struct {
	name       string
	parent     *Code
	children   map[string]*Code
	childNames []string

	instructions []op.Instruction
	constants    []object.Object
	names        []string
	parameters   []Parameter
	source       string
	sourceTag    string

	// One location per instruction for error reporting
	locations []SourceLocation
}

// CodeParams contains parameters for creating a new Code.
type CodeParams struct {
	Name         string
	Children     map[string]*Code
	Instructions []op.Instruction
	Constants    []object.Object
	Names        []string
	Parameters   []Parameter
	Source       string
	SourceTag    string
	Locations    []SourceLocation
}

// NewCode creates a new immutable Code from the given parameters. Input
// slices and maps are copied.
func NewCode(params CodeParams) *Code {
	code := &Code{
		name:         params.Name,
		instructions: copyInstructions(params.Instructions),
		constants:    copyObjects(params.Constants),
		names:        copyStrings(params.Names),
		parameters:   copyParameters(params.Parameters),
		source:       params.Source,
		sourceTag:    params.SourceTag,
		locations:    copyLocations(params.Locations),
	}
	if len(params.Children) > 0 {
		code.children = make(map[string]*Code, len(params.Children))
		for name, child := range params.Children {
			code.children[name] = child.adopt(code)
			code.childNames = append(code.childNames, name)
		}
		sort.Strings(code.childNames)
	}
	return code
}

// adopt returns a copy of c, and of its descendants, re-parented under
// parent. The receiver is not modified.
func (c *Code) adopt(parent *Code) *Code {
	adopted := *c
	adopted.parent = parent
	if len(c.children) > 0 {
		adopted.children = make(map[string]*Code, len(c.children))
		for name, child := range c.children {
			adopted.children[name] = child.adopt(&adopted)
		}
	}
	return &adopted
}

// Name returns the function name, or "main" for the top level program.
func (c *Code) Name() string {
	return c.name
}

// SourceTag identifies where the code came from, usually a filename.
func (c *Code) SourceTag() string {
	return c.sourceTag
}

// Source returns the source text this code was compiled from.
func (c *Code) Source() string {
	return c.source
}

// Parent returns the enclosing code, or nil for the root.
func (c *Code) Parent() *Code {
	return c.parent
}

// InstructionCount returns the number of instructions.
func (c *Code) InstructionCount() int {
	return len(c.instructions)
}

// InstructionAt returns the instruction at the given index.
func (c *Code) InstructionAt(index int) op.Instruction {
	return c.instructions[index]
}

// ConstantCount returns the number of constants.
func (c *Code) ConstantCount() int {
	return len(c.constants)
}

// ConstantAt returns the constant at the given index.
func (c *Code) ConstantAt(index int) object.Object {
	return c.constants[index]
}

// NameCount returns the number of interned names.
func (c *Code) NameCount() int {
	return len(c.names)
}

// NameAt returns the interned name at the given index.
func (c *Code) NameAt(index int) string {
	return c.names[index]
}

// ParameterCount returns the number of formal parameters.
func (c *Code) ParameterCount() int {
	return len(c.parameters)
}

// ParameterAt returns the formal parameter at the given index.
func (c *Code) ParameterAt(index int) Parameter {
	return c.parameters[index]
}

// ParameterNames returns the parameter names in declaration order.
func (c *Code) ParameterNames() []string {
	names := make([]string, len(c.parameters))
	for i, p := range c.parameters {
		names[i] = p.Name
	}
	return names
}

// Child returns the nested function with the given name.
func (c *Code) Child(name string) (*Code, bool) {
	child, ok := c.children[name]
	return child, ok
}

// ChildCount returns the number of nested functions.
func (c *Code) ChildCount() int {
	return len(c.childNames)
}

// ChildNames returns the names of the nested functions in sorted order.
func (c *Code) ChildNames() []string {
	return copyStrings(c.childNames)
}

// LocationAt returns the source location for the instruction at the given
// index. If no location is recorded, a zero SourceLocation is returned.
func (c *Code) LocationAt(ip int) SourceLocation {
	if ip < 0 || ip >= len(c.locations) {
		return SourceLocation{}
	}
	return c.locations[ip]
}

// LocationCount returns the number of recorded source locations.
func (c *Code) LocationCount() int {
	return len(c.locations)
}

// Flatten returns this code and all descendants, depth first with children
// in name order.
func (c *Code) Flatten() []*Code {
	codes := []*Code{c}
	for _, name := range c.childNames {
		codes = append(codes, c.children[name].Flatten()...)
	}
	return codes
}

// GetSourceLine returns the source line at the given 1-based line number.
// Nested functions share the source of the root code.
func (c *Code) GetSourceLine(lineNum int) string {
	if lineNum < 1 {
		return ""
	}
	root := c
	for root.parent != nil {
		root = root.parent
	}
	if root.source == "" {
		return ""
	}
	lines := strings.Split(root.source, "\n")
	if lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// Equal reports whether two code objects have identical contents. Constants
// are compared with object.Identical. Children are compared recursively.
func (c *Code) Equal(other *Code) bool {
	if c == other {
		return true
	}
	if c == nil || other == nil {
		return false
	}
	if c.name != other.name || c.sourceTag != other.sourceTag || c.source != other.source {
		return false
	}
	if len(c.instructions) != len(other.instructions) ||
		len(c.constants) != len(other.constants) ||
		len(c.names) != len(other.names) ||
		len(c.parameters) != len(other.parameters) ||
		len(c.locations) != len(other.locations) ||
		len(c.childNames) != len(other.childNames) {
		return false
	}
	for i, inst := range c.instructions {
		if inst != other.instructions[i] {
			return false
		}
	}
	for i, constant := range c.constants {
		if !object.Identical(constant, other.constants[i]) {
			return false
		}
	}
	for i, name := range c.names {
		if name != other.names[i] {
			return false
		}
	}
	for i, param := range c.parameters {
		if param != other.parameters[i] {
			return false
		}
	}
	for i, loc := range c.locations {
		if loc != other.locations[i] {
			return false
		}
	}
	for i, name := range c.childNames {
		if name != other.childNames[i] {
			return false
		}
		if !c.children[name].Equal(other.children[name]) {
			return false
		}
	}
	return true
}

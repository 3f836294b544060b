// Package op defines the instruction set shared by the Lace compiler and
// virtual machine.
package op

import (
	"fmt"
	"strings"
)

// Code is an integer opcode that indicates an operation to execute.
type Code uint8

const (
	Invalid Code = 0

	// Stack literals
	LoadConst        Code = 1
	LoadBuiltinValue Code = 2

	// Variables
	LoadVariable   Code = 10
	AssignVariable Code = 11

	// Control transfer
	Jump        Code = 20
	JumpIfTrue  Code = 21
	JumpIfFalse Code = 22

	// Calls
	CallFunction  Code = 30
	CallPrimitive Code = 31

	// Arithmetic
	Add        Code = 40
	Sub        Code = 41
	Mul        Code = 42
	Div        Code = 43
	Mod        Code = 44
	Pow        Code = 45
	ShiftLeft  Code = 46
	ShiftRight Code = 47

	// Comparison
	Eq Code = 50
	Ne Code = 51
	Lt Code = 52
	Gt Code = 53
	Le Code = 54
	Ge Code = 55

	// Unary
	Not    Code = 60
	Negate Code = 61
	Typeof Code = 62

	// Structural
	BuildArray Code = 70
	ConvertTo  Code = 71

	// Stack
	PopTop Code = 80

	// Termination
	Return     Code = 90
	ReturnNone Code = 91
)

// BuiltinValue is the operand of LoadBuiltinValue.
type BuiltinValue uint32

const (
	BuiltinNone  BuiltinValue = 0
	BuiltinTrue  BuiltinValue = 1
	BuiltinFalse BuiltinValue = 2
)

func (b BuiltinValue) String() string {
	switch b {
	case BuiltinNone:
		return "none"
	case BuiltinTrue:
		return "true"
	case BuiltinFalse:
		return "false"
	default:
		return fmt.Sprintf("builtin(%d)", uint32(b))
	}
}

// TypeTag is the operand of ConvertTo. It names the target kind of an
// explicit conversion.
type TypeTag uint32

const (
	TagInt    TypeTag = 0
	TagFloat  TypeTag = 1
	TagString TypeTag = 2
	TagArray  TypeTag = 3
	TagBool   TypeTag = 4
)

// String returns the source spelling of the conversion target, e.g. "int".
func (t TypeTag) String() string {
	switch t {
	case TagInt:
		return "int"
	case TagFloat:
		return "float"
	case TagString:
		return "string"
	case TagArray:
		return "array"
	case TagBool:
		return "bool"
	default:
		return fmt.Sprintf("tag(%d)", uint32(t))
	}
}

// LookupTypeTag returns the conversion tag for a type name used with "as".
func LookupTypeTag(name string) (TypeTag, bool) {
	switch name {
	case "int":
		return TagInt, true
	case "float":
		return TagFloat, true
	case "string":
		return TagString, true
	case "array":
		return TagArray, true
	case "bool":
		return TagBool, true
	}
	return 0, false
}

// Symbol returns the operator spelling for binary and unary opcodes, used
// in error messages. For example "+" for Add.
func (c Code) Symbol() string {
	switch c {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Mod:
		return "%"
	case Pow:
		return "**"
	case ShiftLeft:
		return "<<"
	case ShiftRight:
		return ">>"
	case Eq:
		return "=="
	case Ne:
		return "!="
	case Lt:
		return "<"
	case Gt:
		return ">"
	case Le:
		return "<="
	case Ge:
		return ">="
	case Not:
		return "!"
	case Negate:
		return "-"
	case Typeof:
		return "typeof"
	default:
		return ""
	}
}

// String returns the opcode name, e.g. "LOAD_CONST".
func (c Code) String() string {
	if name := infos[c].Name; name != "" {
		return name
	}
	return fmt.Sprintf("OP(%d)", uint8(c))
}

// Instruction is one self-describing bytecode operation. Operands are
// embedded in the instruction rather than trailing it in the stream, so
// every instruction is addressable by its index.
type Instruction struct {
	Op Code
	A  uint32
	B  uint32
}

// Make builds an instruction and checks the operand count against the
// opcode table.
func Make(code Code, operands ...uint32) Instruction {
	info := GetInfo(code)
	if info.Name == "" {
		panic(fmt.Sprintf("op: unknown opcode %d", code))
	}
	if len(operands) != info.OperandCount {
		panic(fmt.Sprintf("op: %s takes %d operands (%d given)",
			info.Name, info.OperandCount, len(operands)))
	}
	inst := Instruction{Op: code}
	if len(operands) > 0 {
		inst.A = operands[0]
	}
	if len(operands) > 1 {
		inst.B = operands[1]
	}
	return inst
}

// Operands returns the meaningful operands of the instruction.
func (i Instruction) Operands() []uint32 {
	switch GetInfo(i.Op).OperandCount {
	case 1:
		return []uint32{i.A}
	case 2:
		return []uint32{i.A, i.B}
	default:
		return nil
	}
}

// IsJump returns true if the instruction's first operand is a jump target.
func (i Instruction) IsJump() bool {
	return i.Op == Jump || i.Op == JumpIfTrue || i.Op == JumpIfFalse
}

func (i Instruction) String() string {
	operands := i.Operands()
	if len(operands) == 0 {
		return i.Op.String()
	}
	parts := make([]string, len(operands))
	for j, o := range operands {
		parts[j] = fmt.Sprintf("%d", o)
	}
	return i.Op.String() + " " + strings.Join(parts, " ")
}

// Info contains information about an opcode.
type Info struct {
	Code         Code
	Name         string
	OperandCount int
}

var infos = make([]Info, 256)

func init() {
	type opInfo struct {
		op    Code
		name  string
		count int
	}
	ops := []opInfo{
		{Add, "ADD", 0},
		{AssignVariable, "ASSIGN_VARIABLE", 1},
		{BuildArray, "BUILD_ARRAY", 1},
		{CallFunction, "CALL_FUNCTION", 2},
		{CallPrimitive, "CALL_PRIMITIVE", 2},
		{ConvertTo, "CONVERT_TO", 1},
		{Div, "DIV", 0},
		{Eq, "EQ", 0},
		{Ge, "GE", 0},
		{Gt, "GT", 0},
		{Jump, "JUMP", 1},
		{JumpIfFalse, "JUMP_IF_FALSE", 1},
		{JumpIfTrue, "JUMP_IF_TRUE", 1},
		{Le, "LE", 0},
		{LoadBuiltinValue, "LOAD_BUILTIN_VALUE", 1},
		{LoadConst, "LOAD_CONST", 1},
		{LoadVariable, "LOAD_VARIABLE", 1},
		{Lt, "LT", 0},
		{Mod, "MOD", 0},
		{Mul, "MUL", 0},
		{Ne, "NE", 0},
		{Negate, "NEGATE", 0},
		{Not, "NOT", 0},
		{PopTop, "POP_TOP", 0},
		{Pow, "POW", 0},
		{Return, "RETURN", 0},
		{ReturnNone, "RETURN_NONE", 0},
		{ShiftLeft, "SHIFT_LEFT", 0},
		{ShiftRight, "SHIFT_RIGHT", 0},
		{Sub, "SUB", 0},
		{Typeof, "TYPEOF", 0},
	}
	for _, o := range ops {
		infos[o.op] = Info{
			Name:         o.name,
			Code:         o.op,
			OperandCount: o.count,
		}
	}
}

// GetInfo returns information about the given opcode. Unknown opcodes
// return an Info with an empty name.
func GetInfo(op Code) Info {
	return infos[op]
}

// IsValid returns true if the opcode is part of the instruction set.
func IsValid(op Code) bool {
	return infos[op].Name != ""
}

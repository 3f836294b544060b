// Package dis renders compiled Lace code as a human readable table.
package dis

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/lacelang/lace/builtins"
	"github.com/lacelang/lace/bytecode"
	"github.com/lacelang/lace/op"
)

// Instruction is one disassembled instruction.
type Instruction struct {
	Offset   int
	Opcode   op.Code
	Name     string
	Operands []uint32
	Info     string
	Location bytecode.SourceLocation
}

// Option configures disassembly.
type Option func(*config)

type config struct {
	primitives *builtins.Table
}

// WithPrimitives sets the table used to name CallPrimitive targets. The
// default is builtins.Default().
func WithPrimitives(table *builtins.Table) Option {
	return func(c *config) {
		c.primitives = table
	}
}

// Disassemble decodes the instructions of code, not including its children.
func Disassemble(code *bytecode.Code, opts ...Option) ([]Instruction, error) {
	cfg := &config{primitives: builtins.Default()}
	for _, opt := range opts {
		opt(cfg)
	}
	count := code.InstructionCount()
	instructions := make([]Instruction, 0, count)
	for ip := 0; ip < count; ip++ {
		inst := code.InstructionAt(ip)
		info := op.GetInfo(inst.Op)
		if info.Name == "" {
			return nil, fmt.Errorf("unknown opcode %d at offset %d", inst.Op, ip)
		}
		desc, err := describe(code, cfg, inst)
		if err != nil {
			return nil, fmt.Errorf("offset %d: %w", ip, err)
		}
		instructions = append(instructions, Instruction{
			Offset:   ip,
			Opcode:   inst.Op,
			Name:     info.Name,
			Operands: inst.Operands(),
			Info:     desc,
			Location: code.LocationAt(ip),
		})
	}
	return instructions, nil
}

func describe(code *bytecode.Code, cfg *config, inst op.Instruction) (string, error) {
	switch inst.Op {
	case op.LoadConst:
		if int(inst.A) >= code.ConstantCount() {
			return "", fmt.Errorf("constant index %d out of range", inst.A)
		}
		return code.ConstantAt(int(inst.A)).Inspect(), nil
	case op.LoadVariable, op.AssignVariable, op.CallFunction:
		if int(inst.A) >= code.NameCount() {
			return "", fmt.Errorf("name index %d out of range", inst.A)
		}
		return code.NameAt(int(inst.A)), nil
	case op.CallPrimitive:
		if prim, ok := cfg.primitives.Get(int(inst.A)); ok {
			return prim.Name + "!", nil
		}
		return fmt.Sprintf("primitive(%d)", inst.A), nil
	case op.LoadBuiltinValue:
		return op.BuiltinValue(inst.A).String(), nil
	case op.ConvertTo:
		return "as " + op.TypeTag(inst.A).String(), nil
	case op.Jump, op.JumpIfTrue, op.JumpIfFalse:
		return "-> " + strconv.Itoa(int(inst.A)), nil
	}
	return "", nil
}

var headers = []string{"OFFSET", "OPCODE", "OPERANDS", "LINE", "INFO"}

// Print writes instructions as a table. Opcodes are colored unless
// color.NoColor is set.
func Print(instructions []Instruction, w io.Writer) {
	rows := make([][]string, 0, len(instructions))
	for _, inst := range instructions {
		operands := make([]string, len(inst.Operands))
		for i, o := range inst.Operands {
			operands[i] = strconv.FormatUint(uint64(o), 10)
		}
		line := ""
		if !inst.Location.IsZero() {
			line = inst.Location.String()
		}
		rows = append(rows, []string{
			strconv.Itoa(inst.Offset),
			inst.Name,
			strings.Join(operands, " "),
			line,
			inst.Info,
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	border := borderLine(widths)
	fmt.Fprintln(w, border)
	cells := make([]string, len(headers))
	for i, h := range headers {
		cells[i] = center(h, widths[i])
	}
	writeRow(w, cells)
	fmt.Fprintln(w, border)

	opcode := color.New(color.FgCyan)
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			switch i {
			case 0, 2:
				cells[i] = fmt.Sprintf("%*s", widths[i], cell)
			case 1:
				cells[i] = opcode.Sprint(fmt.Sprintf("%-*s", widths[i], cell))
			default:
				cells[i] = fmt.Sprintf("%-*s", widths[i], cell)
			}
		}
		writeRow(w, cells)
	}
	fmt.Fprintln(w, border)
}

// PrintCode disassembles and prints code. When recursive is set, each
// nested function follows under its own heading.
func PrintCode(code *bytecode.Code, w io.Writer, recursive bool, opts ...Option) error {
	targets := []*bytecode.Code{code}
	if recursive {
		targets = code.Flatten()
	}
	heading := color.New(color.Bold)
	for i, target := range targets {
		instructions, err := Disassemble(target, opts...)
		if err != nil {
			return fmt.Errorf("%s: %w", target.Name(), err)
		}
		if i > 0 {
			fmt.Fprintln(w)
		}
		heading.Fprintf(w, "%s(%s)", target.Name(), strings.Join(target.ParameterNames(), ", "))
		fmt.Fprintf(w, " constants=%d names=%d\n", target.ConstantCount(), target.NameCount())
		Print(instructions, w)
	}
	return nil
}

func borderLine(widths []int) string {
	var b strings.Builder
	b.WriteByte('+')
	for _, width := range widths {
		b.WriteString(strings.Repeat("-", width+2))
		b.WriteByte('+')
	}
	return b.String()
}

func writeRow(w io.Writer, cells []string) {
	fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
}

func center(s string, width int) string {
	pad := width - len(s)
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}

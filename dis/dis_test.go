package dis

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/lacelang/lace/bytecode"
	"github.com/lacelang/lace/compiler"
	"github.com/lacelang/lace/op"
	"github.com/lacelang/lace/parser"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, src string) *bytecode.Code {
	t.Helper()
	program, err := parser.Parse(context.Background(), src)
	require.NoError(t, err)
	code, err := compiler.Compile(program)
	require.NoError(t, err)
	return code
}

func disableColor(t *testing.T) {
	saved := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = saved })
}

func TestFunctionDisassembly(t *testing.T) {
	disableColor(t)
	code := compile(t, `fn f() { 42; writeln!("kaboom"); }`)
	f, ok := code.Child("f")
	require.True(t, ok)

	instructions, err := Disassemble(f)
	require.NoError(t, err)

	var buf bytes.Buffer
	Print(instructions, &buf)

	expected := strings.TrimSpace(`
+--------+----------------+----------+------+----------+
| OFFSET |     OPCODE     | OPERANDS | LINE |   INFO   |
+--------+----------------+----------+------+----------+
|      0 | LOAD_CONST     |        0 | 1:10 | 42       |
|      1 | POP_TOP        |          | 1:10 |          |
|      2 | LOAD_CONST     |        1 | 1:23 | "kaboom" |
|      3 | CALL_PRIMITIVE |      0 1 | 1:14 | writeln! |
|      4 | POP_TOP        |          | 1:14 |          |
+--------+----------------+----------+------+----------+
`)
	require.Equal(t, expected+"\n", buf.String())
}

func TestInfo(t *testing.T) {
	code := compile(t, `let x = none; x = "1" as int; if x { g(x); }`)
	instructions, err := Disassemble(code)
	require.NoError(t, err)

	infos := map[op.Code][]string{}
	for _, inst := range instructions {
		infos[inst.Opcode] = append(infos[inst.Opcode], inst.Info)
	}
	require.Equal(t, []string{"none"}, infos[op.LoadBuiltinValue])
	require.Equal(t, []string{"x", "x"}, infos[op.AssignVariable])
	require.Equal(t, []string{"as int"}, infos[op.ConvertTo])
	require.Equal(t, []string{"g"}, infos[op.CallFunction])
	require.Len(t, infos[op.JumpIfTrue], 1)
	require.True(t, strings.HasPrefix(infos[op.JumpIfTrue][0], "-> "))
}

func TestPrintCodeRecursive(t *testing.T) {
	disableColor(t)
	code := compile(t, `fn outer(a, b) { fn inner() { return 1; } return inner(); } outer(1, 2);`)

	var flat bytes.Buffer
	require.NoError(t, PrintCode(code, &flat, false))
	require.Contains(t, flat.String(), "main() constants=")
	require.NotContains(t, flat.String(), "outer(a, b)")

	var all bytes.Buffer
	require.NoError(t, PrintCode(code, &all, true))
	out := all.String()
	require.Contains(t, out, "main() constants=")
	require.Contains(t, out, "outer(a, b) constants=")
	require.Contains(t, out, "inner() constants=")
	require.Less(t, strings.Index(out, "outer(a, b)"), strings.Index(out, "inner()"))
}

func TestMalformedCode(t *testing.T) {
	code := bytecode.NewCode(bytecode.CodeParams{
		Name:         "main",
		Instructions: []op.Instruction{op.Make(op.LoadConst, 0)},
	})
	_, err := Disassemble(code)
	require.ErrorContains(t, err, "constant index 0 out of range")

	code = bytecode.NewCode(bytecode.CodeParams{
		Name:         "main",
		Instructions: []op.Instruction{{Op: 250}},
	})
	_, err = Disassemble(code)
	require.ErrorContains(t, err, "unknown opcode 250")
}

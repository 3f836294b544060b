package bytecode

import (
	"math"
	"testing"

	"github.com/lacelang/lace/object"
	"github.com/lacelang/lace/op"
	"github.com/stretchr/testify/require"
)

func sampleCode() *Code {
	inner := NewCode(CodeParams{
		Name: "inner",
		Instructions: []op.Instruction{
			op.Make(op.LoadVariable, 0),
			op.Make(op.Return),
		},
		Names:      []string{"x"},
		Parameters: []Parameter{{Name: "x"}},
		SourceTag:  "test.lace",
		Locations:  []SourceLocation{{Line: 3, Column: 5}, {Line: 3, Column: 5}},
	})
	add := NewCode(CodeParams{
		Name: "add",
		Instructions: []op.Instruction{
			op.Make(op.LoadVariable, 0),
			op.Make(op.LoadVariable, 1),
			op.Make(op.Add),
			op.Make(op.Return),
		},
		Names:      []string{"a", "b"},
		Parameters: []Parameter{{Name: "a", Mutable: true}, {Name: "b"}},
		Children:   map[string]*Code{"inner": inner},
		SourceTag:  "test.lace",
	})
	return NewCode(CodeParams{
		Name: "main",
		Instructions: []op.Instruction{
			op.Make(op.LoadConst, 0),
			op.Make(op.LoadConst, 1),
			op.Make(op.CallFunction, 0, 2),
			op.Make(op.LoadConst, 2),
			op.Make(op.LoadConst, 3),
			op.Make(op.BuildArray, 2),
			op.Make(op.PopTop),
		},
		Constants: []object.Object{
			object.NewInt(1),
			object.NewFloat(math.Copysign(0, -1)),
			object.NewString("hi"),
			object.NewArray([]object.Object{object.True, object.None}),
		},
		Names:     []string{"add"},
		Children:  map[string]*Code{"add": add},
		Source:    "let a = 1;\nadd(1, -0.0);\n  inner",
		SourceTag: "test.lace",
	})
}

func TestCodeAccessors(t *testing.T) {
	code := sampleCode()
	require.Equal(t, "main", code.Name())
	require.Equal(t, "test.lace", code.SourceTag())
	require.Equal(t, 7, code.InstructionCount())
	require.Equal(t, op.CallFunction, code.InstructionAt(2).Op)
	require.Equal(t, 4, code.ConstantCount())
	require.Equal(t, "add", code.NameAt(0))
	require.Equal(t, []string{"add"}, code.ChildNames())

	add, ok := code.Child("add")
	require.True(t, ok)
	require.Equal(t, []string{"a", "b"}, add.ParameterNames())
	require.True(t, add.ParameterAt(0).Mutable)
	require.Same(t, code, add.Parent())

	_, ok = code.Child("inner")
	require.False(t, ok)

	inner, ok := add.Child("inner")
	require.True(t, ok)
	require.Equal(t, SourceLocation{Line: 3, Column: 5}, inner.LocationAt(0))
	require.True(t, inner.LocationAt(10).IsZero())
	require.Equal(t, "  inner", inner.GetSourceLine(3))
	require.Equal(t, "", inner.GetSourceLine(4))
}

func TestNewCodeCopiesInputs(t *testing.T) {
	insts := []op.Instruction{op.Make(op.ReturnNone)}
	names := []string{"a"}
	code := NewCode(CodeParams{Instructions: insts, Names: names})
	insts[0] = op.Make(op.PopTop)
	names[0] = "b"
	require.Equal(t, op.ReturnNone, code.InstructionAt(0).Op)
	require.Equal(t, "a", code.NameAt(0))
}

func TestNewCodeLeavesChildrenUntouched(t *testing.T) {
	leaf := NewCode(CodeParams{Name: "leaf", Instructions: []op.Instruction{op.Make(op.ReturnNone)}})
	fn := NewCode(CodeParams{Name: "fn", Children: map[string]*Code{"leaf": leaf}})
	first := NewCode(CodeParams{Name: "main", Children: map[string]*Code{"fn": fn}, Source: "first"})
	second := NewCode(CodeParams{Name: "main", Children: map[string]*Code{"fn": fn}, Source: "second"})

	require.Nil(t, leaf.Parent())
	require.Nil(t, fn.Parent())
	origLeaf, ok := fn.Child("leaf")
	require.True(t, ok)
	require.Same(t, fn, origLeaf.Parent())

	for _, root := range []*Code{first, second} {
		child, ok := root.Child("fn")
		require.True(t, ok)
		require.Same(t, root, child.Parent())
		grandchild, ok := child.Child("leaf")
		require.True(t, ok)
		require.Same(t, child, grandchild.Parent())
		require.Equal(t, root.Source(), grandchild.GetSourceLine(1))
	}
}

func TestFlattenAndStats(t *testing.T) {
	code := sampleCode()
	flat := code.Flatten()
	require.Len(t, flat, 3)
	require.Equal(t, "main", flat[0].Name())
	require.Equal(t, "add", flat[1].Name())
	require.Equal(t, "inner", flat[2].Name())

	stats := code.Stats()
	require.Equal(t, 13, stats.InstructionCount)
	require.Equal(t, 4, stats.ConstantCount)
	require.Equal(t, 2, stats.FunctionCount)
	require.Equal(t, 2, stats.MaxNesting)
}

func TestEqual(t *testing.T) {
	require.True(t, sampleCode().Equal(sampleCode()))

	other := NewCode(CodeParams{
		Name:      "main",
		Constants: []object.Object{object.NewFloat(0)},
	})
	negZero := NewCode(CodeParams{
		Name:      "main",
		Constants: []object.Object{object.NewFloat(math.Copysign(0, -1))},
	})
	require.False(t, other.Equal(negZero))
	require.False(t, other.Equal(nil))
}

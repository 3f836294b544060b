package object

import (
	"math"
	"testing"

	"github.com/lacelang/lace/op"
	"github.com/stretchr/testify/require"
)

type testCode struct {
	name   string
	params []string
}

func (c *testCode) Name() string             { return c.name }
func (c *testCode) ParameterNames() []string { return c.params }

func TestTypeNames(t *testing.T) {
	code := &testCode{name: "f", params: []string{"a"}}
	tests := []struct {
		obj      Object
		expected Type
	}{
		{NewInt(1), "Int"},
		{NewFloat(1.5), "Float"},
		{NewString("x"), "String"},
		{True, "Bool"},
		{NewArray(nil), "Array"},
		{None, "None"},
		{NewFunction(code), "Function"},
		{NewBuiltin(0, "writeln"), "Builtin"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.expected, tt.obj.Type())
	}
}

func TestEquality(t *testing.T) {
	require.True(t, NewInt(3).Equals(NewInt(3)))
	require.False(t, NewInt(3).Equals(NewFloat(3)))
	require.False(t, NewFloat(3).Equals(NewInt(3)))
	require.True(t, NewString("ab").Equals(NewString("ab")))
	require.False(t, NewString("ab").Equals(None))
	require.True(t, None.Equals(None))
	require.True(t, NewBool(true).Equals(True))

	a := NewArray([]Object{NewInt(1), NewArray([]Object{NewString("x")})})
	b := NewArray([]Object{NewInt(1), NewArray([]Object{NewString("x")})})
	c := NewArray([]Object{NewInt(1), NewArray([]Object{NewString("y")})})
	require.True(t, a.Equals(b))
	require.False(t, a.Equals(c))
	require.False(t, a.Equals(NewArray([]Object{NewInt(1)})))

	code := &testCode{name: "f", params: []string{"a"}}
	require.True(t, NewFunction(code).Equals(NewFunction(code)))
	require.False(t, NewFunction(code).Equals(NewFunction(&testCode{name: "f", params: []string{"a"}})))
	require.True(t, NewBuiltin(1, "print").Equals(NewBuiltin(1, "print")))
}

func TestIdentical(t *testing.T) {
	require.True(t, NewFloat(0).Equals(NewFloat(math.Copysign(0, -1))))
	require.False(t, Identical(NewFloat(0), NewFloat(math.Copysign(0, -1))))
	nan := NewFloat(math.NaN())
	require.False(t, nan.Equals(nan))
	require.True(t, Identical(nan, NewFloat(math.NaN())))
	require.True(t, Identical(NewInt(1), NewInt(1)))
	require.False(t, Identical(NewInt(1), NewFloat(1)))
	require.True(t, Identical(
		NewArray([]Object{NewFloat(1.5)}),
		NewArray([]Object{NewFloat(1.5)}),
	))
}

func TestTruthiness(t *testing.T) {
	tests := []struct {
		obj      Object
		expected bool
	}{
		{True, true},
		{False, false},
		{NewInt(0), false},
		{NewInt(-2), true},
		{NewFloat(0), false},
		{NewFloat(0.1), true},
		{NewString(""), false},
		{NewString("a"), true},
		{NewArray(nil), false},
		{NewArray([]Object{None}), true},
		{None, false},
	}
	for _, tt := range tests {
		require.Equal(t, tt.expected, tt.obj.IsTruthy(), tt.obj.Inspect())
	}
}

func TestStringForms(t *testing.T) {
	arr := NewArray([]Object{NewInt(1), NewString("a"), None, NewFloat(2.5), False})
	require.Equal(t, "[1, a, none, 2.5, false]", arr.String())
	require.Equal(t, `[1, "a", none, 2.5, false]`, arr.Inspect())
	require.Equal(t, "3", NewFloat(3).String())
	require.Equal(t, "<builtin writeln!>", NewBuiltin(0, "writeln").String())
}

func TestArrayIsImmutable(t *testing.T) {
	items := []Object{NewInt(1), NewInt(2)}
	arr := NewArray(items)
	items[0] = NewInt(99)
	require.Equal(t, int64(1), arr.At(0).(*Int).Value())

	out := arr.Items()
	out[1] = NewInt(42)
	require.Equal(t, int64(2), arr.At(1).(*Int).Value())

	joined := arr.Concat(NewArray([]Object{NewInt(3)}))
	require.Equal(t, 3, joined.Len())
	require.Equal(t, 2, arr.Len())
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name     string
		in       Object
		tag      op.TypeTag
		expected Object
	}{
		{"float to int", NewFloat(3.9), op.TagInt, NewInt(3)},
		{"string to int", NewString(" 42 "), op.TagInt, NewInt(42)},
		{"bool to int", True, op.TagInt, NewInt(1)},
		{"int to float", NewInt(2), op.TagFloat, NewFloat(2)},
		{"string to float", NewString("2.5"), op.TagFloat, NewFloat(2.5)},
		{"int to string", NewInt(7), op.TagString, NewString("7")},
		{"array to string", NewArray([]Object{NewInt(1)}), op.TagString, NewString("[1]")},
		{"string to array", NewString("ab"), op.TagArray, NewArray([]Object{NewString("ab")})},
		{"int to array", NewInt(1), op.TagArray, NewArray([]Object{NewInt(1)})},
		{"empty string to bool", NewString(""), op.TagBool, False},
		{"int to bool", NewInt(5), op.TagBool, True},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Convert(tt.in, tt.tag)
			require.Nil(t, err)
			require.True(t, tt.expected.Equals(result), "got %s", result.Inspect())
		})
	}
}

func TestConvertFailures(t *testing.T) {
	tests := []struct {
		in  Object
		tag op.TypeTag
	}{
		{NewString("abc"), op.TagInt},
		{NewString("1.2.3"), op.TagFloat},
		{None, op.TagInt},
		{NewArray(nil), op.TagFloat},
		{NewFloat(math.Inf(1)), op.TagInt},
		{NewFloat(math.NaN()), op.TagInt},
		{NewInt(1), op.TypeTag(9)},
	}
	for _, tt := range tests {
		_, err := Convert(tt.in, tt.tag)
		var convErr *ConversionError
		require.ErrorAs(t, err, &convErr)
	}
}

func TestFromGoType(t *testing.T) {
	obj, err := FromGoType([]interface{}{1, "a", 2.5, true, nil})
	require.Nil(t, err)
	require.Equal(t, "[1, a, 2.5, true, none]", obj.String())

	_, err = FromGoType(struct{}{})
	require.Error(t, err)

	globals, err := AsObjects(map[string]interface{}{"x": int64(3), "y": "s"})
	require.Nil(t, err)
	require.Equal(t, []string{"x", "y"}, Keys(globals))
}

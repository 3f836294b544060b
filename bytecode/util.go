package bytecode

import (
	"github.com/lacelang/lace/object"
	"github.com/lacelang/lace/op"
)

func copyStrings(src []string) []string {
	if src == nil {
		return nil
	}
	dst := make([]string, len(src))
	copy(dst, src)
	return dst
}

func copyObjects(src []object.Object) []object.Object {
	if src == nil {
		return nil
	}
	dst := make([]object.Object, len(src))
	copy(dst, src)
	return dst
}

func copyInstructions(src []op.Instruction) []op.Instruction {
	if src == nil {
		return nil
	}
	dst := make([]op.Instruction, len(src))
	copy(dst, src)
	return dst
}

func copyLocations(src []SourceLocation) []SourceLocation {
	if src == nil {
		return nil
	}
	dst := make([]SourceLocation, len(src))
	copy(dst, src)
	return dst
}

func copyParameters(src []Parameter) []Parameter {
	if src == nil {
		return nil
	}
	dst := make([]Parameter, len(src))
	copy(dst, src)
	return dst
}

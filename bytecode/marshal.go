package bytecode

import (
	"fmt"
	"math"

	"github.com/fxamacker/cbor/v2"
	"github.com/lacelang/lace/object"
	"github.com/lacelang/lace/op"
)

// Magic is the leading marker of every object file.
const Magic = "LACE"

// FormatVersion is the object file format version written by Marshal.
const FormatVersion = 1

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

type fileState struct {
	Magic   string     `cbor:"magic"`
	Version int        `cbor:"version"`
	Code    *codeState `cbor:"code"`
}

type codeState struct {
	Name         string          `cbor:"name"`
	SourceTag    string          `cbor:"source_tag"`
	Source       string          `cbor:"source,omitempty"`
	Instructions []instState     `cbor:"instructions"`
	Constants    []constState    `cbor:"constants"`
	Names        []string        `cbor:"names"`
	Parameters   []paramState    `cbor:"parameters"`
	Children     []*codeState    `cbor:"children"`
	Locations    []locationState `cbor:"locations"`
}

type instState struct {
	_  struct{} `cbor:",toarray"`
	Op uint8
	A  uint32
	B  uint32
}

type locationState struct {
	_      struct{} `cbor:",toarray"`
	Line   int
	Column int
}

type paramState struct {
	Name    string `cbor:"name"`
	Mutable bool   `cbor:"mutable,omitempty"`
}

// Floats are stored as their IEEE 754 bits so that negative zero and NaN
// payloads survive the round trip.
type constState struct {
	Type  string       `cbor:"type"`
	Int   int64        `cbor:"int,omitempty"`
	Float uint64       `cbor:"float,omitempty"`
	Str   string       `cbor:"str,omitempty"`
	Bool  bool         `cbor:"bool,omitempty"`
	Items []constState `cbor:"items,omitempty"`
}

// Marshal serializes the code and all of its children to the object file
// format.
func Marshal(code *Code) ([]byte, error) {
	state, err := stateFromCode(code)
	if err != nil {
		return nil, err
	}
	return cborEncMode.Marshal(fileState{
		Magic:   Magic,
		Version: FormatVersion,
		Code:    state,
	})
}

// Unmarshal deserializes an object file produced by Marshal. The decoded
// instructions are validated against the opcode table and the code's
// constant, name and instruction counts.
func Unmarshal(data []byte) (*Code, error) {
	var file fileState
	if err := cbor.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("bytecode: unmarshal: %w", err)
	}
	if file.Magic != Magic {
		return nil, fmt.Errorf("bytecode: not an object file (magic %q)", file.Magic)
	}
	if file.Version != FormatVersion {
		return nil, fmt.Errorf("bytecode: unsupported object file version %d (want %d)",
			file.Version, FormatVersion)
	}
	if file.Code == nil {
		return nil, fmt.Errorf("bytecode: object file has no code")
	}
	return codeFromState(file.Code)
}

func stateFromCode(code *Code) (*codeState, error) {
	state := &codeState{
		Name:      code.name,
		SourceTag: code.sourceTag,
		Source:    code.source,
		Names:     copyStrings(code.names),
	}
	for _, inst := range code.instructions {
		state.Instructions = append(state.Instructions, instState{Op: uint8(inst.Op), A: inst.A, B: inst.B})
	}
	for i, constant := range code.constants {
		cs, err := stateFromConstant(constant)
		if err != nil {
			return nil, fmt.Errorf("bytecode: %s: constant %d: %w", code.name, i, err)
		}
		state.Constants = append(state.Constants, cs)
	}
	for _, p := range code.parameters {
		state.Parameters = append(state.Parameters, paramState{Name: p.Name, Mutable: p.Mutable})
	}
	for _, loc := range code.locations {
		state.Locations = append(state.Locations, locationState{Line: loc.Line, Column: loc.Column})
	}
	for _, name := range code.childNames {
		child, err := stateFromCode(code.children[name])
		if err != nil {
			return nil, err
		}
		state.Children = append(state.Children, child)
	}
	return state, nil
}

func stateFromConstant(obj object.Object) (constState, error) {
	switch obj := obj.(type) {
	case *object.Int:
		return constState{Type: "int", Int: obj.Value()}, nil
	case *object.Float:
		return constState{Type: "float", Float: math.Float64bits(obj.Value())}, nil
	case *object.String:
		return constState{Type: "string", Str: obj.Value()}, nil
	case *object.Bool:
		return constState{Type: "bool", Bool: obj.Value()}, nil
	case *object.NoneType:
		return constState{Type: "none"}, nil
	case *object.Array:
		cs := constState{Type: "array", Items: []constState{}}
		for i := 0; i < obj.Len(); i++ {
			item, err := stateFromConstant(obj.At(i))
			if err != nil {
				return constState{}, err
			}
			cs.Items = append(cs.Items, item)
		}
		return cs, nil
	default:
		return constState{}, fmt.Errorf("unsupported constant type %s", obj.Type())
	}
}

func constantFromState(cs constState) (object.Object, error) {
	switch cs.Type {
	case "int":
		return object.NewInt(cs.Int), nil
	case "float":
		return object.NewFloat(math.Float64frombits(cs.Float)), nil
	case "string":
		return object.NewString(cs.Str), nil
	case "bool":
		return object.NewBool(cs.Bool), nil
	case "none":
		return object.None, nil
	case "array":
		items := make([]object.Object, 0, len(cs.Items))
		for _, itemState := range cs.Items {
			item, err := constantFromState(itemState)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return object.NewArray(items), nil
	default:
		return nil, fmt.Errorf("unknown constant type %q", cs.Type)
	}
}

func codeFromState(state *codeState) (*Code, error) {
	params := CodeParams{
		Name:      state.Name,
		SourceTag: state.SourceTag,
		Source:    state.Source,
		Names:     state.Names,
	}
	for i, cs := range state.Constants {
		constant, err := constantFromState(cs)
		if err != nil {
			return nil, fmt.Errorf("bytecode: %s: constant %d: %w", state.Name, i, err)
		}
		params.Constants = append(params.Constants, constant)
	}
	for ip, is := range state.Instructions {
		inst := op.Instruction{Op: op.Code(is.Op), A: is.A, B: is.B}
		if err := validateInstruction(inst, state, len(params.Constants)); err != nil {
			return nil, fmt.Errorf("bytecode: %s: instruction %d: %w", state.Name, ip, err)
		}
		params.Instructions = append(params.Instructions, inst)
	}
	for _, p := range state.Parameters {
		params.Parameters = append(params.Parameters, Parameter{Name: p.Name, Mutable: p.Mutable})
	}
	for _, loc := range state.Locations {
		params.Locations = append(params.Locations, SourceLocation{Line: loc.Line, Column: loc.Column})
	}
	if len(state.Children) > 0 {
		params.Children = make(map[string]*Code, len(state.Children))
		for _, childState := range state.Children {
			if _, exists := params.Children[childState.Name]; exists {
				return nil, fmt.Errorf("bytecode: %s: duplicate child %q", state.Name, childState.Name)
			}
			child, err := codeFromState(childState)
			if err != nil {
				return nil, err
			}
			params.Children[childState.Name] = child
		}
	}
	return NewCode(params), nil
}

func validateInstruction(inst op.Instruction, state *codeState, constCount int) error {
	if !op.IsValid(inst.Op) {
		return fmt.Errorf("unknown opcode %d", inst.Op)
	}
	switch inst.Op {
	case op.LoadConst:
		if int(inst.A) >= constCount {
			return fmt.Errorf("constant index %d out of range", inst.A)
		}
	case op.LoadVariable, op.AssignVariable, op.CallFunction:
		if int(inst.A) >= len(state.Names) {
			return fmt.Errorf("name index %d out of range", inst.A)
		}
	case op.Jump, op.JumpIfTrue, op.JumpIfFalse:
		if int(inst.A) > len(state.Instructions) {
			return fmt.Errorf("jump target %d out of range", inst.A)
		}
	}
	return nil
}

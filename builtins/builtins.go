// Package builtins defines the primitive table: the fixed set of native
// functions a Lace program reaches with the name!(...) call syntax.
//
// The compiler resolves primitive names to ids through a Table and the VM
// dispatches ids through the same Table, so both sides must be handed the
// same table explicitly.
package builtins

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/lacelang/lace/object"
)

// TableVersion identifies the layout of the default primitive ids. It
// changes whenever an id is reassigned.
const TableVersion = 1

// Ids of the default primitives.
const (
	WritelnID = iota
	PrintID
	ExitID
	LenID
)

// Variadic marks a primitive with no upper bound on its argument count.
const Variadic = -1

// Func is the signature of a native primitive.
type Func func(ctx context.Context, args []object.Object) (object.Object, error)

// Primitive describes one entry of a Table.
type Primitive struct {
	ID      int
	Name    string
	MinArgs int
	MaxArgs int // Variadic for no limit
	Fn      Func
}

// AcceptsArgs reports whether n arguments satisfy the primitive's arity.
func (p *Primitive) AcceptsArgs(n int) bool {
	return n >= p.MinArgs && (p.MaxArgs == Variadic || n <= p.MaxArgs)
}

// ArityString describes the accepted argument count, e.g. "1" or "0-1".
func (p *Primitive) ArityString() string {
	switch {
	case p.MaxArgs == Variadic:
		return fmt.Sprintf("%d or more", p.MinArgs)
	case p.MinArgs == p.MaxArgs:
		return fmt.Sprint(p.MinArgs)
	default:
		return fmt.Sprintf("%d-%d", p.MinArgs, p.MaxArgs)
	}
}

// Call checks the argument count and invokes the primitive.
func (p *Primitive) Call(ctx context.Context, args []object.Object) (object.Object, error) {
	if !p.AcceptsArgs(len(args)) {
		return nil, fmt.Errorf("%s: expected %s arguments, got %d", p.Name, p.ArityString(), len(args))
	}
	return p.Fn(ctx, args)
}

// Table maps primitive names to ids and ids to implementations. A Table is
// immutable once built.
type Table struct {
	byID   []*Primitive
	byName map[string]*Primitive
}

// NewTable builds a table from the given primitives. Ids are assigned in
// order, starting at zero; any ID set on the input is ignored.
func NewTable(prims ...Primitive) (*Table, error) {
	return (&Table{byName: map[string]*Primitive{}}).Extend(prims...)
}

// Extend returns a new table holding t's primitives followed by prims,
// which receive the next free ids.
func (t *Table) Extend(prims ...Primitive) (*Table, error) {
	out := &Table{
		byID:   make([]*Primitive, 0, len(t.byID)+len(prims)),
		byName: make(map[string]*Primitive, len(t.byID)+len(prims)),
	}
	for _, p := range t.byID {
		out.byID = append(out.byID, p)
		out.byName[p.Name] = p
	}
	for _, p := range prims {
		if p.Name == "" {
			return nil, fmt.Errorf("primitive with empty name")
		}
		if p.Fn == nil {
			return nil, fmt.Errorf("primitive %q has no implementation", p.Name)
		}
		if _, exists := out.byName[p.Name]; exists {
			return nil, fmt.Errorf("duplicate primitive %q", p.Name)
		}
		if p.MaxArgs != Variadic && p.MaxArgs < p.MinArgs {
			return nil, fmt.Errorf("primitive %q has invalid arity %d-%d", p.Name, p.MinArgs, p.MaxArgs)
		}
		entry := p
		entry.ID = len(out.byID)
		out.byID = append(out.byID, &entry)
		out.byName[entry.Name] = &entry
	}
	return out, nil
}

// Lookup returns the primitive with the given name.
func (t *Table) Lookup(name string) (*Primitive, bool) {
	p, ok := t.byName[name]
	return p, ok
}

// Get returns the primitive with the given id.
func (t *Table) Get(id int) (*Primitive, bool) {
	if id < 0 || id >= len(t.byID) {
		return nil, false
	}
	return t.byID[id], true
}

// Len returns the number of primitives in the table.
func (t *Table) Len() int {
	return len(t.byID)
}

// Names returns the primitive names in sorted order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.byID))
	for _, p := range t.byID {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}

var defaultTable *Table

func init() {
	var err error
	defaultTable, err = NewTable(
		Primitive{Name: "writeln", MinArgs: 0, MaxArgs: Variadic, Fn: Writeln},
		Primitive{Name: "print", MinArgs: 0, MaxArgs: Variadic, Fn: Print},
		Primitive{Name: "exit", MinArgs: 0, MaxArgs: 1, Fn: Exit},
		Primitive{Name: "len", MinArgs: 1, MaxArgs: 1, Fn: Len},
	)
	if err != nil {
		panic(err)
	}
}

// Default returns the standard primitive table.
func Default() *Table {
	return defaultTable
}

func render(args []object.Object) string {
	var b strings.Builder
	for _, arg := range args {
		b.WriteString(arg.String())
	}
	return b.String()
}

// Writeln writes its arguments, concatenated, followed by a newline.
func Writeln(ctx context.Context, args []object.Object) (object.Object, error) {
	if _, err := fmt.Fprintln(Stdout(ctx), render(args)); err != nil {
		return nil, err
	}
	return object.None, nil
}

// Print writes its arguments, concatenated, with no trailing newline.
func Print(ctx context.Context, args []object.Object) (object.Object, error) {
	if _, err := fmt.Fprint(Stdout(ctx), render(args)); err != nil {
		return nil, err
	}
	return object.None, nil
}

// Exit stops the program with the given status code (default 0).
func Exit(ctx context.Context, args []object.Object) (object.Object, error) {
	if len(args) == 0 {
		return nil, &ExitError{Code: 0}
	}
	code, ok := args[0].(*object.Int)
	if !ok {
		return nil, fmt.Errorf("exit: expected an Int status code (%s given)", args[0].Type())
	}
	return nil, &ExitError{Code: int(code.Value())}
}

// Len returns the number of characters in a String or items in an Array.
func Len(ctx context.Context, args []object.Object) (object.Object, error) {
	switch arg := args[0].(type) {
	case *object.String:
		return object.NewInt(int64(utf8.RuneCountInString(arg.Value()))), nil
	case *object.Array:
		return object.NewInt(int64(arg.Len())), nil
	default:
		return nil, fmt.Errorf("len: unsupported argument (%s given)", args[0].Type())
	}
}

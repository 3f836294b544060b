package object

import (
	"strings"
)

// Array is an immutable ordered sequence of objects.
type Array struct {
	items []Object
}

// NewArray returns an Array holding a copy of the given items.
func NewArray(items []Object) *Array {
	copied := make([]Object, len(items))
	copy(copied, items)
	return &Array{items: copied}
}

func (a *Array) Type() Type { return ARRAY }
func (a *Array) IsTruthy() bool { return len(a.items) > 0 }
func (a *Array) sealed() {}

// Len returns the number of items in the array.
func (a *Array) Len() int {
	return len(a.items)
}

// At returns the item at index i.
func (a *Array) At(i int) Object {
	return a.items[i]
}

// Items returns a copy of the array items.
func (a *Array) Items() []Object {
	copied := make([]Object, len(a.items))
	copy(copied, a.items)
	return copied
}

// Concat returns a new array holding the items of a followed by other.
func (a *Array) Concat(other *Array) *Array {
	items := make([]Object, 0, len(a.items)+len(other.items))
	items = append(items, a.items...)
	items = append(items, other.items...)
	return &Array{items: items}
}

func (a *Array) Interface() interface{} {
	result := make([]interface{}, len(a.items))
	for i, item := range a.items {
		result[i] = item.Interface()
	}
	return result
}

func (a *Array) String() string {
	return a.join(func(o Object) string { return o.String() })
}

func (a *Array) Inspect() string {
	return a.join(func(o Object) string { return o.Inspect() })
}

func (a *Array) join(format func(Object) string) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, item := range a.items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(format(item))
	}
	b.WriteByte(']')
	return b.String()
}

func (a *Array) Equals(other Object) bool {
	o, ok := other.(*Array)
	if !ok || len(o.items) != len(a.items) {
		return false
	}
	for i := range a.items {
		if !a.items[i].Equals(o.items[i]) {
			return false
		}
	}
	return true
}

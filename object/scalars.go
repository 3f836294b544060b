package object

import (
	"strconv"
)

// Int wraps int64.
type Int struct {
	value int64
}

// NewInt returns an Int object.
func NewInt(value int64) *Int {
	return &Int{value: value}
}

func (i *Int) Type() Type { return INT }
func (i *Int) Value() int64 { return i.value }
func (i *Int) Interface() interface{} { return i.value }
func (i *Int) String() string { return strconv.FormatInt(i.value, 10) }
func (i *Int) Inspect() string { return i.String() }
func (i *Int) IsTruthy() bool { return i.value != 0 }
func (i *Int) sealed() {}

func (i *Int) Equals(other Object) bool {
	o, ok := other.(*Int)
	return ok && o.value == i.value
}

// Float wraps float64.
type Float struct {
	value float64
}

// NewFloat returns a Float object.
func NewFloat(value float64) *Float {
	return &Float{value: value}
}

func (f *Float) Type() Type { return FLOAT }
func (f *Float) Value() float64 { return f.value }
func (f *Float) Interface() interface{} { return f.value }
func (f *Float) Inspect() string { return f.String() }
func (f *Float) IsTruthy() bool { return f.value != 0 }
func (f *Float) sealed() {}

func (f *Float) String() string {
	return strconv.FormatFloat(f.value, 'f', -1, 64)
}

func (f *Float) Equals(other Object) bool {
	o, ok := other.(*Float)
	return ok && o.value == f.value
}

// String wraps a Go string.
type String struct {
	value string
}

// NewString returns a String object.
func NewString(value string) *String {
	return &String{value: value}
}

func (s *String) Type() Type { return STRING }
func (s *String) Value() string { return s.value }
func (s *String) Interface() interface{} { return s.value }
func (s *String) String() string { return s.value }
func (s *String) Inspect() string { return strconv.Quote(s.value) }
func (s *String) IsTruthy() bool { return s.value != "" }
func (s *String) sealed() {}

func (s *String) Equals(other Object) bool {
	o, ok := other.(*String)
	return ok && o.value == s.value
}

// Bool wraps a Go bool. Use NewBool, True or False.
type Bool struct {
	value bool
}

func (b *Bool) Type() Type { return BOOL }
func (b *Bool) Value() bool { return b.value }
func (b *Bool) Interface() interface{} { return b.value }
func (b *Bool) Inspect() string { return b.String() }
func (b *Bool) IsTruthy() bool { return b.value }
func (b *Bool) sealed() {}

func (b *Bool) String() string {
	if b.value {
		return "true"
	}
	return "false"
}

func (b *Bool) Equals(other Object) bool {
	o, ok := other.(*Bool)
	return ok && o.value == b.value
}

// NoneType is the type of the None object, the unit value.
type NoneType struct{}

func (n *NoneType) Type() Type { return NONE }
func (n *NoneType) Interface() interface{} { return nil }
func (n *NoneType) String() string { return "none" }
func (n *NoneType) Inspect() string { return "none" }
func (n *NoneType) IsTruthy() bool { return false }
func (n *NoneType) sealed() {}

func (n *NoneType) Equals(other Object) bool {
	_, ok := other.(*NoneType)
	return ok
}

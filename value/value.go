package value

import "unicode/utf8"

// Value is a node of a runtime value graph.
type Value interface {
	Kind() Kind
}

type Null struct{}

type Bool bool

type Int int64

type Float float64

// Str is a byte string. Its wire length counts bytes.
type Str string

// UStr is a unicode string. Its wire length counts code points.
type UStr string

var NullValue Value = Null{}

var (
	True  Value = Bool(true)
	False Value = Bool(false)
)

func (Null) Kind() Kind  { return KindNull }
func (Bool) Kind() Kind  { return KindBool }
func (Int) Kind() Kind   { return KindInt }
func (Float) Kind() Kind { return KindFloat }
func (Str) Kind() Kind   { return KindString }
func (UStr) Kind() Kind  { return KindString }

// Runes returns the code point count used as the wire length.
func (s UStr) Runes() int {
	return utf8.RuneCountInString(string(s))
}

// Ref is a shared mutable cell. Two slots holding the same *Ref alias each
// other: a Set through one is observed through the other.
type Ref struct {
	v Value
}

func NewRef(v Value) *Ref {
	if v == nil {
		v = NullValue
	}
	if r, ok := v.(*Ref); ok {
		return r
	}
	return &Ref{v: v}
}

func (*Ref) Kind() Kind { return KindRef }

func (r *Ref) Get() Value {
	return r.v
}

func (r *Ref) Set(v Value) {
	if v == nil {
		v = NullValue
	}
	r.v = Deref(v)
}

// Deref unwraps a reference cell; other values are returned unchanged.
// A nil Value becomes Null.
func Deref(v Value) Value {
	if v == nil {
		return NullValue
	}
	if r, ok := v.(*Ref); ok {
		return r.v
	}
	return v
}

// StringOf returns the payload of a Str or UStr.
func StringOf(v Value) (string, bool) {
	switch s := Deref(v).(type) {
	case Str:
		return string(s), true
	case UStr:
		return string(s), true
	}
	return "", false
}

package value

import (
	"math"
	"testing"
)

func TestRefAliasing(t *testing.T) {
	r := NewRef(Int(1))
	a := ArrayOf(r, r)

	r.Set(Str("x"))

	for _, k := range []Key{IntKey(0), IntKey(1)} {
		v, ok := a.Lookup(k)
		if !ok {
			t.Fatalf("key %s missing", k)
		}
		if v != Str("x") {
			t.Errorf("slot %s = %#v, want Str(x)", k, v)
		}
	}
}

func TestNewRefNormalizes(t *testing.T) {
	if NewRef(nil).Get() != NullValue {
		t.Error("NewRef(nil) should hold Null")
	}
	r := NewRef(Int(3))
	if NewRef(r) != r {
		t.Error("NewRef(*Ref) should return the same cell")
	}
	inner := NewRef(Int(4))
	r.Set(inner)
	if r.Get() != Int(4) {
		t.Errorf("Set(*Ref) stored %#v, want dereferenced Int(4)", r.Get())
	}
}

func TestDeref(t *testing.T) {
	if Deref(nil) != NullValue {
		t.Error("Deref(nil) should be Null")
	}
	if Deref(NewRef(Bool(true))) != True {
		t.Error("Deref should unwrap a cell")
	}
	if Deref(Int(5)) != Int(5) {
		t.Error("Deref should pass plain values through")
	}
}

func TestUStrRunes(t *testing.T) {
	tests := []struct {
		in   UStr
		want int
	}{
		{"", 0},
		{"abc", 3},
		{"héllo", 5},
		{"日本", 2},
	}
	for _, tt := range tests {
		if got := tt.in.Runes(); got != tt.want {
			t.Errorf("%q.Runes() = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{NullValue, "null"},
		{True, "bool"},
		{Int(1), "int"},
		{Float(1), "float"},
		{Str(""), "string"},
		{UStr(""), "string"},
		{NewArray(0), "array"},
		{NewObject("A"), "object"},
		{NewRef(nil), "reference"},
	}
	for _, tt := range tests {
		if got := tt.v.Kind().String(); got != tt.want {
			t.Errorf("%T kind = %q, want %q", tt.v, got, tt.want)
		}
	}
	if Kind(200).String() != "unknown" {
		t.Error("out of range kind should be unknown")
	}
	if !KindString.IsScalar() || KindArray.IsScalar() {
		t.Error("IsScalar boundary wrong")
	}
}

func TestEqual(t *testing.T) {
	nan := Float(math.NaN())

	shared := NewRef(Int(1))
	cyc := NewArray(1)
	cycRef := NewRef(cyc)
	cyc.Put(IntKey(0), cycRef)
	cyc2 := NewArray(1)
	cycRef2 := NewRef(cyc2)
	cyc2.Put(IntKey(0), cycRef2)

	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"null", NullValue, nil, true},
		{"int", Int(1), Int(1), true},
		{"int mismatch", Int(1), Int(2), false},
		{"int vs float", Int(1), Float(1), false},
		{"nan", nan, nan, true},
		{"str vs ustr", Str("a"), UStr("a"), true},
		{"ref vs plain", NewRef(Int(1)), Int(1), true},
		{"same ref", shared, shared, true},
		{"arrays", ArrayOf(Int(1), Str("x")), ArrayOf(Int(1), Str("x")), true},
		{"array order", ArrayOf(Int(1), Int(2)), ArrayOf(Int(2), Int(1)), false},
		{"cycles", cyc, cyc2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEqualObjects(t *testing.T) {
	mk := func(vis Visibility, decl string) *Object {
		o := NewObject("User")
		o.InitField("id", Int(1), Public)
		o.setField(Field{Name: "pw", Value: Str("x"), Visibility: vis, Declaring: decl})
		return o
	}
	if !Equal(mk(Private, ""), mk(Private, "")) {
		t.Error("identical objects should be equal")
	}
	if Equal(mk(Private, ""), mk(Protected, "")) {
		t.Error("visibility should matter")
	}
	if Equal(mk(Private, ""), mk(Private, "Base")) {
		t.Error("declaring class should matter")
	}
	inc := NewIncomplete("User")
	if Equal(NewObject("User"), inc) {
		t.Error("incomplete flag should matter")
	}
}

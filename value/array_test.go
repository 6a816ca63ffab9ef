package value

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/php-serial/errors"
)

func TestArrayInsertionOrder(t *testing.T) {
	a := NewArray(0)
	a.Put(StrKey("b"), Int(1))
	a.Put(IntKey(5), Int(2))
	a.Put(StrKey("a"), Int(3))

	keys := a.Keys()
	want := []string{"b", "5", "a"}
	if len(keys) != len(want) {
		t.Fatalf("got %d keys, want %d", len(keys), len(want))
	}
	for i, k := range keys {
		if k.String() != want[i] {
			t.Errorf("key[%d] = %s, want %s", i, k, want[i])
		}
	}
}

func TestArrayLastWriteWins(t *testing.T) {
	a := NewArray(0)
	a.Put(IntKey(0), Str("first"))
	a.Put(IntKey(1), Str("other"))
	a.Put(IntKey(0), Str("second"))

	if a.Len() != 2 {
		t.Fatalf("Len = %d, want 2", a.Len())
	}
	if a.Keys()[0] != IntKey(0) {
		t.Error("overwritten key should keep its position")
	}
	v, _ := a.Lookup(IntKey(0))
	if v != Str("second") {
		t.Errorf("value = %#v, want second", v)
	}
}

func TestArrayAppend(t *testing.T) {
	a := NewArray(0)
	a.Put(IntKey(7), Int(0))
	a.Put(StrKey("x"), Int(1))
	a.Append(Int(2))

	v, ok := a.Lookup(IntKey(8))
	if !ok || v != Int(2) {
		t.Errorf("Append should use next integer key 8, got %#v %v", v, ok)
	}

	neg := NewArray(0)
	neg.Put(IntKey(-5), Int(0))
	neg.Append(Int(1))
	if _, ok := neg.Lookup(IntKey(0)); !ok {
		t.Error("Append after a negative key should start at 0")
	}
}

func TestArrayDelete(t *testing.T) {
	a := ArrayOf(Str("a"), Str("b"), Str("c"))
	if !a.Delete(IntKey(1)) {
		t.Fatal("Delete returned false")
	}
	if a.Delete(IntKey(1)) {
		t.Error("second Delete should return false")
	}
	if v, _ := a.Lookup(IntKey(2)); v != Str("c") {
		t.Errorf("index not rebuilt: got %#v", v)
	}
	a.Append(Str("d"))
	if v, _ := a.Lookup(IntKey(3)); v != Str("d") {
		t.Errorf("Append after Delete should not reuse keys, got %#v", v)
	}
}

func TestArrayGetKeepsRef(t *testing.T) {
	r := NewRef(Int(1))
	a := ArrayOf(r)
	raw, _ := a.Get(IntKey(0))
	if raw != Value(r) {
		t.Error("Get should return the raw cell")
	}
	v, _ := a.Lookup(IntKey(0))
	if v != Int(1) {
		t.Error("Lookup should dereference")
	}
}

func TestArrayEachStops(t *testing.T) {
	a := ArrayOf(Int(1), Int(2), Int(3))
	n := 0
	a.Each(func(Key, Value) bool {
		n++
		return n < 2
	})
	if n != 2 {
		t.Errorf("visited %d entries, want 2", n)
	}
}

func TestKeyOf(t *testing.T) {
	tests := []struct {
		in      Value
		want    Key
		wantErr bool
	}{
		{Int(3), IntKey(3), false},
		{Str("a"), StrKey("a"), false},
		{UStr("é"), StrKey("é"), false},
		{NewRef(Int(9)), IntKey(9), false},
		{Float(1.5), Key{}, true},
		{True, Key{}, true},
		{NullValue, Key{}, true},
		{NewArray(0), Key{}, true},
	}
	for _, tt := range tests {
		got, err := KeyOf(tt.in)
		if tt.wantErr {
			var e *errors.Error
			if !stderrors.As(err, &e) || e.Kind != errors.KindBadKey {
				t.Errorf("KeyOf(%#v) err = %v, want KindBadKey", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("KeyOf(%#v) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("KeyOf(%#v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestKeyValue(t *testing.T) {
	if IntKey(4).Value() != Int(4) {
		t.Error("IntKey value")
	}
	if StrKey("k").Value() != Str("k") {
		t.Error("StrKey value")
	}
	if !StrKey("1").IsString() || IntKey(1).IsString() {
		t.Error("IsString")
	}
	if StrKey("1") == IntKey(1) {
		t.Error("string and int keys must differ")
	}
}

func TestObjectFields(t *testing.T) {
	o := NewObject("Point")
	o.InitField("x", Int(1), Public)
	o.InitField("y", nil, Protected)
	o.InitPrivateField("Base", "secret", Str("s"))
	o.InitField("x", Int(2), Public)

	if o.Len() != 3 {
		t.Fatalf("Len = %d, want 3", o.Len())
	}
	f, ok := o.Field("x")
	if !ok || f.Value != Int(2) {
		t.Errorf("x = %#v", f.Value)
	}
	if o.Fields()[0].Name != "x" {
		t.Error("replaced field should keep its position")
	}
	y, _ := o.Field("y")
	if y.Value != NullValue || y.Visibility != Protected {
		t.Errorf("y = %+v", y)
	}
	s, _ := o.Field("secret")
	if s.Declaring != "Base" || s.Visibility != Private {
		t.Errorf("secret = %+v", s)
	}
	if _, ok := o.Field("missing"); ok {
		t.Error("missing field found")
	}
}

func TestObjectShadowedFields(t *testing.T) {
	o := NewObject("Child")
	o.InitPrivateField("Parent", "x", Int(1))
	o.InitField("x", Int(2), Protected)
	o.InitPrivateField("", "x", Int(3))
	o.InitPrivateField("Child", "x", Int(4))
	o.InitField("x", Int(5), Public)
	o.InitPrivateField("Parent", "x", Int(6))

	if o.Len() != 5 {
		t.Fatalf("Len = %d, want 5 distinct properties", o.Len())
	}
	if f, _ := o.Field("x"); f.Value != Int(5) || f.Visibility != Public {
		t.Errorf("Field(x) = %+v, want the public field", f)
	}
	if f, _ := o.PrivateField("Parent", "x"); f.Value != Int(6) {
		t.Errorf("Parent::x = %v, want replaced value", f.Value)
	}
	if f, _ := o.PrivateField("", "x"); f.Value != Int(3) {
		t.Errorf("private x = %v", f.Value)
	}
	if _, ok := o.PrivateField("Other", "x"); ok {
		t.Error("undeclared private field found")
	}
	if o.Fields()[0].Declaring != "Parent" {
		t.Error("replaced private field should keep its position")
	}

	p := NewObject("Child")
	p.InitPrivateField("Parent", "y", Int(1))
	p.InitField("y", Int(2), Protected)
	if f, _ := p.Field("y"); f.Visibility != Protected {
		t.Errorf("Field(y) = %+v, want protected before private", f)
	}
}

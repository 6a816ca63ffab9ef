package value

import "testing"

func TestCopyArrayIsIndependent(t *testing.T) {
	inner := ArrayOf(Int(1))
	outer := ArrayOf(inner)

	c := Copy(outer).(*Array)
	ci, _ := c.Lookup(IntKey(0))
	ci.(*Array).Put(IntKey(0), Int(99))

	if v, _ := inner.Lookup(IntKey(0)); v != Int(1) {
		t.Errorf("copy mutated source: %#v", v)
	}
	if !Equal(Copy(outer), outer) {
		t.Error("copy should be structurally equal")
	}
}

func TestCopySharesRefsAndObjects(t *testing.T) {
	r := NewRef(Int(1))
	o := NewObject("A")
	src := ArrayOf(r, o)

	c := Copy(src).(*Array)
	raw, _ := c.Get(IntKey(0))
	if raw != Value(r) {
		t.Error("references inside arrays should stay shared")
	}
	obj, _ := c.Get(IntKey(1))
	if obj != Value(o) {
		t.Error("object handles should keep identity")
	}
}

func TestCopyDerefsTopLevel(t *testing.T) {
	r := NewRef(ArrayOf(Int(1)))
	c := Copy(r)
	if _, ok := c.(*Array); !ok {
		t.Fatalf("Copy(*Ref) = %T, want *Array", c)
	}
	if c == r.Get() {
		t.Error("array under a ref should still be duplicated")
	}
	if Copy(Int(5)) != Int(5) {
		t.Error("scalars copy by value")
	}
}

func TestCopyKeepsNextKey(t *testing.T) {
	a := NewArray(0)
	a.Put(IntKey(10), Int(0))
	a.Delete(IntKey(10))
	c := Copy(a).(*Array)
	c.Append(Int(1))
	if _, ok := c.Lookup(IntKey(11)); !ok {
		t.Error("copy should keep the next free key")
	}
}

package value

import "math"

// Copy returns the value-copy of v: arrays are duplicated recursively,
// reference cells nested inside an array stay shared, and object handles
// keep their identity. A top-level *Ref is dereferenced first.
func Copy(v Value) Value {
	switch t := Deref(v).(type) {
	case *Array:
		return copyArray(t)
	default:
		return t
	}
}

func copyArray(a *Array) *Array {
	n := NewArray(a.Len())
	for _, e := range a.entries {
		val := e.val
		if inner, ok := val.(*Array); ok {
			val = copyArray(inner)
		}
		n.Put(e.key, val)
	}
	n.next = a.next
	return n
}

type visitPair struct {
	a, b any
}

// Equal reports structural equality. References compare by their contents.
// Str and UStr with the same payload are equal. NaN equals NaN so that
// decoded floats compare equal to their source.
func Equal(a, b Value) bool {
	return equal(a, b, make(map[visitPair]bool))
}

func equal(a, b Value, seen map[visitPair]bool) bool {
	if ra, ok := a.(*Ref); ok {
		if rb, ok := b.(*Ref); ok {
			if ra == rb {
				return true
			}
			p := visitPair{ra, rb}
			if seen[p] {
				return true
			}
			seen[p] = true
		}
	}
	a, b = Deref(a), Deref(b)

	switch x := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case Int:
		y, ok := b.(Int)
		return ok && x == y
	case Float:
		y, ok := b.(Float)
		if !ok {
			return false
		}
		if math.IsNaN(float64(x)) && math.IsNaN(float64(y)) {
			return true
		}
		return x == y
	case Str, UStr:
		xs, _ := StringOf(x)
		ys, ok := StringOf(b)
		return ok && xs == ys
	case *Array:
		y, ok := b.(*Array)
		if !ok || x.Len() != y.Len() {
			return false
		}
		if x == y {
			return true
		}
		p := visitPair{x, y}
		if seen[p] {
			return true
		}
		seen[p] = true
		for i := range x.entries {
			ex, ey := x.entries[i], y.entries[i]
			if ex.key != ey.key || !equal(ex.val, ey.val, seen) {
				return false
			}
		}
		return true
	case *Object:
		y, ok := b.(*Object)
		if !ok || x.Class != y.Class || x.Len() != y.Len() || x.Incomplete != y.Incomplete {
			return false
		}
		if x == y {
			return true
		}
		p := visitPair{x, y}
		if seen[p] {
			return true
		}
		seen[p] = true
		for i := range x.fields {
			fx, fy := x.fields[i], y.fields[i]
			if fx.Name != fy.Name || fx.Visibility != fy.Visibility || fx.Declaring != fy.Declaring {
				return false
			}
			if !equal(fx.Value, fy.Value, seen) {
				return false
			}
		}
		return true
	}
	return false
}

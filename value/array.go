package value

import (
	"math"
	"strconv"

	"github.com/wippyai/php-serial/errors"
)

// Key is an array key: either an integer or a string.
type Key struct {
	s     string
	n     int64
	isStr bool
}

func IntKey(n int64) Key { return Key{n: n} }

func StrKey(s string) Key { return Key{s: s, isStr: true} }

// KeyOf converts an Int or string Value to a Key. Any other kind is rejected.
func KeyOf(v Value) (Key, error) {
	switch k := Deref(v).(type) {
	case Int:
		return IntKey(int64(k)), nil
	case Str:
		return StrKey(string(k)), nil
	case UStr:
		return StrKey(string(k)), nil
	}
	return Key{}, errors.BadKey(errors.PhaseEncode, nil,
		"array key must be int or string, got "+Deref(v).Kind().String())
}

func (k Key) IsString() bool { return k.isStr }

func (k Key) Int() int64 { return k.n }

func (k Key) Str() string { return k.s }

// String renders the key for display and for use as an object field name.
func (k Key) String() string {
	if k.isStr {
		return k.s
	}
	return strconv.FormatInt(k.n, 10)
}

// Value returns the key as an Int or Str value.
func (k Key) Value() Value {
	if k.isStr {
		return Str(k.s)
	}
	return Int(k.n)
}

type entry struct {
	val Value
	key Key
}

// Array is an insertion-ordered map with unique keys.
type Array struct {
	index   map[Key]int
	entries []entry
	next    int64
}

func NewArray(capacity int) *Array {
	if capacity < 0 {
		capacity = 0
	}
	return &Array{
		index:   make(map[Key]int, capacity),
		entries: make([]entry, 0, capacity),
	}
}

// ArrayOf builds a list-shaped array with keys 0..len(vals)-1.
func ArrayOf(vals ...Value) *Array {
	a := NewArray(len(vals))
	for _, v := range vals {
		a.Append(v)
	}
	return a
}

func (*Array) Kind() Kind { return KindArray }

func (a *Array) Len() int {
	return len(a.entries)
}

// Put stores v under k. An existing key keeps its position; last write wins.
func (a *Array) Put(k Key, v Value) {
	if v == nil {
		v = NullValue
	}
	if i, ok := a.index[k]; ok {
		a.entries[i].val = v
		return
	}
	if a.index == nil {
		a.index = make(map[Key]int)
	}
	a.index[k] = len(a.entries)
	a.entries = append(a.entries, entry{key: k, val: v})
	if !k.isStr && k.n >= a.next && k.n < math.MaxInt64 {
		a.next = k.n + 1
	}
}

// Append stores v under the next free integer key.
func (a *Array) Append(v Value) {
	a.Put(IntKey(a.next), v)
}

// Get returns the raw slot value (a *Ref for aliased slots).
func (a *Array) Get(k Key) (Value, bool) {
	i, ok := a.index[k]
	if !ok {
		return nil, false
	}
	return a.entries[i].val, true
}

// Lookup returns the dereferenced value stored under k.
func (a *Array) Lookup(k Key) (Value, bool) {
	v, ok := a.Get(k)
	if !ok {
		return nil, false
	}
	return Deref(v), true
}

func (a *Array) Delete(k Key) bool {
	i, ok := a.index[k]
	if !ok {
		return false
	}
	copy(a.entries[i:], a.entries[i+1:])
	a.entries[len(a.entries)-1] = entry{}
	a.entries = a.entries[:len(a.entries)-1]
	delete(a.index, k)
	for j := i; j < len(a.entries); j++ {
		a.index[a.entries[j].key] = j
	}
	return true
}

// Each visits entries in insertion order until fn returns false.
func (a *Array) Each(fn func(k Key, v Value) bool) {
	for _, e := range a.entries {
		if !fn(e.key, e.val) {
			return
		}
	}
}

func (a *Array) Keys() []Key {
	keys := make([]Key, len(a.entries))
	for i, e := range a.entries {
		keys[i] = e.key
	}
	return keys
}

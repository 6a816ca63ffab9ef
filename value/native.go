package value

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"

	"github.com/wippyai/php-serial/errors"
)

// ClassField is the map key that carries an object's class name in the
// native representation.
const ClassField = "__class"

// ToNative converts v to plain Go values: nil, bool, int64, float64, string,
// []any for list-shaped arrays, and map[string]any otherwise. Objects become
// maps carrying ClassField. Cycles through references become nil. Non-finite
// floats become the strings "NAN", "INF" and "-INF".
func ToNative(v Value) any {
	return toNative(v, make(map[any]bool))
}

func toNative(v Value, active map[any]bool) any {
	switch t := Deref(v).(type) {
	case Null:
		return nil
	case Bool:
		return bool(t)
	case Int:
		return int64(t)
	case Float:
		f := float64(t)
		switch {
		case math.IsNaN(f):
			return "NAN"
		case math.IsInf(f, 1):
			return "INF"
		case math.IsInf(f, -1):
			return "-INF"
		}
		return f
	case Str:
		return string(t)
	case UStr:
		return string(t)
	case *Array:
		if active[t] {
			return nil
		}
		active[t] = true
		defer delete(active, t)
		if isList(t) {
			out := make([]any, 0, t.Len())
			t.Each(func(_ Key, val Value) bool {
				out = append(out, toNative(val, active))
				return true
			})
			return out
		}
		out := make(map[string]any, t.Len())
		t.Each(func(k Key, val Value) bool {
			out[k.String()] = toNative(val, active)
			return true
		})
		return out
	case *Object:
		if active[t] {
			return nil
		}
		active[t] = true
		defer delete(active, t)
		out := make(map[string]any, t.Len()+1)
		out[ClassField] = t.Class
		for _, f := range t.fields {
			// Shadowed names keep the field Object.Field would return.
			if cur, ok := t.Field(f.Name); ok && cur.key() != f.key() {
				continue
			}
			out[f.Name] = toNative(f.Value, active)
		}
		return out
	}
	return nil
}

func isList(a *Array) bool {
	i := int64(0)
	list := true
	a.Each(func(k Key, _ Value) bool {
		if k.isStr || k.n != i {
			list = false
			return false
		}
		i++
		return true
	})
	return list
}

// FromNative converts plain Go values into a Value graph. Map keys must be
// integers or strings; anything else is rejected with KindBadKey. Maps with
// a string ClassField entry become objects with public fields.
func FromNative(x any) (Value, error) {
	return fromNative(x, nil)
}

func fromNative(x any, path []string) (Value, error) {
	switch t := x.(type) {
	case nil:
		return NullValue, nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(t), nil
	case int8:
		return Int(t), nil
	case int16:
		return Int(t), nil
	case int32:
		return Int(t), nil
	case int64:
		return Int(t), nil
	case uint8:
		return Int(t), nil
	case uint16:
		return Int(t), nil
	case uint32:
		return Int(t), nil
	case uint:
		return uintValue(uint64(t), path)
	case uint64:
		return uintValue(t, path)
	case float32:
		return Float(t), nil
	case float64:
		return Float(t), nil
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return Int(n), nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, errors.New(errors.PhaseNative, errors.KindInvalidInput).
				Path(path...).
				Detail("invalid number %q", t.String()).
				Cause(err).
				Build()
		}
		return Float(f), nil
	case string:
		return Str(t), nil
	case []byte:
		return Str(t), nil
	case []any:
		a := NewArray(len(t))
		for i, e := range t {
			v, err := fromNative(e, append(path, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			a.Append(v)
		}
		return a, nil
	case map[string]any:
		if class, ok := t[ClassField].(string); ok {
			return objectFromMap(class, t, path)
		}
		a := NewArray(len(t))
		for _, k := range sortedKeys(t) {
			v, err := fromNative(t[k], append(path, k))
			if err != nil {
				return nil, err
			}
			a.Put(StrKey(k), v)
		}
		return a, nil
	}
	return fromReflect(reflect.ValueOf(x), path)
}

func uintValue(u uint64, path []string) (Value, error) {
	if u > math.MaxInt64 {
		return nil, errors.New(errors.PhaseNative, errors.KindOverflow).
			Path(path...).
			Value(u).
			Detail("value %d overflows int64", u).
			Build()
	}
	return Int(u), nil
}

func objectFromMap(class string, m map[string]any, path []string) (Value, error) {
	o := NewObject(class)
	for _, k := range sortedKeys(m) {
		if k == ClassField {
			continue
		}
		v, err := fromNative(m[k], append(path, k))
		if err != nil {
			return nil, err
		}
		o.InitField(k, v, Public)
	}
	return o, nil
}

func fromReflect(rv reflect.Value, path []string) (Value, error) {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		a := NewArray(rv.Len())
		for i := 0; i < rv.Len(); i++ {
			v, err := fromNative(rv.Index(i).Interface(), append(path, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			a.Append(v)
		}
		return a, nil
	case reflect.Map:
		type kv struct {
			key Key
			val reflect.Value
		}
		pairs := make([]kv, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k, err := nativeKey(iter.Key(), path)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, kv{key: k, val: iter.Value()})
		}
		sort.Slice(pairs, func(i, j int) bool {
			return keyLess(pairs[i].key, pairs[j].key)
		})
		a := NewArray(len(pairs))
		for _, p := range pairs {
			v, err := fromNative(p.val.Interface(), append(path, p.key.String()))
			if err != nil {
				return nil, err
			}
			a.Put(p.key, v)
		}
		return a, nil
	}
	return nil, errors.New(errors.PhaseNative, errors.KindUnsupported).
		Path(path...).
		Detail("cannot convert %s", typeName(rv)).
		Build()
}

func nativeKey(k reflect.Value, path []string) (Key, error) {
	if k.Kind() == reflect.Interface {
		k = k.Elem()
	}
	switch k.Kind() {
	case reflect.String:
		return StrKey(k.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return IntKey(k.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if k.Uint() <= math.MaxInt64 {
			return IntKey(int64(k.Uint())), nil
		}
	}
	return Key{}, errors.BadKey(errors.PhaseNative, path,
		fmt.Sprintf("map key must be int or string, got %s", typeName(k)))
}

func typeName(rv reflect.Value) string {
	if !rv.IsValid() {
		return "nil"
	}
	return rv.Type().String()
}

func keyLess(a, b Key) bool {
	if a.isStr != b.isStr {
		return !a.isStr
	}
	if a.isStr {
		return a.s < b.s
	}
	return a.n < b.n
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

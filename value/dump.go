package value

import (
	"strconv"
	"strings"
)

// Dump renders v in the runtime's print_r layout.
func Dump(v Value) string {
	var b strings.Builder
	d := dumper{b: &b, active: make(map[any]bool)}
	d.value(v, 0)
	return b.String()
}

type dumper struct {
	b      *strings.Builder
	active map[any]bool
}

func (d *dumper) value(v Value, indent int) {
	switch t := Deref(v).(type) {
	case Null:
	case Bool:
		if t {
			d.b.WriteByte('1')
		}
	case Int:
		d.b.WriteString(strconv.FormatInt(int64(t), 10))
	case Float:
		d.b.WriteString(strconv.FormatFloat(float64(t), 'g', -1, 64))
	case Str:
		d.b.WriteString(string(t))
	case UStr:
		d.b.WriteString(string(t))
	case *Array:
		if d.active[t] {
			d.b.WriteString("Array\n *RECURSION*")
			return
		}
		d.active[t] = true
		d.b.WriteString("Array\n")
		d.open(indent)
		t.Each(func(k Key, val Value) bool {
			d.entry(k.String(), val, indent)
			return true
		})
		d.close(indent)
		delete(d.active, t)
	case *Object:
		if d.active[t] {
			d.b.WriteString(t.Class)
			d.b.WriteString(" Object\n *RECURSION*")
			return
		}
		d.active[t] = true
		d.b.WriteString(t.Class)
		d.b.WriteString(" Object\n")
		d.open(indent)
		for _, f := range t.fields {
			name := f.Name
			switch f.Visibility {
			case Protected:
				name += ":protected"
			case Private:
				if f.Declaring != "" {
					name += ":" + f.Declaring
				} else {
					name += ":" + t.Class
				}
				name += ":private"
			}
			d.entry(name, f.Value, indent)
		}
		d.close(indent)
		delete(d.active, t)
	}
}

func (d *dumper) open(indent int) {
	d.pad(indent)
	d.b.WriteString("(\n")
}

func (d *dumper) close(indent int) {
	d.pad(indent)
	d.b.WriteString(")\n")
}

func (d *dumper) entry(name string, v Value, indent int) {
	d.pad(indent + 4)
	d.b.WriteByte('[')
	d.b.WriteString(name)
	d.b.WriteString("] => ")
	d.value(v, indent+8)
	d.b.WriteByte('\n')
}

func (d *dumper) pad(n int) {
	for i := 0; i < n; i++ {
		d.b.WriteByte(' ')
	}
}

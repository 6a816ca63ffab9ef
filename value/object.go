package value

// Visibility of an object field.
type Visibility uint8

const (
	Public Visibility = iota
	Protected
	Private
)

func (v Visibility) String() string {
	switch v {
	case Protected:
		return "protected"
	case Private:
		return "private"
	}
	return "public"
}

// Field is a named object property.
type Field struct {
	Value Value
	Name  string
	// Declaring is the declaring class of a private field when the wire form
	// carried one. Empty means the short marker form.
	Declaring  string
	Visibility Visibility
}

// fieldKey identifies a property on the wire. A public, a protected and a
// private field may share a name, as do private fields of different
// declaring classes.
type fieldKey struct {
	name       string
	declaring  string
	visibility Visibility
}

func (f Field) key() fieldKey {
	return fieldKey{name: f.Name, declaring: f.Declaring, visibility: f.Visibility}
}

// Object is a class instance with ordered fields.
// An Incomplete object stands in for a class that could not be resolved.
type Object struct {
	index      map[fieldKey]int
	Class      string
	fields     []Field
	Incomplete bool
}

func NewObject(class string) *Object {
	return &Object{
		Class: class,
		index: make(map[fieldKey]int),
	}
}

// NewIncomplete creates the placeholder for an unresolved class.
func NewIncomplete(class string) *Object {
	o := NewObject(class)
	o.Incomplete = true
	return o
}

func (*Object) Kind() Kind { return KindObject }

func (o *Object) Len() int {
	return len(o.fields)
}

// InitField sets a field, replacing any existing field with the same name
// and visibility.
func (o *Object) InitField(name string, v Value, vis Visibility) {
	o.setField(Field{Name: name, Value: v, Visibility: vis})
}

// InitPrivateField sets a private field declared by class.
func (o *Object) InitPrivateField(class, name string, v Value) {
	o.setField(Field{Name: name, Value: v, Visibility: Private, Declaring: class})
}

func (o *Object) setField(f Field) {
	if f.Value == nil {
		f.Value = NullValue
	}
	if o.index == nil {
		o.index = make(map[fieldKey]int)
	}
	k := f.key()
	if i, ok := o.index[k]; ok {
		o.fields[i] = f
		return
	}
	o.index[k] = len(o.fields)
	o.fields = append(o.fields, f)
}

// Field returns the named field. When several fields share the name the
// public one wins, then the protected one, then the first private one.
func (o *Object) Field(name string) (Field, bool) {
	for _, vis := range []Visibility{Public, Protected} {
		if i, ok := o.index[fieldKey{name: name, visibility: vis}]; ok {
			return o.fields[i], true
		}
	}
	for _, f := range o.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// PrivateField returns the private field name declared by class. An empty
// class selects the field written without a declaring class.
func (o *Object) PrivateField(class, name string) (Field, bool) {
	i, ok := o.index[fieldKey{name: name, declaring: class, visibility: Private}]
	if !ok {
		return Field{}, false
	}
	return o.fields[i], true
}

// Fields returns the fields in declaration order. The slice is shared.
func (o *Object) Fields() []Field {
	return o.fields
}

package transcoder

import (
	"strconv"

	"go.uber.org/zap"

	phpserial "github.com/wippyai/php-serial"
	"github.com/wippyai/php-serial/errors"
	"github.com/wippyai/php-serial/value"
)

// Interner deduplicates key strings across decodes.
type Interner interface {
	Intern(b []byte) string
}

// Decoder turns wire text into a value graph. A Decoder holds configuration
// only and is safe for concurrent use.
type Decoder struct {
	registry phpserial.ClassRegistry
	diag     phpserial.Diagnostics
	interner Interner
	maxDepth int
}

type DecoderOption func(*Decoder)

// WithRegistry sets the class registry. Without one every class name is
// accepted as a plain object.
func WithRegistry(r phpserial.ClassRegistry) DecoderOption {
	return func(d *Decoder) {
		d.registry = r
	}
}

func WithDiagnostics(diag phpserial.Diagnostics) DecoderOption {
	return func(d *Decoder) {
		d.diag = diag
	}
}

func WithInterner(in Interner) DecoderOption {
	return func(d *Decoder) {
		d.interner = in
	}
}

func WithMaxDepth(n int) DecoderOption {
	return func(d *Decoder) {
		if n > 0 {
			d.maxDepth = n
		}
	}
}

func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Result carries the decoded root together with what the decode observed.
type Result struct {
	Value value.Value
	// Notices is the number of soft failures reported during the decode.
	Notices int
	// UsesReferences is set when the input contained R or r tokens.
	UsesReferences bool
}

// Decode parses data and returns the root value.
func (d *Decoder) Decode(data []byte) (value.Value, error) {
	res, err := d.DecodeResult(data)
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}

// DecodeResult parses data in two passes: a reference scan that flags
// aliased slots, then materialization. Hard failures return no value.
func (d *Decoder) DecodeResult(data []byte) (Result, error) {
	if len(data) == 0 {
		return Result{}, errors.UnexpectedEOF(errors.PhaseDecode, data, "value")
	}

	st := &decodeState{
		reader: reader{data: data, phase: errors.PhaseDecode},
		dec:    d,
	}
	if mayReference(data) {
		rs, err := scan(data, d.maxDepth)
		if err != nil {
			return Result{}, err
		}
		st.flags = &rs.Flags
		st.track = true
		st.uses = rs.UsesReferences
		st.table = make([]value.Value, 0, rs.Flags.Len())
	}

	root, err := st.value()
	if err != nil {
		return Result{}, err
	}
	if st.pos < len(data) {
		st.notice(errors.New(errors.PhaseDecode, errors.KindTrailingData).
			At(data, st.pos).
			Soft().
			Detail("%d bytes after root value", len(data)-st.pos).
			Build())
	}

	return Result{
		Value:          value.Deref(root),
		Notices:        st.notices,
		UsesReferences: st.uses,
	}, nil
}

// decodeState is the per-call state of one decode.
type decodeState struct {
	dec   *Decoder
	flags *RefFlags
	// table holds one entry per slot: the raw value, or its *value.Ref when
	// the slot is flagged.
	table []value.Value
	reader
	depth   int
	notices int
	track   bool
	uses    bool
}

func (s *decodeState) notice(e *errors.Error) {
	s.notices++
	Logger().Debug("soft decode failure",
		zap.String("kind", string(e.Kind)),
		zap.Int("offset", e.Offset),
		zap.String("detail", e.Detail))
	if s.dec.diag != nil {
		s.dec.diag.Notice(e)
	}
}

// bind assigns the next slot to v. Flagged slots are wrapped in a shared cell
// and the cell is what the caller must store.
func (s *decodeState) bind(v value.Value) value.Value {
	if !s.track {
		return v
	}
	if s.flags.Test(len(s.table)) {
		ref := value.NewRef(v)
		s.table = append(s.table, ref)
		return ref
	}
	s.table = append(s.table, v)
	return v
}

func (s *decodeState) keyString(b []byte) string {
	if s.dec.interner != nil {
		return s.dec.interner.Intern(b)
	}
	return string(b)
}

func (s *decodeState) value() (value.Value, error) {
	at := s.pos
	tag, err := s.next()
	if err != nil {
		return nil, err
	}

	switch tag {
	case 'N':
		if err := s.expect(';'); err != nil {
			return nil, err
		}
		return s.bind(value.NullValue), nil

	case 'b':
		if err := s.expect(':'); err != nil {
			return nil, err
		}
		b, err := s.readBool()
		if err != nil {
			return nil, err
		}
		return s.bind(value.Bool(b)), nil

	case 'i':
		if err := s.expect(':'); err != nil {
			return nil, err
		}
		n, err := s.readInt(';')
		if err != nil {
			return nil, err
		}
		return s.bind(value.Int(n)), nil

	case 'd':
		if err := s.expect(':'); err != nil {
			return nil, err
		}
		f, err := s.readFloat()
		if err != nil {
			return nil, err
		}
		return s.bind(value.Float(f)), nil

	case 's', 'S', 'u', 'U':
		payload, soft, err := s.readString(tag)
		if err != nil {
			return nil, err
		}
		if soft != nil {
			s.notice(soft)
			return s.bind(value.False), nil
		}
		if tag == 'u' || tag == 'U' {
			return s.bind(value.UStr(payload)), nil
		}
		return s.bind(value.Str(payload)), nil

	case 'a':
		return s.array(at)

	case 'O':
		return s.object(at)

	case 'R':
		idx, err := s.readIndex(len(s.table))
		if err != nil {
			return nil, err
		}
		return s.table[idx-1], nil

	case 'r':
		idx, err := s.readIndex(len(s.table))
		if err != nil {
			return nil, err
		}
		return s.bind(value.Copy(s.table[idx-1])), nil
	}

	return nil, s.syntax(at, "unexpected type tag %q", tag)
}

func (s *decodeState) enter(at int) error {
	s.depth++
	if s.depth > s.dec.maxDepth {
		return errors.Depth(s.phase, at, s.dec.maxDepth)
	}
	return nil
}

func (s *decodeState) array(at int) (value.Value, error) {
	if err := s.expect(':'); err != nil {
		return nil, err
	}
	count, err := s.readLength(':')
	if err != nil {
		return nil, err
	}
	if err := s.expect('{'); err != nil {
		return nil, err
	}
	if err := s.enter(at); err != nil {
		return nil, err
	}

	arr := value.NewArray(s.capHint(count))
	v := s.bind(arr)

	for i := 0; i < count; i++ {
		k, soft, err := s.readKey()
		if err != nil {
			return nil, err
		}
		var key value.Key
		switch {
		case soft != nil:
			// A truncated string key reads as false, which coerces to 0.
			s.notice(soft)
			key = value.IntKey(0)
		case k.isStr:
			key = value.StrKey(s.keyString(k.payload))
		default:
			key = value.IntKey(k.n)
		}

		elem, err := s.value()
		if err != nil {
			return nil, err
		}
		arr.Put(key, elem)
	}

	if err := s.expect('}'); err != nil {
		return nil, err
	}
	s.depth--
	return v, nil
}

func (s *decodeState) object(at int) (value.Value, error) {
	class, soft, err := s.readClassName()
	if err != nil {
		return nil, err
	}
	if soft != nil {
		s.notice(soft)
		return s.bind(value.False), nil
	}
	count, err := s.readLength(':')
	if err != nil {
		return nil, err
	}
	if err := s.expect('{'); err != nil {
		return nil, err
	}
	if err := s.enter(at); err != nil {
		return nil, err
	}

	obj := s.instantiate(class, at)
	v := s.bind(obj)

	for i := 0; i < count; i++ {
		keyAt := s.pos
		k, soft, err := s.readKey()
		if err != nil {
			return nil, err
		}
		var raw string
		switch {
		case soft != nil:
			s.notice(soft)
		case k.isStr:
			raw = s.keyString(k.payload)
		default:
			raw = strconv.FormatInt(k.n, 10)
		}

		fn, err := SplitFieldName(raw)
		if err != nil {
			e := err.(*errors.Error)
			e.Offset = keyAt
			e.Context = errors.Window(s.data, keyAt)
			e.Path = []string{class}
			return nil, e
		}

		elem, err := s.value()
		if err != nil {
			return nil, err
		}
		if fn.Declaring != "" {
			obj.InitPrivateField(fn.Declaring, fn.Name, elem)
		} else {
			obj.InitField(fn.Name, elem, fn.Visibility)
		}
	}

	if err := s.expect('}'); err != nil {
		return nil, err
	}
	s.depth--
	return v, nil
}

// instantiate resolves class through the registry. Unknown classes become
// incomplete objects and are reported.
func (s *decodeState) instantiate(class string, at int) *value.Object {
	reg := s.dec.registry
	if reg == nil {
		return value.NewObject(class)
	}
	if ctor, ok := reg.Resolve(class); ok {
		if obj := ctor(class); obj != nil {
			return obj
		}
	}
	Logger().Debug("unknown class", zap.String("class", class), zap.Int("offset", at))
	s.notice(errors.New(errors.PhaseDecode, errors.KindUnknownClass).
		At(s.data, at).
		Value(class).
		Soft().
		Detail("class %q is not registered", class).
		Build())
	return value.NewIncomplete(class)
}

package transcoder

import (
	"fmt"
	"strconv"

	"github.com/wippyai/php-serial/errors"
	"github.com/wippyai/php-serial/value"
)

// Encoder writes value graphs as wire text. An Encoder holds configuration
// only and is safe for concurrent use.
type Encoder struct {
	maxDepth int
}

type EncoderOption func(*Encoder)

func WithEncodeMaxDepth(n int) EncoderOption {
	return func(e *Encoder) {
		if n > 0 {
			e.maxDepth = n
		}
	}
}

func NewEncoder(opts ...EncoderOption) *Encoder {
	e := &Encoder{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode serializes v. A *value.Ref seen twice is written as R:n; and an
// *value.Object seen twice as r:n;.
func (e *Encoder) Encode(v value.Value) ([]byte, error) {
	buf := getBuf()
	defer putBuf(buf)

	out, err := e.AppendEncode(*buf, v)
	if err != nil {
		return nil, err
	}
	*buf = out

	// Return a copy since we're returning the buffer to pool
	result := make([]byte, len(out))
	copy(result, out)
	return result, nil
}

// AppendEncode appends the encoding of v to dst.
func (e *Encoder) AppendEncode(dst []byte, v value.Value) ([]byte, error) {
	st := &encodeState{
		buf:      dst,
		maxDepth: e.maxDepth,
	}
	if err := st.value(v, nil); err != nil {
		return dst, err
	}
	return st.buf, nil
}

// encodeState is the per-call state of one encode.
type encodeState struct {
	refs     map[*value.Ref]int
	objects  map[*value.Object]int
	buf      []byte
	slot     int
	depth    int
	maxDepth int
}

func (s *encodeState) value(v value.Value, path []string) error {
	switch t := v.(type) {
	case nil:
		s.slot++
		s.buf = append(s.buf, "N;"...)
		return nil

	case *value.Ref:
		if n, ok := s.refs[t]; ok {
			s.writeIndex('R', n)
			return nil
		}
		if s.refs == nil {
			s.refs = make(map[*value.Ref]int)
		}
		s.refs[t] = s.slot + 1
		return s.value(t.Get(), path)

	case value.Null:
		s.slot++
		s.buf = append(s.buf, "N;"...)

	case value.Bool:
		s.slot++
		if t {
			s.buf = append(s.buf, "b:1;"...)
		} else {
			s.buf = append(s.buf, "b:0;"...)
		}

	case value.Int:
		s.slot++
		s.buf = append(s.buf, "i:"...)
		s.buf = strconv.AppendInt(s.buf, int64(t), 10)
		s.buf = append(s.buf, ';')

	case value.Float:
		s.slot++
		s.buf = append(s.buf, "d:"...)
		s.buf = appendFloat(s.buf, float64(t))
		s.buf = append(s.buf, ';')

	case value.Str:
		s.slot++
		s.writeString('s', len(t), string(t))

	case value.UStr:
		s.slot++
		s.writeString('U', t.Runes(), string(t))

	case *value.Array:
		return s.array(t, path)

	case *value.Object:
		if n, ok := s.objects[t]; ok {
			s.slot++
			s.writeIndex('r', n)
			return nil
		}
		return s.object(t, path)

	default:
		e := errors.Unsupported(errors.PhaseEncode, fmt.Sprintf("cannot encode value of type %T", v))
		e.Path = path
		e.Value = v
		return e
	}
	return nil
}

func (s *encodeState) enter(path []string) error {
	s.depth++
	if s.depth > s.maxDepth {
		e := errors.Depth(errors.PhaseEncode, errors.NoOffset, s.maxDepth)
		e.Path = path
		return e
	}
	return nil
}

func (s *encodeState) array(a *value.Array, path []string) error {
	if err := s.enter(path); err != nil {
		return err
	}
	s.slot++
	s.buf = append(s.buf, "a:"...)
	s.buf = strconv.AppendInt(s.buf, int64(a.Len()), 10)
	s.buf = append(s.buf, ":{"...)

	var err error
	a.Each(func(k value.Key, v value.Value) bool {
		if k.IsString() {
			s.writeString('s', len(k.Str()), k.Str())
		} else {
			s.buf = append(s.buf, "i:"...)
			s.buf = strconv.AppendInt(s.buf, k.Int(), 10)
			s.buf = append(s.buf, ';')
		}
		err = s.value(v, append(path, k.String()))
		return err == nil
	})
	if err != nil {
		return err
	}

	s.buf = append(s.buf, '}')
	s.depth--
	return nil
}

func (s *encodeState) object(o *value.Object, path []string) error {
	if err := s.enter(path); err != nil {
		return err
	}
	s.slot++
	if s.objects == nil {
		s.objects = make(map[*value.Object]int)
	}
	s.objects[o] = s.slot

	s.buf = append(s.buf, "O:"...)
	s.buf = strconv.AppendInt(s.buf, int64(len(o.Class)), 10)
	s.buf = append(s.buf, ":\""...)
	s.buf = append(s.buf, o.Class...)
	s.buf = append(s.buf, "\":"...)
	s.buf = strconv.AppendInt(s.buf, int64(o.Len()), 10)
	s.buf = append(s.buf, ":{"...)

	for _, f := range o.Fields() {
		name := JoinFieldName(f)
		s.writeString('s', len(name), name)
		if err := s.value(f.Value, append(path, f.Name)); err != nil {
			return err
		}
	}

	s.buf = append(s.buf, '}')
	s.depth--
	return nil
}

func (s *encodeState) writeString(tag byte, n int, payload string) {
	s.buf = append(s.buf, tag, ':')
	s.buf = strconv.AppendInt(s.buf, int64(n), 10)
	s.buf = append(s.buf, ':', '"')
	s.buf = append(s.buf, payload...)
	s.buf = append(s.buf, '"', ';')
}

func (s *encodeState) writeIndex(tag byte, n int) {
	s.buf = append(s.buf, tag, ':')
	s.buf = strconv.AppendInt(s.buf, int64(n), 10)
	s.buf = append(s.buf, ';')
}

// EncodeString is Encode returning a string.
func (e *Encoder) EncodeString(v value.Value) (string, error) {
	buf := getBuf()
	defer putBuf(buf)

	out, err := e.AppendEncode(*buf, v)
	if err != nil {
		return "", err
	}
	*buf = out
	return string(out), nil
}

package transcoder

import (
	"bytes"
	"strconv"
	"unicode/utf8"

	"github.com/wippyai/php-serial/errors"
)

// reader holds the lexical layer shared by the reference scan and the decoder.
type reader struct {
	data  []byte
	pos   int
	phase errors.Phase
}

// keyToken is a decoded array key or field name before conversion.
type keyToken struct {
	payload []byte
	n       int64
	isStr   bool
}

func (r *reader) eof(expected string) *errors.Error {
	return errors.UnexpectedEOF(r.phase, r.data, expected)
}

func (r *reader) syntax(offset int, detail string, args ...any) *errors.Error {
	return errors.Syntax(r.phase, r.data, offset, detail, args...)
}

func (r *reader) next() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, r.eof("type tag")
	}
	c := r.data[r.pos]
	r.pos++
	return c, nil
}

func (r *reader) expect(c byte) error {
	if r.pos >= len(r.data) {
		return r.eof(strconv.QuoteRune(rune(c)))
	}
	if r.data[r.pos] != c {
		return r.syntax(r.pos, "expected %q, got %q", c, r.data[r.pos])
	}
	r.pos++
	return nil
}

// readInt reads an optionally signed decimal integer followed by term.
func (r *reader) readInt(term byte) (int64, error) {
	start := r.pos
	i := r.pos
	if i < len(r.data) && (r.data[i] == '-' || r.data[i] == '+') {
		i++
	}
	digits := i
	for i < len(r.data) && r.data[i] >= '0' && r.data[i] <= '9' {
		i++
	}
	if i == digits {
		if i >= len(r.data) {
			return 0, r.eof("digits")
		}
		return 0, r.syntax(i, "expected digits, got %q", r.data[i])
	}
	text := r.data[start:i]
	n, err := strconv.ParseInt(string(text), 10, 64)
	if err != nil {
		return 0, errors.Overflow(r.phase, r.data, start, string(text))
	}
	r.pos = i
	if err := r.expect(term); err != nil {
		return 0, err
	}
	return n, nil
}

// readLength reads a non-negative length prefix followed by term.
func (r *reader) readLength(term byte) (int, error) {
	start := r.pos
	n, err := r.readInt(term)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, r.syntax(start, "negative length %d", n)
	}
	if n > int64(maxInt) {
		return 0, errors.Overflow(r.phase, r.data, start, strconv.FormatInt(n, 10))
	}
	return int(n), nil
}

const maxInt = int(^uint(0) >> 1)

func (r *reader) readFloat() (float64, error) {
	start := r.pos
	end := bytes.IndexByte(r.data[r.pos:], ';')
	if end < 0 {
		return 0, r.eof("';'")
	}
	text := r.data[start : start+end]
	f, ok := parseFloat(text)
	if !ok {
		return 0, r.syntax(start, "invalid float %q", text)
	}
	r.pos = start + end + 1
	return f, nil
}

// readBool reads the payload of a b: token. Only 0 and 1 are accepted.
func (r *reader) readBool() (bool, error) {
	start := r.pos
	n, err := r.readInt(';')
	if err != nil {
		return false, err
	}
	if n != 0 && n != 1 {
		return false, r.syntax(start, "invalid bool %d", n)
	}
	return n == 1, nil
}

// readString reads `:<len>:"<payload>";` after a string tag. Lengths count
// bytes for s/S and code points for u/U. A declared length that runs past
// the end of input yields a soft error and resyncs after the next `";`.
func (r *reader) readString(tag byte) ([]byte, *errors.Error, error) {
	if err := r.expect(':'); err != nil {
		return nil, nil, err
	}
	n, err := r.readLength(':')
	if err != nil {
		return nil, nil, err
	}
	if err := r.expect('"'); err != nil {
		return nil, nil, err
	}
	start := r.pos

	end, ok := r.payloadEnd(tag, start, n)
	if !ok {
		soft := errors.New(r.phase, errors.KindTruncated).
			At(r.data, start).
			Value(n).
			Soft().
			Detail("declared length %d exceeds remaining input", n).
			Build()
		if i := bytes.Index(r.data[start:], []byte(`";`)); i >= 0 {
			r.pos = start + i + 2
		} else {
			r.pos = len(r.data)
		}
		return nil, soft, nil
	}

	r.pos = end
	if r.pos >= len(r.data) || r.data[r.pos] != '"' {
		return nil, nil, errors.New(r.phase, errors.KindLength).
			At(r.data, r.pos).
			Value(n).
			Detail("declared length %d does not match payload", n).
			Build()
	}
	r.pos++
	if err := r.expect(';'); err != nil {
		return nil, nil, err
	}
	return r.data[start:end], nil, nil
}

// payloadEnd returns the offset just past n storage units starting at start.
func (r *reader) payloadEnd(tag byte, start, n int) (int, bool) {
	if tag == 'u' || tag == 'U' {
		i := start
		for k := 0; k < n; k++ {
			if i >= len(r.data) {
				return 0, false
			}
			_, size := utf8.DecodeRune(r.data[i:])
			i += size
		}
		return i, true
	}
	if n > len(r.data)-start {
		return 0, false
	}
	return start + n, true
}

// readClassName reads `:<len>:"<name>":` after an O tag. A truncated name
// yields a soft error and consumes the rest of the input.
func (r *reader) readClassName() (string, *errors.Error, error) {
	if err := r.expect(':'); err != nil {
		return "", nil, err
	}
	n, err := r.readLength(':')
	if err != nil {
		return "", nil, err
	}
	if err := r.expect('"'); err != nil {
		return "", nil, err
	}
	start := r.pos
	if n > len(r.data)-start {
		soft := errors.New(r.phase, errors.KindTruncated).
			At(r.data, start).
			Value(n).
			Soft().
			Detail("class name length %d exceeds remaining input", n).
			Build()
		r.pos = len(r.data)
		return "", soft, nil
	}
	r.pos = start + n
	if r.pos >= len(r.data) || r.data[r.pos] != '"' {
		return "", nil, errors.New(r.phase, errors.KindLength).
			At(r.data, r.pos).
			Value(n).
			Detail("declared class name length %d does not match payload", n).
			Build()
	}
	r.pos++
	if err := r.expect(':'); err != nil {
		return "", nil, err
	}
	return string(r.data[start : start+n]), nil, nil
}

// readKey reads an array key or object field name. Only int and string
// tags are valid here.
func (r *reader) readKey() (keyToken, *errors.Error, error) {
	at := r.pos
	tag, err := r.next()
	if err != nil {
		return keyToken{}, nil, r.eof("key")
	}
	switch tag {
	case 'i':
		if err := r.expect(':'); err != nil {
			return keyToken{}, nil, err
		}
		n, err := r.readInt(';')
		if err != nil {
			return keyToken{}, nil, err
		}
		return keyToken{n: n}, nil, nil
	case 's', 'S', 'u', 'U':
		payload, soft, err := r.readString(tag)
		if err != nil || soft != nil {
			return keyToken{}, soft, err
		}
		return keyToken{payload: payload, isStr: true}, nil, nil
	case '}':
		return keyToken{}, nil, r.syntax(at, "container closed before declared entry count")
	}
	return keyToken{}, nil, errors.New(r.phase, errors.KindBadKey).
		At(r.data, at).
		Value(string(tag)).
		Detail("unsupported key tag %q", tag).
		Build()
}

// readIndex reads the slot index of an R or r token and checks it against
// the number of slots assigned so far.
func (r *reader) readIndex(slots int) (int, error) {
	if err := r.expect(':'); err != nil {
		return 0, err
	}
	start := r.pos
	n, err := r.readInt(';')
	if err != nil {
		return 0, err
	}
	if n < 1 || n > int64(slots) {
		return 0, errors.BadReference(r.phase, r.data, start, n, slots)
	}
	return int(n), nil
}

// capHint bounds a declared entry count by what the remaining input can hold.
func (r *reader) capHint(count int) int {
	remaining := (len(r.data) - r.pos) / 4
	if count > remaining {
		return remaining
	}
	return count
}

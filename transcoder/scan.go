package transcoder

import (
	"bytes"
	"math/bits"

	"github.com/wippyai/php-serial/errors"
)

// DefaultMaxDepth bounds array and object nesting on encode and decode.
const DefaultMaxDepth = 512

// RefFlags is a bit set indexed by slot ordinal. A set bit marks a slot
// that a later R token aliases.
type RefFlags struct {
	words []uint64
	n     int
}

// Append adds a cleared flag for the next slot and returns its index.
func (f *RefFlags) Append() int {
	if f.n%64 == 0 {
		f.words = append(f.words, 0)
	}
	f.n++
	return f.n - 1
}

func (f *RefFlags) Set(i int) {
	if i < 0 || i >= f.n {
		return
	}
	f.words[i/64] |= 1 << (uint(i) % 64)
}

func (f *RefFlags) Test(i int) bool {
	if i < 0 || i >= f.n {
		return false
	}
	return f.words[i/64]&(1<<(uint(i)%64)) != 0
}

// Len returns the number of slots.
func (f *RefFlags) Len() int {
	return f.n
}

// Count returns the number of flagged slots.
func (f *RefFlags) Count() int {
	c := 0
	for _, w := range f.words {
		c += bits.OnesCount64(w)
	}
	return c
}

func (f *RefFlags) Equal(o *RefFlags) bool {
	if f.n != o.n {
		return false
	}
	for i := range f.words {
		if f.words[i] != o.words[i] {
			return false
		}
	}
	return true
}

// RefScan is the result of the reference pre-scan.
type RefScan struct {
	Flags RefFlags
	// UsesReferences is set when the input contains any R or r token.
	UsesReferences bool
}

// Slots returns the number of slots the input assigns.
func (s *RefScan) Slots() int {
	return s.Flags.Len()
}

// Scan walks data once without materializing values and records which
// slots are targets of R tokens.
func Scan(data []byte) (*RefScan, error) {
	return scan(data, DefaultMaxDepth)
}

// mayReference reports whether data could contain a back-reference token.
// Inputs without one skip the scan entirely.
func mayReference(data []byte) bool {
	return bytes.Contains(data, []byte("R:")) || bytes.Contains(data, []byte("r:"))
}

func scan(data []byte, maxDepth int) (*RefScan, error) {
	if len(data) == 0 {
		return nil, errors.UnexpectedEOF(errors.PhaseScan, data, "value")
	}
	s := &scanner{
		reader:   reader{data: data, phase: errors.PhaseScan},
		maxDepth: maxDepth,
		result:   &RefScan{},
	}
	if err := s.value(); err != nil {
		return nil, err
	}
	return s.result, nil
}

type scanner struct {
	result *RefScan
	reader
	depth    int
	maxDepth int
}

func (s *scanner) slot() {
	s.result.Flags.Append()
}

func (s *scanner) value() error {
	at := s.pos
	tag, err := s.next()
	if err != nil {
		return err
	}

	switch tag {
	case 'N':
		if err := s.expect(';'); err != nil {
			return err
		}
		s.slot()
		return nil

	case 'b':
		if err := s.expect(':'); err != nil {
			return err
		}
		if _, err := s.readBool(); err != nil {
			return err
		}
		s.slot()
		return nil

	case 'i':
		if err := s.expect(':'); err != nil {
			return err
		}
		if _, err := s.readInt(';'); err != nil {
			return err
		}
		s.slot()
		return nil

	case 'd':
		if err := s.expect(':'); err != nil {
			return err
		}
		if _, err := s.readFloat(); err != nil {
			return err
		}
		s.slot()
		return nil

	case 's', 'S', 'u', 'U':
		if _, _, err := s.readString(tag); err != nil {
			return err
		}
		s.slot()
		return nil

	case 'a':
		if err := s.expect(':'); err != nil {
			return err
		}
		count, err := s.readLength(':')
		if err != nil {
			return err
		}
		if err := s.expect('{'); err != nil {
			return err
		}
		s.slot()
		return s.entries(at, count)

	case 'O':
		_, soft, err := s.readClassName()
		if err != nil {
			return err
		}
		s.slot()
		if soft != nil {
			return nil
		}
		count, err := s.readLength(':')
		if err != nil {
			return err
		}
		if err := s.expect('{'); err != nil {
			return err
		}
		return s.entries(at, count)

	case 'R':
		idx, err := s.readIndex(s.result.Flags.Len())
		if err != nil {
			return err
		}
		s.result.Flags.Set(idx - 1)
		s.result.UsesReferences = true
		return nil

	case 'r':
		if _, err := s.readIndex(s.result.Flags.Len()); err != nil {
			return err
		}
		s.result.UsesReferences = true
		s.slot()
		return nil
	}

	return s.syntax(at, "unexpected type tag %q", tag)
}

func (s *scanner) entries(at, count int) error {
	s.depth++
	if s.depth > s.maxDepth {
		return errors.Depth(s.phase, at, s.maxDepth)
	}
	for i := 0; i < count; i++ {
		if _, _, err := s.readKey(); err != nil {
			return err
		}
		if err := s.value(); err != nil {
			return err
		}
	}
	if err := s.expect('}'); err != nil {
		return err
	}
	s.depth--
	return nil
}

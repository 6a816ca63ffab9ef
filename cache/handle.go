package cache

import (
	"errors"
	"sync"
)

var (
	ErrClosed   = errors.New("text store closed")
	ErrTooLarge = errors.New("text exceeds store budget")
)

// Handle refers to a text retained by a TextStore. The zero Handle is never
// valid.
type Handle uint64

func makeHandle(slot, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(slot))
}

func (h Handle) slot() uint32 {
	return uint32(h)
}

func (h Handle) generation() uint32 {
	return uint32(h >> 32)
}

// TextStore retains copies of input texts under a byte budget. When the
// budget is exceeded the oldest texts are reclaimed and their handles stop
// resolving.
type TextStore struct {
	onReclaim func(Handle)
	entries   []textEntry
	freeList  []uint32
	// order lists live handles oldest first; entries released out of order
	// are skipped when reclaiming.
	order   []Handle
	budget  int
	used    int
	mu      sync.Mutex
	closed  bool
	reclaim uint64
}

type textEntry struct {
	text  []byte
	gen   uint32
	valid bool
}

// NewTextStore creates a store that retains at most budget bytes.
func NewTextStore(budget int) *TextStore {
	return &TextStore{
		budget:   budget,
		entries:  make([]textEntry, 0, 64),
		freeList: make([]uint32, 0, 16),
	}
}

// OnReclaim registers fn to be called, without the store lock held, for
// each handle reclaimed under budget pressure.
func (s *TextStore) OnReclaim(fn func(Handle)) {
	s.mu.Lock()
	s.onReclaim = fn
	s.mu.Unlock()
}

// Put stores a copy of text and returns its handle.
func (s *TextStore) Put(text []byte) (Handle, error) {
	if len(text) > s.budget {
		return 0, ErrTooLarge
	}

	cp := make([]byte, len(text))
	copy(cp, text)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, ErrClosed
	}

	var slot uint32
	if len(s.freeList) > 0 {
		slot = s.freeList[len(s.freeList)-1]
		s.freeList = s.freeList[:len(s.freeList)-1]
	} else {
		s.entries = append(s.entries, textEntry{})
		slot = uint32(len(s.entries))
	}

	e := &s.entries[slot-1]
	e.gen++
	if e.gen == 0 {
		e.gen = 1
	}
	e.text = cp
	e.valid = true
	s.used += len(cp)

	h := makeHandle(slot, e.gen)
	s.order = append(s.order, h)
	reclaimed := s.shrinkLocked()
	fn := s.onReclaim
	s.mu.Unlock()

	if fn != nil {
		for _, r := range reclaimed {
			fn(r)
		}
	}
	return h, nil
}

// shrinkLocked reclaims the oldest texts until the store fits its budget.
func (s *TextStore) shrinkLocked() []Handle {
	var reclaimed []Handle
	i := 0
	for s.used > s.budget && i < len(s.order) {
		h := s.order[i]
		i++
		if s.releaseLocked(h) {
			reclaimed = append(reclaimed, h)
			s.reclaim++
		}
	}
	s.order = s.order[i:]
	s.compactLocked()
	return reclaimed
}

// compactLocked drops released handles from the order queue once stale
// entries dominate it.
func (s *TextStore) compactLocked() {
	live := len(s.entries) - len(s.freeList)
	if len(s.order) <= 2*live+16 {
		return
	}
	kept := make([]Handle, 0, live)
	for _, h := range s.order {
		if s.validLocked(h) {
			kept = append(kept, h)
		}
	}
	s.order = kept
}

func (s *TextStore) validLocked(h Handle) bool {
	idx := h.slot()
	if idx == 0 || int(idx) > len(s.entries) {
		return false
	}
	e := s.entries[idx-1]
	return e.valid && e.gen == h.generation()
}

// Resolve returns the text for h. The returned slice must not be modified.
func (s *TextStore) Resolve(h Handle) ([]byte, bool) {
	if h == 0 {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.validLocked(h) {
		return nil, false
	}
	return s.entries[h.slot()-1].text, true
}

// Release frees the text behind h. Stale handles are ignored.
func (s *TextStore) Release(h Handle) bool {
	if h == 0 {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.releaseLocked(h)
}

func (s *TextStore) releaseLocked(h Handle) bool {
	if !s.validLocked(h) {
		return false
	}
	e := &s.entries[h.slot()-1]
	s.used -= len(e.text)
	e.text = nil
	e.valid = false
	s.freeList = append(s.freeList, h.slot())
	return true
}

// Len returns the number of retained texts.
func (s *TextStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries) - len(s.freeList)
}

// Bytes returns the number of retained bytes.
func (s *TextStore) Bytes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.used
}

// Reclaimed returns how many texts were dropped under budget pressure.
func (s *TextStore) Reclaimed() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reclaim
}

// Close releases all texts. Later Puts fail with ErrClosed.
func (s *TextStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	s.entries = nil
	s.freeList = nil
	s.order = nil
	s.used = 0
	return nil
}

package cache

import (
	"bytes"
	"hash/maphash"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/huandu/go-clone"
	"go.uber.org/zap"

	"github.com/wippyai/php-serial/errors"
	"github.com/wippyai/php-serial/value"
)

const (
	DefaultCapacity      = 256
	DefaultTextBudget    = 16 << 20
	DefaultMaxEntryBytes = 1 << 20
)

// Stats is a snapshot of DecodeCache counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Reclaimed uint64
	Entries   int
	TextBytes int
}

type entry struct {
	root   value.Value
	handle Handle
}

// DecodeCache maps input texts to previously decoded root values. Lookups
// hash the text, then confirm the match against the retained copy behind the
// entry's handle. Values go in and come out as deep clones, so callers may
// mutate what they get.
type DecodeCache struct {
	lru           *lru.Cache[uint64, *entry]
	texts         *TextStore
	seed          maphash.Seed
	maxEntryBytes int
	// writeMu orders the replace and stale-drop paths so a replaced handle is
	// always released.
	writeMu       sync.Mutex
	hits          atomic.Uint64
	misses        atomic.Uint64
	evictions     atomic.Uint64
}

type config struct {
	capacity      int
	textBudget    int
	maxEntryBytes int
}

type Option func(*config)

// WithCapacity sets the maximum number of cached entries.
func WithCapacity(n int) Option {
	return func(c *config) {
		c.capacity = n
	}
}

// WithTextBudget sets the byte budget for retained input texts.
func WithTextBudget(n int) Option {
	return func(c *config) {
		c.textBudget = n
	}
}

// WithMaxEntryBytes sets the largest input that is cached.
func WithMaxEntryBytes(n int) Option {
	return func(c *config) {
		c.maxEntryBytes = n
	}
}

func NewDecodeCache(opts ...Option) (*DecodeCache, error) {
	cfg := config{
		capacity:      DefaultCapacity,
		textBudget:    DefaultTextBudget,
		maxEntryBytes: DefaultMaxEntryBytes,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.capacity <= 0 {
		return nil, errors.InvalidInput(errors.PhaseCache, "capacity must be positive")
	}
	if cfg.textBudget <= 0 {
		return nil, errors.InvalidInput(errors.PhaseCache, "text budget must be positive")
	}
	if cfg.maxEntryBytes > cfg.textBudget {
		cfg.maxEntryBytes = cfg.textBudget
	}

	c := &DecodeCache{
		texts:         NewTextStore(cfg.textBudget),
		seed:          maphash.MakeSeed(),
		maxEntryBytes: cfg.maxEntryBytes,
	}
	c.texts.OnReclaim(func(h Handle) {
		Logger().Debug("text reclaimed", zap.Uint64("handle", uint64(h)))
	})

	l, err := lru.NewWithEvict[uint64, *entry](cfg.capacity, func(_ uint64, e *entry) {
		c.texts.Release(e.handle)
		c.evictions.Add(1)
	})
	if err != nil {
		return nil, errors.Wrap(errors.PhaseCache, errors.KindInvalidInput, err, "create lru")
	}
	c.lru = l
	return c, nil
}

func (c *DecodeCache) key(text []byte) uint64 {
	return maphash.Bytes(c.seed, text)
}

// Get returns a clone of the value cached for text.
func (c *DecodeCache) Get(text []byte) (value.Value, bool) {
	if len(text) > c.maxEntryBytes {
		c.misses.Add(1)
		return nil, false
	}
	k := c.key(text)
	e, ok := c.lru.Get(k)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}

	stored, ok := c.texts.Resolve(e.handle)
	if !ok {
		// Text was reclaimed under budget pressure.
		c.dropStale(k, e)
		c.misses.Add(1)
		return nil, false
	}
	if !bytes.Equal(stored, text) {
		Logger().Debug("decode cache hash collision", zap.Uint64("key", k))
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	return cloneValue(e.root), true
}

// Put caches a clone of v for text. Inputs over the entry size limit are
// ignored.
func (c *DecodeCache) Put(text []byte, v value.Value) {
	if v == nil || len(text) > c.maxEntryBytes {
		return
	}
	h, err := c.texts.Put(text)
	if err != nil {
		Logger().Debug("text not retained", zap.Error(err), zap.Int("size", len(text)))
		return
	}

	e := &entry{root: cloneValue(v), handle: h}
	k := c.key(text)

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if old, ok := c.lru.Peek(k); ok {
		c.texts.Release(old.handle)
	}
	c.lru.Add(k, e)
}

// dropStale removes k only if it still maps to e.
func (c *DecodeCache) dropStale(k uint64, e *entry) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if cur, ok := c.lru.Peek(k); ok && cur == e {
		c.lru.Remove(k)
	}
}

func cloneValue(v value.Value) value.Value {
	return clone.Slowly(v).(value.Value)
}

func (c *DecodeCache) Len() int {
	return c.lru.Len()
}

// Purge drops every entry.
func (c *DecodeCache) Purge() {
	c.lru.Purge()
}

func (c *DecodeCache) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Reclaimed: c.texts.Reclaimed(),
		Entries:   c.lru.Len(),
		TextBytes: c.texts.Bytes(),
	}
}

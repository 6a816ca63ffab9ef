package codec

import (
	"go.uber.org/zap"

	phpserial "github.com/wippyai/php-serial"
	"github.com/wippyai/php-serial/cache"
	"github.com/wippyai/php-serial/errors"
	"github.com/wippyai/php-serial/transcoder"
	"github.com/wippyai/php-serial/value"
)

// DefaultMaxInputBytes bounds the size of a single input to Unserialize.
const DefaultMaxInputBytes = 64 << 20

// Codec pairs an encoder with a cached decoder. A Codec is safe for
// concurrent use.
type Codec struct {
	enc      *transcoder.Encoder
	dec      *transcoder.Decoder
	cache    *cache.DecodeCache
	log      *zap.Logger
	maxInput int
}

type config struct {
	registry phpserial.ClassRegistry
	diag     phpserial.Diagnostics
	cache    *cache.DecodeCache
	interner transcoder.Interner
	log      *zap.Logger
	maxDepth int
	maxInput int
	noCache  bool
	noIntern bool
}

type Option func(*config)

// WithRegistry sets the registry used to resolve class names.
func WithRegistry(r phpserial.ClassRegistry) Option {
	return func(c *config) {
		c.registry = r
	}
}

// WithDiagnostics sets the sink for soft failures. Notices are discarded
// by default.
func WithDiagnostics(d phpserial.Diagnostics) Option {
	return func(c *config) {
		c.diag = d
	}
}

// WithCache shares c between codecs. A nil cache disables caching.
func WithCache(c *cache.DecodeCache) Option {
	return func(cfg *config) {
		cfg.cache = c
		cfg.noCache = c == nil
	}
}

func WithoutCache() Option {
	return func(c *config) {
		c.cache = nil
		c.noCache = true
	}
}

// WithInterner sets the key interner. A nil interner disables interning.
func WithInterner(in transcoder.Interner) Option {
	return func(c *config) {
		c.interner = in
		c.noIntern = in == nil
	}
}

func WithMaxDepth(n int) Option {
	return func(c *config) {
		c.maxDepth = n
	}
}

// WithMaxInputBytes bounds the input size accepted by Unserialize.
func WithMaxInputBytes(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxInput = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		c.log = l
	}
}

// New builds a codec. Unless configured otherwise it gets its own decode
// cache and key interner with default sizes.
func New(opts ...Option) *Codec {
	cfg := config{
		maxDepth: transcoder.DefaultMaxDepth,
		maxInput: DefaultMaxInputBytes,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.log == nil {
		cfg.log = Logger()
	}
	if cfg.diag == nil {
		cfg.diag = phpserial.Discard
	}
	if cfg.cache == nil && !cfg.noCache {
		// Default options are always valid.
		cfg.cache, _ = cache.NewDecodeCache()
	}
	if cfg.interner == nil && !cfg.noIntern {
		cfg.interner = cache.NewKeyInterner()
	}

	decOpts := []transcoder.DecoderOption{
		transcoder.WithRegistry(cfg.registry),
		transcoder.WithDiagnostics(cfg.diag),
		transcoder.WithMaxDepth(cfg.maxDepth),
	}
	if cfg.interner != nil {
		decOpts = append(decOpts, transcoder.WithInterner(cfg.interner))
	}

	return &Codec{
		enc:      transcoder.NewEncoder(transcoder.WithEncodeMaxDepth(cfg.maxDepth)),
		dec:      transcoder.NewDecoder(decOpts...),
		cache:    cfg.cache,
		log:      cfg.log,
		maxInput: cfg.maxInput,
	}
}

// Serialize encodes v.
func (c *Codec) Serialize(v value.Value) ([]byte, error) {
	out, err := c.enc.Encode(v)
	if err != nil {
		c.log.Debug("serialize failed", zap.Error(err))
		return nil, err
	}
	return out, nil
}

// Unserialize decodes data. Results that used no back-references and raised
// no notices are cached; a cache hit returns a fresh copy of the cached
// value.
func (c *Codec) Unserialize(data []byte) (value.Value, error) {
	if len(data) > c.maxInput {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidInput).
			Value(len(data)).
			Detail("input of %d bytes exceeds limit of %d", len(data), c.maxInput).
			Build()
	}

	if c.cache != nil {
		if v, ok := c.cache.Get(data); ok {
			return v, nil
		}
	}

	res, err := c.dec.DecodeResult(data)
	if err != nil {
		c.log.Debug("unserialize failed", zap.Error(err), zap.Int("size", len(data)))
		return nil, err
	}

	if c.cache != nil && !res.UsesReferences && res.Notices == 0 {
		c.cache.Put(data, res.Value)
	}
	return res.Value, nil
}

// UnserializeString is Unserialize for string input.
func (c *Codec) UnserializeString(s string) (value.Value, error) {
	return c.Unserialize([]byte(s))
}

// Cache returns the codec's decode cache, or nil when caching is off.
func (c *Codec) Cache() *cache.DecodeCache {
	return c.cache
}

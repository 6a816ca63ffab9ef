package codec

import (
	stderrors "errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	phpserial "github.com/wippyai/php-serial"
	"github.com/wippyai/php-serial/cache"
	"github.com/wippyai/php-serial/errors"
	"github.com/wippyai/php-serial/registry"
	"github.com/wippyai/php-serial/value"
)

func userRegistry(t *testing.T) *registry.Map {
	t.Helper()
	reg := registry.New()
	if err := reg.Register("User", nil); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return reg
}

func TestCodecRoundTrip(t *testing.T) {
	c := New(WithRegistry(userRegistry(t)))

	o := value.NewObject("User")
	o.InitField("name", value.Str("ann"), value.Public)
	o.InitField("role", value.Str("admin"), value.Protected)
	o.InitPrivateField("User", "id", value.Int(7))
	in := value.ArrayOf(o, value.Float(1.5), value.NullValue, value.True)

	data, err := c.Serialize(in)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	out, err := c.Unserialize(data)
	if err != nil {
		t.Fatalf("Unserialize(%q): %v", data, err)
	}
	if !value.Equal(in, out) {
		t.Errorf("round trip mismatch:\n%s\nvs\n%s", value.Dump(in), value.Dump(out))
	}
}

func TestCodecCachesPlainDecodes(t *testing.T) {
	c := New()
	data := []byte(`a:2:{s:1:"a";i:1;s:1:"b";a:1:{i:0;i:2;}}`)

	first, err := c.Unserialize(data)
	if err != nil {
		t.Fatalf("Unserialize: %v", err)
	}
	first.(*value.Array).Put(value.StrKey("a"), value.Int(100))

	second, err := c.Unserialize(data)
	if err != nil {
		t.Fatalf("Unserialize: %v", err)
	}
	if v, _ := second.(*value.Array).Lookup(value.StrKey("a")); v != value.Int(1) {
		t.Errorf("cached value changed through caller: a = %v", v)
	}

	st := c.Cache().Stats()
	if st.Hits != 1 || st.Entries != 1 {
		t.Errorf("Stats = %+v", st)
	}
}

func TestCodecSkipsCacheForReferences(t *testing.T) {
	c := New()
	data := []byte(`a:2:{i:0;i:1;i:1;R:2;}`)

	for i := 0; i < 2; i++ {
		v, err := c.Unserialize(data)
		if err != nil {
			t.Fatalf("Unserialize: %v", err)
		}
		arr := v.(*value.Array)
		ref, _ := arr.Get(value.IntKey(0))
		alias, _ := arr.Get(value.IntKey(1))
		if ref != alias {
			t.Fatal("elements should share one reference cell")
		}
	}
	if n := c.Cache().Len(); n != 0 {
		t.Errorf("decode with back-references cached: Len = %d", n)
	}
}

func TestCodecSkipsCacheOnNotices(t *testing.T) {
	rec := &phpserial.Recorder{}
	c := New(WithRegistry(userRegistry(t)), WithDiagnostics(rec))
	data := []byte(`O:5:"Ghost":0:{}`)

	for i := 0; i < 2; i++ {
		v, err := c.Unserialize(data)
		if err != nil {
			t.Fatalf("Unserialize: %v", err)
		}
		if o, ok := v.(*value.Object); !ok || !o.Incomplete {
			t.Fatalf("got %s, want incomplete object", value.Dump(v))
		}
	}
	if rec.Len() != 2 {
		t.Errorf("notices = %d, want one per decode", rec.Len())
	}
	if n := c.Cache().Len(); n != 0 {
		t.Errorf("decode with notices cached: Len = %d", n)
	}
}

func TestCodecMaxInputBytes(t *testing.T) {
	c := New(WithMaxInputBytes(4))
	_, err := c.Unserialize([]byte("i:12345;"))
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindInvalidInput}) {
		t.Fatalf("err = %v, want invalid input", err)
	}
	if _, err := c.Unserialize([]byte("N;")); err != nil {
		t.Errorf("small input: %v", err)
	}
}

func TestCodecCacheOptions(t *testing.T) {
	if New(WithoutCache()).Cache() != nil {
		t.Error("WithoutCache left a cache")
	}
	if New(WithCache(nil)).Cache() != nil {
		t.Error("WithCache(nil) left a cache")
	}

	shared, err := cache.NewDecodeCache(cache.WithCapacity(4))
	if err != nil {
		t.Fatalf("NewDecodeCache: %v", err)
	}
	a := New(WithCache(shared))
	b := New(WithCache(shared))
	if _, err := a.Unserialize([]byte("i:1;")); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Unserialize([]byte("i:1;")); err != nil {
		t.Fatal(err)
	}
	if shared.Stats().Hits != 1 {
		t.Errorf("shared cache hits = %d", shared.Stats().Hits)
	}
}

func TestCodecWithoutInterner(t *testing.T) {
	c := New(WithInterner(nil), WithoutCache())
	v, err := c.UnserializeString(`a:1:{s:3:"key";b:1;}`)
	if err != nil {
		t.Fatalf("Unserialize: %v", err)
	}
	if got, _ := v.(*value.Array).Lookup(value.StrKey("key")); got != value.True {
		t.Errorf("key = %v", got)
	}
}

func TestCodecMaxDepth(t *testing.T) {
	c := New(WithMaxDepth(2))
	_, err := c.Unserialize([]byte("a:1:{i:0;a:1:{i:0;a:0:{}}}"))
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindDepth}) {
		t.Errorf("decode err = %v, want depth", err)
	}

	deep := value.ArrayOf(value.ArrayOf(value.ArrayOf()))
	_, err = c.Serialize(deep)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseEncode, Kind: errors.KindDepth}) {
		t.Errorf("encode err = %v, want depth", err)
	}
}

func TestPackageLevel(t *testing.T) {
	data, err := Serialize(value.ArrayOf(value.Str("x")))
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if string(data) != `a:1:{i:0;s:1:"x";}` {
		t.Errorf("Serialize = %s", data)
	}
	v, err := Unserialize(data)
	if err != nil {
		t.Fatalf("Unserialize: %v", err)
	}
	if !value.Equal(v, value.ArrayOf(value.Str("x"))) {
		t.Errorf("Unserialize = %s", value.Dump(v))
	}
	if Default() != Default() {
		t.Error("Default should return one codec")
	}
}

func TestLogDiagnostics(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	c := New(
		WithRegistry(userRegistry(t)),
		WithDiagnostics(LogDiagnostics(zap.New(core))),
	)
	if _, err := c.Unserialize([]byte(`O:5:"Ghost":0:{}`)); err != nil {
		t.Fatalf("Unserialize: %v", err)
	}

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("logged %d entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["kind"] != string(errors.KindUnknownClass) {
		t.Errorf("kind field = %v", fields["kind"])
	}
	if fields["offset"] != int64(0) {
		t.Errorf("offset field = %v", fields["offset"])
	}

	if entries[0].Level != zapcore.WarnLevel {
		t.Errorf("level = %s, want warn", entries[0].Level)
	}

	LogDiagnostics(zap.New(core)).Notice(errors.InvalidInput(errors.PhaseDecode, "not soft"))
	if last := logs.All()[len(logs.All())-1]; last.Level != zapcore.ErrorLevel {
		t.Errorf("hard notice level = %s, want error", last.Level)
	}

	LogDiagnostics(nil).Notice(errors.New(errors.PhaseDecode, errors.KindTruncated).Build())
}

func TestCodecTeeDiagnostics(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	rec := &phpserial.Recorder{}
	c := New(
		WithRegistry(userRegistry(t)),
		WithDiagnostics(phpserial.Tee(rec, LogDiagnostics(zap.New(core)))),
	)
	if _, err := c.Unserialize([]byte(`a:1:{i:0;O:5:"Ghost":0:{}}`)); err != nil {
		t.Fatalf("Unserialize: %v", err)
	}
	if rec.Len() != 1 || logs.Len() != 1 {
		t.Errorf("recorded %d, logged %d, want 1 each", rec.Len(), logs.Len())
	}
}

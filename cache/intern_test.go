package cache

import (
	"strings"
	"sync"
	"testing"
	"unsafe"
)

func sameBacking(a, b string) bool {
	return unsafe.StringData(a) == unsafe.StringData(b)
}

func TestInternReturnsIdenticalString(t *testing.T) {
	in := NewKeyInterner()
	a := in.Intern([]byte("session_id"))
	b := in.Intern([]byte("session_id"))

	if a != "session_id" || b != "session_id" {
		t.Fatalf("Intern = %q, %q", a, b)
	}
	if !sameBacking(a, b) {
		t.Error("repeated keys should share one string")
	}
	hits, misses := in.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("hits = %d misses = %d", hits, misses)
	}
}

func TestInternDoesNotAliasInput(t *testing.T) {
	in := NewKeyInterner()
	buf := []byte("name")
	s := in.Intern(buf)
	buf[0] = 'X'
	if s != "name" {
		t.Errorf("interned string changed with its source: %q", s)
	}
}

func TestInternLongKeysBypass(t *testing.T) {
	in := NewKeyInterner()
	long := []byte(strings.Repeat("k", MaxInternLen))
	a := in.Intern(long)
	b := in.Intern(long)
	if a != b {
		t.Fatal("long keys should still compare equal")
	}
	if sameBacking(a, b) {
		t.Error("keys of MaxInternLen bytes should not be interned")
	}
	hits, misses := in.Stats()
	if hits != 0 || misses != 0 {
		t.Errorf("long keys touched the table: hits = %d misses = %d", hits, misses)
	}
	if in.Intern(nil) != "" {
		t.Error("empty key")
	}
}

func TestInternDistinctKeys(t *testing.T) {
	in := NewKeyInterner()
	keys := []string{"a", "b", "id", "name", "email", "created_at"}
	for _, k := range keys {
		if got := in.Intern([]byte(k)); got != k {
			t.Errorf("Intern(%q) = %q", k, got)
		}
	}
	for _, k := range keys {
		if got := in.Intern([]byte(k)); got != k {
			t.Errorf("second Intern(%q) = %q", k, got)
		}
	}
}

func TestInternConcurrent(t *testing.T) {
	in := NewKeyInterner()
	keys := []string{"alpha", "beta", "gamma", "delta", "epsilon"}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				k := keys[j%len(keys)]
				if got := in.Intern([]byte(k)); got != k {
					t.Errorf("Intern(%q) = %q", k, got)
					return
				}
			}
		}()
	}
	wg.Wait()
}

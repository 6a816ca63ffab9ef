package cache

import (
	"hash/maphash"
	"sync"
	"sync/atomic"
)

const (
	// MaxInternLen is the exclusive upper bound on interned key length.
	MaxInternLen = 32

	internShards    = 16
	internShardSize = 256
)

// keyWindow is the lookup key of the interner: a byte window of the input
// with its precomputed hash.
type keyWindow struct {
	buf  []byte
	hash uint64
}

type internEntry struct {
	str  string
	hash uint64
}

type internShard struct {
	slots [internShardSize]internEntry
	mu    sync.RWMutex
}

// KeyInterner returns a canonical string for short keys so repeated decodes
// of documents with the same field names share one allocation per name.
// It is a fixed-size, direct-mapped table split into lock-striped shards.
type KeyInterner struct {
	shards [internShards]internShard
	seed   maphash.Seed
	hits   atomic.Uint64
	misses atomic.Uint64
}

func NewKeyInterner() *KeyInterner {
	return &KeyInterner{seed: maphash.MakeSeed()}
}

// Intern returns a string equal to b. Keys of MaxInternLen bytes or more
// are copied without interning.
func (k *KeyInterner) Intern(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	if len(b) >= MaxInternLen {
		return string(b)
	}
	return k.lookup(keyWindow{buf: b, hash: maphash.Bytes(k.seed, b)})
}

func (k *KeyInterner) lookup(w keyWindow) string {
	shard := &k.shards[w.hash%internShards]
	i := (w.hash / internShards) % internShardSize

	// Fast path: check for hit with read lock
	shard.mu.RLock()
	e := shard.slots[i]
	shard.mu.RUnlock()
	if e.hash == w.hash && e.str == string(w.buf) {
		k.hits.Add(1)
		return e.str
	}

	str := string(w.buf)

	shard.mu.Lock()
	// Double-check in case another goroutine stored it meanwhile
	if cur := shard.slots[i]; cur.hash == w.hash && cur.str == str {
		str = cur.str
	} else {
		shard.slots[i] = internEntry{str: str, hash: w.hash}
	}
	shard.mu.Unlock()

	k.misses.Add(1)
	return str
}

// Stats returns the interner hit and miss counts.
func (k *KeyInterner) Stats() (hits, misses uint64) {
	return k.hits.Load(), k.misses.Load()
}

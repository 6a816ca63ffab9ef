// Package cache provides the process-wide caches used by the decoder.
//
// # Components
//
//	DecodeCache  - bounded LRU from input text to decoded root value
//	TextStore    - byte-budgeted store of retained input texts
//	KeyInterner  - lock-striped interning of short key strings
//
// # Reclaimable Handles
//
// A DecodeCache entry does not hold its input text directly. It holds a
// Handle into a TextStore. A Handle packs a slot index with a generation
// counter, so a handle whose slot was reclaimed and reused no longer
// resolves:
//
//	Handle = generation<<32 | slot
//
// When the retained texts exceed the store's byte budget the oldest texts
// are reclaimed. Their cache entries then behave as misses and are dropped
// on the next lookup.
//
// # Thread Safety
//
// All types in this package are safe for concurrent use.
package cache

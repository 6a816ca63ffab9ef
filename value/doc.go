// Package value defines the runtime value graph that the codec reads and
// writes.
//
// # Variants
//
//	Null      - the null value
//	Bool      - true/false
//	Int       - signed 64-bit integer
//	Float     - IEEE-754 double
//	Str       - byte string (wire length in bytes)
//	UStr      - unicode string (wire length in code points)
//	*Array    - insertion-ordered map keyed by Int or string
//	*Object   - class instance with ordered, visibility-tagged fields
//	*Ref      - shared mutable cell
//
// A *Ref stored in two places aliases them: writing through one is visible
// through the other. Copy implements value-copy semantics, where arrays are
// duplicated and object handles are shared.
//
// ToNative and FromNative bridge to plain Go values for tooling such as the
// JSON output of cmd/phpser.
package value

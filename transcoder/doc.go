// Package transcoder converts between value graphs and the serialize wire
// format.
//
// # Wire Grammar
//
//	Tag   Form                                Result
//	────────────────────────────────────────────────────────────
//	N     N;                                  Null
//	b     b:0; | b:1;                         Bool
//	i     i:<int>;                            Int
//	d     d:<float>;                          Float (INF, -INF, NAN)
//	s/S   s:<len>:"<len bytes>";              Str
//	u/U   U:<len>:"<len code points>";        UStr
//	a     a:<n>:{<key><value>...}             *Array
//	O     O:<len>:"<class>":<n>:{...}         *Object
//	R     R:<slot>;                           alias of a slot
//	r     r:<slot>;                           copy of a slot
//
// Keys are i: or s:/S:/u:/U: tokens and never take a slot. Every value token
// except R takes the next slot, numbered from 1, containers before their
// children.
//
// # Decoding Flow
//
//  1. Scan(data) → RefScan (skipped when the input has no R: or r:)
//  2. Decoder.DecodeResult(data) → Result
//
// The scan walks the same grammar without building values and flags every
// slot an R token targets. The materialize pass wraps each flagged value in a
// *value.Ref as soon as its slot is assigned, so later R tokens alias it.
//
// # Encoding Flow
//
//	Encoder.Encode(v) → []byte
//
// The encoder tracks *value.Ref and *value.Object identities per call. A
// repeated Ref is written as R:n; (no slot), a repeated Object as r:n;.
//
// # Errors
//
// Grammar errors, bad references, unsupported key tags, malformed
// visibility markers and nesting beyond the depth limit abort with an
// *errors.Error carrying the byte offset and a context window. Truncated
// payloads, unknown classes and trailing bytes are soft: they go to the
// Diagnostics sink and decoding continues with a false placeholder or an
// incomplete object.
package transcoder

// Package phpserial implements the PHP serialize wire format for a scripting
// runtime's value graph.
//
// The codec converts scalars, ordered maps, objects with visibility-tagged
// fields and aliased references to and from the compact text form used by
// the target ecosystem, byte for byte.
//
// # Architecture Overview
//
//	phpserial/           Root package with the collaborator interfaces
//	├── value/           Value graph: scalars, Array, Object, Ref
//	├── registry/        Case-insensitive class registry
//	├── transcoder/      Encoder, reference scan and decoder
//	├── cache/           Decode cache, reclaimable text store, key interner
//	├── codec/           High-level Serialize/Unserialize API
//	├── errors/          Structured error types with input offsets
//	└── cmd/phpser/      Command line inspector
//
// # Quick Start
//
//	data, err := codec.Serialize(value.ArrayOf(value.Int(1), value.Str("a")))
//	// a:2:{i:0;i:1;i:1;s:1:"a";}
//
//	v, err := codec.Unserialize(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(value.Dump(v))
//
// # Wire Format
//
//	N;                          null
//	b:1;                        bool
//	i:-7;                       int
//	d:0.5;                      float (INF, -INF, NAN)
//	s:2:"hi";                   byte string
//	U:1:"é";                    unicode string, length in code points
//	a:1:{i:0;N;}                ordered map
//	O:3:"Foo":1:{s:1:"x";N;}    object
//	R:2;                        alias of slot 2
//	r:2;                        copy of slot 2
//
// Every decoded value except keys and R takes a slot, numbered from 1 in
// document order. Protected and private field names carry a NUL-delimited
// marker: "\x00*\x00name" and "\x00Class\x00name".
//
// # Soft Failures
//
// A truncated string payload, an unknown class or trailing bytes after the
// root value do not abort decoding. They are reported to the Diagnostics
// sink, and the affected node becomes false or an incomplete object. Grammar
// errors and bad references abort the call with an *errors.Error.
//
// # Thread Safety
//
// Encoders and decoders hold per-call state only. The decode cache, key
// interner and registry are safe for concurrent use.
package phpserial

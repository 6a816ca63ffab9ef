// Package codec is the high-level entry point for serializing values.
//
// A Codec combines the transcoder's Encoder and Decoder with a decode cache
// and a key interner:
//
//	c := codec.New(codec.WithRegistry(reg), codec.WithDiagnostics(rec))
//	data, err := c.Serialize(v)
//	v, err = c.Unserialize(data)
//
// Unserialize consults the cache before decoding. Only decodes that used no
// back-references and raised no notices are stored, so a hit behaves exactly
// like a fresh decode. Hits return deep copies.
//
// The package-level Serialize and Unserialize use a shared default codec.
package codec

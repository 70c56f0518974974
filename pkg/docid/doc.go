// Package docid mints and inspects the opaque identifiers used for documents
// and their parts.
//
// # Format
//
// An identifier is a one-letter kind prefix followed by eleven characters of
// Crockford base32 derived from a random (v4) UUID:
//
//	T3KD9X2M4QZA   thread (document)
//	S0B8N1W7C5JH   section: block, table, row, or cell
//	M7YV2R9K1EDP   message
//	A4GT6Z0Q8MWS   annotation (comment thread)
//
// The service treats identifiers as opaque strings; the prefix only helps
// humans and tests tell them apart.
//
// # Usage
//
//	id := docid.New(docid.KindSection)
//	kind, err := docid.Parse(id)
//
// Tests that need stable output use a Sequence instead of the random
// generator:
//
//	gen := docid.NewSequence()
//	gen.Next(docid.KindThread) // "T00000000001"
package docid

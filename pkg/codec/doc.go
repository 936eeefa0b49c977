// Package codec serializes record tables to and from SagaDB's
// tab-separated text format.
//
// # Format
//
// A stream is a header line followed by zero or more record lines,
// each terminated by a single line feed:
//
//	#uuid<TAB>field1<TAB>field2...<TAB>fieldN
//	<identifier><TAB>v1<TAB>v2...<TAB>vN
//
// Lines beginning with '#' are comments and are skipped while
// parsing; the header is one of them. The first empty line terminates
// the stream. No line may exceed MaxLineLen bytes.
//
// Field values are encoded by declared type:
//
//   - integers and floats: base-10 text
//   - booleans: the literals true and false
//   - enums: the decimal ordinal of the variant (variant names are
//     also accepted on input)
//   - strings: raw bytes with literal tabs escaped as `\t`; embedded
//     line feeds are not supported
//   - identifiers: the decimal form of the 128-bit value
//
// # Schemas
//
// The codec never reflects over record types. Each record type
// registers a Schema: an ordered list of fields carrying a name, a
// type tag and a Get/Set accessor pair. The same schema drives both
// directions, so a table written with a schema reloads with it.
//
// # Errors
//
// Parsing is all-or-nothing for the stream being read: the first
// malformed line aborts with one of the sentinel errors in errors.go,
// wrapped with line and field context. Records decoded before the
// failing line have already been handed to the caller.
package codec

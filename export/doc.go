// Package export writes decoded programs in machine-readable forms.
//
// NewDocument flattens a program into plain structs that carry rendered
// instruction text and operand tokens next to the raw ids and offsets.
// WriteCBOR encodes a Document with canonical CBOR so identical inputs
// produce identical bytes. WriteSQLite stores functions, imports, thread
// back-references and instructions in a SQLite database for ad-hoc
// cross-reference queries.
package export

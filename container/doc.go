// Package container parses the KSMR script container.
//
// A container starts with a 0x2c-byte header: the "KSMR" magic, the format
// version 0x10300, eight section start offsets counted in 32-bit words, and
// a reserved word that is replaced with the file's total word count when the
// file is loaded. Each section runs from its start offset to the next one:
//
//	0  info (three words)
//	1  function definitions
//	2  script variables
//	3  tables
//	4  const variables
//	5  function imports
//	6  global variables
//	7  code blob sliced by function definitions
//
// Parse never reads outside the file: every section boundary is checked
// against the file length before slicing.
package container

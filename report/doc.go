// Package report renders decoded programs as text.
//
// Write produces a YAML-like listing: the section 0 value, the import
// catalog, optional variable and table catalogs, and one entry per function
// definition with its locals, tables, labels, thread back-references and
// an indented instruction body. Block-opening instructions (If, Switch,
// Case, DoWhile, Thread and friends) indent the lines that follow; their
// closing counterparts dedent.
//
// FormatValue and FormatInstruction expose the operand and instruction
// syntax for other renderers, and Body returns the nested lines of a single
// function.
package report

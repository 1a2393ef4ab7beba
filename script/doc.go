// Package script decodes KSM script bytecode into structured instructions.
//
// # Loading
//
// Load reads the catalogs of a parsed container (variables, tables, function
// imports and function definitions) and builds the global symbol table:
//
//	c, _ := container.Parse(data)
//	prog, err := script.Load(c, script.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	prog.Decode()
//
// # Symbols
//
// Every operand word is an id resolved through a SymbolTable, a stack of
// scopes searched innermost first. Ids nobody registered come back as
// RawInteger, so resolution never fails. The operator tokens live in the
// outermost scope, catalogs above them, and each function decodes against a
// copy with its locals, tables and labels in a scope of its own.
//
// # Instructions
//
// The low bits of an opcode word select the instruction; bit 0x100 is the
// constant-mode flag. In constant mode an operand slot holds one resolved
// word, otherwise an expression terminated by 0x40. Expressions are kept as
// the flat token sequence of the encoding, with nested calls (word 0x0c) as
// single elements.
//
// Thread and Thread2 open a scope in which captured variables are visible
// under their callee-side ids; the next Return closes it. A Return at the
// function's own depth is a plain return.
//
// Opcodes without a decoder become UnknownInstr records carrying every word
// up to 0x11. Decoding never aborts the whole program: each FunctionDef
// records a Status, the instructions decoded before any failure, and the
// error that stopped it.
//
// # Thread bodies
//
// Decode links every Thread/Thread2 target back to the function that spawns
// it. ThreadOrigin reports functions spawned exactly once, which are
// usually bodies the compiler split out of the spawning function.
package script

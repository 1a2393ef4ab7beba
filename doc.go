// Package ksmdisasm disassembles KSM game-script bytecode.
//
// A KSM file is a KSMR container: a fixed header followed by eight sections
// holding catalogs of variables, tables, function imports and function
// definitions, plus one code section shared by every function body. The
// disassembler reads the catalogs, registers their entries in a layered
// symbol table and decodes each function body into typed instructions whose
// operands are resolved to the entities they reference.
//
// # Architecture Overview
//
//	ksmdisasm/          Root package with Disassemble
//	├── container/      KSMR header validation and section slicing
//	├── script/         Catalogs, symbol table, expression and instruction decoding
//	├── report/         YAML-like text listing
//	├── export/         CBOR and SQLite exports
//	├── config/         ksmdis.toml loading
//	├── errors/         Structured error types for debugging
//	└── cmd/ksmdis/     Command-line tool and interactive browser
//
// # Quick Start
//
//	data, err := os.ReadFile("script.bin")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	prog, err := ksmdisasm.Disassemble(data, script.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report.Write(os.Stdout, prog, report.Options{})
//
// # Failure Model
//
// Container and catalog problems are fatal: Disassemble returns an error
// and no program. Problems inside a function body are not: the function
// keeps the instructions decoded before the failure, its Status says why it
// stopped and every other function decodes independently.
//
// # Thread Bodies
//
// Thread and Thread2 instructions start a script thread whose body the
// compiler emits as a separate function. After decoding, each target records
// which functions spawn it; a function spawned from exactly one place is
// reported as generated from that thread.
package ksmdisasm

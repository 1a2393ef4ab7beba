package ksmdisasm

import (
	"fmt"
	"os"

	"github.com/wippyai/ksm-disasm/container"
	"github.com/wippyai/ksm-disasm/script"
)

// Disassemble parses a KSMR file, loads its catalogs and decodes every
// function body.
func Disassemble(data []byte, opts script.Options) (*script.Program, error) {
	c, err := container.Parse(data)
	if err != nil {
		return nil, err
	}
	prog, err := script.Load(c, opts)
	if err != nil {
		return nil, err
	}
	prog.Decode()
	return prog, nil
}

// DisassembleFile reads and disassembles the file at path.
func DisassembleFile(path string, opts script.Options) (*script.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return Disassemble(data, opts)
}

package ksmdisasm

import (
	"os"
	"path/filepath"
	"testing"

	kerrors "github.com/wippyai/ksm-disasm/errors"
	"github.com/wippyai/ksm-disasm/internal/testutil"
	"github.com/wippyai/ksm-disasm/script"
)

func sample() *testutil.Program {
	return &testutil.Program{
		Imports: []testutil.Import{{Name: "evt_print", ID: 0x500, Type: 7}},
		Funcs: []testutil.Func{
			{Name: "main", ID: 0x600, Code: []uint32{0x10c, 0x500, 0x11, 0x09}},
			{Name: "empty", ID: 0x601},
		},
	}
}

func TestDisassemble(t *testing.T) {
	prog, err := Disassemble(sample().Build(), script.Options{})
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	if len(prog.Functions) != 2 {
		t.Fatalf("got %d functions, want 2", len(prog.Functions))
	}
	main := prog.Functions[0]
	if main.Status != script.StatusClean || len(main.Instructions) != 2 {
		t.Errorf("main: status %v, %d instructions", main.Status, len(main.Instructions))
	}
	if prog.Functions[1].Status != script.StatusNoCode {
		t.Errorf("empty: status %v", prog.Functions[1].Status)
	}
}

func TestDisassembleErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		kind kerrors.Kind
	}{
		{"empty", nil, kerrors.KindOutOfBounds},
		{"bad magic", append([]byte("XXXX"), make([]byte, 0x28)...), kerrors.KindInvalidMagic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Disassemble(tt.data, script.Options{})
			if err == nil {
				t.Fatal("expected error")
			}
			if got := kerrors.KindOf(err); got != tt.kind {
				t.Errorf("kind = %v, want %v (%v)", got, tt.kind, err)
			}
		})
	}
}

func TestDisassembleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.bin")
	if err := os.WriteFile(path, sample().Build(), 0o644); err != nil {
		t.Fatal(err)
	}
	prog, err := DisassembleFile(path, script.Options{})
	if err != nil {
		t.Fatalf("DisassembleFile: %v", err)
	}
	if prog.Functions[0].Name != "main" {
		t.Errorf("first function = %q", prog.Functions[0].Name)
	}

	if _, err := DisassembleFile(filepath.Join(t.TempDir(), "missing.bin"), script.Options{}); err == nil {
		t.Error("expected error for missing file")
	}
}

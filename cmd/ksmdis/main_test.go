package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wippyai/ksm-disasm/internal/testutil"
)

func writeSample(t *testing.T) string {
	t.Helper()
	p := &testutil.Program{
		Imports: []testutil.Import{{Name: "evt_print", ID: 0x500, Type: 7}},
		Funcs: []testutil.Func{
			{Name: "main", ID: 0x600, Code: []uint32{0x10c, 0x500, 0x11, 0x09}},
		},
	}
	path := filepath.Join(t.TempDir(), "sample.bin")
	if err := os.WriteFile(path, p.Build(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunWritesDefaultOutput(t *testing.T) {
	input := writeSample(t)
	o := options{
		input:      input,
		configFile: filepath.Join(t.TempDir(), "none.toml"),
		set:        map[string]bool{},
	}
	if err := run(o); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(input + ".yaml")
	if err != nil {
		t.Fatalf("default output: %v", err)
	}
	if !strings.Contains(string(data), "name: evt_print") {
		t.Errorf("report missing import:\n%s", data)
	}
}

func TestRunReturnsErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		o    options
		want string
	}{
		{
			name: "missing input",
			o:    options{input: filepath.Join(dir, "missing.bin"), configFile: filepath.Join(dir, "none.toml")},
			want: "disassemble",
		},
		{
			name: "bad format flag",
			o: options{
				input:      filepath.Join(dir, "missing.bin"),
				configFile: filepath.Join(dir, "none.toml"),
				format:     "xml",
				set:        map[string]bool{"format": true},
			},
			want: "xml",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(tt.o)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

package main

import (
	"testing"

	"github.com/wippyai/ksm-disasm/config"
	"github.com/wippyai/ksm-disasm/script"
)

func TestFilterFunctions(t *testing.T) {
	fns := []*script.FunctionDef{
		{Name: "main", ID: 0x600},
		{Name: "worker", ID: 0x601},
		{ID: 0x1602},
	}
	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"MAIN", 1},
		{"0x601", 1},
		{"fn_0x1602", 1},
		{"nothing", 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := filterFunctions(fns, tt.query); len(got) != tt.want {
				t.Errorf("got %d functions, want %d", len(got), tt.want)
			}
		})
	}
}

func TestDefaultOutput(t *testing.T) {
	tests := []struct {
		input, format, want string
	}{
		{"a.bin", config.FormatText, "a.bin.yaml"},
		{"dir/a.bin", config.FormatCBOR, "dir/a.bin.cbor"},
		{"a.ksm", config.FormatSQLite, "a.ksm.db"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := defaultOutput(tt.input, tt.format); got != tt.want {
				t.Errorf("defaultOutput(%q, %q) = %q, want %q", tt.input, tt.format, got, tt.want)
			}
		})
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	kerrors "github.com/wippyai/ksm-disasm/errors"
)

func write(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFile)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissing(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Output.Format != FormatText || c.Decode.Experimental {
		t.Errorf("config = %+v, want defaults", c)
	}
	if lvl, _ := c.LogLevel(); lvl != zapcore.WarnLevel {
		t.Errorf("level = %v, want warn", lvl)
	}
}

func TestLoad(t *testing.T) {
	path := write(t, `
[decode]
experimental = true

[operators]
"0x57" = "!"

[names]
"0x600" = "main"
"16" = "sixteen"

[output]
format = "sqlite"
variables = true

[log]
level = "debug"
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Output.Format != FormatSQLite || !c.Output.Variables {
		t.Errorf("output = %+v", c.Output)
	}
	if lvl, err := c.LogLevel(); err != nil || lvl != zapcore.DebugLevel {
		t.Errorf("level = %v, %v", lvl, err)
	}

	opts, err := c.ScriptOptions()
	if err != nil {
		t.Fatalf("ScriptOptions: %v", err)
	}
	if !opts.Experimental {
		t.Error("experimental not set")
	}
	if opts.Operators[0x57] != "!" {
		t.Errorf("operators = %v", opts.Operators)
	}
	if opts.Aliases[0x600] != "main" || opts.Aliases[16] != "sixteen" {
		t.Errorf("aliases = %v", opts.Aliases)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		kind    kerrors.Kind
	}{
		{"syntax", "[output\n", "parse error", ""},
		{"format", "[output]\nformat = \"xml\"\n", "unknown output format", kerrors.KindInvalidData},
		{"level", "[log]\nlevel = \"loud\"\n", "loud", kerrors.KindInvalidData},
		{"operator id", "[operators]\nzz = \"!\"\n", "operators: invalid id", kerrors.KindInvalidData},
		{"name id", "[names]\n\"0x1ffffffff\" = \"big\"\n", "names: invalid id", kerrors.KindInvalidData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(write(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to contain %q", err, tt.want)
			}
			if got := kerrors.KindOf(err); got != tt.kind {
				t.Errorf("kind = %q, want %q", got, tt.kind)
			}
		})
	}
}

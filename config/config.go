// Package config loads ksmdis settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap/zapcore"

	kerrors "github.com/wippyai/ksm-disasm/errors"
	"github.com/wippyai/ksm-disasm/script"
)

// DefaultFile is the config file looked up when no path is given.
const DefaultFile = "ksmdis.toml"

// Output formats.
const (
	FormatText   = "text"
	FormatCBOR   = "cbor"
	FormatSQLite = "sqlite"
)

// Config is the content of a ksmdis.toml file.
type Config struct {
	Decode Decode `toml:"decode"`
	// Operators maps hex symbol ids to extra expression tokens.
	Operators map[string]string `toml:"operators"`
	// Names maps hex ids to aliases for anonymous entities.
	Names  map[string]string `toml:"names"`
	Output Output            `toml:"output"`
	Log    Log               `toml:"log"`
}

type Decode struct {
	Experimental bool `toml:"experimental"`
}

type Output struct {
	Format    string `toml:"format"`
	Variables bool   `toml:"variables"`
}

type Log struct {
	Level string `toml:"level"`
}

// Default returns the settings used without a config file.
func Default() *Config {
	return &Config{
		Output: Output{Format: FormatText},
		Log:    Log{Level: "warn"},
	}
}

// Load reads the config file at path on top of Default. A missing file is
// not an error.
func Load(path string) (*Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Validate checks values that the TOML decoder accepts but ksmdis does not.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case FormatText, FormatCBOR, FormatSQLite:
	default:
		return kerrors.InvalidData(kerrors.PhaseConfig, []string{"output", "format"}, -1,
			fmt.Sprintf("unknown output format %q", c.Output.Format))
	}
	if _, err := c.LogLevel(); err != nil {
		return kerrors.Wrap(kerrors.PhaseConfig, kerrors.KindInvalidData, err, "log.level")
	}
	_, err := c.ScriptOptions()
	return err
}

// LogLevel parses the [log] level.
func (c *Config) LogLevel() (zapcore.Level, error) {
	if c.Log.Level == "" {
		return zapcore.WarnLevel, nil
	}
	return zapcore.ParseLevel(c.Log.Level)
}

// ScriptOptions converts the decode settings for script.Load.
func (c *Config) ScriptOptions() (script.Options, error) {
	ops, err := ids("operators", c.Operators)
	if err != nil {
		return script.Options{}, err
	}
	names, err := ids("names", c.Names)
	if err != nil {
		return script.Options{}, err
	}
	return script.Options{
		Experimental: c.Decode.Experimental,
		Operators:    ops,
		Aliases:      names,
	}, nil
}

// ids converts hex (or decimal) string keys of table to numeric ids.
func ids(table string, m map[string]string) (map[uint32]string, error) {
	if len(m) == 0 {
		return nil, nil
	}
	out := make(map[uint32]string, len(m))
	for k, v := range m {
		id, err := strconv.ParseUint(k, 0, 32)
		if err != nil {
			return nil, kerrors.InvalidData(kerrors.PhaseConfig, []string{table}, -1, fmt.Sprintf("invalid id %q", k))
		}
		out[uint32(id)] = v
	}
	return out, nil
}

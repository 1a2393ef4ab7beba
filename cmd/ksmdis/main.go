package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	ksmdisasm "github.com/wippyai/ksm-disasm"
	"github.com/wippyai/ksm-disasm/config"
	"github.com/wippyai/ksm-disasm/export"
	"github.com/wippyai/ksm-disasm/report"
	"github.com/wippyai/ksm-disasm/script"
)

type settings struct {
	input     string
	output    string
	format    string
	variables bool
	color     bool
	opts      script.Options
}

type options struct {
	input        string
	configFile   string
	format       string
	output       string
	variables    bool
	experimental bool
	verbose      bool
	interactive  bool
	// set holds the names of flags given on the command line.
	set map[string]bool
}

func main() {
	var (
		configFile   = flag.String("config", config.DefaultFile, "Path to config file")
		format       = flag.String("format", "", "Output format: text, cbor or sqlite")
		output       = flag.String("o", "", "Output path (- for stdout; default <input>.yaml, .cbor or .db)")
		variables    = flag.Bool("vars", false, "Include variable and table catalogs in the text report")
		experimental = flag.Bool("experimental", false, "Decode unconfirmed opcodes (IfEqual, IfNotEqual)")
		verbose      = flag.Bool("v", false, "Debug logging")
		interactive  = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: ksmdis [-config file] [-format text|cbor|sqlite] [-o out] [-vars] [-experimental] [-v] <input.bin>")
		fmt.Fprintln(os.Stderr, "       ksmdis -i <input.bin>  (interactive mode)")
		os.Exit(1)
	}

	o := options{
		input:        flag.Arg(0),
		configFile:   *configFile,
		format:       *format,
		output:       *output,
		variables:    *variables,
		experimental: *experimental,
		verbose:      *verbose,
		interactive:  *interactive,
		set:          map[string]bool{},
	}
	flag.Visit(func(f *flag.Flag) { o.set[f.Name] = true })

	if err := run(o); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(o options) error {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return err
	}
	if o.set["format"] {
		cfg.Output.Format = o.format
	}
	if o.set["vars"] {
		cfg.Output.Variables = o.variables
	}
	if o.set["experimental"] {
		cfg.Decode.Experimental = o.experimental
	}
	if o.verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()
	script.SetLogger(log.Named("script"))
	export.SetLogger(log.Named("export"))

	opts, err := cfg.ScriptOptions()
	if err != nil {
		return err
	}

	if o.interactive {
		return runInteractive(o.input, opts)
	}

	s := settings{
		input:     o.input,
		output:    o.output,
		format:    cfg.Output.Format,
		variables: cfg.Output.Variables,
		opts:      opts,
	}
	if s.output == "" {
		s.output = defaultOutput(s.input, s.format)
	}
	s.color = s.output == "-" && s.format == config.FormatText && term.IsTerminal(int(os.Stdout.Fd()))

	return disassemble(s)
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return zc.Build()
}

// defaultOutput appends the format's extension to the full input name.
func defaultOutput(input, format string) string {
	switch format {
	case config.FormatCBOR:
		return input + ".cbor"
	case config.FormatSQLite:
		return input + ".db"
	}
	return input + ".yaml"
}

func disassemble(s settings) error {
	prog, err := ksmdisasm.DisassembleFile(s.input, s.opts)
	if err != nil {
		return fmt.Errorf("disassemble: %w", err)
	}

	switch s.format {
	case config.FormatSQLite:
		if s.output == "-" {
			return fmt.Errorf("sqlite output needs a file path")
		}
		if err := export.WriteSQLite(context.Background(), s.output, prog); err != nil {
			return fmt.Errorf("sqlite export: %w", err)
		}
	default:
		if err := writeTo(s.output, func(w io.Writer) error {
			if s.format == config.FormatCBOR {
				return export.WriteCBOR(w, prog)
			}
			return report.Write(w, prog, report.Options{Variables: s.variables, Color: s.color})
		}); err != nil {
			return err
		}
	}

	fmt.Fprintln(os.Stderr, report.FormatSummary(prog.Summary()))
	for _, fn := range prog.Functions {
		if fn.Status == script.StatusMalformed {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", fn, fn.Err)
		}
	}
	return nil
}

func writeTo(path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

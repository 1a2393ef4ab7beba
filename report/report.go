package report

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/ksm-disasm/script"
)

// Options configures Write.
type Options struct {
	// Variables adds the script, const and global variable listings and
	// the global tables.
	Variables bool
	// Color styles mnemonics, comments and decode failures for a terminal.
	Color bool
}

var (
	mnemonicStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB"))
	nameStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98")).Bold(true)
	commentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	failStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

const bodyIndent = "      - "

type printer struct {
	w     *bufio.Writer
	p     *script.Program
	color bool
}

func (pr *printer) style(s lipgloss.Style, text string) string {
	if !pr.color {
		return text
	}
	return s.Render(text)
}

func (pr *printer) comment(text string) string {
	return pr.style(commentStyle, "# "+text)
}

func (pr *printer) printf(format string, args ...any) {
	fmt.Fprintf(pr.w, format, args...)
}

// Write renders a decoded program as a YAML-like listing.
func Write(w io.Writer, p *script.Program, opts Options) error {
	pr := &printer{w: bufio.NewWriter(w), p: p, color: opts.Color}

	pr.printf("section_0:\n  - 0x%x %s\n\n", p.Info, pr.comment("unknown"))

	pr.printf("imports:\n")
	for _, im := range p.Imports {
		pr.printf("  - { id: 0x%x, name: %s, field_0x4: %d, type: %s }\n",
			im.ID, quote(script.DisplayName(im)), im.Field, im.Type)
	}
	pr.printf("\n")

	if opts.Variables {
		pr.variables("script_variables", p.ScriptVars, "")
		pr.variables("const_variables", p.ConstVars, "")
		pr.variables("global_variables", p.GlobalVars, "")
		pr.tables("tables", p.Tables, "")
	}

	pr.printf("definitions:\n")
	for i, fn := range p.Functions {
		if i > 0 {
			pr.printf("    \n")
		}
		pr.function(fn)
	}
	return pr.w.Flush()
}

func (pr *printer) function(fn *script.FunctionDef) {
	pr.printf("  - name: %s\n", pr.style(nameStyle, nullable(script.DisplayName(fn))))
	pr.printf("    id: 0x%x\n", fn.ID)
	pr.printf("    is_public: %d\n", fn.Public)
	pr.printf("    field_0xc: 0x%x\n", fn.Field0C)
	if v, ok := fn.Local(fn.ReturnVar); ok {
		pr.printf("    field_0x30: %s %s\n", FormatValue(v), pr.comment("return variable"))
	} else {
		pr.printf("    field_0x30: 0x%x %s\n", fn.ReturnVar, pr.comment("return variable"))
	}
	pr.printf("    field_0x34: 0x%x\n", fn.Field34)

	if len(fn.Locals) > 0 {
		pr.variables("    variables", fn.Locals, "    ")
	}
	if len(fn.Tables) > 0 {
		pr.tables("    tables", fn.Tables, "    ")
	}
	if len(fn.Labels) > 0 {
		pr.printf("    labels:\n")
		for _, l := range fn.Labels {
			pr.printf("      - name: %s\n", nullable(script.DisplayName(l)))
			pr.printf("        id: 0x%x\n", l.ID)
			pr.printf("        code_offset: 0x%x\n", l.CodeOffset)
		}
	}

	if src, op, ok := script.ThreadOrigin(fn); ok {
		key := "generated_from_thread"
		if op == script.OpThread2 {
			key = "generated_from_thread2"
		}
		pr.printf("    %s: true %s\n", key, pr.comment("used by "+spawnerNames(pr.p.Spawners([]int{src}))))
	} else {
		if len(fn.ThreadRefs) > 0 {
			pr.printf("    %s\n", pr.comment("used by Threads: "+spawnerNames(pr.p.Spawners(fn.ThreadRefs))))
		}
		if len(fn.Thread2Refs) > 0 {
			pr.printf("    %s\n", pr.comment("used by Thread2s: "+spawnerNames(pr.p.Spawners(fn.Thread2Refs))))
		}
	}

	switch fn.Status {
	case script.StatusNoCode:
		pr.printf("    body: []\n")
		return
	case script.StatusTruncated:
		pr.printf("    status: %s\n", pr.style(failStyle, fn.Status.String()))
	case script.StatusMalformed:
		pr.printf("    status: %s %s\n", pr.style(failStyle, fn.Status.String()), pr.comment(fn.Err.Error()))
	}
	if fn.OpenScopes > 0 {
		pr.printf("    open_scopes: %d\n", fn.OpenScopes)
	}

	pr.printf("    body:\n")
	for _, l := range Body(fn) {
		text := l.Text()
		if pr.color {
			text = mnemonicStyle.Render(l.Mnemonic)
			if l.Operands != "" {
				text += " " + l.Operands
			}
		}
		pr.printf("%s%s%s\n", bodyIndent, strings.Repeat("    ", l.Depth), yamlScalar(text))
	}
}

func (pr *printer) variables(key string, vars []*script.Variable, indent string) {
	pr.printf("%s:\n", key)
	for i, v := range vars {
		if i > 0 && vars[i-1].Status != v.Status {
			pr.printf("%s  \n", indent)
		}
		pr.printf("%s  - name: %s\n", indent, nullable(script.DisplayName(v)))
		pr.printf("%s    id: 0x%x\n", indent, v.ID)
		pr.printf("%s    status: %s %s\n", indent, statusName(v.Status), pr.comment(strconv.FormatUint(uint64(v.Status), 10)))
		pr.printf("%s    flags: 0x%x\n", indent, v.Flags)
		pr.printf("%s    reference_value: %s\n", indent, referenceValue(v))
	}
	if indent == "" {
		pr.printf("\n")
	}
}

func (pr *printer) tables(key string, tables []*script.Table, indent string) {
	pr.printf("%s:\n", key)
	for _, t := range tables {
		entries := make([]string, len(t.Entries))
		for i, e := range t.Entries {
			entries[i] = fmt.Sprintf("0x%x", e)
		}
		pr.printf("%s  - name: %s\n", indent, nullable(script.DisplayName(t)))
		pr.printf("%s    id: 0x%x\n", indent, t.ID)
		pr.printf("%s    flags: 0x%x\n", indent, t.Flags)
		pr.printf("%s    entries: [%s]\n", indent, strings.Join(entries, ", "))
	}
	if indent == "" {
		pr.printf("\n")
	}
}

func statusName(s script.VarStatus) string {
	if s == script.StatusStringRef {
		return "StringRef"
	}
	if name := s.Name(); name != "" {
		return name
	}
	return "Unknown"
}

func referenceValue(v *script.Variable) string {
	switch {
	case v.HasStringRef():
		return quote(v.RefString)
	case v.Ref != 0:
		return fmt.Sprintf("0x%x", v.Ref)
	}
	return "0"
}

func spawnerNames(fns []*script.FunctionDef) string {
	names := make([]string, len(fns))
	for i, fn := range fns {
		names[i] = FormatValue(fn)
	}
	return strings.Join(names, ", ")
}

func nullable(s string) string {
	if s == "" {
		return "null"
	}
	return quote(s)
}

// quote single-quotes s when it would not read back as a plain scalar.
func quote(s string) string {
	if s == "" || strings.ContainsAny(s, ":#'\"{}[],&*!|>%@`") || strings.TrimSpace(s) != s {
		return "'" + strings.ReplaceAll(s, "'", "''") + "'"
	}
	return s
}

// yamlScalar quotes a body line that contains a mapping separator.
func yamlScalar(s string) string {
	if strings.Contains(s, ": ") {
		return "'" + strings.ReplaceAll(s, "'", "''") + "'"
	}
	return s
}

// FormatSummary renders decode counts on one line.
func FormatSummary(s script.Summary) string {
	return fmt.Sprintf("%d functions: %d clean, %d truncated, %d malformed, %d without code, %d with open thread scopes",
		s.Functions, s.Clean, s.Truncated, s.Malformed, s.NoCode, s.OpenScopes)
}

package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/ksm-disasm/script"
)

// FormatValue renders an operand: category:name for variables, fn:, label:
// and table: prefixes for other entities, ?0x.. for unresolved ids and the
// token itself for operators. Top-level expressions are not parenthesized.
func FormatValue(v script.Value) string {
	return formatValue(v, false)
}

func formatValue(v script.Value, nested bool) string {
	switch v := v.(type) {
	case *script.Expression:
		parts := make([]string, len(v.Elements))
		for i, e := range v.Elements {
			parts[i] = formatValue(e, true)
		}
		content := strings.Join(parts, " ")
		if nested {
			return paren(content)
		}
		return content
	case *script.CallInstr:
		content := callText(mnemonic(v.Header), v.Func, v.Args)
		if nested {
			return paren(content)
		}
		return content
	case *script.Variable:
		return formatVariable(v)
	case *script.FunctionImport:
		return "fn:" + displayOrID(script.DisplayName(v), v.ID)
	case *script.FunctionDef:
		return "fn:" + displayOrID(script.DisplayName(v), v.ID)
	case *script.Label:
		return "label:" + displayOrID(script.DisplayName(v), v.ID)
	case *script.Table:
		return "table:" + displayOrID(script.DisplayName(v), v.ID)
	case script.Operator:
		return v.Token
	case script.RawInteger:
		return fmt.Sprintf("?0x%x", uint32(v))
	case nil:
		return "null"
	}
	return fmt.Sprintf("%v", v)
}

func formatVariable(v *script.Variable) string {
	if name := script.DisplayName(v); name != "" {
		return v.Category.String() + ":" + name
	}
	if v.Category == script.Const {
		if v.HasStringRef() {
			return strconv.Quote(v.RefString)
		}
		return strconv.FormatUint(uint64(v.Ref), 10)
	}
	return fmt.Sprintf("%s:0x%x", v.Category, v.ID)
}

func displayOrID(name string, id uint32) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("0x%x", id)
}

func paren(s string) string {
	if s == "" {
		return "( )"
	}
	return "( " + s + " )"
}

func list[T script.Value](vs []T) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = FormatValue(v)
	}
	return paren(strings.Join(parts, ", "))
}

// funcName renders a call target without the fn: prefix.
func funcName(s script.Symbol) string {
	switch s.(type) {
	case *script.FunctionDef, *script.FunctionImport:
		return displayOrID(script.DisplayName(s), s.SymbolID())
	}
	return FormatValue(s)
}

func callText(m string, fn script.Symbol, args []script.Value) string {
	return m + " " + funcName(fn) + " " + list(args)
}

// mnemonic is the opcode name with a * suffix in constant mode.
func mnemonic(h script.Header) string {
	if h.Const {
		return h.Opcode.String() + "*"
	}
	return h.Opcode.String()
}

// Line is one rendered body line.
type Line struct {
	// Depth is the block nesting level.
	Depth    int
	Offset   int
	Mnemonic string
	Operands string
}

// Text joins mnemonic and operands.
func (l Line) Text() string {
	if l.Operands == "" {
		return l.Mnemonic
	}
	return l.Mnemonic + " " + l.Operands
}

// FormatInstruction renders one instruction of fn as text.
func FormatInstruction(fn *script.FunctionDef, in script.Instruction) string {
	return line(fn, in).Text()
}

// block says how an instruction moves the nesting level: close the block it
// ends before printing, open a new one after.
func block(in script.Instruction) (closes, opens bool) {
	switch in := in.(type) {
	case *script.IfInstr, *script.IfCompareInstr, *script.SwitchInstr, *script.DoWhileInstr, *script.ThreadInstr:
		return false, true
	case *script.ElseInstr, *script.ElseIfInstr, *script.CaseInstr, *script.CaseRangeInstr:
		return true, true
	case *script.ReturnInstr:
		return true, false
	case *script.MarkerInstr:
		switch in.Opcode {
		case script.OpEndIf, script.OpEndSwitch, script.OpEndDoWhile:
			return true, false
		case script.OpBreakSwitch:
			return true, true
		}
	}
	return false, false
}

// Body renders the instructions of fn with block nesting.
func Body(fn *script.FunctionDef) []Line {
	lines := make([]Line, 0, len(fn.Instructions))
	depth := 0
	for _, in := range fn.Instructions {
		closes, opens := block(in)
		if closes && depth > 0 {
			depth--
		}
		l := line(fn, in)
		l.Depth = depth
		lines = append(lines, l)
		if opens {
			depth++
		}
	}
	return lines
}

func line(fn *script.FunctionDef, in script.Instruction) Line {
	h := in.Head()
	l := Line{Offset: h.Offset, Mnemonic: mnemonic(h)}

	switch in := in.(type) {
	case *script.MarkerInstr:
		if in.Opcode == script.OpNoop || in.Opcode == script.OpNoop7C || in.Opcode == script.OpNoop7D {
			l.Mnemonic = fmt.Sprintf("Noop_0x%x", uint32(in.Opcode))
		}
	case *script.ReturnInstr:
	case *script.ReturnValInstr:
		l.Operands = paren(FormatValue(in.Value))
	case *script.SetInstr:
		l.Operands = FormatValue(in.Dest) + " " + formatValue(in.Value, true)
	case *script.CallInstr:
		l.Operands = funcName(in.Func) + " " + list(in.Args)
	case *script.CallVarInstr:
		l.Operands = funcName(in.Func) + " " + list(in.Args)
	case *script.GetArgsInstr:
		target := FormatValue(in.Func)
		if fn != nil && in.Func == fn {
			target = "fn:self"
		}
		l.Operands = target + " " + list(in.Params)
	case *script.ThreadInstr:
		l.Operands = FormatValue(in.Func) + " Capture " + list(in.Give)
	case *script.GotoLabelInstr:
		l.Operands = FormatValue(in.Label)
	case *script.DeleteRuntimeInstr:
		l.Operands = FormatValue(in.Target)
	case *script.WaitInstr:
		l.Operands = FormatValue(in.Duration)
	case *script.WaitCompletedInstr:
		l.Operands = FormatValue(in.Runtime)
	case *script.WaitWhileInstr:
		l.Operands = FormatValue(in.Cond)
	case *script.IfInstr:
		l.Operands = FormatValue(in.Cond)
	case *script.IfCompareInstr:
		l.Operands = paren(FormatValue(in.Left) + ", " + FormatValue(in.Right))
	case *script.ElseInstr:
	case *script.ElseIfInstr:
		l.Operands = FormatValue(in.Cond)
	case *script.SwitchInstr:
		l.Operands = FormatValue(in.Value)
	case *script.CaseInstr:
		l.Operands = FormatValue(in.Value)
	case *script.CaseRangeInstr:
		l.Operands = paren(FormatValue(in.Lower) + " to " + FormatValue(in.Upper))
	case *script.DoWhileInstr:
		l.Operands = FormatValue(in.Cond)
	case *script.ReadTableLengthInstr:
		l.Operands = list([]script.Symbol{in.Table})
	case *script.ReadTableEntryInstr:
		l.Operands = list([]script.Symbol{in.Table, in.Index})
	case *script.ReadTableEntryToVarInstr:
		l.Operands = list([]script.Symbol{in.Table, in.Index, in.Var})
	case *script.ReadTableEntriesVec2Instr:
		l.Operands = list([]script.Symbol{in.Table, in.Index, in.X, in.Y})
	case *script.ReadTableEntriesVec3Instr:
		l.Operands = list([]script.Symbol{in.Table, in.Index, in.X, in.Y, in.Z})
	case *script.TableGetIndexInstr:
		l.Operands = list([]script.Symbol{in.Table, in.Occurrence, in.Var})
	case *script.UnknownInstr:
		l.Operands = list(in.Operands)
	default:
		l.Operands = fmt.Sprintf("%T", in)
	}
	return l
}

// Tokens flattens a value into the token strings of its encoding order.
// Nested calls and expressions contribute their parts in sequence.
func Tokens(v script.Value) []string {
	var out []string
	var walk func(script.Value)
	walk = func(v script.Value) {
		switch v := v.(type) {
		case *script.Expression:
			for _, e := range v.Elements {
				walk(e)
			}
		case *script.CallInstr:
			out = append(out, mnemonic(v.Header), funcName(v.Func), "(")
			for _, a := range v.Args {
				walk(a)
			}
			out = append(out, ")")
		default:
			out = append(out, FormatValue(v))
		}
	}
	walk(v)
	return out
}

// Operands returns the operand values of an instruction in encoding order.
// Jump targets and unused words are not included.
func Operands(in script.Instruction) []script.Value {
	var out []script.Value
	add := func(vs ...script.Value) { out = append(out, vs...) }
	switch in := in.(type) {
	case *script.ReturnValInstr:
		add(in.Value)
	case *script.SetInstr:
		add(in.Dest, in.Value)
	case *script.CallInstr:
		add(in.Func)
		add(in.Args...)
	case *script.CallVarInstr:
		add(in.Func)
		add(in.Args...)
	case *script.GetArgsInstr:
		add(in.Func)
		for _, p := range in.Params {
			add(p)
		}
	case *script.ThreadInstr:
		add(in.Func)
		for _, g := range in.Give {
			add(g)
		}
	case *script.GotoLabelInstr:
		add(in.Label)
	case *script.DeleteRuntimeInstr:
		add(in.Target)
	case *script.WaitInstr:
		add(in.Duration)
	case *script.WaitCompletedInstr:
		add(in.Runtime)
	case *script.WaitWhileInstr:
		add(in.Cond)
	case *script.IfInstr:
		add(in.Cond)
	case *script.IfCompareInstr:
		add(in.Left, in.Right)
	case *script.ElseIfInstr:
		add(in.Cond)
	case *script.SwitchInstr:
		add(in.Value)
	case *script.CaseInstr:
		add(in.Value)
	case *script.CaseRangeInstr:
		add(in.Lower, in.Upper)
	case *script.DoWhileInstr:
		add(in.Cond)
	case *script.ReadTableLengthInstr:
		add(in.Table)
	case *script.ReadTableEntryInstr:
		add(in.Table, in.Index)
	case *script.ReadTableEntryToVarInstr:
		add(in.Table, in.Index, in.Var)
	case *script.ReadTableEntriesVec2Instr:
		add(in.Table, in.Index, in.X, in.Y)
	case *script.ReadTableEntriesVec3Instr:
		add(in.Table, in.Index, in.X, in.Y, in.Z)
	case *script.TableGetIndexInstr:
		add(in.Table, in.Occurrence, in.Var)
	case *script.UnknownInstr:
		for _, o := range in.Operands {
			add(o)
		}
	}
	return out
}

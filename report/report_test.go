package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/wippyai/ksm-disasm/container"
	"github.com/wippyai/ksm-disasm/internal/testutil"
	"github.com/wippyai/ksm-disasm/script"
)

func TestFormatValue(t *testing.T) {
	named := &script.Variable{Name: "i", ID: 0x1100, Category: script.LocalVar}
	aliased := &script.Variable{Alias: "16", ID: 0x1000, Category: script.LocalVar}
	str := &script.Variable{ID: 0x200, Category: script.Const, Status: script.StatusStringRef, RefString: "hi"}
	num := &script.Variable{ID: 0x201, Category: script.Const, Ref: 42}
	anon := &script.Variable{ID: 0x300, Category: script.GlobalVar}
	imp := &script.FunctionImport{Name: "evt_print", ID: 0x500}
	call := &script.CallInstr{
		Header: script.Header{Opcode: script.OpCall},
		Func:   imp,
		Args:   []script.Value{&script.Expression{Elements: []script.Value{named}}},
	}

	tests := []struct {
		name string
		v    script.Value
		want string
	}{
		{"named variable", named, "LocalVar:i"},
		{"aliased variable", aliased, "LocalVar:16"},
		{"string constant", str, `"hi"`},
		{"numeric constant", num, "42"},
		{"anonymous variable", anon, "GlobalVar:0x300"},
		{"import", imp, "fn:evt_print"},
		{"anonymous function", &script.FunctionDef{ID: 0x601}, "fn:0x601"},
		{"label", &script.Label{Name: "loop"}, "label:loop"},
		{"anonymous table", &script.Table{ID: 0x400}, "table:0x400"},
		{"raw", script.RawInteger(0x1f), "?0x1f"},
		{"operator", script.Operator{ID: 0x53, Token: "+"}, "+"},
		{"expression", &script.Expression{Elements: []script.Value{named, script.Operator{Token: "+"}, script.RawInteger(1)}}, "LocalVar:i + ?0x1"},
		{"call", call, "Call evt_print ( LocalVar:i )"},
		{"nested call", &script.Expression{Elements: []script.Value{call}}, "( Call evt_print ( LocalVar:i ) )"},
		{"empty expression", &script.Expression{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatValue(tt.v); got != tt.want {
				t.Errorf("FormatValue = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatInstruction(t *testing.T) {
	fn := &script.FunctionDef{Name: "main", ID: 0x600}
	x := &script.Variable{Name: "x", ID: 0x900, Category: script.LocalVar}
	tbl := &script.Table{Name: "t", ID: 0x901}
	h := func(op script.Opcode, c bool) script.Header { return script.Header{Opcode: op, Const: c} }
	expr := func(vs ...script.Value) *script.Expression { return &script.Expression{Elements: vs} }

	tests := []struct {
		name string
		in   script.Instruction
		want string
	}{
		{"set", &script.SetInstr{Header: h(script.OpSet, false), Dest: x, Value: expr(script.RawInteger(1))}, "Set LocalVar:x ( ?0x1 )"},
		{"const set", &script.SetInstr{Header: h(script.OpSet, true), Dest: x, Value: script.RawInteger(1)}, "Set* LocalVar:x ?0x1"},
		{"return value", &script.ReturnValInstr{Header: h(script.OpReturnVal, false), Value: expr(x)}, "ReturnVal ( LocalVar:x )"},
		{"call", &script.CallInstr{Header: h(script.OpCallAsThread, true), Func: fn, Args: []script.Value{x, script.RawInteger(2)}}, "CallAsThread* main ( LocalVar:x, ?0x2 )"},
		{"raw call target", &script.CallInstr{Header: h(script.OpCall, false), Func: script.RawInteger(0x99)}, "Call ?0x99 ( )"},
		{"get args self", &script.GetArgsInstr{Header: h(script.OpGetArgs, false), Func: fn, Params: []script.Symbol{x}}, "GetArgs fn:self ( LocalVar:x )"},
		{"thread", &script.ThreadInstr{Header: h(script.OpThread2, false), Func: &script.FunctionDef{Name: "w"}, Give: []script.Symbol{x}}, "Thread2 fn:w Capture ( LocalVar:x )"},
		{"if compare", &script.IfCompareInstr{Header: h(script.OpIfEqual, false), Left: x, Right: script.RawInteger(3)}, "IfEqual ( LocalVar:x, ?0x3 )"},
		{"case range", &script.CaseRangeInstr{Header: h(script.OpCaseRange, true), Lower: script.RawInteger(1), Upper: script.RawInteger(5)}, "CaseRange* ( ?0x1 to ?0x5 )"},
		{"noop", &script.MarkerInstr{Header: h(script.OpNoop7C, false)}, "Noop_0x7c"},
		{"end if", &script.MarkerInstr{Header: h(script.OpEndIf, false)}, "EndIf"},
		{"table entry", &script.ReadTableEntryInstr{Header: h(script.OpReadTableEntry, false), Table: tbl, Index: x}, "ReadTableEntry ( table:t, LocalVar:x )"},
		{"goto", &script.GotoLabelInstr{Header: h(script.OpGotoLabel, false), Label: &script.Label{ID: 0x10}}, "GotoLabel label:0x10"},
		{"unknown", &script.UnknownInstr{Header: h(0x77, true), Operands: []script.Symbol{script.RawInteger(7)}}, "Unk_0x77* ( ?0x7 )"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatInstruction(fn, tt.in); got != tt.want {
				t.Errorf("FormatInstruction = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBodyNesting(t *testing.T) {
	m := func(op script.Opcode) script.Instruction { return &script.MarkerInstr{Header: script.Header{Opcode: op}} }
	cond := &script.Expression{}
	fn := &script.FunctionDef{Instructions: []script.Instruction{
		&script.IfInstr{Header: script.Header{Opcode: script.OpIf}, Cond: cond},
		m(script.OpNoop),
		&script.ElseInstr{Header: script.Header{Opcode: script.OpElse}},
		&script.SwitchInstr{Header: script.Header{Opcode: script.OpSwitch}, Value: script.RawInteger(1)},
		&script.CaseInstr{Header: script.Header{Opcode: script.OpCase}, Value: script.RawInteger(1)},
		m(script.OpBreakSwitch),
		m(script.OpEndSwitch),
		m(script.OpEndIf),
		m(script.OpEndIf),
		&script.ReturnInstr{Header: script.Header{Opcode: script.OpReturn}},
	}}
	want := []int{0, 1, 0, 1, 1, 1, 1, 0, 0, 0}

	lines := Body(fn)
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d", len(lines), len(want))
	}
	for i, l := range lines {
		if l.Depth != want[i] {
			t.Errorf("line %d (%s) depth = %d, want %d", i, l.Text(), l.Depth, want[i])
		}
	}
}

func program(t *testing.T) *script.Program {
	t.Helper()
	p := &testutil.Program{
		Mystery:    0x55,
		ScriptVars: []testutil.Var{{Name: "gsw", ID: 0x100, Status: 5}, {Name: "gsw2", ID: 0x101, Status: 4}},
		ConstVars:  []testutil.Var{{ID: 0x200, Status: 3, StrRef: "hello"}},
		Tables:     []testutil.Table{{Name: "tbl", ID: 0x400, Flags: 1, Entries: []uint32{1, 2}}},
		Imports:    []testutil.Import{{Name: "evt_print", ID: 0x500, Field: 3, Type: 7}},
		Funcs: []testutil.Func{
			{
				Name:      "main",
				ID:        0x600,
				Public:    1,
				ReturnVar: 0x1000,
				Locals:    []testutil.Var{{ID: 0x1000, Status: 4}, {Name: "i", ID: 0x1100, Status: 4}},
				Labels:    []testutil.Label{{Name: "loop", ID: 0x700, Offset: 2}},
				Code: []uint32{
					0x06, 0x601, 0x08, 0x11, // Thread worker
					0x10c, 0x500, 0x200, 0x11, // Call* evt_print("hello")
					0x09, // Return
					0x09,
				},
			},
			{Name: "worker", ID: 0x601, Code: []uint32{0x02, 0x09}},
			{ID: 0x602},
		},
	}
	c, err := container.Parse(p.Build())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	prog, err := script.Load(c, script.Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	prog.Decode()
	return prog
}

func TestWrite(t *testing.T) {
	prog := program(t)

	var buf bytes.Buffer
	if err := Write(&buf, prog, Options{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"section_0:\n  - 0x55 # unknown\n",
		"  - { id: 0x500, name: evt_print, field_0x4: 3, type: Func }\n",
		"  - name: main\n    id: 0x600\n    is_public: 1\n",
		"    field_0x30: LocalVar:16 # return variable\n",
		"    labels:\n      - name: loop\n        id: 0x700\n        code_offset: 0x2\n",
		"      - Thread fn:worker Capture ( )\n",
		"      -     Call* evt_print ( \"hello\" )\n",
		"      - Return\n",
		"  - name: worker\n",
		"    generated_from_thread: true # used by fn:main\n",
		"    id: 0x602\n",
		"    body: []\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "script_variables:") {
		t.Error("variables listed without Options.Variables")
	}
}

func TestWriteVariables(t *testing.T) {
	prog := program(t)

	var buf bytes.Buffer
	if err := Write(&buf, prog, Options{Variables: true}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"script_variables:\n  - name: gsw\n    id: 0x100\n    status: UserVar # 5\n    flags: 0x0\n    reference_value: 0\n  \n  - name: gsw2\n",
		"const_variables:\n  - name: null\n    id: 0x200\n    status: StringRef # 3\n    flags: 0x0\n    reference_value: hello\n",
		"tables:\n  - name: tbl\n    id: 0x400\n    flags: 0x1\n    entries: [0x1, 0x2]\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestQuote(t *testing.T) {
	tests := []struct{ in, want string }{
		{"plain", "plain"},
		{"a: b", "'a: b'"},
		{"it's", "'it''s'"},
		{"#x", "'#x'"},
		{"", "''"},
		{" pad", "' pad'"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := quote(tt.in); got != tt.want {
				t.Errorf("quote(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatSummary(t *testing.T) {
	got := FormatSummary(script.Summary{Functions: 3, Clean: 2, NoCode: 1})
	want := "3 functions: 2 clean, 0 truncated, 0 malformed, 1 without code, 0 with open thread scopes"
	if got != want {
		t.Errorf("FormatSummary = %q, want %q", got, want)
	}
}

func TestOperandTokens(t *testing.T) {
	x := &script.Variable{Name: "x", Category: script.LocalVar}
	imp := &script.FunctionImport{Name: "f"}
	set := &script.SetInstr{
		Header: script.Header{Opcode: script.OpSet},
		Dest:   x,
		Value: &script.Expression{Elements: []script.Value{
			&script.CallInstr{Header: script.Header{Opcode: script.OpCall}, Func: imp, Args: []script.Value{script.RawInteger(1)}},
			script.Operator{Token: "+"},
			x,
		}},
	}

	var got []string
	for _, v := range Operands(set) {
		got = append(got, Tokens(v)...)
	}
	want := []string{"LocalVar:x", "Call", "f", "(", "?0x1", ")", "+", "LocalVar:x"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("tokens = %q, want %q", got, want)
	}
	if ops := Operands(&script.MarkerInstr{Header: script.Header{Opcode: script.OpEndIf}}); len(ops) != 0 {
		t.Errorf("marker operands = %v", ops)
	}
}

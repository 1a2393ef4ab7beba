package script

import "fmt"

// Opcode is a base opcode with the constant-mode bit cleared.
type Opcode uint32

// Word values with fixed meaning in the instruction stream.
const (
	// ConstFlag marks an instruction whose operands are single resolved
	// values rather than expressions.
	ConstFlag = 0x100

	// TermExpression ends an expression.
	TermExpression = 0x40
	// TermArgs ends an argument list, a Thread give list and unknown
	// instruction operands.
	TermArgs = 0x11
	// TermParams ends a Thread take list and a GetArgs parameter list.
	TermParams = 0x08
	// WordCall inside an expression starts a nested call.
	WordCall = 0x0c
)

// Opcodes
const (
	OpNoop                 Opcode = 0x02
	OpReturnVal            Opcode = 0x03
	OpLabelPoint           Opcode = 0x04
	OpGetArgs              Opcode = 0x05
	OpThread               Opcode = 0x06
	OpThread2              Opcode = 0x07
	OpReturn               Opcode = 0x09
	OpGotoLabel            Opcode = 0x0a
	OpCall                 Opcode = 0x0c
	OpCallAsThread         Opcode = 0x0d
	OpCallAsChildThread    Opcode = 0x0e
	OpDeleteRuntime        Opcode = 0x12
	OpWait                 Opcode = 0x16
	OpWaitMs               Opcode = 0x17
	OpIf                   Opcode = 0x18
	OpIfEqual              Opcode = 0x19
	OpIfNotEqual           Opcode = 0x1d
	OpElse                 Opcode = 0x26
	OpElseIf               Opcode = 0x27
	OpEndIf                Opcode = 0x28
	OpSwitch               Opcode = 0x29
	OpCase                 Opcode = 0x2a
	OpCaseRange            Opcode = 0x30
	OpBreakSwitch          Opcode = 0x37
	OpEndSwitch            Opcode = 0x38
	OpDoWhile              Opcode = 0x39
	OpBreak                Opcode = 0x3a
	OpEndDoWhile           Opcode = 0x3c
	OpSet                  Opcode = 0x3d
	OpReadTableLength      Opcode = 0x67
	OpReadTableEntry       Opcode = 0x68
	OpReadTableEntryToVar  Opcode = 0x69
	OpReadTableEntriesVec2 Opcode = 0x6a
	OpReadTableEntriesVec3 Opcode = 0x6b
	OpTableGetIndex        Opcode = 0x6d
	OpNoop7C               Opcode = 0x7c
	OpNoop7D               Opcode = 0x7d
	OpCallVar              Opcode = 0x80
	OpWaitCompleted        Opcode = 0x89
	OpWaitWhile            Opcode = 0x9f
)

var opcodeNames = map[Opcode]string{
	OpNoop:                 "Noop",
	OpReturnVal:            "ReturnVal",
	OpLabelPoint:           "LabelPoint",
	OpGetArgs:              "GetArgs",
	OpThread:               "Thread",
	OpThread2:              "Thread2",
	OpReturn:               "Return",
	OpGotoLabel:            "GotoLabel",
	OpCall:                 "Call",
	OpCallAsThread:         "CallAsThread",
	OpCallAsChildThread:    "CallAsChildThread",
	OpDeleteRuntime:        "DeleteRuntime",
	OpWait:                 "Wait",
	OpWaitMs:               "WaitMs",
	OpIf:                   "If",
	OpIfEqual:              "IfEqual",
	OpIfNotEqual:           "IfNotEqual",
	OpElse:                 "Else",
	OpElseIf:               "ElseIf",
	OpEndIf:                "EndIf",
	OpSwitch:               "Switch",
	OpCase:                 "Case",
	OpCaseRange:            "CaseRange",
	OpBreakSwitch:          "BreakSwitch",
	OpEndSwitch:            "EndSwitch",
	OpDoWhile:              "DoWhile",
	OpBreak:                "Break",
	OpEndDoWhile:           "EndDoWhile",
	OpSet:                  "Set",
	OpReadTableLength:      "ReadTableLength",
	OpReadTableEntry:       "ReadTableEntry",
	OpReadTableEntryToVar:  "ReadTableEntryToVar",
	OpReadTableEntriesVec2: "ReadTableEntriesVec2",
	OpReadTableEntriesVec3: "ReadTableEntriesVec3",
	OpTableGetIndex:        "TableGetIndex",
	OpNoop7C:               "Noop",
	OpNoop7D:               "Noop",
	OpCallVar:              "CallVar",
	OpWaitCompleted:        "WaitCompleted",
	OpWaitWhile:            "WaitWhile",
}

// String returns the mnemonic, or Unk_0x.. for opcodes without one.
func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Unk_0x%x", uint32(op))
}

// SplitOpcode separates a raw opcode word into its base opcode and the
// constant-mode flag.
func SplitOpcode(word uint32) (Opcode, bool) {
	return Opcode(word &^ ConstFlag), word&ConstFlag != 0
}

// BuiltinOperators are the expression tokens known ahead of any catalog.
var BuiltinOperators = []Operator{
	{ID: 0x3f, Token: "next_function"},
	{ID: 0x41, Token: "("},
	{ID: 0x42, Token: ")"},
	{ID: 0x43, Token: "||"},
	{ID: 0x44, Token: "&&"},
	{ID: 0x45, Token: "|"},
	{ID: 0x46, Token: "&"},
	{ID: 0x47, Token: "^"},
	{ID: 0x48, Token: "<<"},
	{ID: 0x49, Token: ">>"},
	{ID: 0x4a, Token: "=="},
	{ID: 0x4b, Token: "!="},
	{ID: 0x4c, Token: ">"},
	{ID: 0x4d, Token: "<"},
	{ID: 0x4e, Token: ">="},
	{ID: 0x4f, Token: "<="},
	{ID: 0x52, Token: "%"},
	{ID: 0x53, Token: "+"},
	{ID: 0x54, Token: "-"},
	{ID: 0x55, Token: "*"},
	{ID: 0x56, Token: "/"},
}

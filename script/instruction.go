package script

// Header holds what every decoded instruction carries.
type Header struct {
	Opcode Opcode
	Const  bool
	// Offset is the word offset of the opcode within the function's code.
	Offset int
}

// Head returns the header.
func (h Header) Head() Header { return h }

// Instruction is a decoded instruction. The concrete types below form a
// closed set; consumers switch on them.
type Instruction interface {
	Head() Header
}

// Expression is a flat token sequence exactly as encoded. Operator
// precedence is not reconstructed.
type Expression struct {
	Elements []Value
}

func (*Expression) isValue() {}

// MarkerInstr is an instruction without operands: Noop, LabelPoint, EndIf,
// BreakSwitch, EndSwitch, Break and EndDoWhile.
type MarkerInstr struct {
	Header
}

// ReturnInstr ends a function or a Thread/Thread2 body.
type ReturnInstr struct {
	Header
}

// ReturnValInstr stores a function's return value.
type ReturnValInstr struct {
	Header
	Value Value
}

// GetArgsInstr binds a function's parameters.
type GetArgsInstr struct {
	Header
	Func   *FunctionDef
	Params []Symbol
}

// ThreadInstr spawns a script thread (Thread or Thread2). Take holds the
// callee-side ids that receive the Give values.
type ThreadInstr struct {
	Header
	Func Symbol
	Take []uint32
	Give []Symbol
}

// IsThread2 reports whether this is a Thread2 instruction.
func (t *ThreadInstr) IsThread2() bool {
	return t.Opcode == OpThread2
}

// GotoLabelInstr jumps to a label.
type GotoLabelInstr struct {
	Header
	Label Symbol
}

// CallInstr is Call, CallAsThread or CallAsChildThread. Calls also appear
// nested inside expressions.
type CallInstr struct {
	Header
	Func Symbol
	Args []Value
}

func (*CallInstr) isValue() {}

// CallVarInstr calls through a variable.
type CallVarInstr struct {
	Header
	Func Symbol
	Args []Value
}

// DeleteRuntimeInstr deletes a runtime object.
type DeleteRuntimeInstr struct {
	Header
	Target Symbol
}

// WaitInstr is Wait or WaitMs.
type WaitInstr struct {
	Header
	Duration Value
}

// WaitCompletedInstr waits for a runtime to finish.
type WaitCompletedInstr struct {
	Header
	Runtime Value
}

// WaitWhileInstr waits while a condition holds.
type WaitWhileInstr struct {
	Header
	Cond    *Expression
	Unused1 uint32
	Unused2 uint32
}

// IfInstr opens a conditional block.
type IfInstr struct {
	Header
	Cond    *Expression
	Unused1 uint32
	JumpTo  uint32
	Unused2 uint32
}

// IfCompareInstr is IfEqual or IfNotEqual. Both are only decoded when
// experimental opcodes are enabled.
type IfCompareInstr struct {
	Header
	Left   Symbol
	Right  Symbol
	JumpTo uint32
}

// ElseInstr starts an else branch.
type ElseInstr struct {
	Header
	JumpTo uint32
}

// ElseIfInstr starts an else-if branch.
type ElseIfInstr struct {
	Header
	StartFrom uint32
	Unused1   uint32
	Cond      *Expression
	Unused2   uint32
	JumpTo    uint32
	Unused3   uint32
}

// SwitchInstr opens a switch block.
type SwitchInstr struct {
	Header
	Value  Symbol
	Unused uint32
	JumpTo uint32
}

// CaseInstr is one case of a switch.
type CaseInstr struct {
	Header
	Value  Symbol
	JumpTo uint32
}

// CaseRangeInstr matches a value range. The range reading is a guess.
type CaseRangeInstr struct {
	Header
	Lower  Symbol
	Upper  Symbol
	JumpTo uint32
}

// DoWhileInstr opens a loop.
type DoWhileInstr struct {
	Header
	Cond   Value
	JumpTo uint32
}

// SetInstr assigns a value to a variable.
type SetInstr struct {
	Header
	Dest  Symbol
	Value Value
}

// ReadTableLengthInstr reads a table's length.
type ReadTableLengthInstr struct {
	Header
	Table Symbol
}

// ReadTableEntryInstr reads one entry into the implicit result variable.
type ReadTableEntryInstr struct {
	Header
	Table Symbol
	Index Symbol
}

// ReadTableEntryToVarInstr reads one entry into Var.
type ReadTableEntryToVarInstr struct {
	Header
	Table Symbol
	Index Symbol
	Var   *Variable
}

// ReadTableEntriesVec2Instr reads two consecutive entries.
type ReadTableEntriesVec2Instr struct {
	Header
	Table Symbol
	Index Symbol
	X, Y  *Variable
}

// ReadTableEntriesVec3Instr reads three consecutive entries.
type ReadTableEntriesVec3Instr struct {
	Header
	Table   Symbol
	Index   Symbol
	X, Y, Z *Variable
}

// TableGetIndexInstr finds the index of a value's occurrence in a table.
type TableGetIndexInstr struct {
	Header
	Table      Symbol
	Occurrence Symbol
	Var        *Variable
}

// UnknownInstr preserves an opcode without a registered decoder. Operands
// are everything up to the argument terminator.
type UnknownInstr struct {
	Header
	Operands []Symbol
}

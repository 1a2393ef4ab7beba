package script

import "fmt"

// Value is anything an operand slot can hold: a Symbol, an Expression or a
// nested call.
type Value interface {
	isValue()
}

// Symbol is anything a numeric id can resolve to.
type Symbol interface {
	Value
	SymbolID() uint32
}

// VarStatus is the lifecycle code of a variable record.
type VarStatus uint32

// Known variable statuses.
const (
	StatusStringRef     VarStatus = 3
	StatusAlloc         VarStatus = 4
	StatusUserVar       VarStatus = 5
	StatusQueuedFree    VarStatus = 0xd
	StatusUninitialized VarStatus = 0xe
)

var varStatusNames = map[VarStatus]string{
	StatusAlloc:         "Alloc",
	StatusUserVar:       "UserVar",
	StatusQueuedFree:    "QueuedFree",
	StatusUninitialized: "Uninitialized",
}

// Name returns the known name of the status, or "".
func (s VarStatus) Name() string {
	return varStatusNames[s]
}

// VarCategory says which catalog a variable came from.
type VarCategory int

const (
	LocalVar VarCategory = iota
	ScriptVar
	Const
	GlobalVar
)

func (c VarCategory) String() string {
	switch c {
	case LocalVar:
		return "LocalVar"
	case ScriptVar:
		return "ScriptVar"
	case Const:
		return "Const"
	case GlobalVar:
		return "GlobalVar"
	}
	return fmt.Sprintf("VarCategory(%d)", int(c))
}

// Variable is a variable record.
type Variable struct {
	Name     string
	Alias    string
	ID       uint32
	Status   VarStatus
	Flags    uint8
	Category VarCategory
	// Ref is the raw reference value. When Status is StatusStringRef the
	// value is the inline string in RefString instead.
	Ref       uint32
	RefString string
}

// HasStringRef reports whether the reference value is an inline string.
func (v *Variable) HasStringRef() bool {
	return v.Status == StatusStringRef
}

// Table is an array/table record.
type Table struct {
	Name    string
	Alias   string
	ID      uint32
	Flags   uint32
	Entries []uint32
}

// Label is a jump target inside a function.
type Label struct {
	Name       string
	Alias      string
	ID         uint32
	CodeOffset uint32
}

// ImportType is the kind tag of a function import.
type ImportType uint32

const (
	ImportLocalVar  ImportType = 0
	ImportScriptVar ImportType = 1
	ImportUnk1      ImportType = 2
	ImportTable     ImportType = 3
	ImportLabel     ImportType = 4
	ImportUnk2      ImportType = 5
	ImportFunc      ImportType = 7
)

var importTypeNames = map[ImportType]string{
	ImportLocalVar:  "LocalVar",
	ImportScriptVar: "ScriptVar",
	ImportUnk1:      "Unk1",
	ImportTable:     "Table",
	ImportLabel:     "Label",
	ImportUnk2:      "Unk2",
	ImportFunc:      "Func",
}

// Valid reports whether t is a known import type.
func (t ImportType) Valid() bool {
	_, ok := importTypeNames[t]
	return ok
}

func (t ImportType) String() string {
	if name, ok := importTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ImportType(%d)", uint32(t))
}

// FunctionImport is an externally resolved reference.
type FunctionImport struct {
	Name  string
	Alias string
	ID    uint32
	Field uint16
	Type  ImportType
}

// Status is the outcome of decoding one function body.
type Status int

const (
	StatusPending Status = iota
	StatusNoCode
	StatusClean
	StatusTruncated
	StatusMalformed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusNoCode:
		return "no_code"
	case StatusClean:
		return "clean"
	case StatusTruncated:
		return "truncated"
	case StatusMalformed:
		return "malformed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// FunctionDef is a function definition. Definitions live in the Program's
// arena and are addressed by Index; back-references store arena indices.
type FunctionDef struct {
	Index   int
	Name    string
	Alias   string
	ID      uint32
	Public  uint32
	Field0C uint32
	// ReturnVar looks like the id of the variable receiving the function's
	// return value.
	ReturnVar uint32
	Field34   uint32

	// CodeStart and CodeEnd are the raw word bounds from the record.
	CodeStart uint32
	CodeEnd   uint32
	// Code is this function's window into the code section.
	Code []byte

	Locals []*Variable
	Tables []*Table
	Labels []*Label

	Instructions []Instruction
	Status       Status
	Err          error
	// OpenScopes counts Thread/Thread2 scopes still open at the end of
	// the body.
	OpenScopes int

	ThreadRefs  []int
	Thread2Refs []int
}

// Local returns the local variable with the given id.
func (f *FunctionDef) Local(id uint32) (*Variable, bool) {
	for _, v := range f.Locals {
		if v.ID == id {
			return v, true
		}
	}
	return nil, false
}

func (f *FunctionDef) String() string {
	if name := pick(f.Name, f.Alias); name != "" {
		return name
	}
	return fmt.Sprintf("fn_0x%x", f.ID)
}

// Operator is an expression token such as "+" or "==".
type Operator struct {
	ID    uint32
	Token string
}

// RawInteger is an id or literal that resolved to nothing.
type RawInteger uint32

func (v *Variable) SymbolID() uint32       { return v.ID }
func (t *Table) SymbolID() uint32          { return t.ID }
func (l *Label) SymbolID() uint32          { return l.ID }
func (f *FunctionImport) SymbolID() uint32 { return f.ID }
func (f *FunctionDef) SymbolID() uint32    { return f.ID }
func (o Operator) SymbolID() uint32        { return o.ID }
func (r RawInteger) SymbolID() uint32      { return uint32(r) }

func (*Variable) isValue()       {}
func (*Table) isValue()          {}
func (*Label) isValue()          {}
func (*FunctionImport) isValue() {}
func (*FunctionDef) isValue()    {}
func (Operator) isValue()        {}
func (RawInteger) isValue()      {}

// DisplayName returns the name, falling back to the alias.
func DisplayName(s Symbol) string {
	switch s := s.(type) {
	case *Variable:
		return pick(s.Name, s.Alias)
	case *Table:
		return pick(s.Name, s.Alias)
	case *Label:
		return pick(s.Name, s.Alias)
	case *FunctionImport:
		return pick(s.Name, s.Alias)
	case *FunctionDef:
		return pick(s.Name, s.Alias)
	case Operator:
		return s.Token
	}
	return ""
}

func pick(name, alias string) string {
	if name != "" {
		return name
	}
	return alias
}

// KindName returns a short lowercase name for the kind of a value.
func KindName(v Value) string {
	switch v.(type) {
	case *Variable:
		return "variable"
	case *Table:
		return "table"
	case *Label:
		return "label"
	case *FunctionImport:
		return "import"
	case *FunctionDef:
		return "function"
	case Operator:
		return "operator"
	case RawInteger:
		return "raw integer"
	case *Expression:
		return "expression"
	case *CallInstr:
		return "call"
	}
	return fmt.Sprintf("%T", v)
}

// Package testutil assembles KSMR containers and catalog records for tests.
package testutil

import (
	"encoding/binary"

	kbin "github.com/wippyai/ksm-disasm/internal/binary"
)

// NameMarker flags a record that carries an embedded name.
const NameMarker = 0xffffffff

// Var describes a variable record.
type Var struct {
	Name   string
	ID     uint32
	Status uint32
	Flags  uint8
	Ref    uint32
	// StrRef is written inline when Status is 3.
	StrRef string
}

// Table describes a table record.
type Table struct {
	Name    string
	ID      uint32
	Flags   uint32
	Entries []uint32
}

// Label describes a label record.
type Label struct {
	Name   string
	ID     uint32
	Offset uint32
}

// Import describes a function import record.
type Import struct {
	Name  string
	ID    uint32
	Field uint16
	Type  uint32
}

// Func describes a function definition record. Code is appended to the code
// section; the record's bounds are computed from its placement.
type Func struct {
	Name      string
	ID        uint32
	Public    uint32
	Field0C   uint32
	ReturnVar uint32
	Field34   uint32
	Code      []uint32
	Locals    []Var
	Tables    []Table
	Labels    []Label
}

// Program collects catalog records and builds a complete container.
type Program struct {
	Mystery       uint32
	ScriptVars    []Var
	ConstVars     []Var
	GlobalVars    []Var
	Tables        []Table
	Imports       []Import
	Funcs         []Func
	Reserved      uint32
	TrailingBytes []byte
}

func name(w *kbin.Writer, s string) {
	if s == "" {
		return
	}
	w.String(s)
}

func marker(s string) uint32 {
	if s == "" {
		return 0
	}
	return NameMarker
}

// WriteVar writes one variable record.
func WriteVar(w *kbin.Writer, v Var) {
	w.Words(marker(v.Name), v.ID, uint32(v.Flags)<<24|v.Status&0xffffff, v.Ref)
	name(w, v.Name)
	if v.Status == 3 {
		w.String(v.StrRef)
	}
}

// WriteTable writes one table record.
func WriteTable(w *kbin.Writer, t Table) {
	w.Words(marker(t.Name), t.ID, t.Flags, uint32(len(t.Entries)))
	name(w, t.Name)
	w.Words(t.Entries...)
}

// WriteLabel writes one label record.
func WriteLabel(w *kbin.Writer, l Label) {
	w.Words(marker(l.Name), l.ID, l.Offset)
	name(w, l.Name)
}

// WriteImport writes one import record.
func WriteImport(w *kbin.Writer, im Import) {
	w.Words(marker(im.Name), uint32(im.Field), im.Type, 0, im.ID, 0, 0)
	name(w, im.Name)
}

// Vars writes a count-prefixed variable list.
func Vars(vs []Var) []byte {
	w := kbin.NewWriter()
	w.Word(uint32(len(vs)))
	for _, v := range vs {
		WriteVar(w, v)
	}
	return w.Bytes()
}

// Tables writes a count-prefixed table list.
func Tables(ts []Table) []byte {
	w := kbin.NewWriter()
	w.Word(uint32(len(ts)))
	for _, t := range ts {
		WriteTable(w, t)
	}
	return w.Bytes()
}

// Imports writes a count-prefixed import list.
func Imports(ims []Import) []byte {
	w := kbin.NewWriter()
	w.Word(uint32(len(ims)))
	for _, im := range ims {
		WriteImport(w, im)
	}
	return w.Bytes()
}

// Functions writes the function definition section and the code section.
// Each body is preceded by one marker word in the code section.
func Functions(fns []Func) (defs, code []byte) {
	dw := kbin.NewWriter()
	cw := kbin.NewWriter()
	dw.Word(uint32(len(fns)))
	for _, fn := range fns {
		start := uint32(cw.Len())
		cw.Word(0)
		cw.Words(fn.Code...)
		end := uint32(cw.Len()) - 1

		dw.Words(marker(fn.Name), fn.ID, fn.Public, fn.Field0C, start, end, fn.ReturnVar, fn.Field34)
		name(dw, fn.Name)

		dw.Word(uint32(len(fn.Locals)))
		for _, v := range fn.Locals {
			WriteVar(dw, v)
		}
		dw.Word(uint32(len(fn.Tables)))
		for _, t := range fn.Tables {
			WriteTable(dw, t)
		}
		dw.Word(uint32(len(fn.Labels)))
		for _, l := range fn.Labels {
			WriteLabel(dw, l)
		}
	}
	return dw.Bytes(), cw.Bytes()
}

// Build assembles the program into a container.
func (p *Program) Build() []byte {
	info := kbin.NewWriter()
	info.Words(0, 0, p.Mystery)
	defs, code := Functions(p.Funcs)

	var sections [8][]byte
	sections[0] = info.Bytes()
	sections[1] = defs
	sections[2] = Vars(p.ScriptVars)
	sections[3] = Tables(p.Tables)
	sections[4] = Vars(p.ConstVars)
	sections[5] = Imports(p.Imports)
	sections[6] = Vars(p.GlobalVars)
	sections[7] = code

	out := Container(sections, p.Reserved)
	return append(out, p.TrailingBytes...)
}

// Container lays out sections after a KSMR header.
func Container(sections [8][]byte, reserved uint32) []byte {
	out := make([]byte, 0x2c)
	copy(out, "KSMR")
	binary.LittleEndian.PutUint32(out[4:], 0x10300)
	offset := uint32(0x2c / 4)
	for i, s := range sections {
		binary.LittleEndian.PutUint32(out[8+i*4:], offset)
		offset += uint32(len(s) / 4)
		out = append(out, s...)
	}
	binary.LittleEndian.PutUint32(out[40:], reserved)
	return out
}

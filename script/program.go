package script

import (
	"sort"

	"go.uber.org/zap"

	"github.com/wippyai/ksm-disasm/container"
)

// Options configures Load.
type Options struct {
	// Experimental enables decoders for unconfirmed opcodes.
	Experimental bool
	// Operators adds expression tokens, replacing built-in ones with the
	// same id.
	Operators map[uint32]string
	// Aliases names anonymous variables, tables, labels, imports and
	// functions by id.
	Aliases map[uint32]string
}

// Program holds the catalogs of one container and the function arena.
// Functions are addressed by their Index; back-references are indices into
// Functions.
type Program struct {
	// Info is the unexplained value of section 0.
	Info uint32

	ScriptVars []*Variable
	ConstVars  []*Variable
	GlobalVars []*Variable
	Tables     []*Table
	Imports    []*FunctionImport
	Functions  []*FunctionDef

	// Globals resolves operators and every catalog entry. It is not
	// modified by decoding; each function decodes against a copy.
	Globals *SymbolTable

	opts Options
}

// Load reads every catalog of c and builds the global symbol table. No
// instructions are decoded yet.
func Load(c *container.Container, opts Options) (*Program, error) {
	p := &Program{opts: opts}

	info, err := c.Info()
	if err != nil {
		Logger().Warn("unexpected info section", zap.Error(err))
	}
	p.Info = info
	if c.Header.Reserved != 0 {
		Logger().Debug("reserved header field set", zap.Uint32("value", c.Header.Reserved))
	}

	if p.ScriptVars, err = ReadVariables(c.Section(container.SectionScriptVariables), ScriptVar); err != nil {
		return nil, err
	}
	if p.ConstVars, err = ReadVariables(c.Section(container.SectionConstVariables), Const); err != nil {
		return nil, err
	}
	if p.GlobalVars, err = ReadVariables(c.Section(container.SectionGlobalVariables), GlobalVar); err != nil {
		return nil, err
	}
	if p.Tables, err = ReadTables(c.Section(container.SectionTables)); err != nil {
		return nil, err
	}
	if p.Imports, err = ReadImports(c.Section(container.SectionImports)); err != nil {
		return nil, err
	}
	if p.Functions, err = ReadFunctionDefs(c.Section(container.SectionFunctionDefs), c.Section(container.SectionCode)); err != nil {
		return nil, err
	}

	p.applyAliases()
	p.Globals = p.globals()

	Logger().Debug("program loaded",
		zap.Int("functions", len(p.Functions)),
		zap.Int("imports", len(p.Imports)),
		zap.Int("tables", len(p.Tables)),
		zap.Int("variables", len(p.ScriptVars)+len(p.ConstVars)+len(p.GlobalVars)))
	return p, nil
}

// globals registers operators in their own outer scope, then catalogs in
// one scope on top: variables of sections 2, 4 and 6, tables, imports and
// function definitions. A later entry replaces an earlier one with the
// same id.
func (p *Program) globals() *SymbolTable {
	t := NewSymbolTable()
	for _, op := range BuiltinOperators {
		t.Add(op)
	}
	for _, id := range sortedKeys(p.opts.Operators) {
		t.Add(Operator{ID: id, Token: p.opts.Operators[id]})
	}

	t.Push()
	for _, vars := range [][]*Variable{p.ScriptVars, p.ConstVars, p.GlobalVars} {
		for _, v := range vars {
			t.Add(v)
		}
	}
	for _, tb := range p.Tables {
		t.Add(tb)
	}
	for _, im := range p.Imports {
		t.Add(im)
	}
	for _, fn := range p.Functions {
		t.Add(fn)
	}
	return t
}

func (p *Program) applyAliases() {
	if len(p.opts.Aliases) == 0 {
		return
	}
	alias := func(name string, id uint32, dst *string) {
		if name != "" {
			return
		}
		if a, ok := p.opts.Aliases[id]; ok {
			*dst = a
		}
	}
	for _, vars := range [][]*Variable{p.ScriptVars, p.ConstVars, p.GlobalVars} {
		for _, v := range vars {
			alias(v.Name, v.ID, &v.Alias)
		}
	}
	for _, t := range p.Tables {
		alias(t.Name, t.ID, &t.Alias)
	}
	for _, im := range p.Imports {
		alias(im.Name, im.ID, &im.Alias)
	}
	for _, fn := range p.Functions {
		alias(fn.Name, fn.ID, &fn.Alias)
		for _, v := range fn.Locals {
			alias(v.Name, v.ID, &v.Alias)
		}
		for _, t := range fn.Tables {
			alias(t.Name, t.ID, &t.Alias)
		}
		for _, l := range fn.Labels {
			alias(l.Name, l.ID, &l.Alias)
		}
	}
}

// Decode decodes every function in arena order and rebuilds the thread
// back-references.
func (p *Program) Decode() {
	for _, fn := range p.Functions {
		fn.ThreadRefs = nil
		fn.Thread2Refs = nil
	}
	for _, fn := range p.Functions {
		p.DecodeFunction(fn)
	}
}

// DecodeFunction decodes one function against a private copy of the
// globals with the function's locals, tables and labels in a scope of their
// own. Thread and Thread2 targets in the result gain a back-reference to
// fn; calling it twice for the same function records them twice.
func (p *Program) DecodeFunction(fn *FunctionDef) {
	fn.Instructions = nil
	fn.Err = nil
	fn.OpenScopes = 0
	if len(fn.Code) == 0 {
		fn.Status = StatusNoCode
		return
	}

	syms := p.Globals.Copy()
	syms.Push()
	for _, v := range fn.Locals {
		syms.Add(v)
	}
	for _, t := range fn.Tables {
		syms.Add(t)
	}
	for _, l := range fn.Labels {
		syms.Add(l)
	}

	res := DecodeInstructions(fn.Code, syms, DecodeOptions{
		Name:         fn.String(),
		Experimental: p.opts.Experimental,
	})
	fn.Instructions = res.Instructions
	fn.Status = res.Status
	fn.Err = res.Err
	fn.OpenScopes = res.OpenScopes
	p.link(fn)

	Logger().Debug("function decoded",
		zap.String("function", fn.String()),
		zap.Stringer("status", fn.Status),
		zap.Int("instructions", len(fn.Instructions)))
}

// Summary counts functions per decode status.
type Summary struct {
	Functions int
	NoCode    int
	Clean     int
	Truncated int
	Malformed int
	// OpenScopes counts functions that ended with Thread scopes open.
	OpenScopes int
}

// Summary reports the decode outcome of every function.
func (p *Program) Summary() Summary {
	s := Summary{Functions: len(p.Functions)}
	for _, fn := range p.Functions {
		switch fn.Status {
		case StatusNoCode:
			s.NoCode++
		case StatusClean:
			s.Clean++
		case StatusTruncated:
			s.Truncated++
		case StatusMalformed:
			s.Malformed++
		}
		if fn.OpenScopes > 0 {
			s.OpenScopes++
		}
	}
	return s
}

func sortedKeys(m map[uint32]string) []uint32 {
	keys := make([]uint32, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

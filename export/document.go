package export

import (
	"github.com/wippyai/ksm-disasm/report"
	"github.com/wippyai/ksm-disasm/script"
)

// Document is the flat form of a decoded program.
type Document struct {
	Info      uint32     `cbor:"1,keyasint"`
	Imports   []Import   `cbor:"2,keyasint"`
	Functions []Function `cbor:"3,keyasint"`
	Summary   Summary    `cbor:"4,keyasint"`
}

// Import is a function import record.
type Import struct {
	ID    uint32 `cbor:"1,keyasint"`
	Name  string `cbor:"2,keyasint,omitempty"`
	Field uint16 `cbor:"3,keyasint"`
	Type  string `cbor:"4,keyasint"`
}

// Function is one function definition with its decoded body.
type Function struct {
	Index  int    `cbor:"1,keyasint"`
	ID     uint32 `cbor:"2,keyasint"`
	Name   string `cbor:"3,keyasint,omitempty"`
	Public uint32 `cbor:"4,keyasint"`
	Status string `cbor:"5,keyasint"`
	Error  string `cbor:"6,keyasint,omitempty"`
	// OpenScopes counts Thread scopes left open at the end of the body.
	OpenScopes   int           `cbor:"7,keyasint,omitempty"`
	ThreadRefs   []string      `cbor:"8,keyasint,omitempty"`
	Thread2Refs  []string      `cbor:"9,keyasint,omitempty"`
	Instructions []Instruction `cbor:"10,keyasint,omitempty"`
}

// Instruction is one decoded instruction.
type Instruction struct {
	Offset int    `cbor:"1,keyasint"`
	Opcode uint32 `cbor:"2,keyasint"`
	Const  bool   `cbor:"3,keyasint,omitempty"`
	Depth  int    `cbor:"4,keyasint,omitempty"`
	Text   string `cbor:"5,keyasint"`
	// Tokens lists the operands flattened in encoding order.
	Tokens []string `cbor:"6,keyasint,omitempty"`
}

// Summary counts functions per decode status.
type Summary struct {
	Functions  int `cbor:"1,keyasint"`
	NoCode     int `cbor:"2,keyasint"`
	Clean      int `cbor:"3,keyasint"`
	Truncated  int `cbor:"4,keyasint"`
	Malformed  int `cbor:"5,keyasint"`
	OpenScopes int `cbor:"6,keyasint"`
}

// NewDocument flattens a decoded program.
func NewDocument(p *script.Program) *Document {
	s := p.Summary()
	doc := &Document{
		Info:      p.Info,
		Imports:   make([]Import, 0, len(p.Imports)),
		Functions: make([]Function, 0, len(p.Functions)),
		Summary: Summary{
			Functions:  s.Functions,
			NoCode:     s.NoCode,
			Clean:      s.Clean,
			Truncated:  s.Truncated,
			Malformed:  s.Malformed,
			OpenScopes: s.OpenScopes,
		},
	}
	for _, im := range p.Imports {
		doc.Imports = append(doc.Imports, Import{
			ID:    im.ID,
			Name:  script.DisplayName(im),
			Field: im.Field,
			Type:  im.Type.String(),
		})
	}
	for _, fn := range p.Functions {
		doc.Functions = append(doc.Functions, function(p, fn))
	}
	return doc
}

func function(p *script.Program, fn *script.FunctionDef) Function {
	f := Function{
		Index:       fn.Index,
		ID:          fn.ID,
		Name:        script.DisplayName(fn),
		Public:      fn.Public,
		Status:      fn.Status.String(),
		OpenScopes:  fn.OpenScopes,
		ThreadRefs:  names(p.Spawners(fn.ThreadRefs)),
		Thread2Refs: names(p.Spawners(fn.Thread2Refs)),
	}
	if fn.Err != nil {
		f.Error = fn.Err.Error()
	}
	lines := report.Body(fn)
	for i, in := range fn.Instructions {
		h := in.Head()
		var tokens []string
		for _, v := range report.Operands(in) {
			tokens = append(tokens, report.Tokens(v)...)
		}
		f.Instructions = append(f.Instructions, Instruction{
			Offset: h.Offset,
			Opcode: uint32(h.Opcode),
			Const:  h.Const,
			Depth:  lines[i].Depth,
			Text:   lines[i].Text(),
			Tokens: tokens,
		})
	}
	return f
}

func names(fns []*script.FunctionDef) []string {
	if len(fns) == 0 {
		return nil
	}
	out := make([]string, len(fns))
	for i, fn := range fns {
		out[i] = fn.String()
	}
	return out
}

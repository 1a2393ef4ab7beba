package script

import "github.com/wippyai/ksm-disasm/errors"

// SymbolTable resolves numeric ids through a stack of scopes. Lookup walks
// from the innermost scope outwards; ids nobody registered resolve to
// RawInteger.
type SymbolTable struct {
	layers []map[uint32]Symbol
}

// NewSymbolTable creates a table with one empty scope.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{layers: []map[uint32]Symbol{{}}}
}

// Add registers s in the innermost scope, replacing any entry with the same
// id in that scope. A table with no scopes gets a fresh one.
func (t *SymbolTable) Add(s Symbol) {
	if len(t.layers) == 0 {
		t.Push()
	}
	t.layers[len(t.layers)-1][s.SymbolID()] = s
}

// Lookup finds the innermost symbol registered under id.
func (t *SymbolTable) Lookup(id uint32) (Symbol, bool) {
	for i := len(t.layers) - 1; i >= 0; i-- {
		if s, ok := t.layers[i][id]; ok {
			return s, true
		}
	}
	return nil, false
}

// Get resolves id. It never fails: unknown ids come back as RawInteger.
func (t *SymbolTable) Get(id uint32) Symbol {
	if s, ok := t.Lookup(id); ok {
		return s
	}
	return RawInteger(id)
}

// Push opens a new innermost scope.
func (t *SymbolTable) Push() {
	t.layers = append(t.layers, map[uint32]Symbol{})
}

// Pop discards the innermost scope.
func (t *SymbolTable) Pop() error {
	if len(t.layers) == 0 {
		return errors.UnbalancedScope(-1)
	}
	t.layers[len(t.layers)-1] = nil
	t.layers = t.layers[:len(t.layers)-1]
	return nil
}

// Depth returns the number of scopes.
func (t *SymbolTable) Depth() int {
	return len(t.layers)
}

// Copy returns a table with the same scopes that can be pushed, popped and
// added to without affecting t. Symbols themselves are shared.
func (t *SymbolTable) Copy() *SymbolTable {
	layers := make([]map[uint32]Symbol, len(t.layers))
	for i, layer := range t.layers {
		m := make(map[uint32]Symbol, len(layer))
		for id, s := range layer {
			m[id] = s
		}
		layers[i] = m
	}
	return &SymbolTable{layers: layers}
}

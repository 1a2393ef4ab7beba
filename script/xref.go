package script

// link records fn as the spawner of every other arena function its Thread
// and Thread2 instructions target.
func (p *Program) link(fn *FunctionDef) {
	for _, instr := range fn.Instructions {
		t, ok := instr.(*ThreadInstr)
		if !ok {
			continue
		}
		target, ok := t.Func.(*FunctionDef)
		if !ok || target == fn || !p.owns(target) {
			continue
		}
		if t.IsThread2() {
			target.Thread2Refs = append(target.Thread2Refs, fn.Index)
		} else {
			target.ThreadRefs = append(target.ThreadRefs, fn.Index)
		}
	}
}

func (p *Program) owns(fn *FunctionDef) bool {
	return fn.Index >= 0 && fn.Index < len(p.Functions) && p.Functions[fn.Index] == fn
}

// ThreadOrigin reports whether fn looks like a compiler-generated thread
// body: referenced by exactly one Thread and no Thread2, or by exactly one
// Thread2 and no Thread. It returns the arena index of the spawning function
// and the spawning opcode.
func ThreadOrigin(fn *FunctionDef) (source int, op Opcode, ok bool) {
	switch {
	case len(fn.ThreadRefs) == 1 && len(fn.Thread2Refs) == 0:
		return fn.ThreadRefs[0], OpThread, true
	case len(fn.ThreadRefs) == 0 && len(fn.Thread2Refs) == 1:
		return fn.Thread2Refs[0], OpThread2, true
	}
	return -1, 0, false
}

// Spawners resolves a list of back-reference indices.
func (p *Program) Spawners(refs []int) []*FunctionDef {
	out := make([]*FunctionDef, 0, len(refs))
	for _, i := range refs {
		if i >= 0 && i < len(p.Functions) {
			out = append(out, p.Functions[i])
		}
	}
	return out
}

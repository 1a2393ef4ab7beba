package script

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/ksm-disasm/errors"
	"github.com/wippyai/ksm-disasm/internal/binary"
)

// DecodeOptions configures DecodeInstructions.
type DecodeOptions struct {
	// Name labels error paths and log entries, usually the function name.
	Name string
	// Experimental registers decoders for IfEqual and IfNotEqual, whose
	// layout has only been seen in a single script.
	Experimental bool
}

// Result is the outcome of decoding one code slice.
type Result struct {
	Instructions []Instruction
	Status       Status
	// Err is set when Status is StatusMalformed.
	Err error
	// OpenScopes is the number of Thread/Thread2 scopes still open when
	// decoding stopped.
	OpenScopes int
}

type decodeFunc func(d *decoder, h Header) (Instruction, error)

type opcodeInfo struct {
	decode decodeFunc
	// constOK permits the constant-mode bit on this opcode.
	constOK bool
}

var opcodeTable = map[Opcode]opcodeInfo{
	OpNoop:                 {decodeMarker, false},
	OpReturnVal:            {decodeReturnVal, true},
	OpLabelPoint:           {decodeMarker, false},
	OpGetArgs:              {decodeGetArgs, false},
	OpThread:               {decodeThread, false},
	OpThread2:              {decodeThread, false},
	OpReturn:               {decodeReturn, false},
	OpGotoLabel:            {decodeGotoLabel, false},
	OpCall:                 {decodeCall, true},
	OpCallAsThread:         {decodeCall, true},
	OpCallAsChildThread:    {decodeCall, true},
	OpDeleteRuntime:        {decodeDeleteRuntime, true},
	OpWait:                 {decodeWait, true},
	OpWaitMs:               {decodeWait, true},
	OpIf:                   {decodeIf, false},
	OpElse:                 {decodeElse, false},
	OpElseIf:               {decodeElseIf, false},
	OpEndIf:                {decodeMarker, false},
	OpSwitch:               {decodeSwitch, false},
	OpCase:                 {decodeCase, true},
	OpCaseRange:            {decodeCaseRange, true},
	OpBreakSwitch:          {decodeMarker, false},
	OpEndSwitch:            {decodeMarker, false},
	OpDoWhile:              {decodeDoWhile, true},
	OpBreak:                {decodeMarker, false},
	OpEndDoWhile:           {decodeMarker, false},
	OpSet:                  {decodeSet, true},
	OpReadTableLength:      {decodeReadTableLength, false},
	OpReadTableEntry:       {decodeReadTableEntry, false},
	OpReadTableEntryToVar:  {decodeReadTableEntryToVar, false},
	OpReadTableEntriesVec2: {decodeReadTableEntriesVec2, false},
	OpReadTableEntriesVec3: {decodeReadTableEntriesVec3, false},
	OpTableGetIndex:        {decodeTableGetIndex, false},
	OpNoop7C:               {decodeMarker, false},
	OpNoop7D:               {decodeMarker, false},
	OpCallVar:              {decodeCallVar, true},
	OpWaitCompleted:        {decodeWaitCompleted, true},
	OpWaitWhile:            {decodeWaitWhile, false},
}

var experimentalOpcodes = map[Opcode]opcodeInfo{
	OpIfEqual:    {decodeIfCompare, false},
	OpIfNotEqual: {decodeIfCompare, false},
}

// Known reports whether op has a registered decoder.
func Known(op Opcode, experimental bool) bool {
	if _, ok := opcodeTable[op]; ok {
		return true
	}
	if experimental {
		_, ok := experimentalOpcodes[op]
		return ok
	}
	return false
}

type decoder struct {
	cur          *binary.Cursor
	syms         *SymbolTable
	name         string
	experimental bool
	// floor is the scope depth at entry. Return pops only above it.
	floor int
}

// DecodeInstructions decodes a code slice using syms for id resolution.
// Thread and Thread2 push scopes onto syms and Return pops them, so callers
// pass a table they own.
//
// Running out of words between instructions ends the slice cleanly; running
// out inside one drops it and reports StatusTruncated. Operand kind and
// encoding errors stop decoding with StatusMalformed. In every case the
// instructions decoded so far are kept.
func DecodeInstructions(code []byte, syms *SymbolTable, opts DecodeOptions) Result {
	d := &decoder{
		cur:          binary.NewCursor(code, errors.PhaseDecode),
		syms:         syms,
		name:         opts.Name,
		experimental: opts.Experimental,
		floor:        syms.Depth(),
	}

	res := Result{Instructions: make([]Instruction, 0, d.cur.Remaining()/2)}
	for d.cur.Remaining() > 0 {
		start := d.cur.Index()
		instr, err := d.next()
		if err != nil {
			if errors.KindOf(err) == errors.KindExhausted {
				res.Status = StatusTruncated
				Logger().Warn("truncated instruction dropped",
					zap.String("function", d.name),
					zap.Int("offset", start))
			} else {
				res.Status = StatusMalformed
				res.Err = err
				Logger().Warn("decode stopped",
					zap.String("function", d.name),
					zap.Int("offset", start),
					zap.Error(err))
			}
			break
		}
		res.Instructions = append(res.Instructions, instr)
	}
	if res.Status == StatusPending {
		res.Status = StatusClean
	}

	res.OpenScopes = syms.Depth() - d.floor
	if res.OpenScopes > 0 {
		Logger().Warn("thread scopes left open",
			zap.String("function", d.name),
			zap.Int("depth", res.OpenScopes))
	}
	return res
}

func (d *decoder) next() (Instruction, error) {
	offset := d.cur.Index()
	w, err := d.cur.Next()
	if err != nil {
		return nil, err
	}
	op, isConst := SplitOpcode(w)
	h := Header{Opcode: op, Const: isConst, Offset: offset}

	info, ok := opcodeTable[op]
	if !ok && d.experimental {
		info, ok = experimentalOpcodes[op]
	}
	if !ok {
		Logger().Debug("unknown opcode",
			zap.String("function", d.name),
			zap.Stringer("opcode", op),
			zap.Int("offset", offset))
		return decodeUnknown(d, h)
	}
	if isConst && !info.constOK {
		return nil, errors.FormatViolation(d.path(op, ""), offset,
			fmt.Sprintf("%s does not take the constant-mode flag", op))
	}
	return info.decode(d, h)
}

func (d *decoder) path(op Opcode, slot string) []string {
	p := make([]string, 0, 3)
	if d.name != "" {
		p = append(p, "fn:"+d.name)
	}
	p = append(p, op.String())
	if slot != "" {
		p = append(p, slot)
	}
	return p
}

// malformed reports that the operand just read resolved to the wrong kind.
func (d *decoder) malformed(h Header, slot, want string, got Symbol) error {
	return errors.MalformedEntity(d.path(h.Opcode, slot), d.cur.Index()-1, want,
		fmt.Sprintf("%s 0x%x", KindName(got), got.SymbolID()))
}

func (d *decoder) symbol() (Symbol, error) {
	w, err := d.cur.Next()
	if err != nil {
		return nil, err
	}
	return d.syms.Get(w), nil
}

func (d *decoder) varOrRaw(h Header, slot string) (Symbol, error) {
	s, err := d.symbol()
	if err != nil {
		return nil, err
	}
	switch s.(type) {
	case *Variable, RawInteger:
		return s, nil
	}
	return nil, d.malformed(h, slot, "variable or raw integer", s)
}

// constValue reads a constant-mode value. A bare TermExpression encodes an
// empty expression.
func (d *decoder) constValue(h Header, slot string) (Value, error) {
	s, err := d.varOrRaw(h, slot)
	if err != nil {
		return nil, err
	}
	if s == RawInteger(TermExpression) {
		return &Expression{}, nil
	}
	return s, nil
}

func (d *decoder) variable(h Header, slot string) (*Variable, error) {
	s, err := d.symbol()
	if err != nil {
		return nil, err
	}
	v, ok := s.(*Variable)
	if !ok {
		return nil, d.malformed(h, slot, "variable", s)
	}
	return v, nil
}

func (d *decoder) table(h Header) (Symbol, error) {
	s, err := d.symbol()
	if err != nil {
		return nil, err
	}
	switch t := s.(type) {
	case *Table:
		return s, nil
	case RawInteger:
		Logger().Debug("raw table operand accepted",
			zap.String("function", d.name),
			zap.Uint32("id", uint32(t)),
			zap.Int("offset", d.cur.Index()-1))
		return s, nil
	case *FunctionImport:
		if t.Type == ImportTable {
			return s, nil
		}
	}
	return nil, d.malformed(h, "table", "table", s)
}

// valueOrExpression reads one constant-mode value or an unseeded expression.
func (d *decoder) valueOrExpression(h Header, slot string) (Value, error) {
	if h.Const {
		return d.varOrRaw(h, slot)
	}
	return d.readExpression()
}

func (d *decoder) words(n int) ([]uint32, error) {
	out := make([]uint32, n)
	for i := range out {
		w, err := d.cur.Next()
		if err != nil {
			return nil, err
		}
		out[i] = w
	}
	return out, nil
}

func (d *decoder) readCall(h Header) (*CallInstr, error) {
	fn, err := d.symbol()
	if err != nil {
		return nil, err
	}
	switch fn.(type) {
	case *FunctionImport, *FunctionDef, RawInteger:
	default:
		return nil, d.malformed(h, "function", "function or raw integer", fn)
	}
	args, err := d.readArgs(h)
	if err != nil {
		return nil, err
	}
	return &CallInstr{Header: h, Func: fn, Args: args}, nil
}

// readArgs reads call arguments up to TermArgs. In constant mode every
// argument is one resolved word, otherwise an expression seeded by its first
// word.
func (d *decoder) readArgs(h Header) ([]Value, error) {
	var args []Value
	for {
		w, err := d.cur.Next()
		if err != nil {
			return nil, err
		}
		if w == TermArgs {
			return args, nil
		}
		if h.Const {
			args = append(args, d.syms.Get(w))
			continue
		}
		e, err := d.readSeededExpression(w)
		if err != nil {
			return nil, err
		}
		args = append(args, e)
	}
}

func decodeMarker(_ *decoder, h Header) (Instruction, error) {
	return &MarkerInstr{Header: h}, nil
}

func decodeReturnVal(d *decoder, h Header) (Instruction, error) {
	if h.Const {
		v, err := d.constValue(h, "value")
		if err != nil {
			return nil, err
		}
		return &ReturnValInstr{Header: h, Value: v}, nil
	}
	w, err := d.cur.Next()
	if err != nil {
		return nil, err
	}
	e, err := d.readSeededExpression(w)
	if err != nil {
		return nil, err
	}
	return &ReturnValInstr{Header: h, Value: e}, nil
}

func decodeGetArgs(d *decoder, h Header) (Instruction, error) {
	s, err := d.symbol()
	if err != nil {
		return nil, err
	}
	fn, ok := s.(*FunctionDef)
	if !ok {
		return nil, d.malformed(h, "function", "function definition", s)
	}
	var params []Symbol
	for {
		w, err := d.cur.Next()
		if err != nil {
			return nil, err
		}
		if w == TermParams {
			break
		}
		p := d.syms.Get(w)
		switch p.(type) {
		case *Variable, RawInteger:
		default:
			return nil, d.malformed(h, "param", "variable or raw integer", p)
		}
		params = append(params, p)
	}
	return &GetArgsInstr{Header: h, Func: fn, Params: params}, nil
}

// decodeThread reads a Thread or Thread2 and opens the scope of the spawned
// body: each captured Variable is registered again under its take id.
func decodeThread(d *decoder, h Header) (Instruction, error) {
	fn, err := d.symbol()
	if err != nil {
		return nil, err
	}
	switch fn.(type) {
	case *FunctionDef, *FunctionImport, RawInteger:
	default:
		return nil, d.malformed(h, "function", "function or raw integer", fn)
	}

	var take []uint32
	for {
		w, err := d.cur.Next()
		if err != nil {
			return nil, err
		}
		if w == TermParams {
			break
		}
		take = append(take, w)
	}

	var give []Symbol
	for {
		w, err := d.cur.Next()
		if err != nil {
			return nil, err
		}
		if w == TermArgs {
			break
		}
		s := d.syms.Get(w)
		switch s.(type) {
		case *Variable, RawInteger:
		default:
			return nil, d.malformed(h, "give", "variable or raw integer", s)
		}
		give = append(give, s)
	}

	if len(take) != len(give) {
		return nil, errors.FormatViolation(d.path(h.Opcode, "give"), h.Offset,
			fmt.Sprintf("%d take ids but %d give values", len(take), len(give)))
	}

	d.syms.Push()
	for i, g := range give {
		v, ok := g.(*Variable)
		if !ok {
			continue
		}
		captured := *v
		captured.ID = take[i]
		d.syms.Add(&captured)
	}
	return &ThreadInstr{Header: h, Func: fn, Take: take, Give: give}, nil
}

// decodeReturn closes the innermost Thread/Thread2 scope. At the function's
// own depth it is a plain return.
func decodeReturn(d *decoder, h Header) (Instruction, error) {
	if d.syms.Depth() > d.floor {
		if err := d.syms.Pop(); err != nil {
			return nil, err
		}
	}
	return &ReturnInstr{Header: h}, nil
}

func decodeGotoLabel(d *decoder, h Header) (Instruction, error) {
	s, err := d.symbol()
	if err != nil {
		return nil, err
	}
	switch s.(type) {
	case *Label, RawInteger:
	default:
		return nil, d.malformed(h, "label", "label or raw integer", s)
	}
	return &GotoLabelInstr{Header: h, Label: s}, nil
}

func decodeCall(d *decoder, h Header) (Instruction, error) {
	return d.readCall(h)
}

func decodeCallVar(d *decoder, h Header) (Instruction, error) {
	fn, err := d.varOrRaw(h, "function")
	if err != nil {
		return nil, err
	}
	args, err := d.readArgs(h)
	if err != nil {
		return nil, err
	}
	return &CallVarInstr{Header: h, Func: fn, Args: args}, nil
}

func decodeDeleteRuntime(d *decoder, h Header) (Instruction, error) {
	var (
		s   Symbol
		err error
	)
	if h.Const {
		s, err = d.varOrRaw(h, "runtime")
	} else {
		s, err = d.symbol()
	}
	if err != nil {
		return nil, err
	}
	return &DeleteRuntimeInstr{Header: h, Target: s}, nil
}

func decodeWait(d *decoder, h Header) (Instruction, error) {
	v, err := d.valueOrExpression(h, "duration")
	if err != nil {
		return nil, err
	}
	return &WaitInstr{Header: h, Duration: v}, nil
}

func decodeWaitCompleted(d *decoder, h Header) (Instruction, error) {
	v, err := d.valueOrExpression(h, "runtime")
	if err != nil {
		return nil, err
	}
	return &WaitCompletedInstr{Header: h, Runtime: v}, nil
}

func decodeWaitWhile(d *decoder, h Header) (Instruction, error) {
	cond, err := d.readExpression()
	if err != nil {
		return nil, err
	}
	w, err := d.words(2)
	if err != nil {
		return nil, err
	}
	return &WaitWhileInstr{Header: h, Cond: cond, Unused1: w[0], Unused2: w[1]}, nil
}

func decodeIf(d *decoder, h Header) (Instruction, error) {
	cond, err := d.readExpression()
	if err != nil {
		return nil, err
	}
	w, err := d.words(3)
	if err != nil {
		return nil, err
	}
	return &IfInstr{Header: h, Cond: cond, Unused1: w[0], JumpTo: w[1], Unused2: w[2]}, nil
}

func decodeIfCompare(d *decoder, h Header) (Instruction, error) {
	left, err := d.symbol()
	if err != nil {
		return nil, err
	}
	right, err := d.symbol()
	if err != nil {
		return nil, err
	}
	jump, err := d.cur.Next()
	if err != nil {
		return nil, err
	}
	return &IfCompareInstr{Header: h, Left: left, Right: right, JumpTo: jump}, nil
}

func decodeElse(d *decoder, h Header) (Instruction, error) {
	jump, err := d.cur.Next()
	if err != nil {
		return nil, err
	}
	return &ElseInstr{Header: h, JumpTo: jump}, nil
}

func decodeElseIf(d *decoder, h Header) (Instruction, error) {
	head, err := d.words(2)
	if err != nil {
		return nil, err
	}
	cond, err := d.readExpression()
	if err != nil {
		return nil, err
	}
	tail, err := d.words(3)
	if err != nil {
		return nil, err
	}
	return &ElseIfInstr{
		Header:    h,
		StartFrom: head[0],
		Unused1:   head[1],
		Cond:      cond,
		Unused2:   tail[0],
		JumpTo:    tail[1],
		Unused3:   tail[2],
	}, nil
}

func decodeSwitch(d *decoder, h Header) (Instruction, error) {
	v, err := d.varOrRaw(h, "value")
	if err != nil {
		return nil, err
	}
	w, err := d.words(2)
	if err != nil {
		return nil, err
	}
	return &SwitchInstr{Header: h, Value: v, Unused: w[0], JumpTo: w[1]}, nil
}

// caseValue reads a case operand: any symbol, restricted to variables and
// raw integers in constant mode.
func (d *decoder) caseValue(h Header, slot string) (Symbol, error) {
	if h.Const {
		return d.varOrRaw(h, slot)
	}
	return d.symbol()
}

func decodeCase(d *decoder, h Header) (Instruction, error) {
	v, err := d.caseValue(h, "value")
	if err != nil {
		return nil, err
	}
	jump, err := d.cur.Next()
	if err != nil {
		return nil, err
	}
	return &CaseInstr{Header: h, Value: v, JumpTo: jump}, nil
}

func decodeCaseRange(d *decoder, h Header) (Instruction, error) {
	lower, err := d.caseValue(h, "lower")
	if err != nil {
		return nil, err
	}
	upper, err := d.caseValue(h, "upper")
	if err != nil {
		return nil, err
	}
	jump, err := d.cur.Next()
	if err != nil {
		return nil, err
	}
	return &CaseRangeInstr{Header: h, Lower: lower, Upper: upper, JumpTo: jump}, nil
}

func decodeDoWhile(d *decoder, h Header) (Instruction, error) {
	cond, err := d.valueOrExpression(h, "condition")
	if err != nil {
		return nil, err
	}
	jump, err := d.cur.Next()
	if err != nil {
		return nil, err
	}
	return &DoWhileInstr{Header: h, Cond: cond, JumpTo: jump}, nil
}

func decodeSet(d *decoder, h Header) (Instruction, error) {
	dest, err := d.varOrRaw(h, "destination")
	if err != nil {
		return nil, err
	}
	var v Value
	if h.Const {
		v, err = d.constValue(h, "value")
	} else {
		v, err = d.readExpression()
	}
	if err != nil {
		return nil, err
	}
	return &SetInstr{Header: h, Dest: dest, Value: v}, nil
}

func decodeReadTableLength(d *decoder, h Header) (Instruction, error) {
	t, err := d.table(h)
	if err != nil {
		return nil, err
	}
	return &ReadTableLengthInstr{Header: h, Table: t}, nil
}

func (d *decoder) tableAndIndex(h Header) (Symbol, Symbol, error) {
	t, err := d.table(h)
	if err != nil {
		return nil, nil, err
	}
	idx, err := d.symbol()
	if err != nil {
		return nil, nil, err
	}
	return t, idx, nil
}

func decodeReadTableEntry(d *decoder, h Header) (Instruction, error) {
	t, idx, err := d.tableAndIndex(h)
	if err != nil {
		return nil, err
	}
	return &ReadTableEntryInstr{Header: h, Table: t, Index: idx}, nil
}

func decodeReadTableEntryToVar(d *decoder, h Header) (Instruction, error) {
	t, idx, err := d.tableAndIndex(h)
	if err != nil {
		return nil, err
	}
	v, err := d.variable(h, "var")
	if err != nil {
		return nil, err
	}
	return &ReadTableEntryToVarInstr{Header: h, Table: t, Index: idx, Var: v}, nil
}

func decodeReadTableEntriesVec2(d *decoder, h Header) (Instruction, error) {
	t, idx, err := d.tableAndIndex(h)
	if err != nil {
		return nil, err
	}
	x, err := d.variable(h, "x")
	if err != nil {
		return nil, err
	}
	y, err := d.variable(h, "y")
	if err != nil {
		return nil, err
	}
	return &ReadTableEntriesVec2Instr{Header: h, Table: t, Index: idx, X: x, Y: y}, nil
}

func decodeReadTableEntriesVec3(d *decoder, h Header) (Instruction, error) {
	t, idx, err := d.tableAndIndex(h)
	if err != nil {
		return nil, err
	}
	x, err := d.variable(h, "x")
	if err != nil {
		return nil, err
	}
	y, err := d.variable(h, "y")
	if err != nil {
		return nil, err
	}
	z, err := d.variable(h, "z")
	if err != nil {
		return nil, err
	}
	return &ReadTableEntriesVec3Instr{Header: h, Table: t, Index: idx, X: x, Y: y, Z: z}, nil
}

func decodeTableGetIndex(d *decoder, h Header) (Instruction, error) {
	t, occ, err := d.tableAndIndex(h)
	if err != nil {
		return nil, err
	}
	v, err := d.variable(h, "var")
	if err != nil {
		return nil, err
	}
	return &TableGetIndexInstr{Header: h, Table: t, Occurrence: occ, Var: v}, nil
}

// decodeUnknown keeps every operand word up to TermArgs.
func decodeUnknown(d *decoder, h Header) (Instruction, error) {
	var ops []Symbol
	for {
		w, err := d.cur.Next()
		if err != nil {
			return nil, err
		}
		if w == TermArgs {
			return &UnknownInstr{Header: h, Operands: ops}, nil
		}
		ops = append(ops, d.syms.Get(w))
	}
}

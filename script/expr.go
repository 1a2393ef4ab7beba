package script

import (
	"github.com/wippyai/ksm-disasm/internal/binary"
)

// ReadExpression reads expression elements from c until TermExpression,
// resolving each word through syms. A WordCall word starts a nested call,
// which is appended as one element.
func ReadExpression(c *binary.Cursor, syms *SymbolTable) (*Expression, error) {
	d := &decoder{cur: c, syms: syms}
	return d.readExpression()
}

// ReadSeededExpression is ReadExpression with the resolved seed as the first
// element. The seed is never treated as a terminator or a call word.
func ReadSeededExpression(seed uint32, c *binary.Cursor, syms *SymbolTable) (*Expression, error) {
	d := &decoder{cur: c, syms: syms}
	return d.readSeededExpression(seed)
}

func (d *decoder) readExpression() (*Expression, error) {
	return d.extendExpression(&Expression{})
}

func (d *decoder) readSeededExpression(seed uint32) (*Expression, error) {
	return d.extendExpression(&Expression{Elements: []Value{d.syms.Get(seed)}})
}

func (d *decoder) extendExpression(e *Expression) (*Expression, error) {
	for {
		w, err := d.cur.Next()
		if err != nil {
			return nil, err
		}
		done, err := d.pushElement(e, w)
		if err != nil {
			return nil, err
		}
		if done {
			return e, nil
		}
	}
}

// pushElement handles one expression word and reports whether it was the
// terminator.
func (d *decoder) pushElement(e *Expression, w uint32) (bool, error) {
	switch w {
	case TermExpression:
		return true, nil
	case WordCall:
		call, err := d.readCall(Header{Opcode: OpCall, Offset: d.cur.Index() - 1})
		if err != nil {
			return false, err
		}
		e.Elements = append(e.Elements, call)
		return false, nil
	}
	e.Elements = append(e.Elements, d.syms.Get(w))
	return false, nil
}

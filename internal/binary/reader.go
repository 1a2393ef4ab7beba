// Package binary reads and writes the little-endian 32-bit word streams that
// KSM sections and code slices are made of.
package binary

import (
	"bytes"
	"encoding/binary"
	"unicode/utf8"

	"github.com/wippyai/ksm-disasm/errors"
)

// WordSize is the size in bytes of one word.
const WordSize = 4

// Cursor is a forward-only reader over a byte buffer interpreted as a
// sequence of words. Positions are absolute word indices into the buffer,
// so a cursor over a window still reports offsets of the whole section.
type Cursor struct {
	data  []byte
	pos   int
	end   int
	phase errors.Phase
}

// NewCursor creates a cursor over every complete word in data. A trailing
// partial word is ignored.
func NewCursor(data []byte, phase errors.Phase) *Cursor {
	return &Cursor{data: data, end: len(data) / WordSize, phase: phase}
}

// NewCursorRange creates a cursor over words [start, end) of data.
func NewCursorRange(data []byte, start, end int, phase errors.Phase) (*Cursor, error) {
	total := len(data) / WordSize
	if start < 0 || start > total {
		return nil, errors.OutOfBounds(phase, []string{"cursor start"}, start, total)
	}
	if end < start || end > total {
		return nil, errors.OutOfBounds(phase, []string{"cursor end"}, end, total)
	}
	return &Cursor{data: data, pos: start, end: end, phase: phase}, nil
}

// Index returns the absolute word index of the next word to be read.
func (c *Cursor) Index() int {
	return c.pos
}

// Remaining returns the number of unread words.
func (c *Cursor) Remaining() int {
	return c.end - c.pos
}

// Next reads one word.
func (c *Cursor) Next() (uint32, error) {
	if c.pos >= c.end {
		return 0, errors.Exhausted(c.phase, c.pos)
	}
	v := binary.LittleEndian.Uint32(c.data[c.pos*WordSize:])
	c.pos++
	return v, nil
}

// Peek returns the next word without consuming it.
func (c *Cursor) Peek() (uint32, error) {
	if c.pos >= c.end {
		return 0, errors.Exhausted(c.phase, c.pos)
	}
	return binary.LittleEndian.Uint32(c.data[c.pos*WordSize:]), nil
}

// Skip consumes n words.
func (c *Cursor) Skip(n int) error {
	if n < 0 || n > c.Remaining() {
		return errors.Exhausted(c.phase, c.pos)
	}
	c.pos += n
	return nil
}

// StringAt returns the NUL-terminated UTF-8 string starting at the given
// word index of the underlying buffer. The cursor does not move.
func (c *Cursor) StringAt(word int) (string, error) {
	start := word * WordSize
	if word < 0 || start >= len(c.data) {
		return "", errors.OutOfBounds(c.phase, []string{"string"}, word, len(c.data)/WordSize)
	}
	n := bytes.IndexByte(c.data[start:], 0)
	if n < 0 {
		return "", errors.InvalidData(c.phase, []string{"string"}, word, "missing NUL terminator")
	}
	raw := c.data[start : start+n]
	if !utf8.Valid(raw) {
		return "", errors.InvalidUTF8(c.phase, word, raw)
	}
	return string(raw), nil
}

// ReadString reads an embedded string: a length word giving the number of
// words the string occupies, followed by the string storage. The cursor ends
// up past the storage.
func (c *Cursor) ReadString() (string, error) {
	n, err := c.Next()
	if err != nil {
		return "", err
	}
	if int(n) > c.Remaining() {
		return "", errors.Exhausted(c.phase, c.pos)
	}
	s, err := c.StringAt(c.pos)
	if err != nil {
		return "", err
	}
	c.pos += int(n)
	return s, nil
}

// Words decodes every complete word of data.
func Words(data []byte) []uint32 {
	out := make([]uint32, len(data)/WordSize)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(data[i*WordSize:])
	}
	return out
}

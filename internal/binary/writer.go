package binary

import (
	"bytes"
	"encoding/binary"
)

// Writer builds word streams. It is the inverse of Cursor and is used to
// assemble sections in tests and tools.
type Writer struct {
	buf *bytes.Buffer
}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{buf: &bytes.Buffer{}}
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of words written.
func (w *Writer) Len() int {
	return w.buf.Len() / WordSize
}

// Word writes a single little-endian word.
func (w *Writer) Word(v uint32) {
	var buf [WordSize]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	w.buf.Write(buf[:])
}

// Words writes several words.
func (w *Writer) Words(vs ...uint32) {
	for _, v := range vs {
		w.Word(v)
	}
}

// String writes an embedded string: the storage length in words, then the
// NUL-terminated bytes padded to a word boundary.
func (w *Writer) String(s string) {
	size := (len(s) + 1 + WordSize - 1) / WordSize
	w.Word(uint32(size))
	w.buf.WriteString(s)
	for pad := size*WordSize - len(s); pad > 0; pad-- {
		w.buf.WriteByte(0)
	}
}

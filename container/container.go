package container

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/wippyai/ksm-disasm/errors"
)

// Header layout constants.
const (
	HeaderSize   = 0x2c
	Version      = 0x10300
	SectionCount = 8
)

// Magic is the container signature.
var Magic = [4]byte{'K', 'S', 'M', 'R'}

// Section roles.
const (
	SectionInfo            = 0
	SectionFunctionDefs    = 1
	SectionScriptVariables = 2
	SectionTables          = 3
	SectionConstVariables  = 4
	SectionImports         = 5
	SectionGlobalVariables = 6
	SectionCode            = 7
)

var sectionNames = [SectionCount]string{
	"info",
	"function definitions",
	"script variables",
	"tables",
	"const variables",
	"imports",
	"global variables",
	"code",
}

// SectionName returns a human-readable role name for a section index.
func SectionName(i int) string {
	if i < 0 || i >= SectionCount {
		return fmt.Sprintf("section %d", i)
	}
	return sectionNames[i]
}

// Header is the fixed container header.
type Header struct {
	Magic   [4]byte
	Version uint32
	// Bounds holds section start offsets in words followed by the end of
	// the last section. The last entry is reserved in the file and is
	// recomputed from the file length at load time.
	Bounds [SectionCount + 1]uint32
	// Reserved is the raw value of the reserved trailing field.
	Reserved uint32
}

// Container is a parsed KSMR file with its sections sliced out.
type Container struct {
	Header   Header
	Sections [SectionCount][]byte
}

// Parse validates the header and slices data into sections. Section bytes
// alias data.
func Parse(data []byte) (*Container, error) {
	if len(data) < HeaderSize {
		return nil, errors.New(errors.PhaseContainer, errors.KindOutOfBounds).
			Detail("file is %d bytes, header needs %d", len(data), HeaderSize).
			Build()
	}

	var h Header
	copy(h.Magic[:], data[:4])
	if !bytes.Equal(h.Magic[:], Magic[:]) {
		return nil, errors.New(errors.PhaseContainer, errors.KindInvalidMagic).
			Value(h.Magic).
			Detail("got %q, want %q", h.Magic[:], Magic[:]).
			Build()
	}

	h.Version = binary.LittleEndian.Uint32(data[4:])
	if h.Version != Version {
		return nil, errors.New(errors.PhaseContainer, errors.KindUnsupportedVersion).
			Value(h.Version).
			Detail("got 0x%x, want 0x%x", h.Version, Version).
			Build()
	}

	for i := 0; i < SectionCount; i++ {
		h.Bounds[i] = binary.LittleEndian.Uint32(data[8+i*4:])
	}
	h.Reserved = binary.LittleEndian.Uint32(data[8+SectionCount*4:])
	total := uint32(len(data) / 4)
	h.Bounds[SectionCount] = total

	c := &Container{Header: h}
	for i := 0; i < SectionCount; i++ {
		start, end := h.Bounds[i], h.Bounds[i+1]
		if start > total {
			return nil, errors.OutOfBounds(errors.PhaseContainer, []string{SectionName(i), "start"}, int(start), int(total))
		}
		if end < start || end > total {
			return nil, errors.New(errors.PhaseContainer, errors.KindOutOfBounds).
				Path(SectionName(i), "end").
				Value(end).
				Detail("section range [%d, %d) invalid for %d words", start, end, total).
				Build()
		}
		c.Sections[i] = data[start*4 : end*4]
	}
	return c, nil
}

// Section returns the bytes of section i.
func (c *Container) Section(i int) []byte {
	return c.Sections[i]
}

// Words returns the total word count of the file.
func (c *Container) Words() uint32 {
	return c.Header.Bounds[SectionCount]
}

// Info decodes section 0: two zero words followed by a value whose meaning
// is unknown.
func (c *Container) Info() (uint32, error) {
	s := c.Sections[SectionInfo]
	if len(s) != 12 {
		return 0, errors.InvalidData(errors.PhaseContainer, []string{SectionName(SectionInfo)}, -1,
			fmt.Sprintf("expected 3 words, got %d bytes", len(s)))
	}
	if binary.LittleEndian.Uint32(s) != 0 || binary.LittleEndian.Uint32(s[4:]) != 0 {
		return 0, errors.InvalidData(errors.PhaseContainer, []string{SectionName(SectionInfo)}, 0,
			"leading words are not zero")
	}
	return binary.LittleEndian.Uint32(s[8:]), nil
}

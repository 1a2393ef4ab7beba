package container_test

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/wippyai/ksm-disasm/container"
	kerrors "github.com/wippyai/ksm-disasm/errors"
	"github.com/wippyai/ksm-disasm/internal/testutil"
)

func sampleSections() [8][]byte {
	var s [8][]byte
	s[0] = []byte{0, 0, 0, 0, 0, 0, 0, 0, 0x34, 0x12, 0, 0}
	s[1] = []byte{0, 0, 0, 0}
	s[2] = []byte{1, 0, 0, 0, 2, 0, 0, 0}
	s[3] = nil
	s[4] = []byte{0, 0, 0, 0}
	s[5] = []byte{0, 0, 0, 0}
	s[6] = []byte{0, 0, 0, 0}
	s[7] = []byte{9, 0, 0, 0, 8, 0, 0, 0, 7, 0, 0, 0}
	return s
}

func TestParse(t *testing.T) {
	sections := sampleSections()
	data := testutil.Container(sections, 0)

	c, err := container.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	for i := range sections {
		if string(c.Section(i)) != string(sections[i]) {
			t.Errorf("section %d: got %v, want %v", i, c.Section(i), sections[i])
		}
	}
	if c.Words() != uint32(len(data)/4) {
		t.Errorf("Words = %d, want %d", c.Words(), len(data)/4)
	}
	info, err := c.Info()
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info != 0x1234 {
		t.Errorf("Info = 0x%x, want 0x1234", info)
	}
}

func TestParseReservedIsInformational(t *testing.T) {
	data := testutil.Container(sampleSections(), 0xabcdef)
	c, err := container.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Header.Reserved != 0xabcdef {
		t.Errorf("Reserved = 0x%x", c.Header.Reserved)
	}
	if c.Header.Bounds[container.SectionCount] != uint32(len(data)/4) {
		t.Error("last bound should be recomputed from the file length")
	}
}

func TestParseTrailingDataExtendsCode(t *testing.T) {
	data := testutil.Container(sampleSections(), 0)
	data = append(data, 5, 0, 0, 0, 0xff)
	c, err := container.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := len(c.Section(container.SectionCode)); got != 16 {
		t.Errorf("code section = %d bytes, want 16", got)
	}
}

func TestParseErrors(t *testing.T) {
	valid := testutil.Container(sampleSections(), 0)

	tests := []struct {
		name   string
		mutate func([]byte) []byte
		kind   kerrors.Kind
	}{
		{
			name:   "short header",
			mutate: func(b []byte) []byte { return b[:20] },
			kind:   kerrors.KindOutOfBounds,
		},
		{
			name: "bad magic",
			mutate: func(b []byte) []byte {
				copy(b, "KSMX")
				return b
			},
			kind: kerrors.KindInvalidMagic,
		},
		{
			name: "bad version",
			mutate: func(b []byte) []byte {
				binary.LittleEndian.PutUint32(b[4:], 0x10200)
				return b
			},
			kind: kerrors.KindUnsupportedVersion,
		},
		{
			name: "start past file",
			mutate: func(b []byte) []byte {
				binary.LittleEndian.PutUint32(b[8+7*4:], 0xffff)
				return b
			},
			kind: kerrors.KindOutOfBounds,
		},
		{
			name: "bounds out of order",
			mutate: func(b []byte) []byte {
				binary.LittleEndian.PutUint32(b[8+2*4:], binary.LittleEndian.Uint32(b[8+4*4:])+1)
				return b
			},
			kind: kerrors.KindOutOfBounds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.mutate(append([]byte(nil), valid...))
			_, err := container.Parse(data)
			var e *kerrors.Error
			if !errors.As(err, &e) {
				t.Fatalf("expected structured error, got %v", err)
			}
			if e.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", e.Kind, tt.kind)
			}
			if e.Phase != kerrors.PhaseContainer {
				t.Errorf("Phase = %v", e.Phase)
			}
		})
	}
}

// Sections lie inside the file and their bytes match their word bounds.
func TestParseSectionsStayInBounds(t *testing.T) {
	data := testutil.Container(sampleSections(), 0)
	c, err := container.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	total := 0
	for i := 0; i < container.SectionCount; i++ {
		start, end := c.Header.Bounds[i], c.Header.Bounds[i+1]
		if int(end)*4 > len(data) {
			t.Errorf("section %d ends past file", i)
		}
		if start > end {
			t.Errorf("section %d has inverted range [%d, %d)", i, start, end)
		}
		if int(end-start)*4 != len(c.Section(i)) {
			t.Errorf("section %d length does not match its bounds", i)
		}
		total += len(c.Section(i))
	}
	if total+container.HeaderSize > len(data) {
		t.Errorf("sections cover %d bytes of %d", total, len(data))
	}
}

func TestInfoRejectsUnexpectedShape(t *testing.T) {
	s := sampleSections()
	s[0] = []byte{1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	c, err := container.Parse(testutil.Container(s, 0))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := c.Info(); err == nil {
		t.Error("expected error for non-zero leading word")
	}
}

func TestSectionName(t *testing.T) {
	if container.SectionName(container.SectionCode) != "code" {
		t.Error("unexpected name for code section")
	}
	if container.SectionName(42) != "section 42" {
		t.Error("unexpected name for out-of-range section")
	}
}

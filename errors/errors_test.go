package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseDecode,
				Kind:   KindMalformedEntity,
				Path:   []string{"fn:main", "ReadTableEntry", "table"},
				Offset: 12,
				Detail: "expected table",
			},
			contains: []string{"[decode]", "malformed_entity", "fn:main.ReadTableEntry.table", "at word 12", "expected table"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase:  PhaseContainer,
				Kind:   KindOutOfBounds,
				Offset: -1,
			},
			contains: []string{"[container]", "out_of_bounds"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseExport,
				Kind:   KindInvalidData,
				Offset: -1,
				Detail: "write db",
				Cause:  errors.New("disk full"),
			},
			contains: []string{"[export]", "invalid_data", "write db", "caused by", "disk full"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_NoOffset(t *testing.T) {
	err := New(PhaseCatalog, KindInvalidData).Build()
	if strings.Contains(err.Error(), "at word") {
		t.Errorf("unexpected offset in %q", err.Error())
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(PhaseExport, KindInvalidData, cause, "encode")

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should walk to the cause")
	}
}

func TestError_Is(t *testing.T) {
	err := Exhausted(PhaseDecode, 3)

	if !err.Is(&Error{Phase: PhaseDecode, Kind: KindExhausted}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseCatalog, Kind: KindExhausted}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseDecode, Kind: KindOutOfBounds}) {
		t.Error("Is should not match different kind")
	}
	if !errors.Is(err, ErrExhausted) {
		t.Error("phase-less sentinel should match any phase")
	}
	if errors.Is(err, ErrMalformedEntity) {
		t.Error("sentinel of another kind should not match")
	}

	wrapped := Wrap(PhaseDecode, KindFormatViolation, err, "reading operand")
	if !errors.Is(wrapped, ErrExhausted) {
		t.Error("errors.Is should find the wrapped exhaustion")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseDecode, KindFormatViolation).
		Path("fn:main", "Thread").
		At(7).
		Value(42).
		Cause(cause).
		Detail("take %d, give %d", 2, 1).
		Build()

	if err.Phase != PhaseDecode {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseDecode)
	}
	if err.Kind != KindFormatViolation {
		t.Errorf("Kind = %v, want %v", err.Kind, KindFormatViolation)
	}
	if len(err.Path) != 2 || err.Path[0] != "fn:main" || err.Path[1] != "Thread" {
		t.Errorf("Path = %v, want [fn:main Thread]", err.Path)
	}
	if err.Offset != 7 {
		t.Errorf("Offset = %d, want 7", err.Offset)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "take 2, give 1" {
		t.Errorf("Detail = %q", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("MalformedEntity", func(t *testing.T) {
		err := MalformedEntity([]string{"Set"}, 4, "variable", "label:0x5")
		if err.Kind != KindMalformedEntity || err.Phase != PhaseDecode {
			t.Errorf("got %v/%v", err.Phase, err.Kind)
		}
		if !strings.Contains(err.Detail, "variable") {
			t.Errorf("Detail = %q", err.Detail)
		}
	})

	t.Run("FormatViolation", func(t *testing.T) {
		err := FormatViolation(nil, 0, "constant mode")
		if !errors.Is(err, ErrFormatViolation) {
			t.Error("expected format violation")
		}
	})

	t.Run("UnbalancedScope", func(t *testing.T) {
		err := UnbalancedScope(9)
		if !errors.Is(err, ErrUnbalancedScope) {
			t.Error("expected unbalanced scope")
		}
	})

	t.Run("InvalidUTF8", func(t *testing.T) {
		err := InvalidUTF8(PhaseCatalog, 2, []byte{0xff, 0xfe})
		if err.Kind != KindInvalidUTF8 {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidUTF8)
		}
		if !strings.Contains(err.Detail, "fffe") {
			t.Errorf("Detail = %q", err.Detail)
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseContainer, []string{"section 3"}, 10, 5)
		if err.Kind != KindOutOfBounds {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
		}
		if err.Value != 10 {
			t.Errorf("Value = %v, want 10", err.Value)
		}
	})

	t.Run("InvalidEnum", func(t *testing.T) {
		err := InvalidEnum(PhaseCatalog, []string{"import"}, 1, uint32(6), "ImportType")
		if err.Kind != KindInvalidEnum {
			t.Errorf("Kind = %v", err.Kind)
		}
	})
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"plain", errors.New("x"), ""},
		{"direct", Exhausted(PhaseDecode, 3), KindExhausted},
		{"wrapped", fmt.Errorf("fn: %w", FormatViolation(nil, 1, "x")), KindFormatViolation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf = %q, want %q", got, tt.want)
			}
		})
	}
}

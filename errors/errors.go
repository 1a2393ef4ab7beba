package errors

import (
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseContainer Phase = "container" // header and section slicing
	PhaseCatalog   Phase = "catalog"   // variable/table/label/import/definition records
	PhaseDecode    Phase = "decode"    // instruction stream
	PhaseExport    Phase = "export"    // cbor/sqlite output
	PhaseConfig    Phase = "config"    // configuration file
)

// Kind categorizes the error
type Kind string

const (
	KindExhausted          Kind = "exhausted"
	KindMalformedEntity    Kind = "malformed_entity"
	KindFormatViolation    Kind = "format_violation"
	KindUnbalancedScope    Kind = "unbalanced_scope"
	KindOutOfBounds        Kind = "out_of_bounds"
	KindInvalidMagic       Kind = "invalid_magic"
	KindUnsupportedVersion Kind = "unsupported_version"
	KindInvalidData        Kind = "invalid_data"
	KindInvalidUTF8        Kind = "invalid_utf8"
	KindInvalidEnum        Kind = "invalid_enum"
)

// Sentinels for errors.Is checks. They carry no phase, so they match any
// error of the same kind.
var (
	ErrExhausted       = &Error{Kind: KindExhausted, Offset: -1}
	ErrMalformedEntity = &Error{Kind: KindMalformedEntity, Offset: -1}
	ErrFormatViolation = &Error{Kind: KindFormatViolation, Offset: -1}
	ErrUnbalancedScope = &Error{Kind: KindUnbalancedScope, Offset: -1}
)

// Error is the structured error type used throughout the disassembler
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
	// Offset is a word index into the section or code slice being read.
	// Negative means unknown.
	Offset int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Phase != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Phase))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" in ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Offset >= 0 {
		b.WriteString(" at word ")
		b.WriteString(strconv.Itoa(e.Offset))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. Kind must match; Phase must
// match only when the target sets one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	return e.Kind == t.Kind
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:  phase,
			Kind:   kind,
			Offset: -1,
		},
	}
}

// Path sets the entity path, e.g. "fn:main", "Set", "destination"
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// At sets the word offset
func (b *Builder) At(offset int) *Builder {
	b.err.Offset = offset
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Exhausted creates a cursor exhaustion error
func Exhausted(phase Phase, offset int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindExhausted,
		Offset: offset,
		Detail: "no words remaining",
	}
}

// MalformedEntity creates an error for an operand that resolved to the wrong
// kind of symbol for its slot.
func MalformedEntity(path []string, offset int, want string, got any) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindMalformedEntity,
		Path:   path,
		Offset: offset,
		Detail: fmt.Sprintf("expected %s, got %v", want, got),
		Value:  got,
	}
}

// FormatViolation creates an error for a structurally impossible encoding
func FormatViolation(path []string, offset int, detail string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindFormatViolation,
		Path:   path,
		Offset: offset,
		Detail: detail,
	}
}

// UnbalancedScope creates an error for a pop on an empty scope stack
func UnbalancedScope(offset int) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindUnbalancedScope,
		Offset: offset,
		Detail: "pop on empty scope stack",
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(phase Phase, offset int, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Offset: offset,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Offset: -1,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// InvalidEnum creates an invalid enum value error
func InvalidEnum(phase Phase, path []string, offset int, value any, enumType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidEnum,
		Path:   path,
		Offset: offset,
		Detail: fmt.Sprintf("invalid enum value %v for %s", value, enumType),
		Value:  value,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, offset int, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Offset: offset,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Offset: -1,
		Detail: detail,
		Cause:  cause,
	}
}

// KindOf returns the kind of the first *Error in err's chain, or "" when
// there is none.
func KindOf(err error) Kind {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}

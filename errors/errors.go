package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseScan     Phase = "scan"     // bitcode scanning
	PhaseLink     Phase = "link"     // module linking
	PhaseSanitize Phase = "sanitize" // debug info sanitization
	PhaseOptimize Phase = "optimize" // optimization passes
	PhaseEmit     Phase = "emit"     // code generation and output
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidSize           Kind = "invalid_size"
	KindMisaligned            Kind = "misaligned"
	KindMissingMagic          Kind = "missing_magic"
	KindUnexpectedEnd         Kind = "unexpected_end"
	KindOutOfBounds           Kind = "out_of_bounds"
	KindUnsupportedEncoding   Kind = "unsupported_abbrev_encoding"
	KindUnsupportedAbbrevID   Kind = "unsupported_abbrev_id"
	KindMissingIdentification Kind = "missing_identification"
	KindInvalidVersion        Kind = "invalid_version"
	KindInvalidInput          Kind = "invalid_input"
	KindMissingBitcode        Kind = "missing_bitcode"
	KindEmbeddedBitcode       Kind = "embedded_bitcode"
	KindNodeMismatch          Kind = "node_mismatch"
	KindNilOperand            Kind = "nil_operand"
	KindNotFound              Kind = "not_found"
	KindIO                    Kind = "io"
	KindToolkit               Kind = "toolkit"
	KindWriteFailed           Kind = "write_failed"
)

// Error is the structured error type used throughout the linker
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Input  string
	Node   string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Input != "" {
		b.WriteString(": input ")
		b.WriteString(e.Input)
	}
	if e.Node != "" {
		if e.Input != "" {
			b.WriteString(", node ")
		} else {
			b.WriteString(": node ")
		}
		b.WriteString(e.Node)
	}

	if e.Detail != "" {
		if e.Input != "" || e.Node != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
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

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the logical path to the failing element
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Input sets the input file the error refers to
func (b *Builder) Input(path string) *Builder {
	b.err.Input = path
	return b
}

// Node sets the metadata node kind the error refers to
func (b *Builder) Node(kind string) *Builder {
	b.err.Node = kind
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

// InvalidSize creates an undersized buffer error
func InvalidSize(got int) *Error {
	return &Error{
		Phase:  PhaseScan,
		Kind:   KindInvalidSize,
		Detail: fmt.Sprintf("expected at least 8 bytes, got %d", got),
		Value:  got,
	}
}

// Misaligned creates a buffer alignment error
func Misaligned() *Error {
	return &Error{
		Phase:  PhaseScan,
		Kind:   KindMisaligned,
		Detail: "bitcode is not 32-bit aligned",
	}
}

// MissingMagic creates a missing magic header error
func MissingMagic() *Error {
	return &Error{
		Phase:  PhaseScan,
		Kind:   KindMissingMagic,
		Detail: "missing bitcode magic header",
	}
}

// UnexpectedEnd creates an end-of-stream error
func UnexpectedEnd() *Error {
	return &Error{
		Phase:  PhaseScan,
		Kind:   KindUnexpectedEnd,
		Detail: "unexpected end of bitcode",
	}
}

// OutOfBounds creates a cursor seek error
func OutOfBounds(bit, limit uint) *Error {
	return &Error{
		Phase:  PhaseScan,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("seek to bit %d out of bounds (limit %d)", bit, limit),
		Value:  bit,
	}
}

// UnsupportedEncoding creates an unsupported abbreviation encoding error
func UnsupportedEncoding(encoding uint64) *Error {
	return &Error{
		Phase:  PhaseScan,
		Kind:   KindUnsupportedEncoding,
		Detail: fmt.Sprintf("unsupported abbreviation encoding: %d", encoding),
		Value:  encoding,
	}
}

// UnsupportedAbbrevID creates an unsupported abbreviated record id error
func UnsupportedAbbrevID(id uint64) *Error {
	return &Error{
		Phase:  PhaseScan,
		Kind:   KindUnsupportedAbbrevID,
		Detail: fmt.Sprintf("unsupported abbreviated record ID: %d", id),
		Value:  id,
	}
}

// MissingIdentification creates a missing identification string error
func MissingIdentification() *Error {
	return &Error{
		Phase:  PhaseScan,
		Kind:   KindMissingIdentification,
		Detail: "missing identification string",
	}
}

// InvalidVersion creates an unparsable producer version error
func InvalidVersion(ident string) *Error {
	return &Error{
		Phase:  PhaseScan,
		Kind:   KindInvalidVersion,
		Detail: fmt.Sprintf("no toolkit version in identification string %q", ident),
		Value:  ident,
	}
}

// InvalidInput creates an unrecognized input file error
func InvalidInput(path string) *Error {
	return &Error{
		Phase:  PhaseLink,
		Kind:   KindInvalidInput,
		Input:  path,
		Detail: "not bitcode, an object with embedded bitcode, or an archive",
	}
}

// MissingBitcode creates a missing embedded bitcode error
func MissingBitcode(path string) *Error {
	return &Error{
		Phase:  PhaseLink,
		Kind:   KindMissingBitcode,
		Input:  path,
		Detail: "no bitcode section found",
	}
}

// NodeMismatch creates a metadata node kind mismatch error
func NodeMismatch(want, got string) *Error {
	return &Error{
		Phase:  PhaseSanitize,
		Kind:   KindNodeMismatch,
		Node:   got,
		Detail: fmt.Sprintf("expected %s node", want),
	}
}

// NilOperand creates a missing operand error
func NilOperand(node string, index int) *Error {
	return &Error{
		Phase:  PhaseSanitize,
		Kind:   KindNilOperand,
		Node:   node,
		Detail: fmt.Sprintf("operand %d is nil", index),
		Value:  index,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// IO wraps an I/O failure on an input or output file
func IO(phase Phase, path string, cause error) *Error {
	return &Error{
		Phase: phase,
		Kind:  KindIO,
		Input: path,
		Cause: cause,
	}
}

// Toolkit wraps a failure reported by the external compiler toolkit
func Toolkit(phase Phase, op string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindToolkit,
		Detail: op,
		Cause:  cause,
	}
}

// WriteFailed creates an output write error
func WriteFailed(path string, cause error) *Error {
	return &Error{
		Phase: PhaseEmit,
		Kind:  KindWriteFailed,
		Input: path,
		Cause: cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

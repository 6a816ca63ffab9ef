package errors

import (
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseEncode   Phase = "encode"   // value graph to wire text
	PhaseScan     Phase = "scan"     // reference pre-scan
	PhaseDecode   Phase = "decode"   // wire text to value graph
	PhaseCache    Phase = "cache"    // decode cache
	PhaseRegistry Phase = "registry" // class registration
	PhaseNative   Phase = "native"   // Go native bridge
)

// Kind categorizes the error
type Kind string

const (
	KindSyntax        Kind = "syntax"
	KindUnexpectedEOF Kind = "unexpected_eof"
	KindBadReference  Kind = "bad_reference"
	KindBadKey        Kind = "bad_key"
	KindBadVisibility Kind = "bad_visibility"
	KindLength        Kind = "length_mismatch"
	KindOverflow      Kind = "overflow"
	KindDepth         Kind = "depth_exceeded"
	KindUnsupported   Kind = "unsupported"
	KindInvalidInput  Kind = "invalid_input"
	KindRegistration  Kind = "registration"

	// Soft kinds are reported through diagnostics, decoding continues.
	KindTruncated    Kind = "truncated"
	KindUnknownClass Kind = "unknown_class"
	KindTrailingData Kind = "trailing_data"
)

// NoOffset marks errors not tied to an input position.
const NoOffset = -1

// Error is the structured error type used throughout the codec.
// Decode failures carry the failing byte Offset and a short Context window.
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	Detail  string
	Context string
	Path    []string
	Offset  int
	Soft    bool
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

	if e.Offset >= 0 {
		b.WriteString(" offset ")
		b.WriteString(strconv.Itoa(e.Offset))
	}

	if e.Context != "" {
		b.WriteString(" near ")
		b.WriteString(strconv.Quote(e.Context))
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
			Phase:  phase,
			Kind:   kind,
			Offset: NoOffset,
		},
	}
}

// Path sets the value path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// At sets the byte offset and extracts a context window from data around it.
func (b *Builder) At(data []byte, offset int) *Builder {
	b.err.Offset = offset
	b.err.Context = Window(data, offset)
	return b
}

// Offset sets the byte offset without a context window
func (b *Builder) Offset(offset int) *Builder {
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

// Soft marks the error as recoverable
func (b *Builder) Soft() *Builder {
	b.err.Soft = true
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

// ContextRadius is the number of bytes kept on each side of a failing offset.
const ContextRadius = 8

// Window returns up to ContextRadius bytes on each side of offset.
func Window(data []byte, offset int) string {
	if offset < 0 {
		return ""
	}
	start := offset - ContextRadius
	if start < 0 {
		start = 0
	}
	end := offset + ContextRadius
	if end > len(data) {
		end = len(data)
	}
	if start >= end {
		return ""
	}
	return string(data[start:end])
}

// Convenience constructors for common error patterns

// Syntax creates a grammar error at offset
func Syntax(phase Phase, data []byte, offset int, detail string, args ...any) *Error {
	return New(phase, KindSyntax).At(data, offset).Detail(detail, args...).Build()
}

// UnexpectedEOF creates an end-of-input error
func UnexpectedEOF(phase Phase, data []byte, expected string) *Error {
	return New(phase, KindUnexpectedEOF).
		At(data, len(data)).
		Detail("expected %s at end of input", expected).
		Build()
}

// BadReference creates an out-of-range back-reference error
func BadReference(phase Phase, data []byte, offset int, index int64, slots int) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindBadReference,
		Offset:  offset,
		Context: Window(data, offset),
		Detail:  fmt.Sprintf("reference %d out of range (%d slots assigned)", index, slots),
		Value:   index,
	}
}

// Overflow creates a numeric overflow error
func Overflow(phase Phase, data []byte, offset int, text string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindOverflow,
		Offset:  offset,
		Context: Window(data, offset),
		Detail:  fmt.Sprintf("integer %s overflows int64", text),
		Value:   text,
	}
}

// Depth creates a nesting limit error
func Depth(phase Phase, offset int, limit int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDepth,
		Offset: offset,
		Detail: fmt.Sprintf("nesting exceeds %d levels", limit),
		Value:  limit,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Offset: NoOffset,
		Detail: what,
	}
}

// BadKey creates an unsupported key error
func BadKey(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindBadKey,
		Path:   path,
		Offset: NoOffset,
		Detail: detail,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Offset: NoOffset,
		Detail: detail,
	}
}

// Registration creates a registration error
func Registration(name string, cause error) *Error {
	return &Error{
		Phase:  PhaseRegistry,
		Kind:   KindRegistration,
		Offset: NoOffset,
		Detail: fmt.Sprintf("register class %q", name),
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Offset: NoOffset,
		Detail: detail,
		Cause:  cause,
	}
}

// IsSoft reports whether err is a recoverable codec error.
func IsSoft(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Soft
}

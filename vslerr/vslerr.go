// Package vslerr defines the single error carrier used across the VSL
// compiler pipeline, from semantic analysis through artifact writing.
package vslerr

import "fmt"

// Kind classifies an Error by the phase/rule that raised it. Kinds are not
// separate error types — they only tag Error.Message's provenance, mirroring
// the "implicit via message prefix" discipline of the source this compiler
// is modeled on.
type Kind uint8

const (
	KindSyntax Kind = iota
	KindType
	KindScope
	KindOperator
	KindFunction
	KindBinding
	KindLimit
	KindControl
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "syntax"
	case KindType:
		return "type"
	case KindScope:
		return "scope"
	case KindOperator:
		return "operator"
	case KindFunction:
		return "function"
	case KindBinding:
		return "binding"
	case KindLimit:
		return "limit"
	case KindControl:
		return "control"
	default:
		return "internal"
	}
}

// Error is the structured error carrier for the whole compiler: syntax
// errors, type errors, scope errors, and operator/function resolution
// errors all travel through this single channel. No error is silently
// recovered and analysis aborts on the first one raised.
type Error struct {
	Kind    Kind
	Message string
	Line    uint32
	Column  uint32
	BadText string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Line == 0 {
		return e.Message
	}
	if e.BadText != "" {
		return fmt.Sprintf("%d:%d: %s (%q)", e.Line, e.Column, e.Message, e.BadText)
	}
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// New builds an Error with no location info (e.g. driver-surfaced errors).
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// At builds an Error carrying source location, as raised by the semantic
// analyzer while walking a syntax-tree node.
func At(kind Kind, line, column uint32, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Line: line, Column: column}
}

// WithBadText returns a copy of e with BadText set, used when the error
// should echo the offending source text (e.g. a duplicate binding name).
func (e *Error) WithBadText(text string) *Error {
	cp := *e
	cp.BadText = text
	return &cp
}

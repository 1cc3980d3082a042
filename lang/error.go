package lang

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/ardnew/ctrlfn/lang/parser"
)

// Error represents a fatal interpreter error with optional structured
// logging attributes. It implements both error and slog.LogValuer.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

func (e *Error) Unwrap() error { return e.err }

func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, err: err, attrs: e.attrs}
}

// With adds attributes to the error for structured logging. It returns a new
// Error to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{msg: e.msg, err: e.err, attrs: newAttrs}
}

// Sentinel fatal errors, per the error taxonomy: lookup failures, type
// mismatches at call binding or return, control-flow misuse that the
// evaluator treats as fatal rather than Void, and bootstrap failures.
var (
	ErrUnboundName  = NewError("unbound name")
	ErrNotCallable  = NewError("value is not callable")
	ErrArity        = NewError("argument count mismatch")
	ErrParamType    = NewError("argument type mismatch")
	ErrReturnType   = NewError("return type mismatch")
	ErrLogicOperand = NewError("logical operator requires bool operands")
	ErrInput        = NewError("failed to read input")
	ErrNoMain       = NewError("no main function defined")
	ErrMainNotFunc  = NewError("main is not a function")

	// ErrRecursionLimit is returned when nested function activations exceed
	// the configured --recursion-depth guard, converting what would
	// otherwise be a host stack overflow into an ordinary runtime error.
	ErrRecursionLimit = NewError("recursion depth exceeded")
)

func attrString(key, val string) slog.Attr { return slog.String(key, val) }
func attrInt(key string, val int64) slog.Attr { return slog.Int64(key, val) }

// ParseError wraps a syntax error produced while parsing source text,
// attaching the offending line and a caret marker.
type ParseError struct {
	Err    *parser.Error
	Source string
}

// NewParseError builds a ParseError from a parser error and the original
// source, used to render a source snippet.
func NewParseError(err *parser.Error, source string) *ParseError {
	return &ParseError{Err: err, Source: source}
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return "parse error"
	}

	if e.Source == "" {
		return e.Err.Error()
	}

	return e.formatWithContext()
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) formatWithContext() string {
	lines := strings.Split(e.Source, "\n")

	var buf strings.Builder

	buf.WriteString("parse error at line ")
	buf.WriteString(strconv.Itoa(e.Err.Pos.Line))
	buf.WriteString(", column ")
	buf.WriteString(strconv.Itoa(e.Err.Pos.Column))
	buf.WriteString(": ")
	buf.WriteString(e.Err.Msg)
	buf.WriteString("\n")

	line := e.Err.Pos.Line
	if line > 0 && line <= len(lines) {
		text := lines[line-1]

		lineNumWidth := len(strconv.Itoa(line))
		padding := strings.Repeat(" ", lineNumWidth+5)

		buf.WriteString("  ")
		buf.WriteString(strconv.Itoa(line))
		buf.WriteString(" | ")
		buf.WriteString(text)
		buf.WriteString("\n")

		if e.Err.Pos.Column > 0 {
			padding += strings.Repeat(" ", e.Err.Pos.Column-1)
		}

		buf.WriteString(padding)
		buf.WriteString("^\n")
	}

	return buf.String()
}

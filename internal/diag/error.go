package diag

import (
	"fmt"

	"lisle/internal/source"
)

// Error is a compile-side failure: lexing, parsing or block structure.
// Line is 1-based and zero when the failing line is not known yet (the
// caller fills it in with AtLine).
type Error struct {
	Code  Code
	Msg   string
	Line  uint32
	Span  source.Span
	Stmt  string
	Cause error
}

// Errorf builds an *Error for code with a formatted message.
func Errorf(code Code, span source.Span, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...), Span: span}
}

func (e *Error) Error() string {
	var where string
	switch {
	case e.Line > 0 && !e.Span.Empty():
		where = fmt.Sprintf("line %d:%d: ", e.Line, e.Span.Col())
	case e.Line > 0:
		where = fmt.Sprintf("line %d: ", e.Line)
	case !e.Span.Empty():
		where = fmt.Sprintf("col %d: ", e.Span.Col())
	}
	stmt := ""
	if e.Stmt != "" {
		stmt = " (in " + e.Stmt + ")"
	}
	return fmt.Sprintf("%s: %s%s%s", e.Kind(), where, e.Msg, stmt)
}

func (e *Error) Unwrap() error { return e.Cause }

// Kind reports the error class derived from the code range.
func (e *Error) Kind() Kind { return e.Code.Kind() }

// AtLine returns a copy of e located on line.
func (e *Error) AtLine(line uint32) *Error {
	cp := *e
	cp.Line = line
	return &cp
}

// Diagnostic converts the error into a SevError diagnostic.
func (e *Error) Diagnostic() Diagnostic {
	d := NewError(e.Code, e.Line, e.Span, e.Msg)
	if e.Stmt != "" {
		d = d.WithNote(e.Line, e.Span, "statement: "+e.Stmt)
	}
	return d
}

package diag

import (
	"lisle/internal/source"
)

type Note struct {
	Line uint32
	Span source.Span
	Msg  string
}

// Diagnostic is a located message about a program. Line is 1-based; zero
// means the diagnostic is not tied to a line.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Path     string
	Line     uint32
	Primary  source.Span
	Notes    []Note
}

func New(sev Severity, code Code, line uint32, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Line:     line,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, line uint32, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, line, primary, msg)
}

func (d Diagnostic) WithNote(line uint32, sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Line: line, Span: sp, Msg: msg})
	return d
}

func (d Diagnostic) WithPath(path string) Diagnostic {
	d.Path = path
	return d
}

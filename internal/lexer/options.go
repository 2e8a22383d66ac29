package lexer

import (
	"lisle/internal/diag"
	"lisle/internal/source"
)

type Options struct {
	Reporter diag.Reporter // может быть nil
	// Line is the 1-based line number attached to reported errors.
	Line uint32
}

func (lx *Lexer) errLex(code diag.Code, sp source.Span, msg string) {
	if lx.err == nil {
		lx.err = &diag.Error{Code: code, Msg: msg, Line: lx.opts.Line, Span: sp}
	}
	if lx.opts.Reporter != nil {
		diag.ReportError(lx.opts.Reporter, code, lx.opts.Line, sp, msg).Emit()
	}
}

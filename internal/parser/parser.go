// Package parser maps tokenized lines to statements and validates block
// structure.
package parser

import (
	"lisle/internal/ast"
	"lisle/internal/diag"
	"lisle/internal/source"
	"lisle/internal/token"
)

// Parser consumes the tokens of a single line.
type Parser struct {
	toks     []token.Token
	pos      int
	lastSpan source.Span
	stmt     ast.StmtKind
	err      *diag.Error
}

func newParser(toks []token.Token) *Parser {
	// комментарии парсеру не нужны
	n := len(toks)
	for n > 0 && toks[n-1].Kind == token.Comment {
		n--
	}
	return &Parser{toks: toks[:n]}
}

// ParseLine maps one line's tokens to exactly one statement. Blank and
// comment-only lines yield an Empty statement.
func ParseLine(toks []token.Token) (ast.Stmt, error) {
	p := newParser(toks)
	st, ok := p.parseStmt()
	if !ok {
		return ast.Stmt{}, p.failure()
	}
	if !p.at(token.EOF) {
		p.errAt(diag.SynTrailingTokens, p.peek().Span, "unexpected "+describe(p.peek())+" after "+st.Kind.String())
		return ast.Stmt{}, p.failure()
	}
	if n := len(p.toks); n > 0 {
		st.Span = p.toks[0].Span.Cover(p.toks[n-1].Span)
	}
	return st, nil
}

// ParseExpr parses a standalone expression (used by tooling and tests).
func ParseExpr(toks []token.Token) (*ast.Expr, error) {
	p := newParser(toks)
	e, ok := p.parseExpr()
	if !ok {
		return nil, p.failure()
	}
	if !p.at(token.EOF) {
		p.errAt(diag.SynTrailingTokens, p.peek().Span, "unexpected "+describe(p.peek())+" after expression")
		return nil, p.failure()
	}
	return e, nil
}

func (p *Parser) failure() error {
	if p.err == nil {
		p.err = &diag.Error{Code: diag.SynUnexpectedToken, Msg: "invalid statement"}
	}
	if p.err.Stmt == "" && p.stmt != ast.StmtEmpty {
		p.err.Stmt = p.stmt.String()
	}
	return p.err
}

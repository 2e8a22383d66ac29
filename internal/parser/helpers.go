package parser

import (
	"fmt"

	"lisle/internal/diag"
	"lisle/internal/source"
	"lisle/internal/token"
)

func (p *Parser) peek() token.Token {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return token.Token{Kind: token.EOF, Span: source.Span{Start: p.lastSpan.End, End: p.lastSpan.End}}
}

func (p *Parser) at(k token.Kind) bool {
	return p.peek().Kind == k
}

// advance: съедает следующий токен и обновляет lastSpan
func (p *Parser) advance() token.Token {
	tok := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
		p.lastSpan = tok.Span
	}
	return tok
}

// eat consumes the next token when it has kind k.
func (p *Parser) eat(k token.Kind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

// expect: ожидаем конкретный токен. Если нет: репортим и возвращаем false.
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	tok := p.peek()
	p.errAt(code, tok.Span, fmt.Sprintf("%s, found %s", msg, describe(tok)))
	return tok, false
}

// errAt records the first error of the line.
func (p *Parser) errAt(code diag.Code, sp source.Span, msg string) {
	if p.err != nil {
		return
	}
	p.err = &diag.Error{Code: code, Msg: msg, Span: sp}
}

func describe(t token.Token) string {
	switch t.Kind {
	case token.EOF:
		return "end of line"
	case token.Ident:
		return fmt.Sprintf("identifier %q", t.Text)
	case token.IntLit, token.FloatLit, token.StringLit:
		return "literal " + t.Text
	}
	return fmt.Sprintf("%q", t.Text)
}

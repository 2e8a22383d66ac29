package lexer

import (
	"lisle/internal/token"
)

const utf8RuneSelf = 0x80

// scanIdentOrKeyword reads an identifier and classifies it through
// token.LookupKeyword. Text is the exact source slice.
func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.cursor.Mark()
	if r, sz := lx.peekRune(); sz == 0 || !isIdentStartRune(r) {
		return lx.scanOperatorOrPunct()
	}
	lx.bumpRune()
	lx.skipIdentTail()

	sp := lx.cursor.SpanFrom(start)
	tok := token.Token{Kind: token.Ident, Span: sp, Text: lx.cursor.text(sp)}
	if k, ok := token.LookupKeyword(tok.Text); ok {
		tok.Kind = k
	}
	return tok
}

// skipIdentTail consumes identifier characters; ASCII is checked by byte.
func (lx *Lexer) skipIdentTail() {
	for {
		if b := lx.cursor.Peek(); b < utf8RuneSelf {
			if !isIdentContinueByte(b) {
				return
			}
			lx.cursor.Bump()
			continue
		}
		r, sz := lx.peekRune()
		if sz == 0 || !isIdentContinueRune(r) {
			return
		}
		lx.bumpRune()
	}
}

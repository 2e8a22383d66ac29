package lexer

import (
	"errors"

	"lisle/internal/diag"
	"lisle/internal/token"
)

// Поддержка: 0, 123, 0b101, 0xFF, 1.5, 1e-3, 1.0e+10.
// Десятичные целые обязаны помещаться в int32.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	kind := token.IntLit

	if lx.cursor.Peek() == '0' {
		b0, b1, ok := lx.cursor.Peek2()
		if ok && b0 == '0' && (b1 == 'x' || b1 == 'X' || b1 == 'b' || b1 == 'B') {
			lx.cursor.Bump()
			lx.cursor.Bump()
			digit := digitsFor(b1)
			n := 0
			for digit(lx.cursor.Peek()) {
				lx.cursor.Bump()
				n++
			}
			if n == 0 {
				return lx.badNumber(start, diag.LexBadNumber, "expected digits after base prefix")
			}
			return lx.finishNumber(start, kind)
		}
	}

	for isDec(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}

	// дробная часть только если после точки цифра: "v[1].x" не число
	if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '.' && isDec(b1) {
		kind = token.FloatLit
		lx.cursor.Bump()
		for isDec(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
	}

	if b := lx.cursor.Peek(); b == 'e' || b == 'E' {
		mark := lx.cursor.Mark()
		lx.cursor.Bump()
		if lx.cursor.Peek() == '+' || lx.cursor.Peek() == '-' {
			lx.cursor.Bump()
		}
		if !isDec(lx.cursor.Peek()) {
			lx.cursor.Reset(mark)
			return lx.badNumber(start, diag.LexBadNumber, "expected digit after exponent")
		}
		kind = token.FloatLit
		for isDec(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
	}
	return lx.finishNumber(start, kind)
}

func (lx *Lexer) finishNumber(start Mark, kind token.Kind) token.Token {
	// "12abc": ошибка, а не два токена
	if r, sz := lx.peekRune(); sz > 0 && isIdentContinueRune(r) {
		lx.skipIdentTail()
		return lx.badNumber(start, diag.LexBadNumber, "invalid character in number literal")
	}
	sp := lx.cursor.SpanFrom(start)
	text := lx.cursor.text(sp)
	switch kind {
	case token.IntLit:
		if _, err := token.ParseIntLit(text); err != nil {
			if errors.Is(err, token.ErrIntRange) {
				if token.IsMinIntMagnitude(text) && lx.afterUnaryMinus() {
					break
				}
				return lx.badNumber(start, diag.LexIntOverflow, "integer literal "+text+" does not fit in 32 bits")
			}
			return lx.badNumber(start, diag.LexBadNumber, "malformed integer literal "+text)
		}
	case token.FloatLit:
		if _, err := token.ParseFloatLit(text); err != nil {
			return lx.badNumber(start, diag.LexBadNumber, "float literal "+text+" out of range")
		}
	}
	return token.Token{Kind: kind, Span: sp, Text: text}
}

func (lx *Lexer) badNumber(start Mark, code diag.Code, msg string) token.Token {
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(code, sp, msg)
	return token.Token{Kind: token.Invalid, Span: sp, Text: lx.cursor.text(sp)}
}

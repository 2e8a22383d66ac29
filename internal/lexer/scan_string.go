package lexer

import (
	"fmt"
	"strings"

	"lisle/internal/diag"
	"lisle/internal/token"
)

// "..." с escape \" \\ \n \t \r \0. Строка не может переходить на следующую линию.
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening '"'
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b == '"' {
			lx.cursor.Bump()
			sp := lx.cursor.SpanFrom(start)
			return token.Token{Kind: token.StringLit, Span: sp, Text: lx.cursor.text(sp)}
		}
		if b == '\\' {
			escStart := lx.cursor.Mark()
			lx.cursor.Bump()
			if lx.cursor.EOF() {
				break
			}
			e := lx.cursor.Bump()
			if _, ok := unescape(e); !ok {
				sp := lx.cursor.SpanFrom(escStart)
				lx.errLex(diag.LexBadEscape, sp, fmt.Sprintf("unknown escape sequence \\%c", e))
				return token.Token{Kind: token.Invalid, Span: sp, Text: lx.cursor.text(sp)}
			}
			continue
		}
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.LexUnterminatedString, sp, "unterminated string literal")
	return token.Token{Kind: token.Invalid, Span: sp, Text: lx.cursor.text(sp)}
}

func unescape(b byte) (byte, bool) {
	switch b {
	case '"', '\\':
		return b, true
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case 'r':
		return '\r', true
	case '0':
		return 0, true
	}
	return 0, false
}

// Unquote returns the value of a StringLit token text.
func Unquote(text string) (string, error) {
	if len(text) < 2 || text[0] != '"' || text[len(text)-1] != '"' {
		return "", fmt.Errorf("malformed string literal %s", text)
	}
	body := text[1 : len(text)-1]
	if !strings.Contains(body, `\`) {
		return body, nil
	}
	var sb strings.Builder
	sb.Grow(len(body))
	for i := 0; i < len(body); i++ {
		if body[i] != '\\' {
			sb.WriteByte(body[i])
			continue
		}
		i++
		if i >= len(body) {
			return "", fmt.Errorf("dangling escape in %s", text)
		}
		c, ok := unescape(body[i])
		if !ok {
			return "", fmt.Errorf("unknown escape \\%c", body[i])
		}
		sb.WriteByte(c)
	}
	return sb.String(), nil
}

// Quote renders s as a string literal that Unquote accepts.
func Quote(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		case 0:
			sb.WriteString(`\0`)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

package lexer

import (
	"lisle/internal/diag"
	"lisle/internal/source"
	"lisle/internal/token"
)

type Lexer struct {
	cursor Cursor
	opts   Options
	look   *token.Token // 1 элементный буфер для токена
	err    *diag.Error  // первая ошибка строки

	// два последних выданных токена, для унарного минуса
	prev, prev2 token.Kind
}

func New(line string, opts Options) *Lexer {
	return &Lexer{
		cursor: NewCursor(line),
		opts:   opts,
	}
}

// Tokenize splits one program line into tokens. It stops at the first
// lexical error and returns it as a *diag.Error with kind LexError.
func Tokenize(line string) ([]token.Token, error) {
	return TokenizeWith(line, Options{})
}

// TokenizeWith is Tokenize with explicit options.
func TokenizeWith(line string, opts Options) ([]token.Token, error) {
	lx := New(source.NormalizeLine(line), opts)
	var out []token.Token
	for {
		tok := lx.Next()
		if lx.err != nil {
			return nil, lx.err
		}
		if tok.Kind == token.EOF {
			return out, nil
		}
		out = append(out, tok)
	}
}

// Err returns the first error seen so far.
func (lx *Lexer) Err() error {
	if lx.err == nil {
		return nil
	}
	return lx.err
}

// Next возвращает следующий значимый токен. После конца строки всегда EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}
	tok := lx.scan()
	if tok.Kind != token.Comment {
		lx.prev2, lx.prev = lx.prev, tok.Kind
	}
	return tok
}

func (lx *Lexer) scan() token.Token {
	lx.skipSpace()

	if lx.cursor.EOF() {
		return token.Token{Kind: token.EOF, Span: lx.emptySpan()}
	}

	ch := lx.cursor.Peek()
	switch {
	case isIdentStartByte(ch) || ch >= utf8RuneSelf:
		return lx.scanIdentOrKeyword()
	case isDec(ch):
		return lx.scanNumber()
	case ch == '"':
		return lx.scanString()
	case ch == '#':
		return lx.scanComment()
	default:
		return lx.scanOperatorOrPunct()
	}
}

// afterUnaryMinus reports whether the token being scanned follows a '-'
// that negates rather than subtracts.
func (lx *Lexer) afterUnaryMinus() bool {
	return lx.prev == token.Minus && !token.EndsOperand(lx.prev2)
}

// Peek возвращает следующий токен, не потребляя его.
func (lx *Lexer) Peek() token.Token {
	t := lx.Next()
	lx.look = &t
	return t
}

func (lx *Lexer) skipSpace() {
	for !lx.cursor.EOF() {
		switch lx.cursor.Peek() {
		case ' ', '\t', '\r':
			lx.cursor.Bump()
		default:
			return
		}
	}
}

func (lx *Lexer) scanComment() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Off = lx.cursor.Limit
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.Comment, Span: sp, Text: lx.cursor.text(sp)}
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{Start: lx.cursor.Off, End: lx.cursor.Off}
}

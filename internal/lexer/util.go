package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"fortio.org/safecast"
)

// peekRune decodes the rune at the cursor without moving it. Size 0 means
// end of line.
func (lx *Lexer) peekRune() (r rune, size int) {
	c := &lx.cursor
	if c.EOF() {
		return utf8.RuneError, 0
	}
	if b := c.Peek(); b < utf8.RuneSelf {
		return rune(b), 1
	}
	return utf8.DecodeRuneInString(c.Src[c.Off:c.Limit])
}

// bumpRune moves past the rune at the cursor.
func (lx *Lexer) bumpRune() {
	_, sz := lx.peekRune()
	if sz == 0 {
		return
	}
	step, err := safecast.Conv[uint32](sz)
	if err != nil {
		panic(fmt.Errorf("bumpRune overflow: %w", err))
	}
	lx.cursor.Off += step
}

// tryOp consumes op when the line continues with it.
func (lx *Lexer) tryOp(op string) bool {
	c := &lx.cursor
	if c.EOF() || !strings.HasPrefix(c.Src[c.Off:c.Limit], op) {
		return false
	}
	for range len(op) {
		c.Bump()
	}
	return true
}

// Идентификаторы: ASCII проверяется по байту, остальное через unicode.
func isIdentStartByte(b byte) bool {
	return b == '_' || (b|0x20 >= 'a' && b|0x20 <= 'z')
}

func isIdentContinueByte(b byte) bool { return isIdentStartByte(b) || isDec(b) }

func isIdentStartRune(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isIdentContinueRune(r rune) bool { return isIdentStartRune(r) || unicode.IsDigit(r) }

func isDec(b byte) bool { return b >= '0' && b <= '9' }

// digitsFor returns the digit class selected by a 0x/0b prefix letter.
func digitsFor(prefix byte) func(byte) bool {
	if prefix|0x20 == 'b' {
		return func(b byte) bool { return b == '0' || b == '1' }
	}
	return func(b byte) bool { return isDec(b) || (b|0x20 >= 'a' && b|0x20 <= 'f') }
}

package format

import (
	"strings"

	"lisle/internal/token"
)

type Options struct {
	IndentWidth int
	UseTabs     bool
}

func (o Options) withDefaults() Options {
	if o.IndentWidth <= 0 {
		o.IndentWidth = 4
	}
	return o
}

// LineShape describes how a line moves the nesting depth.
type LineShape uint8

const (
	ShapePlain  LineShape = iota
	ShapeOpen             // fn, if, for, loop, module, class
	ShapeClause           // elif, else
	ShapeClose            // end
)

// ShapeOf classifies a line by its first token.
func ShapeOf(toks []token.Token) LineShape {
	if len(toks) == 0 {
		return ShapePlain
	}
	switch first := toks[0]; {
	case first.IsBlockOpener():
		return ShapeOpen
	case first.Kind == token.KwElif || first.Kind == token.KwElse:
		return ShapeClause
	case first.Kind == token.KwEnd:
		return ShapeClose
	}
	return ShapePlain
}

// Render prints every line with canonical spacing, indented by the depth
// Depths assigns it.
func Render(lines [][]token.Token, opt Options) string {
	w := NewWriter(opt)
	for i, depth := range Depths(lines) {
		w.Line(depth, Line(lines[i]))
	}
	return w.String()
}

// Depths returns the nesting depth each line is printed at.
func Depths(lines [][]token.Token) []int {
	out := make([]int, len(lines))
	depth := 0
	for i, toks := range lines {
		switch ShapeOf(toks) {
		case ShapeClose:
			depth = max(depth-1, 0)
			out[i] = depth
		case ShapeClause:
			out[i] = max(depth-1, 0)
		case ShapeOpen:
			out[i] = depth
			depth++
		default:
			out[i] = depth
		}
	}
	return out
}

// Line renders one line's tokens with canonical spacing and no indentation.
func Line(toks []token.Token) string {
	var sb strings.Builder
	for i, t := range toks {
		if i > 0 && spaceBetween(toks, i) {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.Text)
	}
	return sb.String()
}

// spaceBetween reports whether a space separates toks[i-1] and toks[i].
func spaceBetween(toks []token.Token, i int) bool {
	prev, cur := toks[i-1], toks[i]
	if cur.Kind == token.Comment {
		return true
	}
	switch cur.Kind {
	case token.RParen, token.RBracket, token.Comma, token.Dot:
		return false
	case token.LParen, token.LBracket:
		if isOperand(prev.Kind) {
			return false
		}
	}
	switch prev.Kind {
	case token.LParen, token.LBracket, token.Dot:
		return false
	case token.Minus:
		if isUnary(toks, i-1) {
			return false
		}
	}
	return true
}

// isOperand reports whether k can end an operand, so a following '(' or
// '[' is a call or index.
func isOperand(k token.Kind) bool {
	switch k {
	case token.Ident, token.RParen, token.RBracket, token.StringLit:
		return true
	}
	return false
}

func isUnary(toks []token.Token, i int) bool {
	return i == 0 || !token.EndsOperand(toks[i-1].Kind)
}

package token

import (
	"lisle/internal/source"
)

// Token represents a single lexeme of a program line.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// IsLiteral reports whether the token is a numeric, boolean, nil or string literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, FloatLit, StringLit, KwTrue, KwFalse, KwNil:
		return true
	default:
		return false
	}
}

// IsPunctOrOp reports whether the token is a punctuation or operator.
func (t Token) IsPunctOrOp() bool {
	return t.Kind >= Plus && t.Kind <= DotDotDot
}

// IsKeyword reports whether the token is a language keyword.
func (t Token) IsKeyword() bool {
	return t.Kind >= KwFn && t.Kind <= KwNil
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }

// IsBlockOpener reports whether a line starting with this token opens a
// block closed by 'end'.
func (t Token) IsBlockOpener() bool {
	switch t.Kind {
	case KwFn, KwIf, KwFor, KwLoop, KwModule, KwClass:
		return true
	default:
		return false
	}
}

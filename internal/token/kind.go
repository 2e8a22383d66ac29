package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the line.
	EOF

	// Ident represents an identifier token.
	Ident
	// IntLit represents an integer literal (decimal, 0x or 0b).
	IntLit
	// FloatLit represents a float literal.
	FloatLit
	// StringLit represents a double-quoted string literal.
	StringLit
	// Comment represents a '#' comment running to end of line.
	Comment

	// KwFn represents the 'fn' keyword.
	KwFn // fn
	// KwEnd represents the 'end' keyword.
	KwEnd // end
	// KwIf represents the 'if' keyword.
	KwIf // if
	// KwElif represents the 'elif' keyword.
	KwElif // elif
	// KwElse represents the 'else' keyword.
	KwElse // else
	// KwFor represents the 'for' keyword.
	KwFor // for
	// KwTo represents the 'to' keyword.
	KwTo // to
	// KwStep represents the 'step' keyword.
	KwStep // step
	// KwLoop represents the 'loop' keyword.
	KwLoop // loop
	// KwBreak represents the 'break' keyword.
	KwBreak // break
	// KwReturn represents the 'return' keyword.
	KwReturn // return
	// KwLet represents the 'let' keyword.
	KwLet // let
	// KwVar represents the 'var' keyword.
	KwVar // var
	// KwModule represents the 'module' keyword.
	KwModule // module
	// KwClass represents the 'class' keyword.
	KwClass // class
	// KwAnd represents the 'and' keyword.
	KwAnd // and
	// KwOr represents the 'or' keyword.
	KwOr // or
	// KwNot represents the 'not' keyword.
	KwNot // not
	// KwTrue represents the 'true' keyword.
	KwTrue // true
	// KwFalse represents the 'false' keyword.
	KwFalse // false
	// KwNil represents the 'nil' keyword.
	KwNil // nil

	// Plus represents the plus operator token.
	Plus // +
	// Minus represents the minus operator token.
	Minus // -
	// Star represents the star operator token.
	Star // *
	// Slash represents the slash operator token.
	Slash // /
	// Percent represents the percent operator token.
	Percent // %
	// EqEq represents the equality operator token.
	EqEq // ==
	// BangEq represents the inequality operator token.
	BangEq // !=
	// Lt represents the lt operator token.
	Lt // <
	// LtEq represents the lt eq operator token.
	LtEq // <=
	// Gt represents the gt operator token.
	Gt // >
	// GtEq represents the gt eq operator token.
	GtEq // >=
	// Assign represents the assignment token.
	Assign // =
	// LParen represents the left parenthesis token.
	LParen // (
	// RParen represents the right parenthesis token.
	RParen // )
	// LBracket represents the left bracket token.
	LBracket // [
	// RBracket represents the right bracket token.
	RBracket // ]
	// Comma represents the comma token.
	Comma // ,
	// Dot represents the dot token.
	Dot // .
	// DotDotDot represents the variadic tail marker.
	DotDotDot // ...

	kindCount
)

var kindNames = [...]string{
	Invalid:   "Invalid",
	EOF:       "EOF",
	Ident:     "Ident",
	IntLit:    "IntLit",
	FloatLit:  "FloatLit",
	StringLit: "StringLit",
	Comment:   "Comment",
	KwFn:      "KwFn",
	KwEnd:     "KwEnd",
	KwIf:      "KwIf",
	KwElif:    "KwElif",
	KwElse:    "KwElse",
	KwFor:     "KwFor",
	KwTo:      "KwTo",
	KwStep:    "KwStep",
	KwLoop:    "KwLoop",
	KwBreak:   "KwBreak",
	KwReturn:  "KwReturn",
	KwLet:     "KwLet",
	KwVar:     "KwVar",
	KwModule:  "KwModule",
	KwClass:   "KwClass",
	KwAnd:     "KwAnd",
	KwOr:      "KwOr",
	KwNot:     "KwNot",
	KwTrue:    "KwTrue",
	KwFalse:   "KwFalse",
	KwNil:     "KwNil",
	Plus:      "Plus",
	Minus:     "Minus",
	Star:      "Star",
	Slash:     "Slash",
	Percent:   "Percent",
	EqEq:      "EqEq",
	BangEq:    "BangEq",
	Lt:        "Lt",
	LtEq:      "LtEq",
	Gt:        "Gt",
	GtEq:      "GtEq",
	Assign:    "Assign",
	LParen:    "LParen",
	RParen:    "RParen",
	LBracket:  "LBracket",
	RBracket:  "RBracket",
	Comma:     "Comma",
	Dot:       "Dot",
	DotDotDot: "DotDotDot",
}

// spelling holds the fixed source text of keywords and punctuation.
var spelling = [...]string{
	KwFn:      "fn",
	KwEnd:     "end",
	KwIf:      "if",
	KwElif:    "elif",
	KwElse:    "else",
	KwFor:     "for",
	KwTo:      "to",
	KwStep:    "step",
	KwLoop:    "loop",
	KwBreak:   "break",
	KwReturn:  "return",
	KwLet:     "let",
	KwVar:     "var",
	KwModule:  "module",
	KwClass:   "class",
	KwAnd:     "and",
	KwOr:      "or",
	KwNot:     "not",
	KwTrue:    "true",
	KwFalse:   "false",
	KwNil:     "nil",
	Plus:      "+",
	Minus:     "-",
	Star:      "*",
	Slash:     "/",
	Percent:   "%",
	EqEq:      "==",
	BangEq:    "!=",
	Lt:        "<",
	LtEq:      "<=",
	Gt:        ">",
	GtEq:      ">=",
	Assign:    "=",
	LParen:    "(",
	RParen:    ")",
	LBracket:  "[",
	RBracket:  "]",
	Comma:     ",",
	Dot:       ".",
	DotDotDot: "...",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(?)"
}

// Spelling returns the fixed source text of a keyword or punctuation kind,
// or "" for kinds whose text varies (identifiers, literals, comments).
func (k Kind) Spelling() string {
	if int(k) < len(spelling) {
		return spelling[k]
	}
	return ""
}

// Valid reports whether k is a defined kind.
func (k Kind) Valid() bool {
	return k < kindCount
}

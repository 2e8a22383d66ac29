package parser

import "lisle/internal/token"

// Таблица приоритетов для бинарных операторов.
// Чем больше число, тем выше приоритет.
const (
	precLogicalOr      = 1 // or
	precLogicalAnd     = 2 // and
	precComparison     = 3 // == != < <= > >=
	precAdditive       = 4 // + -
	precMultiplicative = 5 // * / %
)

// binaryPrec возвращает приоритет оператора или -1.
func binaryPrec(kind token.Kind) int {
	switch kind {
	case token.KwOr:
		return precLogicalOr
	case token.KwAnd:
		return precLogicalAnd
	case token.EqEq, token.BangEq, token.Lt, token.LtEq, token.Gt, token.GtEq:
		return precComparison
	case token.Plus, token.Minus:
		return precAdditive
	case token.Star, token.Slash, token.Percent:
		return precMultiplicative
	}
	return -1
}

func isUnaryOp(kind token.Kind) bool {
	return kind == token.Minus || kind == token.KwNot
}

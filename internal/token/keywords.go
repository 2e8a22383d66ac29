package token

var keywords = map[string]Kind{
	"fn":     KwFn,
	"end":    KwEnd,
	"if":     KwIf,
	"elif":   KwElif,
	"else":   KwElse,
	"for":    KwFor,
	"to":     KwTo,
	"step":   KwStep,
	"loop":   KwLoop,
	"break":  KwBreak,
	"return": KwReturn,
	"let":    KwLet,
	"var":    KwVar,
	"module": KwModule,
	"class":  KwClass,
	"and":    KwAnd,
	"or":     KwOr,
	"not":    KwNot,
	"true":   KwTrue,
	"false":  KwFalse,
	"nil":    KwNil,
}

// LookupKeyword возвращает тип и bool если это ключевое слово.
// Ключевые слова регистрозависимые: только lowercase версии распознаются.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}

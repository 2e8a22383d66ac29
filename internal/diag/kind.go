package diag

import "errors"

// Kind classifies every error a program can raise.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindLex
	KindParse
	KindStructure
	KindName
	KindType
	KindIndex
	KindConversion
	KindArithmetic
	KindControlFlow
	KindHost
	KindCapacity
)

func (k Kind) String() string {
	switch k {
	case KindLex:
		return "LexError"
	case KindParse:
		return "ParseError"
	case KindStructure:
		return "StructureError"
	case KindName:
		return "NameError"
	case KindType:
		return "TypeError"
	case KindIndex:
		return "IndexError"
	case KindConversion:
		return "ConversionError"
	case KindArithmetic:
		return "ArithmeticError"
	case KindControlFlow:
		return "ControlFlowError"
	case KindHost:
		return "HostError"
	case KindCapacity:
		return "CapacityError"
	}
	return "Error"
}

// Kinded is implemented by errors that carry a Kind.
type Kinded interface {
	error
	Kind() Kind
}

// KindOf returns the Kind of the first Kinded error in err's chain.
func KindOf(err error) Kind {
	var k Kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindUnknown
}

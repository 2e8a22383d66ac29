package ast

import (
	"lisle/internal/source"
	"lisle/internal/token"
)

type ExprKind uint8

const (
	ExprInt ExprKind = iota
	ExprFloat
	ExprString
	ExprBool
	ExprNil
	ExprIdent
	ExprUnary  // Op X
	ExprBinary // X Op Y
	ExprCall   // X(Args...)
	ExprIndex  // X[Y]
	ExprAttr   // X.Name
)

var exprKindNames = [...]string{
	ExprInt:    "Int",
	ExprFloat:  "Float",
	ExprString: "String",
	ExprBool:   "Bool",
	ExprNil:    "Nil",
	ExprIdent:  "Ident",
	ExprUnary:  "Unary",
	ExprBinary: "Binary",
	ExprCall:   "Call",
	ExprIndex:  "Index",
	ExprAttr:   "Attr",
}

func (k ExprKind) String() string {
	if int(k) < len(exprKindNames) {
		return exprKindNames[k]
	}
	return "Expr(?)"
}

// Expr is an expression node. Only the fields relevant to Kind are set.
type Expr struct {
	Kind  ExprKind
	Span  source.Span
	Int   int32
	Float float32
	Str   string // string literal value
	Bool  bool
	Name  string     // identifier or attribute name
	Op    token.Kind // unary/binary operator
	X, Y  *Expr
	Args  []*Expr
}

// IsAssignable reports whether e can appear on the left of '='.
func (e *Expr) IsAssignable() bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case ExprIdent:
		return true
	case ExprAttr, ExprIndex:
		return e.X.IsAssignable() || e.X.Kind == ExprCall
	}
	return false
}

// Root returns the leftmost identifier of an assignable path, or nil.
func (e *Expr) Root() *Expr {
	for e != nil {
		switch e.Kind {
		case ExprIdent:
			return e
		case ExprAttr, ExprIndex, ExprCall:
			e = e.X
		default:
			return nil
		}
	}
	return nil
}

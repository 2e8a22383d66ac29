package ast

import "lisle/internal/source"

type StmtKind uint8

const (
	StmtEmpty StmtKind = iota
	StmtExpr
	StmtLet
	StmtVar
	StmtIf
	StmtElif
	StmtElse
	StmtFor
	StmtLoop
	StmtBreak
	StmtReturn
	StmtFn
	StmtClass
	StmtModule
	StmtEnd
)

var stmtKindNames = [...]string{
	StmtEmpty:  "Empty",
	StmtExpr:   "ExprStmt",
	StmtLet:    "Let",
	StmtVar:    "Var",
	StmtIf:     "If",
	StmtElif:   "Elif",
	StmtElse:   "Else",
	StmtFor:    "For",
	StmtLoop:   "Loop",
	StmtBreak:  "Break",
	StmtReturn: "Return",
	StmtFn:     "FnDef",
	StmtClass:  "ClassDef",
	StmtModule: "ModuleDef",
	StmtEnd:    "End",
}

func (k StmtKind) String() string {
	if int(k) < len(stmtKindNames) {
		return stmtKindNames[k]
	}
	return "Stmt(?)"
}

// Opens reports whether the statement starts a block closed by 'end'.
func (k StmtKind) Opens() bool {
	switch k {
	case StmtIf, StmtFor, StmtLoop, StmtFn, StmtClass, StmtModule:
		return true
	}
	return false
}

// Stmt is one parsed line.
//
//	Let:    Target = X
//	Var:    Name = X
//	If/Elif: X is the guard
//	For:    Name = From to To [step Step]
//	Return: X may be nil
//	Fn:     Name(Params[, ...])
//	Class/Module: Name
type Stmt struct {
	Kind     StmtKind
	Line     uint32 // 1-based, set by parser.Build
	Span     source.Span
	Name     string
	Params   []string
	Variadic bool
	Target   *Expr
	X        *Expr
	From     *Expr
	To       *Expr
	Step     *Expr
}

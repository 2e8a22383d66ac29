package parser

import (
	"fmt"

	"lisle/internal/ast"
	"lisle/internal/diag"
	"lisle/internal/token"
)

// Build parses every line and validates block nesting. Errors carry the
// 1-based line number of the offending statement.
func Build(lines [][]token.Token) (*ast.Program, error) {
	stmts := make([]ast.Stmt, len(lines))
	for i, toks := range lines {
		st, err := ParseLine(toks)
		if err != nil {
			if de, ok := err.(*diag.Error); ok {
				return nil, de.AtLine(lineOf(i))
			}
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		st.Line = lineOf(i)
		stmts[i] = st
	}
	return Link(stmts)
}

type openBlock struct {
	idx        int
	kind       ast.StmtKind
	lastClause int
	sawElse    bool
}

// Link computes the jump tables of an already parsed statement list.
func Link(stmts []ast.Stmt) (*ast.Program, error) {
	prog := &ast.Program{
		Stmts: stmts,
		End:   make([]int, len(stmts)),
		Next:  make([]int, len(stmts)),
	}
	for i := range stmts {
		prog.End[i] = ast.NoIndex
		prog.Next[i] = ast.NoIndex
	}

	var stack []openBlock
	for i := range stmts {
		st := &stmts[i]
		if len(stack) > 0 {
			if err := checkBody(stack[len(stack)-1].kind, st); err != nil {
				return nil, err
			}
		}
		switch st.Kind {
		case ast.StmtIf:
			stack = append(stack, openBlock{idx: i, kind: st.Kind, lastClause: i})
		case ast.StmtFor, ast.StmtLoop, ast.StmtFn, ast.StmtClass, ast.StmtModule:
			stack = append(stack, openBlock{idx: i, kind: st.Kind})
		case ast.StmtElif, ast.StmtElse:
			if len(stack) == 0 || stack[len(stack)-1].kind != ast.StmtIf {
				return nil, structErr(diag.StrStrayClause, st, "'%s' without a matching 'if'", clauseWord(st.Kind))
			}
			top := &stack[len(stack)-1]
			if top.sawElse {
				return nil, structErr(diag.StrClauseAfterElse, st, "'%s' after 'else' (if on line %d)", clauseWord(st.Kind), stmts[top.idx].Line)
			}
			prog.Next[top.lastClause] = i
			top.lastClause = i
			top.sawElse = st.Kind == ast.StmtElse
		case ast.StmtEnd:
			if len(stack) == 0 {
				return nil, structErr(diag.StrUnmatchedEnd, st, "'end' without an open block")
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			prog.End[top.idx] = i
			if top.kind == ast.StmtIf {
				prog.Next[top.lastClause] = i
			}
		case ast.StmtBreak:
			if !inLoop(stack) {
				return nil, structErr(diag.StrBreakOutside, st, "'break' outside 'for' or 'loop'")
			}
		case ast.StmtReturn:
			if !inFunction(stack) {
				return nil, structErr(diag.StrReturnOutside, st, "'return' outside a function")
			}
		}
	}
	if len(stack) > 0 {
		top := stack[len(stack)-1]
		opener := &stmts[top.idx]
		return nil, structErr(diag.StrMissingEnd, opener, "block opened here is missing 'end'")
	}
	return prog, nil
}

// checkBody restricts what may appear directly inside class and module blocks.
func checkBody(parent ast.StmtKind, st *ast.Stmt) error {
	switch parent {
	case ast.StmtClass:
		switch st.Kind {
		case ast.StmtVar, ast.StmtFn, ast.StmtEmpty, ast.StmtEnd:
			return nil
		}
		return structErr(diag.StrBadClassBody, st, "class body may only contain 'var' and 'fn', found %s", st.Kind)
	case ast.StmtModule:
		switch st.Kind {
		case ast.StmtVar, ast.StmtFn, ast.StmtClass, ast.StmtModule, ast.StmtEmpty, ast.StmtEnd:
			return nil
		}
		return structErr(diag.StrBadModuleBody, st, "module body may only contain definitions, found %s", st.Kind)
	}
	return nil
}

// inLoop: функции сбрасывают контекст цикла
func inLoop(stack []openBlock) bool {
	for i := len(stack) - 1; i >= 0; i-- {
		switch stack[i].kind {
		case ast.StmtFor, ast.StmtLoop:
			return true
		case ast.StmtFn, ast.StmtClass, ast.StmtModule:
			return false
		}
	}
	return false
}

func inFunction(stack []openBlock) bool {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].kind == ast.StmtFn {
			return true
		}
	}
	return false
}

func clauseWord(k ast.StmtKind) string {
	if k == ast.StmtElif {
		return "elif"
	}
	return "else"
}

func structErr(code diag.Code, st *ast.Stmt, format string, args ...any) *diag.Error {
	return &diag.Error{
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
		Line: st.Line,
		Span: st.Span,
		Stmt: st.Kind.String(),
	}
}

func lineOf(i int) uint32 {
	return uint32(i) + 1 // #nosec G115 -- line count is bounded by memory
}

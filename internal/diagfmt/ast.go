package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"lisle/internal/ast"
	"lisle/internal/lexer"
	"lisle/internal/token"
)

// FormatProgramPretty prints the statement list with nesting, one statement
// per row, and the jump targets of blocks:
//
//	   1  FnDef add(a, b)                  end=3
//	   2    Return (a + b)
//	   3  End
func FormatProgramPretty(w io.Writer, prog *ast.Program) error {
	depth := 0
	for i := range prog.Stmts {
		st := &prog.Stmts[i]
		switch st.Kind {
		case ast.StmtEnd:
			depth = max(depth-1, 0)
		case ast.StmtElif, ast.StmtElse:
			depth = max(depth-1, 0)
		}
		row := fmt.Sprintf("%4d  %s%s", st.Line, strings.Repeat("  ", depth), StmtString(st))
		var jumps []string
		if prog.End[i] != ast.NoIndex {
			jumps = append(jumps, "end="+strconv.Itoa(int(prog.Stmts[prog.End[i]].Line)))
		}
		if prog.Next[i] != ast.NoIndex {
			jumps = append(jumps, "next="+strconv.Itoa(int(prog.Stmts[prog.Next[i]].Line)))
		}
		if len(jumps) > 0 {
			row = fmt.Sprintf("%-40s %s", row, strings.Join(jumps, " "))
		}
		if _, err := fmt.Fprintln(w, row); err != nil {
			return err
		}
		if st.Kind.Opens() || st.Kind == ast.StmtElif || st.Kind == ast.StmtElse {
			depth++
		}
	}
	return nil
}

// StmtString renders a statement header with fully parenthesised
// expressions.
func StmtString(st *ast.Stmt) string {
	var sb strings.Builder
	sb.WriteString(st.Kind.String())
	switch st.Kind {
	case ast.StmtVar:
		sb.WriteString(" " + st.Name)
		if st.X != nil {
			sb.WriteString(" = " + ExprString(st.X))
		}
	case ast.StmtLet:
		sb.WriteString(" " + ExprString(st.Target) + " = " + ExprString(st.X))
	case ast.StmtIf, ast.StmtElif, ast.StmtExpr:
		sb.WriteString(" " + ExprString(st.X))
	case ast.StmtReturn:
		if st.X != nil {
			sb.WriteString(" " + ExprString(st.X))
		}
	case ast.StmtFor:
		fmt.Fprintf(&sb, " %s = %s to %s", st.Name, ExprString(st.From), ExprString(st.To))
		if st.Step != nil {
			sb.WriteString(" step " + ExprString(st.Step))
		}
	case ast.StmtFn:
		params := append([]string(nil), st.Params...)
		if st.Variadic {
			params = append(params, "...")
		}
		fmt.Fprintf(&sb, " %s(%s)", st.Name, strings.Join(params, ", "))
	case ast.StmtClass, ast.StmtModule:
		sb.WriteString(" " + st.Name)
	}
	return sb.String()
}

// ExprString renders e with explicit grouping, e.g. "(a + (b * 2))".
func ExprString(e *ast.Expr) string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case ast.ExprInt:
		return strconv.FormatInt(int64(e.Int), 10)
	case ast.ExprFloat:
		return token.FormatFloat(e.Float)
	case ast.ExprString:
		return lexer.Quote(e.Str)
	case ast.ExprBool:
		return strconv.FormatBool(e.Bool)
	case ast.ExprNil:
		return "nil"
	case ast.ExprIdent:
		return e.Name
	case ast.ExprUnary:
		sep := ""
		if e.Op == token.KwNot {
			sep = " "
		}
		return "(" + e.Op.Spelling() + sep + ExprString(e.X) + ")"
	case ast.ExprBinary:
		return "(" + ExprString(e.X) + " " + e.Op.Spelling() + " " + ExprString(e.Y) + ")"
	case ast.ExprCall:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = ExprString(a)
		}
		return ExprString(e.X) + "(" + strings.Join(args, ", ") + ")"
	case ast.ExprIndex:
		return ExprString(e.X) + "[" + ExprString(e.Y) + "]"
	case ast.ExprAttr:
		return ExprString(e.X) + "." + e.Name
	}
	return e.Kind.String()
}

// StmtJSON is one statement in `lisle parse --format json`.
type StmtJSON struct {
	Line uint32 `json:"line"`
	Kind string `json:"kind"`
	Text string `json:"text"`
	End  uint32 `json:"end,omitempty"`
	Next uint32 `json:"next,omitempty"`
}

// FormatProgramJSON writes the statements with their jump targets as line
// numbers.
func FormatProgramJSON(w io.Writer, prog *ast.Program) error {
	out := make([]StmtJSON, len(prog.Stmts))
	for i := range prog.Stmts {
		st := &prog.Stmts[i]
		out[i] = StmtJSON{Line: st.Line, Kind: st.Kind.String(), Text: StmtString(st)}
		if j := prog.End[i]; j != ast.NoIndex {
			out[i].End = prog.Stmts[j].Line
		}
		if j := prog.Next[i]; j != ast.NoIndex {
			out[i].Next = prog.Stmts[j].Line
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

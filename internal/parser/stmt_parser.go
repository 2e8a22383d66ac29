package parser

import (
	"lisle/internal/ast"
	"lisle/internal/diag"
	"lisle/internal/token"
)

func (p *Parser) parseStmt() (ast.Stmt, bool) {
	tok := p.peek()
	switch tok.Kind {
	case token.EOF:
		return ast.Stmt{Kind: ast.StmtEmpty}, true
	case token.KwFn:
		return p.parseFnStmt()
	case token.KwIf, token.KwElif:
		kind := ast.StmtIf
		if tok.Kind == token.KwElif {
			kind = ast.StmtElif
		}
		p.stmt = kind
		p.advance()
		cond, ok := p.parseExpr()
		if !ok {
			return ast.Stmt{}, false
		}
		return ast.Stmt{Kind: kind, X: cond}, true
	case token.KwElse:
		return p.bare(ast.StmtElse)
	case token.KwLoop:
		return p.bare(ast.StmtLoop)
	case token.KwBreak:
		return p.bare(ast.StmtBreak)
	case token.KwEnd:
		return p.bare(ast.StmtEnd)
	case token.KwFor:
		return p.parseForStmt()
	case token.KwReturn:
		p.stmt = ast.StmtReturn
		p.advance()
		if p.at(token.EOF) {
			return ast.Stmt{Kind: ast.StmtReturn}, true
		}
		x, ok := p.parseExpr()
		if !ok {
			return ast.Stmt{}, false
		}
		return ast.Stmt{Kind: ast.StmtReturn, X: x}, true
	case token.KwLet:
		p.stmt = ast.StmtLet
		p.advance()
		target, ok := p.parsePostfixExpr()
		if !ok {
			return ast.Stmt{}, false
		}
		return p.finishAssign(target)
	case token.KwVar:
		return p.parseVarStmt()
	case token.KwModule, token.KwClass:
		kind := ast.StmtModule
		if tok.Kind == token.KwClass {
			kind = ast.StmtClass
		}
		p.stmt = kind
		p.advance()
		name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected name after '"+tok.Text+"'")
		if !ok {
			return ast.Stmt{}, false
		}
		return ast.Stmt{Kind: kind, Name: name.Text}, true
	}

	p.stmt = ast.StmtExpr
	x, ok := p.parseExpr()
	if !ok {
		return ast.Stmt{}, false
	}
	if p.at(token.Assign) {
		p.stmt = ast.StmtLet
		return p.finishAssign(x)
	}
	return ast.Stmt{Kind: ast.StmtExpr, X: x}, true
}

func (p *Parser) bare(kind ast.StmtKind) (ast.Stmt, bool) {
	p.stmt = kind
	p.advance()
	return ast.Stmt{Kind: kind}, true
}

// finishAssign parses "= expr" after an assignment target.
func (p *Parser) finishAssign(target *ast.Expr) (ast.Stmt, bool) {
	if !target.IsAssignable() {
		p.errAt(diag.SynBadAssignTarget, target.Span, "cannot assign to "+target.Kind.String()+" expression")
		return ast.Stmt{}, false
	}
	if _, ok := p.expect(token.Assign, diag.SynUnexpectedToken, "expected '=' in assignment"); !ok {
		return ast.Stmt{}, false
	}
	x, ok := p.parseExpr()
	if !ok {
		return ast.Stmt{}, false
	}
	return ast.Stmt{Kind: ast.StmtLet, Target: target, X: x}, true
}

// var name [= expr]
func (p *Parser) parseVarStmt() (ast.Stmt, bool) {
	p.stmt = ast.StmtVar
	p.advance()
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected variable name after 'var'")
	if !ok {
		return ast.Stmt{}, false
	}
	st := ast.Stmt{Kind: ast.StmtVar, Name: name.Text}
	if !p.eat(token.Assign) {
		return st, true
	}
	st.X, ok = p.parseExpr()
	return st, ok
}

// for name = from to to [step step]
func (p *Parser) parseForStmt() (ast.Stmt, bool) {
	p.stmt = ast.StmtFor
	p.advance()
	name, ok := p.expect(token.Ident, diag.SynForBadHeader, "expected loop variable after 'for'")
	if !ok {
		return ast.Stmt{}, false
	}
	if _, ok := p.expect(token.Assign, diag.SynForBadHeader, "expected '=' after loop variable"); !ok {
		return ast.Stmt{}, false
	}
	st := ast.Stmt{Kind: ast.StmtFor, Name: name.Text}
	if st.From, ok = p.parseExpr(); !ok {
		return ast.Stmt{}, false
	}
	if _, ok := p.expect(token.KwTo, diag.SynForBadHeader, "expected 'to' in for header"); !ok {
		return ast.Stmt{}, false
	}
	if st.To, ok = p.parseExpr(); !ok {
		return ast.Stmt{}, false
	}
	if p.eat(token.KwStep) {
		if st.Step, ok = p.parseExpr(); !ok {
			return ast.Stmt{}, false
		}
	}
	return st, true
}

// fn name(a, b, ...)
func (p *Parser) parseFnStmt() (ast.Stmt, bool) {
	p.stmt = ast.StmtFn
	p.advance()
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected function name after 'fn'")
	if !ok {
		return ast.Stmt{}, false
	}
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after function name"); !ok {
		return ast.Stmt{}, false
	}
	st := ast.Stmt{Kind: ast.StmtFn, Name: name.Text}
	seen := make(map[string]bool)
	for !p.at(token.RParen) {
		if p.at(token.DotDotDot) {
			tail := p.advance()
			st.Variadic = true
			if !p.at(token.RParen) {
				p.errAt(diag.SynVariadicNotLast, tail.Span, "'...' must be the last parameter")
				return ast.Stmt{}, false
			}
			break
		}
		param, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected parameter name")
		if !ok {
			return ast.Stmt{}, false
		}
		if seen[param.Text] {
			p.errAt(diag.SynDuplicateParam, param.Span, "duplicate parameter "+param.Text)
			return ast.Stmt{}, false
		}
		seen[param.Text] = true
		st.Params = append(st.Params, param.Text)
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close parameter list"); !ok {
		return ast.Stmt{}, false
	}
	return st, true
}

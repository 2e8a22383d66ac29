package parser

import (
	"math"

	"lisle/internal/ast"
	"lisle/internal/diag"
	"lisle/internal/lexer"
	"lisle/internal/token"
)

// parseExpr - главная точка входа для парсинга выражений
func (p *Parser) parseExpr() (*ast.Expr, bool) {
	return p.parseBinaryExpr(precLogicalOr)
}

// parseBinaryExpr реализует Pratt parsing; все операторы левоассоциативны.
func (p *Parser) parseBinaryExpr(minPrec int) (*ast.Expr, bool) {
	left, ok := p.parseUnaryExpr()
	if !ok {
		return nil, false
	}
	for {
		prec := binaryPrec(p.peek().Kind)
		if prec < minPrec {
			break
		}
		opTok := p.advance()
		right, ok := p.parseBinaryExpr(prec + 1)
		if !ok {
			return nil, false
		}
		left = &ast.Expr{
			Kind: ast.ExprBinary,
			Span: left.Span.Cover(right.Span),
			Op:   opTok.Kind,
			X:    left,
			Y:    right,
		}
	}
	return left, true
}

// parseUnaryExpr обрабатывает префиксы '-' и 'not'. Унарные связывают
// сильнее любых бинарных операторов.
func (p *Parser) parseUnaryExpr() (*ast.Expr, bool) {
	if isUnaryOp(p.peek().Kind) {
		opTok := p.advance()
		if next := p.peek(); opTok.Kind == token.Minus && next.Kind == token.IntLit && token.IsMinIntMagnitude(next.Text) {
			p.advance()
			return &ast.Expr{Kind: ast.ExprInt, Span: opTok.Span.Cover(next.Span), Int: math.MinInt32}, true
		}
		x, ok := p.parseUnaryExpr()
		if !ok {
			return nil, false
		}
		// "-5" сворачиваем в литерал
		if opTok.Kind == token.Minus && (x.Kind == ast.ExprInt || x.Kind == ast.ExprFloat) {
			x.Int, x.Float = -x.Int, -x.Float
			x.Span = opTok.Span.Cover(x.Span)
			return x, true
		}
		return &ast.Expr{Kind: ast.ExprUnary, Span: opTok.Span.Cover(x.Span), Op: opTok.Kind, X: x}, true
	}
	return p.parsePostfixExpr()
}

// parsePostfixExpr обрабатывает .name, (args) и [index]
func (p *Parser) parsePostfixExpr() (*ast.Expr, bool) {
	expr, ok := p.parsePrimaryExpr()
	if !ok {
		return nil, false
	}
	for {
		switch p.peek().Kind {
		case token.Dot:
			p.advance()
			name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected attribute name after '.'")
			if !ok {
				return nil, false
			}
			expr = &ast.Expr{Kind: ast.ExprAttr, Span: expr.Span.Cover(name.Span), Name: name.Text, X: expr}
		case token.LParen:
			expr, ok = p.parseCallExpr(expr)
			if !ok {
				return nil, false
			}
		case token.LBracket:
			p.advance()
			idx, ok := p.parseExpr()
			if !ok {
				return nil, false
			}
			closeTok, ok := p.expect(token.RBracket, diag.SynUnclosedBracket, "expected ']'")
			if !ok {
				return nil, false
			}
			expr = &ast.Expr{Kind: ast.ExprIndex, Span: expr.Span.Cover(closeTok.Span), X: expr, Y: idx}
		default:
			return expr, true
		}
	}
}

func (p *Parser) parseCallExpr(callee *ast.Expr) (*ast.Expr, bool) {
	p.advance() // '('
	var args []*ast.Expr
	if !p.at(token.RParen) {
		for {
			arg, ok := p.parseExpr()
			if !ok {
				return nil, false
			}
			args = append(args, arg)
			if !p.eat(token.Comma) {
				break
			}
		}
	}
	closeTok, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close call")
	if !ok {
		return nil, false
	}
	return &ast.Expr{Kind: ast.ExprCall, Span: callee.Span.Cover(closeTok.Span), X: callee, Args: args}, true
}

func (p *Parser) parsePrimaryExpr() (*ast.Expr, bool) {
	tok := p.peek()
	switch tok.Kind {
	case token.IntLit:
		p.advance()
		v, err := token.ParseIntLit(tok.Text)
		if err != nil {
			p.errAt(diag.LexBadNumber, tok.Span, err.Error())
			return nil, false
		}
		return &ast.Expr{Kind: ast.ExprInt, Span: tok.Span, Int: v}, true
	case token.FloatLit:
		p.advance()
		v, err := token.ParseFloatLit(tok.Text)
		if err != nil {
			p.errAt(diag.LexBadNumber, tok.Span, err.Error())
			return nil, false
		}
		return &ast.Expr{Kind: ast.ExprFloat, Span: tok.Span, Float: v}, true
	case token.StringLit:
		p.advance()
		s, err := lexer.Unquote(tok.Text)
		if err != nil {
			p.errAt(diag.LexBadEscape, tok.Span, err.Error())
			return nil, false
		}
		return &ast.Expr{Kind: ast.ExprString, Span: tok.Span, Str: s}, true
	case token.KwTrue, token.KwFalse:
		p.advance()
		return &ast.Expr{Kind: ast.ExprBool, Span: tok.Span, Bool: tok.Kind == token.KwTrue}, true
	case token.KwNil:
		p.advance()
		return &ast.Expr{Kind: ast.ExprNil, Span: tok.Span}, true
	case token.Ident:
		p.advance()
		return &ast.Expr{Kind: ast.ExprIdent, Span: tok.Span, Name: tok.Text}, true
	case token.LParen:
		p.advance()
		inner, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		closeTok, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'")
		if !ok {
			return nil, false
		}
		inner.Span = tok.Span.Cover(closeTok.Span)
		return inner, true
	}
	p.errAt(diag.SynExpectExpression, tok.Span, "expected expression, found "+describe(tok))
	return nil, false
}

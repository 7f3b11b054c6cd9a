package parser

import (
	"github.com/glintlang/glint/internal/ast"
	"github.com/glintlang/glint/internal/token"
)

// parseSporeExpr parses `spore <subject> { case, case, ... }`. Each
// case is either `pattern: block` or the lambda-style
// `pattern => expression`.
func (p *Parser) parseSporeExpr() ast.Expression {
	tok := p.cur
	p.next()
	subject := p.parseExpression(LOWEST)
	if !p.expectPeek(token.LBRACE) {
		return &ast.ErrorNode{Base: ast.NewBase(p.cur), Message: "expected { after spore subject"}
	}
	expr := &ast.SporeExpr{Base: ast.NewBase(tok), Subject: subject}
	p.next()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if p.curIs(token.NEWLINE) || p.curIs(token.COMMA) {
			p.next()
			continue
		}
		c := p.parseSporeCase()
		expr.Cases = append(expr.Cases, c)
		if p.peekIs(token.COMMA) {
			p.next()
		}
		p.next()
	}
	return expr
}

func (p *Parser) parseSporeCase() ast.SporeCase {
	pat := p.parsePattern()
	if _, isWild := pat.(*ast.WildcardPattern); isWild {
		if p.peekIs(token.ARROW_FAT) {
			p.next()
			p.next()
			return ast.SporeCase{Pattern: pat, Body: p.wrapExprAsBlock(p.parseExpression(LOWEST)), LambdaStyle: true, IsRoot: true}
		}
	}
	if p.peekIs(token.ARROW_FAT) {
		p.next()
		p.next()
		body := p.wrapExprAsBlock(p.parseExpression(LOWEST))
		return ast.SporeCase{Pattern: pat, Body: body, LambdaStyle: true}
	}
	if p.expectPeek(token.COLON) {
		p.next()
		if p.curIs(token.LBRACE) {
			return ast.SporeCase{Pattern: pat, Body: p.parseBlock()}
		}
		return ast.SporeCase{Pattern: pat, Body: p.wrapExprAsBlock(p.parseExpression(LOWEST))}
	}
	return ast.SporeCase{Pattern: pat, Body: &ast.Block{}}
}

func (p *Parser) wrapExprAsBlock(e ast.Expression) *ast.Block {
	return &ast.Block{Statements: []ast.Statement{&ast.ExprStmt{X: e}}}
}

// parsePattern parses one spore pattern with `if <guard>` and `|`
// (or) handled at the lowest precedence, `&` (and) above that, and
// `!` (not) as a prefix.
func (p *Parser) parsePattern() ast.Pattern {
	pat := p.parsePatternOr()
	if p.peekIs(token.IF) {
		p.next()
		p.next()
		cond := p.parseExpression(LOWEST)
		return &ast.GuardPattern{Inner: pat, Cond: cond}
	}
	return pat
}

func (p *Parser) parsePatternOr() ast.Pattern {
	left := p.parsePatternAnd()
	for p.peekIs(token.PIPE) {
		p.next()
		p.next()
		right := p.parsePatternAnd()
		left = &ast.OrPattern{Left: left, Right: right}
	}
	return left
}

func (p *Parser) parsePatternAnd() ast.Pattern {
	left := p.parsePatternUnary()
	for p.peekIs(token.AMP) {
		p.next()
		p.next()
		right := p.parsePatternUnary()
		left = &ast.AndPattern{Left: left, Right: right}
	}
	return left
}

func (p *Parser) parsePatternUnary() ast.Pattern {
	if p.curIs(token.BANG) {
		p.next()
		inner := p.parsePatternUnary()
		return &ast.NotPattern{Inner: inner}
	}
	return p.parsePatternPrimary()
}

func (p *Parser) parsePatternPrimary() ast.Pattern {
	tok := p.cur
	switch p.cur.Kind {
	case token.UNDERSCORE:
		return &ast.WildcardPattern{Base: ast.NewBase(tok)}
	case token.LBRACKET:
		return p.parseArrayDestructurePattern()
	case token.LBRACE:
		return p.parseObjectDestructurePattern()
	case token.IDENT:
		name := p.cur.Lexeme
		if len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z' && !p.peekIs(token.DOT_DOT) && !p.peekIs(token.DOT_DOT_EQ) {
			return &ast.TypePattern{Base: ast.NewBase(tok), Name: name}
		}
		if p.peekIs(token.DOT_DOT) || p.peekIs(token.DOT_DOT_EQ) {
			return p.parseRangePatternFrom(&ast.Identifier{Base: ast.NewBase(tok), Name: name})
		}
		return &ast.BindPattern{Base: ast.NewBase(tok), Name: name}
	default:
		expr := p.parseExpression(RANGE + 1)
		if p.peekIs(token.DOT_DOT) || p.peekIs(token.DOT_DOT_EQ) {
			return p.parseRangePatternFrom(expr)
		}
		return &ast.LiteralPattern{Base: ast.NewBase(tok), Value: expr}
	}
}

func (p *Parser) parseRangePatternFrom(from ast.Expression) ast.Pattern {
	tok := p.cur
	p.next()
	inclusive := p.curIs(token.DOT_DOT_EQ)
	p.next()
	to := p.parseExpression(SUM)
	return &ast.RangePattern{Base: ast.NewBase(tok), From: from, To: to, Inclusive: inclusive}
}

func (p *Parser) parseArrayDestructurePattern() ast.Pattern {
	tok := p.cur
	pat := &ast.ArrayDestructurePattern{Base: ast.NewBase(tok)}
	p.next()
	for !p.curIs(token.RBRACKET) && !p.curIs(token.EOF) {
		if p.curIs(token.DOT_DOT) && p.peekIs(token.IDENT) {
			p.next()
			pat.Rest = p.cur.Lexeme
			p.next()
			continue
		}
		pat.Elements = append(pat.Elements, p.parsePattern())
		if p.peekIs(token.COMMA) {
			p.next()
		}
		p.next()
	}
	return pat
}

func (p *Parser) parseObjectDestructurePattern() ast.Pattern {
	tok := p.cur
	pat := &ast.ObjectDestructurePattern{Base: ast.NewBase(tok)}
	p.next()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		key := p.cur.Lexeme
		var sub ast.Pattern = &ast.BindPattern{Name: key}
		if p.peekIs(token.COLON) {
			p.next()
			p.next()
			sub = p.parsePattern()
		}
		pat.Fields = append(pat.Fields, ast.ObjectDestructureField{Key: key, Pattern: sub})
		if p.peekIs(token.COMMA) {
			p.next()
		}
		p.next()
	}
	return pat
}

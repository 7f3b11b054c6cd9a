package parser

import (
	"github.com/glintlang/glint/internal/ast"
	"github.com/glintlang/glint/internal/token"
)

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Kind {
	case token.LET:
		return p.parseVarDecl(true)
	case token.CONST:
		return p.parseConstDecl()
	case token.FUNCTION, token.ASYNC:
		if fn, ok := p.parseFunctionLiteral().(*ast.FunctionLit); ok {
			return fn
		}
		return &ast.ErrorNode{Base: ast.NewBase(p.cur), Message: "invalid function declaration"}
	case token.IF:
		return p.parseIfStmt()
	case token.WHILE:
		return p.parseWhileStmt()
	case token.FOR:
		return p.parseForStmt()
	case token.RETURN:
		return p.parseReturnStmt()
	case token.BREAK:
		return &ast.BreakStmt{Base: ast.NewBase(p.cur)}
	case token.CONTINUE:
		return &ast.ContinueStmt{Base: ast.NewBase(p.cur)}
	case token.THROW:
		return p.parseThrowStmt()
	case token.TRY:
		return p.parseTryStmt()
	case token.CLASS:
		return p.parseClassDecl()
	case token.IMPORT:
		return p.parseImportStmt()
	case token.USE:
		return p.parseUseStmt()
	case token.EXPORT, token.PRIVATE:
		return p.parseModifiedDecl()
	default:
		tok := p.cur
		expr := p.parseExpression(LOWEST)
		if _, ok := expr.(*ast.ErrorNode); ok {
			p.synchronize()
			return expr.(*ast.ErrorNode)
		}
		return &ast.ExprStmt{Base: ast.NewBase(tok), X: expr}
	}
}

func (p *Parser) parseModifiedDecl() ast.Statement {
	export := p.curIs(token.EXPORT)
	private := p.curIs(token.PRIVATE)
	p.next()
	switch p.cur.Kind {
	case token.LET:
		decl := p.parseVarDecl(true)
		if vd, ok := decl.(*ast.VarDecl); ok {
			vd.Export = export
			vd.Private = private
		}
		return decl
	case token.FUNCTION, token.ASYNC:
		if fn, ok := p.parseFunctionLiteral().(*ast.FunctionLit); ok {
			fn.Export = export
			fn.Private = private
			return fn
		}
	case token.CLASS:
		decl := p.parseClassDecl()
		if cd, ok := decl.(*ast.ClassDecl); ok {
			cd.Export = export
		}
		return decl
	}
	p.errorf("expected a declaration after export/private")
	return &ast.ErrorNode{Base: ast.NewBase(p.cur), Message: "expected a declaration after export/private"}
}

func (p *Parser) parseVarDecl(mutableDefault bool) ast.Statement {
	tok := p.cur
	mutable := mutableDefault
	if p.peekIs(token.MUT) {
		p.next()
		mutable = true
	}
	if !p.expectPeek(token.IDENT) {
		return &ast.ErrorNode{Base: ast.NewBase(p.cur), Message: "expected variable name"}
	}
	decl := &ast.VarDecl{Base: ast.NewBase(tok), Name: p.cur.Lexeme, Mutable: mutable}
	if p.peekIs(token.COLON) {
		p.next()
		p.next()
		decl.Type = p.cur.Lexeme
	}
	if p.peekIs(token.ASSIGN) {
		p.next()
		p.next()
		decl.Initializer = p.parseExpression(LOWEST)
	}
	return decl
}

func (p *Parser) parseConstDecl() ast.Statement {
	tok := p.cur
	if !p.expectPeek(token.IDENT) {
		return &ast.ErrorNode{Base: ast.NewBase(p.cur), Message: "expected constant name"}
	}
	name := p.cur.Lexeme
	if !p.expectPeek(token.ASSIGN) {
		return &ast.ErrorNode{Base: ast.NewBase(p.cur), Message: "expected = in const declaration"}
	}
	p.next()
	val := p.parseExpression(LOWEST)
	return &ast.ConstDecl{Base: ast.NewBase(tok), Name: name, Value: val}
}

func (p *Parser) parseIfStmt() ast.Statement {
	tok := p.cur
	stmt := &ast.IfStmt{Base: ast.NewBase(tok)}
	branch, ok := p.parseIfBranch()
	if !ok {
		return &ast.ErrorNode{Base: ast.NewBase(p.cur), Message: "malformed if statement"}
	}
	stmt.Branches = append(stmt.Branches, branch)

	for p.peekIs(token.ELSEIF) {
		p.next()
		b, ok := p.parseIfBranch()
		if !ok {
			return &ast.ErrorNode{Base: ast.NewBase(p.cur), Message: "malformed elseif clause"}
		}
		stmt.Branches = append(stmt.Branches, b)
	}
	if p.peekIs(token.ELSE) {
		p.next()
		if !p.expectPeek(token.LBRACE) {
			return &ast.ErrorNode{Base: ast.NewBase(p.cur), Message: "expected { after else"}
		}
		stmt.Else = p.parseBlock()
	}
	return stmt
}

func (p *Parser) parseIfBranch() (ast.IfBranch, bool) {
	p.next()
	cond := p.parseExpression(LOWEST)
	if !p.expectPeek(token.LBRACE) {
		return ast.IfBranch{}, false
	}
	body := p.parseBlock()
	return ast.IfBranch{Cond: cond, Body: body}, true
}

func (p *Parser) parseWhileStmt() ast.Statement {
	tok := p.cur
	p.next()
	cond := p.parseExpression(LOWEST)
	if !p.expectPeek(token.LBRACE) {
		return &ast.ErrorNode{Base: ast.NewBase(p.cur), Message: "expected { after while condition"}
	}
	return &ast.WhileStmt{Base: ast.NewBase(tok), Cond: cond, Body: p.parseBlock()}
}

func (p *Parser) parseForStmt() ast.Statement {
	tok := p.cur
	if !p.expectPeek(token.IDENT) {
		return &ast.ErrorNode{Base: ast.NewBase(p.cur), Message: "expected loop variable name"}
	}
	name := p.cur.Lexeme
	if !p.expectPeek(token.IN) {
		return &ast.ErrorNode{Base: ast.NewBase(p.cur), Message: "expected 'in' in for statement"}
	}
	p.next()
	collection := p.parseExpression(LOWEST)
	if !p.expectPeek(token.LBRACE) {
		return &ast.ErrorNode{Base: ast.NewBase(p.cur), Message: "expected { after for collection"}
	}
	return &ast.ForStmt{Base: ast.NewBase(tok), IterName: name, Collection: collection, Body: p.parseBlock()}
}

func (p *Parser) parseReturnStmt() ast.Statement {
	tok := p.cur
	stmt := &ast.ReturnStmt{Base: ast.NewBase(tok)}
	if !p.peekIs(token.NEWLINE) && !p.peekIs(token.SEMICOLON) && !p.peekIs(token.RBRACE) {
		p.next()
		stmt.Value = p.parseExpression(LOWEST)
	}
	return stmt
}

func (p *Parser) parseThrowStmt() ast.Statement {
	tok := p.cur
	p.next()
	return &ast.ThrowStmt{Base: ast.NewBase(tok), Value: p.parseExpression(LOWEST)}
}

func (p *Parser) parseTryStmt() ast.Statement {
	tok := p.cur
	if !p.expectPeek(token.LBRACE) {
		return &ast.ErrorNode{Base: ast.NewBase(p.cur), Message: "expected { after try"}
	}
	stmt := &ast.TryStmt{Base: ast.NewBase(tok), Try: p.parseBlock()}
	if p.peekIs(token.CATCH) {
		p.next()
		stmt.HasCatch = true
		if p.peekIs(token.LPAREN) {
			p.next()
			if p.peekIs(token.IDENT) {
				p.next()
				stmt.CatchVar = p.cur.Lexeme
			}
			p.expectPeek(token.RPAREN)
		}
		if !p.expectPeek(token.LBRACE) {
			return &ast.ErrorNode{Base: ast.NewBase(p.cur), Message: "expected { after catch"}
		}
		stmt.Catch = p.parseBlock()
	}
	if p.peekIs(token.FINALLY) {
		p.next()
		if !p.expectPeek(token.LBRACE) {
			return &ast.ErrorNode{Base: ast.NewBase(p.cur), Message: "expected { after finally"}
		}
		stmt.Finally = p.parseBlock()
	}
	return stmt
}

func (p *Parser) parseClassDecl() ast.Statement {
	tok := p.cur
	if !p.expectPeek(token.IDENT) {
		return &ast.ErrorNode{Base: ast.NewBase(p.cur), Message: "expected class name"}
	}
	decl := &ast.ClassDecl{Base: ast.NewBase(tok), Name: p.cur.Lexeme}
	if p.peekIs(token.EXTENDS) {
		p.next()
		if p.expectPeek(token.IDENT) {
			decl.Parent = p.cur.Lexeme
		}
	}
	if !p.expectPeek(token.LBRACE) {
		return &ast.ErrorNode{Base: ast.NewBase(p.cur), Message: "expected { to start class body"}
	}
	p.next()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if p.curIs(token.NEWLINE) || p.curIs(token.SEMICOLON) {
			p.next()
			continue
		}
		decl.Body = append(decl.Body, p.parseStatement())
		p.next()
	}
	return decl
}

func (p *Parser) parseImportStmt() ast.Statement {
	tok := p.cur
	if !p.expectPeek(token.STRING) {
		return &ast.ErrorNode{Base: ast.NewBase(p.cur), Message: "expected module path string after import"}
	}
	stmt := &ast.ImportStmt{Base: ast.NewBase(tok), ModulePath: p.cur.Literal}
	if p.peekIs(token.AS) {
		p.next()
		if p.expectPeek(token.IDENT) {
			stmt.Alias = p.cur.Lexeme
		}
	}
	return stmt
}

func (p *Parser) parseUseStmt() ast.Statement {
	tok := p.cur
	if !p.expectPeek(token.IDENT) {
		return &ast.ErrorNode{Base: ast.NewBase(p.cur), Message: "expected library name after use"}
	}
	stmt := &ast.UseStmt{Base: ast.NewBase(tok), Library: p.cur.Lexeme}
	if p.peekIs(token.AS) {
		p.next()
		if p.expectPeek(token.IDENT) {
			stmt.Alias = p.cur.Lexeme
		}
	}
	if p.peekIs(token.LBRACE) {
		p.next()
		p.next()
		for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
			item := p.cur.Lexeme
			alias := ""
			if p.peekIs(token.AS) {
				p.next()
				if p.expectPeek(token.IDENT) {
					alias = p.cur.Lexeme
				}
			}
			stmt.SpecificItems = append(stmt.SpecificItems, item)
			stmt.SpecificAliases = append(stmt.SpecificAliases, alias)
			if p.peekIs(token.COMMA) {
				p.next()
			}
			p.next()
		}
	}
	return stmt
}

// Package parser implements glint's recursive-descent, Pratt-style
// parser per spec.md §4.2. It never aborts on a syntax error: it
// records an *ast.ErrorNode and resynchronizes at the next statement
// boundary, so a single program always yields one *ast.Program.
package parser

import (
	"fmt"
	"strconv"

	"github.com/glintlang/glint/internal/ast"
	"github.com/glintlang/glint/internal/lexer"
	"github.com/glintlang/glint/internal/token"
)

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// precedence levels, lowest to highest.
const (
	_ int = iota
	LOWEST
	ASSIGNMENT  // =
	LOGICAL_OR  // || ^^
	LOGICAL_AND // &&
	EQUALITY    // == !=
	COMPARISON  // < <= > >=
	BITOR       // |
	BITXOR      // ^
	BITAND      // &
	SHIFT       // << >>
	RANGE       // .. ..=
	SUM         // + -
	PRODUCT     // * / %
	POWER       // ** (right-assoc)
	UNARY       // ! - ~ * &
	CALL        // fn(x) a[i] a.b
)

var precedences = map[token.Kind]int{
	token.ASSIGN:     ASSIGNMENT,
	token.OR_OR:      LOGICAL_OR,
	token.XOR_XOR:    LOGICAL_OR,
	token.AND_AND:    LOGICAL_AND,
	token.EQ:         EQUALITY,
	token.NOT_EQ:     EQUALITY,
	token.LT:         COMPARISON,
	token.LT_EQ:      COMPARISON,
	token.GT:         COMPARISON,
	token.GT_EQ:      COMPARISON,
	token.PIPE:       BITOR,
	token.CARET:      BITXOR,
	token.AMP:        BITAND,
	token.LSHIFT:     SHIFT,
	token.RSHIFT:     SHIFT,
	token.DOT_DOT:    RANGE,
	token.DOT_DOT_EQ: RANGE,
	token.PLUS:       SUM,
	token.MINUS:      SUM,
	token.STAR:       PRODUCT,
	token.SLASH:      PRODUCT,
	token.PERCENT:    PRODUCT,
	token.STARSTAR:   POWER,
	token.LPAREN:     CALL,
	token.LBRACKET:   CALL,
	token.DOT:        CALL,
}

// Parser consumes a token stream and builds an *ast.Program.
type Parser struct {
	l *lexer.Lexer

	cur  token.Token
	peek token.Token

	errors []string

	prefixFns map[token.Kind]prefixParseFn
	infixFns  map[token.Kind]infixParseFn
}

// New constructs a Parser over source text.
func New(source string) *Parser {
	p := &Parser{l: lexer.New(source)}
	p.prefixFns = make(map[token.Kind]prefixParseFn)
	p.infixFns = make(map[token.Kind]infixParseFn)

	p.registerPrefix(token.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.TRUE, p.parseBool)
	p.registerPrefix(token.FALSE, p.parseBool)
	p.registerPrefix(token.NULL, p.parseNull)
	p.registerPrefix(token.BANG, p.parseUnary)
	p.registerPrefix(token.MINUS, p.parseUnary)
	p.registerPrefix(token.PLUS, p.parseUnary)
	p.registerPrefix(token.TILDE, p.parseUnary)
	p.registerPrefix(token.STAR, p.parseUnary)
	p.registerPrefix(token.AMP, p.parseUnary)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(token.LBRACKET, p.parseArrayLiteral)
	p.registerPrefix(token.LBRACE, p.parseHashOrSetLiteral)
	p.registerPrefix(token.FUNCTION, p.parseFunctionLiteral)
	p.registerPrefix(token.ASYNC, p.parseFunctionLiteral)
	p.registerPrefix(token.AWAIT, p.parseAwaitExpression)
	p.registerPrefix(token.SPORE, p.parseSporeExpr)
	p.registerPrefix(token.UNDERSCORE, p.parseIdentifier)

	for kind := range precedences {
		if kind == token.LPAREN {
			p.registerInfix(kind, p.parseCallExpression)
		} else if kind == token.LBRACKET {
			p.registerInfix(kind, p.parseIndexExpression)
		} else if kind == token.DOT {
			p.registerInfix(kind, p.parseMemberExpression)
		} else if kind == token.ASSIGN {
			p.registerInfix(kind, p.parseAssignExpression)
		} else if kind == token.DOT_DOT || kind == token.DOT_DOT_EQ {
			p.registerInfix(kind, p.parseRangeExpression)
		} else {
			p.registerInfix(kind, p.parseBinaryExpression)
		}
	}

	p.next()
	p.next()
	return p
}

func (p *Parser) registerPrefix(k token.Kind, fn prefixParseFn) { p.prefixFns[k] = fn }
func (p *Parser) registerInfix(k token.Kind, fn infixParseFn)   { p.infixFns[k] = fn }

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
	for p.peek.Kind == token.NEWLINE {
		p.peek = p.l.NextToken()
	}
}

func (p *Parser) curIs(k token.Kind) bool  { return p.cur.Kind == k }
func (p *Parser) peekIs(k token.Kind) bool { return p.peek.Kind == k }

func (p *Parser) expectPeek(k token.Kind) bool {
	if p.peekIs(k) {
		p.next()
		return true
	}
	p.errorf("expected next token to be %v, got %v instead", k, p.peek.Kind)
	return false
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peek.Kind]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.cur.Kind]; ok {
		return pr
	}
	return LOWEST
}

// Errors returns accumulated parser diagnostics (distinct from the
// *ast.ErrorNode nodes embedded in the tree; these are for tooling).
func (p *Parser) Errors() []string { return p.errors }

// Parse scans the whole token stream and returns the top-level
// program block. It never returns nil and never discards input
// silently: unparseable statements become *ast.ErrorNode entries.
func Parse(source string) *ast.Program {
	p := New(source)
	block := &ast.Block{Base: ast.NewBase(p.cur)}
	for !p.curIs(token.EOF) {
		if p.curIs(token.NEWLINE) || p.curIs(token.SEMICOLON) {
			p.next()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.next()
	}
	return &ast.Program{Block: block}
}

// synchronize advances past tokens until a likely statement boundary,
// implementing the parser's error-recovery policy (spec.md §4.2).
func (p *Parser) synchronize() {
	for !p.curIs(token.EOF) {
		if p.curIs(token.SEMICOLON) || p.curIs(token.NEWLINE) {
			return
		}
		switch p.peek.Kind {
		case token.LET, token.CONST, token.FUNCTION, token.IF, token.WHILE,
			token.FOR, token.RETURN, token.TRY, token.CLASS, token.RBRACE:
			return
		}
		p.next()
	}
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	v, err := strconv.ParseFloat(p.cur.Lexeme, 64)
	if err != nil {
		p.errorf("invalid number literal: %s", p.cur.Lexeme)
		return &ast.ErrorNode{Base: ast.NewBase(p.cur), Message: "invalid number literal"}
	}
	return &ast.NumberLiteral{Base: ast.NewBase(p.cur), Value: v}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Base: ast.NewBase(p.cur), Value: p.cur.Literal}
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Base: ast.NewBase(p.cur), Name: p.cur.Lexeme}
}

func (p *Parser) parseBool() ast.Expression {
	return &ast.BoolLiteral{Base: ast.NewBase(p.cur), Value: p.curIs(token.TRUE)}
}

func (p *Parser) parseNull() ast.Expression {
	return &ast.NullLiteral{Base: ast.NewBase(p.cur)}
}

func (p *Parser) parseUnary() ast.Expression {
	tok := p.cur
	op := p.cur.Lexeme
	p.next()
	operand := p.parseExpression(UNARY)
	return &ast.UnaryExpr{Base: ast.NewBase(tok), Op: op, Operand: operand}
}

func (p *Parser) parseBinaryExpression(left ast.Expression) ast.Expression {
	tok := p.cur
	op := p.cur.Lexeme
	prec := p.curPrecedence()
	p.next()
	// `**` is right-associative.
	if op == "**" {
		prec--
	}
	right := p.parseExpression(prec)
	return &ast.BinaryExpr{Base: ast.NewBase(tok), Left: left, Op: op, Right: right}
}

func (p *Parser) parseRangeExpression(left ast.Expression) ast.Expression {
	tok := p.cur
	inclusive := p.curIs(token.DOT_DOT_EQ)
	p.next()
	to := p.parseExpression(SUM)
	var step ast.Expression
	if p.peekIs(token.BY) {
		p.next()
		p.next()
		step = p.parseExpression(SUM)
	}
	return &ast.RangeExpr{Base: ast.NewBase(tok), From: left, To: to, Step: step, Inclusive: inclusive}
}

func (p *Parser) parseAssignExpression(left ast.Expression) ast.Expression {
	tok := p.cur
	p.next()
	value := p.parseExpression(LOWEST)
	return &ast.AssignStmt{Base: ast.NewBase(tok), Target: left, Value: value}
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.next()
	exp := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return &ast.ErrorNode{Base: ast.NewBase(p.cur), Message: "expected closing )"}
	}
	return exp
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	tok := p.cur
	lit := &ast.ArrayLit{Base: ast.NewBase(tok)}
	lit.Elements = p.parseExpressionList(token.RBRACKET)
	return lit
}

func (p *Parser) parseExpressionList(end token.Kind) []ast.Expression {
	var list []ast.Expression
	if p.peekIs(end) {
		p.next()
		return list
	}
	p.next()
	list = append(list, p.parseExpression(LOWEST))
	for p.peekIs(token.COMMA) {
		p.next()
		p.next()
		list = append(list, p.parseExpression(LOWEST))
	}
	if !p.expectPeek(end) {
		return list
	}
	return list
}

// parseHashOrSetLiteral disambiguates `{}` (empty map), `{1, 2}` (set),
// and `{a: 1, b: 2}` (map) by peeking past the first element for a
// colon.
func (p *Parser) parseHashOrSetLiteral() ast.Expression {
	tok := p.cur
	if p.peekIs(token.RBRACE) {
		p.next()
		return &ast.HashMapLit{Base: ast.NewBase(tok)}
	}
	p.next()
	first := p.parseExpression(LOWEST)
	if p.peekIs(token.COLON) {
		m := &ast.HashMapLit{Base: ast.NewBase(tok)}
		p.next() // colon
		p.next()
		val := p.parseExpression(LOWEST)
		m.Entries = append(m.Entries, ast.HashEntry{Key: first, Value: val})
		for p.peekIs(token.COMMA) {
			p.next()
			p.next()
			k := p.parseExpression(LOWEST)
			if !p.expectPeek(token.COLON) {
				break
			}
			p.next()
			v := p.parseExpression(LOWEST)
			m.Entries = append(m.Entries, ast.HashEntry{Key: k, Value: v})
		}
		p.expectPeek(token.RBRACE)
		return m
	}
	s := &ast.SetLit{Base: ast.NewBase(tok), Elements: []ast.Expression{first}}
	for p.peekIs(token.COMMA) {
		p.next()
		p.next()
		s.Elements = append(s.Elements, p.parseExpression(LOWEST))
	}
	p.expectPeek(token.RBRACE)
	return s
}

func (p *Parser) parseCallExpression(fn ast.Expression) ast.Expression {
	tok := p.cur
	return &ast.CallExpr{Base: ast.NewBase(tok), Callee: fn, Args: p.parseExpressionList(token.RPAREN)}
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	tok := p.cur
	p.next()
	idx := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RBRACKET) {
		return &ast.ErrorNode{Base: ast.NewBase(p.cur), Message: "expected closing ]"}
	}
	return &ast.IndexExpr{Base: ast.NewBase(tok), X: left, Index: idx}
}

func (p *Parser) parseMemberExpression(left ast.Expression) ast.Expression {
	tok := p.cur
	if !p.expectPeek(token.IDENT) {
		return &ast.ErrorNode{Base: ast.NewBase(p.cur), Message: "expected member name after ."}
	}
	return &ast.MemberExpr{Base: ast.NewBase(tok), X: left, Name: p.cur.Lexeme}
}

func (p *Parser) parseAwaitExpression() ast.Expression {
	tok := p.cur
	p.next()
	x := p.parseExpression(UNARY)
	return &ast.AwaitExpr{Base: ast.NewBase(tok), X: x}
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixFns[p.cur.Kind]
	if prefix == nil {
		p.errorf("no prefix parse function for %v found", p.cur.Kind)
		return &ast.ErrorNode{Base: ast.NewBase(p.cur), Message: fmt.Sprintf("unexpected token %q", p.cur.Lexeme)}
	}
	left := prefix()

	for !p.peekIs(token.NEWLINE) && !p.peekIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixFns[p.peek.Kind]
		if infix == nil {
			return left
		}
		p.next()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseFunctionLiteral() ast.Expression {
	tok := p.cur
	async := p.curIs(token.ASYNC)
	if async {
		if !p.expectPeek(token.FUNCTION) {
			return &ast.ErrorNode{Base: ast.NewBase(p.cur), Message: "expected function after async"}
		}
	}
	fn := &ast.FunctionLit{Base: ast.NewBase(tok), Async: async}
	if p.peekIs(token.IDENT) {
		p.next()
		fn.Name = p.cur.Lexeme
	}
	if !p.expectPeek(token.LPAREN) {
		return &ast.ErrorNode{Base: ast.NewBase(p.cur), Message: "expected ( after function name"}
	}
	fn.Params = p.parseParamList()
	if !p.expectPeek(token.LBRACE) {
		return &ast.ErrorNode{Base: ast.NewBase(p.cur), Message: "expected { to start function body"}
	}
	fn.Body = p.parseBlock()
	return fn
}

func (p *Parser) parseParamList() []ast.Param {
	var params []ast.Param
	if p.peekIs(token.RPAREN) {
		p.next()
		return params
	}
	p.next()
	params = append(params, p.parseOneParam())
	for p.peekIs(token.COMMA) {
		p.next()
		p.next()
		params = append(params, p.parseOneParam())
	}
	p.expectPeek(token.RPAREN)
	return params
}

func (p *Parser) parseOneParam() ast.Param {
	param := ast.Param{Base: ast.NewBase(p.cur), Name: p.cur.Lexeme}
	if p.peekIs(token.COLON) {
		p.next()
		p.next()
		param.Type = p.cur.Lexeme
	}
	return param
}

// parseBlock assumes cur == '{' and consumes up to and including the
// matching '}'.
func (p *Parser) parseBlock() *ast.Block {
	block := &ast.Block{Base: ast.NewBase(p.cur)}
	p.next()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if p.curIs(token.NEWLINE) || p.curIs(token.SEMICOLON) {
			p.next()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.next()
	}
	return block
}

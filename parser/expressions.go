package parser

import (
	"strconv"

	"github.com/lacelang/lace/ast"
	"github.com/lacelang/lace/errors"
	"github.com/lacelang/lace/internal/token"
)

func (p *Parser) parseExpression(precedence int) ast.Expr {
	if p.hadNewError() || !p.enter() {
		return nil
	}
	defer p.leave()

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	left := prefix()
	if left == nil || p.hadNewError() {
		return nil
	}
	for !p.peekTokenIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		if err := p.nextToken(); err != nil {
			return nil
		}
		if left = infix(left); left == nil || p.hadNewError() {
			return nil
		}
	}
	return left
}

func (p *Parser) parseIdent() ast.Expr {
	return p.newIdent(p.curToken)
}

func (p *Parser) parseInt() ast.Expr {
	tok := p.curToken
	value, err := strconv.ParseInt(tok.Literal, 10, 64)
	if err != nil {
		p.setTokenError(tok, errors.E1008, "integer literal %s is out of range", tok.Literal)
		return nil
	}
	return &ast.Int{ValuePos: tok.StartPosition, Literal: tok.Literal, Value: value}
}

func (p *Parser) parseFloat() ast.Expr {
	tok := p.curToken
	value, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil {
		p.setTokenError(tok, errors.E1008, "invalid float literal %s", tok.Literal)
		return nil
	}
	return &ast.Float{ValuePos: tok.StartPosition, Literal: tok.Literal, Value: value}
}

func (p *Parser) parseString() ast.Expr {
	tok := p.curToken
	return &ast.String{
		ValuePos: tok.StartPosition,
		Value:    tok.Literal,
		EndPos:   tok.EndPosition.Advance(1),
	}
}

func (p *Parser) parseBoolean() ast.Expr {
	return &ast.Bool{ValuePos: p.curToken.StartPosition, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parseNone() ast.Expr {
	return &ast.None{NonePos: p.curToken.StartPosition}
}

func (p *Parser) parsePrefixExpr() ast.Expr {
	tok := p.curToken
	if err := p.nextToken(); err != nil {
		return nil
	}
	operand := p.parseExpression(PREFIX)
	if operand == nil {
		return nil
	}
	return &ast.Prefix{OpPos: tok.StartPosition, Op: tok.Literal, X: operand}
}

func (p *Parser) parseInfixExpr(left ast.Expr) ast.Expr {
	tok := p.curToken
	precedence := p.currentPrecedence()
	if tok.Type == token.POW {
		// Right associative: 2 ** 3 ** 2 is 2 ** (3 ** 2)
		precedence--
	}
	if err := p.nextToken(); err != nil {
		return nil
	}
	right := p.parseExpression(precedence)
	if right == nil {
		return nil
	}
	return &ast.Infix{X: left, OpPos: tok.StartPosition, Op: tok.Literal, Y: right}
}

func (p *Parser) parseCast(left ast.Expr) ast.Expr {
	asPos := p.curToken.StartPosition
	if !p.expectPeek("cast", token.IDENT) {
		return nil
	}
	return &ast.Cast{X: left, AsPos: asPos, Type: p.newIdent(p.curToken)}
}

func (p *Parser) parseGroupedExpr() ast.Expr {
	if err := p.nextToken(); err != nil {
		return nil
	}
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	if !p.expectPeek("parenthesized expression", token.RPAREN) {
		return nil
	}
	return expr
}

func (p *Parser) parseArray() ast.Expr {
	lbrack := p.curToken.StartPosition
	items, ok := p.parseExprList("array", token.RBRACKET)
	if !ok {
		return nil
	}
	return &ast.Array{Lbrack: lbrack, Items: items, Rbrack: p.curToken.StartPosition}
}

func (p *Parser) parseCall(left ast.Expr) ast.Expr {
	fun, ok := left.(*ast.Ident)
	if !ok {
		p.setTokenError(p.curToken, errors.E1003, "only named functions can be called")
		return nil
	}
	lparen := p.curToken.StartPosition
	args, ok := p.parseExprList("call arguments", token.RPAREN)
	if !ok {
		return nil
	}
	return &ast.Call{Fun: fun, Lparen: lparen, Args: args, Rparen: p.curToken.StartPosition}
}

func (p *Parser) parsePrimitiveCall() ast.Expr {
	fun := p.newIdent(p.curToken)
	if !p.expectPeek("primitive call", token.LPAREN) {
		return nil
	}
	lparen := p.curToken.StartPosition
	args, ok := p.parseExprList("call arguments", token.RPAREN)
	if !ok {
		return nil
	}
	return &ast.Call{
		Fun:       fun,
		Primitive: true,
		Lparen:    lparen,
		Args:      args,
		Rparen:    p.curToken.StartPosition,
	}
}

// parseExprList parses comma separated expressions up to the end token. A
// trailing comma is allowed. curToken is the opening delimiter on entry and
// the end token on return.
func (p *Parser) parseExprList(context string, end token.Type) ([]ast.Expr, bool) {
	var items []ast.Expr
	for !p.peekTokenIs(end) {
		if err := p.nextToken(); err != nil {
			return nil, false
		}
		item := p.parseExpression(LOWEST)
		if item == nil {
			return nil, false
		}
		items = append(items, item)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(context, end) {
		return nil, false
	}
	return items, true
}

package parser

import (
	"github.com/lacelang/lace/ast"
	"github.com/lacelang/lace/errors"
	"github.com/lacelang/lace/internal/token"
)

// parseStatement parses one statement starting at curToken. On success
// curToken is left on the statement's final token: its semicolon, or the
// closing brace of its last block.
func (p *Parser) parseStatement() ast.Stmt {
	switch p.curToken.Type {
	case token.LET:
		return p.parseLet()
	case token.FN:
		return p.parseFunc()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.RETURN:
		return p.parseReturn()
	case token.IDENT:
		if p.peekTokenIs(token.ASSIGN) {
			return p.parseAssign()
		}
	}
	return p.parseExpressionStatement()
}

func (p *Parser) parseLet() ast.Stmt {
	letPos := p.curToken.StartPosition
	mutable := false
	if p.peekTokenIs(token.MUT) {
		p.nextToken()
		mutable = true
	}
	if !p.expectPeek("let statement", token.IDENT) {
		return nil
	}
	name := p.newIdent(p.curToken)
	typ, ok := p.parseAnnotation(token.COLON)
	if !ok {
		return nil
	}
	if !p.expectPeek("let statement", token.ASSIGN) {
		return nil
	}
	p.nextToken()
	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil
	}
	if !p.expectPeek("let statement", token.SEMICOLON) {
		return nil
	}
	return &ast.Let{
		LetPos:  letPos,
		Mutable: mutable,
		Name:    name,
		Type:    typ,
		Value:   value,
	}
}

// parseAnnotation parses an optional type name introduced by the given
// token, such as ": int" or "-> int".
func (p *Parser) parseAnnotation(intro token.Type) (*ast.Ident, bool) {
	if !p.peekTokenIs(intro) {
		return nil, true
	}
	p.nextToken()
	if !p.expectPeek("type annotation", token.IDENT) {
		return nil, false
	}
	return p.newIdent(p.curToken), true
}

func (p *Parser) parseAssign() ast.Stmt {
	name := p.newIdent(p.curToken)
	p.nextToken() // "="
	p.nextToken()
	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil
	}
	if !p.expectPeek("assignment", token.SEMICOLON) {
		return nil
	}
	return &ast.Assign{Name: name, Value: value}
}

func (p *Parser) parseReturn() ast.Stmt {
	stmt := &ast.Return{ReturnPos: p.curToken.StartPosition}
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		return stmt
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	if !p.expectPeek("return statement", token.SEMICOLON) {
		return nil
	}
	return stmt
}

func (p *Parser) parseExpressionStatement() ast.Stmt {
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	if !p.expectPeek("expression statement", token.SEMICOLON) {
		return nil
	}
	return &ast.ExprStmt{X: expr}
}

func (p *Parser) parseIf() ast.Stmt {
	stmt := &ast.If{}
	for {
		branch := &ast.Branch{IfPos: p.curToken.StartPosition}
		p.nextToken()
		branch.Cond = p.parseExpression(LOWEST)
		if branch.Cond == nil {
			return nil
		}
		if !p.expectPeek("if statement", token.LBRACE) {
			return nil
		}
		if branch.Body = p.parseBlock(); branch.Body == nil {
			return nil
		}
		stmt.Branches = append(stmt.Branches, branch)
		if !p.peekTokenIs(token.ELSE) {
			return stmt
		}
		p.nextToken()
		if p.peekTokenIs(token.IF) {
			p.nextToken()
			continue
		}
		if !p.expectPeek("else block", token.LBRACE) {
			return nil
		}
		if stmt.Else = p.parseBlock(); stmt.Else == nil {
			return nil
		}
		return stmt
	}
}

func (p *Parser) parseWhile() ast.Stmt {
	stmt := &ast.While{WhilePos: p.curToken.StartPosition}
	p.nextToken()
	if stmt.Cond = p.parseExpression(LOWEST); stmt.Cond == nil {
		return nil
	}
	if !p.expectPeek("while statement", token.LBRACE) {
		return nil
	}
	if stmt.Body = p.parseBlock(); stmt.Body == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseFunc() ast.Stmt {
	fnPos := p.curToken.StartPosition
	if !p.expectPeek("function declaration", token.IDENT) {
		return nil
	}
	name := p.newIdent(p.curToken)
	if !p.expectPeek("function declaration", token.LPAREN) {
		return nil
	}
	params, ok := p.parseParams()
	if !ok {
		return nil
	}
	ret, ok := p.parseAnnotation(token.ARROW)
	if !ok {
		return nil
	}
	if !p.expectPeek("function declaration", token.LBRACE) {
		return nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	return &ast.Func{
		FnPos:      fnPos,
		Name:       name,
		Params:     params,
		ReturnType: ret,
		Body:       body,
	}
}

// parseParams parses a parameter list. curToken is the opening parenthesis
// on entry and the closing one on return.
func (p *Parser) parseParams() ([]*ast.Param, bool) {
	var params []*ast.Param
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params, true
	}
	for {
		param := &ast.Param{}
		if p.peekTokenIs(token.MUT) {
			p.nextToken()
			param.Mutable = true
		}
		if !p.expectPeek("parameter list", token.IDENT) {
			return nil, false
		}
		param.Name = p.newIdent(p.curToken)
		typ, ok := p.parseAnnotation(token.COLON)
		if !ok {
			return nil, false
		}
		param.Type = typ
		params = append(params, param)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek("parameter list", token.RPAREN) {
		return nil, false
	}
	return params, true
}

// parseBlock parses a braced statement list. curToken is the opening brace
// on entry and the closing brace on return.
func (p *Parser) parseBlock() *ast.Block {
	if !p.enter() {
		return nil
	}
	defer p.leave()
	p.openBlocks++
	block := &ast.Block{Lbrace: p.curToken.StartPosition}
	if err := p.nextToken(); err != nil {
		return nil
	}
	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			p.setTokenError(p.curToken, errors.E1007, "unexpected end of file (unclosed block)")
			return nil
		}
		stmt := p.parseStatement()
		if stmt == nil || p.hadNewError() {
			return nil
		}
		block.Stmts = append(block.Stmts, stmt)
		if err := p.nextToken(); err != nil {
			return nil
		}
	}
	block.Rbrace = p.curToken.StartPosition
	p.openBlocks--
	return block
}

// enter records one level of nesting and reports whether the depth limit
// still allows it. Every successful enter must be paired with leave.
func (p *Parser) enter() bool {
	if p.depth >= p.maxDepth {
		p.setTokenError(p.curToken, errors.E1009, "maximum nesting depth exceeded")
		return false
	}
	p.depth++
	return true
}

func (p *Parser) leave() {
	p.depth--
}

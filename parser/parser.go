// This file is part of b - a core compiler for the historical B language.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package parser implements a recursive-descent, single-token-lookahead
// parser that turns a lexer.Lexer's token stream into an ast.TranslationUnit.
// Parse errors are reported to the diag.Sink and parsing continues rather
// than aborting the whole file. Only a top-level definition that does not
// start with an identifier is skipped up to the next `;` or `}`; inside a
// function body no tokens are skipped to resynchronize, and parsing simply
// continues from where the error was found.
package parser

import (
	"github.com/db47h/b/ast"
	"github.com/db47h/b/diag"
	"github.com/db47h/b/lexer"
	"github.com/db47h/b/source"
	"github.com/db47h/b/token"
)

// Parser holds the parsing state for one translation unit.
type Parser struct {
	lex  *lexer.Lexer
	sink *diag.Sink
	tok  token.Token // one token of lookahead
}

// New returns a Parser consuming tokens from lex and reporting diagnostics
// into sink.
func New(lex *lexer.Lexer, sink *diag.Sink) *Parser {
	p := &Parser{lex: lex, sink: sink}
	p.tok = p.lex.Next()
	return p
}

func (p *Parser) advance() token.Token {
	t := p.tok
	p.tok = p.lex.Next()
	return t
}

func (p *Parser) isPunct(s string) bool {
	return p.tok.Kind == token.Punct && p.tok.Text == s
}

func (p *Parser) isKeyword(s string) bool {
	return p.tok.Kind == token.Keyword && p.tok.Text == s
}

func (p *Parser) errorf(pos source.Position, format string, args ...interface{}) {
	p.sink.Errorf(pos, format, args...)
}

// expectPunct consumes the current token if it is the punctuation s,
// otherwise reports an error and leaves the token stream unchanged.
func (p *Parser) expectPunct(s string) (source.Position, bool) {
	if p.isPunct(s) {
		pos := p.tok.Pos
		p.advance()
		return pos, true
	}
	p.errorf(p.tok.Pos, "expected %q, found %s", s, p.tok)
	return p.tok.Pos, false
}

func (p *Parser) expectIdent() (token.Token, bool) {
	if p.tok.Kind == token.Ident {
		t := p.tok
		p.advance()
		return t, true
	}
	p.errorf(p.tok.Pos, "expected identifier, found %s", p.tok)
	return p.tok, false
}

// synchronize discards tokens until a plausible statement or declaration
// boundary, so one malformed construct does not cascade into spurious
// follow-on errors.
func (p *Parser) synchronize() {
	for {
		switch {
		case p.tok.Terminal():
			return
		case p.isPunct(";"):
			p.advance()
			return
		case p.isPunct("}"):
			return
		}
		p.advance()
	}
}

// ParseFile parses one translation unit's worth of external definitions.
func (p *Parser) ParseFile() *ast.TranslationUnit {
	tu := &ast.TranslationUnit{}
	for !p.tok.Terminal() {
		if d := p.parseExternalDefinition(); d != nil {
			tu.Decls = append(tu.Decls, d)
		}
	}
	return tu
}

// ---------------------------------------------------------------------
// External definitions
// ---------------------------------------------------------------------

func (p *Parser) parseExternalDefinition() ast.Decl {
	nameTok, ok := p.expectIdent()
	if !ok {
		p.synchronize()
		return nil
	}
	if p.isPunct("(") {
		return p.parseFunctionDefinition(nameTok)
	}
	return p.parseExternalVariable(nameTok)
}

func (p *Parser) parseFunctionDefinition(nameTok token.Token) ast.Decl {
	p.advance() // '('
	var params []string
	for !p.isPunct(")") && !p.tok.Terminal() {
		pt, ok := p.expectIdent()
		if !ok {
			break
		}
		params = append(params, pt.Text)
		if p.isPunct(",") {
			p.advance()
			continue
		}
		break
	}
	p.expectPunct(")")
	body := p.parseBlock()
	return &ast.FunctionDefinition{
		Loc:    ast.Loc{Pos: nameTok.Pos},
		Name:   nameTok.Text,
		Params: params,
		Body:   body,
	}
}

func (p *Parser) parseExternalVariable(nameTok token.Token) ast.Decl {
	ev := &ast.ExternalVariable{Loc: ast.Loc{Pos: nameTok.Pos}, Name: nameTok.Text}
	if p.isPunct("[") {
		p.advance()
		if !p.isPunct("]") {
			ev.ArraySize = p.parseAssignment()
		}
		p.expectPunct("]")
	}
	for !p.isPunct(";") && !p.tok.Terminal() {
		ev.Initializer = append(ev.Initializer, p.parseAssignment())
		if p.isPunct(",") {
			p.advance()
			continue
		}
		break
	}
	p.expectPunct(";")
	return ev
}

// ---------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------

func (p *Parser) parseBlock() *ast.Block {
	pos, _ := p.expectPunct("{")
	b := &ast.Block{Loc: ast.Loc{Pos: pos}}
	for p.isKeyword("auto") || p.isKeyword("extrn") {
		if p.isKeyword("auto") {
			b.Autos = append(b.Autos, p.parseAutoDecls()...)
		} else {
			b.Externs = append(b.Externs, p.parseExternDecl())
		}
	}
	for !p.isPunct("}") && !p.tok.Terminal() {
		b.Stmts = append(b.Stmts, p.parseStatement())
	}
	p.expectPunct("}")
	return b
}

func (p *Parser) parseAutoDecls() []*ast.AutoDecl {
	p.advance() // 'auto'
	var decls []*ast.AutoDecl
	for {
		nameTok, ok := p.expectIdent()
		if !ok {
			break
		}
		d := &ast.AutoDecl{Loc: ast.Loc{Pos: nameTok.Pos}, Name: nameTok.Text}
		if p.isPunct("[") {
			p.advance()
			if !p.isPunct("]") {
				d.ArraySize = p.parseAssignment()
			}
			p.expectPunct("]")
		}
		decls = append(decls, d)
		if p.isPunct(",") {
			p.advance()
			continue
		}
		break
	}
	p.expectPunct(";")
	return decls
}

func (p *Parser) parseExternDecl() *ast.ExternDecl {
	pos := p.tok.Pos
	p.advance() // 'extrn'
	ed := &ast.ExternDecl{Loc: ast.Loc{Pos: pos}}
	for {
		nameTok, ok := p.expectIdent()
		if !ok {
			break
		}
		ed.Names = append(ed.Names, nameTok.Text)
		if p.isPunct(",") {
			p.advance()
			continue
		}
		break
	}
	p.expectPunct(";")
	return ed
}

func (p *Parser) parseStatement() ast.Stmt {
	switch {
	case p.isPunct("{"):
		return p.parseBlock()
	case p.isPunct(";"):
		pos := p.tok.Pos
		p.advance()
		return &ast.Null{Loc: ast.Loc{Pos: pos}}
	case p.isKeyword("if"):
		return p.parseIf()
	case p.isKeyword("while"):
		return p.parseWhile()
	case p.isKeyword("switch"):
		return p.parseSwitch()
	case p.isKeyword("case"):
		return p.parseCase()
	case p.isKeyword("default"):
		return p.parseDefault()
	case p.isKeyword("return"):
		return p.parseReturn()
	case p.isKeyword("goto"):
		return p.parseGoto()
	case p.isKeyword("break"):
		pos := p.tok.Pos
		p.advance()
		p.expectPunct(";")
		return &ast.Break{Loc: ast.Loc{Pos: pos}}
	case p.isKeyword("continue"):
		pos := p.tok.Pos
		p.advance()
		p.expectPunct(";")
		return &ast.Continue{Loc: ast.Loc{Pos: pos}}
	case p.tok.Kind == token.Ident:
		return p.parseIdentStatement()
	case p.tok.Kind == token.Error:
		// The lexer already reported the fatal read error; don't pile on.
		return &ast.Null{Loc: ast.Loc{Pos: p.tok.Pos}}
	case p.tok.Terminal():
		p.errorf(p.tok.Pos, "unexpected end of file, expected a statement")
		return &ast.Null{Loc: ast.Loc{Pos: p.tok.Pos}}
	default:
		return p.parseExprStatement()
	}
}

// parseIdentStatement resolves the ambiguity between a labeled statement
// (`name: stmt`) and an expression statement beginning with an identifier,
// using the lexer's one-token pushback to look one token past the
// identifier without disturbing the parser's own lookahead slot.
func (p *Parser) parseIdentStatement() ast.Stmt {
	identTok := p.tok
	follow := p.lex.Next()
	if follow.Kind == token.Punct && follow.Text == ":" {
		p.tok = p.lex.Next()
		stmt := p.parseStatement()
		return &ast.Labeled{Loc: ast.Loc{Pos: identTok.Pos}, Name: identTok.Text, Stmt: stmt}
	}
	p.lex.Unread(follow)
	return p.parseExprStatement()
}

func (p *Parser) parseExprStatement() ast.Stmt {
	pos := p.tok.Pos
	x := p.parseExpression()
	p.expectPunct(";")
	return &ast.ExprStmt{Loc: ast.Loc{Pos: pos}, X: x}
}

func (p *Parser) parseIf() ast.Stmt {
	pos := p.tok.Pos
	p.advance() // 'if'
	p.expectPunct("(")
	cond := p.parseExpression()
	p.expectPunct(")")
	then := p.parseStatement()
	stmt := &ast.If{Loc: ast.Loc{Pos: pos}, Cond: cond, Then: then}
	if p.isKeyword("else") {
		p.advance()
		stmt.Else = p.parseStatement()
	}
	return stmt
}

func (p *Parser) parseWhile() ast.Stmt {
	pos := p.tok.Pos
	p.advance() // 'while'
	p.expectPunct("(")
	cond := p.parseExpression()
	p.expectPunct(")")
	body := p.parseStatement()
	return &ast.While{Loc: ast.Loc{Pos: pos}, Cond: cond, Body: body}
}

func (p *Parser) parseSwitch() ast.Stmt {
	pos := p.tok.Pos
	p.advance() // 'switch'
	// Parentheses around the scrutinee are permitted but not required.
	paren := p.isPunct("(")
	if paren {
		p.advance()
	}
	scrutinee := p.parseExpression()
	if paren {
		p.expectPunct(")")
	}
	body := p.parseStatement()
	return &ast.Switch{Loc: ast.Loc{Pos: pos}, Scrutinee: scrutinee, Body: body}
}

func (p *Parser) parseCase() ast.Stmt {
	pos := p.tok.Pos
	p.advance() // 'case'
	c := p.parseConditional()
	p.expectPunct(":")
	next := p.parseStatement()
	return &ast.Case{Loc: ast.Loc{Pos: pos}, ConstExpr: c, Next: next}
}

func (p *Parser) parseDefault() ast.Stmt {
	pos := p.tok.Pos
	p.advance() // 'default'
	p.expectPunct(":")
	next := p.parseStatement()
	return &ast.Default{Loc: ast.Loc{Pos: pos}, Next: next}
}

func (p *Parser) parseReturn() ast.Stmt {
	pos := p.tok.Pos
	p.advance() // 'return'
	r := &ast.Return{Loc: ast.Loc{Pos: pos}}
	if !p.isPunct(";") {
		r.X = p.parseExpression()
	}
	p.expectPunct(";")
	return r
}

func (p *Parser) parseGoto() ast.Stmt {
	pos := p.tok.Pos
	p.advance() // 'goto'
	x := p.parseExpression()
	p.expectPunct(";")
	g := &ast.Goto{Loc: ast.Loc{Pos: pos}, X: x}
	if nr, ok := x.(*ast.NameReference); ok {
		g.Label = nr.Name
	}
	return g
}

// ---------------------------------------------------------------------
// Expressions
//
// Precedence, lowest to highest:
//
//	assignment (right-assoc)
//	conditional ?:
//	|
//	^
//	&
//	equality        == !=
//	relational      < <= > >=
//	shift           << >>
//	additive        + -
//	multiplicative  * / %
//	unary prefix    - ! ~ & * ++ --
//	postfix         ++ -- () []
//	primary
// ---------------------------------------------------------------------

func (p *Parser) parseExpression() ast.Expr {
	return p.parseAssignment()
}

var compoundAssignOps = map[token.Op]ast.AssignOp{
	token.OpAdd: ast.AAdd, token.OpSub: ast.ASub, token.OpMul: ast.AMul,
	token.OpDiv: ast.ADiv, token.OpMod: ast.AMod, token.OpShl: ast.AShl,
	token.OpShr: ast.AShr, token.OpAnd: ast.AAnd, token.OpOr: ast.AOr,
	token.OpXor: ast.AXor,
}

var relAssignOps = map[token.Op]ast.AssignOp{
	token.OpLt: ast.ALt, token.OpLe: ast.ALe, token.OpGt: ast.AGt,
	token.OpGe: ast.AGe, token.OpEq: ast.AEq, token.OpNe: ast.ANe,
}

func (p *Parser) parseAssignment() ast.Expr {
	left := p.parseConditional()

	switch {
	case p.tok.Kind == token.Operator && p.tok.Text == "=" && p.tok.Op == token.OpNone:
		pos := p.tok.Pos
		p.advance()
		value := p.parseAssignment()
		return &ast.Assign{Loc: ast.Loc{Pos: pos}, Op: ast.APlain, Target: left, Value: value}
	case p.tok.Kind == token.CompoundAssign:
		op, ok := compoundAssignOps[p.tok.Op]
		if !ok {
			p.errorf(p.tok.Pos, "unsupported compound assignment %s", p.tok)
			op = ast.APlain
		}
		pos := p.tok.Pos
		p.advance()
		value := p.parseAssignment()
		return &ast.Assign{Loc: ast.Loc{Pos: pos}, Op: op, Target: left, Value: value}
	case p.tok.Kind == token.RelAssign:
		op, ok := relAssignOps[p.tok.Op]
		if !ok {
			p.errorf(p.tok.Pos, "unsupported relational assignment %s", p.tok)
			op = ast.APlain
		}
		pos := p.tok.Pos
		p.advance()
		value := p.parseAssignment()
		return &ast.Assign{Loc: ast.Loc{Pos: pos}, Op: op, Target: left, Value: value}
	}
	return left
}

func (p *Parser) parseConditional() ast.Expr {
	cond := p.parseBitOr()
	if !p.isPunct("?") {
		return cond
	}
	pos := p.tok.Pos
	p.advance()
	then := p.parseAssignment()
	p.expectPunct(":")
	els := p.parseConditional()
	return &ast.Conditional{Loc: ast.Loc{Pos: pos}, Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseBitOr() ast.Expr {
	left := p.parseBitXor()
	for p.tok.Kind == token.Operator && p.tok.Op == token.OpOr {
		pos := p.tok.Pos
		p.advance()
		right := p.parseBitXor()
		left = &ast.Binary{Loc: ast.Loc{Pos: pos}, Op: ast.BOr, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseBitXor() ast.Expr {
	left := p.parseBitAnd()
	for p.tok.Kind == token.Operator && p.tok.Op == token.OpXor {
		pos := p.tok.Pos
		p.advance()
		right := p.parseBitAnd()
		left = &ast.Binary{Loc: ast.Loc{Pos: pos}, Op: ast.BXor, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseBitAnd() ast.Expr {
	left := p.parseEquality()
	for p.tok.Kind == token.Operator && p.tok.Op == token.OpAnd {
		pos := p.tok.Pos
		p.advance()
		right := p.parseEquality()
		left = &ast.Binary{Loc: ast.Loc{Pos: pos}, Op: ast.BAnd, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseEquality() ast.Expr {
	left := p.parseRelational()
	for p.tok.Kind == token.Operator && (p.tok.Op == token.OpEq || p.tok.Op == token.OpNe) {
		op := ast.BEq
		if p.tok.Op == token.OpNe {
			op = ast.BNe
		}
		pos := p.tok.Pos
		p.advance()
		right := p.parseRelational()
		left = &ast.Binary{Loc: ast.Loc{Pos: pos}, Op: op, Left: left, Right: right}
	}
	return left
}

var relBinOps = map[token.Op]ast.BinaryOp{
	token.OpLt: ast.BLt, token.OpLe: ast.BLe, token.OpGt: ast.BGt, token.OpGe: ast.BGe,
}

func (p *Parser) parseRelational() ast.Expr {
	left := p.parseShift()
	for p.tok.Kind == token.Operator {
		op, ok := relBinOps[p.tok.Op]
		if !ok {
			break
		}
		pos := p.tok.Pos
		p.advance()
		right := p.parseShift()
		left = &ast.Binary{Loc: ast.Loc{Pos: pos}, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseShift() ast.Expr {
	left := p.parseAdditive()
	for p.tok.Kind == token.Operator && (p.tok.Op == token.OpShl || p.tok.Op == token.OpShr) {
		op := ast.BShl
		if p.tok.Op == token.OpShr {
			op = ast.BShr
		}
		pos := p.tok.Pos
		p.advance()
		right := p.parseAdditive()
		left = &ast.Binary{Loc: ast.Loc{Pos: pos}, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for p.tok.Kind == token.Operator && (p.tok.Op == token.OpAdd || p.tok.Op == token.OpSub) {
		op := ast.BAdd
		if p.tok.Op == token.OpSub {
			op = ast.BSub
		}
		pos := p.tok.Pos
		p.advance()
		right := p.parseMultiplicative()
		left = &ast.Binary{Loc: ast.Loc{Pos: pos}, Op: op, Left: left, Right: right}
	}
	return left
}

var mulBinOps = map[token.Op]ast.BinaryOp{
	token.OpMul: ast.BMul, token.OpDiv: ast.BDiv, token.OpMod: ast.BMod,
}

func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for p.tok.Kind == token.Operator {
		op, ok := mulBinOps[p.tok.Op]
		if !ok {
			break
		}
		pos := p.tok.Pos
		p.advance()
		right := p.parseUnary()
		left = &ast.Binary{Loc: ast.Loc{Pos: pos}, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	switch {
	case p.tok.Kind == token.Operator && p.tok.Op == token.OpSub:
		pos := p.tok.Pos
		p.advance()
		return &ast.Unary{Loc: ast.Loc{Pos: pos}, Op: ast.UNeg, Operand: p.parseUnary()}
	case p.tok.Kind == token.Operator && p.tok.Op == token.OpNot:
		pos := p.tok.Pos
		p.advance()
		return &ast.Unary{Loc: ast.Loc{Pos: pos}, Op: ast.UNot, Operand: p.parseUnary()}
	case p.tok.Kind == token.Operator && p.tok.Op == token.OpCompl:
		pos := p.tok.Pos
		p.advance()
		return &ast.Unary{Loc: ast.Loc{Pos: pos}, Op: ast.UCompl, Operand: p.parseUnary()}
	case p.tok.Kind == token.Operator && p.tok.Op == token.OpAnd:
		pos := p.tok.Pos
		p.advance()
		return &ast.Unary{Loc: ast.Loc{Pos: pos}, Op: ast.UAddr, Operand: p.parseUnary()}
	case p.tok.Kind == token.Operator && p.tok.Op == token.OpMul:
		pos := p.tok.Pos
		p.advance()
		return &ast.Unary{Loc: ast.Loc{Pos: pos}, Op: ast.UDeref, Operand: p.parseUnary()}
	case p.tok.Kind == token.IncDec && p.tok.Op == token.OpInc:
		pos := p.tok.Pos
		p.advance()
		return &ast.Unary{Loc: ast.Loc{Pos: pos}, Op: ast.UPreInc, Operand: p.parseUnary()}
	case p.tok.Kind == token.IncDec && p.tok.Op == token.OpDec:
		pos := p.tok.Pos
		p.advance()
		return &ast.Unary{Loc: ast.Loc{Pos: pos}, Op: ast.UPreDec, Operand: p.parseUnary()}
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() ast.Expr {
	x := p.parsePrimary()
	for {
		switch {
		case p.tok.Kind == token.IncDec && p.tok.Op == token.OpInc:
			pos := p.tok.Pos
			p.advance()
			x = &ast.Unary{Loc: ast.Loc{Pos: pos}, Op: ast.UPostInc, Operand: x}
		case p.tok.Kind == token.IncDec && p.tok.Op == token.OpDec:
			pos := p.tok.Pos
			p.advance()
			x = &ast.Unary{Loc: ast.Loc{Pos: pos}, Op: ast.UPostDec, Operand: x}
		case p.isPunct("("):
			pos := p.tok.Pos
			p.advance()
			var args []ast.Expr
			for !p.isPunct(")") && !p.tok.Terminal() {
				args = append(args, p.parseAssignment())
				if p.isPunct(",") {
					p.advance()
					continue
				}
				break
			}
			p.expectPunct(")")
			x = &ast.Call{Loc: ast.Loc{Pos: pos}, Callee: x, Args: args}
		case p.isPunct("["):
			pos := p.tok.Pos
			p.advance()
			idx := p.parseExpression()
			p.expectPunct("]")
			x = &ast.Index{Loc: ast.Loc{Pos: pos}, Array: x, Idx: idx}
		default:
			return x
		}
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.tok
	switch tok.Kind {
	case token.Number:
		p.advance()
		return &ast.IntegerLiteral{Loc: ast.Loc{Pos: tok.Pos}, Value: tok.IntValue, Base: tok.Base}
	case token.CharConst:
		p.advance()
		return &ast.CharLiteral{Loc: ast.Loc{Pos: tok.Pos}, Value: tok.IntValue}
	case token.StringConst:
		p.advance()
		return &ast.StringLiteral{Loc: ast.Loc{Pos: tok.Pos}, Bytes: tok.Bytes}
	case token.Ident:
		p.advance()
		return &ast.NameReference{Loc: ast.Loc{Pos: tok.Pos}, Name: tok.Text}
	case token.Punct:
		if tok.Text == "(" {
			p.advance()
			x := p.parseExpression()
			p.expectPunct(")")
			return x
		}
	}
	p.errorf(tok.Pos, "unexpected token %s in expression", tok)
	p.advance()
	return &ast.IntegerLiteral{Loc: ast.Loc{Pos: tok.Pos}, Value: 0, Base: 10}
}

// Package parser implements the recursive-descent parser of spec §4.2: a
// fixed-precedence grammar (logical → compare → add → mul → sec → primary)
// over the token sequence produced by internal/lexer.
package parser

import (
	"fmt"

	"github.com/cwbudde/go-dynl/internal/ast"
	"github.com/cwbudde/go-dynl/internal/diag"
	"github.com/cwbudde/go-dynl/internal/lexer"
	"github.com/cwbudde/go-dynl/internal/token"
)

// Error is a parse-stage failure referring to the offending token (or EOF).
type Error struct {
	*diag.Error
}

func newError(message string, pos token.Position, source string) *Error {
	return &Error{diag.New(diag.Parse, message, pos, source)}
}

// Parser consumes a flat token slice produced up front from the lexer (the
// grammar needs only single-token lookahead, per spec §5 "do not backtrack
// beyond single-token lookahead").
type Parser struct {
	source string
	tokens []token.Token
	pos    int
}

// New lexes input completely and returns a Parser over the resulting token
// stream, or the first lex failure encountered.
func New(input string) (*Parser, error) {
	l := lexer.New(input)
	var toks []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return &Parser{source: input, tokens: toks}, nil
}

func (p *Parser) cur() token.Token  { return p.tokens[p.pos] }
func (p *Parser) peek() token.Token { return p.tokens[p.pos] }

func (p *Parser) advance() token.Token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

// isLiteral reports whether the current token's literal equals lit,
// regardless of kind (keywords and operators are both kind OPERATOR).
func (p *Parser) isLiteral(lit string) bool {
	return p.cur().Literal == lit
}

func (p *Parser) isKind(k token.Kind) bool {
	return p.cur().Kind == k
}

// expectLiteral consumes the current token if its literal matches lit, else
// fails.
func (p *Parser) expectLiteral(lit string) (token.Token, error) {
	if !p.isLiteral(lit) {
		return token.Token{}, p.unexpected(fmt.Sprintf("expected %q", lit))
	}
	return p.advance(), nil
}

func (p *Parser) expectKind(k token.Kind, what string) (token.Token, error) {
	if !p.isKind(k) {
		return token.Token{}, p.unexpected(fmt.Sprintf("expected %s", what))
	}
	return p.advance(), nil
}

func (p *Parser) unexpected(message string) error {
	t := p.cur()
	if t.Kind == token.EOF {
		return newError(message+", got end of input", t.Pos, p.source)
	}
	return newError(fmt.Sprintf("%s, got %q", message, t.Literal), t.Pos, p.source)
}

// ParseSource parses the `source` start rule: stmt* until EOF.
func (p *Parser) ParseSource() (*ast.Source, error) {
	src := &ast.Source{}
	for !p.isKind(token.EOF) {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		src.Statements = append(src.Statements, stmt)
	}
	return src, nil
}

// ParseStmt parses a single `stmt` start rule, failing on unexpected
// trailing tokens afterward (§4.2 error policy).
func (p *Parser) ParseStmt() (ast.Stmt, error) {
	stmt, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	if !p.isKind(token.EOF) {
		return nil, p.unexpected("unexpected trailing tokens")
	}
	return stmt, nil
}

// ParseExpr parses a single `expr` start rule, failing on unexpected
// trailing tokens afterward.
func (p *Parser) ParseExpr() (ast.Expr, error) {
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.isKind(token.EOF) {
		return nil, p.unexpected("unexpected trailing tokens")
	}
	return expr, nil
}

func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch {
	case p.isLiteral("LET"):
		return p.parseLet()
	case p.isLiteral("DEF"):
		return p.parseDef()
	case p.isLiteral("IF"):
		return p.parseIf()
	case p.isLiteral("FOR"):
		return p.parseFor()
	case p.isLiteral("RETURN"):
		return p.parseReturn()
	default:
		return p.parseExprOrAssign()
	}
}

func (p *Parser) parseBlockStmts(terminators ...string) ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for {
		for _, term := range terminators {
			if p.isLiteral(term) {
				return stmts, nil
			}
		}
		if p.isKind(token.EOF) {
			return nil, p.unexpected("unterminated block")
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
}

// let := 'LET' IDENT (':' IDENT)? ('=' expr)? ';'
func (p *Parser) parseLet() (ast.Stmt, error) {
	letTok, _ := p.expectLiteral("LET")
	nameTok, err := p.expectKind(token.IDENTIFIER, "identifier")
	if err != nil {
		return nil, err
	}

	let := &ast.Let{Token: letTok, Name: nameTok.Literal}

	if p.isLiteral(":") {
		p.advance()
		typeTok, err := p.expectKind(token.IDENTIFIER, "type name")
		if err != nil {
			return nil, err
		}
		let.HasDeclaredType = true
		let.DeclaredType = typeTok.Literal
	}

	if p.isLiteral("=") {
		p.advance()
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		let.Value = value
	}

	if _, err := p.expectLiteral(";"); err != nil {
		return nil, err
	}
	return let, nil
}

// def := 'DEF' IDENT '(' params? ')' (':' IDENT)? 'DO' stmt* 'END'
func (p *Parser) parseDef() (ast.Stmt, error) {
	defTok, _ := p.expectLiteral("DEF")
	nameTok, err := p.expectKind(token.IDENTIFIER, "identifier")
	if err != nil {
		return nil, err
	}

	if _, err := p.expectLiteral("("); err != nil {
		return nil, err
	}

	def := &ast.Def{Token: defTok, Name: nameTok.Literal}

	if !p.isLiteral(")") {
		params, err := p.parseParams()
		if err != nil {
			return nil, err
		}
		def.Params = params
	}

	if _, err := p.expectLiteral(")"); err != nil {
		return nil, err
	}

	if p.isLiteral(":") {
		p.advance()
		typeTok, err := p.expectKind(token.IDENTIFIER, "type name")
		if err != nil {
			return nil, err
		}
		def.HasReturn = true
		def.ReturnType = typeTok.Literal
	}

	if _, err := p.expectLiteral("DO"); err != nil {
		return nil, err
	}

	body, err := p.parseBlockStmts("END")
	if err != nil {
		return nil, err
	}
	def.Body = body

	if _, err := p.expectLiteral("END"); err != nil {
		return nil, err
	}
	return def, nil
}

// params := IDENT (':' IDENT)? (',' IDENT (':' IDENT)?)*
func (p *Parser) parseParams() ([]ast.Param, error) {
	var params []ast.Param
	for {
		nameTok, err := p.expectKind(token.IDENTIFIER, "parameter name")
		if err != nil {
			return nil, err
		}
		param := ast.Param{Name: nameTok.Literal}
		if p.isLiteral(":") {
			p.advance()
			typeTok, err := p.expectKind(token.IDENTIFIER, "type name")
			if err != nil {
				return nil, err
			}
			param.HasDeclaredType = true
			param.TypeName = typeTok.Literal
		}
		params = append(params, param)
		if p.isLiteral(",") {
			p.advance()
			continue
		}
		break
	}
	return params, nil
}

// if := 'IF' expr 'DO' stmt* ('ELSE' stmt*)? 'END'
func (p *Parser) parseIf() (ast.Stmt, error) {
	ifTok, _ := p.expectLiteral("IF")
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectLiteral("DO"); err != nil {
		return nil, err
	}
	thenBody, err := p.parseBlockStmts("ELSE", "END")
	if err != nil {
		return nil, err
	}

	node := &ast.If{Token: ifTok, Cond: cond, ThenBody: thenBody}

	if p.isLiteral("ELSE") {
		p.advance()
		elseBody, err := p.parseBlockStmts("END")
		if err != nil {
			return nil, err
		}
		node.ElseBody = elseBody
	}

	if _, err := p.expectLiteral("END"); err != nil {
		return nil, err
	}
	return node, nil
}

// for := 'FOR' IDENT 'IN' expr 'DO' stmt* 'END'
func (p *Parser) parseFor() (ast.Stmt, error) {
	forTok, _ := p.expectLiteral("FOR")
	nameTok, err := p.expectKind(token.IDENTIFIER, "identifier")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectLiteral("IN"); err != nil {
		return nil, err
	}
	iter, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectLiteral("DO"); err != nil {
		return nil, err
	}
	body, err := p.parseBlockStmts("END")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectLiteral("END"); err != nil {
		return nil, err
	}
	return &ast.For{Token: forTok, Name: nameTok.Literal, Expr: iter, Body: body}, nil
}

// return := 'RETURN' expr? ('IF' expr)? ';'
// The guard form desugars at parse time: `RETURN expr IF cond;` becomes
// `If(cond, [Return(expr)], [])` (§4.2 "Return-with-guard").
func (p *Parser) parseReturn() (ast.Stmt, error) {
	retTok, _ := p.expectLiteral("RETURN")

	ret := &ast.Return{Token: retTok}
	if !p.isLiteral("IF") && !p.isLiteral(";") {
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		ret.Value = value
	}

	if p.isLiteral("IF") {
		p.advance()
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectLiteral(";"); err != nil {
			return nil, err
		}
		return &ast.If{
			Token:    retTok,
			Cond:     cond,
			ThenBody: []ast.Stmt{ret},
			ElseBody: nil,
		}, nil
	}

	if _, err := p.expectLiteral(";"); err != nil {
		return nil, err
	}
	return ret, nil
}

// exprOrAssign := expr ('=' expr)? ';'
func (p *Parser) parseExprOrAssign() (ast.Stmt, error) {
	startTok := p.cur()
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if p.isLiteral("=") {
		eqTok := p.advance()
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectLiteral(";"); err != nil {
			return nil, err
		}
		return &ast.Assignment{Token: eqTok, Target: expr, Value: value}, nil
	}

	if _, err := p.expectLiteral(";"); err != nil {
		return nil, err
	}
	return &ast.ExpressionStmt{Token: startTok, Expr: expr}, nil
}

func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseLogical()
}

// logical := compare (('AND'|'OR') compare)*
func (p *Parser) parseLogical() (ast.Expr, error) {
	left, err := p.parseCompare()
	if err != nil {
		return nil, err
	}
	for p.isLiteral("AND") || p.isLiteral("OR") {
		opTok := p.advance()
		right, err := p.parseCompare()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Token: opTok, Operator: opTok.Literal, Left: left, Right: right}
	}
	return left, nil
}

// compare := add (('<'|'<='|'>'|'>='|'=='|'!=') add)*
func (p *Parser) parseCompare() (ast.Expr, error) {
	left, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	for p.isLiteral("<") || p.isLiteral("<=") || p.isLiteral(">") || p.isLiteral(">=") ||
		p.isLiteral("==") || p.isLiteral("!=") {
		opTok := p.advance()
		right, err := p.parseAdd()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Token: opTok, Operator: opTok.Literal, Left: left, Right: right}
	}
	return left, nil
}

// add := mul (('+'|'-') mul)*
func (p *Parser) parseAdd() (ast.Expr, error) {
	left, err := p.parseMul()
	if err != nil {
		return nil, err
	}
	for p.isLiteral("+") || p.isLiteral("-") {
		opTok := p.advance()
		right, err := p.parseMul()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Token: opTok, Operator: opTok.Literal, Left: left, Right: right}
	}
	return left, nil
}

// mul := sec (('*'|'/') sec)*
func (p *Parser) parseMul() (ast.Expr, error) {
	left, err := p.parseSec()
	if err != nil {
		return nil, err
	}
	for p.isLiteral("*") || p.isLiteral("/") {
		opTok := p.advance()
		right, err := p.parseSec()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Token: opTok, Operator: opTok.Literal, Left: left, Right: right}
	}
	return left, nil
}

// sec := primary ('.' IDENT ('(' args? ')')?)*
func (p *Parser) parseSec() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.isLiteral(".") {
		dotTok := p.advance()
		nameTok, err := p.expectKind(token.IDENTIFIER, "member name")
		if err != nil {
			return nil, err
		}
		if p.isLiteral("(") {
			p.advance()
			var args []ast.Expr
			if !p.isLiteral(")") {
				args, err = p.parseArgs()
				if err != nil {
					return nil, err
				}
			}
			if _, err := p.expectLiteral(")"); err != nil {
				return nil, err
			}
			expr = &ast.Method{Token: dotTok, Receiver: expr, Name: nameTok.Literal, Args: args}
		} else {
			expr = &ast.Property{Token: dotTok, Receiver: expr, Name: nameTok.Literal}
		}
	}
	return expr, nil
}

// primary := literal | group | object | var_or_call
func (p *Parser) parsePrimary() (ast.Expr, error) {
	switch {
	case p.isLiteral("NIL"):
		tok := p.advance()
		return &ast.Literal{Token: tok, Kind: ast.NilLiteral, Value: tok.Literal}, nil
	case p.isLiteral("TRUE"), p.isLiteral("FALSE"):
		tok := p.advance()
		value := "false"
		if tok.Literal == "TRUE" {
			value = "true"
		}
		return &ast.Literal{Token: tok, Kind: ast.BoolLiteral, Value: value}, nil
	case p.isKind(token.INTEGER):
		tok := p.advance()
		return &ast.Literal{Token: tok, Kind: ast.IntegerLiteral, Value: tok.Literal}, nil
	case p.isKind(token.DECIMAL):
		tok := p.advance()
		return &ast.Literal{Token: tok, Kind: ast.DecimalLiteral, Value: tok.Literal}, nil
	case p.isKind(token.CHARACTER):
		tok := p.advance()
		val, err := decodeCharLiteral(tok.Literal)
		if err != nil {
			return nil, newError(err.Error(), tok.Pos, p.source)
		}
		return &ast.Literal{Token: tok, Kind: ast.CharacterLiteral, Value: val}, nil
	case p.isKind(token.STRING):
		tok := p.advance()
		val, err := decodeStringLiteral(tok.Literal)
		if err != nil {
			return nil, newError(err.Error(), tok.Pos, p.source)
		}
		return &ast.Literal{Token: tok, Kind: ast.StringLiteral, Value: val}, nil
	case p.isLiteral("("):
		return p.parseGroup()
	case p.isLiteral("OBJECT"):
		return p.parseObject()
	case p.isKind(token.IDENTIFIER):
		return p.parseVarOrCall()
	default:
		return nil, p.unexpected("unexpected token in primary position")
	}
}

func (p *Parser) parseGroup() (ast.Expr, error) {
	groupTok, _ := p.expectLiteral("(")
	inner, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectLiteral(")"); err != nil {
		return nil, err
	}
	return &ast.Group{Token: groupTok, Expr: inner}, nil
}

// object := 'OBJECT' IDENT? 'DO' (let)* (def)* 'END'
// A field after a method is a parse error (§4.2 "Object literal ordering").
func (p *Parser) parseObject() (ast.Expr, error) {
	objTok, _ := p.expectLiteral("OBJECT")

	name := ""
	if p.isKind(token.IDENTIFIER) {
		name = p.advance().Literal
	}

	if _, err := p.expectLiteral("DO"); err != nil {
		return nil, err
	}

	obj := &ast.ObjectExpr{Token: objTok, Name: name}

	for p.isLiteral("LET") {
		stmt, err := p.parseLet()
		if err != nil {
			return nil, err
		}
		obj.Fields = append(obj.Fields, stmt.(*ast.Let))
	}

	for p.isLiteral("DEF") {
		stmt, err := p.parseDef()
		if err != nil {
			return nil, err
		}
		obj.Methods = append(obj.Methods, stmt.(*ast.Def))
	}

	if p.isLiteral("LET") {
		return nil, p.unexpected("field after method in object literal")
	}

	if _, err := p.expectLiteral("END"); err != nil {
		return nil, err
	}
	return obj, nil
}

// var_or_call := IDENT ('(' args? ')')?
func (p *Parser) parseVarOrCall() (ast.Expr, error) {
	nameTok, err := p.expectKind(token.IDENTIFIER, "identifier")
	if err != nil {
		return nil, err
	}

	if !p.isLiteral("(") {
		return &ast.Variable{Token: nameTok, Name: nameTok.Literal}, nil
	}

	p.advance()
	var args []ast.Expr
	if !p.isLiteral(")") {
		args, err = p.parseArgs()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expectLiteral(")"); err != nil {
		return nil, err
	}
	return &ast.Function{Token: nameTok, Name: nameTok.Literal, Args: args}, nil
}

// args := expr (',' expr)*
func (p *Parser) parseArgs() ([]ast.Expr, error) {
	var args []ast.Expr
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.isLiteral(",") {
			p.advance()
			continue
		}
		break
	}
	return args, nil
}

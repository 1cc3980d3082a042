// Package parser builds an [ast.Program] from source text using a
// hand-written recursive-descent parser with operator-precedence climbing.
package parser

import (
	"fmt"
	"strconv"

	"github.com/ardnew/ctrlfn/lang/ast"
	"github.com/ardnew/ctrlfn/lang/lexer"
	"github.com/ardnew/ctrlfn/lang/token"
)

// Error reports a syntax error with its source position and, where known,
// the set of tokens that would have been accepted.
type Error struct {
	Pos      token.Position
	Msg      string
	Expected []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// Parser turns a token stream into an [ast.Program].
type Parser struct {
	lx  *lexer.Lexer
	cur token.Token
}

// Parse parses src as a complete program.
func Parse(src []byte) (*ast.Program, error) {
	p := &Parser{lx: lexer.New(src)}

	if err := p.advance(); err != nil {
		return nil, err
	}

	return p.parseProgram()
}

func (p *Parser) advance() error {
	tok, err := p.lx.Next()
	if err != nil {
		return wrapLexErr(err)
	}

	p.cur = tok

	return nil
}

func wrapLexErr(err error) error {
	if lerr, ok := err.(*lexer.Error); ok {
		return &Error{Pos: lerr.Pos, Msg: lerr.Msg}
	}

	return err
}

// peekToken reports the token following the current one without consuming
// it, by snapshotting and restoring the lexer's scan position.
func (p *Parser) peekToken() (token.Token, error) {
	cp := p.lx.Checkpoint()

	tok, err := p.lx.Next()

	p.lx.Restore(cp)

	if err != nil {
		return token.Token{}, wrapLexErr(err)
	}

	return tok, nil
}

func (p *Parser) expect(k token.Kind) (token.Token, error) {
	if p.cur.Kind != k {
		return token.Token{}, &Error{
			Pos:      p.cur.Pos,
			Msg:      fmt.Sprintf("unexpected %s, expected %s", p.cur.Kind, k),
			Expected: []string{k.String()},
		}
	}

	tok := p.cur

	if err := p.advance(); err != nil {
		return token.Token{}, err
	}

	return tok, nil
}

func (p *Parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{}

	for p.cur.Kind != token.EOF {
		fn, err := p.parseFuncDef()
		if err != nil {
			return nil, err
		}

		prog.Funcs = append(prog.Funcs, fn)
	}

	return prog, nil
}

// parseFuncDef parses:
//
//	"func" Ident "=" "(" [ParamList] ")" ["->" Ident] [Body]
func (p *Parser) parseFuncDef() (*ast.FuncDef, error) {
	pos := p.cur.Pos

	if _, err := p.expect(token.KwFunc); err != nil {
		return nil, err
	}

	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.Assign); err != nil {
		return nil, err
	}

	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}

	var params []ast.ParamDecl

	for p.cur.Kind != token.RParen {
		pname, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(token.Colon); err != nil {
			return nil, err
		}

		ptype, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}

		params = append(params, ast.ParamDecl{Name: pname.Literal, Type: ptype.Literal})

		if p.cur.Kind == token.Comma {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}

	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}

	var retType string

	if p.cur.Kind == token.Arrow {
		if err := p.advance(); err != nil {
			return nil, err
		}

		rt, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}

		retType = rt.Literal
	}

	fn := &ast.FuncDef{
		Name:       name.Literal,
		Params:     params,
		ReturnType: retType,
		Position:   pos,
	}

	if p.cur.Kind == token.LBrace {
		body, err := p.parseBody()
		if err != nil {
			return nil, err
		}

		fn.Body = body
		fn.HasBody = true
	}

	return fn, nil
}

func (p *Parser) parseBody() ([]ast.Stmt, error) {
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}

	var stmts []ast.Stmt

	for p.cur.Kind != token.RBrace {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}

		stmts = append(stmts, stmt)
	}

	if _, err := p.expect(token.RBrace); err != nil {
		return nil, err
	}

	return stmts, nil
}

func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch p.cur.Kind {
	case token.KwLet:
		return p.parseLetStmt()
	case token.KwReturn:
		return p.parseReturnStmt()
	case token.Ident:
		next, err := p.peekToken()
		if err != nil {
			return nil, err
		}

		if next.Kind == token.Assign {
			return p.parseAssignStmt()
		}
	}

	pos := p.cur.Pos

	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.Semicolon); err != nil {
		return nil, err
	}

	return &ast.ExprStmt{X: x, Position: pos}, nil
}

func (p *Parser) parseLetStmt() (ast.Stmt, error) {
	pos := p.cur.Pos

	if _, err := p.expect(token.KwLet); err != nil {
		return nil, err
	}

	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.Assign); err != nil {
		return nil, err
	}

	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.Semicolon); err != nil {
		return nil, err
	}

	return &ast.LetStmt{Name: name.Literal, Value: x, Position: pos}, nil
}

func (p *Parser) parseAssignStmt() (ast.Stmt, error) {
	pos := p.cur.Pos

	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.Assign); err != nil {
		return nil, err
	}

	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.Semicolon); err != nil {
		return nil, err
	}

	return &ast.AssignStmt{Name: name.Literal, Value: x, Position: pos}, nil
}

func (p *Parser) parseReturnStmt() (ast.Stmt, error) {
	pos := p.cur.Pos

	if _, err := p.expect(token.KwReturn); err != nil {
		return nil, err
	}

	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.Semicolon); err != nil {
		return nil, err
	}

	return &ast.ReturnStmt{Value: x, Position: pos}, nil
}

// parseExpr parses a full expression starting at the lowest-precedence
// level (logical or).
func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (ast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.cur.Kind == token.OrOr {
		pos := p.cur.Pos

		if err := p.advance(); err != nil {
			return nil, err
		}

		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}

		left = &ast.CompareExpr{Op: ast.Or, X: left, Y: right, Position: pos}
	}

	return left, nil
}

func (p *Parser) parseAnd() (ast.Expr, error) {
	left, err := p.parseXor()
	if err != nil {
		return nil, err
	}

	for p.cur.Kind == token.AndAnd {
		pos := p.cur.Pos

		if err := p.advance(); err != nil {
			return nil, err
		}

		right, err := p.parseXor()
		if err != nil {
			return nil, err
		}

		left = &ast.CompareExpr{Op: ast.And, X: left, Y: right, Position: pos}
	}

	return left, nil
}

func (p *Parser) parseXor() (ast.Expr, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}

	for p.cur.Kind == token.Caret {
		pos := p.cur.Pos

		if err := p.advance(); err != nil {
			return nil, err
		}

		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}

		left = &ast.ArithExpr{Op: ast.Xor, X: left, Y: right, Position: pos}
	}

	return left, nil
}

var cmpOps = map[token.Kind]ast.CmpOp{
	token.EqEq:  ast.Eq,
	token.NotEq: ast.Ne,
	token.Gt:    ast.Gt,
	token.Lt:    ast.Lt,
	token.Ge:    ast.Ge,
	token.Le:    ast.Le,
}

func (p *Parser) parseComparison() (ast.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	if op, ok := cmpOps[p.cur.Kind]; ok {
		pos := p.cur.Pos

		if err := p.advance(); err != nil {
			return nil, err
		}

		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}

		return &ast.CompareExpr{Op: op, X: left, Y: right, Position: pos}, nil
	}

	return left, nil
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}

	for p.cur.Kind == token.Plus || p.cur.Kind == token.Minus {
		op := ast.Add
		if p.cur.Kind == token.Minus {
			op = ast.Sub
		}

		pos := p.cur.Pos

		if err := p.advance(); err != nil {
			return nil, err
		}

		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}

		left = &ast.ArithExpr{Op: op, X: left, Y: right, Position: pos}
	}

	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.cur.Kind == token.Star || p.cur.Kind == token.Slash || p.cur.Kind == token.Percent {
		var op ast.ArithOp

		switch p.cur.Kind {
		case token.Star:
			op = ast.Mul
		case token.Slash:
			op = ast.Div
		default:
			op = ast.Mod
		}

		pos := p.cur.Pos

		if err := p.advance(); err != nil {
			return nil, err
		}

		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		left = &ast.ArithExpr{Op: op, X: left, Y: right, Position: pos}
	}

	return left, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	switch p.cur.Kind {
	case token.Bang, token.Minus:
		op := ast.Not
		if p.cur.Kind == token.Minus {
			op = ast.Neg
		}

		pos := p.cur.Pos

		if err := p.advance(); err != nil {
			return nil, err
		}

		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return &ast.UnaryExpr{Op: op, X: x, Position: pos}, nil
	case token.Amp:
		pos := p.cur.Pos

		if err := p.advance(); err != nil {
			return nil, err
		}

		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return &ast.RefExpr{Inner: x, Position: pos}, nil
	}

	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	pos := p.cur.Pos

	switch p.cur.Kind {
	case token.Int:
		v, err := strconv.ParseInt(p.cur.Literal, 10, 64)
		if err != nil {
			return nil, &Error{Pos: pos, Msg: "invalid integer literal: " + p.cur.Literal}
		}

		if err := p.advance(); err != nil {
			return nil, err
		}

		if p.cur.Kind == token.DotDot {
			if err := p.advance(); err != nil {
				return nil, err
			}

			end, err := p.expect(token.Int)
			if err != nil {
				return nil, err
			}

			e, err := strconv.ParseInt(end.Literal, 10, 64)
			if err != nil {
				return nil, &Error{Pos: end.Pos, Msg: "invalid integer literal: " + end.Literal}
			}

			return &ast.RangeExpr{Start: v, End: e, Position: pos}, nil
		}

		return &ast.IntLit{Value: v, Position: pos}, nil

	case token.Float:
		v, err := strconv.ParseFloat(p.cur.Literal, 64)
		if err != nil {
			return nil, &Error{Pos: pos, Msg: "invalid float literal: " + p.cur.Literal}
		}

		if err := p.advance(); err != nil {
			return nil, err
		}

		return &ast.FloatLit{Value: v, Position: pos}, nil

	case token.String:
		v := p.cur.Literal
		if err := p.advance(); err != nil {
			return nil, err
		}

		return &ast.StringLit{Value: v, Position: pos}, nil

	case token.Ident:
		return p.parseIdentOrCallOrCounter()

	case token.LParen:
		if err := p.advance(); err != nil {
			return nil, err
		}

		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}

		return x, nil

	case token.LBracket:
		return p.parseListExpr()

	case token.LBrace:
		return p.parseMapExpr()

	case token.Dollar:
		return p.parseFuncPtrOrAnon()
	}

	if lit, ok := boolLiteral(p.cur); ok {
		if err := p.advance(); err != nil {
			return nil, err
		}

		return &ast.BoolLit{Value: lit, Position: pos}, nil
	}

	return nil, &Error{Pos: pos, Msg: "unexpected token " + p.cur.Kind.String()}
}

func boolLiteral(tok token.Token) (bool, bool) {
	if tok.Kind != token.Ident {
		return false, false
	}

	switch tok.Literal {
	case "true":
		return true, true
	case "false":
		return false, true
	}

	return false, false
}

func (p *Parser) parseIdentOrCallOrCounter() (ast.Expr, error) {
	pos := p.cur.Pos
	name := p.cur.Literal

	if v, ok := boolLiteral(p.cur); ok {
		if err := p.advance(); err != nil {
			return nil, err
		}

		return &ast.BoolLit{Value: v, Position: pos}, nil
	}

	if err := p.advance(); err != nil {
		return nil, err
	}

	switch p.cur.Kind {
	case token.LParen:
		if err := p.advance(); err != nil {
			return nil, err
		}

		args, err := p.parseExprList(token.RParen)
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}

		return &ast.CallExpr{Callee: name, Args: args, Position: pos}, nil

	case token.KwIn:
		if err := p.advance(); err != nil {
			return nil, err
		}

		start, err := p.expect(token.Int)
		if err != nil {
			return nil, err
		}

		s, err := strconv.ParseInt(start.Literal, 10, 64)
		if err != nil {
			return nil, &Error{Pos: start.Pos, Msg: "invalid integer literal: " + start.Literal}
		}

		if _, err := p.expect(token.DotDot); err != nil {
			return nil, err
		}

		end, err := p.expect(token.Int)
		if err != nil {
			return nil, err
		}

		e, err := strconv.ParseInt(end.Literal, 10, 64)
		if err != nil {
			return nil, &Error{Pos: end.Pos, Msg: "invalid integer literal: " + end.Literal}
		}

		return &ast.CounterExpr{Name: name, Start: s, End: e, Position: pos}, nil
	}

	return &ast.Ident{Name: name, Position: pos}, nil
}

func (p *Parser) parseExprList(end token.Kind) ([]ast.Expr, error) {
	var exprs []ast.Expr

	for p.cur.Kind != end {
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		exprs = append(exprs, x)

		if p.cur.Kind == token.Comma {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}

	return exprs, nil
}

func (p *Parser) parseListExpr() (ast.Expr, error) {
	pos := p.cur.Pos

	if _, err := p.expect(token.LBracket); err != nil {
		return nil, err
	}

	elems, err := p.parseExprList(token.RBracket)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.RBracket); err != nil {
		return nil, err
	}

	return &ast.ListExpr{Elems: elems, Position: pos}, nil
}

func (p *Parser) parseMapExpr() (ast.Expr, error) {
	pos := p.cur.Pos

	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}

	var pairs []ast.Pair

	for p.cur.Kind != token.RBrace {
		key, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(token.Colon); err != nil {
			return nil, err
		}

		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		pairs = append(pairs, ast.Pair{Key: key, Value: val})

		if p.cur.Kind == token.Comma {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}

	if _, err := p.expect(token.RBrace); err != nil {
		return nil, err
	}

	return &ast.MapExpr{Pairs: pairs, Position: pos}, nil
}

// parseFuncPtrOrAnon parses either a function-pointer literal
// ("$" Ident "|" [ExprList] "|") or an anonymous function
// ("$" "|" [NamedBindList] "|" ["->" Ident] [Body]).
func (p *Parser) parseFuncPtrOrAnon() (ast.Expr, error) {
	pos := p.cur.Pos

	if _, err := p.expect(token.Dollar); err != nil {
		return nil, err
	}

	if p.cur.Kind == token.Ident {
		name := p.cur.Literal

		if err := p.advance(); err != nil {
			return nil, err
		}

		// An empty argument list, "$name||", lexes as a single OrOr token
		// rather than two adjacent Pipe tokens (see the "$||" case below).
		if p.cur.Kind == token.OrOr {
			if err := p.advance(); err != nil {
				return nil, err
			}

			return &ast.FuncPtrExpr{Name: name, Position: pos}, nil
		}

		if _, err := p.expect(token.Pipe); err != nil {
			return nil, err
		}

		args, err := p.parseExprList(token.Pipe)
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(token.Pipe); err != nil {
			return nil, err
		}

		return &ast.FuncPtrExpr{Name: name, Args: args, Position: pos}, nil
	}

	var params []ast.Param

	// An empty parameter list, "$||", lexes as a single OrOr token rather
	// than two adjacent Pipe tokens; treat it as the opening and closing
	// pipe together rather than demanding whitespace to disambiguate.
	if p.cur.Kind == token.OrOr {
		if err := p.advance(); err != nil {
			return nil, err
		}

		return p.finishAnonFunc(pos, params)
	}

	if _, err := p.expect(token.Pipe); err != nil {
		return nil, err
	}

	for p.cur.Kind != token.Pipe {
		pname, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(token.Colon); err != nil {
			return nil, err
		}

		bind, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		params = append(params, ast.Param{Name: pname.Literal, Binding: bind})

		if p.cur.Kind == token.Comma {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}

	if _, err := p.expect(token.Pipe); err != nil {
		return nil, err
	}

	return p.finishAnonFunc(pos, params)
}

// finishAnonFunc parses the optional "-> Ident" return type and optional
// body following an anonymous function's closing pipe.
func (p *Parser) finishAnonFunc(pos token.Position, params []ast.Param) (ast.Expr, error) {
	var retType string

	if p.cur.Kind == token.Arrow {
		if err := p.advance(); err != nil {
			return nil, err
		}

		rt, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}

		retType = rt.Literal
	}

	anon := &ast.AnonFuncExpr{Params: params, ReturnType: retType, Position: pos}

	if p.cur.Kind == token.LBrace {
		body, err := p.parseBody()
		if err != nil {
			return nil, err
		}

		anon.Body = body
		anon.HasBody = true
	}

	return anon, nil
}

package parser

import (
	"strconv"

	"github.com/xplshn/arbc/pkg/ast"
	"github.com/xplshn/arbc/pkg/config"
	"github.com/xplshn/arbc/pkg/diag"
	"github.com/xplshn/arbc/pkg/token"
)

// Parser holds the state for the parsing process
type Parser struct {
	tokens   []token.Token
	pos      int
	current  token.Token
	previous token.Token
	cfg      *config.Config
	diags    *diag.List
}

// bailout unwinds the parser to the nearest declaration or statement boundary.
type bailout struct{}

// NewParser creates and initializes a new Parser from a token stream ending in EOF
func NewParser(tokens []token.Token, cfg *config.Config, diags *diag.List) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		tokens = append(tokens, token.Token{Type: token.EOF})
	}
	p := &Parser{tokens: tokens, cfg: cfg, diags: diags}
	p.current = p.tokens[0]
	return p
}

// Parser helpers
func (p *Parser) advance() {
	if p.pos < len(p.tokens)-1 {
		p.previous = p.current
		p.pos++
		p.current = p.tokens[p.pos]
	}
}

func (p *Parser) peek() token.Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) check(tokType token.Type) bool {
	return p.current.Type == tokType
}

func (p *Parser) match(tokType token.Type) bool {
	if !p.check(tokType) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) expect(tokType token.Type, message string) token.Token {
	if p.check(tokType) {
		p.advance()
		return p.previous
	}
	p.fail(p.current, "%s (found %s)", message, p.current.Type)
	return token.Token{}
}

func (p *Parser) fail(tok token.Token, format string, args ...interface{}) {
	p.diags.Errorf(diag.Syntax, tok.Span(), format, args...)
	panic(bailout{})
}

// spanFrom covers everything from start up to the last consumed token.
func (p *Parser) spanFrom(start token.Token) token.Span {
	return token.Join(start.Span(), p.previous.Span())
}

// synchronize skips to just past the next ';' or to the next '}' at the same nesting depth.
func (p *Parser) synchronize() {
	depth := 0
	for !p.check(token.EOF) {
		switch p.current.Type {
		case token.Semi:
			if depth == 0 {
				p.advance()
				return
			}
		case token.LBrace:
			depth++
		case token.RBrace:
			if depth == 0 {
				return
			}
			depth--
		}
		p.advance()
	}
}

// guard runs fn and, if it bails out, resynchronizes the token stream.
func (p *Parser) guard(fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, isBail := r.(bailout); !isBail {
				panic(r)
			}
			p.synchronize()
			ok = false
		}
	}()
	fn()
	return true
}

// Parse parses a whole program: a single outermost scope followed by end of file.
// Syntax errors are recorded in the diagnostic list; the returned tree is
// usable for further checking only when no syntax error was reported.
func (p *Parser) Parse() *ast.Scope {
	var root *ast.Scope
	if !p.guard(func() { root = p.parseScope() }) {
		return ast.NewScope(token.Span{}, nil, nil)
	}
	if !p.check(token.EOF) {
		p.diags.Errorf(diag.Syntax, p.current.Span(), "Unexpected %s after the program scope", p.current.Type)
	}
	return root
}

// Statement and Declaration Parsing
func (p *Parser) parseScope() *ast.Scope {
	start := p.expect(token.LBrace, "Expected '{' to start a scope")
	var decls []*ast.Declaration
	var stmts []ast.Stmt

	for p.check(token.Const) || p.check(token.TypeName) {
		p.guard(func() { decls = append(decls, p.parseDeclaration()) })
	}
	for !p.check(token.RBrace) && !p.check(token.EOF) {
		before := p.pos
		p.guard(func() { stmts = append(stmts, p.parseStmt()) })
		if p.pos == before {
			p.advance() // never spin on a token synchronize refused to consume
		}
	}
	p.expect(token.RBrace, "Expected '}' to close the scope")
	return ast.NewScope(p.spanFrom(start), decls, stmts)
}

func (p *Parser) parseDeclaration() *ast.Declaration {
	start := p.current
	isConst := p.match(token.Const)
	typ := p.parseType()
	nameTok := p.expect(token.Ident, "Expected identifier in declaration")

	var init ast.Expr
	if p.match(token.Eq) {
		init = p.parseExpr()
	}
	p.expect(token.Semi, "Expected ';' after declaration")
	return ast.NewDeclaration(p.spanFrom(start), nameTok.Value, nameTok.Span(), typ, init, isConst)
}

func (p *Parser) parseType() ast.Type {
	tok := p.expect(token.TypeName, "Expected a type name")
	typ, ok := ast.ParseType(tok.Value)
	if !ok {
		p.fail(tok, "Unknown type '%s'", tok.Value)
	}
	return typ
}

func (p *Parser) parseStmt() ast.Stmt {
	start := p.current
	switch {
	case p.match(token.Semi):
		return ast.NewEmpty(start.Span())
	case p.check(token.LBrace):
		return ast.NewNestedScope(p.parseScope())
	case p.match(token.If):
		p.expect(token.LParen, "Expected '(' after 'if'")
		cond := p.parseExpr()
		p.expect(token.RParen, "Expected ')' after condition")
		then := p.parseStmt()
		var els ast.Stmt
		if p.match(token.Else) {
			els = p.parseStmt()
		}
		return ast.NewIf(p.spanFrom(start), cond, then, els)
	case p.check(token.Ident):
		target := p.parseVariable()
		p.expect(token.Eq, "Expected '=' in assignment")
		value := p.parseExpr()
		p.expect(token.Semi, "Expected ';' after assignment")
		return ast.NewAssign(p.spanFrom(start), target, value)
	case p.check(token.Const), p.check(token.TypeName):
		p.fail(start, "Declarations must precede statements in a scope")
	}
	p.fail(start, "Expected a statement, found %s", start.Type)
	return nil
}

var componentIndex = map[string]int{
	"x": 0, "y": 1, "z": 2, "w": 3,
	"r": 0, "g": 1, "b": 2, "a": 3,
}

func (p *Parser) parseVariable() ast.Identifier {
	nameTok := p.expect(token.Ident, "Expected identifier")
	if p.match(token.LBracket) {
		idxTok := p.expect(token.IntNumber, "Expected an integer literal vector index")
		idx, _ := strconv.Atoi(idxTok.Value)
		p.expect(token.RBracket, "Expected ']' after vector index")
		return ast.NewVectorVariable(p.spanFrom(nameTok), nameTok.Value, idx)
	}
	if p.check(token.Dot) {
		dot := p.current
		if !p.cfg.IsFeatureEnabled(config.FeatSwizzle) {
			p.fail(dot, "Component selection with '.' is not enabled (use -Fswizzle or index syntax 'v[i]')")
		}
		p.advance()
		compTok := p.expect(token.Ident, "Expected a component name after '.'")
		idx, ok := componentIndex[compTok.Value]
		if !ok {
			p.fail(compTok, "Invalid component selection '.%s': only a single x, y, z, w (or r, g, b, a) is supported", compTok.Value)
		}
		return ast.NewVectorVariable(p.spanFrom(nameTok), nameTok.Value, idx)
	}
	return ast.NewVariable(nameTok.Span(), nameTok.Value)
}

// Expression Parsing
func getBinaryOpPrecedence(op token.Type) int {
	switch op {
	case token.Star, token.Slash:
		return 6
	case token.Plus, token.Minus:
		return 5
	case token.Lt, token.Gt, token.Lte, token.Gte:
		return 4
	case token.EqEq, token.Neq:
		return 3
	case token.AndAnd:
		return 2
	case token.OrOr:
		return 1
	default:
		return -1
	}
}

func (p *Parser) parseExpr() ast.Expr {
	return p.parseBinaryExpr(1)
}

func (p *Parser) parseBinaryExpr(minPrec int) ast.Expr {
	left := p.parseUnaryExpr()
	for {
		op := p.current.Type
		prec := getBinaryOpPrecedence(op)
		if prec < minPrec {
			break
		}
		opTok := p.current
		p.advance()
		right := p.parseBinaryExpr(prec + 1)
		left = ast.NewBinary(opTok, op, left, right)
	}
	return left
}

func (p *Parser) parseUnaryExpr() ast.Expr {
	tok := p.current
	if p.match(token.Not) || p.match(token.Minus) {
		op := p.previous.Type
		operand := p.parseUnaryExpr()
		return ast.NewUnary(token.Join(tok.Span(), operand.Span()), op, operand)
	}
	return p.parsePowerExpr()
}

// parsePowerExpr handles '^', which binds tighter than unary operators and
// associates to the right.
func (p *Parser) parsePowerExpr() ast.Expr {
	base := p.parsePrimaryExpr()
	if p.check(token.Caret) {
		opTok := p.current
		p.advance()
		exp := p.parseUnaryExpr()
		return ast.NewBinary(opTok, token.Caret, base, exp)
	}
	return base
}

func (p *Parser) parsePrimaryExpr() ast.Expr {
	tok := p.current
	switch {
	case p.match(token.IntNumber):
		val, _ := strconv.ParseInt(tok.Value, 10, 64)
		return ast.NewIntLit(tok.Span(), val)
	case p.match(token.FloatNumber):
		val, _ := strconv.ParseFloat(tok.Value, 64)
		return ast.NewFloatLit(tok.Span(), val)
	case p.match(token.True):
		return ast.NewBoolLit(tok.Span(), true)
	case p.match(token.False):
		return ast.NewBoolLit(tok.Span(), false)
	case p.match(token.LParen):
		expr := p.parseExpr()
		p.expect(token.RParen, "Expected ')' after expression")
		return expr
	case p.check(token.TypeName):
		typ := p.parseType()
		args := p.parseArgs()
		return ast.NewConstructor(p.spanFrom(tok), typ, args)
	case p.check(token.Ident):
		if p.peek().Type == token.LParen {
			p.advance()
			args := p.parseArgs()
			return ast.NewCall(p.spanFrom(tok), tok.Value, tok.Span(), args)
		}
		return ast.NewVariableExpr(p.parseVariable())
	}
	p.fail(tok, "Expected an expression, found %s", tok.Type)
	return nil
}

func (p *Parser) parseArgs() []ast.Expr {
	p.expect(token.LParen, "Expected '('")
	var args []ast.Expr
	if !p.check(token.RParen) {
		for {
			args = append(args, p.parseExpr())
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.expect(token.RParen, "Expected ')' after arguments")
	return args
}

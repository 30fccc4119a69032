package parser

import (
	"fmt"
	"sandpy/internal/ast"
	"sandpy/internal/lexer"
	"sandpy/internal/token"
	"sandpy/internal/util"
	"strconv"
	"strings"
)

const (
	_           int = iota
	LOWEST          // assignment
	LOGICAL_OR      // || or
	LOGICAL_AND     // && and
	EQUALS          // ==
	COMPARISON      // > or <
	BITWISE_OR
	BITWISE_XOR
	BITWISE_AND // bitwise operators
	SHIFT       // bit shifting
	SUM         // +
	PRODUCT     // *
	PREFIX      // -X or !X
	CALL        // myFunction(X)
	INDEX       // array[index]
)

// MaxDepth bounds expression and block nesting so hostile input cannot
// exhaust the goroutine stack while parsing.
const MaxDepth = 256

var precedences = map[token.TokenType]int{
	token.EQ:          EQUALS,
	token.NOT_EQ:      EQUALS,
	token.LOGICAL_AND: LOGICAL_AND,
	token.AND:         LOGICAL_AND,
	token.LOGICAL_OR:  LOGICAL_OR,
	token.OR:          LOGICAL_OR,
	token.BITWISE_AND: BITWISE_AND,
	token.BITWISE_OR:  BITWISE_OR,
	token.BITWISE_XOR: BITWISE_XOR,
	token.SHIFT_LEFT:  SHIFT,
	token.SHIFT_RIGHT: SHIFT,
	token.LT:          COMPARISON,
	token.LT_EQ:       COMPARISON,
	token.GT:          COMPARISON,
	token.GT_EQ:       COMPARISON,
	token.PLUS:        SUM,
	token.MINUS:       SUM,
	token.SLASH:       PRODUCT,
	token.ASTERISK:    PRODUCT,
	token.PERCENT:     PRODUCT,
	token.PERIOD:      CALL,
	token.LPAREN:      CALL,
	token.LBRACKET:    INDEX,
}

// word operators are folded onto their symbolic spelling
var canonicalOperators = map[token.TokenType]string{
	token.AND: "&&",
	token.OR:  "||",
	token.NOT: "!",
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	src    string // source code here
	errors []string

	tokens []token.Token
	pos    int // index of the token after peekToken

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn

	depth      int
	tooDeep    bool
	loopDepth  int
	funcDepth  int
	incomplete bool
}

func New(l *lexer.Lexer, source string) *Parser {
	p := &Parser{
		src:    source,
		errors: []string{},
	}

	for {
		tok := l.NextToken()
		p.tokens = append(p.tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.NONE, p.parseNone)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.INT, p.parseIntegerLiteral)
	p.registerPrefix(token.FLOAT, p.parseFloatLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.BANG, p.parsePrefixExpression)
	p.registerPrefix(token.NOT, p.parsePrefixExpression)
	p.registerPrefix(token.MINUS, p.parsePrefixExpression)
	p.registerPrefix(token.PLUS, p.parsePrefixExpression)
	p.registerPrefix(token.COMPLEMENT, p.parsePrefixExpression)
	p.registerPrefix(token.TRUE, p.parseBoolean)
	p.registerPrefix(token.FALSE, p.parseBoolean)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(token.RANGE, p.parseRangeExpression)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	p.registerInfix(token.PLUS, p.parseInfixExpression)
	p.registerInfix(token.MINUS, p.parseInfixExpression)
	p.registerInfix(token.SLASH, p.parseInfixExpression)
	p.registerInfix(token.ASTERISK, p.parseInfixExpression)
	p.registerInfix(token.PERCENT, p.parseInfixExpression)
	p.registerInfix(token.EQ, p.parseInfixExpression)
	p.registerInfix(token.NOT_EQ, p.parseInfixExpression)
	p.registerInfix(token.LOGICAL_AND, p.parseInfixExpression)
	p.registerInfix(token.AND, p.parseInfixExpression)
	p.registerInfix(token.LOGICAL_OR, p.parseInfixExpression)
	p.registerInfix(token.OR, p.parseInfixExpression)
	p.registerInfix(token.BITWISE_AND, p.parseInfixExpression)
	p.registerInfix(token.BITWISE_OR, p.parseInfixExpression)
	p.registerInfix(token.BITWISE_XOR, p.parseInfixExpression)
	p.registerInfix(token.SHIFT_RIGHT, p.parseInfixExpression)
	p.registerInfix(token.SHIFT_LEFT, p.parseInfixExpression)
	p.registerInfix(token.LT, p.parseInfixExpression)
	p.registerInfix(token.LT_EQ, p.parseInfixExpression)
	p.registerInfix(token.GT, p.parseInfixExpression)
	p.registerInfix(token.GT_EQ, p.parseInfixExpression)

	p.registerInfix(token.PERIOD, p.parseAttributeExpression)
	p.registerInfix(token.LPAREN, p.parseCallExpression)
	p.registerInfix(token.LBRACKET, p.parseIndexExpression)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	if p.pos < len(p.tokens) {
		p.peekToken = p.tokens[p.pos]
		p.pos++
	} else {
		p.peekToken = p.tokens[len(p.tokens)-1]
	}
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

// peekPastNewlines moves peekToken forward over line breaks when the first
// token after them is one of types. Used for `}` followed by elif/else on a
// new line.
func (p *Parser) peekPastNewlines(types ...token.TokenType) bool {
	if !p.peekTokenIs(token.NEWLINE) {
		for _, t := range types {
			if p.peekTokenIs(t) {
				return true
			}
		}
		return false
	}
	j := p.pos
	for j < len(p.tokens) && p.tokens[j].Type == token.NEWLINE {
		j++
	}
	if j >= len(p.tokens) {
		return false
	}
	for _, t := range types {
		if p.tokens[j].Type == t {
			p.peekToken = p.tokens[j]
			p.pos = j + 1
			return true
		}
	}
	return false
}

func (p *Parser) addErrorAt(tok token.Token, message string, args ...interface{}) {
	line, col := GetLineAndColumn(p.src, tok.Position)
	m := fmt.Sprintf(message, args...)
	msg := fmt.Sprintf("[%3d:%2d] %s", line, col, m)
	if len(p.errors) == 0 {
		p.incomplete = tok.Type == token.EOF
	}
	p.errors = append(p.errors, msg)
}

func (p *Parser) addError(message string, args ...interface{}) {
	p.addErrorAt(p.curToken, message, args...)
}

func (p *Parser) peekError(t token.TokenType) {
	// Line and column are extracted using the position of the peek token.
	p.addErrorAt(p.peekToken, "expected next token to be %s, got %s instead", t, p.peekToken.Type)
}

func (p *Parser) noPrefixParseFnError(t token.TokenType) {
	if t == token.ILLEGAL {
		p.addError("illegal token: %s", p.curToken.Literal)
		return
	}
	p.addError("no prefix parse function for %s found", t)
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	} else {
		p.peekError(t)
		return false
	}
}

// expectStatementEnd checks that the statement just parsed is followed by a
// terminator: newline, `;`, `}` or end of input.
func (p *Parser) expectStatementEnd() bool {
	switch p.peekToken.Type {
	case token.NEWLINE, token.SEMICOLON, token.RBRACE, token.EOF:
		return true
	}
	p.addErrorAt(p.peekToken, "expected end of statement, got %s instead", p.peekToken.Type)
	return false
}

func (p *Parser) enter() bool {
	p.depth++
	if p.depth > MaxDepth {
		if !p.tooDeep {
			p.tooDeep = true
			p.addError("maximum nesting depth of %d exceeded", MaxDepth)
		}
		return false
	}
	return true
}

func (p *Parser) leave() {
	p.depth--
}

func (p *Parser) Errors() []string {
	return p.errors
}

// Incomplete reports whether the first error was raised at end of input,
// meaning more source could still make the program valid.
func (p *Parser) Incomplete() bool {
	return len(p.errors) > 0 && p.incomplete
}

func (p *Parser) ParseModule() *ast.Module {
	module := &ast.Module{}
	module.Statements = []ast.Statement{}

	for !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.NEWLINE) || p.curTokenIs(token.SEMICOLON) {
			p.nextToken()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			module.Statements = append(module.Statements, stmt)
		}
		p.nextToken()
	}

	return module
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.DEF:
		return p.parseFunctionDefinition()
	case token.CLASS:
		return p.parseClassDefinition()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.BREAK:
		return p.parseBreakStatement()
	case token.CONTINUE:
		return p.parseContinueStatement()
	case token.LBRACE:
		block := p.parseBlockStatement()
		if block == nil {
			return nil
		}
		return block
	case token.RBRACE:
		p.addError("unexpected }")
		return nil
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{Token: p.curToken}

	if p.funcDepth == 0 {
		p.addError("'return' outside function")
		return nil
	}

	switch p.peekToken.Type {
	case token.NEWLINE, token.SEMICOLON, token.RBRACE, token.EOF:
		return stmt
	}

	p.nextToken()

	stmt.ReturnValue = p.parseExpression(LOWEST)
	if stmt.ReturnValue == nil || !p.expectStatementEnd() {
		return nil
	}

	return stmt
}

func (p *Parser) parseBreakStatement() ast.Statement {
	if p.loopDepth == 0 {
		p.addError("'break' outside loop")
		return nil
	}
	stmt := &ast.BreakStatement{Token: p.curToken}
	if !p.expectStatementEnd() {
		return nil
	}
	return stmt
}

func (p *Parser) parseContinueStatement() ast.Statement {
	if p.loopDepth == 0 {
		p.addError("'continue' not properly in loop")
		return nil
	}
	stmt := &ast.ContinueStatement{Token: p.curToken}
	if !p.expectStatementEnd() {
		return nil
	}
	return stmt
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	first := p.curToken
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}

	if p.peekTokenIs(token.ASSIGN) {
		return p.parseAssignStatement(expr, "")
	}
	if base, ok := token.AugmentedBase[p.peekToken.Type]; ok {
		return p.parseAssignStatement(expr, string(base))
	}

	if !p.expectStatementEnd() {
		return nil
	}

	return &ast.ExpressionStatement{Token: first, Expression: expr}
}

func (p *Parser) parseAssignStatement(target ast.Expression, operator string) ast.Statement {
	p.nextToken()
	stmt := &ast.AssignStatement{Token: p.curToken, Target: target, Operator: operator}

	switch target.(type) {
	case *ast.Identifier, *ast.AttributeExpression, *ast.IndexExpression:
	default:
		p.addError("cannot assign to %s", target.String())
		return nil
	}

	p.nextToken()

	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil || !p.expectStatementEnd() {
		return nil
	}

	return stmt
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	if !p.enter() {
		p.leave()
		return nil
	}
	defer p.leave()

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken.Type)
		return nil
	}
	leftExp := prefix()

	for leftExp != nil && !p.peekTokenIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()

		leftExp = infix(leftExp)
	}

	return leftExp
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}

	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}

	return LOWEST
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	lit := &ast.IntegerLiteral{Token: p.curToken}

	var value int64
	var err error
	if strings.HasPrefix(p.curToken.Literal, "0x") {
		value, err = strconv.ParseInt(p.curToken.Literal[2:], 16, 64)
	} else {
		value, err = strconv.ParseInt(p.curToken.Literal, 10, 64)
	}
	if err != nil {
		p.addError("could not parse %q as integer", p.curToken.Literal)
		return nil
	}

	lit.Value = value
	return lit
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.addError("could not parse %q as float", p.curToken.Literal)
		return nil
	}
	return &ast.FloatLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBoolean() ast.Expression {
	return &ast.Boolean{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parseNone() ast.Expression {
	return &ast.NoneLiteral{Token: p.curToken}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: operatorFor(p.curToken),
	}

	p.nextToken()

	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: operatorFor(p.curToken),
		Left:     left,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}

	return expression
}

func operatorFor(tok token.Token) string {
	if op, ok := canonicalOperators[tok.Type]; ok {
		return op
	}
	return tok.Literal
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()

	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	return exp
}

func (p *Parser) parseRangeExpression() ast.Expression {
	expr := &ast.RangeExpression{Token: p.curToken}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}

	args := p.parseExpressionList(token.RPAREN)
	if args == nil {
		return nil
	}

	switch len(args) {
	case 1:
		expr.Stop = args[0]
	case 2:
		expr.Start, expr.Stop = args[0], args[1]
	case 3:
		expr.Start, expr.Stop, expr.Step = args[0], args[1], args[2]
	default:
		p.addErrorAt(expr.Token, "range expects 1 to 3 arguments, got %d", len(args))
		return nil
	}

	return expr
}

func (p *Parser) parseCallExpression(function ast.Expression) ast.Expression {
	exp := &ast.CallExpression{Token: p.curToken, Function: function}
	exp.Arguments = p.parseExpressionList(token.RPAREN)
	if exp.Arguments == nil {
		return nil
	}
	return exp
}

func (p *Parser) parseAttributeExpression(left ast.Expression) ast.Expression {
	exp := &ast.AttributeExpression{Token: p.curToken, Left: left}

	if !p.expectPeek(token.IDENT) {
		return nil
	}

	exp.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	return exp
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	exp := &ast.IndexExpression{Token: p.curToken, Left: left}

	p.nextToken()
	exp.Index = p.parseExpression(LOWEST)
	if exp.Index == nil {
		return nil
	}

	if !p.expectPeek(token.RBRACKET) {
		return nil
	}

	return exp
}

// parseExpressionList reads comma separated expressions up to end. A trailing
// comma is accepted. The result is non-nil on success, even when empty.
func (p *Parser) parseExpressionList(end token.TokenType) []ast.Expression {
	list := []ast.Expression{}

	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}

	p.nextToken()
	for {
		exp := p.parseExpression(LOWEST)
		if exp == nil {
			return nil
		}
		list = append(list, exp)

		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		if p.peekTokenIs(end) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(end) {
		return nil
	}

	return list
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	if !p.enter() {
		p.leave()
		return nil
	}
	defer p.leave()

	block := &ast.BlockStatement{Token: p.curToken}
	block.Statements = []ast.Statement{}

	p.nextToken()

	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.NEWLINE) || p.curTokenIs(token.SEMICOLON) {
			p.nextToken()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}

	if !p.curTokenIs(token.RBRACE) {
		p.addError("expected } to close block opened at %s", p.positionOf(block.Token))
		return nil
	}

	return block
}

// parseBody parses `{ ... }` after the construct header, with loop and
// function nesting set for the body only.
func (p *Parser) parseBody(loopDepth, funcDepth int) *ast.BlockStatement {
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	savedLoop, savedFunc := p.loopDepth, p.funcDepth
	p.loopDepth, p.funcDepth = loopDepth, funcDepth
	defer func() { p.loopDepth, p.funcDepth = savedLoop, savedFunc }()
	return p.parseBlockStatement()
}

func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{Token: p.curToken}

	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}

	stmt.Consequence = p.parseBody(p.loopDepth, p.funcDepth)
	if stmt.Consequence == nil {
		return nil
	}

	if p.peekPastNewlines(token.ELIF, token.ELSE) {
		p.nextToken()
		if p.curTokenIs(token.ELIF) {
			elifTok := p.curToken
			nested := p.parseIfStatement()
			if nested == nil {
				return nil
			}
			stmt.Alternative = &ast.BlockStatement{Token: elifTok, Statements: []ast.Statement{nested}}
		} else {
			stmt.Alternative = p.parseBody(p.loopDepth, p.funcDepth)
			if stmt.Alternative == nil {
				return nil
			}
		}
	}

	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	stmt := &ast.WhileStatement{Token: p.curToken}

	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}

	stmt.Body = p.parseBody(p.loopDepth+1, p.funcDepth)
	if stmt.Body == nil {
		return nil
	}

	if p.peekPastNewlines(token.ELSE) {
		p.nextToken()
		stmt.Otherwise = p.parseBody(p.loopDepth, p.funcDepth)
		if stmt.Otherwise == nil {
			return nil
		}
	}

	return stmt
}

func (p *Parser) parseForStatement() ast.Statement {
	stmt := &ast.ForStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Target = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.expectPeek(token.IN) {
		return nil
	}

	p.nextToken()
	stmt.Iterable = p.parseExpression(LOWEST)
	if stmt.Iterable == nil {
		return nil
	}

	stmt.Body = p.parseBody(p.loopDepth+1, p.funcDepth)
	if stmt.Body == nil {
		return nil
	}

	if p.peekPastNewlines(token.ELSE) {
		p.nextToken()
		stmt.Otherwise = p.parseBody(p.loopDepth, p.funcDepth)
		if stmt.Otherwise == nil {
			return nil
		}
	}

	return stmt
}

func (p *Parser) parseFunctionDefinition() ast.Statement {
	def := &ast.FunctionDefinition{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	def.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}

	params, ok := p.parseFunctionParameters()
	if !ok {
		return nil
	}
	def.Parameters = params

	def.Body = p.parseBody(0, p.funcDepth+1)
	if def.Body == nil {
		return nil
	}

	return def
}

func (p *Parser) parseFunctionParameters() ([]*ast.Identifier, bool) {
	identifiers := []*ast.Identifier{}
	seen := map[string]bool{}

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return identifiers, true
	}

	for {
		if !p.expectPeek(token.IDENT) {
			return nil, false
		}
		ident := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
		if seen[ident.Value] {
			p.addError("duplicate parameter %q", ident.Value)
			return nil, false
		}
		seen[ident.Value] = true
		identifiers = append(identifiers, ident)

		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		if p.peekTokenIs(token.RPAREN) {
			break
		}
	}

	if !p.expectPeek(token.RPAREN) {
		return nil, false
	}

	return identifiers, true
}

func (p *Parser) parseClassDefinition() ast.Statement {
	def := &ast.ClassDefinition{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	def.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		def.Bases = p.parseExpressionList(token.RPAREN)
		if def.Bases == nil {
			return nil
		}
	}

	def.Body = p.parseBody(0, 0)
	if def.Body == nil {
		return nil
	}

	return def
}

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

func (p *Parser) positionOf(tok token.Token) string {
	line, col := GetLineAndColumn(p.src, tok.Position)
	return fmt.Sprintf("%d:%d", line, col)
}

// GetLineAndColumn converts a byte offset into a 1-based line and column.
func GetLineAndColumn(src string, pos int) (line int, column int) {
	return util.GetLineAndColumn(src, pos)
}

package lexer

import (
	"sandpy/internal/token"
)

type GeneralTokenizer struct {
	lexer *Lexer
}

func NewGeneralTokenizer(lexer *Lexer) *GeneralTokenizer {
	return &GeneralTokenizer{lexer: lexer}
}

func (g *GeneralTokenizer) NextToken() token.Token {
	var tok token.Token

	g.lexer.skipWhitespace()

	startPosition := g.lexer.position // Record the current position as the start of the token

	switch g.lexer.ch {
	case '\n':
		return token.Token{Type: token.NEWLINE, Literal: g.lexer.readNewlines(), Position: startPosition}
	case '=':
		tok = g.lexer.handleCompoundToken(token.ASSIGN, '=', token.EQ)
	case '+':
		tok = g.lexer.handleCompoundToken(token.PLUS, '=', token.PLUS_ASSIGN)
	case '-':
		tok = g.lexer.handleCompoundToken(token.MINUS, '=', token.MINUS_ASSIGN)
	case '!':
		tok = g.lexer.handleCompoundToken(token.BANG, '=', token.NOT_EQ)
	case '/':
		tok = g.lexer.handleCompoundToken(token.SLASH, '=', token.SLASH_ASSIGN)
	case '*':
		tok = g.lexer.handleCompoundToken(token.ASTERISK, '=', token.ASTERISK_ASSIGN)
	case '%':
		tok = g.lexer.handleCompoundToken(token.PERCENT, '=', token.PERCENT_ASSIGN)
	case '~':
		tok = newToken(token.COMPLEMENT, g.lexer.ch, startPosition)
	case '&':
		tok = g.lexer.handleCompoundToken2(token.BITWISE_AND, '&', token.LOGICAL_AND, '=', token.BITWISE_AND_ASSIGN)
	case '|':
		tok = g.lexer.handleCompoundToken2(token.BITWISE_OR, '|', token.LOGICAL_OR, '=', token.BITWISE_OR_ASSIGN)
	case '^':
		tok = g.lexer.handleCompoundToken(token.BITWISE_XOR, '=', token.BITWISE_XOR_ASSIGN)
	case '<':
		tok = g.lexer.handleShiftToken(token.LT, token.LT_EQ, token.SHIFT_LEFT, token.SHIFT_LEFT_ASSIGN)
	case '>':
		tok = g.lexer.handleShiftToken(token.GT, token.GT_EQ, token.SHIFT_RIGHT, token.SHIFT_RIGHT_ASSIGN)
	case ';':
		tok = newToken(token.SEMICOLON, g.lexer.ch, startPosition)
	case ':':
		tok = newToken(token.COLON, g.lexer.ch, startPosition)
	case ',':
		tok = newToken(token.COMMA, g.lexer.ch, startPosition)
	case '.':
		tok = newToken(token.PERIOD, g.lexer.ch, startPosition)
	case '{':
		tok = newToken(token.LBRACE, g.lexer.ch, startPosition)
	case '}':
		tok = newToken(token.RBRACE, g.lexer.ch, startPosition)
	case '(':
		g.lexer.parenDepth++
		tok = newToken(token.LPAREN, g.lexer.ch, startPosition)
	case ')':
		if g.lexer.parenDepth > 0 {
			g.lexer.parenDepth--
		}
		tok = newToken(token.RPAREN, g.lexer.ch, startPosition)
	case '[':
		g.lexer.bracketDepth++
		tok = newToken(token.LBRACKET, g.lexer.ch, startPosition)
	case ']':
		if g.lexer.bracketDepth > 0 {
			g.lexer.bracketDepth--
		}
		tok = newToken(token.RBRACKET, g.lexer.ch, startPosition)
	case '"', '\'':
		quote := g.lexer.ch
		g.lexer.readChar() // consume the opening quote
		g.lexer.switchMode(NewSingleLineStringTokenizer(g.lexer, quote, startPosition))
		return g.lexer.currentMode.NextToken()
	case 0:
		tok.Literal = ""
		tok.Type = token.EOF
		tok.Position = startPosition
	default:
		if isLetter(g.lexer.ch) {
			tok.Literal = g.lexer.readIdentifier()
			tok.Type = token.LookupIdent(tok.Literal)
			tok.Position = startPosition
			return tok
		} else if isDigit(g.lexer.ch) {
			return g.readNumberToken(startPosition)
		} else {
			tok = newToken(token.ILLEGAL, g.lexer.ch, startPosition)
		}
	}

	g.lexer.readChar()
	return tok
}

func (g *GeneralTokenizer) readNumberToken(startPosition int) token.Token {
	if g.lexer.ch == '0' && (g.lexer.peekChar() == 'x' || g.lexer.peekChar() == 'X') {
		literal, err := g.lexer.readHexLiteral()
		if err != nil {
			return token.Token{Type: token.ILLEGAL, Literal: err.Error(), Position: startPosition}
		}
		return token.Token{Type: token.INT, Literal: literal, Position: startPosition}
	}
	literal, isFloat, err := g.lexer.readNumber()
	if err != nil {
		return token.Token{Type: token.ILLEGAL, Literal: err.Error(), Position: startPosition}
	}
	if isFloat {
		return token.Token{Type: token.FLOAT, Literal: literal, Position: startPosition}
	}
	return token.Token{Type: token.INT, Literal: literal, Position: startPosition}
}

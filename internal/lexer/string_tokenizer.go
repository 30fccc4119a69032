package lexer

import (
	"sandpy/internal/token"
	"strings"
)

// SingleLineStringTokenizer reads one quoted literal. Either quote style may be
// used; the literal closes on the same quote it opened with.
type SingleLineStringTokenizer struct {
	lexer         *Lexer
	quote         rune
	startPosition int
}

func NewSingleLineStringTokenizer(lexer *Lexer, quote rune, startPosition int) *SingleLineStringTokenizer {
	return &SingleLineStringTokenizer{lexer: lexer, quote: quote, startPosition: startPosition}
}

func (s *SingleLineStringTokenizer) NextToken() token.Token {
	var result strings.Builder

	// start reading the string right away, assume the opening quote has already been read
	defer s.lexer.restoreMode()

	for {
		if s.lexer.ch == 0 || s.lexer.ch == '\n' {
			return token.Token{Type: token.ILLEGAL, Literal: "unterminated string literal", Position: s.startPosition}
		}

		if s.lexer.ch == s.quote {
			s.lexer.readChar() // Consume the closing quote
			break
		}

		if s.lexer.ch == '\\' {
			// Handle escape sequences
			s.lexer.readChar() // Move to the escaped character
			switch s.lexer.ch {
			case 'n':
				result.WriteRune('\n')
			case 't':
				result.WriteRune('\t')
			case 'r':
				result.WriteRune('\r')
			case '0':
				result.WriteRune(0)
			case '\\':
				result.WriteRune('\\')
			case '"':
				result.WriteRune('"')
			case '\'':
				result.WriteRune('\'')
			case 0:
				return token.Token{Type: token.ILLEGAL, Literal: "unterminated string literal", Position: s.startPosition}
			default:
				result.WriteRune('\\')
				result.WriteRune(s.lexer.ch)
			}
		} else {
			result.WriteRune(s.lexer.ch)
		}

		s.lexer.readChar()
	}

	return token.Token{
		Type:     token.STRING,
		Literal:  result.String(),
		Position: s.startPosition,
	}
}

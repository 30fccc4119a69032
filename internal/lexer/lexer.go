package lexer

import (
	"errors"
	"sandpy/internal/token"
	"strings"
	"unicode"
	"unicode/utf8"
)

type Lexer struct {
	input        string
	position     int       // current byte position in input (points to start of current rune)
	readPosition int       // next byte position in input (start of next rune)
	ch           rune      // current rune under examination; 0 means EOF
	prevMode     Tokenizer // tokenizer to return to once a string literal ends
	currentMode  Tokenizer // Current tokenizer strategy

	parenDepth   int // Track nesting of ( )
	bracketDepth int // Track nesting of [ ]
}

type Tokenizer interface {
	NextToken() token.Token
}

func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.switchMode(NewGeneralTokenizer(l))
	l.readChar()
	return l
}

// retain previous mode, this should be called when entering a string literal
func (l *Lexer) switchMode(mode Tokenizer) {
	l.prevMode = l.currentMode
	l.currentMode = mode
}

// restore the previous mode, called when a string literal is closed
func (l *Lexer) restoreMode() {
	if l.prevMode == nil {
		l.currentMode = NewGeneralTokenizer(l)
	} else {
		l.currentMode = l.prevMode
	}
	l.prevMode = nil
}

func (l *Lexer) NextToken() token.Token {
	return l.currentMode.NextToken()
}

// Tokenize drains the lexer. The final token is always EOF.
func Tokenize(input string) []token.Token {
	l := New(input)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens
		}
	}
}

// nested reports whether newlines are currently insignificant.
func (l *Lexer) nested() bool {
	return l.parenDepth > 0 || l.bracketDepth > 0
}

func (l *Lexer) handleCompoundToken(
	t token.TokenType,
	ch1 rune,
	t1 token.TokenType,
) token.Token {
	startPosition := l.position
	if l.peekChar() == ch1 {
		first := l.ch
		l.readChar()
		literal := string(first) + string(l.ch)
		return token.Token{Type: t1, Literal: literal, Position: startPosition}
	} else {
		return newToken(t, l.ch, startPosition)
	}
}

func (l *Lexer) handleCompoundToken2(
	t token.TokenType,
	ch1 rune,
	t1 token.TokenType,
	ch2 rune,
	t2 token.TokenType,
) token.Token {
	startPosition := l.position
	peek := l.peekChar()
	if peek == ch1 {
		first := l.ch
		l.readChar()
		literal := string(first) + string(l.ch)
		return token.Token{Type: t1, Literal: literal, Position: startPosition}
	} else if peek == ch2 {
		first := l.ch
		l.readChar()
		literal := string(first) + string(l.ch)
		return token.Token{Type: t2, Literal: literal, Position: startPosition}
	} else {
		return newToken(t, l.ch, startPosition)
	}
}

// handleShiftToken covers <, <=, <<, <<= and the > family.
func (l *Lexer) handleShiftToken(
	t token.TokenType,
	tEq token.TokenType,
	tShift token.TokenType,
	tShiftAssign token.TokenType,
) token.Token {
	startPosition := l.position
	ch := l.ch
	switch {
	case l.peekChar() == ch && l.peekTwoChars() == '=':
		l.readChar()
		l.readChar()
		return token.Token{Type: tShiftAssign, Literal: string(ch) + string(ch) + "=", Position: startPosition}
	case l.peekChar() == ch:
		l.readChar()
		return token.Token{Type: tShift, Literal: string(ch) + string(ch), Position: startPosition}
	case l.peekChar() == '=':
		l.readChar()
		return token.Token{Type: tEq, Literal: string(ch) + "=", Position: startPosition}
	}
	return newToken(t, ch, startPosition)
}

func (l *Lexer) skipWhitespace() {
	for {
		switch l.ch {
		case ' ', '\t', '\r':
			l.readChar()
		case '\n':
			if !l.nested() {
				return
			}
			l.readChar()
		case '#':
			l.skipToLineEnd()
		case '/':
			if l.peekChar() == '/' {
				l.skipToLineEnd()
			} else {
				return
			}
		default:
			return
		}
	}
}

func (l *Lexer) skipToLineEnd() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

// readNewlines collapses a run of blank and comment-only lines into one token literal
func (l *Lexer) readNewlines() string {
	var sb strings.Builder
	for {
		switch l.ch {
		case '\n':
			sb.WriteRune('\n')
			l.readChar()
		case ' ', '\t', '\r':
			l.readChar()
		case '#':
			l.skipToLineEnd()
		case '/':
			if l.peekChar() != '/' {
				return sb.String()
			}
			l.skipToLineEnd()
		default:
			return sb.String()
		}
	}
}

// readChar advances by one UTF-8 rune, updating byte positions
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
}

// peekChar returns the next rune without advancing; returns 0 at EOF
func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

// peekTwoChars returns the rune after next without advancing; returns 0 if unavailable
func (l *Lexer) peekTwoChars() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	_, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	idx := l.readPosition + size
	if idx >= len(l.input) {
		return 0
	}
	r2, _ := utf8.DecodeRuneInString(l.input[idx:])
	return r2
}

// readIdentifier returns the substring (bytes) covering the identifier runes
func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readDigits appends a run of decimal digits, allowing single '_' separators between them
func (l *Lexer) readDigits(sb *strings.Builder) error {
	for isDigit(l.ch) || l.ch == '_' {
		if l.ch == '_' {
			peek := l.peekChar()
			prev := l.input[l.position-1]
			if !isDigit(rune(prev)) || !isDigit(peek) {
				return errors.New("underscore must be between digits in number literal")
			}
		} else {
			sb.WriteRune(l.ch)
		}
		l.readChar()
	}
	return nil
}

// readNumber returns the literal with separators stripped and whether it is a float
func (l *Lexer) readNumber() (string, bool, error) {
	var sb strings.Builder
	isFloat := false
	if err := l.readDigits(&sb); err != nil {
		return "", false, err
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		sb.WriteRune(l.ch)
		l.readChar()
		if err := l.readDigits(&sb); err != nil {
			return "", false, err
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		isFloat = true
		sb.WriteRune(l.ch)
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			sb.WriteRune(l.ch)
			l.readChar()
		}
		if !isDigit(l.ch) {
			return "", false, errors.New("expected digit in number exponent")
		}
		for isDigit(l.ch) {
			sb.WriteRune(l.ch)
			l.readChar()
		}
	}
	if isLetter(l.ch) {
		return "", false, errors.New("invalid character in number literal")
	}
	return sb.String(), isFloat, nil
}

func (l *Lexer) readHexLiteral() (string, error) {
	var sb strings.Builder
	sb.WriteRune(l.ch)
	l.readChar() // consume '0'
	if l.ch != 'x' && l.ch != 'X' {
		return "", errors.New("expected 'x' after '0'")
	}
	sb.WriteRune('x')
	l.readChar() // consume 'x'

	// Rule: _ allowed immediately after 0x if followed by a hex digit
	if l.ch == '_' {
		if isHexDigit(l.peekChar()) {
			l.readChar()
		} else {
			return "", errors.New("expected hex digit after '0x'")
		}
	}

	if !isHexDigit(l.ch) {
		return "", errors.New("expected hex digit after '0x'")
	}

	for isHexDigit(l.ch) || l.ch == '_' {
		if l.ch == '_' {
			peek := l.peekChar()
			prev := l.input[l.position-1]
			// Rule: _ must be between hex digits (or after prefix handled above)
			if !isHexDigit(rune(prev)) || !isHexDigit(peek) {
				return "", errors.New("underscore must be between digits in number literal")
			}
		} else {
			sb.WriteRune(l.ch)
		}
		l.readChar()
	}
	if isLetter(l.ch) {
		return "", errors.New("invalid character in hex literal")
	}
	return sb.String(), nil
}

// Unicode-aware helpers
func isLetter(ch rune) bool {
	// Letters, underscore, and categories like Letter and Mark to support identifiers like café,变量
	return ch == '_' || unicode.IsLetter(ch) || unicode.Is(unicode.Mn, ch) || unicode.Is(unicode.Mc, ch)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch rune) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func newToken(tokenType token.TokenType, ch rune, position int) token.Token {
	return token.Token{Type: tokenType, Literal: string(ch), Position: position}
}

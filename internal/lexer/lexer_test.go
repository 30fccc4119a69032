package lexer

import (
	"sandpy/internal/token"
	"testing"
)

func TestNextToken(t *testing.T) {
	input := `x = 5
y += 0x1_F
# comment
z = x <= y and not (a
  >= b) // trailing
s = 'it\'s' + "a\tb"
f = 1.5e3 >>= ~2`

	tests := []struct {
		expectedType    token.TokenType
		expectedLiteral string
	}{
		{token.IDENT, "x"},
		{token.ASSIGN, "="},
		{token.INT, "5"},
		{token.NEWLINE, "\n"},
		{token.IDENT, "y"},
		{token.PLUS_ASSIGN, "+="},
		{token.INT, "0x1F"},
		{token.NEWLINE, "\n\n"},
		{token.IDENT, "z"},
		{token.ASSIGN, "="},
		{token.IDENT, "x"},
		{token.LT_EQ, "<="},
		{token.IDENT, "y"},
		{token.AND, "and"},
		{token.NOT, "not"},
		{token.LPAREN, "("},
		{token.IDENT, "a"},
		{token.GT_EQ, ">="},
		{token.IDENT, "b"},
		{token.RPAREN, ")"},
		{token.NEWLINE, "\n"},
		{token.IDENT, "s"},
		{token.ASSIGN, "="},
		{token.STRING, "it's"},
		{token.PLUS, "+"},
		{token.STRING, "a\tb"},
		{token.NEWLINE, "\n"},
		{token.IDENT, "f"},
		{token.ASSIGN, "="},
		{token.FLOAT, "1.5e3"},
		{token.SHIFT_RIGHT_ASSIGN, ">>="},
		{token.COMPLEMENT, "~"},
		{token.INT, "2"},
		{token.EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q '%q', got=%q: '%q'",
				i, tt.expectedType, tt.expectedLiteral, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestKeywords(t *testing.T) {
	input := `def class if elif else while for in range return break continue True False None or`

	expected := []token.TokenType{
		token.DEF, token.CLASS, token.IF, token.ELIF, token.ELSE, token.WHILE,
		token.FOR, token.IN, token.RANGE, token.RETURN, token.BREAK, token.CONTINUE,
		token.TRUE, token.FALSE, token.NONE, token.OR, token.EOF,
	}

	l := New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (%q)", i, want, tok.Type, tok.Literal)
		}
	}
}

func TestIllegalTokens(t *testing.T) {
	tests := []string{
		`1_`,
		`12abc`,
		`0xZ`,
		`1e`,
		`"abc`,
		`'abc` + "\n'",
		`@`,
	}

	for i, input := range tests {
		tok := New(input).NextToken()
		if tok.Type != token.ILLEGAL {
			t.Errorf("tests[%d] - expected ILLEGAL for %q, got %q: %q", i, input, tok.Type, tok.Literal)
		}
	}
}

func TestTokenPositions(t *testing.T) {
	tokens := Tokenize("a+  bc")

	expected := []int{0, 1, 4, 6}
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(tokens))
	}
	for i, pos := range expected {
		if tokens[i].Position != pos {
			t.Errorf("tokens[%d] - position wrong. expected=%d, got=%d", i, pos, tokens[i].Position)
		}
	}
}

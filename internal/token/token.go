package token

type TokenType string

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"
	NEWLINE = "NEWLINE"

	// Identifiers + literals
	IDENT  = "IDENT"  // add, foobar, x, y, ...
	INT    = "INT"    // 1343456, 0xff
	FLOAT  = "FLOAT"  // 1.5, 2e10
	STRING = "STRING" // "foobar"

	// Operators
	ASSIGN   = "="
	PLUS     = "+"
	MINUS    = "-"
	BANG     = "!"
	ASTERISK = "*"
	SLASH    = "/"
	PERCENT  = "%"

	LT    = "<"
	LT_EQ = "<="
	GT    = ">"
	GT_EQ = ">="

	COMPLEMENT  = "~"
	BITWISE_AND = "&"
	BITWISE_OR  = "|"
	BITWISE_XOR = "^"
	SHIFT_LEFT  = "<<"
	SHIFT_RIGHT = ">>"

	LOGICAL_AND = "&&"
	LOGICAL_OR  = "||"

	EQ     = "=="
	NOT_EQ = "!="

	// Augmented assignment
	PLUS_ASSIGN        = "+="
	MINUS_ASSIGN       = "-="
	ASTERISK_ASSIGN    = "*="
	SLASH_ASSIGN       = "/="
	PERCENT_ASSIGN     = "%="
	BITWISE_AND_ASSIGN = "&="
	BITWISE_OR_ASSIGN  = "|="
	BITWISE_XOR_ASSIGN = "^="
	SHIFT_LEFT_ASSIGN  = "<<="
	SHIFT_RIGHT_ASSIGN = ">>="

	// Delimiters
	PERIOD    = "."
	COMMA     = ","
	SEMICOLON = ";"
	COLON     = ":"

	LPAREN   = "("
	RPAREN   = ")"
	LBRACE   = "{"
	RBRACE   = "}"
	LBRACKET = "["
	RBRACKET = "]"

	// Keywords
	DEF      = "DEF"
	CLASS    = "CLASS"
	TRUE     = "TRUE"
	FALSE    = "FALSE"
	NONE     = "NONE"
	IF       = "IF"
	ELIF     = "ELIF"
	ELSE     = "ELSE"
	WHILE    = "WHILE"
	FOR      = "FOR"
	IN       = "IN"
	RANGE    = "RANGE"
	RETURN   = "RETURN"
	BREAK    = "BREAK"
	CONTINUE = "CONTINUE"
	AND      = "AND"
	OR       = "OR"
	NOT      = "NOT"
)

type Token struct {
	Type     TokenType
	Literal  string
	Position int // the src index of the token
}

var keywords = map[string]TokenType{
	// constants
	"None":  NONE,
	"True":  TRUE,
	"False": FALSE,

	// declarations
	"def":   DEF,
	"class": CLASS,

	// flow control
	"if":       IF,
	"elif":     ELIF,
	"else":     ELSE,
	"while":    WHILE,
	"for":      FOR,
	"in":       IN,
	"range":    RANGE,
	"return":   RETURN,
	"break":    BREAK,
	"continue": CONTINUE,

	// word operators
	"and": AND,
	"or":  OR,
	"not": NOT,
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// AugmentedBase maps an augmented assignment token to the binary operator it
// applies, e.g. "+=" to "+".
var AugmentedBase = map[TokenType]TokenType{
	PLUS_ASSIGN:        PLUS,
	MINUS_ASSIGN:       MINUS,
	ASTERISK_ASSIGN:    ASTERISK,
	SLASH_ASSIGN:       SLASH,
	PERCENT_ASSIGN:     PERCENT,
	BITWISE_AND_ASSIGN: BITWISE_AND,
	BITWISE_OR_ASSIGN:  BITWISE_OR,
	BITWISE_XOR_ASSIGN: BITWISE_XOR,
	SHIFT_LEFT_ASSIGN:  SHIFT_LEFT,
	SHIFT_RIGHT_ASSIGN: SHIFT_RIGHT,
}

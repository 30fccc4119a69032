package parser

import (
	"sandpy/internal/ast"
	"sandpy/internal/lexer"
	"strings"
)

// Error collects every message produced while parsing one source text.
type Error struct {
	Messages []string
	// Incomplete is set when parsing failed only because input ended early,
	// e.g. an unclosed block. Interactive callers use it to keep reading.
	Incomplete bool
}

func (e *Error) Error() string {
	return "parse error: " + strings.Join(e.Messages, "; ")
}

// Parse turns source into a module, or returns *Error.
func Parse(source string) (*ast.Module, error) {
	p := New(lexer.New(source), source)
	module := p.ParseModule()
	if len(p.Errors()) > 0 {
		return nil, &Error{Messages: p.Errors(), Incomplete: p.Incomplete()}
	}
	return module, nil
}

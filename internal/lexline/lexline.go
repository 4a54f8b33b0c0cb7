// Package lexline groups a participle token stream into lines for the
// line-oriented simulator output formats.
package lexline

import (
	"fmt"
	"io"

	"github.com/alecthomas/participle/v2/lexer"
)

// Physical tokenizes r with def and collects the tokens into physical lines.
// Tokens of type eol end a line and tokens listed in skip are discarded, so
// a line holding only comments or whitespace comes back empty rather than
// dropped. Lexer errors are returned as-is for the caller to wrap.
func Physical(def lexer.Definition, name string, r io.Reader, eol lexer.TokenType, skip ...lexer.TokenType) ([][]lexer.Token, error) {
	lx, err := def.Lex(name, r)
	if err != nil {
		return nil, fmt.Errorf("tokenizing %s: %w", name, err)
	}

	skipped := make(map[lexer.TokenType]bool, len(skip))
	for _, t := range skip {
		skipped[t] = true
	}

	var lines [][]lexer.Token
	var cur []lexer.Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, fmt.Errorf("tokenizing %s: %w", name, err)
		}
		if tok.EOF() {
			if len(cur) > 0 {
				lines = append(lines, cur)
			}
			return lines, nil
		}
		switch {
		case tok.Type == eol:
			lines = append(lines, cur)
			cur = nil
		case skipped[tok.Type]:
			// skip
		default:
			cur = append(cur, tok)
		}
	}
}

// Lines is like Physical but drops empty lines, for formats where only the
// token content matters and blank lines carry no structure.
func Lines(def lexer.Definition, name string, r io.Reader, eol lexer.TokenType, skip ...lexer.TokenType) ([][]lexer.Token, error) {
	physical, err := Physical(def, name, r, eol, skip...)
	if err != nil {
		return nil, err
	}
	lines := physical[:0]
	for _, line := range physical {
		if len(line) > 0 {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

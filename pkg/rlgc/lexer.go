package rlgc

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// spectreLexer defines the lexical structure of Spectre coupled-line model
// files. Records span a fixed number of physical lines, so newlines are
// their own token.
var spectreLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Comments run from ; to end of line
	{Name: "Comment", Pattern: `;[^\n]*`},

	// Column separator on the format line and in data records
	{Name: "Colon", Pattern: `:`},

	// Line structure
	{Name: "EOL", Pattern: `\r?\n`},
	{Name: "Whitespace", Pattern: `[ \t\r]+`},

	// Everything else: numbers and column names
	{Name: "Word", Pattern: `[^\s:;]+`},
})

var (
	spSymbols = spectreLexer.Symbols()
	spComment = spSymbols["Comment"]
	spColon   = spSymbols["Colon"]
	spEOL     = spSymbols["EOL"]
	spSpace   = spSymbols["Whitespace"]
	spWord    = spSymbols["Word"]
)

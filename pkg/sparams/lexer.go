package sparams

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// touchstoneLexer defines the lexical structure for Touchstone files.
// Newlines are significant (one data line per row of values), so they get
// their own token instead of folding into whitespace.
var touchstoneLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Comments run from ! to end of line
	{Name: "Comment", Pattern: `![^\n]*`},

	// Bracketed directives, e.g. [Version] or [Number of Ports]
	{Name: "Directive", Pattern: `\[[^\]\n]*\]`},

	// Option line marker
	{Name: "Hash", Pattern: `#`},

	// Line structure
	{Name: "EOL", Pattern: `\r?\n`},
	{Name: "Whitespace", Pattern: `[ \t\r]+`},

	// Everything else: numbers, keywords, directive arguments
	{Name: "Word", Pattern: `[^\s\[\]!#]+`},
})

var (
	tsSymbols   = touchstoneLexer.Symbols()
	tsComment   = tsSymbols["Comment"]
	tsDirective = tsSymbols["Directive"]
	tsHash      = tsSymbols["Hash"]
	tsEOL       = tsSymbols["EOL"]
	tsSpace     = tsSymbols["Whitespace"]
)

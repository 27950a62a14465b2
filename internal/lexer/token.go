// Package lexer tokenizes recipe markup text. The scanner is line-ending and
// offset preserving: every token carries the half-open byte span it was read
// from, so parser diagnostics can point back into the original source.
package lexer

import "github.com/recipemark/recipemark/report"

// Kind identifies a token type.
type Kind int

const (
	EOF Kind = iota
	Newline
	Whitespace // run of spaces/tabs
	Word       // run of characters with no special meaning
	Int        // run of ASCII digits
	Punct      // a single punctuation rune with no special meaning

	Escaped // backslash followed by one rune; the rune is taken literally

	LineComment  // "--" to end of line
	BlockComment // "[- ... -]", may span lines

	MetaStart // ">>"
	Gt        // ">"
	Colon     // ":"
	At        // "@"
	Hash      // "#"
	Tilde     // "~"
	Question  // "?"
	Plus      // "+"
	Minus     // "-"
	Slash     // "/"
	Star      // "*"
	Amp       // "&"
	Pipe      // "|"
	Eq        // "="
	Percent   // "%"
	Dot       // "."
	OpenBrace  // "{"
	CloseBrace // "}"
	OpenParen  // "("
	CloseParen // ")"
)

// Token is a lexed fragment of the source text.
type Token struct {
	Kind Kind
	Span report.Span
}

// Len returns the token's byte length.
func (t Token) Len() int { return t.Span.Len() }

package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipemark/recipemark/internal/lexer"
)

func kinds(tokens []lexer.Token) []lexer.Kind {
	out := make([]lexer.Kind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

// TestScan_ComponentMarkers tests tokenization of a step line with an
// ingredient marker, braces, and a unit separator.
func TestScan_ComponentMarkers(t *testing.T) {
	tokens := lexer.Scan("@flour{200%g}", 0)
	assert.Equal(t, []lexer.Kind{
		lexer.At, lexer.Word, lexer.OpenBrace, lexer.Int,
		lexer.Percent, lexer.Word, lexer.CloseBrace, lexer.EOF,
	}, kinds(tokens))
}

// TestScan_Spans tests that token spans index back into the source and honor
// the base offset.
func TestScan_Spans(t *testing.T) {
	src := "mix @flour"
	tokens := lexer.Scan(src, 100)
	require.Len(t, tokens, 5) // Word Ws At Word EOF
	word := tokens[3]
	assert.Equal(t, lexer.Word, word.Kind)
	assert.Equal(t, 105, word.Span.Start)
	assert.Equal(t, 110, word.Span.End)
	assert.Equal(t, "flour", src[word.Span.Start-100:word.Span.End-100])
}

// TestScan_Comments tests line and block comment tokens.
func TestScan_Comments(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []lexer.Kind
	}{
		{
			"line comment runs to end of line",
			"salt -- to taste\nnext",
			[]lexer.Kind{lexer.Word, lexer.Whitespace, lexer.LineComment, lexer.Newline, lexer.Word, lexer.EOF},
		},
		{
			"block comment",
			"a[- hidden -]b",
			[]lexer.Kind{lexer.Word, lexer.BlockComment, lexer.Word, lexer.EOF},
		},
		{
			"unterminated block comment consumes the rest",
			"a[- open",
			[]lexer.Kind{lexer.Word, lexer.BlockComment, lexer.EOF},
		},
		{
			"single dash is minus",
			"2-3",
			[]lexer.Kind{lexer.Int, lexer.Minus, lexer.Int, lexer.EOF},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, kinds(lexer.Scan(tt.src, 0)))
		})
	}
}

// TestScan_MetadataAndSections tests the ">>", ">" and "=" tokens.
func TestScan_MetadataAndSections(t *testing.T) {
	tokens := lexer.Scan(">> servings: 4", 0)
	assert.Equal(t, lexer.MetaStart, tokens[0].Kind)

	tokens = lexer.Scan("> just a note", 0)
	assert.Equal(t, lexer.Gt, tokens[0].Kind)

	tokens = lexer.Scan("= Dough =", 0)
	assert.Equal(t, lexer.Eq, tokens[0].Kind)
}

// TestScan_Escaped tests that a backslash escape covers the backslash and the
// escaped rune.
func TestScan_Escaped(t *testing.T) {
	src := `\@not a marker`
	tokens := lexer.Scan(src, 0)
	require.Equal(t, lexer.Escaped, tokens[0].Kind)
	assert.Equal(t, `\@`, src[tokens[0].Span.Start:tokens[0].Span.End])
}

// TestScan_LineEndings tests that LF, CRLF, and bare CR all produce a single
// Newline token.
func TestScan_LineEndings(t *testing.T) {
	for _, src := range []string{"a\nb", "a\r\nb", "a\rb"} {
		tokens := lexer.Scan(src, 0)
		assert.Equal(t, []lexer.Kind{lexer.Word, lexer.Newline, lexer.Word, lexer.EOF}, kinds(tokens), "src=%q", src)
	}
}

// TestScan_UnicodeWords tests that non-ASCII letters lex as a single word.
func TestScan_UnicodeWords(t *testing.T) {
	tokens := lexer.Scan("@crème fraîche{}", 0)
	assert.Equal(t, []lexer.Kind{
		lexer.At, lexer.Word, lexer.Whitespace, lexer.Word,
		lexer.OpenBrace, lexer.CloseBrace, lexer.EOF,
	}, kinds(tokens))
}

// TestScan_IntsSeparateFromWords tests that digit runs lex as Int even when
// adjacent to letters.
func TestScan_IntsSeparateFromWords(t *testing.T) {
	tokens := lexer.Scan("7up", 0)
	assert.Equal(t, []lexer.Kind{lexer.Int, lexer.Word, lexer.EOF}, kinds(tokens))
}

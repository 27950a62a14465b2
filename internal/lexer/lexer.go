package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/recipemark/recipemark/report"
)

// Scanner walks src rune by rune producing tokens. base is added to every
// span so tokens lexed from a slice of a larger document still point into
// the original text.
type Scanner struct {
	src  string
	base int
	pos  int
}

// New returns a Scanner over src. base offsets all emitted spans.
func New(src string, base int) *Scanner {
	return &Scanner{src: src, base: base}
}

// Scan tokenizes src completely. The final token is always EOF.
func Scan(src string, base int) []Token {
	s := New(src, base)
	var tokens []Token
	for {
		t := s.Next()
		tokens = append(tokens, t)
		if t.Kind == EOF {
			return tokens
		}
	}
}

// Next returns the next token. After the end of input it returns EOF forever.
func (s *Scanner) Next() Token {
	if s.pos >= len(s.src) {
		return s.token(EOF, s.pos)
	}
	start := s.pos
	r, size := utf8.DecodeRuneInString(s.src[s.pos:])

	switch r {
	case '\n':
		s.pos += size
		return s.token(Newline, start)
	case '\r':
		s.pos += size
		if s.pos < len(s.src) && s.src[s.pos] == '\n' {
			s.pos++
		}
		return s.token(Newline, start)
	case ' ', '\t':
		for s.pos < len(s.src) && (s.src[s.pos] == ' ' || s.src[s.pos] == '\t') {
			s.pos++
		}
		return s.token(Whitespace, start)
	case '\\':
		s.pos += size
		if s.pos < len(s.src) {
			_, n := utf8.DecodeRuneInString(s.src[s.pos:])
			s.pos += n
		}
		return s.token(Escaped, start)
	case '-':
		if strings.HasPrefix(s.src[s.pos:], "--") {
			s.pos += 2
			for s.pos < len(s.src) && s.src[s.pos] != '\n' && s.src[s.pos] != '\r' {
				s.pos++
			}
			return s.token(LineComment, start)
		}
		s.pos += size
		return s.token(Minus, start)
	case '[':
		if strings.HasPrefix(s.src[s.pos:], "[-") {
			return s.blockComment(start)
		}
		s.pos += size
		return s.token(Punct, start)
	case '>':
		if strings.HasPrefix(s.src[s.pos:], ">>") {
			s.pos += 2
			return s.token(MetaStart, start)
		}
		s.pos += size
		return s.token(Gt, start)
	case ':':
		s.pos += size
		return s.token(Colon, start)
	case '@':
		s.pos += size
		return s.token(At, start)
	case '#':
		s.pos += size
		return s.token(Hash, start)
	case '~':
		s.pos += size
		return s.token(Tilde, start)
	case '?':
		s.pos += size
		return s.token(Question, start)
	case '+':
		s.pos += size
		return s.token(Plus, start)
	case '/':
		s.pos += size
		return s.token(Slash, start)
	case '*':
		s.pos += size
		return s.token(Star, start)
	case '&':
		s.pos += size
		return s.token(Amp, start)
	case '|':
		s.pos += size
		return s.token(Pipe, start)
	case '=':
		s.pos += size
		return s.token(Eq, start)
	case '%':
		s.pos += size
		return s.token(Percent, start)
	case '.':
		s.pos += size
		return s.token(Dot, start)
	case '{':
		s.pos += size
		return s.token(OpenBrace, start)
	case '}':
		s.pos += size
		return s.token(CloseBrace, start)
	case '(':
		s.pos += size
		return s.token(OpenParen, start)
	case ')':
		s.pos += size
		return s.token(CloseParen, start)
	}

	if isDigit(r) {
		for s.pos < len(s.src) && s.src[s.pos] >= '0' && s.src[s.pos] <= '9' {
			s.pos++
		}
		return s.token(Int, start)
	}

	if isWordRune(r) {
		s.pos += size
		for s.pos < len(s.src) {
			r, n := utf8.DecodeRuneInString(s.src[s.pos:])
			if !isWordRune(r) {
				break
			}
			s.pos += n
		}
		return s.token(Word, start)
	}

	// Anything left is a lone punctuation/symbol rune.
	s.pos += size
	return s.token(Punct, start)
}

// blockComment consumes "[- ... -]". An unterminated comment runs to the end
// of input; the parser reports that case from the token's missing closer.
func (s *Scanner) blockComment(start int) Token {
	s.pos += 2
	if i := strings.Index(s.src[s.pos:], "-]"); i >= 0 {
		s.pos += i + 2
	} else {
		s.pos = len(s.src)
	}
	return s.token(BlockComment, start)
}

func (s *Scanner) token(kind Kind, start int) Token {
	return Token{Kind: kind, Span: report.NewSpan(s.base+start, s.base+s.pos)}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// isWordRune reports whether r belongs in a Word token: anything that is not
// whitespace, a digit, or a punctuation/symbol rune (those all have their own
// token kinds or lex as Punct).
func isWordRune(r rune) bool {
	if isDigit(r) || unicode.IsSpace(r) {
		return false
	}
	if unicode.IsPunct(r) || unicode.IsSymbol(r) {
		return false
	}
	return true
}

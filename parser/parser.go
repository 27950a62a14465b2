package parser

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/recipemark/recipemark/internal/lexer"
	"github.com/recipemark/recipemark/report"
)

const utf8BOM = "\uFEFF"

// ErrInvalidUTF8 is the only unrecoverable parse failure: the input is not
// valid UTF-8 text.
var ErrInvalidUTF8 = errors.New("input is not valid UTF-8")

// Parse parses a document under the given extension set. Malformed recipe
// text never fails the call: offending regions degrade to plain text and a
// diagnostic is recorded. The only fatal condition is invalid UTF-8, in
// which case the AST is nil.
func Parse(src string, exts Extensions) (*AST, *report.SourceReport, error) {
	rep := &report.SourceReport{}
	exts = exts.Normalize()

	if !utf8.ValidString(src) {
		rep.Error("parse.utf8", "input is not valid UTF-8", report.PosSpan(0))
		return nil, rep, ErrInvalidUTF8
	}

	body := src
	base := 0
	if strings.HasPrefix(body, utf8BOM) {
		rep.Warn("parse.bom", "UTF-8 BOM detected and ignored", report.NewSpan(0, len(utf8BOM)))
		base = len(utf8BOM)
		body = src[base:]
	}

	ast := &AST{}
	if yamlText, span, bodyStart, ok := splitFrontmatter(body, base); ok {
		ast.Frontmatter = yamlText
		ast.FrontmatterSpan = span
		base = bodyStart
		body = src[base:]
	}

	p := &docParser{src: src, exts: exts, rep: rep, ast: ast}
	p.run(lexer.Scan(body, base))
	return ast, rep, nil
}

// docParser groups tokens into lines and lines into blocks.
type docParser struct {
	src  string
	exts Extensions
	rep  *report.SourceReport
	ast  *AST

	stepLines [][]lexer.Token // pending step block
	textLines [][]lexer.Token // pending ">" text block
}

func (p *docParser) run(tokens []lexer.Token) {
	var line []lexer.Token
	flushLine := func() {
		if line != nil {
			p.classifyLine(line)
			line = nil
		}
	}
	for _, t := range tokens {
		switch t.Kind {
		case lexer.EOF:
			flushLine()
		case lexer.Newline:
			line = append(line, t)
			flushLine()
		default:
			line = append(line, t)
		}
	}
	flushLine()
	p.flushStep()
	p.flushText()
}

// classifyLine routes one source line: blank lines close the current block,
// ">>" lines are metadata, "=" lines are section headers, ">" lines are text
// paragraphs, and everything else accumulates into a step.
func (p *docParser) classifyLine(line []lexer.Token) {
	first := firstSignificant(line)
	if first < 0 {
		p.flushStep()
		p.flushText()
		return
	}

	switch line[first].Kind {
	case lexer.MetaStart:
		p.flushStep()
		p.flushText()
		if !p.metadataLine(line, first) {
			p.stepLines = append(p.stepLines, line)
			p.flushStep()
		}
	case lexer.Eq:
		p.flushStep()
		p.flushText()
		p.sectionLine(line, first)
	case lexer.Gt:
		p.flushStep()
		p.textLines = append(p.textLines, line)
	default:
		p.flushText()
		p.stepLines = append(p.stepLines, line)
	}
}

func (p *docParser) flushStep() {
	if len(p.stepLines) == 0 {
		return
	}
	lines := p.stepLines
	p.stepLines = nil

	var tokens []lexer.Token
	for _, l := range lines {
		tokens = append(tokens, l...)
	}
	step := parseStep(tokens, p.src, p.exts, p.rep)
	if step != nil {
		p.ast.Blocks = append(p.ast.Blocks, step)
	}
}

func (p *docParser) flushText() {
	if len(p.textLines) == 0 {
		return
	}
	lines := p.textLines
	p.textLines = nil

	var parts []string
	span := report.Span{Start: -1}
	for _, l := range lines {
		first := firstSignificant(l)
		gt := l[first]
		start := gt.Span.End
		end := lineEnd(l)
		text := strings.TrimSuffix(strings.TrimSuffix(p.src[start:end], "\n"), "\r")
		text = strings.TrimPrefix(text, " ")
		parts = append(parts, text)
		if span.Start < 0 {
			span.Start = gt.Span.Start
		}
		span.End = end
	}
	joined := strings.TrimSpace(strings.Join(parts, "\n"))
	if joined == "" {
		return
	}
	p.ast.Blocks = append(p.ast.Blocks, &TextBlock{Text: joined, Loc: span})
}

// metadataLine parses ">> key: value". Reports false when the line is not
// valid metadata so the caller can degrade it to step text.
func (p *docParser) metadataLine(line []lexer.Token, first int) bool {
	colon := -1
	for i := first + 1; i < len(line); i++ {
		if line[i].Kind == lexer.Colon {
			colon = i
			break
		}
	}
	lineSpan := report.NewSpan(line[first].Span.Start, lineEnd(line))
	if colon < 0 {
		p.rep.Warn("parse.metadata", "invalid metadata: missing \":\" separator", lineSpan,
			"the line is treated as a step")
		return false
	}

	keyStart := line[first].Span.End
	keyEnd := line[colon].Span.Start
	key := strings.TrimSpace(p.src[keyStart:keyEnd])
	if key == "" {
		p.rep.Warn("parse.metadata", "invalid metadata: empty key", lineSpan,
			"the line is treated as a step")
		return false
	}

	valueStart := line[colon].Span.End
	valueEnd := contentEnd(line, colon+1)
	value := strings.TrimSpace(p.src[valueStart:valueEnd])

	p.ast.Blocks = append(p.ast.Blocks, &Metadata{
		Key:       key,
		Value:     value,
		KeySpan:   report.NewSpan(keyStart, keyEnd),
		ValueSpan: report.NewSpan(valueStart, valueEnd),
		Loc:       lineSpan,
	})
	return true
}

// sectionLine parses "= name =" headers. Surrounding "=" runs are trimmed;
// an empty name starts an anonymous section.
func (p *docParser) sectionLine(line []lexer.Token, first int) {
	start := line[first].Span.Start
	end := contentEnd(line, first)
	text := p.src[start:end]
	name := strings.TrimSpace(strings.Trim(strings.TrimSpace(text), "="))
	p.ast.Blocks = append(p.ast.Blocks, &Section{
		Name: name,
		Loc:  report.NewSpan(start, end),
	})
}

// firstSignificant returns the index of the first token that is not
// whitespace, a comment, or the line ending; -1 for a blank line.
func firstSignificant(line []lexer.Token) int {
	for i, t := range line {
		switch t.Kind {
		case lexer.Whitespace, lexer.LineComment, lexer.BlockComment, lexer.Newline:
		default:
			return i
		}
	}
	return -1
}

// lineEnd returns the byte offset just past the line's content, excluding
// the line ending.
func lineEnd(line []lexer.Token) int {
	last := line[len(line)-1]
	if last.Kind == lexer.Newline {
		return last.Span.Start
	}
	return last.Span.End
}

// contentEnd returns the end offset of the line's significant content
// starting at token index from: trailing whitespace, comments, and the line
// ending are excluded.
func contentEnd(line []lexer.Token, from int) int {
	end := -1
	for i := from; i < len(line); i++ {
		switch line[i].Kind {
		case lexer.Whitespace, lexer.LineComment, lexer.BlockComment, lexer.Newline:
		default:
			end = line[i].Span.End
		}
	}
	if end < 0 {
		if from < len(line) {
			return line[from].Span.Start
		}
		return lineEnd(line)
	}
	return end
}

package parser

import (
	"strconv"
	"strings"

	"github.com/recipemark/recipemark/internal/lexer"
	"github.com/recipemark/recipemark/report"
)

// parseStep assembles the items of one step block. Component markers are
// parsed with the longest valid match; ill-formed markers degrade to plain
// text and parsing continues after the marker character.
func parseStep(tokens []lexer.Token, src string, exts Extensions, rep *report.SourceReport) *Step {
	s := &stepParser{tokens: tokens, src: src, exts: exts, rep: rep}
	return s.run()
}

type stepParser struct {
	tokens []lexer.Token
	src    string
	exts   Extensions
	rep    *report.SourceReport

	items     []Item
	text      strings.Builder
	textSpan  report.Span
	hasText   bool
	blockSpan report.Span
}

func (s *stepParser) run() *Step {
	if len(s.tokens) > 0 {
		s.blockSpan = report.PosSpan(s.tokens[0].Span.Start)
	}
	for i := 0; i < len(s.tokens); {
		t := s.tokens[i]
		s.blockSpan.End = t.Span.End

		switch t.Kind {
		case lexer.At, lexer.Hash, lexer.Tilde:
			if c, next, ok := s.tryComponent(i); ok {
				s.flushText()
				s.items = append(s.items, c)
				i = next
				continue
			}
			s.appendText(s.src[t.Span.Start:t.Span.End], t.Span)
			i++
		case lexer.Newline:
			s.appendSpace(t.Span)
			i++
		case lexer.LineComment, lexer.BlockComment:
			i++
		case lexer.Escaped:
			// Drop the backslash, keep the escaped rune.
			s.appendText(s.src[t.Span.Start+1:t.Span.End], t.Span)
			i++
		default:
			s.appendText(s.src[t.Span.Start:t.Span.End], t.Span)
			i++
		}
	}
	s.flushText()

	s.trimEdges()
	if len(s.items) == 0 {
		return nil
	}
	return &Step{Items: s.items, Loc: s.blockSpan}
}

func (s *stepParser) appendText(text string, span report.Span) {
	if !s.hasText {
		s.textSpan.Start = span.Start
		s.hasText = true
	}
	s.textSpan.End = span.End
	s.text.WriteString(text)
}

// appendSpace folds line breaks and comment gaps into a single space.
func (s *stepParser) appendSpace(span report.Span) {
	if !s.hasText {
		s.textSpan.Start = span.Start
		s.hasText = true
	}
	s.textSpan.End = span.End
	current := s.text.String()
	if current == "" || strings.HasSuffix(current, " ") {
		return
	}
	s.text.WriteByte(' ')
}

func (s *stepParser) flushText() {
	if !s.hasText {
		return
	}
	value := s.text.String()
	s.text.Reset()
	s.hasText = false
	if value == "" {
		return
	}
	s.items = append(s.items, &Text{Value: value, Loc: s.textSpan})
}

// trimEdges strips leading and trailing whitespace from a step's outermost
// text items and drops the items that become empty.
func (s *stepParser) trimEdges() {
	for len(s.items) > 0 {
		t, ok := s.items[0].(*Text)
		if !ok {
			break
		}
		t.Value = strings.TrimLeft(t.Value, " \t")
		if t.Value != "" {
			break
		}
		s.items = s.items[1:]
	}
	for len(s.items) > 0 {
		t, ok := s.items[len(s.items)-1].(*Text)
		if !ok {
			break
		}
		t.Value = strings.TrimRight(t.Value, " \t")
		if t.Value != "" {
			break
		}
		s.items = s.items[:len(s.items)-1]
	}
}

// tryComponent attempts to parse a component starting at the marker token.
// On failure it reports (nil, 0, false) and the caller emits the marker as
// literal text; a diagnostic is only recorded when the text clearly tried to
// be a component.
func (s *stepParser) tryComponent(start int) (*Component, int, bool) {
	marker := s.tokens[start]
	c := &Component{Loc: report.Span{Start: marker.Span.Start}}
	switch marker.Kind {
	case lexer.Hash:
		c.Kind = CookwareKind
	case lexer.Tilde:
		c.Kind = TimerKind
	default:
		c.Kind = IngredientKind
	}

	i := start + 1
	if c.Kind != TimerKind && s.exts.Has(ComponentModifiers) {
		var ok bool
		i, ok = s.parseModifiers(c, i)
		if !ok {
			return nil, 0, false
		}
	}

	var ok bool
	i, ok = s.parseName(c, i)
	if !ok {
		if c.Modifiers != 0 || c.Intermediate != nil {
			s.rep.Warn("parse.component",
				"component modifiers without a component name",
				report.NewSpan(marker.Span.Start, s.tokenStart(i)),
				"the text is kept as-is")
		}
		return nil, 0, false
	}

	if i < len(s.tokens) && s.tokens[i].Kind == lexer.OpenBrace {
		i, ok = s.parseQuantityGroup(c, i)
		if !ok {
			return nil, 0, false
		}
	}

	if c.Kind != TimerKind && i < len(s.tokens) && s.tokens[i].Kind == lexer.OpenParen &&
		s.tokens[i].Span.Start == s.tokenEnd(i-1) {
		i = s.parseNote(c, i)
	}

	if c.Name == "" {
		// Only timers may be anonymous, and only with a quantity: "~{10%min}".
		if c.Kind != TimerKind || c.Quantity == nil {
			return nil, 0, false
		}
	}
	c.Loc.End = s.tokenEnd(i - 1)
	return c, i, true
}

// parseModifiers consumes the modifier characters between a marker and its
// name, plus an optional intermediate-preparation target after "&".
func (s *stepParser) parseModifiers(c *Component, i int) (int, bool) {
	for i < len(s.tokens) {
		var mod Modifiers
		switch s.tokens[i].Kind {
		case lexer.At:
			mod = ModRecipe
		case lexer.Amp:
			mod = ModRef
		case lexer.Plus:
			mod = ModNew
		case lexer.Minus:
			mod = ModHidden
		case lexer.Question:
			mod = ModOptional
		default:
			return i, true
		}
		if c.Modifiers.Has(mod) {
			s.rep.Warn("parse.modifiers", "duplicate component modifier", s.tokens[i].Span)
		}
		c.Modifiers |= mod
		i++

		if mod == ModRef && s.exts.Has(IntermediatePreparations) &&
			i < len(s.tokens) && s.tokens[i].Kind == lexer.OpenParen {
			ref, next, ok := s.parseIntermediate(i)
			if !ok {
				return 0, false
			}
			c.Intermediate = ref
			i = next
		}
	}
	return i, true
}

// parseIntermediate parses "(~N)", "(N)", "(=N)", or "(=~N)" after "&".
func (s *stepParser) parseIntermediate(open int) (*IntermediateRef, int, bool) {
	i := open + 1
	target := TargetStep
	section := false
	relative := false

	if i < len(s.tokens) && s.tokens[i].Kind == lexer.Eq {
		section = true
		i++
	}
	if i < len(s.tokens) && s.tokens[i].Kind == lexer.Tilde {
		relative = true
		i++
	}
	switch {
	case section && relative:
		target = TargetSectionBack
	case section:
		target = TargetSection
	case relative:
		target = TargetStepBack
	}

	fail := func(msg string) (*IntermediateRef, int, bool) {
		s.rep.Warn("parse.intermediate", msg,
			report.NewSpan(s.tokens[open].Span.Start, s.tokenEnd(i)),
			"expected \"&(N)\", \"&(~N)\", \"&(=N)\", or \"&(=~N)\"")
		return nil, 0, false
	}

	if i >= len(s.tokens) || s.tokens[i].Kind != lexer.Int {
		return fail("malformed intermediate reference: missing step or section number")
	}
	raw := s.src[s.tokens[i].Span.Start:s.tokens[i].Span.End]
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fail("malformed intermediate reference: invalid number")
	}
	numSpan := s.tokens[i].Span
	i++

	if i >= len(s.tokens) || s.tokens[i].Kind != lexer.CloseParen {
		return fail("malformed intermediate reference: missing \")\"")
	}
	i++

	return &IntermediateRef{
		Target: target,
		Value:  value,
		Span:   report.NewSpan(s.tokens[open].Span.Start, numSpan.End),
	}, i, true
}

// nameish reports whether a token may appear inside a braced long-form name.
func nameish(k lexer.Kind) bool {
	switch k {
	case lexer.Word, lexer.Int, lexer.Whitespace, lexer.Punct, lexer.Dot,
		lexer.Escaped, lexer.Slash, lexer.Colon, lexer.Minus:
		return true
	}
	return false
}

// parseName scans the component name. A name followed by "{" may contain
// spaces (and an "|alias" under the alias extension); otherwise the name is
// the single word adjacent to the marker.
func (s *stepParser) parseName(c *Component, i int) (int, bool) {
	aliasAllowed := s.exts.Has(ComponentAlias)
	pipe := -1
	j := i
	for j < len(s.tokens) {
		k := s.tokens[j].Kind
		if nameish(k) || (k == lexer.Pipe && !aliasAllowed) {
			j++
			continue
		}
		if k == lexer.Pipe && aliasAllowed {
			if pipe < 0 {
				pipe = j
			}
			j++
			continue
		}
		break
	}

	if j == i && j < len(s.tokens) && s.tokens[j].Kind == lexer.OpenBrace {
		// Anonymous braced form, "~{10%min}".
		c.NameSpan = report.PosSpan(s.tokens[i].Span.Start)
		return j, true
	}

	if j < len(s.tokens) && s.tokens[j].Kind == lexer.OpenBrace && j > i {
		nameEnd := s.tokenStart(j)
		aliasText := ""
		if pipe >= 0 {
			aliasText = strings.TrimSpace(s.src[s.tokens[pipe].Span.End:nameEnd])
			nameEnd = s.tokens[pipe].Span.Start
		}
		raw := s.src[s.tokens[i].Span.Start:nameEnd]
		trimmed := strings.TrimLeft(raw, " \t")
		nameStart := s.tokens[i].Span.Start + len(raw) - len(trimmed)
		name := strings.TrimRight(trimmed, " \t")
		if name == "" {
			// "@{...}" has no name; valid only with a quantity group,
			// validated by the caller.
			c.NameSpan = report.PosSpan(s.tokens[i].Span.Start)
			return j, true
		}
		c.Name = name
		c.NameSpan = report.NewSpan(nameStart, nameStart+len(name))
		if pipe >= 0 {
			if aliasText == "" {
				s.rep.Warn("parse.alias", "empty component alias", s.tokens[pipe].Span)
			}
			c.Alias = aliasText
		}
		return j, true
	}

	// Single-word form: adjacent word/int/escaped tokens with no gap.
	j = i
	end := -1
	for j < len(s.tokens) {
		k := s.tokens[j].Kind
		if k != lexer.Word && k != lexer.Int && k != lexer.Escaped {
			break
		}
		if end >= 0 && s.tokens[j].Span.Start != end {
			break
		}
		end = s.tokens[j].Span.End
		j++
	}
	if j == i {
		return i, false
	}
	c.Name = s.src[s.tokens[i].Span.Start:end]
	c.NameSpan = report.NewSpan(s.tokens[i].Span.Start, end)
	return j, true
}

// parseQuantityGroup consumes "{...}" and parses its content.
func (s *stepParser) parseQuantityGroup(c *Component, open int) (int, bool) {
	i := open + 1
	for i < len(s.tokens) && s.tokens[i].Kind != lexer.CloseBrace {
		if s.tokens[i].Kind == lexer.Newline {
			break
		}
		i++
	}
	if i >= len(s.tokens) || s.tokens[i].Kind != lexer.CloseBrace {
		s.rep.Warn("parse.component",
			c.Kind.String()+" quantity is missing its closing \"}\"",
			report.NewSpan(s.tokens[open].Span.Start, s.tokenEnd(i-1)),
			"the text is kept as-is")
		return 0, false
	}
	span := report.NewSpan(s.tokens[open].Span.End, s.tokens[i].Span.Start)
	c.Quantity = parseQuantityText(s.src, span, s.exts, s.rep)
	if c.Kind == CookwareKind && c.Quantity != nil && c.Quantity.Unit != "" {
		s.rep.Warn("parse.quantity", "cookware cannot have a unit; the unit is ignored",
			c.Quantity.UnitSpan)
		c.Quantity.Unit = ""
	}
	return i + 1, true
}

// parseNote consumes "(...)" into the component note. An unclosed "(" is
// left for the text pass.
func (s *stepParser) parseNote(c *Component, open int) int {
	i := open + 1
	for i < len(s.tokens) && s.tokens[i].Kind != lexer.CloseParen {
		if s.tokens[i].Kind == lexer.Newline {
			return open
		}
		i++
	}
	if i >= len(s.tokens) {
		return open
	}
	c.Note = strings.TrimSpace(s.src[s.tokens[open].Span.End:s.tokens[i].Span.Start])
	c.HasNote = true
	return i + 1
}

func (s *stepParser) tokenStart(i int) int {
	if i < len(s.tokens) {
		return s.tokens[i].Span.Start
	}
	if len(s.tokens) == 0 {
		return 0
	}
	return s.tokens[len(s.tokens)-1].Span.End
}

func (s *stepParser) tokenEnd(i int) int {
	if i < 0 {
		return 0
	}
	if i >= len(s.tokens) {
		i = len(s.tokens) - 1
	}
	return s.tokens[i].Span.End
}

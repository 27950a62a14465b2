package parser

import (
	"github.com/recipemark/recipemark/quantity"
	"github.com/recipemark/recipemark/report"
)

// AST is the parse tree of one document: optional YAML frontmatter plus an
// ordered list of blocks.
type AST struct {
	// Frontmatter is the raw YAML between the --- fences, "" when absent.
	Frontmatter     string
	FrontmatterSpan report.Span
	Blocks          []Block
}

// Block is one document block: Metadata, Section, Step, or TextBlock.
type Block interface {
	Span() report.Span
	block()
}

// Metadata is a ">> key: value" line.
type Metadata struct {
	Key       string
	Value     string
	KeySpan   report.Span
	ValueSpan report.Span
	Loc       report.Span
}

func (m *Metadata) Span() report.Span { return m.Loc }
func (m *Metadata) block()            {}

// Section is a "= name =" header. Name is "" for an anonymous section.
type Section struct {
	Name string
	Loc  report.Span
}

func (s *Section) Span() report.Span { return s.Loc }
func (s *Section) block()            {}

// Step is a procedure block: text fragments interleaved with components.
type Step struct {
	Items []Item
	Loc   report.Span
}

func (s *Step) Span() report.Span { return s.Loc }
func (s *Step) block()            {}

// TextBlock is a ">" prefixed paragraph. Component markers inside are not
// interpreted.
type TextBlock struct {
	Text string
	Loc  report.Span
}

func (t *TextBlock) Span() report.Span { return t.Loc }
func (t *TextBlock) block()            {}

// Item is a step fragment: Text or Component.
type Item interface {
	ItemSpan() report.Span
	item()
}

// Text is a literal step fragment.
type Text struct {
	Value string
	Loc   report.Span
}

func (t *Text) ItemSpan() report.Span { return t.Loc }
func (t *Text) item()                 {}

// ComponentKind discriminates the three component markers.
type ComponentKind int

const (
	IngredientKind ComponentKind = iota
	CookwareKind
	TimerKind
)

func (k ComponentKind) String() string {
	switch k {
	case IngredientKind:
		return "ingredient"
	case CookwareKind:
		return "cookware"
	case TimerKind:
		return "timer"
	}
	return "unknown"
}

// Marker returns the marker character for the kind.
func (k ComponentKind) Marker() byte {
	switch k {
	case CookwareKind:
		return '#'
	case TimerKind:
		return '~'
	default:
		return '@'
	}
}

// Component is a parsed @ingredient, #cookware, or ~timer occurrence.
type Component struct {
	Kind         ComponentKind
	Modifiers    Modifiers
	Intermediate *IntermediateRef // only for ingredients, only with the extension
	Name         string
	Alias        string
	Quantity     *Quantity
	Note         string
	HasNote      bool
	NameSpan     report.Span
	Loc          report.Span
}

func (c *Component) ItemSpan() report.Span { return c.Loc }
func (c *Component) item()                 {}

// DisplayName returns the alias when one was written, the name otherwise.
func (c *Component) DisplayName() string {
	if c.Alias != "" {
		return c.Alias
	}
	return c.Name
}

// Quantity is a parsed "{value%unit}" group.
type Quantity struct {
	Value     quantity.Value
	Unit      string
	Locked    bool // written with the "=" scaling lock
	ValueSpan report.Span
	UnitSpan  report.Span
	Loc       report.Span
}

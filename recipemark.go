// Package recipemark parses recipe markup into a structured model.
//
// A Parser value bundles an extension set with a unit converter and is safe
// to share across goroutines: parsing carries no per-call mutable state
// beyond the returned model and report.
//
//	p := recipemark.Default()
//	recipe, rep, err := p.Parse("Mix @flour{200%g} into the #bowl{}.")
//
// Malformed recipe text never fails Parse. Problems degrade to plain text or
// best-effort substitutions and are recorded in the returned SourceReport;
// the only fatal condition is input that is not valid UTF-8.
package recipemark

import (
	"github.com/recipemark/recipemark/parser"
	"github.com/recipemark/recipemark/report"
	"github.com/recipemark/recipemark/unit"
)

// Parser ties an extension set to a unit converter. The zero value is not
// useful; construct with New, Default, or Canonical.
type Parser struct {
	extensions parser.Extensions
	converter  *unit.Converter
}

// New builds a parser with an explicit extension set and converter. A nil
// converter disables unit-aware checks and best-unit display.
func New(exts Extensions, conv *unit.Converter) *Parser {
	if conv == nil {
		conv = unit.Empty()
	}
	return &Parser{extensions: exts.Normalize(), converter: conv}
}

// Default is the lenient everyday configuration: every extension except the
// strict timer rule, with the bundled unit table.
func Default() *Parser {
	return New(parser.DefaultExtensions, unit.MustBundled())
}

// Canonical parses plain recipe markup: no extensions, no unit table.
func Canonical() *Parser {
	return New(parser.NoExtensions, unit.Empty())
}

// Extensions returns the normalized extension set.
func (p *Parser) Extensions() Extensions { return p.extensions }

// Converter returns the unit converter, never nil.
func (p *Parser) Converter() *unit.Converter { return p.converter }

// Parse analyzes one document. The recipe is nil only when err is non-nil
// (invalid UTF-8); every other problem is a diagnostic in the report
// alongside a best-effort model.
func (p *Parser) Parse(text string) (*Recipe, *report.SourceReport, error) {
	ast, rep, err := parser.Parse(text, p.extensions)
	if err != nil {
		return nil, rep, err
	}
	recipe := analyze(text, ast, p.extensions, p.converter, rep)
	return recipe, rep, nil
}

// ParseMetadata interprets only the metadata of a document: the YAML
// frontmatter and ">>" lines. Steps are not analyzed.
func (p *Parser) ParseMetadata(text string) (*Metadata, *report.SourceReport, error) {
	ast, rep, err := parser.Parse(text, p.extensions)
	if err != nil {
		return nil, rep, err
	}
	mb := newMetadataBuilder(p.extensions, rep)
	mb.addFrontmatter(ast.Frontmatter, ast.FrontmatterSpan)
	for _, block := range ast.Blocks {
		if m, ok := block.(*parser.Metadata); ok {
			mb.Add(m.Key, m.Value, m.Loc)
		}
	}
	meta := mb.meta
	return &meta, rep, nil
}

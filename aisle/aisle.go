// Package aisle reads aisle configuration files for shopping-list
// categorization. The format is line based: "[category]" headers followed
// by one ingredient per line, with "|"-separated synonyms after the
// canonical name.
package aisle

import (
	"fmt"
	"io"
	"strings"

	"github.com/recipemark/recipemark/report"
)

// Ingredient is one configured ingredient: the canonical name plus any
// synonyms that fold into it.
type Ingredient struct {
	Name     string   `json:"name" yaml:"name"`
	Synonyms []string `json:"synonyms,omitempty" yaml:"synonyms,omitempty"`
}

// Category is one "[...]" group in config order.
type Category struct {
	Name        string       `json:"name" yaml:"name"`
	Ingredients []Ingredient `json:"ingredients" yaml:"ingredients"`
}

// Conf is a parsed aisle configuration. The reverse lookup caches are built
// once by Parse; a Conf is read-only afterwards and safe to share.
type Conf struct {
	Categories []Category

	categoryOf map[string]string // lowercased name or synonym -> category
	commonName map[string]string // lowercased name or synonym -> canonical name
}

// Parse reads an aisle configuration. Malformed lines are skipped with a
// warning and duplicate names are errors; parsing always continues, so the
// returned Conf holds everything that could be read.
func Parse(src string) (*Conf, *report.SourceReport) {
	rep := &report.SourceReport{}
	conf := &Conf{
		categoryOf: make(map[string]string),
		commonName: make(map[string]string),
	}

	offset := 0
	for _, line := range strings.SplitAfter(src, "\n") {
		span := report.NewSpan(offset, offset+len(strings.TrimRight(line, "\n")))
		offset += len(line)
		conf.parseLine(strings.TrimSpace(line), span, rep)
	}
	return conf, rep
}

func (c *Conf) parseLine(line string, span report.Span, rep *report.SourceReport) {
	if line == "" || strings.HasPrefix(line, "--") {
		return
	}

	if strings.HasPrefix(line, "[") {
		name := strings.TrimSpace(strings.TrimPrefix(line, "["))
		if !strings.HasSuffix(name, "]") {
			rep.Warn("aisle.category", "category header is missing its closing \"]\"", span,
				"the line is skipped")
			return
		}
		name = strings.TrimSpace(strings.TrimSuffix(name, "]"))
		if name == "" {
			rep.Warn("aisle.category", "empty category name", span, "the line is skipped")
			return
		}
		for _, cat := range c.Categories {
			if strings.EqualFold(cat.Name, name) {
				rep.Error("aisle.category", fmt.Sprintf("duplicate category %q", name), span)
				return
			}
		}
		c.Categories = append(c.Categories, Category{Name: name})
		return
	}

	if len(c.Categories) == 0 {
		rep.Warn("aisle.entry", "ingredient line before any category header", span,
			"the line is skipped")
		return
	}

	var names []string
	for _, part := range strings.Split(line, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			rep.Warn("aisle.entry", "empty ingredient name", span, "the line is skipped")
			return
		}
		names = append(names, part)
	}

	category := &c.Categories[len(c.Categories)-1]
	canonical := names[0]
	for _, name := range names {
		key := strings.ToLower(name)
		if _, exists := c.commonName[key]; exists {
			rep.Error("aisle.entry", fmt.Sprintf("duplicate ingredient %q", name), span)
			return
		}
	}
	for _, name := range names {
		key := strings.ToLower(name)
		c.categoryOf[key] = category.Name
		c.commonName[key] = canonical
	}
	category.Ingredients = append(category.Ingredients, Ingredient{
		Name:     canonical,
		Synonyms: names[1:],
	})
}

// CategoryOf returns the category holding name (or a synonym of it).
// Lookups are case-insensitive.
func (c *Conf) CategoryOf(name string) (string, bool) {
	cat, ok := c.categoryOf[strings.ToLower(name)]
	return cat, ok
}

// CommonName resolves a synonym to its canonical name. A name that is not
// configured resolves to itself.
func (c *Conf) CommonName(name string) string {
	if canonical, ok := c.commonName[strings.ToLower(name)]; ok {
		return canonical
	}
	return name
}

// Write serializes the configuration back to the line format it was read
// from.
func (c *Conf) Write(w io.Writer) error {
	for i, cat := range c.Categories {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "[%s]\n", cat.Name); err != nil {
			return err
		}
		for _, ing := range cat.Ingredients {
			line := ing.Name
			if len(ing.Synonyms) > 0 {
				line += "|" + strings.Join(ing.Synonyms, "|")
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

// Package shopping aggregates ingredients across recipes into a shopping
// list, optionally categorized through an aisle configuration.
package shopping

import (
	"strings"

	recipemark "github.com/recipemark/recipemark"
	"github.com/recipemark/recipemark/aisle"
	"github.com/recipemark/recipemark/quantity"
	"github.com/recipemark/recipemark/unit"
)

// IngredientList accumulates grouped quantities per ingredient name, in
// first-seen order. Names merge case-insensitively; the first spelling
// seen is the one kept.
type IngredientList struct {
	conv    *unit.Converter
	order   []string
	grouped map[string]*quantity.GroupedQuantity // keyed by lowercased name
	display map[string]string                    // lowercased name -> first spelling
}

// NewList builds an empty list. A nil converter is replaced by an empty
// one, so unknown units still group by their text.
func NewList(conv *unit.Converter) *IngredientList {
	if conv == nil {
		conv = unit.Empty()
	}
	return &IngredientList{
		conv:    conv,
		grouped: make(map[string]*quantity.GroupedQuantity),
		display: make(map[string]string),
	}
}

// AddRecipe folds every listable ingredient of the recipe into the list.
// Hidden ingredients and bare references stay out; quantities attached to
// references still count toward their definition's total.
func (l *IngredientList) AddRecipe(r *recipemark.Recipe) {
	for _, group := range recipemark.GroupIngredients(r, l.conv) {
		ing := r.Ingredients[group.Index]
		if !ing.Modifiers.ShouldBeListed() {
			continue
		}
		l.add(ing.DisplayName(), group.Quantity)
	}
}

// AddIngredient folds one already-grouped quantity into the list.
func (l *IngredientList) AddIngredient(name string, gq *quantity.GroupedQuantity) {
	l.add(name, gq)
}

func (l *IngredientList) add(name string, gq *quantity.GroupedQuantity) {
	key := strings.ToLower(name)
	existing, ok := l.grouped[key]
	if !ok {
		existing = &quantity.GroupedQuantity{}
		l.grouped[key] = existing
		l.display[key] = name
		l.order = append(l.order, key)
	}
	existing.Merge(gq)
}

// Entry is one shopping-list line.
type Entry struct {
	Name     string                    `json:"name" yaml:"name"`
	Quantity *quantity.GroupedQuantity `json:"-" yaml:"-"`
	Totals   []quantity.Quantity       `json:"quantity,omitempty" yaml:"quantity,omitempty"`
}

// Entries returns the list in first-seen order.
func (l *IngredientList) Entries() []Entry {
	out := make([]Entry, 0, len(l.order))
	for _, key := range l.order {
		gq := l.grouped[key]
		out = append(out, Entry{
			Name:     l.display[key],
			Quantity: gq,
			Totals:   gq.Total(l.conv),
		})
	}
	return out
}

// CategorizedList groups entries by aisle category.
type CategorizedList struct {
	Categories []CategoryEntries `json:"categories" yaml:"categories"`
	Other      []Entry           `json:"other,omitempty" yaml:"other,omitempty"`
}

// CategoryEntries is one aisle category with its entries.
type CategoryEntries struct {
	Category string  `json:"category" yaml:"category"`
	Entries  []Entry `json:"items" yaml:"items"`
}

// Categorize folds the list through an aisle configuration: synonyms merge
// into their canonical name (so a name and its synonym never appear as two
// lines), categories keep config order, and names absent from the config
// land in a trailing "other" bucket.
func (l *IngredientList) Categorize(conf *aisle.Conf) CategorizedList {
	merged := NewList(l.conv)
	for _, key := range l.order {
		merged.add(conf.CommonName(l.display[key]), l.grouped[key])
	}

	byCategory := make(map[string][]Entry)
	var other []Entry
	for _, entry := range merged.Entries() {
		if category, ok := conf.CategoryOf(entry.Name); ok {
			byCategory[category] = append(byCategory[category], entry)
		} else {
			other = append(other, entry)
		}
	}

	var out CategorizedList
	for _, cat := range conf.Categories {
		if entries, ok := byCategory[cat.Name]; ok {
			out.Categories = append(out.Categories, CategoryEntries{
				Category: cat.Name,
				Entries:  entries,
			})
		}
	}
	out.Other = other
	return out
}

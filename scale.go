package recipemark

import (
	"fmt"

	"github.com/recipemark/recipemark/quantity"
	"github.com/recipemark/recipemark/report"
)

// Scale returns a scaled deep copy of r; the input is never touched.
// Numbers and ranges multiply by factor, locked quantities and empty values
// stay as they are, and text values stay too, each with a warning since
// they cannot be scaled. Scaling by 1 returns an identical copy.
func Scale(r *Recipe, factor float64) (*Recipe, *report.SourceReport) {
	rep := &report.SourceReport{}
	out := r.clone()
	if factor == 1 {
		return out, rep
	}
	eachQuantity(out, func(q *quantity.Quantity, what string) {
		scaleQuantity(q, factor, what, rep)
	})
	return out, rep
}

// ScaleToServings scales to a target serving count using the servings
// metadata as the base. A quantity with one value per serving figure resolves
// to the value at the target's position instead of multiplying. Without
// servings metadata the recipe is returned unscaled with a warning.
func ScaleToServings(r *Recipe, target uint32) (*Recipe, *report.SourceReport) {
	servings := r.Metadata.Servings
	if len(servings) == 0 || servings[0] == 0 {
		rep := &report.SourceReport{}
		rep.Warn("scale.servings",
			"recipe declares no servings; cannot scale to a serving count",
			report.Span{})
		return r.clone(), rep
	}

	idx := -1
	for i, s := range servings {
		if s == target {
			idx = i
			break
		}
	}
	factor := float64(target) / float64(servings[0])

	rep := &report.SourceReport{}
	out := r.clone()
	eachQuantity(out, func(q *quantity.Quantity, what string) {
		if q != nil && q.Value.Kind() == quantity.KindByServings {
			parts := q.Value.ByServings()
			if idx >= 0 && idx < len(parts) {
				q.Value = parts[idx]
				return
			}
			rep.Warn("scale.servings",
				fmt.Sprintf("%s declares no value for %d servings", what, target),
				report.Span{})
			return
		}
		if factor != 1 {
			scaleQuantity(q, factor, what, rep)
		}
	})
	return out, rep
}

// eachQuantity visits every component quantity with a display name for
// diagnostics.
func eachQuantity(r *Recipe, fn func(q *quantity.Quantity, what string)) {
	for i := range r.Ingredients {
		fn(r.Ingredients[i].Quantity, fmt.Sprintf("ingredient %q", r.Ingredients[i].Name))
	}
	for i := range r.Cookware {
		fn(r.Cookware[i].Quantity, fmt.Sprintf("cookware %q", r.Cookware[i].Name))
	}
	for i := range r.Timers {
		name := r.Timers[i].Name
		if name == "" {
			name = "timer"
		} else {
			name = fmt.Sprintf("timer %q", name)
		}
		fn(r.Timers[i].Quantity, name)
	}
}

func scaleQuantity(q *quantity.Quantity, factor float64, what string, rep *report.SourceReport) {
	if q == nil {
		return
	}
	if q.Locked {
		return
	}
	switch q.Value.Kind() {
	case quantity.KindText:
		rep.Warn("scale.text",
			fmt.Sprintf("%s has the text quantity %q, which cannot be scaled", what, q.Value.Text()),
			report.Span{})
		return
	case quantity.KindByServings:
		rep.Warn("scale.servings",
			fmt.Sprintf("%s lists one value per serving figure; scale to a serving count to pick one", what),
			report.Span{})
		return
	}
	*q = q.Scale(factor)
}

// clone deep-copies the recipe so scaling stays pure.
func (r *Recipe) clone() *Recipe {
	out := &Recipe{
		Metadata:         r.Metadata,
		Sections:         make([]Section, len(r.Sections)),
		Ingredients:      append([]Ingredient(nil), r.Ingredients...),
		Cookware:         append([]Cookware(nil), r.Cookware...),
		Timers:           append([]Timer(nil), r.Timers...),
		InlineQuantities: append([]quantity.Quantity(nil), r.InlineQuantities...),
	}
	out.Metadata.entries = append([]MetadataEntry(nil), r.Metadata.entries...)

	for i, s := range r.Sections {
		content := make([]Block, len(s.Content))
		for j, b := range s.Content {
			switch b := b.(type) {
			case *Step:
				content[j] = &Step{Items: append([]Item(nil), b.Items...), Number: b.Number}
			case *TextBlock:
				tb := *b
				content[j] = &tb
			}
		}
		out.Sections[i] = Section{Name: s.Name, Content: content}
	}

	for i := range out.Ingredients {
		out.Ingredients[i].Quantity = cloneQuantity(r.Ingredients[i].Quantity)
		out.Ingredients[i].Relation.ReferencedFrom =
			append([]int(nil), r.Ingredients[i].Relation.ReferencedFrom...)
	}
	for i := range out.Cookware {
		out.Cookware[i].Quantity = cloneQuantity(r.Cookware[i].Quantity)
		out.Cookware[i].Relation.ReferencedFrom =
			append([]int(nil), r.Cookware[i].Relation.ReferencedFrom...)
	}
	for i := range out.Timers {
		out.Timers[i].Quantity = cloneQuantity(r.Timers[i].Quantity)
	}
	return out
}

func cloneQuantity(q *quantity.Quantity) *quantity.Quantity {
	if q == nil {
		return nil
	}
	c := *q
	return &c
}

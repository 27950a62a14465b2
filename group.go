package recipemark

import (
	"github.com/recipemark/recipemark/quantity"
	"github.com/recipemark/recipemark/unit"
)

// GroupedIngredient pairs an ingredient definition with the sum of its own
// quantity and every reference's quantity.
type GroupedIngredient struct {
	Index    int // into Recipe.Ingredients
	Quantity *quantity.GroupedQuantity
}

// GroupedCookware pairs a cookware definition with its grouped amounts.
type GroupedCookware struct {
	Index    int // into Recipe.Cookware
	Quantity *quantity.GroupedQuantity
}

// GroupIngredients folds every reference's quantity into its definition,
// one group per definition in document order.
func GroupIngredients(r *Recipe, conv *unit.Converter) []GroupedIngredient {
	if conv == nil {
		conv = unit.Empty()
	}
	var out []GroupedIngredient
	for i, ing := range r.Ingredients {
		if ing.Relation.IsReference {
			continue
		}
		gq := &quantity.GroupedQuantity{}
		if ing.Quantity != nil {
			gq.Add(*ing.Quantity, conv)
		}
		for _, ref := range ing.Relation.ReferencedFrom {
			if q := r.Ingredients[ref].Quantity; q != nil {
				gq.Add(*q, conv)
			}
		}
		out = append(out, GroupedIngredient{Index: i, Quantity: gq})
	}
	return out
}

// GroupCookware folds cookware references into their definitions.
func GroupCookware(r *Recipe, conv *unit.Converter) []GroupedCookware {
	if conv == nil {
		conv = unit.Empty()
	}
	var out []GroupedCookware
	for i, cw := range r.Cookware {
		if cw.Relation.IsReference {
			continue
		}
		gq := &quantity.GroupedQuantity{}
		if cw.Quantity != nil {
			gq.Add(*cw.Quantity, conv)
		}
		for _, ref := range cw.Relation.ReferencedFrom {
			if q := r.Cookware[ref].Quantity; q != nil {
				gq.Add(*q, conv)
			}
		}
		out = append(out, GroupedCookware{Index: i, Quantity: gq})
	}
	return out
}

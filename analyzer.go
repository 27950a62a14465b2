package recipemark

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/recipemark/recipemark/parser"
	"github.com/recipemark/recipemark/quantity"
	"github.com/recipemark/recipemark/report"
	"github.com/recipemark/recipemark/unit"
)

// analyze turns a parse tree into the Recipe model. Semantic violations are
// recorded as diagnostics and recovered with a best-effort substitution, so
// a model is always produced.
func analyze(src string, ast *parser.AST, exts parser.Extensions, conv *unit.Converter, rep *report.SourceReport) *Recipe {
	a := &analysis{
		src:    src,
		exts:   exts,
		conv:   conv,
		rep:    rep,
		recipe: &Recipe{},
	}

	// Metadata settles first: the mode keys change how every step below is
	// resolved.
	mb := newMetadataBuilder(exts, rep)
	mb.addFrontmatter(ast.Frontmatter, ast.FrontmatterSpan)
	for _, block := range ast.Blocks {
		if m, ok := block.(*parser.Metadata); ok {
			mb.Add(m.Key, m.Value, m.Loc)
		}
	}
	a.recipe.Metadata = mb.meta
	a.mode = mb.mode
	a.dup = mb.dup
	a.tempRE = temperatureRE(conv)

	for _, block := range ast.Blocks {
		switch b := block.(type) {
		case *parser.Metadata:
			// Already interpreted.
		case *parser.Section:
			a.closeSection()
			a.section = Section{Name: b.Name}
		case *parser.TextBlock:
			a.section.Content = append(a.section.Content, &TextBlock{Text: b.Text})
		case *parser.Step:
			a.addStep(b)
		}
	}
	a.closeSection()
	return a.recipe
}

type analysis struct {
	src  string
	exts parser.Extensions
	conv *unit.Converter
	rep  *report.SourceReport

	recipe *Recipe
	mode   defineMode
	dup    duplicateMode

	section     Section
	stepCount   int   // steps in the current section
	stepIndices []int // step number -> index in section.Content

	tempRE *regexp.Regexp
}

// closeSection pushes the section under construction. An unnamed section
// with no content (the implicit lead-in of most documents) is dropped.
func (a *analysis) closeSection() {
	if a.section.Name != "" || len(a.section.Content) > 0 {
		a.recipe.Sections = append(a.recipe.Sections, a.section)
	}
	a.section = Section{}
	a.stepCount = 0
	a.stepIndices = a.stepIndices[:0]
}

func (a *analysis) addStep(step *parser.Step) {
	switch a.mode {
	case modeText:
		a.section.Content = append(a.section.Content, &TextBlock{Text: a.stepSource(step)})
		return
	case modeComponents:
		// Components are collected; the instruction text is discarded.
		for _, item := range step.Items {
			if c, ok := item.(*parser.Component); ok {
				a.resolveComponent(c, a.stepCount+1)
			}
		}
		return
	}

	number := a.stepCount + 1
	var items []Item
	for _, item := range step.Items {
		switch it := item.(type) {
		case *parser.Text:
			items = append(items, a.textItems(it.Value)...)
		case *parser.Component:
			if ref, ok := a.resolveComponent(it, number); ok {
				items = append(items, ref)
			}
		}
	}
	if len(items) == 0 {
		return
	}
	a.stepCount = number
	a.stepIndices = append(a.stepIndices, len(a.section.Content))
	a.section.Content = append(a.section.Content, &Step{Items: items, Number: number})
}

// stepSource renders a step back to plain text for text mode: literal
// fragments keep their folded form, component markers keep their source
// spelling.
func (a *analysis) stepSource(step *parser.Step) string {
	var b strings.Builder
	for _, item := range step.Items {
		switch it := item.(type) {
		case *parser.Text:
			b.WriteString(it.Value)
		case *parser.Component:
			b.WriteString(a.src[it.Loc.Start:it.Loc.End])
		}
	}
	return b.String()
}

// textItems splits a literal fragment around inline quantities when the
// extension is enabled.
func (a *analysis) textItems(text string) []Item {
	if !a.exts.Has(parser.InlineQuantities) || a.tempRE == nil {
		return []Item{TextItem{Text: text}}
	}
	var items []Item
	rest := text
	for {
		m := a.tempRE.FindStringSubmatchIndex(rest)
		if m == nil {
			break
		}
		if lead := rest[:m[0]]; lead != "" {
			items = append(items, TextItem{Text: lead})
		}
		n, err := strconv.ParseFloat(rest[m[2]:m[3]], 64)
		if err != nil {
			items = append(items, TextItem{Text: rest[m[0]:m[1]]})
			rest = rest[m[1]:]
			continue
		}
		q := quantity.New(quantity.NewNumber(n), rest[m[4]:m[5]])
		items = append(items, InlineQuantityRef{Index: len(a.recipe.InlineQuantities)})
		a.recipe.InlineQuantities = append(a.recipe.InlineQuantities, q)
		rest = rest[m[1]:]
	}
	if rest != "" {
		items = append(items, TextItem{Text: rest})
	}
	return items
}

// temperatureRE matches a number followed by a known temperature unit, the
// inline quantity form. Longer unit spellings win over their prefixes.
func temperatureRE(conv *unit.Converter) *regexp.Regexp {
	if conv == nil {
		return nil
	}
	var keys []string
	for _, u := range conv.UnitsOf(unit.Temperature) {
		keys = append(keys, u.Keys()...)
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	for i, k := range keys {
		keys[i] = regexp.QuoteMeta(k)
	}
	return regexp.MustCompile(
		`(\d+(?:\.\d+)?)\s*(` + strings.Join(keys, "|") + `)(?:\b|$)`)
}

// resolveComponent files one component occurrence into the flat sequences
// and returns the step item pointing at it.
func (a *analysis) resolveComponent(c *parser.Component, stepNumber int) (Item, bool) {
	a.checkByServings(c)
	switch c.Kind {
	case parser.IngredientKind:
		idx := a.resolveIngredient(c, stepNumber)
		return IngredientRef{Index: idx}, true
	case parser.CookwareKind:
		idx := a.resolveCookware(c)
		return CookwareRef{Index: idx}, true
	case parser.TimerKind:
		idx := a.addTimer(c)
		return TimerRef{Index: idx}, true
	}
	return nil, false
}

// checkByServings validates a per-serving quantity against the declared
// serving figures. The quantity is kept as parsed either way; the diagnostic
// flags the mismatch.
func (a *analysis) checkByServings(c *parser.Component) {
	if c.Quantity == nil || c.Quantity.Value.Kind() != quantity.KindByServings {
		return
	}
	servings := a.recipe.Metadata.Servings
	n := len(c.Quantity.Value.ByServings())
	switch {
	case len(servings) == 0:
		a.rep.Error("analyze.servings",
			"per-serving quantity without a servings declaration",
			c.Quantity.Loc)
	case len(servings) != n:
		a.rep.Error("analyze.servings",
			fmt.Sprintf("quantity lists %d values but servings declares %d targets", n, len(servings)),
			c.Quantity.Loc)
	}
}

func (a *analysis) resolveIngredient(c *parser.Component, stepNumber int) int {
	mods := c.Modifiers
	name := c.Name
	if strings.ContainsRune(name, '/') {
		// Path-like names reference other recipe files.
		mods |= parser.ModRecipe
	}

	if mods.Has(parser.ModRef) && mods.Has(parser.ModNew) {
		a.rep.Error("analyze.reference",
			fmt.Sprintf("ingredient %q cannot be both a reference and a new definition", name),
			c.Loc)
		mods &^= parser.ModRef
	}

	if c.Intermediate != nil {
		if idx, target, ok := a.resolveIntermediate(c.Intermediate); ok {
			ing := Ingredient{
				Name:      name,
				Alias:     c.Alias,
				Note:      c.Note,
				Quantity:  modelQuantity(c.Quantity),
				Modifiers: mods,
				Relation:  referenceRelation(target, idx),
			}
			a.recipe.Ingredients = append(a.recipe.Ingredients, ing)
			return len(a.recipe.Ingredients) - 1
		}
		// Recover as a plain definition without the back-reference.
		mods &^= parser.ModRef
	}

	explicit := mods.Has(parser.ModRef)
	implicit := !mods.Has(parser.ModNew) && !explicit &&
		(a.dup == duplicateReference || a.mode == modeSteps)

	if explicit || implicit {
		if def := a.findIngredientDefinition(name); def >= 0 {
			if explicit && a.dup == duplicateReference {
				a.rep.Warn("analyze.reference",
					fmt.Sprintf("redundant \"&\" on %q: same-name occurrences already resolve as references", name),
					c.Loc)
			}
			a.checkReferenceUnits(c, a.recipe.Ingredients[def])
			mods = a.inheritModifiers(mods, a.recipe.Ingredients[def].Modifiers, c)
			ing := Ingredient{
				Name:      a.recipe.Ingredients[def].Name,
				Alias:     c.Alias,
				Note:      c.Note,
				Quantity:  modelQuantity(c.Quantity),
				Modifiers: mods,
				Relation:  referenceRelation(TargetIngredient, def),
			}
			a.recipe.Ingredients = append(a.recipe.Ingredients, ing)
			idx := len(a.recipe.Ingredients) - 1
			a.recipe.Ingredients[def].Relation.ReferencedFrom =
				append(a.recipe.Ingredients[def].Relation.ReferencedFrom, idx)
			return idx
		}
		if explicit || a.mode == modeSteps {
			a.rep.Error("analyze.reference",
				fmt.Sprintf("reference to undefined ingredient %q", name),
				c.Loc,
				"references resolve backward; define the ingredient first")
		}
		mods &^= parser.ModRef
	}

	if mods.Has(parser.ModNew) && a.dup == duplicateNew && a.mode != modeSteps {
		a.rep.Warn("analyze.reference",
			fmt.Sprintf("redundant \"+\" on %q: every occurrence is a new definition here", name),
			c.Loc)
	}

	ing := Ingredient{
		Name:      name,
		Alias:     c.Alias,
		Note:      c.Note,
		Quantity:  modelQuantity(c.Quantity),
		Modifiers: mods,
		Relation:  definitionRelation(),
	}
	a.recipe.Ingredients = append(a.recipe.Ingredients, ing)
	return len(a.recipe.Ingredients) - 1
}

// findIngredientDefinition returns the most recent prior definition with a
// matching name, or -1. Names compare case-insensitively.
func (a *analysis) findIngredientDefinition(name string) int {
	for i := len(a.recipe.Ingredients) - 1; i >= 0; i-- {
		ing := a.recipe.Ingredients[i]
		if ing.Relation.IsDefinition() && strings.EqualFold(ing.Name, name) {
			return i
		}
	}
	return -1
}

// inheritModifiers applies the definition's hidden/optional flags to a
// reference occurrence; contradicting flags on the reference are ignored
// with a warning.
func (a *analysis) inheritModifiers(mods, def Modifiers, c *parser.Component) Modifiers {
	inheritable := parser.ModHidden | parser.ModOptional
	if extra := mods & inheritable; extra != 0 && extra != def&inheritable {
		a.rep.Warn("analyze.reference",
			"modifiers on a reference are ignored; the definition's modifiers apply",
			c.Loc)
	}
	return (mods &^ inheritable) | def&inheritable | parser.ModRef
}

// checkReferenceUnits validates, under the advanced-units extension, that a
// reference quantity is convertible to the definition's unit.
func (a *analysis) checkReferenceUnits(c *parser.Component, def Ingredient) {
	if !a.exts.Has(parser.AdvancedUnits) || a.conv == nil {
		return
	}
	if c.Quantity == nil || c.Quantity.Unit == "" ||
		def.Quantity == nil || def.Quantity.Unit == "" {
		return
	}
	if !a.conv.Knows(c.Quantity.Unit) || !a.conv.Knows(def.Quantity.Unit) {
		return
	}
	if !a.conv.Compatible(c.Quantity.Unit, def.Quantity.Unit) {
		a.rep.Error("analyze.units",
			fmt.Sprintf("reference to %q uses unit %q, incompatible with the definition's %q",
				def.Name, c.Quantity.Unit, def.Quantity.Unit),
			c.Quantity.UnitSpan)
	}
}

// resolveIntermediate validates a step or section back-reference against
// the positions analyzed so far. References never point forward.
func (a *analysis) resolveIntermediate(ref *parser.IntermediateRef) (int, ReferenceTarget, bool) {
	fail := func(msg string) (int, ReferenceTarget, bool) {
		a.rep.Error("analyze.intermediate", msg, ref.Span,
			"the ingredient is kept as a plain definition")
		return 0, "", false
	}

	switch ref.Target {
	case parser.TargetStep, parser.TargetStepBack:
		number := ref.Value
		if ref.Target == parser.TargetStepBack {
			if ref.Value < 1 {
				return fail("relative step reference must point at least one step back")
			}
			number = a.stepCount + 1 - ref.Value
		}
		if number < 1 || number > a.stepCount {
			return fail(fmt.Sprintf("step reference %d is out of range; %d earlier step(s) exist in this section",
				ref.Value, a.stepCount))
		}
		return a.stepIndices[number-1], TargetStep, true
	case parser.TargetSection, parser.TargetSectionBack:
		done := len(a.recipe.Sections)
		number := ref.Value
		if ref.Target == parser.TargetSectionBack {
			if ref.Value < 1 {
				return fail("relative section reference must point at least one section back")
			}
			number = done + 1 - ref.Value
		}
		if number < 1 || number > done {
			return fail(fmt.Sprintf("section reference %d is out of range; %d earlier section(s) exist",
				ref.Value, done))
		}
		return number - 1, TargetSection, true
	}
	return fail("unknown intermediate reference target")
}

func (a *analysis) resolveCookware(c *parser.Component) int {
	mods := c.Modifiers

	if mods.Has(parser.ModRef) && mods.Has(parser.ModNew) {
		a.rep.Error("analyze.reference",
			fmt.Sprintf("cookware %q cannot be both a reference and a new definition", c.Name),
			c.Loc)
		mods &^= parser.ModRef
	}

	explicit := mods.Has(parser.ModRef)
	implicit := !mods.Has(parser.ModNew) && !explicit &&
		(a.dup == duplicateReference || a.mode == modeSteps)

	if explicit || implicit {
		if def := a.findCookwareDefinition(c.Name); def >= 0 {
			mods = a.inheritModifiers(mods, a.recipe.Cookware[def].Modifiers, c)
			cw := Cookware{
				Name:      a.recipe.Cookware[def].Name,
				Alias:     c.Alias,
				Note:      c.Note,
				Quantity:  modelQuantity(c.Quantity),
				Modifiers: mods,
				Relation:  referenceRelation(TargetCookware, def),
			}
			a.recipe.Cookware = append(a.recipe.Cookware, cw)
			idx := len(a.recipe.Cookware) - 1
			a.recipe.Cookware[def].Relation.ReferencedFrom =
				append(a.recipe.Cookware[def].Relation.ReferencedFrom, idx)
			return idx
		}
		if explicit || a.mode == modeSteps {
			a.rep.Error("analyze.reference",
				fmt.Sprintf("reference to undefined cookware %q", c.Name),
				c.Loc,
				"references resolve backward; define the cookware first")
		}
		mods &^= parser.ModRef
	}

	cw := Cookware{
		Name:      c.Name,
		Alias:     c.Alias,
		Note:      c.Note,
		Quantity:  modelQuantity(c.Quantity),
		Modifiers: mods,
		Relation:  definitionRelation(),
	}
	a.recipe.Cookware = append(a.recipe.Cookware, cw)
	return len(a.recipe.Cookware) - 1
}

func (a *analysis) findCookwareDefinition(name string) int {
	for i := len(a.recipe.Cookware) - 1; i >= 0; i-- {
		cw := a.recipe.Cookware[i]
		if cw.Relation.IsDefinition() && strings.EqualFold(cw.Name, name) {
			return i
		}
	}
	return -1
}

func (a *analysis) addTimer(c *parser.Component) int {
	timer := Timer{Name: c.Name, Quantity: modelQuantity(c.Quantity)}

	if timer.Quantity != nil && timer.Quantity.Value.Kind() == quantity.KindText {
		a.rep.Error("analyze.timer",
			fmt.Sprintf("timer value %q is not numeric", timer.Quantity.Value.Text()),
			c.Quantity.ValueSpan)
	}
	if a.exts.Has(parser.TimerRequiresTime) {
		switch {
		case timer.Quantity == nil || timer.Quantity.Unit == "":
			a.rep.Error("analyze.timer", "timer missing time unit", c.Loc)
		case a.exts.Has(parser.AdvancedUnits) && a.conv != nil && len(a.conv.Units()) > 0:
			u, err := a.conv.Lookup(timer.Quantity.Unit)
			switch {
			case err != nil:
				a.rep.Error("analyze.timer",
					fmt.Sprintf("unknown timer unit %q", timer.Quantity.Unit),
					c.Quantity.UnitSpan)
			case u.Quantity != unit.Time:
				a.rep.Error("analyze.timer",
					fmt.Sprintf("timer unit %q is not a time unit", timer.Quantity.Unit),
					c.Quantity.UnitSpan)
			}
		}
	}

	a.recipe.Timers = append(a.recipe.Timers, timer)
	return len(a.recipe.Timers) - 1
}

func modelQuantity(q *parser.Quantity) *quantity.Quantity {
	if q == nil {
		return nil
	}
	return &quantity.Quantity{Value: q.Value, Unit: q.Unit, Locked: q.Locked}
}

package recipemark

import (
	"encoding/json"
	"path"
	"strings"

	"github.com/recipemark/recipemark/parser"
	"github.com/recipemark/recipemark/quantity"
)

// Modifiers re-exports the parser's component modifier bit set so callers of
// the analyzed model rarely need the parser package.
type Modifiers = parser.Modifiers

// Extensions re-exports the parser's capability flags.
type Extensions = parser.Extensions

// Recipe is the analyzed model of one document. Ingredients, cookware,
// timers, and inline quantities live in flat ordered sequences; step items
// point into them by index, so every occurrence exists exactly once.
type Recipe struct {
	Metadata         Metadata            `json:"metadata" yaml:"metadata"`
	Sections         []Section           `json:"sections" yaml:"sections"`
	Ingredients      []Ingredient        `json:"ingredients" yaml:"ingredients"`
	Cookware         []Cookware          `json:"cookware" yaml:"cookware"`
	Timers           []Timer             `json:"timers" yaml:"timers"`
	InlineQuantities []quantity.Quantity `json:"inline_quantities,omitempty" yaml:"inline_quantities,omitempty"`
}

// Section is a titled run of blocks. The name is "" for the implicit
// leading section.
type Section struct {
	Name    string  `json:"name" yaml:"name"`
	Content []Block `json:"content" yaml:"content"`
}

// Block is one section entry: a *Step or a *TextBlock.
type Block interface {
	block()
}

// Step is a numbered instruction. Numbering is 1-based per section and
// counts steps only; text blocks in between do not advance it.
type Step struct {
	Items  []Item
	Number int
}

// TextBlock is free text between steps; it never defines components.
type TextBlock struct {
	Text string
}

func (*Step) block()      {}
func (*TextBlock) block() {}

type stepJSON struct {
	Type   string `json:"type" yaml:"type"`
	Number int    `json:"number" yaml:"number"`
	Items  []Item `json:"items" yaml:"items"`
}

func (s *Step) MarshalJSON() ([]byte, error) {
	return json.Marshal(stepJSON{"step", s.Number, s.Items})
}

func (s *Step) MarshalYAML() (any, error) {
	return stepJSON{"step", s.Number, s.Items}, nil
}

type textBlockJSON struct {
	Type string `json:"type" yaml:"type"`
	Text string `json:"text" yaml:"text"`
}

func (b *TextBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(textBlockJSON{"text", b.Text})
}

func (b *TextBlock) MarshalYAML() (any, error) {
	return textBlockJSON{"text", b.Text}, nil
}

// Item is one step fragment: a TextItem or an index reference into one of
// the recipe's flat component sequences.
type Item interface {
	item()
}

// TextItem is a literal text fragment of a step.
type TextItem struct {
	Text string
}

// IngredientRef points at Recipe.Ingredients[Index].
type IngredientRef struct {
	Index int
}

// CookwareRef points at Recipe.Cookware[Index].
type CookwareRef struct {
	Index int
}

// TimerRef points at Recipe.Timers[Index].
type TimerRef struct {
	Index int
}

// InlineQuantityRef points at Recipe.InlineQuantities[Index].
type InlineQuantityRef struct {
	Index int
}

func (TextItem) item()          {}
func (IngredientRef) item()     {}
func (CookwareRef) item()       {}
func (TimerRef) item()          {}
func (InlineQuantityRef) item() {}

type textItemJSON struct {
	Type string `json:"type" yaml:"type"`
	Text string `json:"text" yaml:"text"`
}

type refItemJSON struct {
	Type  string `json:"type" yaml:"type"`
	Index int    `json:"index" yaml:"index"`
}

func (i TextItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(textItemJSON{"text", i.Text})
}
func (i TextItem) MarshalYAML() (any, error) { return textItemJSON{"text", i.Text}, nil }

func (i IngredientRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(refItemJSON{"ingredient", i.Index})
}
func (i IngredientRef) MarshalYAML() (any, error) { return refItemJSON{"ingredient", i.Index}, nil }

func (i CookwareRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(refItemJSON{"cookware", i.Index})
}
func (i CookwareRef) MarshalYAML() (any, error) { return refItemJSON{"cookware", i.Index}, nil }

func (i TimerRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(refItemJSON{"timer", i.Index})
}
func (i TimerRef) MarshalYAML() (any, error) { return refItemJSON{"timer", i.Index}, nil }

func (i InlineQuantityRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(refItemJSON{"inline_quantity", i.Index})
}
func (i InlineQuantityRef) MarshalYAML() (any, error) {
	return refItemJSON{"inline_quantity", i.Index}, nil
}

// ReferenceTarget is what a reference relation points at.
type ReferenceTarget string

const (
	// TargetIngredient points at another entry of the same flat sequence.
	TargetIngredient ReferenceTarget = "ingredient"
	// TargetCookware points at another cookware entry.
	TargetCookware ReferenceTarget = "cookware"
	// TargetStep points at a step of the current section.
	TargetStep ReferenceTarget = "step"
	// TargetSection points at a prior section.
	TargetSection ReferenceTarget = "section"
)

// Relation ties a component occurrence to its definition. A definition
// records which later entries reference it; a reference records its target
// index, validated during analysis to lie at or before the occurrence.
type Relation struct {
	IsReference    bool            `json:"is_reference" yaml:"is_reference"`
	ReferencesTo   int             `json:"references_to" yaml:"references_to"`
	Target         ReferenceTarget `json:"target,omitempty" yaml:"target,omitempty"`
	ReferencedFrom []int           `json:"referenced_from,omitempty" yaml:"referenced_from,omitempty"`
}

func definitionRelation() Relation {
	return Relation{ReferencesTo: -1}
}

func referenceRelation(target ReferenceTarget, index int) Relation {
	return Relation{IsReference: true, Target: target, ReferencesTo: index}
}

// IsDefinition reports whether this occurrence introduces the component.
func (r Relation) IsDefinition() bool { return !r.IsReference }

// Ingredient is one ingredient occurrence.
type Ingredient struct {
	Name      string             `json:"name" yaml:"name"`
	Alias     string             `json:"alias,omitempty" yaml:"alias,omitempty"`
	Note      string             `json:"note,omitempty" yaml:"note,omitempty"`
	Quantity  *quantity.Quantity `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	Modifiers Modifiers          `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
	Relation  Relation           `json:"relation" yaml:"relation"`
}

// DisplayName is the listing name: the alias when present, otherwise the
// name with any recipe-reference path stripped to its last element.
func (i Ingredient) DisplayName() string {
	if i.Alias != "" {
		return i.Alias
	}
	if i.Modifiers.Has(parser.ModRecipe) && strings.ContainsRune(i.Name, '/') {
		return path.Base(i.Name)
	}
	return i.Name
}

// Cookware is one cookware occurrence. Cookware quantities are bare values.
type Cookware struct {
	Name      string             `json:"name" yaml:"name"`
	Alias     string             `json:"alias,omitempty" yaml:"alias,omitempty"`
	Note      string             `json:"note,omitempty" yaml:"note,omitempty"`
	Quantity  *quantity.Quantity `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	Modifiers Modifiers          `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
	Relation  Relation           `json:"relation" yaml:"relation"`
}

// DisplayName is the listing name: the alias when present, otherwise the name.
func (c Cookware) DisplayName() string {
	if c.Alias != "" {
		return c.Alias
	}
	return c.Name
}

// Timer is one timer occurrence. Anonymous timers have an empty name.
type Timer struct {
	Name     string             `json:"name,omitempty" yaml:"name,omitempty"`
	Quantity *quantity.Quantity `json:"quantity,omitempty" yaml:"quantity,omitempty"`
}

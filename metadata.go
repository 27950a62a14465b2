package recipemark

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/recipemark/recipemark/parser"
	"github.com/recipemark/recipemark/report"
)

// MetadataEntry is one raw metadata pair in document order, from the YAML
// frontmatter or a ">>" line.
type MetadataEntry struct {
	Key   string      `json:"key" yaml:"key"`
	Value string      `json:"value" yaml:"value"`
	Span  report.Span `json:"-" yaml:"-"`
}

// NameAndURL is an author or source attribution: either part may be empty,
// never both.
type NameAndURL struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	URL  string `json:"url,omitempty" yaml:"url,omitempty"`
}

// RecipeTime is the interpreted time metadata, in minutes. Either the total
// was given directly, or it is composed from prep and cook parts.
type RecipeTime struct {
	Composed bool   `json:"composed" yaml:"composed"`
	Prep     uint32 `json:"prep,omitempty" yaml:"prep,omitempty"`
	Cook     uint32 `json:"cook,omitempty" yaml:"cook,omitempty"`
	Minutes  uint32 `json:"minutes" yaml:"minutes"`
}

// Total is the total time in minutes.
func (t RecipeTime) Total() uint32 {
	if t.Composed {
		return t.Prep + t.Cook
	}
	return t.Minutes
}

// Locale is an interpreted locale key, e.g. "es-ES" or "en".
type Locale struct {
	Tag language.Tag `json:"-" yaml:"-"`
	Raw string       `json:"raw" yaml:"raw"`
}

// Metadata holds the raw ordered entries plus the canonical fields derived
// from them. A malformed canonical value produces a warning, leaves the
// field unset, and keeps the raw entry.
type Metadata struct {
	Title       string      `json:"title,omitempty" yaml:"title,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string    `json:"tags,omitempty" yaml:"tags,omitempty"`
	Author      *NameAndURL `json:"author,omitempty" yaml:"author,omitempty"`
	Source      *NameAndURL `json:"source,omitempty" yaml:"source,omitempty"`
	Course      string      `json:"course,omitempty" yaml:"course,omitempty"`
	Cuisine     string      `json:"cuisine,omitempty" yaml:"cuisine,omitempty"`
	Diet        string      `json:"diet,omitempty" yaml:"diet,omitempty"`
	Difficulty  string      `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
	Images      []string    `json:"images,omitempty" yaml:"images,omitempty"`
	Time        *RecipeTime `json:"time,omitempty" yaml:"time,omitempty"`
	Servings    []uint32    `json:"servings,omitempty" yaml:"servings,omitempty"`
	Locale      *Locale     `json:"locale,omitempty" yaml:"locale,omitempty"`

	entries []MetadataEntry
}

// All returns the raw entries in document order.
func (m *Metadata) All() []MetadataEntry { return m.entries }

type metadataJSON struct {
	Title       string          `json:"title,omitempty" yaml:"title,omitempty"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string        `json:"tags,omitempty" yaml:"tags,omitempty"`
	Author      *NameAndURL     `json:"author,omitempty" yaml:"author,omitempty"`
	Source      *NameAndURL     `json:"source,omitempty" yaml:"source,omitempty"`
	Course      string          `json:"course,omitempty" yaml:"course,omitempty"`
	Cuisine     string          `json:"cuisine,omitempty" yaml:"cuisine,omitempty"`
	Diet        string          `json:"diet,omitempty" yaml:"diet,omitempty"`
	Difficulty  string          `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
	Images      []string        `json:"images,omitempty" yaml:"images,omitempty"`
	Time        *RecipeTime     `json:"time,omitempty" yaml:"time,omitempty"`
	Servings    []uint32        `json:"servings,omitempty" yaml:"servings,omitempty"`
	Locale      *Locale         `json:"locale,omitempty" yaml:"locale,omitempty"`
	Custom      []MetadataEntry `json:"custom,omitempty" yaml:"custom,omitempty"`
}

func (m Metadata) shadow() metadataJSON {
	return metadataJSON{
		Title: m.Title, Description: m.Description, Tags: m.Tags,
		Author: m.Author, Source: m.Source,
		Course: m.Course, Cuisine: m.Cuisine, Diet: m.Diet, Difficulty: m.Difficulty,
		Images: m.Images, Time: m.Time, Servings: m.Servings, Locale: m.Locale,
		Custom: m.Custom(),
	}
}

func (m Metadata) MarshalJSON() ([]byte, error) { return json.Marshal(m.shadow()) }

func (m Metadata) MarshalYAML() (any, error) { return m.shadow(), nil }

// Get returns the last raw value recorded for key.
func (m *Metadata) Get(key string) (string, bool) {
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].Key == key {
			return m.entries[i].Value, true
		}
	}
	return "", false
}

// Custom returns the raw entries whose keys have no canonical meaning.
func (m *Metadata) Custom() []MetadataEntry {
	var out []MetadataEntry
	for _, e := range m.entries {
		if !canonicalKeys[strings.ToLower(e.Key)] {
			out = append(out, e)
		}
	}
	return out
}

var canonicalKeys = map[string]bool{
	"title": true, "description": true, "tags": true,
	"author": true, "source": true,
	"course": true, "cuisine": true, "diet": true, "difficulty": true,
	"images": true, "image": true,
	"time": true, "duration": true, "prep time": true, "cook time": true,
	"servings": true, "serves": true, "yield": true,
	"locale": true,
}

// defineMode is the document-wide analysis mode selected by the "[mode]"
// metadata key under the modes extension.
type defineMode int

const (
	modeAll defineMode = iota
	modeComponents
	modeSteps
	modeText
)

// duplicateMode controls how a component occurrence whose name matches a
// prior definition is resolved.
type duplicateMode int

const (
	duplicateNew duplicateMode = iota
	duplicateReference
)

// metadataBuilder accumulates entries and interprets canonical keys as they
// arrive, so the mode keys are settled before any step is analyzed.
type metadataBuilder struct {
	meta Metadata
	exts parser.Extensions
	rep  *report.SourceReport

	mode defineMode
	dup  duplicateMode

	prep, cook   *uint32
	timeSpan     report.Span
	servingsSeen bool
}

func newMetadataBuilder(exts parser.Extensions, rep *report.SourceReport) *metadataBuilder {
	return &metadataBuilder{exts: exts, rep: rep}
}

// addFrontmatter decodes the YAML frontmatter into ordered raw entries.
// Scalar values keep their text; sequences of scalars become comma-joined
// lists, which the canonical interpreters split back apart.
func (b *metadataBuilder) addFrontmatter(yamlText string, span report.Span) {
	if yamlText == "" {
		return
	}
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(yamlText), &doc); err != nil {
		b.rep.Warn("metadata.frontmatter", fmt.Sprintf("invalid YAML frontmatter: %v", err), span)
		return
	}
	if len(doc.Content) == 0 {
		return
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		b.rep.Warn("metadata.frontmatter", "frontmatter must be a YAML mapping", span)
		return
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		value, ok := scalarize(root.Content[i+1])
		if !ok {
			b.rep.Warn("metadata.frontmatter",
				fmt.Sprintf("metadata key %q has a nested value; only scalars and lists of scalars are supported", key),
				span)
			continue
		}
		b.Add(key, value, span)
	}
}

func scalarize(n *yaml.Node) (string, bool) {
	switch n.Kind {
	case yaml.ScalarNode:
		return n.Value, true
	case yaml.SequenceNode:
		parts := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			if item.Kind != yaml.ScalarNode {
				return "", false
			}
			parts = append(parts, item.Value)
		}
		return strings.Join(parts, ", "), true
	}
	return "", false
}

// Add records one raw entry and interprets it when the key is canonical or,
// under the modes extension, one of the special bracketed keys.
func (b *metadataBuilder) Add(key, value string, span report.Span) {
	if b.exts.Has(parser.Modes) && b.addSpecial(key, value, span) {
		return
	}
	b.meta.entries = append(b.meta.entries, MetadataEntry{Key: key, Value: value, Span: span})
	b.interpret(key, value, span)
}

// addSpecial handles "[mode]"/"[define]" and "[duplicate]". Special keys
// configure the analyzer and are not kept as raw entries.
func (b *metadataBuilder) addSpecial(key, value string, span report.Span) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "[mode]", "[define]":
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "all", "default":
			b.mode = modeAll
		case "components", "ingredients":
			b.mode = modeComponents
		case "steps":
			b.mode = modeSteps
		case "text":
			b.mode = modeText
		default:
			b.rep.Warn("metadata.mode", fmt.Sprintf("unknown mode %q", value), span,
				"expected \"all\", \"components\", \"steps\", or \"text\"")
		}
		return true
	case "[duplicate]":
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "new", "default":
			b.dup = duplicateNew
		case "reference", "ref":
			b.dup = duplicateReference
		default:
			b.rep.Warn("metadata.mode", fmt.Sprintf("unknown duplicate mode %q", value), span,
				"expected \"new\" or \"reference\"")
		}
		return true
	}
	return false
}

func (b *metadataBuilder) interpret(key, value string, span report.Span) {
	value = strings.TrimSpace(value)
	switch strings.ToLower(key) {
	case "title":
		b.meta.Title = value
	case "description":
		b.meta.Description = value
	case "tags":
		tags := splitList(value)
		if len(tags) == 0 {
			b.rep.Warn("metadata.tags", "empty tag list", span)
			return
		}
		b.meta.Tags = append(b.meta.Tags, tags...)
	case "author":
		b.meta.Author = parseNameAndURL(value)
	case "source":
		b.meta.Source = parseNameAndURL(value)
	case "course":
		b.meta.Course = value
	case "cuisine":
		b.meta.Cuisine = value
	case "diet":
		b.meta.Diet = value
	case "difficulty":
		b.meta.Difficulty = value
	case "images", "image":
		b.meta.Images = append(b.meta.Images, splitList(value)...)
	case "time", "duration":
		minutes, ok := parseMinutes(value)
		if !ok {
			b.rep.Warn("metadata.time", fmt.Sprintf("cannot interpret time %q", value), span,
				"use minutes or a composed value like \"1h 30min\"")
			return
		}
		if b.prep != nil || b.cook != nil {
			b.rep.Warn("metadata.time", "\"time\" overrides the prep/cook time entries", span)
		}
		b.meta.Time = &RecipeTime{Minutes: minutes}
		b.timeSpan = span
	case "prep time", "cook time":
		minutes, ok := parseMinutes(value)
		if !ok {
			b.rep.Warn("metadata.time", fmt.Sprintf("cannot interpret time %q", value), span,
				"use minutes or a composed value like \"1h 30min\"")
			return
		}
		if b.meta.Time != nil && !b.meta.Time.Composed {
			b.rep.Warn("metadata.time", "\"time\" overrides the prep/cook time entries", b.timeSpan)
			return
		}
		if strings.EqualFold(key, "prep time") {
			b.prep = &minutes
		} else {
			b.cook = &minutes
		}
		t := &RecipeTime{Composed: true}
		if b.prep != nil {
			t.Prep = *b.prep
		}
		if b.cook != nil {
			t.Cook = *b.cook
		}
		b.meta.Time = t
	case "servings", "serves", "yield":
		servings, err := parseServings(value)
		if err != nil {
			b.rep.Warn("metadata.servings", err.Error(), span)
			return
		}
		if b.servingsSeen {
			b.rep.Error("metadata.servings", "servings declared more than once", span)
			return
		}
		b.servingsSeen = true
		b.meta.Servings = servings
	case "locale":
		tag, err := language.Parse(strings.ReplaceAll(value, "_", "-"))
		if err != nil {
			b.rep.Warn("metadata.locale", fmt.Sprintf("cannot interpret locale %q", value), span)
			return
		}
		b.meta.Locale = &Locale{Tag: tag, Raw: value}
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var nameAndURLRE = regexp.MustCompile(`^(.*?)\s*<(.+)>$`)

// parseNameAndURL interprets "Name", "https://...", or "Name <https://...>".
func parseNameAndURL(s string) *NameAndURL {
	if s == "" {
		return nil
	}
	if m := nameAndURLRE.FindStringSubmatch(s); m != nil {
		if u, err := url.Parse(m[2]); err == nil && u.Scheme != "" && u.Host != "" {
			return &NameAndURL{Name: strings.TrimSpace(m[1]), URL: m[2]}
		}
	}
	if u, err := url.Parse(s); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return &NameAndURL{URL: s}
	}
	return &NameAndURL{Name: s}
}

var timePartRE = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([a-zA-Z]+)\s*`)

var minutesPerUnit = map[string]float64{
	"s": 1.0 / 60, "sec": 1.0 / 60, "secs": 1.0 / 60, "second": 1.0 / 60, "seconds": 1.0 / 60,
	"m": 1, "min": 1, "mins": 1, "minute": 1, "minutes": 1,
	"h": 60, "hr": 60, "hrs": 60, "hour": 60, "hours": 60,
	"d": 1440, "day": 1440, "days": 1440,
}

// parseMinutes interprets a bare number as minutes or a composed value like
// "1h 30min". The result rounds to the nearest whole minute.
func parseMinutes(s string) (uint32, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseUint(s, 10, 32); err == nil {
		return uint32(n), true
	}
	total := 0.0
	rest := s
	for rest != "" {
		m := timePartRE.FindStringSubmatch(rest)
		if m == nil {
			return 0, false
		}
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		factor, ok := minutesPerUnit[strings.ToLower(m[2])]
		if !ok {
			return 0, false
		}
		total += n * factor
		rest = strings.TrimLeft(rest[len(m[0]):], " \t,")
	}
	if total < 0 || total > 1<<31 {
		return 0, false
	}
	return uint32(total + 0.5), true
}

// parseServings interprets "4" or a multi-target form like "2|4|8".
func parseServings(s string) ([]uint32, error) {
	parts := strings.Split(s, "|")
	out := make([]uint32, 0, len(parts))
	seen := make(map[uint32]bool, len(parts))
	for _, part := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
		if err != nil || n == 0 {
			return nil, fmt.Errorf("cannot interpret servings %q", s)
		}
		v := uint32(n)
		if seen[v] {
			return nil, fmt.Errorf("duplicate servings target %d", v)
		}
		seen[v] = true
		out = append(out, v)
	}
	return out, nil
}

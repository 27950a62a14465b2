package parser

import (
	"regexp"

	"github.com/recipemark/recipemark/report"
)

// frontmatterRE matches a YAML frontmatter block at the start of a document.
// The closing "---" must appear unindented at column 0; "---" inside YAML
// block scalars is always indented, so this boundary is unambiguous without
// a YAML-aware scanner. The closing fence may also end the document.
var frontmatterRE = regexp.MustCompile(`(?s)^---[ \t]*\r?\n(.*?)\r?\n---[ \t]*(?:\r?\n|$)`)

// splitFrontmatter extracts the YAML frontmatter from src (already offset by
// base bytes into the original document). It returns the inner YAML text,
// its span, and the offset where the body starts.
func splitFrontmatter(src string, base int) (yamlText string, span report.Span, bodyStart int, found bool) {
	loc := frontmatterRE.FindStringSubmatchIndex(src)
	if loc == nil {
		return "", report.Span{}, base, false
	}
	yamlText = src[loc[2]:loc[3]]
	span = report.NewSpan(base+loc[2], base+loc[3])
	return yamlText, span, base + loc[1], true
}

package gen

import (
	"regexp"
	"strings"
)

// fenceRegex matches a fenced code block with optional language tag,
// capturing the content between the fences.
var fenceRegex = regexp.MustCompile("(?s)```[a-zA-Z0-9_+-]*[ \t]*\n(.*?)```")

// declRegex recognizes the start of real content: a declaration or
// definition keyword at the beginning of a line. Covers the languages the
// agents emit (Java/Kotlin style, Go, Python).
var declRegex = regexp.MustCompile(`(?m)^[ \t]*(?:package|import|public|private|protected|static|final|abstract|class|interface|enum|record|struct|func|def|type|const|var|void|@[A-Za-z]\w*)\b`)

// Clean strips model chatter from a raw response. When fenced code blocks
// exist it returns the longest one: the longest block is the primary
// content, shorter blocks are asides or examples. Without fences it trims
// everything before the first declaration-like line, dropping leading
// comment-only preamble.
func Clean(raw string) string {
	matches := fenceRegex.FindAllStringSubmatch(raw, -1)
	if len(matches) > 0 {
		longest := ""
		for _, m := range matches {
			if len(m[1]) > len(longest) {
				longest = m[1]
			}
		}
		return strings.TrimSpace(longest)
	}

	if loc := declRegex.FindStringIndex(raw); loc != nil {
		return strings.TrimSpace(raw[loc[0]:])
	}
	return strings.TrimSpace(raw)
}

// ContainsDefinition reports whether cleaned output defines the named
// marker: the marker must appear as a word on a line that looks like a
// declaration. A marker merely mentioned in prose or a comment does not
// count.
func ContainsDefinition(text, marker string) bool {
	if marker == "" {
		return true
	}
	word := regexp.MustCompile(`\b` + regexp.QuoteMeta(marker) + `\b`)
	for _, line := range strings.Split(text, "\n") {
		if word.MatchString(line) && declRegex.MatchString(line) {
			return true
		}
	}
	return false
}

// HasStructuralMarker reports whether text contains any declaration-like
// line at all. This is the baseline bar for output accepted during the
// relaxation pass, when no expected marker is enforced.
func HasStructuralMarker(text string) bool {
	return declRegex.MatchString(text)
}

package mermaid

import (
	"strings"
	"unicode"
)

// entities replaces characters that end a quoted label, start an edge
// label, or are read as markup.
var entities = map[rune]string{
	'#': "#35;",
	'"': "#quot;",
	'|': "#124;",
	'<': "#lt;",
	'>': "#gt;",
	'`': "#96;",
}

// Escape makes s safe inside a double-quoted Mermaid label. Control
// characters, newlines included, become a space.
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if e, ok := entities[r]; ok {
			b.WriteString(e)
			continue
		}
		if unicode.IsControl(r) {
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// lineBreak separates label lines. It is inserted after escaping.
const lineBreak = "<br/>"

func joinLines(lines []string) string {
	escaped := make([]string, len(lines))
	for i, l := range lines {
		escaped[i] = Escape(l)
	}
	return strings.Join(escaped, lineBreak)
}

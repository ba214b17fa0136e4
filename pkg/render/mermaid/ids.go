package mermaid

import (
	"strconv"
	"strings"
)

// keywords cannot be used as bare node identifiers.
var keywords = map[string]bool{
	"end": true, "graph": true, "subgraph": true, "style": true,
	"class": true, "classDef": true, "click": true, "linkStyle": true,
	"flowchart": true, "direction": true, "default": true,
}

// Reserved synthetic identifiers.
const (
	truncatedID = "truncated_packages"
	legendID    = "legend"
)

var legendIDs = []string{"legend_document", "legend_package", "legend_file", "legend_snippet"}

// Sanitize maps an SPDX identifier to the Mermaid identifier alphabet
// [A-Za-z0-9_]. It is not injective; [idAllocator] adds suffixes.
func Sanitize(id string) string {
	s := strings.TrimPrefix(id, "SPDXRef-")
	if rest, ok := strings.CutPrefix(s, "DocumentRef-"); ok {
		if doc, elem, found := strings.Cut(rest, ":"); found {
			s = doc + "_" + strings.TrimPrefix(elem, "SPDXRef-")
		}
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if out == "" || (out[0] >= '0' && out[0] <= '9') {
		out = "n_" + out
	}
	if keywords[out] {
		out += "_"
	}
	return out
}

// idAllocator assigns each SPDX identifier a distinct node identifier.
type idAllocator struct {
	byID  map[string]string
	taken map[string]bool
}

func newIDAllocator() *idAllocator {
	a := &idAllocator{byID: make(map[string]string), taken: make(map[string]bool)}
	a.taken[truncatedID] = true
	a.taken[legendID] = true
	for _, id := range legendIDs {
		a.taken[id] = true
	}
	return a
}

// get returns the node identifier of id, allocating one on first use.
func (a *idAllocator) get(id string) string {
	if n, ok := a.byID[id]; ok {
		return n
	}
	base := Sanitize(id)
	n := base
	for i := 2; a.taken[n]; i++ {
		n = base + "_" + strconv.Itoa(i)
	}
	a.taken[n] = true
	a.byID[id] = n
	return n
}

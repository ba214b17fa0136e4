package mermaid

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/spdx2mermaid/pkg/render"
	"github.com/matzehuels/spdx2mermaid/pkg/render/label"
	"github.com/matzehuels/spdx2mermaid/pkg/sbom"
)

const indent = "    "

// Stats describes what a rendered diagram contains.
type Stats struct {
	Nodes        int `json:"nodes"`         // element nodes drawn
	Edges        int `json:"edges"`         // relationship edges drawn
	Unresolved   int `json:"unresolved"`    // placeholder nodes drawn
	Truncated    int `json:"truncated"`     // packages collapsed into the truncation node
	Redirected   int `json:"redirected"`    // edges drawn to or from the truncation node
	OmittedEdges int `json:"omitted_edges"` // relationships dropped for a missing endpoint
}

// Render returns the Mermaid flowchart of m.
//
// The output is a pure function of m and opts. It fails only with an
// *errors.RenderError for invalid options.
func Render(m *sbom.Model, opts Options) (string, error) {
	out, _, err := RenderStats(m, opts)
	return out, err
}

// RenderStats is [Render] that also reports diagram statistics.
func RenderStats(m *sbom.Model, opts Options) (string, Stats, error) {
	if err := opts.Validate(); err != nil {
		return "", Stats{}, err
	}
	p := plan(m, opts)

	var b strings.Builder
	fmt.Fprintf(&b, "graph %s\n", opts.direction())

	labelOpts := label.Options{Compact: opts.Compact, ExcludeExternalRefs: opts.ExcludeExternalRefs}
	b.WriteString(indent + "%% Elements\n")
	for _, el := range p.elements {
		id := p.ids.get(el.ElementID())
		writeNode(&b, id, joinLines(label.Lines(el, labelOpts)), render.StyleFor(el.Kind()))
	}

	if p.truncated > 0 {
		text := "+" + strconv.Itoa(p.truncated) + " more packages truncated"
		b.WriteString("\n" + indent + "%% Truncated packages\n")
		writeNode(&b, truncatedID, joinLines([]string{text}), render.TruncatedStyle)
		fmt.Fprintf(&b, "%s%s -.-> %s\n", indent, p.ids.get(sbom.DocumentID), truncatedID)
	}

	if len(p.unresolved) > 0 {
		b.WriteString("\n" + indent + "%% Unresolved references\n")
		for _, id := range p.unresolved {
			writeNode(&b, p.ids.get(id), joinLines([]string{"[Unresolved]", "ID: " + id}), render.UnresolvedStyle)
		}
	}

	b.WriteString("\n" + indent + "%% Relationships\n")
	for _, e := range p.edges {
		text := Escape(e.typ)
		if !opts.Compact && e.comment != "" {
			text += lineBreak + Escape(label.Clip(e.comment, 50))
		}
		fmt.Fprintf(&b, "%s%s -->|\"%s\"| %s\n", indent, e.from, text, e.to)
	}

	b.WriteString("\n")
	writeLegend(&b)

	stats := Stats{
		Nodes:        len(p.elements),
		Edges:        len(p.edges),
		Unresolved:   len(p.unresolved),
		Truncated:    p.truncated,
		Redirected:   p.redirected,
		OmittedEdges: p.omitted,
	}
	return b.String(), stats, nil
}

func writeNode(b *strings.Builder, id, text string, s render.Style) {
	fmt.Fprintf(b, "%s%s[\"%s\"]\n", indent, id, text)
	fmt.Fprintf(b, "%sstyle %s %s\n", indent, id, styleAttrs(s))
}

func styleAttrs(s render.Style) string {
	attrs := "fill:" + s.Fill + ",stroke:" + s.Stroke + ",stroke-width:" + s.Width
	if s.Dashed {
		attrs += ",stroke-dasharray: 5 5"
	}
	return attrs
}

var legendKinds = []sbom.Kind{sbom.KindDocument, sbom.KindPackage, sbom.KindFile, sbom.KindSnippet}

// writeLegend emits the color key. It never depends on the document.
func writeLegend(b *strings.Builder) {
	b.WriteString(indent + "%% Legend\n")
	fmt.Fprintf(b, "%ssubgraph %s[\"Legend\"]\n", indent, legendID)
	for i, k := range legendKinds {
		fmt.Fprintf(b, "%s%s%s[\"%s\"]\n", indent, indent, legendIDs[i], k)
	}
	b.WriteString(indent + "end\n")
	for i, k := range legendKinds {
		fmt.Fprintf(b, "%sstyle %s %s\n", indent, legendIDs[i], styleAttrs(render.StyleFor(k)))
	}
}

type edge struct {
	from, to, typ, comment string
}

// layout is the resolved content of a diagram.
type layout struct {
	ids        *idAllocator
	elements   []sbom.Element
	unresolved []string
	edges      []edge
	truncated  int
	redirected int
	omitted    int
}

func plan(m *sbom.Model, opts Options) *layout {
	p := &layout{ids: newIDAllocator()}

	dropped := make(map[string]bool)
	packages := m.Packages()
	if opts.MaxPackages != nil && *opts.MaxPackages < len(packages) {
		for _, pkg := range packages[*opts.MaxPackages:] {
			dropped[pkg.ID] = true
		}
		p.truncated = len(packages) - *opts.MaxPackages
	}
	for _, el := range m.Elements() {
		if el.Kind() == sbom.KindPackage && dropped[el.ElementID()] {
			continue
		}
		p.elements = append(p.elements, el)
		p.ids.get(el.ElementID())
	}

	placeholders := make(map[string]bool)
	resolve := func(id string) (string, bool) {
		if m.Has(id) {
			return p.ids.get(m.Canonical(id)), true
		}
		if opts.Unresolved == UnresolvedOmit {
			return "", false
		}
		if !placeholders[id] {
			placeholders[id] = true
			p.unresolved = append(p.unresolved, id)
		}
		return p.ids.get(id), true
	}

	for _, r := range m.Relationships() {
		from, to := m.Canonical(r.From), m.Canonical(r.To)
		var src, dst string
		var ok bool
		if dropped[from] {
			src = truncatedID
		} else if src, ok = resolve(from); !ok {
			p.omitted++
			continue
		}
		if dropped[to] {
			dst = truncatedID
		} else if dst, ok = resolve(to); !ok {
			p.omitted++
			continue
		}
		if dropped[from] || dropped[to] {
			p.redirected++
		}
		p.edges = append(p.edges, edge{from: src, to: dst, typ: r.Type, comment: r.Comment})
	}
	return p
}

package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/spdx2mermaid/pkg/render"
	"github.com/matzehuels/spdx2mermaid/pkg/render/label"
	"github.com/matzehuels/spdx2mermaid/pkg/sbom"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Label selects the attributes shown in node labels.
	Label label.Options

	// LeftToRight lays the graph out horizontally.
	LeftToRight bool

	// OmitUnresolved drops relationships whose endpoint is not an element.
	// When false, missing endpoints are drawn as dashed grey nodes.
	OmitUnresolved bool
}

// ToDOT converts a model to Graphviz DOT format for node-link visualization.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
//
// Nodes are keyed by SPDX identifier and filled with the kind colors from
// [render.StyleFor].
func ToDOT(m *sbom.Model, opts Options) string {
	rankdir := "TB"
	if opts.LeftToRight {
		rankdir = "LR"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\", fontsize=12, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, el := range m.Elements() {
		text := strings.Join(label.Lines(el, opts.Label), "\n")
		fmt.Fprintf(&buf, "  %q [%s];\n", el.ElementID(), strings.Join(fmtAttrs(text, render.StyleFor(el.Kind())), ", "))
	}

	if !opts.OmitUnresolved {
		for _, id := range m.Unresolved() {
			text := "[Unresolved]\nID: " + id
			fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(fmtAttrs(text, render.UnresolvedStyle), ", "))
		}
	}

	buf.WriteString("\n")
	for _, r := range m.Relationships() {
		from, to := m.Canonical(r.From), m.Canonical(r.To)
		if opts.OmitUnresolved && (!m.Has(from) || !m.Has(to)) {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", from, to, r.Type)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(text string, s render.Style) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", text),
		fmt.Sprintf("fillcolor=%q", s.Fill),
		fmt.Sprintf("color=%q", s.Stroke),
		"penwidth=" + strings.TrimSuffix(s.Width, "px"),
	}
	if s.Dashed {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	return attrs
}

// RenderSVG lays out dot with the embedded Graphviz and returns SVG with
// an origin-anchored viewBox.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("graphviz: %w", err)
	}
	defer gv.Close()

	graph, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("graphviz: parse: %w", err)
	}
	defer graph.Close()

	var svg bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.SVG, &svg); err != nil {
		return nil, fmt.Errorf("graphviz: layout: %w", err)
	}
	return anchorViewBox(svg.Bytes()), nil
}

var (
	svgRootRe = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// anchorViewBox replaces the root element with one whose viewBox starts at
// the origin and whose pixel size matches it. Graphviz offsets the origin,
// which breaks rsvg scaling.
func anchorViewBox(svg []byte) []byte {
	m := viewBoxRe.FindSubmatch(svg)
	if m == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(m[3]), 64)
	h, _ := strconv.ParseFloat(string(m[4]), 64)
	if w <= 0 || h <= 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgRootRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders dot to SVG and converts it with rsvg-convert.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG is RenderPDF for PNG output at the given scale.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}

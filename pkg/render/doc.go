// Package render holds what the diagram renderers share.
//
// # Styles
//
// [StyleFor] maps an element kind to its node [Style]. The Mermaid and
// Graphviz renderers both draw from this palette, so a package is purple
// in every output format. [UnresolvedStyle] and [TruncatedStyle] are used
// for synthetic nodes.
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert an SVG to other formats using the external
// rsvg-convert tool (from librsvg). The converter process is killed when
// ctx is done:
//
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// # Subpackages
//
//   - [mermaid]: Mermaid flowchart text
//   - [nodelink]: Graphviz DOT and SVG
//   - [label]: node label lines used by both
//
// [mermaid]: github.com/matzehuels/spdx2mermaid/pkg/render/mermaid
// [nodelink]: github.com/matzehuels/spdx2mermaid/pkg/render/nodelink
// [label]: github.com/matzehuels/spdx2mermaid/pkg/render/label
package render

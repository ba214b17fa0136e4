// Package nodelink renders SPDX models as Graphviz node-link diagrams.
//
// # Overview
//
// This is the image counterpart of the Mermaid renderer. Nodes carry the
// same labels and kind colors, so a diagram exported as SVG matches the
// Mermaid text for the same document.
//
// # Usage
//
// Convert a model to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(m, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink

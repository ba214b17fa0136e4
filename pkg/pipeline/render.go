package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	pkgio "github.com/matzehuels/spdx2mermaid/pkg/io"
	"github.com/matzehuels/spdx2mermaid/pkg/observability"
	"github.com/matzehuels/spdx2mermaid/pkg/render/mermaid"
	"github.com/matzehuels/spdx2mermaid/pkg/render/nodelink"
	"github.com/matzehuels/spdx2mermaid/pkg/sbom"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Render produces opts.Format output for m without caching. Diagram
// statistics are reported for the Mermaid formats only.
func Render(ctx context.Context, m *sbom.Model, opts Options) ([]byte, mermaid.Stats, error) {
	start := time.Now()
	observability.Convert().OnRenderStart(ctx, opts.Format, m.NodeCount())

	data, stats, err := render(ctx, m, opts)

	observability.Convert().OnRenderComplete(ctx, opts.Format, len(data), time.Since(start), err)
	return data, stats, err
}

func render(ctx context.Context, m *sbom.Model, opts Options) ([]byte, mermaid.Stats, error) {
	switch opts.Format {
	case FormatMermaid:
		out, stats, err := mermaid.RenderStats(m, opts.MermaidOptions())
		return []byte(out), stats, err
	case FormatMarkdown:
		out, stats, err := mermaid.RenderStats(m, opts.MermaidOptions())
		if err != nil {
			return nil, stats, err
		}
		return []byte(fence(out)), stats, nil
	case FormatDOT:
		return []byte(nodelink.ToDOT(m, opts.NodelinkOptions())), mermaid.Stats{}, nil
	case FormatSVG, FormatPNG, FormatPDF:
		data, err := renderGraphviz(ctx, m, opts)
		if err != nil {
			return nil, mermaid.Stats{}, fmt.Errorf("render %s: %w", opts.Format, err)
		}
		return data, mermaid.Stats{}, nil
	case FormatJSON:
		var buf bytes.Buffer
		if err := pkgio.WriteJSON(m, &buf); err != nil {
			return nil, mermaid.Stats{}, fmt.Errorf("render json: %w", err)
		}
		return buf.Bytes(), mermaid.Stats{}, nil
	}
	return nil, mermaid.Stats{}, ValidateFormat(opts.Format)
}

func renderGraphviz(ctx context.Context, m *sbom.Model, opts Options) ([]byte, error) {
	dot := nodelink.ToDOT(m, opts.NodelinkOptions())
	switch opts.Format {
	case FormatPNG:
		return nodelink.RenderPNG(ctx, dot, opts.Scale)
	case FormatPDF:
		return nodelink.RenderPDF(ctx, dot)
	}
	return nodelink.RenderSVG(ctx, dot)
}

// fence wraps a diagram in a Markdown mermaid code block.
func fence(diagram string) string {
	if !strings.HasSuffix(diagram, "\n") {
		diagram += "\n"
	}
	return "```mermaid\n" + diagram + "```\n"
}

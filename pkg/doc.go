// Package pkg provides the libraries behind spdx2mermaid.
//
// # Overview
//
// spdx2mermaid reads an SPDX document and draws its elements and
// relationships as a Mermaid flowchart. The pkg directory is organized
// by stage:
//
//  1. [spdx] - format detection and decoding (JSON, YAML, XML, RDF/XML, tag-value)
//  2. [sbom] - the normalized document model
//  3. [render] - Mermaid and Graphviz renderers sharing one label and palette
//  4. [pipeline] - orchestration (load → render) with caching
//  5. [server] - browser viewer and conversion API
//
// # Architecture
//
// The typical data flow:
//
//	SPDX file (any serialization)
//	         ↓
//	    [spdx] package (detect + decode)
//	         ↓
//	    [sbom] package (elements, relationships, unresolved references)
//	         ↓
//	    [render/mermaid] or [render/nodelink]
//	         ↓
//	    Mermaid/Markdown/DOT/SVG/PNG/PDF output
//
// # Quick Start
//
//	data, _ := os.ReadFile("sbom.spdx.json")
//	m, format, err := spdx.Load(data, "sbom.spdx.json")
//	if err != nil {
//	    return err
//	}
//	text, err := mermaid.Render(m, mermaid.Options{Compact: true})
//
// For caching and output formats other than Mermaid, use [pipeline.Runner]:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	res, err := runner.Convert(ctx, data, pipeline.Options{Format: pipeline.FormatSVG})
//
// # Supporting Packages
//
//   - [cache] - file, memory, Redis and null caches with TTLs and key derivation
//   - [errors] - error codes and typed conversion errors
//   - [io] - JSON import/export of the normalized model
//   - [observability] - hooks for logging and metrics
//   - [buildinfo] - version information set at link time
package pkg

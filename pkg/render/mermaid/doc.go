// Package mermaid renders an [sbom.Model] as a Mermaid flowchart.
//
// # Output
//
// [Render] writes, in order: the graph header, one node and style line per
// element, the truncation node when packages were capped, placeholder
// nodes for unresolved references, one edge per relationship, and a fixed
// legend:
//
//	graph TD
//	    %% Elements
//	    DOCUMENT["[Document]<br/>Name: ExampleSBOM<br/>Version: SPDX-2.3"]
//	    style DOCUMENT fill:#e1f5ff,stroke:#01579b,stroke-width:3px
//	    left_pad["[Package]<br/>Name: left-pad<br/>Version: 1.3.0<br/>License: MIT"]
//	    style left_pad fill:#f3e5f5,stroke:#4a148c,stroke-width:2px
//
//	    %% Relationships
//	    DOCUMENT -->|"DESCRIBES"| left_pad
//
// Identical models and options always produce identical bytes.
//
// # Identifiers
//
// [Sanitize] maps SPDX identifiers to the [A-Za-z0-9_] alphabet. Distinct
// elements that sanitize to the same identifier get _2, _3, ... suffixes
// in element order, and the synthetic truncated_packages and legend_*
// identifiers are never handed out to elements.
//
// # Escaping
//
// [Escape] replaces #, ", |, <, > and backticks with Mermaid entity codes
// and control characters with spaces. Label lines are joined with <br/>
// after escaping, so no document content can produce markup.
//
// # Truncation
//
// With [Options.MaxPackages] set to N, only the first N packages are drawn.
// Relationships touching a dropped package point at a single
// truncated_packages node instead, one edge per relationship. Relationships
// between two dropped packages become a self-edge on that node.
package mermaid

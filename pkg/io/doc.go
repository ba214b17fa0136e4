// Package io provides JSON import and export for SPDX models.
//
// # Overview
//
// The JSON form is a flat, serialization-independent snapshot of an
// [sbom.Model]: whichever SPDX syntax a document came from, its export
// looks the same. It is used for the CLI's json output format and for
// caching parsed models.
//
// # JSON Format
//
//	{
//	  "document": {"name": "ExampleSBOM", "spdxVersion": "SPDX-2.3"},
//	  "packages": [
//	    {"id": "SPDXRef-left-pad", "name": "left-pad", "version": "1.3.0"}
//	  ],
//	  "files": [],
//	  "snippets": [],
//	  "relationships": [
//	    {"from": "SPDXRef-DOCUMENT", "to": "SPDXRef-left-pad", "type": "DESCRIBES"}
//	  ]
//	}
//
// Optional attributes are omitted when empty. An "unresolved" array lists
// relationship endpoints that match no element.
//
// # Import
//
// Use [ImportJSON] to read a model from a file path, or [ReadJSON] to read
// from any io.Reader. Duplicate identifiers fail the same way they do when
// loading an SPDX document.
//
// # Export
//
// Use [ExportJSON] to write a model to a file, or [WriteJSON] to write to
// any io.Writer. Element and relationship order is preserved, so
// WriteJSON(ReadJSON(WriteJSON(m))) reproduces the first output.
package io

// Package sbom provides the normalized, serialization-independent model of
// an SPDX document.
//
// # Overview
//
// A [Model] holds exactly one [Document], the document's packages, files and
// snippets, and the typed relationships between them. Every SPDX input
// format decodes into the same model, so renderers never see
// serialization-specific field names.
//
// # Building a Model
//
// Models are assembled once with a [Builder] and are read-only afterwards:
//
//	b := sbom.NewBuilder(sbom.Document{Name: "ExampleSBOM", SPDXVersion: "SPDX-2.3"})
//	if err := b.AddPackage(sbom.Package{ID: "SPDXRef-left-pad", Name: "left-pad"}); err != nil {
//	    return err // *errors.ModelError on duplicate identifiers
//	}
//	b.AddRelationship(sbom.Relationship{From: sbom.DocumentID, To: "SPDXRef-left-pad", Type: "DESCRIBES"})
//	m := b.Build()
//
// # Identifiers
//
// Identifiers are unique across all element kinds. The document's identifier
// is always [DocumentID]; any other identifier the source declared for the
// document is kept as an alias and resolves to the document through
// [Model.Node] and [Model.Canonical].
//
// Relationship endpoints are not required to resolve. A reference to an
// identifier that does not exist in the model is kept verbatim and reported
// by [Model.Unresolved], leaving the presentation decision to renderers.
//
// # Ordering
//
// Per-kind insertion order is preserved. All list accessors return elements
// in the order they were added, and return copies so callers cannot modify
// the model.
package sbom

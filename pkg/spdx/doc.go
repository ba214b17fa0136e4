// Package spdx loads SPDX documents into an [sbom.Model].
//
// # Serializations
//
// Five serializations are supported:
//
//   - JSON, for both SPDX 2.x and SPDX 3.x JSON-LD
//   - YAML, with the same field names as JSON
//   - plain XML, with repeated elements for lists
//   - RDF/XML, read with github.com/spdx/tools-golang/rdf
//   - tag-value, the line-oriented "Tag: value" form
//
// [Detect] picks the serialization from content. A filename is only a hint:
// a document named "sbom.json" that holds tag-value text is still read as
// tag-value.
//
// # Normalization
//
// Every decoder produces the same model for the same logical document.
// Package file lists (hasFiles, or files following a package in
// tag-value) become CONTAINS relationships, documentDescribes and 3.x
// rootElement entries become DESCRIBES relationships from
// [sbom.DocumentID], and the document's own SPDXID is recorded as an
// alias. Creation timestamps without a zone designator get a trailing
// "Z". Elements without an identifier receive a synthetic one of the form
// SPDXRef-anonymous-<kind>-<n>.
//
// # Errors
//
// [Load] returns *errors.FormatError for unrecognized or unparsable input
// and *errors.ModelError for duplicate identifiers.
//
//	m, format, err := spdx.Load(data, "sbom.spdx.json")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(format, m.NodeCount())
package spdx

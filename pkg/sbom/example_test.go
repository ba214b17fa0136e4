package sbom_test

import (
	"fmt"

	"github.com/matzehuels/spdx2mermaid/pkg/sbom"
)

func ExampleBuilder() {
	b := sbom.NewBuilder(sbom.Document{Name: "ExampleSBOM", SPDXVersion: "SPDX-2.3"})
	_ = b.AddPackage(sbom.Package{ID: "SPDXRef-left-pad", Name: "left-pad", Version: "1.3.0"})
	_ = b.AddPackage(sbom.Package{ID: "SPDXRef-is-array", Name: "is-array", Version: "2.0.0"})
	b.AddRelationship(sbom.Relationship{From: sbom.DocumentID, To: "SPDXRef-left-pad", Type: "DESCRIBES"})
	b.AddRelationship(sbom.Relationship{From: "SPDXRef-left-pad", To: "SPDXRef-is-array", Type: "DEPENDS_ON"})
	m := b.Build()

	for _, el := range m.Elements() {
		fmt.Println(el.Kind(), el.ElementID())
	}
	fmt.Println(len(m.RelationshipsOfType("DEPENDS_ON")), "dependency")
	// Output:
	// Document SPDXRef-DOCUMENT
	// Package SPDXRef-left-pad
	// Package SPDXRef-is-array
	// 1 dependency
}

func ExampleModel_Unresolved() {
	b := sbom.NewBuilder(sbom.Document{Name: "doc"})
	b.AddRelationship(sbom.Relationship{From: sbom.DocumentID, To: "SPDXRef-gone", Type: "DESCRIBES"})
	fmt.Println(b.Build().Unresolved())
	// Output: [SPDXRef-gone]
}

package mermaid_test

import (
	"fmt"

	"github.com/matzehuels/spdx2mermaid/pkg/render/mermaid"
	"github.com/matzehuels/spdx2mermaid/pkg/sbom"
)

func ExampleRender() {
	b := sbom.NewBuilder(sbom.Document{Name: "ExampleSBOM", SPDXVersion: "SPDX-2.3"})
	_ = b.AddPackage(sbom.Package{ID: "SPDXRef-left-pad", Name: "left-pad", Version: "1.3.0", LicenseConcluded: "MIT"})
	b.AddRelationship(sbom.Relationship{From: sbom.DocumentID, To: "SPDXRef-left-pad", Type: "DESCRIBES"})

	out, err := mermaid.Render(b.Build(), mermaid.Options{Compact: true})
	if err != nil {
		panic(err)
	}
	fmt.Print(out)
	// Output:
	// graph TD
	//     %% Elements
	//     DOCUMENT["[Document]<br/>Name: ExampleSBOM<br/>Version: SPDX-2.3"]
	//     style DOCUMENT fill:#e1f5ff,stroke:#01579b,stroke-width:3px
	//     left_pad["[Package]<br/>Name: left-pad<br/>Version: 1.3.0<br/>License: MIT"]
	//     style left_pad fill:#f3e5f5,stroke:#4a148c,stroke-width:2px
	//
	//     %% Relationships
	//     DOCUMENT -->|"DESCRIBES"| left_pad
	//
	//     %% Legend
	//     subgraph legend["Legend"]
	//         legend_document["Document"]
	//         legend_package["Package"]
	//         legend_file["File"]
	//         legend_snippet["Snippet"]
	//     end
	//     style legend_document fill:#e1f5ff,stroke:#01579b,stroke-width:3px
	//     style legend_package fill:#f3e5f5,stroke:#4a148c,stroke-width:2px
	//     style legend_file fill:#e8f5e9,stroke:#1b5e20,stroke-width:2px
	//     style legend_snippet fill:#fff3e0,stroke:#e65100,stroke-width:2px
}

func ExampleSanitize() {
	fmt.Println(mermaid.Sanitize("SPDXRef-Package-npm-left-pad"))
	fmt.Println(mermaid.Sanitize("DocumentRef-ext:SPDXRef-lib"))
	fmt.Println(mermaid.Sanitize("SPDXRef-end"))
	// Output:
	// Package_npm_left_pad
	// ext_lib
	// end_
}

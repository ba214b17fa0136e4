package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/spdx2mermaid/pkg/render/label"
	"github.com/matzehuels/spdx2mermaid/pkg/sbom"
)

func sample() *sbom.Model {
	b := sbom.NewBuilder(sbom.Document{Name: "ExampleSBOM", SPDXVersion: "SPDX-2.3"})
	_ = b.AddPackage(sbom.Package{ID: "SPDXRef-left-pad", Name: "left-pad", Version: "1.3.0", LicenseConcluded: "MIT"})
	b.AddRelationship(sbom.Relationship{From: sbom.DocumentID, To: "SPDXRef-left-pad", Type: "DESCRIBES"})
	b.AddRelationship(sbom.Relationship{From: "SPDXRef-left-pad", To: "SPDXRef-gone", Type: "DEPENDS_ON"})
	return b.Build()
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sample(), Options{Label: label.Options{Compact: true}})

	for _, want := range []string{
		"digraph G {",
		"rankdir=TB;",
		`"SPDXRef-DOCUMENT" [label="[Document]\nName: ExampleSBOM\nVersion: SPDX-2.3", fillcolor="#e1f5ff", color="#01579b", penwidth=3];`,
		`"SPDXRef-left-pad" [label="[Package]\nName: left-pad\nVersion: 1.3.0\nLicense: MIT", fillcolor="#f3e5f5", color="#4a148c", penwidth=2];`,
		`"SPDXRef-gone" [label="[Unresolved]\nID: SPDXRef-gone"`,
		`"SPDXRef-DOCUMENT" -> "SPDXRef-left-pad" [label="DESCRIBES"];`,
		`"SPDXRef-left-pad" -> "SPDXRef-gone" [label="DEPENDS_ON"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
}

func TestToDOTOptions(t *testing.T) {
	dot := ToDOT(sample(), Options{LeftToRight: true, OmitUnresolved: true})
	if !strings.Contains(dot, "rankdir=LR;") {
		t.Error("LeftToRight not applied")
	}
	if strings.Contains(dot, "SPDXRef-gone") {
		t.Errorf("unresolved endpoint rendered:\n%s", dot)
	}
}

func TestAnchorViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.50 200.25" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(anchorViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.50 200.25" width="100" height="200"><g/></svg>`
	if got != want {
		t.Errorf("anchorViewBox = %s, want %s", got, want)
	}
	if got := anchorViewBox([]byte("<svg></svg>")); string(got) != "<svg></svg>" {
		t.Errorf("no viewBox changed input: %s", got)
	}
}

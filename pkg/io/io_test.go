package io

import (
	"bytes"
	stderrors "errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/spdx2mermaid/pkg/errors"
	"github.com/matzehuels/spdx2mermaid/pkg/sbom"
)

func sample(t *testing.T) *sbom.Model {
	t.Helper()
	yes := true
	b := sbom.NewBuilder(sbom.Document{Name: "ExampleSBOM", SPDXVersion: "SPDX-2.3", Creators: []string{"Tool: test"}})
	if err := b.AddAlias("SPDXRef-ROOT"); err != nil {
		t.Fatal(err)
	}
	if err := b.AddPackage(sbom.Package{
		ID: "SPDXRef-left-pad", Name: "left-pad", Version: "1.3.0", LicenseConcluded: "MIT",
		FilesAnalyzed: &yes,
		Checksums:     []sbom.Checksum{{Algorithm: "SHA1", Value: "abc"}},
		ExternalRefs:  []sbom.ExternalRef{{Category: "PACKAGE-MANAGER", Type: "purl", Locator: "pkg:npm/left-pad@1.3.0"}},
	}); err != nil {
		t.Fatal(err)
	}
	if err := b.AddFile(sbom.File{ID: "SPDXRef-index", Name: "./index.js", LicenseInfo: []string{"MIT"}}); err != nil {
		t.Fatal(err)
	}
	if err := b.AddSnippet(sbom.Snippet{ID: "SPDXRef-snip", FileID: "SPDXRef-index", LineRange: sbom.Range{Start: 1, End: 4}}); err != nil {
		t.Fatal(err)
	}
	b.AddRelationship(sbom.Relationship{From: sbom.DocumentID, To: "SPDXRef-left-pad", Type: "DESCRIBES"})
	b.AddRelationship(sbom.Relationship{From: "SPDXRef-left-pad", To: "SPDXRef-missing", Type: "DEPENDS_ON", Comment: "gone"})
	return b.Build()
}

func TestRoundTrip(t *testing.T) {
	m := sample(t)
	var first bytes.Buffer
	if err := WriteJSON(m, &first); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if !strings.Contains(first.String(), `"unresolved": [`) {
		t.Errorf("unresolved list missing:\n%s", first.String())
	}

	back, err := ReadJSON(bytes.NewReader(first.Bytes()))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if diff := cmp.Diff(m.Packages(), back.Packages()); diff != "" {
		t.Errorf("packages mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(m.Snippets(), back.Snippets()); diff != "" {
		t.Errorf("snippets mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(m.Relationships(), back.Relationships()); diff != "" {
		t.Errorf("relationships mismatch (-want +got):\n%s", diff)
	}

	var second bytes.Buffer
	if err := WriteJSON(back, &second); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if first.String() != second.String() {
		t.Errorf("export not stable:\n%s\n---\n%s", first.String(), second.String())
	}
}

func TestExportImportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	if err := ExportJSON(sample(t), path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	m, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if got := m.Canonical("SPDXRef-ROOT"); got != sbom.DocumentID {
		t.Errorf("alias lost: Canonical = %q", got)
	}
}

func TestReadJSONErrors(t *testing.T) {
	if _, err := ReadJSON(strings.NewReader("{")); err == nil {
		t.Error("malformed JSON accepted")
	}

	dup := `{"document": {}, "packages": [{"id": "SPDXRef-a"}], "files": [{"id": "SPDXRef-a"}]}`
	_, err := ReadJSON(strings.NewReader(dup))
	var me *errors.ModelError
	if !stderrors.As(err, &me) {
		t.Errorf("duplicate id error = %v, want *ModelError", err)
	}

	if _, err := ImportJSON(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("missing file accepted")
	}
}

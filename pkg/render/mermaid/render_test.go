package mermaid

import (
	stderrors "errors"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/matzehuels/spdx2mermaid/pkg/errors"
	"github.com/matzehuels/spdx2mermaid/pkg/sbom"
)

func exampleModel(t *testing.T) *sbom.Model {
	t.Helper()
	b := sbom.NewBuilder(sbom.Document{Name: "ExampleSBOM", SPDXVersion: "SPDX-2.3"})
	if err := b.AddPackage(sbom.Package{ID: "SPDXRef-left-pad", Name: "left-pad", Version: "1.3.0", LicenseConcluded: "MIT"}); err != nil {
		t.Fatal(err)
	}
	if err := b.AddPackage(sbom.Package{ID: "SPDXRef-is-array", Name: "is-array", Version: "2.0.0"}); err != nil {
		t.Fatal(err)
	}
	b.AddRelationship(sbom.Relationship{From: sbom.DocumentID, To: "SPDXRef-left-pad", Type: "DESCRIBES"})
	b.AddRelationship(sbom.Relationship{From: "SPDXRef-left-pad", To: "SPDXRef-is-array", Type: "DEPENDS_ON"})
	return b.Build()
}

func renderString(t *testing.T, m *sbom.Model, opts Options) string {
	t.Helper()
	out, err := Render(m, opts)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return out
}

// nodeStyles returns the style lines of non-legend nodes.
func nodeStyles(out string) []string {
	var styles []string
	for line := range strings.Lines(out) {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "style ") && !strings.HasPrefix(line, "style legend_") {
			styles = append(styles, line)
		}
	}
	return styles
}

func countContaining(lines []string, sub string) int {
	n := 0
	for _, l := range lines {
		if strings.Contains(l, sub) {
			n++
		}
	}
	return n
}

func TestRenderExample(t *testing.T) {
	out := renderString(t, exampleModel(t), Options{})

	if !strings.HasPrefix(out, "graph TD\n") {
		t.Errorf("missing header:\n%s", out)
	}
	styles := nodeStyles(out)
	if got := countContaining(styles, "fill:#f3e5f5"); got != 2 {
		t.Errorf("package styles = %d, want 2\n%s", got, out)
	}
	if got := countContaining(styles, "fill:#e1f5ff"); got != 1 {
		t.Errorf("document styles = %d, want 1\n%s", got, out)
	}
	for _, want := range []string{
		`DOCUMENT -->|"DESCRIBES"| left_pad`,
		`left_pad -->|"DEPENDS_ON"| is_array`,
		`License: MIT`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}

	for line := range strings.Lines(out) {
		if strings.Contains(line, "Name: is-array") {
			if strings.Contains(line, "License") || strings.Contains(line, "None") {
				t.Errorf("is-array label has a license line: %s", line)
			}
		}
	}
}

func TestRenderDeterministic(t *testing.T) {
	m := exampleModel(t)
	opts := Options{MaxPackages: Limit(1)}
	first := renderString(t, m, opts)
	for range 10 {
		if got := renderString(t, m, opts); got != first {
			t.Fatalf("output changed between runs:\n%s\n---\n%s", first, got)
		}
	}
}

func TestRenderOptionErrors(t *testing.T) {
	m := exampleModel(t)
	tests := []struct {
		name   string
		opts   Options
		option string
	}{
		{"zero cap", Options{MaxPackages: Limit(0)}, "max_packages"},
		{"negative cap", Options{MaxPackages: Limit(-3)}, "max_packages"},
		{"direction", Options{Direction: "BT"}, "direction"},
		{"unresolved", Options{Unresolved: "hide"}, "unresolved"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Render(m, tt.opts)
			var re *errors.RenderError
			if !stderrors.As(err, &re) {
				t.Fatalf("Render error = %v, want *RenderError", err)
			}
			if re.Option != tt.option {
				t.Errorf("Option = %q, want %q", re.Option, tt.option)
			}
		})
	}
}

var (
	declRe = regexp.MustCompile(`^\s+([A-Za-z0-9_]+)\["`)
	edgeRe = regexp.MustCompile(`^\s+([A-Za-z0-9_]+) (?:-->\|"[^"]*"\|\s*|-\.->\s*)([A-Za-z0-9_]+)$`)
)

func checkIdentifiers(t *testing.T, out string) {
	t.Helper()
	declared := make(map[string]int)
	var endpoints []string
	for line := range strings.Lines(out) {
		line = strings.TrimRight(line, "\n")
		if m := declRe.FindStringSubmatch(line); m != nil {
			declared[m[1]]++
		}
		if m := edgeRe.FindStringSubmatch(line); m != nil {
			endpoints = append(endpoints, m[1], m[2])
		}
	}
	for id, n := range declared {
		if n != 1 {
			t.Errorf("node %s declared %d times", id, n)
		}
	}
	for _, id := range endpoints {
		if declared[id] != 1 {
			t.Errorf("edge endpoint %s is not declared\n%s", id, out)
		}
	}
}

func TestRenderIdentifiersRoundTrip(t *testing.T) {
	b := sbom.NewBuilder(sbom.Document{Name: "collide"})
	for _, id := range []string{"SPDXRef-a.b", "SPDXRef-a-b", "SPDXRef-a_b", "SPDXRef-end", "SPDXRef-1x", "SPDXRef-legend_file", "SPDXRef-truncated_packages"} {
		if err := b.AddPackage(sbom.Package{ID: id, Name: id}); err != nil {
			t.Fatal(err)
		}
		b.AddRelationship(sbom.Relationship{From: sbom.DocumentID, To: id, Type: "DESCRIBES"})
	}
	if err := b.AddFile(sbom.File{ID: "DocumentRef-ext:SPDXRef-f", Name: "f"}); err != nil {
		t.Fatal(err)
	}
	b.AddRelationship(sbom.Relationship{From: "SPDXRef-a.b", To: "SPDXRef-gone", Type: "DEPENDS_ON"})
	b.AddRelationship(sbom.Relationship{From: "SPDXRef-a-b", To: "SPDXRef-gone", Type: "DEPENDS_ON"})
	m := b.Build()

	for _, opts := range []Options{{}, {MaxPackages: Limit(3)}, {Unresolved: UnresolvedOmit}, {Compact: true}} {
		checkIdentifiers(t, renderString(t, m, opts))
	}

	out := renderString(t, m, Options{})
	for _, want := range []string{"a_b[", "a_b_2[", "a_b_3[", "end_[", "n_1x[", "legend_file_2[", "truncated_packages_2[", "ext_f["} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing node %q\n%s", want, out)
		}
	}
	if got := strings.Count(out, `gone["[Unresolved]`); got != 1 {
		t.Errorf("placeholder for SPDXRef-gone declared %d times, want 1", got)
	}
}

func TestRenderUnresolvedOmit(t *testing.T) {
	b := sbom.NewBuilder(sbom.Document{Name: "omit"})
	_ = b.AddPackage(sbom.Package{ID: "SPDXRef-a", Name: "a"})
	b.AddRelationship(sbom.Relationship{From: "SPDXRef-a", To: "SPDXRef-missing", Type: "DEPENDS_ON"})
	b.AddRelationship(sbom.Relationship{From: sbom.DocumentID, To: "SPDXRef-a", Type: "DESCRIBES"})
	m := b.Build()

	out, stats, err := RenderStats(m, Options{Unresolved: UnresolvedOmit})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "missing") || strings.Contains(out, "Unresolved") {
		t.Errorf("omitted endpoint still rendered:\n%s", out)
	}
	if stats.OmittedEdges != 1 || stats.Edges != 1 {
		t.Errorf("stats = %+v", stats)
	}

	out = renderString(t, m, Options{})
	if !strings.Contains(out, `a -->|"DEPENDS_ON"| missing`) {
		t.Errorf("placeholder edge missing:\n%s", out)
	}
	if !strings.Contains(out, "style missing fill:#eeeeee,stroke:#757575,stroke-width:1px,stroke-dasharray: 5 5") {
		t.Errorf("placeholder style missing:\n%s", out)
	}
}

func TestRenderTruncation(t *testing.T) {
	b := sbom.NewBuilder(sbom.Document{Name: "big"})
	for _, id := range []string{"p1", "p2", "p3", "p4", "p5"} {
		if err := b.AddPackage(sbom.Package{ID: "SPDXRef-" + id, Name: id}); err != nil {
			t.Fatal(err)
		}
	}
	rel := func(from, typ, to string) {
		b.AddRelationship(sbom.Relationship{From: from, To: to, Type: typ})
	}
	rel(sbom.DocumentID, "DESCRIBES", "SPDXRef-p1")
	rel("SPDXRef-p1", "DEPENDS_ON", "SPDXRef-p3")
	rel("SPDXRef-p1", "DEPENDS_ON", "SPDXRef-p4")
	rel("SPDXRef-p3", "DEPENDS_ON", "SPDXRef-p4")
	rel("SPDXRef-p2", "DEPENDS_ON", "SPDXRef-p5")
	rel("SPDXRef-p5", "DEV_DEPENDENCY_OF", "SPDXRef-p2")
	m := b.Build()

	out, stats, err := RenderStats(m, Options{MaxPackages: Limit(2)})
	if err != nil {
		t.Fatal(err)
	}
	if got := countContaining(nodeStyles(out), "fill:#f3e5f5"); got != 2 {
		t.Errorf("package nodes = %d, want 2\n%s", got, out)
	}
	for _, want := range []string{
		`truncated_packages["+3 more packages truncated"]`,
		"style truncated_packages fill:#fafafa,stroke:#666,stroke-width:1px,stroke-dasharray: 5 5",
		"DOCUMENT -.-> truncated_packages",
		`p1 -->|"DEPENDS_ON"| truncated_packages`,
		`p2 -->|"DEPENDS_ON"| truncated_packages`,
		`truncated_packages -->|"DEV_DEPENDENCY_OF"| p2`,
		`truncated_packages -->|"DEPENDS_ON"| truncated_packages`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	if got := strings.Count(out, `p1 -->|"DEPENDS_ON"| truncated_packages`); got != 2 {
		t.Errorf("redirected edge drawn %d times, want one per relationship", got)
	}
	for _, gone := range []string{"p3[", "p4[", "p5["} {
		if strings.Contains(out, gone) {
			t.Errorf("dropped package %s rendered", gone)
		}
	}
	want := Stats{Nodes: 3, Edges: 6, Truncated: 3, Redirected: 5}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
	checkIdentifiers(t, out)

	if out := renderString(t, m, Options{MaxPackages: Limit(5)}); strings.Contains(out, "truncated_packages") {
		t.Errorf("cap equal to package count truncated:\n%s", out)
	}
}

func TestRenderTruncationRedirects(t *testing.T) {
	tests := []struct {
		name  string
		max   int
		rels  [][3]string
		edges []string
	}{
		{
			name: "both endpoints dropped",
			max:  1,
			rels: [][3]string{
				{sbom.DocumentID, "DESCRIBES", "SPDXRef-A"},
				{"SPDXRef-A", "DEPENDS_ON", "SPDXRef-B"},
				{"SPDXRef-A", "DEPENDS_ON", "SPDXRef-C"},
				{"SPDXRef-B", "DEPENDS_ON", "SPDXRef-C"},
			},
			edges: []string{
				`DOCUMENT -->|"DESCRIBES"| A`,
				`A -->|"DEPENDS_ON"| truncated_packages`,
				`A -->|"DEPENDS_ON"| truncated_packages`,
				`truncated_packages -->|"DEPENDS_ON"| truncated_packages`,
			},
		},
		{
			name: "source dropped",
			max:  1,
			rels: [][3]string{
				{"SPDXRef-C", "DEPENDENCY_OF", "SPDXRef-A"},
				{"SPDXRef-B", "DEV_DEPENDENCY_OF", "SPDXRef-A"},
			},
			edges: []string{
				`truncated_packages -->|"DEPENDENCY_OF"| A`,
				`truncated_packages -->|"DEV_DEPENDENCY_OF"| A`,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := sbom.NewBuilder(sbom.Document{Name: "doc"})
			for _, id := range []string{"A", "B", "C"} {
				if err := b.AddPackage(sbom.Package{ID: "SPDXRef-" + id, Name: id}); err != nil {
					t.Fatal(err)
				}
			}
			for _, r := range tt.rels {
				b.AddRelationship(sbom.Relationship{From: r[0], Type: r[1], To: r[2]})
			}
			out, stats, err := RenderStats(b.Build(), Options{MaxPackages: Limit(tt.max)})
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.edges, edgeLines(out)); diff != "" {
				t.Errorf("edges mismatch (-want +got):\n%s", diff)
			}
			if stats.Edges != len(tt.rels) {
				t.Errorf("Edges = %d, want %d", stats.Edges, len(tt.rels))
			}
			checkIdentifiers(t, out)
		})
	}
}

// edgeLines returns the relationship edges of a diagram in output order.
func edgeLines(out string) []string {
	var edges []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if strings.Contains(line, " -->|") {
			edges = append(edges, line)
		}
	}
	return edges
}

func legendBlock(out string) string {
	i := strings.Index(out, "%% Legend")
	if i < 0 {
		return ""
	}
	return out[i:]
}

func TestLegendInvariant(t *testing.T) {
	empty := sbom.NewBuilder(sbom.Document{}).Build()
	want := legendBlock(renderString(t, empty, Options{}))
	if want == "" {
		t.Fatal("legend missing")
	}
	for _, k := range []string{"legend_document", "legend_package", "legend_file", "legend_snippet"} {
		if !strings.Contains(want, k+"[") || !strings.Contains(want, "style "+k+" ") {
			t.Errorf("legend missing %s:\n%s", k, want)
		}
	}

	m := exampleModel(t)
	for _, opts := range []Options{{}, {Compact: true}, {MaxPackages: Limit(1)}, {Direction: LeftRight}} {
		if got := legendBlock(renderString(t, m, opts)); got != want {
			t.Errorf("legend differs for %+v:\n%s\n---\n%s", opts, got, want)
		}
	}
}

func TestRenderDirection(t *testing.T) {
	out := renderString(t, exampleModel(t), Options{Direction: LeftRight})
	if !strings.HasPrefix(out, "graph LR\n") {
		t.Errorf("header = %q", strings.SplitN(out, "\n", 2)[0])
	}
}

func TestRenderRelationshipComment(t *testing.T) {
	b := sbom.NewBuilder(sbom.Document{Name: "c"})
	_ = b.AddPackage(sbom.Package{ID: "SPDXRef-a", Name: "a"})
	b.AddRelationship(sbom.Relationship{From: sbom.DocumentID, To: "SPDXRef-a", Type: "DESCRIBES", Comment: "root | entry"})
	m := b.Build()

	if out := renderString(t, m, Options{}); !strings.Contains(out, `DOCUMENT -->|"DESCRIBES<br/>root #124; entry"| a`) {
		t.Errorf("comment missing from edge:\n%s", out)
	}
	if out := renderString(t, m, Options{Compact: true}); !strings.Contains(out, `DOCUMENT -->|"DESCRIBES"| a`) {
		t.Errorf("compact edge carries comment:\n%s", out)
	}
}

package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/spdx2mermaid/pkg/sbom"
	"github.com/matzehuels/spdx2mermaid/pkg/spdx"
)

func testBrowser(t *testing.T) ElementBrowser {
	t.Helper()
	m, _, err := spdx.Load([]byte(exampleJSON), "sbom.spdx.json")
	if err != nil {
		t.Fatal(err)
	}
	return newElementBrowser(m)
}

func press(b ElementBrowser, keys ...tea.KeyMsg) (ElementBrowser, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = b.Update(k)
		b = next.(ElementBrowser)
	}
	return b, cmd
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestElementBrowserNavigation(t *testing.T) {
	b := testBrowser(t)
	if len(b.Elements) != 3 {
		t.Fatalf("elements = %d, want 3", len(b.Elements))
	}

	tests := []struct {
		name string
		keys []tea.KeyMsg
		want int
	}{
		{"start", nil, 0},
		{"down", []tea.KeyMsg{{Type: tea.KeyDown}}, 1},
		{"j twice", []tea.KeyMsg{runeKey('j'), runeKey('j')}, 2},
		{"clamped at end", []tea.KeyMsg{runeKey('j'), runeKey('j'), runeKey('j'), runeKey('j')}, 2},
		{"up from start", []tea.KeyMsg{{Type: tea.KeyUp}}, 0},
		{"k back", []tea.KeyMsg{runeKey('j'), runeKey('k')}, 0},
		{"end", []tea.KeyMsg{runeKey('G')}, 2},
		{"home", []tea.KeyMsg{runeKey('G'), runeKey('g')}, 0},
		{"page down", []tea.KeyMsg{{Type: tea.KeyPgDown}}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := press(b, tt.keys...)
			if got.Cursor != tt.want {
				t.Errorf("cursor = %d, want %d", got.Cursor, tt.want)
			}
		})
	}
}

func TestElementBrowserQuit(t *testing.T) {
	for _, k := range []tea.KeyMsg{runeKey('q'), {Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		_, cmd := press(testBrowser(t), k)
		if cmd == nil {
			t.Fatalf("%s should quit", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s should return tea.Quit", k)
		}
	}
}

func TestElementBrowserWindowSize(t *testing.T) {
	b := testBrowser(t)
	next, _ := b.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	if got := next.(ElementBrowser).Height; got != 14 {
		t.Errorf("height = %d, want 14", got)
	}
	next, _ = b.Update(tea.WindowSizeMsg{Width: 80, Height: 3})
	if got := next.(ElementBrowser).Height; got != 5 {
		t.Errorf("height = %d, want minimum 5", got)
	}
}

func TestElementBrowserScroll(t *testing.T) {
	b := testBrowser(t)
	b.Height = 1
	b, _ = press(b, runeKey('j'), runeKey('j'))
	if b.Offset != 2 {
		t.Errorf("offset = %d, want 2", b.Offset)
	}
	b, _ = press(b, runeKey('k'))
	if b.Offset != 1 {
		t.Errorf("offset = %d, want 1", b.Offset)
	}
}

func TestElementBrowserView(t *testing.T) {
	b, _ := press(testBrowser(t), runeKey('j'))
	el, ok := b.Selected()
	if !ok || el.ElementID() != "SPDXRef-left-pad" {
		t.Fatalf("selected = %v", el)
	}

	view := b.View()
	for _, want := range []string{
		"ExampleSBOM",
		"left-pad",
		"is-array",
		"[2/3]",
		"Version: 1.3.0",
		"Outgoing",
		"SPDXRef-missing (unresolved)",
		"Incoming",
		"DESCRIBES",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestElementBrowserCompactToggle(t *testing.T) {
	b, _ := press(testBrowser(t), runeKey('j'))
	if !strings.Contains(b.detail(), "Outgoing") {
		t.Fatal("detail should list relationships")
	}
	b, _ = press(b, runeKey('c'))
	if !b.Compact {
		t.Error("c should toggle compact labels")
	}
	if !strings.Contains(b.detail(), "Version: 1.3.0") {
		t.Error("compact label should keep the version")
	}
	b, _ = press(b, runeKey('c'))
	if b.Compact {
		t.Error("second c should restore full labels")
	}
}

func TestElementBrowserEmpty(t *testing.T) {
	b := newElementBrowser(sbom.NewBuilder(sbom.Document{}).Build())
	b, _ = press(b, runeKey('j'))
	if b.Cursor != 0 {
		t.Errorf("cursor = %d, want 0", b.Cursor)
	}
	_ = b.View()
}

func TestElementName(t *testing.T) {
	tests := []struct {
		el   sbom.Element
		want string
	}{
		{sbom.Package{ID: "SPDXRef-a", Name: "a"}, "a"},
		{sbom.Package{ID: "SPDXRef-b"}, "SPDXRef-b"},
		{sbom.File{ID: "SPDXRef-f", Name: "./main.go"}, "./main.go"},
	}
	for _, tt := range tests {
		if got := elementName(tt.el); got != tt.want {
			t.Errorf("elementName(%s) = %q, want %q", tt.el.ElementID(), got, tt.want)
		}
	}
}

package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/spdx2mermaid/pkg/render/label"
	"github.com/matzehuels/spdx2mermaid/pkg/sbom"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	detailStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

// =============================================================================
// ElementBrowser - Interactive element inspection
// =============================================================================

// ElementBrowser is the bubbletea model behind inspect -i. The left pane
// lists elements; the right pane shows the selected element's label and
// its relationships.
type ElementBrowser struct {
	Model    *sbom.Model
	Elements []sbom.Element
	Cursor   int
	Offset   int
	Height   int
	Compact  bool

	outgoing map[string][]sbom.Relationship
	incoming map[string][]sbom.Relationship
}

func newElementBrowser(m *sbom.Model) ElementBrowser {
	b := ElementBrowser{
		Model:    m,
		Elements: m.Elements(),
		Height:   15,
		outgoing: make(map[string][]sbom.Relationship),
		incoming: make(map[string][]sbom.Relationship),
	}
	for _, r := range m.Relationships() {
		from, to := m.Canonical(r.From), m.Canonical(r.To)
		b.outgoing[from] = append(b.outgoing[from], r)
		b.incoming[to] = append(b.incoming[to], r)
	}
	return b
}

func (b ElementBrowser) Init() tea.Cmd {
	return nil
}

func (b ElementBrowser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return b, tea.Quit
		case "up", "k":
			b.move(-1)
		case "down", "j":
			b.move(1)
		case "pgup":
			b.move(-b.Height)
		case "pgdown":
			b.move(b.Height)
		case "home", "g":
			b.move(-len(b.Elements))
		case "end", "G":
			b.move(len(b.Elements))
		case "c":
			b.Compact = !b.Compact
		}
	case tea.WindowSizeMsg:
		b.Height = max(msg.Height-6, 5)
		b.clampOffset()
	}
	return b, nil
}

func (b *ElementBrowser) move(delta int) {
	if len(b.Elements) == 0 {
		return
	}
	b.Cursor = min(max(b.Cursor+delta, 0), len(b.Elements)-1)
	b.clampOffset()
}

func (b *ElementBrowser) clampOffset() {
	if b.Cursor < b.Offset {
		b.Offset = b.Cursor
	}
	if b.Cursor >= b.Offset+b.Height {
		b.Offset = b.Cursor - b.Height + 1
	}
}

// Selected returns the element under the cursor.
func (b ElementBrowser) Selected() (sbom.Element, bool) {
	if b.Cursor < 0 || b.Cursor >= len(b.Elements) {
		return nil, false
	}
	return b.Elements[b.Cursor], true
}

func (b ElementBrowser) View() string {
	var out strings.Builder
	out.WriteString(StyleTitle.Render("Elements"))
	out.WriteString("\n")
	out.WriteString(listDimStyle.Render("↑/↓ navigate  c compact  q quit"))
	out.WriteString("\n\n")

	end := min(b.Offset+b.Height, len(b.Elements))
	var list strings.Builder
	for i := b.Offset; i < end; i++ {
		el := b.Elements[i]
		line := fmt.Sprintf("%-9s %s", el.Kind(), elementName(el))
		if i == b.Cursor {
			list.WriteString(listSelectedStyle.Render("▸ " + line))
		} else {
			list.WriteString(listNormalStyle.Render("  " + line))
		}
		list.WriteString("\n")
	}
	list.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", b.Cursor+1, len(b.Elements))))

	out.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list.String(), "  ", b.detail()))
	return out.String()
}

func (b ElementBrowser) detail() string {
	el, ok := b.Selected()
	if !ok {
		return ""
	}
	var d strings.Builder
	d.WriteString(strings.Join(label.Lines(el, label.Options{Compact: b.Compact}), "\n"))

	id := el.ElementID()
	if out := b.outgoing[id]; len(out) > 0 {
		d.WriteString("\n\n" + StyleHighlight.Render("Outgoing"))
		for _, r := range out {
			d.WriteString("\n" + r.Type + " " + iconArrow + " " + b.describe(r.To))
		}
	}
	if in := b.incoming[id]; len(in) > 0 {
		d.WriteString("\n\n" + StyleHighlight.Render("Incoming"))
		for _, r := range in {
			d.WriteString("\n" + b.describe(r.From) + " " + iconArrow + " " + r.Type)
		}
	}
	return detailStyle.Render(d.String())
}

// describe names a relationship endpoint, marking unresolved identifiers.
func (b ElementBrowser) describe(id string) string {
	el, ok := b.Model.Node(id)
	if !ok {
		return StyleWarning.Render(id + " (unresolved)")
	}
	return elementName(el)
}

func elementName(el sbom.Element) string {
	lines := label.Lines(el, label.Options{Compact: true})
	if len(lines) > 1 {
		name := lines[1]
		if _, v, ok := strings.Cut(name, ": "); ok {
			return v
		}
		return name
	}
	return el.ElementID()
}

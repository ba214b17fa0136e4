package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/spdx2mermaid/pkg/pipeline"
	"github.com/matzehuels/spdx2mermaid/pkg/sbom"
	"github.com/matzehuels/spdx2mermaid/pkg/spdx"
)

func (c *CLI) inspectCommand() *cobra.Command {
	var (
		interactive bool
		inputFormat string
		noCache     bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <file|->",
		Short: "Summarize the elements and relationships of an SPDX document",
		Example: `  spdx2mermaid inspect sbom.spdx.json
  spdx2mermaid inspect -i bom.spdx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			data, hint, err := readInput(ctx, args[0])
			if err != nil {
				return err
			}

			runner := c.newRunner(noCache)
			defer runner.Close()

			opts := pipeline.Options{Filename: hint, InputFormat: inputFormat}
			m, f, err := runner.LoadModel(ctx, data, opts)
			if err != nil {
				return fmt.Errorf("inspect %s: %w", args[0], err)
			}

			if interactive {
				_, err := tea.NewProgram(newElementBrowser(m), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), summary(m, f))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse elements interactively")
	cmd.Flags().StringVar(&inputFormat, "input-format", "", "input format, skipping detection")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the conversion cache")
	return cmd
}

var tableHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return tableHeaderStyle
			}
			s := lipgloss.NewStyle().Padding(0, 1)
			if col == 1 {
				return s.Foreground(colorCyan).Align(lipgloss.Right)
			}
			return s
		})
}

// summary renders the document header and count tables.
func summary(m *sbom.Model, f spdx.Format) string {
	var b strings.Builder
	doc := m.Document()

	name := doc.Name
	if name == "" {
		name = "(unnamed document)"
	}
	b.WriteString(StyleTitle.Render(name) + "\n")
	meta := []string{string(f)}
	if doc.SPDXVersion != "" {
		meta = append(meta, doc.SPDXVersion)
	}
	if doc.Created != "" {
		meta = append(meta, doc.Created)
	}
	b.WriteString(StyleDim.Render(strings.Join(meta, " · ")) + "\n")

	kinds := newTable("Element", "Count")
	for _, k := range sbom.Kinds {
		kinds.Row(k.String(), strconv.Itoa(m.Count(k)))
	}
	b.WriteString(kinds.Render() + "\n")

	if types := m.RelationshipTypes(); len(types) > 0 {
		rels := newTable("Relationship", "Count")
		for _, tc := range types {
			rels.Row(tc.Type, strconv.Itoa(tc.Count))
		}
		b.WriteString(rels.Render() + "\n")
	} else {
		b.WriteString(StyleDim.Render("no relationships") + "\n")
	}

	if unresolved := m.Unresolved(); len(unresolved) > 0 {
		b.WriteString(StyleWarning.Render(fmt.Sprintf("%d unresolved references", len(unresolved))) + "\n")
		for _, id := range unresolved {
			b.WriteString("  " + StyleDim.Render(id) + "\n")
		}
	}
	return b.String()
}

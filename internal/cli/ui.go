package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/spdx2mermaid/pkg/pipeline"
)

// =============================================================================
// Styles
// =============================================================================

// Terminal colors (ANSI 256).
var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

// Exported styles are shared by the status lines, the inspect tables and
// the element browser.
var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleLink      = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleCommand  = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// statusOut receives status lines. Stdout is reserved for converted output.
var statusOut io.Writer = os.Stderr

func printLine(s string) {
	fmt.Fprintln(statusOut, s)
}

func printSuccess(format string, args ...any) {
	printLine(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

// PrintError writes err as a status line.
func PrintError(err error) {
	printError("%s", err)
}

func printError(format string, args ...any) {
	printLine(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	printLine(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	printLine(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	printLine("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	printLine("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(14)
	printLine(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// =============================================================================
// Stats Display
// =============================================================================

// statsLine formats conversion statistics on one line.
func statsLine(stats pipeline.Stats, cached bool) string {
	parts := []string{
		fmt.Sprintf("%d elements", stats.Elements),
		fmt.Sprintf("%d relationships", stats.Relationships),
	}
	if stats.Unresolved > 0 {
		parts = append(parts, fmt.Sprintf("%d unresolved", stats.Unresolved))
	}
	if stats.Diagram.Truncated > 0 {
		parts = append(parts, fmt.Sprintf("%d truncated", stats.Diagram.Truncated))
	}

	status, statusStyle := iconFresh, styleComputed
	if cached {
		status, statusStyle = iconCached, styleCached
	}

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	return line + StyleDim.Render(" · ") + statusStyle.Render(status)
}

func printStats(stats pipeline.Stats, cached bool) {
	printLine(statsLine(stats, cached))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	printLine(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

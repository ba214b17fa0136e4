package render

import "github.com/matzehuels/spdx2mermaid/pkg/sbom"

// Style is the fill and outline of a diagram node.
type Style struct {
	Fill   string
	Stroke string
	Width  string
	Dashed bool
}

// Node styles. Elements are styled by kind only.
var (
	DocumentStyle   = Style{Fill: "#e1f5ff", Stroke: "#01579b", Width: "3px"}
	PackageStyle    = Style{Fill: "#f3e5f5", Stroke: "#4a148c", Width: "2px"}
	FileStyle       = Style{Fill: "#e8f5e9", Stroke: "#1b5e20", Width: "2px"}
	SnippetStyle    = Style{Fill: "#fff3e0", Stroke: "#e65100", Width: "2px"}
	UnresolvedStyle = Style{Fill: "#eeeeee", Stroke: "#757575", Width: "1px", Dashed: true}
	TruncatedStyle  = Style{Fill: "#fafafa", Stroke: "#666", Width: "1px", Dashed: true}
)

// StyleFor returns the style of an element kind.
func StyleFor(k sbom.Kind) Style {
	switch k {
	case sbom.KindDocument:
		return DocumentStyle
	case sbom.KindPackage:
		return PackageStyle
	case sbom.KindFile:
		return FileStyle
	case sbom.KindSnippet:
		return SnippetStyle
	}
	return UnresolvedStyle
}

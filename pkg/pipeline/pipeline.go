// Package pipeline runs the load → render conversion shared by the CLI
// and the HTTP server.
//
// A [Runner] decodes an SPDX document into a model, renders it in one
// output format and caches both stages:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Convert(ctx, data, pipeline.Options{
//	    Filename: "sbom.spdx.json",
//	    Compact:  true,
//	})
//	fmt.Print(string(res.Artifact))
//
// Options are validated once by [Options.ValidateAndSetDefaults]; bad
// option values surface as *errors.RenderError so callers can tell them
// apart from unreadable documents (*errors.FormatError) and inconsistent
// ones (*errors.ModelError).
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spdx2mermaid/pkg/cache"
	"github.com/matzehuels/spdx2mermaid/pkg/errors"
	"github.com/matzehuels/spdx2mermaid/pkg/render/label"
	"github.com/matzehuels/spdx2mermaid/pkg/render/mermaid"
	"github.com/matzehuels/spdx2mermaid/pkg/render/nodelink"
	"github.com/matzehuels/spdx2mermaid/pkg/sbom"
	"github.com/matzehuels/spdx2mermaid/pkg/spdx"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	DefaultFormat     = FormatMermaid
	DefaultDirection  = string(mermaid.TopDown)
	DefaultUnresolved = string(mermaid.UnresolvedPlaceholder)

	// DefaultScale is the PNG resolution multiplier.
	DefaultScale = 2.0
)

// Output formats.
const (
	FormatMermaid  = "mermaid"
	FormatMarkdown = "markdown"
	FormatDOT      = "dot"
	FormatSVG      = "svg"
	FormatPNG      = "png"
	FormatPDF      = "pdf"
	FormatJSON     = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatMermaid:  true,
	FormatMarkdown: true,
	FormatDOT:      true,
	FormatSVG:      true,
	FormatPNG:      true,
	FormatPDF:      true,
	FormatJSON:     true,
}

// FormatNames lists the output formats in help-text order.
var FormatNames = []string{FormatMermaid, FormatMarkdown, FormatDOT, FormatSVG, FormatPNG, FormatPDF, FormatJSON}

// ContentTypes maps output formats to MIME types.
var ContentTypes = map[string]string{
	FormatMermaid:  "text/vnd.mermaid; charset=utf-8",
	FormatMarkdown: "text/markdown; charset=utf-8",
	FormatDOT:      "text/vnd.graphviz; charset=utf-8",
	FormatSVG:      "image/svg+xml",
	FormatPNG:      "image/png",
	FormatPDF:      "application/pdf",
	FormatJSON:     "application/json",
}

// Extensions maps output formats to file extensions.
var Extensions = map[string]string{
	FormatMermaid:  ".mmd",
	FormatMarkdown: ".md",
	FormatDOT:      ".dot",
	FormatSVG:      ".svg",
	FormatPNG:      ".png",
	FormatPDF:      ".pdf",
	FormatJSON:     ".json",
}

// IsText reports whether format produces text output.
func IsText(format string) bool {
	switch format {
	case FormatPNG, FormatPDF:
		return false
	}
	return true
}

// =============================================================================
// Options
// =============================================================================

// Options configures one conversion. It supports TOML and JSON so the CLI
// config file and API requests can carry it directly.
type Options struct {
	// Load options
	InputFormat string `json:"input_format,omitempty" toml:"input_format"` // skip detection
	Filename    string `json:"filename,omitempty" toml:"-"`                // detection hint

	// Render options
	Format              string  `json:"format,omitempty" toml:"format"`
	Compact             bool    `json:"compact,omitempty" toml:"compact"`
	MaxPackages         *int    `json:"max_packages,omitempty" toml:"max_packages"`
	ExcludeExternalRefs bool    `json:"exclude_external_refs,omitempty" toml:"exclude_external_refs"`
	Direction           string  `json:"direction,omitempty" toml:"direction"`
	Unresolved          string  `json:"unresolved,omitempty" toml:"unresolved"`
	Scale               float64 `json:"scale,omitempty" toml:"scale"`

	// Refresh bypasses cache reads. Results are still written.
	Refresh bool `json:"refresh,omitempty" toml:"-"`

	Logger *log.Logger `json:"-" toml:"-"`

	validated bool
}

// Result is the outcome of a conversion.
type Result struct {
	Model       *sbom.Model
	InputFormat spdx.Format
	InputHash   string
	Format      string
	Artifact    []byte
	Stats       Stats
	CacheInfo   CacheInfo
}

// Stats describes a conversion.
type Stats struct {
	Elements      int           `json:"elements"`
	Relationships int           `json:"relationships"`
	Unresolved    int           `json:"unresolved"`
	Diagram       mermaid.Stats `json:"diagram"`
	Bytes         int           `json:"bytes"`
	LoadTime      time.Duration `json:"load_time"`
	RenderTime    time.Duration `json:"render_time"`
}

// CacheInfo records which stages were served from the cache.
type CacheInfo struct {
	ModelHit    bool `json:"model_hit"`
	ArtifactHit bool `json:"artifact_hit"`
}

// =============================================================================
// Validation
// =============================================================================

// ValidateFormat checks that format is a supported output format.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return &errors.RenderError{Option: "format", Value: format}
	}
	return nil
}

// ValidateAndSetDefaults fills in defaults and validates every option.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if o.Direction == "" {
		o.Direction = DefaultDirection
	}
	if o.Unresolved == "" {
		o.Unresolved = DefaultUnresolved
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	if err := ValidateFormat(o.Format); err != nil {
		return err
	}
	if o.InputFormat != "" {
		f, err := spdx.ParseFormat(o.InputFormat)
		if err != nil {
			return err
		}
		o.InputFormat = string(f)
	}
	if o.Scale < 0 {
		return &errors.RenderError{Option: "scale", Value: o.Scale}
	}
	if err := o.MermaidOptions().Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// MermaidOptions returns the Mermaid renderer options.
func (o *Options) MermaidOptions() mermaid.Options {
	return mermaid.Options{
		Compact:             o.Compact,
		MaxPackages:         o.MaxPackages,
		ExcludeExternalRefs: o.ExcludeExternalRefs,
		Direction:           mermaid.Direction(o.Direction),
		Unresolved:          mermaid.UnresolvedPolicy(o.Unresolved),
	}
}

// NodelinkOptions returns the Graphviz renderer options.
func (o *Options) NodelinkOptions() nodelink.Options {
	return nodelink.Options{
		Label:          label.Options{Compact: o.Compact, ExcludeExternalRefs: o.ExcludeExternalRefs},
		LeftToRight:    o.Direction == string(mermaid.LeftRight),
		OmitUnresolved: o.Unresolved == string(mermaid.UnresolvedOmit),
	}
}

// ArtifactKeyOpts returns the cache key options for the rendered output.
func (o *Options) ArtifactKeyOpts() cache.ArtifactKeyOpts {
	maxPackages := -1
	if o.MaxPackages != nil {
		maxPackages = *o.MaxPackages
	}
	return cache.ArtifactKeyOpts{
		InputFormat:         modelKeyFormat(*o),
		Format:              o.Format,
		Compact:             o.Compact,
		MaxPackages:         maxPackages,
		ExcludeExternalRefs: o.ExcludeExternalRefs,
		Direction:           o.Direction,
		Unresolved:          o.Unresolved,
		Scale:               o.Scale,
	}
}

package mermaid

import (
	"github.com/matzehuels/spdx2mermaid/pkg/errors"
)

// Direction is the flowchart layout direction.
type Direction string

const (
	TopDown   Direction = "TD"
	LeftRight Direction = "LR"
)

// UnresolvedPolicy decides how relationship endpoints that match no
// element are drawn.
type UnresolvedPolicy string

const (
	// UnresolvedPlaceholder draws a dashed grey node per missing endpoint.
	UnresolvedPlaceholder UnresolvedPolicy = "placeholder"
	// UnresolvedOmit drops relationships with a missing endpoint.
	UnresolvedOmit UnresolvedPolicy = "omit"
)

// Options configures [Render]. The zero value renders everything, top
// down, with unresolved placeholders.
type Options struct {
	// Compact limits labels to header, name, version and license.
	Compact bool

	// MaxPackages caps the number of package nodes. Nil means no cap.
	// The remaining packages collapse into one truncation node.
	MaxPackages *int

	// ExcludeExternalRefs omits package external references from labels.
	ExcludeExternalRefs bool

	// Direction is TD (default) or LR.
	Direction Direction

	// Unresolved is placeholder (default) or omit.
	Unresolved UnresolvedPolicy
}

// Validate reports the first invalid option as an *errors.RenderError.
func (o Options) Validate() error {
	if o.MaxPackages != nil && *o.MaxPackages <= 0 {
		return &errors.RenderError{Option: "max_packages", Value: *o.MaxPackages}
	}
	switch o.Direction {
	case "", TopDown, LeftRight:
	default:
		return &errors.RenderError{Option: "direction", Value: string(o.Direction)}
	}
	switch o.Unresolved {
	case "", UnresolvedPlaceholder, UnresolvedOmit:
	default:
		return &errors.RenderError{Option: "unresolved", Value: string(o.Unresolved)}
	}
	return nil
}

func (o Options) direction() Direction {
	if o.Direction == "" {
		return TopDown
	}
	return o.Direction
}

// Limit returns a MaxPackages value for n.
func Limit(n int) *int { return &n }

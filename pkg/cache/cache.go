// Package cache stores parsed models and rendered diagrams between runs.
//
// Backends implement [Cache]:
//   - [FileCache]: one file per entry under a directory, used by the CLI
//   - [RedisCache]: shared storage for the HTTP server
//   - [NullCache]: caching disabled
//
// Keys are built by a [Keyer] from the SHA-256 of the input document plus
// every option that changes the output, so two conversions share an entry
// only when they would produce identical bytes.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry. Implementations are safe
// for concurrent use.
type Cache interface {
	// Get returns the entry for key. A missing or expired entry is a
	// miss (hit == false, err == nil).
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// Entry lifetimes.
const (
	TTLModel    = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
	TTLDiagram  = 24 * time.Hour
)

// Keyer builds cache keys.
type Keyer interface {
	// ModelKey identifies the model decoded from an input document.
	ModelKey(inputHash, inputFormat string) string

	// ArtifactKey identifies one rendered output of an input document.
	ArtifactKey(inputHash string, opts ArtifactKeyOpts) string

	// DiagramKey identifies a diagram stored by the server under id.
	DiagramKey(id string) string
}

// ArtifactKeyOpts lists the options that affect rendered output.
type ArtifactKeyOpts struct {
	InputFormat         string  `json:"input_format"`
	Format              string  `json:"format"`
	Compact             bool    `json:"compact"`
	MaxPackages         int     `json:"max_packages"` // -1 means unlimited
	ExcludeExternalRefs bool    `json:"exclude_external_refs"`
	Direction           string  `json:"direction"`
	Unresolved          string  `json:"unresolved"`
	Scale               float64 `json:"scale"`
}

// DefaultKeyer is the keyer used when none is configured.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) ModelKey(inputHash, inputFormat string) string {
	return Key("model", inputHash, inputFormat)
}

func (DefaultKeyer) ArtifactKey(inputHash string, opts ArtifactKeyOpts) string {
	return Key("artifact", inputHash, opts)
}

func (DefaultKeyer) DiagramKey(id string) string {
	return "diagram:" + id
}

var _ Keyer = DefaultKeyer{}

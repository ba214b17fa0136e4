package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spdx2mermaid/pkg/cache"
	"github.com/matzehuels/spdx2mermaid/pkg/observability"
	"github.com/matzehuels/spdx2mermaid/pkg/render/mermaid"
	"github.com/matzehuels/spdx2mermaid/pkg/sbom"
	"github.com/matzehuels/spdx2mermaid/pkg/spdx"
)

// Runner executes conversions with caching. It holds no per-conversion
// state, so one Runner may serve concurrent requests.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching and a nil
// keyer selects the DefaultKeyer.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Convert decodes data and renders it in opts.Format.
func (r *Runner) Convert(ctx context.Context, data []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	res := &Result{InputHash: cache.Hash(data), Format: opts.Format}

	// Stage 1: Load
	loadStart := time.Now()
	m, f, hit, err := r.load(ctx, data, res.InputHash, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	res.Model = m
	res.InputFormat = f
	res.CacheInfo.ModelHit = hit
	res.Stats.LoadTime = time.Since(loadStart)
	res.Stats.Elements = m.NodeCount()
	res.Stats.Relationships = m.RelationshipCount()
	res.Stats.Unresolved = len(m.Unresolved())

	r.Logger.Info("loaded document",
		"format", f,
		"packages", m.Count(sbom.KindPackage),
		"relationships", res.Stats.Relationships,
		"cached", hit,
		"duration", res.Stats.LoadTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifact, hit, err := r.render(ctx, m, res, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	res.Artifact = artifact
	res.CacheInfo.ArtifactHit = hit
	res.Stats.Bytes = len(artifact)
	res.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered diagram",
		"format", opts.Format,
		"bytes", res.Stats.Bytes,
		"cached", hit,
		"duration", res.Stats.RenderTime)

	return res, nil
}

// LoadModel decodes data with model caching.
func (r *Runner) LoadModel(ctx context.Context, data []byte, opts Options) (*sbom.Model, spdx.Format, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, "", fmt.Errorf("invalid options: %w", err)
	}
	m, f, _, err := r.load(ctx, data, cache.Hash(data), opts)
	return m, f, err
}

func (r *Runner) load(ctx context.Context, data []byte, inputHash string, opts Options) (*sbom.Model, spdx.Format, bool, error) {
	key := r.Keyer.ModelKey(inputHash, modelKeyFormat(opts))

	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if m, f, err := decodeModel(cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "model")
				return m, f, true, nil
			}
			r.Logger.Debug("discarding unreadable cached model", "key", key)
		}
		observability.Cache().OnCacheMiss(ctx, "model")
	}

	m, f, err := Load(ctx, data, opts)
	if err != nil {
		return nil, "", false, err
	}

	if encoded, err := encodeModel(m, f); err == nil {
		if err := r.Cache.Set(ctx, key, encoded, cache.TTLModel); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "model", len(encoded))
		}
	}
	return m, f, false, nil
}

// modelKeyFormat names the decoding path for the model key. Detection can
// fall back to the filename hint, so the hinted format is part of the key.
func modelKeyFormat(opts Options) string {
	if opts.InputFormat != "" {
		return opts.InputFormat
	}
	if hinted := spdx.FormatFromFilename(opts.Filename); hinted != "" {
		return "auto:" + string(hinted)
	}
	return "auto"
}

// cachedArtifact is the cache envelope for a rendered output.
type cachedArtifact struct {
	Data  []byte        `json:"data"`
	Stats mermaid.Stats `json:"stats"`
}

func (r *Runner) render(ctx context.Context, m *sbom.Model, res *Result, opts Options) ([]byte, bool, error) {
	key := r.Keyer.ArtifactKey(res.InputHash, opts.ArtifactKeyOpts())

	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var a cachedArtifact
			if err := json.Unmarshal(cached, &a); err == nil {
				observability.Cache().OnCacheHit(ctx, "artifact")
				res.Stats.Diagram = a.Stats
				return a.Data, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	data, stats, err := Render(ctx, m, opts)
	if err != nil {
		return nil, false, err
	}
	res.Stats.Diagram = stats

	if encoded, err := json.Marshal(cachedArtifact{Data: data, Stats: stats}); err == nil {
		if err := r.Cache.Set(ctx, key, encoded, cache.TTLArtifact); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "artifact", len(encoded))
		}
	}
	return data, false, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

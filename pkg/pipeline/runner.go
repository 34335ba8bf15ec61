package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/auroramap/pkg/cache"
	"github.com/matzehuels/auroramap/pkg/graph"
	"github.com/matzehuels/auroramap/pkg/observability"
	"github.com/matzehuels/auroramap/pkg/starmap"
)

// Cache key types reported to hooks.
const (
	keyDataset  = "dataset"
	keyLayout   = "layout"
	keyArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
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
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	result, err := r.ExecuteLayout(ctx, opts)
	if err != nil {
		return nil, err
	}

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, result.Document, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)
	return result, nil
}

// ExecuteLayout runs the load and layout stages. The result carries the
// rebuilt graph and layout but no artifacts.
func (r *Runner) ExecuteLayout(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}
	opts.SetLayoutDefaults()

	result := &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Load
	loadStart := time.Now()
	ds, hash, loadHit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Dataset = ds
	result.DatasetHash = hash
	result.Stats.LoadTime = time.Since(loadStart)
	result.CacheInfo.LoadHit = loadHit

	r.Logger.Info("loaded save data",
		"source", opts.Source(),
		"systems", len(ds.Systems),
		"cached", loadHit,
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	doc, layoutHit, err := r.GenerateLayoutWithCacheInfo(ctx, ds, hash, opts)
	if err != nil {
		return nil, err
	}
	result.Document = doc
	result.Graph, result.Layout = graph.Import(doc)
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.SystemCount = result.Graph.Len()
	result.Stats.EdgeCount = len(result.Graph.Edges())
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"systems", result.Stats.SystemCount,
		"levels", len(doc.Levels),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)
	return result, nil
}

// LoadWithCacheInfo reads the dataset with caching. It returns the dataset,
// its content hash and whether it came from the cache.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) (*starmap.Dataset, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return nil, "", false, err
	}
	hooks := observability.Pipeline()

	keyOpts, err := datasetKeyOpts(opts)
	if err != nil {
		return nil, "", false, err
	}
	cacheKey := r.Keyer.DatasetKey(opts.GameID, opts.RaceID, keyOpts)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if ds, err := starmap.ReadDataset(bytes.NewReader(data)); err == nil {
				observability.Cache().OnCacheHit(ctx, keyDataset)
				return ds, cache.Hash(data), true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, keyDataset)
	}

	start := time.Now()
	hooks.OnLoadStart(ctx, opts.Source())
	ds, err := LoadDataset(ctx, opts)
	systems := 0
	if ds != nil {
		systems = len(ds.Systems)
	}
	hooks.OnLoadComplete(ctx, opts.Source(), systems, time.Since(start), err)
	if err != nil {
		return nil, "", false, err
	}

	data, err := starmap.MarshalDataset(ds)
	if err != nil {
		return ds, "", false, nil
	}
	if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLDataset); err != nil {
		r.Logger.Warn("cache write failed", "stage", keyDataset, "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, keyDataset, len(data))
	}
	return ds, cache.Hash(data), false, nil
}

// GenerateLayoutWithCacheInfo lays out ds with caching. datasetHash keys
// the cache entry; an empty hash disables caching.
func (r *Runner) GenerateLayoutWithCacheInfo(ctx context.Context, ds *starmap.Dataset, datasetHash string, opts Options) (graph.Layout, bool, error) {
	r.applyLogger(&opts)
	opts.SetLayoutDefaults()

	cacheKey := ""
	if datasetHash != "" {
		cacheKey = r.Keyer.LayoutKey(datasetHash, opts.LayoutKeyOpts())
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, err := graph.UnmarshalLayout(data); err == nil {
				observability.Cache().OnCacheHit(ctx, keyLayout)
				return cached, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, keyLayout)
	}

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnLayoutStart(ctx, len(ds.Systems))
	doc, err := GenerateLayout(ds, opts)
	hooks.OnLayoutComplete(ctx, len(doc.Nodes), time.Since(start), err)
	if err != nil {
		return graph.Layout{}, false, err
	}

	if cacheKey != "" {
		if data, err := graph.MarshalLayout(doc); err == nil {
			if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err == nil {
				observability.Cache().OnCacheSet(ctx, keyLayout, len(data))
			}
		}
	}
	return doc, false, nil
}

// RenderWithCacheInfo generates artifacts with caching and reports whether
// every artifact came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, doc graph.Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	layoutData, err := graph.MarshalLayout(doc)
	if err != nil {
		return nil, false, err
	}
	layoutHash := cache.Hash(layoutData)

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, keyArtifact)
			artifacts[format] = data
			continue
		}
		observability.Cache().OnCacheMiss(ctx, keyArtifact)
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	renderOpts := opts
	renderOpts.Formats = missing
	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnRenderStart(ctx, missing)
	rendered, err := RenderLayout(ctx, doc, renderOpts)
	hooks.OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		artifacts[format] = data
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, keyArtifact, len(data))
		}
	}
	return artifacts, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, doc graph.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, doc, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

package pipeline

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/slicegrid/slicegrid/pkg/cache"
	"github.com/slicegrid/slicegrid/pkg/descriptor"
	"github.com/slicegrid/slicegrid/pkg/errors"
	"github.com/slicegrid/slicegrid/pkg/resolve"
)

// Runner encapsulates pipeline execution with memoization.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Result is the resolved composition.
	Result *resolve.Result

	// DescriptorHash is the content hash of the raw descriptor bytes.
	DescriptorHash string

	// Stats contains timing information.
	Stats Stats

	// CacheHit reports whether the resolved composition came from cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ParseTime   time.Duration
	ResolveTime time.Duration
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

// Execute runs the complete load → parse → resolve pipeline with
// memoization. Identical (descriptor, view, target) triples are served
// from cache; parsing is skipped entirely on a hit.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	data, err := loadDescriptor(opts)
	if err != nil {
		return nil, err
	}

	result := &Result{DescriptorHash: cache.Hash(data)}
	key := r.Keyer.ResolveKey(result.DescriptorHash, cache.ResolveKeyOpts{
		View:   opts.View,
		Width:  opts.Width,
		Height: opts.Height,
	})

	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if res, err := resolve.UnmarshalResult(cached); err == nil {
				result.Result = res
				result.CacheHit = true
				opts.Logger.Debug("resolved composition from cache", "key", key)
				return result, nil
			}
			// Undecodable entry: fall through and recompute.
		}
	}

	parseStart := time.Now()
	comp, err := descriptor.Parse(data)
	if err != nil {
		return nil, err
	}
	result.Stats.ParseTime = time.Since(parseStart)

	opts.Logger.Info("parsed descriptor",
		"name", comp.Name,
		"version", comp.Version.String(),
		"regions", len(comp.Regions),
		"duration", result.Stats.ParseTime)

	resolveStart := time.Now()
	res, err := resolve.Resolve(comp, opts.ViewMode(), opts.Target())
	if err != nil {
		return nil, err
	}
	result.Result = res
	result.Stats.ResolveTime = time.Since(resolveStart)

	opts.Logger.Info("resolved composition",
		"loaded", res.Loaded(),
		"total", res.TotalRegions,
		"size", res.Size,
		"duration", result.Stats.ResolveTime)

	for _, d := range res.Dropped {
		opts.Logger.Warn("dropped region", "slice", d.Name, "id", d.SliceID, "reason", d.Reason)
	}
	if res.IdentityFallback {
		opts.Logger.Warn("degenerate internal resolution, using identity scale")
	}

	if data, err := resolve.MarshalResult(res); err == nil {
		_ = r.Cache.Set(ctx, key, data, cache.TTLResult)
	}

	return result, nil
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

// loadDescriptor returns the raw descriptor bytes for the run.
func loadDescriptor(opts Options) ([]byte, error) {
	if len(opts.Data) > 0 {
		return opts.Data, nil
	}
	if err := errors.ValidateDescriptorPath(opts.Path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(opts.Path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "descriptor not found: %s", opts.Path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDescriptor, err, "read %s", opts.Path)
	}
	return data, nil
}

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/worksite/pkg/builder"
	"github.com/matzehuels/worksite/pkg/cache"
	werrors "github.com/matzehuels/worksite/pkg/errors"
	"github.com/matzehuels/worksite/pkg/export"
	"github.com/matzehuels/worksite/pkg/observability"
	"github.com/matzehuels/worksite/pkg/option"
	"github.com/matzehuels/worksite/pkg/project"
	"github.com/matzehuels/worksite/pkg/random"
	"github.com/matzehuels/worksite/pkg/render/treeviz"
	"github.com/matzehuels/worksite/pkg/style"
)

// Runner executes pipeline stages with caching. It holds no per-run state
// and is safe for concurrent use.
type Runner struct {
	Registry *builder.Registry
	Project  *project.Project // nil when only inline trees are built
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching; a nil keyer
// uses cache.DefaultKeyer.
func NewRunner(reg *builder.Registry, proj *project.Project, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Registry: reg, Project: proj, Cache: c, Keyer: keyer, Logger: logger}
}

// Job is a loaded tree and its resolved style.
type Job struct {
	Tree     builder.Builder
	TreeJSON []byte       // canonical envelope, the tree's cache identity
	Style    *style.Style // resolved; nil without a style
	StyleKey string
}

// Table returns the option table of one generation.
func (j *Job) Table(seed random.Seed) (option.Table, error) {
	if j.Style == nil {
		return style.Empty(), nil
	}
	return j.Style.Generation(seed)
}

// Build is the outcome of evaluating a job for one seed.
type Build struct {
	Seed     random.Seed
	Result   *builder.Result // nil when served from cache
	Flat     *builder.FlatResult
	CacheHit bool
}

// Execute runs load, build and render for opts.Seed.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	res := &Result{}

	start := time.Now()
	job, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	res.Stats.LoadTime = time.Since(start)

	start = time.Now()
	b, err := r.BuildSeed(ctx, job, opts.Seed, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	res.Build = b
	res.Stats.BuildTime = time.Since(start)
	res.Stats.Nodes = len(b.Flat.Items)
	res.Stats.Placed = len(b.Flat.Placed())
	res.Stats.CacheHit = b.CacheHit

	r.Logger.Info("built",
		"root", job.Tree.Type(),
		"seed", b.Seed.Value(),
		"nodes", res.Stats.Nodes,
		"placed", res.Stats.Placed,
		"cached", b.CacheHit,
		"duration", res.Stats.BuildTime)

	start = time.Now()
	res.Artifacts, err = r.Render(ctx, b, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	res.Stats.RenderTime = time.Since(start)

	r.Logger.Debug("rendered outputs", "formats", opts.Formats, "duration", res.Stats.RenderTime)
	return res, nil
}

// Load decodes the tree and resolves the style named by opts.
func (r *Runner) Load(ctx context.Context, opts Options) (*Job, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}

	var (
		tree builder.Builder
		err  error
	)
	if opts.Structure != "" {
		proj, perr := r.project()
		if perr != nil {
			return nil, perr
		}
		ref, perr := proj.Ref(opts.Structure)
		if perr != nil {
			return nil, perr
		}
		var s *project.Structure
		if s, err = proj.LoadStructure(ctx, r.Registry, ref); err == nil {
			tree = s.Builder
		}
	} else {
		tree, err = r.Registry.FromJSON(opts.Tree)
	}
	if err != nil {
		return nil, err
	}

	job := &Job{Tree: tree}
	if job.TreeJSON, err = builder.Marshal(tree); err != nil {
		return nil, err
	}

	if opts.Style != "" {
		proj, err := r.project()
		if err != nil {
			return nil, err
		}
		ref, err := proj.Ref(opts.Style)
		if err != nil {
			return nil, err
		}
		if job.Style, err = proj.ResolveStyle(ctx, ref); err != nil {
			return nil, err
		}
		data, err := json.Marshal(job.Style)
		if err != nil {
			return nil, fmt.Errorf("encode style: %w", err)
		}
		job.StyleKey = cache.Hash(data)
	}

	deps := (&project.Structure{Builder: tree}).Dependency()
	for _, name := range deps.Options {
		if job.Style == nil || !hasRule(job.Style, name) {
			opts.Logger.Warn("option reference has no rule", "ref", name, "style", opts.Style)
		}
	}
	return job, nil
}

func hasRule(s *style.Style, name string) bool {
	_, ok := s.Rules[name]
	return ok
}

func (r *Runner) project() (*project.Project, error) {
	if r.Project == nil {
		return nil, werrors.New(werrors.ErrCodeInvalidInput, "no project configured")
	}
	return r.Project, nil
}

// BuildSeed evaluates job for one seed. Unless opts.Refresh is set or a
// tree format is requested, a cached flat result is returned when present.
func (r *Runner) BuildSeed(ctx context.Context, job *Job, v int64, opts Options) (*Build, error) {
	if err := opts.ValidateForBuild(); err != nil {
		return nil, err
	}
	seed := random.NewSeed(v)
	keyOpts, err := opts.BuildKeyOpts(seed.Value(), job.StyleKey)
	if err != nil {
		return nil, err
	}
	key := r.Keyer.BuildKey(job.TreeJSON, keyOpts)
	cacheHooks := observability.Cache()

	if !opts.Refresh && !opts.NeedsTree() {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if flat, err := builder.DecodeFlat(data); err == nil {
				cacheHooks.OnCacheHit(ctx, "build")
				return &Build{Seed: seed, Flat: flat, CacheHit: true}, nil
			}
		} else if err != nil {
			opts.Logger.Warn("cache read failed", "err", err)
		}
		cacheHooks.OnCacheMiss(ctx, "build")
	}

	hooks := observability.Pipeline()
	root := job.Tree.Type()
	hooks.OnBuildStart(ctx, root, seed.Value())
	start := time.Now()

	res, err := r.evaluate(job, seed, opts)
	nodes := 0
	if res != nil {
		nodes = res.Count()
	}
	hooks.OnBuildComplete(ctx, root, nodes, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	flat := builder.Flatten(res)
	if data, err := flat.ToJSON(); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.BuildTTL); err != nil {
			opts.Logger.Warn("cache write failed", "err", err)
		} else {
			cacheHooks.OnCacheSet(ctx, "build", len(data))
		}
	}
	return &Build{Seed: seed, Result: res, Flat: flat}, nil
}

func (r *Runner) evaluate(job *Job, seed random.Seed, opts Options) (*builder.Result, error) {
	table, err := job.Table(seed)
	if err != nil {
		return nil, err
	}
	return builder.Build(job.Tree, opts.Context(), table, seed, builder.WithMaxDepth(opts.MaxDepth))
}

// BuildMany evaluates job for every seed, at most opts.Concurrency at a
// time. Results keep the order of seeds. The first error cancels the rest.
func (r *Runner) BuildMany(ctx context.Context, job *Job, seeds []int64, opts Options) ([]*Build, error) {
	if err := opts.ValidateForBuild(); err != nil {
		return nil, err
	}
	out := make([]*Build, len(seeds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, v := range seeds {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b, err := r.BuildSeed(gctx, job, v, opts)
			if err != nil {
				return fmt.Errorf("seed %d: %w", v, err)
			}
			out[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	r.Logger.Info("built batch", "root", job.Tree.Type(), "seeds", len(seeds))
	return out, nil
}

// Render encodes b in every format of opts.
func (r *Runner) Render(ctx context.Context, b *Build, opts Options) (map[string][]byte, error) {
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := renderFormat(ctx, b, format, opts.Detailed)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", format, err)
		}
		out[format] = data
	}
	return out, nil
}

func renderFormat(ctx context.Context, b *Build, format string, detailed bool) ([]byte, error) {
	switch format {
	case FormatFlat:
		return b.Flat.ToJSON()
	case FormatMaterials:
		return b.Flat.MaterialsToJSON()
	}
	if b.Result == nil {
		return nil, werrors.New(werrors.ErrCodeInternal, "result tree not available for a cached build")
	}
	switch format {
	case FormatJSON:
		return b.Result.ToJSON()
	case FormatDOT:
		return []byte(treeviz.ResultDOT(b.Result, treeviz.Options{Detailed: detailed})), nil
	default:
		return treeviz.RenderSVG(ctx, treeviz.ResultDOT(b.Result, treeviz.Options{Detailed: detailed}))
	}
}

// Visualize draws the builder tree itself as DOT or SVG. Rendered
// diagrams are cached by tree.
func (r *Runner) Visualize(ctx context.Context, job *Job, format string, detailed bool) ([]byte, bool, error) {
	if format != FormatDOT && format != FormatSVG {
		return nil, false, werrors.New(werrors.ErrCodeInvalidInput, "visualize supports dot and svg, not %q", format)
	}
	variant := format
	if detailed {
		variant += "+detailed"
	}
	key := r.Keyer.RenderKey(job.TreeJSON, variant)
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "render")
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "render")

	dot := treeviz.ToDOT(job.Tree, treeviz.Options{Detailed: detailed})
	data := []byte(dot)
	if format == FormatSVG {
		var err error
		if data, err = treeviz.RenderSVG(ctx, dot); err != nil {
			return nil, false, err
		}
	}
	if err := r.Cache.Set(ctx, key, data, cache.RenderTTL); err == nil {
		observability.Cache().OnCacheSet(ctx, "render", len(data))
	}
	return data, false, nil
}

// Export sends the flattened materials of b to the architect.
func (r *Runner) Export(ctx context.Context, ex *export.Exporter, b *Build, onUpdate func(export.Update)) (string, error) {
	p, err := export.NewPayload(b.Seed, b.Flat)
	if err != nil {
		return "", err
	}
	return ex.Export(ctx, p, onUpdate)
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

package plugin

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/cpsdqs/prechoster/internal/logging"
)

// DefaultCacheSize bounds how many loaded capabilities are kept.
const DefaultCacheSize = 256

// Loader produces the capability for one kind. It is called lazily, at
// most once per kind while the result stays cached.
type Loader func(ctx context.Context) (Capability, error)

// Static wraps an already constructed capability as a Loader.
func Static(c Capability) Loader {
	return func(context.Context) (Capability, error) { return c, nil }
}

// Registry manages the available plugin kinds.
type Registry struct {
	mu      sync.RWMutex
	loaders map[string]Loader

	cacheSize int
	cache     *lru.Cache[string, Capability]
	group     singleflight.Group
	logger    *slog.Logger
}

// Option configures the Registry.
type Option func(*Registry)

// WithLogger sets the logger used for load events.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithCacheSize sets the capacity of the loaded-capability cache.
func WithCacheSize(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.cacheSize = n
		}
	}
}

// NewRegistry creates a new empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		loaders:   make(map[string]Loader),
		cacheSize: DefaultCacheSize,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	cache, err := lru.New[string, Capability](r.cacheSize)
	if err != nil {
		// lru.New only fails for non-positive sizes, which options reject.
		panic(err)
	}
	r.cache = cache
	return r
}

// Register adds a loader for kind.
// If a loader for the same kind exists, it is overwritten and any cached
// capability is dropped.
func (r *Registry) Register(kind string, loader Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders[kind] = loader
	r.cache.Remove(kind)
}

// Kinds returns every registered kind, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.loaders))
	for k := range r.loaders {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// Has reports whether a loader exists for kind.
func (r *Registry) Has(kind string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.loaders[kind]
	return ok
}

// Peek returns the loaded capability for kind without loading it.
// Kinds that are not loaded yield an Unloaded placeholder.
func (r *Registry) Peek(kind string) Capability {
	if c, ok := r.cache.Get(kind); ok {
		return c
	}
	return NewUnloaded(kind)
}

// Load resolves kind to its capability, running the loader if needed.
// Concurrent loads of the same kind share one loader call.
func (r *Registry) Load(ctx context.Context, kind string) (Capability, error) {
	if c, ok := r.cache.Get(kind); ok {
		return c, nil
	}

	r.mu.RLock()
	loader, ok := r.loaders[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, &LoadError{Kind: kind, Err: ErrUnknownKind}
	}

	v, err, _ := r.group.Do(kind, func() (any, error) {
		if c, ok := r.cache.Get(kind); ok {
			return c, nil
		}
		c, err := loader(ctx)
		if err != nil {
			return nil, &LoadError{Kind: kind, Err: err}
		}
		r.cache.Add(kind, c)
		r.logger.Debug("plugin loaded", "kind", kind)
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Capability), nil
}

// ResolveAll loads every kind concurrently. The first failure is returned.
func (r *Registry) ResolveAll(ctx context.Context, kinds []string) (map[string]Capability, error) {
	var mu sync.Mutex
	out := make(map[string]Capability, len(kinds))

	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range kinds {
		g.Go(func() error {
			c, err := r.Load(gctx, kind)
			if err != nil {
				return err
			}
			mu.Lock()
			out[kind] = c
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

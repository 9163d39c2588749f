package whisper

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/skillsenselab/whisperd/internal/apperr"
	"github.com/skillsenselab/whisperd/internal/logging"
)

// LoadFunc constructs an engine for a normalized identifier. The cache
// calls it at most once per identifier until it fails.
type LoadFunc func(ctx context.Context, id string) (Engine, error)

// Handle is a loaded model held by the cache.
type Handle struct {
	Identifier string
	Engine     Engine
	LoadedAt   time.Time
}

// Cache holds loaded models for the lifetime of the process. Models are
// loaded on first request and never evicted.
type Cache struct {
	defaultModel string
	load         LoadFunc
	log          *logging.Logger

	mu      sync.Mutex
	entries map[string]*cacheEntry
	current string
}

// cacheEntry serializes loading of one identifier. The per-entry mutex
// lets distinct models load in parallel while concurrent requests for
// the same uncached model perform exactly one load. The first goroutine
// records the outcome before releasing the lock, so every goroutine
// already queued shares it; a failed entry is unlinked from the map so
// only requests arriving after the failure retry.
type cacheEntry struct {
	mu     sync.Mutex
	done   bool
	handle *Handle
	err    error
}

// NewCache creates a cache that loads engines with load and substitutes
// defaultModel for unknown identifiers.
func NewCache(defaultModel string, load LoadFunc) *Cache {
	return &Cache{
		defaultModel: defaultModel,
		load:         load,
		log:          logging.Global().WithComponent("model-cache"),
		entries:      make(map[string]*cacheEntry),
	}
}

// GetOrLoad returns the handle for id, loading the model on first use.
// Unknown identifiers resolve to the configured default. Goroutines
// waiting on an in-flight load share its outcome, success or failure; a
// failed load leaves the identifier absent so a later request retries.
func (c *Cache) GetOrLoad(ctx context.Context, id string) (*Handle, error) {
	requested := id
	id, substituted := Normalize(id, c.defaultModel)
	if substituted {
		c.log.Warn("unknown model requested, using default", logging.Fields(
			"requested", requested,
			logging.FieldModel, id,
		))
	}

	c.mu.Lock()
	entry, ok := c.entries[id]
	if !ok {
		entry = &cacheEntry{}
		c.entries[id] = entry
	}
	c.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.done {
		if entry.err != nil {
			return nil, entry.err
		}
		return entry.handle, nil
	}

	start := time.Now()
	engine, err := c.load(ctx, id)
	if err != nil {
		entry.done = true
		entry.err = apperr.ModelLoad(id, err)
		c.mu.Lock()
		if c.entries[id] == entry {
			delete(c.entries, id)
		}
		c.mu.Unlock()
		c.log.Error("model load failed", logging.Fields(
			logging.FieldModel, id,
			logging.FieldError, err.Error(),
		))
		return nil, entry.err
	}

	// Written under both locks so Loaded can read handles under c.mu
	// alone while GetOrLoad reads them under the entry lock.
	c.mu.Lock()
	entry.handle = &Handle{
		Identifier: id,
		Engine:     engine,
		LoadedAt:   time.Now(),
	}
	entry.done = true
	c.current = id
	c.mu.Unlock()

	c.log.Info("model loaded", logging.Fields(
		logging.FieldModel, id,
		logging.FieldDuration, time.Since(start).Milliseconds(),
	))
	return entry.handle, nil
}

// Loaded returns the identifiers of cached models, sorted.
func (c *Cache) Loaded() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.entries))
	for id, entry := range c.entries {
		if entry.handle != nil {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Current returns the most recently loaded identifier, or "" before any
// load has succeeded.
func (c *Cache) Current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// DefaultModel returns the configured default identifier.
func (c *Cache) DefaultModel() string {
	return c.defaultModel
}

// Warm loads the default model ahead of traffic. Failure is logged and
// swallowed; the first request retries the load.
func (c *Cache) Warm(ctx context.Context) {
	if _, err := c.GetOrLoad(ctx, c.defaultModel); err != nil {
		c.log.Warn("default model preload failed, will retry on demand", logging.Fields(
			logging.FieldModel, c.defaultModel,
			logging.FieldError, err.Error(),
		))
	}
}

// Close releases every loaded engine.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var firstErr error
	for _, entry := range c.entries {
		if entry.handle != nil {
			if err := entry.handle.Engine.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

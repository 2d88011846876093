package regex

import (
	"sync"
	"sync/atomic"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Cache compiles patterns on first use and keeps them keyed by source.
// Failed compilations are stored as sentinels and counted once per
// originating pattern. It is safe for concurrent use; two goroutines may
// compile the same source, but only one result is kept.
type Cache struct {
	engine    Engine
	items     *gocache.Cache
	failed    sync.Map
	sentinels atomic.Int64
	logger    *zap.Logger
}

// NewCache returns an empty cache over engine. A nil logger disables logging.
func NewCache(engine Engine, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		engine: engine,
		items:  gocache.New(gocache.NoExpiration, 0),
		logger: logger,
	}
}

// Get returns the compiled form of source.
func (c *Cache) Get(source string) Regexp {
	return c.get(source, source)
}

// get compiles source, attributing a failure to origin. Anchor variants
// and resolved backreferences share the origin of the pattern they were
// derived from so one broken pattern counts once.
func (c *Cache) get(source, origin string) Regexp {
	if v, ok := c.items.Get(source); ok {
		return v.(Regexp)
	}
	re, err := c.engine.Compile(source)
	if err != nil {
		re = sentinel{}
	}
	if addErr := c.items.Add(source, re, gocache.NoExpiration); addErr != nil {
		if v, ok := c.items.Get(source); ok {
			return v.(Regexp)
		}
		return re
	}
	if err != nil {
		if _, loaded := c.failed.LoadOrStore(origin, struct{}{}); !loaded {
			c.sentinels.Add(1)
			c.logger.Warn("pattern replaced by sentinel",
				zap.String("pattern", origin),
				zap.Error(err))
		}
	}
	return re
}

// SentinelCount returns how many distinct patterns failed to compile.
func (c *Cache) SentinelCount() int {
	return int(c.sentinels.Load())
}

// Len returns the number of compiled sources held.
func (c *Cache) Len() int {
	return c.items.ItemCount()
}

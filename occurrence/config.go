package occurrence

import (
	"time"
)

// EngineConfig holds configuration options for the occurrence engine
type EngineConfig struct {
	// Location is the zone day boundaries are computed in. Nil means time.Local.
	Location *time.Location

	// Cache configuration
	CacheEnabled bool
	CacheConfig  CacheConfig

	// MaxExpansionDays caps how many days Occurrences will enumerate
	MaxExpansionDays int
}

// DefaultEngineConfig provides sensible defaults for a long-running client
var DefaultEngineConfig = EngineConfig{
	CacheEnabled:     true,
	CacheConfig:      DefaultCacheConfig,
	MaxExpansionDays: 366 * 2,
}

// DisabledCacheConfig turns off caching entirely
var DisabledCacheConfig = EngineConfig{
	CacheEnabled:     false,
	MaxExpansionDays: 366 * 2,
}

// NewEngine creates an engine in the local zone without a cache.
func NewEngine() *Engine {
	return NewEngineWithConfig(DisabledCacheConfig)
}

// NewEngineWithConfig creates a new occurrence engine with custom configuration
func NewEngineWithConfig(config EngineConfig) *Engine {
	var cache *Cache
	if config.CacheEnabled {
		cache = NewCache(config.CacheConfig)
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.MaxExpansionDays <= 0 {
		config.MaxExpansionDays = DisabledCacheConfig.MaxExpansionDays
	}

	return &Engine{
		cache:  cache,
		config: config,
	}
}

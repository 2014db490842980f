package config

import "time"

// CacheConfig controls the Redis response cache in front of the public
// catalog.  Seat counts are part of the cached payload, so TTL stays short
// by default.  Responses larger than MaxBodyBytes are never stored.
type CacheConfig struct {
    Enabled      bool
    TTL          time.Duration
    Prefix       string
    MaxBodyBytes int
}

func LoadCacheConfig() CacheConfig {
    cfg := CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        TTL:          envDur("CACHE_TTL", 10*time.Second),
        Prefix:       envStr("CACHE_PREFIX", "catalog"),
        MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
    }
    if cfg.TTL <= 0 {
        cfg.TTL = 10 * time.Second
    }
    return cfg
}

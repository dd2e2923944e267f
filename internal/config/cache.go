package config

import "time"

// CacheConfig controls the Redis cache in front of the public listing
// search.  Only anonymous requests are cached: a request carrying the
// session cookie named by SkipCookie always reaches the handler, because
// which listings are visible depends on who is asking.
type CacheConfig struct {
    Enabled      bool
    TTL          time.Duration
    Prefix       string
    MaxBodyBytes int
    SkipCookie   string
}

func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        TTL:          envDur("CACHE_TTL", 30*time.Second),
        Prefix:       envStr("CACHE_PREFIX", "lotty:cache"),
        MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
        SkipCookie:   SessionCookieName,
    }
}

package config

import (
    "os"
    "strconv"
    "time"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "lotty_session"

// RateLimitConfig sizes the Redis token buckets.  Every caller gets a
// bucket of Capacity tokens for the API and a smaller one of AuthCapacity
// for login and registration.  One token comes back every RefillEvery.
type RateLimitConfig struct {
    Enabled      bool
    Capacity     int
    AuthCapacity int
    RefillEvery  time.Duration
    Prefix       string
    PerUser      bool // key signed-in callers by user id rather than IP
}

func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled:      envBool("RATE_LIMIT_ENABLED", true),
        Capacity:     envInt("RATE_LIMIT_CAPACITY", 60),
        AuthCapacity: envInt("RATE_LIMIT_AUTH_CAPACITY", 10),
        RefillEvery:  envDur("RATE_LIMIT_REFILL_EVERY", time.Second),
        Prefix:       envStr("RATE_LIMIT_PREFIX", "lotty:rl"),
        PerUser:      envBool("RATE_LIMIT_PER_USER", true),
    }
    if cfg.Capacity < 1 {
        cfg.Capacity = 1
    }
    if cfg.AuthCapacity < 1 || cfg.AuthCapacity > cfg.Capacity {
        cfg.AuthCapacity = cfg.Capacity
    }
    if cfg.RefillEvery <= 0 {
        cfg.RefillEvery = time.Second
    }
    return cfg
}

// BucketTTL is how long an idle bucket is kept: long enough to refill
// completely, after which a fresh bucket is equivalent.
func (c RateLimitConfig) BucketTTL() time.Duration {
    return time.Duration(c.Capacity)*c.RefillEvery + time.Minute
}

func envStr(k, d string) string {
    if v := os.Getenv(k); v != "" {
        return v
    }
    return d
}

func envBool(k string, d bool) bool {
    switch os.Getenv(k) {
    case "1", "true", "TRUE", "True", "yes", "on":
        return true
    case "0", "false", "FALSE", "False", "no", "off":
        return false
    }
    return d
}

func envInt(k string, d int) int {
    if n, err := strconv.Atoi(os.Getenv(k)); err == nil {
        return n
    }
    return d
}

func envDur(k string, d time.Duration) time.Duration {
    if dur, err := time.ParseDuration(os.Getenv(k)); err == nil {
        return dur
    }
    return d
}

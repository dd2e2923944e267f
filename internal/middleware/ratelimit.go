package middleware

import (
    "context"
    "fmt"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/lotty-marketplace/internal/config"
)

// authPaths share the smaller AuthCapacity bucket so password guessing
// runs out long before normal browsing does.
var authPaths = map[string]bool{
    "/api/login":    true,
    "/api/register": true,
}

// takeToken refills the bucket in KEYS[1] by whole intervals since the
// last refill, then tries to take one token.  It returns
// {allowed, remaining, wait_ms}.
var takeToken = redis.NewScript(`
local capacity = tonumber(ARGV[1])
local every = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local b = redis.call('HMGET', KEYS[1], 'tokens', 'at')
local tokens = tonumber(b[1]) or capacity
local at = tonumber(b[2]) or now

local gained = math.floor((now - at) / every)
if gained > 0 then
    tokens = math.min(capacity, tokens + gained)
    at = at + gained * every
end

local allowed = 0
local wait = 0
if tokens > 0 then
    allowed = 1
    tokens = tokens - 1
else
    wait = every - (now - at)
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'at', at)
redis.call('PEXPIRE', KEYS[1], ttl)
return {allowed, tokens, wait}
`)

type bucketState struct {
    allowed   bool
    remaining int64
    wait      time.Duration
}

func take(ctx context.Context, rdb *redis.Client, key string, capacity int, every, ttl time.Duration) (bucketState, error) {
    vals, err := takeToken.Run(ctx, rdb, []string{key},
        capacity, every.Milliseconds(), time.Now().UnixMilli(), ttl.Milliseconds()).Int64Slice()
    if err != nil {
        return bucketState{}, err
    }
    if len(vals) != 3 {
        return bucketState{}, fmt.Errorf("unexpected bucket reply %v", vals)
    }
    return bucketState{
        allowed:   vals[0] == 1,
        remaining: vals[1],
        wait:      time.Duration(vals[2]) * time.Millisecond,
    }, nil
}

// NewTokenBucket limits requests per caller with token buckets kept in
// Redis, so every instance behind a load balancer shares one budget.  It
// must run after LoadSession when cfg.PerUser is set.  Redis errors let
// the request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    ttl := cfg.BucketTTL()
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            capacity := cfg.Capacity
            if authPaths[c.Path()] {
                capacity = cfg.AuthCapacity
            }
            key := rateKey(cfg, c)
            st, err := take(c.Request().Context(), rdb, key, capacity, cfg.RefillEvery, ttl)
            if err != nil {
                c.Logger().Warnf("ratelimit: %s: %v", key, err)
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(capacity))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(st.remaining, 10))
            if !st.allowed {
                secs := int64((st.wait + time.Second - 1) / time.Second)
                if secs < 1 {
                    secs = 1
                }
                h.Set("Retry-After", strconv.FormatInt(secs, 10))
                return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "rate limit exceeded"})
            }
            return next(c)
        }
    }
}

// rateKey names the caller's bucket: <prefix>:<auth|api>:<user:id|ip:addr>.
func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
    scope := "api"
    if authPaths[c.Path()] {
        scope = "auth"
    }
    who := "ip:" + c.RealIP()
    if id := userKey(c); cfg.PerUser && id != "anon" {
        who = "user:" + id
    }
    return cfg.Prefix + ":" + scope + ":" + who
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

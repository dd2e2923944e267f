package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/hex"
    "encoding/json"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/lotty-marketplace/internal/config"
)

// cachedResponse is the value stored per cache key.
type cachedResponse struct {
    Status      int    `json:"status"`
    ContentType string `json:"contentType"`
    Body        []byte `json:"body"`
}

// bodyRecorder copies what the handler writes, up to max bytes.  Larger
// bodies are forwarded but not kept.
type bodyRecorder struct {
    http.ResponseWriter
    status   int
    buf      bytes.Buffer
    max      int
    overflow bool
}

func (r *bodyRecorder) WriteHeader(code int) {
    r.status = code
    r.ResponseWriter.WriteHeader(code)
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
    if !r.overflow {
        if r.max > 0 && r.buf.Len()+len(b) > r.max {
            r.overflow = true
            r.buf.Reset()
        } else {
            r.buf.Write(b)
        }
    }
    return r.ResponseWriter.Write(b)
}

// responseKey hashes the route and its query.  url.Values.Encode sorts by
// key, so ?city=a&page=2 and ?page=2&city=a share one entry.
func responseKey(prefix string, c echo.Context) string {
    sum := sha1.Sum([]byte(c.Path() + "?" + c.QueryParams().Encode()))
    return prefix + ":" + hex.EncodeToString(sum[:])
}

// NewRedisCache serves repeated anonymous GETs from Redis for cfg.TTL and
// marks responses with X-Cache: HIT or MISS.  Only 200 responses are
// stored.  Requests carrying cfg.SkipCookie bypass the cache entirely.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 30 * time.Second
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if c.Request().Method != http.MethodGet {
                return next(c)
            }
            if cfg.SkipCookie != "" {
                if ck, err := c.Cookie(cfg.SkipCookie); err == nil && ck.Value != "" {
                    return next(c)
                }
            }

            ctx := c.Request().Context()
            key := responseKey(cfg.Prefix, c)
            if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
                var hit cachedResponse
                if json.Unmarshal(raw, &hit) == nil {
                    c.Response().Header().Set("X-Cache", "HIT")
                    return c.Blob(hit.Status, hit.ContentType, hit.Body)
                }
            }

            rec := &bodyRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, max: cfg.MaxBodyBytes}
            c.Response().Writer = rec
            c.Response().Header().Set("X-Cache", "MISS")
            if err := next(c); err != nil {
                return err
            }
            if rec.status != http.StatusOK || rec.overflow {
                return nil
            }
            raw, err := json.Marshal(cachedResponse{
                Status:      rec.status,
                ContentType: c.Response().Header().Get(echo.HeaderContentType),
                Body:        rec.buf.Bytes(),
            })
            if err != nil {
                return nil
            }
            // the client may have gone away once the body is written
            if err := rdb.Set(context.WithoutCancel(ctx), key, raw, ttl).Err(); err != nil {
                c.Logger().Warnf("cache: store %s: %v", key, err)
            }
            return nil
        }
    }
}

package middleware

import (
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/lotty-marketplace/internal/config"
)

func TestResponseKeyIgnoresParamOrder(t *testing.T) {
    e := echo.New()
    key := func(target string) string {
        c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
        c.SetPath("/api/listings")
        return responseKey("lotty:cache", c)
    }
    a := key("/api/listings?city=Luque&page=2")
    if a != key("/api/listings?page=2&city=Luque") {
        t.Fatal("parameter order changed the key")
    }
    if a == key("/api/listings?city=Luque&page=3") {
        t.Fatal("different queries share a key")
    }
    if !strings.HasPrefix(a, "lotty:cache:") {
        t.Fatalf("key %q", a)
    }
}

func TestBodyRecorderDropsOversizedBodies(t *testing.T) {
    rec := &bodyRecorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK, max: 8}
    rec.Write([]byte("1234"))
    if rec.overflow || rec.buf.String() != "1234" {
        t.Fatalf("small write: %q overflow=%v", rec.buf.String(), rec.overflow)
    }
    rec.Write([]byte("56789"))
    if !rec.overflow || rec.buf.Len() != 0 {
        t.Fatal("oversized body kept")
    }
}

func TestDisabledMiddlewaresPassThrough(t *testing.T) {
    for _, mw := range []echo.MiddlewareFunc{
        NewRedisCache(config.CacheConfig{Enabled: true}, nil),
        NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil),
    } {
        if rec := serve(t, whoAmI, "", mw); rec.Code != http.StatusOK || rec.Body.String() != "anonymous" {
            t.Fatalf("got %d %q", rec.Code, rec.Body.String())
        }
    }
}

package config

import (
    "context"
    "crypto/tls"
    "log"
    "net"
    "os"
    "time"

    "github.com/redis/go-redis/v9"
)

// RedisOptions builds client options from the environment.  REDIS_URL
// (redis:// or rediss://) wins when set; otherwise REDIS_HOST, REDIS_PORT,
// REDIS_PASSWORD, REDIS_DB and REDIS_TLS are read.
func RedisOptions() (*redis.Options, error) {
    if u := os.Getenv("REDIS_URL"); u != "" {
        return redis.ParseURL(u)
    }
    host := envStr("REDIS_HOST", "localhost")
    opts := &redis.Options{
        Addr:     net.JoinHostPort(host, envStr("REDIS_PORT", "6379")),
        Password: os.Getenv("REDIS_PASSWORD"),
        DB:       envInt("REDIS_DB", 0),
    }
    if envBool("REDIS_TLS", false) {
        opts.TLSConfig = &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}
    }
    return opts, nil
}

// NewRedisClient returns a connected client for the listing cache and the
// rate limiter, or nil when REDIS_ENABLED is false or the server does not
// answer at startup.  Both middlewares treat nil as "off".
func NewRedisClient() *redis.Client {
    if !envBool("REDIS_ENABLED", true) {
        return nil
    }
    opts, err := RedisOptions()
    if err != nil {
        log.Printf("redis: bad configuration (%v); cache and rate limiting disabled", err)
        return nil
    }
    client := redis.NewClient(opts)
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        log.Printf("redis: %s unreachable (%v); cache and rate limiting disabled", opts.Addr, err)
        _ = client.Close()
        return nil
    }
    return client
}

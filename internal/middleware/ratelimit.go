package middleware

import (
    "context"
    "fmt"
    "math"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
    "github.com/redis/go-redis/v9"
    "golang.org/x/time/rate"

    "github.com/iliyamo/conference-booking/internal/config"
)

// NewTokenBucket limits requests per key (see rateKey).  With a Redis
// client the bucket lives in Redis and is shared by every instance;
// without one it falls back to echo's in-memory limiter.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    if rdb == nil {
        return newMemoryLimiter(cfg)
    }
    return newRedisLimiter(cfg, rdb)
}

func newMemoryLimiter(cfg config.RateLimitConfig) echo.MiddlewareFunc {
    store := echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
        Rate:      rate.Limit(cfg.PerSecond()),
        Burst:     cfg.Capacity,
        ExpiresIn: cfg.TTL,
    })
    wait := cfg.RefillInterval
    return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
        Store: store,
        IdentifierExtractor: func(c echo.Context) (string, error) {
            return rateKey(cfg, c), nil
        },
        DenyHandler: func(c echo.Context, _ string, _ error) error {
            return tooManyRequests(c, wait)
        },
    })
}

func tooManyRequests(c echo.Context, wait time.Duration) error {
    secs := int(math.Ceil(wait.Seconds()))
    if secs < 0 {
        secs = 0
    }
    c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
    return c.JSON(http.StatusTooManyRequests, map[string]any{
        "error":       "too_many_requests",
        "message":     "rate limit exceeded",
        "retry_after": secs,
    })
}

// takeToken refills whole intervals since the last refill, then spends
// one token if any is left.  Returns {allowed, remaining, wait_ms}.
var takeToken = redis.NewScript(`
local now      = tonumber(ARGV[1])
local cap      = tonumber(ARGV[2])
local per      = tonumber(ARGV[3])
local every    = tonumber(ARGV[4])
local ttl      = tonumber(ARGV[5])

local tokens = tonumber(redis.call('HGET', KEYS[1], 'tokens'))
local since  = tonumber(redis.call('HGET', KEYS[1], 'since'))
if not tokens or not since then
  tokens, since = cap, now
end

local steps = math.floor(math.max(0, now - since) / every)
if steps > 0 then
  tokens = math.min(cap, tokens + steps * per)
  since = since + steps * every
end

local ok, wait = 0, 0
if tokens >= 1 then
  ok, tokens = 1, tokens - 1
else
  wait = math.max(0, every - (now - since))
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'since', since)
redis.call('EXPIRE', KEYS[1], ttl)
return {ok, tokens, wait}
`)

type verdict struct {
    allowed   bool
    remaining int64
    wait      time.Duration
}

func spend(ctx context.Context, rdb *redis.Client, cfg config.RateLimitConfig, key string) (verdict, error) {
    res, err := takeToken.Run(ctx, rdb, []string{key},
        time.Now().UnixMilli(),
        cfg.Capacity,
        cfg.RefillTokens,
        cfg.RefillInterval.Milliseconds(),
        int64(cfg.TTL/time.Second),
    ).Int64Slice()
    if err != nil {
        return verdict{}, err
    }
    if len(res) != 3 {
        return verdict{}, fmt.Errorf("rate limit script returned %d values", len(res))
    }
    return verdict{
        allowed:   res[0] == 1,
        remaining: res[1],
        wait:      time.Duration(res[2]) * time.Millisecond,
    }, nil
}

func newRedisLimiter(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    limit := strconv.Itoa(cfg.Capacity)
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := rateKey(cfg, c)
            v, err := spend(c.Request().Context(), rdb, cfg, key)
            if err != nil {
                // Fail open: a Redis outage must not take the API down.
                if cfg.Debug {
                    c.Logger().Warnf("ratelimit %s: %v", key, err)
                }
                return next(c)
            }
            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", limit)
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(v.remaining, 10))
            if !v.allowed {
                return tooManyRequests(c, v.wait)
            }
            return next(c)
        }
    }
}

// rateKey combines the parts named by cfg.KeyStrategy, an underscore
// separated list of ip, user and route.  Unknown strategies use all three.
func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
    parts := []string{cfg.Prefix}
    strategy := strings.ToLower(cfg.KeyStrategy)
    known := false
    for _, p := range strings.Split(strategy, "_") {
        if p == "ip" || p == "user" || p == "route" {
            known = true
        }
    }
    if !known {
        strategy = "ip_user_route"
    }
    for _, p := range strings.Split(strategy, "_") {
        switch p {
        case "ip":
            ip := c.RealIP()
            if ip == "" {
                ip = "unknown"
            }
            parts = append(parts, "ip", ip)
        case "user":
            parts = append(parts, "user", userID(c))
        case "route":
            parts = append(parts, "route", c.Request().Method+" "+c.Path())
        }
    }
    return strings.Join(parts, ":")
}

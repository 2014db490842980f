package middleware

import (
    "bytes"
    "crypto/sha256"
    "encoding/hex"
    "net/http"

    "github.com/fxamacker/cbor/v2"
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/conference-booking/internal/config"
)

// cachedResponse is what a catalog hit replays.
type cachedResponse struct {
    Status      int    `cbor:"1,keyasint"`
    ContentType string `cbor:"2,keyasint"`
    Body        []byte `cbor:"3,keyasint"`
}

// teeWriter forwards the response to the client and keeps a copy of the
// body until it grows past limit.
type teeWriter struct {
    http.ResponseWriter
    status   int
    buf      bytes.Buffer
    limit    int
    overflow bool
}

func (w *teeWriter) WriteHeader(code int) {
    w.status = code
    w.ResponseWriter.WriteHeader(code)
}

func (w *teeWriter) Write(b []byte) (int, error) {
    if !w.overflow {
        if w.limit > 0 && w.buf.Len()+len(b) > w.limit {
            w.overflow = true
            w.buf.Reset()
        } else {
            w.buf.Write(b)
        }
    }
    return w.ResponseWriter.Write(b)
}

// catalogKey identifies a response by route, concrete path and query, so
// /v1/exhibitions/A/workshops?date=x and ?date=y never share an entry.
func catalogKey(prefix string, c echo.Context) string {
    r := c.Request()
    sum := sha256.Sum256([]byte(c.Path() + "\x00" + r.URL.Path + "\x00" + r.URL.RawQuery))
    return prefix + ":" + hex.EncodeToString(sum[:16])
}

// NewRedisCache caches successful GET responses of the public catalog in
// Redis for cfg.TTL.  Hits carry X-Cache: HIT.  Without a client, or when
// disabled, it is a passthrough.  Redis errors degrade to a miss.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if c.Request().Method != http.MethodGet {
                return next(c)
            }
            ctx := c.Request().Context()
            key := catalogKey(cfg.Prefix, c)

            if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
                var hit cachedResponse
                if cbor.Unmarshal(raw, &hit) == nil && hit.Status != 0 {
                    c.Response().Header().Set("X-Cache", "HIT")
                    return c.Blob(hit.Status, hit.ContentType, hit.Body)
                }
            }

            tw := &teeWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
            c.Response().Writer = tw
            c.Response().Header().Set("X-Cache", "MISS")
            if err := next(c); err != nil {
                return err
            }
            if tw.status != http.StatusOK || tw.overflow {
                return nil
            }
            raw, err := cbor.Marshal(cachedResponse{
                Status:      tw.status,
                ContentType: c.Response().Header().Get(echo.HeaderContentType),
                Body:        tw.buf.Bytes(),
            })
            if err != nil {
                return nil
            }
            if err := rdb.Set(ctx, key, raw, cfg.TTL).Err(); err != nil {
                c.Logger().Warnf("catalog cache: %v", err)
            }
            return nil
        }
    }
}

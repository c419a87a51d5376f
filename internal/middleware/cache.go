package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/movie-listing/internal/config"
)

// cachedResponse is what gets stored in Redis for one request URI.
type cachedResponse struct {
	Status int         `json:"status"`
	Header http.Header `json:"header"`
	Body   []byte      `json:"body"`
}

// captureWriter tees the response body while forwarding it to the client.
// Once the body grows past limit it stops buffering and marks itself
// oversize so the entry is not stored.
type captureWriter struct {
	http.ResponseWriter
	buf      bytes.Buffer
	limit    int
	oversize bool
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if !cw.oversize {
		if cw.limit > 0 && cw.buf.Len()+len(b) > cw.limit {
			cw.oversize = true
			cw.buf.Reset()
		} else {
			cw.buf.Write(b)
		}
	}
	return cw.ResponseWriter.Write(b)
}

func generationKey(cfg config.CacheConfig) string { return cfg.Prefix + ":gen" }

// cacheKey hashes the full request URI so every title and page gets its
// own entry, and prefixes the current generation.
func cacheKey(cfg config.CacheConfig, gen string, r *http.Request) string {
	sum := sha1.Sum([]byte(r.Method + " " + r.URL.RequestURI()))
	return fmt.Sprintf("%s:%s:%x", cfg.Prefix, gen, sum[:])
}

// NewResponseCache serves repeated public reads from Redis.  Cacheable
// methods are looked up by URI under the current generation; a successful
// request with any other method bumps the generation so that listings,
// averages and comment threads never outlive the write that changed them.
// Like the rate limiter it is a no-op without Redis and fails open.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := req.Context()
			method := strings.ToUpper(req.Method)

			if !cfg.Methods[method] {
				if err := next(c); err != nil {
					return err
				}
				if method != http.MethodOptions && c.Response().Status < http.StatusBadRequest {
					if err := rdb.Incr(context.Background(), generationKey(cfg)).Err(); err != nil {
						c.Logger().Warnf("[cache] generation bump failed after %s %s: %v", method, req.URL.Path, err)
					}
				}
				return nil
			}

			gen, err := rdb.Get(ctx, generationKey(cfg)).Result()
			if errors.Is(err, redis.Nil) {
				gen = "0"
			} else if err != nil {
				return next(c)
			}
			key := cacheKey(cfg, gen, req)

			if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
				var cached cachedResponse
				if json.Unmarshal(bs, &cached) == nil {
					h := c.Response().Header()
					for k, vals := range cached.Header {
						if strings.EqualFold(k, echo.HeaderContentLength) || strings.EqualFold(k, echo.HeaderXRequestID) {
							continue
						}
						for _, v := range vals {
							h.Add(k, v)
						}
					}
					h.Set("X-Cache", "HIT")
					return c.Blob(cached.Status, h.Get(echo.HeaderContentType), cached.Body)
				}
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, limit: cfg.MaxBodyBytes}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if c.Response().Status != http.StatusOK || cw.oversize {
				return nil
			}
			hdr := c.Response().Header().Clone()
			hdr.Del("X-Cache")
			payload, err := json.Marshal(cachedResponse{Status: http.StatusOK, Header: hdr, Body: cw.buf.Bytes()})
			if err == nil {
				_ = rdb.Set(context.Background(), key, payload, ttl).Err()
			}
			return nil
		}
	}
}

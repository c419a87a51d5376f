package middleware

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	glog "github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-listing/internal/config"
	"github.com/iliyamo/movie-listing/internal/database"
	"github.com/iliyamo/movie-listing/internal/model"
	"github.com/iliyamo/movie-listing/internal/repository"
	"github.com/iliyamo/movie-listing/internal/service"
	"github.com/iliyamo/movie-listing/internal/utils"
)

func newGuard(t *testing.T) (*service.Guard, *model.User) {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db))

	users := repository.NewUserRepo(db)
	u := &model.User{FullName: "Ada", Username: "ada", Email: "ada@example.com", HashedPassword: "h"}
	require.NoError(t, users.Create(context.Background(), u))
	return service.NewGuard(users, "secret"), u
}

func TestJWTAuth(t *testing.T) {
	guard, ada := newGuard(t)
	e := echo.New()
	handler := JWTAuth(guard)(func(c echo.Context) error {
		u, ok := CurrentUser(c)
		require.True(t, ok)
		return c.String(http.StatusOK, u.Username+":"+userID(c))
	})

	tok, err := utils.NewAccessToken("secret", "ada", 5)
	require.NoError(t, err)

	t.Run("valid bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "bearer "+tok.Token)
		rec := httptest.NewRecorder()
		require.NoError(t, handler(e.NewContext(req, rec)))
		assert.Equal(t, "ada:1", rec.Body.String())
		assert.Equal(t, uint64(1), ada.ID)
	})

	for name, header := range map[string]string{
		"missing":      "",
		"wrong scheme": "Basic " + tok.Token,
		"bad token":    "Bearer nope",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set(echo.HeaderAuthorization, header)
			}
			err := handler(e.NewContext(req, httptest.NewRecorder()))
			assert.True(t, errors.Is(err, service.ErrUnauthenticated))
		})
	}
}

func TestCurrentUserAbsent(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	_, ok := CurrentUser(c)
	assert.False(t, ok)
	assert.Equal(t, "anon", userID(c))
}

func TestRateIdentity(t *testing.T) {
	e := echo.New()
	newCtx := func(token string) echo.Context {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if token != "" {
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		}
		return e.NewContext(req, httptest.NewRecorder())
	}
	verify := func(raw string) (string, error) { return utils.ParseAccessToken("secret", raw) }
	tok, err := utils.NewAccessToken("secret", "ada", 5)
	require.NoError(t, err)
	forged, err := utils.NewAccessToken("other-secret", "ada", 5)
	require.NoError(t, err)

	assert.Equal(t, "sub:ada", rateIdentity(newCtx(tok.Token), verify))
	assert.Equal(t, "anon", rateIdentity(newCtx(""), verify))
	assert.Equal(t, "anon", rateIdentity(newCtx(tok.Token), nil))
	for _, junk := range []string{"junk-1", "junk-2", forged.Token} {
		assert.Equal(t, "anon", rateIdentity(newCtx(junk), verify), junk)
	}

	c := newCtx("junk")
	c.Set(userKey, &model.User{ID: 7})
	assert.Equal(t, "7", rateIdentity(c, verify))
}

func TestTokenBucketIgnoresRotatedJunkTokens(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := config.RateLimitConfig{Enabled: true, Capacity: 2, RefillTokens: 1, RefillInterval: time.Hour, TTL: time.Hour, KeyStrategy: "user", Prefix: "test:rl"}
	verify := func(raw string) (string, error) { return utils.ParseAccessToken("secret", raw) }
	e := echo.New()
	e.Use(NewTokenBucket(cfg, rdb, verify))
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, fmt.Sprintf("Bearer junk-%d", i))
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.True(t, mr.Exists("test:rl:user:anon"))
}

func TestTokenBucket(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := config.RateLimitConfig{
		Enabled: true, Capacity: 2, RefillTokens: 1, RefillInterval: time.Minute,
		TTL: 10 * time.Minute, KeyStrategy: "ip", Prefix: "test:rl",
	}
	e := echo.New()
	e.Use(NewTokenBucket(cfg, rdb, nil))
	e.GET("/movies", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/movies", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	first := do()
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusOK, do().Code)

	blocked := do()
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.NotEmpty(t, blocked.Header().Get("Retry-After"))
	assert.Contains(t, blocked.Body.String(), "rate limit exceeded")
	assert.True(t, mr.Exists("test:rl:ip:10.0.0.1"))
}

func TestTokenBucketPassThrough(t *testing.T) {
	e := echo.New()
	e.Use(NewTokenBucket(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil, nil))
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestTokenBucketFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Second, TTL: time.Minute}
	e := echo.New()
	e.Use(NewTokenBucket(cfg, rdb, nil))
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/rating", nil)
	req.RemoteAddr = "10.0.0.9:1"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/rating")
	c.Set(userKey, &model.User{ID: 42})

	cfg := config.RateLimitConfig{Prefix: "p"}
	assert.Equal(t, "p:ip:10.0.0.9:user:42:route:POST /rating", buildRateKey(cfg, c, userID(c)))
	cfg.KeyStrategy = "user"
	assert.Equal(t, "p:user:42", buildRateKey(cfg, c, userID(c)))
	cfg.KeyStrategy = "route"
	assert.Equal(t, "p:route:POST /rating", buildRateKey(cfg, c, userID(c)))
}

func TestResponseCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{http.MethodGet: true}, TTL: time.Minute, Prefix: "test:cache", MaxBodyBytes: 64}
	hits := 0
	e := echo.New()
	e.Use(NewResponseCache(cfg, rdb))
	e.GET("/movies", func(c echo.Context) error {
		hits++
		return c.JSON(http.StatusOK, []string{"Heat"})
	})
	e.GET("/big", func(c echo.Context) error {
		hits++
		return c.String(http.StatusOK, string(make([]byte, 128)))
	})
	e.GET("/missing", func(c echo.Context) error {
		hits++
		return echo.NewHTTPError(http.StatusNotFound)
	})
	e.POST("/rating", func(c echo.Context) error { return c.NoContent(http.StatusCreated) })

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	first := get("/movies")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	second := get("/movies")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, echo.MIMEApplicationJSON, second.Header().Get(echo.HeaderContentType))
	assert.Equal(t, 1, hits)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rating", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "MISS", get("/movies").Header().Get("X-Cache"))
	assert.Equal(t, 2, hits)

	hits = 0
	get("/big")
	get("/big")
	assert.Equal(t, 2, hits, "oversize bodies are not stored")

	hits = 0
	assert.Equal(t, http.StatusNotFound, get("/missing").Code)
	get("/missing")
	assert.Equal(t, 2, hits, "errors are not stored")
}

func TestResponseCacheLogsFailedGenerationBump(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{http.MethodGet: true}, TTL: time.Minute, Prefix: "test:cache"}
	require.NoError(t, mr.Set("test:cache:gen", "not-a-number"))

	var logs bytes.Buffer
	e := echo.New()
	e.Logger.SetOutput(&logs)
	e.Logger.SetLevel(glog.WARN)
	e.Use(NewResponseCache(cfg, rdb))
	e.POST("/rating", func(c echo.Context) error { return c.NoContent(http.StatusCreated) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rating", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, logs.String(), "generation bump failed")
}

func TestResponseCachePassThrough(t *testing.T) {
	mw := NewResponseCache(config.CacheConfig{Enabled: true}, nil)
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c))
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

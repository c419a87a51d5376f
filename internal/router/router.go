package router // package router defines how HTTP routes are registered for the API

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"github.com/iliyamo/movie-listing/internal/config"
	"github.com/iliyamo/movie-listing/internal/handler"    // import the handlers that implement the API surface
	"github.com/iliyamo/movie-listing/internal/middleware" // import middleware for JWT authentication and rate limiting
	"github.com/iliyamo/movie-listing/internal/service"
)

// Handlers groups the HTTP handlers the router dispatches to.
type Handlers struct {
	Auth     *handler.AuthHandler
	Movies   *handler.MovieHandler
	Ratings  *handler.RatingHandler
	Comments *handler.CommentHandler
}

// Options carries the infrastructure shared by every route.
type Options struct {
	Logger      *log.Logger
	RateLimit   config.RateLimitConfig
	Cache       config.CacheConfig
	Redis       *redis.Client // nil disables rate limiting and caching
	MaxUploadMB int
}

// New builds the echo instance with global middleware and every route.
// Middleware order: trailing slashes are stripped before routing, then
// each request gets an id, a log line and panic recovery. Rate limiting
// runs before the response cache so cached reads still cost a token.
func New(guard *service.Guard, h Handlers, opt Options) *echo.Echo {
	if opt.Logger == nil {
		opt.Logger = log.New("movie-listing")
	}
	e := echo.New()
	e.HideBanner = true
	e.Logger = opt.Logger
	e.HTTPErrorHandler = handler.ErrorHandler(opt.Logger)

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(requestLogger(opt.Logger))
	e.Use(echomw.Recover())
	e.Use(middleware.NewTokenBucket(opt.RateLimit, opt.Redis, guard.TokenSubject))
	e.Use(middleware.NewResponseCache(opt.Cache, opt.Redis))

	auth := middleware.JWTAuth(guard)
	RegisterRoutes(e)
	RegisterAccount(e, h.Auth, auth)
	RegisterMovies(e, h.Movies, auth, opt.MaxUploadMB)
	RegisterCommunity(e, h.Ratings, h.Comments, auth)
	return e
}

// requestLogger writes one JSON line per request.
func requestLogger(l *log.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := log.JSON{
				"event":      "http.request",
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
				"request_id": v.RequestID,
			}
			if v.Error != nil {
				fields["error"] = v.Error.Error()
			}
			l.Infoj(fields)
			return nil
		},
	})
}

// RegisterRoutes registers the unauthenticated service routes: the welcome
// message at "/" and a health check at "/healthz".
func RegisterRoutes(e *echo.Echo) {
	e.GET("/", handler.Root)
	e.GET("/healthz", handler.Health)
}

// RegisterAccount registers signup, login and the protected password reset.
func RegisterAccount(e *echo.Echo, a *handler.AuthHandler, auth echo.MiddlewareFunc) {
	e.POST("/signup", a.Signup)
	e.POST("/login", a.Login)
	e.PUT("/reset_password/:email", a.ResetPassword, auth)
}

// WithCORS wraps the echo handler with CORS handling for the given origins.
func WithCORS(h http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
		ExposedHeaders: []string{echo.HeaderXRequestID, "Retry-After"},
	}).Handler(h)
}

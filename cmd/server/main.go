package main // Entry point package

import (
	"context"
	stdlog "log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/iliyamo/movie-listing/internal/config"     // env config loader
	"github.com/iliyamo/movie-listing/internal/database"   // store handle and schema
	"github.com/iliyamo/movie-listing/internal/handler"    // HTTP handlers
	"github.com/iliyamo/movie-listing/internal/logging"    // gommon logger with Papertrail
	"github.com/iliyamo/movie-listing/internal/queue"      // activity event publisher
	"github.com/iliyamo/movie-listing/internal/repository" // data access
	"github.com/iliyamo/movie-listing/internal/router"     // echo instance and routes
	"github.com/iliyamo/movie-listing/internal/service"    // use cases
)

func main() {
	cfg := config.Load() // Load environment config

	l, closer, err := logging.New("movie-listing", cfg)
	if err != nil {
		stdlog.Fatalf("logger: %v", err)
	}
	defer closer.Close()

	db, err := database.OpenFromConfig(cfg)
	if err != nil {
		l.Fatalf("database: %v", err)
	}
	defer db.Close()

	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = database.Migrate(migrateCtx, db)
	cancel()
	if err != nil {
		l.Fatalf("migrate: %v", err)
	}

	// Activity events are optional; without a broker the services skip them.
	var events service.EventPublisher
	if cfg.AMQPURL != "" {
		pub := queue.NewPublisher(cfg.AMQPURL)
		defer pub.Close()
		events = pub
	}

	users := repository.NewUserRepo(db)
	movies := repository.NewMovieRepo(db)
	guard := service.NewGuard(users, cfg.JWTSecret)

	h := router.Handlers{
		Auth:     handler.NewAuthHandler(service.NewUserService(users, cfg, l, events)),
		Movies:   handler.NewMovieHandler(service.NewMovieService(movies, l, events)),
		Ratings:  handler.NewRatingHandler(service.NewRatingService(movies, repository.NewRatingRepo(db), l, events)),
		Comments: handler.NewCommentHandler(service.NewCommentService(movies, repository.NewCommentRepo(db), repository.NewReplyRepo(db), l, events)),
	}

	rdb := config.NewRedisClient() // nil when Redis is unreachable
	if rdb == nil {
		l.Warn("redis unavailable: rate limiting and response cache disabled")
	} else {
		defer rdb.Close()
	}

	e := router.New(guard, h, router.Options{
		Logger:      l,
		RateLimit:   config.LoadRateLimitConfig(),
		Cache:       config.LoadCacheConfig(),
		Redis:       rdb,
		MaxUploadMB: cfg.MaxUploadMB,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.WithCORS(e, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		l.Infof("listening on %s (env=%s)", srv.Addr, cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Errorf("server: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Errorf("shutdown: %v", err)
	}
	l.Info("server stopped")
}

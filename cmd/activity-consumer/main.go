package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"

	"github.com/iliyamo/movie-listing/internal/queue"
)

// activity-consumer drains movie.activity into an append-only log file.
func main() {
	_ = godotenv.Load()

	l := log.New("activity-consumer")
	url := os.Getenv("RABBITMQ_URL")
	if url == "" {
		url = os.Getenv("AMQP_URL")
	}
	if url == "" {
		l.Fatal("missing required env var: RABBITMQ_URL")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := &queue.Consumer{URL: url, LogPath: os.Getenv("ACTIVITY_LOG_PATH"), Log: l}
	l.Infof("consuming %s", queue.ActivityQueue)
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		l.Fatalf("consumer: %v", err)
	}
}

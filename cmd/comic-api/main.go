// Command comic-api serves the comic catalog as JSON view models.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/comic-catalog/internal/config"
	"github.com/Sternrassler/comic-catalog/pkg/catalog"
	"github.com/Sternrassler/comic-catalog/pkg/client"
	"github.com/Sternrassler/comic-catalog/pkg/handoff"
	"github.com/Sternrassler/comic-catalog/pkg/logging"
	"github.com/Sternrassler/comic-catalog/pkg/pagination"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, config.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logging.Setup(cfg.Logging())
	logger := logging.NewLogger(logging.ComponentAPI)

	var (
		redisClient *redis.Client
		handoffs    HandoffStore
	)
	if cfg.RedisEnabled() {
		redisClient = redis.NewClient(cfg.RedisOptions())
		defer redisClient.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(ctx).Err()
		cancel()
		if err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Failed to connect to Redis")
		}
		logger.Info().Str("addr", cfg.RedisAddr).Msg("Connected to Redis")

		handoffs = handoff.NewStore(redisClient, cfg.HandoffStoreTTL())
	} else {
		logger.Warn().Msg("No Redis configured: cooldown is per process and detail handoffs are disabled")
	}

	comicClient, err := client.New(cfg.Client(redisClient))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create comic API client")
	}
	defer comicClient.Close()

	library := catalog.NewLibraryFetcher(pagination.NewBatchFetcher(comicClient, cfg.Pagination()))
	trending := catalog.NewTrendingFetcher(comicClient)

	handler := NewHandler(library, trending, handoffs, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewServer(handler, logging.NewLogger(logging.ComponentHTTP)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", srv.Addr).
			Str("api_base_url", cfg.APIBaseURL).
			Str("user_agent", cfg.UserAgent).
			Msg("Starting comic API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Fatal().Err(err).Msg("Server failed")
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

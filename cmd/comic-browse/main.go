// Command comic-browse pages through the comic library in the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sternrassler/comic-catalog/internal/config"
	"github.com/Sternrassler/comic-catalog/pkg/catalog"
	"github.com/Sternrassler/comic-catalog/pkg/client"
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

	logCfg := cfg.Logging()
	logCfg.Pretty = true
	logging.Setup(logCfg)
	logger := logging.NewLogger(logging.ComponentBrowse)

	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		redisClient = redis.NewClient(cfg.RedisOptions())
		defer redisClient.Close()
	}

	comicClient, err := client.New(cfg.Client(redisClient))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create comic API client")
	}
	defer comicClient.Close()

	library := catalog.NewLibraryFetcher(pagination.NewBatchFetcher(comicClient, cfg.Pagination()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newBrowser(catalog.NewPager(library), os.Stdin, os.Stdout).run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("Browser stopped")
		os.Exit(1)
	}
}

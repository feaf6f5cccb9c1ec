package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"mergeq/internal/catalog"
	"mergeq/internal/http/handlers"
	httpapi "mergeq/internal/http/httpapi"
	"mergeq/internal/infra"
	"mergeq/internal/publish"
	"mergeq/internal/queue"
	"mergeq/internal/resultcache"
	"mergeq/internal/runner"
	"mergeq/internal/status"
)

func main() {
	// Load .env (optional)
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	rdb, err := infra.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	defer rdb.Close()

	jobs := queue.New(dbpool, logger, cfg.JobAttempts)
	resolver := status.NewResolver(jobs, resultcache.NewRedisStore(rdb))

	run := runner.New(logger)
	cat := catalog.NewYtdlpClient(run, runner.Locate(cfg.YtdlpPath, "yt-dlp"), logger)

	// The API only serves local files when object storage is off; with S3
	// configured the result URLs point at the bucket and this stays nil.
	var local *publish.LocalPublisher
	if !cfg.S3Enabled() {
		local, err = publish.NewLocalPublisher(cfg.DownloadsDir, cfg.PublicBaseURL, cfg.APIPrefix)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare downloads directory")
		}
	}

	app := handlers.NewApp(jobs, resolver, cat, local, logger)
	router := httpapi.NewRouter(app, cfg.APIPrefix, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"mergeq/internal/catalog"
	"mergeq/internal/cleanup"
	"mergeq/internal/fetch"
	"mergeq/internal/history"
	"mergeq/internal/infra"
	"mergeq/internal/pipeline"
	"mergeq/internal/publish"
	"mergeq/internal/queue"
	"mergeq/internal/resultcache"
	"mergeq/internal/runner"
	"mergeq/internal/worker"
)

const pruneInterval = time.Hour

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer dbpool.Close()

	rdb, err := infra.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: redis connection failed")
	}
	defer rdb.Close()

	run := runner.New(logger)
	ytdlpPath := runner.Locate(cfg.YtdlpPath, "yt-dlp")
	if ytdlpPath == "" {
		logger.Warn().Msg("worker: yt-dlp binary not found, falling back to embedded downloader")
	}

	fetcher := fetch.New(run, ytdlpPath, logger)
	pipe, err := pipeline.New(fetcher, run, cfg.FFmpegPath, cfg.TempDir, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to prepare temp directory")
	}

	var publisher publish.Publisher
	if cfg.S3Enabled() {
		publisher, err = publish.NewMinioPublisher(cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("worker: failed to configure object storage")
		}
		logger.Info().Str("bucket", cfg.S3Bucket).Msg("worker: publishing to object storage")
	} else {
		publisher, err = publish.NewLocalPublisher(cfg.DownloadsDir, cfg.PublicBaseURL, cfg.APIPrefix)
		if err != nil {
			logger.Fatal().Err(err).Msg("worker: failed to prepare downloads directory")
		}
		logger.Info().Str("dir", cfg.DownloadsDir).Msg("worker: publishing to local downloads")
	}

	jobs := queue.New(dbpool, logger, cfg.JobAttempts)
	cat := catalog.NewYtdlpClient(run, ytdlpPath, logger)
	results := resultcache.NewRedisStore(rdb)
	hist := history.NewRepository(dbpool)

	pool := worker.NewPool(jobs, cat, pipe, publisher, results, hist, logger, worker.Options{
		Concurrency: cfg.WorkerConcurrency,
		ResultTTL:   cfg.ResultTTL,
	})

	sweeper := cleanup.NewSweeper(cfg.TempDir, cfg.CleanupMaxAge, logger)
	go sweeper.Run(ctx, cfg.CleanupInterval)
	go pruneLoop(ctx, jobs, cfg.QueueRetention, logger)

	logger.Info().Int("concurrency", cfg.WorkerConcurrency).Msg("worker: started")
	pool.Run(ctx)
	logger.Info().Msg("worker: stopped")
}

// pruneLoop periodically drops completed job rows past their retention window.
// Their results remain reachable through the result cache until the TTL ends.
func pruneLoop(ctx context.Context, jobs *queue.Queue, retention time.Duration, logger infra.Logger) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := jobs.PruneCompleted(ctx, retention)
			if err != nil {
				logger.Error().Err(err).Msg("worker: queue prune failed")
				continue
			}
			if n > 0 {
				logger.Info().Int64("rows", n).Msg("worker: pruned completed jobs")
			}
		}
	}
}

// Package worker runs the job loop: claim, plan, execute, publish, record.
package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"mergeq/internal/catalog"
	"mergeq/internal/domain"
	"mergeq/internal/history"
	"mergeq/internal/pipeline"
	"mergeq/internal/publish"
	"mergeq/internal/queue"
	"mergeq/internal/resultcache"
	"mergeq/internal/selection"
)

// Progress milestones owned by the worker; the pipeline reports the ones in
// between. Values are advisory.
const (
	progressClaimed        = 5
	progressCatalogFetched = 10
	progressUploadStarted  = 85
)

const defaultPollInterval = 2 * time.Second

// JobQueue is the slice of the queue the worker needs.
type JobQueue interface {
	Claim(ctx context.Context) (*domain.Job, error)
	ReportProgress(ctx context.Context, id string, percent int)
	Complete(ctx context.Context, id string) error
	Fail(ctx context.Context, id string, cause error) (domain.JobState, error)
}

// PlanExecutor runs a fetch plan to a local artifact.
type PlanExecutor interface {
	Execute(ctx context.Context, plan domain.FetchPlan, job *domain.Job, title string, notify pipeline.ProgressFunc) (string, error)
}

// HistoryRecorder logs completed downloads. May be nil when history is
// disabled.
type HistoryRecorder interface {
	Record(ctx context.Context, e history.Entry) error
}

// Pool is a fixed-size set of workers pulling from one shared queue. Each
// worker processes one job at a time; a claimed job runs to completion or
// failure, there is no mid-job cancellation beyond process shutdown.
type Pool struct {
	queue     JobQueue
	catalog   catalog.Client
	executor  PlanExecutor
	publisher publish.Publisher
	results   resultcache.Store
	history   HistoryRecorder
	logger    zerolog.Logger

	concurrency  int
	resultTTL    time.Duration
	pollInterval time.Duration
}

type Options struct {
	Concurrency  int
	ResultTTL    time.Duration
	PollInterval time.Duration
}

func NewPool(q JobQueue, cat catalog.Client, exec PlanExecutor, pub publish.Publisher, results resultcache.Store, hist HistoryRecorder, logger zerolog.Logger, opts Options) *Pool {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	return &Pool{
		queue:        q,
		catalog:      cat,
		executor:     exec,
		publisher:    pub,
		results:      results,
		history:      hist,
		logger:       logger,
		concurrency:  opts.Concurrency,
		resultTTL:    opts.ResultTTL,
		pollInterval: opts.PollInterval,
	}
}

// Run blocks until ctx is done, keeping Concurrency workers claiming jobs.
func (p *Pool) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < p.concurrency; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			p.loop(ctx, slot)
		}(i)
	}
	wg.Wait()
}

func (p *Pool) loop(ctx context.Context, slot int) {
	logger := p.logger.With().Int("worker", slot).Logger()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := p.queue.Claim(ctx)
		if err != nil {
			if !errors.Is(err, queue.ErrNoJob) {
				logger.Error().Err(err).Msg("worker: claim failed")
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(p.pollInterval):
			}
			continue
		}

		p.process(ctx, logger, job)
	}
}

func (p *Pool) process(ctx context.Context, logger zerolog.Logger, job *domain.Job) {
	logger.Info().Str("job_id", job.ID).Str("stream", job.StreamID).Str("url", job.SourceURL).Msg("worker: picked job")

	if err := p.runAttempt(ctx, logger, job); err != nil {
		state, failErr := p.queue.Fail(ctx, job.ID, err)
		if failErr != nil {
			logger.Error().Err(failErr).Str("job_id", job.ID).Msg("worker: recording failure failed")
			return
		}
		if state == domain.JobStateQueued {
			logger.Warn().Err(err).Str("job_id", job.ID).Msg("worker: attempt failed, re-queued")
		} else {
			logger.Error().Err(err).Str("job_id", job.ID).Msg("worker: job failed, attempts exhausted")
		}
		return
	}

	if err := p.queue.Complete(ctx, job.ID); err != nil {
		logger.Error().Err(err).Str("job_id", job.ID).Msg("worker: marking completion failed")
		return
	}
	logger.Info().Str("job_id", job.ID).Msg("worker: job completed")
}

func (p *Pool) runAttempt(ctx context.Context, logger zerolog.Logger, job *domain.Job) error {
	p.queue.ReportProgress(ctx, job.ID, progressClaimed)

	cat, err := p.catalog.GetCatalog(ctx, job.SourceURL)
	if err != nil {
		return fmt.Errorf("catalog lookup: %w", err)
	}
	p.queue.ReportProgress(ctx, job.ID, progressCatalogFetched)

	plan, err := selection.SelectPlan(cat, selection.Request{
		StreamID:  job.StreamID,
		Container: job.Container,
	})
	if err != nil {
		return err
	}

	artifact, err := p.executor.Execute(ctx, plan, job, cat.Title, func(percent int) {
		p.queue.ReportProgress(ctx, job.ID, percent)
	})
	if err != nil {
		return err
	}

	var size int64
	if info, statErr := os.Stat(artifact); statErr == nil {
		size = info.Size()
	}

	p.queue.ReportProgress(ctx, job.ID, progressUploadStarted)
	key := "merged/" + filepath.Base(artifact)
	location, err := p.publisher.Publish(ctx, artifact, key)
	if err != nil {
		if errors.Is(err, domain.ErrPublishFailed) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrPublishFailed, err)
	}

	result := domain.JobResult{DownloadURL: location, Key: key}
	if err := p.results.StoreResult(ctx, job.ID, result, p.resultTTL); err != nil {
		return fmt.Errorf("store result: %w", err)
	}

	p.recordHistory(ctx, logger, job, cat, plan, artifact, size)

	// The publisher may have moved the artifact already; removing the
	// original is best-effort either way.
	if err := os.Remove(artifact); err != nil && !os.IsNotExist(err) {
		logger.Warn().Err(err).Str("path", artifact).Msg("worker: artifact cleanup failed")
	}

	p.queue.ReportProgress(ctx, job.ID, 100)
	return nil
}

func (p *Pool) recordHistory(ctx context.Context, logger zerolog.Logger, job *domain.Job, cat domain.Catalog, plan domain.FetchPlan, artifact string, size int64) {
	if p.history == nil {
		return
	}
	entry := history.Entry{
		Requester:  job.Requester,
		SourceURL:  job.SourceURL,
		Resolution: planResolution(cat, plan),
		Format:     job.Container,
		Filename:   filepath.Base(artifact),
		SizeBytes:  size,
	}
	if err := p.history.Record(ctx, entry); err != nil {
		logger.Warn().Err(err).Str("job_id", job.ID).Msg("worker: history record failed")
	}
}

// planResolution derives a human-readable resolution label from the plan's
// video track, if it has one.
func planResolution(cat domain.Catalog, plan domain.FetchPlan) string {
	var streamID string
	switch pl := plan.(type) {
	case domain.DirectFetch:
		streamID = pl.StreamID
	case domain.VideoPlusAudioMerge:
		streamID = pl.VideoStreamID
	default:
		return ""
	}
	if d, ok := cat.Find(streamID); ok && d.HeightPx > 0 {
		return fmt.Sprintf("%dp", d.HeightPx)
	}
	return ""
}

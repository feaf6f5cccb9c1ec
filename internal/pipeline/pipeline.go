// Package pipeline executes fetch plans: one or two stream fetches plus an
// optional local mux into the requested container.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"mergeq/internal/domain"
	"mergeq/internal/fetch"
)

// ProgressFunc receives advisory progress percentages. It is best-effort:
// implementations must tolerate skipped or repeated values.
type ProgressFunc func(percent int)

// Milestones reported while executing a plan. The exact values are advisory;
// consumers may only rely on monotonic non-decrease toward 100 on success.
const (
	ProgressFetchStarted = 20
	ProgressFetchesDone  = 50
	ProgressDirectDone   = 60
	ProgressMergeDone    = 80
)

// CommandRunner is the slice of the process runner the pipeline needs for
// the local mux step.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// Pipeline turns a fetch plan into a local artifact file.
type Pipeline struct {
	fetcher fetch.Fetcher
	run     CommandRunner
	ffmpeg  string
	tempDir string
	logger  zerolog.Logger
}

func New(fetcher fetch.Fetcher, run CommandRunner, ffmpegPath, tempDir string, logger zerolog.Logger) (*Pipeline, error) {
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("pipeline: ensure temp dir: %w", err)
	}
	return &Pipeline{
		fetcher: fetcher,
		run:     run,
		ffmpeg:  ffmpegPath,
		tempDir: tempDir,
		logger:  logger,
	}, nil
}

// Execute runs the plan for job and returns the local artifact path. notify
// may be nil. Temporary merge inputs are deleted afterward regardless of mux
// success; deletion failures are only logged.
func (p *Pipeline) Execute(ctx context.Context, plan domain.FetchPlan, job *domain.Job, title string, notify ProgressFunc) (string, error) {
	if notify == nil {
		notify = func(int) {}
	}

	base := outputBaseName(job.FilenameHint, title, job.ID, time.Now())

	switch pl := plan.(type) {
	case domain.DirectFetch:
		outPath := filepath.Join(p.tempDir, base+"."+containerOrDefault(job.Container))
		notify(ProgressFetchStarted)
		p.logger.Info().Str("job_id", job.ID).Str("stream", pl.StreamID).Str("out", outPath).Msg("pipeline: direct fetch")
		if err := p.fetcher.Fetch(ctx, job.SourceURL, pl.StreamID, outPath); err != nil {
			return "", fmt.Errorf("%w: stream %s: %v", domain.ErrFetchFailed, pl.StreamID, err)
		}
		notify(ProgressDirectDone)
		return outPath, nil

	case domain.AudioExtract:
		outPath := filepath.Join(p.tempDir, base+"."+pl.TargetContainer)
		notify(ProgressFetchStarted)
		p.logger.Info().Str("job_id", job.ID).Str("stream", pl.StreamID).Str("out", outPath).Msg("pipeline: audio extract")
		if err := p.fetcher.FetchAudio(ctx, job.SourceURL, pl.StreamID, pl.TargetContainer, outPath); err != nil {
			return "", fmt.Errorf("%w: stream %s: %v", domain.ErrFetchFailed, pl.StreamID, err)
		}
		notify(ProgressDirectDone)
		return outPath, nil

	case domain.VideoPlusAudioMerge:
		return p.executeMerge(ctx, pl, job, base, notify)

	default:
		return "", fmt.Errorf("pipeline: unknown plan type %T", plan)
	}
}

func (p *Pipeline) executeMerge(ctx context.Context, plan domain.VideoPlusAudioMerge, job *domain.Job, base string, notify ProgressFunc) (string, error) {
	container := containerOrDefault(job.Container)
	outPath := filepath.Join(p.tempDir, base+"."+container)
	videoTmp := filepath.Join(p.tempDir, base+".video."+container)
	audioTmp := filepath.Join(p.tempDir, base+".audio.m4a")

	defer p.removeBestEffort(job.ID, videoTmp, audioTmp)

	notify(ProgressFetchStarted)
	p.logger.Info().Str("job_id", job.ID).Str("stream", plan.VideoStreamID).Str("out", videoTmp).Msg("pipeline: fetching video track")
	if err := p.fetcher.Fetch(ctx, job.SourceURL, plan.VideoStreamID, videoTmp); err != nil {
		return "", fmt.Errorf("%w: video stream %s: %v", domain.ErrFetchFailed, plan.VideoStreamID, err)
	}

	p.logger.Info().Str("job_id", job.ID).Str("stream", plan.AudioStreamID).Str("out", audioTmp).Msg("pipeline: fetching audio track")
	if err := p.fetcher.Fetch(ctx, job.SourceURL, plan.AudioStreamID, audioTmp); err != nil {
		return "", fmt.Errorf("%w: audio stream %s: %v", domain.ErrFetchFailed, plan.AudioStreamID, err)
	}
	notify(ProgressFetchesDone)

	// Copy the video track untouched; re-encode audio to the fixed AAC
	// profile; faststart so the output streams from byte zero.
	args := []string{
		"-y",
		"-hide_banner", "-loglevel", "error",
		"-i", videoTmp,
		"-i", audioTmp,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "192k",
		"-movflags", "+faststart",
		"-f", container,
		outPath,
	}
	p.logger.Info().Str("job_id", job.ID).Str("out", outPath).Msg("pipeline: merging")
	if err := p.run.Run(ctx, p.ffmpeg, args...); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrMergeFailed, err)
	}
	notify(ProgressMergeDone)

	return outPath, nil
}

// removeBestEffort deletes temp inputs, logging failures only. Cleanup is
// never load-bearing; the periodic sweeper is the backstop.
func (p *Pipeline) removeBestEffort(jobID string, paths ...string) {
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			p.logger.Warn().Err(err).Str("job_id", jobID).Str("path", path).Msg("pipeline: temp cleanup failed")
		}
	}
}

func containerOrDefault(container string) string {
	if container == "" {
		return "mp4"
	}
	return container
}

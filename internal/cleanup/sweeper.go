// Package cleanup removes stale temporary files left behind by failed or
// interrupted job attempts.
package cleanup

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/lthibault/jitterbug/v2"
	"github.com/rs/zerolog"
)

// Sweeper deletes files in dir older than maxAge. All failures are logged
// and swallowed; the sweep is a backstop, never load-bearing.
type Sweeper struct {
	dir    string
	maxAge time.Duration
	logger zerolog.Logger
}

func NewSweeper(dir string, maxAge time.Duration, logger zerolog.Logger) *Sweeper {
	return &Sweeper{dir: dir, maxAge: maxAge, logger: logger}
}

// Sweep removes stale files once and returns how many were deleted.
func (s *Sweeper) Sweep(now time.Time) int {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Warn().Err(err).Str("dir", s.dir).Msg("cleanup: read dir failed")
		return 0
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) <= s.maxAge {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			s.logger.Warn().Err(err).Str("path", path).Msg("cleanup: remove failed")
			continue
		}
		s.logger.Info().Str("path", path).Msg("cleanup: removed stale file")
		removed++
	}
	return removed
}

// Run sweeps on a jittered interval until ctx is done. The jitter keeps
// multiple workers sharing a temp volume from sweeping in lockstep.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := jitterbug.New(interval, &jitterbug.Norm{Stdev: 30 * time.Second})
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(time.Now())
		}
	}
}

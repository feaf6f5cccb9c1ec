// Package fetch downloads individual streams. The yt-dlp executable is the
// primary path; when it is missing or fails, an in-process library fallback
// runs with semantically matching options. Callers cannot assume which path
// produced the file, only that it exists at the requested output path on
// success.
package fetch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/ytget/ytdlp/v2"
)

// Fetcher is the single-stream download contract the merge pipeline uses.
type Fetcher interface {
	// Fetch downloads the given stream of sourceURL to outPath.
	Fetch(ctx context.Context, sourceURL, streamID, outPath string) error
	// FetchAudio downloads the given stream and extracts/transcodes its
	// audio into audioFormat at outPath.
	FetchAudio(ctx context.Context, sourceURL, streamID, audioFormat, outPath string) error
}

// CommandRunner is the slice of the process runner the fetcher needs for the
// yt-dlp executable path.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// libraryFetchFunc downloads one stream in-process. selector is a format
// selector in the library's syntax (e.g. "itag=140"), ext the desired output
// extension.
type libraryFetchFunc func(ctx context.Context, sourceURL, selector, ext, outPath string) error

// StreamFetcher tries the yt-dlp executable first, then the ytdlp library.
type StreamFetcher struct {
	run        CommandRunner
	executable string
	logger     zerolog.Logger
	libFetch   libraryFetchFunc
}

// New builds a fetcher around the resolved yt-dlp executable path. An empty
// path means the binary was not found anywhere; only the fallback runs then.
func New(run CommandRunner, executable string, logger zerolog.Logger) *StreamFetcher {
	return &StreamFetcher{
		run:        run,
		executable: executable,
		logger:     logger,
		libFetch:   libraryFetch,
	}
}

// libraryFetch is the in-process fallback. The library selects streams by
// format selector, so the stream id maps onto an itag selector and the
// desired container onto the extension hint.
func libraryFetch(ctx context.Context, sourceURL, selector, ext, outPath string) error {
	dl := ytdlp.New().
		WithFormat(selector, ext).
		WithOutputPath(outPath)
	if _, err := dl.Download(ctx, sourceURL); err != nil {
		return fmt.Errorf("library download: %w", err)
	}
	return nil
}

type attempt struct {
	name string
	fn   func(ctx context.Context) error
}

// tryInOrder runs each attempt until one succeeds, surfacing the last error
// only when every attempt failed.
func (f *StreamFetcher) tryInOrder(ctx context.Context, attempts []attempt) error {
	var lastErr error
	for _, a := range attempts {
		err := a.fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		f.logger.Warn().Err(err).Str("strategy", a.name).Msg("fetch: strategy failed, trying next")
	}
	if lastErr == nil {
		return fmt.Errorf("fetch: no download strategy available")
	}
	return lastErr
}

func (f *StreamFetcher) Fetch(ctx context.Context, sourceURL, streamID, outPath string) error {
	attempts := make([]attempt, 0, 2)
	if f.executable != "" {
		attempts = append(attempts, attempt{name: "yt-dlp", fn: func(ctx context.Context) error {
			return f.run.Run(ctx, f.executable,
				"-f", streamID,
				"-o", outPath,
				"--no-warnings",
				sourceURL,
			)
		}})
	}
	attempts = append(attempts, attempt{name: "library", fn: func(ctx context.Context) error {
		return f.libFetch(ctx, sourceURL, "itag="+streamID, extOf(outPath), outPath)
	}})
	return f.tryInOrder(ctx, attempts)
}

func (f *StreamFetcher) FetchAudio(ctx context.Context, sourceURL, streamID, audioFormat, outPath string) error {
	attempts := make([]attempt, 0, 2)
	if f.executable != "" {
		attempts = append(attempts, attempt{name: "yt-dlp", fn: func(ctx context.Context) error {
			return f.run.Run(ctx, f.executable,
				"-f", streamID,
				"-x",
				"--audio-format", audioFormat,
				"-o", outPath,
				"--no-warnings",
				sourceURL,
			)
		}})
	}
	attempts = append(attempts, attempt{name: "library", fn: func(ctx context.Context) error {
		return f.libFetch(ctx, sourceURL, "itag="+streamID, audioFormat, outPath)
	}})
	return f.tryInOrder(ctx, attempts)
}

func extOf(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}

// Package catalog enumerates the downloadable streams of a source URL.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"mergeq/internal/domain"
	"mergeq/internal/runner"
)

// Client fetches the stream catalog for a source URL. The catalog is scoped
// to one job attempt; callers must not cache it across jobs.
type Client interface {
	GetCatalog(ctx context.Context, sourceURL string) (domain.Catalog, error)
}

// YtdlpClient shells out to yt-dlp for a single-JSON metadata dump.
type YtdlpClient struct {
	run        *runner.Runner
	executable string
	logger     zerolog.Logger
}

// NewYtdlpClient builds a catalog client around the given yt-dlp executable
// path (as resolved by runner.Locate).
func NewYtdlpClient(run *runner.Runner, executable string, logger zerolog.Logger) *YtdlpClient {
	return &YtdlpClient{run: run, executable: executable, logger: logger}
}

// ytdlpInfo mirrors the subset of the yt-dlp JSON dump this service reads.
type ytdlpInfo struct {
	Title     string        `json:"title"`
	Duration  float64       `json:"duration"`
	Thumbnail string        `json:"thumbnail"`
	Formats   []ytdlpFormat `json:"formats"`
}

type ytdlpFormat struct {
	FormatID string  `json:"format_id"`
	Ext      string  `json:"ext"`
	VCodec   string  `json:"vcodec"`
	ACodec   string  `json:"acodec"`
	Height   int     `json:"height"`
	ABR      float64 `json:"abr"`
	URL      string  `json:"url"`
}

func (c *YtdlpClient) GetCatalog(ctx context.Context, sourceURL string) (domain.Catalog, error) {
	if c.executable == "" {
		return domain.Catalog{}, fmt.Errorf("catalog: yt-dlp executable not available")
	}

	out, err := c.run.Output(ctx, c.executable,
		"-J",
		"--no-warnings",
		"--no-check-certificates",
		"--prefer-free-formats",
		sourceURL,
	)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("catalog: metadata dump: %w", err)
	}

	return parseCatalog(out)
}

func parseCatalog(out []byte) (domain.Catalog, error) {
	var info ytdlpInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return domain.Catalog{}, fmt.Errorf("catalog: decode metadata: %w", err)
	}

	cat := domain.Catalog{
		Title:     info.Title,
		Duration:  info.Duration,
		Thumbnail: info.Thumbnail,
		Streams:   make([]domain.StreamDescriptor, 0, len(info.Formats)),
	}
	for _, f := range info.Formats {
		if f.FormatID == "" {
			continue
		}
		cat.Streams = append(cat.Streams, domain.StreamDescriptor{
			StreamID:     f.FormatID,
			Container:    f.Ext,
			HasVideo:     f.VCodec != "" && f.VCodec != "none",
			HasAudio:     f.ACodec != "" && f.ACodec != "none",
			HeightPx:     f.Height,
			AudioBitrate: int(f.ABR),
			DirectURL:    f.URL,
		})
	}
	return cat, nil
}

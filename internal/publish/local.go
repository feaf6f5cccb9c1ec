package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// LocalPublisher moves artifacts into a publicly served downloads directory.
// It is the fallback when object storage is not configured.
type LocalPublisher struct {
	dir       string
	baseURL   string
	apiPrefix string
}

// NewLocalPublisher initializes the downloads directory rooted at dir.
func NewLocalPublisher(dir, baseURL, apiPrefix string) (*LocalPublisher, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("publish: downloads dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("publish: ensure downloads dir: %w", err)
	}
	if !strings.HasPrefix(apiPrefix, "/") {
		apiPrefix = "/" + apiPrefix
	}
	return &LocalPublisher{
		dir:       dir,
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiPrefix: apiPrefix,
	}, nil
}

// Publish moves localPath into the downloads directory and returns the URL it
// will be served under. Only the basename of the key is used; artifacts are
// served from a flat directory.
func (p *LocalPublisher) Publish(ctx context.Context, localPath, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	filename := filepath.Base(filepath.FromSlash(key))
	if filename == "." || filename == "/" || filename == "" {
		return "", errors.New("publish: invalid key")
	}
	dest := filepath.Join(p.dir, filename)

	if err := os.Rename(localPath, dest); err != nil {
		// Rename fails across filesystems; fall back to copy+remove.
		if err := copyFile(localPath, dest); err != nil {
			return "", fmt.Errorf("publish: move artifact: %w", err)
		}
		_ = os.Remove(localPath)
	}

	return fmt.Sprintf("%s%s/downloads/%s", p.baseURL, p.apiPrefix, url.PathEscape(filename)), nil
}

// Resolve maps a requested filename onto a path inside the downloads
// directory, rejecting anything that would escape it.
func (p *LocalPublisher) Resolve(filename string) (string, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return "", errors.New("publish: invalid filename")
	}
	full := filepath.Join(p.dir, filename)
	if _, err := os.Stat(full); err != nil {
		return "", err
	}
	return full, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

var _ Publisher = (*LocalPublisher)(nil)

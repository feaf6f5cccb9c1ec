// Package history keeps the persistent log of completed downloads.
package history

import (
	"context"
	"fmt"

	"mergeq/internal/infra"
)

// Entry is one completed download. Requester is stored opaque, for
// downstream reporting only.
type Entry struct {
	Requester  string
	SourceURL  string
	Resolution string
	Format     string
	Filename   string
	SizeBytes  int64
}

// Repository persists entries in Postgres.
type Repository struct {
	db infra.SQLExecutor
}

func NewRepository(db infra.SQLExecutor) *Repository {
	return &Repository{db: db}
}

// Record inserts a completed download. Callers treat failures as log-only;
// the history is informational and never blocks job completion.
func (r *Repository) Record(ctx context.Context, e Entry) error {
	query := `
INSERT INTO download_history (requester, source_url, resolution, format, filename, size_bytes)
VALUES ($1, $2, $3, $4, $5, $6);
`
	_, err := r.db.Exec(ctx, query,
		e.Requester,
		e.SourceURL,
		e.Resolution,
		e.Format,
		e.Filename,
		e.SizeBytes,
	)
	if err != nil {
		return fmt.Errorf("history: record download: %w", err)
	}
	return nil
}

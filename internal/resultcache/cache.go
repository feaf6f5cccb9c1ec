// Package resultcache durably stores final job outcomes, keyed by job id,
// independent of the queue's own bookkeeping. A result outlives the queue
// row; status stays answerable for as long as the cache entry survives.
package resultcache

import (
	"context"
	"time"

	"mergeq/internal/domain"
)

// Store is the result cache contract. StoreResult is an idempotent overwrite;
// Lookup returns (nil, nil) when no entry exists or it has expired.
type Store interface {
	StoreResult(ctx context.Context, id string, result domain.JobResult, ttl time.Duration) error
	Lookup(ctx context.Context, id string) (*domain.JobResult, error)
}

// Package status answers "what is the state of job X" by reconciling the
// live queue record with the result cache. The queue may prune completed
// rows on its own schedule, so neither source alone is authoritative.
package status

import (
	"context"
	"fmt"

	"mergeq/internal/domain"
	"mergeq/internal/resultcache"
)

// QueueReader is the read-only slice of the queue the resolver needs.
type QueueReader interface {
	GetState(ctx context.Context, id string) (domain.JobState, int, error)
}

// Resolver is side-effect-free; GetStatus is a point-in-time read and never
// blocks on worker execution.
type Resolver struct {
	queue QueueReader
	cache resultcache.Store
}

func NewResolver(queue QueueReader, cache resultcache.Store) *Resolver {
	return &Resolver{queue: queue, cache: cache}
}

// GetStatus consults both sources. A cached result wins over a missing queue
// record, and is attached even alongside a live record: the job may have
// finished and been pruned between the two lookups, or the worker may have
// written the result just before marking completion.
func (r *Resolver) GetStatus(ctx context.Context, id string) (domain.JobStatus, error) {
	state, progress, err := r.queue.GetState(ctx, id)
	if err != nil {
		return domain.JobStatus{}, fmt.Errorf("status: queue state: %w", err)
	}

	result, err := r.cache.Lookup(ctx, id)
	if err != nil {
		return domain.JobStatus{}, fmt.Errorf("status: cached result: %w", err)
	}

	if state == domain.JobStateNotFound {
		if result != nil {
			return domain.JobStatus{
				ID:       id,
				State:    domain.JobStateCompleted,
				Progress: 100,
				Result:   result,
			}, nil
		}
		return domain.JobStatus{ID: id, State: domain.JobStateNotFound}, nil
	}

	return domain.JobStatus{
		ID:       id,
		State:    state,
		Progress: progress,
		Result:   result,
	}, nil
}

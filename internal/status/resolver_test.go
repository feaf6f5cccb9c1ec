package status

import (
	"context"
	"errors"
	"testing"
	"time"

	"mergeq/internal/domain"
	"mergeq/internal/resultcache"
)

type stubQueue struct {
	state    domain.JobState
	progress int
	err      error
}

func (s *stubQueue) GetState(ctx context.Context, id string) (domain.JobState, int, error) {
	return s.state, s.progress, s.err
}

func TestGetStatusLiveJob(t *testing.T) {
	q := &stubQueue{state: domain.JobStateActive, progress: 50}
	r := NewResolver(q, resultcache.NewMemoryStore())

	st, err := r.GetStatus(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("GetStatus error: %v", err)
	}
	if st.State != domain.JobStateActive || st.Progress != 50 || st.Result != nil {
		t.Fatalf("status mismatch: %+v", st)
	}
}

func TestGetStatusUnknownJob(t *testing.T) {
	q := &stubQueue{state: domain.JobStateNotFound}
	r := NewResolver(q, resultcache.NewMemoryStore())

	st, err := r.GetStatus(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetStatus error: %v", err)
	}
	if st.State != domain.JobStateNotFound {
		t.Fatalf("expected not_found, got %+v", st)
	}
}

func TestGetStatusPrunedJobWithCachedResult(t *testing.T) {
	cache := resultcache.NewMemoryStore()
	result := domain.JobResult{DownloadURL: "https://cdn/x.mp4", Key: "merged/x.mp4"}
	if err := cache.StoreResult(context.Background(), "job-1", result, time.Hour); err != nil {
		t.Fatalf("StoreResult error: %v", err)
	}

	q := &stubQueue{state: domain.JobStateNotFound}
	r := NewResolver(q, cache)

	st, err := r.GetStatus(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("GetStatus error: %v", err)
	}
	if st.State != domain.JobStateCompleted || st.Progress != 100 {
		t.Fatalf("pruned job with result must report completed: %+v", st)
	}
	if st.Result == nil || *st.Result != result {
		t.Fatalf("result missing: %+v", st.Result)
	}
}

func TestGetStatusAttachesResultToLiveRecord(t *testing.T) {
	cache := resultcache.NewMemoryStore()
	result := domain.JobResult{DownloadURL: "https://cdn/x.mp4", Key: "merged/x.mp4"}
	if err := cache.StoreResult(context.Background(), "job-1", result, time.Hour); err != nil {
		t.Fatalf("StoreResult error: %v", err)
	}

	// Worker wrote the result slightly before marking completion: the queue
	// still says active, but the result must already be attached.
	q := &stubQueue{state: domain.JobStateActive, progress: 85}
	r := NewResolver(q, cache)

	st, err := r.GetStatus(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("GetStatus error: %v", err)
	}
	if st.State != domain.JobStateActive {
		t.Fatalf("live state must be preserved: %+v", st)
	}
	if st.Result == nil || *st.Result != result {
		t.Fatalf("cached result must be attached: %+v", st.Result)
	}
}

func TestGetStatusQueueError(t *testing.T) {
	q := &stubQueue{err: errors.New("db down")}
	r := NewResolver(q, resultcache.NewMemoryStore())

	if _, err := r.GetStatus(context.Background(), "job-1"); err == nil {
		t.Fatal("expected error when queue lookup fails")
	}
}

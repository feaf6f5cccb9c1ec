package resultcache

import (
	"context"
	"testing"
	"time"

	"mergeq/internal/domain"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	result := domain.JobResult{DownloadURL: "https://cdn/x.mp4", Key: "merged/x.mp4"}
	if err := store.StoreResult(ctx, "job-1", result, time.Hour); err != nil {
		t.Fatalf("StoreResult error: %v", err)
	}

	got, err := store.Lookup(ctx, "job-1")
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	if got == nil || *got != result {
		t.Fatalf("result mismatch: %+v", got)
	}
}

func TestMemoryStoreIdempotentOverwrite(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	result := domain.JobResult{DownloadURL: "https://cdn/x.mp4", Key: "merged/x.mp4"}
	for i := 0; i < 2; i++ {
		if err := store.StoreResult(ctx, "job-1", result, time.Hour); err != nil {
			t.Fatalf("StoreResult error: %v", err)
		}
	}

	got, err := store.Lookup(ctx, "job-1")
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	if got == nil || *got != result {
		t.Fatalf("result mismatch after double store: %+v", got)
	}
}

func TestMemoryStoreMissing(t *testing.T) {
	store := NewMemoryStore()

	got, err := store.Lookup(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil result, got %+v", got)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	current := time.Now()
	store.now = func() time.Time { return current }

	if err := store.StoreResult(ctx, "job-1", domain.JobResult{Key: "k"}, time.Minute); err != nil {
		t.Fatalf("StoreResult error: %v", err)
	}

	current = current.Add(2 * time.Minute)
	got, err := store.Lookup(ctx, "job-1")
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected expired entry to be gone, got %+v", got)
	}
}

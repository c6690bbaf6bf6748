package staging

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client, time.Minute)
}

func TestStageAndResolve(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	id1, err := store.Stage(ctx, "sess-1", StagedAttachment{FileName: "estimate.pdf", SizeBytes: 1024})
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	id2, err := store.Stage(ctx, "sess-1", StagedAttachment{FileName: "mockup.png", SizeBytes: 2048})
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}

	ids, err := store.StagedIDs(ctx, "sess-1")
	if err != nil {
		t.Fatalf("StagedIDs failed: %v", err)
	}
	sort.Strings(ids)
	want := []string{id1, id2}
	sort.Strings(want)
	if len(ids) != 2 || ids[0] != want[0] || ids[1] != want[1] {
		t.Fatalf("StagedIDs = %v, want %v", ids, want)
	}

	atts, err := store.Resolve(ctx, ids)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(atts) != 2 {
		t.Fatalf("Resolve returned %d attachments, want 2", len(atts))
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if _, err := store.Stage(ctx, "sess-1", StagedAttachment{FileName: "a.txt"}); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	ids, err := store.StagedIDs(ctx, "sess-2")
	if err != nil {
		t.Fatalf("StagedIDs failed: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected empty session, got %v", ids)
	}
}

func TestClear(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	id, err := store.Stage(ctx, "sess-1", StagedAttachment{FileName: "a.txt"})
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	if err := store.Clear(ctx, "sess-1"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	ids, err := store.StagedIDs(ctx, "sess-1")
	if err != nil {
		t.Fatalf("StagedIDs failed: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no staged ids after clear, got %v", ids)
	}
	atts, err := store.Resolve(ctx, []string{id})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(atts) != 0 {
		t.Fatalf("expected attachment metadata dropped, got %v", atts)
	}
}

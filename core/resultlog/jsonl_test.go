package resultlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestJSONLStore_AppendAndQuery(t *testing.T) {
	dir := t.TempDir()
	store, err := NewJSONLStore(filepath.Join(dir, "runs.jsonl"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	records := []Record{
		{Timestamp: base, RunID: "r1", SiteID: "site-a", Mode: "allocation_only", ObjectiveValue: 1},
		{Timestamp: base.Add(time.Hour), RunID: "r2", SiteID: "site-b", Mode: "integrated", ObjectiveValue: 2},
		{Timestamp: base.Add(2 * time.Hour), RunID: "r3", SiteID: "site-a", Mode: "scheduling_only", ObjectiveValue: 3},
	}
	for _, r := range records {
		if err := store.Append(ctx, r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := store.Query(ctx, Query{SiteID: "site-a"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records for site-a, got %d", len(got))
	}
	if got[0].RunID != "r1" || got[1].RunID != "r3" {
		t.Fatalf("unexpected run ids: %v, %v", got[0].RunID, got[1].RunID)
	}
}

func TestJSONLStore_QueryTimeRange(t *testing.T) {
	dir := t.TempDir()
	store, err := NewJSONLStore(filepath.Join(dir, "runs.jsonl"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		rec := Record{Timestamp: base.Add(time.Duration(i) * time.Hour), RunID: string(rune('a' + i)), SiteID: "site-x"}
		if err := store.Append(ctx, rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := store.Query(ctx, Query{Start: base.Add(time.Hour), End: base.Add(3 * time.Hour)})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records in range, got %d", len(got))
	}
}

package reconcile

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"reup-backend/internal/resumes"
	"reup-backend/internal/shared/storage/kv"
)

func putRecord(t *testing.T, store kv.Store, record resumes.Record) {
	t.Helper()
	raw, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := store.Set(context.Background(), resumes.RecordKey(record.ID), raw); err != nil {
		t.Fatalf("kv set: %v", err)
	}
}

func TestSweepOnceInsertsMissingRows(t *testing.T) {
	kvStore := kv.NewMemoryStore()
	repo := resumes.NewMemoryRepo()
	sweeper := NewSweeper(kvStore, repo, time.Minute)
	ctx := context.Background()

	// Orphaned: feedback populated, no relational row.
	putRecord(t, kvStore, resumes.Record{
		ID:         "orphan-1",
		CreatedBy:  "user-1",
		ResumePath: "u/orphan.pdf",
		ImagePath:  "u/orphan.pdf.preview.png",
		JobTitle:   "Engineer",
		Feedback:   json.RawMessage(`{"overallScore":60}`),
	})
	// Still in flight: no feedback yet.
	putRecord(t, kvStore, resumes.Record{
		ID:        "pending-1",
		CreatedBy: "user-1",
	})
	// Already persisted.
	putRecord(t, kvStore, resumes.Record{
		ID:        "done-1",
		CreatedBy: "user-1",
		Feedback:  json.RawMessage(`{"overallScore":50}`),
	})
	if err := repo.Create(ctx, resumes.AnalyzedResume{
		AnalyzedResumeID: "done-1",
		CreatedBy:        "user-1",
	}); err != nil {
		t.Fatalf("seed repo: %v", err)
	}

	inserted, err := sweeper.SweepOnce(ctx)
	if err != nil {
		t.Fatalf("SweepOnce: %v", err)
	}
	if inserted != 1 {
		t.Fatalf("inserted = %d, want 1", inserted)
	}

	row, err := repo.GetByAnalyzedResumeID(ctx, "orphan-1")
	if err != nil {
		t.Fatalf("orphan not reconciled: %v", err)
	}
	if row.CreatedBy != "user-1" || row.JobTitle != "Engineer" {
		t.Fatalf("reconciled row wrong: %+v", row)
	}

	if _, err := repo.GetByAnalyzedResumeID(ctx, "pending-1"); err == nil {
		t.Fatal("pending record should not be reconciled")
	}
}

func TestSweepOnceIsIdempotent(t *testing.T) {
	kvStore := kv.NewMemoryStore()
	repo := resumes.NewMemoryRepo()
	sweeper := NewSweeper(kvStore, repo, time.Minute)
	ctx := context.Background()

	putRecord(t, kvStore, resumes.Record{
		ID:        "orphan-1",
		CreatedBy: "user-1",
		Feedback:  json.RawMessage(`{"overallScore":60}`),
	})

	if n, err := sweeper.SweepOnce(ctx); err != nil || n != 1 {
		t.Fatalf("first sweep = %d, %v", n, err)
	}
	if n, err := sweeper.SweepOnce(ctx); err != nil || n != 0 {
		t.Fatalf("second sweep = %d, %v; want 0 inserts", n, err)
	}
}

func TestSweepOnceSkipsUnattributedRecords(t *testing.T) {
	kvStore := kv.NewMemoryStore()
	repo := resumes.NewMemoryRepo()
	sweeper := NewSweeper(kvStore, repo, time.Minute)

	putRecord(t, kvStore, resumes.Record{
		ID:       "no-owner",
		Feedback: json.RawMessage(`{"overallScore":60}`),
	})

	if n, err := sweeper.SweepOnce(context.Background()); err != nil || n != 0 {
		t.Fatalf("sweep = %d, %v; want 0 inserts", n, err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	kvStore := kv.NewMemoryStore()
	repo := resumes.NewMemoryRepo()
	sweeper := NewSweeper(kvStore, repo, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

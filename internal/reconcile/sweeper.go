// Package reconcile repairs drift between the KV records the client reads
// and the relational rows behind history and ownership. The pipeline's
// relational insert is attempted once; anything it misses is picked up
// here.
package reconcile

import (
	"context"
	"encoding/json"
	"time"

	"reup-backend/internal/resumes"
	"reup-backend/internal/shared/metrics"
	"reup-backend/internal/shared/storage/kv"
	"reup-backend/internal/shared/telemetry"
)

// Sweeper periodically inserts relational rows for KV resume records that
// have feedback but no matching row.
type Sweeper struct {
	KV       kv.Store
	Repo     resumes.Repo
	Interval time.Duration
	Now      func() time.Time
}

func NewSweeper(kvStore kv.Store, repo resumes.Repo, interval time.Duration) *Sweeper {
	return &Sweeper{
		KV:       kvStore,
		Repo:     repo,
		Interval: interval,
		Now:      time.Now,
	}
}

// Run loops until the context is cancelled. One sweep runs immediately.
func (s *Sweeper) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if n, err := s.SweepOnce(ctx); err != nil {
			telemetry.Error("reconcile.sweep_failed", map[string]any{"error": err.Error()})
		} else if n > 0 {
			metrics.IncReconcileInserts(n)
			telemetry.Info("reconcile.sweep_complete", map[string]any{"inserted": n})
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// SweepOnce scans every KV resume record and inserts missing relational
// rows. Records without feedback are still in flight and skipped; records
// without an owner cannot be attributed and are skipped.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	keys, err := s.KV.List(ctx, resumes.RecordKeyPattern)
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return inserted, err
		}

		raw, err := s.KV.Get(ctx, key)
		if err != nil {
			// Deleted between List and Get; skip.
			continue
		}
		var record resumes.Record
		if err := json.Unmarshal(raw, &record); err != nil {
			telemetry.Warn("reconcile.bad_record", map[string]any{"key": key, "error": err.Error()})
			continue
		}
		if record.ID == "" || record.CreatedBy == "" || !record.HasFeedback() {
			continue
		}

		exists, err := s.Repo.ExistsByAnalyzedResumeID(ctx, record.ID)
		if err != nil {
			return inserted, err
		}
		if exists {
			continue
		}

		if err := s.Repo.Create(ctx, resumes.AnalyzedResume{
			AnalyzedResumeID: record.ID,
			CreatedBy:        record.CreatedBy,
			ResumePath:       record.ResumePath,
			ImagePath:        record.ImagePath,
			CompanyName:      record.CompanyName,
			JobTitle:         record.JobTitle,
			JobDescription:   record.JobDescription,
			Feedback:         record.Feedback,
			CreatedAt:        s.Now().UTC(),
		}); err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

package resumes

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo implements Repo in memory for local development and tests.
type MemoryRepo struct {
	mu      sync.Mutex
	nextID  int64
	resumes map[string]AnalyzedResume
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{resumes: make(map[string]AnalyzedResume)}
}

func (r *MemoryRepo) Create(_ context.Context, resume AnalyzedResume) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	resume.ID = r.nextID
	if resume.CreatedAt.IsZero() {
		resume.CreatedAt = time.Now().UTC()
	}
	resume.UpdatedAt = resume.CreatedAt
	r.resumes[resume.AnalyzedResumeID] = resume
	return nil
}

func (r *MemoryRepo) GetByAnalyzedResumeID(_ context.Context, analyzedResumeID string) (AnalyzedResume, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	resume, ok := r.resumes[analyzedResumeID]
	if !ok {
		return AnalyzedResume{}, ErrNotFound
	}
	return resume, nil
}

func (r *MemoryRepo) ExistsByAnalyzedResumeID(_ context.Context, analyzedResumeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.resumes[analyzedResumeID]
	return ok, nil
}

func (r *MemoryRepo) ListByUser(_ context.Context, userID string, limit, offset int) ([]AnalyzedResume, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	var owned []AnalyzedResume
	for _, resume := range r.resumes {
		if resume.CreatedBy == userID {
			owned = append(owned, resume)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})
	if offset >= len(owned) {
		return nil, nil
	}
	owned = owned[offset:]
	if len(owned) > limit {
		owned = owned[:limit]
	}
	return owned, nil
}

func (r *MemoryRepo) DeleteByUser(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, resume := range r.resumes {
		if resume.CreatedBy == userID {
			delete(r.resumes, id)
			n++
		}
	}
	return n, nil
}

var _ Repo = (*MemoryRepo)(nil)

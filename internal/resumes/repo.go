package resumes

import "context"

// Repo defines relational persistence for analyzed resumes.
type Repo interface {
	// Create inserts a new analyzed resume row.
	Create(ctx context.Context, resume AnalyzedResume) error
	// GetByAnalyzedResumeID returns a resume by its external UUID.
	GetByAnalyzedResumeID(ctx context.Context, analyzedResumeID string) (AnalyzedResume, error)
	// ListByUser lists a user's resumes newest-first.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]AnalyzedResume, error)
	// ExistsByAnalyzedResumeID reports whether the UUID is already recorded.
	ExistsByAnalyzedResumeID(ctx context.Context, analyzedResumeID string) (bool, error)
	// DeleteByUser removes all rows owned by userID and returns the count.
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new analyzed resume row.
func (r *PGRepo) Create(ctx context.Context, resume AnalyzedResume) error {
	const query = `
INSERT INTO analyzed_resumes (
	analyzed_resume_id, created_by, resume_path, image_path,
	company_name, job_title, job_description, feedback, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`

	createdAt := resume.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.DB.ExecContext(ctx, query,
		resume.AnalyzedResumeID,
		resume.CreatedBy,
		resume.ResumePath,
		resume.ImagePath,
		nullableString(resume.CompanyName),
		nullableString(resume.JobTitle),
		nullableString(resume.JobDescription),
		nullableJSON(resume.Feedback),
		createdAt,
	)
	return err
}

// GetByAnalyzedResumeID returns a resume by its external UUID.
func (r *PGRepo) GetByAnalyzedResumeID(ctx context.Context, analyzedResumeID string) (AnalyzedResume, error) {
	const query = `
SELECT id, analyzed_resume_id, created_by, resume_path, image_path,
       company_name, job_title, job_description, feedback, created_at, updated_at
FROM analyzed_resumes
WHERE analyzed_resume_id = $1
LIMIT 1`
	return scanResume(r.DB.QueryRowContext(ctx, query, analyzedResumeID))
}

// ExistsByAnalyzedResumeID reports whether the UUID is already recorded.
func (r *PGRepo) ExistsByAnalyzedResumeID(ctx context.Context, analyzedResumeID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM analyzed_resumes WHERE analyzed_resume_id = $1)`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, analyzedResumeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ListByUser lists a user's resumes newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]AnalyzedResume, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	const query = `
SELECT id, analyzed_resume_id, created_by, resume_path, image_path,
       company_name, job_title, job_description, feedback, created_at, updated_at
FROM analyzed_resumes
WHERE created_by = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AnalyzedResume
	for rows.Next() {
		resume, err := scanResumeRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, resume)
	}
	return out, rows.Err()
}

// DeleteByUser removes all rows owned by userID and returns the count.
func (r *PGRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	const query = `DELETE FROM analyzed_resumes WHERE created_by = $1`
	res, err := r.DB.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row *sql.Row) (AnalyzedResume, error) {
	resume, err := scanResumeRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AnalyzedResume{}, ErrNotFound
		}
		return AnalyzedResume{}, err
	}
	return resume, nil
}

func scanResumeRow(row rowScanner) (AnalyzedResume, error) {
	var resume AnalyzedResume
	var companyName sql.NullString
	var jobTitle sql.NullString
	var jobDescription sql.NullString
	var feedback sql.NullString
	err := row.Scan(
		&resume.ID,
		&resume.AnalyzedResumeID,
		&resume.CreatedBy,
		&resume.ResumePath,
		&resume.ImagePath,
		&companyName,
		&jobTitle,
		&jobDescription,
		&feedback,
		&resume.CreatedAt,
		&resume.UpdatedAt,
	)
	if err != nil {
		return AnalyzedResume{}, err
	}
	if companyName.Valid {
		resume.CompanyName = companyName.String
	}
	if jobTitle.Valid {
		resume.JobTitle = jobTitle.String
	}
	if jobDescription.Valid {
		resume.JobDescription = jobDescription.String
	}
	if feedback.Valid && feedback.String != "" {
		resume.Feedback = json.RawMessage(feedback.String)
	}
	return resume, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

var _ Repo = (*PGRepo)(nil)

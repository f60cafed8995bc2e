package resumes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"reup-backend/internal/extract"
	"reup-backend/internal/llm"
	"reup-backend/internal/preview"
	"reup-backend/internal/shared/metrics"
	"reup-backend/internal/shared/storage/kv"
	"reup-backend/internal/shared/storage/object"
	"reup-backend/internal/shared/telemetry"
)

const maxResumeSize = 10 << 20 // 10MB

// deletePageSize is the list page size used when collecting rows for bulk
// deletion. Must not exceed the repos' list limit clamp.
const deletePageSize = 100

// UserChecker reports whether a user row exists for an identity.
type UserChecker interface {
	Exists(ctx context.Context, userID string) (bool, error)
}

// ErrUserNotFound indicates no mirrored user row exists for the identity.
var ErrUserNotFound = errors.New("user not found")

// Service orchestrates the analysis pipeline and owns both stores.
type Service struct {
	Store    object.ObjectStore
	KV       kv.Store
	Repo     Repo
	AI       llm.Client
	Renderer preview.Renderer
	Users    UserChecker
	Now      func() time.Time
	// ExtractText overrides the PDF text extractor; nil means the real one.
	ExtractText func(ctx context.Context, data []byte, mimeType string) (string, error)
}

// AnalyzeRequest carries the upload and job metadata for one run.
type AnalyzeRequest struct {
	FileName       string
	File           io.Reader
	CompanyName    string
	JobTitle       string
	JobDescription string
}

// Analyze runs the full pipeline: store the PDF, rasterize the first page,
// write the KV placeholder, get AI feedback, then dual-write the populated
// record. Steps are not rolled back on failure; each failure carries the
// status string the client shows. A relational insert failure after the KV
// write is logged and left for the reconciliation sweep.
func (s *Service) Analyze(ctx context.Context, userID string, req AnalyzeRequest) (Record, error) {
	metrics.IncPipelineStarted()
	started := metrics.NowMillis()
	record, err := s.analyze(ctx, userID, req)
	metrics.ObservePipelineDurationMs(metrics.NowMillis() - started)
	if err != nil {
		metrics.IncPipelineFailed()
		return Record{}, err
	}
	metrics.IncPipelineCompleted()
	return record, nil
}

func (s *Service) analyze(ctx context.Context, userID string, req AnalyzeRequest) (Record, error) {
	if strings.TrimSpace(userID) == "" {
		return Record{}, ErrInvalidInput
	}
	if strings.TrimSpace(req.FileName) == "" || req.File == nil {
		return Record{}, ErrInvalidInput
	}
	if strings.TrimSpace(req.JobTitle) == "" || strings.TrimSpace(req.JobDescription) == "" {
		return Record{}, ErrInvalidInput
	}

	data, err := io.ReadAll(io.LimitReader(req.File, maxResumeSize+1))
	if err != nil {
		return Record{}, &PipelineError{Status: StatusUploadFailed, Err: err}
	}
	if len(data) > maxResumeSize {
		return Record{}, &PipelineError{Status: StatusUploadFailed, Err: fmt.Errorf("file exceeds %d bytes", maxResumeSize)}
	}
	if mime := sniffMime(data); mime != "application/pdf" {
		return Record{}, &PipelineError{Status: StatusUploadFailed, Err: fmt.Errorf("unsupported file type %s", mime)}
	}

	resumePath, _, _, err := s.Store.Save(ctx, userID, req.FileName, bytes.NewReader(data))
	if err != nil {
		return Record{}, &PipelineError{Status: StatusUploadFailed, Err: err}
	}

	opts := preview.DefaultOptions()
	image, err := s.Renderer.Render(ctx, bytes.NewReader(data), opts)
	if err != nil {
		return Record{}, &PipelineError{Status: StatusConvertFailed, Err: err}
	}

	imagePath := resumePath + ".preview." + opts.Format
	if _, err := s.Store.SaveWithKey(ctx, imagePath, opts.ContentType(), bytes.NewReader(image)); err != nil {
		return Record{}, &PipelineError{Status: StatusImageFailed, Err: err}
	}

	record := Record{
		ID:             uuid.NewString(),
		ResumePath:     resumePath,
		ImagePath:      imagePath,
		CompanyName:    req.CompanyName,
		JobTitle:       req.JobTitle,
		JobDescription: req.JobDescription,
		CreatedBy:      userID,
	}

	// Placeholder first so the client can poll the record while the AI call
	// is in flight.
	if err := s.setRecord(ctx, record); err != nil {
		return Record{}, &PipelineError{Status: StatusUploadFailed, Err: err}
	}

	extractText := s.ExtractText
	if extractText == nil {
		extractText = extract.ExtractTextFromBytes
	}
	resumeText, err := extractText(ctx, data, "application/pdf")
	if err != nil {
		return Record{}, &PipelineError{Status: StatusAnalyzeFailed, Err: err}
	}

	rawFeedback, err := s.AI.Feedback(ctx, llm.FeedbackInput{
		ResumeText:     resumeText,
		JobTitle:       req.JobTitle,
		JobDescription: req.JobDescription,
	})
	if err != nil {
		return Record{}, &PipelineError{Status: StatusAnalyzeFailed, Err: err}
	}
	if _, err := ParseFeedback(rawFeedback); err != nil {
		return Record{}, &PipelineError{Status: StatusAnalyzeFailed, Err: err}
	}

	record.Feedback = rawFeedback
	if err := s.setRecord(ctx, record); err != nil {
		return Record{}, &PipelineError{Status: StatusAnalyzeFailed, Err: err}
	}

	// Single attempt; the sweeper picks up anything that slips through here.
	if err := s.Repo.Create(ctx, AnalyzedResume{
		AnalyzedResumeID: record.ID,
		CreatedBy:        userID,
		ResumePath:       record.ResumePath,
		ImagePath:        record.ImagePath,
		CompanyName:      record.CompanyName,
		JobTitle:         record.JobTitle,
		JobDescription:   record.JobDescription,
		Feedback:         record.Feedback,
		CreatedAt:        s.now(),
	}); err != nil {
		telemetry.Warn("resume.relational_insert_failed", map[string]any{
			"resumeId": record.ID,
			"error":    err.Error(),
		})
	}

	return record, nil
}

// SaveAnalyzed persists a client-supplied analyzed record relationally.
// The caller must already hold the record's identity; ownership is forced
// to the session user.
func (s *Service) SaveAnalyzed(ctx context.Context, userID string, record Record) error {
	if strings.TrimSpace(record.ID) == "" || strings.TrimSpace(record.ResumePath) == "" {
		return ErrInvalidInput
	}

	exists, err := s.Users.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrUserNotFound
	}

	return s.Repo.Create(ctx, AnalyzedResume{
		AnalyzedResumeID: record.ID,
		CreatedBy:        userID,
		ResumePath:       record.ResumePath,
		ImagePath:        record.ImagePath,
		CompanyName:      record.CompanyName,
		JobTitle:         record.JobTitle,
		JobDescription:   record.JobDescription,
		Feedback:         record.Feedback,
		CreatedAt:        s.now(),
	})
}

// Get returns a record by UUID, trying the KV store first and falling back
// to the relational row. Records owned by other users read as not found.
func (s *Service) Get(ctx context.Context, userID, analyzedResumeID string) (Record, error) {
	raw, err := s.KV.Get(ctx, RecordKey(analyzedResumeID))
	if err == nil {
		var record Record
		if jsonErr := json.Unmarshal(raw, &record); jsonErr == nil {
			if record.CreatedBy != "" && record.CreatedBy != userID {
				return Record{}, ErrNotFound
			}
			return record, nil
		}
	} else if !errors.Is(err, kv.ErrNotFound) {
		telemetry.Warn("resume.kv_get_failed", map[string]any{
			"resumeId": analyzedResumeID,
			"error":    err.Error(),
		})
	}

	resume, err := s.Repo.GetByAnalyzedResumeID(ctx, analyzedResumeID)
	if err != nil {
		return Record{}, err
	}
	if resume.CreatedBy != userID {
		return Record{}, ErrNotFound
	}
	return Record{
		ID:             resume.AnalyzedResumeID,
		ResumePath:     resume.ResumePath,
		ImagePath:      resume.ImagePath,
		CompanyName:    resume.CompanyName,
		JobTitle:       resume.JobTitle,
		JobDescription: resume.JobDescription,
		Feedback:       resume.Feedback,
		CreatedBy:      resume.CreatedBy,
	}, nil
}

// List returns the user's analyzed resumes newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]AnalyzedResume, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// DeleteAll removes everything the user owns from all three stores. Blob
// and KV deletions fan out concurrently and race the relational bulk
// delete; all are awaited and the first failure is reported. There is no
// compensation for partial failure.
func (s *Service) DeleteAll(ctx context.Context, userID string) (int64, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, ErrInvalidInput
	}

	// Page through everything the user owns; the fan-out below must cover
	// every row or the bulk delete strands KV entries and blobs.
	var owned []AnalyzedResume
	for offset := 0; ; {
		page, err := s.Repo.ListByUser(ctx, userID, deletePageSize, offset)
		if err != nil {
			return 0, err
		}
		owned = append(owned, page...)
		if len(page) < deletePageSize {
			break
		}
		offset += len(page)
	}

	g, gctx := errgroup.WithContext(ctx)
	var deleted int64

	g.Go(func() error {
		n, err := s.Repo.DeleteByUser(gctx, userID)
		deleted = n
		return err
	})

	for _, resume := range owned {
		resume := resume
		g.Go(func() error {
			if err := s.Store.Delete(gctx, resume.ResumePath); err != nil {
				return err
			}
			if resume.ImagePath != "" {
				if err := s.Store.Delete(gctx, resume.ImagePath); err != nil {
					return err
				}
			}
			return s.KV.Delete(gctx, RecordKey(resume.AnalyzedResumeID))
		})
	}

	if err := g.Wait(); err != nil {
		return deleted, err
	}
	return deleted, nil
}

func (s *Service) setRecord(ctx context.Context, record Record) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.KV.Set(ctx, RecordKey(record.ID), payload)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func sniffMime(data []byte) string {
	return http.DetectContentType(data)
}

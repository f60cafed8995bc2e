package resumes

import (
	"encoding/json"
	"time"
)

// AnalyzedResume is the relational record of a completed analysis. The
// UUID in AnalyzedResumeID is the only identifier exposed outside the API.
type AnalyzedResume struct {
	ID               int64           `json:"-"`
	AnalyzedResumeID string          `json:"id"`
	CreatedBy        string          `json:"createdBy"`
	ResumePath       string          `json:"resumePath"`
	ImagePath        string          `json:"imagePath"`
	CompanyName      string          `json:"companyName"`
	JobTitle         string          `json:"jobTitle"`
	JobDescription   string          `json:"jobDescription"`
	Feedback         json.RawMessage `json:"feedback,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// Record is the denormalized KV document keyed by "resume:<uuid>". The
// browser client reads it directly, so field names are fixed.
type Record struct {
	ID             string          `json:"id"`
	ResumePath     string          `json:"resumePath"`
	ImagePath      string          `json:"imagePath"`
	CompanyName    string          `json:"companyName"`
	JobTitle       string          `json:"jobTitle"`
	JobDescription string          `json:"jobDescription"`
	Feedback       json.RawMessage `json:"feedback"`
	CreatedBy      string          `json:"createdBy"`
}

// RecordKey returns the KV key for a resume UUID.
func RecordKey(id string) string {
	return "resume:" + id
}

// RecordKeyPattern matches every resume record in the KV store.
const RecordKeyPattern = "resume:*"

// HasFeedback reports whether the record's feedback field is populated.
func (r Record) HasFeedback() bool {
	trimmed := string(r.Feedback)
	return trimmed != "" && trimmed != "null" && trimmed != `""` && trimmed != "{}"
}

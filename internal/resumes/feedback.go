package resumes

import (
	"encoding/json"
	"fmt"
)

// Tip is a single piece of category feedback.
type Tip struct {
	Type        string `json:"type"`
	Tip         string `json:"tip"`
	Explanation string `json:"explanation,omitempty"`
}

// Category groups scored tips for one review dimension.
type Category struct {
	Score int   `json:"score"`
	Tips  []Tip `json:"tips"`
}

// Feedback is the structured review document produced by the LLM.
type Feedback struct {
	OverallScore int      `json:"overallScore"`
	ATS          Category `json:"ATS"`
	ToneAndStyle Category `json:"toneAndStyle"`
	Content      Category `json:"content"`
	Structure    Category `json:"structure"`
	Skills       Category `json:"skills"`
}

// ParseFeedback decodes and validates an LLM feedback payload.
func ParseFeedback(raw json.RawMessage) (Feedback, error) {
	var fb Feedback
	if err := json.Unmarshal(raw, &fb); err != nil {
		return Feedback{}, fmt.Errorf("parse feedback: %w", err)
	}
	if err := fb.Validate(); err != nil {
		return Feedback{}, err
	}
	return fb, nil
}

// Validate checks score ranges and tip types.
func (f Feedback) Validate() error {
	if f.OverallScore < 0 || f.OverallScore > 100 {
		return fmt.Errorf("feedback: overallScore %d out of range", f.OverallScore)
	}
	categories := map[string]Category{
		"ATS":          f.ATS,
		"toneAndStyle": f.ToneAndStyle,
		"content":      f.Content,
		"structure":    f.Structure,
		"skills":       f.Skills,
	}
	for name, cat := range categories {
		if cat.Score < 0 || cat.Score > 100 {
			return fmt.Errorf("feedback: %s score %d out of range", name, cat.Score)
		}
		for i, tip := range cat.Tips {
			if tip.Type != "good" && tip.Type != "improve" {
				return fmt.Errorf("feedback: %s tip %d has invalid type %q", name, i, tip.Type)
			}
			if tip.Tip == "" {
				return fmt.Errorf("feedback: %s tip %d is empty", name, i)
			}
		}
	}
	return nil
}

package anthropic

import "fmt"

const feedbackFormat = `{
  "overallScore": number (0-100),
  "ATS": {
    "score": number (0-100),
    "tips": [{"type": "good" | "improve", "tip": string}]
  },
  "toneAndStyle": {
    "score": number (0-100),
    "tips": [{"type": "good" | "improve", "tip": string, "explanation": string}]
  },
  "content": {
    "score": number (0-100),
    "tips": [{"type": "good" | "improve", "tip": string, "explanation": string}]
  },
  "structure": {
    "score": number (0-100),
    "tips": [{"type": "good" | "improve", "tip": string, "explanation": string}]
  },
  "skills": {
    "score": number (0-100),
    "tips": [{"type": "good" | "improve", "tip": string, "explanation": string}]
  }
}`

// buildPrompt produces the review instructions sent alongside the resume.
func buildPrompt(jobTitle, jobDescription string) string {
	return fmt.Sprintf(`You are an expert in ATS (Applicant Tracking Systems) and resume analysis.
Analyze and rate this resume and suggest how to improve it.
The rating can be low if the resume is bad.
Be thorough and detailed. Don't be afraid to point out any mistakes or areas for improvement.
If there is a lot to improve, don't hesitate to give low scores.
Take the job description into consideration.
The job title is: %s
The job description is: %s
Provide the feedback using the following format: %s
Return the analysis as a JSON object, without any other text. Do not include backticks.`,
		jobTitle, jobDescription, feedbackFormat)
}

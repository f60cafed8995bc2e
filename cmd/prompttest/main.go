package main

// Manual harness for the feedback prompt:
//   go run ./cmd/prompttest -resume resume.pdf -job-title "Backend Engineer"

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"reup-backend/internal/extract"
	"reup-backend/internal/llm"
	anthropic "reup-backend/internal/llm/anthropic"
	"reup-backend/internal/resumes"
	"reup-backend/internal/shared/config"
)

func main() {
	cfg := config.Load()

	resumePath := flag.String("resume", "", "Path to resume PDF")
	jdPath := flag.String("jd", "", "Path to job description file (optional)")
	jobTitle := flag.String("job-title", "", "Job title")
	outPath := flag.String("out", "", "Path to write raw JSON output (optional)")
	model := flag.String("model", cfg.LLMModel, "LLM model")
	flag.Parse()

	if strings.TrimSpace(*resumePath) == "" {
		exitErr("resume path is required")
	}

	resumeBytes, err := os.ReadFile(*resumePath)
	if err != nil {
		exitErr(fmt.Sprintf("read resume: %v", err))
	}

	resumeText, err := extract.ExtractTextFromBytes(context.Background(), resumeBytes, "application/pdf")
	if err != nil {
		exitErr(fmt.Sprintf("extract resume text: %v", err))
	}

	jobDescription := ""
	if strings.TrimSpace(*jdPath) != "" {
		jdBytes, err := os.ReadFile(*jdPath)
		if err != nil {
			exitErr(fmt.Sprintf("read job description: %v", err))
		}
		jobDescription = string(jdBytes)
	}

	client, err := anthropic.NewClient(os.Getenv("ANTHROPIC_API_KEY"), *model)
	if err != nil {
		exitErr(err.Error())
	}

	raw, err := client.Feedback(context.Background(), llm.FeedbackInput{
		ResumeText:     resumeText,
		JobTitle:       strings.TrimSpace(*jobTitle),
		JobDescription: jobDescription,
	})
	if err != nil {
		exitErr(fmt.Sprintf("llm feedback: %v", err))
	}

	feedback, err := resumes.ParseFeedback(raw)
	if err != nil {
		exitErr(fmt.Sprintf("invalid feedback: %v", err))
	}
	fmt.Fprintf(os.Stderr, "overall score: %d\n", feedback.OverallScore)

	pretty, err := prettyJSON(raw)
	if err != nil {
		exitErr(fmt.Sprintf("format json: %v", err))
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, pretty, 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}
	fmt.Println(string(pretty))
}

func prettyJSON(raw json.RawMessage) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exitErr(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}

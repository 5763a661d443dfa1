// Package compile synthesizes the final evaluation report from all upstream
// signals and persists the complete evaluation. The compiler never fails the
// pipeline: every parse error and generator failure degrades to a
// deterministic fallback report.
package compile

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"okrlens/internal/core"
	"okrlens/internal/logger"
)

// contentExistsThreshold is the minimum trimmed description length for
// content to count as existing.
const contentExistsThreshold = 30

// Fallback report text when the generator's output cannot be parsed.
const (
	fallbackSummary  = "Could not parse summary."
	fallbackFeedback = "AI could not generate proper feedback. Try refining input."
)

const compilerPromptTemplate = `You are an OKR evaluation assistant. Based on the structured state below, compile a clear and professional evaluation report for the user.

State:
- Objective: %s
- Key Results: %s
- Metadata Title: %s
- Metadata Description: %s
- Trend Score: %d
- Content Exists: %t
- Scores: Relevance=%d, Credibility=%d, Completeness=%d
- Discrepancy Report:
%s

Instructions:
1. Summarize the content in 2 sentences.
2. Confirm if content exists (True/False).
3. Present the AI scores (relevance, credibility, completeness) and compute total out of 100.
4. Offer 3-5 recommendations for improvement based on discrepancy report.
5. Write a detailed feedback paragraph (4-5 lines) using a professional tone.

Respond strictly in valid JSON format with the following keys:
- content_summary: string
- content_exists: boolean
- ai_scores: object with keys "relevance", "credibility", "completeness", and "total"
- recommendations: list of 3-5 strings
- detailed_feedback: string`

// Generator produces free-form text from a prompt.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Store persists completed evaluations.
type Store interface {
	Insert(ctx context.Context, record core.EvaluationRecord) error
}

// Compiler builds the final report and persists the evaluation.
type Compiler struct {
	generator Generator
	store     Store
}

// NewCompiler creates a Compiler.
func NewCompiler(generator Generator, store Store) *Compiler {
	return &Compiler{generator: generator, store: store}
}

// Compile extracts the verification scores, generates the compiled report,
// stamps and persists the record, and returns the record superset. A store
// failure is logged but does not fail the evaluation.
func (c *Compiler) Compile(ctx context.Context, record core.EvaluationRecord) core.EvaluationRecord {
	record.Scores = ExtractScores(record.VerificationStatus)

	var objective string
	var keyResults []string
	if record.ParsedOKR != nil {
		objective = record.ParsedOKR.Objective
		keyResults = record.ParsedOKR.KeyResults
	}
	var title, description string
	if record.Metadata != nil {
		title = record.Metadata.Title
		description = record.Metadata.MetaDescription
	}

	contentExists := ContentExists(description)
	report := c.generateReport(ctx, reportInput{
		objective:     objective,
		keyResults:    keyResults,
		title:         title,
		description:   description,
		trendScore:    record.TrendScore,
		contentExists: contentExists,
		scores:        record.Scores,
		discrepancy:   record.DiscrepancyReport,
	})

	record.CompiledResult = &report
	record.Timestamp = time.Now().UTC()

	if err := c.store.Insert(ctx, record); err != nil {
		logger.Error("failed to persist evaluation", err, "url", record.InputURL)
	}

	return record
}

type reportInput struct {
	objective     string
	keyResults    []string
	title         string
	description   string
	trendScore    int
	contentExists bool
	scores        core.Scores
	discrepancy   string
}

func (c *Compiler) generateReport(ctx context.Context, in reportInput) core.CompiledReport {
	prompt := fmt.Sprintf(compilerPromptTemplate,
		in.objective,
		strings.Join(in.keyResults, "; "),
		in.title,
		in.description,
		in.trendScore,
		in.contentExists,
		in.scores.Relevance,
		in.scores.Credibility,
		in.scores.Completeness,
		in.discrepancy,
	)

	raw, err := c.generator.GenerateText(ctx, prompt)
	if err != nil {
		logger.Error("report generation failed, using fallback", err)
		return fallbackReport(in)
	}

	var report core.CompiledReport
	if err := json.Unmarshal([]byte(StripFence(raw)), &report); err != nil {
		logger.Error("failed to parse compiled report JSON, using fallback", err)
		return fallbackReport(in)
	}

	return report
}

// fallbackReport is the deterministic report used when the generator output
// is unusable. The score total is always the sum of the extracted integers.
func fallbackReport(in reportInput) core.CompiledReport {
	return core.CompiledReport{
		ContentSummary: fallbackSummary,
		ContentExists:  in.contentExists,
		AIScores: core.AIScores{
			Relevance:    in.scores.Relevance,
			Credibility:  in.scores.Credibility,
			Completeness: in.scores.Completeness,
			Total:        in.scores.Relevance + in.scores.Credibility + in.scores.Completeness,
		},
		Recommendations:  []string{},
		DetailedFeedback: fallbackFeedback,
	}
}

// ExtractScores recovers the three sub-scores from a verification response.
// Sentinel statuses and unparseable payloads yield zero scores.
func ExtractScores(verification string) core.Scores {
	var payload struct {
		Relevance    int `json:"relevance"`
		Credibility  int `json:"credibility"`
		Completeness int `json:"completeness"`
	}

	outcome := ExtractObject(verification, &payload)
	if outcome == OutcomeEmpty {
		if verification != "" &&
			verification != core.VerificationSkipped &&
			verification != core.VerificationMissingInput &&
			verification != core.VerificationError {
			logger.Warn("no parseable scores in verification response", "strategy", outcome.String())
		}
		return core.Scores{}
	}

	return core.Scores{
		Relevance:    payload.Relevance,
		Credibility:  payload.Credibility,
		Completeness: payload.Completeness,
	}
}

// ContentExists reports whether the trimmed description is long enough to
// count as real content.
func ContentExists(description string) bool {
	return len(strings.TrimSpace(description)) > contentExistsThreshold
}

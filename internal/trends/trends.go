// Package trends derives a trend score and summary for an objective's
// keywords and produces a discrepancy narrative comparing the OKR against
// current topical data.
package trends

import (
	"context"
	"fmt"
	"strings"

	"okrlens/internal/core"
	"okrlens/internal/logger"
)

// maxKeywords limits the keyword set extracted from the objective.
const maxKeywords = 10

// discrepancyUnavailable is the fixed report used when the generator fails.
// A malformed or exceptional generator response must not crash the pipeline.
const discrepancyUnavailable = "Discrepancy analysis unavailable: the generator did not return a usable response."

const discrepancyPromptTemplate = `You are an AI that analyzes discrepancies in OKRs.

OKR Objective: %s
Key Results: %s

Content Metadata:
Title: %s
Description: %s

Trend Analysis:
Trend Score: %d
Summary: %s

Based on the above, identify if there are discrepancies such as:
- Misalignment with objective/key results
- Low trend relevance (trend score < 60)
- Missing or incomplete data

Provide a structured JSON output with:
- discrepancy_found (true/false)
- issues (list of strings)
- suggestions (list of corrective actions)`

// TrendChecker performs the external trend search.
type TrendChecker interface {
	CheckTrends(ctx context.Context, keywords []string) core.TrendResult
}

// Generator produces free-form text from a prompt.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Analyzer cross-references an OKR against trend data and writes a
// discrepancy narrative.
type Analyzer struct {
	checker   TrendChecker
	generator Generator
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(checker TrendChecker, generator Generator) *Analyzer {
	return &Analyzer{checker: checker, generator: generator}
}

// Analyze extracts keywords from the objective, fetches trend data, and asks
// the generator for a discrepancy report. Both steps degrade instead of
// failing: the trend checker returns zero-score failure variants and a
// generator error yields a fixed unavailable message.
func (a *Analyzer) Analyze(ctx context.Context, okr *core.OKR, metadata *core.Metadata) (core.TrendResult, string) {
	var objective string
	var keyResults []string
	if okr != nil {
		objective = okr.Objective
		keyResults = okr.KeyResults
	}

	trend := a.checker.CheckTrends(ctx, Keywords(objective))

	var title, description string
	if metadata != nil {
		title = metadata.Title
		description = metadata.MetaDescription
	}

	prompt := fmt.Sprintf(discrepancyPromptTemplate,
		objective,
		strings.Join(keyResults, "; "),
		title,
		description,
		trend.TrendScore,
		trend.TrendSummary,
	)

	report, err := a.generator.GenerateText(ctx, prompt)
	if err != nil {
		logger.Warn("discrepancy generation failed", "error", err.Error())
		return trend, discrepancyUnavailable
	}

	return trend, strings.TrimSpace(report)
}

// Keywords returns the first ten whitespace-separated tokens of the
// objective, the keyword set used for the trend search.
func Keywords(objective string) []string {
	fields := strings.Fields(objective)
	if len(fields) > maxKeywords {
		fields = fields[:maxKeywords]
	}
	return fields
}

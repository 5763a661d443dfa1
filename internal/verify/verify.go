// Package verify scores content quality from title and meta description.
// It stores the generator's raw response verbatim; numeric extraction is
// deferred to the result compiler.
package verify

import (
	"context"
	"fmt"

	"okrlens/internal/core"
	"okrlens/internal/logger"
)

// qualityPromptTemplate asks for three sub-scores. Relevance is capped at 40,
// credibility at 30, completeness at 30, total out of 100.
const qualityPromptTemplate = `You are a content evaluation agent.
Given the following title and metadata:

TITLE: "%s"
METADATA: "%s"

Evaluate based on the following:

1. Relevance to professional OKRs or career development (40 points)
2. Credibility of source and quality of content (30 points)
3. Completeness of the description and context (30 points)

Return your output in this format:
{
  "relevance": <score_out_of_40>,
  "credibility": <score_out_of_30>,
  "completeness": <score_out_of_30>,
  "verdict": "pass" or "fail" (if total < 60/100, fail)
}`

// Generator produces free-form text from a prompt.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Scorer evaluates content quality through an external generator.
type Scorer struct {
	generator Generator
}

// NewScorer creates a Scorer backed by the given generator.
func NewScorer(generator Generator) *Scorer {
	return &Scorer{generator: generator}
}

// Score returns the verification status for the given metadata. Content that
// failed the duplicate check is skipped without invoking the generator, and
// missing title or description short-circuits likewise. A generator failure
// yields the error sentinel; Score never returns an error itself.
func (s *Scorer) Score(ctx context.Context, metadata *core.Metadata, duplicateStatus core.DuplicateStatus) string {
	if duplicateStatus != core.DuplicatePass {
		return core.VerificationSkipped
	}

	var title, description string
	if metadata != nil {
		title = metadata.Title
		description = metadata.MetaDescription
	}
	if title == "" || description == "" {
		return core.VerificationMissingInput
	}

	prompt := fmt.Sprintf(qualityPromptTemplate, title, description)
	result, err := s.generator.GenerateText(ctx, prompt)
	if err != nil {
		logger.Warn("content verification failed", "title", title, "error", err.Error())
		return core.VerificationError
	}

	return result
}

// Package okr extracts Objectives and Key Results from article text.
package okr

import (
	"context"
	"fmt"

	"okrlens/internal/compile"
	"okrlens/internal/core"
	"okrlens/internal/logger"
)

const parserPromptTemplate = `You are an AI assistant specialized in extracting Objectives and Key Results (OKRs) from professional articles, reports, or documents.

Your task is to analyze the provided article text carefully and identify:

1. The **main objective** - a concise summary capturing the core goal or purpose described.
2. The **key results** - clear, actionable, and measurable outcomes that indicate progress towards the objective.

Return the extracted OKRs as a JSON object in the exact format below, ensuring all fields are populated with relevant information from the text. Be brief but clear and informative.

The JSON output should be:

{
  "objective": "A brief summary of the main objective described in the text.",
  "key_results": [
    "First key result summarizing an outcome or milestone.",
    "Second key result summarizing another outcome or milestone."
  ]
}

Article Text:
%s

Please avoid adding any extra text or commentary. Focus on extracting meaningful OKRs that reflect the article content accurately and succinctly.`

// Generator produces free-form text from a prompt.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Parser extracts OKRs from article text through an external generator.
type Parser struct {
	generator Generator
}

// NewParser creates a Parser.
func NewParser(generator Generator) *Parser {
	return &Parser{generator: generator}
}

// Parse asks the generator for an OKR extraction and tolerantly parses the
// response. Generator failures and unparseable output degrade to an empty
// OKR so downstream stages still run.
func (p *Parser) Parse(ctx context.Context, articleText string) core.OKR {
	prompt := fmt.Sprintf(parserPromptTemplate, articleText)

	raw, err := p.generator.GenerateText(ctx, prompt)
	if err != nil {
		logger.Warn("OKR extraction failed", "error", err.Error())
		return core.OKR{}
	}

	var parsed core.OKR
	if outcome := compile.ExtractObject(raw, &parsed); outcome == compile.OutcomeEmpty {
		logger.Warn("no parseable OKR in generator response")
		return core.OKR{}
	}

	return parsed
}

package core

import "time"

// DuplicateStatus is the outcome of the near-duplicate check.
type DuplicateStatus string

const (
	// DuplicatePass means the content has not been seen before.
	DuplicatePass DuplicateStatus = "pass"
	// DuplicateFail means an exact title match was found among similar documents.
	DuplicateFail DuplicateStatus = "fail"
)

// Verification sentinel values stored in EvaluationRecord.VerificationStatus
// when the quality scorer short-circuits instead of calling the generator.
const (
	VerificationSkipped      = "skipped"
	VerificationMissingInput = "missing_title_or_description"
	VerificationError        = "error"
)

// OKR holds the objective and key results extracted from an article.
type OKR struct {
	Objective  string   `json:"objective" bson:"objective"`     // Main goal statement
	KeyResults []string `json:"key_results" bson:"key_results"` // Measurable outcomes, in document order
}

// Metadata holds the two metadata fields extracted from the article page.
type Metadata struct {
	Title           string `json:"title" bson:"title"`                       // Page title, "Unknown" when absent
	MetaDescription string `json:"meta_description" bson:"meta_description"` // Description meta tag, "None" when absent
}

// Scores are the three quality sub-scores extracted from the verification
// response. They default to zero when verification was skipped or unparseable.
type Scores struct {
	Relevance    int `json:"relevance" bson:"relevance"`       // 0-40
	Credibility  int `json:"credibility" bson:"credibility"`   // 0-30
	Completeness int `json:"completeness" bson:"completeness"` // 0-30
}

// AIScores are the scores as they appear in the compiled report, including
// the computed total.
type AIScores struct {
	Relevance    int `json:"relevance" bson:"relevance"`
	Credibility  int `json:"credibility" bson:"credibility"`
	Completeness int `json:"completeness" bson:"completeness"`
	Total        int `json:"total" bson:"total"`
}

// CompiledReport is the final structured evaluation produced by the result
// compiler. It is immutable after creation and persisted verbatim.
type CompiledReport struct {
	ContentSummary   string   `json:"content_summary" bson:"content_summary"`
	ContentExists    bool     `json:"content_exists" bson:"content_exists"`
	AIScores         AIScores `json:"ai_scores" bson:"ai_scores"`
	Recommendations  []string `json:"recommendations" bson:"recommendations"` // 3-5 items, may be empty on fallback
	DetailedFeedback string   `json:"detailed_feedback" bson:"detailed_feedback"`
}

// EvaluationRecord is the state threaded through the pipeline. Fields are
// append-only: each stage receives the record by value and returns a superset,
// never removing or rewriting what an earlier stage produced.
type EvaluationRecord struct {
	EvaluationID       string          `json:"evaluation_id" bson:"evaluation_id"`
	InputURL           string          `json:"input_url" bson:"input_url"`
	ParsedOKR          *OKR            `json:"parsed_okr,omitempty" bson:"parsed_okr,omitempty"`
	Metadata           *Metadata       `json:"metadata,omitempty" bson:"metadata,omitempty"`
	DuplicateStatus    DuplicateStatus `json:"duplicate_status,omitempty" bson:"duplicate_status,omitempty"`
	VerificationStatus string          `json:"verification_status,omitempty" bson:"verification_status,omitempty"`
	Scores             Scores          `json:"scores" bson:"scores"`
	TrendScore         int             `json:"trend_score" bson:"trend_score"` // 0-100
	TrendSummary       string          `json:"trend_summary,omitempty" bson:"trend_summary,omitempty"`
	DiscrepancyReport  string          `json:"discrepancy_report,omitempty" bson:"discrepancy_report,omitempty"`
	CompiledResult     *CompiledReport `json:"compiled_result,omitempty" bson:"compiled_result,omitempty"`
	Error              string          `json:"error,omitempty" bson:"error,omitempty"` // Set only when the article fetch fails
	Timestamp          time.Time       `json:"timestamp" bson:"timestamp"`
}

// Article represents the content fetched from a URL.
type Article struct {
	URL         string    `json:"url"`          // Source URL
	Text        string    `json:"text"`         // Extracted paragraph text, capped at 4000 chars
	Metadata    Metadata  `json:"metadata"`     // Title and meta description
	DateFetched time.Time `json:"date_fetched"` // When the article was fetched
}

// TrendResult is the outcome of a trend-search call. A failed call still
// yields a well-formed result with TrendScore zero.
type TrendResult struct {
	Success      bool          `json:"success"`
	TrendScore   int           `json:"trend_score"`   // min(results*10, 100)
	TrendSummary string        `json:"trend_summary"` // Human-readable summary or failure description
	Query        string        `json:"query,omitempty"`
	ResultsCount int           `json:"results_count"`
	RawResults   []TrendSource `json:"raw_results,omitempty"` // Top 5 results
	Answer       string        `json:"answer,omitempty"`
	Err          string        `json:"error,omitempty"` // Failure reason when Success is false
}

// TrendSource is a single search hit returned by the trend provider.
type TrendSource struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content,omitempty"`
}

package pipeline

import (
	"context"
	"time"

	"okrlens/internal/core"
)

// ArticleFetcher retrieves article text and metadata from a URL.
type ArticleFetcher interface {
	FetchArticle(url string) (core.Article, error)
}

// ArticleCache stores fetched articles so repeated evaluations of the same
// URL within the TTL skip the network.
type ArticleCache interface {
	GetCachedArticle(url string, maxAge time.Duration) (*core.Article, error)
	CacheArticle(article core.Article) error
}

// OKRParser extracts an objective and key results from article text.
type OKRParser interface {
	Parse(ctx context.Context, articleText string) core.OKR
}

// DuplicateChecker classifies content as first-seen or duplicate.
type DuplicateChecker interface {
	Check(ctx context.Context, title, metaDescription string) core.DuplicateStatus
}

// QualityScorer produces the verification status string.
type QualityScorer interface {
	Score(ctx context.Context, metadata *core.Metadata, duplicateStatus core.DuplicateStatus) string
}

// TrendAnalyzer cross-references an OKR against trend data.
type TrendAnalyzer interface {
	Analyze(ctx context.Context, okr *core.OKR, metadata *core.Metadata) (core.TrendResult, string)
}

// ResultCompiler produces the compiled report and persists the evaluation.
type ResultCompiler interface {
	Compile(ctx context.Context, record core.EvaluationRecord) core.EvaluationRecord
}

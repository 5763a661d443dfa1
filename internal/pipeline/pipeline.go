// Package pipeline sequences the five evaluation stages over a single
// evaluation record. Stages run strictly in order because each consumes
// fields the previous one produced; concurrency exists only across
// independent invocations.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"okrlens/internal/core"
	"okrlens/internal/logger"
)

// Orchestrator threads an EvaluationRecord through fetch, OKR extraction,
// duplicate detection, quality scoring, trend analysis, and report
// compilation. All collaborators are injected; the orchestrator owns no
// process-global state.
type Orchestrator struct {
	fetcher  ArticleFetcher
	cache    ArticleCache
	cacheTTL time.Duration
	parser   OKRParser
	dedupe   DuplicateChecker
	scorer   QualityScorer
	trends   TrendAnalyzer
	compiler ResultCompiler
}

// Options configures optional orchestrator behavior.
type Options struct {
	Cache    ArticleCache  // Optional article cache; nil disables caching
	CacheTTL time.Duration // Max age for cached articles, defaults to 24h
}

// NewOrchestrator wires the pipeline stages together.
func NewOrchestrator(
	fetcher ArticleFetcher,
	parser OKRParser,
	dedupe DuplicateChecker,
	scorer QualityScorer,
	trends TrendAnalyzer,
	compiler ResultCompiler,
	opts Options,
) *Orchestrator {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Orchestrator{
		fetcher:  fetcher,
		cache:    opts.Cache,
		cacheTTL: ttl,
		parser:   parser,
		dedupe:   dedupe,
		scorer:   scorer,
		trends:   trends,
		compiler: compiler,
	}
}

// Evaluate runs the full pipeline for one URL. Only a failed article fetch
// short-circuits: the returned record then carries Error and no downstream
// fields. Every other stage degrades internally, so Evaluate always returns
// a complete record.
func (o *Orchestrator) Evaluate(ctx context.Context, url string) core.EvaluationRecord {
	record := core.EvaluationRecord{
		EvaluationID: uuid.NewString(),
		InputURL:     url,
	}

	article, err := o.fetchArticle(url)
	if err != nil {
		logger.Error("article fetch failed, aborting evaluation", err,
			"evaluation_id", record.EvaluationID, "url", url)
		record.Error = "Failed to fetch the URL: " + err.Error()
		record.Timestamp = time.Now().UTC()
		return record
	}

	metadata := article.Metadata
	record.Metadata = &metadata

	parsed := o.parser.Parse(ctx, article.Text)
	record.ParsedOKR = &parsed

	record.DuplicateStatus = o.dedupe.Check(ctx, metadata.Title, metadata.MetaDescription)
	record.VerificationStatus = o.scorer.Score(ctx, record.Metadata, record.DuplicateStatus)

	trend, discrepancy := o.trends.Analyze(ctx, record.ParsedOKR, record.Metadata)
	record.TrendScore = trend.TrendScore
	record.TrendSummary = trend.TrendSummary
	record.DiscrepancyReport = discrepancy

	record = o.compiler.Compile(ctx, record)

	logger.Info("evaluation complete",
		"evaluation_id", record.EvaluationID,
		"url", url,
		"duplicate_status", string(record.DuplicateStatus),
		"trend_score", record.TrendScore,
	)
	return record
}

// fetchArticle consults the cache before fetching and caches fresh fetches.
// Cache failures are logged and ignored; the cache is an optimization, not a
// dependency.
func (o *Orchestrator) fetchArticle(url string) (core.Article, error) {
	if o.cache != nil {
		cached, err := o.cache.GetCachedArticle(url, o.cacheTTL)
		if err != nil {
			logger.Warn("article cache read failed", "url", url, "error", err.Error())
		} else if cached != nil {
			logger.Debug("article cache hit", "url", url)
			return *cached, nil
		}
	}

	article, err := o.fetcher.FetchArticle(url)
	if err != nil {
		return core.Article{}, err
	}

	if o.cache != nil {
		if err := o.cache.CacheArticle(article); err != nil {
			logger.Warn("article cache write failed", "url", url, "error", err.Error())
		}
	}
	return article, nil
}

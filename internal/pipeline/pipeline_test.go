package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"okrlens/internal/compile"
	"okrlens/internal/core"
	"okrlens/internal/dedupe"
	"okrlens/internal/fetch"
	"okrlens/internal/okr"
	"okrlens/internal/trends"
	"okrlens/internal/vectorindex"
	"okrlens/internal/verify"
)

// scriptedGenerator routes canned responses by prompt markers, one per stage.
type scriptedGenerator struct{}

func (scriptedGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	switch {
	case strings.Contains(prompt, "extracting Objectives and Key Results"):
		return "```json\n{\"objective\": \"Scale engineering teams sustainably\", \"key_results\": [\"Hire 5 engineers\", \"Cut onboarding to 2 weeks\"]}\n```", nil
	case strings.Contains(prompt, "content evaluation agent"):
		return "```json\n{\"relevance\": 35, \"credibility\": 20, \"completeness\": 15, \"verdict\": \"pass\"}\n```", nil
	case strings.Contains(prompt, "analyzes discrepancies"):
		return `{"discrepancy_found": false, "issues": [], "suggestions": []}`, nil
	case strings.Contains(prompt, "OKR evaluation assistant"):
		return `{
			"content_summary": "An article about scaling engineering teams.",
			"content_exists": true,
			"ai_scores": {"relevance": 35, "credibility": 20, "completeness": 15, "total": 70},
			"recommendations": ["a", "b", "c"],
			"detailed_feedback": "Well grounded content."
		}`, nil
	}
	return "", fmt.Errorf("unexpected prompt: %s", prompt[:40])
}

type hashEmbedder struct{}

func (hashEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float64, error) {
	vec := make([]float64, 8)
	vec[0] = 1
	for i, r := range text {
		vec[1+(i%7)] += float64(r) / 1000
	}
	return vec, nil
}

type memoryStore struct {
	records []core.EvaluationRecord
}

func (m *memoryStore) Insert(_ context.Context, record core.EvaluationRecord) error {
	m.records = append(m.records, record)
	return nil
}

type stubTrendChecker struct {
	result core.TrendResult
}

func (s stubTrendChecker) CheckTrends(_ context.Context, keywords []string) core.TrendResult {
	r := s.result
	r.Query = strings.Join(keywords, " ")
	return r
}

func articleServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head>
			<title>Scaling Teams</title>
			<meta name="description" content="A 45-character description about scaling.">
		</head><body><p>How we scaled our engineering teams.</p></body></html>`)
	}))
}

func newTestOrchestrator(t *testing.T, store compile.Store) (*Orchestrator, *vectorindex.Index, string) {
	t.Helper()
	server := articleServer(t)
	t.Cleanup(server.Close)

	gen := scriptedGenerator{}
	index, err := vectorindex.Open(t.TempDir(), hashEmbedder{})
	if err != nil {
		t.Fatalf("failed to open index: %v", err)
	}

	orch := NewOrchestrator(
		fetch.NewFetcher(0, 0),
		okr.NewParser(gen),
		dedupe.NewDetector(index),
		verify.NewScorer(gen),
		trends.NewAnalyzer(stubTrendChecker{result: core.TrendResult{
			Success: true, TrendScore: 40, TrendSummary: "Found 4 recent mentions.",
		}}, gen),
		compile.NewCompiler(gen, store),
		Options{},
	)

	return orch, index, server.URL
}

func TestEvaluateEndToEnd(t *testing.T) {
	store := &memoryStore{}
	orch, index, url := newTestOrchestrator(t, store)

	record := orch.Evaluate(context.Background(), url)

	if record.Error != "" {
		t.Fatalf("unexpected error: %s", record.Error)
	}
	if record.EvaluationID == "" {
		t.Error("expected an evaluation id")
	}
	if record.ParsedOKR == nil || record.ParsedOKR.Objective == "" {
		t.Fatal("expected non-empty objective")
	}
	if len(record.ParsedOKR.KeyResults) < 1 {
		t.Fatal("expected at least one key result")
	}
	if record.DuplicateStatus != core.DuplicatePass {
		t.Fatalf("first submission should pass, got %q", record.DuplicateStatus)
	}
	if record.Scores.Relevance != 35 || record.Scores.Credibility != 20 || record.Scores.Completeness != 15 {
		t.Errorf("unexpected scores %+v", record.Scores)
	}
	if record.TrendScore < 0 || record.TrendScore > 100 {
		t.Errorf("trend score out of range: %d", record.TrendScore)
	}
	if record.CompiledResult == nil {
		t.Fatal("expected compiled result")
	}
	if record.CompiledResult.AIScores.Total != 70 {
		t.Errorf("expected total 70, got %d", record.CompiledResult.AIScores.Total)
	}
	if !record.CompiledResult.ContentExists {
		t.Error("expected content_exists true for a 41-character description")
	}
	if len(store.records) != 1 {
		t.Errorf("expected one persisted evaluation, got %d", len(store.records))
	}

	// The evaluated article is now indexed.
	if index.Count() != 2 {
		t.Errorf("expected placeholder plus one document, got %d", index.Count())
	}

	// Resubmission of the identical title is a duplicate and skips scoring.
	second := orch.Evaluate(context.Background(), url)
	if second.DuplicateStatus != core.DuplicateFail {
		t.Fatalf("expected duplicate fail on resubmission, got %q", second.DuplicateStatus)
	}
	if second.VerificationStatus != core.VerificationSkipped {
		t.Errorf("expected skipped verification for duplicate, got %q", second.VerificationStatus)
	}
	if index.Count() != 2 {
		t.Errorf("duplicate must not grow the index, got %d", index.Count())
	}
}

type failingFetcher struct{}

func (failingFetcher) FetchArticle(url string) (core.Article, error) {
	return core.Article{}, errors.New("timeout")
}

func TestEvaluateFetchFailureShortCircuits(t *testing.T) {
	gen := scriptedGenerator{}
	index, err := vectorindex.Open(t.TempDir(), hashEmbedder{})
	if err != nil {
		t.Fatalf("failed to open index: %v", err)
	}
	store := &memoryStore{}

	orch := NewOrchestrator(
		failingFetcher{},
		okr.NewParser(gen),
		dedupe.NewDetector(index),
		verify.NewScorer(gen),
		trends.NewAnalyzer(stubTrendChecker{}, gen),
		compile.NewCompiler(gen, store),
		Options{},
	)

	record := orch.Evaluate(context.Background(), "https://unreachable.example.com")

	if record.Error == "" {
		t.Fatal("expected error on fetch failure")
	}
	if record.DuplicateStatus != "" || record.VerificationStatus != "" ||
		record.TrendScore != 0 || record.CompiledResult != nil {
		t.Errorf("downstream fields must stay unset on fetch failure: %+v", record)
	}
	if len(store.records) != 0 {
		t.Errorf("nothing should be persisted on fetch failure, got %d", len(store.records))
	}
	if index.Count() != 1 {
		t.Errorf("index must not grow on fetch failure, got %d", index.Count())
	}
}

type countingFetcher struct {
	article core.Article
	calls   int
}

func (c *countingFetcher) FetchArticle(url string) (core.Article, error) {
	c.calls++
	return c.article, nil
}

type memoryCache struct {
	articles map[string]core.Article
}

func (m *memoryCache) GetCachedArticle(url string, _ time.Duration) (*core.Article, error) {
	if a, ok := m.articles[url]; ok {
		return &a, nil
	}
	return nil, nil
}

func (m *memoryCache) CacheArticle(article core.Article) error {
	if m.articles == nil {
		m.articles = map[string]core.Article{}
	}
	m.articles[article.URL] = article
	return nil
}

func TestEvaluateUsesArticleCache(t *testing.T) {
	gen := scriptedGenerator{}
	index, err := vectorindex.Open(t.TempDir(), hashEmbedder{})
	if err != nil {
		t.Fatalf("failed to open index: %v", err)
	}

	fetcher := &countingFetcher{article: core.Article{
		URL:  "https://example.com/a",
		Text: "body",
		Metadata: core.Metadata{
			Title:           "Cached Title",
			MetaDescription: "A sufficiently long description for caching.",
		},
		DateFetched: time.Now().UTC(),
	}}

	orch := NewOrchestrator(
		fetcher,
		okr.NewParser(gen),
		dedupe.NewDetector(index),
		verify.NewScorer(gen),
		trends.NewAnalyzer(stubTrendChecker{}, gen),
		compile.NewCompiler(gen, &memoryStore{}),
		Options{Cache: &memoryCache{}, CacheTTL: time.Hour},
	)

	ctx := context.Background()
	orch.Evaluate(ctx, "https://example.com/a")
	orch.Evaluate(ctx, "https://example.com/a")

	if fetcher.calls != 1 {
		t.Errorf("expected one network fetch with warm cache, got %d", fetcher.calls)
	}
}

package handlers

import (
	"context"
	"fmt"
	"net/http"

	"okrlens/internal/compile"
	"okrlens/internal/config"
	"okrlens/internal/core"
	"okrlens/internal/dedupe"
	"okrlens/internal/fetch"
	"okrlens/internal/llm"
	"okrlens/internal/logger"
	"okrlens/internal/okr"
	"okrlens/internal/persistence"
	"okrlens/internal/pipeline"
	"okrlens/internal/store"
	"okrlens/internal/trends"
	"okrlens/internal/vectorindex"
	"okrlens/internal/verify"
)

// discardStore drops evaluations instead of persisting them. Used when no
// durable store is reachable so one-off evaluations still work.
type discardStore struct{}

func (discardStore) Insert(context.Context, core.EvaluationRecord) error { return nil }

// buildPipeline assembles the full evaluation pipeline from configuration.
// The returned cleanup function releases the article cache and, when
// connected, the durable store.
func buildPipeline(ctx context.Context, cfg *config.Config, requireStore bool) (*pipeline.Orchestrator, persistence.EvaluationStore, func(), error) {
	llmClient, err := llm.NewClient(ctx, cfg.Gemini.APIKey, llm.Options{
		Model:          cfg.Gemini.Model,
		EmbeddingModel: cfg.Gemini.EmbeddingModel,
		Temperature:    cfg.Gemini.Temperature,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	index, err := vectorindex.Open(cfg.Index.Directory, llmClient)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open similarity index: %w", err)
	}

	tavily := trends.NewTavilyClient(cfg.Tavily.APIKey,
		trends.WithMaxResults(cfg.Tavily.MaxResults),
		trends.WithHTTPClient(&http.Client{Timeout: cfg.Tavily.Timeout}),
	)

	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var evalStore persistence.EvaluationStore
	var reportStore compile.Store
	mongoStore, err := persistence.NewMongoStore(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
	if err != nil {
		if requireStore {
			return nil, nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		logger.Warn("durable store unavailable, evaluation will not be persisted", "error", err.Error())
		reportStore = discardStore{}
	} else {
		evalStore = mongoStore
		reportStore = mongoStore
		cleanups = append(cleanups, func() {
			if err := mongoStore.Close(context.Background()); err != nil {
				logger.Error("Failed to close durable store", err)
			}
		})
	}

	var opts pipeline.Options
	articleCache, err := store.NewStore(cfg.Cache.Directory)
	if err != nil {
		logger.Warn("article cache unavailable, fetching without cache", "error", err.Error())
	} else {
		opts.Cache = articleCache
		opts.CacheTTL = cfg.Cache.ArticleTTL
		cleanups = append(cleanups, func() {
			if err := articleCache.Close(); err != nil {
				logger.Error("Failed to close article cache", err)
			}
		})
	}

	orchestrator := pipeline.NewOrchestrator(
		fetch.NewFetcher(cfg.Fetch.Timeout, cfg.Fetch.MaxChars),
		okr.NewParser(llmClient),
		dedupe.NewDetector(index),
		verify.NewScorer(llmClient),
		trends.NewAnalyzer(tavily, llmClient),
		compile.NewCompiler(llmClient, reportStore),
		opts,
	)

	return orchestrator, evalStore, cleanup, nil
}

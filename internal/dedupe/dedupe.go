// Package dedupe decides whether incoming content is a near-duplicate of
// previously ingested content. Semantic similarity only selects the candidate
// pool; exact lowercase title equality is the sole duplicate criterion.
package dedupe

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"okrlens/internal/core"
	"okrlens/internal/logger"
	"okrlens/internal/vectorindex"
)

// candidateWindow is how many nearest neighbours are compared against the
// incoming title.
const candidateWindow = 10

// SimilarityIndex is the slice of the embedding index the detector needs.
type SimilarityIndex interface {
	Search(ctx context.Context, queryText string, k int) ([]vectorindex.Match, error)
	Insert(ctx context.Context, doc vectorindex.Document) error
	Persist() error
}

// Detector classifies (title, description) pairs as pass (first seen) or
// fail (duplicate). The check-then-insert sequence runs under a single
// writer lock so two racing near-duplicates cannot both be admitted.
type Detector struct {
	mu    sync.Mutex
	index SimilarityIndex
}

// NewDetector creates a Detector over the given index.
func NewDetector(index SimilarityIndex) *Detector {
	return &Detector{index: index}
}

// Check returns DuplicateFail when a previously ingested document has the
// same lowercase title as the incoming pair, and DuplicatePass otherwise.
//
// The detector is fail-open: any error while searching, embedding, or
// inserting yields DuplicatePass, so an index failure never blocks new
// content from downstream evaluation.
func (d *Detector) Check(ctx context.Context, title, metaDescription string) core.DuplicateStatus {
	d.mu.Lock()
	defer d.mu.Unlock()

	originalTitle := strings.TrimSpace(title)
	normTitle := strings.ToLower(originalTitle)
	normDescription := strings.ToLower(strings.TrimSpace(metaDescription))
	query := fmt.Sprintf("%s - %s", normTitle, normDescription)

	matches, err := d.index.Search(ctx, query, candidateWindow)
	if err != nil {
		logger.Warn("duplicate check search failed, passing content through", "title", normTitle, "error", err.Error())
		return core.DuplicatePass
	}

	for _, match := range matches {
		stored := strings.ToLower(strings.TrimSpace(match.Document.Title))
		if stored == normTitle {
			logger.Info("duplicate detected", "title", normTitle, "similarity", match.Similarity)
			return core.DuplicateFail
		}
	}

	doc := vectorindex.Document{
		Key:           query,
		Title:         normTitle,
		OriginalTitle: originalTitle,
	}
	if err := d.index.Insert(ctx, doc); err != nil {
		logger.Warn("failed to index new content, passing through", "title", normTitle, "error", err.Error())
		return core.DuplicatePass
	}
	if err := d.index.Persist(); err != nil {
		logger.Warn("failed to persist index after insert", "title", normTitle, "error", err.Error())
	}

	logger.Debug("new content indexed", "title", normTitle)
	return core.DuplicatePass
}

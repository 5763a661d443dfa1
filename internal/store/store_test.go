package store

import (
	"testing"
	"time"

	"okrlens/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleArticle() core.Article {
	return core.Article{
		URL:  "https://example.com/post",
		Text: "article body",
		Metadata: core.Metadata{
			Title:           "Scaling Teams",
			MetaDescription: "A description.",
		},
		DateFetched: time.Now().UTC(),
	}
}

func TestCacheAndRetrieveArticle(t *testing.T) {
	s := newTestStore(t)

	if err := s.CacheArticle(sampleArticle()); err != nil {
		t.Fatalf("CacheArticle failed: %v", err)
	}

	got, err := s.GetCachedArticle("https://example.com/post", time.Hour)
	if err != nil {
		t.Fatalf("GetCachedArticle failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected cache hit")
	}
	if got.Metadata.Title != "Scaling Teams" || got.Text != "article body" {
		t.Errorf("unexpected cached article %+v", got)
	}
}

func TestCacheMissForUnknownURL(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetCachedArticle("https://example.com/other", time.Hour)
	if err != nil {
		t.Fatalf("GetCachedArticle failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected cache miss, got %+v", got)
	}
}

func TestCacheMissWhenExpired(t *testing.T) {
	s := newTestStore(t)

	article := sampleArticle()
	article.DateFetched = time.Now().UTC().Add(-2 * time.Hour)
	if err := s.CacheArticle(article); err != nil {
		t.Fatalf("CacheArticle failed: %v", err)
	}

	got, err := s.GetCachedArticle(article.URL, time.Hour)
	if err != nil {
		t.Fatalf("GetCachedArticle failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected expired entry to miss, got %+v", got)
	}
}

func TestCacheReplaceAndClear(t *testing.T) {
	s := newTestStore(t)

	article := sampleArticle()
	if err := s.CacheArticle(article); err != nil {
		t.Fatalf("CacheArticle failed: %v", err)
	}
	article.Text = "updated body"
	if err := s.CacheArticle(article); err != nil {
		t.Fatalf("CacheArticle replace failed: %v", err)
	}

	count, _, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected single entry after replace, got %d", count)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	count, _, err = s.Stats()
	if err != nil {
		t.Fatalf("Stats after clear failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected empty cache after clear, got %d", count)
	}
}

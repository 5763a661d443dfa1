// Package store caches fetched articles in SQLite so repeated evaluations of
// the same URL within the TTL skip the network fetch.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"okrlens/internal/core"
)

// Store is the SQLite-backed article cache.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the cache database under dataDir.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "okrlens.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

func (s *Store) initialize() error {
	table := `
	CREATE TABLE IF NOT EXISTS articles (
		url TEXT PRIMARY KEY,
		title TEXT,
		meta_description TEXT,
		text TEXT,
		date_fetched DATETIME
	);`

	if _, err := s.db.Exec(table); err != nil {
		return fmt.Errorf("failed to create articles table: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CacheArticle stores a fetched article, replacing any previous entry for
// the same URL.
func (s *Store) CacheArticle(article core.Article) error {
	query := `
	INSERT OR REPLACE INTO articles (url, title, meta_description, text, date_fetched)
	VALUES (?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query,
		article.URL,
		article.Metadata.Title,
		article.Metadata.MetaDescription,
		article.Text,
		article.DateFetched,
	)
	return err
}

// GetCachedArticle returns the cached article for url if it was fetched
// within maxAge, or nil on a cache miss.
func (s *Store) GetCachedArticle(url string, maxAge time.Duration) (*core.Article, error) {
	query := `
	SELECT url, title, meta_description, text, date_fetched
	FROM articles
	WHERE url = ? AND date_fetched > ?`

	cutoff := time.Now().UTC().Add(-maxAge)
	row := s.db.QueryRow(query, url, cutoff)

	var article core.Article
	err := row.Scan(
		&article.URL,
		&article.Metadata.Title,
		&article.Metadata.MetaDescription,
		&article.Text,
		&article.DateFetched,
	)
	if err == sql.ErrNoRows {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan article: %w", err)
	}

	return &article, nil
}

// Stats reports the number of cached articles and the database file size.
func (s *Store) Stats() (count int, size int64, err error) {
	if err = s.db.QueryRow("SELECT COUNT(*) FROM articles").Scan(&count); err != nil {
		return 0, 0, fmt.Errorf("failed to count articles: %w", err)
	}
	if info, statErr := os.Stat(s.path); statErr == nil {
		size = info.Size()
	}
	return count, size, nil
}

// Clear removes all cached articles.
func (s *Store) Clear() error {
	if _, err := s.db.Exec("DELETE FROM articles"); err != nil {
		return fmt.Errorf("failed to clear articles: %w", err)
	}
	if _, err := s.db.Exec("VACUUM"); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	return nil
}

package fetch

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"okrlens/internal/core"
)

const (
	// DefaultMaxChars caps the extracted article text passed to the LLM.
	DefaultMaxChars = 4000
	// DefaultTimeout bounds the article fetch so the pipeline fails fast
	// on unreachable hosts instead of hanging.
	DefaultTimeout = 10 * time.Second

	// Sentinel metadata values when the page carries no usable tags.
	unknownTitle  = "Unknown"
	noDescription = "None"
)

// Fetcher retrieves articles over HTTP and extracts plain text plus the two
// metadata fields the pipeline evaluates.
type Fetcher struct {
	client   *http.Client
	maxChars int
}

// NewFetcher creates a Fetcher with the given timeout and text cap. Zero
// values select the package defaults.
func NewFetcher(timeout time.Duration, maxChars int) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		maxChars: maxChars,
	}
}

// FetchArticle fetches the content from a URL and returns an Article with
// paragraph text and metadata. This is the only pipeline step whose failure
// aborts an evaluation: with no content there is nothing to evaluate.
func (f *Fetcher) FetchArticle(rawURL string) (core.Article, error) {
	parsed, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return core.Article{}, fmt.Errorf("invalid URL %s: %w", rawURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return core.Article{}, fmt.Errorf("unsupported URL scheme %q", parsed.Scheme)
	}

	resp, err := f.client.Get(rawURL)
	if err != nil {
		return core.Article{}, fmt.Errorf("failed to fetch URL %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return core.Article{}, fmt.Errorf("failed to fetch URL %s: status code %d", rawURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return core.Article{}, fmt.Errorf("failed to parse HTML from %s: %w", rawURL, err)
	}

	return core.Article{
		URL:         rawURL,
		Text:        f.extractText(doc),
		Metadata:    extractMetadata(doc),
		DateFetched: time.Now().UTC(),
	}, nil
}

// extractText joins all paragraph text with single spaces and truncates to
// the configured cap.
func (f *Fetcher) extractText(doc *goquery.Document) string {
	var parts []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		parts = append(parts, s.Text())
	})

	text := strings.Join(parts, " ")
	if len(text) > f.maxChars {
		text = text[:f.maxChars]
	}
	return text
}

// extractMetadata pulls the page title and description meta tag, substituting
// sentinel values when either is missing.
func extractMetadata(doc *goquery.Document) core.Metadata {
	title := strings.TrimSpace(doc.Find("head title").First().Text())
	if title == "" {
		title = unknownTitle
	}

	description := noDescription
	if content, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		description = content
	}

	return core.Metadata{
		Title:           title,
		MetaDescription: description,
	}
}

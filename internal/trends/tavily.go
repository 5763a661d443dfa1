package trends

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"okrlens/internal/core"
	"okrlens/internal/logger"
)

const (
	tavilyAPIURL = "https://api.tavily.com/search"

	// DefaultTimeout bounds the trend-search call; on expiry the analyzer
	// returns a structured failure rather than hanging the pipeline.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxResults is how many results Tavily is asked for.
	DefaultMaxResults = 10

	// rawResultsKept is how many raw results are carried into the trend result.
	rawResultsKept = 5
	// answerSynopsisLimit truncates the answer appended to the summary.
	answerSynopsisLimit = 200
)

// TavilyClient calls the Tavily search API for trend analysis.
type TavilyClient struct {
	apiKey     string
	apiURL     string
	client     *http.Client
	maxResults int
}

// TavilyOption customizes a TavilyClient.
type TavilyOption func(*TavilyClient)

// WithHTTPClient overrides the default HTTP client, useful for custom
// timeouts and for tests.
func WithHTTPClient(client *http.Client) TavilyOption {
	return func(t *TavilyClient) { t.client = client }
}

// WithAPIURL overrides the API endpoint, used by tests.
func WithAPIURL(url string) TavilyOption {
	return func(t *TavilyClient) { t.apiURL = url }
}

// WithMaxResults sets how many results to request.
func WithMaxResults(n int) TavilyOption {
	return func(t *TavilyClient) {
		if n > 0 {
			t.maxResults = n
		}
	}
}

// NewTavilyClient constructs a Tavily trend-search client.
func NewTavilyClient(apiKey string, opts ...TavilyOption) *TavilyClient {
	t := &TavilyClient{
		apiKey:     apiKey,
		apiURL:     tavilyAPIURL,
		client:     &http.Client{Timeout: DefaultTimeout},
		maxResults: DefaultMaxResults,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type tavilyRequest struct {
	Query             string `json:"query"`
	SearchDepth       string `json:"search_depth"`
	Topic             string `json:"topic"`
	MaxResults        int    `json:"max_results"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeRawContent bool   `json:"include_raw_content"`
}

type tavilyResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// CheckTrends searches for the given keywords and derives a trend score and
// summary. It always returns a well-formed result: a missing API key, empty
// keyword list, non-2xx status, or timeout produces a failure variant with
// TrendScore zero, never an error for the caller to handle.
func (t *TavilyClient) CheckTrends(ctx context.Context, keywords []string) core.TrendResult {
	if strings.TrimSpace(t.apiKey) == "" {
		logger.Error("tavily API key not configured", nil)
		return failureResult("API key not configured", "API key not available")
	}
	if len(keywords) == 0 {
		return failureResult("No keywords provided", "No keywords to analyze")
	}

	query := strings.Join(keywords, " ")
	logger.Info("analyzing trends", "query", query)

	payload, err := json.Marshal(tavilyRequest{
		Query:             query,
		SearchDepth:       "advanced",
		Topic:             "news",
		MaxResults:        t.maxResults,
		IncludeAnswer:     true,
		IncludeRawContent: false,
	})
	if err != nil {
		return failureResult(fmt.Sprintf("Unexpected error: %v", err), "Error fetching trend data due to unexpected error")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.apiURL, bytes.NewReader(payload))
	if err != nil {
		return failureResult(fmt.Sprintf("Unexpected error: %v", err), "Error fetching trend data due to unexpected error")
	}
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			logger.Error("timeout calling tavily API", err)
			return failureResult("Request timeout", "Error fetching trend data due to timeout")
		}
		logger.Error("tavily request failed", err)
		return failureResult(fmt.Sprintf("Unexpected error: %v", err), "Error fetching trend data due to unexpected error")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errMsg := fmt.Sprintf("HTTP error from Tavily API: %d", resp.StatusCode)
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			errMsg += " - Invalid API key"
		case http.StatusTooManyRequests:
			errMsg += " - Rate limit exceeded"
		}
		logger.Error(errMsg, nil)
		return failureResult(errMsg, "Error fetching trend data due to API error")
	}

	var data tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		logger.Error("failed to decode tavily response", err)
		return failureResult(fmt.Sprintf("Unexpected error: %v", err), "Error fetching trend data due to unexpected error")
	}

	result := core.TrendResult{
		Success:      true,
		TrendScore:   trendScore(len(data.Results)),
		Query:        query,
		ResultsCount: len(data.Results),
		Answer:       data.Answer,
	}

	for i, r := range data.Results {
		if i >= rawResultsKept {
			break
		}
		result.RawResults = append(result.RawResults, core.TrendSource{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
		})
	}

	result.TrendSummary = buildSummary(data, len(data.Results))

	logger.Info("trend analysis complete", "score", result.TrendScore, "results", result.ResultsCount)
	return result
}

// trendScore maps a result count to [0,100]: ten points per result, capped.
func trendScore(resultCount int) int {
	score := resultCount * 10
	if score > 100 {
		score = 100
	}
	return score
}

func buildSummary(data tavilyResponse, count int) string {
	if count == 0 {
		return "No recent trend data found for these keywords"
	}

	titles := make([]string, 0, 2)
	for _, r := range data.Results {
		titles = append(titles, r.Title)
		if len(titles) == 2 {
			break
		}
	}

	summary := fmt.Sprintf("Found %d recent mentions. Recent topics: %s", count, strings.Join(titles, ", "))
	if data.Answer != "" {
		synopsis := data.Answer
		if len(synopsis) > answerSynopsisLimit {
			synopsis = synopsis[:answerSynopsisLimit]
		}
		summary += fmt.Sprintf("\n\nSummary: %s...", synopsis)
	}
	return summary
}

func failureResult(reason, summary string) core.TrendResult {
	return core.TrendResult{
		Success:      false,
		TrendScore:   0,
		TrendSummary: summary,
		Err:          reason,
	}
}

func isTimeout(err error) bool {
	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) {
		return timeoutErr.Timeout()
	}
	return false
}

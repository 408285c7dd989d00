package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/alexandercyber0x0/Idea-Hub-1/internal/config"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// SearchResult is one web search hit.
type SearchResult struct {
	Name    string
	URL     string
	Snippet string
}

// TavilyClient performs web searches through the Tavily API.
type TavilyClient struct {
	apiKey  string
	baseURL string
	http    *retryablehttp.Client
}

// NewTavilyClient creates a client from configuration.
func NewTavilyClient(cfg config.Tavily, log *zap.Logger) *TavilyClient {
	return &TavilyClient{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    newHTTPClient(log),
	}
}

// Configured reports whether an API key is set.
func (c *TavilyClient) Configured() bool {
	return c != nil && c.apiKey != ""
}

type searchRequest struct {
	Query             string `json:"query"`
	MaxResults        int    `json:"max_results"`
	SearchDepth       string `json:"search_depth"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeRawContent bool   `json:"include_raw_content"`
}

type searchResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// Search runs a basic-depth search and returns at most maxResults hits.
func (c *TavilyClient) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(searchRequest{
		Query:       query,
		MaxResults:  maxResults,
		SearchDepth: "basic",
	})
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", body)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily search: %w", err)
	}
	if err := checkResponse("tavily search", resp); err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	results := make([]SearchResult, 0, len(out.Results))
	for _, r := range out.Results {
		results = append(results, SearchResult{Name: r.Title, URL: r.URL, Snippet: r.Content})
	}
	return results, nil
}

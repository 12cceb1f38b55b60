package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultSearchEndpoint is the Tavily search API URL.
const DefaultSearchEndpoint = "https://api.tavily.com/search"

// DefaultMaxResults bounds results per query when the caller does not ask
// for a count.
const DefaultMaxResults = 5

// WebSearchOptions configures a WebSearch tool.
type WebSearchOptions struct {
	// Endpoint overrides the Tavily API URL (tests, proxies).
	Endpoint string
	// HTTPClient performs the requests. Defaults to a client with a 30s timeout.
	HTTPClient *http.Client
	// MaxResults is the default result count per query.
	MaxResults int
}

// WebSearch queries the Tavily search API and renders the hits as plain text
// observations: an AI generated summary when available, then title, URL and
// snippet per result.
type WebSearch struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	maxResults int
}

// TavilyRequest is the request body for the Tavily search API.
type TavilyRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	SearchDepth   string `json:"search_depth,omitempty"`
	IncludeAnswer bool   `json:"include_answer,omitempty"`
	MaxResults    int    `json:"max_results,omitempty"`
}

// TavilyResponse is the response body from the Tavily search API.
type TavilyResponse struct {
	Query   string         `json:"query"`
	Answer  string         `json:"answer,omitempty"`
	Results []TavilyResult `json:"results"`
}

// TavilyResult is a single search hit.
type TavilyResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// NewWebSearch creates the builtin web search tool. The apiKey is a Tavily
// API key; see https://tavily.com/.
func NewWebSearch(apiKey string, optFns ...func(o *WebSearchOptions)) *WebSearch {
	opts := WebSearchOptions{
		Endpoint:   DefaultSearchEndpoint,
		MaxResults: DefaultMaxResults,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &WebSearch{
		apiKey:     apiKey,
		endpoint:   opts.Endpoint,
		httpClient: opts.HTTPClient,
		maxResults: opts.MaxResults,
	}
}

// Name returns "web_search".
func (t *WebSearch) Name() string { return "web_search" }

// Description returns the catalog description shown to models.
func (t *WebSearch) Description() string {
	return "Search the web for current events, facts, or information outside your knowledge. " +
		"Returns a short summary plus the top results with URLs."
}

// Parameters returns the argument schema: a required query plus an optional
// result count.
func (t *WebSearch) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The search query. Be specific.",
			},
			"max_results": map[string]any{
				"type":        "integer",
				"description": "How many results to return (1-10).",
			},
		},
		"required": []string{"query"},
	}
}

// Call runs one search and formats the hits for the model.
func (t *WebSearch) Call(ctx context.Context, args map[string]any) (string, error) {
	query, _ := args["query"].(string)
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("query must not be empty")
	}

	maxResults := t.maxResults
	switch v := args["max_results"].(type) {
	case float64:
		maxResults = int(v)
	case int:
		maxResults = v
	}
	if maxResults < 1 {
		maxResults = 1
	}
	if maxResults > 10 {
		maxResults = 10
	}

	resp, err := t.search(ctx, query, maxResults)
	if err != nil {
		return "", err
	}

	return formatSearchResults(resp), nil
}

func (t *WebSearch) search(ctx context.Context, query string, maxResults int) (*TavilyResponse, error) {
	body, err := json.Marshal(TavilyRequest{
		APIKey:        t.apiKey,
		Query:         query,
		SearchDepth:   "basic",
		IncludeAnswer: true,
		MaxResults:    maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out TavilyResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &out, nil
}

func formatSearchResults(resp *TavilyResponse) string {
	var sb strings.Builder

	if resp.Answer != "" {
		fmt.Fprintf(&sb, "Summary: %s\n\n", resp.Answer)
	}

	if len(resp.Results) == 0 {
		sb.WriteString("No results found.")
		return sb.String()
	}

	sb.WriteString("Results:")
	for i, r := range resp.Results {
		content := r.Content
		if len(content) > 400 {
			content = content[:400] + "..."
		}
		fmt.Fprintf(&sb, "\n%d. %s\n   %s\n   %s", i+1, r.Title, r.URL, content)
	}

	return sb.String()
}

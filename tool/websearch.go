package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// duckDuckGoEndpoint is the Instant Answer API; no key required.
const duckDuckGoEndpoint = "https://api.duckduckgo.com/"

// WebSearchTool answers search queries through the DuckDuckGo Instant Answer
// API. Options:
//
//	max_results (number) - cap on related topics returned (default 5)
//	region      (string) - region code forwarded as the kl parameter
type WebSearchTool struct {
	client     *http.Client
	endpoint   string
	maxResults int
	region     string
}

// NewWebSearchTool builds a web search tool from configuration options.
func NewWebSearchTool(options map[string]any, client *http.Client) (*WebSearchTool, error) {
	if client == nil {
		client = http.DefaultClient
	}
	t := &WebSearchTool{client: client, endpoint: duckDuckGoEndpoint, maxResults: 5}
	if v, ok := options["max_results"]; ok {
		n, ok := v.(float64)
		if !ok || n < 1 {
			return nil, fmt.Errorf("max_results must be a positive number")
		}
		t.maxResults = int(n)
	}
	if v, ok := options["region"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("region must be a string")
		}
		t.region = s
	}
	return t, nil
}

// SetEndpoint overrides the API endpoint. Intended for tests.
func (t *WebSearchTool) SetEndpoint(endpoint string) { t.endpoint = endpoint }

// Name implements Tool.
func (t *WebSearchTool) Name() string { return "web_search" }

// Description implements Tool.
func (t *WebSearchTool) Description() string {
	return "Search the web for current information on a topic. Returns a short answer and related results."
}

// Parameters implements Tool.
func (t *WebSearchTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string", "description": "Search query"},
		},
		"required": []string{"query"},
	}
}

// instantAnswer is the subset of the DuckDuckGo response we surface.
type instantAnswer struct {
	AbstractText  string `json:"AbstractText"`
	AbstractURL   string `json:"AbstractURL"`
	Answer        string `json:"Answer"`
	RelatedTopics []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

// Call implements Tool.
func (t *WebSearchTool) Call(ctx context.Context, args map[string]any) (any, error) {
	if err := validateArgs(t.Name(), args, t.Parameters()); err != nil {
		return nil, err
	}
	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, NewToolError(t.Name(), "query must be a non-empty string", "VALIDATION_ERROR")
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_html", "1")
	if t.region != "" {
		params.Set("kl", t.region)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, NewToolError(t.Name(), err.Error(), "EXECUTION_ERROR")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, NewToolError(t.Name(), err.Error(), "EXECUTION_ERROR")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, NewToolError(t.Name(), fmt.Sprintf("unexpected status %d", resp.StatusCode), "EXECUTION_ERROR")
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, NewToolError(t.Name(), err.Error(), "EXECUTION_ERROR")
	}

	var answer instantAnswer
	if err := json.Unmarshal(body, &answer); err != nil {
		return nil, NewToolError(t.Name(), fmt.Sprintf("decode response: %v", err), "EXECUTION_ERROR")
	}

	results := make([]map[string]string, 0, t.maxResults)
	for _, topic := range answer.RelatedTopics {
		if topic.Text == "" {
			continue
		}
		results = append(results, map[string]string{"text": topic.Text, "url": topic.FirstURL})
		if len(results) >= t.maxResults {
			break
		}
	}

	summary := answer.AbstractText
	if summary == "" {
		summary = answer.Answer
	}

	return map[string]any{
		"query":   query,
		"summary": summary,
		"source":  answer.AbstractURL,
		"results": results,
	}, nil
}

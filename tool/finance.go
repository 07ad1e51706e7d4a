package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// yahooQuoteEndpoint serves lightweight quote snapshots.
const yahooQuoteEndpoint = "https://query1.finance.yahoo.com/v7/finance/quote"

// FinanceTool answers market data questions against the Yahoo Finance quote
// API. The option set mirrors the capabilities a specialist can be granted;
// everything is on unless the configuration switches it off:
//
//	stock_price             (bool) - current price and day range
//	analyst_recommendations (bool) - mean analyst rating
//	company_info            (bool) - name, exchange, market cap
//	company_news            (bool) - headline fields when present
type FinanceTool struct {
	client   *http.Client
	endpoint string

	stockPrice      bool
	recommendations bool
	companyInfo     bool
	companyNews     bool
}

// NewFinanceTool builds a finance tool from configuration options.
func NewFinanceTool(options map[string]any, client *http.Client) (*FinanceTool, error) {
	if client == nil {
		client = http.DefaultClient
	}
	t := &FinanceTool{
		client:          client,
		endpoint:        yahooQuoteEndpoint,
		stockPrice:      true,
		recommendations: true,
		companyInfo:     true,
		companyNews:     true,
	}

	for key, target := range map[string]*bool{
		"stock_price":             &t.stockPrice,
		"analyst_recommendations": &t.recommendations,
		"company_info":            &t.companyInfo,
		"company_news":            &t.companyNews,
	} {
		v, ok := options[key]
		if !ok {
			continue
		}
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("%s must be a boolean", key)
		}
		*target = b
	}

	return t, nil
}

// SetEndpoint overrides the API endpoint. Intended for tests.
func (t *FinanceTool) SetEndpoint(endpoint string) { t.endpoint = endpoint }

// Name implements Tool.
func (t *FinanceTool) Name() string { return "finance" }

// Description implements Tool.
func (t *FinanceTool) Description() string {
	return "Look up market data for a stock ticker symbol: price, analyst recommendations and company details."
}

// Parameters implements Tool.
func (t *FinanceTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"symbol": map[string]any{"type": "string", "description": "Ticker symbol, e.g. AAPL"},
		},
		"required": []string{"symbol"},
	}
}

// quoteResponse is the subset of the Yahoo quote payload we surface.
type quoteResponse struct {
	QuoteResponse struct {
		Result []map[string]any `json:"result"`
	} `json:"quoteResponse"`
}

// Call implements Tool.
func (t *FinanceTool) Call(ctx context.Context, args map[string]any) (any, error) {
	if err := validateArgs(t.Name(), args, t.Parameters()); err != nil {
		return nil, err
	}
	symbol, ok := args["symbol"].(string)
	if !ok || symbol == "" {
		return nil, NewToolError(t.Name(), "symbol must be a non-empty string", "VALIDATION_ERROR")
	}

	params := url.Values{}
	params.Set("symbols", symbol)

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

	var quote quoteResponse
	if err := json.Unmarshal(body, &quote); err != nil {
		return nil, NewToolError(t.Name(), fmt.Sprintf("decode response: %v", err), "EXECUTION_ERROR")
	}
	if len(quote.QuoteResponse.Result) == 0 {
		return nil, NewToolError(t.Name(), fmt.Sprintf("no data for symbol %q", symbol), "NOT_FOUND")
	}

	raw := quote.QuoteResponse.Result[0]
	out := map[string]any{"symbol": symbol}

	pick := func(enabled bool, keys ...string) {
		if !enabled {
			return
		}
		for _, k := range keys {
			if v, ok := raw[k]; ok {
				out[k] = v
			}
		}
	}
	pick(t.stockPrice, "regularMarketPrice", "regularMarketDayHigh", "regularMarketDayLow", "currency")
	pick(t.recommendations, "averageAnalystRating")
	pick(t.companyInfo, "longName", "fullExchangeName", "marketCap")
	pick(t.companyNews, "headline", "headlineURL")

	return out, nil
}

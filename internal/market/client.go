package market

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// Quote is the latest price for a ticker symbol. Available is false when the
// provider could not supply a price; callers render an "unavailable" marker
// instead of a number.
type Quote struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
	Available bool    `json:"available"`
}

// Client looks prices up against a market-data provider. It is entirely
// decoupled from the news pipeline.
type Client struct {
	client  *resty.Client
	baseURL string
}

const defaultBaseURL = "https://query1.finance.yahoo.com/v7/finance/quote"

type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol             string  `json:"symbol"`
			RegularMarketPrice float64 `json:"regularMarketPrice"`
			Currency           string  `json:"currency"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

// NewClient creates a market-data client. An empty baseURL selects the
// default provider.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		client: resty.New().
			SetTimeout(10 * time.Second).
			SetHeader("User-Agent", "newsradar/1.0"),
		baseURL: baseURL,
	}
}

// GetQuote returns the latest price for a symbol, or an unavailable quote
// when the provider fails. Lookup failures never propagate as errors to the
// news pipeline.
func (c *Client) GetQuote(ctx context.Context, symbol string) Quote {
	unavailable := Quote{Symbol: symbol}

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("symbols", symbol).
		Get(c.baseURL)
	if err != nil {
		logrus.Warnf("Quote lookup failed for %s: %v", symbol, err)
		return unavailable
	}
	if resp.StatusCode() != 200 {
		logrus.Warnf("Quote provider returned status %d for %s", resp.StatusCode(), symbol)
		return unavailable
	}

	var parsed quoteResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		logrus.Warnf("Failed to parse quote response for %s: %v", symbol, err)
		return unavailable
	}
	if len(parsed.QuoteResponse.Result) == 0 {
		return unavailable
	}

	result := parsed.QuoteResponse.Result[0]
	return Quote{
		Symbol:    result.Symbol,
		Price:     result.RegularMarketPrice,
		Currency:  result.Currency,
		Available: true,
	}
}

// FormatPrice renders a quote for display
func FormatPrice(q Quote) string {
	if !q.Available {
		return "unavailable"
	}
	return fmt.Sprintf("%.2f %s", q.Price, q.Currency)
}

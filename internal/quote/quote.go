package quote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"brokerage_system/internal/domain"

	"github.com/shopspring/decimal"
)

// Quote is the oracle's answer for one symbol.
type Quote struct {
	Symbol string          `json:"symbol"` // Ticker symbol, uppercase
	Name   string          `json:"name"`   // Company display name
	Price  decimal.Decimal `json:"price"`  // Current market price
}

// Oracle supplies the current market price for a symbol.
type Oracle interface {
	Lookup(ctx context.Context, symbol string) (Quote, error)
}

// Client is an HTTP Oracle against an IEX-style quote endpoint:
// GET {base}/stock/{symbol}/quote?token={token}
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a quote client with a bounded request timeout.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// quoteResponse mirrors the provider's wire format.
type quoteResponse struct {
	Symbol      string          `json:"symbol"`
	CompanyName string          `json:"companyName"`
	LatestPrice decimal.Decimal `json:"latestPrice"`
}

// Lookup resolves a symbol to its company name and current price.
// An unknown symbol maps to domain.ErrSymbolNotFound; timeouts,
// transport errors and provider errors map to domain.ErrOracleUnavailable.
func (c *Client) Lookup(ctx context.Context, symbol string) (Quote, error) {
	u := c.baseURL + "/stock/" + url.PathEscape(symbol) + "/quote?token=" + url.QueryEscape(c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Quote{}, domain.ErrOracleUnavailable
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Quote{}, domain.ErrOracleUnavailable
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusNotFound:
		return Quote{}, domain.ErrSymbolNotFound
	default:
		return Quote{}, domain.ErrOracleUnavailable
	}

	var body quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Quote{}, domain.ErrOracleUnavailable
	}
	if body.LatestPrice.IsZero() && body.CompanyName == "" {
		// Some providers answer 200 with an empty body for dead symbols
		return Quote{}, domain.ErrSymbolNotFound
	}
	return Quote{Symbol: symbol, Name: body.CompanyName, Price: body.LatestPrice}, nil
}

package refresher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// listingsPath is CoinMarketCap's ranked listings endpoint; results arrive
// already sorted by market capitalization.
const listingsPath = "/v1/cryptocurrency/listings/latest"

// CMCCoin is one asset in the provider's listings response.
type CMCCoin struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Quote  struct {
		USD struct {
			Price            float64 `json:"price"`
			MarketCap        float64 `json:"market_cap"`
			Volume24h        float64 `json:"volume_24h"`
			PercentChange1h  float64 `json:"percent_change_1h"`
			PercentChange24h float64 `json:"percent_change_24h"`
			PercentChange7d  float64 `json:"percent_change_7d"`
			PercentChange30d float64 `json:"percent_change_30d"`
		} `json:"USD"`
	} `json:"quote"`
}

type listingsResponse struct {
	Data []CMCCoin `json:"data"`
}

// CMCClient talks to the CoinMarketCap pro API.
type CMCClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewCMCClient(baseURL, apiKey string) *CMCClient {
	return &CMCClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// TopListings fetches the top-N assets by market cap with USD quotes.
func (c *CMCClient) TopListings(ctx context.Context, limit int) ([]CMCCoin, error) {
	url := fmt.Sprintf("%s%s?limit=%d&convert=USD", c.baseURL, listingsPath, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("listings request: %w", err)
	}
	req.Header.Set("X-CMC_PRO_API_KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listings request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listings request: unexpected status %s", resp.Status)
	}

	var out listingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("listings decode: %w", err)
	}
	return out.Data, nil
}

// LogoURL builds the provider CDN icon location from the listing id.
func LogoURL(id int64) string {
	return fmt.Sprintf("https://s2.coinmarketcap.com/static/img/coins/64x64/%d.png", id)
}

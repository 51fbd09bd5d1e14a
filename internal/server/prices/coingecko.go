package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/krypton/internal/common"
)

const (
	DefaultBaseURL = "https://api.coingecko.com/api/v3"
	DefaultTimeout = 5 * time.Second

	apiKeyHeader = "x-cg-demo-api-key"
	maxBody      = 8 << 20
)

// CoinGecko is the client of the CoinGecko v3 API. It serves spot prices
// (/simple/price) and the market data proxied under /api/crypto.
type CoinGecko struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	client  *http.Client
}

func NewCoinGecko(baseURL, apiKey string, timeout time.Duration) *CoinGecko {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &CoinGecko{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		client:  &http.Client{},
	}
}

func (c *CoinGecko) SpotPrice(ctx context.Context, assetID, currency string) (float64, error) {
	prices, err := c.SpotPrices(ctx, []string{assetID}, currency)
	if err != nil {
		return 0, err
	}
	p, ok := prices[assetID]
	if !ok {
		return 0, fmt.Errorf("%w: no price for %q", common.ErrPriceUnavailable, assetID)
	}
	return p, nil
}

func (c *CoinGecko) SpotPrices(ctx context.Context, assetIDs []string, currency string) (map[string]float64, error) {
	out := make(map[string]float64, len(assetIDs))
	if len(assetIDs) == 0 {
		return out, nil
	}
	currency = strings.ToLower(currency)

	q := url.Values{}
	q.Set("ids", strings.Join(assetIDs, ","))
	q.Set("vs_currencies", currency)

	body, err := c.get(ctx, "/simple/price", q)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrPriceUnavailable, err)
	}

	// {"bitcoin":{"usd":67187.34},"ethereum":{"usd":3500.1}}
	var payload map[string]map[string]float64
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: cannot decode reply: %w", common.ErrPriceUnavailable, err)
	}

	for id, quotes := range payload {
		if p, ok := quotes[currency]; ok {
			out[id] = p
		}
	}
	return out, nil
}

// get performs one GET against the API, bounded by the client timeout, and
// returns the body of a 200 reply.
func (c *CoinGecko) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	uri := c.baseURL + path
	if len(q) > 0 {
		uri += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%s; body: %s", resp.Status, string(b))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("cannot read reply: %w", err)
	}
	return body, nil
}

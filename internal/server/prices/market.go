package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/krypton/internal/common"
)

// MarketQuery selects a page of the market listing.
type MarketQuery struct {
	Currency  string
	Order     string
	PerPage   int
	Page      int
	Sparkline bool
}

// Market serves raw market data documents. Replies are passed through to
// API callers unchanged. Failures wrap common.ErrMarketDataUnavailable.
type Market interface {
	Markets(ctx context.Context, q MarketQuery) (json.RawMessage, error)
	Coin(ctx context.Context, id string) (json.RawMessage, error)
	Chart(ctx context.Context, id, currency, days string) (json.RawMessage, error)
	Trending(ctx context.Context) (json.RawMessage, error)
	Global(ctx context.Context) (json.RawMessage, error)
}

func (q MarketQuery) values() url.Values {
	v := url.Values{}
	v.Set("vs_currency", strings.ToLower(q.Currency))
	v.Set("order", q.Order)
	v.Set("per_page", strconv.Itoa(q.PerPage))
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("sparkline", strconv.FormatBool(q.Sparkline))
	return v
}

func (c *CoinGecko) Markets(ctx context.Context, q MarketQuery) (json.RawMessage, error) {
	return c.document(ctx, "/coins/markets", q.values())
}

func (c *CoinGecko) Coin(ctx context.Context, id string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("localization", "false")
	q.Set("tickers", "false")
	return c.document(ctx, "/coins/"+url.PathEscape(id), q)
}

func (c *CoinGecko) Chart(ctx context.Context, id, currency, days string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("vs_currency", strings.ToLower(currency))
	q.Set("days", days)
	return c.document(ctx, "/coins/"+url.PathEscape(id)+"/market_chart", q)
}

func (c *CoinGecko) Trending(ctx context.Context) (json.RawMessage, error) {
	return c.document(ctx, "/search/trending", nil)
}

func (c *CoinGecko) Global(ctx context.Context) (json.RawMessage, error) {
	return c.document(ctx, "/global", nil)
}

// document fetches path and checks the reply is JSON.
func (c *CoinGecko) document(ctx context.Context, path string, q url.Values) (json.RawMessage, error) {
	body, err := c.get(ctx, path, q)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrMarketDataUnavailable, path, err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: %s: reply is not JSON", common.ErrMarketDataUnavailable, path)
	}
	return json.RawMessage(body), nil
}

package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/krypton/internal/common"
	"github.com/dmitrijs2005/krypton/internal/server/prices"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCryptoRoutes_PassThrough(t *testing.T) {
	api := newTestAPI(t)

	cases := []struct {
		path string
		want string
	}{
		{"/api/crypto/cryptos", `[{"id":"bitcoin"}]`},
		{"/api/crypto/crypto/ethereum", `{"id":"ethereum"}`},
		{"/api/crypto/chart/bitcoin", `{"prices":[]}`},
		{"/api/crypto/trending", `{"coins":[]}`},
		{"/api/crypto/global", `{"data":{}}`},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			rec := api.do(t, http.MethodGet, tc.path, "", nil)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tc.want, rec.Body.String())
		})
	}
}

func TestGetCryptos_QueryDefaultsAndOverrides(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/crypto/cryptos", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, prices.MarketQuery{Currency: "usd", Order: "market_cap_desc", PerPage: 50, Page: 1}, api.market.lastQuery)

	rec = api.do(t, http.MethodGet, "/api/crypto/cryptos?vs_currency=eur&order=volume_desc&per_page=10&page=3&sparkline=true", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, prices.MarketQuery{Currency: "eur", Order: "volume_desc", PerPage: 10, Page: 3, Sparkline: true}, api.market.lastQuery)
}

func TestGetCryptos_BadPaging(t *testing.T) {
	api := newTestAPI(t)
	for _, q := range []string{"per_page=abc", "per_page=0", "per_page=1000", "page=-1"} {
		rec := api.do(t, http.MethodGet, "/api/crypto/cryptos?"+q, "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
		assert.Contains(t, decodeBody(t, rec)["error"], "invalid input", q)
	}
}

func TestGetChart_Days(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/crypto/chart/bitcoin", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"bitcoin", "usd", "7"}, api.market.lastChart)

	rec = api.do(t, http.MethodGet, "/api/crypto/chart/solana?days=max&vs_currency=gbp", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"solana", "gbp", "max"}, api.market.lastChart)

	rec = api.do(t, http.MethodGet, "/api/crypto/chart/solana?days=week", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCryptoRoutes_UpstreamFailure(t *testing.T) {
	api := newTestAPI(t)
	api.market.err = fmt.Errorf("%w: 429 Too Many Requests", common.ErrMarketDataUnavailable)

	cases := map[string]string{
		"/api/crypto/cryptos":        "Failed to fetch crypto data",
		"/api/crypto/crypto/bitcoin": "Failed to fetch crypto details",
		"/api/crypto/chart/bitcoin":  "Failed to fetch chart data",
		"/api/crypto/trending":       "Failed to fetch trending coins",
		"/api/crypto/global":         "Failed to fetch global data",
	}
	for path, msg := range cases {
		rec := api.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, path)
		assert.JSONEq(t, `{"error":"`+msg+`"}`, rec.Body.String(), path)
	}
}

func TestGetNews(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodGet, "/api/crypto/news", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var items []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 2)
	for _, it := range items {
		assert.NotEmpty(t, it["title"])
		assert.NotEmpty(t, it["published_at"])
		assert.NotEmpty(t, it["source"])
	}
}

func TestCryptoRoutes_GetOnly(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodPost, "/api/crypto/trending", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

package prices

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/krypton/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoinGecko_SpotPrices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "bitcoin,ethereum,nope", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		assert.Equal(t, "demo-key", r.Header.Get("x-cg-demo-api-key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"bitcoin":{"usd":50000.5},"ethereum":{"usd":3000}}`))
	}))
	defer srv.Close()

	c := NewCoinGecko(srv.URL, "demo-key", time.Second)
	got, err := c.SpotPrices(context.Background(), []string{"bitcoin", "ethereum", "nope"}, "USD")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"bitcoin": 50000.5, "ethereum": 3000}, got)
}

func TestCoinGecko_SpotPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("x-cg-demo-api-key"))
		_, _ = w.Write([]byte(`{"bitcoin":{"usd":42}}`))
	}))
	defer srv.Close()

	c := NewCoinGecko(srv.URL+"/", "", time.Second)
	p, err := c.SpotPrice(context.Background(), "bitcoin", "usd")
	require.NoError(t, err)
	assert.Equal(t, 42.0, p)

	_, err = c.SpotPrice(context.Background(), "dogecoin", "usd")
	assert.ErrorIs(t, err, common.ErrPriceUnavailable)
}

func TestCoinGecko_Failures(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"non-2xx", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}},
		{"timeout", func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			c := NewCoinGecko(srv.URL, "", 50*time.Millisecond)
			_, err := c.SpotPrices(context.Background(), []string{"bitcoin"}, "usd")
			assert.ErrorIs(t, err, common.ErrPriceUnavailable)
		})
	}
}

func TestCoinGecko_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewCoinGecko(url, "", time.Second)
	_, err := c.SpotPrice(context.Background(), "bitcoin", "usd")
	assert.ErrorIs(t, err, common.ErrPriceUnavailable)
}

func TestCoinGecko_EmptyIDs(t *testing.T) {
	c := NewCoinGecko("http://127.0.0.1:1", "", time.Second)
	got, err := c.SpotPrices(context.Background(), nil, "usd")
	require.NoError(t, err)
	assert.Empty(t, got)
}

package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/krypton/internal/common"
	"github.com/dmitrijs2005/krypton/internal/server/prices"
	"github.com/gorilla/mux"
)

type MarketService interface {
	Markets(ctx context.Context, q prices.MarketQuery) (json.RawMessage, error)
	Coin(ctx context.Context, id string) (json.RawMessage, error)
	Chart(ctx context.Context, id, currency, days string) (json.RawMessage, error)
	Trending(ctx context.Context) (json.RawMessage, error)
	Global(ctx context.Context) (json.RawMessage, error)
}

const (
	defaultPerPage = 50
	maxPerPage     = 250
	defaultDays    = "7"
)

type newsItem struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
	Source      string    `json:"source"`
}

// respondRaw writes an upstream JSON document unchanged.
func respondRaw(w http.ResponseWriter, doc json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

// market answers with doc, or with a 500 carrying msg when the upstream
// call failed.
func (h *Handler) market(w http.ResponseWriter, r *http.Request, doc json.RawMessage, err error, msg string) {
	if err != nil {
		h.log.Error(r.Context(), "market data request failed", "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, msg)
		return
	}
	respondRaw(w, doc)
}

func currencyParam(r *http.Request) string {
	if c := r.URL.Query().Get("vs_currency"); c != "" {
		return c
	}
	return common.DefaultReferenceCurrency
}

func intParam(r *http.Request, name string, def, max int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || (max > 0 && n > max) {
		return 0, fmt.Errorf("%w: %s must be a positive integer", common.ErrInvalidInput, name)
	}
	return n, nil
}

// GetCryptos handles GET /api/crypto/cryptos
func (h *Handler) GetCryptos(w http.ResponseWriter, r *http.Request) {
	q := prices.MarketQuery{
		Currency:  currencyParam(r),
		Order:     r.URL.Query().Get("order"),
		Sparkline: r.URL.Query().Get("sparkline") == "true",
	}
	if q.Order == "" {
		q.Order = "market_cap_desc"
	}
	var err error
	if q.PerPage, err = intParam(r, "per_page", defaultPerPage, maxPerPage); err != nil {
		h.fail(w, r, err)
		return
	}
	if q.Page, err = intParam(r, "page", 1, 0); err != nil {
		h.fail(w, r, err)
		return
	}

	doc, err := h.markets.Markets(r.Context(), q)
	h.market(w, r, doc, err, "Failed to fetch crypto data")
}

// GetCrypto handles GET /api/crypto/crypto/{id}
func (h *Handler) GetCrypto(w http.ResponseWriter, r *http.Request) {
	doc, err := h.markets.Coin(r.Context(), mux.Vars(r)["id"])
	h.market(w, r, doc, err, "Failed to fetch crypto details")
}

// GetChart handles GET /api/crypto/chart/{id}. days is a positive integer
// or "max".
func (h *Handler) GetChart(w http.ResponseWriter, r *http.Request) {
	days := r.URL.Query().Get("days")
	switch days {
	case "":
		days = defaultDays
	case "max":
	default:
		n, err := intParam(r, "days", 0, 0)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		days = strconv.Itoa(n)
	}

	doc, err := h.markets.Chart(r.Context(), mux.Vars(r)["id"], currencyParam(r), days)
	h.market(w, r, doc, err, "Failed to fetch chart data")
}

// GetTrending handles GET /api/crypto/trending
func (h *Handler) GetTrending(w http.ResponseWriter, r *http.Request) {
	doc, err := h.markets.Trending(r.Context())
	h.market(w, r, doc, err, "Failed to fetch trending coins")
}

// GetGlobal handles GET /api/crypto/global
func (h *Handler) GetGlobal(w http.ResponseWriter, r *http.Request) {
	doc, err := h.markets.Global(r.Context())
	h.market(w, r, doc, err, "Failed to fetch global data")
}

// GetNews handles GET /api/crypto/news. There is no news source yet, so it
// serves fixed headlines stamped with the current time.
func (h *Handler) GetNews(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	respondJSON(w, http.StatusOK, []newsItem{
		{
			Title:       "Bitcoin Surges Past $60,000 Mark",
			Description: "Bitcoin has reached a new all-time high as institutional adoption increases.",
			URL:         "#",
			PublishedAt: now,
			Source:      "Crypto News",
		},
		{
			Title:       "Ethereum 2.0 Upgrade Shows Promising Results",
			Description: "The latest Ethereum upgrade has improved network efficiency significantly.",
			URL:         "#",
			PublishedAt: now,
			Source:      "Blockchain Today",
		},
	})
}

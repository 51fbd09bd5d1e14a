package http

import (
	"net/http"

	"github.com/dmitrijs2005/krypton/internal/logging"
	"github.com/dmitrijs2005/krypton/internal/server/auth"
	"github.com/gorilla/mux"
)

// NewRouter configures all API routes and wraps them in the common
// middleware chain.
func NewRouter(h *Handler, resolver *auth.Resolver, corsOrigin string, log logging.Logger) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(h.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(h.NotFound)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	authAPI := api.PathPrefix("/auth").Subrouter()
	authAPI.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	authAPI.HandleFunc("/login", h.Login).Methods(http.MethodPost)

	crypto := api.PathPrefix("/crypto").Subrouter()
	crypto.HandleFunc("/cryptos", h.GetCryptos).Methods(http.MethodGet)
	crypto.HandleFunc("/crypto/{id}", h.GetCrypto).Methods(http.MethodGet)
	crypto.HandleFunc("/chart/{id}", h.GetChart).Methods(http.MethodGet)
	crypto.HandleFunc("/trending", h.GetTrending).Methods(http.MethodGet)
	crypto.HandleFunc("/global", h.GetGlobal).Methods(http.MethodGet)
	crypto.HandleFunc("/news", h.GetNews).Methods(http.MethodGet)

	user := api.PathPrefix("/user").Subrouter()
	user.Use(h.requireUser(resolver))
	user.HandleFunc("/profile", h.Profile).Methods(http.MethodGet)
	user.HandleFunc("/watchlist", h.GetWatchlist).Methods(http.MethodGet)
	user.HandleFunc("/watchlist", h.AddToWatchlist).Methods(http.MethodPost)
	user.HandleFunc("/watchlist/{id}", h.RemoveFromWatchlist).Methods(http.MethodDelete)
	user.HandleFunc("/portfolio", h.GetPortfolio).Methods(http.MethodGet)
	user.HandleFunc("/portfolio", h.AddToPortfolio).Methods(http.MethodPost)
	user.HandleFunc("/portfolio/summary", h.GetPortfolioSummary).Methods(http.MethodGet)
	user.HandleFunc("/portfolio/{id}", h.RemoveFromPortfolio).Methods(http.MethodDelete)

	return recoverer(log, accessLog(log, cors(corsOrigin, r)))
}

package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/krypton/internal/common"
	"github.com/dmitrijs2005/krypton/internal/logging"
	"github.com/dmitrijs2005/krypton/internal/server/auth"
	"github.com/dmitrijs2005/krypton/internal/server/models"
	"github.com/gorilla/mux"
)

type UserService interface {
	Register(ctx context.Context, firstName, lastName, email, password string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
}

type WatchlistService interface {
	List(ctx context.Context, user *models.User) []models.WatchlistEntry
	Add(ctx context.Context, user *models.User, assetID string) ([]models.WatchlistEntry, error)
	Remove(ctx context.Context, user *models.User, assetID string) ([]models.WatchlistEntry, error)
}

type PortfolioService interface {
	ListEnriched(ctx context.Context, user *models.User) []models.EnrichedHolding
	Summary(ctx context.Context, user *models.User) models.PortfolioSummary
	AddHolding(ctx context.Context, user *models.User, assetID string, amount float64) ([]models.Holding, error)
	RemoveHolding(ctx context.Context, user *models.User, assetID string) ([]models.Holding, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	users     UserService
	watchlist WatchlistService
	portfolio PortfolioService
	markets   MarketService
	log       logging.Logger
}

func NewHandler(us UserService, ws WatchlistService, ps PortfolioService, ms MarketService, log logging.Logger) *Handler {
	return &Handler{users: us, watchlist: ws, portfolio: ps, markets: ms, log: log}
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body", common.ErrInvalidInput)
	}
	return nil
}

// Register handles POST /api/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
		Password  string `json:"password"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	user, token, err := h.users.Register(r.Context(), req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, authBody{UserID: user.ID, Token: token, Message: "User registered successfully"})
}

// Login handles POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	user, token, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, authBody{UserID: user.ID, Token: token, Message: "Login successful"})
}

// Profile handles GET /api/user/profile
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	user := mustUser(r)
	respondJSON(w, http.StatusOK, dataBody{Data: user.Profile()})
}

// GetWatchlist handles GET /api/user/watchlist
func (h *Handler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	user := mustUser(r)
	respondJSON(w, http.StatusOK, dataBody{Data: h.watchlist.List(r.Context(), user)})
}

// AddToWatchlist handles POST /api/user/watchlist
func (h *Handler) AddToWatchlist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CryptoID string `json:"cryptoId"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	list, err := h.watchlist.Add(r.Context(), mustUser(r), req.CryptoID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, dataBody{Data: list, Message: "Added to watchlist"})
}

// RemoveFromWatchlist handles DELETE /api/user/watchlist/{id}
func (h *Handler) RemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	list, err := h.watchlist.Remove(r.Context(), mustUser(r), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, dataBody{Data: list, Message: "Removed from watchlist"})
}

// GetPortfolio handles GET /api/user/portfolio
func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, dataBody{Data: h.portfolio.ListEnriched(r.Context(), mustUser(r))})
}

// GetPortfolioSummary handles GET /api/user/portfolio/summary
func (h *Handler) GetPortfolioSummary(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, dataBody{Data: h.portfolio.Summary(r.Context(), mustUser(r))})
}

// AddToPortfolio handles POST /api/user/portfolio. amount may be sent as a
// JSON number or a numeric string.
func (h *Handler) AddToPortfolio(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CryptoID string      `json:"cryptoId"`
		Amount   json.Number `json:"amount"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.CryptoID == "" || req.Amount == "" {
		h.fail(w, r, fmt.Errorf("%w: crypto id and amount are required", common.ErrInvalidInput))
		return
	}
	amount, err := req.Amount.Float64()
	if err != nil {
		h.fail(w, r, fmt.Errorf("%w: amount must be a number", common.ErrInvalidInput))
		return
	}

	holdings, err := h.portfolio.AddHolding(r.Context(), mustUser(r), req.CryptoID, amount)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, dataBody{Data: holdings, Message: "Added to portfolio"})
}

// RemoveFromPortfolio handles DELETE /api/user/portfolio/{id}
func (h *Handler) RemoveFromPortfolio(w http.ResponseWriter, r *http.Request) {
	holdings, err := h.portfolio.RemoveHolding(r.Context(), mustUser(r), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, dataBody{Data: holdings, Message: "Removed from portfolio"})
}

// HealthCheck handles GET /api/health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, healthBody{Status: "OK", Message: "Krypton API is running"})
}

// NotFound answers unknown routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, "Route not found")
}

// mustUser returns the user put in the context by the auth middleware.
func mustUser(r *http.Request) *models.User {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		panic("http: identity-scoped handler reached without authenticated user")
	}
	return user
}

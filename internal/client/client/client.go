package client

import (
	"context"
	"time"
)

type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type WatchlistEntry struct {
	CryptoID string    `json:"cryptoId"`
	AddedAt  time.Time `json:"addedAt"`
}

type Holding struct {
	CryptoID      string    `json:"cryptoId"`
	Amount        float64   `json:"amount"`
	PurchasePrice float64   `json:"purchasePrice"`
	AddedAt       time.Time `json:"addedAt"`
	CurrentPrice  float64   `json:"currentPrice"`
	CurrentValue  float64   `json:"currentValue"`
	ProfitLoss    float64   `json:"profitLoss"`
}

type Summary struct {
	Holdings        []Holding `json:"holdings"`
	TotalValue      float64   `json:"totalValue"`
	TotalCost       float64   `json:"totalCost"`
	TotalProfitLoss float64   `json:"totalProfitLoss"`
	Currency        string    `json:"currency"`
}

// Client is the API contract used by the CLI.
type Client interface {
	Register(ctx context.Context, firstName, lastName, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	LoggedIn() bool
	Logout()

	Profile(ctx context.Context) (*Profile, error)
	Watchlist(ctx context.Context) ([]WatchlistEntry, error)
	Watch(ctx context.Context, cryptoID string) ([]WatchlistEntry, error)
	Unwatch(ctx context.Context, cryptoID string) ([]WatchlistEntry, error)
	Portfolio(ctx context.Context) ([]Holding, error)
	Summary(ctx context.Context) (*Summary, error)
	Buy(ctx context.Context, cryptoID string, amount float64) ([]Holding, error)
	Sell(ctx context.Context, cryptoID string) ([]Holding, error)
	Health(ctx context.Context) error
}

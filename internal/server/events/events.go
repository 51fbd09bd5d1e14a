// Package events publishes watchlist and portfolio changes.
package events

import (
	"context"
	"time"
)

const (
	WatchlistAdded          = "WATCHLIST_ADDED"
	WatchlistRemoved        = "WATCHLIST_REMOVED"
	PortfolioHoldingAdded   = "PORTFOLIO_HOLDING_ADDED"
	PortfolioHoldingRemoved = "PORTFOLIO_HOLDING_REMOVED"
)

// Event describes one change to a user's collections.
type Event struct {
	EventType string    `json:"eventType"`
	UserID    string    `json:"userId"`
	CryptoID  string    `json:"cryptoId"`
	Amount    float64   `json:"amount,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func New(eventType, userID, cryptoID string) Event {
	return Event{EventType: eventType, UserID: userID, CryptoID: cryptoID, Timestamp: time.Now().UTC()}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) error { return nil }
func (nopPublisher) Close() error                         { return nil }

// Nop returns a Publisher that drops every event.
func Nop() Publisher { return nopPublisher{} }

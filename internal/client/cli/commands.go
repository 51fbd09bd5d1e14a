package cli

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/dmitrijs2005/krypton/internal/client/client"
)

var errInvalidAmount = errors.New("amount must be a positive number")

func (a *App) showWatchlist(entries []client.WatchlistEntry) error {
	md, err := watchlistMarkdown(entries)
	if err != nil {
		return err
	}
	a.display(md)
	return nil
}

func (a *App) showHoldings(holdings []client.Holding) error {
	md, err := portfolioMarkdown(holdings, a.currency)
	if err != nil {
		return err
	}
	a.display(md)
	return nil
}

func (a *App) Watchlist(ctx context.Context) error {
	entries, err := a.api.Watchlist(ctx)
	if err != nil {
		return err
	}
	return a.showWatchlist(entries)
}

func (a *App) Watch(ctx context.Context, args []string) error {
	id, err := argOrPrompt(a.reader, a.out, args, 0, "Crypto ID (e.g. bitcoin)")
	if err != nil {
		return err
	}
	entries, err := a.api.Watch(ctx, id)
	if err != nil {
		return err
	}
	return a.showWatchlist(entries)
}

func (a *App) Unwatch(ctx context.Context, args []string) error {
	id, err := argOrPrompt(a.reader, a.out, args, 0, "Crypto ID")
	if err != nil {
		return err
	}
	entries, err := a.api.Unwatch(ctx, id)
	if err != nil {
		return err
	}
	return a.showWatchlist(entries)
}

func (a *App) Portfolio(ctx context.Context) error {
	holdings, err := a.api.Portfolio(ctx)
	if err != nil {
		return err
	}
	return a.showHoldings(holdings)
}

// Summary prints holdings with totals and remembers the reporting currency
// for later listings.
func (a *App) Summary(ctx context.Context) error {
	s, err := a.api.Summary(ctx)
	if err != nil {
		return err
	}
	if s.Currency != "" {
		a.currency = s.Currency
	}
	md, err := summaryMarkdown(s)
	if err != nil {
		return err
	}
	a.display(md)
	return nil
}

func (a *App) Buy(ctx context.Context, args []string) error {
	id, err := argOrPrompt(a.reader, a.out, args, 0, "Crypto ID (e.g. bitcoin)")
	if err != nil {
		return err
	}
	raw, err := argOrPrompt(a.reader, a.out, args, 1, "Amount")
	if err != nil {
		return err
	}
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return fmt.Errorf("%q: %w", raw, errInvalidAmount)
	}

	holdings, err := a.api.Buy(ctx, id, amount)
	if err != nil {
		return err
	}
	return a.showHoldings(holdings)
}

// Sell removes every lot of the asset.
func (a *App) Sell(ctx context.Context, args []string) error {
	id, err := argOrPrompt(a.reader, a.out, args, 0, "Crypto ID")
	if err != nil {
		return err
	}
	holdings, err := a.api.Sell(ctx, id)
	if err != nil {
		return err
	}
	return a.showHoldings(holdings)
}

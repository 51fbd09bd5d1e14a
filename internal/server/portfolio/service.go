// Package portfolio manages a user's holdings and values them at current
// market prices.
package portfolio

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dmitrijs2005/krypton/internal/common"
	"github.com/dmitrijs2005/krypton/internal/logging"
	"github.com/dmitrijs2005/krypton/internal/server/events"
	"github.com/dmitrijs2005/krypton/internal/server/models"
	"github.com/dmitrijs2005/krypton/internal/server/prices"
	"github.com/dmitrijs2005/krypton/internal/server/shared/keylock"
	"github.com/dmitrijs2005/krypton/internal/server/users"
)

// maxConcurrentLookups bounds the per-asset fallback fan-out.
const maxConcurrentLookups = 8

type Service struct {
	repo     users.Repository
	oracle   prices.Oracle
	events   events.Publisher
	locks    *keylock.Locker
	currency string
	log      logging.Logger
}

func NewService(repo users.Repository, oracle prices.Oracle, pub events.Publisher, locks *keylock.Locker, currency string, log logging.Logger) *Service {
	if currency == "" {
		currency = common.DefaultReferenceCurrency
	}
	return &Service{
		repo:     repo,
		oracle:   oracle,
		events:   pub,
		locks:    locks,
		currency: currency,
		log:      log.With("module", "portfolio"),
	}
}

// List returns the raw holdings in insertion order.
func (s *Service) List(ctx context.Context, user *models.User) []models.Holding {
	return append(make([]models.Holding, 0, len(user.Portfolio)), user.Portfolio...)
}

// AddHolding appends a new lot bought at the current spot price. When no
// price is available the lot is recorded with a purchase price of zero.
func (s *Service) AddHolding(ctx context.Context, user *models.User, assetID string, amount float64) ([]models.Holding, error) {
	if strings.TrimSpace(assetID) == "" {
		return nil, fmt.Errorf("%w: crypto id is required", common.ErrInvalidInput)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be a positive number", common.ErrInvalidInput)
	}

	purchasePrice, err := s.oracle.SpotPrice(ctx, assetID, s.currency)
	if err != nil {
		s.log.Warn(ctx, "purchase price unavailable, recording zero", "asset", assetID, "error", err)
		purchasePrice = 0
	}

	holdings, err := s.mutate(ctx, user.ID, func(u *models.User) bool {
		u.Portfolio = append(u.Portfolio, models.Holding{
			CryptoID:      assetID,
			Amount:        amount,
			PurchasePrice: purchasePrice,
			AddedAt:       time.Now().UTC(),
		})
		return true
	})
	if err != nil {
		return nil, err
	}

	e := events.New(events.PortfolioHoldingAdded, user.ID, assetID)
	e.Amount = amount
	s.publish(ctx, e)
	return holdings, nil
}

// RemoveHolding drops every lot of assetID. Removing an asset that is not
// held is a no-op.
func (s *Service) RemoveHolding(ctx context.Context, user *models.User, assetID string) ([]models.Holding, error) {
	removed := 0
	holdings, err := s.mutate(ctx, user.ID, func(u *models.User) bool {
		kept := make([]models.Holding, 0, len(u.Portfolio))
		for _, h := range u.Portfolio {
			if h.CryptoID == assetID {
				removed++
				continue
			}
			kept = append(kept, h)
		}
		u.Portfolio = kept
		return removed > 0
	})
	if err != nil {
		return nil, err
	}

	if removed > 0 {
		s.publish(ctx, events.New(events.PortfolioHoldingRemoved, user.ID, assetID))
	}
	return holdings, nil
}

// mutate re-reads the user under its lock, applies fn and saves when fn
// reports a change.
func (s *Service) mutate(ctx context.Context, userID string, fn func(u *models.User) bool) ([]models.Holding, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	current, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	if fn(current) {
		if err := s.repo.Save(ctx, current); err != nil {
			return nil, fmt.Errorf("error saving portfolio: %w", err)
		}
	}

	return s.List(ctx, current), nil
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.events.Publish(ctx, e); err != nil {
		s.log.Error(ctx, "event publish failed", "event", e.EventType, "user_id", e.UserID, "error", err)
	}
}

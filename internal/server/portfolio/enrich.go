package portfolio

import (
	"context"

	"github.com/dmitrijs2005/krypton/internal/server/models"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ListEnriched values every holding at the current price. Prices come from
// one batched query; if that fails as a whole, each asset is queried on its
// own. A holding whose price cannot be found is returned with zero derived
// fields. The result keeps holding order and never fails on prices.
func (s *Service) ListEnriched(ctx context.Context, user *models.User) []models.EnrichedHolding {
	holdings := user.Portfolio
	out := make([]models.EnrichedHolding, len(holdings))
	if len(holdings) == 0 {
		return out
	}

	quotes := s.quotes(ctx, uniqueAssets(holdings))

	for i, h := range holdings {
		out[i] = enrich(h, quotes)
	}
	return out
}

// Summary totals the enriched holdings. TotalCost covers every holding;
// TotalValue and TotalProfitLoss add up the per-holding figures.
func (s *Service) Summary(ctx context.Context, user *models.User) models.PortfolioSummary {
	enriched := s.ListEnriched(ctx, user)

	value, cost, pl := decimal.Zero, decimal.Zero, decimal.Zero
	for _, e := range enriched {
		value = value.Add(decimal.NewFromFloat(e.CurrentValue))
		cost = cost.Add(decimal.NewFromFloat(e.Amount).Mul(decimal.NewFromFloat(e.PurchasePrice)))
		pl = pl.Add(decimal.NewFromFloat(e.ProfitLoss))
	}

	return models.PortfolioSummary{
		Holdings:        enriched,
		TotalValue:      value.InexactFloat64(),
		TotalCost:       cost.InexactFloat64(),
		TotalProfitLoss: pl.InexactFloat64(),
		Currency:        s.currency,
	}
}

func (s *Service) quotes(ctx context.Context, assets []string) map[string]float64 {
	quotes, err := s.oracle.SpotPrices(ctx, assets, s.currency)
	if err == nil {
		return quotes
	}
	s.log.Warn(ctx, "batched price lookup failed, querying assets one by one", "assets", len(assets), "error", err)

	found := make([]float64, len(assets))
	ok := make([]bool, len(assets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLookups)
	for i, id := range assets {
		g.Go(func() error {
			p, err := s.oracle.SpotPrice(gctx, id, s.currency)
			if err != nil {
				s.log.Warn(gctx, "price unavailable", "asset", id, "error", err)
				return nil
			}
			found[i], ok[i] = p, true
			return nil
		})
	}
	_ = g.Wait()

	quotes = make(map[string]float64, len(assets))
	for i, id := range assets {
		if ok[i] {
			quotes[id] = found[i]
		}
	}
	return quotes
}

func enrich(h models.Holding, quotes map[string]float64) models.EnrichedHolding {
	e := models.EnrichedHolding{Holding: h}
	price, ok := quotes[h.CryptoID]
	if !ok {
		return e
	}

	amount := decimal.NewFromFloat(h.Amount)
	value := amount.Mul(decimal.NewFromFloat(price))
	cost := amount.Mul(decimal.NewFromFloat(h.PurchasePrice))

	e.CurrentPrice = price
	e.CurrentValue = value.InexactFloat64()
	e.ProfitLoss = value.Sub(cost).InexactFloat64()
	return e
}

func uniqueAssets(holdings []models.Holding) []string {
	seen := make(map[string]struct{}, len(holdings))
	ids := make([]string, 0, len(holdings))
	for _, h := range holdings {
		if _, ok := seen[h.CryptoID]; ok {
			continue
		}
		seen[h.CryptoID] = struct{}{}
		ids = append(ids, h.CryptoID)
	}
	return ids
}

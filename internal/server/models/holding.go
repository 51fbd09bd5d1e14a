package models

import "time"

// Holding is one lot of an asset. Several lots of the same asset may exist.
type Holding struct {
	CryptoID      string    `json:"cryptoId" bson:"cryptoId"`
	Amount        float64   `json:"amount" bson:"amount"`
	PurchasePrice float64   `json:"purchasePrice" bson:"purchasePrice"`
	AddedAt       time.Time `json:"addedAt" bson:"addedAt"`
}

// EnrichedHolding is a Holding valued at the current market price.
// All three derived fields are zero when no price was available.
type EnrichedHolding struct {
	Holding
	CurrentPrice float64 `json:"currentPrice"`
	CurrentValue float64 `json:"currentValue"`
	ProfitLoss   float64 `json:"profitLoss"`
}

type PortfolioSummary struct {
	Holdings        []EnrichedHolding `json:"holdings"`
	TotalValue      float64           `json:"totalValue"`
	TotalCost       float64           `json:"totalCost"`
	TotalProfitLoss float64           `json:"totalProfitLoss"`
	Currency        string            `json:"currency"`
}

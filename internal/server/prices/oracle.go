// Package prices looks up spot prices of crypto assets.
//
// Every failure (network, timeout, non-2xx reply, unknown asset) is reported
// as common.ErrPriceUnavailable, wrapped with the cause.
package prices

import "context"

// Oracle returns spot prices in a reference currency.
type Oracle interface {
	// SpotPrice returns the price of one asset.
	SpotPrice(ctx context.Context, assetID, currency string) (float64, error)

	// SpotPrices returns the prices of several assets in one call. Assets the
	// source does not know are absent from the map.
	SpotPrices(ctx context.Context, assetIDs []string, currency string) (map[string]float64, error)
}

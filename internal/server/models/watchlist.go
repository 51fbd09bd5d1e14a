package models

import "time"

type WatchlistEntry struct {
	CryptoID string    `json:"cryptoId" bson:"cryptoId"`
	AddedAt  time.Time `json:"addedAt" bson:"addedAt"`
}

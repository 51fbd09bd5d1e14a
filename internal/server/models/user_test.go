package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUser_CloneIsDeep(t *testing.T) {
	u := &User{
		ID:        "u-1",
		Watchlist: []WatchlistEntry{{CryptoID: "bitcoin"}},
		Portfolio: []Holding{{CryptoID: "ethereum", Amount: 1}},
	}

	c := u.Clone()
	c.Watchlist[0].CryptoID = "dogecoin"
	c.Portfolio = append(c.Portfolio, Holding{CryptoID: "solana"})

	assert.Equal(t, "bitcoin", u.Watchlist[0].CryptoID)
	assert.Len(t, u.Portfolio, 1)
}

func TestUser_Profile(t *testing.T) {
	now := time.Now()
	u := &User{ID: "u-1", Name: "Ada Lovelace", Email: "ada@example.com", PasswordHash: "x", CreatedAt: now}

	assert.Equal(t, Profile{ID: "u-1", Name: "Ada Lovelace", Email: "ada@example.com", CreatedAt: now}, u.Profile())
}

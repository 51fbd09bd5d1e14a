// Package common defines shared constants and sentinel errors used across
// client and server layers of Krypton. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors.
	ErrInvalidInput = errors.New("invalid input")

	// Uniqueness violations.
	ErrDuplicateIdentity = errors.New("user already exists")
	ErrDuplicateEntry    = errors.New("already in watchlist")

	// Auth errors.
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// External dependency errors. ErrPriceUnavailable is never surfaced to
	// API callers; ErrMarketDataUnavailable becomes a 500.
	ErrPriceUnavailable      = errors.New("price unavailable")
	ErrMarketDataUnavailable = errors.New("market data unavailable")
)

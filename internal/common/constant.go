// Package common contains shared constants and sentinel errors used across
// Krypton components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the authorization scheme expected in AuthorizationHeaderName.
const BearerScheme = "Bearer"

// DefaultReferenceCurrency is used when neither the request nor the
// configuration names a currency.
const DefaultReferenceCurrency = "usd"

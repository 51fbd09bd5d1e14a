// Package client talks to the Krypton REST API on behalf of the CLI.
//
// The Client interface is the API contract; HTTPClient implements it over
// net/http and keeps the bearer token returned by Register or Login for the
// identity-scoped calls.
//
// # Error Handling
//
// Transport failures are reported as ErrUnavailable, 401 replies as
// ErrUnauthorized (wrapped in an *APIError carrying the server message), and
// other non-2xx replies as *APIError.
package client

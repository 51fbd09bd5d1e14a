// Package cli provides the interactive Krypton command-line client.
//
// It wires configuration and the REST client into a small REPL. Typical
// flow: register or login, then inspect and change the watchlist and the
// portfolio.
//
// Commands:
//   - register / login / logout
//   - profile
//   - watchlist, watch <id>, unwatch <id>
//   - portfolio, summary, buy <id> <amount>, sell <id>
//
// Missing arguments are prompted for. Passwords are read without echo.
package cli

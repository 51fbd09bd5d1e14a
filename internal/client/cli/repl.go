package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Profile(ctx context.Context) error
	Watchlist(ctx context.Context) error
	Watch(ctx context.Context, args []string) error
	Unwatch(ctx context.Context, args []string) error
	Portfolio(ctx context.Context) error
	Summary(ctx context.Context) error
	Buy(ctx context.Context, args []string) error
	Sell(ctx context.Context, args []string) error
}

// runREPL reads commands line by line from reader and dispatches them to a.
// It returns on EOF or when the user types "exit" or "quit". Command errors
// are printed and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "krypton %s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, "Available commands: profile, watchlist, watch <id>, unwatch <id>, portfolio, summary, buy <id> <amount>, sell <id>, logout, exit")
			} else {
				fmt.Fprintln(w, "Available commands: register, login, exit")
			}
		case "register":
			cmdErr = a.Register(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "profile":
			cmdErr = a.Profile(ctx)
		case "watchlist", "wl":
			cmdErr = a.Watchlist(ctx)
		case "watch":
			cmdErr = a.Watch(ctx, args)
		case "unwatch":
			cmdErr = a.Unwatch(ctx, args)
		case "portfolio", "pf":
			cmdErr = a.Portfolio(ctx)
		case "summary":
			cmdErr = a.Summary(ctx)
		case "buy":
			cmdErr = a.Buy(ctx, args)
		case "sell":
			cmdErr = a.Sell(ctx, args)
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}

		if cmdErr != nil {
			fmt.Fprintln(w, "error:", cmdErr)
		}
	}
}

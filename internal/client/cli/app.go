package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/dmitrijs2005/krypton/internal/client/client"
	"github.com/dmitrijs2005/krypton/internal/client/config"
)

// App is the interactive client: it owns the API client, the input reader
// and the output writer used by every command.
type App struct {
	config   *config.Config
	api      client.Client
	reader   *bufio.Reader
	out      io.Writer
	style    string
	currency string
	email    string
}

// NewApp creates an App talking to the configured server over HTTP.
func NewApp(cfg *config.Config) (*App, error) {
	return &App{
		config:   cfg,
		api:      client.NewHTTPClient(cfg.ServerURL, cfg.RequestTimeout),
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		style:    resolveStyle(cfg.Style, term.IsTerminal(int(os.Stdout.Fd()))),
		currency: "usd",
	}, nil
}

// resolveStyle maps the configured style to a glamour standard style.
func resolveStyle(style string, tty bool) string {
	if style != "" && style != "auto" {
		return style
	}
	if tty {
		return "dark"
	}
	return "notty"
}

func (a *App) isLoggedIn() bool {
	return a.api.LoggedIn()
}

func (a *App) status() string {
	if a.isLoggedIn() {
		return "[" + a.email + "]"
	}
	return "[guest]"
}

// Run checks server availability and starts the REPL. It returns when the
// user exits or input ends.
func (a *App) Run(ctx context.Context) {
	if err := a.api.Health(ctx); err != nil {
		a.printf("warning: server %s is not reachable: %v\n", a.config.ServerURL, err)
	}
	a.printf("Type \"help\" to list commands.\n")
	runREPL(ctx, a, a.status, a.reader, a.out)
}

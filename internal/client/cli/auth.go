package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/krypton/internal/common"
)

var errEmptyField = errors.New("value must not be empty")

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) ask(prompt string) (string, error) {
	s, err := GetSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%s: %w", strings.ToLower(prompt), errEmptyField)
	}
	return s, nil
}

func (a *App) credentials() (string, string, error) {
	email, err := a.ask("Email")
	if err != nil {
		return "", "", err
	}
	pw, err := GetPassword(a.out)
	if err != nil {
		return "", "", err
	}
	defer common.WipeByteArray(pw)
	if len(pw) == 0 {
		return "", "", fmt.Errorf("password: %w", errEmptyField)
	}
	return email, string(pw), nil
}

// Register creates an account and logs in with it.
func (a *App) Register(ctx context.Context) error {
	first, err := a.ask("First name")
	if err != nil {
		return err
	}
	last, err := a.ask("Last name")
	if err != nil {
		return err
	}
	email, pw, err := a.credentials()
	if err != nil {
		return err
	}

	if _, err := a.api.Register(ctx, first, last, email, pw); err != nil {
		return err
	}
	a.email = email
	a.printf("Registered and logged in as %s\n", email)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, pw, err := a.credentials()
	if err != nil {
		return err
	}

	if _, err := a.api.Login(ctx, email, pw); err != nil {
		return err
	}
	a.email = email
	a.printf("Logged in as %s\n", email)
	return nil
}

// Logout drops the session token. The server keeps no session state.
func (a *App) Logout(_ context.Context) error {
	a.api.Logout()
	a.email = ""
	a.printf("Logged out\n")
	return nil
}

func (a *App) Profile(ctx context.Context) error {
	p, err := a.api.Profile(ctx)
	if err != nil {
		return err
	}
	a.printf("ID:      %s\nName:    %s\nEmail:   %s\nCreated: %s\n",
		p.ID, p.Name, p.Email, p.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type authReply struct {
	UserID  string `json:"userId"`
	Token   string `json:"token"`
	Message string `json:"message"`
}

type errorReply struct {
	Error string `json:"error"`
}

func (c *HTTPClient) Register(ctx context.Context, firstName, lastName, email, password string) (string, error) {
	req := map[string]string{
		"firstName": firstName,
		"lastName":  lastName,
		"email":     email,
		"password":  password,
	}
	var reply authReply
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", false, req, &reply); err != nil {
		return "", err
	}
	c.setToken(reply.Token)
	return reply.UserID, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (string, error) {
	req := map[string]string{"email": email, "password": password}
	var reply authReply
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", false, req, &reply); err != nil {
		return "", err
	}
	c.setToken(reply.Token)
	return reply.UserID, nil
}

func (c *HTTPClient) LoggedIn() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

func (c *HTTPClient) Logout() { c.setToken("") }

func (c *HTTPClient) Profile(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.data(ctx, http.MethodGet, "/api/user/profile", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) Watchlist(ctx context.Context) ([]WatchlistEntry, error) {
	var out []WatchlistEntry
	err := c.data(ctx, http.MethodGet, "/api/user/watchlist", nil, &out)
	return out, err
}

func (c *HTTPClient) Watch(ctx context.Context, cryptoID string) ([]WatchlistEntry, error) {
	var out []WatchlistEntry
	err := c.data(ctx, http.MethodPost, "/api/user/watchlist", map[string]string{"cryptoId": cryptoID}, &out)
	return out, err
}

func (c *HTTPClient) Unwatch(ctx context.Context, cryptoID string) ([]WatchlistEntry, error) {
	var out []WatchlistEntry
	err := c.data(ctx, http.MethodDelete, "/api/user/watchlist/"+url.PathEscape(cryptoID), nil, &out)
	return out, err
}

func (c *HTTPClient) Portfolio(ctx context.Context) ([]Holding, error) {
	var out []Holding
	err := c.data(ctx, http.MethodGet, "/api/user/portfolio", nil, &out)
	return out, err
}

func (c *HTTPClient) Summary(ctx context.Context) (*Summary, error) {
	var s Summary
	if err := c.data(ctx, http.MethodGet, "/api/user/portfolio/summary", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) Buy(ctx context.Context, cryptoID string, amount float64) ([]Holding, error) {
	var out []Holding
	body := map[string]any{"cryptoId": cryptoID, "amount": amount}
	err := c.data(ctx, http.MethodPost, "/api/user/portfolio", body, &out)
	return out, err
}

func (c *HTTPClient) Sell(ctx context.Context, cryptoID string) ([]Holding, error) {
	var out []Holding
	err := c.data(ctx, http.MethodDelete, "/api/user/portfolio/"+url.PathEscape(cryptoID), nil, &out)
	return out, err
}

func (c *HTTPClient) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", false, nil, nil)
}

func (c *HTTPClient) setToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// data calls an identity-scoped endpoint and decodes its "data" field.
func (c *HTTPClient) data(ctx context.Context, method, path string, body, out any) error {
	reply := struct {
		Data any `json:"data"`
	}{Data: out}
	return c.do(ctx, method, path, true, body, &reply)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, authenticated bool, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		c.mu.RLock()
		token := c.token
		c.mu.RUnlock()
		if token == "" {
			return ErrNotLoggedIn
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e errorReply
		_ = json.NewDecoder(resp.Body).Decode(&e)
		apiErr := &APIError{Status: resp.StatusCode, Message: e.Error}
		if resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %w", ErrUnauthorized, apiErr)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("cannot decode reply: %w", err)
	}
	return nil
}

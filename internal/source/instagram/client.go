package instagram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ebreen/luffe/internal/config"
	"github.com/ebreen/luffe/internal/services"
	"github.com/ebreen/luffe/internal/source"
)

const defaultHTTPTimeout = 15 * time.Second

// Client talks to the Instagram private API with a session token.
type Client struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient *http.Client
}

var _ source.Client = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates an Instagram client from configuration.
func New(cfg config.Instagram, opts ...Option) (*Client, error) {
	token := strings.TrimSpace(cfg.SessionToken)
	if token == "" {
		return nil, errors.New("instagram session token required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("instagram base url required")
	}
	client := &Client{
		baseURL:    baseURL,
		token:      token,
		userAgent:  strings.TrimSpace(cfg.UserAgent),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, operation string) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransientSource, "instagram", operation, "request failed", err)
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		drainAndClose(resp)
		return nil, services.Wrap(services.ErrAuth, "instagram", operation, fmt.Sprintf("status %d", resp.StatusCode), nil)
	case resp.StatusCode >= 500:
		drainAndClose(resp)
		return nil, services.Wrap(services.ErrTransientSource, "instagram", operation, fmt.Sprintf("status %d", resp.StatusCode), nil)
	}
	return resp, nil
}

func drainAndClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}

// Package registry wraps the external main-project service: service-account
// authentication and the duplicate-check endpoint used by reconciliation.
package registry

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// Site is one already-accepted site as known to the registry.
type Site struct {
	ID     string `json:"id"`
	URL    string `json:"site_url"`
	Status string `json:"status"`
}

// DuplicateResult classifies a submitted domain set against the registry.
type DuplicateResult struct {
	ExistingDomains []string `json:"existingDomains"`
	NewDomains      []string `json:"newDomains"`
	ExistingSites   []Site   `json:"existingSites"`
}

// SiteFor returns the existing-sites entry for a domain, if any.
func (r *DuplicateResult) SiteFor(domain string) (Site, bool) {
	for _, s := range r.ExistingSites {
		if s.URL == domain {
			return s, true
		}
	}
	return Site{}, false
}

// Config holds connection settings for the registry client.
type Config struct {
	BaseURL  string
	Email    string
	Password string
	Timeout  time.Duration
}

// Client calls the external registry. It caches the bearer token for the
// session and re-authenticates once when the registry reports it expired.
// The client mutates no local state beyond that token.
type Client struct {
	client   *resty.Client
	email    string
	password string

	mu    sync.Mutex
	token string
}

// NewClient creates a registry client.
func NewClient(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	client := resty.New()
	client.SetBaseURL(cfg.BaseURL)
	client.SetHeader("Content-Type", "application/json")
	client.SetTimeout(timeout)

	return &Client{
		client:   client,
		email:    cfg.Email,
		password: cfg.Password,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type checkDuplicatesRequest struct {
	Domains []string `json:"domains"`
}

type checkDuplicatesResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    DuplicateResult `json:"data"`
}

// Login authenticates with the service-account credentials and caches the
// returned token for subsequent calls.
func (c *Client) Login(ctx context.Context) error {
	var body loginResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(loginRequest{Email: c.email, Password: c.password}).
		SetResult(&body).
		Post("/api/auth/login")
	if err != nil {
		return fmt.Errorf("%w: login: %v", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode() == http.StatusOK && body.Token != "":
		c.mu.Lock()
		c.token = body.Token
		c.mu.Unlock()
		return nil
	case resp.StatusCode() >= http.StatusInternalServerError:
		return fmt.Errorf("%w: login returned %d", ErrUnavailable, resp.StatusCode())
	default:
		return fmt.Errorf("%w: login returned %d", ErrAuthentication, resp.StatusCode())
	}
}

// CheckDuplicates submits normalized domains to the duplicate-check endpoint
// and returns the registry's classification. Input domains must already be
// normalized. The call is read-only on the registry side and idempotent for
// a given input set. An empty input never issues a network call.
func (c *Client) CheckDuplicates(ctx context.Context, domains []string) (*DuplicateResult, error) {
	if len(domains) == 0 {
		return &DuplicateResult{}, nil
	}

	if c.currentToken() == "" {
		if err := c.Login(ctx); err != nil {
			return nil, err
		}
	}

	result, status, err := c.postCheck(ctx, domains)
	if status == http.StatusUnauthorized {
		// Token expired mid-session. Re-authenticate once.
		if err := c.Login(ctx); err != nil {
			return nil, err
		}
		result, status, err = c.postCheck(ctx, domains)
		if status == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: token rejected after re-login", ErrAuthentication)
		}
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) postCheck(ctx context.Context, domains []string) (*DuplicateResult, int, error) {
	var body checkDuplicatesResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(c.currentToken()).
		SetBody(checkDuplicatesRequest{Domains: domains}).
		SetResult(&body).
		Post("/check-duplicates")
	if err != nil {
		return nil, 0, fmt.Errorf("%w: check-duplicates: %v", ErrUnavailable, err)
	}

	status := resp.StatusCode()
	switch {
	case status == http.StatusOK:
		if !body.Success {
			return nil, status, fmt.Errorf("%w: %s", ErrRejected, body.Message)
		}
		return &body.Data, status, nil
	case status == http.StatusUnauthorized:
		return nil, status, fmt.Errorf("%w: check-duplicates returned 401", ErrAuthentication)
	case status >= http.StatusInternalServerError:
		return nil, status, fmt.Errorf("%w: check-duplicates returned %d", ErrUnavailable, status)
	default:
		return nil, status, fmt.Errorf("%w: check-duplicates returned %d: %s", ErrRejected, status, body.Message)
	}
}

func (c *Client) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

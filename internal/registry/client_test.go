package registry

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestServer(t *testing.T, check http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.Email != "svc@example.com" || req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(loginResponse{Token: "test-token"})
	})
	mux.HandleFunc("/check-duplicates", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		check(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(baseURL string) *Client {
	return NewClient(&Config{
		BaseURL:  baseURL,
		Email:    "svc@example.com",
		Password: "secret",
		Timeout:  2 * time.Second,
	})
}

func TestCheckDuplicates(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req checkDuplicatesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if len(req.Domains) != 2 {
			t.Errorf("expected 2 domains, got %v", req.Domains)
		}
		json.NewEncoder(w).Encode(checkDuplicatesResponse{
			Success: true,
			Data: DuplicateResult{
				ExistingDomains: []string{"techcrunch.com"},
				NewDomains:      []string{"example.com"},
				ExistingSites:   []Site{{ID: "site-1", URL: "techcrunch.com", Status: "active"}},
			},
		})
	})

	c := newTestClient(srv.URL)
	result, err := c.CheckDuplicates(context.Background(), []string{"techcrunch.com", "example.com"})
	if err != nil {
		t.Fatalf("CheckDuplicates failed: %v", err)
	}

	if len(result.ExistingDomains) != 1 || result.ExistingDomains[0] != "techcrunch.com" {
		t.Errorf("unexpected existing domains: %v", result.ExistingDomains)
	}
	site, ok := result.SiteFor("techcrunch.com")
	if !ok || site.ID != "site-1" {
		t.Errorf("expected site-1 for techcrunch.com, got %v ok=%v", site, ok)
	}
	if _, ok := result.SiteFor("example.com"); ok {
		t.Error("example.com should have no existing site")
	}
}

func TestCheckDuplicatesEmptySet(t *testing.T) {
	var calls int32
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	c := newTestClient(srv.URL)
	result, err := c.CheckDuplicates(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.ExistingDomains) != 0 || len(result.NewDomains) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Error("empty domain set must not issue a network call")
	}
}

func TestCheckDuplicatesReloginOnExpiredToken(t *testing.T) {
	var checkCalls int32
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		// First call sees a stale token, later calls succeed.
		if atomic.AddInt32(&checkCalls, 1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(checkDuplicatesResponse{Success: true})
	})

	c := newTestClient(srv.URL)
	c.token = "stale-token"

	if _, err := c.CheckDuplicates(context.Background(), []string{"example.com"}); err != nil {
		t.Fatalf("expected re-login to recover, got: %v", err)
	}
	if got := atomic.LoadInt32(&checkCalls); got != 2 {
		t.Errorf("expected 2 check calls (stale + retry), got %d", got)
	}
}

func TestCheckDuplicatesServerError(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	c := newTestClient(srv.URL)
	_, err := c.CheckDuplicates(context.Background(), []string{"example.com"})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestCheckDuplicatesRejected(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(checkDuplicatesResponse{Success: false, Message: "bad payload"})
	})

	c := newTestClient(srv.URL)
	_, err := c.CheckDuplicates(context.Background(), []string{"example.com"})
	if !errors.Is(err, ErrRejected) {
		t.Errorf("expected ErrRejected, got %v", err)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	c := NewClient(&Config{
		BaseURL:  srv.URL,
		Email:    "svc@example.com",
		Password: "wrong",
		Timeout:  2 * time.Second,
	})
	if err := c.Login(context.Background()); !errors.Is(err, ErrAuthentication) {
		t.Errorf("expected ErrAuthentication, got %v", err)
	}
}

func TestCheckDuplicatesUnreachable(t *testing.T) {
	c := NewClient(&Config{
		BaseURL:  "http://127.0.0.1:1",
		Email:    "svc@example.com",
		Password: "secret",
		Timeout:  500 * time.Millisecond,
	})
	_, err := c.CheckDuplicates(context.Background(), []string{"example.com"})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

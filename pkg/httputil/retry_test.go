package httputil

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func testConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   3,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     100 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestRetryClientRetriesOnServerErrors(t *testing.T) {
	for _, status := range []int{
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
	} {
		var attempts int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&attempts, 1) < 2 {
				w.WriteHeader(status)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))

		client := NewRetryClient(server.Client(), testConfig())
		req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("status %d: unexpected error: %v", status, err)
		}
		_ = resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("status %d: final status = %d, want 200", status, resp.StatusCode)
		}
		if atomic.LoadInt32(&attempts) != 2 {
			t.Errorf("status %d: attempts = %d, want 2", status, attempts)
		}
		server.Close()
	}
}

func TestRetryClientDoesNotRetryClientErrors(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound} {
		var attempts int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&attempts, 1)
			w.WriteHeader(status)
		}))

		client := NewRetryClient(server.Client(), testConfig())
		req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("status %d: unexpected error: %v", status, err)
		}
		_ = resp.Body.Close()

		if atomic.LoadInt32(&attempts) != 1 {
			t.Errorf("status %d: attempts = %d, want 1 (no retry)", status, attempts)
		}
		server.Close()
	}
}

func TestRetryClientHonorsRetryAfter(t *testing.T) {
	var attempts int32
	var gap time.Duration
	var last time.Time

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		if !last.IsZero() {
			gap = now.Sub(last)
		}
		last = now

		if atomic.AddInt32(&attempts, 1) < 2 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewRetryClient(server.Client(), testConfig())
	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = resp.Body.Close()

	if gap < 900*time.Millisecond {
		t.Errorf("retry gap = %v, want at least the 1s Retry-After", gap)
	}
}

func TestRetryClientRespectsMaxRetries(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.MaxRetries = 2
	client := NewRetryClient(server.Client(), cfg)

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = resp.Body.Close()

	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("attempts = %d, want 1 initial + 2 retries", got)
	}
}

func TestRetryClientStopsWhenContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.InitialDelay = 5 * time.Second
	client := NewRetryClient(server.Client(), cfg)

	ctx, cancel := context.WithCancel(context.Background())
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := client.Do(req)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Do() error = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Error("Do() should return promptly after cancellation, not wait out the backoff")
	}
}

func TestRetryClientResendsRequestBody(t *testing.T) {
	var attempts int32
	var bodies []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(body))
		if atomic.AddInt32(&attempts, 1) < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewRetryClient(server.Client(), testConfig())

	content := "request body"
	req, _ := http.NewRequest(http.MethodPost, server.URL, strings.NewReader(content))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(content)), nil
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = resp.Body.Close()

	for i, body := range bodies {
		if body != content {
			t.Errorf("attempt %d body = %q, want %q", i+1, body, content)
		}
	}
}

func TestNewRetryClientAppliesDefaults(t *testing.T) {
	client := NewRetryClient(nil, RetryConfig{})

	if client.client != http.DefaultClient {
		t.Error("expected http.DefaultClient when nil is passed")
	}
	if client.config.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", client.config.MaxRetries)
	}
	if client.config.InitialDelay != 500*time.Millisecond {
		t.Errorf("InitialDelay = %v, want 500ms", client.config.InitialDelay)
	}
	if client.config.Multiplier != 2.0 {
		t.Errorf("Multiplier = %f, want 2.0", client.config.Multiplier)
	}
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func getReady(t *testing.T, h http.Handler) (*httptest.ResponseRecorder, readyResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ready", nil))
	var resp readyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode ready response: %v", err)
	}
	return rec, resp
}

func TestReady_NoPingers(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, &fakeIngester{}, &fakeAnswerer{}, nil, nil)

	rec, resp := getReady(t, h)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !resp.Ready {
		t.Error("expected ready=true with no pingers")
	}
}

func TestReady_AllHealthy(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, &fakeIngester{}, &fakeAnswerer{}, nil, func(cfg *Config) {
		cfg.Pingers = []Pinger{
			&fakePinger{name: "qdrant"},
			&fakePinger{name: "ollama"},
		}
	})

	rec, resp := getReady(t, h)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !resp.Ready || len(resp.Checks) != 2 {
		t.Errorf("response = %+v", resp)
	}
}

func TestReady_FailingDependency(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, &fakeIngester{}, &fakeAnswerer{}, nil, func(cfg *Config) {
		cfg.Pingers = []Pinger{
			&fakePinger{name: "qdrant"},
			&fakePinger{name: "ollama", err: errors.New("connection refused")},
		}
	})

	rec, resp := getReady(t, h)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if resp.Ready {
		t.Error("expected ready=false")
	}
	if len(resp.Checks) != 2 {
		t.Fatalf("expected 2 checks, got %d", len(resp.Checks))
	}
	if resp.Checks[0].Name != "qdrant" || !resp.Checks[0].OK {
		t.Errorf("check 0 = %+v", resp.Checks[0])
	}
	if resp.Checks[1].Name != "ollama" || resp.Checks[1].OK || resp.Checks[1].Error == "" {
		t.Errorf("check 1 = %+v", resp.Checks[1])
	}
}

func TestMultiPinger_FirstError(t *testing.T) {
	t.Parallel()

	mp := NewMultiPinger(
		&fakePinger{name: "a"},
		&fakePinger{name: "b", err: errors.New("down")},
		&fakePinger{name: "c", err: errors.New("also down")},
	)

	err := mp.Ping(context.Background())
	if err == nil {
		t.Fatal("expected error from failing pinger")
	}
	if got := err.Error(); got != "b: down" {
		t.Errorf("error = %q, want first failure", got)
	}
}

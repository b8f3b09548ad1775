package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAuth_DisabledWhenNoKey(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, &fakeIngester{}, &fakeAnswerer{}, nil, nil)

	rec := postQuery(t, h, `{"question":"anything"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected open access with no API key, got %d", rec.Code)
	}
}

func TestAuth_TokenRequired(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, &fakeIngester{}, &fakeAnswerer{}, nil, func(cfg *Config) {
		cfg.APIKey = "secret-token"
	})

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{name: "missing header", authHeader: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", authHeader: "Basic secret-token", wantStatus: http.StatusUnauthorized},
		{name: "wrong token", authHeader: "Bearer wrong", wantStatus: http.StatusUnauthorized},
		{name: "valid token", authHeader: "Bearer secret-token", wantStatus: http.StatusOK},
		{name: "case-insensitive scheme", authHeader: "bearer secret-token", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if rec.Code == http.StatusUnauthorized && rec.Header().Get("WWW-Authenticate") == "" {
				t.Error("401 response missing WWW-Authenticate challenge")
			}
		})
	}
}

func TestAuth_UnprotectedEndpointsStayOpen(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, &fakeIngester{}, &fakeAnswerer{}, nil, func(cfg *Config) {
		cfg.APIKey = "secret-token"
	})

	for _, path := range []string{"/api/health", "/api/ready", "/metrics", "/"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s without token: status = %d", path, rec.Code)
		}
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func corsHandler(cfg CORSConfig) http.Handler {
	return CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCORS_OriginAllowlist(t *testing.T) {
	cfg := CORSConfig{
		AllowedOrigins: []string{"https://app.gigfeed.example", "http://localhost:3000"},
	}

	tests := []struct {
		name       string
		origin     string
		wantStatus int
		wantOrigin string
	}{
		{"listed origin allowed", "https://app.gigfeed.example", http.StatusOK, "https://app.gigfeed.example"},
		{"localhost dev origin allowed", "http://localhost:3000", http.StatusOK, "http://localhost:3000"},
		{"unlisted origin rejected", "https://evil.example", http.StatusForbidden, ""},
		{"no origin passes through", "", http.StatusOK, ""},
		{"subdomain of listed origin rejected", "https://sub.app.gigfeed.example", http.StatusForbidden, ""},
	}

	handler := corsHandler(cfg)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/events", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
		})
	}
}

func TestCORS_DisabledWithoutOrigins(t *testing.T) {
	handler := corsHandler(CORSConfig{})

	req := httptest.NewRequest(http.MethodGet, "/recommendations", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 when no origins configured", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin = %q, want empty when CORS disabled", got)
	}
}

func TestCORS_Preflight(t *testing.T) {
	handler := corsHandler(CORSConfig{
		AllowedOrigins:   []string{"https://app.gigfeed.example"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	req := httptest.NewRequest(http.MethodOptions, "/admin/events", nil)
	req.Header.Set("Origin", "https://app.gigfeed.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Allow-Credentials = %q, want true", got)
	}
	if got := rec.Header().Get("Access-Control-Max-Age"); got != "300" {
		t.Errorf("Max-Age = %q, want 300", got)
	}
	methods := rec.Header().Get("Access-Control-Allow-Methods")
	if !strings.Contains(methods, http.MethodDelete) {
		t.Errorf("Allow-Methods = %q, missing DELETE", methods)
	}
}

func TestCORS_DefaultHeadersIncludeAdminToken(t *testing.T) {
	handler := corsHandler(CORSConfig{
		AllowedOrigins: []string{"https://app.gigfeed.example"},
	})

	req := httptest.NewRequest(http.MethodOptions, "/admin/events", nil)
	req.Header.Set("Origin", "https://app.gigfeed.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	headers := rec.Header().Get("Access-Control-Allow-Headers")
	for _, want := range []string{"X-Admin-Token", RequestIDHeader, "Authorization"} {
		if !strings.Contains(headers, want) {
			t.Errorf("Allow-Headers = %q, missing %s", headers, want)
		}
	}
}

func TestCORS_ExplicitHeadersOverrideDefaults(t *testing.T) {
	handler := corsHandler(CORSConfig{
		AllowedOrigins: []string{"https://app.gigfeed.example"},
		AllowedMethods: []string{http.MethodGet},
		AllowedHeaders: []string{"Content-Type"},
	})

	req := httptest.NewRequest(http.MethodOptions, "/events", nil)
	req.Header.Set("Origin", "https://app.gigfeed.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != http.MethodGet {
		t.Errorf("Allow-Methods = %q, want GET only", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type" {
		t.Errorf("Allow-Headers = %q, want Content-Type only", got)
	}
}

func TestCORS_VaryOrigin(t *testing.T) {
	handler := corsHandler(CORSConfig{
		AllowedOrigins: []string{"https://app.gigfeed.example"},
	})

	t.Run("set for cross-origin requests", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		req.Header.Set("Origin", "https://app.gigfeed.example")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Vary"); got != "Origin" {
			t.Errorf("Vary = %q, want Origin", got)
		}
	})

	t.Run("set even on rejected origins", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Vary"); got != "Origin" {
			t.Errorf("Vary = %q, want Origin", got)
		}
	})

	t.Run("absent for same-origin requests", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Vary"); got != "" {
			t.Errorf("Vary = %q, want empty", got)
		}
	})
}

func TestCORS_WhitespaceOriginsTrimmed(t *testing.T) {
	handler := corsHandler(CORSConfig{
		AllowedOrigins: []string{"  https://app.gigfeed.example  ", "", "   "},
	})

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	req.Header.Set("Origin", "https://app.gigfeed.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for trimmed origin match", rec.Code)
	}
}

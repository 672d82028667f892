package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestRequestID(t *testing.T) {
	var ctxID string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name      string
		inbound   string
		wantEcho  bool // response header equals the inbound value
		wantFresh bool // a new UUID was generated
	}{
		{"generates when absent", "", false, true},
		{"echoes well-formed id", "client-retry-7f3a", true, false},
		{"echoes uuid", uuid.New().String(), true, false},
		{"regenerates oversized id", strings.Repeat("x", 200), false, true},
		{"regenerates id with newline", "abc\ndef", false, true},
		{"regenerates id with control char", "abc\x00def", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/recommendations", nil)
			if tt.inbound != "" {
				req.Header.Set(RequestIDHeader, tt.inbound)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			got := rec.Header().Get(RequestIDHeader)
			if got == "" {
				t.Fatal("response missing request ID header")
			}
			if got != ctxID {
				t.Errorf("context ID %q != response header %q", ctxID, got)
			}
			if tt.wantEcho && got != tt.inbound {
				t.Errorf("expected inbound ID %q echoed, got %q", tt.inbound, got)
			}
			if tt.wantFresh {
				if got == tt.inbound {
					t.Error("invalid inbound ID was not replaced")
				}
				if _, err := uuid.Parse(got); err != nil {
					t.Errorf("generated ID %q is not a UUID: %v", got, err)
				}
			}
		})
	}
}

func TestGetRequestID_MissingFromContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetRequestID(req.Context()); got != "" {
		t.Errorf("GetRequestID on bare context = %q, want empty", got)
	}
}

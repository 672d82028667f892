package api

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/onnwee/gigfeed/internal/auth"
	"github.com/onnwee/gigfeed/internal/middleware"
)

// AuthHandlers issues JWTs for the admin surface and profile endpoints.
type AuthHandlers struct {
	jwt *auth.JWTService

	// adminToken gates admin role issuance. Checked against the
	// X-Admin-Token header with constant-time comparison. When empty,
	// only viewer tokens can be issued.
	adminToken string
}

// NewAuthHandlers creates a new AuthHandlers instance.
func NewAuthHandlers(jwt *auth.JWTService, adminToken string) *AuthHandlers {
	return &AuthHandlers{jwt: jwt, adminToken: adminToken}
}

// TokenRequest represents the request body for token issuance.
type TokenRequest struct {
	Username string `json:"username"`
	Role     string `json:"role,omitempty"`
}

// TokenResponse represents the issued token.
type TokenResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// IssueToken handles POST /auth/token.
// Viewer tokens are issued to any username. Admin tokens additionally
// require the X-Admin-Token header to match the configured admin token.
func (h *AuthHandlers) IssueToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body")
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "username is required")
		return
	}

	role := req.Role
	if role == "" {
		role = auth.RoleViewer
	}
	switch role {
	case auth.RoleViewer:
	case auth.RoleAdmin:
		header := r.Header.Get("X-Admin-Token")
		if h.adminToken == "" || subtle.ConstantTimeCompare([]byte(header), []byte(h.adminToken)) != 1 {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeForbidden)
			WriteError(w, ctx, http.StatusForbidden, ErrCodeForbidden, "Admin token required for admin role")
			return
		}
	default:
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "role must be viewer or admin")
		return
	}

	token, err := h.jwt.GenerateToken(username, role)
	if err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to issue token")
		return
	}

	WriteJSON(w, http.StatusOK, TokenResponse{Token: token, Role: role})
}

// bearerToken extracts the token from an Authorization: Bearer header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}

// RequireRole wraps a handler with JWT bearer authentication. The validated
// username is placed on the request context for the logging middleware.
// When role is auth.RoleAdmin, non-admin tokens are rejected with 403.
func RequireRole(jwt *auth.JWTService, role string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeAuthFailed)
			WriteError(w, ctx, http.StatusUnauthorized, ErrCodeAuthFailed, "Missing bearer token")
			return
		}

		claims, err := jwt.ValidateToken(token)
		if err != nil {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeAuthFailed)
			WriteError(w, ctx, http.StatusUnauthorized, ErrCodeAuthFailed, "Invalid or expired token")
			return
		}

		ctx := middleware.SetUsername(r.Context(), claims.Username)

		if role == auth.RoleAdmin && !claims.IsAdmin() {
			ctx = middleware.SetErrorCode(ctx, ErrCodeForbidden)
			WriteError(w, ctx, http.StatusForbidden, ErrCodeForbidden, "Admin role required")
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

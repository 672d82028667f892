// Package middleware provides HTTP middleware components for the API server.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// staticRoutes are the paths served verbatim; anything else gets
// collapsed to a route pattern before it becomes a metric label.
var staticRoutes = map[string]bool{
	"/":                true,
	"/recommendations": true,
	"/profiles":        true,
	"/events":          true,
	"/admin/events":    true,
	"/tag-options":     true,
	"/artist-options":  true,
	"/auth/token":      true,
	"/health":          true,
	"/ready":           true,
	"/metrics":         true,
}

// normalizePath maps a request path onto its route pattern, e.g.
// /events/123 becomes /events/{id}. Unknown paths pass through unchanged.
func normalizePath(path string) string {
	if staticRoutes[path] {
		return path
	}

	parts := strings.Split(path, "/")

	if strings.HasPrefix(path, "/profiles/") {
		switch {
		case len(parts) == 4 && parts[3] == "history":
			return "/profiles/{username}/history"
		case len(parts) == 3 && parts[2] != "":
			return "/profiles/{username}"
		}
	}

	if strings.HasPrefix(path, "/admin/events/") && len(parts) == 4 && parts[3] != "" {
		return "/admin/events/{id}"
	}

	if strings.HasPrefix(path, "/events/") && len(parts) == 3 && parts[2] != "" {
		return "/events/{id}"
	}

	return path
}

// metricsResponseWriter captures status code and bytes written.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode  int
	size        int64
	wroteHeader bool
}

func (mrw *metricsResponseWriter) WriteHeader(code int) {
	if mrw.wroteHeader {
		return
	}
	mrw.statusCode = code
	mrw.wroteHeader = true
	mrw.ResponseWriter.WriteHeader(code)
}

func (mrw *metricsResponseWriter) Write(b []byte) (int, error) {
	n, err := mrw.ResponseWriter.Write(b)
	mrw.size += int64(n)
	return n, err
}

// HTTPMetrics records duration, count, and response size per request.
// Health probes (/health, /ready) are skipped.
func HTTPMetrics(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" || r.URL.Path == "/ready" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			mrw := &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(mrw, r)

			metrics.ObserveHTTPRequest(
				r.Method,
				normalizePath(r.URL.Path),
				strconv.Itoa(mrw.statusCode),
				time.Since(start).Seconds(),
				mrw.size,
			)
		})
	}
}

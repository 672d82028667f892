// Package audit provides audit logging for ranking requests. Every
// recommendation response is summarized into a log record so operators can
// reconstruct what a user was shown, with which weights, and which results
// were random insertions.
package audit

import (
	"time"

	"github.com/onnwee/gigfeed/internal/recommend"
)

// RecommendationLog is a single persisted ranking-request record.
type RecommendationLog struct {
	ID          string
	Username    string
	Mode        string
	Weights     recommend.Weights
	Diversify   bool
	RandomEvery int
	RandomCount int
	Results     []recommend.ResultSummary
	CreatedAt   time.Time

	// Optional metadata
	RequestID string
}

// Entry represents the input for creating an audit record. The summary
// comes straight from the core; the request ID from the middleware context.
type Entry struct {
	Summary   recommend.Summary
	RequestID string
}

package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/onnwee/gigfeed/internal/tracing"
)

// Repository defines the interface for recommendation audit operations.
type Repository interface {
	// Record stores an audit record for a completed ranking request.
	// Returns the created record.
	Record(ctx context.Context, entry Entry) (*RecommendationLog, error)

	// QueryByUser retrieves audit records for a username, newest first.
	// Limit specifies the maximum number of entries to return (0 = no limit).
	QueryByUser(ctx context.Context, username string, limit int) ([]*RecommendationLog, error)
}

// InMemoryRepository is an in-memory implementation of Repository.
// Used for testing and development. Thread-safe via RWMutex.
type InMemoryRepository struct {
	mu   sync.RWMutex
	logs map[string]*RecommendationLog
	// Maintain insertion order for newest-first queries
	order []string
}

// NewInMemoryRepository creates a new in-memory audit repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		logs: make(map[string]*RecommendationLog),
	}
}

// Record stores an audit record for a completed ranking request.
func (r *InMemoryRepository) Record(_ context.Context, entry Entry) (*RecommendationLog, error) {
	log := fromEntry(entry)

	r.mu.Lock()
	r.logs[log.ID] = log
	r.order = append(r.order, log.ID)
	r.mu.Unlock()

	cp := *log
	return &cp, nil
}

// QueryByUser retrieves audit records for a username, newest first.
func (r *InMemoryRepository) QueryByUser(_ context.Context, username string, limit int) ([]*RecommendationLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []*RecommendationLog
	for i := len(r.order) - 1; i >= 0; i-- {
		log := r.logs[r.order[i]]
		if log.Username != username {
			continue
		}
		cp := *log
		results = append(results, &cp)
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results, nil
}

// fromEntry builds a persistable record from a core summary.
func fromEntry(entry Entry) *RecommendationLog {
	return &RecommendationLog{
		ID:          uuid.New().String(),
		Username:    entry.Summary.Username,
		Mode:        string(entry.Summary.Mode),
		Weights:     entry.Summary.Weights,
		Diversify:   entry.Summary.Diversify,
		RandomEvery: entry.Summary.RandomEvery,
		RandomCount: entry.Summary.RandomCount,
		Results:     entry.Summary.Results,
		CreatedAt:   time.Now().UTC(),
		RequestID:   entry.RequestID,
	}
}

// PostgresRepository implements Repository using PostgreSQL. Weights and
// result digests are stored as JSON payloads.
type PostgresRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *sql.DB, logger *slog.Logger) *PostgresRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRepository{db: db, logger: logger}
}

// Record stores an audit record for a completed ranking request.
func (r *PostgresRepository) Record(ctx context.Context, entry Entry) (_ *RecommendationLog, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "recommendation_audit", tracing.DBOperationInsert)
	defer func() { endSpan(err) }()

	log := fromEntry(entry)

	weights, err := json.Marshal(log.Weights)
	if err != nil {
		return nil, fmt.Errorf("failed to encode weights: %w", err)
	}
	results, err := json.Marshal(log.Results)
	if err != nil {
		return nil, fmt.Errorf("failed to encode results: %w", err)
	}

	query := `
		INSERT INTO recommendation_audit
			(id, username, mode, weights, diversify, random_every, random_count, results, request_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.db.ExecContext(ctx, query,
		log.ID, log.Username, log.Mode, weights, log.Diversify,
		log.RandomEvery, log.RandomCount, results, log.RequestID, log.CreatedAt)
	if err != nil {
		r.logger.Error("failed to record audit entry",
			slog.String("username", log.Username),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to record audit entry: %w", err)
	}

	cp := *log
	return &cp, nil
}

// QueryByUser retrieves audit records for a username, newest first.
func (r *PostgresRepository) QueryByUser(ctx context.Context, username string, limit int) (_ []*RecommendationLog, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "recommendation_audit", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	query := `
		SELECT id, username, mode, weights, diversify, random_every, random_count, results, request_id, created_at
		FROM recommendation_audit
		WHERE username = $1
		ORDER BY created_at DESC
	`
	args := []any{username}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.Warn("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var results []*RecommendationLog
	for rows.Next() {
		var log RecommendationLog
		var weights, resultsPayload []byte
		if err := rows.Scan(&log.ID, &log.Username, &log.Mode, &weights, &log.Diversify,
			&log.RandomEvery, &log.RandomCount, &resultsPayload, &log.RequestID, &log.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if err := json.Unmarshal(weights, &log.Weights); err != nil {
			// Unreadable weights leave the zero value; the record is still useful.
			r.logger.Warn("failed to decode audit weights",
				slog.String("id", log.ID),
				slog.String("error", err.Error()))
		}
		if err := json.Unmarshal(resultsPayload, &log.Results); err != nil {
			r.logger.Warn("failed to decode audit results",
				slog.String("id", log.ID),
				slog.String("error", err.Error()))
		}
		results = append(results, &log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit entries: %w", err)
	}
	return results, nil
}

var _ Repository = (*InMemoryRepository)(nil)
var _ Repository = (*PostgresRepository)(nil)

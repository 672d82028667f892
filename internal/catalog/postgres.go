package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/onnwee/gigfeed/internal/tracing"
)

// WeightOverrides reads scoring weight overrides from the recommender_config
// table. Keys mirror the calibration file fields (w_cbf, w_context,
// max_artist_boost, w_language). An empty table returns an empty map.
func WeightOverrides(ctx context.Context, db *sql.DB) (_ map[string]float64, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "recommender_config", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	rows, err := db.QueryContext(ctx, `SELECT key, value FROM recommender_config`)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommender config: %w", err)
	}
	defer rows.Close()

	overrides := make(map[string]float64)
	for rows.Next() {
		var key string
		var value float64
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan recommender config: %w", err)
		}
		overrides[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recommender config: %w", err)
	}
	return overrides, nil
}

// PostgresProfileRepository implements ProfileRepository using PostgreSQL.
type PostgresProfileRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresProfileRepository creates a new PostgresProfileRepository.
func NewPostgresProfileRepository(db *sql.DB, logger *slog.Logger) *PostgresProfileRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresProfileRepository{db: db, logger: logger}
}

// Save inserts or updates the profile keyed by username.
func (r *PostgresProfileRepository) Save(ctx context.Context, profile *UserProfile) (err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "user_profiles", tracing.DBOperationExec)
	defer func() { endSpan(err) }()

	p := *profile
	canonicalizeProfile(&p)

	query := `
		INSERT INTO user_profiles (username, city, tags, favorite_artists, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (username) DO UPDATE SET
			city = EXCLUDED.city,
			tags = EXCLUDED.tags,
			favorite_artists = EXCLUDED.favorite_artists,
			updated_at = NOW()
	`
	_, err = r.db.ExecContext(ctx, query,
		strings.ToLower(p.Username), p.City, EncodeTerms(p.Tags), EncodeTerms(p.FavoriteArtists))
	if err != nil {
		r.logger.Error("failed to save profile",
			slog.String("username", p.Username),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// GetByUsername retrieves a profile by username.
func (r *PostgresProfileRepository) GetByUsername(ctx context.Context, username string) (_ *UserProfile, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "user_profiles", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	query := `
		SELECT username, city, tags, favorite_artists, updated_at
		FROM user_profiles
		WHERE username = $1
	`
	var p UserProfile
	var tags, artists string
	err = r.db.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(username))).
		Scan(&p.Username, &p.City, &tags, &artists, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	// Persisted payloads may predate the JSON encoding; decode best-effort.
	p.Tags = DecodeTerms(tags)
	p.FavoriteArtists = DecodeTerms(artists)
	return &p, nil
}

// PostgresEventRepository implements EventRepository using PostgreSQL.
type PostgresEventRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresEventRepository creates a new PostgresEventRepository.
func NewPostgresEventRepository(db *sql.DB, logger *slog.Logger) *PostgresEventRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresEventRepository{db: db, logger: logger}
}

// Insert stores a new event, assigning a UUID when the ID is blank.
func (r *PostgresEventRepository) Insert(ctx context.Context, event *Event) (err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "events", tracing.DBOperationInsert)
	defer func() { endSpan(err) }()

	e := *event
	canonicalizeEvent(&e)
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	event.ID = e.ID

	query := `
		INSERT INTO events (id, title, city, date, language, tags, artists, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`
	_, err = r.db.ExecContext(ctx, query,
		e.ID, e.Title, e.City, e.RawDate, e.Language, EncodeTerms(e.Tags), EncodeTerms(e.Artists))
	if err != nil {
		r.logger.Error("failed to insert event",
			slog.String("event_id", e.ID),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// Update modifies an existing event.
func (r *PostgresEventRepository) Update(ctx context.Context, event *Event) (err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "events", tracing.DBOperationUpdate)
	defer func() { endSpan(err) }()

	e := *event
	canonicalizeEvent(&e)

	query := `
		UPDATE events
		SET title = $2, city = $3, date = $4, language = $5, tags = $6, artists = $7
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		e.ID, e.Title, e.City, e.RawDate, e.Language, EncodeTerms(e.Tags), EncodeTerms(e.Artists))
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrEventNotFound
	}
	return nil
}

// Delete removes an event by ID.
func (r *PostgresEventRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "events", tracing.DBOperationDelete)
	defer func() { endSpan(err) }()

	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrEventNotFound
	}
	return nil
}

// GetByID retrieves an event by its ID.
func (r *PostgresEventRepository) GetByID(ctx context.Context, id string) (_ *Event, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "events", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	query := `
		SELECT id, title, city, date, language, tags, artists
		FROM events
		WHERE id = $1
	`
	e, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return e, nil
}

// List returns all events ordered by creation time.
func (r *PostgresEventRepository) List(ctx context.Context) (_ []Event, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "events", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	query := `
		SELECT id, title, city, date, language, tags, artists
		FROM events
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.Warn("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var out []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return out, nil
}

// ArtistOptions returns the distinct artists across all events, sorted
// case-insensitively. Deduplication happens here rather than in SQL because
// artists live inside encoded term payloads.
func (r *PostgresEventRepository) ArtistOptions(ctx context.Context) (_ []string, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "events", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	rows, err := r.db.QueryContext(ctx, `SELECT artists FROM events`)
	if err != nil {
		return nil, fmt.Errorf("failed to query artists: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.Warn("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	seen := make(map[string]string)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan artists: %w", err)
		}
		for _, a := range DecodeTerms(payload) {
			key := strings.ToLower(a)
			if _, ok := seen[key]; !ok {
				seen[key] = a
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate artists: %w", err)
	}

	out := make([]string, 0, len(seen))
	for _, a := range seen {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanEvent.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*Event, error) {
	var e Event
	var tags, artists string
	if err := row.Scan(&e.ID, &e.Title, &e.City, &e.RawDate, &e.Language, &tags, &artists); err != nil {
		return nil, err
	}
	e.Tags = DecodeTerms(tags)
	e.Artists = DecodeTerms(artists)
	e.Date = ParseEventDate(e.RawDate)
	return &e, nil
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/onnwee/gigfeed/internal/api"
	"github.com/onnwee/gigfeed/internal/audit"
	"github.com/onnwee/gigfeed/internal/auth"
	"github.com/onnwee/gigfeed/internal/catalog"
	"github.com/onnwee/gigfeed/internal/config"
	"github.com/onnwee/gigfeed/internal/db"
	"github.com/onnwee/gigfeed/internal/health"
	"github.com/onnwee/gigfeed/internal/middleware"
	"github.com/onnwee/gigfeed/internal/recommend"
)

// app holds the fully wired HTTP surface of the service: repositories,
// handlers, rate limiters, and the middleware chain around them.
type app struct {
	handler  http.Handler
	cleanups []func()
}

// Close releases resources opened during construction (database and
// Redis connections), last-opened first.
func (a *app) Close() {
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		a.cleanups[i]()
	}
}

// newApp builds the complete request handler from configuration. With no
// database URL it runs on in-memory repositories seeded with the sample
// catalog; with no Redis address rate limit state is process-local.
func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{}

	weights, err := recommend.LoadCalibration(cfg.WeightsCalibrationPath)
	if err != nil {
		logger.Warn("weight calibration unavailable, using defaults", "error", err)
	}

	var (
		profileRepo catalog.ProfileRepository
		eventRepo   catalog.EventRepository
		auditRepo   audit.Repository
		dbChecker   api.HealthChecker
	)
	if cfg.DatabaseURL != "" {
		sqlDB, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.cleanups = append(a.cleanups, func() { sqlDB.Close() })

		profileRepo = catalog.NewPostgresProfileRepository(sqlDB, logger)
		eventRepo = catalog.NewPostgresEventRepository(sqlDB, logger)
		auditRepo = audit.NewPostgresRepository(sqlDB, logger)
		dbChecker = health.NewDBChecker(sqlDB)
		logger.Info("using postgres repositories")

		// Database overrides sit on top of the calibration file.
		if overrides, oerr := catalog.WeightOverrides(context.Background(), sqlDB); oerr != nil {
			logger.Warn("failed to load weight overrides from database", "error", oerr)
		} else if len(overrides) > 0 {
			weights = recommend.MergeOverrides(weights, overrides)
		}
	} else {
		profileRepo = catalog.NewInMemoryProfileRepository()
		memEvents := catalog.NewInMemoryEventRepository()
		if n, err := catalog.SeedEvents(context.Background(), memEvents); err != nil {
			logger.Warn("failed to seed sample events", "error", err)
		} else if n > 0 {
			logger.Info("seeded sample events", "count", n)
		}
		eventRepo = memEvents
		auditRepo = audit.NewInMemoryRepository()
		logger.Info("using in-memory repositories")
	}

	// Metrics registry shared by the middleware and the pipeline.
	registry := prometheus.NewRegistry()
	httpMetrics := middleware.NewMetrics()
	if err := httpMetrics.Register(registry); err != nil {
		return nil, fmt.Errorf("register http metrics: %w", err)
	}
	recMetrics := api.NewMetrics()
	if err := recMetrics.Register(registry); err != nil {
		return nil, fmt.Errorf("register recommendation metrics: %w", err)
	}

	// Rate limit state: Redis when configured (shared across replicas),
	// in-memory otherwise.
	var (
		rateStore    middleware.RateLimitStore
		redisChecker api.HealthChecker
	)
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		a.cleanups = append(a.cleanups, func() { client.Close() })
		rateStore = middleware.NewRedisRateLimitStore(client).
			WithLogger(logger).
			WithMetrics(httpMetrics)
		redisChecker = health.NewRedisChecker(client)
		logger.Info("using redis rate limit store", "addr", cfg.RedisAddr)
	} else {
		rateStore = middleware.NewInMemoryRateLimitStore()
	}

	jwtService := auth.NewJWTServiceWithRotation(cfg.JWTSecret, cfg.JWTPreviousSecret)

	healthHandlers := api.NewHealthHandlers(api.HealthHandlersConfig{
		DBChecker:      dbChecker,
		RedisChecker:   redisChecker,
		MetricsEnabled: true,
	})
	authHandlers := api.NewAuthHandlers(jwtService, cfg.AdminToken)
	profileHandlers := api.NewProfileHandlers(profileRepo, auditRepo)
	eventHandlers := api.NewEventHandlers(eventRepo)
	optionsHandlers := api.NewOptionsHandlers(eventRepo)
	recommendationHandlers := api.NewRecommendationHandlers(
		profileRepo, eventRepo, auditRepo, weights,
		api.RecommendationDefaults{
			Diversify:   cfg.DiversifyDefault,
			RandomEvery: cfg.RandomEveryDefault,
			RandomCount: cfg.RandomCountDefault,
		},
		recMetrics,
	)

	minuteLimit := func(rpm int) middleware.RateLimitConfig {
		return middleware.RateLimitConfig{RequestsPerWindow: rpm, WindowDuration: time.Minute}
	}
	recommendLimiter := middleware.RateLimiter(rateStore, minuteLimit(cfg.RateLimitRecommendRPM), middleware.UserKeyFunc(), httpMetrics)
	adminLimiter := middleware.RateLimiter(rateStore, minuteLimit(cfg.RateLimitAdminRPM), middleware.IPKeyFunc(), httpMetrics)
	globalLimiter := middleware.RateLimiter(rateStore, minuteLimit(cfg.RateLimitGlobalRPM), middleware.IPKeyFunc(), httpMetrics)

	mux := http.NewServeMux()

	mux.HandleFunc("/health", healthHandlers.Health)
	mux.HandleFunc("/ready", healthHandlers.Ready)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("/auth/token", authHandlers.IssueToken)

	mux.Handle("/recommendations", recommendLimiter(http.HandlerFunc(recommendationHandlers.Recommendations)))

	mux.HandleFunc("/profiles", profileHandlers.SaveProfile)
	mux.HandleFunc("/profiles/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/history") {
			profileHandlers.GetHistory(w, r)
			return
		}
		profileHandlers.GetProfile(w, r)
	})

	mux.HandleFunc("/events", eventHandlers.ListEvents)
	mux.HandleFunc("/events/", eventHandlers.GetEvent)

	mux.Handle("/admin/events", adminLimiter(api.RequireRole(jwtService, auth.RoleAdmin,
		http.HandlerFunc(eventHandlers.CreateEvent))))
	mux.Handle("/admin/events/", adminLimiter(api.RequireRole(jwtService, auth.RoleAdmin,
		http.HandlerFunc(eventHandlers.UpdateOrDeleteEvent))))

	mux.HandleFunc("/tag-options", optionsHandlers.TagOptions)
	mux.HandleFunc("/artist-options", optionsHandlers.ArtistOptions)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// Only handle exact root path, everything else returns 404
		if r.URL.Path != "/" {
			ctx := middleware.SetErrorCode(r.Context(), api.ErrCodeNotFound)
			api.WriteError(w, ctx, http.StatusNotFound, api.ErrCodeNotFound, "The requested resource was not found")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"service":"gigfeed-api","version":"0.1.0"}`)); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	})

	// Middleware chain: RequestID -> Tracing -> Logging -> HTTPMetrics ->
	// CORS -> global rate limit -> routes
	var handler http.Handler = mux
	handler = globalLimiter(handler)
	handler = middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowCredentials: true,
		MaxAge:           300,
	})(handler)
	handler = middleware.HTTPMetrics(httpMetrics)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Tracing("gigfeed-api")(handler)
	handler = middleware.RequestID(handler)

	a.handler = handler
	return a, nil
}

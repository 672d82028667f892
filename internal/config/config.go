// Package config provides configuration loading and validation for the API server.
// It uses koanf to merge environment variables with optional file overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration values for the API server.
type Config struct {
	// Server settings
	Port int    `koanf:"port"`
	Env  string `koanf:"env"`

	// Database. Empty means the server runs on in-memory repositories,
	// which is intended for development only.
	DatabaseURL string `koanf:"database_url"`

	// Redis. Empty disables the shared rate limit store and the Redis
	// readiness check.
	RedisAddr string `koanf:"redis_addr"`

	// JWT Authentication
	JWTSecret         string `koanf:"jwt_secret"`
	JWTPreviousSecret string `koanf:"jwt_previous_secret"`

	// AdminToken gates admin token issuance on /auth/token. Optional; when
	// empty, only viewer tokens can be issued.
	AdminToken string `koanf:"admin_token"`

	// CORS
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// Scoring weights calibration file (JSON). Empty uses built-in defaults.
	WeightsCalibrationPath string `koanf:"weights_calibration_path"`

	// Diversification defaults applied when the request omits them.
	DiversifyDefault   bool `koanf:"diversify_default"`
	RandomEveryDefault int  `koanf:"random_every_default"`
	RandomCountDefault int  `koanf:"random_count_default"`

	// Rate limits (requests per minute)
	RateLimitGlobalRPM    int `koanf:"rate_limit_global_rpm"`
	RateLimitRecommendRPM int `koanf:"rate_limit_recommend_rpm"`
	RateLimitAdminRPM     int `koanf:"rate_limit_admin_rpm"`

	// Distributed tracing (OTLP). Disabled unless explicitly enabled.
	TracingEnabled      bool    `koanf:"tracing_enabled"`
	TracingExporterType string  `koanf:"tracing_exporter_type"`
	TracingOTLPEndpoint string  `koanf:"tracing_otlp_endpoint"`
	TracingSamplingRate float64 `koanf:"tracing_sampling_rate"`
	TracingInsecure     bool    `koanf:"tracing_insecure"`
}

// Configuration validation errors.
var (
	ErrMissingJWTSecret    = errors.New("JWT_SECRET is required")
	ErrInvalidPort         = errors.New("PORT must be a valid integer")
	ErrInvalidRateLimit    = errors.New("rate limits must be > 0")
	ErrInvalidRandomKnob   = errors.New("diversification defaults must be >= 0")
	ErrInvalidSamplingRate = errors.New("TRACING_SAMPLING_RATE must be between 0 and 1")
)

// Default values for non-secret configuration.
const (
	DefaultPort                  = 8080
	DefaultEnv                   = "development"
	DefaultDiversify             = false
	DefaultRandomEvery           = 2
	DefaultRandomCount           = 1
	DefaultRateLimitGlobalRPM    = 100
	DefaultRateLimitRecommendRPM = 30
	DefaultRateLimitAdminRPM     = 10
	DefaultTracingExporterType   = "otlp-http"
	DefaultTracingSamplingRate   = 1.0
)

// Load reads configuration from environment variables and an optional config file.
// Environment variables take precedence over file values.
// Returns the loaded config and a slice of validation errors (empty if valid).
// If a config file path is provided and the file cannot be loaded, an error is returned.
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	var loadErrs []error

	// Load from YAML file first if provided (lower precedence)
	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	// Parse port from env, collecting error if invalid
	// Try GIGFEED_PORT first, then PORT for backward compatibility
	port, portErr := getEnvIntOrDefaultMulti([]string{"GIGFEED_PORT", "PORT"}, k.Int("port"), DefaultPort)
	if portErr != nil {
		loadErrs = append(loadErrs, portErr)
	}

	randomEvery, randomEveryErr := getEnvIntOrDefault("RANDOM_EVERY_DEFAULT", k.Int("random_every_default"), DefaultRandomEvery)
	if randomEveryErr != nil {
		loadErrs = append(loadErrs, randomEveryErr)
	}
	randomCount, randomCountErr := getEnvIntOrDefault("RANDOM_COUNT_DEFAULT", k.Int("random_count_default"), DefaultRandomCount)
	if randomCountErr != nil {
		loadErrs = append(loadErrs, randomCountErr)
	}

	globalRPM, globalErr := getEnvIntOrDefault("RATE_LIMIT_GLOBAL_RPM", k.Int("rate_limit_global_rpm"), DefaultRateLimitGlobalRPM)
	if globalErr != nil {
		loadErrs = append(loadErrs, globalErr)
	}
	recommendRPM, recommendErr := getEnvIntOrDefault("RATE_LIMIT_RECOMMEND_RPM", k.Int("rate_limit_recommend_rpm"), DefaultRateLimitRecommendRPM)
	if recommendErr != nil {
		loadErrs = append(loadErrs, recommendErr)
	}
	adminRPM, adminErr := getEnvIntOrDefault("RATE_LIMIT_ADMIN_RPM", k.Int("rate_limit_admin_rpm"), DefaultRateLimitAdminRPM)
	if adminErr != nil {
		loadErrs = append(loadErrs, adminErr)
	}

	diversify := getEnvBoolOrKoanf("DIVERSIFY_DEFAULT", k, "diversify_default", DefaultDiversify)
	tracingEnabled := getEnvBoolOrKoanf("TRACING_ENABLED", k, "tracing_enabled", false)
	tracingInsecure := getEnvBoolOrKoanf("TRACING_INSECURE", k, "tracing_insecure", false)

	samplingRate, samplingErr := getEnvFloatOrDefault("TRACING_SAMPLING_RATE", k, "tracing_sampling_rate", DefaultTracingSamplingRate)
	if samplingErr != nil {
		loadErrs = append(loadErrs, samplingErr)
	}

	// Build config struct, with env vars taking precedence over file values
	cfg := &Config{
		Port:                   port,
		Env:                    getEnvOrDefaultMulti([]string{"GIGFEED_ENV", "ENV", "GO_ENV"}, k.String("env"), DefaultEnv),
		DatabaseURL:            getEnvOrKoanf("DATABASE_URL", k, "database_url"),
		RedisAddr:              getEnvOrKoanf("REDIS_ADDR", k, "redis_addr"),
		JWTSecret:              getEnvOrKoanf("JWT_SECRET", k, "jwt_secret"),
		JWTPreviousSecret:      getEnvOrKoanf("JWT_PREVIOUS_SECRET", k, "jwt_previous_secret"),
		AdminToken:             getEnvOrKoanf("ADMIN_TOKEN", k, "admin_token"),
		CORSAllowedOrigins:     getEnvListOrKoanf("CORS_ALLOWED_ORIGINS", k, "cors_allowed_origins"),
		WeightsCalibrationPath: getEnvOrKoanf("WEIGHTS_CALIBRATION_PATH", k, "weights_calibration_path"),
		DiversifyDefault:       diversify,
		RandomEveryDefault:     randomEvery,
		RandomCountDefault:     randomCount,
		RateLimitGlobalRPM:     globalRPM,
		RateLimitRecommendRPM:  recommendRPM,
		RateLimitAdminRPM:      adminRPM,
		TracingEnabled:         tracingEnabled,
		TracingExporterType:    getEnvOrDefaultMulti([]string{"TRACING_EXPORTER_TYPE"}, k.String("tracing_exporter_type"), DefaultTracingExporterType),
		TracingOTLPEndpoint:    getEnvOrKoanf("TRACING_OTLP_ENDPOINT", k, "tracing_otlp_endpoint"),
		TracingSamplingRate:    samplingRate,
		TracingInsecure:        tracingInsecure,
	}

	// Validate and collect errors
	errs := cfg.Validate()
	errs = append(loadErrs, errs...)

	return cfg, errs
}

// getEnvOrKoanf returns the environment variable value if set, otherwise the koanf value.
func getEnvOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return k.String(koanfKey)
}

// getEnvListOrKoanf returns a comma-separated environment variable as a list
// if set, otherwise the koanf string slice.
func getEnvListOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) []string {
	if val := os.Getenv(envKey); val != "" {
		parts := strings.Split(val, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return k.Strings(koanfKey)
}

// getEnvBoolOrKoanf parses a boolean from the environment if set, otherwise
// falls back to the koanf value, then the default.
func getEnvBoolOrKoanf(envKey string, k *koanf.Koanf, koanfKey string, defaultVal bool) bool {
	out := defaultVal
	if k.Exists(koanfKey) {
		out = k.Bool(koanfKey)
	}
	if val := os.Getenv(envKey); val != "" {
		switch strings.ToLower(val) {
		case "true", "1", "yes", "on":
			out = true
		case "false", "0", "no", "off":
			out = false
		}
	}
	return out
}

// getEnvFloatOrDefault parses a float from the environment if set, otherwise
// falls back to the koanf value, then the default.
func getEnvFloatOrDefault(envKey string, k *koanf.Koanf, koanfKey string, defaultVal float64) (float64, error) {
	if val := os.Getenv(envKey); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid number: %w", envKey, err)
		}
		return f, nil
	}
	if k.Exists(koanfKey) {
		return k.Float64(koanfKey), nil
	}
	return defaultVal, nil
}

// getEnvOrDefaultMulti tries multiple environment variable keys in order.
// Returns the first non-empty value found, otherwise the koanf value, or default.
func getEnvOrDefaultMulti(envKeys []string, koanfVal string, defaultVal string) string {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvIntOrDefault returns the environment variable as int if set, otherwise the koanf value, or default.
// Returns an error if the environment variable is set but cannot be parsed as an integer.
// Note: A value of 0 from a YAML file falls back to the default; explicit zeroes must come from env.
func getEnvIntOrDefault(envKey string, koanfVal int, defaultVal int) (int, error) {
	if val := os.Getenv(envKey); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid integer: %w", envKey, err)
		}
		return i, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvIntOrDefaultMulti tries multiple environment variable keys in order.
// Returns the first valid integer value found, otherwise the koanf value, or default.
// Returns an error if any environment variable is set but cannot be parsed as an integer.
func getEnvIntOrDefaultMulti(envKeys []string, koanfVal int, defaultVal int) (int, error) {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			i, err := strconv.Atoi(val)
			if err != nil {
				return 0, fmt.Errorf("%s must be a valid integer: %w", key, ErrInvalidPort)
			}
			return i, nil
		}
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// Validate checks that all required configuration values are present.
// Returns a slice of validation errors (empty if valid).
func (c *Config) Validate() []error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, ErrMissingJWTSecret)
	}
	if c.RateLimitGlobalRPM <= 0 || c.RateLimitRecommendRPM <= 0 || c.RateLimitAdminRPM <= 0 {
		errs = append(errs, ErrInvalidRateLimit)
	}
	if c.RandomEveryDefault < 0 || c.RandomCountDefault < 0 {
		errs = append(errs, ErrInvalidRandomKnob)
	}
	if c.TracingSamplingRate < 0 || c.TracingSamplingRate > 1 {
		errs = append(errs, ErrInvalidSamplingRate)
	}

	return errs
}

// LogSummary returns a summary of the configuration suitable for logging.
// All secrets are masked to prevent accidental exposure.
func (c *Config) LogSummary() map[string]string {
	return map[string]string{
		"port":                     fmt.Sprintf("%d", c.Port),
		"env":                      c.Env,
		"database_url":             maskDatabaseURL(c.DatabaseURL),
		"redis_addr":               valueOrNotSet(c.RedisAddr),
		"jwt_secret":               maskSecret(c.JWTSecret),
		"jwt_previous_secret":      maskSecret(c.JWTPreviousSecret),
		"cors_allowed_origins":     strings.Join(c.CORSAllowedOrigins, ","),
		"weights_calibration_path": valueOrNotSet(c.WeightsCalibrationPath),
		"diversify_default":        fmt.Sprintf("%t", c.DiversifyDefault),
		"random_every_default":     fmt.Sprintf("%d", c.RandomEveryDefault),
		"random_count_default":     fmt.Sprintf("%d", c.RandomCountDefault),
		"rate_limit_global_rpm":    fmt.Sprintf("%d", c.RateLimitGlobalRPM),
		"rate_limit_recommend_rpm": fmt.Sprintf("%d", c.RateLimitRecommendRPM),
		"rate_limit_admin_rpm":     fmt.Sprintf("%d", c.RateLimitAdminRPM),
		"tracing_enabled":          fmt.Sprintf("%t", c.TracingEnabled),
		"tracing_exporter_type":    c.TracingExporterType,
		"tracing_otlp_endpoint":    valueOrNotSet(c.TracingOTLPEndpoint),
		"tracing_sampling_rate":    fmt.Sprintf("%g", c.TracingSamplingRate),
	}
}

// valueOrNotSet returns the value, or a placeholder when it is empty.
func valueOrNotSet(s string) string {
	if s == "" {
		return "<not set>"
	}
	return s
}

// maskSecret masks a secret value, showing only the first 4 characters followed by ****
// If the secret is shorter than 8 characters, it's fully masked.
func maskSecret(s string) string {
	if s == "" {
		return "<not set>"
	}
	if len(s) < 8 {
		return "****"
	}
	return s[:4] + "****"
}

// maskDatabaseURL masks the password in a database URL.
// Supports both postgres:// and postgresql:// schemes.
func maskDatabaseURL(s string) string {
	if s == "" {
		return "<not set>"
	}

	// Look for password pattern: user:password@host
	// Simple approach: find :// and then mask between : and @
	schemeEnd := strings.Index(s, "://")
	if schemeEnd == -1 {
		return maskSecret(s)
	}

	rest := s[schemeEnd+3:]
	atIndex := strings.Index(rest, "@")
	if atIndex == -1 {
		return s // No credentials in URL
	}

	colonIndex := strings.Index(rest[:atIndex], ":")
	if colonIndex == -1 {
		return s // No password (only username)
	}

	// Reconstruct URL with masked password
	scheme := s[:schemeEnd+3]
	user := rest[:colonIndex]
	hostAndPath := rest[atIndex:]

	return scheme + user + ":****" + hostAndPath
}

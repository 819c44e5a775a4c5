package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"tally/pkg/ratelimit"
	"tally/pkg/token"
)

// Config holds all configuration for our application
type Config struct {
	// Server configuration
	Port           string
	GinMode        string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// JWT configuration
	JWT JWTConfig

	// Authentication gate
	Auth AuthConfig

	// Rate limiting
	RateLimit RateLimitConfig

	// Kafka notification pipeline
	Kafka KafkaConfig

	// Outbound email
	Email EmailConfig

	// Stock market data
	Stocks StocksConfig

	// Logging
	LogLevel string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	DSN      string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string

	// TTL values for different operations
	VerifyCodeTTL time.Duration
	QuoteTTL      time.Duration
	CategoryTTL   time.Duration
}

// JWTConfig holds JWT configuration. Lifetimes are configured the way the
// product thinks about them: access tokens in minutes, refresh tokens in days.
type JWTConfig struct {
	Secret           string
	Algorithm        string
	AccessExpiresIn  time.Duration
	RefreshExpiresIn time.Duration
}

// AuthConfig holds the authentication gate settings. AllowedPaths is an
// ordered list of path prefixes that skip authentication entirely.
type AuthConfig struct {
	AllowedPaths []string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled            bool
	WindowDuration     time.Duration
	DefaultRequests    int
	AuthRequests       int
	VerifyCodeRequests int
	WhitelistedIPs     []string
}

// KafkaConfig holds the notification pipeline configuration
type KafkaConfig struct {
	Enabled       bool
	Brokers       []string
	Topic         string
	ConsumerGroup string
}

// EmailConfig holds email configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
}

// StocksConfig holds market data configuration
type StocksConfig struct {
	QuoteBaseURL string
	SyncEnabled  bool
	SyncInterval time.Duration
}

// defaultAllowedPaths matches the public surface: credential endpoints and
// their verification-code sub-routes, docs, and health probes. Matching is
// prefix-based, so the verify_code entries are covered by their parents but
// stay listed for readability.
var defaultAllowedPaths = []string{
	"/api/account/user/login",
	"/api/account/user/register",
	"/api/account/user/login/verify_code",
	"/api/account/user/register/verify_code",
	"/api/account/user/refresh",
	"/docs",
	"/openapi.json",
	"/health",
	"/ping",
	"/status",
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		// Server configuration
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		ReadTimeout:    getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDurationEnv("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:    getDurationEnv("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes: getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1 MB

		// Database configuration
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "tally_db"),
			User:     getEnv("DB_USER", "tally_user"),
			Password: getEnv("DB_PASSWORD", "tally_password"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},

		// Redis configuration
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),

			// TTL configurations with defaults
			VerifyCodeTTL: getDurationEnv("REDIS_VERIFY_CODE_TTL", 5*time.Minute),
			QuoteTTL:      getDurationEnv("REDIS_QUOTE_TTL", 60*time.Second),
			CategoryTTL:   getDurationEnv("REDIS_CATEGORY_TTL", 5*time.Minute),
		},

		// JWT configuration
		JWT: JWTConfig{
			Secret:           getEnv("JWT_SECRET", "your-super-secret-jwt-key"),
			Algorithm:        getEnv("JWT_ALGORITHM", token.DefaultAlgorithm),
			AccessExpiresIn:  getDurationEnvMinutes("JWT_ACCESS_EXPIRE_MINUTES", token.DefaultAccessTokenTTL),
			RefreshExpiresIn: getDurationEnvDays("JWT_REFRESH_EXPIRE_DAYS", token.DefaultRefreshTokenTTL),
		},

		// Authentication gate
		Auth: AuthConfig{
			AllowedPaths: getStringSliceEnv("AUTH_ALLOWED_PATHS", defaultAllowedPaths),
		},

		// Rate limiting
		RateLimit: RateLimitConfig{
			Enabled:            getBoolEnv("RATE_LIMIT_ENABLED", true),
			WindowDuration:     getDurationEnv("RATE_LIMIT_WINDOW_DURATION", 60*time.Second),
			DefaultRequests:    getIntEnv("RATE_LIMIT_DEFAULT_REQUESTS", 100),
			AuthRequests:       getIntEnv("RATE_LIMIT_AUTH_REQUESTS", 10),
			VerifyCodeRequests: getIntEnv("RATE_LIMIT_VERIFY_CODE_REQUESTS", 5),
			WhitelistedIPs:     getStringSliceEnv("RATE_LIMIT_WHITELISTED_IPS", []string{}),
		},

		// Kafka notification pipeline
		Kafka: KafkaConfig{
			Enabled:       getBoolEnv("KAFKA_ENABLED", true),
			Brokers:       getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:         getEnv("KAFKA_TOPIC", "tally-notifications"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "tally-notification-workers"),
		},

		// Email configuration
		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getIntEnv("SMTP_PORT", 587),
			SMTPUsername: getEnv("SMTP_USERNAME", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			FromEmail:    getEnv("FROM_EMAIL", "noreply@tally.app"),
		},

		// Stock market data
		Stocks: StocksConfig{
			QuoteBaseURL: getEnv("STOCK_QUOTE_BASE_URL", "https://query1.finance.yahoo.com"),
			SyncEnabled:  getBoolEnv("STOCK_SYNC_ENABLED", true),
			SyncInterval: getDurationEnv("STOCK_SYNC_INTERVAL", 6*time.Hour),
		},

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "debug"),
	}

	// Build composite values
	cfg.Database.DSN = buildDatabaseDSN(cfg.Database)
	cfg.Redis.Addr = cfg.Redis.Host + ":" + cfg.Redis.Port

	return cfg
}

// TokenConfig exposes the JWT settings in the shape the token package wants.
func (c *Config) TokenConfig() token.Config {
	return token.Config{
		Secret:          c.JWT.Secret,
		Algorithm:       c.JWT.Algorithm,
		AccessTokenTTL:  c.JWT.AccessExpiresIn,
		RefreshTokenTTL: c.JWT.RefreshExpiresIn,
	}
}

// RateLimiterConfig exposes the rate limit settings in the shape the
// ratelimit package wants.
func (c *Config) RateLimiterConfig() *ratelimit.Config {
	return &ratelimit.Config{
		Enabled:            c.RateLimit.Enabled,
		WindowDuration:     c.RateLimit.WindowDuration,
		DefaultRequests:    c.RateLimit.DefaultRequests,
		AuthRequests:       c.RateLimit.AuthRequests,
		VerifyCodeRequests: c.RateLimit.VerifyCodeRequests,
		WhitelistedIPs:     c.RateLimit.WhitelistedIPs,
	}
}

// buildDatabaseDSN builds the database connection string
func buildDatabaseDSN(db DatabaseConfig) string {
	return "host=" + db.Host +
		" port=" + db.Port +
		" user=" + db.User +
		" password=" + db.Password +
		" dbname=" + db.Name +
		" sslmode=" + db.SSLMode
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

// getDurationEnvMinutes gets an environment variable as minutes (int) and converts to time.Duration
func getDurationEnvMinutes(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return fallback
}

// getDurationEnvDays gets an environment variable as days (int) and converts to time.Duration
func getDurationEnvDays(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if days, err := strconv.Atoi(value); err == nil {
			return time.Duration(days) * 24 * time.Hour
		}
	}
	return fallback
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

// getStringSliceEnv gets a comma-separated string environment variable as a slice
func getStringSliceEnv(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var result []string
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GinMode == "debug"
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	DatabaseURL string
	Port        string
	Environment string
	LogLevel    string

	// Catalog source configuration
	RedisAddr       string
	CatalogCacheTTL time.Duration
	CatalogFile     string
	CatalogTimeout  time.Duration
	CatalogPushdown bool

	// Recommendation engine configuration
	SpendCategories     string
	MaxCreditScore      int
	RecommendationLimit int

	// Catalog administration and import
	EnableCatalogAdmin      bool
	ImportRequestsPerSecond int
	ImportSources           string
	ImportInterval          time.Duration
	ImportMaxConcurrent     int

	// Security configuration
	AllowedOrigins  string
	TrustedProxies  string
	EnableRateLimit    bool
	RateLimitPerMinute int
	MaxRequestSize     int64
}

// New creates a new configuration instance from environment variables
func New() *Config {
	return &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		// Catalog source configuration
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		CatalogCacheTTL: getEnvAsDuration("CATALOG_CACHE_TTL", 5*time.Minute),
		CatalogFile:     getEnv("CATALOG_FILE", ""),
		CatalogTimeout:  getEnvAsDuration("CATALOG_TIMEOUT", 10*time.Second),
		CatalogPushdown: getEnv("CATALOG_PUSHDOWN", "false") == "true",
		// Recommendation engine configuration
		SpendCategories:     getEnv("SPEND_CATEGORIES", "fuel,travel,groceries,dining"),
		MaxCreditScore:      getEnvAsInt("MAX_CREDIT_SCORE", 900),
		RecommendationLimit: getEnvAsInt("RECOMMENDATION_LIMIT", 5),
		// Catalog administration and import
		EnableCatalogAdmin:      getEnv("ENABLE_CATALOG_ADMIN", "false") == "true",
		ImportRequestsPerSecond: getEnvAsInt("IMPORT_REQUESTS_PER_SECOND", 2),
		ImportSources:           getEnv("IMPORT_SOURCES", ""),
		ImportInterval:          getEnvAsDuration("IMPORT_INTERVAL", 6*time.Hour),
		ImportMaxConcurrent:     getEnvAsInt("IMPORT_MAX_CONCURRENT", 3),
		// Security configuration
		AllowedOrigins:  getEnv("ALLOWED_ORIGINS", ""),
		TrustedProxies:  getEnv("TRUSTED_PROXIES", ""),
		EnableRateLimit:    getEnv("ENABLE_RATE_LIMIT", "true") == "true",
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 100),
		MaxRequestSize:     getEnvAsInt64("MAX_REQUEST_SIZE", 1024*1024), // 1MB default
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// HasDatabase returns true if a Postgres catalog is configured
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

// HasRedis returns true if the catalog cache is configured
func (c *Config) HasRedis() bool {
	return c.RedisAddr != ""
}

// GetSpendCategories returns the configured spend category names
func (c *Config) GetSpendCategories() []string {
	return splitList(c.SpendCategories)
}

// GetImportSources returns the "url|issuer" entries refreshed by the import worker
func (c *Config) GetImportSources() []string {
	return splitList(c.ImportSources)
}

// GetAllowedOrigins returns a slice of allowed CORS origins
func (c *Config) GetAllowedOrigins() []string {
	return splitList(c.AllowedOrigins)
}

// GetTrustedProxies returns a slice of trusted proxy IPs
func (c *Config) GetTrustedProxies() []string {
	return splitList(c.TrustedProxies)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return []string{}
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

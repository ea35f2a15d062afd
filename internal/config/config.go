package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string
	JWTTTL    time.Duration

	DB      DatabaseConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	S3      S3Config
	Catalog CatalogConfig
	Cache   CacheConfig
	Worker  WorkerConfig
	CORS    CORSConfig
	Admin   AdminSeedConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// MongoConfig contains the product document store connection.
type MongoConfig struct {
	URI      string
	Database string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// S3Config contains the media bucket configuration.
type S3Config struct {
	Region          string
	Bucket          string
	Endpoint        string
	PublicBaseURL   string
	AccessKeyID     string
	SecretAccessKey string
	KeyPrefix       string
}

// CatalogConfig tunes product normalization and listing.
type CatalogConfig struct {
	DefaultPageSize   int
	MaxPageSize       int
	RequireColorImage bool
	MaxUploadImages   int
	MaxUploadBytes    int64
}

// CacheConfig contains TTLs of cached reports.
type CacheConfig struct {
	ReportTTL time.Duration
}

// WorkerConfig contains interval configuration for background workers.
type WorkerConfig struct {
	MediaCleanupInterval time.Duration
	MediaCleanupBatch    int
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string
}

// AdminSeedConfig bootstraps the first admin account. Empty email skips it.
type AdminSeedConfig struct {
	Email    string
	Password string
	Name     string
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first.
func Load() (*Config, error) {
	// Load .env if present; production relies on real environment variables.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// MongoDB
	cfg.Mongo = MongoConfig{
		URI:      getEnv("MONGO_URI", ""),
		Database: getEnv("MONGO_DATABASE", "catalog"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// S3 media bucket
	cfg.S3 = S3Config{
		Region:          getEnv("S3_REGION", "ap-southeast-3"),
		Bucket:          getEnv("S3_BUCKET", "catalog-media"),
		Endpoint:        getEnv("S3_ENDPOINT", ""),
		PublicBaseURL:   getEnv("S3_PUBLIC_BASE_URL", ""),
		AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		KeyPrefix:       getEnv("S3_KEY_PREFIX", "products"),
	}

	// Catalog
	cfg.Catalog = CatalogConfig{
		DefaultPageSize:   getEnvInt("CATALOG_DEFAULT_PAGE_SIZE", 20),
		MaxPageSize:       getEnvInt("CATALOG_MAX_PAGE_SIZE", 50),
		RequireColorImage: getEnvBool("CATALOG_REQUIRE_COLOR_IMAGE", true),
		MaxUploadImages:   getEnvInt("CATALOG_MAX_UPLOAD_IMAGES", 5),
		MaxUploadBytes:    int64(getEnvInt("CATALOG_MAX_UPLOAD_BYTES", 5<<20)),
	}

	// CORS
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
	}

	// Admin bootstrap
	cfg.Admin = AdminSeedConfig{
		Email:    getEnv("ADMIN_EMAIL", ""),
		Password: getEnv("ADMIN_PASSWORD", ""),
		Name:     getEnv("ADMIN_NAME", "Administrator"),
	}

	// Durations
	var err error
	if cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", "24h"); err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	if cfg.Cache.ReportTTL, err = parseDurationEnv("REPORT_CACHE_TTL", "5m"); err != nil {
		return nil, fmt.Errorf("invalid REPORT_CACHE_TTL: %w", err)
	}
	if cfg.Worker.MediaCleanupInterval, err = parseDurationEnv("MEDIA_CLEANUP_INTERVAL", "1m"); err != nil {
		return nil, fmt.Errorf("invalid MEDIA_CLEANUP_INTERVAL: %w", err)
	}
	cfg.Worker.MediaCleanupBatch = getEnvInt("MEDIA_CLEANUP_BATCH", 50)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DB.Host == "" || c.DB.User == "" || c.DB.Name == "" {
		return errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}
	if c.Mongo.URI == "" {
		return errors.New("MONGO_URI must be set for the product store")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set for authentication")
	}
	if c.Catalog.DefaultPageSize <= 0 || c.Catalog.MaxPageSize < c.Catalog.DefaultPageSize {
		return fmt.Errorf("invalid page sizes: default %d, max %d", c.Catalog.DefaultPageSize, c.Catalog.MaxPageSize)
	}
	if c.Admin.Email != "" && len(c.Admin.Password) < 8 {
		return errors.New("ADMIN_PASSWORD must be at least 8 characters when ADMIN_EMAIL is set")
	}
	if c.Worker.MediaCleanupInterval == 0 {
		return errors.New("MEDIA_CLEANUP_INTERVAL must be greater than 0")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// getEnvBool returns the value of an environment variable as a bool or a default if empty/invalid.
func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Blob      BlobConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Audit     AuditConfig
	App       AppConfig
}

type ServerConfig struct {
	Port           string
	PublicBaseURL  string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a Redis server was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.Addr) != ""
}

type BlobConfig struct {
	Driver         string
	WebDAVURL      string
	WebDAVUsername string
	WebDAVPassword string
	GCSBucket      string
	LocalRoot      string
	ProjectsRoot   string
	PlansSegment   string
}

type AuthConfig struct {
	APIKey string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type AuditConfig struct {
	Schedule string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	BlobDriverWebDAV = "webdav"
	BlobDriverGCS    = "gcs"
	BlobDriverLocal  = "local"
)

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			PublicBaseURL:  strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:3000"), "/"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "cockpit"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Blob: BlobConfig{
			Driver:         strings.ToLower(getEnv("BLOB_DRIVER", BlobDriverWebDAV)),
			WebDAVURL:      getEnv("NEXTCLOUD_URL", ""),
			WebDAVUsername: getEnv("NEXTCLOUD_USERNAME", ""),
			WebDAVPassword: getEnv("NEXTCLOUD_PASSWORD", ""),
			GCSBucket:      getEnv("GCS_BUCKET", ""),
			LocalRoot:      getEnv("BLOB_LOCAL_ROOT", "./data/blobs"),
			ProjectsRoot:   getEnv("BLOB_PROJECTS_ROOT", "Projekte"),
			PlansSegment:   getEnv("BLOB_PLANS_SEGMENT", "Pläne"),
		},
		Auth: AuthConfig{
			APIKey: getEnv("API_KEY", ""),
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvAsFloat("PUBLIC_RATE_LIMIT_RPS", 5),
			Burst: getEnvAsInt("PUBLIC_RATE_LIMIT_BURST", 20),
		},
		Audit: AuditConfig{
			Schedule: getEnv("AUDIT_SCHEDULE", "0 0 3 * * *"),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	switch c.Blob.Driver {
	case BlobDriverWebDAV:
		if c.Blob.WebDAVURL == "" {
			return fmt.Errorf("NEXTCLOUD_URL is required for BLOB_DRIVER=webdav")
		}
	case BlobDriverGCS:
		if c.Blob.GCSBucket == "" {
			return fmt.Errorf("GCS_BUCKET is required for BLOB_DRIVER=gcs")
		}
	case BlobDriverLocal:
		if c.Blob.LocalRoot == "" {
			return fmt.Errorf("BLOB_LOCAL_ROOT is required for BLOB_DRIVER=local")
		}
	default:
		return fmt.Errorf("unsupported BLOB_DRIVER %q", c.Blob.Driver)
	}

	if strings.Trim(c.Blob.ProjectsRoot, "/") == "" {
		return fmt.Errorf("BLOB_PROJECTS_ROOT must not be empty")
	}

	if c.IsProduction() && c.Auth.APIKey == "" {
		return fmt.Errorf("API_KEY is required in production")
	}

	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("PUBLIC_RATE_LIMIT_RPS and PUBLIC_RATE_LIMIT_BURST must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %g", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	out := make([]string, 0, 4)
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

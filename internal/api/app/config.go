package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/aussiebroadwan/vidhub/internal/api/upload"
	"github.com/aussiebroadwan/vidhub/pkg/httpx"
)

// Store and upload driver names.
const (
	StoreMongo  = "mongo"
	StoreSQLite = "sqlite"

	UploadS3   = "s3"
	UploadDisk = "disk"
)

type Config struct {
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired refresh token sweep interval (default: 1h)

	StoreDriver   string // mongo or sqlite (default: sqlite)
	MongoURI      string // Required for mongo
	MongoDatabase string // default: vidhub
	DatabaseFile  string // sqlite database path (default: ./vidhub.db)
	PepperFile    string // Password pepper, generated on first start (default: ./pepper)

	TokenIssuer        string        // iss claim (default: vidhub)
	AccessTokenSecret  string        // Required
	RefreshTokenSecret string        // Required, must differ from the access secret
	AccessTokenExpiry  time.Duration // default: 15m
	RefreshTokenExpiry time.Duration // default: 240h
	CookieSecure       bool          // Secure flag on session cookies (default: true)

	UploadDriver   string // s3 or disk (default: disk)
	UploadDir      string // disk driver root (default: ./media)
	UploadBaseURL  string // disk driver public prefix (default: http://localhost:<port>/media)
	UploadMaxBytes int64  // multipart body limit (default: 64 MiB)
	S3             upload.S3Config

	RateLimits httpx.RateLimits
}

func LoadConfig() Config {
	port := getEnvIntOrDefault("PORT", 8080)

	return Config{
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 port,
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),

		StoreDriver:   getEnvOrDefault("STORE_DRIVER", StoreSQLite),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDatabase: getEnvOrDefault("MONGO_DATABASE", "vidhub"),
		DatabaseFile:  getEnvOrDefault("DATABASE_FILE", "vidhub.db"),
		PepperFile:    getEnvOrDefault("PEPPER_FILE", "pepper"),

		TokenIssuer:        getEnvOrDefault("TOKEN_ISSUER", "vidhub"),
		AccessTokenSecret:  os.Getenv("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret: os.Getenv("REFRESH_TOKEN_SECRET"),
		AccessTokenExpiry:  getEnvDurationOrDefault("ACCESS_TOKEN_EXPIRY", 15*time.Minute),
		RefreshTokenExpiry: getEnvDurationOrDefault("REFRESH_TOKEN_EXPIRY", 10*24*time.Hour),
		CookieSecure:       getEnvBoolOrDefault("COOKIE_SECURE", true),

		UploadDriver:   getEnvOrDefault("UPLOAD_DRIVER", UploadDisk),
		UploadDir:      getEnvOrDefault("UPLOAD_DIR", "media"),
		UploadBaseURL:  getEnvOrDefault("UPLOAD_BASE_URL", fmt.Sprintf("http://localhost:%d/media", port)),
		UploadMaxBytes: int64(getEnvIntOrDefault("UPLOAD_MAX_BYTES", 64<<20)),
		S3: upload.S3Config{
			Bucket:    os.Getenv("S3_BUCKET"),
			Region:    getEnvOrDefault("S3_REGION", "us-east-1"),
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			PublicURL: os.Getenv("S3_PUBLIC_URL"),
		},

		RateLimits: httpx.RateLimitsFromEnv(),
	}
}

// Validate reports every problem at once so a misconfigured deployment fails
// with the full list.
func (c Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case StoreMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required when STORE_DRIVER=mongo"))
		}
	case StoreSQLite:
		if c.DatabaseFile == "" {
			errs = append(errs, errors.New("DATABASE_FILE is required when STORE_DRIVER=sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}

	if c.AccessTokenSecret == "" {
		errs = append(errs, errors.New("ACCESS_TOKEN_SECRET is required"))
	}
	if c.RefreshTokenSecret == "" {
		errs = append(errs, errors.New("REFRESH_TOKEN_SECRET is required"))
	}
	if c.AccessTokenSecret != "" && c.AccessTokenSecret == c.RefreshTokenSecret {
		errs = append(errs, errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ"))
	}
	if c.AccessTokenExpiry <= 0 || c.RefreshTokenExpiry <= 0 {
		errs = append(errs, errors.New("token expiries must be positive"))
	}

	switch c.UploadDriver {
	case UploadS3:
		if c.S3.Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required when UPLOAD_DRIVER=s3"))
		}
	case UploadDisk:
		if c.UploadDir == "" {
			errs = append(errs, errors.New("UPLOAD_DIR is required when UPLOAD_DRIVER=disk"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown UPLOAD_DRIVER %q", c.UploadDriver))
	}

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid PORT %d", c.Port))
	}

	return errors.Join(errs...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// "10d" style day counts
	if n := len(value); n > 1 && value[n-1] == 'd' {
		if days, err := strconv.Atoi(value[:n-1]); err == nil {
			return time.Duration(days) * 24 * time.Hour
		}
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

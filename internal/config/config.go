package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultPort             = "8080"
	defaultJWTTTL           = "1h"
	defaultPresignTTL       = "300s"
	defaultUploadSessionTTL = "24h"
	defaultRequestTimeout   = "30s"
	defaultS3Region         = "us-east-1"
)

// Config is the runtime configuration for the API server and the
// operational commands. Everything comes from the environment.
type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string
	JWTTTL      time.Duration

	S3Bucket    string
	S3Region    string
	S3Endpoint  string // optional, for MinIO / localstack
	S3AccessKey string
	S3SecretKey string

	PresignTTL       time.Duration
	UploadSessionTTL time.Duration
	RequestTimeout   time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", defaultPort),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:   strings.TrimSpace(os.Getenv("JWT_SECRET")),
		S3Bucket:    strings.TrimSpace(os.Getenv("S3_BUCKET")),
		S3Region:    getEnv("S3_REGION", defaultS3Region),
		S3Endpoint:  strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
		S3AccessKey: strings.TrimSpace(os.Getenv("AWS_ACCESS_KEY_ID")),
		S3SecretKey: strings.TrimSpace(os.Getenv("AWS_SECRET_ACCESS_KEY")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required")
	}

	var err error
	if cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL); err != nil {
		return nil, err
	}
	if cfg.PresignTTL, err = parseDurationEnv("PRESIGN_TTL", defaultPresignTTL); err != nil {
		return nil, err
	}
	if cfg.UploadSessionTTL, err = parseDurationEnv("UPLOAD_SESSION_TTL", defaultUploadSessionTTL); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = parseDurationEnv("REQUEST_TIMEOUT", defaultRequestTimeout); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseDurationEnv(key, fallback string) (time.Duration, error) {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return d, nil
}

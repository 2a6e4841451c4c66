package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	MediaRoot          string
	LogFile            string
	WatermarkUser      string
	WatermarkTimestamp string
	CORSOrigins        []string
	MaxUploadBytes     int64
	StagingMaxAge      time.Duration
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. The watermark defaults match the values the service
// has always stamped on video outputs.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8000"),
		MediaRoot:          getEnv("MEDIA_ROOT", "static"),
		LogFile:            getEnv("LOG_FILE", "media_processing.log"),
		WatermarkUser:      getEnv("WATERMARK_USER", "bibhabasuiitkgp"),
		WatermarkTimestamp: getEnv("WATERMARK_TIMESTAMP", "2025-03-09 05:59:54"),
		CORSOrigins:        splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_MB", 512)) << 20,
		StagingMaxAge:      time.Hour * time.Duration(getEnvInt("STAGING_MAX_AGE_HOURS", 24)),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 300)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 600)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if strings.TrimSpace(cfg.MediaRoot) == "" {
		return nil, fmt.Errorf("MEDIA_ROOT must not be empty")
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	RedisURL    string

	TempDir      string
	DownloadsDir string

	PublicBaseURL string
	APIPrefix     string

	WorkerConcurrency int
	JobAttempts       int
	ResultTTL         time.Duration
	QueueRetention    time.Duration

	CleanupInterval time.Duration
	CleanupMaxAge   time.Duration

	YtdlpPath  string
	FFmpegPath string

	S3Endpoint      string
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3UseSSL        bool
	S3PresignExpiry time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "4000"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    getEnv("REDIS_URL", "redis://127.0.0.1:6379"),

		TempDir:      getEnv("TEMP_DIR", "./tmp"),
		DownloadsDir: getEnv("DOWNLOADS_DIR", "./public/downloads"),

		PublicBaseURL: os.Getenv("PUBLIC_BASE_URL"),
		APIPrefix:     getEnv("API_PREFIX", "/api"),

		WorkerConcurrency: getEnvInt("MAX_CONCURRENT_MERGES", 1),
		JobAttempts:       getEnvInt("JOB_ATTEMPTS", 2),
		ResultTTL:         time.Second * time.Duration(getEnvInt("JOB_RESULT_TTL", 86400)),
		QueueRetention:    time.Hour * time.Duration(getEnvInt("QUEUE_RETENTION_HOURS", 24)),

		CleanupInterval: time.Hour * time.Duration(getEnvInt("CLEANUP_INTERVAL_HOURS", 3)),
		CleanupMaxAge:   time.Hour * time.Duration(getEnvInt("CLEANUP_MAX_AGE_HOURS", 3)),

		YtdlpPath:  os.Getenv("YTDLP_PATH"),
		FFmpegPath: getEnv("FFMPEG_PATH", "ffmpeg"),

		S3Endpoint:      os.Getenv("S3_ENDPOINT"),
		S3Region:        getEnv("S3_REGION", "us-east-1"),
		S3Bucket:        os.Getenv("S3_BUCKET"),
		S3AccessKey:     os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretKey:     os.Getenv("S3_SECRET_ACCESS_KEY"),
		S3UseSSL:        getEnvBool("S3_USE_SSL", true),
		S3PresignExpiry: time.Second * time.Duration(getEnvInt("S3_PRESIGNED_EXPIRES", 3600)),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = "http://localhost:" + cfg.Port
	}

	if cfg.WorkerConcurrency < 1 {
		cfg.WorkerConcurrency = 1
	}
	if cfg.JobAttempts < 1 {
		cfg.JobAttempts = 1
	}

	return cfg, nil
}

// S3Enabled reports whether object-storage publishing is configured. When it
// is not, artifacts are moved into the local downloads directory instead.
func (c *Config) S3Enabled() bool {
	return c.S3AccessKey != "" && c.S3SecretKey != "" && c.S3Bucket != ""
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

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

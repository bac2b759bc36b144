package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	Port    string
	DataDir string

	NaverClientID     string
	NaverClientSecret string
	NewsSearchURL     string

	ClovaStudioAPIKey        string
	ClovaStudioAPIKeyPrimary string
	ClovaStudioURL           string

	DubbingBaseURL  string
	DubbingAPIKeyID string
	DubbingAPIKey   string
	DefaultSpeaker  string

	PollInterval time.Duration
	WaitDeadline time.Duration

	StoreBackend  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ArtifactBackend string
	MinioEndpoint   string
	MinioAccessKey  string
	MinioSecretKey  string
	MinioBucket     string
	MinioUseSSL     bool

	StaleJobAge       time.Duration
	ReconcileInterval time.Duration
}

func LoadConfig() (Config, error) {
	cfg := Config{}

	cfg.Port = envOrDefault("PORT", "8080")
	cfg.DataDir = envOrDefault("DATA_DIR", "data")

	cfg.NaverClientID = os.Getenv("NAVER_CLIENT_ID")
	cfg.NaverClientSecret = os.Getenv("NAVER_CLIENT_SECRET")
	cfg.NewsSearchURL = envOrDefault("NAVER_NEWS_URL", "https://openapi.naver.com/v1/search/news.json")

	cfg.ClovaStudioAPIKey = os.Getenv("CLOVASTUDIO_API_KEY")
	cfg.ClovaStudioAPIKeyPrimary = os.Getenv("CLOVASTUDIO_API_KEY_PRIMARY")
	cfg.ClovaStudioURL = envOrDefault("CLOVASTUDIO_URL", "https://clovastudio.stream.ntruss.com/testapp/v1/chat-completions/HCX-003")

	cfg.DubbingBaseURL = envOrDefault("CLOVA_DUBBING_URL", "https://clovadubbing.apigw.ntruss.com/tts/v1/projects/13604")
	cfg.DubbingAPIKeyID = os.Getenv("CLOVA_DUBBING_API_KEY_ID")
	cfg.DubbingAPIKey = os.Getenv("CLOVA_DUBBING_API_KEY")
	cfg.DefaultSpeaker = envOrDefault("DEFAULT_SPEAKER", "nara")

	pollSeconds, err := parseIntEnv("TTS_POLL_INTERVAL_SECONDS", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse TTS_POLL_INTERVAL_SECONDS: %w", err)
	}
	cfg.PollInterval = time.Duration(pollSeconds) * time.Second

	waitSeconds, err := parseIntEnv("TTS_WAIT_DEADLINE_SECONDS", 300)
	if err != nil {
		return Config{}, fmt.Errorf("parse TTS_WAIT_DEADLINE_SECONDS: %w", err)
	}
	cfg.WaitDeadline = time.Duration(waitSeconds) * time.Second

	cfg.StoreBackend = envOrDefault("STORE_BACKEND", "file")
	if cfg.StoreBackend != "file" && cfg.StoreBackend != "redis" {
		return Config{}, fmt.Errorf("invalid STORE_BACKEND %q: must be file or redis", cfg.StoreBackend)
	}
	cfg.RedisAddr = envOrDefault("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	redisDB, err := parseIntEnv("REDIS_DB", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse REDIS_DB: %w", err)
	}
	cfg.RedisDB = int(redisDB)

	cfg.ArtifactBackend = envOrDefault("ARTIFACT_BACKEND", "file")
	if cfg.ArtifactBackend != "file" && cfg.ArtifactBackend != "minio" {
		return Config{}, fmt.Errorf("invalid ARTIFACT_BACKEND %q: must be file or minio", cfg.ArtifactBackend)
	}
	cfg.MinioEndpoint = envOrDefault("MINIO_ENDPOINT", "localhost:9000")
	cfg.MinioAccessKey = os.Getenv("MINIO_ACCESS_KEY")
	cfg.MinioSecretKey = os.Getenv("MINIO_SECRET_KEY")
	cfg.MinioBucket = envOrDefault("MINIO_BUCKET", "swen-audio")
	cfg.MinioUseSSL = os.Getenv("MINIO_USE_SSL") == "true"

	staleMinutes, err := parseIntEnv("STALE_JOB_AGE_MINUTES", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse STALE_JOB_AGE_MINUTES: %w", err)
	}
	cfg.StaleJobAge = time.Duration(staleMinutes) * time.Minute

	reconcileMinutes, err := parseIntEnv("RECONCILE_INTERVAL_MINUTES", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse RECONCILE_INTERVAL_MINUTES: %w", err)
	}
	cfg.ReconcileInterval = time.Duration(reconcileMinutes) * time.Minute

	absDataDir, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	cfg.DataDir = absDataDir

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseIntEnv(key string, fallback int64) (int64, error) {
	value := envOrDefault(key, "")
	if value == "" {
		return fallback, nil
	}

	num, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, err
	}
	return num, nil
}

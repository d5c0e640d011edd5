package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings for the service. Values come from the
// environment, with an optional .env file loaded first.
type Config struct {
	Port          string
	RecordingsDir string

	WhisperURL     string
	WhisperModel   string
	WhisperTimeout time.Duration

	SummarizerURL     string
	SummarizerModel   string
	SummarizerTimeout time.Duration

	MaxWorkers   int
	JobQueueSize int
	ConvertAudio bool
}

// Load reads configuration from the environment. A missing .env file is not
// an error.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:              getEnv("PORT", "8080"),
		RecordingsDir:     getEnv("RECORDINGS_DIR", "recordings"),
		WhisperURL:        getEnv("WHISPER_URL", "http://localhost:8387"),
		WhisperModel:      getEnv("WHISPER_MODEL", "base"),
		WhisperTimeout:    getEnvDuration("WHISPER_TIMEOUT", 120*time.Second),
		SummarizerURL:     getEnv("SUMMARIZER_URL", "http://localhost:8388"),
		SummarizerModel:   getEnv("SUMMARIZER_MODEL", "facebook/bart-large-cnn"),
		SummarizerTimeout: getEnvDuration("SUMMARIZER_TIMEOUT", 120*time.Second),
		MaxWorkers:        getEnvInt("MAX_WORKERS", 4),
		JobQueueSize:      getEnvInt("JOB_QUEUE_SIZE", 64),
		ConvertAudio:      getEnvBool("CONVERT_AUDIO", false),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

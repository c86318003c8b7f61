// Package config reads runtime settings from QUIZARCADE_* environment
// variables.
package config

import (
	"os"
	"strconv"

	"github.com/abhisek/quizarcade/internal/archive"
	"github.com/abhisek/quizarcade/internal/llm"
)

type Config struct {
	DB        DBConfig
	Session   SessionConfig
	Extractor ExtractorConfig
	Events    EventsConfig
	S3        archive.S3Config
	HTTP      HTTPConfig
	LLM       llm.Config
}

type DBConfig struct {
	Driver string // sqlite | postgres
	DSN    string // empty means the default SQLite path
}

type SessionConfig struct {
	Backend       string // sql | redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisKey      string
}

type ExtractorConfig struct {
	Kind string // http | llm
	URL  string
	Key  string
}

type EventsConfig struct {
	AMQPURL string // empty logs events instead
	Queue   string
}

type HTTPConfig struct {
	Addr string
}

// Load builds a Config from the environment.
func Load() *Config {
	return &Config{
		DB: DBConfig{
			Driver: getEnv("QUIZARCADE_DB_DRIVER", "sqlite"),
			DSN:    getEnv("QUIZARCADE_DB_DSN", ""),
		},
		Session: SessionConfig{
			Backend:       getEnv("QUIZARCADE_SESSION_BACKEND", "sql"),
			RedisAddr:     getEnv("QUIZARCADE_REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("QUIZARCADE_REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("QUIZARCADE_REDIS_DB", 0),
			RedisKey:      getEnv("QUIZARCADE_REDIS_KEY", "quiz:current"),
		},
		Extractor: ExtractorConfig{
			Kind: getEnv("QUIZARCADE_EXTRACTOR", "http"),
			URL:  getEnv("QUIZARCADE_EXTRACT_URL", ""),
			Key:  getEnv("QUIZARCADE_EXTRACT_KEY", ""),
		},
		Events: EventsConfig{
			AMQPURL: getEnv("QUIZARCADE_AMQP_URL", ""),
			Queue:   getEnv("QUIZARCADE_EVENTS_QUEUE", "quizarcade.events"),
		},
		S3: archive.S3Config{
			Endpoint:  getEnv("QUIZARCADE_S3_ENDPOINT", ""),
			AccessKey: getEnv("QUIZARCADE_S3_ACCESS_KEY", ""),
			SecretKey: getEnv("QUIZARCADE_S3_SECRET_KEY", ""),
			Bucket:    getEnv("QUIZARCADE_S3_BUCKET", "quizarcade-uploads"),
			UseSSL:    getEnv("QUIZARCADE_S3_SSL", "false") == "true",
		},
		HTTP: HTTPConfig{
			Addr: getEnv("QUIZARCADE_HTTP_ADDR", "127.0.0.1:8080"),
		},
		LLM: llm.ConfigFromEnv(),
	}
}

// ArchiveEnabled reports whether uploads should be copied to object storage.
func (c *Config) ArchiveEnabled() bool {
	return c.S3.Endpoint != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

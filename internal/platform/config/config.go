package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr              string
	LogLevel          string
	SessionSigningKey string
	SessionBackend    string
	Redis             RedisConfig
	DatabaseURL       string
	Kafka             KafkaConfig
	Providers         ProvidersConfig
	PoliceOfficers    string
}

// RedisConfig holds connection settings for the session backend.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds settings for SOS dispatch notifications.
type KafkaConfig struct {
	Brokers  []string
	SOSTopic string
}

// ProvidersConfig points the external data providers at their upstreams.
// An empty URL makes the provider serve its fallback value.
type ProvidersConfig struct {
	WeatherURL   string
	NewsURL      string
	VideoURL     string
	TranslateURL string
	Timeout      time.Duration
}

const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	signingKey := os.Getenv("SESSION_SIGNING_KEY")
	if signingKey == "" {
		// Development default; deployments must override it.
		signingKey = "dev-session-key-change-in-production"
	}

	return Server{
		Addr:              envOr("ABHAYA_ADDR", ":8080"),
		LogLevel:          envOr("LOG_LEVEL", "info"),
		SessionSigningKey: signingKey,
		SessionBackend:    envOr("SESSION_BACKEND", SessionBackendMemory),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Kafka: KafkaConfig{
			Brokers:  splitList(os.Getenv("KAFKA_BROKERS")),
			SOSTopic: envOr("KAFKA_SOS_TOPIC", "abhaya.sos.dispatched"),
		},
		Providers: ProvidersConfig{
			WeatherURL:   os.Getenv("WEATHER_API_URL"),
			NewsURL:      os.Getenv("NEWS_API_URL"),
			VideoURL:     os.Getenv("VIDEO_API_URL"),
			TranslateURL: os.Getenv("TRANSLATE_API_URL"),
			Timeout:      envDuration("PROVIDER_TIMEOUT", 3*time.Second),
		},
		PoliceOfficers: os.Getenv("POLICE_OFFICERS"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

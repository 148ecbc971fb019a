package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers      []string
	KafkaRequestTopic string
	KafkaResultTopic  string
	KafkaGroupID      string
	HTTPAddr          string
	LogLevel          string
	LogFormat         string
	ShutdownTimeout   time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Reanalysis weather source configuration.
	WeatherBaseURL string
	WeatherTimeout time.Duration

	// Land cover roughness lookup configuration.
	LandCoverBaseURL   string
	LandCoverTimeout   time.Duration
	LandCoverCacheSize int

	// MaxShearFactor caps the magnitude of the projection factor; zero
	// leaves it unconstrained. See domain.Projector.
	MaxShearFactor float64
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	flushInterval, err := parseDuration("BATCH_FLUSH_INTERVAL", "500ms")
	if err != nil {
		return nil, err
	}

	weatherTimeout, err := parseDuration("WEATHER_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	landCoverTimeout, err := parseDuration("LANDCOVER_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	batchSize, err := parsePositiveInt("BATCH_SIZE", 50)
	if err != nil {
		return nil, err
	}

	cacheSize, err := parsePositiveInt("LANDCOVER_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	maxShearFactor, err := parseMaxShearFactor()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaRequestTopic:  envOrDefault("KAFKA_REQUEST_TOPIC", "site-assessment-requests"),
		KafkaResultTopic:   envOrDefault("KAFKA_RESULT_TOPIC", "projected-wind-series"),
		KafkaGroupID:       envOrDefault("KAFKA_GROUP_ID", "windshear-service"),
		HTTPAddr:           envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		LogFormat:          envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		WeatherBaseURL: envOrDefault("WEATHER_BASE_URL", "https://reanalysis.gustmaps.io"),
		WeatherTimeout: weatherTimeout,

		LandCoverBaseURL:   envOrDefault("LANDCOVER_BASE_URL", "https://landcover.gustmaps.io"),
		LandCoverTimeout:   landCoverTimeout,
		LandCoverCacheSize: cacheSize,

		MaxShearFactor: maxShearFactor,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaRequestTopic == "" {
		return nil, errors.New("KAFKA_REQUEST_TOPIC is required")
	}
	if cfg.KafkaResultTopic == "" {
		return nil, errors.New("KAFKA_RESULT_TOPIC is required")
	}
	if cfg.WeatherBaseURL == "" {
		return nil, errors.New("WEATHER_BASE_URL is required")
	}
	if cfg.LandCoverBaseURL == "" {
		return nil, errors.New("LANDCOVER_BASE_URL is required")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseBrokers splits a comma-separated broker list, dropping empty entries.
func parseBrokers(s string) []string {
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseMaxShearFactor() (float64, error) {
	s := os.Getenv("MAX_SHEAR_FACTOR")
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0, errors.New("invalid MAX_SHEAR_FACTOR")
	}
	return f, nil
}

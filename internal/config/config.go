package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Prediction cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Analysis configuration.
	RegionsFile         string // empty uses the embedded dataset
	SyntheticSeed       uint64
	AnalysisConcurrency int

	// Prediction service configuration.
	PredictionURL       string
	PredictionEnabled   bool
	PredictionTimeout   time.Duration
	PredictionCache     string
	PredictionCacheSize int
	PredictionCacheTTL  time.Duration
	RedisAddr           string

	// Streaming pipeline configuration.
	PipelineEnabled    bool
	KafkaBrokers       []string
	KafkaSourceTopic   string
	KafkaSinkTopic     string
	KafkaGroupID       string
	BatchSize          int
	BatchFlushInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	seed, err := strconv.ParseUint(sharedcfg.EnvOrDefault("SYNTHETIC_SEED", "42"), 10, 64)
	if err != nil {
		return nil, errors.New("invalid SYNTHETIC_SEED: must be a non-negative integer")
	}

	concurrency, err := parsePositiveInt("ANALYSIS_CONCURRENCY", 8)
	if err != nil {
		return nil, err
	}

	predictionTimeout, err := parsePositiveDuration("PREDICTION_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	cacheTTL, err := parsePositiveDuration("PREDICTION_CACHE_TTL", "15m")
	if err != nil {
		return nil, err
	}

	cacheSize, err := parsePositiveInt("PREDICTION_CACHE_SIZE", 256)
	if err != nil {
		return nil, err
	}

	predictionURL := strings.TrimRight(os.Getenv("PREDICTION_URL"), "/")
	predictionEnabled := predictionURL != ""
	if v := os.Getenv("PREDICTION_ENABLED"); v != "" {
		predictionEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		RegionsFile:         os.Getenv("REGIONS_FILE"),
		SyntheticSeed:       seed,
		AnalysisConcurrency: concurrency,

		PredictionURL:       predictionURL,
		PredictionEnabled:   predictionEnabled,
		PredictionTimeout:   predictionTimeout,
		PredictionCache:     strings.ToLower(sharedcfg.EnvOrDefault("PREDICTION_CACHE", CacheMemory)),
		PredictionCacheSize: cacheSize,
		PredictionCacheTTL:  cacheTTL,
		RedisAddr:           sharedcfg.EnvOrDefault("REDIS_ADDR", "localhost:6379"),

		PipelineEnabled:    os.Getenv("PIPELINE_ENABLED") == "true",
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "region-analysis-requests"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "region-analysis-reports"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "groundwater-insights"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
	}

	switch cfg.PredictionCache {
	case CacheMemory, CacheRedis, CacheNone:
	default:
		return nil, fmt.Errorf("invalid PREDICTION_CACHE %q: must be memory, redis or none", cfg.PredictionCache)
	}
	if cfg.PredictionEnabled && cfg.PredictionURL == "" {
		return nil, errors.New("PREDICTION_ENABLED is true but PREDICTION_URL is not set")
	}
	if cfg.PipelineEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaSourceTopic == "" {
			return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required")
		}
	}

	return cfg, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

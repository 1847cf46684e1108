package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"airsense/internal/airquality"
	"airsense/internal/detection"
	"airsense/internal/errors"
	"airsense/internal/normalize"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Detection     detection.DetectorConfig
	Normalization normalize.Config
	AirQuality    airquality.Thresholds
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string

	MaxUploadMB          int
	MaxConcurrentUploads int
	ShutdownTimeout      time.Duration
}

// MaxUploadBytes is the request body cap
func (s ServerConfig) MaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) << 20
}

// Load reads configuration from environment variables and validates it.
// Callers load any .env file first.
func Load() (*Config, error) {
	config := &Config{
		Server:        *loadServerConfig(),
		Detection:     loadDetectionConfig(),
		Normalization: loadNormalizationConfig(),
		AirQuality:    loadAirQualityConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// Default is the configuration with no environment overrides
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                 "8080",
			GinMode:              "debug",
			MaxUploadMB:          32,
			MaxConcurrentUploads: 4,
			ShutdownTimeout:      10 * time.Second,
		},
		Detection:     detection.DefaultDetectorConfig(),
		Normalization: normalize.DefaultConfig(),
		AirQuality:    airquality.DefaultThresholds(),
	}
}

func loadServerConfig() *ServerConfig {
	d := Default().Server
	return &ServerConfig{
		Port:                 getEnvOrDefault("PORT", d.Port),
		GinMode:              getEnvOrDefault("GIN_MODE", d.GinMode),
		MaxUploadMB:          getEnvIntOrDefault("MAX_UPLOAD_MB", d.MaxUploadMB),
		MaxConcurrentUploads: getEnvIntOrDefault("MAX_CONCURRENT_UPLOADS", d.MaxConcurrentUploads),
		ShutdownTimeout:      getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", d.ShutdownTimeout),
	}
}

func loadDetectionConfig() detection.DetectorConfig {
	cfg := detection.DefaultDetectorConfig()
	cfg.SampleSize = getEnvIntOrDefault("DETECT_SAMPLE_SIZE", cfg.SampleSize)
	cfg.ProbeSize = getEnvIntOrDefault("VALUE_PROBE_SIZE", cfg.ProbeSize)
	cfg.EpochMinMagnitude = getEnvFloatOrDefault("EPOCH_MIN_MAGNITUDE", cfg.EpochMinMagnitude)
	return cfg
}

func loadNormalizationConfig() normalize.Config {
	cfg := normalize.DefaultConfig()
	cfg.Thresholds.Nanos = getEnvFloatOrDefault("EPOCH_NS_THRESHOLD", cfg.Thresholds.Nanos)
	cfg.Thresholds.Micros = getEnvFloatOrDefault("EPOCH_US_THRESHOLD", cfg.Thresholds.Micros)
	cfg.Thresholds.Millis = getEnvFloatOrDefault("EPOCH_MS_THRESHOLD", cfg.Thresholds.Millis)
	cfg.Thresholds.Seconds = getEnvFloatOrDefault("EPOCH_S_THRESHOLD", cfg.Thresholds.Seconds)
	cfg.RetryFraction = getEnvFloatOrDefault("TIME_RETRY_FRACTION", cfg.RetryFraction)
	return cfg
}

func loadAirQualityConfig() airquality.Thresholds {
	t := airquality.DefaultThresholds()
	t.Good = getEnvFloatOrDefault("CO2_GOOD_THRESHOLD", t.Good)
	t.Warn = getEnvFloatOrDefault("CO2_WARN_THRESHOLD", t.Warn)
	return t
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if config.Server.MaxUploadMB <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	if config.Server.MaxConcurrentUploads <= 0 {
		return errors.ConfigInvalid("MAX_CONCURRENT_UPLOADS must be positive")
	}
	if config.Detection.SampleSize <= 0 || config.Detection.ProbeSize <= 0 {
		return errors.ConfigInvalid("DETECT_SAMPLE_SIZE and VALUE_PROBE_SIZE must be positive")
	}
	if config.Detection.EpochMinMagnitude <= 0 {
		return errors.ConfigInvalid("EPOCH_MIN_MAGNITUDE must be positive")
	}
	if err := config.Normalization.Thresholds.Validate(); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	if f := config.Normalization.RetryFraction; f <= 0 || f > 1 {
		return errors.ConfigInvalid(fmt.Sprintf("TIME_RETRY_FRACTION must be in (0, 1], got %g", f))
	}
	if err := config.AirQuality.Validate(); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Printf("[Config] ignoring %s=%q: not an integer", key, value)
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
		log.Printf("[Config] ignoring %s=%q: not a number", key, value)
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		log.Printf("[Config] ignoring %s=%q: not a duration", key, value)
	}
	return defaultValue
}

package utils

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	API       APIConfig
	Cache     CacheConfig
	Booking   BookingConfig
	QR        QRConfig
	Scan      ScanConfig
	Telemetry TelemetryConfig
}

type AppConfig struct {
	Name    string
	Debug   bool
	LogPath string
}

type APIConfig struct {
	BaseURL         string
	Timeout         time.Duration
	RateLimitPerSec float64
	RateBurst       int
}

type CacheConfig struct {
	Driver   string
	DSN      string
	MaxConns int
}

type BookingConfig struct {
	AdvanceNotice time.Duration
}

type QRConfig struct {
	Size int
	// AllowPending relaxes the QR rule to PENDING bookings. Off unless product asks for it.
	AllowPending bool
}

type ScanConfig struct {
	DebounceWindow time.Duration
}

type TelemetryConfig struct {
	Endpoint string
	Insecure bool
}

// LoadConfig reads path (an env or yaml file) if it exists, then the process environment.
// An empty path means ".env" in the working directory.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		path = ".env"
		v.SetConfigType("env")
	}
	v.SetConfigFile(path)

	// Set defaults
	v.SetDefault("APP_NAME", "evcharge")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("API_BASE_URL", "http://localhost:5000/api/")
	v.SetDefault("API_TIMEOUT_SECONDS", 30)
	v.SetDefault("API_RATE_LIMIT_PER_SEC", 5)
	v.SetDefault("API_RATE_BURST", 10)
	v.SetDefault("CACHE_DRIVER", "sqlite")
	v.SetDefault("CACHE_DSN", "evcharge.db")
	v.SetDefault("CACHE_MAX_CONNS", 4)
	v.SetDefault("ADVANCE_NOTICE_HOURS", 12)
	v.SetDefault("QR_SIZE", 256)
	v.SetDefault("QR_ALLOW_PENDING", false)
	v.SetDefault("SCAN_DEBOUNCE_SECONDS", 3)
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)

	if err := v.ReadInConfig(); err != nil {
		// a missing file is fine for a client; env and defaults still apply
		if !errors.Is(err, os.ErrNotExist) {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	v.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    v.GetString("APP_NAME"),
			Debug:   v.GetBool("DEBUG"),
			LogPath: v.GetString("LOG_PATH"),
		},
		API: APIConfig{
			BaseURL:         v.GetString("API_BASE_URL"),
			Timeout:         time.Duration(v.GetInt("API_TIMEOUT_SECONDS")) * time.Second,
			RateLimitPerSec: v.GetFloat64("API_RATE_LIMIT_PER_SEC"),
			RateBurst:       v.GetInt("API_RATE_BURST"),
		},
		Cache: CacheConfig{
			Driver:   v.GetString("CACHE_DRIVER"),
			DSN:      v.GetString("CACHE_DSN"),
			MaxConns: v.GetInt("CACHE_MAX_CONNS"),
		},
		Booking: BookingConfig{
			AdvanceNotice: time.Duration(v.GetInt("ADVANCE_NOTICE_HOURS")) * time.Hour,
		},
		QR: QRConfig{
			Size:         v.GetInt("QR_SIZE"),
			AllowPending: v.GetBool("QR_ALLOW_PENDING"),
		},
		Scan: ScanConfig{
			DebounceWindow: time.Duration(v.GetInt("SCAN_DEBOUNCE_SECONDS")) * time.Second,
		},
		Telemetry: TelemetryConfig{
			Endpoint: v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
			Insecure: v.GetBool("OTEL_EXPORTER_OTLP_INSECURE"),
		},
	}

	if config.API.BaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL must not be empty")
	}

	return config, nil
}

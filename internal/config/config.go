package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/weather-dashboard/internal/forecast"
	"github.com/i474232898/weather-dashboard/internal/forecast/providers"
	"github.com/i474232898/weather-dashboard/internal/revalidate"
)

type AppConfig struct {
	Port string

	// Upstream forecast API.
	OpenMeteoBaseURL   string
	Timezone           string
	HTTPTimeout        time.Duration
	UpstreamMaxRetries int
	UpstreamRPS        float64
	UpstreamBurst      int

	// Revalidation policy.
	RefreshInterval       time.Duration
	RevalidateOnFocus     bool
	RevalidateOnReconnect bool

	// StoreMaxEntries caps the number of cached selections (0 = unlimited).
	StoreMaxEntries int

	SessionTTL  time.Duration
	LabelLocale string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	return fromEnv()
}

func fromEnv() (*AppConfig, error) {
	cfg := &AppConfig{}
	var err error

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.OpenMeteoBaseURL = getenvDefault("OPEN_METEO_BASE_URL", providers.DefaultOpenMeteoURL)
	cfg.Timezone = getenvDefault("FORECAST_TIMEZONE", forecast.DefaultTimezone)
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("invalid FORECAST_TIMEZONE: %w", err)
	}

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	cfg.UpstreamMaxRetries = getenvInt("UPSTREAM_MAX_RETRIES", 0)
	if cfg.UpstreamRPS, err = getenvFloat("UPSTREAM_RPS", 5); err != nil {
		return nil, err
	}
	cfg.UpstreamBurst = getenvInt("UPSTREAM_BURST", 10)

	policy := revalidate.DefaultPolicy()
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", policy.RefreshInterval); err != nil {
		return nil, err
	}
	if cfg.RevalidateOnFocus, err = getenvBool("REVALIDATE_ON_FOCUS", policy.RevalidateOnFocus); err != nil {
		return nil, err
	}
	if cfg.RevalidateOnReconnect, err = getenvBool("REVALIDATE_ON_RECONNECT", policy.RevalidateOnReconnect); err != nil {
		return nil, err
	}

	cfg.StoreMaxEntries = getenvInt("STORE_MAX_ENTRIES", 256)
	if cfg.SessionTTL, err = getenvDuration("SESSION_TTL", 2*time.Hour); err != nil {
		return nil, err
	}

	cfg.LabelLocale = strings.ToLower(getenvDefault("LABEL_LOCALE", "ja"))
	if cfg.LabelLocale != "ja" && cfg.LabelLocale != "en" {
		return nil, fmt.Errorf("invalid LABEL_LOCALE %q: want ja or en", cfg.LabelLocale)
	}

	return cfg, nil
}

// Policy returns the cache revalidation policy.
func (c *AppConfig) Policy() revalidate.Policy {
	return revalidate.Policy{
		RevalidateOnFocus:     c.RevalidateOnFocus,
		RevalidateOnReconnect: c.RevalidateOnReconnect,
		RefreshInterval:       c.RefreshInterval,
	}
}

// CacheIdleTTL is how long a selection nobody reads stays cached and
// refreshed. Two refresh intervals, or one hour when refresh is off.
func (c *AppConfig) CacheIdleTTL() time.Duration {
	if c.RefreshInterval <= 0 {
		return time.Hour
	}
	return 2 * c.RefreshInterval
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Addr           string        `env:"ADDR" envDefault:":8080"`
	DBPath         string        `env:"DB_PATH" envDefault:"liga.db"`
	TrustedProxies []string      `env:"TRUSTED_PROXIES" envDefault:"127.0.0.1,::1"`
	CORSOrigins    []string      `env:"CORS_ORIGINS" envDefault:"http://localhost:5173"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"720h"`
	CookieSecure   bool          `env:"COOKIE_SECURE" envDefault:"true"`
	AdminEmails    []string      `env:"ADMIN_EMAILS"`
	TimeZone       string        `env:"TIMEZONE" envDefault:"America/Bogota"`
	// Reject results that are not a complete best-of-five match.
	StrictBestOfFive bool `env:"STRICT_BEST_OF_FIVE" envDefault:"false"`
}

// Load reads Config from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Location resolves TimeZone, falling back to UTC when it is empty.
func (c Config) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

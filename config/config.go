package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime settings for the console client. Every value is
// read from NEXDOC_* environment variables.
type Config struct {
	// APIBaseURL is the root of the NexDoc backend, without the /api/v1 prefix.
	APIBaseURL string `envconfig:"API_BASE_URL" default:"http://localhost:8000"`

	// RequestTimeout bounds every backend call. The backend itself has no
	// timeout contract, so transport timeouts surface as network failures.
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`

	// SessionDBPath is the sqlite file holding the auth token and user
	// profile. ":memory:" keeps the session process-local.
	SessionDBPath string `envconfig:"SESSION_DB_PATH" default:"./session.db"`

	// EncryptionKey encrypts the token at rest. Empty disables encryption.
	EncryptionKey string `envconfig:"ENCRYPTION_KEY"`

	// DisplayTimezone is the IANA zone used to render backend timestamps,
	// which arrive as naive UTC. "Local" uses the machine zone.
	DisplayTimezone string `envconfig:"DISPLAY_TIMEZONE" default:"Local"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// DemoMode starts the bundled mock backend and points the client at it.
	DemoMode bool `envconfig:"DEMO_MODE" default:"false"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("NEXDOC", &cfg); err != nil {
		return nil, fmt.Errorf("error processing environment config: %w", err)
	}
	return &cfg, nil
}

// Location resolves DisplayTimezone to a *time.Location.
func (c *Config) Location() (*time.Location, error) {
	if c.DisplayTimezone == "" || c.DisplayTimezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid display timezone %q: %w", c.DisplayTimezone, err)
	}
	return loc, nil
}

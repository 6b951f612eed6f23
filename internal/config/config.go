package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata" // zone database for hosts without one

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Supported DB_DRIVER values.
const (
	DriverMongo    = "mongo"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the configuration for the sample service
// Environment variables are automatically parsed from SAMPLE_SERVICE_ prefix
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"5000"`

	DBDriver string `envconfig:"DB_DRIVER" default:"mongo"`

	// MongoDB Configuration. MongoURI wins; otherwise the URI is built from
	// scheme, user, password and host.
	MongoURI      string `envconfig:"MONGO_URI" default:""`
	MongoScheme   string `envconfig:"MONGO_SCHEME" default:"mongodb+srv"`
	MongoUser     string `envconfig:"MONGO_USER" default:""`
	MongoPassword string `envconfig:"MONGO_PASSWORD" default:""`
	MongoHost     string `envconfig:"MONGO_HOST" default:""`
	MongoAppName  string `envconfig:"MONGO_APP_NAME" default:"due-sample-server"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"due-sample"`

	SQLitePath  string `envconfig:"SQLITE_PATH" default:"data/due-sample.db"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// Session Configuration
	JWTSecret string        `envconfig:"JWT_SECRET" default:""`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`

	// TimeZone is the zone sample timestamps and date filters are resolved in.
	TimeZone string `envconfig:"TIME_ZONE" default:"Asia/Dhaka"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`

	// Health Configuration
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthCheckTimeoutSeconds int `envconfig:"HEALTH_CHECK_TIMEOUT_SECONDS" default:"2"`
	BootstrapTimeoutSeconds   int `envconfig:"BOOTSTRAP_TIMEOUT_SECONDS" default:"30"`

	location *time.Location
}

// ResolveDefaults validates the driver, loads the time zone and derives the
// Mongo URI when it is not given directly.
func (c *Config) ResolveDefaults() error {
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	switch c.DBDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			uri, err := c.buildMongoURI()
			if err != nil {
				return err
			}
			c.MongoURI = uri
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for DB_DRIVER=sqlite")
		}
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}

	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}

	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return fmt.Errorf("invalid TIME_ZONE %q: %w", c.TimeZone, err)
	}
	c.location = loc
	return nil
}

func (c *Config) buildMongoURI() (string, error) {
	if c.MongoHost == "" {
		return "", fmt.Errorf("MONGO_URI or MONGO_HOST is required for DB_DRIVER=mongo")
	}
	u := url.URL{Scheme: c.MongoScheme, Host: c.MongoHost, Path: "/"}
	if c.MongoUser != "" {
		u.User = url.UserPassword(c.MongoUser, c.MongoPassword)
	}
	if c.MongoAppName != "" {
		u.RawQuery = url.Values{"appName": {c.MongoAppName}}.Encode()
	}
	return u.String(), nil
}

// New creates a new Config by parsing environment variables
// Environment variables should be prefixed with SAMPLE_SERVICE_
// Example: SAMPLE_SERVICE_DB_DRIVER, SAMPLE_SERVICE_HTTP_PORT
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("SAMPLE_SERVICE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("mongo_database", cfg.MongoDatabase).
		Bool("postgres_dsn_present", cfg.PostgresDSN != "").
		Str("time_zone", cfg.TimeZone).
		Dur("token_ttl", cfg.TokenTTL).
		Strs("cors_origins", cfg.CORSAllowedOrigins).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing: in-memory SQLite, a
// fixed secret and UTC.
func NewForTesting() *Config {
	cfg := &Config{
		Environment:               EnvTesting,
		HTTPPort:                  5000,
		DBDriver:                  DriverSQLite,
		MongoDatabase:             "due-sample-test",
		SQLitePath:                ":memory:",
		JWTSecret:                 "test-secret",
		TokenTTL:                  24 * time.Hour,
		TimeZone:                  "UTC",
		CORSAllowedOrigins:        []string{"http://localhost:5173"},
		HealthIntervalSeconds:     1,
		HealthCheckTimeoutSeconds: 1,
		BootstrapTimeoutSeconds:   5,
		location:                  time.UTC,
	}
	return cfg
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// Location returns the configured time zone, UTC until ResolveDefaults succeeds.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

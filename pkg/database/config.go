package database

import (
	"fmt"
	"net/url"
	"time"

	"github.com/imedbrahmi/hospital_backend/config"
)

// Config holds database connection and pool settings
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string

	// pgxpool sizing
	MaxConns           int32
	MinConns           int32
	ConnMaxLifetimeMin int
	ConnMaxIdleTimeMin int

	AutoMigrate  bool
	VersionTable string

	// Query logging
	EnableLogging        bool
	SlowQueryThresholdMs int
}

// DSN returns a key=value PostgreSQL connection string, the form lib/pq and
// the casbin watcher expect.
func (c Config) DSN() string {
	return buildDSN(c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// URL returns the same connection as a postgres:// URL for pgx.
func (c Config) URL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.DBName,
	}
	q := u.Query()
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

func (c Config) ConnMaxLifetime() time.Duration {
	if c.ConnMaxLifetimeMin <= 0 {
		return time.Hour
	}
	return time.Duration(c.ConnMaxLifetimeMin) * time.Minute
}

func (c Config) ConnMaxIdleTime() time.Duration {
	if c.ConnMaxIdleTimeMin <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.ConnMaxIdleTimeMin) * time.Minute
}

func (c Config) SlowQueryThreshold() time.Duration {
	if c.SlowQueryThresholdMs <= 0 {
		return 200 * time.Millisecond
	}
	return time.Duration(c.SlowQueryThresholdMs) * time.Millisecond
}

// DefaultConfig returns sensible defaults for database configuration
func DefaultConfig() Config {
	return Config{
		Host:                 "localhost",
		Port:                 5432,
		SSLMode:              "disable",
		MaxConns:             25,
		MinConns:             2,
		ConnMaxLifetimeMin:   60,
		ConnMaxIdleTimeMin:   30,
		VersionTable:         "schema_version",
		SlowQueryThresholdMs: 200,
	}
}

// FromCentralConfig converts central config.DatabaseConfig to package Config
func FromCentralConfig(c config.DatabaseConfig) Config {
	def := DefaultConfig()
	out := Config{
		Host:                 c.Host,
		Port:                 c.Port,
		User:                 c.User,
		Password:             c.Password,
		DBName:               c.DBName,
		SSLMode:              c.SSLMode,
		MaxConns:             int32(c.Pool.MaxConns),
		MinConns:             int32(c.Pool.MinConns),
		ConnMaxLifetimeMin:   c.Pool.ConnMaxLifetimeMin,
		ConnMaxIdleTimeMin:   c.Pool.ConnMaxIdleTimeMin,
		AutoMigrate:          c.Migrations.AutoMigrate,
		VersionTable:         c.Migrations.VersionTable,
		EnableLogging:        c.Logging.Enabled,
		SlowQueryThresholdMs: c.Logging.SlowQueryThresholdMs,
	}
	if out.Port == 0 {
		out.Port = def.Port
	}
	if out.SSLMode == "" {
		out.SSLMode = def.SSLMode
	}
	if out.MaxConns <= 0 {
		out.MaxConns = def.MaxConns
	}
	if out.VersionTable == "" {
		out.VersionTable = def.VersionTable
	}
	return out
}

// NewDSN creates a DSN string from central config.DatabaseConfig
func NewDSN(c config.DatabaseConfig) string {
	return FromCentralConfig(c).DSN()
}

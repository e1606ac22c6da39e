package config

import (
	"errors"
	"fmt"
	"strings"
)

type Config struct {
	Database       DatabaseConfig       `mapstructure:"database"`
	CasbinDatabase DatabaseConfig       `mapstructure:"casbin_database"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Server         ServerConfig         `mapstructure:"server"`
	Authentication AuthenticationConfig `mapstructure:"authentication"`
	Authorization  AuthorizationConfig  `mapstructure:"authorization"`
	Email          EmailConfig          `mapstructure:"email"`
	SMS            SMSConfig            `mapstructure:"sms"`
	Password       PasswordConfig       `mapstructure:"password"`
	Scheduling     SchedulingConfig     `mapstructure:"scheduling"`
	Documents      DocumentsConfig      `mapstructure:"documents"`
	Observability  ObservabilityConfig  `mapstructure:"observability"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	S3             S3Config             `mapstructure:"s3"`
	Nats           NatsConfig           `mapstructure:"nats"`
	SuperAdmin     SuperAdminSeedConfig `mapstructure:"superadmin"`
}

type NatsConfig struct {
	URL           string `mapstructure:"url" yaml:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix" yaml:"subject_prefix"`
}

type DatabaseConfig struct {
	Host       string                  `mapstructure:"host"`
	Port       int                     `mapstructure:"port"`
	User       string                  `mapstructure:"user"`
	Password   string                  `mapstructure:"password"`
	DBName     string                  `mapstructure:"dbname"`
	SSLMode    string                  `mapstructure:"sslmode"`
	Pool       DatabasePoolConfig      `mapstructure:"pool"`
	Migrations DatabaseMigrationConfig `mapstructure:"migrations"`
	Logging    DatabaseLoggingConfig   `mapstructure:"logging"`
}

type DatabasePoolConfig struct {
	MaxConns           int `mapstructure:"max_conns"`
	MinConns           int `mapstructure:"min_conns"`
	ConnMaxLifetimeMin int `mapstructure:"conn_max_lifetime_minutes"`
	ConnMaxIdleTimeMin int `mapstructure:"conn_max_idle_minutes"`
}

type DatabaseMigrationConfig struct {
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
	VersionTable string `mapstructure:"version_table"`
}

type DatabaseLoggingConfig struct {
	Enabled              bool `mapstructure:"enabled"`
	SlowQueryThresholdMs int  `mapstructure:"slow_query_threshold_ms"`
}

type RedisConfig struct {
	Addr                string `mapstructure:"addr"`
	DB                  int    `mapstructure:"db"`
	Username            string `mapstructure:"username"`
	Password            string `mapstructure:"password"`
	PoolSize            int    `mapstructure:"pool_size"`
	MinIdleConns        int    `mapstructure:"min_idle_conns"`
	DialTimeoutSeconds  int    `mapstructure:"dial_timeout_seconds"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds"`
}

type RateLimitConfig struct {
	Max           int `mapstructure:"max"`
	WindowSeconds int `mapstructure:"window_seconds"`
}

type ServerConfig struct {
	Port           int             `mapstructure:"port"`
	TimeoutSeconds int             `mapstructure:"timeout_seconds"`
	Environment    string          `mapstructure:"environment"`
	Domain         string          `mapstructure:"domain"`
	Databases      []string        `mapstructure:"databases"`
	PhoneRegion    string          `mapstructure:"phone_region"`
	BodyLimitMB    int             `mapstructure:"body_limit_mb"`
	CORS           CORSConfig      `mapstructure:"cors"`
	RateLimit      RateLimitConfig `mapstructure:"rate_limit"`
	LoginRateLimit RateLimitConfig `mapstructure:"login_rate_limit"`
}

func (s ServerConfig) IsProduction() bool {
	return strings.EqualFold(s.Environment, "production")
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowOrigins     []string `mapstructure:"allow_origins"`
	AllowMethods     []string `mapstructure:"allow_methods"`
	AllowHeaders     []string `mapstructure:"allow_headers"`
	ExposeHeaders    []string `mapstructure:"expose_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAgeSeconds    int      `mapstructure:"max_age_seconds"`
}

type AuthenticationConfig struct {
	Paseto           PasetoConfig `mapstructure:"paseto"`
	StaffCookie      string       `mapstructure:"staff_cookie"`
	PatientCookie    string       `mapstructure:"patient_cookie"`
	CookieExpireDays int          `mapstructure:"cookie_expire_days"`
	// EncryptionKey is a 32-byte hex string used for AES-256-GCM encryption
	// of the national identity number (CIN).
	EncryptionKey string `mapstructure:"encryption_key"`
}

type PasetoConfig struct {
	Mode         string `mapstructure:"mode"`
	LocalKeyHex  string `mapstructure:"local_key_hex"`
	SecretKeyHex string `mapstructure:"secret_key_hex"`
	PublicKeyHex string `mapstructure:"public_key_hex"`
	Issuer       string `mapstructure:"issuer"`
	Audience     string `mapstructure:"audience"`
}

type AuthorizationConfig struct {
	EnableAudit        bool   `mapstructure:"enable_audit"`
	PolicySyncEnabled  bool   `mapstructure:"policy_sync_enabled"`
	WatcherChannel     string `mapstructure:"watcher_channel"`
	HealthCheckEnabled bool   `mapstructure:"health_check_enabled"`
}

type EmailConfig struct {
	Enabled        bool       `mapstructure:"enabled"`
	From           string     `mapstructure:"from"`
	SupportAddress string     `mapstructure:"support_address"`
	AppName        string     `mapstructure:"app_name"`
	SMTP           SMTPConfig `mapstructure:"smtp"`
}

type SMTPConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	UseTLS         bool   `mapstructure:"use_tls"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type SMSConfig struct {
	Enabled bool        `mapstructure:"enabled"`
	SMSIR   SMSIRConfig `mapstructure:"smsir"`
}

type SMSIRConfig struct {
	APIKey     string `mapstructure:"api_key"`
	SecretKey  string `mapstructure:"secret_key"`
	TemplateID string `mapstructure:"template_id"`
}

type PasswordConfig struct {
	MemoryKiB     uint32 `mapstructure:"memory_kib"`
	Iterations    uint32 `mapstructure:"iterations"`
	Parallelism   uint8  `mapstructure:"parallelism"`
	SaltLength    uint32 `mapstructure:"salt_length"`
	KeyLength     uint32 `mapstructure:"key_length"`
	LowMemoryMode bool   `mapstructure:"low_memory_mode"`
	MinLength     int    `mapstructure:"min_length"`
}

type SchedulingConfig struct {
	DefaultSlotMinutes int `mapstructure:"default_slot_minutes"`
	MinSlotMinutes     int `mapstructure:"min_slot_minutes"`
	MaxSlotMinutes     int `mapstructure:"max_slot_minutes"`
}

type DocumentsConfig struct {
	RenderTimeoutSeconds int    `mapstructure:"render_timeout_seconds"`
	HospitalName         string `mapstructure:"hospital_name"`
	Currency             string `mapstructure:"currency"`
}

type SuperAdminSeedConfig struct {
	Email     string `mapstructure:"email"`
	Password  string `mapstructure:"password"`
	FirstName string `mapstructure:"first_name"`
	LastName  string `mapstructure:"last_name"`
	Phone     string `mapstructure:"phone"`
	CIN       string `mapstructure:"cin"`
	DOB       string `mapstructure:"dob"`
	Gender    string `mapstructure:"gender"`
}

type ObservabilityConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	ServiceName    string        `mapstructure:"service_name"`
	ServiceVersion string        `mapstructure:"service_version"`
	Tracing        TracingConfig `mapstructure:"tracing"`
	Metrics        MetricsConfig `mapstructure:"metrics"`
}

type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	SamplingRate float64 `mapstructure:"sampling_rate"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level  string       `mapstructure:"level"`  // debug, info, warn, error
	Format string       `mapstructure:"format"` // text, json
	Output OutputConfig `mapstructure:"output"`
}

type OutputConfig struct {
	Stdout bool          `mapstructure:"stdout"`
	File   FileLogConfig `mapstructure:"file"`
	Loki   LokiConfig    `mapstructure:"loki"`
}

type FileLogConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`        // e.g. "logs/app.log"
	MaxSizeMB  int    `mapstructure:"max_size_mb"` // rotate after N MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type LokiConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"` // e.g. "http://localhost:3100"
	TenantID string `mapstructure:"tenant_id"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Bucket          string `mapstructure:"bucket"`
	PresignTTLSec   int    `mapstructure:"presign_ttl_sec"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
}

// Validate checks the settings every command depends on. Optional
// integrations (SMS, Loki, S3) are checked by their own constructors.
func (c *Config) Validate() error {
	var errs []error

	if c.Database.Host == "" {
		errs = append(errs, errors.New("database.host is required"))
	}
	if c.Database.DBName == "" {
		errs = append(errs, errors.New("database.dbname is required"))
	}

	switch c.Authentication.Paseto.Mode {
	case "local":
		if c.Authentication.Paseto.LocalKeyHex == "" {
			errs = append(errs, errors.New("authentication.paseto.local_key_hex is required in local mode"))
		}
	case "public":
		if c.Authentication.Paseto.SecretKeyHex == "" && c.Authentication.Paseto.PublicKeyHex == "" {
			errs = append(errs, errors.New("authentication.paseto needs secret_key_hex or public_key_hex in public mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("authentication.paseto.mode %q is not local|public", c.Authentication.Paseto.Mode))
	}

	if c.Authentication.CookieExpireDays < 1 {
		errs = append(errs, errors.New("authentication.cookie_expire_days must be at least 1"))
	}
	if k := c.Authentication.EncryptionKey; len(k) != 64 || !isHex(k) {
		errs = append(errs, errors.New("authentication.encryption_key must be 64 hex characters (32 bytes)"))
	}
	if c.Authentication.StaffCookie == c.Authentication.PatientCookie {
		errs = append(errs, errors.New("authentication.staff_cookie and patient_cookie must differ"))
	}

	s := c.Scheduling
	if s.MinSlotMinutes <= 0 || s.MaxSlotMinutes < s.MinSlotMinutes {
		errs = append(errs, fmt.Errorf("scheduling slot bounds [%d, %d] are invalid", s.MinSlotMinutes, s.MaxSlotMinutes))
	} else if s.DefaultSlotMinutes < s.MinSlotMinutes || s.DefaultSlotMinutes > s.MaxSlotMinutes {
		errs = append(errs, fmt.Errorf("scheduling.default_slot_minutes %d is outside [%d, %d]", s.DefaultSlotMinutes, s.MinSlotMinutes, s.MaxSlotMinutes))
	}

	return errors.Join(errs...)
}

func isHex(s string) bool {
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}

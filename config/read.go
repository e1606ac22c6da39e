package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/imedbrahmi/hospital_backend/pkg/constants"
	"github.com/spf13/viper"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 4000)
	v.SetDefault("server.timeout_seconds", 30)
	v.SetDefault("server.environment", constants.EnvDevelopment)
	v.SetDefault("server.phone_region", "TN")
	v.SetDefault("server.body_limit_mb", 10)
	v.SetDefault("server.rate_limit.max", 120)
	v.SetDefault("server.rate_limit.window_seconds", 60)
	v.SetDefault("server.login_rate_limit.max", 10)
	v.SetDefault("server.login_rate_limit.window_seconds", 300)

	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.migrations.version_table", "schema_version")

	v.SetDefault("authentication.paseto.mode", "local")
	v.SetDefault("authentication.paseto.issuer", constants.ServiceName)
	v.SetDefault("authentication.paseto.audience", constants.ServiceName)
	v.SetDefault("authentication.staff_cookie", "staffToken")
	v.SetDefault("authentication.patient_cookie", "patientToken")
	v.SetDefault("authentication.cookie_expire_days", 7)

	v.SetDefault("authorization.enable_audit", true)
	v.SetDefault("authorization.watcher_channel", "casbin_policy_update")
	v.SetDefault("authorization.health_check_enabled", true)

	v.SetDefault("password.memory_kib", 64*1024)
	v.SetDefault("password.iterations", 3)
	v.SetDefault("password.parallelism", 2)
	v.SetDefault("password.salt_length", 16)
	v.SetDefault("password.key_length", 32)
	v.SetDefault("password.min_length", 8)

	v.SetDefault("scheduling.default_slot_minutes", 30)
	v.SetDefault("scheduling.min_slot_minutes", 15)
	v.SetDefault("scheduling.max_slot_minutes", 120)

	v.SetDefault("documents.render_timeout_seconds", 30)
	v.SetDefault("documents.hospital_name", "Hospital Management System")
	v.SetDefault("documents.currency", "TND")

	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.subject_prefix", "hospital")

	v.SetDefault("email.app_name", "Hospital")
	v.SetDefault("observability.service_name", constants.ServiceName)
	v.SetDefault("logging.level", "info")
}

func ReadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(constants.ConfigName)
	v.SetConfigType(constants.ConfigFormat)
	v.AddConfigPath(configPath)

	// Allow env vars to override config values.
	// e.g. HOSPITAL_DATABASE_HOST overrides database.host
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The file is optional in container deployments that configure through env.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if os.Getenv(constants.EnvPrefix+"_DATABASE_HOST") == "" {
			return nil, fmt.Errorf("config file not found in %q and %s_DATABASE_HOST is not set", configPath, constants.EnvPrefix)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

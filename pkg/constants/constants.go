package constants

const (
	ConfigName   = "config"
	ConfigFormat = "yaml"

	EnvPrefix   = "HOSPITAL"
	ServiceName = "hospital_backend"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

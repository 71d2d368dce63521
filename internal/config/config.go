// Package config provides application configuration through environment variables.
package config

import (
	"github.com/allisson/go-env"
	validation "github.com/jellydator/validation"
)

// Config holds all provisioning configuration. It is constructed once at
// startup and passed by reference; components never read the environment
// themselves. The managed env file is NOT loaded into the process
// environment here: it is the secret store's data file, and ambient
// environment variables must stay distinguishable from persisted values.
type Config struct {
	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// EnvFile is the path of the persisted secret/config state.
	EnvFile string
	// ComposeFile is the compose file describing the platform services.
	ComposeFile string
	// GatewayTemplate is the declarative gateway config template.
	GatewayTemplate string
	// GatewayOutput is where the rendered gateway config is written.
	GatewayOutput string

	// DBHost and DBPort locate the data store for probes and reconciliation.
	DBHost string
	DBPort int
	// ObjectStoreEndpoint is the host:port of the object store API.
	ObjectStoreEndpoint string
	// ObjectStoreBucket is the well-known bucket ensured after readiness.
	ObjectStoreBucket string

	// ServiceWaitTimeout is the per-service readiness budget in seconds
	// (one probe per second).
	ServiceWaitTimeout int
	// RoleWaitTimeout is the budget in seconds for the data store's own
	// bootstrap to create the expected privileged roles. Much larger than
	// ServiceWaitTimeout because it rides on first-boot migrations.
	RoleWaitTimeout int

	// BootstrapBaseURL is where the bootstrap entry point downloads asset
	// files from.
	BootstrapBaseURL string
	// InstallDir is the directory the bootstrap entry point installs into.
	InstallDir string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Managed files
		EnvFile:         env.GetString("ENV_FILE", ".env"),
		ComposeFile:     env.GetString("COMPOSE_FILE", "docker-compose.yml"),
		GatewayTemplate: env.GetString("GATEWAY_TEMPLATE", "config/gateway.tmpl.yml"),
		GatewayOutput:   env.GetString("GATEWAY_OUTPUT", "config/gateway.yml"),

		// Probe endpoints
		DBHost:              env.GetString("DB_HOST", "localhost"),
		DBPort:              env.GetInt("DB_PORT", 5432),
		ObjectStoreEndpoint: env.GetString("OBJSTORE_ENDPOINT", "localhost:9000"),
		ObjectStoreBucket:   env.GetString("OBJSTORE_BUCKET", "assets"),

		// Readiness budgets (seconds, one attempt per second)
		ServiceWaitTimeout: env.GetInt("SERVICE_WAIT_TIMEOUT", 60),
		RoleWaitTimeout:    env.GetInt("ROLE_WAIT_TIMEOUT", 600),

		// Bootstrap
		BootstrapBaseURL: env.GetString(
			"BOOTSTRAP_BASE_URL",
			"https://raw.githubusercontent.com/allisson/groundwork/main/deploy",
		),
		InstallDir: env.GetString("INSTALL_DIR", "platform"),
	}
}

// Validate checks that the loaded configuration is internally usable.
// Violations are environment-class problems: the operator set a value no
// run could succeed with.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.LogLevel,
			validation.Required,
			validation.In("debug", "info", "warn", "error").Error("must be one of: debug, info, warn, error"),
		),
		validation.Field(&c.EnvFile, validation.Required),
		validation.Field(&c.ComposeFile, validation.Required),
		validation.Field(&c.GatewayTemplate, validation.Required),
		validation.Field(&c.GatewayOutput, validation.Required),
		validation.Field(&c.DBHost, validation.Required),
		validation.Field(&c.DBPort,
			validation.Required,
			validation.Min(1).Error("must be a valid port"),
			validation.Max(65535).Error("must be a valid port"),
		),
		validation.Field(&c.ObjectStoreEndpoint, validation.Required),
		validation.Field(&c.ObjectStoreBucket, validation.Required),
		validation.Field(&c.ServiceWaitTimeout,
			validation.Required,
			validation.Min(1).Error("must be at least 1 second"),
		),
		validation.Field(&c.RoleWaitTimeout,
			validation.Required,
			validation.Min(1).Error("must be at least 1 second"),
		),
		validation.Field(&c.InstallDir, validation.Required),
	)
}

package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name:    "load default configuration",
			envVars: map[string]string{},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "info", cfg.LogLevel)
				assert.Equal(t, ".env", cfg.EnvFile)
				assert.Equal(t, "docker-compose.yml", cfg.ComposeFile)
				assert.Equal(t, "config/gateway.tmpl.yml", cfg.GatewayTemplate)
				assert.Equal(t, "config/gateway.yml", cfg.GatewayOutput)
				assert.Equal(t, "localhost", cfg.DBHost)
				assert.Equal(t, 5432, cfg.DBPort)
				assert.Equal(t, "localhost:9000", cfg.ObjectStoreEndpoint)
				assert.Equal(t, "assets", cfg.ObjectStoreBucket)
				assert.Equal(t, 60, cfg.ServiceWaitTimeout)
				assert.Equal(t, 600, cfg.RoleWaitTimeout)
				assert.Equal(t, "platform", cfg.InstallDir)
			},
		},
		{
			name: "load custom file locations",
			envVars: map[string]string{
				"ENV_FILE":         "/srv/platform/.env",
				"COMPOSE_FILE":     "/srv/platform/docker-compose.yml",
				"GATEWAY_TEMPLATE": "/srv/platform/config/gateway.tmpl.yml",
				"GATEWAY_OUTPUT":   "/srv/platform/config/gateway.yml",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/srv/platform/.env", cfg.EnvFile)
				assert.Equal(t, "/srv/platform/docker-compose.yml", cfg.ComposeFile)
				assert.Equal(t, "/srv/platform/config/gateway.tmpl.yml", cfg.GatewayTemplate)
				assert.Equal(t, "/srv/platform/config/gateway.yml", cfg.GatewayOutput)
			},
		},
		{
			name: "load custom wait budgets",
			envVars: map[string]string{
				"SERVICE_WAIT_TIMEOUT": "30",
				"ROLE_WAIT_TIMEOUT":    "1200",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 30, cfg.ServiceWaitTimeout)
				assert.Equal(t, 1200, cfg.RoleWaitTimeout)
			},
		},
		{
			name: "load custom probe endpoints",
			envVars: map[string]string{
				"DB_HOST":           "10.0.0.5",
				"DB_PORT":           "6543",
				"OBJSTORE_ENDPOINT": "10.0.0.5:9100",
				"OBJSTORE_BUCKET":   "public",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "10.0.0.5", cfg.DBHost)
				assert.Equal(t, 6543, cfg.DBPort)
				assert.Equal(t, "10.0.0.5:9100", cfg.ObjectStoreEndpoint)
				assert.Equal(t, "public", cfg.ObjectStoreBucket)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.envVars {
				require.NoError(t, os.Setenv(key, value))
			}
			defer func() {
				for key := range tt.envVars {
					require.NoError(t, os.Unsetenv(key))
				}
			}()

			cfg := Load()
			tt.validate(t, cfg)
		})
	}
}

func TestValidate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		require.NoError(t, Load().Validate())
	})

	t.Run("invalid log level", func(t *testing.T) {
		cfg := Load()
		cfg.LogLevel = "verbose"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "LogLevel")
	})

	t.Run("zero wait budget", func(t *testing.T) {
		cfg := Load()
		cfg.RoleWaitTimeout = 0
		require.Error(t, cfg.Validate())
	})

	t.Run("out of range port", func(t *testing.T) {
		cfg := Load()
		cfg.DBPort = 70000
		require.Error(t, cfg.Validate())
	})

	t.Run("blank env file", func(t *testing.T) {
		cfg := Load()
		cfg.EnvFile = ""
		require.Error(t, cfg.Validate())
	})
}

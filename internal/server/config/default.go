// Package config defines the server configuration structure.
package config

import "time"

// Deployment environments.
const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

// Default configuration values.
const (
	DefaultEnv = EnvProduction

	DefaultHTTPAddr        = "127.0.0.1:8080"
	DefaultMaxBodyBytes    = 1 << 20
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRateLimit       = 0

	DefaultDigest = "md5"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		App: AppSection{
			Env: DefaultEnv,
		},
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr: DefaultHTTPAddr,
			},
			MaxBodyBytes:    DefaultMaxBodyBytes,
			ShutdownTimeout: DefaultShutdownTimeout,
			RateLimit:       DefaultRateLimit,
			EnableAudit:     true,
		},
		Auth: AuthSection{
			Digest: DefaultDigest,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Metrics: MetricsSection{
			Enabled: true,
		},
	}
}

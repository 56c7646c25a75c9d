// Package config defines the server configuration structure.
package config

import "time"

// ServerConfig is the root configuration for reqguard-server.
type ServerConfig struct {
	App     AppSection     `koanf:"app"`
	Server  ServerSection  `koanf:"server"`
	Auth    AuthSection    `koanf:"auth"`
	Log     LogSection     `koanf:"log"`
	Metrics MetricsSection `koanf:"metrics"`
}

// AppSection describes the deployment.
type AppSection struct {
	// Env is the deployment environment ("production" or "development").
	// Insecure auth modes are refused in production.
	Env string `koanf:"env"`
}

// ServerSection configures the HTTP listener and request handling.
type ServerSection struct {
	HTTP HTTPConfig `koanf:"http"`

	// Upstream is the base URL accepted requests are proxied to.
	// Empty means accepted requests are answered directly.
	Upstream string `koanf:"upstream"`

	// UpstreamCAFile is a PEM bundle trusted in addition to the system
	// roots when Upstream is https.
	UpstreamCAFile string `koanf:"upstream_ca_file"`

	// MaxBodyBytes bounds the JSON body read for validation.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// RateLimit is the per-client-IP limit in requests/second (0 = off).
	RateLimit int `koanf:"rate_limit"`

	// TrustedProxies lists proxy IPs or CIDR blocks whose
	// X-Forwarded-For and X-Real-IP headers are believed. Empty means the
	// peer address is the client address.
	TrustedProxies []string `koanf:"trusted_proxies"`

	// EnableAudit logs one line per request.
	EnableAudit bool `koanf:"enable_audit"`

	// AdminSocket is the Unix socket path of the local management
	// interface. Empty disables it.
	AdminSocket string `koanf:"admin_socket"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr        string `koanf:"addr"`
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`
}

// AuthSection configures token validation.
type AuthSection struct {
	// SharedSecret is the pre-shared key tokens are derived from.
	SharedSecret string `koanf:"shared_secret"`

	// InsecurePlaintext also accepts the raw shared secret as a token.
	// The secret then works as a static bearer credential sent in clear.
	// Development only; refused when app.env is production.
	InsecurePlaintext bool `koanf:"insecure_plaintext"`

	// Digest is the token hash: md5 (default), sha256 or blake2b.
	Digest string `koanf:"digest"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MetricsSection configures the Prometheus endpoint.
type MetricsSection struct {
	Enabled bool `koanf:"enabled"`
}

// Keys lists every configuration key in dotted form. The config loader
// uses it to map environment variables such as
// REQGUARD_AUTH_SHARED_SECRET onto auth.shared_secret.
func Keys() []string {
	return []string{
		"app.env",
		"server.http.addr",
		"server.http.tls_cert_file",
		"server.http.tls_key_file",
		"server.upstream",
		"server.upstream_ca_file",
		"server.max_body_bytes",
		"server.shutdown_timeout",
		"server.rate_limit",
		"server.trusted_proxies",
		"server.enable_audit",
		"server.admin_socket",
		"auth.shared_secret",
		"auth.insecure_plaintext",
		"auth.digest",
		"log.level",
		"log.format",
		"metrics.enabled",
	}
}

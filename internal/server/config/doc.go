// Package config provides server configuration for reqguard.
//
// This package defines the server configuration structure and validation:
//
//   - spec.go: ServerConfig struct definition and the key list
//   - default.go: Default configuration values
//   - verify.go: Business validation (secret, digest, TLS pairs, env)
//   - sanitize.go: Log sanitization (hide the shared secret)
//
// Configuration is loaded via internal/infra/confloader and supports
// files and environment variables.
package config

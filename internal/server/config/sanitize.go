// Package config defines the server configuration structure.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
)

// Sanitize returns a copy of the config that is safe to log: the shared
// secret is replaced by a fingerprint and upstream credentials are
// removed.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg

	if sanitized.Auth.SharedSecret != "" {
		sanitized.Auth.SharedSecret = maskSecret(sanitized.Auth.SharedSecret)
	}
	if u, err := url.Parse(sanitized.Server.Upstream); err == nil && u.User != nil {
		sanitized.Server.Upstream = u.Redacted()
	}

	return &sanitized
}

// maskSecret replaces a secret with a fixed mask and the first 8 hex
// digits of its SHA-256, enough to tell two deployments' secrets apart.
func maskSecret(s string) string {
	sum := sha256.Sum256([]byte(s))
	return "****(sha256:" + hex.EncodeToString(sum[:4]) + ")"
}

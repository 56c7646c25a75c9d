// Package config defines the server configuration structure.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/yndnr/reqguard/pkg/windowtoken"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyApp(&cfg.App); err != nil {
		return err
	}
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyAuth(&cfg.Auth, cfg.App.Env); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyApp(cfg *AppSection) error {
	switch cfg.Env {
	case EnvProduction, EnvDevelopment:
		return nil
	default:
		return fmt.Errorf("app.env must be %q or %q, got %q", EnvProduction, EnvDevelopment, cfg.Env)
	}
}

func verifyServer(cfg *ServerSection) error {
	if cfg.HTTP.Addr == "" {
		return errors.New("server.http.addr is required")
	}
	if (cfg.HTTP.TLSCertFile == "") != (cfg.HTTP.TLSKeyFile == "") {
		return errors.New("server.http.tls_cert_file and server.http.tls_key_file must be set together")
	}
	if cfg.Upstream != "" {
		u, err := url.Parse(cfg.Upstream)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("server.upstream must be an absolute URL, got %q", cfg.Upstream)
		}
		if cfg.UpstreamCAFile != "" && u.Scheme != "https" {
			return errors.New("server.upstream_ca_file requires an https server.upstream")
		}
	} else if cfg.UpstreamCAFile != "" {
		return errors.New("server.upstream_ca_file requires server.upstream")
	}
	if cfg.MaxBodyBytes <= 0 {
		return errors.New("server.max_body_bytes must be positive")
	}
	if cfg.ShutdownTimeout <= 0 {
		return errors.New("server.shutdown_timeout must be positive")
	}
	if cfg.RateLimit < 0 {
		return errors.New("server.rate_limit must not be negative")
	}
	for _, entry := range cfg.TrustedProxies {
		if !validProxyEntry(strings.TrimSpace(entry)) {
			return fmt.Errorf("server.trusted_proxies: invalid IP or CIDR %q", entry)
		}
	}
	return nil
}

func validProxyEntry(entry string) bool {
	if strings.Contains(entry, "/") {
		_, _, err := net.ParseCIDR(entry)
		return err == nil
	}
	return net.ParseIP(entry) != nil
}

func verifyAuth(cfg *AuthSection, env string) error {
	if cfg.SharedSecret == "" {
		return errors.New("auth.shared_secret is required")
	}
	if _, err := windowtoken.ParseDigest(cfg.Digest); err != nil {
		return fmt.Errorf("auth.digest: %w", err)
	}
	if cfg.InsecurePlaintext && env == EnvProduction {
		return errors.New("auth.insecure_plaintext cannot be enabled when app.env is production")
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Level)
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text", "console":
	default:
		return fmt.Errorf("log.format %q is not one of json, text", cfg.Format)
	}
	return nil
}

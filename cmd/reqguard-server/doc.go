// Command reqguard-server runs the reqguard HTTP front.
//
// It loads configuration from an optional YAML file, REQGUARD_*
// environment variables and flags, validates the Auth token and JSON body
// of every request, and forwards accepted requests to the configured
// upstream.
//
// Usage:
//
//	reqguard-server --config /etc/reqguard/config.yaml
//	reqguard-server --addr :8080 --upstream http://127.0.0.1:9000 --log-level debug
package main

// Package confloader loads layered configuration with koanf and watches
// the config file for changes.
//
// Priority (highest to lowest):
//
//  1. Overrides (command-line flags)
//  2. Environment variables (REQGUARD_ prefix)
//  3. Configuration file (YAML)
//  4. Default values already present in the target struct
//
// Environment names are mapped to dotted keys; keys registered with
// WithKnownKeys keep their underscores (REQGUARD_AUTH_SHARED_SECRET ->
// auth.shared_secret).
package confloader

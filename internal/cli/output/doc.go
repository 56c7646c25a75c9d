// Package output formats reqguard-cli results as text, JSON or YAML.
package output

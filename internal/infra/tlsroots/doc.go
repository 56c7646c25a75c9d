// Package tlsroots manages TLS material for reqguard.
//
//   - roots.go: trusted roots (system plus a custom CA file) for the
//     upstream proxy transport
//   - watcher.go: listener certificate hot-reload via fsnotify
package tlsroots

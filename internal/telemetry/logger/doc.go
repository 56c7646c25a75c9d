// Package logger provides structured logging for reqguard.
//
// Features:
//   - JSON structured logging (default) or text
//   - Redaction of attributes named like credentials (secret, token, auth)
//   - Partial masking of values shaped like window tokens
//   - Request ID propagation through context
//   - Runtime log level changes (config reload)
package logger

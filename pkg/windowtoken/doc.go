// Package windowtoken implements the time-windowed shared-secret token.
//
// A token is the hex digest of the decimal start second of a 20-second
// window concatenated with a pre-shared secret:
//
//	token = hex(digest(strconv.FormatInt(windowStart, 10) + secret))
//
// Senders compute the token for their current window. Receivers accept
// the token for their own current window and for the next one, which
// gives an effective acceptance period of up to 40 seconds.
//
// Digests:
//
//   - md5 (default, the historical wire format)
//   - sha256
//   - blake2b (BLAKE2b-256)
//
// The digest is not what makes the scheme secure; the secret is. All
// comparisons are constant-time.
package windowtoken

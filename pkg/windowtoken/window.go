package windowtoken

import (
	"crypto/subtle"
	"math"
	"strconv"
)

// WindowSeconds is the width of a token window.
const WindowSeconds int64 = 20

// Bounds of Window. Both are window starts, and MaxWindow leaves room for
// the next window.
const (
	MinWindow int64 = math.MinInt64 - math.MinInt64%WindowSeconds
	MaxWindow int64 = math.MaxInt64 - math.MaxInt64%WindowSeconds - WindowSeconds
)

// Window returns the start of the window containing now (Unix seconds).
// Negative timestamps floor toward negative infinity. Results are clamped
// to [MinWindow, MaxWindow].
func Window(now int64) int64 {
	if now < MinWindow {
		return MinWindow
	}
	if now > MaxWindow {
		return MaxWindow
	}
	rem := now % WindowSeconds
	if rem < 0 {
		rem += WindowSeconds
	}
	return now - rem
}

// Compute returns the token for an explicit window start.
func Compute(d Digest, secret string, windowStart int64) string {
	return d.Sum(strconv.FormatInt(windowStart, 10) + secret)
}

// Generate returns the token a sender should attach at now.
func Generate(d Digest, secret string, now int64) string {
	return Compute(d, secret, Window(now))
}

// Expected returns the two tokens a receiver accepts at now: the one for
// the current window and the one for the next window.
func Expected(d Digest, secret string, now int64) (current, next string) {
	w := Window(now)
	return Compute(d, secret, w), Compute(d, secret, w+WindowSeconds)
}

// Equal reports whether a and b are identical using a constant-time
// comparison.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

package windowtoken

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Digest names a one-way hash used to derive tokens.
type Digest string

// Supported digests.
const (
	DigestMD5     Digest = "md5"
	DigestSHA256  Digest = "sha256"
	DigestBLAKE2b Digest = "blake2b"
)

// DefaultDigest is the digest used when none is configured.
const DefaultDigest = DigestMD5

// ParseDigest converts a configuration value into a Digest.
// An empty string yields DefaultDigest.
func ParseDigest(name string) (Digest, error) {
	switch d := Digest(strings.ToLower(strings.TrimSpace(name))); d {
	case "":
		return DefaultDigest, nil
	case DigestMD5, DigestSHA256, DigestBLAKE2b:
		return d, nil
	default:
		return "", fmt.Errorf("windowtoken: unsupported digest %q", name)
	}
}

// Sum returns the lowercase hex digest of s.
func (d Digest) Sum(s string) string {
	switch d {
	case DigestSHA256:
		h := sha256.Sum256([]byte(s))
		return hex.EncodeToString(h[:])
	case DigestBLAKE2b:
		h := blake2b.Sum256([]byte(s))
		return hex.EncodeToString(h[:])
	default:
		h := md5.Sum([]byte(s))
		return hex.EncodeToString(h[:])
	}
}

// String implements fmt.Stringer.
func (d Digest) String() string {
	if d == "" {
		return string(DefaultDigest)
	}
	return string(d)
}

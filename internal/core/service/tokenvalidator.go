package service

import (
	"errors"

	"github.com/yndnr/reqguard/pkg/windowtoken"
)

// TokenChecker decides whether a received token is currently valid.
type TokenChecker interface {
	IsValid(received string, now int64) bool
}

// TokenValidatorConfig holds configuration for TokenValidator.
type TokenValidatorConfig struct {
	// SharedSecret is the pre-distributed secret. Required.
	SharedSecret string

	// InsecurePlaintext additionally accepts the raw shared secret as a
	// token. It exists for local development only: anyone who observes one
	// request learns the secret. Never enable it in production.
	InsecurePlaintext bool

	// Digest selects the hash used to derive tokens (default md5).
	Digest windowtoken.Digest
}

// ErrEmptySecret is returned when a TokenValidator is built without a secret.
var ErrEmptySecret = errors.New("service: shared secret must not be empty")

// TokenValidator checks time-windowed shared-secret tokens.
//
// A TokenValidator is immutable after construction and safe for
// concurrent use.
type TokenValidator struct {
	secret   string
	insecure bool
	digest   windowtoken.Digest
}

// NewTokenValidator creates a TokenValidator.
func NewTokenValidator(cfg TokenValidatorConfig) (*TokenValidator, error) {
	if cfg.SharedSecret == "" {
		return nil, ErrEmptySecret
	}
	digest := cfg.Digest
	if digest == "" {
		digest = windowtoken.DefaultDigest
	}
	return &TokenValidator{
		secret:   cfg.SharedSecret,
		insecure: cfg.InsecurePlaintext,
		digest:   digest,
	}, nil
}

// IsValid reports whether received matches the token of the window
// containing now or of the following window (now is Unix seconds). In
// insecure mode the raw secret is accepted as well.
func (v *TokenValidator) IsValid(received string, now int64) bool {
	current, next := windowtoken.Expected(v.digest, v.secret, now)

	// Evaluate every comparison so timing does not reveal which one matched.
	okCurrent := windowtoken.Equal(received, current)
	okNext := windowtoken.Equal(received, next)
	okPlain := v.insecure && windowtoken.Equal(received, v.secret)

	return okCurrent || okNext || okPlain
}

// Insecure reports whether plaintext secrets are accepted.
func (v *TokenValidator) Insecure() bool {
	return v.insecure
}

// Digest returns the configured digest.
func (v *TokenValidator) Digest() windowtoken.Digest {
	return v.digest
}

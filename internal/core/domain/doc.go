// Package domain defines the core domain models for reqguard.
//
// Domain models are pure values without IO dependencies:
//
//   - ValidationResult: accepted (with optional body) or rejected
//   - Errors: the rejection catalogue with stable codes and HTTP statuses
package domain

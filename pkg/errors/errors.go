// Package errors provides common domain error types for the seihyo application.
//
// This package defines sentinel errors for the batch engine's error taxonomy.
// Per-mention failures (oracle problems, persistence problems) are recovered
// at the batch loop and folded into summary counters; only whole-batch-fatal
// conditions (registry or store unreachable) propagate to the caller. Using
// typed errors enables consistent handling with errors.Is() checks.
//
// Usage:
//
//	import sherrors "github.com/seihyo/seihyo-cli/pkg/errors"
//
//	// Return a domain error
//	return fmt.Errorf("search politicians: %w", sherrors.ErrRegistryUnavailable)
//
//	// Check for domain errors
//	if sherrors.IsRegistryUnavailable(err) {
//	    // abort the batch
//	}
package errors

import "errors"

// Domain errors - sentinel errors for the resolution/reconciliation taxonomy.
var (
	// ErrRegistryUnavailable indicates the politician registry cannot be
	// queried. Fatal: nothing can proceed without candidate lookup.
	ErrRegistryUnavailable = errors.New("registry unavailable")

	// ErrOracleFailure indicates the judgment oracle invocation failed
	// (timeout, transport error). Recovered: the mention degrades to no_match.
	ErrOracleFailure = errors.New("oracle failure")

	// ErrMalformedOracleResponse indicates the oracle replied with something
	// that cannot be interpreted. Recovered: the mention degrades to no_match.
	ErrMalformedOracleResponse = errors.New("malformed oracle response")

	// ErrPersistenceFailure indicates a store write failed for one item.
	// Recovered: counted as failed, the batch continues.
	ErrPersistenceFailure = errors.New("persistence failure")

	// ErrNotFound indicates the requested record was not found.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates invalid input or validation failure.
	ErrValidation = errors.New("validation error")
)

// IsRegistryUnavailable reports whether any error in err's chain is ErrRegistryUnavailable.
func IsRegistryUnavailable(err error) bool {
	return errors.Is(err, ErrRegistryUnavailable)
}

// IsOracleFailure reports whether any error in err's chain is ErrOracleFailure.
func IsOracleFailure(err error) bool {
	return errors.Is(err, ErrOracleFailure)
}

// IsMalformedOracleResponse reports whether any error in err's chain is ErrMalformedOracleResponse.
func IsMalformedOracleResponse(err error) bool {
	return errors.Is(err, ErrMalformedOracleResponse)
}

// IsPersistenceFailure reports whether any error in err's chain is ErrPersistenceFailure.
func IsPersistenceFailure(err error) bool {
	return errors.Is(err, ErrPersistenceFailure)
}

// IsNotFound reports whether any error in err's chain is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether any error in err's chain is ErrValidation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

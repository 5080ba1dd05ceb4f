// Package errdefs defines the error taxonomy shared by the cluster client,
// the tenant controller, and the CLI front-end. Errors are classified by
// marking them with one of the sentinel errors below; callers test the class
// with errors.Is and map it to a distinct process exit code.
package errdefs

import (
	"github.com/cockroachdb/errors"
)

// Sentinel errors marking each failure class. Operational errors returned by
// lower layers are attached to exactly one of these via errors.Mark so the
// original cause stays intact in the chain.
var (
	// ErrValidation marks a tenant name or namespace that violates the
	// cluster naming scheme.
	ErrValidation = errors.New("validation failed")

	// ErrAlreadyExists marks an idempotency collision on create.
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotFound marks a referenced object that is absent from the cluster.
	ErrNotFound = errors.New("not found")

	// ErrApply marks a malformed descriptor or a permission denial during
	// descriptor application.
	ErrApply = errors.New("apply failed")

	// ErrTimeout marks a remote call that did not complete within the
	// configured request timeout.
	ErrTimeout = errors.New("request timed out")

	// ErrInvalidArgument marks a malformed or ambiguous CLI selector.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Exit codes, one per failure class. Zero is success, one is any error
// outside the taxonomy.
const (
	ExitOK              = 0
	ExitGeneric         = 1
	ExitInvalidArgument = 2
	ExitValidation      = 3
	ExitAlreadyExists   = 4
	ExitNotFound        = 5
	ExitApply           = 6
	ExitTimeout         = 7
)

// ExitCode maps an error to its process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrInvalidArgument):
		return ExitInvalidArgument
	case errors.Is(err, ErrValidation):
		return ExitValidation
	case errors.Is(err, ErrAlreadyExists):
		return ExitAlreadyExists
	case errors.Is(err, ErrNotFound):
		return ExitNotFound
	case errors.Is(err, ErrApply):
		return ExitApply
	case errors.Is(err, ErrTimeout):
		return ExitTimeout
	default:
		return ExitGeneric
	}
}

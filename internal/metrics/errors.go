package metrics

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// Error type constants for metrics labels.
const (
	ErrorTypeAlreadyExists = "already_exists"
	ErrorTypeNotFound      = "not_found"
	ErrorTypeForbidden     = "forbidden"
	ErrorTypeInvalid       = "invalid"
	ErrorTypeConflict      = "conflict"
	ErrorTypeTimeout       = "timeout"
	ErrorTypeNetwork       = "network"
	ErrorTypeUnknown       = "unknown"
)

// ClassifyAPIError classifies an error from the Kubernetes API for metrics
// labeling. Returns an empty string for nil errors.
func ClassifyAPIError(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case apierrors.IsAlreadyExists(err):
		return ErrorTypeAlreadyExists
	case apierrors.IsNotFound(err):
		return ErrorTypeNotFound
	case apierrors.IsForbidden(err) || apierrors.IsUnauthorized(err):
		return ErrorTypeForbidden
	case apierrors.IsInvalid(err) || apierrors.IsBadRequest(err):
		return ErrorTypeInvalid
	case apierrors.IsConflict(err):
		return ErrorTypeConflict
	case apierrors.IsTimeout(err) || apierrors.IsServerTimeout(err),
		errors.Is(err, context.DeadlineExceeded):
		return ErrorTypeTimeout
	}

	// Fallback for non-API errors based on error message
	return classifyByErrorMessage(err.Error())
}

func classifyByErrorMessage(errStr string) string {
	errLower := strings.ToLower(errStr)

	switch {
	case strings.Contains(errLower, "timeout") || strings.Contains(errLower, "deadline"):
		return ErrorTypeTimeout
	case strings.Contains(errLower, "connection refused") || strings.Contains(errLower, "no such host"):
		return ErrorTypeNetwork
	default:
		return ErrorTypeUnknown
	}
}

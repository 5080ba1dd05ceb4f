package metrics_test

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/ringerc/flux-tenant-ctl/internal/metrics"
)

func TestClassifyAPIError(t *testing.T) {
	t.Parallel()

	namespaces := schema.GroupResource{Resource: "namespaces"}

	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "already exists",
			err:      apierrors.NewAlreadyExists(namespaces, "foo"),
			expected: metrics.ErrorTypeAlreadyExists,
		},
		{
			name:     "not found",
			err:      apierrors.NewNotFound(namespaces, "foo"),
			expected: metrics.ErrorTypeNotFound,
		},
		{
			name:     "forbidden",
			err:      apierrors.NewForbidden(namespaces, "foo", errors.New("denied")),
			expected: metrics.ErrorTypeForbidden,
		},
		{
			name:     "bad request",
			err:      apierrors.NewBadRequest("malformed"),
			expected: metrics.ErrorTypeInvalid,
		},
		{
			name:     "conflict",
			err:      apierrors.NewConflict(namespaces, "foo", errors.New("conflict")),
			expected: metrics.ErrorTypeConflict,
		},
		{
			name:     "server timeout",
			err:      apierrors.NewServerTimeout(namespaces, "get", 1),
			expected: metrics.ErrorTypeTimeout,
		},
		{
			name:     "context deadline",
			err:      errors.Wrap(context.DeadlineExceeded, "get namespace"),
			expected: metrics.ErrorTypeTimeout,
		},
		{
			name:     "wrapped api error",
			err:      errors.Wrap(apierrors.NewAlreadyExists(namespaces, "foo"), "create namespace"),
			expected: metrics.ErrorTypeAlreadyExists,
		},
		{
			name:     "connection refused",
			err:      errors.New("dial tcp 10.0.0.1:6443: connection refused"),
			expected: metrics.ErrorTypeNetwork,
		},
		{
			name:     "unknown",
			err:      errors.New("boom"),
			expected: metrics.ErrorTypeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, metrics.ClassifyAPIError(tt.err))
		})
	}
}

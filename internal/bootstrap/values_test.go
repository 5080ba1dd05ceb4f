package bootstrap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ringerc/flux-tenant-ctl/internal/bootstrap"
)

func TestFluxValues_BuildValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		values   bootstrap.FluxValues
		expected map[string]any
	}{
		{
			name:   "watch all namespaces",
			values: bootstrap.FluxValues{WatchAllNamespaces: true},
			expected: map[string]any{
				"watchAllNamespaces": true,
			},
		},
		{
			name:   "scoped watch",
			values: bootstrap.FluxValues{WatchAllNamespaces: false},
			expected: map[string]any{
				"watchAllNamespaces": false,
			},
		},
		{
			name: "custom cluster domain",
			values: bootstrap.FluxValues{
				WatchAllNamespaces: true,
				ClusterDomain:      "cluster.internal",
			},
			expected: map[string]any{
				"watchAllNamespaces": true,
				"clusterDomain":      "cluster.internal",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, tt.values.BuildValues())
		})
	}
}

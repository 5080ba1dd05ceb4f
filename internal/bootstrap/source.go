package bootstrap

import (
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/ringerc/flux-tenant-ctl/internal/cluster"
	"github.com/ringerc/flux-tenant-ctl/internal/manifest"
)

const sourceInterval = "1m0s"

// DefaultIgnorePaths keeps the tool's own sources out of Flux reconciliation
// when the manifests live in the same repository.
//
//nolint:gochecknoglobals // default value for an Options field
var DefaultIgnorePaths = []string{"/cmd/", "/internal/", "go.mod", "go.sum", "*.md"}

// BuildGitRepository renders the shared GitRepository source every tenant
// Kustomization references. Pure function, serialized only at apply time.
func BuildGitRepository(gitURL, branch string, ignorePaths []string) *unstructured.Unstructured {
	spec := map[string]any{
		"url":      gitURL,
		"interval": sourceInterval,
		"ref": map[string]any{
			"branch": branch,
		},
	}

	// Flux expects .sourceignore format, one pattern per line.
	if len(ignorePaths) > 0 {
		spec["ignore"] = strings.Join(ignorePaths, "\n")
	}

	return &unstructured.Unstructured{
		Object: map[string]any{
			"apiVersion": cluster.GitRepositoryGVK.GroupVersion().String(),
			"kind":       cluster.GitRepositoryGVK.Kind,
			"metadata": map[string]any{
				"name":      manifest.SourceName,
				"namespace": manifest.SourceNamespace,
			},
			"spec": spec,
		},
	}
}

package bootstrap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/ringerc/flux-tenant-ctl/internal/bootstrap"
	"github.com/ringerc/flux-tenant-ctl/internal/cluster"
	"github.com/ringerc/flux-tenant-ctl/internal/manifest"
)

func TestBuildGitRepository(t *testing.T) {
	t.Parallel()

	src := bootstrap.BuildGitRepository(
		"https://github.com/example/manifests.git",
		"main",
		[]string{"/cmd/", "*.md"},
	)

	assert.Equal(t, cluster.GitRepositoryGVK, src.GroupVersionKind())
	assert.Equal(t, manifest.SourceName, src.GetName())
	assert.Equal(t, manifest.SourceNamespace, src.GetNamespace())

	url, found, err := unstructured.NestedString(src.Object, "spec", "url")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "https://github.com/example/manifests.git", url)

	branch, found, err := unstructured.NestedString(src.Object, "spec", "ref", "branch")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "main", branch)

	ignore, found, err := unstructured.NestedString(src.Object, "spec", "ignore")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "/cmd/\n*.md", ignore)
}

func TestBuildGitRepository_NoIgnore(t *testing.T) {
	t.Parallel()

	src := bootstrap.BuildGitRepository("https://github.com/example/manifests.git", "main", nil)

	_, found, err := unstructured.NestedString(src.Object, "spec", "ignore")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestBuildGitRepository_Deterministic(t *testing.T) {
	t.Parallel()

	first := bootstrap.BuildGitRepository("https://github.com/example/manifests.git", "main", bootstrap.DefaultIgnorePaths)
	second := bootstrap.BuildGitRepository("https://github.com/example/manifests.git", "main", bootstrap.DefaultIgnorePaths)

	assert.Equal(t, first.Object, second.Object)
}

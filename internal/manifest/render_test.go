package manifest_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringerc/flux-tenant-ctl/internal/errdefs"
	"github.com/ringerc/flux-tenant-ctl/internal/manifest"
)

func TestRender_Deterministic(t *testing.T) {
	t.Parallel()

	first, err := manifest.Render("foo", "sometenant")
	require.NoError(t, err)

	second, err := manifest.Render("foo", "sometenant")
	require.NoError(t, err)

	assert.Equal(t, first.Namespace, second.Namespace)
	assert.Equal(t, first.ConfigMap, second.ConfigMap)
	assert.Equal(t, first.ServiceAccount, second.ServiceAccount)
	assert.Equal(t, first.RoleBinding, second.RoleBinding)
	assert.Equal(t, first.Kustomization.Object, second.Kustomization.Object)
}

func TestRender_Namespace(t *testing.T) {
	t.Parallel()

	m, err := manifest.Render("foo", "sometenant")
	require.NoError(t, err)

	assert.Equal(t, "foo", m.Namespace.Name)
	assert.Equal(t, "sometenant", m.Namespace.Labels[manifest.TenantNameLabel])
	assert.Equal(t, "foo", m.Namespace.Labels[manifest.FluxTenantLabel])
}

func TestRender_ConfigMapValue(t *testing.T) {
	t.Parallel()

	m, err := manifest.Render("foo", "sometenant")
	require.NoError(t, err)

	assert.Equal(t, manifest.ConfigMapName, m.ConfigMap.Name)
	assert.Equal(t, "foo", m.ConfigMap.Namespace)
	assert.Equal(t, `This tenant name is "sometenant"`, m.ConfigMap.Data[manifest.PerTenantSubstKey])
}

func TestRender_Kustomization(t *testing.T) {
	t.Parallel()

	m, err := manifest.Render("foo", "sometenant")
	require.NoError(t, err)

	ks := m.Kustomization

	assert.Equal(t, manifest.KustomizationGVK, ks.GroupVersionKind())
	assert.Equal(t, manifest.KustomizationName, ks.GetName())
	assert.Equal(t, "foo", ks.GetNamespace())

	spec, ok := ks.Object["spec"].(map[string]any)
	require.True(t, ok)

	assert.Equal(t, manifest.KustomizationPath, spec["path"])
	assert.Equal(t, true, spec["prune"])
	assert.Equal(t, "foo", spec["targetNamespace"])
	assert.Equal(t, "foo", spec["serviceAccountName"])

	sourceRef, ok := spec["sourceRef"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "GitRepository", sourceRef["kind"])
	assert.Equal(t, manifest.SourceName, sourceRef["name"])
	assert.Equal(t, manifest.SourceNamespace, sourceRef["namespace"])

	postBuild, ok := spec["postBuild"].(map[string]any)
	require.True(t, ok)

	substitute, ok := postBuild["substitute"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "sometenant", substitute[manifest.SubstLiteralKey])

	substituteFrom, ok := postBuild["substituteFrom"].([]any)
	require.True(t, ok)
	require.Len(t, substituteFrom, 1)

	ref, ok := substituteFrom[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ConfigMap", ref["kind"])
	assert.Equal(t, manifest.ConfigMapName, ref["name"])
}

func TestRender_ReconcilerIdentity(t *testing.T) {
	t.Parallel()

	m, err := manifest.Render("foo", "sometenant")
	require.NoError(t, err)

	assert.Equal(t, "foo", m.ServiceAccount.Name)
	assert.Equal(t, "foo", m.ServiceAccount.Namespace)
	assert.Equal(t, "foo", m.ServiceAccount.Labels[manifest.FluxTenantLabel])

	rb := m.RoleBinding
	assert.Equal(t, "foo-reconciler", rb.Name)
	assert.Equal(t, "cluster-admin", rb.RoleRef.Name)
	require.Len(t, rb.Subjects, 2)
	assert.Equal(t, "gotk:foo:reconciler", rb.Subjects[0].Name)
	assert.Equal(t, "ServiceAccount", rb.Subjects[1].Kind)
}

func TestRender_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		tenantNamespace string
		tenantName      string
		wantErr         bool
	}{
		{
			name:            "valid inputs",
			tenantNamespace: "foo",
			tenantName:      "sometenant",
			wantErr:         false,
		},
		{
			name:            "namespace with uppercase",
			tenantNamespace: "Foo",
			tenantName:      "sometenant",
			wantErr:         true,
		},
		{
			name:            "namespace with dots",
			tenantNamespace: "foo.bar",
			tenantName:      "sometenant",
			wantErr:         true,
		},
		{
			name:            "empty namespace",
			tenantNamespace: "",
			tenantName:      "sometenant",
			wantErr:         true,
		},
		{
			name:            "empty tenant name",
			tenantNamespace: "foo",
			tenantName:      "",
			wantErr:         true,
		},
		{
			name:            "tenant name with spaces",
			tenantNamespace: "foo",
			tenantName:      "some tenant",
			wantErr:         true,
		},
		{
			name:            "tenant name with slash",
			tenantNamespace: "foo",
			tenantName:      "some/tenant",
			wantErr:         true,
		},
		{
			name:            "hyphenated namespace",
			tenantNamespace: "foo-bar-2",
			tenantName:      "sometenant",
			wantErr:         false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := manifest.Render(tt.tenantNamespace, tt.tenantName)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errdefs.ErrValidation))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// Package manifest renders the per-tenant Kubernetes resources as in-memory
// typed objects. Rendering is a pure function of the tenant namespace and
// tenant name: no cluster access, no randomness, byte-identical output for
// identical inputs. Serialization happens only at the apply boundary.
package manifest

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	corev1 "k8s.io/api/core/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/ringerc/flux-tenant-ctl/internal/errdefs"
)

const (
	// TenantNameLabel carries the human-readable tenant name on the tenant
	// namespace. Its presence identifies a namespace as tenant-managed.
	TenantNameLabel = "flux-tenant-ctl.ringerc.github.com/tenant-name"

	// FluxTenantLabel is the label Flux's own tenant tooling keys on.
	FluxTenantLabel = "toolkit.fluxcd.io/tenant"

	// ConfigMapName is the per-tenant substitution ConfigMap.
	ConfigMapName = "tenant-vars"

	// PerTenantSubstKey is the single substitution entry stored in the
	// tenant ConfigMap.
	PerTenantSubstKey = "PER_TENANT_SUBST"

	// SubstLiteralKey is the literal substitution carried directly on the
	// Kustomization descriptor.
	SubstLiteralKey = "SUBST_LITERAL"

	// KustomizationName names the per-tenant Flux Kustomization.
	KustomizationName = "tenant-app"

	// SourceName and SourceNamespace locate the shared GitRepository source
	// every tenant Kustomization reconciles from.
	SourceName      = "default"
	SourceNamespace = "flux-system"

	// KustomizationPath is the path within the shared source holding the
	// per-tenant kustomize overlay.
	KustomizationPath = "./kustomizations/per-tenant"

	reconcileInterval = "1m0s"
)

// KustomizationGVK identifies the Flux Kustomization resource.
//
//nolint:gochecknoglobals // schema identity, effectively const
var KustomizationGVK = schema.GroupVersionKind{
	Group:   "kustomize.toolkit.fluxcd.io",
	Version: "v1beta2",
	Kind:    "Kustomization",
}

// Manifests holds every resource provisioned for one tenant. The ConfigMap,
// ServiceAccount, RoleBinding, and Kustomization are namespace-scoped inside
// the tenant namespace, so deleting the namespace cascades over all of them.
type Manifests struct {
	Namespace      *corev1.Namespace
	ConfigMap      *corev1.ConfigMap
	ServiceAccount *corev1.ServiceAccount
	RoleBinding    *rbacv1.RoleBinding
	Kustomization  *unstructured.Unstructured
}

// Render produces the full resource set for a tenant. It fails with an
// errdefs.ErrValidation mark when the namespace is not a DNS-1123 label or
// the tenant name is not a valid label value.
func Render(tenantNamespace, tenantName string) (*Manifests, error) {
	if err := validate(tenantNamespace, tenantName); err != nil {
		return nil, err
	}

	return &Manifests{
		Namespace:      renderNamespace(tenantNamespace, tenantName),
		ConfigMap:      renderConfigMap(tenantNamespace, tenantName),
		ServiceAccount: renderServiceAccount(tenantNamespace),
		RoleBinding:    renderRoleBinding(tenantNamespace),
		Kustomization:  renderKustomization(tenantNamespace, tenantName),
	}, nil
}

func validate(tenantNamespace, tenantName string) error {
	if msgs := validation.IsDNS1123Label(tenantNamespace); len(msgs) > 0 {
		return errors.Mark(
			errors.Newf("invalid tenant namespace %q: %s", tenantNamespace, strings.Join(msgs, "; ")),
			errdefs.ErrValidation,
		)
	}

	if tenantName == "" {
		return errors.Mark(errors.New("tenant name must not be empty"), errdefs.ErrValidation)
	}

	if msgs := validation.IsValidLabelValue(tenantName); len(msgs) > 0 {
		return errors.Mark(
			errors.Newf("invalid tenant name %q: %s", tenantName, strings.Join(msgs, "; ")),
			errdefs.ErrValidation,
		)
	}

	return nil
}

func renderNamespace(tenantNamespace, tenantName string) *corev1.Namespace {
	return &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{
			Name: tenantNamespace,
			Labels: map[string]string{
				TenantNameLabel: tenantName,
				FluxTenantLabel: tenantNamespace,
			},
		},
	}
}

func renderConfigMap(tenantNamespace, tenantName string) *corev1.ConfigMap {
	return &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      ConfigMapName,
			Namespace: tenantNamespace,
		},
		Data: map[string]string{
			PerTenantSubstKey: fmt.Sprintf("This tenant name is %q", tenantName),
		},
	}
}

// renderServiceAccount and renderRoleBinding reproduce what
// "flux create tenant" sets up: a reconciler identity scoped to the tenant
// namespace, recognized by the namespace's toolkit.fluxcd.io/tenant label.
func renderServiceAccount(tenantNamespace string) *corev1.ServiceAccount {
	return &corev1.ServiceAccount{
		ObjectMeta: metav1.ObjectMeta{
			Name:      tenantNamespace,
			Namespace: tenantNamespace,
			Labels: map[string]string{
				FluxTenantLabel: tenantNamespace,
			},
		},
	}
}

func renderRoleBinding(tenantNamespace string) *rbacv1.RoleBinding {
	return &rbacv1.RoleBinding{
		ObjectMeta: metav1.ObjectMeta{
			Name:      tenantNamespace + "-reconciler",
			Namespace: tenantNamespace,
			Labels: map[string]string{
				FluxTenantLabel: tenantNamespace,
			},
		},
		RoleRef: rbacv1.RoleRef{
			APIGroup: rbacv1.GroupName,
			Kind:     "ClusterRole",
			Name:     "cluster-admin",
		},
		Subjects: []rbacv1.Subject{
			{
				APIGroup: rbacv1.GroupName,
				Kind:     rbacv1.UserKind,
				Name:     "gotk:" + tenantNamespace + ":reconciler",
			},
			{
				Kind:      rbacv1.ServiceAccountKind,
				Name:      tenantNamespace,
				Namespace: tenantNamespace,
			},
		},
	}
}

func renderKustomization(tenantNamespace, tenantName string) *unstructured.Unstructured {
	// targetNamespace at the Kustomization level redirects every rendered
	// resource into the tenant namespace, so the overlay manifests stay
	// namespace-agnostic. The overlay must not contain a Namespace resource
	// or pruning fights Flux ownership.
	obj := &unstructured.Unstructured{
		Object: map[string]any{
			"apiVersion": KustomizationGVK.GroupVersion().String(),
			"kind":       KustomizationGVK.Kind,
			"metadata": map[string]any{
				"name":      KustomizationName,
				"namespace": tenantNamespace,
			},
			"spec": map[string]any{
				"interval": reconcileInterval,
				"path":     KustomizationPath,
				"prune":    true,
				"sourceRef": map[string]any{
					"kind":      "GitRepository",
					"name":      SourceName,
					"namespace": SourceNamespace,
				},
				"serviceAccountName": tenantNamespace,
				"targetNamespace":    tenantNamespace,
				"postBuild": map[string]any{
					"substitute": map[string]any{
						SubstLiteralKey: tenantName,
					},
					"substituteFrom": []any{
						map[string]any{
							"kind": "ConfigMap",
							"name": ConfigMapName,
						},
					},
				},
			},
		},
	}

	return obj
}

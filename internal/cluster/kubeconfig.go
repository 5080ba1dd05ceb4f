package cluster

import (
	"github.com/cockroachdb/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/tools/clientcmd"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/ringerc/flux-tenant-ctl/internal/manifest"
)

// GitRepositoryGVK identifies the Flux GitRepository source resource the
// bootstrap command registers.
//
//nolint:gochecknoglobals // schema identity, effectively const
var GitRepositoryGVK = schema.GroupVersionKind{
	Group:   "source.toolkit.fluxcd.io",
	Version: "v1",
	Kind:    "GitRepository",
}

// NewScheme builds the runtime scheme covering the core types plus the Flux
// custom resources handled as unstructured objects.
func NewScheme() (*runtime.Scheme, error) {
	scheme := runtime.NewScheme()

	if err := clientgoscheme.AddToScheme(scheme); err != nil {
		return nil, errors.Wrap(err, "failed to register client-go scheme")
	}

	for _, gvk := range []schema.GroupVersionKind{manifest.KustomizationGVK, GitRepositoryGVK} {
		scheme.AddKnownTypeWithName(gvk, &unstructured.Unstructured{})
		scheme.AddKnownTypeWithName(
			gvk.GroupVersion().WithKind(gvk.Kind+"List"),
			&unstructured.UnstructuredList{},
		)
		metav1.AddToGroupVersion(scheme, gvk.GroupVersion())
	}

	return scheme, nil
}

// NewKubeClient builds a controller-runtime client from the local kubeconfig.
// kubeconfig and kubeContext override the default loading rules and the
// current context when non-empty.
func NewKubeClient(kubeconfig, kubeContext string) (client.Client, error) {
	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	if kubeconfig != "" {
		loadingRules.ExplicitPath = kubeconfig
	}

	overrides := &clientcmd.ConfigOverrides{CurrentContext: kubeContext}

	restConfig, err := clientcmd.
		NewNonInteractiveDeferredLoadingClientConfig(loadingRules, overrides).
		ClientConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load kubeconfig")
	}

	scheme, err := NewScheme()
	if err != nil {
		return nil, err
	}

	kube, err := client.New(restConfig, client.Options{Scheme: scheme})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create kubernetes client")
	}

	return kube, nil
}

// Package cluster wraps the Kubernetes API behind the handful of idempotent
// operations tenant provisioning needs. Every call is a synchronous remote
// call bounded by the configured request timeout; there is no caching and no
// automatic retry, failures surface immediately marked with their errdefs
// class.
package cluster

import (
	"context"
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"
	corev1 "k8s.io/api/core/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/ringerc/flux-tenant-ctl/internal/errdefs"
	"github.com/ringerc/flux-tenant-ctl/internal/metrics"
)

// DefaultRequestTimeout bounds each remote call when the caller does not
// override it.
const DefaultRequestTimeout = 30 * time.Second

// Client issues create/get/list/delete operations against the cluster.
type Client struct {
	kube    client.Client
	timeout time.Duration
	metrics metrics.Collector
	logger  *slog.Logger
}

// New creates a cluster client on top of a controller-runtime client.
// A non-positive requestTimeout disables the per-call deadline.
func New(kube client.Client, requestTimeout time.Duration, collector metrics.Collector, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		kube:    kube,
		timeout: requestTimeout,
		metrics: collector,
		logger:  logger.With("component", "cluster-client"),
	}
}

// CreateNamespace creates the tenant namespace. Fails with an
// errdefs.ErrAlreadyExists mark when the namespace is already present.
func (c *Client) CreateNamespace(ctx context.Context, ns *corev1.Namespace) error {
	err := c.do(ctx, "create", "namespaces", func(opCtx context.Context) error {
		return c.kube.Create(opCtx, ns)
	})

	return c.classify(errors.Wrapf(err, "create namespace %q", ns.Name))
}

// CreateConfigMap creates a namespaced ConfigMap. Fails with an
// errdefs.ErrNotFound mark when the target namespace is absent.
func (c *Client) CreateConfigMap(ctx context.Context, cm *corev1.ConfigMap) error {
	err := c.do(ctx, "create", "configmaps", func(opCtx context.Context) error {
		return c.kube.Create(opCtx, cm)
	})

	return c.classify(errors.Wrapf(err, "create configmap %s/%s", cm.Namespace, cm.Name))
}

// UpdateConfigMap replaces the data of an existing ConfigMap. Used by the
// reconcile path of tenant add.
func (c *Client) UpdateConfigMap(ctx context.Context, cm *corev1.ConfigMap) error {
	err := c.do(ctx, "update", "configmaps", func(opCtx context.Context) error {
		existing := &corev1.ConfigMap{}
		if err := c.kube.Get(opCtx, client.ObjectKeyFromObject(cm), existing); err != nil {
			return err
		}

		existing.Data = cm.Data

		return c.kube.Update(opCtx, existing)
	})

	return c.classify(errors.Wrapf(err, "update configmap %s/%s", cm.Namespace, cm.Name))
}

// CreateServiceAccount creates the tenant reconciler ServiceAccount.
func (c *Client) CreateServiceAccount(ctx context.Context, sa *corev1.ServiceAccount) error {
	err := c.do(ctx, "create", "serviceaccounts", func(opCtx context.Context) error {
		return c.kube.Create(opCtx, sa)
	})

	return c.classify(errors.Wrapf(err, "create serviceaccount %s/%s", sa.Namespace, sa.Name))
}

// CreateRoleBinding creates the tenant reconciler RoleBinding.
func (c *Client) CreateRoleBinding(ctx context.Context, rb *rbacv1.RoleBinding) error {
	err := c.do(ctx, "create", "rolebindings", func(opCtx context.Context) error {
		return c.kube.Create(opCtx, rb)
	})

	return c.classify(errors.Wrapf(err, "create rolebinding %s/%s", rb.Namespace, rb.Name))
}

// CreateResource creates an unstructured resource. Fails with an
// errdefs.ErrAlreadyExists mark when the resource is already present.
func (c *Client) CreateResource(ctx context.Context, obj *unstructured.Unstructured) error {
	resource := obj.GetKind()

	err := c.do(ctx, "create", resource, func(opCtx context.Context) error {
		return c.kube.Create(opCtx, obj)
	})

	return c.classify(errors.Wrapf(err, "create %s %s/%s", resource, obj.GetNamespace(), obj.GetName()))
}

// Apply upserts an unstructured resource: created when absent, replaced in
// place when present. Malformed descriptors and permission denials fail with
// an errdefs.ErrApply mark, deadline expiry with errdefs.ErrTimeout.
func (c *Client) Apply(ctx context.Context, obj *unstructured.Unstructured) error {
	resource := obj.GetKind()

	err := c.do(ctx, "apply", resource, func(opCtx context.Context) error {
		existing := &unstructured.Unstructured{}
		existing.SetGroupVersionKind(obj.GroupVersionKind())

		key := types.NamespacedName{Namespace: obj.GetNamespace(), Name: obj.GetName()}

		getErr := c.kube.Get(opCtx, key, existing)
		if apierrors.IsNotFound(getErr) {
			return c.kube.Create(opCtx, obj)
		}

		if getErr != nil {
			return getErr
		}

		obj.SetResourceVersion(existing.GetResourceVersion())

		return c.kube.Update(opCtx, obj)
	})

	return classifyApply(errors.Wrapf(err, "apply %s %s/%s", resource, obj.GetNamespace(), obj.GetName()))
}

// NamespaceExists reports whether the named namespace is present. It is the
// query-before-act probe the tenant controller re-derives state from.
func (c *Client) NamespaceExists(ctx context.Context, name string) (bool, error) {
	var found bool

	err := c.do(ctx, "get", "namespaces", func(opCtx context.Context) error {
		ns := &corev1.Namespace{}

		getErr := c.kube.Get(opCtx, types.NamespacedName{Name: name}, ns)
		if apierrors.IsNotFound(getErr) {
			return nil
		}

		if getErr != nil {
			return getErr
		}

		found = true

		return nil
	})
	if err != nil {
		return false, c.classify(errors.Wrapf(err, "get namespace %q", name))
	}

	return found, nil
}

// ListNamespacesWithLabel lists namespaces carrying the given label. An empty
// value selects on label presence alone.
func (c *Client) ListNamespacesWithLabel(ctx context.Context, key, value string) ([]corev1.Namespace, error) {
	var items []corev1.Namespace

	err := c.do(ctx, "list", "namespaces", func(opCtx context.Context) error {
		list := &corev1.NamespaceList{}

		var selector client.ListOption
		if value == "" {
			selector = client.HasLabels{key}
		} else {
			selector = client.MatchingLabels{key: value}
		}

		if listErr := c.kube.List(opCtx, list, selector); listErr != nil {
			return listErr
		}

		items = list.Items

		return nil
	})
	if err != nil {
		return nil, c.classify(errors.Wrap(err, "list namespaces"))
	}

	return items, nil
}

// DeleteNamespace requests deletion of the named namespace, cascading over
// everything scoped inside it. Deleting an absent namespace is a no-op.
func (c *Client) DeleteNamespace(ctx context.Context, name string) error {
	err := c.do(ctx, "delete", "namespaces", func(opCtx context.Context) error {
		ns := &corev1.Namespace{}
		ns.Name = name

		deleteErr := c.kube.Delete(opCtx, ns)
		if apierrors.IsNotFound(deleteErr) {
			return nil
		}

		return deleteErr
	})

	return c.classify(errors.Wrapf(err, "delete namespace %q", name))
}

// DeleteNamespacesWithLabel deletes every namespace matching the label and
// returns the names it requested deletion for. Zero matches is not an error.
func (c *Client) DeleteNamespacesWithLabel(ctx context.Context, key, value string) ([]string, error) {
	matches, err := c.ListNamespacesWithLabel(ctx, key, value)
	if err != nil {
		return nil, err
	}

	deleted := make([]string, 0, len(matches))

	for i := range matches {
		if err := c.DeleteNamespace(ctx, matches[i].Name); err != nil {
			return deleted, err
		}

		deleted = append(deleted, matches[i].Name)
	}

	return deleted, nil
}

// do runs one remote call under the request timeout and records its metrics
// sample.
func (c *Client) do(ctx context.Context, verb, resource string, fn func(context.Context) error) error {
	opCtx := ctx

	if c.timeout > 0 {
		var cancel context.CancelFunc

		opCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	startTime := time.Now()

	err := fn(opCtx)
	if err != nil {
		c.metrics.RecordAPICall(ctx, verb, resource, "error", time.Since(startTime))
		c.metrics.RecordAPIError(ctx, verb, metrics.ClassifyAPIError(err))

		c.logger.Debug("api call failed", "verb", verb, "resource", resource, "error", err)

		return err
	}

	c.metrics.RecordAPICall(ctx, verb, resource, "success", time.Since(startTime))

	return nil
}

// classify attaches the errdefs mark matching the underlying API error.
func (c *Client) classify(err error) error {
	switch {
	case err == nil:
		return nil
	case apierrors.IsAlreadyExists(err):
		return errors.Mark(err, errdefs.ErrAlreadyExists)
	case apierrors.IsNotFound(err):
		return errors.Mark(err, errdefs.ErrNotFound)
	case isTimeout(err):
		return errors.Mark(err, errdefs.ErrTimeout)
	default:
		return err
	}
}

// classifyApply maps descriptor application failures: deadline expiry stays
// ErrTimeout, everything else (permission denial, malformed descriptor) is
// ErrApply.
func classifyApply(err error) error {
	switch {
	case err == nil:
		return nil
	case isTimeout(err):
		return errors.Mark(err, errdefs.ErrTimeout)
	default:
		return errors.Mark(err, errdefs.ErrApply)
	}
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) ||
		apierrors.IsTimeout(err) ||
		apierrors.IsServerTimeout(err)
}

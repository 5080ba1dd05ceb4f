// Package tenant implements the tenant provisioning control flow. Tenant
// state lives entirely in the cluster: every operation queries before acting
// and re-running add is the documented recovery path for a partially
// provisioned tenant.
package tenant

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	corev1 "k8s.io/api/core/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/ringerc/flux-tenant-ctl/internal/errdefs"
	"github.com/ringerc/flux-tenant-ctl/internal/manifest"
	"github.com/ringerc/flux-tenant-ctl/internal/metrics"
)

// OnExists selects how add treats a namespace that already exists.
type OnExists string

const (
	// OnExistsFail aborts when the tenant namespace already exists.
	OnExistsFail OnExists = "fail"
	// OnExistsIgnore tolerates existing resources and creates only the
	// missing ones.
	OnExistsIgnore OnExists = "ignore"
	// OnExistsReconcile additionally refreshes the ConfigMap and re-applies
	// the Kustomization so the tenant converges on the requested inputs.
	OnExistsReconcile OnExists = "reconcile"
)

// ParseOnExists validates an on-exists policy string.
func ParseOnExists(s string) (OnExists, error) {
	switch OnExists(s) {
	case OnExistsFail, OnExistsIgnore, OnExistsReconcile:
		return OnExists(s), nil
	default:
		return "", errors.Mark(
			errors.Newf("invalid on-exists policy %q (expected fail, ignore, or reconcile)", s),
			errdefs.ErrInvalidArgument,
		)
	}
}

// Tenant is one provisioned tenant as observed from its namespace.
type Tenant struct {
	Namespace string
	Name      string
	Phase     string
}

// ClusterClient is the slice of the cluster API the controller drives.
// *cluster.Client satisfies it.
type ClusterClient interface {
	CreateNamespace(ctx context.Context, ns *corev1.Namespace) error
	CreateConfigMap(ctx context.Context, cm *corev1.ConfigMap) error
	UpdateConfigMap(ctx context.Context, cm *corev1.ConfigMap) error
	CreateServiceAccount(ctx context.Context, sa *corev1.ServiceAccount) error
	CreateRoleBinding(ctx context.Context, rb *rbacv1.RoleBinding) error
	CreateResource(ctx context.Context, obj *unstructured.Unstructured) error
	Apply(ctx context.Context, obj *unstructured.Unstructured) error
	NamespaceExists(ctx context.Context, name string) (bool, error)
	ListNamespacesWithLabel(ctx context.Context, key, value string) ([]corev1.Namespace, error)
	DeleteNamespace(ctx context.Context, name string) error
	DeleteNamespacesWithLabel(ctx context.Context, key, value string) ([]string, error)
}

// Controller orchestrates tenant add, list, and delete against the cluster.
type Controller struct {
	cluster ClusterClient
	metrics metrics.Collector
	logger  *slog.Logger
}

// NewController creates a tenant controller.
func NewController(cluster ClusterClient, collector metrics.Collector, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}

	return &Controller{
		cluster: cluster,
		metrics: collector,
		logger:  logger.With("component", "tenant-controller"),
	}
}

// AddOptions tunes the add operation.
type AddOptions struct {
	// OnExists selects the behavior for an already-existing tenant
	// namespace. Defaults to OnExistsReconcile.
	OnExists OnExists
}

// Add provisions a tenant: namespace, substitution ConfigMap, reconciler
// ServiceAccount and RoleBinding, then the Flux Kustomization. A failure
// after namespace creation leaves the tenant partially provisioned;
// re-running Add with the same inputs completes it.
//
//nolint:funlen // linear provisioning sequence, one step per resource
func (c *Controller) Add(ctx context.Context, tenantNamespace, tenantName string, opts AddOptions) error {
	onExists := opts.OnExists
	if onExists == "" {
		onExists = OnExistsReconcile
	}

	startTime := time.Now()

	err := func() error {
		m, err := manifest.Render(tenantNamespace, tenantName)
		if err != nil {
			return err
		}

		exists, err := c.cluster.NamespaceExists(ctx, tenantNamespace)
		if err != nil {
			return err
		}

		if exists && onExists == OnExistsFail {
			return errors.Mark(
				errors.Newf("tenant namespace %q already exists", tenantNamespace),
				errdefs.ErrAlreadyExists,
			)
		}

		if exists {
			c.logger.Info("tenant namespace already exists, continuing",
				"namespace", tenantNamespace,
				"on-exists", string(onExists),
			)
		}

		if !exists {
			if err := c.cluster.CreateNamespace(ctx, m.Namespace); err != nil {
				// A concurrent add can win the race between the existence
				// probe and the create. Treat it the same as observing the
				// namespace up front.
				if !errors.Is(err, errdefs.ErrAlreadyExists) || onExists == OnExistsFail {
					return err
				}
			}
		}

		if err := c.ensureConfigMap(ctx, m.ConfigMap, onExists); err != nil {
			return err
		}

		if err := tolerateExists(c.cluster.CreateServiceAccount(ctx, m.ServiceAccount)); err != nil {
			return err
		}

		if err := tolerateExists(c.cluster.CreateRoleBinding(ctx, m.RoleBinding)); err != nil {
			return err
		}

		return c.ensureKustomization(ctx, m.Kustomization, onExists)
	}()

	c.recordOperation(ctx, "add", err, startTime)

	if err != nil {
		return err
	}

	c.logger.Info("tenant provisioned", "namespace", tenantNamespace, "tenant", tenantName)

	return nil
}

// List returns every tenant, sorted by namespace name. The tenant name is
// read back from the namespace label, the phase from namespace status.
func (c *Controller) List(ctx context.Context) ([]Tenant, error) {
	startTime := time.Now()

	namespaces, err := c.cluster.ListNamespacesWithLabel(ctx, manifest.TenantNameLabel, "")

	c.recordOperation(ctx, "list", err, startTime)

	if err != nil {
		return nil, err
	}

	tenants := make([]Tenant, 0, len(namespaces))

	for i := range namespaces {
		ns := &namespaces[i]
		tenants = append(tenants, Tenant{
			Namespace: ns.Name,
			Name:      ns.Labels[manifest.TenantNameLabel],
			Phase:     string(ns.Status.Phase),
		})
	}

	sort.Slice(tenants, func(i, j int) bool {
		return tenants[i].Namespace < tenants[j].Namespace
	})

	return tenants, nil
}

// Delete removes tenants selected by namespace or by tenant name, exactly one
// of which must be set. Namespace deletion cascades over the ConfigMap and
// Kustomization scoped inside. It returns the namespaces deletion was
// requested for; zero matches is success.
func (c *Controller) Delete(ctx context.Context, tenantNamespace, tenantName string) ([]string, error) {
	if (tenantNamespace == "") == (tenantName == "") {
		return nil, errors.Mark(
			errors.New("exactly one of tenant namespace or tenant name must be given"),
			errdefs.ErrInvalidArgument,
		)
	}

	startTime := time.Now()

	deleted, err := c.deleteMatching(ctx, tenantNamespace, tenantName)

	c.recordOperation(ctx, "delete", err, startTime)

	if err != nil {
		return deleted, err
	}

	c.logger.Info("tenant deletion requested", "namespaces", deleted)

	return deleted, nil
}

func (c *Controller) deleteMatching(ctx context.Context, tenantNamespace, tenantName string) ([]string, error) {
	if tenantName != "" {
		return c.cluster.DeleteNamespacesWithLabel(ctx, manifest.TenantNameLabel, tenantName)
	}

	// The namespace selector still resolves through the tenant label so a
	// non-tenant namespace can never be deleted by this tool.
	matches, err := c.cluster.ListNamespacesWithLabel(ctx, manifest.TenantNameLabel, "")
	if err != nil {
		return nil, err
	}

	for i := range matches {
		if matches[i].Name == tenantNamespace {
			if err := c.cluster.DeleteNamespace(ctx, tenantNamespace); err != nil {
				return nil, err
			}

			return []string{tenantNamespace}, nil
		}
	}

	return nil, nil
}

// ensureKustomization upserts the descriptor, except under the ignore policy
// where an existing Kustomization is left as found.
func (c *Controller) ensureKustomization(ctx context.Context, obj *unstructured.Unstructured, onExists OnExists) error {
	if onExists == OnExistsIgnore {
		return tolerateExists(c.cluster.CreateResource(ctx, obj))
	}

	return c.cluster.Apply(ctx, obj)
}

func (c *Controller) ensureConfigMap(ctx context.Context, cm *corev1.ConfigMap, onExists OnExists) error {
	err := c.cluster.CreateConfigMap(ctx, cm)
	if err == nil || !errors.Is(err, errdefs.ErrAlreadyExists) {
		return err
	}

	if onExists == OnExistsReconcile {
		return c.cluster.UpdateConfigMap(ctx, cm)
	}

	return nil
}

func (c *Controller) recordOperation(ctx context.Context, operation string, err error, startTime time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}

	c.metrics.RecordTenantOperation(ctx, operation, status, time.Since(startTime))
}

// tolerateExists swallows already-exists collisions on the resources whose
// content is a pure function of the tenant namespace.
func tolerateExists(err error) error {
	if errors.Is(err, errdefs.ErrAlreadyExists) {
		return nil
	}

	return err
}

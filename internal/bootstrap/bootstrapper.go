package bootstrap

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
	"helm.sh/helm/v4/pkg/chart"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/ringerc/flux-tenant-ctl/internal/cluster"
	"github.com/ringerc/flux-tenant-ctl/internal/errdefs"
	"github.com/ringerc/flux-tenant-ctl/internal/manifest"
)

// Options configures a bootstrap run.
type Options struct {
	// GitURL is the repository the shared GitRepository source points at.
	GitURL string

	// Branch is the git branch to reconcile from.
	Branch string

	// ChartRef overrides the flux2 chart OCI reference.
	ChartRef string

	// ChartVersion pins the chart version. Empty selects the newest stable
	// tag from the registry.
	ChartVersion string

	// IgnorePaths lists .sourceignore patterns for the GitRepository source.
	// Nil selects DefaultIgnorePaths.
	IgnorePaths []string
}

// Bootstrapper installs the Flux controllers and registers the shared source.
type Bootstrapper struct {
	helm    *Manager
	cluster *cluster.Client
	logger  *slog.Logger
}

// NewBootstrapper creates a Bootstrapper.
func NewBootstrapper(helm *Manager, clusterClient *cluster.Client, logger *slog.Logger) *Bootstrapper {
	if logger == nil {
		logger = slog.Default()
	}

	return &Bootstrapper{
		helm:    helm,
		cluster: clusterClient,
		logger:  logger.With("component", "bootstrapper"),
	}
}

// Run installs or upgrades the flux2 release in flux-system and upserts the
// shared GitRepository source. Re-running bootstrap is safe: an existing
// release is upgraded and the source is replaced in place.
func (b *Bootstrapper) Run(ctx context.Context, opts Options) error {
	if opts.GitURL == "" {
		return errors.Mark(errors.New("git URL is required"), errdefs.ErrInvalidArgument)
	}

	chartRef := opts.ChartRef
	if chartRef == "" {
		chartRef = DefaultChartRef
	}

	version := opts.ChartVersion

	if version == "" {
		latest, err := b.helm.GetLatestVersion(ctx, chartRef)
		if err != nil {
			return errors.Wrap(err, "failed to resolve chart version")
		}

		version = latest

		b.logger.Info("resolved latest chart version", "version", version)
	}

	loadedChart, err := b.helm.LoadChart(ctx, chartRef, version)
	if err != nil {
		return err
	}

	if err := b.ensureNamespace(ctx); err != nil {
		return err
	}

	if err := b.installOrUpgrade(ctx, loadedChart); err != nil {
		return err
	}

	branch := opts.Branch
	if branch == "" {
		branch = "main"
	}

	ignorePaths := opts.IgnorePaths
	if ignorePaths == nil {
		ignorePaths = DefaultIgnorePaths
	}

	source := BuildGitRepository(opts.GitURL, branch, ignorePaths)
	if err := b.cluster.Apply(ctx, source); err != nil {
		return err
	}

	b.logger.Info("bootstrap complete",
		"release", DefaultReleaseName,
		"namespace", manifest.SourceNamespace,
		"source", opts.GitURL,
	)

	return nil
}

func (b *Bootstrapper) ensureNamespace(ctx context.Context) error {
	ns := &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{Name: manifest.SourceNamespace},
	}

	err := b.cluster.CreateNamespace(ctx, ns)
	if err != nil && !errors.Is(err, errdefs.ErrAlreadyExists) {
		return err
	}

	return nil
}

func (b *Bootstrapper) installOrUpgrade(ctx context.Context, loadedChart chart.Charter) error {
	actionConfig, err := b.helm.GetActionConfig(manifest.SourceNamespace)
	if err != nil {
		return err
	}

	values := (&FluxValues{WatchAllNamespaces: true}).BuildValues()

	if b.helm.ReleaseExists(actionConfig, DefaultReleaseName) {
		b.logger.Info("flux release exists, upgrading")

		_, err = b.helm.Upgrade(ctx, actionConfig, DefaultReleaseName, loadedChart, values)

		return err
	}

	_, err = b.helm.Install(ctx, actionConfig, DefaultReleaseName, manifest.SourceNamespace, loadedChart, values)

	return err
}

package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ringerc/flux-tenant-ctl/internal/bootstrap"
)

//nolint:gochecknoglobals // cobra command pattern
var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Install the Flux controllers and register the shared git source",
	Long: `Installs (or upgrades) the flux2 Helm chart into the flux-system namespace
watching all namespaces, then registers the shared GitRepository source that
per-tenant Kustomizations reconcile from.`,
	RunE: runBootstrap,
}

//nolint:gochecknoinits // cobra command registration
func init() {
	bootstrapCmd.Flags().String("git-url", "", "Git URL for the Flux source (required)")
	bootstrapCmd.Flags().String("branch", "main", "Git branch for the Flux source")
	bootstrapCmd.Flags().String("chart-ref", bootstrap.DefaultChartRef, "OCI reference of the flux2 chart")
	bootstrapCmd.Flags().String("chart-version", "", "Chart version (default: newest stable tag)")

	_ = bootstrapCmd.MarkFlagRequired("git-url")

	rootCmd.AddCommand(bootstrapCmd)
}

func runBootstrap(cmd *cobra.Command, _ []string) error {
	gitURL, _ := cmd.Flags().GetString("git-url")
	branch, _ := cmd.Flags().GetString("branch")
	chartRef, _ := cmd.Flags().GetString("chart-ref")
	chartVersion, _ := cmd.Flags().GetString("chart-version")

	collector := newCollector()

	clusterClient, err := newClusterClient(collector)
	if err != nil {
		return err
	}

	helmManager, err := bootstrap.NewManager(collector, slog.Default())
	if err != nil {
		return err
	}

	bootstrapper := bootstrap.NewBootstrapper(helmManager, clusterClient, slog.Default())

	opts := bootstrap.Options{
		GitURL:       gitURL,
		Branch:       branch,
		ChartRef:     chartRef,
		ChartVersion: chartVersion,
	}

	if err := bootstrapper.Run(cmd.Context(), opts); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Flux bootstrapped. Run \"flux check\" to verify the installation")

	return nil
}

package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ringerc/flux-tenant-ctl/internal/tenant"
)

//nolint:gochecknoglobals // cobra command pattern
var tenantCmd = &cobra.Command{
	Use:   "tenant",
	Short: "Manage tenant namespaces and their Flux deployment descriptors",
}

//nolint:gochecknoglobals // cobra command pattern
var tenantAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Provision a tenant namespace with its Flux Kustomization",
	RunE:  runTenantAdd,
}

//nolint:gochecknoglobals // cobra command pattern
var tenantListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tenants by namespace label",
	RunE:  runTenantList,
}

//nolint:gochecknoglobals // cobra command pattern
var tenantDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete tenants selected by namespace or by tenant name",
	RunE:  runTenantDelete,
}

//nolint:gochecknoinits // cobra command registration
func init() {
	tenantAddCmd.Flags().String("tenant-namespace", "", "Namespace for the tenant (required)")
	tenantAddCmd.Flags().String("tenant-name", "", "Human-readable tenant name (required)")
	tenantAddCmd.Flags().String("on-exists", string(tenant.OnExistsReconcile),
		"Behavior when the tenant namespace already exists (fail, ignore, reconcile)")
	_ = tenantAddCmd.MarkFlagRequired("tenant-namespace")
	_ = tenantAddCmd.MarkFlagRequired("tenant-name")

	tenantDeleteCmd.Flags().String("tenant-namespace", "", "Delete the tenant with this namespace")
	tenantDeleteCmd.Flags().String("tenant-name", "", "Delete every tenant with this name")

	tenantCmd.AddCommand(tenantAddCmd, tenantListCmd, tenantDeleteCmd)
	rootCmd.AddCommand(tenantCmd)
}

func newTenantController() (*tenant.Controller, error) {
	collector := newCollector()

	clusterClient, err := newClusterClient(collector)
	if err != nil {
		return nil, err
	}

	return tenant.NewController(clusterClient, collector, slog.Default()), nil
}

func runTenantAdd(cmd *cobra.Command, _ []string) error {
	tenantNamespace, _ := cmd.Flags().GetString("tenant-namespace")
	tenantName, _ := cmd.Flags().GetString("tenant-name")
	onExistsFlag, _ := cmd.Flags().GetString("on-exists")

	onExists, err := tenant.ParseOnExists(onExistsFlag)
	if err != nil {
		return err
	}

	controller, err := newTenantController()
	if err != nil {
		return err
	}

	if err := controller.Add(cmd.Context(), tenantNamespace, tenantName, tenant.AddOptions{OnExists: onExists}); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Tenant created. Run %q for status\n", tenantStatusHint(tenantNamespace))

	return nil
}

// tenantStatusHint is the follow-up command printed after a successful add.
func tenantStatusHint(tenantNamespace string) string {
	return "flux get ks --namespace " + tenantNamespace
}

func runTenantList(cmd *cobra.Command, _ []string) error {
	controller, err := newTenantController()
	if err != nil {
		return err
	}

	tenants, err := controller.List(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%-40s %-40s %s\n", "NAMESPACE", "NAME", "NS-STATUS")

	for _, t := range tenants {
		fmt.Fprintf(out, "%-40s %-40s %s\n", t.Namespace, t.Name, t.Phase)
	}

	return nil
}

func runTenantDelete(cmd *cobra.Command, _ []string) error {
	tenantNamespace, _ := cmd.Flags().GetString("tenant-namespace")
	tenantName, _ := cmd.Flags().GetString("tenant-name")

	controller, err := newTenantController()
	if err != nil {
		return err
	}

	deleted, err := controller.Delete(cmd.Context(), tenantNamespace, tenantName)
	if err != nil {
		return err
	}

	if len(deleted) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No matching tenants found")

		return nil
	}

	for _, name := range deleted {
		fmt.Fprintf(cmd.OutOrStdout(), "Namespace %q deletion requested\n", name)
	}

	return nil
}

// Package cmd wires the CLI surface: bootstrap plus the tenant add, list,
// and delete subcommands.
package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/ringerc/flux-tenant-ctl/internal/cluster"
	"github.com/ringerc/flux-tenant-ctl/internal/metrics"
)

//nolint:gochecknoglobals // set by SetVersion from main
var (
	version = "development"
	gitsha  = "development"
)

func SetVersion(ver, sha string) {
	version = ver
	gitsha = sha
}

//nolint:gochecknoglobals // cobra command pattern
var rootCmd = &cobra.Command{
	Use:   "tenantctl",
	Short: "Multi-tenant Flux provisioning for Kubernetes clusters",
	Long: `tenantctl bootstraps the Flux GitOps controllers into a Kubernetes cluster
and provisions per-tenant namespaces with templated Flux Kustomization
resources reconciling from a shared git source.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger := setupLogger()
		slog.SetDefault(logger)
		ctrl.SetLogger(logr.FromSlogHandler(logger.Handler()))

		logger.Debug("tenantctl starting", "version", version, "gitsha", gitsha)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (json, text)")
	rootCmd.PersistentFlags().String("kubeconfig", "", "Path to the kubeconfig file (default: standard loading rules)")
	rootCmd.PersistentFlags().String("kube-context", "", "Kubeconfig context to use (default: current context)")
	rootCmd.PersistentFlags().Duration("request-timeout", cluster.DefaultRequestTimeout,
		"Timeout for each Kubernetes API request")

	_ = viper.BindPFlags(rootCmd.PersistentFlags())
}

func initConfig() {
	viper.SetEnvPrefix("FLUXMT")
	viper.AutomaticEnv()

	viper.SetDefault("log-level", "info")
	viper.SetDefault("log-format", "text")
	viper.SetDefault("request-timeout", cluster.DefaultRequestTimeout)
}

func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return errors.Wrap(rootCmd.ExecuteContext(ctx), "command execution failed")
}

func setupLogger() *slog.Logger {
	level := slog.LevelInfo

	switch viper.GetString("log-level") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if viper.GetString("log-format") == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}

// newCollector builds the per-invocation metrics collector.
func newCollector() metrics.Collector {
	return metrics.NewCollector(prometheus.NewRegistry())
}

func newClusterClient(collector metrics.Collector) (*cluster.Client, error) {
	kube, err := cluster.NewKubeClient(viper.GetString("kubeconfig"), viper.GetString("kube-context"))
	if err != nil {
		return nil, err
	}

	return cluster.New(kube, viper.GetDuration("request-timeout"), collector, slog.Default()), nil
}

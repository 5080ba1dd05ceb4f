// Package bootstrap installs the Flux GitOps controllers into a cluster and
// registers the shared GitRepository source every tenant reconciles from.
//
// # Overview
//
// The bootstrap command drives this package in two steps:
//
//   - Install (or upgrade, when the release already exists) the flux2 Helm
//     chart into the flux-system namespace using the Helm SDK
//   - Upsert the shared GitRepository source resource pointing at the
//     manifests repository
//
// # Chart Source
//
// The flux2 chart is pulled from the OCI registry:
//
//	oci://ghcr.io/fluxcd-community/charts/flux2
//
// The Manager automatically discovers the latest stable version (non-prerelease)
// and caches the chart to avoid repeated downloads.
package bootstrap

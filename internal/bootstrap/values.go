package bootstrap

// FluxValues holds configuration for the flux2 Helm chart.
type FluxValues struct {
	WatchAllNamespaces bool
	ClusterDomain      string
}

// BuildValues converts FluxValues to a Helm values map.
func (v *FluxValues) BuildValues() map[string]any {
	values := map[string]any{
		"watchAllNamespaces": v.WatchAllNamespaces,
	}

	if v.ClusterDomain != "" {
		values["clusterDomain"] = v.ClusterDomain
	}

	return values
}

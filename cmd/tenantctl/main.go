package main

import (
	"fmt"
	"os"

	"github.com/ringerc/flux-tenant-ctl/cmd/tenantctl/cmd"
	"github.com/ringerc/flux-tenant-ctl/internal/errdefs"
)

//nolint:gochecknoglobals // set by ldflags at build time
var (
	Version = "development"
	Gitsha  = "development"
)

//nolint:noinlineerr // inline error handling is standard for main
func main() {
	cmd.SetVersion(Version, Gitsha)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(errdefs.ExitCode(err))
	}
}

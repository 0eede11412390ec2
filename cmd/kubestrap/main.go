// Package main is the entry point for the kubestrap CLI.
//
// kubestrap bootstraps a kubeadm Kubernetes cluster across a fleet of
// freshly provisioned hosts over SSH: it prepares every host's
// environment, initializes the primary control plane, extracts join
// artifacts, joins the remaining hosts, and verifies cluster membership.
//
// For detailed usage information, run:
//
//	kubestrap --help
package main

import (
	"fmt"
	"os"

	"github.com/kubestrap/kubestrap/cmd/kubestrap/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package commands

import (
	"github.com/spf13/cobra"

	"github.com/kubestrap/kubestrap/cmd/kubestrap/handlers"
)

// Up returns the command that runs the full cluster bootstrap.
//
// The bootstrap process:
//  1. Runs the environment-preparation script on every host in parallel
//  2. Initializes the cluster on the primary host and extracts join
//     artifacts (admin credentials, join token, certificate key)
//  3. Joins additional control planes and workers concurrently
//  4. Verifies cluster membership against the expected fleet size
//
// Flags:
//
//	--config, -c: Path to the cluster configuration YAML (default: kubestrap.yaml)
//	--kubeconfig-out: Where to write the fetched admin kubeconfig
//
// Environment variables:
//
//	KUBESTRAP_RETRY_MAX_ATTEMPTS, KUBESTRAP_RETRY_DELAY,
//	KUBESTRAP_TIMEOUT_ATTEMPT, KUBESTRAP_SETTLE_DELAY
func Up() *cobra.Command {
	var (
		configPath    string
		kubeconfigOut string
	)

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Bootstrap the cluster described in the configuration file",
		Long: `Bootstrap a kubeadm cluster across the configured fleet.

All hosts are prepared in parallel; any preparation failure aborts the run
before initialization. Initialization runs on the single primary host and
extracts the join artifacts. Join failures degrade the run with warnings
but never abort it, and a final membership check reports (without failing)
when the cluster has not yet converged.

Examples:
  # Bootstrap using kubestrap.yaml in the current directory
  kubestrap up

  # Bootstrap using a specific config file
  kubestrap up -c production.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := handlers.UpOptions{
				ConfigPath:    configPath,
				KubeconfigOut: kubeconfigOut,
			}
			return handlers.Up(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kubestrap.yaml", "Path to configuration file")
	cmd.Flags().StringVar(&kubeconfigOut, "kubeconfig-out", "kubeconfig", "Path to write the admin kubeconfig to")

	return cmd
}

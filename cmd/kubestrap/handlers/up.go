// Package handlers implements the CLI command entry points.
package handlers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kubestrap/kubestrap/internal/bootstrap"
	"github.com/kubestrap/kubestrap/internal/config"
	"github.com/kubestrap/kubestrap/internal/sshx"
	"github.com/kubestrap/kubestrap/internal/util/retry"
)

// UpOptions configures the Up handler.
type UpOptions struct {
	ConfigPath    string
	KubeconfigOut string
}

// Up loads the configuration and runs the full bootstrap across the fleet.
func Up(ctx context.Context, opts UpOptions) error {
	cfg, err := config.LoadFile(opts.ConfigPath)
	if err != nil {
		return err
	}

	orchOpts, err := orchestratorOptions(cfg)
	if err != nil {
		return err
	}

	orch, err := bootstrap.New(orchOpts)
	if err != nil {
		return err
	}

	logrus.WithField("cluster", cfg.ClusterName).Info("starting bootstrap")
	report, runErr := orch.Run(ctx)
	printSummary(cfg.ClusterName, report)

	if report.Artifacts.AdminKubeconfig != "" && opts.KubeconfigOut != "" {
		if err := writeKubeconfig(opts.KubeconfigOut, report.Artifacts.AdminKubeconfig); err != nil {
			return err
		}
		fmt.Printf("Kubeconfig saved to: %s\n", opts.KubeconfigOut)
	}

	return runErr
}

// orchestratorOptions translates the file configuration into orchestrator
// options, reading the script and init artifact off disk.
func orchestratorOptions(cfg *config.Config) (bootstrap.Options, error) {
	scriptBody, err := os.ReadFile(cfg.PrepareScript) // #nosec G304
	if err != nil {
		return bootstrap.Options{}, fmt.Errorf("failed to read prepare script: %w", err)
	}
	initConfig, err := os.ReadFile(cfg.InitConfig) // #nosec G304
	if err != nil {
		return bootstrap.Options{}, fmt.Errorf("failed to read init configuration: %w", err)
	}

	hosts, err := buildHosts(cfg)
	if err != nil {
		return bootstrap.Options{}, err
	}

	timeouts := config.LoadTimeouts()
	return bootstrap.Options{
		Hosts: hosts,
		PrepareScript: sshx.Script{
			Name: filepath.Base(cfg.PrepareScript),
			Body: scriptBody,
			Args: cfg.PrepareArgs,
			Sudo: true,
		},
		InitConfig: initConfig,
		Policy: retry.Policy{
			MaxAttempts:    timeouts.RetryMaxAttempts,
			AttemptTimeout: timeouts.AttemptTimeout,
			Delay:          timeouts.RetryDelay,
		},
		Concurrency: cfg.Concurrency,
		SettleDelay: timeouts.SettleDelay,
	}, nil
}

// buildHosts maps host configuration entries to orchestrator hosts.
func buildHosts(cfg *config.Config) ([]bootstrap.Host, error) {
	hosts := make([]bootstrap.Host, 0, len(cfg.Hosts))
	for _, hc := range cfg.Hosts {
		role, err := roleFromConfig(hc.Role)
		if err != nil {
			return nil, fmt.Errorf("host %q: %w", hc.Name, err)
		}
		hosts = append(hosts, bootstrap.Host{
			Name:    hc.Name,
			Address: hc.Address,
			Port:    hc.Port,
			User:    hc.User,
			Role:    role,
			Credential: sshx.Credential{
				Key:      []byte(hc.SSH.Key),
				KeyPath:  hc.SSH.KeyPath,
				Password: hc.SSH.Password,
			},
		})
	}
	return hosts, nil
}

// roleFromConfig maps a configured role name to the orchestrator role.
func roleFromConfig(role string) (bootstrap.Role, error) {
	switch role {
	case config.RolePrimary:
		return bootstrap.RolePrimary, nil
	case config.RoleControlPlane:
		return bootstrap.RoleControlPlane, nil
	case config.RoleWorker:
		return bootstrap.RoleWorker, nil
	default:
		return "", fmt.Errorf("unknown role %q", role)
	}
}

// writeKubeconfig persists the fetched admin credentials to disk.
func writeKubeconfig(path, kubeconfig string) error {
	if err := os.WriteFile(path, []byte(kubeconfig), 0o600); err != nil {
		return fmt.Errorf("failed to write kubeconfig: %w", err)
	}
	return nil
}

// printSummary outputs the bootstrap outcome and any warnings.
func printSummary(clusterName string, report *bootstrap.Report) {
	if report.Success {
		fmt.Printf("\nBootstrap of %s complete in %v\n", clusterName, report.Duration.Round(time.Millisecond))
	} else {
		fmt.Printf("\nBootstrap of %s failed in state %s\n", clusterName, report.State)
	}
	for _, phase := range []string{
		bootstrap.PhasePreparation, bootstrap.PhaseInitialization,
		bootstrap.PhaseJoin, bootstrap.PhaseVerification,
	} {
		if d, ok := report.PhaseDurations[phase]; ok {
			fmt.Printf("  %s: %v\n", phase, d.Round(time.Millisecond))
		}
	}

	if outcome, ok := report.Phases[bootstrap.PhaseJoin]; ok {
		for name, res := range outcome {
			status := "joined"
			if !res.Success {
				status = "failed: " + res.Message
			}
			fmt.Printf("  %s: %s\n", name, status)
		}
	}

	if report.ObservedNodes > 0 || report.ExpectedNodes > 0 {
		fmt.Printf("Nodes: %d observed / %d expected\n", report.ObservedNodes, report.ExpectedNodes)
	}
	for _, node := range report.Nodes {
		ready := "NotReady"
		if node.Ready {
			ready = "Ready"
		}
		fmt.Printf("  %s %s %s %s\n", node.Name, ready, node.Version, node.InternalIP)
	}

	for _, warning := range report.Warnings {
		fmt.Printf("Warning (%s): %s\n", warning.Kind, warning.Message)
	}
}

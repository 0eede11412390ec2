package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/kubestrap/kubestrap/internal/sshx"
)

// Remote paths and commands used during initialization on the primary.
const (
	initConfigRemotePath = "/tmp/kubestrap-init.yaml"
	adminKubeconfigPath  = "/etc/kubernetes/admin.conf"

	initCommand        = "sudo kubeadm init --config " + initConfigRemotePath
	fetchAdminCommand  = "sudo cat " + adminKubeconfigPath
	createTokenCommand = "sudo kubeadm token create --print-join-command"
	uploadCertsCommand = "sudo kubeadm init phase upload-certs --upload-certs"

	// controlPlaneJoinFlags extends the worker join command for hosts
	// joining as additional control-plane members.
	controlPlaneJoinFlags = "--control-plane --certificate-key"
)

// runInitialization performs the four sequential sub-steps on the primary
// over one held-open session: init, admin credential fetch, join token
// creation, and certificate upload. Only the init command itself is fatal;
// extraction failures afterwards degrade the artifacts with a warning.
func (o *Orchestrator) runInitialization(ctx context.Context) (PhaseOutcome, *InitializationError) {
	outcome := PhaseOutcome{}
	log := o.log.WithField("host", o.primary.Name)
	log.Info("initializing cluster on primary")

	runner, err := o.connect(ctx, o.primary)
	if err != nil {
		res := sshx.Failure("failed to connect to %s: %v", o.primary.Address, err)
		outcome[o.primary.Name] = res
		return outcome, &InitializationError{Host: o.primary.Name, Message: res.Message}
	}
	defer runner.Close()

	opts := sshx.ExecOptions{Timeout: o.policy.AttemptTimeout}

	// Step 1: upload the opaque init configuration and run the init command.
	if err := runner.Push(ctx, o.initConfig, initConfigRemotePath, "0600"); err != nil {
		res := sshx.Failure("failed to upload init configuration: %v", err)
		outcome[o.primary.Name] = res
		return outcome, &InitializationError{Host: o.primary.Name, Message: res.Message}
	}

	initRes := runner.Run(ctx, initCommand, opts)
	outcome[o.primary.Name] = initRes
	if !initRes.Success {
		log.WithField("message", initRes.Message).Error("init command failed")
		return outcome, &InitializationError{Host: o.primary.Name, Message: initRes.Message}
	}
	log.Info("init command succeeded")

	// Step 2: fetch the admin credentials. Non-fatal from here on.
	if res := runner.Run(ctx, fetchAdminCommand, opts); res.Success {
		o.artifacts.AdminKubeconfig = res.Stdout
	} else {
		o.report.Warn(WarnTokenExtractionDegraded,
			fmt.Sprintf("failed to fetch admin credentials from %s: %s", o.primary.Name, res.Message))
	}

	// Step 3: create a join token and capture the printed join command.
	tokenRes := runner.Run(ctx, createTokenCommand, opts)
	if tokenRes.Success {
		o.artifacts.WorkerJoinCommand = lastNonEmptyLine(tokenRes.Stdout)
	}
	if o.artifacts.WorkerJoinCommand == "" {
		o.report.Warn(WarnTokenExtractionDegraded,
			fmt.Sprintf("failed to obtain worker join command from %s: %s",
				o.primary.Name, failureReason(tokenRes, "empty join-command output")))
		return outcome, nil
	}

	// Step 4: upload certificates; the last output line is the certificate
	// key needed by additional control-plane members.
	certRes := runner.Run(ctx, uploadCertsCommand, opts)
	if certRes.Success {
		if key := lastNonEmptyLine(certRes.Stdout); key != "" {
			o.artifacts.ControlPlaneJoinCommand = fmt.Sprintf("%s %s %s",
				o.artifacts.WorkerJoinCommand, controlPlaneJoinFlags, key)
		}
	}
	if o.artifacts.ControlPlaneJoinCommand == "" {
		o.report.Warn(WarnTokenExtractionDegraded,
			fmt.Sprintf("join token obtained but control-plane join command unavailable: %s",
				failureReason(certRes, "empty certificate-key output")))
	}

	return outcome, nil
}

// failureReason explains a degraded extraction step. A step can degrade on a
// successful command whose output was unusable, leaving Message blank.
func failureReason(res sshx.Result, fallback string) string {
	if res.Message != "" {
		return res.Message
	}
	return fallback
}

// lastNonEmptyLine returns the final non-blank line of command output, the
// position both the join command and the certificate key are printed at.
func lastNonEmptyLine(out string) string {
	lines := strings.Split(out, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

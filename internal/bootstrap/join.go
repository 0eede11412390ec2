package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/kubestrap/kubestrap/internal/sshx"
	"github.com/kubestrap/kubestrap/internal/util/async"
	"github.com/kubestrap/kubestrap/internal/util/retry"
)

// CRISocket is the container runtime socket passed to every join command.
const CRISocket = "unix:///run/containerd/containerd.sock"

const joinSubcommand = "kubeadm join"

// RewriteJoinCommand rewrites the join command printed by the primary so it
// runs elevated and targets the container runtime socket. The substitution
// is a fixed textual replacement of the join subcommand; the remote tool's
// command-line syntax depends on this exact form.
func RewriteJoinCommand(cmd string) string {
	augmented := fmt.Sprintf("sudo %s --cri-socket=%s", joinSubcommand, CRISocket)
	return strings.Replace(cmd, joinSubcommand, augmented, 1)
}

// runJoin executes the join phase: additional control planes and workers
// join as two fully concurrent groups. A failure in one group never blocks
// the other; isolation is per host, aggregated into per-group warnings.
// Join commands assume preparation already ran in phase 1; they execute the
// join itself and nothing else.
func (o *Orchestrator) runJoin(ctx context.Context) PhaseOutcome {
	joiners := append(append([]Host{}, o.controlPlanes...), o.workers...)
	if len(joiners) == 0 {
		return PhaseOutcome{}
	}

	o.log.WithFields(logrus.Fields{
		"control_planes": len(o.controlPlanes),
		"workers":        len(o.workers),
	}).Info("joining hosts to the cluster")

	tasks := make([]async.Task[sshx.Result], 0, len(joiners))
	for _, host := range joiners {
		tasks = append(tasks, async.Task[sshx.Result]{
			Name: host.Name,
			Func: o.joinTask(host),
		})
	}

	outcome := PhaseOutcome(async.Collect(ctx, o.concurrency, tasks))

	o.warnFailedGroup("control-plane", o.controlPlanes, outcome)
	o.warnFailedGroup("worker", o.workers, outcome)
	return outcome
}

// joinTask builds the per-host join operation. Hosts whose join command is
// unavailable are skipped with an explicit per-host failure instead of an
// executed command.
func (o *Orchestrator) joinTask(host Host) func(context.Context) sshx.Result {
	return func(ctx context.Context) sshx.Result {
		joinCmd, reason := o.joinCommandFor(host.Role)
		if joinCmd == "" {
			o.log.WithField("host", host.Name).Warn(reason)
			return sshx.Failure("%s", reason)
		}

		cmd := RewriteJoinCommand(joinCmd)
		return retry.Do(ctx, func(ctx context.Context) sshx.Result {
			runner, err := o.connect(ctx, host)
			if err != nil {
				return sshx.Failure("failed to connect to %s: %v", host.Address, err)
			}
			defer runner.Close()
			return runner.Run(ctx, cmd, sshx.ExecOptions{Timeout: o.policy.AttemptTimeout})
		}, retry.WithPolicy(o.policy))
	}
}

// joinCommandFor picks the join command for a role, or explains its absence.
func (o *Orchestrator) joinCommandFor(role Role) (cmd, absentReason string) {
	switch role {
	case RoleControlPlane:
		return o.artifacts.ControlPlaneJoinCommand, "skipped: control-plane join command unavailable"
	default:
		return o.artifacts.WorkerJoinCommand, "skipped: worker join command unavailable"
	}
}

// warnFailedGroup records a join-failed warning naming every failing host
// in one group. Succeeding hosts keep their individual success results.
func (o *Orchestrator) warnFailedGroup(group string, hosts []Host, outcome PhaseOutcome) {
	var failed []string
	for _, host := range hosts {
		if res, ok := outcome[host.Name]; ok && !res.Success {
			failed = append(failed, host.Name)
		}
	}
	if len(failed) > 0 {
		o.report.Warn(WarnJoinFailed,
			fmt.Sprintf("%s join failed on %s", group, strings.Join(failed, ", ")))
	}
}

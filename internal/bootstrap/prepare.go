package bootstrap

import (
	"context"

	"github.com/kubestrap/kubestrap/internal/sshx"
	"github.com/kubestrap/kubestrap/internal/util/async"
	"github.com/kubestrap/kubestrap/internal/util/retry"
)

// runPreparation runs the environment-setup script on every host
// concurrently and waits for all of them to settle before returning (a slow
// host blocks the whole phase). If any host exhausts its retries, the phase
// fails and initialization never starts.
func (o *Orchestrator) runPreparation(ctx context.Context) (PhaseOutcome, *PreparationError) {
	hosts := o.allHosts()
	o.log.WithField("hosts", len(hosts)).Info("preparing host environments")

	tasks := make([]async.Task[sshx.Result], 0, len(hosts))
	for _, host := range hosts {
		tasks = append(tasks, async.Task[sshx.Result]{
			Name: host.Name,
			Func: o.prepareTask(host),
		})
	}

	outcome := PhaseOutcome(async.Collect(ctx, o.concurrency, tasks))

	failed := make(map[string]string)
	for name, res := range outcome {
		if !res.Success {
			failed[name] = res.Message
		}
	}
	if len(failed) > 0 {
		return outcome, &PreparationError{Hosts: failed}
	}
	return outcome, nil
}

// prepareTask builds the retried upload+run operation for one host. Every
// attempt reconnects and re-runs the script from scratch, which the script
// body must tolerate.
func (o *Orchestrator) prepareTask(host Host) func(context.Context) sshx.Result {
	return func(ctx context.Context) sshx.Result {
		log := o.log.WithField("host", host.Name)
		log.Debug("running preparation script")

		res := retry.Do(ctx, func(ctx context.Context) sshx.Result {
			runner, err := o.connect(ctx, host)
			if err != nil {
				return sshx.Failure("failed to connect to %s: %v", host.Address, err)
			}
			defer runner.Close()
			return runner.RunScript(ctx, o.prepareScript, sshx.ExecOptions{
				Timeout: o.policy.AttemptTimeout,
			})
		}, retry.WithPolicy(o.policy))

		if res.Success {
			log.Info("preparation succeeded")
		} else {
			log.WithField("message", res.Message).Error("preparation failed")
		}
		return res
	}
}

// allHosts returns the full fleet: primary first, then joiners.
func (o *Orchestrator) allHosts() []Host {
	hosts := make([]Host, 0, 1+len(o.controlPlanes)+len(o.workers))
	hosts = append(hosts, o.primary)
	hosts = append(hosts, o.controlPlanes...)
	hosts = append(hosts, o.workers...)
	return hosts
}

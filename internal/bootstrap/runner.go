package bootstrap

import (
	"context"

	"github.com/kubestrap/kubestrap/internal/sshx"
)

// HostRunner executes remote operations against one host over an exclusive
// connection. *sshx.Session satisfies it; tests substitute fakes.
type HostRunner interface {
	Run(ctx context.Context, command string, opts sshx.ExecOptions) sshx.Result
	RunScript(ctx context.Context, script sshx.Script, opts sshx.ExecOptions) sshx.Result
	Push(ctx context.Context, content []byte, remotePath, mode string) error
	Close() error
}

// RunnerFactory opens a connection to a host. Factories are called once per
// retry attempt, so every attempt starts from a fresh connection.
type RunnerFactory func(ctx context.Context, host Host) (HostRunner, error)

// SSHRunnerFactory is the production factory: one exclusive SSH connection
// per host.
func SSHRunnerFactory(ctx context.Context, host Host) (HostRunner, error) {
	return sshx.Connect(ctx, host.Address, host.Port, host.User, host.Credential)
}

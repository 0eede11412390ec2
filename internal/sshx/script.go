package sshx

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
)

// remoteTempDir is the shared directory scripts are staged into.
const remoteTempDir = "/tmp"

// Script is a shell script to be delivered to a host and executed there.
// Scripts pass through a retrying path that re-uploads and re-runs them from
// scratch, so their bodies must be safe to execute more than once.
type Script struct {
	// Name is the local base name; it seeds the remote path.
	Name string
	// Body is the script content, uploaded verbatim.
	Body []byte
	// Args are appended positionally to the invocation.
	Args []string
	// Sudo prefixes the invocation with privilege escalation.
	Sudo bool
}

// remoteScriptPath builds a collision-free staging path by suffixing the
// script name with the current time, so concurrent runs on the same host
// never clobber each other.
func remoteScriptPath(name string, now time.Time) string {
	return path.Join(remoteTempDir, fmt.Sprintf("%s-%d", path.Base(name), now.UnixNano()))
}

// RunScript uploads the script, marks it executable, runs it, and issues a
// best-effort delete of the staged file regardless of outcome. Upload and
// execution form one logical operation so retry wrappers treat them
// atomically.
func (s *Session) RunScript(ctx context.Context, script Script, opts ExecOptions) Result {
	remotePath := remoteScriptPath(script.Name, time.Now())

	if err := s.Push(ctx, script.Body, remotePath, "0755"); err != nil {
		return Failure("failed to deliver script %s: %v", script.Name, err)
	}
	defer func() {
		// Cleanup is best effort; a leftover temp file is not a failure.
		_ = s.Run(context.WithoutCancel(ctx), fmt.Sprintf("rm -f %s", remotePath), ExecOptions{})
	}()

	invocation := scriptInvocation(remotePath, script.Args, script.Sudo)
	return s.Run(ctx, invocation, opts)
}

// scriptInvocation builds the remote command line for a staged script.
func scriptInvocation(remotePath string, args []string, sudo bool) string {
	parts := make([]string, 0, len(args)+3)
	if sudo {
		parts = append(parts, "sudo")
	}
	parts = append(parts, "bash", remotePath)
	parts = append(parts, args...)
	return strings.Join(parts, " ")
}

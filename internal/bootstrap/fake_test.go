package bootstrap

import (
	"context"
	"sync"

	"github.com/kubestrap/kubestrap/internal/sshx"
)

// fakeFleet scripts per-host remote behavior for orchestrator tests and
// records every command issued.
type fakeFleet struct {
	mu sync.Mutex

	// scriptResults overrides the preparation script outcome per host;
	// hosts without an entry succeed.
	scriptResults map[string]sshx.Result
	// runResults maps host -> exact command -> result; commands without an
	// entry succeed with empty output.
	runResults map[string]map[string]sshx.Result
	// connectErrs makes the factory fail for a host.
	connectErrs map[string]error
	// pushErrs makes uploads fail for a host.
	pushErrs map[string]error

	commands map[string][]string
	connects map[string]int
	closes   map[string]int
}

func newFakeFleet() *fakeFleet {
	return &fakeFleet{
		scriptResults: make(map[string]sshx.Result),
		runResults:    make(map[string]map[string]sshx.Result),
		connectErrs:   make(map[string]error),
		pushErrs:      make(map[string]error),
		commands:      make(map[string][]string),
		connects:      make(map[string]int),
		closes:        make(map[string]int),
	}
}

func (f *fakeFleet) setRunResult(host, command string, res sshx.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.runResults[host] == nil {
		f.runResults[host] = make(map[string]sshx.Result)
	}
	f.runResults[host][command] = res
}

func (f *fakeFleet) factory(_ context.Context, host Host) (HostRunner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects[host.Name]++
	if err := f.connectErrs[host.Name]; err != nil {
		return nil, err
	}
	return &fakeConn{fleet: f, host: host.Name}, nil
}

func (f *fakeFleet) commandsFor(host string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.commands[host]...)
}

func (f *fakeFleet) connectCount(host string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connects[host]
}

func (f *fakeFleet) closeCount(host string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes[host]
}

type fakeConn struct {
	fleet *fakeFleet
	host  string
}

func (c *fakeConn) Run(_ context.Context, command string, _ sshx.ExecOptions) sshx.Result {
	c.fleet.mu.Lock()
	defer c.fleet.mu.Unlock()
	c.fleet.commands[c.host] = append(c.fleet.commands[c.host], command)
	if res, ok := c.fleet.runResults[c.host][command]; ok {
		return res
	}
	return sshx.Result{Success: true}
}

func (c *fakeConn) RunScript(_ context.Context, script sshx.Script, _ sshx.ExecOptions) sshx.Result {
	c.fleet.mu.Lock()
	defer c.fleet.mu.Unlock()
	c.fleet.commands[c.host] = append(c.fleet.commands[c.host], "script:"+script.Name)
	if res, ok := c.fleet.scriptResults[c.host]; ok {
		return res
	}
	return sshx.Result{Success: true}
}

func (c *fakeConn) Push(_ context.Context, _ []byte, remotePath, _ string) error {
	c.fleet.mu.Lock()
	defer c.fleet.mu.Unlock()
	c.fleet.commands[c.host] = append(c.fleet.commands[c.host], "push:"+remotePath)
	return c.fleet.pushErrs[c.host]
}

func (c *fakeConn) Close() error {
	c.fleet.mu.Lock()
	defer c.fleet.mu.Unlock()
	c.fleet.closes[c.host]++
	return nil
}

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kubestrap/kubestrap/internal/k8s"
	"github.com/kubestrap/kubestrap/internal/sshx"
	"github.com/kubestrap/kubestrap/internal/util/retry"
)

// DefaultSettleDelay is how long verification waits for newly joined nodes
// to start reporting status before the membership query.
const DefaultSettleDelay = 30 * time.Second

// DefaultConcurrency caps per-phase host fan-out unless configured
// otherwise.
const DefaultConcurrency = 8

// NodeLister queries current cluster membership given admin credentials.
type NodeLister func(ctx context.Context, kubeconfig []byte) ([]k8s.NodeRecord, error)

// Options configures an Orchestrator.
type Options struct {
	// Hosts is the fleet, with exactly one RolePrimary member.
	Hosts []Host
	// PrepareScript is the environment-setup script run on every host in
	// phase 1. Its body must be idempotent; retries re-run it from scratch.
	PrepareScript sshx.Script
	// InitConfig is the opaque cluster-init configuration artifact uploaded
	// to the primary before the init command.
	InitConfig []byte
	// Policy governs retry behavior for per-host operations.
	Policy retry.Policy
	// Concurrency caps per-phase fan-out; 0 falls back to
	// DefaultConcurrency, negative means unbounded.
	Concurrency int
	// SettleDelay overrides the pre-verification wait.
	SettleDelay time.Duration

	// Connect and ListNodes default to the SSH factory and the client-go
	// query; tests substitute fakes.
	Connect   RunnerFactory
	ListNodes NodeLister
	Logger    *logrus.Logger
}

// Orchestrator sequences the bootstrap phases across the fleet.
type Orchestrator struct {
	primary       Host
	controlPlanes []Host
	workers       []Host

	prepareScript sshx.Script
	initConfig    []byte
	policy        retry.Policy
	concurrency   int
	settleDelay   time.Duration

	connect   RunnerFactory
	listNodes NodeLister
	log       *logrus.Entry

	state     State
	artifacts JoinArtifacts
	report    *Report
}

// New validates the host list and builds an orchestrator. Zero or multiple
// primaries are rejected up front, before any connection is made.
func New(opts Options) (*Orchestrator, error) {
	if len(opts.Hosts) == 0 {
		return nil, errors.New("no hosts supplied")
	}

	o := &Orchestrator{
		prepareScript: opts.PrepareScript,
		initConfig:    opts.InitConfig,
		policy:        opts.Policy,
		concurrency:   opts.Concurrency,
		settleDelay:   opts.SettleDelay,
		connect:       opts.Connect,
		listNodes:     opts.ListNodes,
		state:         StateNotStarted,
	}

	seen := make(map[string]bool, len(opts.Hosts))
	primaries := 0
	for _, host := range opts.Hosts {
		if host.Name == "" || host.Address == "" {
			return nil, fmt.Errorf("host %q: name and address are required", host.Name)
		}
		if seen[host.Name] {
			return nil, fmt.Errorf("duplicate host name %q", host.Name)
		}
		seen[host.Name] = true
		if host.Credential.Empty() {
			return nil, fmt.Errorf("host %q: no credential supplied", host.Name)
		}

		switch host.Role {
		case RolePrimary:
			primaries++
			o.primary = host
		case RoleControlPlane:
			o.controlPlanes = append(o.controlPlanes, host)
		case RoleWorker:
			o.workers = append(o.workers, host)
		default:
			return nil, fmt.Errorf("host %q: unknown role %q", host.Name, host.Role)
		}
	}
	if primaries != 1 {
		return nil, fmt.Errorf("expected exactly one primary host, got %d", primaries)
	}

	if o.policy == (retry.Policy{}) {
		o.policy = retry.DefaultPolicy()
	}
	if o.concurrency == 0 {
		o.concurrency = DefaultConcurrency
	}
	if o.settleDelay == 0 {
		o.settleDelay = DefaultSettleDelay
	}
	if o.connect == nil {
		o.connect = SSHRunnerFactory
	}
	if o.listNodes == nil {
		o.listNodes = listNodesFromKubeconfig
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	o.log = logger.WithField("component", "bootstrap")

	return o, nil
}

// Run drives the fleet through all four phases and returns the structured
// report. The error is non-nil only for the two fatal conditions:
// preparation failure and a failed init command on the primary. In both
// cases the report is still returned with the per-host detail.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	o.report = &Report{
		State:          StateNotStarted,
		Phases:         make(map[string]PhaseOutcome),
		PhaseDurations: make(map[string]time.Duration),
		ExpectedNodes:  1 + len(o.controlPlanes) + len(o.workers),
	}
	defer func() {
		o.report.Duration = time.Since(start)
		o.report.State = o.state
		o.report.Artifacts = o.artifacts
	}()

	o.transition(StatePreparing)
	phaseStart := time.Now()
	outcome, prepErr := o.runPreparation(ctx)
	o.report.Phases[PhasePreparation] = outcome
	o.report.PhaseDurations[PhasePreparation] = time.Since(phaseStart)
	if prepErr != nil {
		o.transition(StateFailed)
		return o.report, prepErr
	}

	o.transition(StateInitializing)
	phaseStart = time.Now()
	initOutcome, initErr := o.runInitialization(ctx)
	o.report.Phases[PhaseInitialization] = initOutcome
	o.report.PhaseDurations[PhaseInitialization] = time.Since(phaseStart)
	if initErr != nil {
		o.transition(StateFailed)
		return o.report, initErr
	}
	o.transition(StateTokensExtracted)

	o.transition(StateJoining)
	phaseStart = time.Now()
	o.report.Phases[PhaseJoin] = o.runJoin(ctx)
	o.report.PhaseDurations[PhaseJoin] = time.Since(phaseStart)

	o.transition(StateVerifying)
	phaseStart = time.Now()
	o.runVerification(ctx)
	o.report.PhaseDurations[PhaseVerification] = time.Since(phaseStart)

	o.transition(StateComplete)
	o.report.Success = true
	o.log.WithFields(logrus.Fields{
		"duration": time.Since(start).Round(time.Millisecond),
		"warnings": len(o.report.Warnings),
	}).Info("bootstrap complete")
	return o.report, nil
}

// transition advances the forward-only state machine.
func (o *Orchestrator) transition(next State) {
	o.log.WithFields(logrus.Fields{"from": o.state, "to": next}).Debug("state transition")
	o.state = next
	o.report.State = next
}

// listNodesFromKubeconfig is the production NodeLister.
func listNodesFromKubeconfig(ctx context.Context, kubeconfig []byte) ([]k8s.NodeRecord, error) {
	client, err := k8s.NewFromKubeconfig(kubeconfig)
	if err != nil {
		return nil, err
	}
	return client.Nodes(ctx)
}
